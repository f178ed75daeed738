package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/danielolaszy/tickets/internal/branch"
	"github.com/danielolaszy/tickets/internal/format"
	"github.com/danielolaszy/tickets/internal/logging"
	"github.com/spf13/cobra"
)

type storiesOptions struct {
	globalOptions

	Branch  int
	Rename  int
	OpenApp string
}

func newStoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stories",
		Short: "List the stories of the Pivotal Tracker project",
		Long: `List the stories of the project's Pivotal Tracker project, one row per story.

Example:
  tickets stories -p myproject
  tickets stories -b 1234567`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := parseStoriesOptions(cmd)
			if err != nil {
				return err
			}

			project, err := loadProject(opts.globalOptions)
			if err != nil {
				return err
			}

			rt := defaultRuntime(cmd.OutOrStdout())
			service, err := rt.stories(project)
			if err != nil {
				return err
			}

			return runStories(cmd.Context(), opts, project.Name, service, rt)
		},
	}

	cmd.Flags().IntP("branch", "b", 0, "Create a git branch for story NUM")
	cmd.Flags().IntP("gitrename", "m", 0, "Rename the current git branch after story NUM")
	cmd.Flags().StringP("open", "o", "", "Open each listed story with APP")
	cmd.Flags().Bool("safari", false, "Open each listed story with Safari")

	return cmd
}

func parseStoriesOptions(cmd *cobra.Command) (storiesOptions, error) {
	var opts storiesOptions
	var err error

	if opts.globalOptions, err = parseGlobalOptions(cmd); err != nil {
		return opts, err
	}
	if opts.Branch, err = cmd.Flags().GetInt("branch"); err != nil {
		return opts, err
	}
	if opts.Rename, err = cmd.Flags().GetInt("gitrename"); err != nil {
		return opts, err
	}
	if opts.OpenApp, err = openApp(cmd); err != nil {
		return opts, err
	}
	if opts.Branch != 0 && opts.Rename != 0 {
		return opts, errors.New("--branch and --gitrename cannot be used together")
	}
	return opts, nil
}

func runStories(ctx context.Context, opts storiesOptions, projectName string, service storyService, rt runtime) error {
	stories, err := service.Stories(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(rt.out, "====>>> Active Story for: %s <<<====\n", projectName)
	for _, story := range stories {
		fmt.Fprint(rt.out, format.StoryTemplate.Render(story.Record()))
		if opts.OpenApp == "" {
			continue
		}
		if err := rt.open(opts.OpenApp, service.StoryURL(story.ID)); err != nil {
			logging.Warn("failed to open story", "story", story.ID, "app", opts.OpenApp, "error", err)
		}
	}
	fmt.Fprintf(rt.out, "====>>> Tickets for: %s Total %d <<<====\n", projectName, len(stories))

	switch {
	case opts.Branch != 0:
		return storyBranch(ctx, rt, service, opts.Branch, false)
	case opts.Rename != 0:
		return storyBranch(ctx, rt, service, opts.Rename, true)
	}
	return nil
}

// storyBranch creates, or with rename renames the current, git branch
// named after story id. Stories migrated from a ticket carry the ticket
// number in the branch name.
func storyBranch(ctx context.Context, rt runtime, service storyService, id int, rename bool) error {
	if err := rt.git.Available(); err != nil {
		return err
	}

	story, err := service.Story(ctx, id)
	if err != nil {
		fmt.Fprintln(rt.out, "story not open or not available")
		return err
	}

	return applyBranch(rt, branch.Request{
		ID:          id,
		Title:       story.Name,
		Description: story.Description,
		Kind:        branch.KindStory,
	}, rename)
}
