package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/danielolaszy/tickets/internal/pivotal"
	"github.com/spf13/cobra"
)

func newStoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "story",
		Short: "Comment on and transition Pivotal Tracker stories",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "comment ID TEXT...",
		Short: "Add a comment to a story",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseStoryID(args[0])
			if err != nil {
				return err
			}
			service, err := storyServiceFor(cmd)
			if err != nil {
				return err
			}
			return runComment(cmd.Context(), service, cmd.OutOrStdout(), id, strings.Join(args[1:], " "))
		},
	})

	cmd.AddCommand(newStateCmd("start", pivotal.StateStarted))
	cmd.AddCommand(newStateCmd("finish", pivotal.StateFinished))
	cmd.AddCommand(newStateCmd("deliver", pivotal.StateDelivered))

	return cmd
}

// newStateCmd builds the `story <verb> ID` subcommand moving a story to state.
func newStateCmd(verb string, state pivotal.State) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " ID",
		Short: fmt.Sprintf("Mark a story as %s", state),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseStoryID(args[0])
			if err != nil {
				return err
			}
			service, err := storyServiceFor(cmd)
			if err != nil {
				return err
			}
			return runSetState(cmd.Context(), service, cmd.OutOrStdout(), id, state)
		},
	}
}

func parseStoryID(arg string) (int, error) {
	id, err := strconv.Atoi(strings.TrimPrefix(arg, "#"))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid story id %q", arg)
	}
	return id, nil
}

func storyServiceFor(cmd *cobra.Command) (storyService, error) {
	opts, err := parseGlobalOptions(cmd)
	if err != nil {
		return nil, err
	}
	project, err := loadProject(opts)
	if err != nil {
		return nil, err
	}
	return defaultRuntime(cmd.OutOrStdout()).stories(project)
}

func runComment(ctx context.Context, service storyService, out io.Writer, id int, text string) error {
	if err := service.AddNote(ctx, id, text); err != nil {
		return err
	}
	fmt.Fprintf(out, "Commented on story %d\n", id)
	return nil
}

func runSetState(ctx context.Context, service storyService, out io.Writer, id int, state pivotal.State) error {
	if err := service.SetState(ctx, id, state); err != nil {
		return err
	}
	fmt.Fprintf(out, "Story %d is %s\n", id, state)
	return nil
}
