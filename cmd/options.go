package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/danielolaszy/tickets/internal/config"
	"github.com/danielolaszy/tickets/internal/git"
	"github.com/danielolaszy/tickets/internal/github"
	"github.com/danielolaszy/tickets/internal/jira"
	"github.com/danielolaszy/tickets/internal/launch"
	"github.com/danielolaszy/tickets/internal/logging"
	"github.com/danielolaszy/tickets/internal/pivotal"
	"github.com/danielolaszy/tickets/internal/prompt"
	"github.com/danielolaszy/tickets/internal/trac"
	"github.com/danielolaszy/tickets/internal/tracker"
	"github.com/spf13/cobra"
)

// safariApp is the application used by --safari.
const safariApp = "Safari"

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	Project    string
	Password   string
	ConfigPath string
}

func parseGlobalOptions(cmd *cobra.Command) (globalOptions, error) {
	var opts globalOptions
	var err error

	if opts.Project, err = cmd.Flags().GetString("project"); err != nil {
		return opts, err
	}
	if opts.Password, err = cmd.Flags().GetString("password"); err != nil {
		return opts, err
	}
	if opts.ConfigPath, err = cmd.Flags().GetString("config"); err != nil {
		return opts, err
	}
	if opts.ConfigPath == "" {
		opts.ConfigPath = config.DefaultPath()
	}
	return opts, nil
}

// openApp reads --open and --safari.
func openApp(cmd *cobra.Command) (string, error) {
	app, err := cmd.Flags().GetString("open")
	if err != nil {
		return "", err
	}
	safari, err := cmd.Flags().GetBool("safari")
	if err != nil {
		return "", err
	}
	if safari {
		app = safariApp
	}
	return app, nil
}

// loadProject reads the project file and resolves the project for the
// current directory.
func loadProject(opts globalOptions) (config.Project, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Project{}, err
	}

	dir, err := os.Getwd()
	if err != nil {
		return config.Project{}, fmt.Errorf("failed to determine working directory: %w", err)
	}

	project, err := cfg.Resolve(opts.Project, dir)
	if err != nil {
		return config.Project{}, err
	}

	logging.Debug("resolved project", "project", project.Name, "tracker", project.Tracker, "dir", dir)
	return project, nil
}

// branchManager lists, creates and renames version control branches.
type branchManager interface {
	Available() error
	Branches() ([]string, error)
	CreateBranch(name string) error
	RenameBranch(name string) error
}

// storyService is the subset of the story service client used by commands.
type storyService interface {
	Stories(ctx context.Context) ([]pivotal.Story, error)
	Story(ctx context.Context, id int) (pivotal.Story, error)
	CreateStory(ctx context.Context, in pivotal.StoryInput) (pivotal.Story, error)
	AddNote(ctx context.Context, id int, text string) error
	SetState(ctx context.Context, id int, state pivotal.State) error
	StoryURL(id int) string
}

// runtime bundles the collaborators commands act on, so tests can swap
// them for fakes.
type runtime struct {
	out     io.Writer
	git     branchManager
	open    func(app, url string) error
	stories func(project config.Project) (storyService, error)
}

func defaultRuntime(out io.Writer) runtime {
	return runtime{
		out:  out,
		git:  git.Client{},
		open: launch.Open,
		stories: func(project config.Project) (storyService, error) {
			if err := config.ValidatePivotalConfig(project); err != nil {
				return nil, err
			}
			client, err := pivotal.NewClient(project.PivotalBaseURL, project.PivotalProjectID, project.PivotalAPIToken, nil)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize pivotal client: %w", err)
			}
			return client, nil
		},
	}
}

// trackerPassword returns the password for the ticket tracker, prompting
// on the terminal when a user is configured but no password is known.
func trackerPassword(project config.Project, flagPassword string) (string, error) {
	if flagPassword != "" {
		return flagPassword, nil
	}
	if project.Password != "" || project.User == "" {
		return project.Password, nil
	}
	return prompt.Password(os.Stdin, os.Stderr, project.Name)
}

// newSource creates the ticket tracker backend configured for project.
func newSource(project config.Project, flagPassword string) (tracker.Source, error) {
	switch project.Tracker {
	case config.TrackerTrac, "":
		password, err := trackerPassword(project, flagPassword)
		if err != nil {
			return nil, err
		}
		client, err := trac.NewClient(project, password, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize trac client: %w", err)
		}
		return client, nil
	case config.TrackerJira:
		client, err := jira.NewClient(project, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize jira client: %w", err)
		}
		return client, nil
	case config.TrackerGitHub:
		client, err := github.NewClient(project, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize github client: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown tracker %q for project %s", project.Tracker, project.Name)
	}
}
