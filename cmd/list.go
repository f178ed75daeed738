package cmd

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/danielolaszy/tickets/internal/branch"
	"github.com/danielolaszy/tickets/internal/config"
	"github.com/danielolaszy/tickets/internal/format"
	"github.com/danielolaszy/tickets/internal/logging"
	"github.com/danielolaszy/tickets/internal/migrate"
	"github.com/danielolaszy/tickets/internal/tracker"
	"github.com/danielolaszy/tickets/pkg/models"
	"github.com/spf13/cobra"
)

// listOptions holds everything `tickets list` was asked to do.
type listOptions struct {
	globalOptions

	Report      int
	QuoteQuotes bool
	Branch      int
	Rename      int
	Show        []int
	Filter      *regexp.Regexp
	NotAssigned bool
	OpenApp     string
	Only        []int
	MakeStory   []int
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List open tickets of the ticket tracker",
		Long: `List the open tickets of the project's ticket tracker, one row per ticket.

The listing can be filtered, opened in a browser, turned into git branches
or migrated into Pivotal Tracker stories.

Example:
  tickets list -p myproject -x
  tickets list -b 42
  tickets list -v 12,13`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := parseListOptions(cmd)
			if err != nil {
				return err
			}

			project, err := loadProject(opts.globalOptions)
			if err != nil {
				return err
			}
			if opts.Report > 0 {
				project.ReportID = opts.Report
			}
			if opts.QuoteQuotes {
				project.QuoteQuotes = true
			}

			source, err := newSource(project, opts.Password)
			if err != nil {
				return err
			}

			return runList(cmd.Context(), opts, project, source, defaultRuntime(cmd.OutOrStdout()))
		},
	}

	cmd.Flags().IntP("report", "r", 0, "Trac report id")
	cmd.Flags().BoolP("quote-quotes", "q", false, "Replace double quotes in the report with single quotes")
	cmd.Flags().IntP("branch", "b", 0, "Create a git branch for ticket NUM")
	cmd.Flags().IntP("gitrename", "m", 0, "Rename the current git branch after ticket NUM")
	cmd.Flags().StringP("show-ticket", "s", "", "Show all information on tickets NUM,NUM,...")
	cmd.Flags().StringP("filter-on", "f", "", "Only list rows matching REGEXP")
	cmd.Flags().BoolP("not-assigned", "x", false, "Only list tickets without an owner")
	cmd.Flags().StringP("open", "o", "", "Open each listed ticket with APP")
	cmd.Flags().Bool("safari", false, "Open each listed ticket with Safari")
	cmd.Flags().StringP("only-tickets", "t", "", "Only list tickets NUM,NUM,...")
	cmd.Flags().StringP("make-story", "v", "", "Create Pivotal Tracker stories from tickets NUM,NUM,...")

	return cmd
}

func parseListOptions(cmd *cobra.Command) (listOptions, error) {
	var opts listOptions
	var err error

	if opts.globalOptions, err = parseGlobalOptions(cmd); err != nil {
		return opts, err
	}
	if opts.Report, err = cmd.Flags().GetInt("report"); err != nil {
		return opts, err
	}
	if opts.QuoteQuotes, err = cmd.Flags().GetBool("quote-quotes"); err != nil {
		return opts, err
	}
	if opts.Branch, err = cmd.Flags().GetInt("branch"); err != nil {
		return opts, err
	}
	if opts.Rename, err = cmd.Flags().GetInt("gitrename"); err != nil {
		return opts, err
	}
	if opts.NotAssigned, err = cmd.Flags().GetBool("not-assigned"); err != nil {
		return opts, err
	}
	if opts.OpenApp, err = openApp(cmd); err != nil {
		return opts, err
	}

	pattern, err := cmd.Flags().GetString("filter-on")
	if err != nil {
		return opts, err
	}
	if pattern != "" {
		if opts.Filter, err = regexp.Compile(pattern); err != nil {
			return opts, fmt.Errorf("invalid filter %q: %w", pattern, err)
		}
	}

	lists := []struct {
		flag string
		dst  *[]int
	}{
		{"show-ticket", &opts.Show},
		{"only-tickets", &opts.Only},
		{"make-story", &opts.MakeStory},
	}
	for _, l := range lists {
		value, err := cmd.Flags().GetString(l.flag)
		if err != nil {
			return opts, err
		}
		if *l.dst, err = tracker.ParseIDs(value); err != nil {
			return opts, fmt.Errorf("--%s: %w", l.flag, err)
		}
	}

	if opts.Branch != 0 && opts.Rename != 0 {
		return opts, errors.New("--branch and --gitrename cannot be used together")
	}
	return opts, nil
}

// runList prints the listing, then performs at most one branch action and
// any requested story migrations.
func runList(ctx context.Context, opts listOptions, project config.Project, source tracker.Source, rt runtime) error {
	records, err := source.Tickets(ctx)
	if err != nil {
		return err
	}

	var rows []tracker.Row
	if len(opts.Show) > 0 {
		rows = tracker.Select(records, tracker.Filter{Only: opts.Show}, format.DetailTemplate)
	} else {
		rows = tracker.Select(records, tracker.Filter{
			Component:   project.Component,
			Pattern:     opts.Filter,
			NotAssigned: opts.NotAssigned,
			Only:        opts.Only,
		}, format.TracTemplate)
	}

	fmt.Fprintf(rt.out, "====>>> Active Tickets for: %s <<<====\n", project.Name)
	for _, row := range rows {
		fmt.Fprint(rt.out, row.Line)
		if opts.OpenApp == "" {
			continue
		}
		id, _ := row.Record.Int(models.FieldTicket)
		if err := rt.open(opts.OpenApp, source.TicketURL(id)); err != nil {
			logging.Warn("failed to open ticket", "ticket", id, "app", opts.OpenApp, "error", err)
		}
	}
	fmt.Fprintf(rt.out, "====>>> Tickets for: %s Total %d <<<====\n", project.Name, len(rows))

	switch {
	case opts.Branch != 0:
		return ticketBranch(rt, records, opts.Branch, false)
	case opts.Rename != 0:
		return ticketBranch(rt, records, opts.Rename, true)
	}

	if len(opts.MakeStory) > 0 {
		return makeStories(ctx, rt, project, source, records, opts.MakeStory)
	}
	return nil
}

// ticketBranch creates, or with rename renames the current, git branch
// named after ticket id.
func ticketBranch(rt runtime, records []models.Record, id int, rename bool) error {
	if err := rt.git.Available(); err != nil {
		return err
	}

	rec, err := tracker.Find(records, models.FieldTicket, id)
	if err != nil {
		fmt.Fprintln(rt.out, "ticket not open or not available")
		return err
	}

	return applyBranch(rt, branch.Request{
		ID:    id,
		Title: rec.Get(models.FieldSummary),
		Kind:  branch.KindTicket,
	}, rename)
}

// applyBranch names a branch against the current snapshot of branches and
// creates or renames it.
func applyBranch(rt runtime, req branch.Request, rename bool) error {
	existing, err := rt.git.Branches()
	if err != nil {
		return err
	}

	name := branch.Name(req, branch.NewSet(existing...))
	logging.Debug("derived branch name", "id", req.ID, "branch", name, "rename", rename)

	if rename {
		err = rt.git.RenameBranch(name)
	} else {
		err = rt.git.CreateBranch(name)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(rt.out, name)
	return nil
}

// makeStories migrates the given tickets into stories. A ticket that fails
// to migrate is reported and the rest continue.
func makeStories(ctx context.Context, rt runtime, project config.Project, source tracker.Source, records []models.Record, ids []int) error {
	stories, err := rt.stories(project)
	if err != nil {
		return err
	}

	var failed int
	for _, id := range ids {
		rec, err := tracker.Find(records, models.FieldTicket, id)
		if err != nil {
			fmt.Fprintln(rt.out, "ticket not open or not available")
			failed++
			continue
		}

		input := migrate.StoryFromTicket(rec, project, source.TicketURL(id))
		if _, err := stories.CreateStory(ctx, input); err != nil {
			logging.Error("failed to create story", "ticket", id, "error", err)
			fmt.Fprintf(rt.out, "Ticket %d was not saved\n", id)
			failed++
			continue
		}
		fmt.Fprintf(rt.out, "Ticket %d was saved\n", id)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d tickets were not migrated", failed, len(ids))
	}
	return nil
}
