// Package cmd provides the command-line interface for the tickets CLI tool.
package cmd

import (
	"github.com/danielolaszy/tickets/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tickets",
		Short: "Tickets keeps git branches in step with your ticket tracker and story service",
		Long: `Tickets lists open tickets from a ticket tracker (Trac, JIRA or GitHub) and
stories from Pivotal Tracker, creates or renames git branches named after a
ticket, comments on and transitions stories, and migrates tickets into stories.

Projects are configured in ~/.trac-tickets (override with --config or
TICKETS_CONFIG). When no project is given, the first project whose
path_regexp matches the working directory is used, then default_project.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				logging.SetLevel(logging.LevelDebug)
			}
		},
	}

	root.PersistentFlags().StringP("project", "p", "", "Project name")
	root.PersistentFlags().StringP("password", "u", "", "Ticket tracker password")
	root.PersistentFlags().BoolP("debug", "d", false, "Activate debug logging")
	root.PersistentFlags().String("config", "", "Project file (default ~/.trac-tickets)")

	root.AddCommand(newListCmd())
	root.AddCommand(newStoriesCmd())
	root.AddCommand(newStoryCmd())

	return root
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
