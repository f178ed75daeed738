// Package main is the entry point for the tickets CLI application.
package main

import (
	"fmt"
	"os"

	"github.com/danielolaszy/tickets/cmd"
	"github.com/danielolaszy/tickets/internal/logging"
)

var version = "dev"

// main executes the root command and exits non-zero when it fails.
func main() {
	logging.Debug("starting tickets cli", "version", version, "log_level", string(logging.LevelFromEnv()))

	if err := cmd.Execute(); err != nil {
		logging.Debug("command execution failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
