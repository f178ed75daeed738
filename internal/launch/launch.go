// Package launch opens ticket URLs in a desktop application.
package launch

import (
	"fmt"
	"os/exec"
	"strings"
)

// Command returns the command that opens url with app.
func Command(app, url string) *exec.Cmd {
	return exec.Command("open", "-a", app, url)
}

// Open opens url with app and waits for the launcher to return.
func Open(app, url string) error {
	if strings.TrimSpace(app) == "" {
		return fmt.Errorf("application name is required")
	}

	output, err := Command(app, url).CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to open %s with %s: %w: %s", url, app, err, strings.TrimSpace(string(output)))
	}
	return nil
}
