// Package git wraps the git commands used to list, create and rename branches.
package git

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrNoVCS is returned when git is not installed or the directory is not a
// git repository.
var ErrNoVCS = errors.New("git repository not available")

// Client runs git in Dir, or the current directory when Dir is empty.
type Client struct {
	Dir string
}

// Available reports whether git can be used in the client's directory.
func (c Client) Available() error {
	if _, err := exec.LookPath("git"); err != nil {
		return fmt.Errorf("%w: %v", ErrNoVCS, err)
	}
	if _, err := c.run("branch"); err != nil {
		return fmt.Errorf("%w: %v", ErrNoVCS, err)
	}
	return nil
}

// Branches returns the local and remote branch names.
func (c Client) Branches() ([]string, error) {
	output, err := c.run("branch", "-a")
	if err != nil {
		return nil, err
	}
	return ParseBranchList(output), nil
}

// CreateBranch creates name from the current branch and switches to it.
func (c Client) CreateBranch(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("branch name is required")
	}
	_, err := c.run("checkout", "-b", name)
	return err
}

// RenameBranch renames the current branch to name.
func (c Client) RenameBranch(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("branch name is required")
	}
	_, err := c.run("branch", "-m", name)
	return err
}

// ParseBranchList parses `git branch -a` output. The first two columns hold
// the current-branch marker and are dropped.
func ParseBranchList(output string) []string {
	var names []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if len(line) <= 2 {
			continue
		}
		names = append(names, line[2:])
	}
	return names
}

func (c Client) run(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = c.Dir

	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s failed: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(output)))
	}
	return string(output), nil
}
