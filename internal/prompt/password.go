// Package prompt asks the user for credentials on the terminal.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Password writes "[project] Password: " to out and reads a password from
// in. Terminal input is read without echo; anything else is read up to the
// end of the line.
func Password(in io.Reader, out io.Writer, project string) (string, error) {
	fmt.Fprintf(out, "[%s] Password: ", project)

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return strings.TrimSpace(string(secret)), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if err == io.EOF && line == "" {
		return "", fmt.Errorf("failed to read password: no input")
	}
	return strings.TrimSpace(line), nil
}
