package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword is swapped in tests to avoid touching the terminal.
var readPassword = term.ReadPassword

type prompter struct {
	reader *bufio.Reader
	out    io.Writer
	// interactive is true when reading from a terminal
	interactive bool
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	interactive := false
	if in == nil {
		in = os.Stdin
		interactive = term.IsTerminal(int(os.Stdin.Fd()))
	}
	return &prompter{reader: bufio.NewReader(in), out: out, interactive: interactive}
}

// Text asks for a single line unless value is already set.
func (p *prompter) Text(label, value string) (string, error) {
	if value != "" {
		return value, nil
	}

	fmt.Fprintf(p.out, "%s: ", label)
	line, err := p.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(line), nil
}

// Password asks for a secret without echo unless value is already set. When
// input is not a terminal the line is read as is.
func (p *prompter) Password(label, value string) (string, error) {
	if value != "" {
		return value, nil
	}
	if !p.interactive {
		return p.Text(label, "")
	}

	fmt.Fprintf(p.out, "%s: ", label)
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	return string(pw), nil
}

// newPassword asks for a password and its confirmation. A value given on the
// command line is its own confirmation.
func (p *prompter) newPassword(label, value string) (string, string, error) {
	if value != "" {
		return value, value, nil
	}

	pw, err := p.Password(label, "")
	if err != nil {
		return "", "", err
	}
	confirm, err := p.Password("Confirm "+strings.ToLower(label), "")
	if err != nil {
		return "", "", err
	}
	return pw, confirm, nil
}
