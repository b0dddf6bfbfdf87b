package prompt

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/systmms/yamldap/internal/secure"
)

// ErrNotTerminal is returned by a SecretReader that cannot mask input
var ErrNotTerminal = errors.New("input is not a terminal")

// terminal wraps the x/term calls so tests can stand in for a tty
var terminal = struct {
	isTerminal   func(fd int) bool
	getState     func(fd int) (*term.State, error)
	restore      func(fd int, state *term.State) error
	readPassword func(fd int) ([]byte, error)
}{
	isTerminal:   term.IsTerminal,
	getState:     term.GetState,
	restore:      term.Restore,
	readPassword: term.ReadPassword,
}

// TerminalSecretReader reads secrets from a terminal with echo disabled
type TerminalSecretReader struct {
	In  *os.File
	Out io.Writer
}

// ReadSecret prints prompt and reads one line with echo disabled. The
// terminal state is restored by secure.Exit if the process is interrupted
// while reading.
func (r TerminalSecretReader) ReadSecret(prompt string) (string, error) {
	fd := int(r.In.Fd())
	if !terminal.isTerminal(fd) {
		return "", ErrNotTerminal
	}

	state, err := terminal.getState(fd)
	if err != nil {
		return "", fmt.Errorf("failed to read terminal state: %w", err)
	}
	defer secure.OnExit(restoreHook(fd, state))()

	fmt.Fprint(r.Out, prompt)
	b, err := terminal.readPassword(fd)
	fmt.Fprintln(r.Out)
	if err != nil {
		return "", fmt.Errorf("failed to read from terminal: %w", err)
	}
	return string(b), nil
}

func restoreHook(fd int, state *term.State) func() {
	return func() {
		_ = terminal.restore(fd, state)
	}
}
