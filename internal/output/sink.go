// Package output writes generated records to a file or stdout.
package output

import (
	"bufio"
	"fmt"
	"io"
	"os"

	dserrors "github.com/systmms/yamldap/internal/errors"
	"github.com/systmms/yamldap/internal/logging"
)

// Sink delivers records. A nil Stdout means os.Stdout.
type Sink struct {
	Stdout io.Writer
	Logger *logging.Logger
}

// Emit writes lines to path, or prints them followed by a blank line when
// path is empty. It returns the path written.
func (s *Sink) Emit(lines []string, path string) (string, error) {
	if path == "" {
		return "", s.print(lines)
	}

	if s.Logger != nil {
		s.Logger.Info("Writing ldif to '%s'", path)
	}
	if err := writeFile(path, lines); err != nil {
		return "", err
	}
	return path, nil
}

func (s *Sink) print(lines []string) error {
	out := s.Stdout
	if out == nil {
		out = os.Stdout
	}
	w := bufio.NewWriter(out)
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
	fmt.Fprintln(w)
	if err := w.Flush(); err != nil {
		return dserrors.UserError{Message: "Failed to print ldif", Err: err}
	}
	return nil
}

func writeFile(path string, lines []string) error {
	f, err := CreateAtomic(path)
	if err != nil {
		return dserrors.UserError{
			Message:    fmt.Sprintf("Failed to open '%s' for writing", path),
			Details:    err.Error(),
			Suggestion: "Check that the directory exists and is writable, or use --dry-run",
			Err:        err,
		}
	}
	defer f.Abort()

	w := bufio.NewWriter(f)
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return dserrors.UserError{Message: fmt.Sprintf("Failed to write '%s'", path), Err: err}
		}
	}
	if err := w.Flush(); err != nil {
		return dserrors.UserError{Message: fmt.Sprintf("Failed to write '%s'", path), Err: err}
	}
	if err := f.Commit(); err != nil {
		return dserrors.UserError{Message: fmt.Sprintf("Failed to save '%s'", path), Err: err}
	}
	return nil
}
