package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
)

// Logger provides structured logging with redaction support
type Logger struct {
	debug   bool
	noColor bool
	out     io.Writer
}

// New creates a new logger instance
func New(debug, noColor bool) *Logger {
	return &Logger{
		debug:   debug,
		noColor: noColor,
	}
}

// WithOutput returns a copy of the logger writing to w instead of stderr
func (l *Logger) WithOutput(w io.Writer) *Logger {
	clone := *l
	clone.out = w
	return &clone
}

// DebugEnabled reports whether Debug messages are printed
func (l *Logger) DebugEnabled() bool {
	return l.debug
}

func (l *Logger) writer() io.Writer {
	if l.out != nil {
		return l.out
	}
	return os.Stderr
}

func (l *Logger) line(color, glyph, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if !l.noColor {
		fmt.Fprintf(l.writer(), "\033[%sm%s\033[0m %s\n", color, glyph, msg)
	} else {
		fmt.Fprintf(l.writer(), "%s %s\n", glyph, msg)
	}
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	l.line("32", "✓", format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.line("33", "⚠", format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.line("31", "✗", format, args...)
}

// Debug logs a debug message if debug mode is enabled
func (l *Logger) Debug(format string, args ...interface{}) {
	if !l.debug {
		return
	}
	l.line("36", "[DEBUG]", format, args...)
}

// Dump prints a labelled deep dump of v in debug mode.
// Callers must not pass values holding plaintext secrets.
func (l *Logger) Dump(label string, v interface{}) {
	if !l.debug {
		return
	}
	cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true, SortKeys: true}
	l.line("36", "[DEBUG]", "%s:\n%s", label, strings.TrimRight(cfg.Sdump(v), "\n"))
}

// Progress rewrites the current terminal line. Call EndProgress once done.
func (l *Logger) Progress(format string, args ...interface{}) {
	fmt.Fprintf(l.writer(), "\r"+format, args...)
}

// EndProgress terminates a progress line
func (l *Logger) EndProgress() {
	fmt.Fprintln(l.writer())
}

// Secret represents a value that should be redacted in logs
type Secret string

// String implements the Stringer interface, always returning a redacted value
func (s Secret) String() string {
	return "[REDACTED]"
}

// GoString implements the GoStringer interface for %#v formatting
func (s Secret) GoString() string {
	return "[REDACTED]"
}
