package testutil

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/systmms/yamldap/internal/logging"
)

// TestLogger captures the output of a logging.Logger for validation.
//
// Example usage:
//
//	logger := NewTestLogger(t, false)
//	logger.Info("Processing secret: %s", logging.Secret("password123"))
//
//	logger.AssertContains(t, "[REDACTED]")
//	logger.AssertNotContains(t, "password123")
type TestLogger struct {
	*logging.Logger
	buffer *bytes.Buffer
}

// NewTestLogger creates an uncolored logger writing to an in-memory buffer.
// Debug messages are captured only when debug is true.
func NewTestLogger(t *testing.T, debug bool) *TestLogger {
	t.Helper()

	buf := &bytes.Buffer{}
	return &TestLogger{
		Logger: logging.New(debug, true).WithOutput(buf),
		buffer: buf,
	}
}

// GetOutput returns everything logged so far
func (l *TestLogger) GetOutput() string {
	return l.buffer.String()
}

// Clear discards the captured output
func (l *TestLogger) Clear() {
	l.buffer.Reset()
}

// AssertContains asserts that the log output contains substr
func (l *TestLogger) AssertContains(t *testing.T, substr string) {
	t.Helper()
	assert.Contains(t, l.GetOutput(), substr, "Expected log output to contain %q", substr)
}

// AssertNotContains asserts that the log output does NOT contain substr
func (l *TestLogger) AssertNotContains(t *testing.T, substr string) {
	t.Helper()
	assert.NotContains(t, l.GetOutput(), substr, "Expected log output to NOT contain %q", substr)
}

// AssertRedacted asserts that secretValue never appears while the
// [REDACTED] marker does
func (l *TestLogger) AssertRedacted(t *testing.T, secretValue string) {
	t.Helper()

	output := l.GetOutput()
	assert.NotContains(t, output, secretValue,
		"Secret value %q should be redacted, but appears in logs", secretValue)
	assert.Contains(t, output, "[REDACTED]",
		"Expected [REDACTED] marker in logs when secret is used")
}

// AssertLogCount asserts how often a level marker appears.
//
// Level markers:
//   - info: "✓"
//   - warn: "⚠"
//   - error: "✗"
//   - debug: "[DEBUG]"
func (l *TestLogger) AssertLogCount(t *testing.T, level string, count int) {
	t.Helper()

	var marker string
	switch level {
	case "info":
		marker = "✓"
	case "warn":
		marker = "⚠"
	case "error":
		marker = "✗"
	case "debug":
		marker = "[DEBUG]"
	default:
		t.Fatalf("Unknown log level: %s", level)
	}

	actual := strings.Count(l.GetOutput(), marker)
	assert.Equal(t, count, actual, "Expected %d %s log messages, got %d", count, level, actual)
}
