// Package testutil provides shared helpers for yamldap tests.
//
// It builds throwaway working directories holding schemas, settings and
// defaults, and a logger that captures output for assertions.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/systmms/yamldap/internal/config"
)

// TestWorkspace provides a fluent API for building a working directory.
//
// Example usage:
//
//	ws := NewWorkspace(t).
//	    WithSchema("user", userSchema).
//	    WithSettings("user_base: ou=people,dc=example,dc=com\n")
//
//	cfg := ws.Config(logger.Logger)
type TestWorkspace struct {
	dir string
	t   *testing.T
}

// NewWorkspace creates an empty workspace in a test temp directory
func NewWorkspace(t *testing.T) *TestWorkspace {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "schema"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "etc"), 0755))

	return &TestWorkspace{dir: dir, t: t}
}

// WithSchema writes schema/<name>.yml
func (w *TestWorkspace) WithSchema(name, content string) *TestWorkspace {
	w.t.Helper()
	w.WriteFile(filepath.Join("schema", name+".yml"), content)
	return w
}

// WithSettings writes etc/settings.yml
func (w *TestWorkspace) WithSettings(content string) *TestWorkspace {
	w.t.Helper()
	w.WriteFile(filepath.Join("etc", "settings.yml"), content)
	return w
}

// WithDefaults writes etc/defaults.yml
func (w *TestWorkspace) WithDefaults(content string) *TestWorkspace {
	w.t.Helper()
	w.WriteFile(filepath.Join("etc", "defaults.yml"), content)
	return w
}

// WriteFile writes content to a path relative to the workspace and returns
// the absolute path
func (w *TestWorkspace) WriteFile(rel, content string) string {
	w.t.Helper()

	path := w.Path(rel)
	require.NoError(w.t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// Path returns rel resolved against the workspace
func (w *TestWorkspace) Path(rel string) string {
	return filepath.Join(w.dir, rel)
}

// Dir returns the workspace root
func (w *TestWorkspace) Dir() string {
	return w.dir
}

// Config returns a configuration pointing at the workspace files
func (w *TestWorkspace) Config(logger *TestLogger) *config.Config {
	w.t.Helper()

	cfg, err := config.New(logger.Logger)
	require.NoError(w.t, err)
	cfg.Paths = config.Paths{
		SchemaDir: w.Path("schema"),
		Settings:  w.Path(filepath.Join("etc", "settings.yml")),
		Defaults:  w.Path(filepath.Join("etc", "defaults.yml")),
	}
	return cfg
}
