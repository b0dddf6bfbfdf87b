package output

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/systmms/yamldap/internal/secure"
)

// AtomicFile is written next to its destination and renamed over it on
// Commit, so readers never see a partial file. The temporary file is removed
// on Abort and by secure.Exit when the process is interrupted.
type AtomicFile struct {
	*os.File
	path   string
	cancel func()
	done   bool
}

// CreateAtomic opens a temporary file in the directory of path
func CreateAtomic(path string) (*AtomicFile, error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, err
	}
	name := f.Name()
	return &AtomicFile{
		File: f,
		path: path,
		cancel: secure.OnExit(func() {
			_ = os.Remove(name)
		}),
	}, nil
}

// Commit closes the temporary file and renames it to the destination
func (a *AtomicFile) Commit() error {
	if a.done {
		return nil
	}
	a.done = true
	defer a.cancel()

	if err := a.File.Close(); err != nil {
		_ = os.Remove(a.Name())
		return fmt.Errorf("failed to close %s: %w", a.path, err)
	}
	if err := os.Rename(a.Name(), a.path); err != nil {
		_ = os.Remove(a.Name())
		return fmt.Errorf("failed to rename %s: %w", a.path, err)
	}
	return nil
}

// Abort discards the temporary file. It is a no-op after Commit.
func (a *AtomicFile) Abort() {
	if a.done {
		return
	}
	a.done = true
	defer a.cancel()

	_ = a.File.Close()
	_ = os.Remove(a.Name())
}
