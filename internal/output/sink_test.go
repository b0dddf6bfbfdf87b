package output

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dserrors "github.com/systmms/yamldap/internal/errors"
	"github.com/systmms/yamldap/internal/logging"
)

var record = []string{"dn: uid=tom,ou=people,dc=example,dc=com", "objectclass: inetOrgPerson", "uid: tom"}

func TestEmitStdout(t *testing.T) {
	t.Parallel()

	var stdout, logs bytes.Buffer
	sink := &Sink{Stdout: &stdout, Logger: logging.New(false, true).WithOutput(&logs)}

	path, err := sink.Emit(record, "")
	require.NoError(t, err)

	assert.Empty(t, path)
	assert.Equal(t, "dn: uid=tom,ou=people,dc=example,dc=com\nobjectclass: inetOrgPerson\nuid: tom\n\n", stdout.String())
	assert.Empty(t, logs.String())
}

func TestEmitFile(t *testing.T) {
	t.Parallel()

	var stdout, logs bytes.Buffer
	sink := &Sink{Stdout: &stdout, Logger: logging.New(false, true).WithOutput(&logs)}
	target := filepath.Join(t.TempDir(), "tom.ldif")

	path, err := sink.Emit(record, target)
	require.NoError(t, err)
	assert.Equal(t, target, path)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "dn: uid=tom,ou=people,dc=example,dc=com\nobjectclass: inetOrgPerson\nuid: tom\n", string(data))

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	assert.Contains(t, logs.String(), "Writing ldif to '"+target+"'")
	assert.Empty(t, stdout.String())
}

func TestEmitFileOverwrites(t *testing.T) {
	t.Parallel()

	target := filepath.Join(t.TempDir(), "out.ldif")
	require.NoError(t, os.WriteFile(target, []byte("stale content that is longer than the record\n"), 0600))

	sink := &Sink{Stdout: &bytes.Buffer{}}
	_, err := sink.Emit([]string{"dn: a=b"}, target)
	require.NoError(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "dn: a=b\n", string(data))
}

func TestEmitFileMissingDirectory(t *testing.T) {
	t.Parallel()

	sink := &Sink{Stdout: &bytes.Buffer{}}
	_, err := sink.Emit(record, filepath.Join(t.TempDir(), "missing", "out.ldif"))
	require.Error(t, err)

	var userErr dserrors.UserError
	require.True(t, errors.As(err, &userErr))
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Contains(t, err.Error(), "--dry-run")
}
