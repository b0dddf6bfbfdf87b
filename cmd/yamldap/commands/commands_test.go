package commands

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/yamldap/internal/config"
	dserrors "github.com/systmms/yamldap/internal/errors"
	"github.com/systmms/yamldap/internal/testutil"
)

const userSchema = `type: user
required:
  - name: uid
  - name: givenName
  - name: sn
  - name: cn
optional:
  - name: mail
  - name: userPassword
    secret: true
  - name: telephoneNumber
    sensitive: true
  - name: loginShell
objectclasses:
  - top
  - inetOrgPerson
`

const groupSchema = `type: group
required:
  - name: cn
  - name: gidNumber
objectclasses:
  - posixGroup
`

const settingsYAML = `user_base: ou=people,dc=example,dc=com
repositories:
  staging:
    user_base: ou=people,dc=staging,dc=example,dc=com
`

const defaultsYAML = `cn: "{{ givenName }} {{ sn }}"
loginShell: /bin/bash
repositories:
  staging:
    loginShell: /bin/zsh
`

// testEnv is a working directory with schemas, settings and defaults
type testEnv struct {
	ws   *testutil.TestWorkspace
	cfg  *config.Config
	logs *testutil.TestLogger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	ws := testutil.NewWorkspace(t).
		WithSchema("user", userSchema).
		WithSchema("group", groupSchema).
		WithSettings(settingsYAML).
		WithDefaults(defaultsYAML)

	logs := testutil.NewTestLogger(t, false)
	cfg := ws.Config(logs)
	cfg.DryRun = true

	return &testEnv{ws: ws, cfg: cfg, logs: logs}
}

// execute runs cmd with scripted input and returns stdout and the prompts
func execute(cmd *cobra.Command, input string, args ...string) (string, string, error) {
	var stdout, prompts bytes.Buffer
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(input))
	cmd.SetOut(&stdout)
	cmd.SetErr(&prompts)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	err := cmd.Execute()
	return stdout.String(), prompts.String(), err
}

func TestAddCommand(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	stdout, prompts, err := execute(NewAddCommand(env.cfg), "Tom\nFiddle\n\n", "user", "tom.fiddle")
	require.NoError(t, err)

	assert.Equal(t, `dn: uid=tom.fiddle,ou=people,dc=example,dc=com
objectclass: top
objectclass: inetOrgPerson
uid: tom.fiddle
givenName: Tom
sn: Fiddle
cn: Tom Fiddle
loginShell: /bin/bash

`, stdout)
	assert.Contains(t, prompts, "givenName []: ")
	assert.Contains(t, prompts, "cn [Tom Fiddle]: ")
	assert.NotContains(t, prompts, "mail")
	assert.Contains(t, env.logs.GetOutput(), "Adding user entry tom.fiddle")
}

func TestAddCommandPromptsOptional(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.cfg.PromptOptional = true

	input := "Tom\nFiddle\nTommy\ntom@example.com\nhunter2\n555-1234\n\n"
	stdout, prompts, err := execute(NewAddCommand(env.cfg), input, "user", "tom.fiddle")
	require.NoError(t, err)

	assert.Contains(t, stdout, "cn: Tommy\n")
	assert.Contains(t, stdout, "mail: tom@example.com\n")
	assert.Contains(t, stdout, "userPassword: hunter2\n")
	assert.Contains(t, stdout, "telephoneNumber: 555-1234\n")
	assert.Contains(t, stdout, "loginShell: /bin/bash\n")
	assert.Contains(t, prompts, "{secret} userPassword: ")
	assert.Contains(t, prompts, "telephoneNumber: ")
	env.logs.AssertNotContains(t, "hunter2")
}

func TestAddCommandOmitsEmptyOptional(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.cfg.PromptOptional = true

	stdout, _, err := execute(NewAddCommand(env.cfg), "Tom\nFiddle\n\n\n\n\n\n", "user", "tom.fiddle")
	require.NoError(t, err)

	assert.NotContains(t, stdout, "mail")
	assert.NotContains(t, stdout, "userPassword")
	assert.Contains(t, stdout, "loginShell: /bin/bash\n")
}

func TestAddCommandRepository(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.cfg.Repository = "staging"

	stdout, _, err := execute(NewAddCommand(env.cfg), "Tom\nFiddle\n\n", "user", "tom.fiddle")
	require.NoError(t, err)

	assert.Contains(t, stdout, "dn: uid=tom.fiddle,ou=people,dc=staging,dc=example,dc=com\n")
	assert.Contains(t, stdout, "loginShell: /bin/zsh\n")
}

func TestAddCommandUnknownRepositoryWarns(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.cfg.Repository = "stagin"

	stdout, _, err := execute(NewAddCommand(env.cfg), "Tom\nFiddle\n\n", "user", "tom.fiddle")
	require.NoError(t, err)

	assert.Contains(t, stdout, "dn: uid=tom.fiddle,ou=people,dc=example,dc=com\n")
	env.logs.AssertContains(t, "Unable to find repository stagin in settings (available: staging)")
	env.logs.AssertContains(t, "Unable to find repository stagin in defaults")
	env.logs.AssertLogCount(t, "warn", 4)
}

func TestAddCommandRequiredReprompt(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	stdout, prompts, err := execute(NewAddCommand(env.cfg), "\nTom\nFiddle\n\n", "user", "tom.fiddle")
	require.NoError(t, err)

	assert.Contains(t, prompts, "givenName is a required attribute. Please provide input")
	assert.Contains(t, stdout, "givenName: Tom\n")
}

func TestAddCommandMaxAttempts(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.cfg.MaxAttempts = 2

	stdout, _, err := execute(NewAddCommand(env.cfg), "\n\n\n", "user", "tom.fiddle")

	var required dserrors.RequiredAttributeError
	require.True(t, errors.As(err, &required))
	assert.Equal(t, "givenName", required.Attribute)
	assert.Empty(t, stdout)
}

func TestAddCommandMissingBase(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	stdout, prompts, err := execute(NewAddCommand(env.cfg), "developers\n", "group", "developers")

	var missing dserrors.MissingBaseConfigurationError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "group_base", missing.Key())
	assert.Empty(t, stdout)
	assert.Empty(t, prompts)
}

func TestAddCommandUnknownSchema(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	_, _, err := execute(NewAddCommand(env.cfg), "", "usr", "tom")

	var notFound dserrors.SchemaNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, []string{"group", "user"}, notFound.Available)
}

func TestAddCommandWritesFile(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.cfg.DryRun = false
	env.cfg.OutputFile = env.ws.Path("tom.ldif")

	stdout, _, err := execute(NewAddCommand(env.cfg), "Tom\nFiddle\n\n", "user", "tom.fiddle")
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(env.cfg.OutputFile)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "dn: uid=tom.fiddle,ou=people,dc=example,dc=com\n"))
	assert.Contains(t, env.logs.GetOutput(), "Writing ldif to '"+env.cfg.OutputFile+"'")
}

func TestAddCommandDryRunIgnoresFile(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.cfg.OutputFile = env.ws.Path("tom.ldif")

	stdout, _, err := execute(NewAddCommand(env.cfg), "Tom\nFiddle\n\n", "user", "tom.fiddle")
	require.NoError(t, err)

	assert.Contains(t, stdout, "dn: uid=tom.fiddle")
	assert.NoFileExists(t, env.cfg.OutputFile)
}

func TestModifyCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		args     []string
		input    string
		want     string
		warnings bool
	}{
		{
			name: "replace with value",
			args: []string{"user", "tom.fiddle", "replace", "mail", "tom@example.com"},
			want: "dn: uid=tom.fiddle,ou=people,dc=example,dc=com\nchangetype: modify\nreplace: mail\nmail: tom@example.com\n\n",
		},
		{
			name:  "replace prompted",
			args:  []string{"user", "tom.fiddle", "replace", "mail"},
			input: "tom@example.com\n",
			want:  "dn: uid=tom.fiddle,ou=people,dc=example,dc=com\nchangetype: modify\nreplace: mail\nmail: tom@example.com\n\n",
		},
		{
			name:  "secret prompted",
			args:  []string{"user", "tom.fiddle", "replace", "userPassword"},
			input: "n3w-pass\n",
			want:  "dn: uid=tom.fiddle,ou=people,dc=example,dc=com\nchangetype: modify\nreplace: userPassword\nuserPassword: n3w-pass\n\n",
		},
		{
			name:     "secret on command line",
			args:     []string{"user", "tom.fiddle", "replace", "userPassword", "n3w-pass"},
			want:     "dn: uid=tom.fiddle,ou=people,dc=example,dc=com\nchangetype: modify\nreplace: userPassword\nuserPassword: n3w-pass\n\n",
			warnings: true,
		},
		{
			name:     "sensitive on command line",
			args:     []string{"user", "tom.fiddle", "add", "telephoneNumber", "555-1234"},
			want:     "dn: uid=tom.fiddle,ou=people,dc=example,dc=com\nchangetype: modify\nadd: telephoneNumber\ntelephoneNumber: 555-1234\n\n",
			warnings: true,
		},
		{
			name: "delete all values",
			args: []string{"user", "tom.fiddle", "delete", "mail"},
			want: "dn: uid=tom.fiddle,ou=people,dc=example,dc=com\nchangetype: modify\ndelete: mail\n\n",
		},
		{
			name: "delete one value",
			args: []string{"user", "tom.fiddle", "delete", "mail", "old@example.com"},
			want: "dn: uid=tom.fiddle,ou=people,dc=example,dc=com\nchangetype: modify\ndelete: mail\nmail: old@example.com\n\n",
		},
		{
			name: "increment",
			args: []string{"user", "tom.fiddle", "increment", "uidNumber"},
			want: "dn: uid=tom.fiddle,ou=people,dc=example,dc=com\nchangetype: modify\nincrement: uidNumber\n\n",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t)
			stdout, _, err := execute(NewModifyCommand(env.cfg), tt.input, tt.args...)
			require.NoError(t, err)

			assert.Equal(t, tt.want, stdout)
			if tt.warnings {
				env.logs.AssertContains(t, "remove that command from the shell's history")
			} else {
				env.logs.AssertLogCount(t, "warn", 0)
			}
		})
	}
}

func TestModifyCommandSecretPromptIsMasked(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	_, prompts, err := execute(NewModifyCommand(env.cfg), "n3w-pass\n", "user", "tom.fiddle", "replace", "userPassword")
	require.NoError(t, err)

	assert.Contains(t, prompts, "{secret} userPassword: ")
	assert.NotContains(t, prompts, "[")
}

func TestModifyCommandErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		msg  string
	}{
		{name: "unknown operation", args: []string{"user", "tom", "rename", "mail"}, msg: "unknown modify operation"},
		{name: "increment with value", args: []string{"user", "tom", "increment", "uidNumber", "5"}, msg: "increment does not take a value"},
		{name: "missing base", args: []string{"group", "devs", "replace", "gidNumber", "1000"}, msg: "group_base"},
		{name: "too few arguments", args: []string{"user", "tom", "replace"}, msg: "accepts between 4 and 5 arg(s)"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t)
			stdout, _, err := execute(NewModifyCommand(env.cfg), "", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
			assert.Empty(t, stdout)
		})
	}
}

func TestModifyCommandRequiredValueAtEOF(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	_, _, err := execute(NewModifyCommand(env.cfg), "", "user", "tom", "replace", "mail")

	var required dserrors.RequiredAttributeError
	require.True(t, errors.As(err, &required))
	assert.Equal(t, "mail", required.Attribute)
}

func TestSchemasCommand(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	stdout, _, err := execute(NewSchemasCommand(env.cfg), "")
	require.NoError(t, err)
	assert.Equal(t, "group\nuser\n", stdout)

	stdout, _, err = execute(NewSchemasCommand(env.cfg), "", "user")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Type:          user (base setting user_base)")
	assert.Contains(t, stdout, "Objectclasses: top, inetOrgPerson")
	assert.Regexp(t, `uid\s+primary key`, stdout)
	assert.Regexp(t, `givenName\s+required`, stdout)
	assert.Regexp(t, `userPassword\s+optional, secret`, stdout)
	assert.Regexp(t, `telephoneNumber\s+optional, sensitive`, stdout)
}

func TestConvertCommands(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	src := env.ws.Path("export.ldif")
	yml := env.ws.Path("export.yml")
	back := env.ws.Path("back.ldif")
	metrics := env.ws.Path("yamldap.prom")
	env.ws.WriteFile("export.ldif", "dn: uid=a,dc=example,dc=com\nuid: a\n\ndn: uid=b,dc=example,dc=com\nuid: b\n")

	_, _, err := execute(NewLDIF2YAMLCommand(env.cfg), "", src, yml, "--metrics-file", metrics)
	require.NoError(t, err)
	assert.Contains(t, env.logs.GetOutput(), "Converted 2 entries")

	data, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(data), `yamldap_convert_entries_total{direction="ldif2yaml"} 2`)

	_, _, err = execute(NewYAML2LDIFCommand(env.cfg), "", yml, back)
	require.NoError(t, err)

	data, err = os.ReadFile(back)
	require.NoError(t, err)
	assert.Equal(t, "dn: uid=a,dc=example,dc=com\nuid: a\n\ndn: uid=b,dc=example,dc=com\nuid: b\n", string(data))
}

func TestConvertCommandMissingSource(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	_, _, err := execute(NewLDIF2YAMLCommand(env.cfg), "", env.ws.Path("nope.ldif"), env.ws.Path("out.yml"))
	assert.ErrorContains(t, err, "Cannot read source file")
}

func TestCompletionCommand(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	root := &cobra.Command{Use: "yamldap"}
	root.AddCommand(NewCompletionCommand(env.cfg), NewAddCommand(env.cfg))

	stdout, _, err := execute(root, "", "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, stdout, "yamldap")
}

func TestCompleteSchemas(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	names, directive := completeSchemas(env.cfg)(NewAddCommand(env.cfg), nil, "")
	assert.Equal(t, []string{"group", "user"}, names)
	assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)

	attrs, _ := completeModify(env.cfg)(NewModifyCommand(env.cfg), []string{"group", "devs", "replace"}, "")
	assert.Equal(t, []string{"cn", "gidNumber"}, attrs)
}
