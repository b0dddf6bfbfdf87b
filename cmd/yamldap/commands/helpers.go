package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/systmms/yamldap/internal/config"
	"github.com/systmms/yamldap/internal/output"
	"github.com/systmms/yamldap/internal/prompt"
	"github.com/systmms/yamldap/internal/schema"
	"github.com/systmms/yamldap/internal/template"
)

// newCollector reads answers from the command's input and prompts on its
// error stream so stdout only carries records. Masked input is used when the
// command reads the real terminal.
func newCollector(cmd *cobra.Command, cfg *config.Config, s *schema.Schema) *prompt.Collector {
	var secrets prompt.SecretReader
	if in, ok := cmd.InOrStdin().(*os.File); ok {
		secrets = prompt.TerminalSecretReader{In: in, Out: cmd.ErrOrStderr()}
	}

	c := prompt.New(cmd.InOrStdin(), cmd.ErrOrStderr(), secrets, template.New(s.Names(), cfg.Logger), cfg.Logger)
	c.MaxAttempts = cfg.MaxAttempts
	return c
}

// emit prints the record on a dry run or when no file was given
func emit(cmd *cobra.Command, cfg *config.Config, lines []string) error {
	path := cfg.OutputFile
	if cfg.DryRun {
		path = ""
	}
	sink := &output.Sink{Stdout: cmd.OutOrStdout(), Logger: cfg.Logger}
	_, err := sink.Emit(lines, path)
	return err
}

// completeSchemas offers schema names for the first positional argument
func completeSchemas(cfg *config.Config) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		names, err := completionLoader(cfg).List()
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	}
}

// completionLoader tolerates a config whose defaults were never applied
func completionLoader(cfg *config.Config) *schema.Loader {
	if cfg.Paths.SchemaDir == "" {
		_ = cfg.ApplyDefaults()
	}
	return cfg.SchemaLoader()
}

func isRequired(attrs []schema.Attribute, name string) bool {
	for _, attr := range attrs {
		if attr.Name == name {
			return true
		}
	}
	return false
}
