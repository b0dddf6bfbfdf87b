package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/awnumar/memguard"
	"github.com/spf13/cobra"

	"github.com/systmms/yamldap/cmd/yamldap/commands"
	"github.com/systmms/yamldap/internal/config"
	dserrors "github.com/systmms/yamldap/internal/errors"
	"github.com/systmms/yamldap/internal/logging"
	"github.com/systmms/yamldap/internal/secure"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	handleSignals()
	defer memguard.Purge()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", dserrors.SimplifyError(err))
		secure.Exit(1)
	}
}

// handleSignals restores the terminal, removes partial output, wipes sealed
// answers and exits with 128+signal
func handleSignals() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		fmt.Fprintln(os.Stderr)
		secure.Exit(128 + int(sig.(syscall.Signal)))
	}()
}

func run() error {
	// Global flags
	var (
		may         bool
		verbose     bool
		dryRun      bool
		outputFile  string
		repository  string
		schemaDir   string
		settings    string
		defaultsDoc string
		noColor     bool
		maxAttempts int
	)

	cfg := &config.Config{}

	rootCmd := &cobra.Command{
		Use:   "yamldap",
		Short: "Generate LDIF for directory entries from YAML schemas",
		Long: `yamldap builds LDIF add and modify records from YAML schema definitions.

Attribute values are collected interactively, with defaults rendered from
templates that may reference answers given earlier. Records are printed or
saved to a file for use with ldapadd/ldapmodify. Bulk LDIF exports can be
converted to YAML and back.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg.Logger = logging.New(verbose, noColor)
			cfg.Paths = config.Paths{SchemaDir: schemaDir, Settings: settings, Defaults: defaultsDoc}
			cfg.Repository = repository
			cfg.PromptOptional = may
			cfg.DryRun = dryRun
			cfg.OutputFile = outputFile
			cfg.MaxAttempts = maxAttempts
			return cfg.ApplyDefaults()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&may, "may", "m", false, "Prompt for optional attributes")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Print extra information")
	flags.BoolVarP(&dryRun, "dry-run", "l", false, "Print the ldif instead of saving it")
	flags.StringVarP(&outputFile, "file", "f", "", "Where to save the ldif")
	flags.StringVarP(&repository, "repo", "r", "", "Name of the repository overriding settings and defaults")
	flags.StringVar(&schemaDir, "schema-dir", "", "Schema directory (default \"schema\")")
	flags.StringVar(&settings, "settings", "", "Settings file (default \"etc/settings.yml\")")
	flags.StringVar(&defaultsDoc, "defaults", "", "Defaults file (default \"etc/defaults.yml\")")
	flags.BoolVar(&noColor, "no-color", false, "Disable colored output")
	flags.IntVar(&maxAttempts, "max-attempts", 0, "Give up on an empty required attribute after N prompts (0 asks forever)")

	rootCmd.AddCommand(
		commands.NewAddCommand(cfg),
		commands.NewModifyCommand(cfg),
		commands.NewLDIF2YAMLCommand(cfg),
		commands.NewYAML2LDIFCommand(cfg),
		commands.NewSchemasCommand(cfg),
		commands.NewCompletionCommand(cfg),
	)

	return rootCmd.Execute()
}
