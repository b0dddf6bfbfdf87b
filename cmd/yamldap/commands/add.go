package commands

import (
	"github.com/spf13/cobra"

	"github.com/systmms/yamldap/internal/answers"
	"github.com/systmms/yamldap/internal/config"
	"github.com/systmms/yamldap/internal/ldif"
)

func NewAddCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <schema> <identifier>",
		Short: "Generate an add record for a new entry",
		Long: `Generate an LDIF add record for a new entry.

The first required attribute of the schema is the primary key and takes the
identifier given on the command line. The remaining required attributes are
prompted for; a rendered default is offered in brackets and accepted with
Enter. Optional attributes are prompted for with --may, otherwise they are
filled from their defaults.

Examples:
  # Print the record for a new user
  yamldap add user tom.fiddle --dry-run

  # Also ask for optional attributes and save to a file
  yamldap add user tom.fiddle --may --file tom.ldif

  # Use settings and defaults of the staging repository
  yamldap add group developers --repo staging`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeSchemas(cfg),
		RunE: func(cmd *cobra.Command, args []string) error {
			schemaName, identifier := args[0], args[1]

			cfg.Logger.Info("Adding %s entry %s", schemaName, identifier)

			s, err := cfg.LoadSchema(schemaName)
			if err != nil {
				return err
			}

			settings, err := cfg.LoadSettings()
			if err != nil {
				return err
			}
			// Fail before prompting when the record cannot be generated
			if _, err := settings.Base(s.Type); err != nil {
				return err
			}

			defaults, err := cfg.LoadDefaults(s)
			if err != nil {
				return err
			}

			set := answers.New()
			defer set.Destroy()

			pk, required := s.Split()
			set.Set(pk.Name, identifier)

			collector := newCollector(cmd, cfg, s)
			if err := collector.Collect(set, required, defaults, true); err != nil {
				return err
			}

			if cfg.PromptOptional {
				err = collector.Collect(set, s.Optional, defaults, false)
			} else {
				err = collector.FillDefaults(set, s.Optional, defaults)
			}
			if err != nil {
				return err
			}

			cfg.Logger.Dump("Answers", set.Redacted())

			rec, err := ldif.NewGenerator(settings).BuildAdd(s, set)
			if err != nil {
				return err
			}
			return emit(cmd, cfg, rec)
		},
	}

	return cmd
}
