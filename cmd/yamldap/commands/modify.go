package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/systmms/yamldap/internal/config"
	dserrors "github.com/systmms/yamldap/internal/errors"
	"github.com/systmms/yamldap/internal/ldif"
	"github.com/systmms/yamldap/internal/schema"
)

func NewModifyCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modify <schema> <key> {replace|add|delete|increment} <attribute> [value]",
		Short: "Generate a modify record for an existing entry",
		Long: `Generate an LDIF modify record changing one attribute of an entry.

The entry is addressed by the value of its primary key attribute. When the
value is left out it is prompted for; secret attributes are read without
echo. Passing a secret or sensitive value on the command line works but
leaves it in your shell history.

Examples:
  # Replace the mail address of a user
  yamldap modify user tom.fiddle replace mail tom@example.com

  # Set a new password, prompted without echo
  yamldap modify user tom.fiddle replace userPassword

  # Remove every value of an attribute
  yamldap modify user tom.fiddle delete telephoneNumber

  # Increment a counter attribute
  yamldap modify group developers increment gidNumber`,
		Args:              cobra.RangeArgs(4, 5),
		ValidArgsFunction: completeModify(cfg),
		RunE: func(cmd *cobra.Command, args []string) error {
			schemaName, key, attrName := args[0], args[1], args[3]

			op, err := ldif.ParseOperation(args[2])
			if err != nil {
				return dserrors.UserError{
					Message:    err.Error(),
					Suggestion: "Run 'yamldap modify --help' for usage",
				}
			}

			given := len(args) == 5
			if given && !op.CarriesValue() {
				return dserrors.UserError{
					Message:    fmt.Sprintf("%s does not take a value", op),
					Suggestion: fmt.Sprintf("Run 'yamldap modify %s %s %s %s'", schemaName, key, op, attrName),
				}
			}

			s, err := cfg.LoadSchema(schemaName)
			if err != nil {
				return err
			}

			settings, err := cfg.LoadSettings()
			if err != nil {
				return err
			}
			gen := ldif.NewGenerator(settings)
			if _, err := gen.DN(s, key); err != nil {
				return err
			}

			attr, ok := s.Attribute(attrName)
			if !ok {
				cfg.Logger.Debug("Attribute %s is not part of schema %s", attrName, s.Name)
				attr = schema.Attribute{Name: attrName}
			}

			var value string
			switch {
			case given:
				value = args[4]
				if attr.Secret || attr.Sensitive {
					cfg.Logger.Warn("Oops! Looks like you specified a sensitive value on the shell.")
					cfg.Logger.Warn("You might want to remove that command from the shell's history.")
				}
			case op.CarriesValue():
				required := op == ldif.OpAdd || op == ldif.OpReplace
				value, err = newCollector(cmd, cfg, s).Ask(attr, required)
				if err != nil {
					return err
				}
			}

			rec, err := gen.BuildModify(s, key, op, []ldif.Item{{Attribute: attrName, Value: value}})
			if err != nil {
				return err
			}
			return emit(cmd, cfg, rec)
		},
	}

	return cmd
}

func completeModify(cfg *config.Config) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	schemas := completeSchemas(cfg)
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		switch len(args) {
		case 0:
			return schemas(cmd, args, toComplete)
		case 2:
			ops := make([]string, len(ldif.Operations))
			for i, op := range ldif.Operations {
				ops[i] = string(op)
			}
			return ops, cobra.ShellCompDirectiveNoFileComp
		case 3:
			s, err := completionLoader(cfg).Load(args[0])
			if err != nil {
				return nil, cobra.ShellCompDirectiveError
			}
			return s.Names(), cobra.ShellCompDirectiveNoFileComp
		}
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
}
