package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/systmms/yamldap/internal/config"
)

func NewSchemasCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schemas [name]",
		Short: "List schemas or show the attributes of one",
		Long: `List the schemas found in the schema directory.

With a name, show the schema's type, objectclasses and attributes. The
first required attribute is the primary key.

Examples:
  yamldap schemas
  yamldap schemas user`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeSchemas(cfg),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				names, err := cfg.SchemaLoader().List()
				if err != nil {
					return err
				}
				if len(names) == 0 {
					cfg.Logger.Warn("No schemas found in %s", cfg.Paths.SchemaDir)
					return nil
				}
				for _, name := range names {
					fmt.Fprintln(out, name)
				}
				return nil
			}

			s, err := cfg.LoadSchema(args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Schema:        %s\n", s.Name)
			fmt.Fprintf(out, "Type:          %s (base setting %s)\n", s.Type, s.BaseKey())
			fmt.Fprintf(out, "Objectclasses: %s\n", strings.Join(s.ObjectClasses, ", "))
			fmt.Fprintln(out, "Attributes:")
			pk, _ := s.Split()
			for _, attr := range s.Attributes() {
				var flags []string
				switch {
				case attr.Name == pk.Name:
					flags = append(flags, "primary key")
				case isRequired(s.Required, attr.Name):
					flags = append(flags, "required")
				default:
					flags = append(flags, "optional")
				}
				if attr.Secret {
					flags = append(flags, "secret")
				}
				if attr.Sensitive {
					flags = append(flags, "sensitive")
				}
				fmt.Fprintf(out, "  %-24s %s\n", attr.Name, strings.Join(flags, ", "))
			}
			return nil
		},
	}

	return cmd
}
