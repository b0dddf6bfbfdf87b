package commands

import (
	"github.com/spf13/cobra"

	"github.com/systmms/yamldap/internal/config"
)

// NewCompletionCommand generates shell completion scripts. Schema names and
// modify operations complete from the configured schema directory.
func NewCompletionCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for yamldap.

Schema names, modify operations and schema attributes are completed from
the schema directory (--schema-dir, default ./schema).

Bash:
  $ source <(yamldap completion bash)

Zsh:
  $ yamldap completion zsh > "${fpath[1]}/_yamldap"

Fish:
  $ yamldap completion fish | source

PowerShell:
  PS> yamldap completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			root := cmd.Root()

			cfg.Logger.Debug("Generating %s completion", args[0])
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, true)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			default:
				return root.GenPowerShellCompletionWithDesc(out)
			}
		},
	}

	return cmd
}
