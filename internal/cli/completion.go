package cli

import (
	"github.com/spf13/cobra"
)

// completionCmd generates shell completion scripts.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var completionCmd = &cobra.Command{
	Use:     "completion [bash|zsh|fish|powershell]",
	Short:   "Generate shell completion script",
	GroupID: groupConfig,
	Long: `Generate shell completion scripts for tyche.

To load completions:

Bash:
  $ source <(tyche completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ tyche completion bash > /etc/bash_completion.d/tyche
  # macOS:
  $ tyche completion bash > $(brew --prefix)/etc/bash_completion.d/tyche

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ tyche completion zsh > "${fpath[1]}/_tyche"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ tyche completion fish | source

  # To load completions for each session, execute once:
  $ tyche completion fish > ~/.config/fish/completions/tyche.fish

PowerShell:
  PS> tyche completion powershell | Out-String | Invoke-Expression
`,
	Example: `  tyche completion bash
  tyche completion zsh > "${fpath[1]}/_tyche"`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return cmd.Root().GenBashCompletion(w)
		case "zsh":
			return cmd.Root().GenZshCompletion(w)
		case "fish":
			return cmd.Root().GenFishCompletion(w, true)
		case "powershell":
			return cmd.Root().GenPowerShellCompletionWithDesc(w)
		}
		return nil
	},
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(completionCmd)
}
