package cli

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/navtree/pkg/store"
)

// completionTimeout bounds how long link completion may wait for a backend.
const completionTimeout = 2 * time.Second

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for navtree.

To load completions:

Bash:
  $ source <(navtree completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ navtree completion bash > /etc/bash_completion.d/navtree
  # macOS:
  $ navtree completion bash > $(brew --prefix)/etc/bash_completion.d/navtree

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ navtree completion zsh > "${fpath[1]}/_navtree"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ navtree completion fish | source

  # To load completions for each session, execute once:
  $ navtree completion fish > ~/.config/fish/completions/navtree.fish

PowerShell:
  PS> navtree completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> navtree completion powershell > navtree.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(cmd.OutOrStdout())
			case "zsh":
				return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
			}
			return nil
		},
	}

	return cmd
}

func backendNames() []string { return store.Backends }

// completeLinks completes the first n positional arguments with the links of
// the current collection. Backend failures produce no suggestions.
func (c *CLI) completeLinks(n int) cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
		if len(args) >= n {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		if c.cfg == nil && c.loadConfig() != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		ctx, cancel := context.WithTimeout(context.Background(), completionTimeout)
		defer cancel()
		backend, err := c.openBackend(ctx)
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		defer backend.Close()
		entries, err := backend.Dashboards(ctx)
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		var out []cobra.Completion
		for _, e := range entries {
			if strings.HasPrefix(e.Link, toComplete) {
				out = append(out, cobra.CompletionWithDesc(e.Link, e.Title))
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
}
