package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/navtree/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// Global flags:
//   - --config: config file (default $XDG_CONFIG_HOME/navtree/config.toml)
//   - --url: remote store server; overrides client.url and NAVTREE_URL
//   - --backend, --data-dir: local backend when no server URL is set
//   - --verbose (-v): debug-level logging
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "navtree",
		Short: "navtree manages a three-level dashboard navigation hierarchy",
		Long: `navtree keeps a hierarchy of dashboards (Parent, Child and Grandchild
entries) in a remote store. It validates titles and links, cascades renames and
deletes to report documents, keeps exactly one favorite and checks every move
against the three-level depth limit.

Commands talk to a navtree server when a URL is configured and open a local
backend (file, sqlite, postgres, redis, mongo) otherwise.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/navtree/config.toml)")
	flags.StringVar(&c.url, "url", "", "navtree server URL (overrides config and NAVTREE_URL)")
	flags.StringVar(&c.backend, "backend", "", "local backend: memory, file, sqlite, postgres, redis, mongo")
	flags.StringVar(&c.dataDir, "data-dir", "", "data directory for the file and sqlite backends")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	_ = root.RegisterFlagCompletionFunc("backend", cobra.FixedCompletions(backendNames(), cobra.ShellCompDirectiveNoFileComp))

	// Register all subcommands
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.addCommand())
	root.AddCommand(c.renameCommand())
	root.AddCommand(c.deleteCommand())
	root.AddCommand(c.favoriteCommand())
	root.AddCommand(c.moveCommand())
	root.AddCommand(c.searchCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.tuiCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
