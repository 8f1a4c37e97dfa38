package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/navtree/internal/server"
	"github.com/matzehuels/navtree/pkg/dashboard"
	"github.com/matzehuels/navtree/pkg/errors"
	"github.com/matzehuels/navtree/pkg/hierarchy"
)

// watchCommand follows collection changes until interrupted.
func (c *CLI) watchCommand() *cobra.Command {
	var showTree bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the collection whenever it changes",
		Long: `Follow the collection until interrupted.

With a server URL the /dashboards/watch websocket feed is used. With the
local file backend, dashboards.json is watched on disk. Other backends
cannot be watched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			backend, err := c.openBackend(ctx)
			if err != nil {
				return err
			}
			defer backend.Close()

			w, ok := backend.(server.Watcher)
			if !ok {
				return errors.New(errors.ErrCodeUnsupported, "the %s backend cannot be watched", c.Config().Server.Backend)
			}

			printInfo("Watching for changes (Ctrl+C to stop)")
			out := cmd.OutOrStdout()
			err = w.Watch(ctx, func(entries []dashboard.Entry) {
				fmt.Fprintln(out, StyleDim.Render(time.Now().Format("15:04:05")))
				if showTree {
					fmt.Fprint(out, renderTree(hierarchy.ToTree(entries)))
				}
				printCounts(entries)
			})
			if ctx.Err() != nil {
				return nil
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&showTree, "tree", true, "print the hierarchy on every change")
	return cmd
}
