package cli

import (
	"context"
	stderrors "errors"

	"github.com/spf13/cobra"

	"github.com/matzehuels/navtree/internal/config"
	"github.com/matzehuels/navtree/internal/server"
	"github.com/matzehuels/navtree/pkg/store"
)

// serveCommand runs the HTTP remote store over the configured backend.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboards API over the configured backend",
		Long: `Serve the navtree remote store API (see 'navtree help') on --addr.

The backend comes from the [server] section of the config file, or from
--backend and --data-dir. With the file backend, edits to dashboards.json
made by other processes are pushed to /dashboards/watch subscribers.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config()
			if addr == "" {
				addr = cfg.Server.Addr
			}
			ctx := cmd.Context()
			sc := cfg.Server.StoreConfig()
			backend, err := store.Open(ctx, sc)
			if err != nil {
				return err
			}
			defer backend.Close()

			srv, err := server.New(backend,
				server.WithLogger(c.Logger),
				server.WithBackendName(store.Describe(sc)),
			)
			if err != nil {
				return err
			}
			printInfo("Serving on %s", StyleLink.Render("http://"+addr))
			printDetail("backend: %s", store.Describe(sc))
			printNextStep("Point clients at it", "export NAVTREE_URL=http://"+addr)

			err = srv.Run(ctx, addr)
			if stderrors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, "+config.DefaultAddr+")")
	return cmd
}
