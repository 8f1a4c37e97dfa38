package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/navtree/pkg/dashboard"
	"github.com/matzehuels/navtree/pkg/errors"
	"github.com/matzehuels/navtree/pkg/hierarchy"
	navio "github.com/matzehuels/navtree/pkg/io"
	"github.com/matzehuels/navtree/pkg/navigation"
)

// checkCommand validates a collection file or the stored collection.
func (c *CLI) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check [FILE]",
		Short: "Validate a collection file, or the stored collection",
		Long: `Validate titles, links, parent links and the favorite of a collection.

Without FILE the stored collection is checked as persisted, before the
orphan clean-up that every other command performs on load.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				entries []dashboard.Entry
				source  string
				err     error
			)
			if len(args) == 1 {
				source = args[0]
				entries, err = navio.ImportFile(source)
			} else {
				source = "store"
				entries, err = c.storedEntries(cmd.Context())
			}
			if err != nil {
				return err
			}

			for _, o := range hierarchy.NewForest(entries).Orphans() {
				printWarning("orphan %s (parent %q): %s", o.Link, o.Parent, o.Reason)
			}
			if err := navio.Validate(entries); err != nil {
				printError("%s is invalid", source)
				return err
			}
			printSuccess("%s is valid", source)
			printCounts(entries)
			return nil
		},
	}
}

// storedEntries fetches the collection without going through the service,
// so orphans are kept.
func (c *CLI) storedEntries(ctx context.Context) ([]dashboard.Entry, error) {
	backend, err := c.openBackend(ctx)
	if err != nil {
		return nil, err
	}
	defer backend.Close()
	return backend.Dashboards(ctx)
}

// exportCommand writes the collection to a file or stdout.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		output string
		format string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the collection as JSON or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openSession(cmd.Context(), sessionOptions{})
			if err != nil {
				return err
			}
			defer s.close()
			entries := s.svc.Collection()

			if output != "" {
				if err := navio.ExportFile(output, entries); err != nil {
					return err
				}
				printSuccess("Exported %d dashboards", len(entries))
				printFile(output)
				return nil
			}
			f, err := navio.ParseFormat(format)
			if err != nil {
				return err
			}
			return navio.Write(cmd.OutOrStdout(), entries, f)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file; format from its extension (default stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "stdout format: json, yaml")
	return cmd
}

// importCommand replaces the collection with the contents of a file.
func (c *CLI) importCommand() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Replace the collection with a JSON or YAML file",
		Long: `Replace the whole collection with the contents of FILE.

The file must pass the same checks as 'navtree check'. Existing report
documents are not touched; scaffold reports for new links with 'navtree add'
or through the server.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := navio.ImportFile(args[0])
			if err != nil {
				return err
			}
			if err := navio.Validate(entries); err != nil {
				return errors.Wrap(errors.GetCode(err), err, "refusing to import %s", args[0])
			}
			if dryRun {
				printSuccess("%s is valid; nothing imported (--dry-run)", args[0])
				printCounts(entries)
				return nil
			}

			ctx := cmd.Context()
			s, err := c.openSession(ctx, sessionOptions{})
			if err != nil {
				return err
			}
			prog := newProgress(c.Logger)
			if err := s.svc.Apply(ctx, navigation.Change{Kind: dashboard.Rearranged, Entries: entries}); err != nil {
				_ = s.close()
				return err
			}
			if err := s.finish(ctx); err != nil {
				return err
			}
			prog.done("Import complete")
			printSuccess("Imported %d dashboards", len(entries))
			printCounts(s.svc.Collection())
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate FILE without importing it")
	return cmd
}
