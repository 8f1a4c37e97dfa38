package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/navtree/pkg/dashboard"
	"github.com/matzehuels/navtree/pkg/errors"
	"github.com/matzehuels/navtree/pkg/hierarchy"
	navio "github.com/matzehuels/navtree/pkg/io"
	"github.com/matzehuels/navtree/pkg/navigation"
	"github.com/matzehuels/navtree/pkg/validate"
)

// treeCommand prints the nested hierarchy.
func (c *CLI) treeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Show the dashboard hierarchy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openSession(cmd.Context(), sessionOptions{})
			if err != nil {
				return err
			}
			defer s.close()

			entries := s.svc.Collection()
			if len(entries) == 0 {
				printInfo("No dashboards yet")
				printNextStep("Create one", `navtree add "Sales Q1"`)
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTree(s.svc.Tree()))
			printCounts(entries)
			return nil
		},
	}
}

// listCommand prints the flat collection as a table, JSON or YAML.
func (c *CLI) listCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List dashboards in persisted order",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openSession(cmd.Context(), sessionOptions{})
			if err != nil {
				return err
			}
			defer s.close()

			entries := s.svc.Collection()
			if format == "" || format == "table" {
				writeLine(cmd.OutOrStdout(), renderTable(entries))
				return nil
			}
			f, err := navio.ParseFormat(format)
			if err != nil {
				return err
			}
			return navio.Write(cmd.OutOrStdout(), entries, f)
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", "table", "output format: table, json, yaml")
	_ = cmd.RegisterFlagCompletionFunc("output", cobra.FixedCompletions([]string{"table", "json", "yaml"}, cobra.ShellCompDirectiveNoFileComp))
	return cmd
}

// addCommand appends a new Parent-level dashboard.
func (c *CLI) addCommand() *cobra.Command {
	var (
		link     string
		favorite bool
	)
	cmd := &cobra.Command{
		Use:   "add TITLE",
		Short: "Add a top-level dashboard and scaffold its report",
		Long: `Add a top-level dashboard. The link defaults to the slug of the title
("Sales Q1" becomes sales-q1). The first dashboard of an empty collection
becomes the favorite.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.openSession(ctx, sessionOptions{navigate: printNavigate})
			if err != nil {
				return err
			}

			change := navigation.Change{
				Kind:    dashboard.Added,
				Current: dashboard.Entry{Title: args[0], Link: link, IsMain: favorite},
			}
			if err := s.svc.Apply(ctx, change); err != nil {
				_ = s.close()
				return err
			}
			if err := s.finish(ctx); err != nil {
				return err
			}

			added := s.svc.Collection()
			e := added[len(added)-1]
			printSuccess("Added %s", StyleValue.Render(e.Title))
			printFile(e.ReportPath())
			if e.IsMain {
				printDetail("%s favorite", iconFavorite)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&link, "link", "", "link (defaults to the slug of the title)")
	cmd.Flags().BoolVar(&favorite, "favorite", false, "make the new dashboard the favorite")
	return cmd
}

// renameCommand changes a dashboard's title and, derived from it, its link.
func (c *CLI) renameCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "rename LINK TITLE",
		Short:             "Rename a dashboard; children and its report follow the new link",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: c.completeLinks(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.openSession(ctx, sessionOptions{navigate: printNavigate})
			if err != nil {
				return err
			}

			prev, ok := dashboard.Find(s.svc.Collection(), args[0])
			if !ok {
				_ = s.close()
				return notFound(args[0])
			}
			change := navigation.Change{
				Kind:     dashboard.Renamed,
				Previous: &prev,
				Current:  dashboard.Entry{Title: args[1]},
			}
			if err := s.svc.Apply(ctx, change); err != nil {
				_ = s.close()
				return err
			}
			if err := s.finish(ctx); err != nil {
				return err
			}

			newLink := validate.Slug(args[1])
			printSuccess("Renamed %s %s %s", StyleLink.Render(prev.Link), iconArrow, StyleLink.Render(newLink))
			return nil
		},
	}
}

// deleteCommand removes a dashboard with its descendants.
func (c *CLI) deleteCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:               "delete LINK",
		Aliases:           []string{"rm"},
		Short:             "Delete a dashboard, its descendants and their reports",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeLinks(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.openSession(ctx, sessionOptions{navigate: printNavigate})
			if err != nil {
				return err
			}

			node := hierarchy.Find(s.svc.Tree(), args[0])
			if node == nil {
				_ = s.close()
				return notFound(args[0])
			}
			removed := hierarchy.Len([]*hierarchy.Node{node})
			if removed > 1 && !yes {
				_ = s.close()
				return errors.New(errors.ErrCodeInvalidInput,
					"%s has %d descendants; pass --yes to delete them too", args[0], removed-1)
			}

			change := navigation.Change{Kind: dashboard.Deleted, Current: node.Entry}
			if err := s.svc.Apply(ctx, change); err != nil {
				_ = s.close()
				return err
			}
			if err := s.finish(ctx); err != nil {
				return err
			}
			printSuccess("Deleted %d dashboard(s)", removed)
			if fav, ok := s.svc.Favorite(); ok {
				printDetail("%s favorite is %s", iconFavorite, fav.Link)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "also delete descendants without asking")
	return cmd
}

// favoriteCommand selects the default landing dashboard.
func (c *CLI) favoriteCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "favorite LINK",
		Short:             "Make a dashboard the favorite",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeLinks(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.openSession(ctx, sessionOptions{})
			if err != nil {
				return err
			}
			change := navigation.Change{Kind: dashboard.FavoriteSelected, Current: dashboard.Entry{Link: args[0]}}
			if err := s.svc.Apply(ctx, change); err != nil {
				_ = s.close()
				return err
			}
			if err := s.finish(ctx); err != nil {
				return err
			}
			printSuccess("%s %s is the favorite", iconFavorite, StyleLink.Render(args[0]))
			return nil
		},
	}
}

// moveCommand performs a drop: DRAGGED lands above, below or inside TARGET.
func (c *CLI) moveCommand() *cobra.Command {
	var zone string
	cmd := &cobra.Command{
		Use:   "move DRAGGED TARGET",
		Short: "Move a dashboard next to or into another one",
		Long: `Move DRAGGED relative to TARGET:

  --zone above    DRAGGED becomes the previous sibling of TARGET
  --zone below    DRAGGED becomes the next sibling of TARGET
  --zone center   DRAGGED becomes the last child of TARGET

Moves that would nest anything deeper than Grandchild are rejected.`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: c.completeLinks(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			z, err := dashboard.ParseZone(zone)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid --zone")
			}

			ctx := cmd.Context()
			s, err := c.openSession(ctx, sessionOptions{})
			if err != nil {
				return err
			}
			if err := s.svc.Drop(ctx, args[0], args[1], z); err != nil {
				_ = s.close()
				return err
			}
			if err := s.finish(ctx); err != nil {
				return err
			}

			moved, _ := dashboard.Find(s.svc.Collection(), args[0])
			printSuccess("Moved %s %s %s", StyleLink.Render(args[0]), strings.ToLower(z.String()), StyleLink.Render(args[1]))
			printDetail("now a %s", moved.Level)
			return nil
		},
	}
	cmd.Flags().StringVar(&zone, "zone", "below", "drop zone: above, center, below")
	_ = cmd.RegisterFlagCompletionFunc("zone", cobra.FixedCompletions([]string{"above", "center", "below"}, cobra.ShellCompDirectiveNoFileComp))
	return cmd
}

// searchCommand fuzzy-matches titles and prints the matching branches.
func (c *CLI) searchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "search QUERY",
		Short: "Fuzzy-search dashboard titles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openSession(cmd.Context(), sessionOptions{})
			if err != nil {
				return err
			}
			defer s.close()

			matches := hierarchy.Search(s.svc.Tree(), args[0])
			if len(matches) == 0 {
				printInfo("No dashboards match %q", args[0])
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTree(matches))
			return nil
		},
	}
}

func printNavigate(url string) {
	printDetail("%s %s", iconArrow, url)
}

func notFound(link string) error {
	return errors.New(errors.ErrCodeNotFound, "no dashboard with link %q", link)
}
