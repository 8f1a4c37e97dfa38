package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/navtree/pkg/dashboard"
	"github.com/matzehuels/navtree/pkg/errors"
	"github.com/matzehuels/navtree/pkg/hierarchy"
	navio "github.com/matzehuels/navtree/pkg/io"
	"github.com/matzehuels/navtree/pkg/render"
)

const (
	formatDOT = "dot"
	formatSVG = "svg"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output     string // output file path; stdout when empty
	input      string // render a collection file instead of the store
	format     string // "dot" or "svg"; defaults from the output extension
	detailed   bool   // show link and level in node labels
	horizontal bool   // lay levels out left to right
}

// renderCommand draws the hierarchy with Graphviz.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the hierarchy as a Graphviz diagram (DOT or SVG)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := renderFormat(opts)
			if err != nil {
				return err
			}

			prog := newProgress(c.Logger)
			entries, err := c.loadEntries(cmd, opts.input)
			if err != nil {
				return err
			}
			dot := render.ToDOT(hierarchy.ToTree(entries), render.Options{
				Detailed:   opts.detailed,
				Horizontal: opts.horizontal,
			})

			out := []byte(dot)
			if format == formatSVG {
				spinner := newSpinnerWithContext(cmd.Context(), "Laying out graph...")
				spinner.Start()
				out, err = render.RenderSVG(dot)
				if err != nil {
					spinner.StopWithError("Layout failed")
					return errors.Wrap(errors.ErrCodeInternal, err, "render svg")
				}
				spinner.Stop()
			}

			if opts.output == "" {
				_, err := cmd.OutOrStdout().Write(out)
				return err
			}
			if err := os.WriteFile(opts.output, out, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", opts.output, err)
			}
			prog.done(fmt.Sprintf("Rendered %d dashboards", len(entries)))
			printSuccess("Rendered %s", strings.ToUpper(format))
			printFile(opts.output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "render a JSON or YAML collection file instead of the store")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: dot, svg (default from output extension, else dot)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show link and level in node labels")
	cmd.Flags().BoolVar(&opts.horizontal, "horizontal", false, "lay out levels left to right")
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions([]string{formatDOT, formatSVG}, cobra.ShellCompDirectiveNoFileComp))
	return cmd
}

func renderFormat(opts renderOpts) (string, error) {
	format := strings.ToLower(opts.format)
	if format == "" {
		format = formatDOT
		if strings.EqualFold(filepath.Ext(opts.output), ".svg") {
			format = formatSVG
		}
	}
	if format != formatDOT && format != formatSVG {
		return "", errors.New(errors.ErrCodeUnsupported, "unsupported render format %q (want dot or svg)", opts.format)
	}
	return format, nil
}

// loadEntries reads a collection file when path is set and the store
// otherwise.
func (c *CLI) loadEntries(cmd *cobra.Command, path string) ([]dashboard.Entry, error) {
	if path != "" {
		return navio.ImportFile(path)
	}
	s, err := c.openSession(cmd.Context(), sessionOptions{})
	if err != nil {
		return nil, err
	}
	defer s.close()
	return s.svc.Collection(), nil
}
