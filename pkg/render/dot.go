package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/navtree/pkg/dashboard"
	"github.com/matzehuels/navtree/pkg/hierarchy"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds the link and level to every node label.
	// When false, only the title is shown.
	Detailed bool

	// Horizontal sets rankdir=LR.
	Horizontal bool
}

var levelFill = [...]string{"white", "aliceblue", "whitesmoke"}

// ToDOT converts a nested hierarchy to Graphviz DOT source.
//
// Nodes are keyed by link. Nodes of equal depth share a rank, and the
// favorite is drawn with a bold gold outline.
func ToDOT(tree []*hierarchy.Node, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	if opts.Horizontal {
		buf.WriteString("  rankdir=LR;\n")
	} else {
		buf.WriteString("  rankdir=TB;\n")
	}
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=20, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	var ranks [dashboard.MaxDepth + 1][]string
	var edges [][2]string
	var visit func(nodes []*hierarchy.Node, depth int)
	visit = func(nodes []*hierarchy.Node, depth int) {
		for _, n := range nodes {
			attrs := fmtAttrs(n, depth, opts.Detailed)
			fmt.Fprintf(&buf, "  %q [%s];\n", n.Link, strings.Join(attrs, ", "))
			if depth < len(ranks) {
				ranks[depth] = append(ranks[depth], n.Link)
			}
			for _, c := range n.Children {
				edges = append(edges, [2]string{n.Link, c.Link})
			}
			visit(n.Children, depth+1)
		}
	}
	visit(tree, 0)

	for depth, links := range ranks {
		if len(links) < 2 {
			continue
		}
		fmt.Fprintf(&buf, "\n  { rank=same; // %s\n", dashboard.Level(depth))
		for _, l := range links {
			fmt.Fprintf(&buf, "    %q;\n", l)
		}
		buf.WriteString("  }\n")
	}

	if len(edges) > 0 {
		buf.WriteString("\n")
	}
	for _, e := range edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e[0], e[1])
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *hierarchy.Node, depth int, detailed bool) string {
	title := n.Title
	if title == "" {
		title = n.Link
	}
	if !detailed {
		return title
	}
	level, ok := dashboard.LevelAt(depth)
	if !ok {
		level = n.Level
	}
	return fmt.Sprintf("%s\n/%s\n%s", title, n.Link, level)
}

func fmtAttrs(n *hierarchy.Node, depth int, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, depth, detailed))}
	if depth < len(levelFill) && depth > 0 {
		attrs = append(attrs, "fillcolor="+levelFill[depth])
	}
	if n.IsMain {
		attrs = append(attrs, "color=goldenrod", "penwidth=3", "fontname=\"Helvetica-Bold\"")
	}
	return attrs
}

// RenderSVG renders DOT source to SVG using the embedded Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a plain
// viewBox so the SVG scales when embedded.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
