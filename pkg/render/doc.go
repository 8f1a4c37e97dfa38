// Package render draws the dashboard hierarchy as a Graphviz diagram.
//
// # Overview
//
// [ToDOT] turns the nested projection produced by [hierarchy.ToTree] into
// Graphviz DOT source. Every depth is placed on its own rank so Parents,
// Children and Grandchildren line up as rows, and the favorite entry is
// highlighted. [RenderSVG] lays the DOT source out with the embedded
// Graphviz (goccy/go-graphviz, no system binary required).
//
//	tree := hierarchy.ToTree(entries)
//	dot := render.ToDOT(tree, render.Options{Detailed: true})
//	svg, err := render.RenderSVG(dot)
//
// # Options
//
//   - Detailed: labels show the link and level below the title
//   - Horizontal: lays the ranks out left to right instead of top to bottom
//
// [hierarchy.ToTree]: github.com/matzehuels/navtree/pkg/hierarchy.ToTree
package render
