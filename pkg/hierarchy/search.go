package hierarchy

import (
	"github.com/sahilm/fuzzy"

	"github.com/matzehuels/navtree/pkg/dashboard"
)

// Search returns every node whose title fuzzy-matches query as a flat list of
// childless Parent-level nodes at depth 0, best match first. An empty query
// returns a clone of the whole tree. The input tree is never modified.
func Search(tree []*Node, query string) []*Node {
	if query == "" {
		return Clone(tree)
	}

	var candidates []dashboard.Entry
	Walk(tree, func(n *Node) bool {
		candidates = append(candidates, n.Entry)
		return true
	})

	titles := make([]string, len(candidates))
	for i, e := range candidates {
		titles[i] = e.Title
	}

	matches := fuzzy.Find(query, titles)
	out := make([]*Node, 0, len(matches))
	for _, m := range matches {
		e := candidates[m.Index].Flat()
		e.Level = dashboard.Parent
		e.Parent = ""
		out = append(out, newNode(e, 0))
	}
	return out
}
