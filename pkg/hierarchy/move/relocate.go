package move

import (
	"slices"

	"github.com/matzehuels/navtree/pkg/dashboard"
	"github.com/matzehuels/navtree/pkg/hierarchy"
)

// slot addresses a node through the slice that holds it.
type slot struct {
	siblings *[]*hierarchy.Node
	index    int
}

func (s slot) node() *hierarchy.Node { return (*s.siblings)[s.index] }

// Relocate returns a new tree in which dragged has been moved next to or into
// target. The input tree is never modified. When the drop is illegal, either
// node cannot be located, or the result would exceed the depth limit, the
// input tree itself is returned.
func Relocate(tree []*hierarchy.Node, dragged, target *hierarchy.Node, zone dashboard.Zone) []*hierarchy.Node {
	if !IsDropLegal(target, dragged, zone) {
		return tree
	}

	work := hierarchy.Clone(tree)
	hierarchy.Walk(work, func(n *hierarchy.Node) bool {
		n.Moved = false
		return true
	})

	src, ok := locate(&work, dragged.Entry)
	if !ok {
		return tree
	}
	dst, ok := locate(&work, target.Entry)
	if !ok {
		return tree
	}

	moved := hierarchy.CloneNode(src.node())
	src.node().Moved = true

	into := dst.node()
	switch zone {
	case dashboard.Center:
		level, ok := into.Level.Deeper()
		if !ok {
			return tree
		}
		restamp(moved, level, into.Link, into.Depth+1)
		into.Children = append(into.Children, moved)
	case dashboard.Above, dashboard.Below:
		restamp(moved, into.Level, into.Parent, into.Depth)
		at := dst.index
		if zone == dashboard.Below {
			at++
		}
		*dst.siblings = slices.Insert(*dst.siblings, at, moved)
	}

	out := Prune(work)
	if hierarchy.MaxDepth(out) > dashboard.MaxDepth {
		return tree
	}
	return out
}

// locate finds want level by level: every Parent first, then every Child,
// then every Grandchild. A node matches when both its link and its parent
// link equal the wanted entry's.
func locate(tree *[]*hierarchy.Node, want dashboard.Entry) (slot, bool) {
	level := []*[]*hierarchy.Node{tree}
	for depth := 0; depth <= dashboard.MaxDepth && len(level) > 0; depth++ {
		var next []*[]*hierarchy.Node
		for _, siblings := range level {
			for i, n := range *siblings {
				if n.Link == want.Link && n.Parent == want.Parent {
					return slot{siblings: siblings, index: i}, true
				}
				if len(n.Children) > 0 {
					next = append(next, &n.Children)
				}
			}
		}
		level = next
	}
	return slot{}, false
}

// restamp rewrites level, parent link and depth of n and its subtree. Levels
// beyond Grandchild are stamped as invalid and rejected by the depth check.
func restamp(n *hierarchy.Node, level dashboard.Level, parent string, depth int) {
	n.Level = level
	n.Parent = parent
	if level == dashboard.Parent {
		n.Parent = ""
	}
	n.Depth = depth
	for _, c := range n.Children {
		restamp(c, level+1, n.Link, depth+1)
	}
}

// Prune returns a new tree without the nodes tagged as moved and without
// their subtrees. The input is not modified.
func Prune(tree []*hierarchy.Node) []*hierarchy.Node {
	out := make([]*hierarchy.Node, 0, len(tree))
	for _, n := range tree {
		if n.Moved {
			continue
		}
		out = append(out, &hierarchy.Node{Entry: n.Entry, Children: Prune(n.Children), Depth: n.Depth})
	}
	return out
}
