package hierarchy

import "github.com/matzehuels/navtree/pkg/dashboard"

// Node is one element of the nested projection. Depth mirrors Level for nodes
// produced by this package (0 for Parent, 1 for Child, 2 for Grandchild).
// Children is empty, never nil, on leaves built here, so a leaf encodes as
// "children": [].
type Node struct {
	dashboard.Entry
	Children []*Node `json:"children"`
	Depth    int     `json:"depth"`
}

func newNode(e dashboard.Entry, depth int) *Node {
	return &Node{Entry: e, Children: []*Node{}, Depth: depth}
}

// HasChildren reports whether n owns at least one child.
func (n *Node) HasChildren() bool { return n != nil && len(n.Children) > 0 }

// HasGrandchildren reports whether any child of n owns children itself.
func (n *Node) HasGrandchildren() bool {
	if n == nil {
		return false
	}
	for _, c := range n.Children {
		if len(c.Children) > 0 {
			return true
		}
	}
	return false
}

// Contains reports whether a strict descendant of n carries the link.
func (n *Node) Contains(link string) bool {
	if n == nil {
		return false
	}
	for _, c := range n.Children {
		if c.Link == link || c.Contains(link) {
			return true
		}
	}
	return false
}

// Height returns the number of levels below n (0 for a leaf).
func (n *Node) Height() int {
	h := 0
	for _, c := range n.Children {
		h = max(h, c.Height()+1)
	}
	return h
}

// CloneNode deep-copies n and its subtree.
func CloneNode(n *Node) *Node {
	if n == nil {
		return nil
	}
	cp := newNode(n.Entry, n.Depth)
	cp.Children = make([]*Node, len(n.Children))
	for i, c := range n.Children {
		cp.Children[i] = CloneNode(c)
	}
	return cp
}

// Clone deep-copies a tree. Mutating the result never affects the input.
func Clone(tree []*Node) []*Node {
	if tree == nil {
		return nil
	}
	out := make([]*Node, len(tree))
	for i, n := range tree {
		out[i] = CloneNode(n)
	}
	return out
}

// Walk visits every node in pre-order. Returning false from fn skips the
// node's subtree.
func Walk(tree []*Node, fn func(*Node) bool) {
	for _, n := range tree {
		if fn(n) {
			Walk(n.Children, fn)
		}
	}
}

// Find returns the first node in pre-order carrying the link, or nil.
func Find(tree []*Node, link string) *Node {
	var found *Node
	Walk(tree, func(n *Node) bool {
		if found != nil {
			return false
		}
		if n.Link == link {
			found = n
			return false
		}
		return true
	})
	return found
}

// MaxDepth returns the deepest Depth in the tree, or -1 for an empty tree.
// Depth is derived from the nesting, not from the stored field.
func MaxDepth(tree []*Node) int {
	deepest := -1
	var visit func([]*Node, int)
	visit = func(nodes []*Node, depth int) {
		for _, n := range nodes {
			deepest = max(deepest, depth)
			visit(n.Children, depth+1)
		}
	}
	visit(tree, 0)
	return deepest
}

// Len returns the number of nodes in the tree.
func Len(tree []*Node) int {
	n := 0
	Walk(tree, func(*Node) bool { n++; return true })
	return n
}
