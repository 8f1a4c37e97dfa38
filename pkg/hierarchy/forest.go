package hierarchy

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/navtree/pkg/dashboard"
	"github.com/matzehuels/navtree/pkg/errors"
)

// Reasons recorded for orphaned entries.
const (
	ReasonEmptyLink     = "empty link"
	ReasonDuplicateLink = "duplicate link"
	ReasonInvalidLevel  = "invalid level"
	ReasonMissingParent = "parent not found at the level above"
)

// Orphan is an entry that could not be attached to the hierarchy.
type Orphan struct {
	dashboard.Entry
	Reason string
}

// OrphanError lists the entries dropped while building a forest.
type OrphanError struct {
	Orphans []Orphan
}

func (e *OrphanError) Error() string {
	links := make([]string, len(e.Orphans))
	for i, o := range e.Orphans {
		links[i] = fmt.Sprintf("%s (%s)", o.Link, o.Reason)
	}
	return fmt.Sprintf("%d orphaned entries: %s", len(e.Orphans), strings.Join(links, ", "))
}

// Forest is an arena holding a well-formed collection indexed by link.
// Children are kept as ordered link lists, so the collection order survives
// the conversion.
//
// The zero value is an empty forest. Forest is not safe for concurrent use.
type Forest struct {
	entries  map[string]dashboard.Entry
	roots    []string
	children map[string][]string
	orphans  []Orphan
}

// NewForest indexes entries. The input is not modified.
//
// A copy of the entries is sorted stably by level so that owners are indexed
// before the entries that reference them. A Child attaches only to an indexed
// Parent and a Grandchild only to an indexed Child; everything else is
// recorded as an [Orphan].
func NewForest(entries []dashboard.Entry) *Forest {
	f := &Forest{
		entries:  make(map[string]dashboard.Entry, len(entries)),
		children: make(map[string][]string),
	}

	sorted := dashboard.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b dashboard.Entry) int { return int(a.Level) - int(b.Level) })

	for _, e := range sorted {
		f.add(e)
	}
	return f
}

func (f *Forest) add(e dashboard.Entry) {
	switch {
	case e.Link == "":
		f.orphan(e, ReasonEmptyLink)
		return
	case !e.Level.Valid():
		f.orphan(e, ReasonInvalidLevel)
		return
	}
	if _, dup := f.entries[e.Link]; dup {
		f.orphan(e, ReasonDuplicateLink)
		return
	}

	if e.Level == dashboard.Parent {
		f.entries[e.Link] = e
		f.roots = append(f.roots, e.Link)
		return
	}

	owner, ok := f.entries[e.Parent]
	if !ok || owner.Level != e.Level-1 {
		f.orphan(e, ReasonMissingParent)
		return
	}
	f.entries[e.Link] = e
	f.children[e.Parent] = append(f.children[e.Parent], e.Link)
}

func (f *Forest) orphan(e dashboard.Entry, reason string) {
	f.orphans = append(f.orphans, Orphan{Entry: e, Reason: reason})
}

// Len returns the number of attached entries.
func (f *Forest) Len() int { return len(f.entries) }

// Entry returns the attached entry with the given link.
func (f *Forest) Entry(link string) (dashboard.Entry, bool) {
	e, ok := f.entries[link]
	return e, ok
}

// Roots returns the links of the Parent-level entries in collection order.
// The returned slice should not be modified.
func (f *Forest) Roots() []string { return f.roots }

// Children returns the links owned by link in collection order.
// The returned slice should not be modified.
func (f *Forest) Children(link string) []string { return f.children[link] }

// Descendants returns every link below link in pre-order, excluding link.
func (f *Forest) Descendants(link string) []string {
	var out []string
	var visit func(string)
	visit = func(l string) {
		for _, c := range f.children[l] {
			out = append(out, c)
			visit(c)
		}
	}
	visit(link)
	return out
}

// Orphans returns the entries that could not be attached, in the order they
// were rejected.
func (f *Forest) Orphans() []Orphan { return f.orphans }

// Err returns an ORPHAN_ENTRY error describing the orphans, or nil.
func (f *Forest) Err() error {
	if len(f.orphans) == 0 {
		return nil
	}
	return errors.Wrap(errors.ErrCodeOrphanEntry, &OrphanError{Orphans: f.orphans},
		"collection has %d unattached entries", len(f.orphans))
}

// Entries returns the attached entries in pre-order.
func (f *Forest) Entries() []dashboard.Entry {
	out := make([]dashboard.Entry, 0, len(f.entries))
	var visit func([]string)
	visit = func(links []string) {
		for _, l := range links {
			out = append(out, f.entries[l])
			visit(f.children[l])
		}
	}
	visit(f.roots)
	return out
}

// Tree returns the nested projection. Each call builds fresh nodes.
func (f *Forest) Tree() []*Node {
	var build func([]string, int) []*Node
	build = func(links []string, depth int) []*Node {
		nodes := make([]*Node, len(links))
		for i, l := range links {
			nodes[i] = newNode(f.entries[l], depth)
			nodes[i].Children = build(f.children[l], depth+1)
		}
		return nodes
	}
	return build(f.roots, 0)
}

// ToTree builds the nested projection of entries, dropping orphans.
func ToTree(entries []dashboard.Entry) []*Node {
	return NewForest(entries).Tree()
}

// ToFlat flattens a tree in pre-order. Children, depth and the moved marker
// are stripped; the stored level and parent link of each node are kept as is.
func ToFlat(tree []*Node) []dashboard.Entry {
	out := make([]dashboard.Entry, 0, Len(tree))
	Walk(tree, func(n *Node) bool {
		out = append(out, n.Entry.Flat())
		return true
	})
	return out
}
