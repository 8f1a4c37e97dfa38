package hierarchy

import (
	"encoding/json"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/navtree/pkg/dashboard"
	"github.com/matzehuels/navtree/pkg/errors"
)

func entry(link string, level dashboard.Level, parent string) dashboard.Entry {
	return dashboard.Entry{Link: link, Title: link, Level: level, Parent: parent}
}

func links(entries []dashboard.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Link
	}
	return out
}

// sample is deliberately out of order: a grandchild precedes its owner.
func sample() []dashboard.Entry {
	return []dashboard.Entry{
		entry("a", dashboard.Parent, ""),
		entry("a1x", dashboard.Grandchild, "a1"),
		entry("b", dashboard.Parent, ""),
		entry("a1", dashboard.Child, "a"),
		entry("a2", dashboard.Child, "a"),
		entry("b1", dashboard.Child, "b"),
	}
}

func TestToTree(t *testing.T) {
	tree := ToTree(sample())
	if len(tree) != 2 {
		t.Fatalf("roots = %d, want 2", len(tree))
	}
	a := tree[0]
	if a.Link != "a" || a.Depth != 0 || len(a.Children) != 2 {
		t.Fatalf("root a = %+v", a)
	}
	a1 := a.Children[0]
	if a1.Link != "a1" || a1.Depth != 1 || a1.Level != dashboard.Child {
		t.Errorf("a1 = %+v", a1)
	}
	if len(a1.Children) != 1 || a1.Children[0].Link != "a1x" || a1.Children[0].Depth != 2 {
		t.Errorf("a1 children = %+v", a1.Children)
	}
	if got := MaxDepth(tree); got != 2 {
		t.Errorf("MaxDepth = %d, want 2", got)
	}
}

func TestToFlatPreOrder(t *testing.T) {
	got := links(ToFlat(ToTree(sample())))
	want := []string{"a", "a1", "a1x", "a2", "b", "b1"}
	if !slices.Equal(got, want) {
		t.Errorf("ToFlat = %v, want %v", got, want)
	}
}

func TestRoundTrip(t *testing.T) {
	flat := ToFlat(ToTree(sample()))
	again := ToFlat(ToTree(flat))
	if !slices.Equal(flat, again) {
		t.Errorf("round trip changed entries:\n%v\n%v", flat, again)
	}
	byLink := map[string]dashboard.Entry{}
	for _, e := range sample() {
		byLink[e.Link] = e
	}
	for _, e := range flat {
		if byLink[e.Link] != e {
			t.Errorf("entry %s = %+v, want %+v", e.Link, e, byLink[e.Link])
		}
	}
}

func TestToFlatStripsMoved(t *testing.T) {
	tree := ToTree(sample())
	tree[0].Moved = true
	for _, e := range ToFlat(tree) {
		if e.Moved {
			t.Errorf("entry %s kept the moved marker", e.Link)
		}
	}
}

func TestEmpty(t *testing.T) {
	tree := ToTree(nil)
	if tree == nil || len(tree) != 0 {
		t.Errorf("ToTree(nil) = %#v, want empty", tree)
	}
	if flat := ToFlat(tree); len(flat) != 0 {
		t.Errorf("ToFlat(empty) = %v", flat)
	}
	if MaxDepth(tree) != -1 {
		t.Errorf("MaxDepth(empty) = %d", MaxDepth(tree))
	}
}

func TestOrphans(t *testing.T) {
	tests := []struct {
		name    string
		entries []dashboard.Entry
		kept    []string
		orphans map[string]string
	}{
		{
			name: "missing parent",
			entries: []dashboard.Entry{
				entry("a", dashboard.Parent, ""),
				entry("x", dashboard.Child, "nope"),
			},
			kept:    []string{"a"},
			orphans: map[string]string{"x": ReasonMissingParent},
		},
		{
			name: "descendants of orphan are excluded",
			entries: []dashboard.Entry{
				entry("x", dashboard.Child, "nope"),
				entry("x1", dashboard.Grandchild, "x"),
			},
			kept:    []string{},
			orphans: map[string]string{"x": ReasonMissingParent, "x1": ReasonMissingParent},
		},
		{
			name: "grandchild under parent",
			entries: []dashboard.Entry{
				entry("a", dashboard.Parent, ""),
				entry("g", dashboard.Grandchild, "a"),
			},
			kept:    []string{"a"},
			orphans: map[string]string{"g": ReasonMissingParent},
		},
		{
			name: "duplicate link",
			entries: []dashboard.Entry{
				entry("a", dashboard.Parent, ""),
				entry("a", dashboard.Child, "a"),
			},
			kept:    []string{"a"},
			orphans: map[string]string{"a": ReasonDuplicateLink},
		},
		{
			name: "empty link and invalid level",
			entries: []dashboard.Entry{
				entry("", dashboard.Parent, ""),
				entry("deep", dashboard.Level(3), "a"),
			},
			kept:    []string{},
			orphans: map[string]string{"": ReasonEmptyLink, "deep": ReasonInvalidLevel},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewForest(tt.entries)
			if got := links(f.Entries()); !slices.Equal(got, tt.kept) {
				t.Errorf("kept = %v, want %v", got, tt.kept)
			}
			if len(f.Orphans()) != len(tt.orphans) {
				t.Fatalf("orphans = %+v, want %v", f.Orphans(), tt.orphans)
			}
			for _, o := range f.Orphans() {
				if tt.orphans[o.Link] != o.Reason {
					t.Errorf("orphan %q reason = %q, want %q", o.Link, o.Reason, tt.orphans[o.Link])
				}
			}
			err := f.Err()
			if !errors.Is(err, errors.ErrCodeOrphanEntry) {
				t.Errorf("Err() = %v, want ORPHAN_ENTRY", err)
			}
		})
	}
}

func TestForestQueries(t *testing.T) {
	f := NewForest(sample())
	if f.Len() != 6 || f.Err() != nil {
		t.Fatalf("Len = %d, Err = %v", f.Len(), f.Err())
	}
	if got := f.Roots(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("Roots = %v", got)
	}
	if got := f.Children("a"); !slices.Equal(got, []string{"a1", "a2"}) {
		t.Errorf("Children(a) = %v", got)
	}
	if got := f.Descendants("a"); !slices.Equal(got, []string{"a1", "a1x", "a2"}) {
		t.Errorf("Descendants(a) = %v", got)
	}
	if got := f.Descendants("a2"); len(got) != 0 {
		t.Errorf("Descendants(a2) = %v", got)
	}
	if e, ok := f.Entry("a1x"); !ok || e.Parent != "a1" {
		t.Errorf("Entry(a1x) = %+v, %v", e, ok)
	}
}

func TestNewForestDoesNotMutateInput(t *testing.T) {
	in := sample()
	before := slices.Clone(in)
	NewForest(in)
	if !slices.Equal(in, before) {
		t.Error("NewForest reordered its input")
	}
}

func TestCloneIsDeep(t *testing.T) {
	tree := ToTree(sample())
	cp := Clone(tree)
	cp[0].Children[0].Title = "changed"
	cp[0].Children = cp[0].Children[:1]
	if tree[0].Children[0].Title != "a1" || len(tree[0].Children) != 2 {
		t.Error("Clone shares nodes with its input")
	}
}

func TestNodeHelpers(t *testing.T) {
	tree := ToTree(sample())
	a, b := tree[0], tree[1]
	if !a.HasChildren() || !a.HasGrandchildren() {
		t.Error("a should have children and grandchildren")
	}
	if !b.HasChildren() || b.HasGrandchildren() {
		t.Error("b should have children but no grandchildren")
	}
	if !a.Contains("a1x") || a.Contains("a") || a.Contains("b1") {
		t.Error("Contains should cover strict descendants only")
	}
	if a.Height() != 2 || b.Height() != 1 {
		t.Errorf("Height a=%d b=%d", a.Height(), b.Height())
	}
	if Find(tree, "b1") == nil || Find(tree, "zz") != nil {
		t.Error("Find mismatch")
	}
	if Len(tree) != 6 {
		t.Errorf("Len = %d", Len(tree))
	}
}

func TestLeafChildrenNeverNil(t *testing.T) {
	tree := ToTree(sample())
	tests := []struct {
		name string
		tree []*Node
	}{
		{"tree", tree},
		{"clone", Clone(tree)},
		{"search", Search(tree, "a")},
		{"clone of bare node", []*Node{CloneNode(&Node{Entry: entry("z", dashboard.Parent, "")})}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Walk(tt.tree, func(n *Node) bool {
				if n.Children == nil {
					t.Errorf("%s has nil children", n.Link)
				}
				return true
			})
		})
	}

	data, err := json.Marshal(Find(tree, "a1x"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"children":[]`) || !strings.Contains(string(data), `"depth":2`) {
		t.Errorf("leaf encodes as %s", data)
	}
}
