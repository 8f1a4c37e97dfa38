package hierarchy_test

import (
	"fmt"

	"github.com/matzehuels/navtree/pkg/dashboard"
	"github.com/matzehuels/navtree/pkg/hierarchy"
)

func ExampleToTree() {
	entries := []dashboard.Entry{
		{Link: "sales", Title: "Sales", IsMain: true},
		{Link: "sales-q1", Title: "Sales Q1", Level: dashboard.Child, Parent: "sales"},
		{Link: "ops", Title: "Ops"},
	}

	hierarchy.Walk(hierarchy.ToTree(entries), func(n *hierarchy.Node) bool {
		fmt.Printf("%d %s\n", n.Depth, n.Link)
		return true
	})
	// Output:
	// 0 sales
	// 1 sales-q1
	// 0 ops
}

func ExampleForest_Orphans() {
	f := hierarchy.NewForest([]dashboard.Entry{
		{Link: "sales", Title: "Sales"},
		{Link: "lost", Title: "Lost", Level: dashboard.Child, Parent: "gone"},
	})

	fmt.Println("attached:", f.Len())
	for _, o := range f.Orphans() {
		fmt.Printf("orphan: %s (%s)\n", o.Link, o.Reason)
	}
	// Output:
	// attached: 1
	// orphan: lost (parent not found at the level above)
}
