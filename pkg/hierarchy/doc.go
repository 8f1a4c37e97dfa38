// Package hierarchy converts between the flat persisted form of a dashboard
// collection and its nested tree projection.
//
// # Overview
//
// A collection is stored as a flat slice of [dashboard.Entry] values in which
// every non-root entry points at its owner through a parent link. Rendering
// and drag-and-drop work on the nested form instead: a slice of root [Node]
// values, each carrying its children and its depth.
//
// The conversion goes through [Forest], an arena keyed by link with ordered
// child-key lists:
//
//	f := hierarchy.NewForest(entries)
//	for _, o := range f.Orphans() {
//	    logger.Warn("orphaned entry", "link", o.Link, "reason", o.Reason)
//	}
//	tree := f.Tree()
//
// [ToTree] and [ToFlat] are the convenience entry points. ToFlat emits the
// tree in pre-order (each node followed by its descendants) and strips the
// children, the depth and the transient moved marker, so
//
//	ToFlat(ToTree(entries))
//
// reproduces every well-formed entry, reordered into pre-order.
//
// # Orphans
//
// An entry whose parent link does not resolve to an attached entry exactly one
// level shallower is an orphan. Orphans and everything below them are left out
// of the tree; the forest records them with a reason so callers can log the
// data-integrity problem. Duplicate links are treated the same way: the first
// occurrence at the shallowest level wins.
//
// # Search
//
// [Search] flattens every node whose title fuzzy-matches a query into a list
// of childless root nodes, best match first, for the sidebar's search mode.
package hierarchy
