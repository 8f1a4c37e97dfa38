// Package dashboard defines the data model of the navigation hierarchy.
//
// A collection is a flat, ordered slice of [Entry] values. Each entry sits on
// one of three fixed [Level] tiers (Parent, Child, Grandchild) and, unless it
// is a Parent, names the link of its owner through [Entry.Parent]. The nested
// projection of a collection lives in package hierarchy; this package only
// carries the persisted shape and the vocabulary shared by every component:
//
//   - [Level]: depth tier, encoded as "Parent", "Child" or "Grandchild"
//   - [Zone]: drop position relative to a target node (Above, Center, Below)
//   - [ChangeKind]: the user intent behind a mutation
//
// # Invariants
//
// Links are unique within a collection. At most one entry carries IsMain, and
// exactly one does whenever the collection is non-empty after a mutation has
// been applied. The Moved marker is transient and never serialized.
package dashboard
