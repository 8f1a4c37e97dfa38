package move

import (
	"github.com/matzehuels/navtree/pkg/dashboard"
	"github.com/matzehuels/navtree/pkg/errors"
	"github.com/matzehuels/navtree/pkg/hierarchy"
)

// Reasons reported by [Check] for illegal drops.
const (
	ReasonMissingNode      = "dragged or target node is missing"
	ReasonSameNode         = "cannot drop a node onto itself"
	ReasonOwnSubtree       = "cannot drop a node into its own subtree"
	ReasonIntoGrandchild   = "grandchildren cannot hold children"
	ReasonIntoChild        = "only leaves can be dropped into a child"
	ReasonIntoParent       = "dropping into a parent would exceed three levels"
	ReasonBesideGrandchild = "only leaves can become grandchildren"
	ReasonBesideChild      = "dropping next to a child would exceed three levels"
	ReasonUnknownZone      = "unknown drop zone"
)

// IsDropLegal reports whether dragged may be dropped onto target in zone.
func IsDropLegal(target, dragged *hierarchy.Node, zone dashboard.Zone) bool {
	return Check(target, dragged, zone) == nil
}

// Check is IsDropLegal with a reason: it returns an INVALID_DROP error
// describing the first rule the drop violates, or nil.
//
// Rules, in order:
//   - both nodes exist and are distinct
//   - the target is not inside the dragged subtree
//   - Center over a Grandchild is illegal
//   - Center over a Child requires a childless dragged node
//   - Center over a Parent requires a dragged node without grandchildren
//   - Above/Below a Grandchild requires a childless dragged node
//   - Above/Below a Child requires a dragged node without grandchildren
//
// The Center-over-Parent rule only inspects grandchildren: the dragged node
// becomes a Child there, so its own children land exactly on the last level.
func Check(target, dragged *hierarchy.Node, zone dashboard.Zone) error {
	if reason := illegal(target, dragged, zone); reason != "" {
		return errors.New(errors.ErrCodeInvalidDrop, "%s", reason)
	}
	return nil
}

func illegal(target, dragged *hierarchy.Node, zone dashboard.Zone) string {
	switch {
	case target == nil || dragged == nil:
		return ReasonMissingNode
	case target.Link == dragged.Link:
		return ReasonSameNode
	case dragged.Contains(target.Link):
		return ReasonOwnSubtree
	}

	switch zone {
	case dashboard.Center:
		switch target.Level {
		case dashboard.Grandchild:
			return ReasonIntoGrandchild
		case dashboard.Child:
			if dragged.HasChildren() {
				return ReasonIntoChild
			}
		case dashboard.Parent:
			if dragged.HasGrandchildren() {
				return ReasonIntoParent
			}
		}
	case dashboard.Above, dashboard.Below:
		switch target.Level {
		case dashboard.Grandchild:
			if dragged.HasChildren() {
				return ReasonBesideGrandchild
			}
		case dashboard.Child:
			if dragged.HasGrandchildren() {
				return ReasonBesideChild
			}
		}
	default:
		return ReasonUnknownZone
	}
	return ""
}
