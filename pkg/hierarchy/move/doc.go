// Package move implements drag-and-drop relocation within a dashboard tree.
//
// [IsDropLegal] decides whether dropping one node onto another, in a given
// [dashboard.Zone], keeps the hierarchy within its three levels. [Relocate]
// performs the drop on a copy of the tree:
//
//  1. locate the dragged and target nodes (Parent level first, then Child,
//     then Grandchild, matching parent link and link)
//  2. copy the dragged subtree and tag the original as moved
//  3. insert the copy: Center appends it as the target's last child, Above
//     and Below splice it in before or after the target among its siblings
//  4. re-stamp level, parent link and depth of the copy and its descendants
//  5. [Prune] every tagged node into a fresh tree
//
// Tagging first and pruning afterwards keeps sibling indices stable while
// the copy is being inserted into the same array the original lives in.
//
// Relocate is total: an illegal drop, a node that cannot be located or a
// result deeper than [dashboard.MaxDepth] returns the input tree unchanged.
package move
