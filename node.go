package celltree

import "math"

// Node is a cell of the tree. A leaf wraps one summary; an internal node
// owns exactly two children and holds their combined summary. Nodes are
// immutable once the tree is built and may be read concurrently.
type Node[P Position[P], V Payload[V]] struct {
	summary     Summary[P, V]
	sizeSq      float64
	left, right *Node[P, V]
}

// Summary returns the aggregate of every point below the node.
func (n *Node[P, V]) Summary() Summary[P, V] { return n.summary }

// Pos returns the weighted centroid of the node.
func (n *Node[P, V]) Pos() P { return n.summary.Pos }

// Weight returns the total weight of the node.
func (n *Node[P, V]) Weight() float64 { return n.summary.Weight }

// SizeSq returns the squared bounding radius: the largest squared distance
// from the centroid to any member point, measured when the node was created.
// It is 0 for a single-point leaf.
func (n *Node[P, V]) SizeSq() float64 { return n.sizeSq }

// Size returns the bounding radius.
func (n *Node[P, V]) Size() float64 { return math.Sqrt(n.sizeSq) }

// IsLeaf reports whether the node has no children.
func (n *Node[P, V]) IsLeaf() bool { return n.left == nil }

// Left returns the first child, or nil for a leaf.
func (n *Node[P, V]) Left() *Node[P, V] { return n.left }

// Right returns the second child, or nil for a leaf.
func (n *Node[P, V]) Right() *Node[P, V] { return n.right }
