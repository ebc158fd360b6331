package graph

import (
	"github.com/chazu/arbor/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Tip is the PositionInParent of a child attached at the end of its parent.
const Tip = 1.0

// Node is one segment of the skeleton. A node owns its children outright;
// nothing else holds references to them.
type Node struct {
	Direction v3.Vec      // unit vector
	Tangent   v3.Vec      // unit vector orthogonal to Direction
	Length    float64     // >= 0
	Radius    float64     // > 0
	CreatorID int         // id of the growth function that created the node
	Growth    GrowthState // owned by the creating function, may be nil
	Children  []NodeChild
}

// NodeChild attaches a child node at a fraction of its parent's length.
type NodeChild struct {
	Node             *Node
	PositionInParent float64 // 0 = base, 1 = tip
}

// Stem is a parentless node anchored at a world position.
type Stem struct {
	Node     *Node
	Position v3.Vec
}

// NewNode creates a node pointing along direction. The tangent is derived
// from parentTangent projected onto the plane orthogonal to direction, so the
// two stay perpendicular.
func NewNode(direction, parentTangent v3.Vec, length, radius float64, creatorID int) *Node {
	dir := kernel.NormalizedOr(direction, kernel.Up)
	return &Node{
		Direction: dir,
		Tangent:   kernel.PerpendicularTangent(parentTangent, dir),
		Length:    length,
		Radius:    radius,
		CreatorID: creatorID,
	}
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// AddChild appends a child. Existing children are never reordered.
func (n *Node) AddChild(child *Node, positionInParent float64) *Node {
	n.Children = append(n.Children, NodeChild{Node: child, PositionInParent: positionInParent})
	return child
}

// Continuation returns the child that extends this node from its tip, or nil
// when every child departs from the side.
func (n *Node) Continuation() *Node {
	if len(n.Children) > 0 && n.Children[0].PositionInParent >= Tip {
		return n.Children[0].Node
	}
	return nil
}

// SideChildren returns the children that are not the continuation.
func (n *Node) SideChildren() []NodeChild {
	if n.Continuation() != nil {
		return n.Children[1:]
	}
	return n.Children
}

// PositionAlong returns the world position at fraction t of the node's length,
// given the node's base position.
func (n *Node) PositionAlong(base v3.Vec, t float64) v3.Vec {
	return base.Add(n.Direction.MulScalar(n.Length * t))
}

// SetDirection replaces the direction and re-projects the tangent so it
// stays orthogonal.
func (n *Node) SetDirection(direction v3.Vec) {
	n.Direction = kernel.NormalizedOr(direction, n.Direction)
	n.Tangent = kernel.PerpendicularTangent(n.Tangent, n.Direction)
}
