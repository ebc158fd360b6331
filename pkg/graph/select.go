package graph

import v3 "github.com/deadsy/sdfx/vec/v3"

// NodeRef is a node paired with the world position of its base.
type NodeRef struct {
	Node     *Node
	Position v3.Vec
}

// SelectFromTree returns the nodes created by creatorID, grouped per branch.
// A group is a run of nodes linked by continuations; a side child or a stem
// always starts a new group. Nodes within a group are ordered base to tip.
func SelectFromTree(stems []Stem, creatorID int) [][]NodeRef {
	var groups [][]NodeRef
	var visit func(n *Node, pos v3.Vec, group int)
	visit = func(n *Node, pos v3.Vec, group int) {
		own := -1
		if n.CreatorID == creatorID {
			if group < 0 {
				groups = append(groups, nil)
				group = len(groups) - 1
			}
			groups[group] = append(groups[group], NodeRef{Node: n, Position: pos})
			own = group
		}
		for i, c := range n.Children {
			next := -1
			if i == 0 && c.PositionInParent >= Tip {
				next = own
			}
			visit(c.Node, n.PositionAlong(pos, c.PositionInParent), next)
		}
	}
	for _, s := range stems {
		if s.Node != nil {
			visit(s.Node, s.Position, -1)
		}
	}
	return groups
}

// BranchLength returns the summed length of n and the chain of
// continuations that share its creator.
func BranchLength(n *Node) float64 {
	if n == nil {
		return 0
	}
	total := 0.0
	for creator := n.CreatorID; n != nil && n.CreatorID == creator; n = n.Continuation() {
		total += n.Length
	}
	return total
}

// WalkPreOrder calls fn on n and then on every descendant, parents first.
func WalkPreOrder(n *Node, fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		WalkPreOrder(c.Node, fn)
	}
}

// WalkPostOrder calls fn on every descendant of n and then on n itself.
func WalkPostOrder(n *Node, fn func(*Node)) {
	if n == nil {
		return
	}
	for _, c := range n.Children {
		WalkPostOrder(c.Node, fn)
	}
	fn(n)
}

// CountNodes returns the number of nodes reachable from stems.
func CountNodes(stems []Stem) int {
	count := 0
	for _, s := range stems {
		WalkPreOrder(s.Node, func(*Node) { count++ })
	}
	return count
}

// Leaves returns every leaf reachable from stems together with its base
// position.
func Leaves(stems []Stem) []NodeRef {
	var out []NodeRef
	var visit func(n *Node, pos v3.Vec)
	visit = func(n *Node, pos v3.Vec) {
		if n.IsLeaf() {
			out = append(out, NodeRef{Node: n, Position: pos})
			return
		}
		for _, c := range n.Children {
			visit(c.Node, n.PositionAlong(pos, c.PositionInParent))
		}
	}
	for _, s := range stems {
		if s.Node != nil {
			visit(s.Node, s.Position)
		}
	}
	return out
}
