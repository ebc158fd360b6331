package tessellate

import (
	"math"

	"github.com/chazu/arbor/pkg/graph"
	"github.com/chazu/arbor/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// meshNode emits the tube of n starting from ring base, then recurses into
// its children.
func (b *builder) meshNode(n *graph.Node, pos v3.Vec, base circle) {
	if n.IsLeaf() {
		b.capTip(base)
		return
	}
	cont := n.Continuation()
	side := n.SideChildren()
	tip := n.PositionAlong(pos, 1)

	if n.Length < lengthEpsilon && cont != nil {
		// No tube to cut a collar into: the continuation starts from base
		// and side children get rings of their own.
		b.meshNode(cont, tip, base)
		for _, c := range side {
			b.meshDetached(n, c, pos, base)
		}
		return
	}

	endRadius := n.Radius
	if cont != nil {
		endRadius = cont.Radius
	}
	end := b.addCircle(n, pos, 1, base.N, nextV(base.V, n.Length, n.Radius, endRadius))

	if len(side) == 0 {
		b.bridge(base, end, nil)
		b.meshNode(cont, tip, end)
		return
	}

	// Claim a cutout on the rim for each side child. A child whose cutout
	// would overlap one already claimed is detached instead, so no rim edge
	// ends up shared by more than two quads.
	var mask []indexRange
	ranges := make([]*indexRange, len(side))
	for i, c := range side {
		r := b.childRange(n, c.Node, base.N)
		if overlapsAny(mask, r, base.N) {
			continue
		}
		mask = append(mask, r)
		ranges[i] = &r
	}
	b.bridge(base, end, mask)

	if cont != nil {
		b.meshNode(cont, tip, end)
	} else {
		b.capTip(end)
	}
	for i, c := range side {
		if ranges[i] == nil {
			b.meshDetached(n, c, pos, base)
			continue
		}
		collar := b.addCollar(n, c, pos, base, end, *ranges[i])
		b.meshNode(c.Node, sidePosition(n, c, pos), collar)
	}
}

// meshDetached meshes a side child from a ring of its own, not connected to
// its parent's surface. A leaf has no tube and is skipped.
func (b *builder) meshDetached(parent *graph.Node, c graph.NodeChild, pos v3.Vec, base circle) {
	if c.Node.IsLeaf() {
		return
	}
	childPos := sidePosition(parent, c, pos)
	ring := b.addCircle(c.Node, childPos, 0, base.N, base.V)
	b.capBase(ring)
	b.meshNode(c.Node, childPos, ring)
}

// childRange returns the rim quads covered by a side child's cutout.
func (b *builder) childRange(parent, child *graph.Node, n int) indexRange {
	ratio := math.Min(child.Radius/parent.Radius, b.ms.MaxBranchRatio)
	return indicesOnCircle(n, ratio, branchAngle(parent, child))
}

// addCollar builds the ring a side child grows from. The boundary of the
// cutout between lower and upper is walked counter-clockwise (lower ring
// min..max, then upper ring max..min), each boundary vertex is pushed onto
// the child's circle, and a strip of quads joins the two loops. The ring
// is rotated by the child's twist so its first vertex lines up with the
// child's tangent.
func (b *builder) addCollar(parent *graph.Node, c graph.NodeChild, pos v3.Vec, lower, upper circle, r indexRange) circle {
	n := lower.N
	k := r.width(n)
	count := 2 * (k + 1)

	loop := make([]int, count)
	loopUV := make([]int, count)
	for i := 0; i <= k; i++ {
		idx := r.Min + i
		uv := idx
		if uv > n {
			uv -= n
		}
		loop[i] = lower.Vertex + idx%n
		loopUV[i] = lower.UV + uv
		loop[count-1-i] = upper.Vertex + idx%n
		loopUV[count-1-i] = upper.UV + uv
	}

	var center v3.Vec
	for _, vi := range loop {
		center = center.Add(b.m.Vertices[vi])
	}
	center = center.DivScalar(float64(count))

	child := c.Node
	childPos := sidePosition(parent, c, pos)
	offset := collarOffset(twist(parent, child), count)

	collar := circle{Vertex: len(b.m.Vertices), UV: len(b.m.UVs), N: count, V: upper.V}
	for i := 0; i < count; i++ {
		src := b.m.Vertices[loop[(i+offset)%count]].Sub(center)
		d := kernel.NormalizedOr(kernel.ProjectOnPlane(src, child.Direction), kernel.NormalizedOr(src, parent.Tangent))
		b.m.AddVertex(childPos.Add(d.MulScalar(child.Radius)))
	}
	b.addUVRow(count, collar.V)
	b.setAttributes(collar.Vertex, count, smoothAmount(child.Radius, parent.Length), child.Radius, child.Direction)

	for i := 0; i < count; i++ {
		j := (i + offset) % count
		jn := (j + 1) % count
		b.m.AddPolygon(
			[4]int{loop[j], loop[jn], collar.Vertex + (i+1)%count, collar.Vertex + i},
			[4]int{loopUV[j], loopUV[jn], collar.UV + i + 1, collar.UV + i},
		)
	}
	return collar
}

// collarOffset is the index of the boundary vertex that becomes the first
// collar vertex. The boundary loop of count vertices starts a quarter turn
// (plus half a step) past the parent direction, so the offset subtracts that
// from the twist.
func collarOffset(twist float64, count int) int {
	o := int(math.Round(twist/(2*math.Pi)*float64(count) - float64(count)/4 - .5))
	return ((o % count) + count) % count
}

// branchAngle returns the angle in [0, 2π) around parent, measured from its
// tangent toward direction × tangent, at which child leaves.
func branchAngle(parent, child *graph.Node) float64 {
	p := kernel.PerpendicularTangent(child.Direction, parent.Direction)
	up := parent.Direction.Cross(parent.Tangent)
	return kernel.WrapAngle(math.Atan2(p.Dot(up), p.Dot(parent.Tangent)))
}

// twist returns the angle in [0, 2π) of the child's tangent in the child
// frame whose origin axis is the parent direction.
func twist(parent, child *graph.Node) float64 {
	right := kernel.PerpendicularTangent(parent.Direction, child.Direction)
	up := child.Direction.Cross(right)
	return kernel.WrapAngle(math.Atan2(child.Tangent.Dot(up), child.Tangent.Dot(right)))
}

// sidePosition is where a side child's tube starts: on the parent's surface
// at the child's attachment point, toward the child's direction.
func sidePosition(parent *graph.Node, c graph.NodeChild, pos v3.Vec) v3.Vec {
	out := kernel.PerpendicularTangent(c.Node.Direction, parent.Direction)
	return parent.PositionAlong(pos, c.PositionInParent).Add(out.MulScalar(parent.Radius))
}
