package tessellate

import (
	"math"

	"github.com/chazu/arbor/pkg/graph"
	"github.com/chazu/arbor/pkg/kernel"
	"github.com/chazu/arbor/pkg/mesh"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// lengthEpsilon is the node length below which a node has no tube of its own.
const lengthEpsilon = 1e-9

// circle designates a ring already emitted into the mesh. A ring of N
// vertices owns N+1 UVs so the texture seam can be duplicated.
type circle struct {
	Vertex int     // first vertex
	UV     int     // first UV
	N      int     // radial resolution
	V      float64 // texture v coordinate of the ring
}

// builder carries the mesh under construction through one traversal.
type builder struct {
	ms *Mesher
	m  *mesh.Mesh
}

// addCircle emits the ring of node n at fraction factor of its length. The
// radius tapers toward the continuation's radius; a node without one keeps
// its own. Vertex i sits at angle 2πi/res from the tangent, turning toward
// direction × tangent, so rings wind counter-clockwise seen from the tip.
func (b *builder) addCircle(n *graph.Node, pos v3.Vec, factor float64, res int, v float64) circle {
	right := n.Tangent
	up := n.Direction.Cross(n.Tangent)
	center := n.PositionAlong(pos, factor)
	radius := n.Radius
	if next := n.Continuation(); next != nil {
		radius = kernel.Lerp(n.Radius, next.Radius, factor)
	}

	c := circle{Vertex: len(b.m.Vertices), UV: len(b.m.UVs), N: res, V: v}
	for i := 0; i < res; i++ {
		angle := float64(i) / float64(res) * 2 * math.Pi
		p := right.MulScalar(math.Cos(angle)).Add(up.MulScalar(math.Sin(angle)))
		b.m.AddVertex(center.Add(p.MulScalar(radius)))
	}
	b.addUVRow(res, v)
	b.setAttributes(c.Vertex, res, smoothAmount(radius, n.Length), radius, n.Direction)
	return c
}

func (b *builder) addUVRow(res int, v float64) {
	for i := 0; i <= res; i++ {
		b.m.AddUV(v2.Vec{X: float64(i) / float64(res), Y: v})
	}
}

func (b *builder) setAttributes(first, count int, smooth, radius float64, dir v3.Vec) {
	s, _ := b.m.Floats(AttrSmoothAmount)
	r, _ := b.m.Floats(AttrRadius)
	d, _ := b.m.Vectors(AttrDirection)
	for i := first; i < first+count; i++ {
		s[i] = smooth
		r[i] = radius
		d[i] = dir
	}
}

// smoothAmount is how much a ring may be relaxed by smoothing: thick short
// segments fully, thin long ones barely.
func smoothAmount(radius, length float64) float64 {
	if length <= 0 {
		return 1
	}
	return math.Min(1, radius/length)
}

// nextV advances the texture v coordinate over a segment, keeping texels
// roughly square along the tube.
func nextV(v, length, r0, r1 float64) float64 {
	mean := (r0 + r1) / 2
	if mean <= 0 {
		return v
	}
	return v + length/mean
}

// bridge joins two rings of equal resolution with quads, skipping the quads
// whose index falls inside mask.
func (b *builder) bridge(lower, upper circle, mask []indexRange) {
	n := lower.N
	for i := 0; i < n; i++ {
		if masked(mask, i, n) {
			continue
		}
		j := (i + 1) % n
		b.m.AddPolygon(
			[4]int{lower.Vertex + i, lower.Vertex + j, upper.Vertex + j, upper.Vertex + i},
			[4]int{lower.UV + i, lower.UV + i + 1, upper.UV + i + 1, upper.UV + i},
		)
	}
}

// capBase closes a ring that faces back along the tube.
func (b *builder) capBase(c circle) {
	if b.ms.CapEnds {
		b.ladder(c, true)
	}
}

// capTip closes a ring that ends a tube.
func (b *builder) capTip(c circle) {
	if b.ms.CapEnds {
		b.ladder(c, false)
	}
}

// ladder fills a ring with quads whose rungs join vertex i to vertex N-1-i.
// Odd resolutions end with one triangle, stored as a quad repeating its
// last vertex.
func (b *builder) ladder(c circle, reverse bool) {
	quad := func(q [4]int) {
		if reverse {
			q = [4]int{q[3], q[2], q[1], q[0]}
		}
		var verts, uvs [4]int
		for k, idx := range q {
			verts[k] = c.Vertex + idx
			uvs[k] = c.UV + idx
		}
		b.m.AddPolygon(verts, uvs)
	}
	lo, hi := 0, c.N-1
	for hi-lo >= 3 {
		quad([4]int{lo, lo + 1, hi - 1, hi})
		lo++
		hi--
	}
	if hi-lo == 2 {
		quad([4]int{lo, lo + 1, hi, hi})
	}
}
