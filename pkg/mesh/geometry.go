package mesh

import (
	"github.com/chazu/arbor/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Triangles splits every quad along its 0-2 diagonal. Triangles collapsed
// by a repeated vertex are dropped.
func (m *Mesh) Triangles() []*sdf.Triangle3 {
	tris := make([]*sdf.Triangle3, 0, len(m.Polygons)*2)
	for _, p := range m.Polygons {
		for _, t := range [2][3]int{{p[0], p[1], p[2]}, {p[0], p[2], p[3]}} {
			if t[0] == t[1] || t[1] == t[2] || t[0] == t[2] {
				continue
			}
			tris = append(tris, &sdf.Triangle3{m.Vertices[t[0]], m.Vertices[t[1]], m.Vertices[t[2]]})
		}
	}
	return tris
}

// Normals returns one unit normal per vertex, the area-weighted average of
// the faces around it. Isolated vertices get +Z.
func (m *Mesh) Normals() []v3.Vec {
	acc := make([]v3.Vec, len(m.Vertices))
	for _, p := range m.Polygons {
		for _, t := range [2][3]int{{p[0], p[1], p[2]}, {p[0], p[2], p[3]}} {
			a, b, c := m.Vertices[t[0]], m.Vertices[t[1]], m.Vertices[t[2]]
			// the cross product's length is twice the triangle area
			n := b.Sub(a).Cross(c.Sub(a))
			for _, i := range t {
				acc[i] = acc[i].Add(n)
			}
		}
	}
	for i := range acc {
		acc[i] = kernel.NormalizedOr(acc[i], kernel.Up)
	}
	return acc
}

// Area returns the total surface area.
func (m *Mesh) Area() float64 {
	total := 0.0
	for _, p := range m.Polygons {
		for _, t := range [2][3]int{{p[0], p[1], p[2]}, {p[0], p[2], p[3]}} {
			a, b, c := m.Vertices[t[0]], m.Vertices[t[1]], m.Vertices[t[2]]
			total += b.Sub(a).Cross(c.Sub(a)).Length() / 2
		}
	}
	return total
}
