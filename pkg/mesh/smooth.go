package mesh

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// neighbors returns, per vertex, the vertices it shares a polygon edge
// with, in order of first appearance so sums are reproducible.
func (m *Mesh) neighbors() [][]int {
	adj := make([][]int, len(m.Vertices))
	seen := make(map[Edge]bool, len(m.Polygons)*2)
	for _, p := range m.Polygons {
		for j := 0; j < 4; j++ {
			a, b := p[j], p[(j+1)%4]
			e := newEdge(a, b)
			if a == b || seen[e] {
				continue
			}
			seen[e] = true
			adj[a] = append(adj[a], b)
			adj[b] = append(adj[b], a)
		}
	}
	return adj
}

// Smooth moves every vertex toward the average of its edge neighbors,
// iterations times. The step is factor scaled by the vertex's value of the
// weight attribute, clamped to [0, 1]; an empty weight name weights every
// vertex 1. Vertices without neighbors stay put.
func (m *Mesh) Smooth(iterations int, factor float64, weight string) error {
	var weights []float64
	if weight != "" {
		w, ok := m.floats[weight]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownAttribute, weight)
		}
		weights = w
	}
	if iterations <= 0 || factor == 0 || len(m.Vertices) == 0 {
		return nil
	}

	adj := m.neighbors()
	next := make([]v3.Vec, len(m.Vertices))
	for it := 0; it < iterations; it++ {
		for i, p := range m.Vertices {
			if len(adj[i]) == 0 {
				next[i] = p
				continue
			}
			var sum v3.Vec
			for _, j := range adj[i] {
				sum = sum.Add(m.Vertices[j])
			}
			avg := sum.DivScalar(float64(len(adj[i])))
			w := 1.0
			if weights != nil {
				w = max(0, min(1, weights[i]))
			}
			next[i] = p.Add(avg.Sub(p).MulScalar(factor * w))
		}
		m.Vertices, next = next, m.Vertices
	}
	return nil
}
