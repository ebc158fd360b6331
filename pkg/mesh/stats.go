package mesh

import "fmt"

// Edge is an undirected edge, smaller vertex index first.
type Edge [2]int

func newEdge(a, b int) Edge {
	if a > b {
		a, b = b, a
	}
	return Edge{a, b}
}

// EdgeUse counts how many polygons use each edge. Collapsed edges of
// degenerate quads are not counted.
func (m *Mesh) EdgeUse() map[Edge]int {
	use := make(map[Edge]int, len(m.Polygons)*2)
	for _, p := range m.Polygons {
		for j := 0; j < 4; j++ {
			a, b := p[j], p[(j+1)%4]
			if a == b {
				continue
			}
			use[newEdge(a, b)]++
		}
	}
	return use
}

// Stats summarizes the topology of a mesh.
type Stats struct {
	Vertices           int
	UVs                int
	Polygons           int
	Edges              int
	BoundaryEdges      int // used by exactly one polygon
	NonManifoldEdges   int // used by more than two polygons
	DegeneratePolygons int // quads repeating a vertex
	Components         int // polygon groups connected through shared vertices
}

// Closed reports whether every edge is shared by exactly two polygons.
func (s Stats) Closed() bool {
	return s.BoundaryEdges == 0 && s.NonManifoldEdges == 0
}

func (s Stats) String() string {
	return fmt.Sprintf("%d vertices, %d polygons, %d edges (%d boundary, %d non-manifold), %d degenerate, %d components",
		s.Vertices, s.Polygons, s.Edges, s.BoundaryEdges, s.NonManifoldEdges, s.DegeneratePolygons, s.Components)
}

// Stats computes the topology summary of the mesh.
func (m *Mesh) Stats() Stats {
	s := Stats{
		Vertices:   len(m.Vertices),
		UVs:        len(m.UVs),
		Polygons:   len(m.Polygons),
		Components: m.Components(),
	}
	for _, p := range m.Polygons {
		if p[0] == p[1] || p[0] == p[2] || p[0] == p[3] || p[1] == p[2] || p[1] == p[3] || p[2] == p[3] {
			s.DegeneratePolygons++
		}
	}
	for _, n := range m.EdgeUse() {
		s.Edges++
		switch {
		case n == 1:
			s.BoundaryEdges++
		case n > 2:
			s.NonManifoldEdges++
		}
	}
	return s
}

// Components counts the groups of polygons connected through shared
// vertices. Vertices used by no polygon are not counted.
func (m *Mesh) Components() int {
	parent := make([]int, len(m.Vertices))
	for i := range parent {
		parent[i] = i
	}
	find := func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	used := make([]bool, len(m.Vertices))
	for _, p := range m.Polygons {
		root := find(p[0])
		for _, v := range p {
			used[v] = true
			if r := find(v); r != root {
				parent[r] = root
			}
		}
	}
	n := 0
	for i, u := range used {
		if u && find(i) == i {
			n++
		}
	}
	return n
}
