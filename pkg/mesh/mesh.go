// Package mesh holds the quad mesh produced by the meshers: vertex
// positions, UV coordinates, quads with parallel UV loops, and named
// per-vertex attributes that always stay exactly as long as the vertex
// list.
package mesh

import (
	"errors"
	"fmt"
	"sort"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

var (
	// ErrUnknownAttribute is returned when reading or writing an attribute
	// that was never added.
	ErrUnknownAttribute = errors.New("mesh: unknown attribute")
	// ErrDuplicateAttribute is returned when adding an attribute name twice.
	ErrDuplicateAttribute = errors.New("mesh: duplicate attribute")
)

// Mesh is an append-only quad mesh.
type Mesh struct {
	Vertices []v3.Vec
	UVs      []v2.Vec
	Polygons [][4]int // vertex indices, counter-clockwise seen from outside
	UVLoops  [][4]int // UV indices, parallel to Polygons

	floats  map[string][]float64
	vectors map[string][]v3.Vec
}

// New returns an empty mesh.
func New() *Mesh {
	return &Mesh{
		floats:  make(map[string][]float64),
		vectors: make(map[string][]v3.Vec),
	}
}

// AddVertex appends a vertex and grows every attribute by one zero value.
// It returns the index of the new vertex.
func (m *Mesh) AddVertex(v v3.Vec) int {
	m.Vertices = append(m.Vertices, v)
	for name, a := range m.floats {
		m.floats[name] = append(a, 0)
	}
	for name, a := range m.vectors {
		m.vectors[name] = append(a, v3.Vec{})
	}
	return len(m.Vertices) - 1
}

// AddUV appends a UV coordinate and returns its index.
func (m *Mesh) AddUV(uv v2.Vec) int {
	m.UVs = append(m.UVs, uv)
	return len(m.UVs) - 1
}

// AddPolygon appends a quad and its UV loop.
func (m *Mesh) AddPolygon(vertices, uvs [4]int) {
	m.Polygons = append(m.Polygons, vertices)
	m.UVLoops = append(m.UVLoops, uvs)
}

// IsEmpty reports whether the mesh has no vertices.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// ---------------------------------------------------------------------------
// Attributes
// ---------------------------------------------------------------------------

// AddFloatAttribute registers a scalar attribute, zero for existing vertices.
func (m *Mesh) AddFloatAttribute(name string) error {
	if m.hasAttribute(name) {
		return fmt.Errorf("%w: %q", ErrDuplicateAttribute, name)
	}
	m.floats[name] = make([]float64, len(m.Vertices))
	return nil
}

// AddVectorAttribute registers a vector attribute, zero for existing vertices.
func (m *Mesh) AddVectorAttribute(name string) error {
	if m.hasAttribute(name) {
		return fmt.Errorf("%w: %q", ErrDuplicateAttribute, name)
	}
	m.vectors[name] = make([]v3.Vec, len(m.Vertices))
	return nil
}

func (m *Mesh) hasAttribute(name string) bool {
	_, f := m.floats[name]
	_, v := m.vectors[name]
	return f || v
}

// Floats returns the values of a scalar attribute, indexed by vertex. The
// slice aliases the mesh storage until the next AddVertex.
func (m *Mesh) Floats(name string) ([]float64, bool) {
	a, ok := m.floats[name]
	return a, ok
}

// Vectors returns the values of a vector attribute, indexed by vertex. The
// slice aliases the mesh storage until the next AddVertex.
func (m *Mesh) Vectors(name string) ([]v3.Vec, bool) {
	a, ok := m.vectors[name]
	return a, ok
}

// SetFloat sets a scalar attribute of one vertex.
func (m *Mesh) SetFloat(name string, vertex int, v float64) error {
	a, ok := m.floats[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAttribute, name)
	}
	if vertex < 0 || vertex >= len(a) {
		return fmt.Errorf("mesh: vertex %d out of range [0, %d)", vertex, len(a))
	}
	a[vertex] = v
	return nil
}

// SetVector sets a vector attribute of one vertex.
func (m *Mesh) SetVector(name string, vertex int, v v3.Vec) error {
	a, ok := m.vectors[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAttribute, name)
	}
	if vertex < 0 || vertex >= len(a) {
		return fmt.Errorf("mesh: vertex %d out of range [0, %d)", vertex, len(a))
	}
	a[vertex] = v
	return nil
}

// AttributeNames returns the names of all attributes, sorted.
func (m *Mesh) AttributeNames() []string {
	names := make([]string, 0, len(m.floats)+len(m.vectors))
	for name := range m.floats {
		names = append(names, name)
	}
	for name := range m.vectors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CheckParity verifies that every attribute has one value per vertex, that
// polygons and UV loops are parallel and that every index is in range.
func (m *Mesh) CheckParity() error {
	for name, a := range m.floats {
		if len(a) != len(m.Vertices) {
			return fmt.Errorf("mesh: attribute %q has %d values for %d vertices", name, len(a), len(m.Vertices))
		}
	}
	for name, a := range m.vectors {
		if len(a) != len(m.Vertices) {
			return fmt.Errorf("mesh: attribute %q has %d values for %d vertices", name, len(a), len(m.Vertices))
		}
	}
	if len(m.Polygons) != len(m.UVLoops) {
		return fmt.Errorf("mesh: %d polygons but %d uv loops", len(m.Polygons), len(m.UVLoops))
	}
	for i, p := range m.Polygons {
		for j := 0; j < 4; j++ {
			if p[j] < 0 || p[j] >= len(m.Vertices) {
				return fmt.Errorf("mesh: polygon %d references vertex %d of %d", i, p[j], len(m.Vertices))
			}
			if uv := m.UVLoops[i][j]; uv < 0 || uv >= len(m.UVs) {
				return fmt.Errorf("mesh: polygon %d references uv %d of %d", i, uv, len(m.UVs))
			}
		}
	}
	return nil
}

// Bounds returns the axis-aligned bounding box of the vertices.
func (m *Mesh) Bounds() (lo, hi v3.Vec) {
	if len(m.Vertices) == 0 {
		return
	}
	lo, hi = m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		lo = v3.Vec{X: min(lo.X, v.X), Y: min(lo.Y, v.Y), Z: min(lo.Z, v.Z)}
		hi = v3.Vec{X: max(hi.X, v.X), Y: max(hi.Y, v.Y), Z: max(hi.Z, v.Z)}
	}
	return lo, hi
}
