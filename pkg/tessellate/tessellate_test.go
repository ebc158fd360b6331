package tessellate

import (
	"math"
	"testing"

	"github.com/chazu/arbor/pkg/graph"
	"github.com/chazu/arbor/pkg/growth"
	"github.com/chazu/arbor/pkg/kernel"
	"github.com/chazu/arbor/pkg/mesh"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertConsistentWinding checks that every directed edge is used once and,
// for interior edges, that its reverse is used too.
func assertConsistentWinding(t *testing.T, m *mesh.Mesh) {
	t.Helper()
	directed := make(map[[2]int]int)
	for _, p := range m.Polygons {
		for j := 0; j < 4; j++ {
			a, b := p[j], p[(j+1)%4]
			if a != b {
				directed[[2]int{a, b}]++
			}
		}
	}
	for e, n := range directed {
		assert.Equal(t, 1, n, "directed edge %v used %d times", e, n)
	}
}

// junction builds a vertical node with a continuation and one side child
// leaving along +X halfway up.
func junction() []graph.Stem {
	parent := graph.NewNode(kernel.Up, v3.Vec{X: 1}, 2, 1, 0)
	parent.AddChild(graph.NewNode(kernel.Up, parent.Tangent, 1, .8, 0), graph.Tip)
	parent.AddChild(graph.NewNode(v3.Vec{X: 1}, parent.Tangent, 1, .3, 1), .5)
	return []graph.Stem{{Node: parent}}
}

func TestTrunkScenario(t *testing.T) {
	stems, err := growth.Run(growth.NewTrunk())
	require.NoError(t, err)

	m, err := New().MeshStems(stems)
	require.NoError(t, err)
	require.NoError(t, m.CheckParity())

	assert.Len(t, m.Vertices, 14*8)
	assert.Len(t, m.Polygons, 13*8)
	assert.Len(t, m.UVs, 14*9)

	s := m.Stats()
	assert.Zero(t, s.NonManifoldEdges)
	assert.Equal(t, 16, s.BoundaryEdges, "open base and tip rings")
	assertConsistentWinding(t, m)
}

func TestTrunkNormalsPointOutward(t *testing.T) {
	trunk := growth.NewTrunk()
	trunk.Randomness = 0
	stems, err := growth.Run(trunk)
	require.NoError(t, err)
	m, err := New().MeshStems(stems)
	require.NoError(t, err)

	for i, n := range m.Normals() {
		v := m.Vertices[i]
		radial := v3.Vec{X: v.X, Y: v.Y}
		assert.Greater(t, n.Dot(radial), 0.0, "vertex %d normal %v", i, n)
	}
}

func TestCapEndsClosesTrunk(t *testing.T) {
	stems, err := growth.Run(growth.NewTrunk())
	require.NoError(t, err)
	ms := New()
	ms.CapEnds = true
	m, err := ms.MeshStems(stems)
	require.NoError(t, err)
	assert.True(t, m.Stats().Closed())
	assert.Len(t, m.Polygons, 13*8+2*3)
	assertConsistentWinding(t, m)
}

func TestRingCardinality(t *testing.T) {
	for _, n := range []int{3, 8, 13} {
		b := &builder{ms: New(), m: mesh.New()}
		require.NoError(t, b.m.AddFloatAttribute(AttrSmoothAmount))
		require.NoError(t, b.m.AddFloatAttribute(AttrRadius))
		require.NoError(t, b.m.AddVectorAttribute(AttrDirection))

		node := graph.NewNode(kernel.Up, v3.Vec{X: 1}, 1, .5, 0)
		c := b.addCircle(node, v3.Vec{}, 0, n, 0)
		assert.Equal(t, n, c.N)
		assert.Len(t, b.m.Vertices, n)
		assert.Len(t, b.m.UVs, n+1)
		require.NoError(t, b.m.CheckParity())
		for _, v := range b.m.Vertices {
			assert.InDelta(t, .5, math.Hypot(v.X, v.Y), 1e-9)
		}
	}
}

func TestIndicesOnCircle(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		ratio   float64
		angle   float64
		want    indexRange
		in, out []int
	}{
		{"opposite the seam", 8, .5, math.Pi, indexRange{3, 5}, []int{3, 4}, []int{2, 5}},
		{"straddles zero", 8, .5, .1, indexRange{7, 1}, []int{7, 0}, []int{1, 6}},
		{"just below 2π", 8, .3, 2*math.Pi - .05, indexRange{7, 1}, []int{7, 0}, []int{1, 6}},
		{"thin child", 8, 1e-6, 1, indexRange{1, 2}, []int{1}, []int{0, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := indicesOnCircle(tt.n, tt.ratio, tt.angle)
			assert.Equal(t, tt.want, got)
			for _, i := range tt.in {
				assert.True(t, got.contains(i, tt.n), "index %d should be masked", i)
			}
			for _, i := range tt.out {
				assert.False(t, got.contains(i, tt.n), "index %d should not be masked", i)
			}
		})
	}
}

func TestOverlapsAny(t *testing.T) {
	mask := []indexRange{{7, 1}}
	assert.True(t, overlapsAny(mask, indexRange{0, 2}, 8))
	assert.False(t, overlapsAny(mask, indexRange{1, 3}, 8), "sharing a boundary vertex is not an overlap")
}

func TestBranchAngle(t *testing.T) {
	parent := graph.NewNode(kernel.Up, v3.Vec{X: 1}, 1, 1, 0)
	tests := []struct {
		dir  v3.Vec
		want float64
	}{
		{v3.Vec{X: 1}, 0},
		{v3.Vec{Y: 1}, math.Pi / 2},
		{v3.Vec{X: -1, Z: 1}, math.Pi},
		{v3.Vec{Y: -1}, 3 * math.Pi / 2},
	}
	for _, tt := range tests {
		child := graph.NewNode(tt.dir, parent.Tangent, 1, .1, 1)
		assert.InDelta(t, tt.want, branchAngle(parent, child), 1e-9, "dir %v", tt.dir)
	}
}

func TestSidePosition(t *testing.T) {
	parent := graph.NewNode(kernel.Up, v3.Vec{X: 1}, 2, .5, 0)
	c := graph.NodeChild{Node: graph.NewNode(v3.Vec{X: 1, Z: 1}, parent.Tangent, 1, .1, 1), PositionInParent: .25}
	got := sidePosition(parent, c, v3.Vec{Y: 3})
	assert.InDelta(t, 0, got.Sub(v3.Vec{X: .5, Y: 3, Z: .5}).Length(), 1e-9)
}

func TestCollarOffsetInRange(t *testing.T) {
	for _, count := range []int{4, 6, 10} {
		for tw := 0.0; tw < 2*math.Pi; tw += .3 {
			o := collarOffset(tw, count)
			assert.GreaterOrEqual(t, o, 0)
			assert.Less(t, o, count)
		}
	}
}

func TestJunctionIsClosed(t *testing.T) {
	ms := New()
	ms.CapEnds = true
	m, err := ms.MeshStems(junction())
	require.NoError(t, err)

	// base ring, end ring and a six vertex collar
	assert.Len(t, m.Vertices, 8+8+6)
	assert.Len(t, m.Polygons, 3+6+3+6+2)

	s := m.Stats()
	assert.True(t, s.Closed(), "stats: %s", s)
	assert.Zero(t, s.DegeneratePolygons)
	assertConsistentWinding(t, m)
}

func TestJunctionCollarOnChildCircle(t *testing.T) {
	m, err := New().MeshStems(junction())
	require.NoError(t, err)

	center := v3.Vec{X: 1, Z: 1}
	for i := 16; i < 22; i++ {
		d := m.Vertices[i].Sub(center)
		assert.InDelta(t, .3, d.Length(), 1e-9, "collar vertex %d", i)
		assert.InDelta(t, 0, d.X, 1e-9, "collar vertex %d off the child plane", i)
	}
	radius, _ := m.Floats(AttrRadius)
	assert.Equal(t, .3, radius[16])
	dirs, _ := m.Vectors(AttrDirection)
	assert.Equal(t, v3.Vec{X: 1}, dirs[16])
}

func TestSideOnlyNodeKeepsRadius(t *testing.T) {
	parent := graph.NewNode(kernel.Up, v3.Vec{X: 1}, 1, .6, 0)
	parent.AddChild(graph.NewNode(v3.Vec{Y: 1}, parent.Tangent, 1, .2, 1), .5)

	m, err := New().MeshStems([]graph.Stem{{Node: parent}})
	require.NoError(t, err)
	radius, _ := m.Floats(AttrRadius)
	for i := 8; i < 16; i++ {
		assert.Equal(t, .6, radius[i], "end ring vertex %d", i)
	}
	assert.Zero(t, m.Stats().NonManifoldEdges)
}

func TestOverlappingChildrenAreDetached(t *testing.T) {
	stems := junction()
	parent := stems[0].Node
	second := parent.AddChild(graph.NewNode(v3.Vec{X: 1}, parent.Tangent, 1, .3, 1), .7)
	second.AddChild(graph.NewNode(v3.Vec{X: 1}, second.Tangent, 1, .2, 1), graph.Tip)

	ms := New()
	ms.CapEnds = true
	m, err := ms.MeshStems(stems)
	require.NoError(t, err)

	// the second child starts from a full ring of its own
	assert.Len(t, m.Vertices, 8+8+6+8+8)
	s := m.Stats()
	assert.Zero(t, s.NonManifoldEdges)
	assert.True(t, s.Closed(), "stats: %s", s)
}

func grownTree(t *testing.T) []graph.Stem {
	t.Helper()
	trunk := growth.NewTrunk()
	trunk.Seed = 7
	b := growth.NewBranch()
	b.Seed = 9
	b.Length = growth.Uniform(1, 2.5)
	trunk.AddChild(b)
	stems, err := growth.Run(trunk)
	require.NoError(t, err)
	return stems
}

func TestGrownTreeIsManifold(t *testing.T) {
	ms := New()
	ms.CapEnds = true
	m, err := ms.MeshStems(grownTree(t))
	require.NoError(t, err)
	require.NoError(t, m.CheckParity())

	s := m.Stats()
	assert.Zero(t, s.NonManifoldEdges, "stats: %s", s)
	assert.True(t, s.Closed(), "stats: %s", s)
	assertConsistentWinding(t, m)

	smooth, _ := m.Floats(AttrSmoothAmount)
	for i, v := range smooth {
		assert.True(t, v > 0 && v <= 1, "smooth amount %v at vertex %d", v, i)
	}
}

func TestDefaultTreesMeshAsOneSurface(t *testing.T) {
	ms := New()
	ms.CapEnds = true
	for seed := int64(1); seed <= 20; seed++ {
		trunk := growth.NewTrunk()
		trunk.Seed = seed
		b := growth.NewBranch()
		b.Seed = seed
		trunk.AddChild(b)
		stems, err := growth.Run(trunk)
		require.NoError(t, err)

		m, err := ms.MeshStems(stems)
		require.NoError(t, err)
		s := m.Stats()
		assert.Equal(t, 1, s.Components, "seed %d: %s", seed, s)
		assert.True(t, s.Closed(), "seed %d: %s", seed, s)
	}
}

func TestMeshDeterministic(t *testing.T) {
	a, err := New().MeshStems(grownTree(t))
	require.NoError(t, err)
	b, err := New().MeshStems(grownTree(t))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestLeafStemContributesNothing(t *testing.T) {
	stems := []graph.Stem{{Node: graph.NewNode(kernel.Up, v3.Vec{X: 1}, 1, .5, 0)}}
	m, err := New().MeshStems(stems)
	require.NoError(t, err)
	assert.True(t, m.IsEmpty())
}

func TestEmptyInput(t *testing.T) {
	m, err := New().MeshStems(nil)
	require.NoError(t, err)
	assert.True(t, m.IsEmpty())
	assert.Equal(t, []string{AttrDirection, AttrRadius, AttrSmoothAmount}, m.AttributeNames())

	m, err = New().MeshTree(nil)
	require.NoError(t, err)
	assert.True(t, m.IsEmpty())
}

func TestMeshTree(t *testing.T) {
	tree := graph.NewTree(growth.NewTrunk())
	require.NoError(t, tree.ExecuteFunctions())
	m, err := New().MeshTree(tree)
	require.NoError(t, err)
	assert.Len(t, m.Vertices, 14*8)
}

func TestInvalidMesher(t *testing.T) {
	ms := New()
	ms.RadialResolution = 2
	_, err := ms.MeshStems(nil)
	assert.ErrorIs(t, err, ErrInvalidMesher)

	ms = New()
	ms.MaxBranchRatio = 1
	var merr *Error
	_, err = ms.MeshStems(nil)
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, "max_branch_ratio", merr.Field)
}
