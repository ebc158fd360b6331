// Package sdfx builds a quick implicit preview of a tree skeleton with the
// github.com/deadsy/sdfx SDF library. Every node becomes a cylinder, joints
// get a sphere so segments meet without gaps, and the union is polygonized
// with uniform marching cubes. There is no collar logic; the result is a
// triangle soup meant for a first look, not for further processing.
package sdfx

import (
	"errors"
	"fmt"

	"github.com/chazu/arbor/pkg/graph"
	"github.com/chazu/arbor/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// defaultMeshCells controls marching cubes tessellation resolution.
const defaultMeshCells = 200

// ErrEmpty is returned when a skeleton has no node with a positive size.
var ErrEmpty = errors.New("sdfx: nothing to render")

// Preview converts skeletons into implicit solids and triangles.
type Preview struct {
	// Cells is the number of marching cubes cells along the longest axis.
	Cells int
	// Blend rounds the joints with a polynomial smooth minimum of this
	// radius. Zero keeps a hard union.
	Blend float64
	// MinRadius clamps thin twigs so they survive the voxel grid.
	MinRadius float64
}

// New returns a Preview with default settings.
func New() *Preview {
	return &Preview{Cells: defaultMeshCells}
}

// Solid returns the union of one cylinder per node of stems.
func (p *Preview) Solid(stems []graph.Stem) (sdf.SDF3, error) {
	var parts []sdf.SDF3
	var err error
	for _, s := range stems {
		p.walk(s.Node, s.Position, &parts, &err)
		if err != nil {
			return nil, err
		}
	}
	if len(parts) == 0 {
		return nil, ErrEmpty
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	u := sdf.Union3D(parts...)
	if p.Blend > 0 {
		if us, ok := u.(*sdf.UnionSDF3); ok {
			us.SetMin(sdf.PolyMin(p.Blend))
		}
	}
	return u, nil
}

func (p *Preview) walk(n *graph.Node, pos v3.Vec, parts *[]sdf.SDF3, err *error) {
	if n == nil || *err != nil {
		return
	}
	r := max(n.Radius, p.MinRadius)
	if r > 0 {
		if n.Length > kernel.Epsilon {
			c, e := segment(pos, n.Direction, n.Length, r)
			if e != nil {
				*err = e
				return
			}
			*parts = append(*parts, c)
		}
		j, e := sdf.Sphere3D(r)
		if e != nil {
			*err = fmt.Errorf("sdfx: joint: %w", e)
			return
		}
		*parts = append(*parts, sdf.Transform3D(j, sdf.Translate3d(pos)))
	}
	for _, c := range n.Children {
		p.walk(c.Node, n.PositionAlong(pos, c.PositionInParent), parts, err)
	}
}

// segment returns a cylinder of the given length and radius running from
// base along dir. sdf.Cylinder3D is centered on the origin along +Z.
func segment(base, dir v3.Vec, length, radius float64) (sdf.SDF3, error) {
	c, err := sdf.Cylinder3D(length, radius, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx: segment: %w", err)
	}
	m := sdf.Translate3d(base).
		Mul(kernel.LookAt(dir)).
		Mul(sdf.Translate3d(v3.Vec{Z: length / 2}))
	return sdf.Transform3D(c, m), nil
}

// Triangles polygonizes the skeleton.
func (p *Preview) Triangles(stems []graph.Stem) ([]*sdf.Triangle3, error) {
	s, err := p.Solid(stems)
	if err != nil {
		return nil, err
	}
	cells := p.Cells
	if cells <= 0 {
		cells = defaultMeshCells
	}
	return render.ToTriangles(s, render.NewMarchingCubesUniform(cells)), nil
}

// SaveSTL polygonizes the skeleton and writes it as binary STL.
func (p *Preview) SaveSTL(path string, stems []graph.Stem) (int, error) {
	tris, err := p.Triangles(stems)
	if err != nil {
		return 0, err
	}
	if err := render.SaveSTL(path, tris); err != nil {
		return 0, fmt.Errorf("sdfx: save %s: %w", path, err)
	}
	return len(tris), nil
}
