// Package tessellate skins a skeleton into a single quad mesh. Each node
// becomes a tube of rings bridged by quads; side branches are attached
// through a collar cut into their parent's tube so the surface stays in one
// piece. The mesher is read-only and never mutates the skeleton.
package tessellate

import (
	"errors"
	"fmt"

	"github.com/chazu/arbor/pkg/graph"
	"github.com/chazu/arbor/pkg/mesh"
)

// Attribute names written by the mesher.
const (
	AttrSmoothAmount = "smooth_amount"
	AttrRadius       = "radius"
	AttrDirection    = "direction"
)

// ErrInvalidMesher is wrapped by every *Error.
var ErrInvalidMesher = errors.New("tessellate: invalid mesher configuration")

// Error reports a mesher configuration problem.
type Error struct {
	Field  string
	Value  float64
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("tessellate: %s = %g: %s", e.Field, e.Value, e.Reason)
}

func (e *Error) Unwrap() error { return ErrInvalidMesher }

// Mesher converts skeletons into meshes.
type Mesher struct {
	RadialResolution int     // vertices per ring of a stem
	CapEnds          bool    // close stem bases, tips and detached branch bases
	MaxBranchRatio   float64 // child/parent radius ratio above which the cutout is clamped
}

// New returns a mesher with the default settings.
func New() *Mesher {
	return &Mesher{
		RadialResolution: 8,
		MaxBranchRatio:   .95,
	}
}

// Validate checks the configuration.
func (ms *Mesher) Validate() error {
	if ms.RadialResolution < 3 {
		return &Error{Field: "radial_resolution", Value: float64(ms.RadialResolution), Reason: "must be at least 3"}
	}
	if !(ms.MaxBranchRatio > 0 && ms.MaxBranchRatio < 1) {
		return &Error{Field: "max_branch_ratio", Value: ms.MaxBranchRatio, Reason: "must be within (0, 1)"}
	}
	return nil
}

// MeshTree meshes every stem of tree.
func (ms *Mesher) MeshTree(tree *graph.Tree) (*mesh.Mesh, error) {
	if tree == nil {
		return ms.MeshStems(nil)
	}
	return ms.MeshStems(tree.Stems)
}

// MeshStems meshes stems into one mesh. Leaves end a tube without adding a
// ring, so a stem made of a single leaf contributes nothing. An empty
// skeleton yields an empty mesh with the attributes registered.
func (ms *Mesher) MeshStems(stems []graph.Stem) (*mesh.Mesh, error) {
	if err := ms.Validate(); err != nil {
		return nil, err
	}
	m := mesh.New()
	for _, name := range []string{AttrSmoothAmount, AttrRadius} {
		if err := m.AddFloatAttribute(name); err != nil {
			return nil, err
		}
	}
	if err := m.AddVectorAttribute(AttrDirection); err != nil {
		return nil, err
	}

	b := &builder{ms: ms, m: m}
	for _, s := range stems {
		if s.Node == nil || s.Node.IsLeaf() {
			continue
		}
		base := b.addCircle(s.Node, s.Position, 0, ms.RadialResolution, 0)
		b.capBase(base)
		b.meshNode(s.Node, s.Position, base)
	}
	if err := m.CheckParity(); err != nil {
		return nil, fmt.Errorf("tessellate: %w", err)
	}
	return m, nil
}
