package growth

import (
	"math"

	"github.com/chazu/arbor/pkg/graph"
)

// PipeRadius recomputes every radius of the skeleton from the tips down,
// following the pipe model: the cross-section of a node is the generalized
// sum of its children's, plus a thickening proportional to its own length.
// It creates no nodes.
type PipeRadius struct {
	Base
	Power          float64
	EndRadius      float64 // radius given to every leaf
	ConstantGrowth float64 // extra radius per unit length
}

var _ graph.Function = (*PipeRadius)(nil)

// NewPipeRadius returns a pipe radius function with the default parameters.
func NewPipeRadius() *PipeRadius {
	return &PipeRadius{
		Power:          2,
		EndRadius:      .01,
		ConstantGrowth: .01,
	}
}

// Validate checks the parameter ranges.
func (f *PipeRadius) Validate() error {
	c := check{function: "pipe_radius"}
	c.positive("power", f.Power)
	c.positive("end_radius", f.EndRadius)
	c.nonNegative("constant_growth", f.ConstantGrowth)
	return c.err
}

func (f *PipeRadius) Execute(stems *[]graph.Stem, id, parentID int) error {
	if err := f.Validate(); err != nil {
		return err
	}
	for _, s := range *stems {
		if s.Node != nil {
			f.updateRadius(s.Node)
		}
	}
	return f.executeChildren(stems, id)
}

func (f *PipeRadius) updateRadius(n *graph.Node) float64 {
	if n.IsLeaf() {
		n.Radius = f.EndRadius
		return n.Radius
	}
	sum := 0.0
	for _, c := range n.Children {
		sum += math.Pow(f.updateRadius(c.Node), f.Power)
	}
	n.Radius = math.Pow(sum, 1/f.Power) + f.ConstantGrowth*n.Length
	return n.Radius
}
