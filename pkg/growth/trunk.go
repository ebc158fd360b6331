package growth

import (
	"math"

	"github.com/chazu/arbor/pkg/graph"
	"github.com/chazu/arbor/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/tanema/gween/ease"
)

// Trunk creates one new stem: a chain of continuation-linked nodes rising
// from Position and tapering from StartRadius to EndRadius. It ignores the
// nodes of any previous function.
type Trunk struct {
	Base
	Length       float64 // total length of the chain
	Resolution   float64 // length of one segment; the last one takes the remainder
	StartRadius  float64
	EndRadius    float64
	Shape        float64 // exponent of the radius profile, t^Shape
	Randomness   float64
	UpAttraction float64
	Position     v3.Vec

	// Taper replaces the t^Shape radius profile when set. It is called as
	// Taper(i, 0, 1, n) for node i of n.
	Taper ease.TweenFunc
}

var _ graph.Function = (*Trunk)(nil)

// NewTrunk returns a trunk with the default parameters.
func NewTrunk() *Trunk {
	return &Trunk{
		Length:       7,
		Resolution:   .5,
		StartRadius:  .3,
		EndRadius:    .05,
		Shape:        .5,
		Randomness:   .1,
		UpAttraction: 1,
	}
}

// Validate checks the parameter ranges.
func (f *Trunk) Validate() error {
	c := check{function: "trunk"}
	c.positive("length", f.Length)
	c.positive("resolution", f.Resolution)
	c.positive("start_radius", f.StartRadius)
	c.positive("end_radius", f.EndRadius)
	c.positive("shape", f.Shape)
	c.nonNegative("randomness", f.Randomness)
	c.nonNegative("up_attraction", f.UpAttraction)
	return c.err
}

// NodeCount returns the number of nodes Execute creates.
func (f *Trunk) NodeCount() int {
	// the epsilon keeps 7/0.5 from rounding up to 15
	n := int(math.Ceil(f.Length/f.Resolution - 1e-9))
	if n < 1 {
		n = 1
	}
	return n
}

func (f *Trunk) Execute(stems *[]graph.Stem, id, parentID int) error {
	if err := f.Validate(); err != nil {
		return err
	}
	r := f.rand()
	count := f.NodeCount()

	var first, current *graph.Node
	direction := kernel.Up
	tangent := v3.Vec{X: 1}
	for i := 0; i < count; i++ {
		length := f.Resolution
		if i == count-1 {
			length = f.Length - float64(i)*f.Resolution
		}
		if i > 0 {
			direction = direction.Add(kernel.RandomVec(r).MulScalar(f.Randomness * f.Resolution))
			direction = direction.Add(kernel.Up.MulScalar(f.UpAttraction * f.Resolution))
		}
		radius := kernel.Lerp(f.StartRadius, f.EndRadius, f.taper(i, count))
		node := graph.NewNode(direction, tangent, length, radius, id)
		direction, tangent = node.Direction, node.Tangent

		if first == nil {
			first = node
		} else {
			current.AddChild(node, graph.Tip)
		}
		current = node
	}

	*stems = append(*stems, graph.Stem{Node: first, Position: f.Position})
	return f.executeChildren(stems, id)
}

// taper maps node i of n onto [0, 1] along the radius profile.
func (f *Trunk) taper(i, n int) float64 {
	if f.Taper != nil {
		return float64(f.Taper(float32(i), 0, 1, float32(n)))
	}
	return math.Pow(float64(i)/float64(n), f.Shape)
}
