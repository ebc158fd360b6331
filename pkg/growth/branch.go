package growth

import (
	"math"
	"math/rand"

	"github.com/chazu/arbor/pkg/graph"
	"github.com/chazu/arbor/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// lengthEpsilon absorbs the float drift of summing segment lengths.
const lengthEpsilon = 1e-6

// Branch grows new branches out of the branches created by the previous
// function. Origins are scattered along each parent branch, then all of
// them are extended together in waves with a gravity pass after every wave.
type Branch struct {
	Base
	Start           float64  // start of the origin window, fraction of the parent branch length
	End             float64  // end of the origin window
	Length          Property // desired length of each new branch
	Resolution      float64  // segments per unit length
	StartRadius     Property // origin radius relative to the host node
	EndRadius       float64  // tip radius relative to the host node
	Randomness      Property
	GravityStrength float64
	Stiffness       float64
	UpAttraction    float64
	Phyllotaxis     float64  // degrees between consecutive origins
	Density         float64  // origins per unit length of parent branch
	SplitRadius     float64  // radius of a split child relative to its parent
	StartAngle      Property // degrees between the host direction and a new branch
	SplitProba      float64  // split probability per unit length
	SplitAngle      float64  // degrees
}

var _ graph.Function = (*Branch)(nil)

// NewBranch returns a branch function with the default parameters.
func NewBranch() *Branch {
	return &Branch{
		Start:           .1,
		End:             .95,
		Length:          Constant(9),
		Resolution:      3,
		StartRadius:     Constant(.4),
		EndRadius:       .05,
		Randomness:      Constant(.5),
		GravityStrength: 20,
		Stiffness:       5,
		UpAttraction:    5,
		Phyllotaxis:     137.5,
		Density:         2,
		SplitRadius:     .8,
		StartAngle:      Constant(45),
		SplitProba:      .5,
		SplitAngle:      35,
	}
}

// Validate checks the parameter ranges.
func (f *Branch) Validate() error {
	c := check{function: "branch"}
	c.unit("start", f.Start)
	c.unit("end", f.End)
	c.property("length", f.Length, c.nonNegative)
	c.positive("resolution", f.Resolution)
	c.property("start_radius", f.StartRadius, c.positive)
	c.positive("end_radius", f.EndRadius)
	c.property("randomness", f.Randomness, c.nonNegative)
	c.nonNegative("gravity_strength", f.GravityStrength)
	c.nonNegative("stiffness", f.Stiffness)
	c.nonNegative("up_attraction", f.UpAttraction)
	c.positive("density", f.Density)
	c.positive("split_radius", f.SplitRadius)
	c.property("start_angle", f.StartAngle, c.nonNegative)
	c.nonNegative("split_proba", f.SplitProba)
	c.nonNegative("split_angle", f.SplitAngle)
	return c.err
}

func (f *Branch) Execute(stems *[]graph.Stem, id, parentID int) error {
	if err := f.Validate(); err != nil {
		return err
	}
	r := f.rand()
	origins := f.placeOrigins(*stems, id, parentID, r)
	if err := f.grow(origins, id, r); err != nil {
		return err
	}
	return f.executeChildren(stems, id)
}

// ---------------------------------------------------------------------------
// Origins
// ---------------------------------------------------------------------------

// placeOrigins attaches a zero-length origin node every 1/Density along each
// branch created by parentID, within [Start, End] of that branch's length.
// Branches shorter than one spacing get no origins.
func (f *Branch) placeOrigins(stems []graph.Stem, id, parentID int, r *rand.Rand) []*graph.Node {
	var origins []*graph.Node
	spacing := 1 / f.Density

	for _, branch := range graph.SelectFromTree(stems, parentID) {
		if len(branch) == 0 || f.End < f.Start {
			continue
		}
		length := graph.BranchLength(branch[0].Node)
		if length < spacing {
			continue
		}
		absEnd := f.End * length
		next := f.Start * length // distance of the next origin from the branch base
		start := 0.0             // distance of the current node from the branch base
		tangent := kernel.OrthogonalVector(branch[0].Node.Direction)

		for _, ref := range branch {
			n := ref.Node
			turn := kernel.Radians(f.Phyllotaxis + (r.Float64()-.5)*2)
			if n.Length <= 0 {
				continue
			}
			end := start + n.Length
			for next <= end+lengthEpsilon && next <= absEnd+lengthEpsilon {
				tangent = kernel.PerpendicularTangent(kernel.Rotate(tangent, n.Direction, turn), n.Direction)
				pos := (next - start) / n.Length
				origins = append(origins, f.addOrigin(n, tangent, math.Min(pos, 1), id, r))
				next += spacing
			}
			start = end
		}
	}
	return origins
}

func (f *Branch) addOrigin(host *graph.Node, tangent v3.Vec, pos float64, id int, r *rand.Rand) *graph.Node {
	angle := f.StartAngle.Sample(r)
	direction := kernel.NormalizedOr(kernel.LerpVec(host.Direction, tangent, angle/90), host.Direction)
	origin := graph.NewNode(direction, host.Tangent, 0, host.Radius*f.StartRadius.Sample(r), id)
	origin.Growth = &graph.BranchGrowth{
		DesiredLength: f.Length.Sample(r),
		OriginRadius:  host.Radius,
	}
	host.AddChild(origin, pos)
	return origin
}

// ---------------------------------------------------------------------------
// Extension
// ---------------------------------------------------------------------------

// grow extends every unfinished origin one segment per wave until all tips
// reach their desired length. Gravity runs after each complete wave.
func (f *Branch) grow(origins []*graph.Node, id int, r *rand.Rand) error {
	var queue []*graph.Node
	for _, o := range origins {
		state, err := f.state(o)
		if err != nil {
			return err
		}
		if unfinished(state) {
			queue = append(queue, o)
		}
	}

	wave := len(queue)
	for len(queue) > 0 {
		tip := queue[0]
		queue = queue[1:]
		grown, err := f.growOnce(tip, id, r)
		if err != nil {
			return err
		}
		queue = append(queue, grown...)

		wave--
		if wave == 0 {
			wave = len(queue)
			for _, o := range origins {
				if err := f.applyGravity(o); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// growOnce appends one segment to tip and, with probability
// SplitProba/Resolution, a second diverging child. A zero-length origin
// has no tube to branch from and never splits. It returns the new
// children that still have length to grow.
func (f *Branch) growOnce(tip *graph.Node, id int, r *rand.Rand) ([]*graph.Node, error) {
	state, err := f.state(tip)
	if err != nil {
		return nil, err
	}
	split := r.Float64()*f.Resolution < f.SplitProba && tip.Length > lengthEpsilon

	segment := 1 / f.Resolution
	factor := 0.0
	if state.DesiredLength > 0 {
		factor = state.CurrentLength / state.DesiredLength
	}
	direction := tip.Direction.Add(kernel.RandomVec(r).MulScalar(f.Randomness.Sample(r) * segment))
	direction = direction.Add(kernel.Up.MulScalar(f.UpAttraction * segment / 50 * (1 - tip.Direction.Z)))
	radius := state.OriginRadius * kernel.Lerp(f.StartRadius.Sample(r), f.EndRadius, factor)
	length := math.Min(segment, state.DesiredLength-state.CurrentLength)
	current := state.CurrentLength + length

	var grown []*graph.Node
	child := graph.NewNode(direction, tip.Tangent, length, radius, id)
	child.Growth = &graph.BranchGrowth{
		DesiredLength: state.DesiredLength,
		CurrentLength: current,
		OriginRadius:  state.OriginRadius,
	}
	tip.AddChild(child, graph.Tip)
	if unfinished(child.Growth.(*graph.BranchGrowth)) {
		grown = append(grown, child)
	}

	if split {
		side := kernel.NormalizedOr(kernel.RandomUnitVec(r).Cross(tip.Direction), kernel.OrthogonalVector(tip.Direction))
		side = kernel.NormalizedOr(kernel.LerpVec(tip.Direction, side, f.SplitAngle/90), tip.Direction)
		splitChild := graph.NewNode(side, tip.Tangent, length, tip.Radius*f.SplitRadius, id)
		splitChild.Growth = &graph.BranchGrowth{
			DesiredLength: state.DesiredLength,
			CurrentLength: current,
			OriginRadius:  state.OriginRadius,
		}
		tip.AddChild(splitChild, r.Float64())
		if unfinished(splitChild.Growth.(*graph.BranchGrowth)) {
			grown = append(grown, splitChild)
		}
	}
	return grown, nil
}

func unfinished(s *graph.BranchGrowth) bool {
	return s.DesiredLength-s.CurrentLength > lengthEpsilon
}

// ---------------------------------------------------------------------------
// Gravity
// ---------------------------------------------------------------------------

// applyGravity bends the branch rooted at origin under its own weight.
func (f *Branch) applyGravity(origin *graph.Node) error {
	if _, err := f.updateWeight(origin); err != nil {
		return err
	}
	return f.bend(origin, kernel.Identity())
}

// updateWeight stores in each node its length plus the weight of all its
// descendants.
func (f *Branch) updateWeight(n *graph.Node) (float64, error) {
	weight := n.Length
	for _, c := range n.Children {
		w, err := f.updateWeight(c.Node)
		if err != nil {
			return 0, err
		}
		weight += w
	}
	state, err := f.state(n)
	if err != nil {
		return 0, err
	}
	state.CumulatedWeight = weight
	return weight, nil
}

// bend rotates n downward by an angle proportional to its horizontality and
// carried weight, damped by age. The rotation is composed with the ones of
// all ancestors before being passed to the children.
func (f *Branch) bend(n *graph.Node, previous sdf.M44) error {
	state, err := f.state(n)
	if err != nil {
		return err
	}
	state.Age += f.Stiffness / f.Resolution
	horizontality := 1 - math.Abs(n.Direction.Z)
	displacement := horizontality * state.CumulatedWeight * f.GravityStrength /
		f.Resolution / f.Resolution / 1000 / (1 + state.Age)

	rot := kernel.AxisAngle(n.Direction.Cross(kernel.Down), displacement).Mul(previous)
	n.Tangent = kernel.Apply(rot, n.Tangent)
	n.SetDirection(kernel.Apply(rot, n.Direction))

	for _, c := range n.Children {
		if err := f.bend(c.Node, rot); err != nil {
			return err
		}
	}
	return nil
}

func (f *Branch) state(n *graph.Node) (*graph.BranchGrowth, error) {
	s, ok := n.Growth.(*graph.BranchGrowth)
	if !ok || s == nil {
		return nil, &StateError{Function: "branch", Got: n.Growth}
	}
	return s, nil
}
