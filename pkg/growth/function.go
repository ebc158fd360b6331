package growth

import (
	"math/rand"

	"github.com/chazu/arbor/pkg/graph"
)

// Base carries what every growth function shares: its seed and the
// functions that run after it.
type Base struct {
	Seed     int64
	children []graph.Function
}

// AddChild registers f to run after this function. Children run in the
// order they were added and all receive the same id.
func (b *Base) AddChild(f graph.Function) {
	b.children = append(b.children, f)
}

// Children returns the registered child functions.
func (b *Base) Children() []graph.Function {
	return b.children
}

// rand returns a fresh random stream for one execution. Two executions with
// the same seed draw the same numbers.
func (b *Base) rand() *rand.Rand {
	return rand.New(rand.NewSource(b.Seed))
}

func (b *Base) executeChildren(stems *[]graph.Stem, id int) error {
	for _, c := range b.children {
		if err := c.Execute(stems, id+1, id); err != nil {
			return err
		}
	}
	return nil
}

// Validator is implemented by functions that can check their configuration
// before touching the skeleton.
type Validator interface {
	Validate() error
}

type parent interface {
	Children() []graph.Function
}

// ValidatePipeline validates root and every function reachable through its
// children, returning the first configuration error.
func ValidatePipeline(root graph.Function) error {
	if root == nil {
		return nil
	}
	if v, ok := root.(Validator); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	if p, ok := root.(parent); ok {
		for _, c := range p.Children() {
			if err := ValidatePipeline(c); err != nil {
				return err
			}
		}
	}
	return nil
}

// Run executes the pipeline rooted at root on an empty skeleton and returns
// the resulting stems. A nil root yields no stems.
func Run(root graph.Function) ([]graph.Stem, error) {
	var stems []graph.Stem
	if root == nil {
		return stems, nil
	}
	if err := root.Execute(&stems, 0, -1); err != nil {
		return nil, err
	}
	return stems, nil
}
