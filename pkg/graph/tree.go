package graph

// Function is one step of a growth pipeline. Execute mutates stems in place:
// it may append stems, append children to existing nodes and modify nodes it
// created itself. id is the creator id the function stamps on new nodes and
// parentID the id of the function that ran before it (-1 for the first).
type Function interface {
	Execute(stems *[]Stem, id, parentID int) error
}

// Tree is a generated skeleton together with the pipeline that grows it.
// A Tree is never regenerated in place; ExecuteFunctions discards the
// previous stems and rebuilds from scratch.
type Tree struct {
	Stems []Stem
	first Function
}

// NewTree creates an empty tree grown by first.
func NewTree(first Function) *Tree {
	return &Tree{first: first}
}

// SetFirstFunction replaces the root of the growth pipeline.
func (t *Tree) SetFirstFunction(f Function) {
	t.first = f
}

// ExecuteFunctions discards the current stems and runs the pipeline. A tree
// without a pipeline ends up empty, which is not an error.
func (t *Tree) ExecuteFunctions() error {
	t.Stems = nil
	if t.first == nil {
		return nil
	}
	return t.first.Execute(&t.Stems, 0, -1)
}

// NodeCount returns the number of nodes reachable from the stems.
func (t *Tree) NodeCount() int {
	return CountNodes(t.Stems)
}
