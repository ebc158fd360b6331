package growth

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/chazu/arbor/pkg/graph"
)

func TestRunNilPipeline(t *testing.T) {
	stems, err := Run(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stems) != 0 {
		t.Errorf("stems = %d, want 0", len(stems))
	}
}

type recorder struct {
	Base
	calls [][2]int
}

func (r *recorder) Execute(stems *[]graph.Stem, id, parentID int) error {
	r.calls = append(r.calls, [2]int{id, parentID})
	return r.executeChildren(stems, id)
}

func TestChildrenReceiveIncrementedIDs(t *testing.T) {
	root := &recorder{}
	child := &recorder{}
	grandchild := &recorder{}
	root.AddChild(child)
	child.AddChild(grandchild)

	if _, err := Run(root); err != nil {
		t.Fatal(err)
	}
	checks := []struct {
		name string
		r    *recorder
		want [2]int
	}{
		{"root", root, [2]int{0, -1}},
		{"child", child, [2]int{1, 0}},
		{"grandchild", grandchild, [2]int{2, 1}},
	}
	for _, c := range checks {
		if len(c.r.calls) != 1 || c.r.calls[0] != c.want {
			t.Errorf("%s calls = %v, want [%v]", c.name, c.r.calls, c.want)
		}
	}
}

func TestTrunkChildBranchUsesTrunkNodes(t *testing.T) {
	trunk := NewTrunk()
	b := NewBranch()
	b.Length = Constant(1)
	trunk.AddChild(b)
	stems, err := Run(trunk)
	if err != nil {
		t.Fatal(err)
	}
	if len(stems) != 1 {
		t.Fatalf("stems = %d, want 1", len(stems))
	}
	if len(nodesBy(stems, 1)) == 0 {
		t.Error("branch created no nodes on the trunk")
	}
}

func TestValidatePipelineFindsNestedError(t *testing.T) {
	trunk := NewTrunk()
	b := NewBranch()
	b.Density = -1
	trunk.AddChild(b)

	err := ValidatePipeline(trunk)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("err = %v, want *ConfigError", err)
	}
	if cfgErr.Function != "branch" || cfgErr.Field != "density" {
		t.Errorf("err = %+v", cfgErr)
	}
	if ValidatePipeline(nil) != nil {
		t.Error("nil pipeline should validate")
	}
}

func TestPipelineErrorStopsRun(t *testing.T) {
	trunk := NewTrunk()
	pipe := NewPipeRadius()
	pipe.EndRadius = 0
	trunk.AddChild(pipe)
	stems, err := Run(trunk)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}
	if stems != nil {
		t.Errorf("stems = %v, want nil on error", stems)
	}
}

func TestProperties(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	if got := Constant(2.5).Sample(r); got != 2.5 {
		t.Errorf("Constant.Sample = %v, want 2.5", got)
	}
	u := Uniform(1, 3)
	for i := 0; i < 100; i++ {
		v := u.Sample(r)
		if v < 1 || v >= 3 {
			t.Fatalf("Uniform sample %v outside [1, 3)", v)
		}
	}
	if lo, hi := u.Range(); lo != 1 || hi != 3 {
		t.Errorf("Range = %v, %v", lo, hi)
	}
	if u.String() != "uniform(1, 3)" {
		t.Errorf("String = %q", u.String())
	}
}
