package graph

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValidationSeverity indicates whether a finding makes the tree unusable for
// meshing or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // breaks a structural invariant
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding. Path locates the
// node as "stem/child/child...", e.g. "0/0/3".
type ValidationError struct {
	Path     string
	Message  string
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.Path, e.Message)
}

// unitTolerance bounds how far a direction or tangent may drift from unit
// length, and a tangent from perpendicular, before it is reported.
const unitTolerance = 1e-6

// Validate checks the structural invariants of a skeleton: it must be a
// strict tree with finite unit directions, tangents orthogonal to them,
// positive radii and non-negative lengths. Creator ids that decrease from
// parent to child are reported as warnings. Validate never mutates stems.
func Validate(stems []Stem) []ValidationError {
	var errs []ValidationError
	report := func(path []int, sev ValidationSeverity, format string, args ...any) {
		errs = append(errs, ValidationError{
			Path:     formatPath(path),
			Message:  fmt.Sprintf(format, args...),
			Severity: sev,
		})
	}

	// A node reached twice means a shared child or a cycle. Either way the
	// walk stops there so a cycle cannot recurse forever.
	seen := make(map[*Node]bool)

	var visit func(n *Node, path []int)
	visit = func(n *Node, path []int) {
		if seen[n] {
			report(path, SeverityError, "node is reachable more than once (shared child or cycle)")
			return
		}
		seen[n] = true
		validateNode(n, path, report)

		for i, c := range n.Children {
			childPath := append(append([]int(nil), path...), i)
			if c.Node == nil {
				report(childPath, SeverityError, "nil child")
				continue
			}
			if c.PositionInParent < 0 || c.PositionInParent > 1 || math.IsNaN(c.PositionInParent) {
				report(childPath, SeverityError, "position in parent %g outside [0, 1]", c.PositionInParent)
			}
			if c.Node.CreatorID < n.CreatorID {
				report(childPath, SeverityWarning, "creator id %d is lower than parent's %d", c.Node.CreatorID, n.CreatorID)
			}
			visit(c.Node, childPath)
		}
	}

	for i, s := range stems {
		if s.Node == nil {
			report([]int{i}, SeverityError, "stem has no node")
			continue
		}
		visit(s.Node, []int{i})
	}
	return errs
}

type reportFunc func(path []int, sev ValidationSeverity, format string, args ...any)

func validateNode(n *Node, path []int, report reportFunc) {
	if !(n.Radius > 0) {
		report(path, SeverityError, "radius %g is not positive", n.Radius)
	}
	if !(n.Length >= 0) {
		report(path, SeverityError, "length %g is negative", n.Length)
	}
	if d := n.Direction.Length(); math.Abs(d-1) > unitTolerance {
		report(path, SeverityError, "direction length %g is not 1", d)
	}
	if t := n.Tangent.Length(); math.Abs(t-1) > unitTolerance {
		report(path, SeverityError, "tangent length %g is not 1", t)
	}
	if dot := n.Direction.Dot(n.Tangent); math.Abs(dot) > unitTolerance {
		report(path, SeverityError, "tangent is not orthogonal to direction (dot %g)", dot)
	}
}

// HasErrors reports whether any finding has error severity.
func HasErrors(errs []ValidationError) bool {
	for _, e := range errs {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}

func formatPath(path []int) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, "/")
}
