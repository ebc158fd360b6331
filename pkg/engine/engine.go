// Package engine evaluates tree recipes. A recipe is a small Lisp program,
// run in a sandboxed zygomys environment, whose last form builds the growth
// pipeline:
//
//	(trunk :length 8 :seed 3
//	  (branch :length (uniform 4 6) :density 1.5
//	    (pipe-radius)))
//
// Keywords set parameters; positional arguments are child functions.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/arbor/pkg/graph"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Recipe is the outcome of a successful evaluation.
type Recipe struct {
	// Root is the first function of the pipeline, nil for an empty recipe.
	Root graph.Function
}

type parent interface {
	Children() []graph.Function
}

// Functions returns the number of growth functions in the pipeline.
func (r *Recipe) Functions() int {
	var count func(graph.Function) int
	count = func(f graph.Function) int {
		if f == nil {
			return 0
		}
		n := 1
		if p, ok := f.(parent); ok {
			for _, c := range p.Children() {
				n += count(c)
			}
		}
		return n
	}
	return count(r.Root)
}

// Engine wraps the zygomys interpreter for recipe evaluation.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	// Timeout bounds a single evaluation. Zero means EvalTimeout.
	Timeout time.Duration

	mu         sync.Mutex
	generation uint64
}

// NewEngine creates a new Engine instance.
func NewEngine() *Engine {
	return &Engine{Timeout: EvalTimeout}
}

// Evaluate runs recipe source and returns the pipeline it builds.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
//
// Return semantics:
//   - On success: returns recipe + nil errors + nil error
//   - On parse/eval failure: returns nil recipe + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*Recipe, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		rec, evalErrs, err := e.evaluate(source)
		ch <- evalResult{recipe: rec, errors: evalErrs, err: err}
	}()

	timeout := e.Timeout
	if timeout <= 0 {
		timeout = EvalTimeout
	}
	return waitWithTimeout(ch, gen, timeout, &e.mu, &e.generation)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*Recipe, []EvalError, error) {
	// Empty source is a valid recipe that grows nothing.
	if strings.TrimSpace(source) == "" {
		return &Recipe{}, nil, nil
	}

	// Sandbox mode prevents recipes from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env)

	err := env.LoadString(preprocessSource(source))
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	last, err := env.Run()
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	fn, ok := last.(*sexpFunction)
	if !ok {
		return nil, []EvalError{{
			Message: fmt.Sprintf("recipe must end with a growth function, got %s", describe(last)),
		}}, nil
	}
	return &Recipe{Root: fn.fn}, nil, nil
}

func describe(s zygo.Sexp) string {
	if s == nil || s == zygo.SexpNull {
		return "nil"
	}
	return s.SexpString(nil)
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	// Try to extract line numbers from the error message.
	// zygomys formats parse errors as "Error on line N: <details>\n"
	if m := linePattern.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		detail := strings.TrimSpace(m[2])
		return []EvalError{{
			Line:    line,
			Col:     0,
			Message: detail,
		}}
	}

	if m := linePatternShort.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		detail := strings.TrimSpace(m[2])
		return []EvalError{{
			Line:    line,
			Col:     0,
			Message: detail,
		}}
	}

	// Fallback: no line info available.
	return []EvalError{{
		Line:    0,
		Col:     0,
		Message: strings.TrimSpace(msg),
	}}
}
