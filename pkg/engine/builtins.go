package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chazu/arbor/pkg/graph"
	"github.com/chazu/arbor/pkg/growth"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource rewrites recipe source into something zygomys reads:
//
//  1. :keyword becomes the string "__kw_keyword", so keywords never need
//     to be bound as globals.
//  2. ; and ;; line comments become // comments.
//  3. Hyphens inside identifiers become underscores (pipe-radius ->
//     pipe_radius); zygomys would read them as subtraction.
//
// String literals, double-quoted or backtick, pass through untouched.
func preprocessSource(source string) string {
	s := &scanner{src: []byte(source), out: make([]byte, 0, len(source)+len(source)/4)}
	for s.i < len(s.src) {
		switch c := s.src[s.i]; {
		case c == '"':
			s.quoted('"', true)
		case c == '`':
			s.quoted('`', false)
		case c == ';':
			s.comment()
		case c == ':' && s.keyword():
		case c == '-' && s.inIdent():
			s.emit('_')
		default:
			s.emit(c)
		}
	}
	return string(s.out)
}

type scanner struct {
	src []byte
	out []byte
	i   int
}

func (s *scanner) emit(c ...byte) {
	s.out = append(s.out, c...)
	s.i += len(c)
}

// quoted copies a literal delimited by q, including an unterminated tail.
func (s *scanner) quoted(q byte, escapes bool) {
	s.emit(q)
	for s.i < len(s.src) && s.src[s.i] != q {
		if escapes && s.src[s.i] == '\\' && s.i+1 < len(s.src) {
			s.emit(s.src[s.i], s.src[s.i+1])
			continue
		}
		s.emit(s.src[s.i])
	}
	if s.i < len(s.src) {
		s.emit(q)
	}
}

func (s *scanner) comment() {
	s.out = append(s.out, '/', '/')
	for s.i < len(s.src) && s.src[s.i] == ';' {
		s.i++
	}
	for s.i < len(s.src) && s.src[s.i] != '\n' {
		s.emit(s.src[s.i])
	}
}

// keyword rewrites a keyword at the cursor and reports whether it did.
// The := operator is copied as is.
func (s *scanner) keyword() bool {
	if s.i+1 >= len(s.src) {
		return false
	}
	next := s.src[s.i+1]
	if next == '=' {
		s.emit(':', '=')
		return true
	}
	if !isLetter(next) {
		return false
	}
	j := s.i + 1
	for j < len(s.src) && isKWChar(s.src[j]) {
		j++
	}
	s.out = append(s.out, '"')
	s.out = append(s.out, kwPrefix...)
	s.out = append(s.out, s.src[s.i+1:j]...)
	s.out = append(s.out, '"')
	s.i = j
	return true
}

// inIdent reports whether the hyphen at the cursor joins two identifier
// parts rather than acting as a minus sign.
func (s *scanner) inIdent() bool {
	return s.i > 0 && s.i+1 < len(s.src) &&
		isIdentChar(s.src[s.i-1]) && isLetter(s.src[s.i+1])
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpFunction wraps a growth function so it can be nested as a child.
type sexpFunction struct {
	name string
	fn   graph.Function
}

func (f *sexpFunction) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s)", f.name)
}
func (f *sexpFunction) Type() *zygo.RegisteredType { return nil }

// sexpProperty wraps a random property such as (uniform 4 6).
type sexpProperty struct {
	prop growth.Property
}

func (p *sexpProperty) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprint(p.prop)
}
func (p *sexpProperty) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a v3.Vec.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Trailing keyword with no value; apply reports it.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt64 extracts an integer from a SexpInt.
func toInt64(s zygo.Sexp) (int64, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_z) and plain strings ("z").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toVec3 extracts a vector from a sexpVec3.
func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toProperty accepts a plain number as a constant or a wrapped property.
func toProperty(s zygo.Sexp) (growth.Property, error) {
	if p, ok := s.(*sexpProperty); ok {
		return p.prop, nil
	}
	f, err := toFloat64(s)
	if err != nil {
		return nil, fmt.Errorf("expected number or (uniform min max): %w", err)
	}
	return growth.Constant(f), nil
}

// toFunction extracts a growth function from a sexpFunction.
func toFunction(s zygo.Sexp) (graph.Function, error) {
	if f, ok := s.(*sexpFunction); ok {
		return f.fn, nil
	}
	return nil, fmt.Errorf("expected growth function, got %T (%s)", s, s.SexpString(nil))
}

// ---------------------------------------------------------------------------
// Parameter binding
// ---------------------------------------------------------------------------

// params binds keyword names to the fields of one growth function.
type params struct {
	fn     string
	floats map[string]*float64
	props  map[string]*growth.Property
	custom map[string]func(zygo.Sexp) error
}

// apply sets every keyword of kw. Unknown keywords are errors so that typos
// do not silently fall back to defaults. Keywords are applied in sorted
// order so the first error reported is stable.
func (p params) apply(kw map[string]zygo.Sexp) error {
	names := make([]string, 0, len(kw))
	for k := range kw {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		v := kw[k]
		switch {
		case p.floats[k] != nil:
			f, err := toFloat64(v)
			if err != nil {
				return fmt.Errorf("%s: %s: %w", p.fn, k, err)
			}
			*p.floats[k] = f
		case p.props[k] != nil:
			prop, err := toProperty(v)
			if err != nil {
				return fmt.Errorf("%s: %s: %w", p.fn, k, err)
			}
			*p.props[k] = prop
		case p.custom[k] != nil:
			if err := p.custom[k](v); err != nil {
				return fmt.Errorf("%s: %s: %w", p.fn, k, err)
			}
		default:
			return fmt.Errorf("%s: unknown keyword :%s", p.fn, k)
		}
	}
	return nil
}

// baseParams returns the custom setters every function shares.
func baseParams(b *growth.Base) map[string]func(zygo.Sexp) error {
	return map[string]func(zygo.Sexp) error{
		"seed": func(s zygo.Sexp) error {
			n, err := toInt64(s)
			b.Seed = n
			return err
		},
	}
}

// addChildren registers every positional argument as a child function.
func addChildren(fn string, b *growth.Base, args []zygo.Sexp) error {
	for i, a := range args {
		c, err := toFunction(a)
		if err != nil {
			return fmt.Errorf("%s: child %d: %w", fn, i+1, err)
		}
		b.AddChild(c)
	}
	return nil
}

// build applies the keywords, attaches the children and wraps the result.
func build(p params, b *growth.Base, f graph.Function, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	if err := p.apply(pa.kw); err != nil {
		return zygo.SexpNull, err
	}
	if err := addChildren(p.fn, b, pa.positional); err != nil {
		return zygo.SexpNull, err
	}
	return &sexpFunction{name: p.fn, fn: f}, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the recipe builtins into a zygomys environment.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp) {

	// -----------------------------------------------------------------------
	// (trunk :length 7 :resolution .5 :start-radius .3 :end-radius .05
	//        :shape .5 :randomness .1 :up-attraction 1
	//        :position (vec3 0 0 0) :taper :in-out-quad :seed 0 children...)
	// -----------------------------------------------------------------------
	env.AddFunction("trunk", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		f := growth.NewTrunk()
		custom := baseParams(&f.Base)
		custom["position"] = func(s zygo.Sexp) error {
			v, err := toVec3(s)
			f.Position = v
			return err
		}
		custom["taper"] = func(s zygo.Sexp) error {
			n, err := toKeywordString(s)
			if err != nil {
				return err
			}
			f.Taper, err = growth.TaperByName(n)
			return err
		}
		return build(params{
			fn: "trunk",
			floats: map[string]*float64{
				"length":        &f.Length,
				"resolution":    &f.Resolution,
				"start-radius":  &f.StartRadius,
				"end-radius":    &f.EndRadius,
				"shape":         &f.Shape,
				"randomness":    &f.Randomness,
				"up-attraction": &f.UpAttraction,
			},
			custom: custom,
		}, &f.Base, f, args)
	})

	// -----------------------------------------------------------------------
	// (branch :start .1 :end .95 :length (uniform 6 9) :density 2 ... children...)
	// -----------------------------------------------------------------------
	env.AddFunction("branch", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		f := growth.NewBranch()
		return build(params{
			fn: "branch",
			floats: map[string]*float64{
				"start":            &f.Start,
				"end":              &f.End,
				"resolution":       &f.Resolution,
				"end-radius":       &f.EndRadius,
				"gravity-strength": &f.GravityStrength,
				"stiffness":        &f.Stiffness,
				"up-attraction":    &f.UpAttraction,
				"phyllotaxis":      &f.Phyllotaxis,
				"density":          &f.Density,
				"split-radius":     &f.SplitRadius,
				"split-proba":      &f.SplitProba,
				"split-angle":      &f.SplitAngle,
			},
			props: map[string]*growth.Property{
				"length":       &f.Length,
				"start-radius": &f.StartRadius,
				"randomness":   &f.Randomness,
				"start-angle":  &f.StartAngle,
			},
			custom: baseParams(&f.Base),
		}, &f.Base, f, args)
	})

	// -----------------------------------------------------------------------
	// (pipe-radius :power 2 :end-radius .01 :constant-growth .01 children...)
	//
	// Registered as "pipe_radius"; the preprocessor rewrites the hyphen.
	// -----------------------------------------------------------------------
	env.AddFunction("pipe_radius", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		f := growth.NewPipeRadius()
		return build(params{
			fn: "pipe-radius",
			floats: map[string]*float64{
				"power":           &f.Power,
				"end-radius":      &f.EndRadius,
				"constant-growth": &f.ConstantGrowth,
			},
			custom: baseParams(&f.Base),
		}, &f.Base, f, args)
	})

	// -----------------------------------------------------------------------
	// (uniform 4 6)
	// -----------------------------------------------------------------------
	env.AddFunction("uniform", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("uniform requires exactly 2 arguments, got %d", len(args))
		}
		lo, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("uniform: min: %w", err)
		}
		hi, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("uniform: max: %w", err)
		}
		if hi < lo {
			return zygo.SexpNull, fmt.Errorf("uniform: max %g is below min %g", hi, lo)
		}
		return &sexpProperty{prop: growth.Uniform(lo, hi)}, nil
	})

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}

		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: y: %w", err)
		}
		z, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: z: %w", err)
		}

		return &sexpVec3{vec: v3.Vec{X: x, Y: y, Z: z}}, nil
	})
}
