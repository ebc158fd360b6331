package kernel

import (
	"math"
	"math/rand"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

const tol = 1e-9

func near(a, b v3.Vec) bool {
	return math.Abs(a.X-b.X) < 1e-6 && math.Abs(a.Y-b.Y) < 1e-6 && math.Abs(a.Z-b.Z) < 1e-6
}

func TestNormalized(t *testing.T) {
	tests := []struct {
		name   string
		in     v3.Vec
		want   v3.Vec
		wantOK bool
	}{
		{"axis", v3.Vec{X: 3}, v3.Vec{X: 1}, true},
		{"diagonal", v3.Vec{X: 3, Y: 4}, v3.Vec{X: 0.6, Y: 0.8}, true},
		{"zero", v3.Vec{}, v3.Vec{}, false},
		{"tiny", v3.Vec{X: 1e-12}, v3.Vec{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Normalized(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("Normalized(%v) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
			if !near(got, tt.want) {
				t.Errorf("Normalized(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLerp(t *testing.T) {
	if got := Lerp(2, 4, 0); got != 2 {
		t.Errorf("Lerp(2,4,0) = %v, want 2", got)
	}
	if got := Lerp(2, 4, 1); got != 4 {
		t.Errorf("Lerp(2,4,1) = %v, want 4", got)
	}
	if got := Lerp(2, 4, 0.5); math.Abs(got-3) > tol {
		t.Errorf("Lerp(2,4,.5) = %v, want 3", got)
	}
	got := LerpVec(v3.Vec{X: 1}, v3.Vec{Y: 1}, 0.25)
	if !near(got, v3.Vec{X: 0.75, Y: 0.25}) {
		t.Errorf("LerpVec = %v", got)
	}
}

func TestProjectOnPlane(t *testing.T) {
	got := ProjectOnPlane(v3.Vec{X: 1, Y: 2, Z: 3}, Up)
	if !near(got, v3.Vec{X: 1, Y: 2}) {
		t.Errorf("ProjectOnPlane = %v, want (1,2,0)", got)
	}
}

func TestOrthogonalVector(t *testing.T) {
	for _, v := range []v3.Vec{Up, Down, {X: 1}, {X: 1, Y: 1, Z: 1}, {Y: -1, Z: 0.2}} {
		n, _ := Normalized(v)
		o := OrthogonalVector(n)
		if math.Abs(o.Dot(n)) > 1e-9 {
			t.Errorf("OrthogonalVector(%v) = %v not orthogonal", v, o)
		}
		if math.Abs(o.Length()-1) > 1e-9 {
			t.Errorf("OrthogonalVector(%v) length = %v, want 1", v, o.Length())
		}
	}
}

func TestPerpendicularTangentDegenerate(t *testing.T) {
	// A tangent parallel to the direction has no usable projection.
	got := PerpendicularTangent(Up, Up)
	if math.Abs(got.Dot(Up)) > 1e-9 || math.Abs(got.Length()-1) > 1e-9 {
		t.Errorf("PerpendicularTangent(up, up) = %v, want unit vector orthogonal to up", got)
	}
}

func TestRandomUnitVec(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		v := RandomUnitVec(r)
		if math.Abs(v.Length()-1) > 1e-9 {
			t.Fatalf("RandomUnitVec length = %v", v.Length())
		}
	}
}

func TestRandomVecDeterministic(t *testing.T) {
	a := RandomVec(rand.New(rand.NewSource(42)))
	b := RandomVec(rand.New(rand.NewSource(42)))
	if a != b {
		t.Errorf("same seed gave %v and %v", a, b)
	}
	if math.Abs(a.X) > 1 || math.Abs(a.Y) > 1 || math.Abs(a.Z) > 1 {
		t.Errorf("RandomVec out of range: %v", a)
	}
}

func TestRotate(t *testing.T) {
	got := Rotate(v3.Vec{X: 1}, Up, math.Pi/2)
	if !near(got, v3.Vec{Y: 1}) {
		t.Errorf("Rotate(x, z, 90°) = %v, want (0,1,0)", got)
	}
	// Degenerate axis leaves the vector alone.
	got = Rotate(v3.Vec{X: 1}, v3.Vec{}, 1)
	if !near(got, v3.Vec{X: 1}) {
		t.Errorf("Rotate with zero axis = %v, want (1,0,0)", got)
	}
}

func TestComposedRotations(t *testing.T) {
	a := AxisAngle(Up, math.Pi/4)
	b := AxisAngle(Up, math.Pi/4)
	got := Apply(a.Mul(b), v3.Vec{X: 1})
	if !near(got, v3.Vec{Y: 1}) {
		t.Errorf("two 45° turns = %v, want (0,1,0)", got)
	}
}

func TestLookAt(t *testing.T) {
	dirs := []v3.Vec{Up, Down, {X: 1}, {X: 1, Y: 1}, {Y: 1, Z: 1}}
	for _, d := range dirs {
		n, _ := Normalized(d)
		got := Apply(LookAt(d), Up)
		if !near(got, n) {
			t.Errorf("LookAt(%v) maps +Z to %v", d, got)
		}
	}
}

func TestWrapAngle(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0, 0},
		{-math.Pi / 2, 3 * math.Pi / 2},
		{5 * math.Pi / 2, math.Pi / 2},
		{2 * math.Pi, 0},
	}
	for _, tt := range tests {
		if got := WrapAngle(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("WrapAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
