// Package kernel provides the geometry primitives shared by the growth
// pipeline and the meshers. Vectors are sdfx v3.Vec values and rotations are
// sdfx 4x4 matrices, so every helper here is a pure function with no state.
// Randomness is always drawn from a caller-owned *rand.Rand.
package kernel

import (
	"math"
	"math/rand"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Epsilon is the length below which a vector is treated as zero.
const Epsilon = 1e-9

var (
	// Up is the world vertical axis.
	Up = v3.Vec{X: 0, Y: 0, Z: 1}
	// Down is the direction gravity pulls toward.
	Down = v3.Vec{X: 0, Y: 0, Z: -1}
)

// Normalized returns v scaled to unit length. ok is false when v is too short
// to have a direction, in which case the zero vector is returned.
func Normalized(v v3.Vec) (n v3.Vec, ok bool) {
	l := v.Length()
	if l < Epsilon {
		return v3.Vec{}, false
	}
	return v.DivScalar(l), true
}

// NormalizedOr returns the unit vector of v, or fallback when v is degenerate.
func NormalizedOr(v, fallback v3.Vec) v3.Vec {
	if n, ok := Normalized(v); ok {
		return n
	}
	return fallback
}

// Lerp interpolates between a and b. t=0 yields a, t=1 yields b.
func Lerp(a, b, t float64) float64 {
	return t*b + (1-t)*a
}

// LerpVec interpolates component-wise between a and b.
func LerpVec(a, b v3.Vec, t float64) v3.Vec {
	return b.MulScalar(t).Add(a.MulScalar(1 - t))
}

// ProjectOnPlane removes from v its component along planeNormal.
// planeNormal must be a unit vector.
func ProjectOnPlane(v, planeNormal v3.Vec) v3.Vec {
	return v.Sub(planeNormal.MulScalar(v.Dot(planeNormal)))
}

// OrthogonalVector returns a unit vector perpendicular to v.
func OrthogonalVector(v v3.Vec) v3.Vec {
	tmp := v3.Vec{X: 1, Y: 0, Z: 0}
	if math.Abs(v.Z) >= 0.95 {
		tmp = v3.Vec{X: 0, Y: 1, Z: 0}
	}
	return NormalizedOr(tmp.Cross(v), v3.Vec{X: 0, Y: 1, Z: 0})
}

// PerpendicularTangent projects tangent onto the plane orthogonal to
// direction and normalizes it. When the projection collapses, an arbitrary
// orthogonal vector is returned instead.
func PerpendicularTangent(tangent, direction v3.Vec) v3.Vec {
	if t, ok := Normalized(ProjectOnPlane(tangent, direction)); ok {
		return t
	}
	return OrthogonalVector(direction)
}

// RandomVec returns a vector with each component uniform in [-1, 1].
func RandomVec(r *rand.Rand) v3.Vec {
	return v3.Vec{
		X: r.Float64()*2 - 1,
		Y: r.Float64()*2 - 1,
		Z: r.Float64()*2 - 1,
	}
}

// RandomUnitVec returns a random unit vector. Draws that land too close to
// the origin are rejected and redrawn.
func RandomUnitVec(r *rand.Rand) v3.Vec {
	for {
		if n, ok := Normalized(RandomVec(r)); ok {
			return n
		}
	}
}

// Identity returns the identity rotation.
func Identity() sdf.M44 {
	return sdf.Identity3d()
}

// AxisAngle returns the rotation of angle radians about axis (right hand
// rule). A degenerate axis yields the identity.
func AxisAngle(axis v3.Vec, angle float64) sdf.M44 {
	a, ok := Normalized(axis)
	if !ok || angle == 0 {
		return sdf.Identity3d()
	}
	return sdf.Rotate3d(a, angle)
}

// Rotate rotates v by angle radians about axis.
func Rotate(v, axis v3.Vec, angle float64) v3.Vec {
	return AxisAngle(axis, angle).MulPosition(v)
}

// Apply rotates v by the rotation matrix m.
func Apply(m sdf.M44, v v3.Vec) v3.Vec {
	return m.MulPosition(v)
}

// LookAt returns the rotation that carries +Z onto direction.
func LookAt(direction v3.Vec) sdf.M44 {
	d := NormalizedOr(direction, Up)
	axis := Up.Cross(d)
	sin := axis.Length()
	cos := Up.Dot(d)
	angle := math.Atan2(sin, cos)
	if angle < 0.01 {
		return sdf.Identity3d()
	}
	if math.Pi-angle < 0.01 {
		return sdf.Rotate3d(v3.Vec{X: 1, Y: 0, Z: 0}, math.Pi)
	}
	return sdf.Rotate3d(axis.DivScalar(sin), angle)
}

// WrapAngle maps an angle in radians into [0, 2π).
func WrapAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	if a >= 2*math.Pi {
		a = 0
	}
	return a
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}
