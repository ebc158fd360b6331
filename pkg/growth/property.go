package growth

import (
	"fmt"
	"math/rand"
)

// Property is a float parameter that may vary per sample. Samples are drawn
// from the random stream of the function that owns the property.
type Property interface {
	Sample(r *rand.Rand) float64
	// Range returns the smallest and largest value Sample can return.
	Range() (min, max float64)
}

// Constant is a property that always samples the same value.
type Constant float64

func (c Constant) Sample(*rand.Rand) float64 { return float64(c) }

func (c Constant) Range() (float64, float64) { return float64(c), float64(c) }

func (c Constant) String() string { return fmt.Sprintf("%g", float64(c)) }

// UniformProperty samples uniformly in [Min, Max).
type UniformProperty struct {
	Min, Max float64
}

// Uniform returns a property sampling uniformly between min and max.
func Uniform(min, max float64) *UniformProperty {
	return &UniformProperty{Min: min, Max: max}
}

func (u *UniformProperty) Sample(r *rand.Rand) float64 {
	return u.Min + r.Float64()*(u.Max-u.Min)
}

func (u *UniformProperty) Range() (float64, float64) { return u.Min, u.Max }

func (u *UniformProperty) String() string {
	return fmt.Sprintf("uniform(%g, %g)", u.Min, u.Max)
}
