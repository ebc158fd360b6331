package tessellate

import (
	"math"

	"github.com/chazu/arbor/pkg/kernel"
)

// indexRange is a circular half-open range of quad indices [Min, Max) on a
// ring. Min > Max means the range wraps past index 0. It also names the
// boundary vertices Min..Max inclusive.
type indexRange struct {
	Min, Max int
}

// width returns the number of quads in the range.
func (r indexRange) width(n int) int {
	return (r.Max - r.Min + n) % n
}

// contains reports whether quad i lies in the range.
func (r indexRange) contains(i, n int) bool {
	return (i-r.Min+n)%n < r.width(n)
}

// indicesOnCircle returns the quads of an n-vertex ring covered by a child
// of relative radius ratio leaving at angle. The range spans the child's
// angular half-width asin(ratio) on both sides and always covers at least
// one quad.
func indicesOnCircle(n int, ratio, angle float64) indexRange {
	delta := math.Asin(math.Max(0, math.Min(1, ratio)))
	inc := 2 * math.Pi / float64(n)
	lo := int(kernel.WrapAngle(angle-delta)/inc) % n
	hi := int(kernel.WrapAngle(angle+delta+inc)/inc) % n
	if hi == lo {
		hi = (lo + 1) % n
	}
	return indexRange{Min: lo, Max: hi}
}

func masked(mask []indexRange, i, n int) bool {
	for _, r := range mask {
		if r.contains(i, n) {
			return true
		}
	}
	return false
}

func overlapsAny(mask []indexRange, r indexRange, n int) bool {
	for j := 0; j < r.width(n); j++ {
		if masked(mask, (r.Min+j)%n, n) {
			return true
		}
	}
	return false
}
