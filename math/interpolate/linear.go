/*package interpolate provides piecewise linear interpolation over tabulated
series and level-crossing searches used when locating events (such as tile
capacity exhaustion) between recorded trajectory samples.
*/
package interpolate

import (
	"fmt"
)

// Linear is a linear interpolator.
type Linear struct {
	xs   searcher
	vals []float64
}

// NewUniformLinear creates a linear interpolator over the uniformly spaced
// sequence of x values starting at x0 and separated by dx, whose values are
// given by vals.
//
// Lookups will be O(1).
func NewUniformLinear(x0, dx float64, vals []float64) *Linear {
	if len(vals) == 0 {
		panic("Cannot interpolate an empty sequence.")
	}
	lin := &Linear{}
	lin.xs.unifInit(x0, dx, len(vals))
	lin.vals = vals
	return lin
}

// Eval returns the interpolated value at x.
//
// Eval panics if called on a value outside the supplied range.
func (lin *Linear) Eval(x float64) float64 {
	if lin.xs.n == 1 {
		if x != lin.xs.val(0) {
			panic(fmt.Sprintf("%g is outside the single-point range.", x))
		}
		return lin.vals[0]
	}

	i1 := lin.xs.search(x)
	i2 := i1 + 1
	x1, x2 := lin.xs.val(i1), lin.xs.val(i2)
	v1, v2 := lin.vals[i1], lin.vals[i2]

	return ((v2-v1)/(x2-x1))*(x-x1) + v1
}

// FirstCrossing returns the fractional index at which ys first reaches
// level, interpolating linearly between the bracketing samples. ok is false
// if no sample reaches level.
func FirstCrossing(ys []float64, level float64) (idx float64, ok bool) {
	for i, y := range ys {
		if y < level {
			continue
		}
		if i == 0 {
			return 0, true
		}
		prev := ys[i-1]
		return float64(i-1) + (level-prev)/(y-prev), true
	}
	return 0, false
}

// searcher locates the segment containing a point in a uniform sequence of
// x values.
type searcher struct {
	x0, dx float64
	n      int
}

func (s *searcher) unifInit(x0, dx float64, n int) {
	s.x0, s.dx, s.n = x0, dx, n
}

func (s *searcher) val(i int) float64 { return s.x0 + float64(i)*s.dx }

// search returns i such that x lies in [val(i), val(i+1)].
func (s *searcher) search(x float64) int {
	lo, hi := s.val(0), s.val(s.n-1)
	if s.dx < 0 {
		lo, hi = hi, lo
	}
	if x < lo || x > hi {
		panic(fmt.Sprintf("%g is outside the range [%g, %g].", x, lo, hi))
	}

	i := int((x - s.x0) / s.dx)
	if i < 0 {
		i = 0
	} else if i > s.n-2 {
		i = s.n - 2
	}
	return i
}
