// Package roots finds real roots of low-degree polynomials whose
// coefficients are autodifferentiable Dual scalars, for use by the
// intersection engine (ellipse-pair and polygon-edge solves reduce to a
// quadratic, cubic, or quartic in one Cartesian coordinate). Because the
// closed-form formulas used here are themselves differentiable expressions
// of the coefficients, each returned root already carries the correct
// gradient without any separate implicit-function-rule bookkeeping: the
// Dual arithmetic the formulas are built from does that automatically.
package roots

import (
	"math"
	"sort"

	"github.com/runsascoded/shapes/internal/dual"
)

// Tolerance is the default fuzz used when a coefficient or discriminant
// needs to be compared against zero. Intersection geometry routinely
// produces values that are mathematically zero but land a few ULPs off
// after a chain of Dual operations.
const Tolerance = 1e-9

func isZero(x dual.Dual, tol float64) bool {
	return math.Abs(x.V) <= tol
}

func sortByValue(xs []dual.Dual) {
	sort.Slice(xs, func(i, j int) bool { return xs[i].V < xs[j].V })
}
