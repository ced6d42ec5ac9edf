package roots

import (
	"github.com/runsascoded/shapes/internal/dual"
)

// Quadratic returns the real roots of a2*x^2 + a1*x + a0 = 0, ascending by
// value. a2 may be (numerically) zero, in which case the linear root -a0/a1
// is returned. A negative discriminant yields no real roots.
func Quadratic(a2, a1, a0 dual.Dual) []dual.Dual {
	if isZero(a2, Tolerance) {
		if isZero(a1, Tolerance) {
			return nil
		}
		return []dual.Dual{dual.Neg(dual.Div(a0, a1))}
	}
	return QuadraticScaled(dual.Div(a1, a2), dual.Div(a0, a2))
}

// QuadraticScaled returns the real roots of the monic quadratic
// x^2 + a1*x + a0 = 0.
func QuadraticScaled(a1, a0 dual.Dual) []dual.Dual {
	b2 := dual.DivF(a1, -2)
	d := dual.Sub(dual.Mul(b2, b2), a0)
	if d.V < 0 {
		return nil
	}
	if isZero(d, Tolerance) {
		return []dual.Dual{b2}
	}
	sq := dual.Sqrt(d)
	r0 := dual.Sub(b2, sq)
	r1 := dual.Add(b2, sq)
	if r0.V > r1.V {
		r0, r1 = r1, r0
	}
	return []dual.Dual{r0, r1}
}
