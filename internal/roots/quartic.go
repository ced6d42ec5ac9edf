package roots

import (
	"github.com/runsascoded/shapes/internal/dual"
)

// Quartic returns the real roots of
// a4*x^4 + a3*x^3 + a2*x^2 + a1*x + a0 = 0, ascending by value.
func Quartic(a4, a3, a2, a1, a0 dual.Dual) []dual.Dual {
	if isZero(a4, Tolerance) {
		return Cubic(a3, a2, a1, a0)
	}
	return QuarticScaled(
		dual.Div(a3, a4), dual.Div(a2, a4), dual.Div(a1, a4), dual.Div(a0, a4),
	)
}

// QuarticScaled returns the real roots of the monic quartic
// x^4 + b*x^3 + c*x^2 + d*x + e = 0, via depression to
// t^4 + c2*t^2 + d2*t + e2 = 0 with x = t - b/4.
func QuarticScaled(b, c, d, e dual.Dual) []dual.Dual {
	b4 := dual.DivF(b, 4)
	b4sq := dual.Mul(b4, b4)
	c2 := dual.Sub(c, dual.MulF(b4sq, 6))
	d2 := dual.Add(dual.Sub(dual.MulF(dual.Mul(b4sq, b4), 8), dual.MulF(dual.Mul(b4, c), 2)), d)
	e2 := dual.Add(
		dual.Sub(dual.MulF(dual.Mul(b4sq, b4sq), -3), dual.MulF(dual.Mul(b4, d), 1)),
		dual.Add(dual.Mul(b4sq, c), e),
	)

	roots := QuarticDepressed(c2, d2, e2)
	for i := range roots {
		roots[i] = dual.Sub(roots[i], b4)
	}
	sortByValue(roots)
	return roots
}

// QuarticDepressed solves t^4 + c*t^2 + d*t + e = 0. When d is negligible
// relative to c it is biquadratic (solved as a quadratic in t^2); otherwise
// it is solved by Ferrari's method: pick a real root u of the resolvent
// cubic y^3 + 2c*y^2 + (c^2-4e)*y - d^2 = 0, then factor into two real
// quadratics.
func QuarticDepressed(c, d, e dual.Dual) []dual.Dual {
	if isZero(e, Tolerance) {
		roots := CubicDepressed(c, d)
		roots = append(roots, dual.Const(0, c.Len()))
		sortByValue(roots)
		return roots
	}

	cAbs := c.V
	if cAbs < 0 {
		cAbs = -cAbs
	}
	scale := 1.0
	if cAbs > 1 {
		scale = cAbs
	}
	if d.V/scale < 1e-13 && d.V/scale > -1e-13 {
		return quarticBiquadratic(c, e)
	}

	a2 := dual.MulF(c, 2)
	a1 := dual.Sub(dual.Mul(c, c), dual.MulF(e, 4))
	a0 := dual.Neg(dual.Mul(d, d))
	cubicRoots := CubicScaled(a2, a1, a0)
	if len(cubicRoots) == 0 {
		return nil
	}
	// Largest real root of the resolvent cubic, matching the source
	// algorithm's choice (cubicRoots is sorted ascending).
	u := cubicRoots[len(cubicRoots)-1]
	if u.V <= 0 {
		// No real factorization through this resolvent root; the quartic
		// has no real roots in this branch.
		return nil
	}

	sqrtU := dual.Sqrt(u)
	usq2 := dual.DivF(sqrtU, 2)
	dOverUsq2 := dual.Div(d, usq2)
	uc2 := dual.Sub(dual.Neg(u), dual.MulF(c, 2))
	d0 := dual.Sub(uc2, dOverUsq2)
	d1 := dual.Add(uc2, dOverUsq2)

	var out []dual.Dual
	if d0.V >= 0 {
		d0sq2 := dual.DivF(dual.Sqrt(d0), 2)
		out = append(out, dual.Add(usq2, d0sq2), dual.Sub(usq2, d0sq2))
	}
	if d1.V >= 0 {
		d1sq2 := dual.DivF(dual.Sqrt(d1), 2)
		negUsq2 := dual.Neg(usq2)
		out = append(out, dual.Add(negUsq2, d1sq2), dual.Sub(negUsq2, d1sq2))
	}
	sortByValue(out)
	return out
}

// quarticBiquadratic solves t^4 + c*t^2 + e = 0 as a quadratic in y = t^2.
func quarticBiquadratic(c, e dual.Dual) []dual.Dual {
	ys := QuadraticScaled(c, e)
	var out []dual.Dual
	for _, y := range ys {
		if y.V < 0 {
			continue
		}
		s := dual.Sqrt(y)
		out = append(out, dual.Neg(s), s)
	}
	sortByValue(out)
	return out
}
