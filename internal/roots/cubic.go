package roots

import (
	"math"

	"github.com/runsascoded/shapes/internal/dual"
)

// Cubic returns the real roots of a3*x^3 + a2*x^2 + a1*x + a0 = 0, ascending
// by value: either one root (a complex conjugate pair absorbed) or three.
func Cubic(a3, a2, a1, a0 dual.Dual) []dual.Dual {
	if isZero(a3, Tolerance) {
		return Quadratic(a2, a1, a0)
	}
	return CubicScaled(dual.Div(a2, a3), dual.Div(a1, a3), dual.Div(a0, a3))
}

// CubicScaled returns the real roots of the monic cubic
// x^3 + a2*x^2 + a1*x + a0 = 0, via the standard depressed-cubic
// substitution x = t - a2/3.
func CubicScaled(a2, a1, a0 dual.Dual) []dual.Dual {
	shift := dual.DivF(a2, 3)
	// p, q of the depressed cubic t^3 + p*t + q = 0.
	p := dual.Sub(a1, dual.Mul(a2, shift))
	q := dual.Add(dual.Sub(a0, dual.Mul(shift, a1)), dual.MulF(dual.Mul(shift, dual.Mul(shift, shift)), 2))
	roots := CubicDepressed(p, q)
	for i := range roots {
		roots[i] = dual.Sub(roots[i], shift)
	}
	sortByValue(roots)
	return roots
}

// CubicDepressed solves t^3 + p*t + q = 0 by Cardano's method: the
// trigonometric branch when three real roots exist, the hyperbolic branch
// when only one does.
func CubicDepressed(p, q dual.Dual) []dual.Dual {
	if isZero(p, Tolerance) {
		return []dual.Dual{dual.Cbrt(dual.Neg(q))}
	}

	p3 := dual.DivF(p, 3)
	q2 := dual.DivF(dual.Neg(q), 2)
	// Discriminant-like term: sign determines the branch. Using float64
	// values for branch selection only, matching the source algorithm's
	// convention of branching on value and propagating gradients solely
	// through the chosen branch's formula.
	discriminant := q2.V*q2.V + p3.V*p3.V*p3.V

	if p.V < 0 {
		negP3 := dual.Neg(p3)
		sqrtNegP3 := dual.Sqrt(negP3)
		denom := dual.Mul(negP3, sqrtNegP3) // (-p/3)^(3/2)
		if discriminant <= 0 {
			arg := dual.Div(q2, denom)
			if arg.V > 1 {
				arg = dual.Const(1, arg.Len())
			} else if arg.V < -1 {
				arg = dual.Const(-1, arg.Len())
			}
			theta := dual.DivF(dual.Acos(arg), 3)
			coef := dual.MulF(sqrtNegP3, 2)
			roots := make([]dual.Dual, 3)
			for k := 0; k < 3; k++ {
				angle := dual.SubF(theta, 2*math.Pi*float64(k)/3)
				roots[k] = dual.Mul(coef, dual.Cos(angle))
			}
			return roots
		}
		// One real root, hyperbolic branch, p < 0.
		sign := 1.0
		if q.V < 0 {
			sign = -1.0
		}
		arg := dual.MulF(dual.Div(q2, denom), -sign)
		t := dual.DivF(dual.Acosh(arg), 3)
		root := dual.MulF(dual.Mul(dual.MulF(sqrtNegP3, 2), dual.Cosh(t)), -sign)
		return []dual.Dual{root}
	}

	if p.V > 0 {
		sqrtP3 := dual.Sqrt(p3)
		denom := dual.Mul(p3, sqrtP3)
		arg := dual.Div(q2, denom)
		t := dual.DivF(dual.Asinh(arg), 3)
		root := dual.Mul(dual.MulF(sqrtP3, 2), dual.Sinh(t))
		return []dual.Dual{root}
	}

	// p == 0 handled above; unreachable.
	return []dual.Dual{dual.Cbrt(dual.Neg(q))}
}
