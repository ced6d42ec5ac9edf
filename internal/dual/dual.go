// Package dual implements a forward-mode autodifferentiable scalar: a value
// paired with its gradient against a fixed global vector of trainable
// coordinates. Every shape's coordinates, and therefore every region area
// and every step's error, is carried as a Dual all the way through the
// pipeline so that the optimiser never needs a separate backward pass.
package dual

import "math"

// Dual is a value v with partial derivatives d against n trainable
// parameters. Within a single Scene evaluation every Dual in play has the
// same len(d); operations that mix mismatched lengths panic rather than
// silently truncate.
type Dual struct {
	V float64
	D []float64
}

// New constructs a Dual with an explicit gradient vector. The slice is not
// copied; callers should not mutate it afterward.
func New(v float64, d []float64) Dual {
	return Dual{V: v, D: d}
}

// Const returns a Dual with zero gradient against n parameters.
func Const(v float64, n int) Dual {
	return Dual{V: v, D: make([]float64, n)}
}

// Var returns a Dual representing the i-th of n trainable parameters: value
// v with a one-hot gradient.
func Var(v float64, i, n int) Dual {
	d := make([]float64, n)
	d[i] = 1
	return Dual{V: v, D: d}
}

// Len reports the gradient's dimension.
func (x Dual) Len() int { return len(x.D) }

func (x Dual) checkLen(y Dual) {
	if len(x.D) != len(y.D) {
		panic("dual: mismatched gradient lengths")
	}
}

// Clone returns a Dual with its own copy of the gradient vector.
func (x Dual) Clone() Dual {
	d := make([]float64, len(x.D))
	copy(d, x.D)
	return Dual{V: x.V, D: d}
}

func combine(x, y Dual, v float64, f func(dx, dy float64) float64) Dual {
	x.checkLen(y)
	d := make([]float64, len(x.D))
	for i := range d {
		d[i] = f(x.D[i], y.D[i])
	}
	return Dual{V: v, D: d}
}

func scale(x Dual, v float64, f func(dx float64) float64) Dual {
	d := make([]float64, len(x.D))
	for i := range d {
		d[i] = f(x.D[i])
	}
	return Dual{V: v, D: d}
}

// Add returns x + y.
func Add(x, y Dual) Dual {
	return combine(x, y, x.V+y.V, func(dx, dy float64) float64 { return dx + dy })
}

// AddF returns x + c for a constant c.
func AddF(x Dual, c float64) Dual {
	return scale(x, x.V+c, func(dx float64) float64 { return dx })
}

// Sub returns x - y.
func Sub(x, y Dual) Dual {
	return combine(x, y, x.V-y.V, func(dx, dy float64) float64 { return dx - dy })
}

// SubF returns x - c.
func SubF(x Dual, c float64) Dual {
	return scale(x, x.V-c, func(dx float64) float64 { return dx })
}

// FSub returns c - x.
func FSub(c float64, x Dual) Dual {
	return scale(x, c-x.V, func(dx float64) float64 { return -dx })
}

// Neg returns -x.
func Neg(x Dual) Dual {
	return scale(x, -x.V, func(dx float64) float64 { return -dx })
}

// Mul returns x * y, propagating the product rule.
func Mul(x, y Dual) Dual {
	return combine(x, y, x.V*y.V, func(dx, dy float64) float64 { return dx*y.V + x.V*dy })
}

// MulF returns x * c.
func MulF(x Dual, c float64) Dual {
	return scale(x, x.V*c, func(dx float64) float64 { return dx * c })
}

// Div returns x / y, propagating the quotient rule.
func Div(x, y Dual) Dual {
	inv := 1 / y.V
	return combine(x, y, x.V*inv, func(dx, dy float64) float64 {
		return (dx*y.V - x.V*dy) * inv * inv
	})
}

// DivF returns x / c.
func DivF(x Dual, c float64) Dual {
	return scale(x, x.V/c, func(dx float64) float64 { return dx / c })
}

// FDiv returns c / x.
func FDiv(c float64, x Dual) Dual {
	v := c / x.V
	return scale(x, v, func(dx float64) float64 { return -c * dx / (x.V * x.V) })
}

// Recip returns 1 / x.
func Recip(x Dual) Dual {
	return FDiv(1, x)
}

// Abs returns |x|. At x.V == 0 the derivative is taken from the positive
// branch, matching the convention used by the rest of the pipeline for
// penalty gradients.
func Abs(x Dual) Dual {
	if x.V < 0 {
		return Neg(x)
	}
	return x.Clone()
}

// Sqrt returns sqrt(x). Negative inputs produce a non-finite value and
// gradient rather than failing: callers validate invariants at Scene
// construction, not here.
func Sqrt(x Dual) Dual {
	v := math.Sqrt(x.V)
	return scale(x, v, func(dx float64) float64 { return dx / (2 * v) })
}

// Cbrt returns the real cube root of x.
func Cbrt(x Dual) Dual {
	v := math.Cbrt(x.V)
	return scale(x, v, func(dx float64) float64 {
		if v == 0 {
			return 0
		}
		return dx / (3 * v * v)
	})
}

// Sin returns sin(x).
func Sin(x Dual) Dual {
	v := math.Sin(x.V)
	c := math.Cos(x.V)
	return scale(x, v, func(dx float64) float64 { return dx * c })
}

// Cos returns cos(x).
func Cos(x Dual) Dual {
	v := math.Cos(x.V)
	s := math.Sin(x.V)
	return scale(x, v, func(dx float64) float64 { return -dx * s })
}

// Tan returns tan(x).
func Tan(x Dual) Dual {
	v := math.Tan(x.V)
	sec2 := 1 + v*v
	return scale(x, v, func(dx float64) float64 { return dx * sec2 })
}

// Atan returns atan(x).
func Atan(x Dual) Dual {
	v := math.Atan(x.V)
	return scale(x, v, func(dx float64) float64 { return dx / (1 + x.V*x.V) })
}

// Acos returns acos(x) for x in [-1, 1].
func Acos(x Dual) Dual {
	v := math.Acos(x.V)
	return scale(x, v, func(dx float64) float64 { return -dx / math.Sqrt(1-x.V*x.V) })
}

// Asin returns asin(x) for x in [-1, 1].
func Asin(x Dual) Dual {
	v := math.Asin(x.V)
	return scale(x, v, func(dx float64) float64 { return dx / math.Sqrt(1-x.V*x.V) })
}

// Acosh returns acosh(x) for x >= 1, used by the cubic solver's hyperbolic
// one-real-root branch.
func Acosh(x Dual) Dual {
	v := math.Acosh(x.V)
	return scale(x, v, func(dx float64) float64 { return dx / math.Sqrt(x.V*x.V-1) })
}

// Asinh returns asinh(x).
func Asinh(x Dual) Dual {
	v := math.Asinh(x.V)
	return scale(x, v, func(dx float64) float64 { return dx / math.Sqrt(x.V*x.V+1) })
}

// Atan2 returns atan2(y, x), with the gradient of a two-argument arctangent.
func Atan2(y, x Dual) Dual {
	y.checkLen(x)
	v := math.Atan2(y.V, x.V)
	denom := x.V*x.V + y.V*y.V
	d := make([]float64, len(y.D))
	for i := range d {
		d[i] = (x.V*y.D[i] - y.V*x.D[i]) / denom
	}
	return Dual{V: v, D: d}
}

// Exp returns e^x.
func Exp(x Dual) Dual {
	v := math.Exp(x.V)
	return scale(x, v, func(dx float64) float64 { return dx * v })
}

// Ln returns ln(x).
func Ln(x Dual) Dual {
	v := math.Log(x.V)
	return scale(x, v, func(dx float64) float64 { return dx / x.V })
}

// Sinh returns sinh(x).
func Sinh(x Dual) Dual {
	v := math.Sinh(x.V)
	c := math.Cosh(x.V)
	return scale(x, v, func(dx float64) float64 { return dx * c })
}

// Cosh returns cosh(x).
func Cosh(x Dual) Dual {
	v := math.Cosh(x.V)
	s := math.Sinh(x.V)
	return scale(x, v, func(dx float64) float64 { return dx * s })
}

// PowInt returns x^n for an integer exponent, via repeated-squaring-friendly
// derivative n*x^(n-1).
func PowInt(x Dual, n int) Dual {
	v := math.Pow(x.V, float64(n))
	coef := float64(n) * math.Pow(x.V, float64(n-1))
	return scale(x, v, func(dx float64) float64 { return dx * coef })
}

// Pow returns x^p for a real exponent p.
func Pow(x Dual, p float64) Dual {
	v := math.Pow(x.V, p)
	coef := p * math.Pow(x.V, p-1)
	return scale(x, v, func(dx float64) float64 { return dx * coef })
}

// Sum adds a slice of Duals, all of which must share a gradient length.
// Sum of an empty slice panics; callers should special-case the empty region
// set rather than rely on an implicit zero.
func Sum(xs []Dual) Dual {
	out := xs[0].Clone()
	for _, x := range xs[1:] {
		out = Add(out, x)
	}
	return out
}

// IsNormal reports whether both the value and every gradient component are
// finite and not NaN (zero is considered normal).
func (x Dual) IsNormal() bool {
	if !isNormalF(x.V) {
		return false
	}
	for _, d := range x.D {
		if !isNormalF(d) {
			return false
		}
	}
	return true
}

func isNormalF(v float64) bool {
	return v == 0 || (!math.IsNaN(v) && !math.IsInf(v, 0))
}

// Less compares by value only, matching the original's "equality is by
// value only" ordering convention (useful for ranking roots or steps without
// caring which coordinate's gradient differs).
func Less(x, y Dual) bool { return x.V < y.V }
