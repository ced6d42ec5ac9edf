package shape

import "github.com/runsascoded/shapes/internal/dual"

// Transform is a Dual-valued 2D affine transform, laid out exactly like the
// teacher's Matrix2D ([a c e; b d f; 0 0 1]) but carrying gradients through
// every entry so it can map a Scene's trainable coordinates onto the unit
// circle without severing the autodiff chain.
type Transform struct {
	A, B, C, D, E, F dual.Dual
}

// Identity returns the identity transform with gradient length n.
func Identity(n int) Transform {
	zero := dual.Const(0, n)
	one := dual.Const(1, n)
	return Transform{A: one, B: zero, C: zero.Clone(), D: one.Clone(), E: zero.Clone(), F: zero.Clone()}
}

// Translate returns a translation transform.
func Translate(tx, ty dual.Dual) Transform {
	n := tx.Len()
	one := dual.Const(1, n)
	zero := dual.Const(0, n)
	return Transform{A: one, B: zero, C: zero.Clone(), D: one.Clone(), E: tx, F: ty}
}

// ScaleXY returns a non-uniform scale transform.
func ScaleXY(sx, sy dual.Dual) Transform {
	n := sx.Len()
	zero := dual.Const(0, n)
	return Transform{A: sx, B: zero, C: zero.Clone(), D: sy, E: zero.Clone(), F: zero.Clone()}
}

// Rotate returns a rotation transform by angle t (radians).
func Rotate(t dual.Dual) Transform {
	n := t.Len()
	zero := dual.Const(0, n)
	cos := dual.Cos(t)
	sin := dual.Sin(t)
	return Transform{A: cos, B: sin, C: dual.Neg(sin), D: cos.Clone(), E: zero, F: zero.Clone()}
}

// Multiply returns m * other: other is applied first, then m.
func Multiply(m, other Transform) Transform {
	return Transform{
		A: dual.Add(dual.Mul(m.A, other.A), dual.Mul(m.C, other.B)),
		B: dual.Add(dual.Mul(m.B, other.A), dual.Mul(m.D, other.B)),
		C: dual.Add(dual.Mul(m.A, other.C), dual.Mul(m.C, other.D)),
		D: dual.Add(dual.Mul(m.B, other.C), dual.Mul(m.D, other.D)),
		E: dual.Add(dual.Add(dual.Mul(m.A, other.E), dual.Mul(m.C, other.F)), m.E),
		F: dual.Add(dual.Add(dual.Mul(m.B, other.E), dual.Mul(m.D, other.F)), m.F),
	}
}

// TransformPoint applies m to p.
func (m Transform) TransformPoint(p Point) Point {
	return Point{
		X: dual.Add(dual.Add(dual.Mul(m.A, p.X), dual.Mul(m.C, p.Y)), m.E),
		Y: dual.Add(dual.Add(dual.Mul(m.B, p.X), dual.Mul(m.D, p.Y)), m.F),
	}
}

// Determinant returns A*D - B*C.
func (m Transform) Determinant() dual.Dual {
	return dual.Sub(dual.Mul(m.A, m.D), dual.Mul(m.B, m.C))
}

// Invert returns the inverse transform.
func (m Transform) Invert() Transform {
	det := m.Determinant()
	invDet := dual.Recip(det)
	a := dual.Mul(m.D, invDet)
	b := dual.Neg(dual.Mul(m.B, invDet))
	c := dual.Neg(dual.Mul(m.C, invDet))
	d := dual.Mul(m.A, invDet)
	e := dual.Neg(dual.Add(dual.Mul(a, m.E), dual.Mul(c, m.F)))
	f := dual.Neg(dual.Add(dual.Mul(b, m.E), dual.Mul(d, m.F)))
	return Transform{A: a, B: b, C: c, D: d, E: e, F: f}
}
