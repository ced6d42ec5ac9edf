package intersect

import (
	"github.com/runsascoded/shapes/internal/dual"
	"github.com/runsascoded/shapes/internal/roots"
	"github.com/runsascoded/shapes/internal/shape"
)

// conic represents Qxx*x^2 + Qxy*x*y + Qyy*y^2 + Qx*x + Qy*y + Q0 = 0, the
// general second-degree curve a rotated/non-uniformly-scaled ellipse becomes
// once it's expressed in another shape's coordinate frame.
type conic struct {
	Qxx, Qxy, Qyy, Qx, Qy, Q0 dual.Dual
}

// circleConic builds the conic for a circle centered at (cx,cy) with radius
// r: x^2+y^2-2*cx*x-2*cy*y+(cx^2+cy^2-r^2) = 0.
func circleConic(cx, cy, r dual.Dual) conic {
	n := cx.Len()
	one := dual.Const(1, n)
	zero := dual.Const(0, n)
	f := dual.Sub(dual.Add(dual.Mul(cx, cx), dual.Mul(cy, cy)), dual.Mul(r, r))
	return conic{
		Qxx: one, Qxy: zero, Qyy: one.Clone(),
		Qx: dual.MulF(cx, -2), Qy: dual.MulF(cy, -2), Q0: f,
	}
}

// xyrrConic builds the conic for an axis-aligned ellipse.
func xyrrConic(cx, cy, rx, ry dual.Dual) conic {
	n := cx.Len()
	zero := dual.Const(0, n)
	a := dual.Recip(dual.Mul(rx, rx))
	c := dual.Recip(dual.Mul(ry, ry))
	f := dual.SubF(dual.Add(dual.Mul(a, dual.Mul(cx, cx)), dual.Mul(c, dual.Mul(cy, cy))), 1)
	return conic{
		Qxx: a, Qxy: zero, Qyy: c,
		Qx: dual.MulF(dual.Mul(a, cx), -2), Qy: dual.MulF(dual.Mul(c, cy), -2), Q0: f,
	}
}

// xyrrtConic builds the conic for an ellipse rotated by t about its own
// center: derived by rotating the axis-aligned conic's quadratic form, then
// re-centering, so the cross term Qxy appears exactly when t is nonzero.
func xyrrtConic(cx, cy, rx, ry, t dual.Dual) conic {
	a0 := dual.Recip(dual.Mul(rx, rx))
	c0 := dual.Recip(dual.Mul(ry, ry))
	cos := dual.Cos(t)
	sin := dual.Sin(t)
	cos2 := dual.Mul(cos, cos)
	sin2 := dual.Mul(sin, sin)

	ac := dual.Add(dual.Mul(a0, cos2), dual.Mul(c0, sin2))
	bc := dual.MulF(dual.Mul(dual.Mul(sin, cos), dual.Sub(a0, c0)), 2)
	cc := dual.Add(dual.Mul(a0, sin2), dual.Mul(c0, cos2))
	fc := dual.Const(-1, cx.Len())

	qxx := ac
	qxy := bc
	qyy := cc
	qx := dual.Neg(dual.Add(dual.MulF(dual.Mul(ac, cx), 2), dual.Mul(bc, cy)))
	qy := dual.Neg(dual.Add(dual.MulF(dual.Mul(cc, cy), 2), dual.Mul(bc, cx)))
	q0 := dual.Add(
		dual.Add(dual.Mul(ac, dual.Mul(cx, cx)), dual.Mul(bc, dual.Mul(cx, cy))),
		dual.Add(dual.Mul(cc, dual.Mul(cy, cy)), fc),
	)
	return conic{Qxx: qxx, Qxy: qxy, Qyy: qyy, Qx: qx, Qy: qy, Q0: q0}
}

// conicOf builds the conic form of any unit-circle-capable shape, expressed
// in its own native coordinate frame.
func conicOf(s shape.Shape) (conic, bool) {
	switch v := s.(type) {
	case shape.Circle:
		return circleConic(v.Cx, v.Cy, v.R), true
	case shape.XYRR:
		return xyrrConic(v.Cx, v.Cy, v.Rx, v.Ry), true
	case shape.XYRRT:
		return xyrrtConic(v.Cx, v.Cy, v.Rx, v.Ry, v.T), true
	default:
		return conic{}, false
	}
}

// transform substitutes world = t.TransformPoint(local) into the conic,
// returning the equivalent conic in local coordinates.
func (q conic) transform(t shape.Transform) conic {
	p1, p2, p3 := t.A, t.C, t.E
	q1, q2, q3 := t.B, t.D, t.F

	mul := dual.Mul
	add := dual.Add

	qxx := add(add(mul(q.Qxx, mul(p1, p1)), mul(q.Qxy, mul(p1, q1))), mul(q.Qyy, mul(q1, q1)))
	qxy := add(add(
		mul(q.Qxx, dual.MulF(mul(p1, p2), 2)),
		mul(q.Qxy, add(mul(p1, q2), mul(p2, q1))),
	), mul(q.Qyy, dual.MulF(mul(q1, q2), 2)))
	qyy := add(add(mul(q.Qxx, mul(p2, p2)), mul(q.Qxy, mul(p2, q2))), mul(q.Qyy, mul(q2, q2)))
	qx := add(add(add(
		mul(q.Qxx, dual.MulF(mul(p1, p3), 2)),
		mul(q.Qxy, add(mul(p1, q3), mul(p3, q1))),
	), mul(q.Qyy, dual.MulF(mul(q1, q3), 2))), add(mul(q.Qx, p1), mul(q.Qy, q1)))
	qy := add(add(add(
		mul(q.Qxx, dual.MulF(mul(p2, p3), 2)),
		mul(q.Qxy, add(mul(p2, q3), mul(p3, q2))),
	), mul(q.Qyy, dual.MulF(mul(q2, q3), 2))), add(mul(q.Qx, p2), mul(q.Qy, q2)))
	q0 := add(add(add(
		mul(q.Qxx, mul(p3, p3)),
		mul(q.Qxy, mul(p3, q3)),
	), mul(q.Qyy, mul(q3, q3))), add(add(mul(q.Qx, p3), mul(q.Qy, q3)), q.Q0))

	return conic{Qxx: qxx, Qxy: qxy, Qyy: qyy, Qx: qx, Qy: qy, Q0: q0}
}

// derotate finds the angle t that zeroes the conic's cross term, and returns
// t together with the conic expressed in the rotated (axis-aligned) frame.
func (q conic) derotate() (dual.Dual, conic) {
	if q.Qxy.V == 0 {
		return dual.Const(0, q.Qxx.Len()), q
	}
	t := dual.MulF(dual.Atan2(q.Qxy, dual.Sub(q.Qxx, q.Qyy)), 0.5)
	return t, q.transform(shape.Rotate(t))
}

// unitIntersections solves this axis-aligned (Qxy == 0) conic against the
// unit circle x^2+y^2=1, following the derivation in the original's ACDEF
// module: eliminate x^2 using the unit-circle equation to get x as a
// quadratic function of y, then substitute back into x^2+y^2=1 for a
// quartic in y.
func (q conic) unitIntersections() []shape.Point {
	rd := dual.FDiv(-1, q.Qx)
	c2 := dual.Mul(dual.Sub(q.Qyy, q.Qxx), rd)
	c1 := dual.Mul(q.Qy, rd)
	c0 := dual.Mul(dual.Add(q.Qxx, q.Q0), rd)

	n := q.Qxx.Len()
	one := dual.Const(1, n)
	a4 := dual.Mul(c2, c2)
	a3 := dual.MulF(dual.Mul(c2, c1), 2)
	a2 := dual.Add(dual.Add(dual.Mul(c1, c1), dual.MulF(dual.Mul(c2, c0), 2)), one)
	a1 := dual.MulF(dual.Mul(c1, c0), 2)
	a0 := dual.SubF(dual.Mul(c0, c0), 1)

	ys := roots.Quartic(a4, a3, a2, a1, a0)
	out := make([]shape.Point, 0, len(ys))
	for _, y := range ys {
		x := dual.Add(dual.Add(dual.Mul(c2, dual.Mul(y, y)), dual.Mul(c1, y)), c0)
		out = append(out, shape.Point{X: x, Y: y})
	}
	return out
}
