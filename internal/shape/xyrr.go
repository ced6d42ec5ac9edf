package shape

import (
	"math"

	"github.com/runsascoded/shapes/internal/dual"
)

// XYRR is an axis-aligned ellipse centered at (Cx, Cy) with semi-axes Rx, Ry.
type XYRR struct {
	Cx, Cy, Rx, Ry dual.Dual
	MaskCx         bool
	MaskCy         bool
	MaskRx         bool
	MaskRy         bool
}

// NewXYRR builds an XYRR with every coordinate trainable.
func NewXYRR(cx, cy, rx, ry dual.Dual) XYRR {
	return XYRR{Cx: cx, Cy: cy, Rx: rx, Ry: ry, MaskCx: true, MaskCy: true, MaskRx: true, MaskRy: true}
}

func (e XYRR) Kind() Kind          { return KindXYRR }
func (e XYRR) Params() []dual.Dual { return []dual.Dual{e.Cx, e.Cy, e.Rx, e.Ry} }
func (e XYRR) Mask() []bool        { return []bool{e.MaskCx, e.MaskCy, e.MaskRx, e.MaskRy} }

func (e XYRR) WithParams(params []dual.Dual) Shape {
	e.Cx, e.Cy, e.Rx, e.Ry = params[0], params[1], params[2], params[3]
	return e
}
func (e XYRR) Center() Point       { return Point{X: e.Cx, Y: e.Cy} }

func (e XYRR) Area() dual.Dual {
	return dual.MulF(dual.Mul(e.Rx, e.Ry), math.Pi)
}

func (e XYRR) PointAtTheta(theta dual.Dual) Point {
	return Point{
		X: dual.Add(e.Cx, dual.Mul(e.Rx, dual.Cos(theta))),
		Y: dual.Add(e.Cy, dual.Mul(e.Ry, dual.Sin(theta))),
	}
}

func (e XYRR) ThetaOfPoint(p Point) dual.Dual {
	nx := dual.Div(dual.Sub(p.X, e.Cx), e.Rx)
	ny := dual.Div(dual.Sub(p.Y, e.Cy), e.Ry)
	return dual.Atan2(ny, nx)
}

func (e XYRR) Contains(p Point) bool {
	nx := (p.X.V - e.Cx.V) / e.Rx.V
	ny := (p.Y.V - e.Cy.V) / e.Ry.V
	return nx*nx+ny*ny <= 1
}

// ToUnitCircle returns the affine map p -> ((x-cx)/rx, (y-cy)/ry).
func (e XYRR) ToUnitCircle() Transform {
	invRx := dual.Recip(e.Rx)
	invRy := dual.Recip(e.Ry)
	return Multiply(ScaleXY(invRx, invRy), Translate(dual.Neg(e.Cx), dual.Neg(e.Cy)))
}

// FromUnitCircle returns the inverse of ToUnitCircle.
func (e XYRR) FromUnitCircle() Transform {
	return Multiply(Translate(e.Cx, e.Cy), ScaleXY(e.Rx, e.Ry))
}

// Rotate returns an XYRRT with the same center, semi-axes, and rotation t,
// grounded on the original's XYRR::rotate (used when a scene's builder
// promotes an axis-aligned ellipse so it can share XYRRT's intersection
// path with a genuinely rotated one).
func (e XYRR) Rotate(t dual.Dual) XYRRT {
	return XYRRT{Cx: e.Cx, Cy: e.Cy, Rx: e.Rx, Ry: e.Ry, T: t,
		MaskCx: e.MaskCx, MaskCy: e.MaskCy, MaskRx: e.MaskRx, MaskRy: e.MaskRy, MaskT: true}
}
