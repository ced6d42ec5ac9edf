package shape

import (
	"math"

	"github.com/runsascoded/shapes/internal/dual"
)

// XYRRT is an ellipse centered at (Cx, Cy), semi-axes Rx/Ry, rotated by T
// radians about its own center.
type XYRRT struct {
	Cx, Cy, Rx, Ry, T dual.Dual
	MaskCx            bool
	MaskCy            bool
	MaskRx            bool
	MaskRy            bool
	MaskT             bool
}

// NewXYRRT builds an XYRRT with every coordinate trainable.
func NewXYRRT(cx, cy, rx, ry, t dual.Dual) XYRRT {
	return XYRRT{Cx: cx, Cy: cy, Rx: rx, Ry: ry, T: t,
		MaskCx: true, MaskCy: true, MaskRx: true, MaskRy: true, MaskT: true}
}

func (e XYRRT) Kind() Kind          { return KindXYRRT }
func (e XYRRT) Params() []dual.Dual { return []dual.Dual{e.Cx, e.Cy, e.Rx, e.Ry, e.T} }
func (e XYRRT) Mask() []bool        { return []bool{e.MaskCx, e.MaskCy, e.MaskRx, e.MaskRy, e.MaskT} }

func (e XYRRT) WithParams(params []dual.Dual) Shape {
	e.Cx, e.Cy, e.Rx, e.Ry, e.T = params[0], params[1], params[2], params[3], params[4]
	return e
}
func (e XYRRT) Center() Point       { return Point{X: e.Cx, Y: e.Cy} }

func (e XYRRT) Area() dual.Dual {
	return dual.MulF(dual.Mul(e.Rx, e.Ry), math.Pi)
}

func (e XYRRT) PointAtTheta(theta dual.Dual) Point {
	local := Point{X: dual.Mul(e.Rx, dual.Cos(theta)), Y: dual.Mul(e.Ry, dual.Sin(theta))}
	return Add(e.Center(), Rotate(e.T).TransformPoint(local))
}

func (e XYRRT) ThetaOfPoint(p Point) dual.Dual {
	local := Rotate(dual.Neg(e.T)).TransformPoint(Sub(p, e.Center()))
	nx := dual.Div(local.X, e.Rx)
	ny := dual.Div(local.Y, e.Ry)
	return dual.Atan2(ny, nx)
}

func (e XYRRT) Contains(p Point) bool {
	dx := p.X.V - e.Cx.V
	dy := p.Y.V - e.Cy.V
	cos := math.Cos(-e.T.V)
	sin := math.Sin(-e.T.V)
	lx := cos*dx - sin*dy
	ly := sin*dx + cos*dy
	nx := lx / e.Rx.V
	ny := ly / e.Ry.V
	return nx*nx+ny*ny <= 1
}

// ToUnitCircle returns the affine map that translates by -center, rotates
// by -T, then scales by (1/Rx, 1/Ry).
func (e XYRRT) ToUnitCircle() Transform {
	invRx := dual.Recip(e.Rx)
	invRy := dual.Recip(e.Ry)
	return Multiply(ScaleXY(invRx, invRy), Multiply(Rotate(dual.Neg(e.T)), Translate(dual.Neg(e.Cx), dual.Neg(e.Cy))))
}

// FromUnitCircle returns the inverse of ToUnitCircle.
func (e XYRRT) FromUnitCircle() Transform {
	return Multiply(Translate(e.Cx, e.Cy), Multiply(Rotate(e.T), ScaleXY(e.Rx, e.Ry)))
}
