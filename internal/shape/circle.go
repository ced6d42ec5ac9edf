package shape

import (
	"math"

	"github.com/runsascoded/shapes/internal/dual"
)

// Circle is centered at (Cx, Cy) with radius R.
type Circle struct {
	Cx, Cy, R dual.Dual
	MaskCx    bool
	MaskCy    bool
	MaskR     bool
}

// NewCircle builds a Circle with every coordinate trainable.
func NewCircle(cx, cy, r dual.Dual) Circle {
	return Circle{Cx: cx, Cy: cy, R: r, MaskCx: true, MaskCy: true, MaskR: true}
}

func (c Circle) Kind() Kind             { return KindCircle }
func (c Circle) Params() []dual.Dual    { return []dual.Dual{c.Cx, c.Cy, c.R} }
func (c Circle) Mask() []bool           { return []bool{c.MaskCx, c.MaskCy, c.MaskR} }

func (c Circle) WithParams(params []dual.Dual) Shape {
	c.Cx, c.Cy, c.R = params[0], params[1], params[2]
	return c
}
func (c Circle) Center() Point          { return Point{X: c.Cx, Y: c.Cy} }

func (c Circle) Area() dual.Dual {
	return dual.MulF(dual.Mul(c.R, c.R), math.Pi)
}

func (c Circle) PointAtTheta(theta dual.Dual) Point {
	return Point{
		X: dual.Add(c.Cx, dual.Mul(c.R, dual.Cos(theta))),
		Y: dual.Add(c.Cy, dual.Mul(c.R, dual.Sin(theta))),
	}
}

func (c Circle) ThetaOfPoint(p Point) dual.Dual {
	return dual.Atan2(dual.Sub(p.Y, c.Cy), dual.Sub(p.X, c.Cx))
}

func (c Circle) Contains(p Point) bool {
	dx := p.X.V - c.Cx.V
	dy := p.Y.V - c.Cy.V
	return dx*dx+dy*dy <= c.R.V*c.R.V
}

// ToUnitCircle returns the affine map p -> (p - center) / r.
func (c Circle) ToUnitCircle() Transform {
	invR := dual.Recip(c.R)
	return Multiply(ScaleXY(invR, invR), Translate(dual.Neg(c.Cx), dual.Neg(c.Cy)))
}

// FromUnitCircle returns the inverse of ToUnitCircle.
func (c Circle) FromUnitCircle() Transform {
	return Multiply(Translate(c.Cx, c.Cy), ScaleXY(c.R, c.R))
}
