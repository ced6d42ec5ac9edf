package shape

import (
	"math"

	"github.com/runsascoded/shapes/internal/dual"
)

// Kind identifies a shape's concrete primitive type, used by the wire
// projection and by the scene builder's intersection dispatch.
type Kind string

const (
	KindCircle  Kind = "Circle"
	KindXYRR    Kind = "XYRR"
	KindXYRRT   Kind = "XYRRT"
	KindPolygon Kind = "Polygon"
)

// Shape is a trainable boundary primitive. Every coordinate is a Dual
// carrying its gradient against the Scene's full parameter vector, so Area
// and Contains are themselves differentiable.
type Shape interface {
	Kind() Kind
	// Params returns this shape's coordinates in canonical order
	// (e.g. cx, cy, r for a Circle), matching Mask's order.
	Params() []dual.Dual
	// Mask reports which of Params is trainable, same length as Params.
	Mask() []bool
	// WithParams returns a copy of this shape with Params replaced, same
	// order and length, Mask unchanged. Used to seed a shape's gradient
	// vectors and to apply an optimizer step.
	WithParams(params []dual.Dual) Shape
	// PointAtTheta returns the boundary point at parametric angle theta.
	PointAtTheta(theta dual.Dual) Point
	// ThetaOfPoint returns the parametric angle of a point assumed to lie
	// on (or very near) the boundary.
	ThetaOfPoint(p Point) dual.Dual
	// Area returns the shape's signed area (always positive for a simple
	// shape traversed in its natural orientation).
	Area() dual.Dual
	// Contains reports whether p lies within (or on) the boundary.
	Contains(p Point) bool
	// Center returns a representative interior point.
	Center() Point
}

// UnitCircleShape is implemented by shapes (Circle, XYRR, XYRRT) for which
// an affine map to/from the unit circle exists; the intersection engine
// uses it to reduce any such pair to an XYRR-vs-unit-circle quartic.
type UnitCircleShape interface {
	Shape
	ToUnitCircle() Transform
	FromUnitCircle() Transform
}

func wrapAngle(theta float64) float64 {
	const tau = 2 * math.Pi
	theta = math.Mod(theta, tau)
	if theta < 0 {
		theta += tau
	}
	return theta
}
