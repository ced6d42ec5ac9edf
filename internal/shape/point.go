// Package shape implements the four trainable boundary primitives (Circle,
// XYRR, XYRRT, Polygon) that a Scene is built from: parameter layout, point-
// at-angle and its inverse, area, containment, and (for circle/ellipse) the
// affine map to and from the unit circle that the intersection engine uses
// to reduce any ellipse pair to a quartic.
package shape

import (
	"github.com/runsascoded/shapes/internal/dual"
)

// Point is a Dual-valued 2D Cartesian point, mirroring the original's R2<D>.
type Point struct {
	X, Y dual.Dual
}

// Add returns p + q.
func Add(p, q Point) Point { return Point{dual.Add(p.X, q.X), dual.Add(p.Y, q.Y)} }

// Sub returns p - q.
func Sub(p, q Point) Point { return Point{dual.Sub(p.X, q.X), dual.Sub(p.Y, q.Y)} }

// Scale returns p scaled component-wise by (sx, sy).
func Scale(p Point, sx, sy dual.Dual) Point { return Point{dual.Mul(p.X, sx), dual.Mul(p.Y, sy)} }

// Dot returns the dot product of p and q.
func Dot(p, q Point) dual.Dual { return dual.Add(dual.Mul(p.X, q.X), dual.Mul(p.Y, q.Y)) }

// Norm returns the Euclidean length of p.
func Norm(p Point) dual.Dual { return dual.Sqrt(Dot(p, p)) }

// Cross returns the 2D scalar cross product p.X*q.Y - p.Y*q.X.
func Cross(p, q Point) dual.Dual {
	return dual.Sub(dual.Mul(p.X, q.Y), dual.Mul(p.Y, q.X))
}
