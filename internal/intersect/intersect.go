// Package intersect computes the boundary-crossing points between pairs of
// shapes, the inputs to the scene's component/region decomposition. Every
// case bottoms out in a closed-form polynomial solve over internal/roots so
// that crossing points carry gradients with respect to the shapes' trainable
// coordinates, the same as every other quantity in the pipeline.
package intersect

import "github.com/runsascoded/shapes/internal/shape"

// Pair returns the points where a and b's boundaries cross. Polygon pairs
// dispatch to the shape's own edge-intersection logic; every other
// combination reduces to the unit-circle/quartic pipeline in ellipse.go, or
// to the closed-form quadratic in circle.go when both sides are circles.
func Pair(a, b shape.Shape) []shape.Point {
	ap, aIsPolygon := a.(shape.Polygon)
	bp, bIsPolygon := b.(shape.Polygon)

	switch {
	case aIsPolygon && bIsPolygon:
		return ap.EdgeIntersect(bp)
	case aIsPolygon:
		return polygonVsCurve(ap, b)
	case bIsPolygon:
		return polygonVsCurve(bp, a)
	}

	ac, aIsCircle := a.(shape.Circle)
	bc, bIsCircle := b.(shape.Circle)
	if aIsCircle && bIsCircle {
		return CircleCircle(ac, bc)
	}

	au, aOK := a.(shape.UnitCircleShape)
	bu, bOK := b.(shape.UnitCircleShape)
	if aOK && bOK {
		return EllipsePair(au, bu)
	}
	return nil
}

// polygonVsCurve intersects a polygon's edges against a circle/ellipse
// boundary by mapping the curve's own unit-circle projection onto each edge:
// transform the polygon's vertices into the curve's unit-circle frame, solve
// edge-vs-unit-circle there, then map the resulting points back.
func polygonVsCurve(p shape.Polygon, curve shape.Shape) []shape.Point {
	u, ok := curve.(shape.UnitCircleShape)
	if !ok {
		return nil
	}
	toUnit := u.ToUnitCircle()
	fromUnit := u.FromUnitCircle()

	localVerts := make([]shape.Point, len(p.Vertices))
	for i, v := range p.Vertices {
		localVerts[i] = toUnit.TransformPoint(v)
	}
	localPolygon := shape.NewPolygon(localVerts)

	localPts := localPolygon.UnitIntersections()
	out := make([]shape.Point, len(localPts))
	for i, pt := range localPts {
		out[i] = fromUnit.TransformPoint(pt)
	}
	return out
}
