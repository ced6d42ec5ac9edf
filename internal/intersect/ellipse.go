package intersect

import "github.com/runsascoded/shapes/internal/shape"

// EllipsePair returns the points where two ellipse-family shapes (Circle,
// XYRR, or XYRRT, in any combination) cross, following the five-step
// reduction described in acdef.rs: project the plane so b becomes the unit
// circle, rotate so a becomes axis-aligned in that frame, solve the
// resulting quartic against the unit circle, then undo the rotation and the
// projection in turn.
func EllipsePair(a, b shape.UnitCircleShape) []shape.Point {
	fromUnit := b.FromUnitCircle()

	aConic, ok := conicOf(a)
	if !ok {
		return nil
	}
	// a's conic is defined in world coordinates; re-express it in b's
	// unit-circle frame by substituting world = fromUnit(local).
	aInUnitFrame := aConic.transform(fromUnit)

	t, axisAligned := aInUnitFrame.derotate()
	rotated := shape.Rotate(t)

	localPts := axisAligned.unitIntersections()

	out := make([]shape.Point, len(localPts))
	for i, p := range localPts {
		unitFramePt := rotated.TransformPoint(p)
		out[i] = fromUnit.TransformPoint(unitFramePt)
	}
	return out
}
