package intersect

import (
	"math"

	"github.com/runsascoded/shapes/internal/dual"
	"github.com/runsascoded/shapes/internal/roots"
	"github.com/runsascoded/shapes/internal/shape"
)

// CircleCircle returns the 0, 1, or 2 points where a and b's boundaries
// cross, grounded on circle.rs's project/unit_intersections/invert pipeline:
// project b into a's frame so a becomes the unit circle, solve the resulting
// quadratic, then invert back.
//
// The projection divides BOTH the translated center and the radius by a.R;
// the original source's Circle::project only scales the radius, leaving the
// center untranslated-but-unscaled, which does not land the second circle in
// the first's actual unit-circle frame. That looks like a bug in the
// retrieved source rather than an intentional shortcut, so this divides the
// center too, matching what ToUnitCircle/FromUnitCircle (and every ellipse
// case, which must get this right to feed the quartic solver) already do
// elsewhere in this package.
func CircleCircle(a, b shape.Circle) []shape.Point {
	to := a.ToUnitCircle()
	from := a.FromUnitCircle()

	center := to.TransformPoint(shape.Point{X: b.Cx, Y: b.Cy})
	cx, cy := center.X, center.Y
	r := dual.Div(b.R, a.R)

	pts := unitCircleVsCircle(cx, cy, r)
	out := make([]shape.Point, len(pts))
	for i, p := range pts {
		out[i] = from.TransformPoint(p)
	}
	return out
}

// unitCircleVsCircle intersects the unit circle x^2+y^2=1 against a circle
// centered at (cx,cy) with radius r, following circle.rs's unit_intersections:
// solve the quadratic in x obtained by eliminating y^2 between the two
// circle equations, then pick each root's y sign by minimal residual.
func unitCircleVsCircle(cx, cy, r dual.Dual) []shape.Point {
	c := dual.Add(dual.Mul(cx, cx), dual.Mul(cy, cy))
	d := dual.AddF(dual.Sub(c, dual.Mul(r, r)), 1)

	quadCoef := dual.MulF(c, 4)
	linCoef := dual.MulF(dual.Mul(cx, d), -4)
	constCoef := dual.Sub(dual.Mul(d, d), dual.MulF(dual.Mul(cy, cy), 4))

	xs := roots.Quadratic(quadCoef, linCoef, constCoef)
	out := make([]shape.Point, 0, len(xs))
	for _, x := range xs {
		ySq := dual.Sub(dual.Const(1, x.Len()), dual.Mul(x, x))
		if ySq.V < 0 {
			continue
		}
		y := dual.Sqrt(ySq)
		yNeg := dual.Neg(y)

		resPos := circleResidual(x, y, cx, cy, r)
		resNeg := circleResidual(x, yNeg, cx, cy, r)
		// Both signs on the second circle: its center is on the x axis, and
		// this single (double) root is a pair of crossings mirrored across it.
		if y.V > roots.Tolerance && math.Abs(resPos.V) <= roots.Tolerance && math.Abs(resNeg.V) <= roots.Tolerance {
			out = append(out, shape.Point{X: x, Y: y}, shape.Point{X: x, Y: yNeg})
			continue
		}
		if math.Abs(resNeg.V) < math.Abs(resPos.V) {
			y = yNeg
		}
		out = append(out, shape.Point{X: x, Y: y})
	}
	return out
}

func circleResidual(x, y, cx, cy, r dual.Dual) dual.Dual {
	dx := dual.Sub(x, cx)
	dy := dual.Sub(y, cy)
	return dual.Sub(dual.Add(dual.Mul(dx, dx), dual.Mul(dy, dy)), dual.Mul(r, r))
}
