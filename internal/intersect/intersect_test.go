package intersect

import (
	"math"
	"testing"

	"github.com/runsascoded/shapes/internal/dual"
	"github.com/runsascoded/shapes/internal/shape"
)

func constD(v float64) dual.Dual { return dual.Const(v, 1) }

func near(t *testing.T, got, want, tol float64, msg string) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: got %v want %v", msg, got, want)
	}
}

// residual measures how far a point is from lying on a shape's boundary, for
// verifying intersection points rather than re-deriving their exact values.
func residual(s shape.Shape, p shape.Point) float64 {
	switch v := s.(type) {
	case shape.Circle:
		dx := p.X.V - v.Cx.V
		dy := p.Y.V - v.Cy.V
		return dx*dx + dy*dy - v.R.V*v.R.V
	case shape.XYRR:
		nx := (p.X.V - v.Cx.V) / v.Rx.V
		ny := (p.Y.V - v.Cy.V) / v.Ry.V
		return nx*nx + ny*ny - 1
	case shape.XYRRT:
		dx := p.X.V - v.Cx.V
		dy := p.Y.V - v.Cy.V
		cos := math.Cos(-v.T.V)
		sin := math.Sin(-v.T.V)
		lx := cos*dx - sin*dy
		ly := sin*dx + cos*dy
		nx := lx / v.Rx.V
		ny := ly / v.Ry.V
		return nx*nx + ny*ny - 1
	}
	return 0
}

func TestCircleCircleIntersection(t *testing.T) {
	a := shape.NewCircle(constD(0), constD(0), constD(1))
	b := shape.NewCircle(constD(1), constD(0), constD(1))
	pts := CircleCircle(a, b)
	if len(pts) != 2 {
		t.Fatalf("expected 2 intersection points, got %d", len(pts))
	}
	for _, p := range pts {
		near(t, residual(a, p), 0, 1e-6, "point on a")
		near(t, residual(b, p), 0, 1e-6, "point on b")
	}
	// Known closed-form intersections for unit circles centered at (0,0)
	// and (1,0): x = 0.5, y = +-sqrt(3)/2.
	near(t, pts[0].X.V, 0.5, 1e-6, "x0")
	near(t, math.Abs(pts[0].Y.V), math.Sqrt(3)/2, 1e-6, "y0")
}

func TestCircleCircleNoIntersection(t *testing.T) {
	a := shape.NewCircle(constD(0), constD(0), constD(1))
	b := shape.NewCircle(constD(10), constD(0), constD(1))
	pts := CircleCircle(a, b)
	if len(pts) != 0 {
		t.Fatalf("expected no intersection points, got %d", len(pts))
	}
}

func TestEllipsePairCircles(t *testing.T) {
	// EllipsePair must agree with the dedicated circle-circle path when
	// both inputs happen to be circles.
	a := shape.NewCircle(constD(0), constD(0), constD(1))
	b := shape.NewCircle(constD(1), constD(0), constD(1))
	pts := EllipsePair(a, b)
	if len(pts) != 2 {
		t.Fatalf("expected 2 intersection points, got %d", len(pts))
	}
	for _, p := range pts {
		near(t, residual(a, p), 0, 1e-6, "point on a")
		near(t, residual(b, p), 0, 1e-6, "point on b")
	}
}

func TestEllipsePairAxisAligned(t *testing.T) {
	a := shape.NewXYRR(constD(0), constD(0), constD(2), constD(1))
	b := shape.NewXYRR(constD(1), constD(0), constD(1), constD(2))
	pts := EllipsePair(a, b)
	if len(pts) == 0 {
		t.Fatal("expected at least one intersection point")
	}
	for _, p := range pts {
		near(t, residual(a, p), 0, 1e-5, "point on a")
		near(t, residual(b, p), 0, 1e-5, "point on b")
	}
}

func TestEllipsePairRotated(t *testing.T) {
	a := shape.NewXYRR(constD(0), constD(0), constD(2), constD(1)).Rotate(constD(math.Pi / 4))
	b := shape.NewCircle(constD(1), constD(0.5), constD(1.2))
	pts := EllipsePair(a, b)
	if len(pts) == 0 {
		t.Fatal("expected at least one intersection point")
	}
	for _, p := range pts {
		near(t, residual(a, p), 0, 1e-5, "point on rotated ellipse")
		near(t, residual(b, p), 0, 1e-5, "point on circle")
	}
}

func TestPairDispatchCircles(t *testing.T) {
	a := shape.NewCircle(constD(0), constD(0), constD(1))
	b := shape.NewCircle(constD(1), constD(0), constD(1))
	pts := Pair(a, b)
	if len(pts) != 2 {
		t.Fatalf("expected 2 points via Pair dispatch, got %d", len(pts))
	}
}

func TestPairDispatchPolygonVsCircle(t *testing.T) {
	square := shape.NewPolygon([]shape.Point{
		{X: constD(-2), Y: constD(-2)},
		{X: constD(2), Y: constD(-2)},
		{X: constD(2), Y: constD(2)},
		{X: constD(-2), Y: constD(2)},
	})
	circle := shape.NewCircle(constD(0), constD(0), constD(1))
	pts := Pair(square, circle)
	if len(pts) != 0 {
		t.Fatalf("expected no crossings (circle inside square), got %d", len(pts))
	}

	bigCircle := shape.NewCircle(constD(0), constD(0), constD(2.5))
	pts = Pair(square, bigCircle)
	if len(pts) == 0 {
		t.Fatal("expected crossings between square and a circle straddling its boundary")
	}
	for _, p := range pts {
		near(t, residual(bigCircle, p), 0, 1e-6, "point on circle")
	}
}

func TestPairDispatchPolygons(t *testing.T) {
	a := shape.NewPolygon([]shape.Point{
		{X: constD(0), Y: constD(0)},
		{X: constD(2), Y: constD(0)},
		{X: constD(2), Y: constD(2)},
		{X: constD(0), Y: constD(2)},
	})
	b := shape.NewPolygon([]shape.Point{
		{X: constD(1), Y: constD(1)},
		{X: constD(3), Y: constD(1)},
		{X: constD(3), Y: constD(3)},
		{X: constD(1), Y: constD(3)},
	})
	pts := Pair(a, b)
	if len(pts) == 0 {
		t.Fatal("expected overlapping squares to cross")
	}
}
