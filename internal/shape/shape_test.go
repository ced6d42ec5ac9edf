package shape

import (
	"math"
	"testing"

	"github.com/runsascoded/shapes/internal/dual"
)

func near(t *testing.T, got, want, tol float64, msg string) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: got %v want %v", msg, got, want)
	}
}

func constD(v float64) dual.Dual { return dual.Const(v, 4) }

func TestCircleArea(t *testing.T) {
	c := NewCircle(constD(0), constD(0), constD(2))
	near(t, c.Area().V, math.Pi*4, 1e-9, "circle area")
}

func TestCirclePointAtTheta(t *testing.T) {
	c := NewCircle(constD(1), constD(1), constD(2))
	p := c.PointAtTheta(constD(0))
	near(t, p.X.V, 3, 1e-9, "point x")
	near(t, p.Y.V, 1, 1e-9, "point y")
}

func TestXYRRAreaAndUnitCircleRoundTrip(t *testing.T) {
	e := NewXYRR(constD(1), constD(-1), constD(2), constD(3))
	near(t, e.Area().V, math.Pi*6, 1e-9, "xyrr area")

	to := e.ToUnitCircle()
	from := e.FromUnitCircle()
	p := Point{X: constD(2.5), Y: constD(1.0)}
	unit := to.TransformPoint(p)
	back := from.TransformPoint(unit)
	near(t, back.X.V, p.X.V, 1e-9, "round trip x")
	near(t, back.Y.V, p.Y.V, 1e-9, "round trip y")
}

func TestXYRRTPointAtThetaMatchesRotation(t *testing.T) {
	e := NewXYRRT(constD(0), constD(0), constD(2), constD(1), constD(math.Pi/2))
	p := e.PointAtTheta(constD(0))
	// theta=0 local point is (rx, 0) = (2, 0); rotated by pi/2 -> (0, 2)
	near(t, p.X.V, 0, 1e-9, "xyrrt rotated x")
	near(t, p.Y.V, 2, 1e-9, "xyrrt rotated y")
}

func TestPolygonAreaSquare(t *testing.T) {
	square := NewPolygon([]Point{
		{X: constD(0), Y: constD(0)},
		{X: constD(2), Y: constD(0)},
		{X: constD(2), Y: constD(2)},
		{X: constD(0), Y: constD(2)},
	})
	near(t, square.Area().V, 4, 1e-9, "square area")
}

func TestPolygonContains(t *testing.T) {
	square := NewPolygon([]Point{
		{X: constD(0), Y: constD(0)},
		{X: constD(2), Y: constD(0)},
		{X: constD(2), Y: constD(2)},
		{X: constD(0), Y: constD(2)},
	})
	if !square.Contains(Point{X: constD(1), Y: constD(1)}) {
		t.Error("expected center point to be contained")
	}
	if square.Contains(Point{X: constD(5), Y: constD(5)}) {
		t.Error("expected far point to not be contained")
	}
}

func TestPolygonNotSelfIntersecting(t *testing.T) {
	square := NewPolygon([]Point{
		{X: constD(0), Y: constD(0)},
		{X: constD(2), Y: constD(0)},
		{X: constD(2), Y: constD(2)},
		{X: constD(0), Y: constD(2)},
	})
	if square.IsSelfIntersecting() {
		t.Error("square should not self-intersect")
	}
}

func TestPolygonSelfIntersectingBowtie(t *testing.T) {
	bowtie := NewPolygon([]Point{
		{X: constD(0), Y: constD(0)},
		{X: constD(2), Y: constD(2)},
		{X: constD(2), Y: constD(0)},
		{X: constD(0), Y: constD(2)},
	})
	if !bowtie.IsSelfIntersecting() {
		t.Error("bowtie should self-intersect")
	}
}
