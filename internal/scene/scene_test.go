package scene

import (
	"math"
	"testing"

	"github.com/runsascoded/shapes/internal/dual"
	"github.com/runsascoded/shapes/internal/shape"
)

func c(v float64) dual.Dual { return dual.Const(v, 1) }

func near(t *testing.T, got, want, tol float64, msg string) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: got %v want %v", msg, got, want)
	}
}

func TestTwoOverlappingUnitCircles(t *testing.T) {
	a := shape.NewCircle(c(0), c(0), c(1))
	b := shape.NewCircle(c(1), c(0), c(1))
	sc, err := New([]shape.Shape{a, b})
	if err != nil {
		t.Fatal(err)
	}
	if len(sc.Components) != 1 {
		t.Fatalf("expected 1 component, got %d", len(sc.Components))
	}
	comp := sc.Components[0]
	if len(comp.Regions) != 3 {
		t.Fatalf("expected 3 regions (2 crescents + lens), got %d", len(comp.Regions))
	}
	if len(comp.Hull) == 0 {
		t.Error("expected a non-empty outer hull")
	}

	lens := 2*math.Acos(0.5) - 0.5*math.Sqrt(3)
	crescent := math.Pi - lens

	lensArea, err := sc.Area("01")
	if err != nil {
		t.Fatal(err)
	}
	near(t, lensArea.V, lens, 1e-9, "lens area")

	only0, err := sc.Area("0-")
	if err != nil {
		t.Fatal(err)
	}
	near(t, only0.V, crescent, 1e-9, "circle 0 only")

	only1, err := sc.Area("-1")
	if err != nil {
		t.Fatal(err)
	}
	near(t, only1.V, crescent, 1e-9, "circle 1 only")

	union, err := sc.Area("**")
	if err != nil {
		t.Fatal(err)
	}
	near(t, union.V, 2*crescent+lens, 1e-9, "union area")
}

func TestTwoDisjointCircles(t *testing.T) {
	a := shape.NewCircle(c(0), c(0), c(1))
	b := shape.NewCircle(c(10), c(0), c(1))
	sc, err := New([]shape.Shape{a, b})
	if err != nil {
		t.Fatal(err)
	}
	if len(sc.Components) != 2 {
		t.Fatalf("expected 2 components, got %d", len(sc.Components))
	}
	for _, comp := range sc.Components {
		if len(comp.Regions) != 1 {
			t.Fatalf("expected 1 region per isolated shape, got %d", len(comp.Regions))
		}
	}

	only0, err := sc.Area("0-")
	if err != nil {
		t.Fatal(err)
	}
	near(t, only0.V, math.Pi, 1e-9, "circle 0 area")

	both, err := sc.Area("01")
	if err != nil {
		t.Fatal(err)
	}
	near(t, both.V, 0, 1e-12, "disjoint circles share no area")
}

func TestSingleCircle(t *testing.T) {
	a := shape.NewCircle(c(0), c(0), c(2))
	sc, err := New([]shape.Shape{a})
	if err != nil {
		t.Fatal(err)
	}
	if len(sc.Components) != 1 {
		t.Fatalf("expected 1 component, got %d", len(sc.Components))
	}
	area, err := sc.Area("0")
	if err != nil {
		t.Fatal(err)
	}
	near(t, area.V, math.Pi*4, 1e-9, "circle area")
}
