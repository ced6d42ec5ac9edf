package roots

import (
	"math"
	"testing"

	"github.com/runsascoded/shapes/internal/dual"
)

func c(v float64) dual.Dual { return dual.Const(v, 1) }

func checkRoots(t *testing.T, got []dual.Dual, want []float64, tol float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d roots %v, want %d roots %v", len(got), got, len(want), want)
	}
	for i, g := range got {
		if math.Abs(g.V-want[i]) > tol {
			t.Errorf("root %d: got %v, want %v", i, g.V, want[i])
		}
	}
}

func TestQuadraticTwoRoots(t *testing.T) {
	// (x-2)(x-3) = x^2 - 5x + 6
	got := Quadratic(c(1), c(-5), c(6))
	checkRoots(t, got, []float64{2, 3}, 1e-9)
}

func TestQuadraticNoRealRoots(t *testing.T) {
	got := Quadratic(c(1), c(0), c(1))
	if len(got) != 0 {
		t.Fatalf("expected no real roots, got %v", got)
	}
}

func TestQuadraticGradient(t *testing.T) {
	a1 := dual.Var(-5, 0, 2)
	a0 := dual.Var(6, 1, 2)
	got := Quadratic(dual.Const(1, 2), a1, a0)
	if len(got) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(got))
	}
	// x = (-a1 ± sqrt(a1^2-4a0)) / 2 ; dx/da1 for larger root at a1=-5,a0=6 (root=3):
	// sqrt term = 1, larger root = (5+1)/2 = 3, dx/da1 = (-1 + a1/sqrt(...))/2
	root3 := got[1]
	if math.Abs(root3.V-3) > 1e-9 {
		t.Fatalf("expected root 3, got %v", root3.V)
	}
	// finite-difference check on da0
	h := 1e-6
	gotPlus := Quadratic(dual.Const(1, 2), a1, dual.AddF(a0, h))
	fd := (gotPlus[1].V - root3.V) / h
	if math.Abs(fd-root3.D[1]) > 1e-3 {
		t.Errorf("d(root)/da0: analytic %v, finite-diff %v", root3.D[1], fd)
	}
}

func TestCubicThreeRealRoots(t *testing.T) {
	// (x+1)(x)(x-1) = x^3 - x
	got := Cubic(c(1), c(0), c(-1), c(0))
	checkRoots(t, got, []float64{-1, 0, 1}, 1e-7)
}

func TestCubicOneRealRoot(t *testing.T) {
	// x^3 + x + 1 = 0, single real root near -0.6823278
	got := Cubic(c(1), c(0), c(1), c(1))
	checkRoots(t, got, []float64{-0.6823278038280193}, 1e-6)
}

func TestCubicThreeRealRootsAsymmetric(t *testing.T) {
	// x^3 - 3x + 1 = 0, roots 2*cos(2*pi*(3k+1)/9) for k=0,1,2: an
	// asymmetric (q != 0) three-real-root case, unlike x^3-x's q=0.
	got := Cubic(c(1), c(0), c(-3), c(1))
	checkRoots(t, got, []float64{-1.8793852415718169, 0.3472963553338607, 1.532088886237956}, 1e-7)
}

func TestQuarticFourRealRootsAsymmetric(t *testing.T) {
	// (x+2)(x+1)(x-1)(x-3) = x^4 - x^3 - 7x^2 + x + 6: roots not
	// symmetric about any shift, so the depressed quartic's linear term
	// is nonzero and Ferrari's resolvent-cubic branch runs (unlike the
	// biquadratic cases above).
	got := Quartic(c(1), c(-1), c(-7), c(1), c(6))
	checkRoots(t, got, []float64{-2, -1, 1, 3}, 1e-6)
}

func TestQuarticFourRealRoots(t *testing.T) {
	// (x+2)(x+1)(x-1)(x-2) = x^4 - 5x^2 + 4
	got := Quartic(c(1), c(0), c(-5), c(0), c(4))
	checkRoots(t, got, []float64{-2, -1, 1, 2}, 1e-6)
}

func TestQuarticTwoRealRoots(t *testing.T) {
	// (x^2-1)(x^2+1) = x^4 - 1, real roots at ±1
	got := Quartic(c(1), c(0), c(0), c(0), c(-1))
	checkRoots(t, got, []float64{-1, 1}, 1e-6)
}

func TestQuarticNoRealRoots(t *testing.T) {
	// (x^2+1)(x^2+4) = x^4 + 5x^2 + 4, no real roots
	got := Quartic(c(1), c(0), c(5), c(0), c(4))
	if len(got) != 0 {
		t.Fatalf("expected no real roots, got %v", got)
	}
}
