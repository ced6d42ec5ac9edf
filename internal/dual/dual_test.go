package dual

import (
	"math"
	"testing"
)

func near(t *testing.T, got, want float64, tol float64, msg string) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: got %v, want %v", msg, got, want)
	}
}

func TestArithmeticGradients(t *testing.T) {
	x := Var(3, 0, 2)
	y := Var(4, 1, 2)

	sum := Add(x, y)
	near(t, sum.V, 7, 1e-12, "x+y value")
	near(t, sum.D[0], 1, 1e-12, "d(x+y)/dx")
	near(t, sum.D[1], 1, 1e-12, "d(x+y)/dy")

	prod := Mul(x, y)
	near(t, prod.V, 12, 1e-12, "x*y value")
	near(t, prod.D[0], 4, 1e-12, "d(x*y)/dx")
	near(t, prod.D[1], 3, 1e-12, "d(x*y)/dy")

	quot := Div(x, y)
	near(t, quot.V, 0.75, 1e-12, "x/y value")
	near(t, quot.D[0], 1.0/4, 1e-12, "d(x/y)/dx")
	near(t, quot.D[1], -3.0/16, 1e-12, "d(x/y)/dy")
}

func TestSqrt(t *testing.T) {
	x := Var(4, 0, 1)
	r := Sqrt(x)
	near(t, r.V, 2, 1e-12, "sqrt value")
	near(t, r.D[0], 0.25, 1e-12, "d(sqrt)/dx")
}

func TestAtan2(t *testing.T) {
	y := Var(1, 0, 2)
	x := Var(1, 1, 2)
	r := Atan2(y, x)
	near(t, r.V, math.Pi/4, 1e-12, "atan2 value")
	near(t, r.D[0], 0.5, 1e-12, "d(atan2)/dy")
	near(t, r.D[1], -0.5, 1e-12, "d(atan2)/dx")
}

func TestTrigIdentity(t *testing.T) {
	theta := Var(0.7, 0, 1)
	s := Sin(theta)
	c := Cos(theta)
	sum := Add(Mul(s, s), Mul(c, c))
	near(t, sum.V, 1, 1e-9, "sin^2+cos^2")
}

func TestPow(t *testing.T) {
	x := Var(2, 0, 1)
	r := Pow(x, 3)
	near(t, r.V, 8, 1e-12, "x^3 value")
	near(t, r.D[0], 12, 1e-12, "d(x^3)/dx")
}

func TestIsNormal(t *testing.T) {
	x := Const(1, 2)
	if !x.IsNormal() {
		t.Fatal("expected constant dual to be normal")
	}
	bad := New(math.NaN(), []float64{0, 0})
	if bad.IsNormal() {
		t.Fatal("expected NaN dual to be non-normal")
	}
}

func TestInverseTrig(t *testing.T) {
	x := Var(0.5, 0, 1)
	a := Acos(x)
	near(t, a.V, math.Acos(0.5), 1e-12, "acos value")
	near(t, a.D[0], -1/math.Sqrt(0.75), 1e-9, "d(acos)/dx")

	y := Var(2.0, 0, 1)
	h := Acosh(y)
	near(t, h.V, math.Acosh(2), 1e-12, "acosh value")
	near(t, h.D[0], 1/math.Sqrt(3), 1e-9, "d(acosh)/dx")
}

func TestMismatchedLengthsPanic(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on mismatched gradient lengths")
		}
	}()
	Add(Const(1, 2), Const(1, 3))
}
