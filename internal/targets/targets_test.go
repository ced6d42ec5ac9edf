package targets

import (
	"testing"

	"github.com/runsascoded/shapes/internal/dual"
)

func c(v float64) dual.Dual { return dual.Const(v, 1) }

func TestNewSingleShape(t *testing.T) {
	ts, err := New(Map{"0": c(5)})
	if err != nil {
		t.Fatal(err)
	}
	if got := ts.All["*"].V; got != 5 {
		t.Errorf("*: got %v want 5", got)
	}
	if got := ts.All["-"].V; got != 0 {
		t.Errorf("-: got %v want 0", got)
	}
	if ts.TotalArea.V != 5 {
		t.Errorf("TotalArea: got %v want 5", ts.TotalArea.V)
	}
}

func TestNewTwoShapes(t *testing.T) {
	ts, err := New(Map{
		"0-": c(3),
		"-1": c(4),
		"01": c(2),
	})
	if err != nil {
		t.Fatal(err)
	}
	cases := map[string]float64{
		"--": 0,
		"0-": 3,
		"-1": 4,
		"01": 2,
		"*-": 3,
		"-*": 4,
		"0*": 5,
		"*1": 6,
		"**": 9,
	}
	for k, want := range cases {
		v, ok := ts.All[k]
		if !ok {
			t.Errorf("missing key %q", k)
			continue
		}
		if v.V != want {
			t.Errorf("%s: got %v want %v", k, v.V, want)
		}
	}
	if ts.TotalArea.V != 9 {
		t.Errorf("TotalArea: got %v want 9", ts.TotalArea.V)
	}
}

func TestDisjoints(t *testing.T) {
	ts, err := New(Map{
		"0-": c(3),
		"-1": c(4),
		"01": c(2),
	})
	if err != nil {
		t.Fatal(err)
	}
	d := ts.Disjoints()
	if len(d) != 3 {
		t.Fatalf("expected 3 disjoint regions, got %d", len(d))
	}
	want := map[string]float64{"0-": 3, "-1": 4, "01": 2}
	for k, w := range want {
		v, ok := d[k]
		if !ok {
			t.Errorf("missing disjoint key %q", k)
			continue
		}
		if v.V != w {
			t.Errorf("%s: got %v want %v", k, v.V, w)
		}
	}
	if _, ok := d["--"]; ok {
		t.Error("Disjoints should exclude the all-excluded key")
	}
}

func TestNewRequiresConsistentKeyLength(t *testing.T) {
	_, err := New(Map{"0-": c(1), "1": c(2)})
	if err == nil {
		t.Fatal("expected error for mismatched key lengths")
	}
}

func TestNewRequiresNonEmpty(t *testing.T) {
	_, err := New(Map{})
	if err == nil {
		t.Fatal("expected error for empty input")
	}
}
