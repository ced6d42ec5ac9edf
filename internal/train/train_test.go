package train

import (
	"math"
	"testing"

	"github.com/runsascoded/shapes/internal/dual"
	"github.com/runsascoded/shapes/internal/shape"
	"github.com/runsascoded/shapes/internal/targets"
)

func constD(v float64) dual.Dual { return dual.Const(v, 1) }

// twoDisjointCircles returns two unit circles far enough apart that they
// don't intersect, and a target distribution that wants them overlapping
// half their area each (forcing the optimizer to actually move them).
func twoDisjointCircles() []shape.Shape {
	return []shape.Shape{
		shape.NewCircle(constD(-5), constD(0), constD(1)),
		shape.NewCircle(constD(5), constD(0), constD(1)),
	}
}

func overlapTargets(t *testing.T) *targets.Targets {
	t.Helper()
	ts, err := targets.New(targets.Map{
		"0-": constD(1),
		"-1": constD(1),
		"01": constD(1),
	})
	if err != nil {
		t.Fatal(err)
	}
	return ts
}

func TestBuildAssignsOneHotColumns(t *testing.T) {
	specs := twoDisjointCircles()
	seeded, n := Build(specs)
	if n != 6 {
		t.Fatalf("expected 6 trainable params, got %d", n)
	}
	seenCols := map[int]bool{}
	for _, s := range seeded {
		for i, p := range s.Params() {
			if !s.Mask()[i] {
				for _, d := range p.D {
					if d != 0 {
						t.Errorf("untrainable param has nonzero gradient: %v", p.D)
					}
				}
				continue
			}
			col := -1
			for j, d := range p.D {
				if d == 1 {
					col = j
				} else if d != 0 {
					t.Errorf("trainable param gradient not one-hot: %v", p.D)
				}
			}
			if col == -1 {
				t.Error("trainable param has all-zero gradient")
				continue
			}
			if seenCols[col] {
				t.Errorf("column %d assigned to more than one parameter", col)
			}
			seenCols[col] = true
		}
	}
}

func TestNewStepMissingRegionPenaltyPullsDisjointShapesTogether(t *testing.T) {
	specs := twoDisjointCircles()
	seeded, _ := Build(specs)
	tg := overlapTargets(t)

	step, err := NewStep(seeded, tg)
	if err != nil {
		t.Fatal(err)
	}

	cxIdx := -1
	for j, d := range seeded[0].Params()[0].D {
		if d == 1 {
			cxIdx = j
		}
	}
	if cxIdx == -1 {
		t.Fatal("first circle's cx is not trainable")
	}
	if step.Error.D[cxIdx] >= 0 {
		t.Errorf("expected negative gradient on circle 0's cx (pulling it rightward), got %v", step.Error.D[cxIdx])
	}
}

func TestVanillaTrainingReducesError(t *testing.T) {
	specs := twoDisjointCircles()
	seeded, _ := Build(specs)
	tg := overlapTargets(t)

	m, err := NewModel(seeded, tg)
	if err != nil {
		t.Fatal(err)
	}
	initialError := m.Current().Error.V

	if err := m.Train(0.1, 400); err != nil {
		t.Fatal(err)
	}

	finalError := m.Steps[m.MinIdx].Error.V
	if finalError >= initialError {
		t.Errorf("expected error to decrease, went from %v to %v", initialError, finalError)
	}
	if math.IsNaN(finalError) {
		t.Error("final error is NaN")
	}
}

func TestAdamTrainingReducesError(t *testing.T) {
	specs := twoDisjointCircles()
	seeded, _ := Build(specs)
	tg := overlapTargets(t)

	m, err := NewModel(seeded, tg)
	if err != nil {
		t.Fatal(err)
	}
	initialError := m.Current().Error.V

	if err := m.TrainAdam(0.05, 200); err != nil {
		t.Fatal(err)
	}

	finalError := m.Steps[m.MinIdx].Error.V
	if finalError >= initialError {
		t.Errorf("expected error to decrease, went from %v to %v", initialError, finalError)
	}
}

func TestRobustTrainingConvergesOnSimpleCase(t *testing.T) {
	specs := []shape.Shape{
		shape.NewCircle(constD(-0.3), constD(0), constD(1)),
		shape.NewCircle(constD(0.3), constD(0), constD(1)),
	}
	seeded, _ := Build(specs)
	ts, err := targets.New(targets.Map{
		"0-": constD(1),
		"-1": constD(1),
		"01": constD(3),
	})
	if err != nil {
		t.Fatal(err)
	}

	initial, err := NewStep(seeded, ts)
	if err != nil {
		t.Fatal(err)
	}

	steps, err := TrainRobust(initial, DefaultOptimConfig(), 200)
	if err != nil {
		t.Fatal(err)
	}
	if len(steps) < 2 {
		t.Fatal("expected robust training to take at least one step")
	}

	last := steps[len(steps)-1]
	if math.IsNaN(last.Error.V) {
		t.Error("final error is NaN")
	}
	if last.Error.V >= initial.Error.V {
		t.Errorf("expected error to decrease, went from %v to %v", initial.Error.V, last.Error.V)
	}
}

func TestModelRecordsMinIdx(t *testing.T) {
	specs := twoDisjointCircles()
	seeded, _ := Build(specs)
	tg := overlapTargets(t)

	m, err := NewModel(seeded, tg)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Train(0.1, 30); err != nil {
		t.Fatal(err)
	}

	if m.MinIdx < 0 || m.MinIdx >= len(m.Steps) {
		t.Fatalf("MinIdx %d out of range for %d steps", m.MinIdx, len(m.Steps))
	}
	if m.Steps[m.MinIdx].Error.V != m.MinError {
		t.Errorf("MinError %v doesn't match Steps[MinIdx].Error.V %v", m.MinError, m.Steps[m.MinIdx].Error.V)
	}
}
