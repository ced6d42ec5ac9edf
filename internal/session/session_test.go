package session

import (
	"context"
	"testing"
	"time"

	"github.com/runsascoded/shapes/internal/dual"
	"github.com/runsascoded/shapes/internal/shape"
	"github.com/runsascoded/shapes/internal/targets"
)

func constD(v float64) dual.Dual { return dual.Const(v, 1) }

func overlapTargets(t *testing.T) *targets.Targets {
	t.Helper()
	ts, err := targets.New(targets.Map{
		"0-": constD(2),
		"-1": constD(2),
		"01": constD(1),
	})
	if err != nil {
		t.Fatal(err)
	}
	return ts
}

func overlappingCircles() []shape.Shape {
	return []shape.Shape{
		shape.NewCircle(constD(0), constD(0), constD(1)),
		shape.NewCircle(constD(0.8), constD(0), constD(1)),
	}
}

func TestRunVanillaReducesError(t *testing.T) {
	tg := overlapTargets(t)
	cfg := DefaultConfig()
	cfg.MaxSteps = 30

	result, err := Run(context.Background(), Spec{ID: "a", Shapes: overlappingCircles(), Targets: tg, Config: cfg})
	if err != nil {
		t.Fatal(err)
	}
	first, last := result.Model.Steps[0], result.Model.Current()
	if last.Error.V >= first.Error.V {
		t.Errorf("error did not decrease: first %v, last %v", first.Error.V, last.Error.V)
	}
	if result.Trace.Len() != len(result.Model.Steps) {
		t.Errorf("Trace.Len() = %d, want %d", result.Trace.Len(), len(result.Model.Steps))
	}
}

func TestRunAdamBuildsATraceStore(t *testing.T) {
	tg := overlapTargets(t)
	cfg := DefaultConfig()
	cfg.Optimizer = OptimizerAdam
	cfg.MaxSteps = 20

	result, err := Run(context.Background(), Spec{ID: "b", Shapes: overlappingCircles(), Targets: tg, Config: cfg})
	if err != nil {
		t.Fatal(err)
	}
	if result.Trace.StoredCount() == 0 {
		t.Error("expected at least one stored keyframe")
	}
	if _, _, ok := result.Trace.NearestKeyframe(0); !ok {
		t.Error("expected step 0 to be reachable as a keyframe")
	}
}

func TestRunRobustBuildsATraceStore(t *testing.T) {
	tg := overlapTargets(t)
	cfg := DefaultConfig()
	cfg.Optimizer = OptimizerRobust
	cfg.MaxSteps = 20

	result, err := Run(context.Background(), Spec{ID: "c", Shapes: overlappingCircles(), Targets: tg, Config: cfg})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Model.Steps) == 0 {
		t.Error("expected at least the initial step")
	}
}

func TestRunRespectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tg := overlapTargets(t)
	_, err := Run(ctx, Spec{ID: "d", Shapes: overlappingCircles(), Targets: tg, Config: DefaultConfig()})
	if err == nil {
		t.Error("expected an error from a pre-cancelled context")
	}
}

func TestRunManyRunsSessionsIndependently(t *testing.T) {
	tg := overlapTargets(t)
	cfg := DefaultConfig()
	cfg.MaxSteps = 15

	specs := []Spec{
		{ID: "x", Shapes: overlappingCircles(), Targets: tg, Config: cfg},
		{ID: "y", Shapes: overlappingCircles(), Targets: tg, Config: cfg},
		{ID: "z", Shapes: overlappingCircles(), Targets: tg, Config: cfg},
	}

	results, err := RunMany(context.Background(), specs)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != len(specs) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(specs))
	}
	for i, r := range results {
		if r.ID != specs[i].ID {
			t.Errorf("results[%d].ID = %q, want %q", i, r.ID, specs[i].ID)
		}
	}
}

func TestRunManyPropagatesFirstError(t *testing.T) {
	// A single-shape target map against a two-shape scene: the region key
	// lengths disagree, which scene.Area rejects.
	oneShapeTargets, err := targets.New(targets.Map{"0": constD(1)})
	if err != nil {
		t.Fatal(err)
	}

	specs := []Spec{
		{ID: "good", Shapes: overlappingCircles(), Targets: overlapTargets(t), Config: DefaultConfig()},
		{ID: "bad", Shapes: overlappingCircles(), Targets: oneShapeTargets, Config: DefaultConfig()},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := RunMany(ctx, specs); err == nil {
		t.Error("expected RunMany to surface the failing session's error")
	}
}
