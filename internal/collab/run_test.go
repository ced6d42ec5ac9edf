package collab

import (
	"encoding/json"
	"testing"

	"github.com/runsascoded/shapes/internal/dual"
	"github.com/runsascoded/shapes/internal/shape"
	"github.com/runsascoded/shapes/internal/targets"
	"github.com/runsascoded/shapes/internal/trace"
	"github.com/runsascoded/shapes/internal/train"
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

func newTestModel(t *testing.T) *train.Model {
	t.Helper()
	shapes := []shape.Shape{
		shape.NewCircle(constD(0), constD(0), constD(1)),
		shape.NewCircle(constD(0.8), constD(0), constD(1)),
	}
	m, err := train.NewModel(shapes, overlapTargets(t))
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestRunStateAdvanceAppendsOneStep(t *testing.T) {
	model := newTestModel(t)
	rs := NewRunState("run-1", model, trace.DefaultConfig(), 0.1)

	before := len(model.Steps)
	payload, ok, err := rs.Advance()
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected Advance to report a new step")
	}
	if len(model.Steps) != before+1 {
		t.Errorf("len(Steps) = %d, want %d", len(model.Steps), before+1)
	}
	if payload.StepIdx != before {
		t.Errorf("StepIdx = %d, want %d", payload.StepIdx, before)
	}
	if payload.ServerSeq != 1 {
		t.Errorf("ServerSeq = %d, want 1", payload.ServerSeq)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(payload.Step, &decoded); err != nil {
		t.Fatalf("Step payload is not valid JSON: %v", err)
	}
	if _, ok := decoded["error"]; !ok {
		t.Error("decoded step payload missing \"error\" field")
	}
}

func TestRunStateAdvanceStopsAtConvergence(t *testing.T) {
	model := newTestModel(t)
	rs := NewRunState("run-2", model, trace.DefaultConfig(), 0.1)

	for i := 0; i < 10000; i++ {
		_, ok, err := rs.Advance()
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			break
		}
	}
	if !model.Current().Converged {
		t.Skip("model did not converge within the step budget; not a collab-package concern")
	}

	_, ok, err := rs.Advance()
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("expected Advance on a converged run to report no new step")
	}
}

func TestRunStateAdvancePopulatesTraceStore(t *testing.T) {
	model := newTestModel(t)
	rs := NewRunState("run-3", model, trace.Config{BucketSize: 4}, 0.1)

	for i := 0; i < 10; i++ {
		if _, _, err := rs.Advance(); err != nil {
			t.Fatal(err)
		}
	}
	if rs.Trace().Len() != len(model.Steps) {
		t.Errorf("Trace().Len() = %d, want %d", rs.Trace().Len(), len(model.Steps))
	}
}

func TestPlayheadManagerTracksAndRemovesViewers(t *testing.T) {
	pm := NewPlayheadManager()
	pm.Update("viewer-a", &PlayheadPayload{StepIdx: 5, DisplayName: "Ada"})
	pm.Update("viewer-b", &PlayheadPayload{StepIdx: 12})

	all := pm.GetAll()
	if len(all) != 2 {
		t.Fatalf("len(GetAll()) = %d, want 2", len(all))
	}
	if all["viewer-a"].StepIdx != 5 {
		t.Errorf("viewer-a StepIdx = %d, want 5", all["viewer-a"].StepIdx)
	}

	pm.Remove("viewer-a")
	all = pm.GetAll()
	if len(all) != 1 {
		t.Fatalf("len(GetAll()) after Remove = %d, want 1", len(all))
	}
	if _, ok := all["viewer-a"]; ok {
		t.Error("viewer-a still present after Remove")
	}
}

func TestPlayheadManagerStateMessageIsValidJSON(t *testing.T) {
	pm := NewPlayheadManager()
	pm.Update("viewer-a", &PlayheadPayload{StepIdx: 3})

	msg := pm.StateMessage()
	if msg.Type != TypePlayheadState {
		t.Errorf("Type = %q, want %q", msg.Type, TypePlayheadState)
	}

	var decoded PlayheadStatePayload
	if err := json.Unmarshal(msg.Payload, &decoded); err != nil {
		t.Fatalf("decoding state message payload: %v", err)
	}
	if decoded.Playheads["viewer-a"].StepIdx != 3 {
		t.Errorf("decoded StepIdx = %d, want 3", decoded.Playheads["viewer-a"].StepIdx)
	}
}
