package wire

import (
	"encoding/json"
	"testing"

	"github.com/runsascoded/shapes/internal/dual"
	"github.com/runsascoded/shapes/internal/shape"
	"github.com/runsascoded/shapes/internal/targets"
	"github.com/runsascoded/shapes/internal/train"
)

func constD(v float64) dual.Dual { return dual.Const(v, 1) }

func overlappingShapes() []shape.Shape {
	specs := []shape.Shape{
		shape.NewCircle(constD(0), constD(0), constD(1)),
		shape.NewCircle(constD(1), constD(0), constD(1)),
	}
	seeded, _ := train.Build(specs)
	return seeded
}

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

func TestFromShapeRoundTripsCircle(t *testing.T) {
	c := shape.NewCircle(constD(1), constD(2), constD(3))
	w := FromShape(c)
	if w.Kind != string(shape.KindCircle) {
		t.Errorf("Kind = %q, want %q", w.Kind, shape.KindCircle)
	}
	if w.Cx != 1 || w.Cy != 2 || w.R != 3 {
		t.Errorf("got Cx=%v Cy=%v R=%v, want 1,2,3", w.Cx, w.Cy, w.R)
	}
}

func TestFromShapePolygonCarriesVertices(t *testing.T) {
	p := shape.NewPolygon([]shape.Point{
		{X: constD(0), Y: constD(0)},
		{X: constD(1), Y: constD(0)},
		{X: constD(0), Y: constD(1)},
	})
	w := FromShape(p)
	if w.Kind != string(shape.KindPolygon) {
		t.Errorf("Kind = %q, want %q", w.Kind, shape.KindPolygon)
	}
	if len(w.Vertices) != 3 {
		t.Fatalf("len(Vertices) = %d, want 3", len(w.Vertices))
	}
	if w.Vertices[1].X != 1 {
		t.Errorf("Vertices[1].X = %v, want 1", w.Vertices[1].X)
	}
}

func TestFromStepUnwrapsDualsAndPreservesStructure(t *testing.T) {
	tg := overlapTargets(t)
	step, err := train.NewStep(overlappingShapes(), tg)
	if err != nil {
		t.Fatal(err)
	}

	w := FromStep(step)

	if len(w.Shapes) != len(step.Shapes) {
		t.Errorf("len(Shapes) = %d, want %d", len(w.Shapes), len(step.Shapes))
	}
	if w.Error != step.Error.V {
		t.Errorf("Error = %v, want %v", w.Error, step.Error.V)
	}
	if w.TotalArea != step.TotalArea.V {
		t.Errorf("TotalArea = %v, want %v", w.TotalArea, step.TotalArea.V)
	}
	if len(w.Errors) != len(step.Errors) {
		t.Errorf("len(Errors) = %d, want %d", len(w.Errors), len(step.Errors))
	}
	for key, re := range step.Errors {
		got, ok := w.Errors[key]
		if !ok {
			t.Fatalf("missing region error for key %q", key)
		}
		if got.Error != re.Error.V {
			t.Errorf("Errors[%q].Error = %v, want %v", key, got.Error, re.Error.V)
		}
	}

	if len(w.Scene.Components) != len(step.Scene.Components) {
		t.Errorf("len(Scene.Components) = %d, want %d", len(w.Scene.Components), len(step.Scene.Components))
	}
	for i, c := range w.Scene.Components {
		orig := step.Scene.Components[i]
		if len(c.Regions) != len(orig.Regions) {
			t.Errorf("component %d: len(Regions) = %d, want %d", i, len(c.Regions), len(orig.Regions))
		}
		for j, r := range c.Regions {
			if r.Area != orig.Regions[j].Area.V {
				t.Errorf("component %d region %d: Area = %v, want %v", i, j, r.Area, orig.Regions[j].Area.V)
			}
			if r.Key != orig.Regions[j].Key {
				t.Errorf("component %d region %d: Key = %q, want %q", i, j, r.Key, orig.Regions[j].Key)
			}
		}
	}
}

func TestComponentKeyMarksMemberIndices(t *testing.T) {
	if got := componentKey([]int{0, 2}, 3); got != "0-2" {
		t.Errorf("componentKey({0,2}, 3) = %q, want %q", got, "0-2")
	}
	if got := componentKey([]int{1}, 3); got != "-1-" {
		t.Errorf("componentKey({1}, 3) = %q, want %q", got, "-1-")
	}
}

func TestStepToJSONProducesValidJSON(t *testing.T) {
	tg := overlapTargets(t)
	step, err := train.NewStep(overlappingShapes(), tg)
	if err != nil {
		t.Fatal(err)
	}
	out, err := StepToJSON(FromStep(step))
	if err != nil {
		t.Fatalf("StepToJSON: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("decoding StepToJSON output: %v", err)
	}
	if _, ok := decoded["error"]; !ok {
		t.Error("decoded JSON missing \"error\" field")
	}
	if _, ok := decoded["scene"]; !ok {
		t.Error("decoded JSON missing \"scene\" field")
	}
}

func TestModelToJSONCoversEveryStep(t *testing.T) {
	tg := overlapTargets(t)
	m, err := train.NewModel(overlappingShapes(), tg)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Train(0.1, 5); err != nil {
		t.Fatal(err)
	}

	wm := FromModel(m)
	if len(wm.Steps) != len(m.Steps) {
		t.Fatalf("len(Steps) = %d, want %d", len(wm.Steps), len(m.Steps))
	}

	out, err := ModelToJSON(wm)
	if err != nil {
		t.Fatalf("ModelToJSON: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("decoding ModelToJSON output: %v", err)
	}
	steps, ok := decoded["steps"].([]interface{})
	if !ok || len(steps) != len(m.Steps) {
		t.Errorf("decoded steps length = %v, want %d", decoded["steps"], len(m.Steps))
	}
}

func TestTargetsMapDropsWildcardKeys(t *testing.T) {
	tg := overlapTargets(t)
	out := TargetsMap(tg)
	for k := range out {
		for _, ch := range k {
			if ch == '*' {
				t.Errorf("TargetsMap leaked a wildcard key: %q", k)
			}
		}
	}
	if len(out) == 0 {
		t.Error("expected at least one disjoint target key")
	}
}
