// Package engine is the facade a host (cmd/server, cmd/wasm) calls into: it
// exposes the core's operations under the names the external interface
// gives them (MakeModel, MakeStep, Step, Train/TrainAdam/TrainRobust,
// ExpandTargets, IsConverged, CheckPolygonValidity, the tiered_* trio) and
// owns the one piece of bookkeeping none of internal/shape, internal/train,
// internal/targets or internal/trace owns by itself: turning a plain
// (shape, trainable-mask) InputSpec into a properly-seeded []shape.Shape via
// train.Build. This mirrors the teacher's internal/engine.Engine, which
// played the same "owns document state, dispatches frontend commands to
// query results" role for the document/scene-graph domain; here the "scene
// graph" being dispatched against is a Scene and the "commands" are the
// spec's named training operations instead of edit commands.
package engine

import (
	"fmt"

	"github.com/runsascoded/shapes/internal/dual"
	"github.com/runsascoded/shapes/internal/shape"
	"github.com/runsascoded/shapes/internal/targets"
	"github.com/runsascoded/shapes/internal/trace"
	"github.com/runsascoded/shapes/internal/train"
)

// Point is a plain 2D coordinate, the InputSpec wire shape's vertex type.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// InputSpec is one shape's initial value plus its trainable mask, matching
// spec.md §6's InputSpec = (Shape, trainable: [bool]). Its JSON tags are
// what cmd/wasm unmarshals call arguments into directly, and what
// internal/run's shapeSpecRequest converts into.
type InputSpec struct {
	Kind      shape.Kind `json:"kind"`
	Cx        float64    `json:"cx,omitempty"`
	Cy        float64    `json:"cy,omitempty"`
	R         float64    `json:"r,omitempty"`
	Rx        float64    `json:"rx,omitempty"`
	Ry        float64    `json:"ry,omitempty"`
	T         float64    `json:"t,omitempty"`
	Vertices  []Point    `json:"vertices,omitempty"`
	Trainable []bool     `json:"trainable"`
}

// ParamCount reports how many trainable-mask entries this spec's variant
// needs, per spec.md §3 (Circle: 3, XYRR: 4, XYRRT: 5, Polygon: 2*|vertices|).
func (s InputSpec) ParamCount() int {
	switch s.Kind {
	case shape.KindCircle:
		return 3
	case shape.KindXYRR:
		return 4
	case shape.KindXYRRT:
		return 5
	case shape.KindPolygon:
		return 2 * len(s.Vertices)
	default:
		return 0
	}
}

// untrained converts one InputSpec into a shape.Shape whose coordinates are
// zero-gradient placeholders (dual.Const(v, 0)); train.Build overwrites
// every trainable coordinate's gradient with a real one-hot vector once all
// specs are known, so only the value and mask need to be right here.
func untrained(s InputSpec) (shape.Shape, error) {
	want := s.ParamCount()
	if len(s.Trainable) != want {
		return nil, fmt.Errorf("engine: %s trainable mask has %d entries, want %d", s.Kind, len(s.Trainable), want)
	}
	zero := func(v float64) dual.Dual { return dual.Const(v, 0) }
	switch s.Kind {
	case shape.KindCircle:
		return shape.Circle{
			Cx: zero(s.Cx), Cy: zero(s.Cy), R: zero(s.R),
			MaskCx: s.Trainable[0], MaskCy: s.Trainable[1], MaskR: s.Trainable[2],
		}, nil
	case shape.KindXYRR:
		return shape.XYRR{
			Cx: zero(s.Cx), Cy: zero(s.Cy), Rx: zero(s.Rx), Ry: zero(s.Ry),
			MaskCx: s.Trainable[0], MaskCy: s.Trainable[1], MaskRx: s.Trainable[2], MaskRy: s.Trainable[3],
		}, nil
	case shape.KindXYRRT:
		return shape.XYRRT{
			Cx: zero(s.Cx), Cy: zero(s.Cy), Rx: zero(s.Rx), Ry: zero(s.Ry), T: zero(s.T),
			MaskCx: s.Trainable[0], MaskCy: s.Trainable[1], MaskRx: s.Trainable[2],
			MaskRy: s.Trainable[3], MaskT: s.Trainable[4],
		}, nil
	case shape.KindPolygon:
		if len(s.Vertices) < 3 {
			return nil, fmt.Errorf("engine: polygon needs at least 3 vertices, got %d", len(s.Vertices))
		}
		verts := make([]shape.Point, len(s.Vertices))
		mask := make([]bool, len(s.Vertices))
		for i, v := range s.Vertices {
			verts[i] = shape.Point{X: zero(v.X), Y: zero(v.Y)}
			mask[i] = s.Trainable[2*i] || s.Trainable[2*i+1]
		}
		return shape.Polygon{Vertices: verts, Mask2: mask}, nil
	default:
		return nil, fmt.Errorf("engine: unknown shape kind %q", s.Kind)
	}
}

// BuildShapes converts InputSpecs into fully-seeded, gradient-carrying
// shape.Shapes sharing one trainable-parameter vector, via train.Build. n is
// the shared gradient length (the total number of trainable coordinates
// across every spec), needed to expand targets against the same vector.
func BuildShapes(specs []InputSpec) (shapes []shape.Shape, n int, err error) {
	raw := make([]shape.Shape, len(specs))
	for i, s := range specs {
		sh, err := untrained(s)
		if err != nil {
			return nil, 0, err
		}
		raw[i] = sh
	}
	seeded, n := train.Build(raw)
	return seeded, n, nil
}

// ExpandTargets is spec.md §6's expand_targets: a pure utility expanding a
// sparse inclusive/exclusive region-area map into the full map over every
// subset, independent of any shape's gradient (it seeds every given value
// with a zero-length gradient, since target expansion has no trainable
// parameters of its own — MakeModel/MakeStep re-expand against the real
// gradient size once shapes are known).
func ExpandTargets(given map[string]float64) (*targets.Targets, error) {
	m := make(targets.Map, len(given))
	for k, v := range given {
		m[k] = dual.Const(v, 0)
	}
	return targets.New(m)
}

// expandTargetsFor expands given against n trainable parameters, the
// gradient size MakeModel/MakeStep actually need so that every region's
// area carries a gradient against the scene's trainable coordinates.
func expandTargetsFor(given map[string]float64, n int) (*targets.Targets, error) {
	m := make(targets.Map, len(given))
	for k, v := range given {
		m[k] = dual.Const(v, n)
	}
	return targets.New(m)
}

// MakeModel is spec.md §6's make_model: validates inputs, expands targets,
// and runs Scene analysis for step 0.
func MakeModel(specs []InputSpec, targetsIn map[string]float64) (*train.Model, error) {
	shapes, n, err := BuildShapes(specs)
	if err != nil {
		return nil, err
	}
	tg, err := expandTargetsFor(targetsIn, n)
	if err != nil {
		return nil, err
	}
	return train.NewModel(shapes, tg)
}

// MakeStep is spec.md §6's make_step: a single Scene analysis with error,
// without wrapping it in a Model.
func MakeStep(specs []InputSpec, targetsIn map[string]float64) (*train.Step, error) {
	shapes, n, err := BuildShapes(specs)
	if err != nil {
		return nil, err
	}
	tg, err := expandTargetsFor(targetsIn, n)
	if err != nil {
		return nil, err
	}
	return train.NewStep(shapes, tg)
}

// Step is spec.md §6's step(step, rate) -> Step: one vanilla gradient-descent
// update.
func Step(s *train.Step, rate float64) (*train.Step, error) {
	return s.Next(rate)
}

// Train is spec.md §6's train(model, rate, max_steps) -> Model: the full
// loop using error-scaled vanilla gradient descent.
func Train(m *train.Model, rate float64, maxSteps int) error {
	return m.Train(rate, maxSteps)
}

// TrainAdam is spec.md §6's train_adam(model, rate, max_steps) -> Model.
func TrainAdam(m *train.Model, rate float64, maxSteps int) error {
	return m.TrainAdam(rate, maxSteps)
}

// TrainRobust is spec.md §6's train_robust(model, max_steps) -> Model.
func TrainRobust(m *train.Model, maxSteps int) error {
	return m.TrainRobust(maxSteps)
}

// IsConverged is spec.md §6's is_converged(step, threshold) -> bool.
func IsConverged(s *train.Step, threshold float64) bool {
	return s.Error.V < threshold
}

// CheckPolygonValidity is spec.md §6's check_polygon_validity(step) ->
// [string]: a human-readable issue per self-intersecting or degenerate
// polygon in the step's shapes.
func CheckPolygonValidity(s *train.Step) []string {
	var issues []string
	for i, sh := range s.Shapes {
		poly, ok := sh.(shape.Polygon)
		if !ok {
			continue
		}
		if poly.IsSelfIntersecting() {
			issues = append(issues, fmt.Sprintf("shape %d: polygon self-intersects", i))
		}
		if p := poly.RegularityPenalty(); p.V > 1.0 {
			issues = append(issues, fmt.Sprintf("shape %d: irregular polygon (penalty %.3f)", i, p.V))
		}
	}
	return issues
}

// TieredIsKeyframe is spec.md §6's tiered_is_keyframe(config, index) -> bool.
func TieredIsKeyframe(cfg trace.Config, index int) bool { return cfg.IsKeyframe(index) }

// TieredNearestKeyframe is spec.md §6's
// tiered_nearest_keyframe(config, index) -> index.
func TieredNearestKeyframe(cfg trace.Config, index int) int { return cfg.NearestKeyframe(index) }

// TieredSeek is spec.md §6's
// tiered_seek(keyframe, keyframe_index, target_index, rate) -> Step:
// deterministic replay of vanilla gradient descent from an already-known
// keyframe forward to a target step index, without needing a trace.Store.
func TieredSeek(keyframeShapes []shape.Shape, keyframeIndex, targetIndex int, tg *targets.Targets, rate float64) (*train.Step, error) {
	if targetIndex < keyframeIndex {
		return nil, fmt.Errorf("engine: target step %d precedes keyframe %d", targetIndex, keyframeIndex)
	}
	cur, err := train.NewStep(keyframeShapes, tg)
	if err != nil {
		return nil, fmt.Errorf("engine: rebuilding keyframe %d: %w", keyframeIndex, err)
	}
	for i := keyframeIndex; i < targetIndex; i++ {
		cur, err = cur.Next(rate)
		if err != nil {
			return nil, fmt.Errorf("engine: replaying step %d toward %d: %w", i+1, targetIndex, err)
		}
	}
	return cur, nil
}
