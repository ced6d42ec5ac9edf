package train

import (
	"fmt"
	"math"
	"strings"

	"github.com/runsascoded/shapes/internal/dual"
	"github.com/runsascoded/shapes/internal/scene"
	"github.com/runsascoded/shapes/internal/shape"
	"github.com/runsascoded/shapes/internal/targets"
)

// ConvergenceThreshold is the error magnitude below which a Step is
// considered converged; callers (e.g. a frontend driving Model.Train in a
// loop) should stop iterating once a Step reports Converged.
const ConvergenceThreshold = 1e-10

// RegionError is one target region's actual-vs-desired area fraction.
type RegionError struct {
	Key        string
	ActualArea float64
	ActualFrac float64
	TargetArea float64
	TargetFrac float64
	Error      dual.Dual
}

func (e RegionError) exists() bool { return e.ActualArea > 1e-12 || e.ActualArea < -1e-12 }

func (e RegionError) String() string {
	return fmt.Sprintf("%s: err %.3f, target %.3f (%.3f), actual %.3f -> %.3f",
		e.Key, e.Error.V, e.TargetArea, e.TargetFrac, e.ActualArea, e.ActualFrac)
}

// Step is one point in a training run: the current shapes, the Scene they
// decompose into, and the scalar loss (and its gradient against every
// trainable parameter) measuring how far the Scene's region areas are from
// Targets.
type Step struct {
	Shapes    []shape.Shape
	Scene     *scene.Scene
	Targets   *targets.Targets
	TotalArea dual.Dual
	Errors    map[string]RegionError
	Error     dual.Dual
	Converged bool
}

// NewStep builds a Scene from shapes, scores it against tg, and folds in
// the missing-region and polygon-regularization penalties.
func NewStep(shapes []shape.Shape, tg *targets.Targets) (*Step, error) {
	sc, err := scene.New(shapes)
	if err != nil {
		return nil, err
	}

	allKey := strings.Repeat("*", len(shapes))
	totalArea, err := sc.Area(allKey)
	if err != nil {
		return nil, err
	}

	errs, err := computeErrors(sc, tg, totalArea)
	if err != nil {
		return nil, err
	}

	disjoint := tg.Disjoints()
	n := gradSize(shapes)
	errSum := dual.Const(0, n)
	for key := range disjoint {
		e, ok := errs[key]
		if !ok {
			return nil, fmt.Errorf("train: no computed error for disjoint key %q", key)
		}
		errSum = dual.Add(errSum, dual.Mul(e.Error, e.Error))
	}

	errSum = addMissingRegionPenalty(errSum, shapes, errs, disjoint, tg.TotalArea.V)
	errSum = addPolygonPenalty(errSum, shapes)

	return &Step{
		Shapes:    shapes,
		Scene:     sc,
		Targets:   tg,
		TotalArea: totalArea,
		Errors:    errs,
		Error:     errSum,
		Converged: errSum.V < ConvergenceThreshold,
	}, nil
}

func computeErrors(sc *scene.Scene, tg *targets.Targets, totalArea dual.Dual) (map[string]RegionError, error) {
	noneKey := strings.Repeat("-", tg.N)
	out := make(map[string]RegionError, len(tg.All))
	for key, targetArea := range tg.All {
		if key == noneKey {
			continue
		}
		actualArea, err := sc.Area(key)
		if err != nil {
			return nil, err
		}
		targetFrac := targetArea.V / tg.TotalArea.V
		actualFrac := dual.Div(actualArea, totalArea)
		out[key] = RegionError{
			Key:        key,
			ActualArea: actualArea.V,
			ActualFrac: actualFrac.V,
			TargetArea: targetArea.V,
			TargetFrac: targetFrac,
			Error:      dual.SubF(actualFrac, targetFrac),
		}
	}
	return out, nil
}

func gradSize(shapes []shape.Shape) int {
	for _, s := range shapes {
		for _, p := range s.Params() {
			return p.Len()
		}
	}
	return 0
}

// Next takes a vanilla gradient-descent step: the step size is the current
// error's magnitude scaled by maxStepErrorRatio, applied along the
// negative-gradient direction.
func (s *Step) Next(maxStepErrorRatio float64) (*Step, error) {
	gradVec := negGradient(s.Error)
	magnitude := norm(gradVec)
	if magnitude == 0 || math.IsNaN(magnitude) {
		return NewStep(s.Shapes, s.Targets)
	}

	stepSize := s.Error.V * maxStepErrorRatio
	scale := stepSize / magnitude
	stepVec := scaled(gradVec, scale)
	return NewStep(stepShapes(s.Shapes, stepVec), s.Targets)
}

// NextAdam takes a step sized by adam's per-parameter momentum and variance
// estimates instead of a single fixed ratio.
func (s *Step) NextAdam(adam *AdamState, learningRate float64) (*Step, error) {
	gradVec := negGradient(s.Error)
	magnitude := norm(gradVec)
	if magnitude == 0 || math.IsNaN(magnitude) {
		return NewStep(s.Shapes, s.Targets)
	}
	stepVec := adam.Step(gradVec, learningRate)
	return NewStep(stepShapes(s.Shapes, stepVec), s.Targets)
}

// NextClipped takes a fixed-learning-rate step after clipping the gradient
// per-component to [-maxGradValue, maxGradValue] and then by L2 norm to
// maxGradNorm, a simpler alternative to Adam that carries no extra state.
func (s *Step) NextClipped(learningRate, maxGradValue, maxGradNorm float64) (*Step, error) {
	gradVec := negGradient(s.Error)
	magnitude := norm(gradVec)
	if magnitude == 0 || math.IsNaN(magnitude) {
		return NewStep(s.Shapes, s.Targets)
	}
	clipped := clipByValue(gradVec, maxGradValue)
	clipped = clipByNorm(clipped, maxGradNorm)
	stepVec := scaled(clipped, learningRate)
	return NewStep(stepShapes(s.Shapes, stepVec), s.Targets)
}

func negGradient(err dual.Dual) []float64 {
	out := make([]float64, len(err.D))
	for i, d := range err.D {
		out[i] = -d
	}
	return out
}

func norm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

func scaled(v []float64, scale float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x * scale
	}
	return out
}

func clipByValue(v []float64, max float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = clamp(x, -max, max)
	}
	return out
}

func clipByNorm(v []float64, maxNorm float64) []float64 {
	n := norm(v)
	if n <= maxNorm {
		return v
	}
	return scaled(v, maxNorm/n)
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func stepShapes(shapes []shape.Shape, stepVec []float64) []shape.Shape {
	out := make([]shape.Shape, len(shapes))
	for i, s := range shapes {
		out[i] = shape.Step(s, stepVec)
	}
	return out
}
