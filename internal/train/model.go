package train

import (
	"math"

	"github.com/runsascoded/shapes/internal/shape"
	"github.com/runsascoded/shapes/internal/targets"
)

// Model is a training run: every Step taken so far, plus bookkeeping about
// where the best (lowest-error) step landed and where (if anywhere) the run
// broke out of its loop without converging.
type Model struct {
	Steps    []*Step
	MinIdx   int
	MinError float64
	// RepeatIdx is set to the index of the step that caused early
	// termination (a NaN error, or an exact repeat of an earlier step's
	// error and shape values), -1 if the run never broke out early.
	RepeatIdx int
}

// NewModel starts a run from an initial set of shapes and a target area
// distribution.
func NewModel(shapes []shape.Shape, tg *targets.Targets) (*Model, error) {
	first, err := NewStep(shapes, tg)
	if err != nil {
		return nil, err
	}
	return &Model{
		Steps:     []*Step{first},
		MinIdx:    0,
		MinError:  first.Error.V,
		RepeatIdx: -1,
	}, nil
}

// Current returns the most recently recorded Step.
func (m *Model) Current() *Step { return m.Steps[len(m.Steps)-1] }

// record appends next to the run, updating MinIdx/MinError, and returns
// false (stop iterating) if next signals non-convergence: a NaN error, or
// an exact repeat of a previous step (same error and shape parameter
// values), which means the optimizer has started cycling.
func (m *Model) record(next *Step) bool {
	if math.IsNaN(next.Error.V) {
		m.RepeatIdx = len(m.Steps)
		m.Steps = append(m.Steps, next)
		return false
	}
	for _, prev := range m.Steps {
		if prev.Error.V == next.Error.V && shapesEqual(prev.Shapes, next.Shapes) {
			m.RepeatIdx = len(m.Steps)
			m.Steps = append(m.Steps, next)
			return false
		}
	}

	m.Steps = append(m.Steps, next)
	idx := len(m.Steps) - 1
	if next.Error.V < m.MinError {
		m.MinError = next.Error.V
		m.MinIdx = idx
	}
	return true
}

func shapesEqual(a, b []shape.Shape) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		pa, pb := a[i].Params(), b[i].Params()
		if len(pa) != len(pb) {
			return false
		}
		for j := range pa {
			if pa[j].V != pb[j].V {
				return false
			}
		}
	}
	return true
}

// Train runs vanilla fixed-ratio gradient descent for up to maxSteps steps,
// stopping early on convergence or non-convergence.
func (m *Model) Train(maxStepErrorRatio float64, maxSteps int) error {
	for i := 0; i < maxSteps; i++ {
		cur := m.Current()
		if cur.Converged {
			return nil
		}
		next, err := cur.Next(maxStepErrorRatio)
		if err != nil {
			return err
		}
		if !m.record(next) {
			return nil
		}
	}
	return nil
}

// TrainAdam runs Adam-optimized gradient descent for up to maxSteps steps.
func (m *Model) TrainAdam(learningRate float64, maxSteps int) error {
	return m.TrainAdamWithConfig(learningRate, DefaultAdamConfig(), maxSteps)
}

// TrainAdamWithConfig is TrainAdam with custom Adam hyperparameters.
func (m *Model) TrainAdamWithConfig(learningRate float64, cfg AdamConfig, maxSteps int) error {
	adam := NewAdamStateWithConfig(m.Current().GradSize(), cfg)
	for i := 0; i < maxSteps; i++ {
		cur := m.Current()
		if cur.Converged {
			return nil
		}
		next, err := cur.NextAdam(adam, learningRate)
		if err != nil {
			return err
		}
		if !m.record(next) {
			return nil
		}
	}
	return nil
}

// TrainRobust runs the robust optimizer (Adam plus clipping, warmup, and
// step rejection) for up to maxSteps steps, using the default configuration.
func (m *Model) TrainRobust(maxSteps int) error {
	return m.TrainRobustWithConfig(DefaultOptimConfig(), maxSteps)
}

// TrainRobustWithConfig is TrainRobust with a custom OptimConfig. Rejected
// steps are retried (consuming a step of budget) but not recorded; only
// accepted steps and the final terminating step are appended to m.Steps.
func (m *Model) TrainRobustWithConfig(cfg OptimConfig, maxSteps int) error {
	o := newOptimizer(m.Current().GradSize(), cfg)
	for i := 0; i < maxSteps; i++ {
		cur := m.Current()
		if cur.Converged {
			return nil
		}

		gradVec := negGradient(cur.Error)
		magnitude := norm(gradVec)
		if magnitude == 0 || math.IsNaN(magnitude) {
			return nil
		}

		updates := o.computeUpdate(gradVec)
		next, err := NewStep(stepShapes(cur.Shapes, updates), cur.Targets)
		if err != nil {
			return err
		}

		if math.IsNaN(next.Error.V) {
			m.record(next)
			return nil
		}

		if o.shouldReject(cur.Error.V, next.Error.V) {
			if o.shouldStop() {
				return nil
			}
			continue
		}
		o.acceptStep()

		if !m.record(next) {
			return nil
		}
	}
	return nil
}

// GradSize reports the dimension of the current Step's gradient.
func (m *Model) GradSize() int { return m.Current().GradSize() }
