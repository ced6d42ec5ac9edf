package train

import "math"

// OptimConfig configures the "robust" optimizer: Adam plus gradient
// clipping, learning-rate warmup, and step rejection.
type OptimConfig struct {
	LearningRate    float64 // base Adam learning rate, default 0.05
	MaxGradNorm     float64 // L2-norm gradient clip, default 1.0
	MaxGradValue    float64 // per-component gradient clip, default 0.5
	Beta1           float64 // default 0.9
	Beta2           float64 // default 0.999
	Epsilon         float64 // default 1e-8
	WarmupSteps     int     // linear LR warmup length, default 10
	MaxErrorIncrease float64 // reject a step if error grows by more than this factor, default 1.5
	MaxRejections   int     // give up after this many consecutive rejections, default 5
}

// DefaultOptimConfig returns the recommended robust-optimizer configuration.
func DefaultOptimConfig() OptimConfig {
	return OptimConfig{
		LearningRate:     0.05,
		MaxGradNorm:      1.0,
		MaxGradValue:     0.5,
		Beta1:            0.9,
		Beta2:            0.999,
		Epsilon:          1e-8,
		WarmupSteps:      10,
		MaxErrorIncrease: 1.5,
		MaxRejections:    5,
	}
}

// optimizer is the robust trainer's running state: Adam moments plus a
// rejection counter used to back off and eventually give up when a run of
// steps keeps making the error worse.
type optimizer struct {
	config     OptimConfig
	m, v       []float64
	t          int
	rejections int
}

func newOptimizer(numParams int, config OptimConfig) *optimizer {
	return &optimizer{config: config, m: make([]float64, numParams), v: make([]float64, numParams)}
}

func (o *optimizer) effectiveLR() float64 {
	if o.t < o.config.WarmupSteps {
		return o.config.LearningRate * float64(o.t+1) / float64(o.config.WarmupSteps)
	}
	return o.config.LearningRate
}

func (o *optimizer) clipGradients(grads []float64) []float64 {
	clipped := clipByValue(grads, o.config.MaxGradValue)
	return clipByNorm(clipped, o.config.MaxGradNorm)
}

// computeUpdate returns the parameter update for raw (unclipped) gradients.
func (o *optimizer) computeUpdate(rawGrads []float64) []float64 {
	o.t++
	grads := o.clipGradients(rawGrads)

	lr := o.effectiveLR()
	beta1Correction := 1 - math.Pow(o.config.Beta1, float64(o.t))
	beta2Correction := 1 - math.Pow(o.config.Beta2, float64(o.t))

	updates := make([]float64, len(grads))
	for i, g := range grads {
		o.m[i] = o.config.Beta1*o.m[i] + (1-o.config.Beta1)*g
		o.v[i] = o.config.Beta2*o.v[i] + (1-o.config.Beta2)*g*g

		mHat := o.m[i] / beta1Correction
		vHat := o.v[i] / beta2Correction

		updates[i] = lr * mHat / (math.Sqrt(vHat) + o.config.Epsilon)
	}
	return updates
}

func (o *optimizer) shouldReject(oldError, newError float64) bool {
	if newError > oldError*o.config.MaxErrorIncrease {
		o.rejections++
		return true
	}
	o.rejections = 0
	return false
}

func (o *optimizer) shouldStop() bool { return o.rejections >= o.config.MaxRejections }

func (o *optimizer) acceptStep() { o.rejections = 0 }

// TrainRobust runs robust optimization from initial for up to maxSteps
// steps, rejecting (and retrying, without advancing) any step whose error
// grows too much, and stopping early on convergence, a NaN error, or too
// many consecutive rejections.
func TrainRobust(initial *Step, config OptimConfig, maxSteps int) ([]*Step, error) {
	o := newOptimizer(initial.GradSize(), config)
	steps := []*Step{initial}
	current := initial

	for stepIdx := 0; stepIdx < maxSteps; stepIdx++ {
		currentError := current.Error.V
		gradVec := negGradient(current.Error)

		magnitude := norm(gradVec)
		if magnitude == 0 || math.IsNaN(magnitude) {
			break
		}

		updates := o.computeUpdate(gradVec)
		next, err := NewStep(stepShapes(current.Shapes, updates), current.Targets)
		if err != nil {
			return nil, err
		}
		newError := next.Error.V

		if math.IsNaN(newError) {
			break
		}

		if o.shouldReject(currentError, newError) {
			if o.shouldStop() {
				break
			}
			continue
		}
		o.acceptStep()

		steps = append(steps, next)
		current = next

		if newError < ConvergenceThreshold {
			break
		}
	}

	return steps, nil
}

// GradSize reports the dimension of Error's gradient, i.e. the number of
// trainable parameters across every shape in the Step.
func (s *Step) GradSize() int { return s.Error.Len() }
