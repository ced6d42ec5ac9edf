package train

import "math"

// AdamConfig holds Adam's hyperparameters.
type AdamConfig struct {
	Beta1   float64 // first-moment decay, default 0.9
	Beta2   float64 // second-moment decay, default 0.999
	Epsilon float64 // numerical-stability floor, default 1e-8
}

// DefaultAdamConfig returns the standard Adam hyperparameters.
func DefaultAdamConfig() AdamConfig {
	return AdamConfig{Beta1: 0.9, Beta2: 0.999, Epsilon: 1e-8}
}

// AdamState is per-parameter first- and second-moment momentum for Adam
// (Adaptive Moment Estimation), which smooths oscillation and gives every
// parameter its own effective learning rate — useful once a scene mixes
// shape kinds whose parameters sit at very different scales.
type AdamState struct {
	M, V    []float64
	T       int
	Beta1   float64
	Beta2   float64
	Epsilon float64
}

// NewAdamState returns Adam state for n parameters with default hyperparameters.
func NewAdamState(n int) *AdamState {
	return NewAdamStateWithConfig(n, DefaultAdamConfig())
}

// NewAdamStateWithConfig returns Adam state for n parameters with custom hyperparameters.
func NewAdamStateWithConfig(n int, cfg AdamConfig) *AdamState {
	return &AdamState{
		M: make([]float64, n), V: make([]float64, n),
		Beta1: cfg.Beta1, Beta2: cfg.Beta2, Epsilon: cfg.Epsilon,
	}
}

// Step computes the Adam update vector for gradients, scaled by alpha.
func (a *AdamState) Step(gradients []float64, alpha float64) []float64 {
	a.T++
	beta1Correction := 1 - math.Pow(a.Beta1, float64(a.T))
	beta2Correction := 1 - math.Pow(a.Beta2, float64(a.T))

	updates := make([]float64, len(gradients))
	for i, g := range gradients {
		a.M[i] = a.Beta1*a.M[i] + (1-a.Beta1)*g
		a.V[i] = a.Beta2*a.V[i] + (1-a.Beta2)*g*g

		mHat := a.M[i] / beta1Correction
		vHat := a.V[i] / beta2Correction

		updates[i] = alpha * mHat / (math.Sqrt(vHat) + a.Epsilon)
	}
	return updates
}

// Reset clears Adam's moment estimates, for restarting a training run.
func (a *AdamState) Reset() {
	for i := range a.M {
		a.M[i] = 0
	}
	for i := range a.V {
		a.V[i] = 0
	}
	a.T = 0
}
