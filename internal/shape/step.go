package shape

import "github.com/runsascoded/shapes/internal/dual"

// Step returns a copy of s with every trainable parameter moved by its
// share of stepVec. Each parameter's existing gradient vector already acts
// as a one-hot (or all-zero, if untrainable) selector into stepVec — seeded
// once by a Scene's builder via dual.Var — so the update for that parameter
// is just the dot product of its own gradient with stepVec. The gradient
// vector itself is left untouched: only the value moves.
func Step(s Shape, stepVec []float64) Shape {
	params := s.Params()
	next := make([]dual.Dual, len(params))
	for i, p := range params {
		next[i] = dual.AddF(p, project(p, stepVec))
	}
	return s.WithParams(next)
}

func project(p dual.Dual, stepVec []float64) float64 {
	var sum float64
	for i, d := range p.D {
		sum += d * stepVec[i]
	}
	return sum
}
