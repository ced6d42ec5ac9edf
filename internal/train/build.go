// Package train implements the gradient-descent optimizer that moves a set
// of shapes' trainable parameters toward a target area distribution:
// vanilla fixed-ratio descent, Adam, and a "robust" Adam-plus-clipping-plus-
// backtracking variant, plus the Model that records every step taken.
package train

import (
	"github.com/runsascoded/shapes/internal/dual"
	"github.com/runsascoded/shapes/internal/shape"
)

// Build seeds every shape's trainable parameters with a one-hot gradient
// against a single global parameter vector shared by the whole scene, and
// every untrainable parameter with a zero gradient of the same length.
// Parameters are assigned columns in the order they appear across specs,
// skipping untrainable ones, mirroring the original's InitDuals pass over
// an input_specs vector. Each returned shape's Params() values carry only
// their initial float value; specs themselves may be given with any
// gradient length (it is discarded).
func Build(specs []shape.Shape) ([]shape.Shape, int) {
	n := 0
	for _, s := range specs {
		for _, trainable := range s.Mask() {
			if trainable {
				n++
			}
		}
	}

	seeded := make([]shape.Shape, len(specs))
	col := 0
	for i, s := range specs {
		params := s.Params()
		mask := s.Mask()
		next := make([]dual.Dual, len(params))
		for j, p := range params {
			if mask[j] {
				next[j] = dual.Var(p.V, col, n)
				col++
			} else {
				next[j] = dual.Const(p.V, n)
			}
		}
		seeded[i] = s.WithParams(next)
	}
	return seeded, n
}
