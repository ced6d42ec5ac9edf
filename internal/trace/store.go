package trace

import (
	"fmt"
	"math"

	"github.com/runsascoded/shapes/internal/shape"
	"github.com/runsascoded/shapes/internal/targets"
	"github.com/runsascoded/shapes/internal/train"
)

type keyframe struct {
	shapes []shape.Shape
	error  float64
}

// Store is a tiered keyframe store plus a best-to-date index for one
// training run's history. The zero value is not usable; construct with
// New or NewWithConfig.
type Store struct {
	config     Config
	keyframes  map[int]keyframe
	totalSteps int
	minError   float64
	minIndex   int
	btdIndices []int
}

// New returns an empty Store using the default tiered schedule.
func New() *Store { return NewWithConfig(DefaultConfig()) }

// NewWithConfig returns an empty Store using a custom tiered schedule.
func NewWithConfig(cfg Config) *Store {
	return &Store{
		config:    cfg,
		keyframes: make(map[int]keyframe),
		minError:  math.Inf(1),
	}
}

// Put records step index's shapes and error. The step is retained in full
// only if the tiered schedule marks it a keyframe; it is always considered
// for the best-to-date index. The caller must call Put once per step index
// in increasing order.
func (s *Store) Put(index int, shapes []shape.Shape, errVal float64) {
	if index+1 > s.totalSteps {
		s.totalSteps = index + 1
	}
	if errVal < s.minError {
		s.minError = errVal
		s.minIndex = index
		s.btdIndices = append(s.btdIndices, index)
	}
	if s.config.IsKeyframe(index) {
		s.keyframes[index] = keyframe{shapes: shapes, error: errVal}
	}
}

// IsStored reports whether index is retained as a keyframe.
func (s *Store) IsStored(index int) bool {
	_, ok := s.keyframes[index]
	return ok
}

// KeyframeIndices returns every stored keyframe's step index, in no
// particular order. Intended for persisting a Store's full contents (see
// internal/store), not for reconstruction, which should go through
// NearestKeyframe.
func (s *Store) KeyframeIndices() []int {
	out := make([]int, 0, len(s.keyframes))
	for idx := range s.keyframes {
		out = append(out, idx)
	}
	return out
}

// KeyframeAt returns the shapes and error recorded at index, if it was kept
// as a keyframe.
func (s *Store) KeyframeAt(index int) ([]shape.Shape, float64, bool) {
	kf, ok := s.keyframes[index]
	if !ok {
		return nil, 0, false
	}
	return kf.shapes, kf.error, true
}

// Len returns the total number of steps recorded via Put, not the number
// actually stored.
func (s *Store) Len() int { return s.totalSteps }

// StoredCount returns the number of steps actually retained as keyframes.
func (s *Store) StoredCount() int { return len(s.keyframes) }

// MinError returns the lowest error recorded so far.
func (s *Store) MinError() float64 { return s.minError }

// MinIndex returns the step index that achieved MinError.
func (s *Store) MinIndex() int { return s.minIndex }

// BTDIndices returns the best-to-date step indices, strictly increasing in
// step and strictly decreasing in error.
func (s *Store) BTDIndices() []int {
	out := make([]int, len(s.btdIndices))
	copy(out, s.btdIndices)
	return out
}

// NearestKeyframe returns the largest stored keyframe index at or before
// target, and its shapes.
func (s *Store) NearestKeyframe(target int) (int, []shape.Shape, bool) {
	idx := s.config.NearestKeyframe(target)
	for idx >= 0 {
		if kf, ok := s.keyframes[idx]; ok {
			return idx, kf.shapes, true
		}
		idx--
	}
	return 0, nil, false
}

// Reconstruct rebuilds the Step at target by replaying vanilla gradient
// descent (at maxStepErrorRatio) forward from the nearest preceding
// keyframe. Deterministic: replaying from the same keyframe with the same
// ratio always reaches the same step.
func (s *Store) Reconstruct(target int, tg *targets.Targets, maxStepErrorRatio float64) (*train.Step, error) {
	if target >= s.totalSteps {
		return nil, fmt.Errorf("trace: step %d not yet recorded (total %d)", target, s.totalSteps)
	}
	kfIdx, kfShapes, ok := s.NearestKeyframe(target)
	if !ok {
		return nil, fmt.Errorf("trace: no keyframe found for step %d", target)
	}

	current, err := train.NewStep(kfShapes, tg)
	if err != nil {
		return nil, fmt.Errorf("trace: rebuilding keyframe %d: %w", kfIdx, err)
	}

	for i := kfIdx; i < target; i++ {
		current, err = current.Next(maxStepErrorRatio)
		if err != nil {
			return nil, fmt.Errorf("trace: replaying step %d toward %d: %w", i+1, target, err)
		}
	}
	return current, nil
}

// Metadata summarizes this Store's current state.
type Metadata struct {
	TotalSteps  int
	StoredSteps int
	MinIndex    int
	MinError    float64
	BTDIndices  []int
}

func (s *Store) Metadata() Metadata {
	return Metadata{
		TotalSteps:  s.totalSteps,
		StoredSteps: len(s.keyframes),
		MinIndex:    s.minIndex,
		MinError:    s.minError,
		BTDIndices:  s.BTDIndices(),
	}
}
