// Package session runs independent training sessions concurrently via
// golang.org/x/sync/errgroup, each owning its own train.Model and
// trace.Store with no state shared between sessions.
package session

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/runsascoded/shapes/internal/shape"
	"github.com/runsascoded/shapes/internal/targets"
	"github.com/runsascoded/shapes/internal/trace"
	"github.com/runsascoded/shapes/internal/train"
)

// Optimizer selects which of train.Model's training-loop drivers a Run uses.
type Optimizer string

const (
	OptimizerVanilla Optimizer = "vanilla"
	OptimizerAdam    Optimizer = "adam"
	OptimizerRobust  Optimizer = "robust"
)

// Config configures one session's run.
type Config struct {
	Optimizer Optimizer
	MaxSteps  int

	MaxStepErrorRatio float64 // vanilla only

	LearningRate float64          // adam only
	AdamConfig   train.AdamConfig // adam only

	RobustConfig train.OptimConfig // robust only

	TraceConfig trace.Config
}

// DefaultConfig returns a vanilla run with the package's recommended
// defaults.
func DefaultConfig() Config {
	return Config{
		Optimizer:         OptimizerVanilla,
		MaxSteps:          1000,
		MaxStepErrorRatio: 0.1,
		LearningRate:      0.1,
		AdamConfig:        train.DefaultAdamConfig(),
		RobustConfig:      train.DefaultOptimConfig(),
		TraceConfig:       trace.DefaultConfig(),
	}
}

// Spec is one session's input: an initial shape configuration, its target
// area distribution, and the config to train it with.
type Spec struct {
	ID      string
	Shapes  []shape.Shape
	Targets *targets.Targets
	Config  Config
}

// Result is one session's completed run.
type Result struct {
	ID    string
	Model *train.Model
	Trace *trace.Store
}

// Run executes a single session to completion, or returns early if ctx is
// cancelled before the model finishes building.
func Run(ctx context.Context, spec Spec) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := spec.Config
	model, err := train.NewModel(spec.Shapes, spec.Targets)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", spec.ID, err)
	}

	switch cfg.Optimizer {
	case OptimizerAdam:
		err = model.TrainAdamWithConfig(cfg.LearningRate, cfg.AdamConfig, cfg.MaxSteps)
	case OptimizerRobust:
		err = model.TrainRobustWithConfig(cfg.RobustConfig, cfg.MaxSteps)
	default:
		err = model.Train(cfg.MaxStepErrorRatio, cfg.MaxSteps)
	}
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", spec.ID, err)
	}

	store := trace.NewWithConfig(cfg.TraceConfig)
	for i, step := range model.Steps {
		store.Put(i, step.Shapes, step.Error.V)
	}

	slog.Info("session finished", "id", spec.ID, "steps", len(model.Steps), "minError", model.MinError)

	return &Result{ID: spec.ID, Model: model, Trace: store}, nil
}

// RunMany runs every spec concurrently, each on its own goroutine, and
// returns one Result per spec in the same order as specs. If any session
// errors, RunMany cancels the rest via the shared errgroup context and
// returns that first error.
func RunMany(ctx context.Context, specs []Spec) ([]*Result, error) {
	results := make([]*Result, len(specs))
	g, gctx := errgroup.WithContext(ctx)
	for i, spec := range specs {
		i, spec := i, spec
		g.Go(func() error {
			result, err := Run(gctx, spec)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
