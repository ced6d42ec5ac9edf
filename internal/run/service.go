// Package run is the HTTP-facing service for training runs: it wraps
// internal/engine's make_model/make_step/train* operations and
// internal/store's Postgres persistence behind the same
// Queries-struct-plus-method-set shape as the teacher's internal/project,
// adding the one thing a document-editing project never needed — an
// in-memory map of live internal/collab.RunState, since a run's Model keeps
// training in a background goroutine after creation instead of sitting
// idle until the next edit arrives.
package run

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/runsascoded/shapes/internal/collab"
	"github.com/runsascoded/shapes/internal/engine"
	"github.com/runsascoded/shapes/internal/ids"
	"github.com/runsascoded/shapes/internal/session"
	"github.com/runsascoded/shapes/internal/shape"
	"github.com/runsascoded/shapes/internal/store"
	"github.com/runsascoded/shapes/internal/targets"
	"github.com/runsascoded/shapes/internal/trace"
	"github.com/runsascoded/shapes/internal/wire"
)

var (
	ErrNotFound = errors.New("run: not found")
	ErrRunning  = errors.New("run: training already in progress")
)

// Optimizer selects which training loop Train drives, mirroring
// internal/session.Optimizer.
type Optimizer string

const (
	OptimizerVanilla Optimizer = "vanilla"
	OptimizerAdam    Optimizer = "adam"
	OptimizerRobust  Optimizer = "robust"
)

// DefaultStepErrorRatio is the error-scaled step size Advance and Train use
// for the vanilla optimizer, and the replay rate tiered reconstruction uses.
const DefaultStepErrorRatio = 0.5

// liveRun is the in-memory state of one run beyond what's persisted: its
// RunState (Model + trace.Store, shared with the collab hub) and whether a
// training goroutine currently owns it.
type liveRun struct {
	mu      sync.Mutex
	state   *collab.RunState
	targets *targets.Targets
	running bool
}

// Service is the run-management API cmd/server's handlers call into.
type Service struct {
	queries *store.Queries
	hub     *collab.Hub

	mu   sync.RWMutex
	live map[string]*liveRun
}

func NewService(queries *store.Queries, hub *collab.Hub) *Service {
	return &Service{queries: queries, hub: hub, live: make(map[string]*liveRun)}
}

// CreateParams is make_model's input, plus the bookkeeping (owner, name,
// optimizer choice) a persisted run row needs.
type CreateParams struct {
	OwnerID   string
	Name      string
	Specs     []engine.InputSpec
	Targets   map[string]float64
	Optimizer Optimizer
	MaxSteps  int
}

// Create runs make_model (spec.md §6 op 1) and persists the resulting
// step-0 Model as a new run row, registering it with the collab hub so
// viewers can join before training starts.
func (s *Service) Create(ctx context.Context, p CreateParams) (store.Run, error) {
	model, err := engine.MakeModel(p.Specs, p.Targets)
	if err != nil {
		return store.Run{}, fmt.Errorf("run: make_model: %w", err)
	}

	cur := model.Current()
	shapesJSON, err := marshalShapes(cur.Shapes)
	if err != nil {
		return store.Run{}, err
	}
	targetsJSON, err := json.Marshal(wire.TargetsMap(cur.Targets))
	if err != nil {
		return store.Run{}, fmt.Errorf("run: marshal targets: %w", err)
	}

	maxSteps := p.MaxSteps
	if maxSteps <= 0 {
		maxSteps = 10000
	}

	row, err := s.queries.CreateRun(ctx, store.CreateRunParams{
		ID:        ids.NewRunID(),
		OwnerID:   p.OwnerID,
		Name:      p.Name,
		Shapes:    shapesJSON,
		Targets:   targetsJSON,
		Optimizer: string(p.Optimizer),
		MaxSteps:  maxSteps,
	})
	if err != nil {
		return store.Run{}, fmt.Errorf("run: create: %w", err)
	}

	rs := collab.NewRunState(row.ID, model, trace.DefaultConfig(), DefaultStepErrorRatio)
	s.hub.RegisterRun(row.ID, rs)

	s.mu.Lock()
	s.live[row.ID] = &liveRun{state: rs, targets: cur.Targets}
	s.mu.Unlock()

	return row, nil
}

func marshalShapes(shapes []shape.Shape) ([]byte, error) {
	out := make([]wire.Shape, len(shapes))
	for i, sh := range shapes {
		out[i] = wire.FromShape(sh)
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("run: marshal shapes: %w", err)
	}
	return data, nil
}

func (s *Service) lookup(runID string) (*liveRun, error) {
	s.mu.RLock()
	lr, ok := s.live[runID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return lr, nil
}

// Train kicks off (or continues) training in a background goroutine, per
// spec.md §6 ops 4/5 (train/train_adam/train_robust). For the vanilla
// optimizer, each accepted step is broadcast individually via the collab
// hub (internal/collab.RunState.Advance's one-step-at-a-time contract);
// Adam and the robust optimizer run a full internal/session.Run batch, since
// both carry momentum state across steps that a call-once-per-tick API
// would tear down every call, then broadcast the whole resulting step
// sequence once training finishes.
func (s *Service) Train(ctx context.Context, runID string, optimizer Optimizer, maxSteps int) error {
	lr, err := s.lookup(runID)
	if err != nil {
		return err
	}

	lr.mu.Lock()
	if lr.running {
		lr.mu.Unlock()
		return ErrRunning
	}
	lr.running = true
	lr.mu.Unlock()

	go func() {
		defer func() {
			lr.mu.Lock()
			lr.running = false
			lr.mu.Unlock()
		}()

		switch optimizer {
		case OptimizerAdam, OptimizerRobust:
			s.trainBatch(runID, lr, optimizer, maxSteps)
		default:
			s.trainVanilla(ctx, runID, lr, maxSteps)
		}

		s.persistProgress(context.Background(), runID, lr)
	}()

	return nil
}

func (s *Service) trainVanilla(ctx context.Context, runID string, lr *liveRun, maxSteps int) {
	for i := 0; i < maxSteps; i++ {
		if ctx.Err() != nil {
			return
		}
		payload, ok, err := lr.state.Advance()
		if err != nil {
			slog.Error("train step", "run", runID, "error", err)
			return
		}
		if !ok {
			return
		}
		s.hub.BroadcastStep(runID, payload)
	}
}

// trainBatch drives the momentum-carrying optimizers (Adam, robust) through
// internal/session.Run rather than one call per tick: both accumulate
// optimizer state across steps that a call-once-per-tick API would tear
// down and rebuild every call. session.Run always starts a fresh Model
// from its Spec's initial shapes, so trainBatch seeds it from the run's
// current step and hands the resulting steps to RunState.ApplyBatch, which
// splices them onto the live Model under its own lock, preserving the Model
// identity internal/collab.RunState and the hub's broadcasts already hold a
// pointer to.
func (s *Service) trainBatch(runID string, lr *liveRun, optimizer Optimizer, maxSteps int) {
	cur := lr.state.Model().Current()

	cfg := session.DefaultConfig()
	cfg.MaxSteps = maxSteps
	if optimizer == OptimizerAdam {
		cfg.Optimizer = session.OptimizerAdam
	} else {
		cfg.Optimizer = session.OptimizerRobust
	}

	result, err := session.Run(context.Background(), session.Spec{
		ID: runID, Shapes: cur.Shapes, Targets: cur.Targets, Config: cfg,
	})
	if err != nil {
		slog.Error("train batch", "run", runID, "error", err)
		return
	}

	payloads, err := lr.state.ApplyBatch(result.Model.Steps[1:])
	if err != nil {
		slog.Error("apply batch", "run", runID, "error", err)
	}
	for _, payload := range payloads {
		s.hub.BroadcastStep(runID, payload)
	}
}

func (s *Service) persistProgress(ctx context.Context, runID string, lr *liveRun) {
	model := lr.state.Model()
	status := store.RunStatusRunning
	if model.Current().Converged {
		status = store.RunStatusComplete
	}
	if err := s.queries.UpdateRunProgress(ctx, store.UpdateRunProgressParams{
		ID: runID, Status: status, MinIndex: model.MinIdx, MinError: model.MinError,
	}); err != nil {
		slog.Error("persist run progress", "run", runID, "error", err)
	}

	for _, idx := range lr.state.Trace().KeyframeIndices() {
		shapes, errVal, ok := lr.state.Trace().KeyframeAt(idx)
		if !ok {
			continue
		}
		shapesJSON, err := marshalShapes(shapes)
		if err != nil {
			slog.Error("marshal keyframe", "run", runID, "step", idx, "error", err)
			continue
		}
		if err := s.queries.CreateKeyframe(ctx, store.CreateKeyframeParams{
			RunID: runID, StepIndex: idx, Shapes: shapesJSON, Error: errVal,
		}); err != nil {
			slog.Error("persist keyframe", "run", runID, "step", idx, "error", err)
		}
	}
}

// Seek is spec.md §6's tiered_seek, via the live run's trace.Store: it
// reconstructs the Step at target by replaying from the nearest preceding
// keyframe and projects it to wire form.
func (s *Service) Seek(runID string, target int) (wire.Step, error) {
	lr, err := s.lookup(runID)
	if err != nil {
		return wire.Step{}, err
	}
	lr.mu.Lock()
	tg := lr.targets
	lr.mu.Unlock()

	step, err := lr.state.Trace().Reconstruct(target, tg, DefaultStepErrorRatio)
	if err != nil {
		return wire.Step{}, err
	}
	return wire.FromStep(step), nil
}

// Get returns the persisted row for a run.
func (s *Service) Get(ctx context.Context, runID string) (store.Run, error) {
	row, err := s.queries.GetRun(ctx, runID)
	if err != nil {
		if errors.Is(err, store.ErrRunNotFound) {
			return store.Run{}, ErrNotFound
		}
		return store.Run{}, err
	}
	return row, nil
}

// List returns every run owned by ownerID.
func (s *Service) List(ctx context.Context, ownerID string) ([]store.Run, error) {
	return s.queries.ListRunsForOwner(ctx, ownerID)
}
