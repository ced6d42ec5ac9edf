package collab

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/runsascoded/shapes/internal/trace"
	"github.com/runsascoded/shapes/internal/train"
	"github.com/runsascoded/shapes/internal/wire"
)

// RunState is the authoritative, server-side state of one training run: its
// current Model, the tiered trace store built alongside it, and a broadcast
// sequence counter. Unlike the teacher's document state, viewers never
// submit mutations directly — the server alone advances training and pushes
// the result; a viewer's only outbound message is its own playhead.
type RunState struct {
	mu        sync.RWMutex
	id        string
	model     *train.Model
	trace     *trace.Store
	ratio     float64
	serverSeq int64
}

// NewRunState wraps an already-built Model (e.g. from internal/session) as
// a live, streamable run: vanilla ratio-based gradient descent advances it
// one step at a time via Advance, and every step lands in traceCfg's tiered
// store as it's taken.
func NewRunState(id string, model *train.Model, traceCfg trace.Config, ratio float64) *RunState {
	store := trace.NewWithConfig(traceCfg)
	cur := model.Current()
	store.Put(len(model.Steps)-1, cur.Shapes, cur.Error.V)
	return &RunState{id: id, model: model, trace: store, ratio: ratio}
}

// Model returns the current Model. Callers must not mutate its Steps slice.
func (rs *RunState) Model() *train.Model {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.model
}

// Trace returns the run's trace store.
func (rs *RunState) Trace() *trace.Store {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.trace
}

// SyncMessage summarizes the run's current progress for a viewer joining
// mid-run. Returns nil (logging the failure) if the summary can't be
// marshaled, mirroring PlayheadManager.StateMessage's best-effort style.
func (rs *RunState) SyncMessage() *Message {
	rs.mu.RLock()
	cur := rs.model.Current()
	payload := RunSyncPayload{
		StepCount: len(rs.model.Steps),
		MinIdx:    rs.model.MinIdx,
		MinError:  rs.model.MinError,
		Converged: cur.Converged,
	}
	rs.mu.RUnlock()

	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal run sync", "error", err, "run", rs.id)
		return nil
	}
	return &Message{
		Type:    TypeRunSync,
		RunID:   rs.id,
		Payload: data,
	}
}

// Advance takes one more vanilla gradient-descent step, if the run hasn't
// already converged, records it into the trace store, and returns its
// broadcastable wire projection. ok is false if the run was already
// converged and nothing happened.
//
// Only the vanilla optimizer is driven this way: Adam and the robust
// optimizer both carry momentum state across steps that a call-once-per-
// tick API would have to tear down and rebuild every call, defeating the
// point. Those run to completion in one internal/session.Run call and
// arrive here as a single batch, not step by step.
func (rs *RunState) Advance() (*StepBroadcastPayload, bool, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.model.Current().Converged {
		return nil, false, nil
	}

	before := len(rs.model.Steps)
	if err := rs.model.Train(rs.ratio, 1); err != nil {
		return nil, false, fmt.Errorf("collab: advancing run %s: %w", rs.id, err)
	}
	if len(rs.model.Steps) == before {
		return nil, false, nil
	}

	idx := len(rs.model.Steps) - 1
	next := rs.model.Steps[idx]
	rs.trace.Put(idx, next.Shapes, next.Error.V)
	rs.serverSeq++

	stepJSON, err := wire.StepToJSON(wire.FromStep(next))
	if err != nil {
		return nil, false, fmt.Errorf("collab: projecting step %d of run %s: %w", idx, rs.id, err)
	}

	return &StepBroadcastPayload{
		StepIdx:   idx,
		ServerSeq: rs.serverSeq,
		Step:      json.RawMessage(stepJSON),
	}, true, nil
}

// ApplyBatch splices the steps a completed internal/session.Run produced
// (everything after its seed step, which duplicates the run's current step)
// onto the live Model in place, under the same lock Advance takes, so a
// batch-trained Adam/robust run and a concurrently-joining viewer's
// SyncMessage never observe Steps mid-append. Returns one broadcastable
// payload per spliced step, in order.
func (rs *RunState) ApplyBatch(newSteps []*train.Step) ([]*StepBroadcastPayload, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	before := len(rs.model.Steps)
	for _, next := range newSteps {
		rs.model.Steps = append(rs.model.Steps, next)
		if next.Error.V < rs.model.MinError {
			rs.model.MinError = next.Error.V
			rs.model.MinIdx = len(rs.model.Steps) - 1
		}
	}

	payloads := make([]*StepBroadcastPayload, 0, len(newSteps))
	for i := before; i < len(rs.model.Steps); i++ {
		step := rs.model.Steps[i]
		rs.trace.Put(i, step.Shapes, step.Error.V)
		rs.serverSeq++

		stepJSON, err := wire.StepToJSON(wire.FromStep(step))
		if err != nil {
			return payloads, fmt.Errorf("collab: projecting step %d of run %s: %w", i, rs.id, err)
		}
		payloads = append(payloads, &StepBroadcastPayload{
			StepIdx:   i,
			ServerSeq: rs.serverSeq,
			Step:      json.RawMessage(stepJSON),
		})
	}
	return payloads, nil
}
