package store

import (
	"context"
	"fmt"
)

type CreateKeyframeParams struct {
	RunID     string
	StepIndex int
	Shapes    []byte
	Error     float64
}

// CreateKeyframe inserts one retained step of a run's tiered trace, upserting
// on (run_id, step_index) since a reconstructed run may re-derive and resave
// a keyframe it already persisted.
func (q *Queries) CreateKeyframe(ctx context.Context, p CreateKeyframeParams) error {
	_, err := q.pool.Exec(ctx, `
		INSERT INTO keyframes (run_id, step_index, shapes, error)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (run_id, step_index) DO UPDATE SET shapes = $3, error = $4
	`, p.RunID, p.StepIndex, p.Shapes, p.Error)
	if err != nil {
		return fmt.Errorf("create keyframe: %w", err)
	}
	return nil
}

// ListKeyframesForRun returns every persisted keyframe of a run, in
// ascending step order. No code in this module loads these rows back into
// a trace.Store.
func (q *Queries) ListKeyframesForRun(ctx context.Context, runID string) ([]Keyframe, error) {
	rows, err := q.pool.Query(ctx, `
		SELECT run_id, step_index, shapes, error FROM keyframes
		WHERE run_id = $1 ORDER BY step_index ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("list keyframes: %w", err)
	}
	defer rows.Close()

	var out []Keyframe
	for rows.Next() {
		var k Keyframe
		if err := rows.Scan(&k.RunID, &k.StepIndex, &k.Shapes, &k.Error); err != nil {
			return nil, fmt.Errorf("scan keyframe: %w", err)
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

// DeleteKeyframesForRun removes every persisted keyframe of a run, used when
// a run is deleted or restarted from scratch.
func (q *Queries) DeleteKeyframesForRun(ctx context.Context, runID string) error {
	_, err := q.pool.Exec(ctx, `DELETE FROM keyframes WHERE run_id = $1`, runID)
	if err != nil {
		return fmt.Errorf("delete keyframes: %w", err)
	}
	return nil
}
