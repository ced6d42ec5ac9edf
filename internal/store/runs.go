package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

var ErrRunNotFound = errors.New("store: run not found")

type CreateRunParams struct {
	ID        string
	OwnerID   string
	Name      string
	Shapes    []byte
	Targets   []byte
	Optimizer string
	MaxSteps  int
}

func (q *Queries) CreateRun(ctx context.Context, p CreateRunParams) (Run, error) {
	var r Run
	err := q.pool.QueryRow(ctx, `
		INSERT INTO runs (id, owner_id, name, shapes, targets, optimizer, max_steps, status, min_index, min_error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, 0)
		RETURNING id, owner_id, name, shapes, targets, optimizer, max_steps, status, min_index, min_error, created_at, updated_at
	`, p.ID, p.OwnerID, p.Name, p.Shapes, p.Targets, p.Optimizer, p.MaxSteps, RunStatusPending).Scan(
		&r.ID, &r.OwnerID, &r.Name, &r.Shapes, &r.Targets, &r.Optimizer, &r.MaxSteps, &r.Status,
		&r.MinIndex, &r.MinError, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return Run{}, fmt.Errorf("create run: %w", err)
	}
	return r, nil
}

func (q *Queries) GetRun(ctx context.Context, id string) (Run, error) {
	var r Run
	err := q.pool.QueryRow(ctx, `
		SELECT id, owner_id, name, shapes, targets, optimizer, max_steps, status, min_index, min_error, created_at, updated_at
		FROM runs WHERE id = $1
	`, id).Scan(&r.ID, &r.OwnerID, &r.Name, &r.Shapes, &r.Targets, &r.Optimizer, &r.MaxSteps, &r.Status,
		&r.MinIndex, &r.MinError, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Run{}, ErrRunNotFound
		}
		return Run{}, fmt.Errorf("get run: %w", err)
	}
	return r, nil
}

func (q *Queries) ListRunsForOwner(ctx context.Context, ownerID string) ([]Run, error) {
	rows, err := q.pool.Query(ctx, `
		SELECT id, owner_id, name, shapes, targets, optimizer, max_steps, status, min_index, min_error, created_at, updated_at
		FROM runs WHERE owner_id = $1 ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.OwnerID, &r.Name, &r.Shapes, &r.Targets, &r.Optimizer, &r.MaxSteps, &r.Status,
			&r.MinIndex, &r.MinError, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

type UpdateRunProgressParams struct {
	ID       string
	Status   RunStatus
	MinIndex int
	MinError float64
}

func (q *Queries) UpdateRunProgress(ctx context.Context, p UpdateRunProgressParams) error {
	tag, err := q.pool.Exec(ctx, `
		UPDATE runs SET status = $2, min_index = $3, min_error = $4, updated_at = now()
		WHERE id = $1
	`, p.ID, p.Status, p.MinIndex, p.MinError)
	if err != nil {
		return fmt.Errorf("update run progress: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRunNotFound
	}
	return nil
}

func (q *Queries) DeleteRun(ctx context.Context, id string) error {
	tag, err := q.pool.Exec(ctx, `DELETE FROM runs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRunNotFound
	}
	return nil
}
