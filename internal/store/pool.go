// Package store is the Postgres-backed persistence layer for accounts and
// training runs, following the teacher's internal/db + internal/project
// query-wrapper pattern (a Queries struct over a pool, typed params,
// pgx.ErrNoRows translated to package sentinel errors) even though this
// module hand-writes its queries rather than generating them with sqlc.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool opens a connection pool against dsn and verifies it with a ping,
// mirroring the teacher's internal/db.NewPool.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}
