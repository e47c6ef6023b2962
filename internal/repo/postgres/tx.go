package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WithTx runs fn inside one transaction: commit on nil, rollback on error.
// The fn error comes back unwrapped so sentinel checks keep working across
// the boundary. A nil pool reads as the store being down, which the transport
// layer maps to a retryable 503.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(context.Context, pgx.Tx) error) error {
	if pool == nil {
		return ErrStoreUnavailable
	}

	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		return fn(ctx, tx)
	})
}
