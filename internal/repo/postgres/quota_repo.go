package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrQuotaExhausted = errors.New("quota exhausted for period")

type QuotaRepo struct {
	pool *pgxpool.Pool
}

func NewQuotaRepo(pool *pgxpool.Pool) *QuotaRepo {
	return &QuotaRepo{pool: pool}
}

// Consume atomically increments the counter for (user, kind, period) iff
// used < cap. The guarded upsert is the serialization point: two concurrent
// consumers of the last unit race on the same row and exactly one wins.
func (r *QuotaRepo) Consume(ctx context.Context, tx pgx.Tx, userID int64, kind, periodKey, timezone string, cap int) (int, error) {
	if userID <= 0 || strings.TrimSpace(kind) == "" || strings.TrimSpace(periodKey) == "" || cap <= 0 {
		return 0, fmt.Errorf("invalid quota consume payload")
	}
	if tx == nil {
		return 0, fmt.Errorf("transaction is required")
	}
	if strings.TrimSpace(timezone) == "" {
		timezone = "UTC"
	}

	var used int
	err := tx.QueryRow(ctx, `
INSERT INTO quotas (
	user_id,
	kind,
	period_key,
	tz_name,
	used,
	updated_at
) VALUES ($1, $2, $3, $4, 1, NOW())
ON CONFLICT (user_id, kind, period_key) DO UPDATE SET
	used = quotas.used + 1,
	tz_name = EXCLUDED.tz_name,
	updated_at = NOW()
WHERE quotas.used < $5
RETURNING used
`, userID, kind, periodKey, timezone, cap).Scan(&used)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrQuotaExhausted
		}
		return 0, fmt.Errorf("consume quota: %w", err)
	}

	return used, nil
}

func (r *QuotaRepo) GetUsed(ctx context.Context, userID int64, kind, periodKey string) (int, error) {
	if userID <= 0 || strings.TrimSpace(kind) == "" || strings.TrimSpace(periodKey) == "" {
		return 0, fmt.Errorf("invalid quota lookup payload")
	}
	if r.pool == nil {
		return 0, nil
	}

	var used int
	err := r.pool.QueryRow(ctx, `
SELECT used
FROM quotas
WHERE user_id = $1 AND kind = $2 AND period_key = $3
LIMIT 1
`, userID, kind, periodKey).Scan(&used)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("get quota usage: %w", err)
	}

	return used, nil
}

// DeleteOlderThan prunes counter rows last touched before the cutoff.
// Counters are date-keyed and never reset, so retention is the only thing
// that keeps the table bounded.
func (r *QuotaRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if r.pool == nil {
		return 0, nil
	}
	if cutoff.IsZero() {
		return 0, fmt.Errorf("cutoff is required")
	}

	result, err := r.pool.Exec(ctx, `
DELETE FROM quotas
WHERE updated_at < $1
`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete stale quota rows: %w", err)
	}

	return result.RowsAffected(), nil
}
