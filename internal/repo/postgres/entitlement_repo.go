package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emberapp/backend/internal/domain/enums"
)

type EntitlementRepo struct {
	pool *pgxpool.Pool
}

func NewEntitlementRepo(pool *pgxpool.Pool) *EntitlementRepo {
	return &EntitlementRepo{pool: pool}
}

// GetTier reads the subscription tier written by the billing collaborator.
// Missing accounts resolve to free rather than an error.
func (r *EntitlementRepo) GetTier(ctx context.Context, userID int64) (enums.Tier, error) {
	if userID <= 0 {
		return enums.TierFree, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return enums.TierFree, nil
	}

	var raw string
	err := r.pool.QueryRow(ctx, `
SELECT COALESCE(tier, 'free')
FROM accounts
WHERE id = $1
LIMIT 1
`, userID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return enums.TierFree, nil
		}
		return enums.TierFree, fmt.Errorf("get account tier: %w", err)
	}

	return enums.ParseTier(raw), nil
}

func (r *EntitlementRepo) BoostUntil(ctx context.Context, userID int64) (*time.Time, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return nil, nil
	}

	var until *time.Time
	err := r.pool.QueryRow(ctx, `
SELECT boost_until
FROM entitlements
WHERE user_id = $1
LIMIT 1
`, userID).Scan(&until)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get boost state: %w", err)
	}

	return until, nil
}

// ActivateBoost extends an already-running boost instead of discarding the
// remainder.
func (r *EntitlementRepo) ActivateBoost(ctx context.Context, tx pgx.Tx, userID int64, now time.Time, duration time.Duration) (time.Time, error) {
	if userID <= 0 {
		return time.Time{}, fmt.Errorf("invalid user id")
	}
	if tx == nil {
		return time.Time{}, fmt.Errorf("transaction is required")
	}
	if duration <= 0 {
		return time.Time{}, fmt.Errorf("boost duration must be positive")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var until time.Time
	err := tx.QueryRow(ctx, `
INSERT INTO entitlements (
	user_id,
	boost_until,
	updated_at
) VALUES ($1, $2::timestamptz + $3::interval, NOW())
ON CONFLICT (user_id) DO UPDATE SET
	boost_until = CASE
		WHEN entitlements.boost_until IS NOT NULL AND entitlements.boost_until > $2::timestamptz
			THEN entitlements.boost_until + $3::interval
		ELSE $2::timestamptz + $3::interval
	END,
	updated_at = NOW()
RETURNING boost_until
`, userID, now.UTC(), duration.String()).Scan(&until)
	if err != nil {
		return time.Time{}, fmt.Errorf("activate boost: %w", err)
	}

	return until, nil
}
