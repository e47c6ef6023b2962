package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emberapp/backend/internal/domain/model"
	"github.com/emberapp/backend/internal/domain/rules"
)

type MatchRepo struct {
	pool *pgxpool.Pool
}

func NewMatchRepo(pool *pgxpool.Pool) *MatchRepo {
	return &MatchRepo{pool: pool}
}

// MatchOutcome is the result of a pair-level create attempt. Matched tells the
// caller a match exists for the pair after the call; Created tells it this
// call made (or revived) the row and owns the one MatchCreated emission.
type MatchOutcome struct {
	Match   model.Match
	Matched bool
	Created bool
}

// CreateForPair creates at most one match per unordered pair. The unique
// index on the canonical (user_a_id, user_b_id) ordering is the sole arbiter:
// the loser of a concurrent mutual-like race sees the conflict, loads the
// winner's row, and reports it as the shared outcome. A closed pair is
// terminal unless rematchAllowed revives it.
func (r *MatchRepo) CreateForPair(ctx context.Context, tx pgx.Tx, userID, targetID int64, rematchAllowed bool, now time.Time) (MatchOutcome, error) {
	if userID <= 0 || targetID <= 0 || userID == targetID {
		return MatchOutcome{}, fmt.Errorf("invalid match payload")
	}
	if tx == nil {
		return MatchOutcome{}, fmt.Errorf("transaction is required")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	userA, userB := rules.CanonicalPair(userID, targetID)

	var rec model.Match
	err := tx.QueryRow(ctx, `
INSERT INTO matches (
	public_id,
	user_a_id,
	user_b_id,
	status,
	created_at
) VALUES ($1, $2, $3, 'active', $4)
ON CONFLICT (user_a_id, user_b_id) DO NOTHING
RETURNING id, public_id, user_a_id, user_b_id, status, created_at
`, uuid.NewString(), userA, userB, now.UTC()).Scan(
		&rec.ID,
		&rec.PublicID,
		&rec.UserAID,
		&rec.UserBID,
		&rec.Status,
		&rec.CreatedAt,
	)
	if err == nil {
		return MatchOutcome{Match: rec, Matched: true, Created: true}, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return MatchOutcome{}, fmt.Errorf("create match: %w", err)
	}

	// Conflict path: the pair already has a row, active or closed.
	err = tx.QueryRow(ctx, `
SELECT id, public_id, user_a_id, user_b_id, status, created_at
FROM matches
WHERE user_a_id = $1 AND user_b_id = $2
FOR UPDATE
`, userA, userB).Scan(
		&rec.ID,
		&rec.PublicID,
		&rec.UserAID,
		&rec.UserBID,
		&rec.Status,
		&rec.CreatedAt,
	)
	if err != nil {
		return MatchOutcome{}, fmt.Errorf("load existing match: %w", err)
	}

	if rec.Status == model.MatchStatusActive {
		return MatchOutcome{Match: rec, Matched: true, Created: false}, nil
	}

	if !rematchAllowed {
		return MatchOutcome{}, nil
	}

	if _, err := tx.Exec(ctx, `
UPDATE matches
SET status = 'active', closed_at = NULL, created_at = $2
WHERE id = $1 AND status = 'closed'
`, rec.ID, now.UTC()); err != nil {
		return MatchOutcome{}, fmt.Errorf("revive closed match: %w", err)
	}
	rec.Status = model.MatchStatusActive
	rec.CreatedAt = now.UTC()

	return MatchOutcome{Match: rec, Matched: true, Created: true}, nil
}

func (r *MatchRepo) ListActiveForUser(ctx context.Context, userID int64, limit int) ([]model.MatchCard, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return []model.MatchCard{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	m.id,
	m.public_id,
	CASE WHEN m.user_a_id = $1 THEN m.user_b_id ELSE m.user_a_id END AS target_user_id,
	COALESCE(p.display_name, ''),
	COALESCE(DATE_PART('year', AGE(NOW(), p.birthdate::timestamp))::int, 0),
	COALESCE(p.city_id, ''),
	m.created_at
FROM matches m
JOIN profiles p ON p.user_id = CASE WHEN m.user_a_id = $1 THEN m.user_b_id ELSE m.user_a_id END
WHERE
	(m.user_a_id = $1 OR m.user_b_id = $1)
	AND m.status = 'active'
	AND NOT EXISTS (
		SELECT 1
		FROM blocks b
		WHERE b.actor_user_id = CASE WHEN m.user_a_id = $1 THEN m.user_b_id ELSE m.user_a_id END
			AND b.target_user_id = $1
	)
ORDER BY m.created_at DESC, m.id DESC
LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list active matches: %w", err)
	}
	defer rows.Close()

	items := make([]model.MatchCard, 0, limit)
	for rows.Next() {
		var item model.MatchCard
		if err := rows.Scan(
			&item.ID,
			&item.PublicID,
			&item.TargetUserID,
			&item.DisplayName,
			&item.Age,
			&item.CityID,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan active match: %w", err)
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate active matches: %w", rows.Err())
	}

	return items, nil
}

// CloseByUsers deactivates the pair's match. The row stays for audit and for
// the rematch policy; nothing is hard-deleted.
func (r *MatchRepo) CloseByUsers(ctx context.Context, tx pgx.Tx, userID, targetID int64, now time.Time) (bool, error) {
	if userID <= 0 || targetID <= 0 {
		return false, fmt.Errorf("invalid match close payload")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	userA, userB := rules.CanonicalPair(userID, targetID)

	result, err := tx.Exec(ctx, `
UPDATE matches
SET status = 'closed', closed_at = $3
WHERE user_a_id = $1 AND user_b_id = $2 AND status = 'active'
`, userA, userB, now.UTC())
	if err != nil {
		return false, fmt.Errorf("close match: %w", err)
	}

	return result.RowsAffected() > 0, nil
}
