package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emberapp/backend/internal/domain/model"
)

var (
	ErrSwipeNotFound  = errors.New("swipe not found")
	ErrDuplicateSwipe = errors.New("swipe already recorded for this pair")
)

type SwipeRepo struct {
	pool *pgxpool.Pool
}

func NewSwipeRepo(pool *pgxpool.Pool) *SwipeRepo {
	return &SwipeRepo{pool: pool}
}

// Create appends one swipe to the ledger. The unique index on
// (actor_user_id, target_user_id) is the arbiter: a repeat swipe is rejected
// with ErrDuplicateSwipe, never overwritten.
func (r *SwipeRepo) Create(ctx context.Context, tx pgx.Tx, actorUserID, targetUserID int64, decision string, superLike bool, now time.Time) (model.Swipe, error) {
	if actorUserID <= 0 || targetUserID <= 0 || decision == "" {
		return model.Swipe{}, fmt.Errorf("invalid swipe payload")
	}
	if tx == nil {
		return model.Swipe{}, fmt.Errorf("transaction is required")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var rec model.Swipe
	err := tx.QueryRow(ctx, `
INSERT INTO swipes (
	actor_user_id,
	target_user_id,
	decision,
	super_like,
	created_at
) VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (actor_user_id, target_user_id) DO NOTHING
RETURNING id, actor_user_id, target_user_id, decision, super_like, created_at
`, actorUserID, targetUserID, decision, superLike, now.UTC()).Scan(
		&rec.ID,
		&rec.ActorUserID,
		&rec.TargetUserID,
		&rec.Decision,
		&rec.SuperLike,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Swipe{}, ErrDuplicateSwipe
		}
		return model.Swipe{}, fmt.Errorf("create swipe: %w", err)
	}

	return rec, nil
}

func (r *SwipeRepo) Get(ctx context.Context, actorUserID, targetUserID int64) (model.Swipe, error) {
	if actorUserID <= 0 || targetUserID <= 0 {
		return model.Swipe{}, fmt.Errorf("invalid swipe lookup payload")
	}
	if r.pool == nil {
		return model.Swipe{}, ErrSwipeNotFound
	}

	var rec model.Swipe
	err := r.pool.QueryRow(ctx, `
SELECT id, actor_user_id, target_user_id, decision, super_like, created_at
FROM swipes
WHERE actor_user_id = $1 AND target_user_id = $2
LIMIT 1
`, actorUserID, targetUserID).Scan(
		&rec.ID,
		&rec.ActorUserID,
		&rec.TargetUserID,
		&rec.Decision,
		&rec.SuperLike,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Swipe{}, ErrSwipeNotFound
		}
		return model.Swipe{}, fmt.Errorf("get swipe: %w", err)
	}

	return rec, nil
}

func (r *SwipeRepo) HasSwiped(ctx context.Context, actorUserID, targetUserID int64) (bool, error) {
	if actorUserID <= 0 || targetUserID <= 0 {
		return false, fmt.Errorf("invalid swipe lookup payload")
	}
	if r.pool == nil {
		return false, nil
	}

	var one int
	err := r.pool.QueryRow(ctx, `
SELECT 1
FROM swipes
WHERE actor_user_id = $1 AND target_user_id = $2
LIMIT 1
`, actorUserID, targetUserID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check swipe exists: %w", err)
	}

	return true, nil
}

// ReciprocalLike reports whether targetUserID has already liked or
// super-liked actorUserID. Runs inside the caller's transaction so the match
// decision sees the same snapshot the insert committed into.
func (r *SwipeRepo) ReciprocalLike(ctx context.Context, tx pgx.Tx, actorUserID, targetUserID int64) (bool, error) {
	if actorUserID <= 0 || targetUserID <= 0 {
		return false, fmt.Errorf("invalid reciprocity lookup payload")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	var one int
	err := tx.QueryRow(ctx, `
SELECT 1
FROM swipes
WHERE actor_user_id = $1
	AND target_user_id = $2
	AND decision IN ('LIKE', 'SUPERLIKE')
LIMIT 1
`, targetUserID, actorUserID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lookup reciprocal like: %w", err)
	}

	return true, nil
}

// ListLikersOf returns accounts that liked userID and were not yet liked or
// passed back, newest first. Feeds the "who liked you" surface.
func (r *SwipeRepo) ListLikersOf(ctx context.Context, userID int64, limit int) ([]model.Liker, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return []model.Liker{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	s.actor_user_id,
	s.super_like,
	s.created_at,
	COALESCE(p.display_name, ''),
	COALESCE(DATE_PART('year', AGE(NOW(), p.birthdate::timestamp))::int, 0),
	COALESCE(p.city_id, '')
FROM swipes s
JOIN profiles p ON p.user_id = s.actor_user_id
WHERE
	s.target_user_id = $1
	AND s.decision IN ('LIKE', 'SUPERLIKE')
	AND NOT EXISTS (
		SELECT 1
		FROM swipes back
		WHERE back.actor_user_id = $1 AND back.target_user_id = s.actor_user_id
	)
	AND NOT EXISTS (
		SELECT 1
		FROM blocks b
		WHERE (b.actor_user_id = $1 AND b.target_user_id = s.actor_user_id)
			OR (b.actor_user_id = s.actor_user_id AND b.target_user_id = $1)
	)
ORDER BY s.created_at DESC, s.id DESC
LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list likers: %w", err)
	}
	defer rows.Close()

	items := make([]model.Liker, 0, limit)
	for rows.Next() {
		var item model.Liker
		if err := rows.Scan(
			&item.UserID,
			&item.SuperLike,
			&item.LikedAt,
			&item.DisplayName,
			&item.Age,
			&item.CityID,
		); err != nil {
			return nil, fmt.Errorf("scan liker: %w", err)
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate likers: %w", rows.Err())
	}

	return items, nil
}
