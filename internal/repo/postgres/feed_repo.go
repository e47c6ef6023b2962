package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emberapp/backend/internal/domain/model"
)

var ErrFeedViewerNotFound = errors.New("feed viewer profile not found")

type FeedRepo struct {
	pool *pgxpool.Pool
}

func NewFeedRepo(pool *pgxpool.Pool) *FeedRepo {
	return &FeedRepo{pool: pool}
}

type FeedQuery struct {
	ViewerUserID     int64
	ViewerCityID     string
	ViewerGender     string
	ViewerLookingFor string
	AgeMin           int
	AgeMax           int
	RadiusKM         int
	ViewerLat        *float64
	ViewerLon        *float64
	HasCursor        bool
	CursorPriority   int
	CursorCreatedAt  time.Time
	CursorUserID     int64
	Limit            int
	Now              time.Time
}

func (r *FeedRepo) GetViewerContext(ctx context.Context, userID int64) (model.ViewerContext, error) {
	if userID <= 0 {
		return model.ViewerContext{}, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return model.ViewerContext{}, ErrFeedViewerNotFound
	}

	var viewer model.ViewerContext
	err := r.pool.QueryRow(ctx, `
SELECT
	user_id,
	COALESCE(city_id, ''),
	COALESCE(gender, ''),
	COALESCE(looking_for, ''),
	age_min,
	age_max,
	radius_km,
	last_lat,
	last_lon
FROM profiles
WHERE user_id = $1
LIMIT 1
`, userID).Scan(
		&viewer.UserID,
		&viewer.CityID,
		&viewer.Gender,
		&viewer.LookingFor,
		&viewer.AgeMin,
		&viewer.AgeMax,
		&viewer.RadiusKM,
		&viewer.LastLat,
		&viewer.LastLon,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ViewerContext{}, ErrFeedViewerNotFound
		}
		return model.ViewerContext{}, fmt.Errorf("get feed viewer context: %w", err)
	}

	return viewer, nil
}

// ListCandidates pages candidate profiles for the viewer. The exclusion set
// (self, anyone already swiped on, blocks in either direction, active
// matches) lives in the query so a candidate never reappears once acted on.
// Boosted and vip accounts rank first; the keyset cursor orders on
// (priority DESC, created_at DESC, user_id DESC).
func (r *FeedRepo) ListCandidates(ctx context.Context, q FeedQuery) ([]model.Candidate, error) {
	if q.ViewerUserID <= 0 {
		return nil, fmt.Errorf("invalid viewer id")
	}
	if q.Limit <= 0 {
		q.Limit = 20
	}
	if q.Now.IsZero() {
		q.Now = time.Now().UTC()
	}
	if r.pool == nil {
		return []model.Candidate{}, nil
	}

	lookingFor := strings.ToLower(strings.TrimSpace(q.ViewerLookingFor))
	viewerGender := strings.ToLower(strings.TrimSpace(q.ViewerGender))
	viewerCityID := strings.TrimSpace(q.ViewerCityID)
	applyCityFilter := viewerCityID != "" && q.RadiusKM <= 0
	applyLookingFor := lookingFor != "" && lookingFor != "all" && lookingFor != "any"
	applyMutualLookingFor := viewerGender != "" && viewerGender != "all" && viewerGender != "any"
	applyRadius := q.ViewerLat != nil && q.ViewerLon != nil && q.RadiusKM > 0
	cursorCreatedAt := q.CursorCreatedAt.UTC()
	if cursorCreatedAt.IsZero() {
		cursorCreatedAt = time.Unix(0, 0).UTC()
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	p.user_id,
	p.display_name,
	COALESCE(p.city_id, ''),
	DATE_PART('year', AGE($2::timestamptz, p.birthdate::timestamp))::int AS age,
	CASE
		WHEN EXISTS (
			SELECT 1
			FROM entitlements e
			WHERE e.user_id = p.user_id AND e.boost_until > $2::timestamptz
		)
		OR EXISTS (
			SELECT 1
			FROM accounts a
			WHERE a.id = p.user_id AND a.tier = 'vip'
		)
		THEN 1 ELSE 0
	END AS priority,
	CASE
		WHEN $11::boolean = TRUE AND p.last_lat IS NOT NULL AND p.last_lon IS NOT NULL
		THEN 6371.0 * ACOS(LEAST(1.0, GREATEST(-1.0,
			COS(RADIANS($12::float8)) * COS(RADIANS(p.last_lat)) * COS(RADIANS(p.last_lon) - RADIANS($13::float8))
			+ SIN(RADIANS($12::float8)) * SIN(RADIANS(p.last_lat))
		)))
		ELSE NULL
	END AS distance_km,
	p.created_at
FROM profiles p
WHERE
	p.visible = TRUE
	AND p.user_id <> $1
	AND p.birthdate IS NOT NULL
	AND ($3::boolean = FALSE OR p.city_id = $4)
	AND ($5::boolean = FALSE OR LOWER(p.gender) = LOWER($6))
	AND (
		$7::boolean = FALSE
		OR LOWER(COALESCE(p.looking_for, '')) IN ('all', 'any', '')
		OR LOWER(p.looking_for) = LOWER($8)
	)
	AND DATE_PART('year', AGE($2::timestamptz, p.birthdate::timestamp))::int BETWEEN $9 AND $10
	AND NOT EXISTS (
		SELECT 1
		FROM swipes s
		WHERE s.actor_user_id = $1 AND s.target_user_id = p.user_id
	)
	AND NOT EXISTS (
		SELECT 1
		FROM blocks b
		WHERE (b.actor_user_id = $1 AND b.target_user_id = p.user_id)
			OR (b.actor_user_id = p.user_id AND b.target_user_id = $1)
	)
	AND NOT EXISTS (
		SELECT 1
		FROM matches m
		WHERE m.user_a_id = LEAST($1::bigint, p.user_id)
			AND m.user_b_id = GREATEST($1::bigint, p.user_id)
			AND m.status = 'active'
	)
	AND (
		$11::boolean = FALSE
		OR (
			p.last_lat IS NOT NULL
			AND p.last_lon IS NOT NULL
			AND (
				6371.0 * ACOS(LEAST(1.0, GREATEST(-1.0,
					COS(RADIANS($12::float8)) * COS(RADIANS(p.last_lat)) * COS(RADIANS(p.last_lon) - RADIANS($13::float8))
					+ SIN(RADIANS($12::float8)) * SIN(RADIANS(p.last_lat))
				)))
			) <= $14::float8
		)
	)
	AND (
		$15::boolean = FALSE
		OR (
			(
				CASE
					WHEN EXISTS (
						SELECT 1
						FROM entitlements e
						WHERE e.user_id = p.user_id AND e.boost_until > $2::timestamptz
					)
					OR EXISTS (
						SELECT 1
						FROM accounts a
						WHERE a.id = p.user_id AND a.tier = 'vip'
					)
					THEN 1 ELSE 0
				END
			) < $16::int
			OR (
				(
					CASE
						WHEN EXISTS (
							SELECT 1
							FROM entitlements e
							WHERE e.user_id = p.user_id AND e.boost_until > $2::timestamptz
						)
						OR EXISTS (
							SELECT 1
							FROM accounts a
							WHERE a.id = p.user_id AND a.tier = 'vip'
						)
						THEN 1 ELSE 0
					END
				) = $16::int
				AND (
					p.created_at < $17::timestamptz
					OR (p.created_at = $17::timestamptz AND p.user_id < $18::bigint)
				)
			)
		)
	)
ORDER BY priority DESC, p.created_at DESC, p.user_id DESC
LIMIT $19
`,
		q.ViewerUserID,           // $1
		q.Now.UTC(),              // $2
		applyCityFilter,          // $3
		viewerCityID,             // $4
		applyLookingFor,          // $5
		lookingFor,               // $6
		applyMutualLookingFor,    // $7
		viewerGender,             // $8
		q.AgeMin,                 // $9
		q.AgeMax,                 // $10
		applyRadius,              // $11
		floatOrZero(q.ViewerLat), // $12
		floatOrZero(q.ViewerLon), // $13
		float64(q.RadiusKM),      // $14
		q.HasCursor,              // $15
		q.CursorPriority,         // $16
		cursorCreatedAt,          // $17
		q.CursorUserID,           // $18
		q.Limit,                  // $19
	)
	if err != nil {
		return nil, fmt.Errorf("list feed candidates: %w", err)
	}
	defer rows.Close()

	items := make([]model.Candidate, 0, q.Limit)
	for rows.Next() {
		var item model.Candidate
		if err := rows.Scan(
			&item.UserID,
			&item.DisplayName,
			&item.CityID,
			&item.Age,
			&item.Priority,
			&item.DistanceKM,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan feed candidate: %w", err)
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate feed candidates: %w", rows.Err())
	}

	return items, nil
}

func floatOrZero(value *float64) float64 {
	if value == nil {
		return 0
	}
	return *value
}
