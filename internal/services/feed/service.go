package feed

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/emberapp/backend/internal/domain/model"
	pgrepo "github.com/emberapp/backend/internal/repo/postgres"
)

const (
	defaultPageSize = 20
	maxPageSize     = 50
)

var (
	ErrValidation    = errors.New("validation error")
	ErrInvalidCursor = errors.New("invalid cursor")
)

type Repository interface {
	GetViewerContext(ctx context.Context, userID int64) (model.ViewerContext, error)
	ListCandidates(ctx context.Context, q pgrepo.FeedQuery) ([]model.Candidate, error)
}

type Config struct {
	DefaultAgeMin   int
	DefaultAgeMax   int
	DefaultRadiusKM int
	MaxRadiusKM     int
}

// Service pages candidate cards for the swipe deck. An exhausted deck is a
// normal outcome: an empty page with no cursor, never an error.
type Service struct {
	repo Repository
	cfg  Config
	now  func() time.Time
}

type Item struct {
	UserID      int64
	DisplayName string
	CityID      string
	Age         int
	Boosted     bool
	DistanceKM  *float64
}

type Result struct {
	Items      []Item
	NextCursor string
}

type pageCursor struct {
	Priority  int   `json:"p"`
	CreatedAt int64 `json:"t"`
	UserID    int64 `json:"i"`
}

func NewService(repo Repository, cfg Config) *Service {
	if cfg.DefaultAgeMin <= 0 {
		cfg.DefaultAgeMin = 18
	}
	if cfg.DefaultAgeMax <= 0 {
		cfg.DefaultAgeMax = 99
	}
	if cfg.DefaultRadiusKM <= 0 {
		cfg.DefaultRadiusKM = 25
	}
	if cfg.MaxRadiusKM <= 0 {
		cfg.MaxRadiusKM = 200
	}

	return &Service{
		repo: repo,
		cfg:  cfg,
		now:  time.Now,
	}
}

func (s *Service) Get(ctx context.Context, userID int64, cursor string, limit int) (Result, error) {
	if userID <= 0 {
		return Result{}, ErrValidation
	}
	if s.repo == nil {
		return Result{}, fmt.Errorf("feed repository is nil")
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	decoded, hasCursor, err := decodeCursor(cursor)
	if err != nil {
		return Result{}, err
	}

	viewer, err := s.repo.GetViewerContext(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrFeedViewerNotFound) {
			return Result{Items: []Item{}}, nil
		}
		return Result{}, err
	}

	ageMin, ageMax := normalizeAgeRange(viewer.AgeMin, viewer.AgeMax, s.cfg.DefaultAgeMin, s.cfg.DefaultAgeMax)
	radius := normalizeRadius(viewer.RadiusKM, s.cfg.DefaultRadiusKM, s.cfg.MaxRadiusKM)
	query := pgrepo.FeedQuery{
		ViewerUserID:     userID,
		ViewerCityID:     viewer.CityID,
		ViewerGender:     viewer.Gender,
		ViewerLookingFor: viewer.LookingFor,
		AgeMin:           ageMin,
		AgeMax:           ageMax,
		RadiusKM:         radius,
		ViewerLat:        viewer.LastLat,
		ViewerLon:        viewer.LastLon,
		HasCursor:        hasCursor,
		Limit:            limit,
		Now:              s.now().UTC(),
	}
	if hasCursor {
		query.CursorPriority = decoded.Priority
		query.CursorCreatedAt = time.UnixMilli(decoded.CreatedAt).UTC()
		query.CursorUserID = decoded.UserID
	}

	candidates, err := s.repo.ListCandidates(ctx, query)
	if err != nil {
		return Result{}, err
	}

	items := make([]Item, 0, len(candidates))
	for _, candidate := range candidates {
		items = append(items, Item{
			UserID:      candidate.UserID,
			DisplayName: candidate.DisplayName,
			CityID:      candidate.CityID,
			Age:         candidate.Age,
			Boosted:     candidate.Priority > 0,
			DistanceKM:  candidate.DistanceKM,
		})
	}

	result := Result{Items: items}
	if len(candidates) == limit {
		last := candidates[len(candidates)-1]
		next, err := encodeCursor(pageCursor{
			Priority:  last.Priority,
			CreatedAt: last.CreatedAt.UTC().UnixMilli(),
			UserID:    last.UserID,
		})
		if err != nil {
			return Result{}, err
		}
		result.NextCursor = next
	}

	return result, nil
}

func normalizeAgeRange(ageMin, ageMax, defaultMin, defaultMax int) (int, int) {
	if ageMin <= 0 {
		ageMin = defaultMin
	}
	if ageMax <= 0 {
		ageMax = defaultMax
	}
	if ageMin > ageMax {
		ageMin, ageMax = ageMax, ageMin
	}
	return ageMin, ageMax
}

func normalizeRadius(radius, fallback, max int) int {
	if radius <= 0 {
		radius = fallback
	}
	if radius > max {
		radius = max
	}
	return radius
}

func decodeCursor(raw string) (pageCursor, bool, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return pageCursor{}, false, nil
	}

	data, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return pageCursor{}, false, ErrInvalidCursor
	}

	var cursor pageCursor
	if err := json.Unmarshal(data, &cursor); err != nil {
		return pageCursor{}, false, ErrInvalidCursor
	}
	if cursor.CreatedAt <= 0 || cursor.UserID <= 0 || cursor.Priority < 0 || cursor.Priority > 1 {
		return pageCursor{}, false, ErrInvalidCursor
	}

	return cursor, true, nil
}

func encodeCursor(cursor pageCursor) (string, error) {
	payload, err := json.Marshal(cursor)
	if err != nil {
		return "", fmt.Errorf("marshal feed cursor: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(payload), nil
}
