package likes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/emberapp/backend/internal/domain/enums"
	"github.com/emberapp/backend/internal/domain/model"
)

var ErrValidation = errors.New("validation error")

type SwipeStore interface {
	ListLikersOf(ctx context.Context, userID int64, limit int) ([]model.Liker, error)
}

type TierStore interface {
	GetTier(ctx context.Context, userID int64) (enums.Tier, error)
}

// Service backs the "who liked you" surface. Free accounts get the count
// only; paying tiers see the full cards.
type Service struct {
	swipeStore SwipeStore
	tierStore  TierStore
}

type Dependencies struct {
	SwipeStore SwipeStore
	TierStore  TierStore
}

type Liker struct {
	UserID      int64
	DisplayName string
	Age         int
	CityID      string
	SuperLike   bool
	LikedAt     time.Time
}

type IncomingResult struct {
	Total  int
	Locked bool
	Items  []Liker
}

func NewService(deps Dependencies) *Service {
	return &Service{
		swipeStore: deps.SwipeStore,
		tierStore:  deps.TierStore,
	}
}

func (s *Service) Incoming(ctx context.Context, userID int64, limit int) (IncomingResult, error) {
	if userID <= 0 {
		return IncomingResult{}, ErrValidation
	}
	if s.swipeStore == nil || s.tierStore == nil {
		return IncomingResult{}, fmt.Errorf("likes dependencies are not configured")
	}

	tier, err := s.tierStore.GetTier(ctx, userID)
	if err != nil {
		return IncomingResult{}, err
	}

	rows, err := s.swipeStore.ListLikersOf(ctx, userID, limit)
	if err != nil {
		return IncomingResult{}, err
	}

	// Free viewers get the count only. Entry-level fields, even anonymized
	// ones, let timestamps and super-like flags be correlated with recent
	// feed activity.
	if tier == enums.TierFree {
		return IncomingResult{
			Total:  len(rows),
			Locked: true,
			Items:  []Liker{},
		}, nil
	}

	items := make([]Liker, 0, len(rows))
	for _, row := range rows {
		items = append(items, Liker{
			UserID:      row.UserID,
			DisplayName: row.DisplayName,
			Age:         row.Age,
			CityID:      row.CityID,
			SuperLike:   row.SuperLike,
			LikedAt:     row.LikedAt,
		})
	}

	return IncomingResult{
		Total:  len(rows),
		Locked: false,
		Items:  items,
	}, nil
}
