package matches

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emberapp/backend/internal/domain/model"
	pgrepo "github.com/emberapp/backend/internal/repo/postgres"
)

var ErrValidation = errors.New("validation error")

type MatchStore interface {
	ListActiveForUser(ctx context.Context, userID int64, limit int) ([]model.MatchCard, error)
	CloseByUsers(ctx context.Context, tx pgx.Tx, userID, targetID int64, now time.Time) (bool, error)
}

type BlockStore interface {
	Upsert(ctx context.Context, tx pgx.Tx, actorUserID, targetUserID int64, now time.Time) error
}

type Service struct {
	pool       *pgxpool.Pool
	matchStore MatchStore
	blockStore BlockStore
	now        func() time.Time
	runTx      func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
}

type Dependencies struct {
	Pool       *pgxpool.Pool
	MatchStore MatchStore
	BlockStore BlockStore
}

type MatchItem struct {
	ID           int64
	PublicID     string
	TargetUserID int64
	DisplayName  string
	Age          int
	CityID       string
	CreatedAt    time.Time
}

func NewService(deps Dependencies) *Service {
	s := &Service{
		pool:       deps.Pool,
		matchStore: deps.MatchStore,
		blockStore: deps.BlockStore,
		now:        time.Now,
	}
	s.runTx = func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
		return pgrepo.WithTx(ctx, s.pool, fn)
	}
	return s
}

func (s *Service) List(ctx context.Context, userID int64, limit int) ([]MatchItem, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}
	if s.matchStore == nil {
		return nil, fmt.Errorf("match store is nil")
	}

	rows, err := s.matchStore.ListActiveForUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	items := make([]MatchItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, MatchItem{
			ID:           row.ID,
			PublicID:     row.PublicID,
			TargetUserID: row.TargetUserID,
			DisplayName:  row.DisplayName,
			Age:          row.Age,
			CityID:       row.CityID,
			CreatedAt:    row.CreatedAt,
		})
	}
	return items, nil
}

// Unmatch closes the pair's match. The swipe ledger keeps both original
// decisions, so neither side reappears in the other's deck afterwards.
func (s *Service) Unmatch(ctx context.Context, userID, targetID int64) (bool, error) {
	if userID <= 0 || targetID <= 0 || userID == targetID {
		return false, ErrValidation
	}
	if s.matchStore == nil {
		return false, fmt.Errorf("unmatch dependencies are not configured")
	}

	now := s.now().UTC()

	var closed bool
	if err := s.runTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		ok, err := s.matchStore.CloseByUsers(txCtx, tx, userID, targetID, now)
		if err != nil {
			return err
		}
		closed = ok
		return nil
	}); err != nil {
		return false, err
	}

	return closed, nil
}

// Block records the block and closes any active match in one transaction.
func (s *Service) Block(ctx context.Context, userID, targetID int64) error {
	if userID <= 0 || targetID <= 0 || userID == targetID {
		return ErrValidation
	}
	if s.blockStore == nil || s.matchStore == nil {
		return fmt.Errorf("block dependencies are not configured")
	}

	now := s.now().UTC()

	return s.runTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		if err := s.blockStore.Upsert(txCtx, tx, userID, targetID, now); err != nil {
			return err
		}
		_, err := s.matchStore.CloseByUsers(txCtx, tx, userID, targetID, now)
		return err
	})
}
