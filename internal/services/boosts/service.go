package boosts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emberapp/backend/internal/domain/enums"
	pgrepo "github.com/emberapp/backend/internal/repo/postgres"
	entsvc "github.com/emberapp/backend/internal/services/entitlements"
)

var (
	ErrValidation     = errors.New("validation error")
	ErrQuotaExhausted = errors.New("quota exhausted for period")
)

type BoostStore interface {
	ActivateBoost(ctx context.Context, tx pgx.Tx, userID int64, now time.Time, duration time.Duration) (time.Time, error)
}

type Entitlements interface {
	Tier(ctx context.Context, userID int64) (enums.Tier, error)
	Consume(ctx context.Context, tx pgx.Tx, userID int64, tier enums.Tier, kind enums.QuotaKind) (entsvc.ConsumeResult, error)
}

type Config struct {
	Duration time.Duration
}

type Dependencies struct {
	Pool         *pgxpool.Pool
	BoostStore   BoostStore
	Entitlements Entitlements
}

// Service spends one monthly boost credit and turns on feed priority for the
// configured window. Activating while a boost is running extends it.
type Service struct {
	pool         *pgxpool.Pool
	boostStore   BoostStore
	entitlements Entitlements
	cfg          Config
	now          func() time.Time
	runTx        func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
}

type ActivateResult struct {
	BoostUntil time.Time
	Quota      entsvc.ConsumeResult
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.Duration <= 0 {
		cfg.Duration = 30 * time.Minute
	}

	s := &Service{
		pool:         deps.Pool,
		boostStore:   deps.BoostStore,
		entitlements: deps.Entitlements,
		cfg:          cfg,
		now:          time.Now,
	}
	s.runTx = func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
		return pgrepo.WithTx(ctx, s.pool, fn)
	}
	return s
}

func (s *Service) Activate(ctx context.Context, userID int64) (ActivateResult, error) {
	if userID <= 0 {
		return ActivateResult{}, ErrValidation
	}
	if s.boostStore == nil || s.entitlements == nil {
		return ActivateResult{}, fmt.Errorf("boost dependencies are not configured")
	}

	tier, err := s.entitlements.Tier(ctx, userID)
	if err != nil {
		return ActivateResult{}, fmt.Errorf("resolve tier: %w", err)
	}

	now := s.now().UTC()
	result := ActivateResult{}

	if err := s.runTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		quota, err := s.entitlements.Consume(txCtx, tx, userID, tier, enums.QuotaKindBoost)
		if err != nil {
			if errors.Is(err, entsvc.ErrQuotaExhausted) {
				result.Quota = quota
				return ErrQuotaExhausted
			}
			return err
		}
		result.Quota = quota

		until, err := s.boostStore.ActivateBoost(txCtx, tx, userID, now, s.cfg.Duration)
		if err != nil {
			return err
		}
		result.BoostUntil = until
		return nil
	}); err != nil {
		return result, err
	}

	return result, nil
}
