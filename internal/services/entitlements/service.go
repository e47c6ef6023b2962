package entitlements

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/emberapp/backend/internal/domain/enums"
	"github.com/emberapp/backend/internal/domain/rules"
	pgrepo "github.com/emberapp/backend/internal/repo/postgres"
)

var (
	ErrValidation     = errors.New("validation error")
	ErrQuotaExhausted = errors.New("quota exhausted for period")
)

type TierStore interface {
	GetTier(ctx context.Context, userID int64) (enums.Tier, error)
}

type UsageStore interface {
	Consume(ctx context.Context, tx pgx.Tx, userID int64, kind, periodKey, timezone string, cap int) (int, error)
	GetUsed(ctx context.Context, userID int64, kind, periodKey string) (int, error)
}

type BoostStore interface {
	BoostUntil(ctx context.Context, userID int64) (*time.Time, error)
}

type Config struct {
	Timezone string
}

type Dependencies struct {
	Tiers  TierStore
	Usage  UsageStore
	Boosts BoostStore
}

// Service resolves a user's tier to concrete allowances and meters usage
// against them. Tier changes written by the billing collaborator take effect
// on the next call; counters are never rewritten on upgrade or downgrade.
type Service struct {
	tiers  TierStore
	usage  UsageStore
	boosts BoostStore
	loc    *time.Location
	now    func() time.Time
}

type Allowance struct {
	Kind      enums.QuotaKind
	Cap       int
	Used      int
	Remaining int
	ResetAt   time.Time
}

type Snapshot struct {
	UserID     int64
	Tier       enums.Tier
	Priority   bool
	Likes      Allowance
	SuperLikes Allowance
	Boosts     Allowance
	BoostUntil *time.Time
}

type ConsumeResult struct {
	Kind      enums.QuotaKind
	Cap       int
	Used      int
	Remaining int
	ResetAt   time.Time
}

func NewService(deps Dependencies, cfg Config) *Service {
	loc := time.UTC
	if cfg.Timezone != "" {
		if parsed, err := time.LoadLocation(cfg.Timezone); err == nil {
			loc = parsed
		}
	}

	return &Service{
		tiers:  deps.Tiers,
		usage:  deps.Usage,
		boosts: deps.Boosts,
		loc:    loc,
		now:    time.Now,
	}
}

func (s *Service) Tier(ctx context.Context, userID int64) (enums.Tier, error) {
	if userID <= 0 {
		return enums.TierFree, ErrValidation
	}
	if s.tiers == nil {
		return enums.TierFree, fmt.Errorf("tier store is nil")
	}

	return s.tiers.GetTier(ctx, userID)
}

// Consume spends one unit of the kind's allowance inside the caller's
// transaction. An unlimited cap short-circuits without touching storage; a
// zero cap means the tier never had the feature and reads as exhausted.
// An unknown kind is a programmer error and panics in rules.CapFor.
func (s *Service) Consume(ctx context.Context, tx pgx.Tx, userID int64, tier enums.Tier, kind enums.QuotaKind) (ConsumeResult, error) {
	if userID <= 0 {
		return ConsumeResult{}, ErrValidation
	}
	if s.usage == nil {
		return ConsumeResult{}, fmt.Errorf("usage store is nil")
	}

	now := s.now().UTC()
	cap := rules.CapFor(tier, kind)
	resetAt := rules.NextResetAt(kind, now, s.loc)

	if cap == rules.Unlimited {
		return ConsumeResult{
			Kind:      kind,
			Cap:       rules.Unlimited,
			Remaining: rules.Unlimited,
			ResetAt:   resetAt,
		}, nil
	}
	if cap <= 0 {
		return ConsumeResult{Kind: kind, Cap: cap, ResetAt: resetAt}, ErrQuotaExhausted
	}

	periodKey := rules.PeriodKey(kind, now, s.loc)
	used, err := s.usage.Consume(ctx, tx, userID, string(kind), periodKey, s.loc.String(), cap)
	if err != nil {
		if errors.Is(err, pgrepo.ErrQuotaExhausted) {
			return ConsumeResult{Kind: kind, Cap: cap, Used: cap, ResetAt: resetAt}, ErrQuotaExhausted
		}
		return ConsumeResult{}, err
	}

	return ConsumeResult{
		Kind:      kind,
		Cap:       cap,
		Used:      used,
		Remaining: cap - used,
		ResetAt:   resetAt,
	}, nil
}

// Peek reports remaining allowances without consuming anything.
func (s *Service) Peek(ctx context.Context, userID int64) (Snapshot, error) {
	if userID <= 0 {
		return Snapshot{}, ErrValidation
	}
	if s.tiers == nil || s.usage == nil {
		return Snapshot{}, fmt.Errorf("entitlement stores are nil")
	}

	tier, err := s.tiers.GetTier(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}

	now := s.now().UTC()
	snap := Snapshot{
		UserID:   userID,
		Tier:     tier,
		Priority: tier.Priority(),
	}

	for _, kind := range []enums.QuotaKind{enums.QuotaKindLike, enums.QuotaKindSuperLike, enums.QuotaKindBoost} {
		allowance, err := s.allowance(ctx, userID, tier, kind, now)
		if err != nil {
			return Snapshot{}, err
		}
		switch kind {
		case enums.QuotaKindLike:
			snap.Likes = allowance
		case enums.QuotaKindSuperLike:
			snap.SuperLikes = allowance
		case enums.QuotaKindBoost:
			snap.Boosts = allowance
		}
	}

	if s.boosts != nil {
		until, err := s.boosts.BoostUntil(ctx, userID)
		if err != nil {
			return Snapshot{}, err
		}
		if until != nil && until.After(now) {
			snap.BoostUntil = until
		}
	}

	return snap, nil
}

func (s *Service) allowance(ctx context.Context, userID int64, tier enums.Tier, kind enums.QuotaKind, now time.Time) (Allowance, error) {
	cap := rules.CapFor(tier, kind)
	resetAt := rules.NextResetAt(kind, now, s.loc)

	if cap == rules.Unlimited {
		return Allowance{
			Kind:      kind,
			Cap:       rules.Unlimited,
			Remaining: rules.Unlimited,
			ResetAt:   resetAt,
		}, nil
	}
	if cap <= 0 {
		return Allowance{Kind: kind, ResetAt: resetAt}, nil
	}

	used, err := s.usage.GetUsed(ctx, userID, string(kind), rules.PeriodKey(kind, now, s.loc))
	if err != nil {
		return Allowance{}, err
	}
	if used > cap {
		used = cap
	}

	return Allowance{
		Kind:      kind,
		Cap:       cap,
		Used:      used,
		Remaining: cap - used,
		ResetAt:   resetAt,
	}, nil
}
