package swipes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emberapp/backend/internal/domain/enums"
	"github.com/emberapp/backend/internal/domain/model"
	pgrepo "github.com/emberapp/backend/internal/repo/postgres"
	entsvc "github.com/emberapp/backend/internal/services/entitlements"
)

var (
	ErrValidation          = errors.New("validation error")
	ErrUnsupportedDecision = errors.New("unsupported swipe decision")
	ErrDuplicateSwipe      = errors.New("swipe already recorded for this pair")
	ErrQuotaExhausted      = errors.New("quota exhausted for period")
	ErrTargetBlocked       = errors.New("target is blocked")
)

type TooFastError struct {
	RetryAfterSec int64
}

func (e TooFastError) Error() string {
	return "too fast"
}

func (e TooFastError) RetryAfter() int64 {
	if e.RetryAfterSec <= 0 {
		return 1
	}
	return e.RetryAfterSec
}

func IsTooFast(err error) (*TooFastError, bool) {
	var tf TooFastError
	if errors.As(err, &tf) {
		return &tf, true
	}
	return nil, false
}

type SwipeStore interface {
	Create(ctx context.Context, tx pgx.Tx, actorUserID, targetUserID int64, decision string, superLike bool, now time.Time) (model.Swipe, error)
	ReciprocalLike(ctx context.Context, tx pgx.Tx, actorUserID, targetUserID int64) (bool, error)
}

type MatchStore interface {
	CreateForPair(ctx context.Context, tx pgx.Tx, userID, targetID int64, rematchAllowed bool, now time.Time) (pgrepo.MatchOutcome, error)
}

type BlockStore interface {
	Exists(ctx context.Context, actorUserID, targetUserID int64) (bool, error)
}

type Entitlements interface {
	Tier(ctx context.Context, userID int64) (enums.Tier, error)
	Consume(ctx context.Context, tx pgx.Tx, userID int64, tier enums.Tier, kind enums.QuotaKind) (entsvc.ConsumeResult, error)
}

type RateLimiter interface {
	AllowSwipe(ctx context.Context, userID int64, decision enums.SwipeDecision) (int64, bool, error)
}

type Notifier interface {
	MatchCreated(ctx context.Context, matchID string, userAID, userBID int64, occurredAt time.Time)
}

type Config struct {
	RematchAllowed bool
}

type SwipeResult struct {
	SwipeID   int64
	Decision  enums.SwipeDecision
	Matched   bool
	MatchID   string
	Quota     entsvc.ConsumeResult
	CreatedAt time.Time
}

type Dependencies struct {
	Pool         *pgxpool.Pool
	SwipeStore   SwipeStore
	MatchStore   MatchStore
	BlockStore   BlockStore
	Entitlements Entitlements
	RateLimiter  RateLimiter
	Notifier     Notifier

	// TxRunner overrides the pool-backed transaction runner. Nil means run
	// against Pool.
	TxRunner func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
}

// Service is the single write path for swipes. One transaction covers the
// quota spend, the ledger append, and the match decision; the MatchCreated
// notification goes out only after that transaction commits, and only from
// the call that created the match row.
type Service struct {
	pool         *pgxpool.Pool
	swipeStore   SwipeStore
	matchStore   MatchStore
	blockStore   BlockStore
	entitlements Entitlements
	rateLimiter  RateLimiter
	notifier     Notifier
	cfg          Config
	now          func() time.Time
	runTx        func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
}

func NewService(deps Dependencies, cfg Config) *Service {
	s := &Service{
		pool:         deps.Pool,
		swipeStore:   deps.SwipeStore,
		matchStore:   deps.MatchStore,
		blockStore:   deps.BlockStore,
		entitlements: deps.Entitlements,
		rateLimiter:  deps.RateLimiter,
		notifier:     deps.Notifier,
		cfg:          cfg,
		now:          time.Now,
	}
	s.runTx = func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
		return pgrepo.WithTx(ctx, s.pool, fn)
	}
	if deps.TxRunner != nil {
		s.runTx = deps.TxRunner
	}
	return s
}

func (s *Service) Swipe(ctx context.Context, userID, targetID int64, decision string) (SwipeResult, error) {
	if userID <= 0 || targetID <= 0 || userID == targetID {
		return SwipeResult{}, ErrValidation
	}
	parsed, ok := enums.ParseSwipeDecision(decision)
	if !ok {
		return SwipeResult{}, ErrUnsupportedDecision
	}
	if s.swipeStore == nil || s.matchStore == nil || s.entitlements == nil {
		return SwipeResult{}, fmt.Errorf("swipe dependencies are not configured")
	}

	now := s.now().UTC()

	if s.blockStore != nil {
		blocked, err := s.blockStore.Exists(ctx, targetID, userID)
		if err != nil {
			return SwipeResult{}, fmt.Errorf("check block state: %w", err)
		}
		if !blocked {
			blocked, err = s.blockStore.Exists(ctx, userID, targetID)
			if err != nil {
				return SwipeResult{}, fmt.Errorf("check block state: %w", err)
			}
		}
		if blocked {
			return SwipeResult{}, ErrTargetBlocked
		}
	}

	tier, err := s.entitlements.Tier(ctx, userID)
	if err != nil {
		return SwipeResult{}, fmt.Errorf("resolve tier: %w", err)
	}

	// Unlimited tiers skip the per-day meter, so the short redis windows are
	// the only thing standing between them and a scripted swipe run.
	if parsed.IsPositive() && tier != enums.TierFree && s.rateLimiter != nil {
		retryAfter, allowed, err := s.rateLimiter.AllowSwipe(ctx, userID, parsed)
		if err != nil {
			return SwipeResult{}, fmt.Errorf("apply swipe rate limiter: %w", err)
		}
		if !allowed {
			return SwipeResult{}, TooFastError{RetryAfterSec: retryAfter}
		}
	}

	result := SwipeResult{Decision: parsed, CreatedAt: now}
	var outcome pgrepo.MatchOutcome

	// A duplicate swipe aborts the whole transaction, which also rolls back
	// this attempt's quota spend. The earlier attempt's spend is in a
	// committed transaction and stands.
	if err := s.runTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		if parsed.IsPositive() {
			kind := enums.QuotaKindLike
			if parsed == enums.SwipeDecisionSuperLike {
				kind = enums.QuotaKindSuperLike
			}
			quota, err := s.entitlements.Consume(txCtx, tx, userID, tier, kind)
			if err != nil {
				if errors.Is(err, entsvc.ErrQuotaExhausted) {
					result.Quota = quota
					return ErrQuotaExhausted
				}
				return err
			}
			result.Quota = quota
		}

		rec, err := s.swipeStore.Create(txCtx, tx, userID, targetID, string(parsed), parsed == enums.SwipeDecisionSuperLike, now)
		if err != nil {
			if errors.Is(err, pgrepo.ErrDuplicateSwipe) {
				return ErrDuplicateSwipe
			}
			return err
		}
		result.SwipeID = rec.ID

		if !parsed.IsPositive() {
			return nil
		}

		reciprocal, err := s.swipeStore.ReciprocalLike(txCtx, tx, userID, targetID)
		if err != nil {
			return err
		}
		if !reciprocal {
			return nil
		}

		outcome, err = s.matchStore.CreateForPair(txCtx, tx, userID, targetID, s.cfg.RematchAllowed, now)
		if err != nil {
			return err
		}
		return nil
	}); err != nil {
		return result, err
	}

	if outcome.Matched {
		result.Matched = true
		result.MatchID = outcome.Match.PublicID
	}
	if outcome.Created && s.notifier != nil {
		s.notifier.MatchCreated(ctx, outcome.Match.PublicID, outcome.Match.UserAID, outcome.Match.UserBID, now)
	}

	return result, nil
}
