package rate

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/emberapp/backend/internal/domain/enums"
)

type WindowStore interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	Pressure(ctx context.Context, key string) (int64, time.Duration, error)
}

type Config struct {
	LikesPerMinute      int
	LikesPer10Sec       int
	SuperLikesPerMinute int
}

// window is one fixed-window rule. Limit 0 disables the rule.
type window struct {
	label string
	span  time.Duration
	limit int
}

// Limiter burst-limits positive swipe decisions over short redis windows,
// keyed per decision kind: a super like run is throttled independently of the
// like stream. It guards unlimited tiers against scripted runs; the
// per-period quota is enforced elsewhere.
type Limiter struct {
	store   WindowStore
	windows map[enums.SwipeDecision][]window
}

func NewLimiter(store WindowStore, cfg Config) *Limiter {
	return &Limiter{
		store: store,
		windows: map[enums.SwipeDecision][]window{
			enums.SwipeDecisionLike: {
				{label: "min", span: time.Minute, limit: clampLimit(cfg.LikesPerMinute)},
				{label: "10s", span: 10 * time.Second, limit: clampLimit(cfg.LikesPer10Sec)},
			},
			enums.SwipeDecisionSuperLike: {
				{label: "min", span: time.Minute, limit: clampLimit(cfg.SuperLikesPerMinute)},
			},
		},
	}
}

// AllowSwipe counts the decision against its windows and reports whether it
// may proceed. When blocked, the returned seconds cover the longest-lived
// exceeded window.
func (l *Limiter) AllowSwipe(ctx context.Context, userID int64, decision enums.SwipeDecision) (int64, bool, error) {
	if userID <= 0 {
		return 0, false, fmt.Errorf("invalid user id")
	}
	if l.store == nil {
		return 0, false, fmt.Errorf("rate limiter store is nil")
	}

	retryAfterSec := int64(0)
	for _, w := range l.windows[decision] {
		if w.limit <= 0 {
			continue
		}
		count, left, err := l.store.Hit(ctx, l.key(decision, w.label, userID), w.span)
		if err != nil {
			return 0, false, err
		}
		if count > int64(w.limit) {
			retryAfterSec = maxInt64(retryAfterSec, ceilSeconds(left))
		}
	}

	if retryAfterSec > 0 {
		return retryAfterSec, false, nil
	}
	return 0, true, nil
}

// RetryAfter inspects the decision's windows without counting an action.
func (l *Limiter) RetryAfter(ctx context.Context, userID int64, decision enums.SwipeDecision) (int64, error) {
	if userID <= 0 {
		return 0, fmt.Errorf("invalid user id")
	}
	if l.store == nil {
		return 0, fmt.Errorf("rate limiter store is nil")
	}

	retryAfterSec := int64(0)
	for _, w := range l.windows[decision] {
		if w.limit <= 0 {
			continue
		}
		count, left, err := l.store.Pressure(ctx, l.key(decision, w.label, userID))
		if err != nil {
			return 0, err
		}
		if count >= int64(w.limit) {
			retryAfterSec = maxInt64(retryAfterSec, ceilSeconds(left))
		}
	}

	return retryAfterSec, nil
}

func (l *Limiter) key(decision enums.SwipeDecision, label string, userID int64) string {
	return "rate:swipes:" + string(decision) + ":" + label + ":" + strconv.FormatInt(userID, 10)
}

func clampLimit(limit int) int {
	if limit < 0 {
		return 0
	}
	return limit
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	sec := int64(d / time.Second)
	if d%time.Second != 0 {
		sec++
	}
	if sec <= 0 {
		sec = 1
	}
	return sec
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
