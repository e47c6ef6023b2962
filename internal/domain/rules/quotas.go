package rules

import (
	"fmt"
	"time"

	"github.com/emberapp/backend/internal/domain/enums"
)

// Unlimited is the cap sentinel for metered kinds that are not counted at all
// for a given tier. A consume against an unlimited cap never touches a counter.
const Unlimited = -1

const (
	FreeLikesPerDay         = 10
	PremiumSuperLikesPerDay = 5
	PremiumBoostsPerMonth   = 1
)

// CapFor is the single source of the tier-to-cap table. Both the entitlement
// store and the quota UI read it, so the business rule exists exactly once.
// An unknown kind is a programmer error, not user input.
func CapFor(tier enums.Tier, kind enums.QuotaKind) int {
	if !kind.Valid() {
		panic(fmt.Sprintf("rules: unknown quota kind %q", kind))
	}

	switch tier {
	case enums.TierPremium, enums.TierVIP:
		switch kind {
		case enums.QuotaKindLike:
			return Unlimited
		case enums.QuotaKindSuperLike:
			return PremiumSuperLikesPerDay
		case enums.QuotaKindBoost:
			return PremiumBoostsPerMonth
		}
	default:
		switch kind {
		case enums.QuotaKindLike:
			return FreeLikesPerDay
		default:
			return 0
		}
	}
	return 0
}

// PeriodKey returns the counter row key for a kind at a moment in the
// account's timezone. Likes and super-likes reset daily, boosts monthly.
// Counters are keyed by period instead of being reset in place, so history
// stays auditable and there is no reset/consume race at the boundary.
func PeriodKey(kind enums.QuotaKind, now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	if kind == enums.QuotaKindBoost {
		return local.Format("2006-01")
	}
	return local.Format("2006-01-02")
}

func DayKey(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Format("2006-01-02")
}

// NextResetAt reports when the counter for a kind rolls over, in UTC.
func NextResetAt(kind enums.QuotaKind, now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	if kind == enums.QuotaKindBoost {
		next := time.Date(local.Year(), local.Month()+1, 1, 0, 0, 0, 0, loc)
		return next.UTC()
	}
	next := time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, loc)
	return next.UTC()
}
