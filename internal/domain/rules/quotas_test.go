package rules

import (
	"testing"
	"time"

	"github.com/emberapp/backend/internal/domain/enums"
)

func TestCapForTable(t *testing.T) {
	cases := []struct {
		tier enums.Tier
		kind enums.QuotaKind
		want int
	}{
		{enums.TierFree, enums.QuotaKindLike, FreeLikesPerDay},
		{enums.TierFree, enums.QuotaKindSuperLike, 0},
		{enums.TierFree, enums.QuotaKindBoost, 0},
		{enums.TierPremium, enums.QuotaKindLike, Unlimited},
		{enums.TierPremium, enums.QuotaKindSuperLike, PremiumSuperLikesPerDay},
		{enums.TierPremium, enums.QuotaKindBoost, PremiumBoostsPerMonth},
		{enums.TierVIP, enums.QuotaKindLike, Unlimited},
		{enums.TierVIP, enums.QuotaKindSuperLike, PremiumSuperLikesPerDay},
		{enums.TierVIP, enums.QuotaKindBoost, PremiumBoostsPerMonth},
	}

	for _, tc := range cases {
		if got := CapFor(tc.tier, tc.kind); got != tc.want {
			t.Fatalf("CapFor(%s, %s) = %d, want %d", tc.tier, tc.kind, got, tc.want)
		}
	}
}

func TestCapForPanicsOnUnknownKind(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on unknown quota kind")
		}
	}()
	CapFor(enums.TierFree, enums.QuotaKind("rewind"))
}

func TestPeriodKeyRespectsTimezone(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	// 02:30 UTC on March 2nd is still March 1st in New York.
	now := time.Date(2026, 3, 2, 2, 30, 0, 0, time.UTC)

	if got := PeriodKey(enums.QuotaKindLike, now, loc); got != "2026-03-01" {
		t.Fatalf("unexpected like period key: %s", got)
	}
	if got := PeriodKey(enums.QuotaKindLike, now, time.UTC); got != "2026-03-02" {
		t.Fatalf("unexpected utc like period key: %s", got)
	}
	if got := PeriodKey(enums.QuotaKindBoost, now, loc); got != "2026-03" {
		t.Fatalf("unexpected boost period key: %s", got)
	}
}

func TestNextResetAt(t *testing.T) {
	now := time.Date(2026, 1, 31, 18, 0, 0, 0, time.UTC)

	daily := NextResetAt(enums.QuotaKindLike, now, time.UTC)
	if !daily.Equal(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected daily reset: %s", daily)
	}

	monthly := NextResetAt(enums.QuotaKindBoost, now, time.UTC)
	if !monthly.Equal(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected monthly reset: %s", monthly)
	}

	midMonth := NextResetAt(enums.QuotaKindBoost, time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC), time.UTC)
	if !midMonth.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected mid-month boost reset: %s", midMonth)
	}
}

func TestCanonicalPair(t *testing.T) {
	a, b := CanonicalPair(9, 4)
	if a != 4 || b != 9 {
		t.Fatalf("unexpected pair: (%d, %d)", a, b)
	}
	a, b = CanonicalPair(4, 9)
	if a != 4 || b != 9 {
		t.Fatalf("pair must not depend on argument order: (%d, %d)", a, b)
	}
}
