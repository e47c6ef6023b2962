package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/emberapp/backend/internal/domain/enums"
	pgrepo "github.com/emberapp/backend/internal/repo/postgres"
	authsvc "github.com/emberapp/backend/internal/services/auth"
	entsvc "github.com/emberapp/backend/internal/services/entitlements"
)

type flakyTierStore struct {
	failures int
	calls    int
}

func (s *flakyTierStore) GetTier(context.Context, int64) (enums.Tier, error) {
	s.calls++
	if s.calls <= s.failures {
		return enums.TierFree, pgrepo.ErrStoreUnavailable
	}
	return enums.TierFree, nil
}

type zeroUsageStore struct{}

func (zeroUsageStore) Consume(context.Context, pgx.Tx, int64, string, string, string, int) (int, error) {
	return 0, nil
}

func (zeroUsageStore) GetUsed(context.Context, int64, string, string) (int, error) {
	return 0, nil
}

func newQuotaHandlerWithTiers(tiers *flakyTierStore) *QuotaHandler {
	svc := entsvc.NewService(entsvc.Dependencies{
		Tiers: tiers,
		Usage: zeroUsageStore{},
	}, entsvc.Config{Timezone: "UTC"})
	return NewQuotaHandler(svc)
}

func doQuota(t *testing.T, handler *QuotaHandler) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/me/quota", nil)
	req = req.WithContext(authsvc.WithIdentity(req.Context(), authsvc.Identity{UserID: 1}))
	rec := httptest.NewRecorder()
	handler.Handle(rec, req)
	return rec
}

func TestQuotaHandlerRetriesTransientStoreOutage(t *testing.T) {
	tiers := &flakyTierStore{failures: 1}
	handler := newQuotaHandlerWithTiers(tiers)

	rec := doQuota(t, handler)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 after retry, got %d: %s", rec.Code, rec.Body.String())
	}
	if tiers.calls != 2 {
		t.Fatalf("expected one retry, got %d store calls", tiers.calls)
	}
}

func TestQuotaHandlerGivesUpOnPersistentOutage(t *testing.T) {
	tiers := &flakyTierStore{failures: 100}
	handler := newQuotaHandlerWithTiers(tiers)

	rec := doQuota(t, handler)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if tiers.calls != 3 {
		t.Fatalf("expected three attempts, got %d store calls", tiers.calls)
	}
}
