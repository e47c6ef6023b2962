package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/emberapp/backend/internal/domain/enums"
	"github.com/emberapp/backend/internal/domain/model"
	pgrepo "github.com/emberapp/backend/internal/repo/postgres"
	authsvc "github.com/emberapp/backend/internal/services/auth"
	entsvc "github.com/emberapp/backend/internal/services/entitlements"
	swipesvc "github.com/emberapp/backend/internal/services/swipes"
)

type swipeStoreStub struct {
	duplicate bool
}

func (s *swipeStoreStub) Create(_ context.Context, _ pgx.Tx, actor, target int64, decision string, superLike bool, now time.Time) (model.Swipe, error) {
	if s.duplicate {
		return model.Swipe{}, pgrepo.ErrDuplicateSwipe
	}
	return model.Swipe{ID: 1, ActorUserID: actor, TargetUserID: target, Decision: decision, SuperLike: superLike, CreatedAt: now}, nil
}

func (s *swipeStoreStub) ReciprocalLike(context.Context, pgx.Tx, int64, int64) (bool, error) {
	return true, nil
}

type matchStoreStub struct{}

func (matchStoreStub) CreateForPair(_ context.Context, _ pgx.Tx, userID, targetID int64, _ bool, now time.Time) (pgrepo.MatchOutcome, error) {
	userA, userB := userID, targetID
	if userB < userA {
		userA, userB = userB, userA
	}
	return pgrepo.MatchOutcome{
		Match:   model.Match{ID: 1, PublicID: "match-1", UserAID: userA, UserBID: userB, Status: "active", CreatedAt: now},
		Matched: true,
		Created: true,
	}, nil
}

type entitlementsStub struct {
	exhausted bool
	resetAt   time.Time
}

func (s *entitlementsStub) Tier(context.Context, int64) (enums.Tier, error) {
	return enums.TierFree, nil
}

func (s *entitlementsStub) Consume(_ context.Context, _ pgx.Tx, _ int64, _ enums.Tier, kind enums.QuotaKind) (entsvc.ConsumeResult, error) {
	if s.exhausted {
		return entsvc.ConsumeResult{Kind: kind, Cap: 10, Used: 10, ResetAt: s.resetAt}, entsvc.ErrQuotaExhausted
	}
	return entsvc.ConsumeResult{Kind: kind, Cap: 10, Used: 1, Remaining: 9, ResetAt: s.resetAt}, nil
}

func newHandlerService(swipes *swipeStoreStub, ents *entitlementsStub) *swipesvc.Service {
	return swipesvc.NewService(swipesvc.Dependencies{
		SwipeStore:   swipes,
		MatchStore:   matchStoreStub{},
		Entitlements: ents,
		TxRunner: func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
			return fn(ctx, nil)
		},
	}, swipesvc.Config{})
}

func doSwipe(t *testing.T, handler *SwipeHandler, body string, withIdentity bool) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/swipe", strings.NewReader(body))
	if withIdentity {
		req = req.WithContext(authsvc.WithIdentity(req.Context(), authsvc.Identity{UserID: 1}))
	}
	rec := httptest.NewRecorder()
	handler.Handle(rec, req)
	return rec
}

func TestSwipeHandlerRequiresIdentity(t *testing.T) {
	handler := NewSwipeHandler(newHandlerService(&swipeStoreStub{}, &entitlementsStub{}))

	rec := doSwipe(t, handler, `{"target_id":2,"decision":"LIKE"}`, false)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSwipeHandlerRejectsBadBody(t *testing.T) {
	handler := NewSwipeHandler(newHandlerService(&swipeStoreStub{}, &entitlementsStub{}))

	for _, body := range []string{"not json", `{"target_id":0,"decision":"LIKE"}`, `{"target_id":2,"decision":""}`, `{"target_id":2,"decision":"LIKE","extra":1}`} {
		rec := doSwipe(t, handler, body, true)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestSwipeHandlerMatchedResponse(t *testing.T) {
	handler := NewSwipeHandler(newHandlerService(&swipeStoreStub{}, &entitlementsStub{}))

	rec := doSwipe(t, handler, `{"target_id":2,"decision":"LIKE"}`, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		OK      bool   `json:"ok"`
		Matched bool   `json:"matched"`
		MatchID string `json:"match_id"`
		Quota   *struct {
			Remaining int `json:"remaining"`
		} `json:"quota"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.OK || !resp.Matched || resp.MatchID != "match-1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Quota == nil || resp.Quota.Remaining != 9 {
		t.Fatalf("unexpected quota payload: %+v", resp.Quota)
	}
}

func TestSwipeHandlerDuplicateConflict(t *testing.T) {
	handler := NewSwipeHandler(newHandlerService(&swipeStoreStub{duplicate: true}, &entitlementsStub{}))

	rec := doSwipe(t, handler, `{"target_id":2,"decision":"LIKE"}`, true)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ALREADY_SWIPED") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestSwipeHandlerQuotaExhausted(t *testing.T) {
	resetAt := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	handler := NewSwipeHandler(newHandlerService(&swipeStoreStub{}, &entitlementsStub{exhausted: true, resetAt: resetAt}))

	rec := doSwipe(t, handler, `{"target_id":2,"decision":"LIKE"}`, true)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}

	var payload struct {
		Code    string    `json:"code"`
		ResetAt time.Time `json:"reset_at"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Code != "QUOTA_EXHAUSTED" {
		t.Fatalf("unexpected code: %s", payload.Code)
	}
	if !payload.ResetAt.Equal(resetAt) {
		t.Fatalf("unexpected reset_at: %s", payload.ResetAt)
	}
}
