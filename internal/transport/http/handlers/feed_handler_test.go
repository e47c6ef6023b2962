package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/emberapp/backend/internal/domain/model"
	pgrepo "github.com/emberapp/backend/internal/repo/postgres"
	authsvc "github.com/emberapp/backend/internal/services/auth"
	feedsvc "github.com/emberapp/backend/internal/services/feed"
)

type flakyFeedRepo struct {
	failures int
	calls    int
}

func (s *flakyFeedRepo) GetViewerContext(context.Context, int64) (model.ViewerContext, error) {
	s.calls++
	if s.calls <= s.failures {
		return model.ViewerContext{}, pgrepo.ErrStoreUnavailable
	}
	return model.ViewerContext{UserID: 1, CityID: "ams", Gender: "f", LookingFor: "m"}, nil
}

func (s *flakyFeedRepo) ListCandidates(context.Context, pgrepo.FeedQuery) ([]model.Candidate, error) {
	return []model.Candidate{}, nil
}

func doFeed(t *testing.T, handler *FeedHandler) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/feed", nil)
	req = req.WithContext(authsvc.WithIdentity(req.Context(), authsvc.Identity{UserID: 1}))
	rec := httptest.NewRecorder()
	handler.Handle(rec, req)
	return rec
}

func TestFeedHandlerRetriesTransientStoreOutage(t *testing.T) {
	repo := &flakyFeedRepo{failures: 1}
	handler := NewFeedHandler(feedsvc.NewService(repo, feedsvc.Config{}))

	rec := doFeed(t, handler)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 after retry, got %d: %s", rec.Code, rec.Body.String())
	}
	if repo.calls != 2 {
		t.Fatalf("expected one retry, got %d store calls", repo.calls)
	}
}

func TestFeedHandlerGivesUpOnPersistentOutage(t *testing.T) {
	repo := &flakyFeedRepo{failures: 100}
	handler := NewFeedHandler(feedsvc.NewService(repo, feedsvc.Config{}))

	rec := doFeed(t, handler)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if repo.calls != 3 {
		t.Fatalf("expected three attempts, got %d store calls", repo.calls)
	}
}
