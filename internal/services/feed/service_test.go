package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/emberapp/backend/internal/domain/model"
	pgrepo "github.com/emberapp/backend/internal/repo/postgres"
)

type repoStub struct {
	viewer     model.ViewerContext
	viewerErr  error
	candidates []model.Candidate
	lastQuery  pgrepo.FeedQuery
}

func (r *repoStub) GetViewerContext(context.Context, int64) (model.ViewerContext, error) {
	if r.viewerErr != nil {
		return model.ViewerContext{}, r.viewerErr
	}
	return r.viewer, nil
}

func (r *repoStub) ListCandidates(_ context.Context, q pgrepo.FeedQuery) ([]model.Candidate, error) {
	r.lastQuery = q
	return r.candidates, nil
}

func newFeedService(repo *repoStub) *Service {
	svc := NewService(repo, Config{})
	svc.now = func() time.Time {
		return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestGetAppliesViewerPreferences(t *testing.T) {
	repo := &repoStub{
		viewer: model.ViewerContext{
			CityID:     "berlin",
			Gender:     "F",
			LookingFor: "M",
			AgeMin:     25,
			AgeMax:     35,
			RadiusKM:   500,
		},
	}
	svc := newFeedService(repo)

	result, err := svc.Get(context.Background(), 1, "", 0)
	if err != nil {
		t.Fatalf("get feed: %v", err)
	}
	if len(result.Items) != 0 || result.NextCursor != "" {
		t.Fatalf("empty deck must be an empty page: %+v", result)
	}

	q := repo.lastQuery
	if q.AgeMin != 25 || q.AgeMax != 35 {
		t.Fatalf("unexpected age range: %d-%d", q.AgeMin, q.AgeMax)
	}
	if q.RadiusKM != 200 {
		t.Fatalf("radius must be clamped to the max, got %d", q.RadiusKM)
	}
	if q.Limit != defaultPageSize {
		t.Fatalf("unexpected default limit: %d", q.Limit)
	}
	if q.HasCursor {
		t.Fatalf("first page must not carry a cursor")
	}
}

func TestGetDefaultsMissingPreferences(t *testing.T) {
	repo := &repoStub{viewer: model.ViewerContext{CityID: "berlin"}}
	svc := newFeedService(repo)

	if _, err := svc.Get(context.Background(), 1, "", 200); err != nil {
		t.Fatalf("get feed: %v", err)
	}

	q := repo.lastQuery
	if q.AgeMin != 18 || q.AgeMax != 99 {
		t.Fatalf("unexpected defaulted age range: %d-%d", q.AgeMin, q.AgeMax)
	}
	if q.RadiusKM != 25 {
		t.Fatalf("unexpected defaulted radius: %d", q.RadiusKM)
	}
	if q.Limit != maxPageSize {
		t.Fatalf("oversized limit must be clamped, got %d", q.Limit)
	}
}

func TestGetMissingViewerReturnsEmptyPage(t *testing.T) {
	repo := &repoStub{viewerErr: pgrepo.ErrFeedViewerNotFound}
	svc := newFeedService(repo)

	result, err := svc.Get(context.Background(), 1, "", 0)
	if err != nil {
		t.Fatalf("get feed for unknown viewer: %v", err)
	}
	if len(result.Items) != 0 || result.NextCursor != "" {
		t.Fatalf("unknown viewer must read as an empty deck: %+v", result)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	created := time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC)
	repo := &repoStub{
		viewer: model.ViewerContext{CityID: "berlin"},
		candidates: []model.Candidate{
			{UserID: 11, DisplayName: "A", Priority: 1, CreatedAt: created.Add(time.Hour)},
			{UserID: 12, DisplayName: "B", Priority: 0, CreatedAt: created},
		},
	}
	svc := newFeedService(repo)

	result, err := svc.Get(context.Background(), 1, "", 2)
	if err != nil {
		t.Fatalf("get first page: %v", err)
	}
	if result.NextCursor == "" {
		t.Fatalf("full page must carry a next cursor")
	}
	if !result.Items[0].Boosted || result.Items[1].Boosted {
		t.Fatalf("priority flag must map to boosted: %+v", result.Items)
	}

	repo.candidates = nil
	if _, err := svc.Get(context.Background(), 1, result.NextCursor, 2); err != nil {
		t.Fatalf("get second page: %v", err)
	}

	q := repo.lastQuery
	if !q.HasCursor {
		t.Fatalf("second page must carry the cursor")
	}
	if q.CursorUserID != 12 || q.CursorPriority != 0 {
		t.Fatalf("unexpected cursor position: user=%d priority=%d", q.CursorUserID, q.CursorPriority)
	}
	if !q.CursorCreatedAt.Equal(created) {
		t.Fatalf("unexpected cursor created_at: %s", q.CursorCreatedAt)
	}
}

func TestPartialPageHasNoNextCursor(t *testing.T) {
	repo := &repoStub{
		viewer:     model.ViewerContext{CityID: "berlin"},
		candidates: []model.Candidate{{UserID: 11, CreatedAt: time.Now()}},
	}
	svc := newFeedService(repo)

	result, err := svc.Get(context.Background(), 1, "", 5)
	if err != nil {
		t.Fatalf("get feed: %v", err)
	}
	if result.NextCursor != "" {
		t.Fatalf("short page must not carry a cursor: %q", result.NextCursor)
	}
}

func TestInvalidCursorRejected(t *testing.T) {
	svc := newFeedService(&repoStub{viewer: model.ViewerContext{CityID: "berlin"}})

	for _, raw := range []string{"not base64!!", "bm90LWpzb24", "eyJwIjo1LCJ0IjoxLCJpIjoxfQ"} {
		if _, err := svc.Get(context.Background(), 1, raw, 0); !errors.Is(err, ErrInvalidCursor) {
			t.Fatalf("cursor %q: expected invalid cursor error, got %v", raw, err)
		}
	}
}
