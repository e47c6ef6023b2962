package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	pgrepo "github.com/emberapp/backend/internal/repo/postgres"
	authsvc "github.com/emberapp/backend/internal/services/auth"
	feedsvc "github.com/emberapp/backend/internal/services/feed"
	"github.com/emberapp/backend/internal/transport/http/dto"
	httperrors "github.com/emberapp/backend/internal/transport/http/errors"
)

type FeedHandler struct {
	service *feedsvc.Service
}

func NewFeedHandler(service *feedsvc.Service) *FeedHandler {
	return &FeedHandler{service: service}
}

func (h *FeedHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "FEED_SERVICE_UNAVAILABLE", "feed service is unavailable")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeBadRequest(w, "VALIDATION_ERROR", "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	result, err := readWithRetry(r.Context(), func(ctx context.Context) (feedsvc.Result, error) {
		return h.service.Get(ctx, identity.UserID, r.URL.Query().Get("cursor"), limit)
	})
	if err != nil {
		switch {
		case errors.Is(err, feedsvc.ErrInvalidCursor):
			writeBadRequest(w, "INVALID_CURSOR", "cursor is malformed or stale")
		case errors.Is(err, feedsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid feed request")
		case pgrepo.IsUnavailable(err):
			writeStoreUnavailable(w)
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to load feed")
		}
		return
	}

	items := make([]dto.FeedItemPayload, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, dto.FeedItemPayload{
			UserID:      item.UserID,
			DisplayName: item.DisplayName,
			Age:         item.Age,
			CityID:      item.CityID,
			Boosted:     item.Boosted,
			DistanceKM:  item.DistanceKM,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.FeedResponse{
		Items:      items,
		NextCursor: result.NextCursor,
	})
}
