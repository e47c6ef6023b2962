package handlers

import (
	"net/http"
	"strconv"

	pgrepo "github.com/emberapp/backend/internal/repo/postgres"
	authsvc "github.com/emberapp/backend/internal/services/auth"
	likessvc "github.com/emberapp/backend/internal/services/likes"
	"github.com/emberapp/backend/internal/transport/http/dto"
	httperrors "github.com/emberapp/backend/internal/transport/http/errors"
)

type LikesHandler struct {
	service *likessvc.Service
}

func NewLikesHandler(service *likessvc.Service) *LikesHandler {
	return &LikesHandler{service: service}
}

func (h *LikesHandler) Incoming(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "LIKES_SERVICE_UNAVAILABLE", "likes service is unavailable")
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

	result, err := h.service.Incoming(r.Context(), identity.UserID, limit)
	if err != nil {
		if pgrepo.IsUnavailable(err) {
			writeStoreUnavailable(w)
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to load incoming likes")
		return
	}

	items := make([]dto.LikerPayload, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, dto.LikerPayload{
			UserID:      item.UserID,
			DisplayName: item.DisplayName,
			Age:         item.Age,
			CityID:      item.CityID,
			SuperLike:   item.SuperLike,
			LikedAt:     item.LikedAt,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.IncomingLikesResponse{
		Total:  result.Total,
		Locked: result.Locked,
		Items:  items,
	})
}
