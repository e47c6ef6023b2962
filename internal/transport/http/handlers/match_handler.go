package handlers

import (
	"errors"
	"net/http"
	"strconv"

	pgrepo "github.com/emberapp/backend/internal/repo/postgres"
	authsvc "github.com/emberapp/backend/internal/services/auth"
	matchsvc "github.com/emberapp/backend/internal/services/matches"
	"github.com/emberapp/backend/internal/transport/http/dto"
	httperrors "github.com/emberapp/backend/internal/transport/http/errors"
)

type MatchHandler struct {
	service *matchsvc.Service
}

func NewMatchHandler(service *matchsvc.Service) *MatchHandler {
	return &MatchHandler{service: service}
}

func (h *MatchHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCH_SERVICE_UNAVAILABLE", "match service is unavailable")
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

	rows, err := h.service.List(r.Context(), identity.UserID, limit)
	if err != nil {
		if pgrepo.IsUnavailable(err) {
			writeStoreUnavailable(w)
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to load matches")
		return
	}

	items := make([]dto.MatchItemPayload, 0, len(rows))
	for _, row := range rows {
		items = append(items, dto.MatchItemPayload{
			MatchID:      row.PublicID,
			TargetUserID: row.TargetUserID,
			DisplayName:  row.DisplayName,
			Age:          row.Age,
			CityID:       row.CityID,
			CreatedAt:    row.CreatedAt,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.MatchListResponse{Items: items})
}

func (h *MatchHandler) Unmatch(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCH_SERVICE_UNAVAILABLE", "match service is unavailable")
		return
	}

	var req dto.UnmatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if req.TargetID <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "target_id is required")
		return
	}

	closed, err := h.service.Unmatch(r.Context(), identity.UserID, req.TargetID)
	if err != nil {
		switch {
		case errors.Is(err, matchsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid unmatch request")
		case pgrepo.IsUnavailable(err):
			writeStoreUnavailable(w)
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to unmatch")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.UnmatchResponse{OK: true, Closed: closed})
}

func (h *MatchHandler) Block(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCH_SERVICE_UNAVAILABLE", "match service is unavailable")
		return
	}

	var req dto.BlockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if req.TargetID <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "target_id is required")
		return
	}

	if err := h.service.Block(r.Context(), identity.UserID, req.TargetID); err != nil {
		switch {
		case errors.Is(err, matchsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid block request")
		case pgrepo.IsUnavailable(err):
			writeStoreUnavailable(w)
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to block")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, struct {
		OK bool `json:"ok"`
	}{OK: true})
}
