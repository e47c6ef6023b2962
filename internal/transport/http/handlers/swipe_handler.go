package handlers

import (
	"errors"
	"net/http"
	"strings"

	authsvc "github.com/emberapp/backend/internal/services/auth"
	swipesvc "github.com/emberapp/backend/internal/services/swipes"
	"github.com/emberapp/backend/internal/transport/http/dto"
	httperrors "github.com/emberapp/backend/internal/transport/http/errors"

	pgrepo "github.com/emberapp/backend/internal/repo/postgres"
)

type SwipeHandler struct {
	service *swipesvc.Service
}

func NewSwipeHandler(service *swipesvc.Service) *SwipeHandler {
	return &SwipeHandler{service: service}
}

func (h *SwipeHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "SWIPE_SERVICE_UNAVAILABLE", "swipe service is unavailable")
		return
	}

	var req dto.SwipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if req.TargetID <= 0 || strings.TrimSpace(req.Decision) == "" {
		writeBadRequest(w, "VALIDATION_ERROR", "target_id and decision are required")
		return
	}

	result, err := h.service.Swipe(r.Context(), identity.UserID, req.TargetID, req.Decision)
	if err != nil {
		switch {
		case errors.Is(err, swipesvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid swipe request")
		case errors.Is(err, swipesvc.ErrUnsupportedDecision):
			writeBadRequest(w, "VALIDATION_ERROR", "unsupported decision")
		case errors.Is(err, swipesvc.ErrTargetBlocked):
			httperrors.Write(w, http.StatusForbidden, httperrors.APIError{
				Code:    "TARGET_BLOCKED",
				Message: "target is not available",
			})
		case errors.Is(err, swipesvc.ErrDuplicateSwipe):
			httperrors.Write(w, http.StatusConflict, httperrors.APIError{
				Code:    "ALREADY_SWIPED",
				Message: "a decision for this target is already recorded",
			})
		case errors.Is(err, swipesvc.ErrQuotaExhausted):
			httperrors.Write(w, http.StatusTooManyRequests, httperrors.QuotaError{
				Code:    "QUOTA_EXHAUSTED",
				Message: "allowance for this period is used up",
				ResetAt: result.Quota.ResetAt.UTC(),
			})
		case pgrepo.IsUnavailable(err):
			writeStoreUnavailable(w)
		default:
			if tf, ok := swipesvc.IsTooFast(err); ok {
				httperrors.Write(w, http.StatusTooManyRequests, httperrors.RateLimitError{
					Code:          "TOO_FAST",
					Message:       "too many swipes, slow down",
					RetryAfterSec: tf.RetryAfter(),
				})
				return
			}
			writeInternal(w, "INTERNAL_ERROR", "failed to process swipe")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.SwipeResponse{
		OK:      true,
		Matched: result.Matched,
		MatchID: result.MatchID,
		Quota:   mapQuota(result.Quota),
	})
}
