package handlers

import (
	"errors"
	"net/http"
	"time"

	pgrepo "github.com/emberapp/backend/internal/repo/postgres"
	authsvc "github.com/emberapp/backend/internal/services/auth"
	boostsvc "github.com/emberapp/backend/internal/services/boosts"
	"github.com/emberapp/backend/internal/transport/http/dto"
	httperrors "github.com/emberapp/backend/internal/transport/http/errors"
)

type BoostHandler struct {
	service *boostsvc.Service
}

type boostResponsePayload struct {
	OK         bool              `json:"ok"`
	BoostUntil time.Time         `json:"boost_until"`
	Quota      *dto.QuotaPayload `json:"quota,omitempty"`
}

func NewBoostHandler(service *boostsvc.Service) *BoostHandler {
	return &BoostHandler{service: service}
}

func (h *BoostHandler) Activate(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "BOOST_SERVICE_UNAVAILABLE", "boost service is unavailable")
		return
	}

	result, err := h.service.Activate(r.Context(), identity.UserID)
	if err != nil {
		switch {
		case errors.Is(err, boostsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid boost request")
		case errors.Is(err, boostsvc.ErrQuotaExhausted):
			httperrors.Write(w, http.StatusTooManyRequests, httperrors.QuotaError{
				Code:    "QUOTA_EXHAUSTED",
				Message: "boost allowance for this period is used up",
				ResetAt: result.Quota.ResetAt.UTC(),
			})
		case pgrepo.IsUnavailable(err):
			writeStoreUnavailable(w)
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to activate boost")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, boostResponsePayload{
		OK:         true,
		BoostUntil: result.BoostUntil.UTC(),
		Quota:      mapQuota(result.Quota),
	})
}
