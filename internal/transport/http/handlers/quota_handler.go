package handlers

import (
	"context"
	"net/http"
	"time"

	pgrepo "github.com/emberapp/backend/internal/repo/postgres"
	authsvc "github.com/emberapp/backend/internal/services/auth"
	entsvc "github.com/emberapp/backend/internal/services/entitlements"
	"github.com/emberapp/backend/internal/transport/http/dto"
	httperrors "github.com/emberapp/backend/internal/transport/http/errors"
)

type QuotaHandler struct {
	service *entsvc.Service
}

type quotaSnapshotPayload struct {
	Tier       string           `json:"tier"`
	Priority   bool             `json:"priority"`
	Likes      dto.QuotaPayload `json:"likes"`
	SuperLikes dto.QuotaPayload `json:"super_likes"`
	Boosts     dto.QuotaPayload `json:"boosts"`
	BoostUntil *time.Time       `json:"boost_until,omitempty"`
}

func NewQuotaHandler(service *entsvc.Service) *QuotaHandler {
	return &QuotaHandler{service: service}
}

func (h *QuotaHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "QUOTA_SERVICE_UNAVAILABLE", "quota service is unavailable")
		return
	}

	snapshot, err := readWithRetry(r.Context(), func(ctx context.Context) (entsvc.Snapshot, error) {
		return h.service.Peek(ctx, identity.UserID)
	})
	if err != nil {
		if pgrepo.IsUnavailable(err) {
			writeStoreUnavailable(w)
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to load quota")
		return
	}

	httperrors.Write(w, http.StatusOK, quotaSnapshotPayload{
		Tier:       string(snapshot.Tier),
		Priority:   snapshot.Priority,
		Likes:      mapAllowance(snapshot.Likes),
		SuperLikes: mapAllowance(snapshot.SuperLikes),
		Boosts:     mapAllowance(snapshot.Boosts),
		BoostUntil: snapshot.BoostUntil,
	})
}

func mapAllowance(a entsvc.Allowance) dto.QuotaPayload {
	return dto.QuotaPayload{
		Kind:      string(a.Kind),
		Cap:       a.Cap,
		Used:      a.Used,
		Remaining: a.Remaining,
		ResetAt:   a.ResetAt.UTC().Format(time.RFC3339),
	}
}
