package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/emberapp/backend/internal/domain/rules"
	pgrepo "github.com/emberapp/backend/internal/repo/postgres"
	entsvc "github.com/emberapp/backend/internal/services/entitlements"
	"github.com/emberapp/backend/internal/transport/http/dto"
	httperrors "github.com/emberapp/backend/internal/transport/http/errors"
)

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeBadRequest(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{Code: code, Message: message})
}

func writeUnauthorized(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{Code: code, Message: message})
}

func writeInternal(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{Code: code, Message: message})
}

func writeStoreUnavailable(w http.ResponseWriter) {
	httperrors.Write(w, http.StatusServiceUnavailable, httperrors.APIError{
		Code:    "STORE_UNAVAILABLE",
		Message: "storage is temporarily unavailable, retry later",
	})
}

// readWithRetry re-runs an idempotent read when the store reads as
// unavailable, with a short doubling delay between attempts. Only reads go
// through here: a write retried after an ambiguous failure could land twice.
func readWithRetry[T any](ctx context.Context, fetch func(context.Context) (T, error)) (T, error) {
	var result T
	var err error

	delay := 50 * time.Millisecond
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return result, err
			case <-time.After(delay):
			}
			delay *= 2
		}

		result, err = fetch(ctx)
		if err == nil || !pgrepo.IsUnavailable(err) {
			return result, err
		}
	}

	return result, err
}

func mapQuota(q entsvc.ConsumeResult) *dto.QuotaPayload {
	if q.Kind == "" {
		return nil
	}
	remaining := q.Remaining
	if q.Cap == rules.Unlimited {
		remaining = rules.Unlimited
	}
	return &dto.QuotaPayload{
		Kind:      string(q.Kind),
		Cap:       q.Cap,
		Used:      q.Used,
		Remaining: remaining,
		ResetAt:   q.ResetAt.UTC().Format(time.RFC3339),
	}
}
