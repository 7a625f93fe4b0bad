package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"chainapi/internal/application"
	"chainapi/internal/domain"

	"github.com/pkg/errors"
)

var errRequestInProgress = errors.New("a request with this Idempotency-Key is still in progress")

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	TxHash  string `json:"tx_hash,omitempty"`
}

type errorBody struct {
	Error     errorDetail `json:"error"`
	RequestID string      `json:"request_id,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// respondError maps err onto a status and error code. Internal failures are
// logged and never echoed to the caller.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, detail := classify(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "request_id", requestIDFrom(r.Context()), "err", err)
	}
	respondJSON(w, status, errorBody{Error: detail, RequestID: requestIDFrom(r.Context())})
}

func classify(err error) (int, errorDetail) {
	var notFound *domain.EventNotFoundError
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, errorDetail{Code: "validation_error", Message: err.Error()}
	case errors.As(err, &notFound):
		return http.StatusUnprocessableEntity, errorDetail{Code: "event_not_found", Message: err.Error(), TxHash: notFound.TxHash}
	case errors.Is(err, domain.ErrEventNotFound):
		return http.StatusUnprocessableEntity, errorDetail{Code: "event_not_found", Message: err.Error()}
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusBadGateway, errorDetail{Code: "upstream_error", Message: err.Error()}
	case errors.Is(err, errRequestInProgress):
		return http.StatusConflict, errorDetail{Code: "request_in_progress", Message: err.Error()}
	case errors.Is(err, application.ErrJournalDisabled):
		return http.StatusServiceUnavailable, errorDetail{Code: "journal_disabled", Message: err.Error()}
	default:
		return http.StatusInternalServerError, errorDetail{Code: "internal_error", Message: "internal error"}
	}
}
