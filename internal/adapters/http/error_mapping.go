package httpadapter

import (
	"log/slog"
	"net/http"

	"github.com/mzheleznov/rxpilot/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case domain.IsKind(err, domain.ErrNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeDomainError translates a usecase error into the response envelope.
// Internal failures answer with a generic message; the real error only goes
// to the log so raw error text never becomes the client-facing contract.
func writeDomainError(w http.ResponseWriter, err error) {
	status := mapErrorToHTTPStatus(err)
	if status == http.StatusInternalServerError {
		slog.Error("request_failed", "error", err)
		writeError(w, status, "internal server error", "")
		return
	}
	writeError(w, status, err.Error(), "")
}
