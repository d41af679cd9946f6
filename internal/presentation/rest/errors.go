package rest

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/bibbank/bib/services/deadstock-service/internal/domain/model"
)

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrNotReady), errors.Is(err, model.ErrDataUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, model.ErrInvalidAttribute):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	} else {
		logger.WarnContext(r.Context(), "request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
