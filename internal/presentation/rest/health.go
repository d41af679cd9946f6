package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ReadinessChecker reports whether the service can answer scoring requests.
type ReadinessChecker interface {
	Ready() bool
}

// HealthHandler serves liveness and readiness probes over HTTP.
type HealthHandler struct {
	ready  ReadinessChecker
	logger *slog.Logger
}

// NewHealthHandler creates a health check HTTP handler.
func NewHealthHandler(ready ReadinessChecker, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{ready: ready, logger: logger}
}

func (h *HealthHandler) liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": serviceName,
	})
}

// readiness succeeds only once a model has been trained.
func (h *HealthHandler) readiness(w http.ResponseWriter, _ *http.Request) {
	if !h.ready.Ready() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  "not_ready",
			"service": serviceName,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ready",
		"service": serviceName,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck
}
