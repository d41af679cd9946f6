// Package rest exposes the dead-stock reports over HTTP.
package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const serviceName = "deadstock-service"

// RouterConfig holds the cross-cutting HTTP settings.
type RouterConfig struct {
	CORSOrigins []string
	// RateLimit is requests per minute per client IP; 0 disables limiting.
	RateLimit int
}

// NewRouter builds the HTTP handler tree.
func NewRouter(cfg RouterConfig, reports *ReportHandler, health *HealthHandler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"Content-Disposition", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/healthz", health.liveness)
	r.Get("/readyz", health.readiness)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if cfg.RateLimit > 0 {
			r.Use(httprate.LimitByIP(cfg.RateLimit, time.Minute))
		}

		r.Get("/", reports.root)
		r.Route("/api", func(r chi.Router) {
			r.Get("/products", reports.products)
			r.Get("/summary", reports.summary)
			r.Get("/reports/risk_by_category", reports.riskByCategory)
			r.Get("/reports/deadstock_over_time", reports.deadStockOverTime)
			r.Get("/reports/products.xlsx", reports.exportProducts)
			r.Get("/model", reports.modelInfo)
			r.Post("/model/train", reports.retrain)
		})
	})

	return r
}
