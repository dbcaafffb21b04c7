package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/billwatch/internal/adapter/http/handler"
	"github.com/iho/billwatch/internal/adapter/http/middleware"
	"github.com/iho/billwatch/internal/infrastructure/metrics"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	StatusHandler *handler.StatusHandler
	HealthHandler *handler.HealthHandler
	Logger        zerolog.Logger
	Metrics       *metrics.Metrics
}

// NewRouter creates a new HTTP router for the ops surface.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.NewMetricsMiddleware(cfg.Metrics).Wrap)
	r.Use(chimiddleware.Recoverer)

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	// Prometheus scrape endpoint
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/services", cfg.StatusHandler.ListServices)
		r.Get("/alerts", cfg.StatusHandler.ListAlerts)
	})

	return r
}
