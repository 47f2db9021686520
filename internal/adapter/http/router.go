package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/zionledger/internal/adapter/http/handler"
	"github.com/iho/zionledger/internal/adapter/http/middleware"
	"github.com/iho/zionledger/internal/infrastructure/metrics"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	EntrySetHandler *handler.EntrySetHandler
	BalanceHandler  *handler.BalanceHandler
	EntryHandler    *handler.EntryHandler
	LedgerHandler   *handler.LedgerHandler
	HealthHandler   *handler.HealthHandler

	Logger         zerolog.Logger
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	RateLimiter    *middleware.RateLimiter
	InternalSecret string
}

// unauthenticatedPaths are reachable without the internal secret.
var unauthenticatedPaths = []string{"/health", "/ready", "/up", "/metrics"}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(cfg.Logger, unauthenticatedPaths...))
	r.Use(middleware.Recovery(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics, "/metrics"))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}
	r.Use(middleware.InternalSecret(cfg.InternalSecret, unauthenticatedPaths...))

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/up", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/entry_sets", func(r chi.Router) {
			r.Post("/", cfg.EntrySetHandler.Create)
			r.Get("/{id}", cfg.EntrySetHandler.Get)
		})

		r.Route("/accounts/{account_id}", func(r chi.Router) {
			r.Get("/balance", cfg.BalanceHandler.Get)
			r.Get("/entries", cfg.EntryHandler.ListByAccount)
		})

		r.Get("/balances/available", cfg.BalanceHandler.Available)
		r.Get("/ledger/consistency", cfg.LedgerHandler.CheckConsistency)
	})

	return r
}
