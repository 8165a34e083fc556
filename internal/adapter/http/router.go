package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/cantina/internal/adapter/http/handler"
	"github.com/iho/cantina/internal/adapter/http/middleware"
	"github.com/iho/cantina/internal/domain"
	"github.com/iho/cantina/internal/infrastructure/auth"
	"github.com/iho/cantina/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler        *handler.AccountHandler
	LedgerHandler         *handler.LedgerHandler
	EntryHandler          *handler.EntryHandler
	StatisticsHandler     *handler.StatisticsHandler
	MaintenanceHandler    *handler.MaintenanceHandler
	ReconciliationHandler *handler.ReconciliationHandler
	HealthHandler         *handler.HealthHandler

	// IdempotencyStore enables response replay for Idempotency-Key requests.
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration

	// JWTManager enables bearer token authentication. Without it the
	// actor is taken from the X-Actor-* headers.
	JWTManager *auth.JWTManager

	RateLimiter    *middleware.RateLimiter
	MetricsHandler http.Handler
	Logger         zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Metrics)

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	metricsHandler := cfg.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.JWTManager != nil {
			r.Use(middleware.AuthMiddleware(cfg.JWTManager))
		} else {
			r.Use(middleware.HeaderActor)
		}

		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Limit)
		}

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotency := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger)
			r.Use(idempotency.Wrap)
		}

		// Accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Register)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Delete("/{id}", cfg.LedgerHandler.Remove)
			r.Post("/{id}/credits", cfg.LedgerHandler.Credit)
			r.Post("/{id}/debits", cfg.LedgerHandler.Debit)
			r.Put("/{id}/limit", cfg.LedgerHandler.SetLimit)
			r.Get("/{id}/entries", cfg.EntryHandler.ListByAccount)
		})

		r.Get("/entries/{id}", cfg.EntryHandler.Get)
		r.Get("/statistics", cfg.StatisticsHandler.Get)

		// Maintenance
		r.Route("/maintenance", func(r chi.Router) {
			r.Use(middleware.RequireRole(domain.RoleAdmin))
			r.Get("/orphans", cfg.MaintenanceHandler.ListOrphans)
			r.Post("/orphans/purge", cfg.MaintenanceHandler.PurgeOrphans)
			if cfg.ReconciliationHandler != nil {
				r.Get("/reconciliation", cfg.ReconciliationHandler.Reconcile)
			}
		})
	})

	return r
}
