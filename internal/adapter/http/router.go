package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/debtledger/internal/adapter/http/handler"
	"github.com/iho/debtledger/internal/adapter/http/middleware"
	"github.com/iho/debtledger/internal/infrastructure/auth"
	"github.com/iho/debtledger/internal/infrastructure/metrics"
	"github.com/iho/debtledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	DebtHandler    *handler.DebtHandler
	DisputeHandler *handler.DisputeHandler
	SummaryHandler *handler.SummaryHandler
	LedgerHandler  *handler.LedgerHandler
	HealthHandler  *handler.HealthHandler

	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration

	// JWTManager enables Bearer authentication. Without it the acting
	// owner is read from the X-Owner header.
	JWTManager *auth.JWTManager

	RateLimiter *middleware.RateLimiter
	Logger      zerolog.Logger
	Metrics     *metrics.Metrics

	// Gatherer is exposed on /metrics when set.
	Gatherer prometheus.Gatherer
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	if cfg.Metrics != nil {
		r.Use(middleware.MetricsMiddleware(cfg.Metrics))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.ActorMiddleware(cfg.JWTManager, cfg.Metrics))

		// Idempotency is keyed per owner, so it runs after the actor is known
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Debts
		r.Route("/debts", func(r chi.Router) {
			r.Post("/", cfg.DebtHandler.Create)
			r.Get("/", cfg.DebtHandler.List)
			r.Post("/loans", cfg.DebtHandler.CreateLoan)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", cfg.DebtHandler.Get)
				r.Put("/", cfg.DebtHandler.Update)
				r.Delete("/", cfg.DebtHandler.Delete)
				r.Post("/add", cfg.DebtHandler.AddAmount)
				r.Post("/pay", cfg.DebtHandler.RecordPayment)
				r.Delete("/additions/{additionID}", cfg.DebtHandler.ReverseAddition)
				r.Get("/activity", cfg.DebtHandler.Activity)
				r.Get("/events", cfg.DebtHandler.Events)

				// Disputes
				r.Post("/disputes", cfg.DisputeHandler.Raise)
				r.Post("/disputes/{disputeID}/resolve", cfg.DisputeHandler.Resolve)
			})
		})

		// Summaries
		r.Get("/summary", cfg.SummaryHandler.Summary)
		r.Get("/counterparties/{counterpartyID}/summary", cfg.SummaryHandler.Counterparty)

		// Ledger
		r.Get("/ledger/reconciliation", cfg.LedgerHandler.Reconciliation)
	})

	return r
}
