package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	DebtsCreated      *prometheus.CounterVec
	DebtsMerged       prometheus.Counter
	AdditionsRecorded prometheus.Counter
	AdditionsReversed prometheus.Counter
	PaymentsRecorded  prometheus.Counter
	DebtsSettled      prometheus.Counter
	DebtsReopened     prometheus.Counter
	DebtsDeleted      prometheus.Counter
	PaymentRejections prometheus.Counter
	MutationDuration  *prometheus.HistogramVec
	MutationAmount    *prometheus.HistogramVec
	MutationErrors    *prometheus.CounterVec

	// Dispute metrics
	DisputesRaised   prometheus.Counter
	DisputesResolved prometheus.Counter

	// Reconciliation metrics
	ReconciliationMismatches prometheus.Gauge

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBConnections prometheus.Gauge
	DBRetries     *prometheus.CounterVec

	// Redis metrics
	CacheHits   *prometheus.CounterVec
	RedisErrors *prometheus.CounterVec

	// Event metrics
	EventsPublished *prometheus.CounterVec

	// Authentication metrics
	AuthFailures *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec

	// Activity metrics
	ActivityRecords *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates the metrics and registers them on reg.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Ledger metrics
		DebtsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "debtledger_debts_created_total",
				Help: "Total number of debts created by direction",
			},
			[]string{"direction"},
		),
		DebtsMerged: factory.NewCounter(prometheus.CounterOpts{
			Name: "debtledger_debts_merged_total",
			Help: "Total number of creates folded into an existing open debt",
		}),
		AdditionsRecorded: factory.NewCounter(prometheus.CounterOpts{
			Name: "debtledger_additions_total",
			Help: "Total number of additions recorded",
		}),
		AdditionsReversed: factory.NewCounter(prometheus.CounterOpts{
			Name: "debtledger_additions_reversed_total",
			Help: "Total number of additions reversed",
		}),
		PaymentsRecorded: factory.NewCounter(prometheus.CounterOpts{
			Name: "debtledger_payments_total",
			Help: "Total number of payments recorded",
		}),
		DebtsSettled: factory.NewCounter(prometheus.CounterOpts{
			Name: "debtledger_debts_settled_total",
			Help: "Total number of debts that reached settlement",
		}),
		DebtsReopened: factory.NewCounter(prometheus.CounterOpts{
			Name: "debtledger_debts_reopened_total",
			Help: "Total number of settled debts reopened",
		}),
		DebtsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "debtledger_debts_deleted_total",
			Help: "Total number of debts deleted",
		}),
		PaymentRejections: factory.NewCounter(prometheus.CounterOpts{
			Name: "debtledger_payment_rejections_total",
			Help: "Total number of payments rejected for exceeding the balance",
		}),
		MutationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "debtledger_mutation_duration_seconds",
				Help:    "Duration of ledger mutations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		MutationAmount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "debtledger_mutation_amount",
				Help:    "Amounts moved by ledger mutations",
				Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
			},
			[]string{"operation"},
		),
		MutationErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "debtledger_mutation_errors_total",
				Help: "Total number of failed ledger mutations by operation",
			},
			[]string{"operation"},
		),

		// Dispute metrics
		DisputesRaised: factory.NewCounter(prometheus.CounterOpts{
			Name: "debtledger_disputes_raised_total",
			Help: "Total number of disputes raised",
		}),
		DisputesResolved: factory.NewCounter(prometheus.CounterOpts{
			Name: "debtledger_disputes_resolved_total",
			Help: "Total number of disputes resolved",
		}),

		ReconciliationMismatches: factory.NewGauge(prometheus.GaugeOpts{
			Name: "debtledger_reconciliation_mismatches",
			Help: "Debts whose stored settlement flag disagrees with the derived balance at the last check",
		}),

		// API metrics
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "debtledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "debtledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Database metrics
		DBConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "debtledger_db_connections",
			Help: "Current number of database connections",
		}),
		DBRetries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "debtledger_db_retries_total",
				Help: "Total transaction retries by SQLSTATE",
			},
			[]string{"code"},
		),

		// Redis metrics
		CacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "debtledger_cache_lookups_total",
				Help: "Total summary cache lookups by result",
			},
			[]string{"result"},
		),
		RedisErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "debtledger_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),

		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "debtledger_events_published_total",
				Help: "Total outbox events published by type",
			},
			[]string{"event_type"},
		),

		// Authentication metrics
		AuthFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "debtledger_auth_failures_total",
				Help: "Total authentication failures",
			},
			[]string{"reason"},
		),

		// Rate limiting metrics
		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "debtledger_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"ip"},
		),

		// Activity metrics
		ActivityRecords: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "debtledger_activity_records_total",
				Help: "Total activity records by action and status",
			},
			[]string{"action", "status"},
		),
	}
}
