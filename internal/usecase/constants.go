package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// DefaultSummaryCacheTTL is used when no TTL is configured.
	DefaultSummaryCacheTTL = 30 * time.Second

	// scanPageSize bounds each page read by summaries and reconciliation.
	scanPageSize = 500
)
