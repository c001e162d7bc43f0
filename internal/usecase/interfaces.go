package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/debtledger/internal/domain"
)

// ErrCacheMiss is returned by Cache.Get when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// DebtRepository defines data access for debts.
type DebtRepository interface {
	Create(ctx context.Context, tx Transaction, debt *domain.Debt) error
	GetByID(ctx context.Context, id string) (*domain.Debt, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Debt, error)
	// LockRelationship serializes creates for one (creditor, counterparty, direction)
	// key until the transaction ends.
	LockRelationship(ctx context.Context, tx Transaction, key string) error
	// FindOpenForUpdate returns the newest unsettled debt for the triple, locked,
	// or domain.ErrDebtNotFound. Disputed debts are skipped unless includeDisputed is set.
	FindOpenForUpdate(ctx context.Context, tx Transaction, creditorID, counterpartyID string, direction domain.Direction, includeDisputed bool) (*domain.Debt, error)
	Update(ctx context.Context, tx Transaction, debt *domain.Debt) error
	Delete(ctx context.Context, tx Transaction, id string) error
	List(ctx context.Context, filter domain.DebtFilter) ([]*domain.Debt, error)
	ListAll(ctx context.Context, limit, offset int) ([]*domain.Debt, error)
}

// AdditionRepository defines data access for additions.
type AdditionRepository interface {
	Create(ctx context.Context, tx Transaction, addition *domain.Addition) error
	// Delete removes the addition if it belongs to debtID, otherwise it
	// returns domain.ErrAdditionNotFound.
	Delete(ctx context.Context, tx Transaction, debtID, id string) (*domain.Addition, error)
	ListByDebt(ctx context.Context, debtID string) ([]*domain.Addition, error)
	ListByDebtTx(ctx context.Context, tx Transaction, debtID string) ([]*domain.Addition, error)
	SumByDebts(ctx context.Context, debtIDs []string) (map[string]decimal.Decimal, error)
}

// PaymentRepository defines data access for payments.
type PaymentRepository interface {
	Create(ctx context.Context, tx Transaction, payment *domain.Payment) error
	ListByDebt(ctx context.Context, debtID string) ([]*domain.Payment, error)
	ListByDebtTx(ctx context.Context, tx Transaction, debtID string) ([]*domain.Payment, error)
	SumByDebts(ctx context.Context, debtIDs []string) (map[string]decimal.Decimal, error)
}

// DisputeRepository defines data access for disputes.
type DisputeRepository interface {
	Create(ctx context.Context, tx Transaction, dispute *domain.Dispute) error
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Dispute, error)
	// GetOpenByDebt returns the unresolved dispute of a debt or domain.ErrDisputeNotFound.
	GetOpenByDebt(ctx context.Context, tx Transaction, debtID string) (*domain.Dispute, error)
	Resolve(ctx context.Context, tx Transaction, dispute *domain.Dispute) error
	ListByDebt(ctx context.Context, debtID string) ([]*domain.Dispute, error)
}

// ActivityRepository defines data access for the activity log.
type ActivityRepository interface {
	Create(ctx context.Context, activity *domain.Activity) error
	List(ctx context.Context, filter domain.ActivityFilter) ([]*domain.Activity, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error)
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient storage errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyPending is the value held under an idempotency key while the
// first request carrying it is still running.
const IdempotencyPending = "processing"

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a claimed key so the request can be retried.
	Release(ctx context.Context, key string) error
}
