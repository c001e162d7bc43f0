package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/debtledger/internal/domain"
	"github.com/iho/debtledger/internal/infrastructure/postgres/generated"
	"github.com/iho/debtledger/internal/usecase"
)

// DisputeRepository implements usecase.DisputeRepository.
type DisputeRepository struct {
	queries *generated.Queries
}

// NewDisputeRepository creates a new DisputeRepository.
func NewDisputeRepository(pool *pgxpool.Pool) *DisputeRepository {
	return newDisputeRepository(pool)
}

func newDisputeRepository(db generated.DBTX) *DisputeRepository {
	return &DisputeRepository{queries: generated.New(db)}
}

// Create inserts a dispute.
func (r *DisputeRepository) Create(ctx context.Context, tx usecase.Transaction, dispute *domain.Dispute) error {
	return queriesFor(tx).CreateDispute(ctx, generated.CreateDisputeParams{
		ID:        dispute.ID,
		DebtID:    dispute.DebtID,
		RaisedBy:  dispute.RaisedBy,
		Reason:    dispute.Reason,
		Message:   dispute.Message,
		CreatedAt: timeToPgTimestamptz(dispute.CreatedAt),
	})
}

// GetByIDForUpdate retrieves a dispute with a row lock.
func (r *DisputeRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Dispute, error) {
	row, err := queriesFor(tx).GetDisputeByIDForUpdate(ctx, id)
	if err != nil {
		return nil, disputeError(err)
	}

	return rowToDispute(row), nil
}

// GetOpenByDebt returns the unresolved dispute of a debt.
func (r *DisputeRepository) GetOpenByDebt(ctx context.Context, tx usecase.Transaction, debtID string) (*domain.Dispute, error) {
	row, err := queriesFor(tx).GetOpenDisputeByDebt(ctx, debtID)
	if err != nil {
		return nil, disputeError(err)
	}

	return rowToDispute(row), nil
}

// Resolve stores the resolution of a dispute.
func (r *DisputeRepository) Resolve(ctx context.Context, tx usecase.Transaction, dispute *domain.Dispute) error {
	n, err := queriesFor(tx).ResolveDispute(ctx, generated.ResolveDisputeParams{
		ID:             dispute.ID,
		ResolvedAt:     optionalTimestamptz(dispute.ResolvedAt),
		ResolvedBy:     dispute.ResolvedBy,
		ResolutionNote: dispute.ResolutionNote,
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrDisputeNotFound
	}

	return nil
}

// ListByDebt lists the disputes of a debt, oldest first.
func (r *DisputeRepository) ListByDebt(ctx context.Context, debtID string) ([]*domain.Dispute, error) {
	rows, err := r.queries.ListDisputesByDebt(ctx, debtID)
	if err != nil {
		return nil, err
	}

	disputes := make([]*domain.Dispute, 0, len(rows))
	for _, row := range rows {
		disputes = append(disputes, rowToDispute(row))
	}

	return disputes, nil
}

func disputeError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrDisputeNotFound
	}
	return err
}

func rowToDispute(row generated.Dispute) *domain.Dispute {
	return &domain.Dispute{
		ID:             row.ID,
		DebtID:         row.DebtID,
		RaisedBy:       row.RaisedBy,
		Reason:         row.Reason,
		Message:        row.Message,
		CreatedAt:      row.CreatedAt.Time,
		ResolvedAt:     timestamptzPtr(row.ResolvedAt),
		ResolvedBy:     row.ResolvedBy,
		ResolutionNote: row.ResolutionNote,
	}
}
