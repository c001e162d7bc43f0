package postgres

import (
	"context"
	"errors"
	"math"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/debtledger/internal/domain"
	"github.com/iho/debtledger/internal/infrastructure/postgres/generated"
	"github.com/iho/debtledger/internal/usecase"
)

// DebtRepository implements usecase.DebtRepository.
type DebtRepository struct {
	queries *generated.Queries
}

// NewDebtRepository creates a new DebtRepository.
func NewDebtRepository(pool *pgxpool.Pool) *DebtRepository {
	return newDebtRepository(pool)
}

func newDebtRepository(db generated.DBTX) *DebtRepository {
	return &DebtRepository{queries: generated.New(db)}
}

// Create inserts a new debt.
func (r *DebtRepository) Create(ctx context.Context, tx usecase.Transaction, debt *domain.Debt) error {
	_, err := queriesFor(tx).CreateDebt(ctx, generated.CreateDebtParams{
		ID:                  debt.ID,
		CreditorID:          debt.CreditorID,
		CounterpartyID:      debt.CounterpartyID,
		CounterpartyOwnerID: debt.CounterpartyOwnerID,
		Direction:           string(debt.Direction),
		BaseAmount:          decimalToNumeric(debt.BaseAmount),
		OriginalAmount:      optionalNumeric(debt.OriginalAmount),
		Paid:                debt.Paid,
		PaidAt:              optionalTimestamptz(debt.PaidAt),
		DueDate:             optionalTimestamptz(debt.DueDate),
		Notes:               debt.Notes,
		Disputed:            debt.Disputed,
		CreatedAt:           timeToPgTimestamptz(debt.CreatedAt),
		UpdatedAt:           timeToPgTimestamptz(debt.UpdatedAt),
	})

	return err
}

// GetByID retrieves a debt by ID.
func (r *DebtRepository) GetByID(ctx context.Context, id string) (*domain.Debt, error) {
	row, err := r.queries.GetDebtByID(ctx, id)
	if err != nil {
		return nil, debtError(err)
	}

	return rowToDebt(row), nil
}

// GetByIDForUpdate retrieves a debt with a FOR UPDATE row lock.
func (r *DebtRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Debt, error) {
	row, err := queriesFor(tx).GetDebtByIDForUpdate(ctx, id)
	if err != nil {
		return nil, debtError(err)
	}

	return rowToDebt(row), nil
}

// LockRelationship takes a transaction-scoped advisory lock on the relationship key,
// so concurrent creates cannot both miss the open debt and insert two lines.
func (r *DebtRepository) LockRelationship(ctx context.Context, tx usecase.Transaction, key string) error {
	return queriesFor(tx).LockRelationship(ctx, key)
}

// FindOpenForUpdate returns the newest open debt of the relationship, locked.
func (r *DebtRepository) FindOpenForUpdate(
	ctx context.Context,
	tx usecase.Transaction,
	creditorID, counterpartyID string,
	direction domain.Direction,
	includeDisputed bool,
) (*domain.Debt, error) {
	row, err := queriesFor(tx).FindOpenDebtForUpdate(ctx, generated.FindOpenDebtForUpdateParams{
		CreditorID:     creditorID,
		CounterpartyID: counterpartyID,
		Direction:      string(direction),
		Column4:        includeDisputed,
	})
	if err != nil {
		return nil, debtError(err)
	}

	return rowToDebt(row), nil
}

// Update writes the mutable columns of a debt. BaseAmount is never written.
func (r *DebtRepository) Update(ctx context.Context, tx usecase.Transaction, debt *domain.Debt) error {
	n, err := queriesFor(tx).UpdateDebt(ctx, generated.UpdateDebtParams{
		ID:                  debt.ID,
		CounterpartyOwnerID: debt.CounterpartyOwnerID,
		OriginalAmount:      optionalNumeric(debt.OriginalAmount),
		Paid:                debt.Paid,
		PaidAt:              optionalTimestamptz(debt.PaidAt),
		DueDate:             optionalTimestamptz(debt.DueDate),
		Notes:               debt.Notes,
		Disputed:            debt.Disputed,
		UpdatedAt:           timeToPgTimestamptz(debt.UpdatedAt),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrDebtNotFound
	}

	return nil
}

// Delete removes a debt; additions, payments and disputes cascade.
func (r *DebtRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	n, err := queriesFor(tx).DeleteDebt(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrDebtNotFound
	}

	return nil
}

// List returns the debts visible to filter.ActorID, newest first.
func (r *DebtRepository) List(ctx context.Context, filter domain.DebtFilter) ([]*domain.Debt, error) {
	if filter.ActorID == "" {
		return r.ListAll(ctx, filter.Limit, filter.Offset)
	}

	rows, err := r.queries.ListDebtsForActor(ctx, generated.ListDebtsForActorParams{
		ActorID:        filter.ActorID,
		CounterpartyID: filter.CounterpartyID,
		Direction:      string(filter.Direction),
		Status:         string(filter.Status),
		RowLimit:       pageLimit(filter.Limit),
		RowOffset:      int32(filter.Offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToDebts(rows), nil
}

// ListAll returns every debt, newest first.
func (r *DebtRepository) ListAll(ctx context.Context, limit, offset int) ([]*domain.Debt, error) {
	rows, err := r.queries.ListAllDebts(ctx, generated.ListAllDebtsParams{
		Limit:  pageLimit(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToDebts(rows), nil
}

func debtError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrDebtNotFound
	}
	return err
}

func pageLimit(limit int) int32 {
	if limit <= 0 || limit > math.MaxInt32 {
		return math.MaxInt32
	}
	return int32(limit)
}

func rowsToDebts(rows []generated.Debt) []*domain.Debt {
	debts := make([]*domain.Debt, 0, len(rows))
	for _, row := range rows {
		debts = append(debts, rowToDebt(row))
	}
	return debts
}

func rowToDebt(row generated.Debt) *domain.Debt {
	return &domain.Debt{
		ID:                  row.ID,
		CreditorID:          row.CreditorID,
		CounterpartyID:      row.CounterpartyID,
		CounterpartyOwnerID: row.CounterpartyOwnerID,
		Direction:           domain.Direction(row.Direction),
		BaseAmount:          numericToDecimal(row.BaseAmount),
		OriginalAmount:      numericPtr(row.OriginalAmount),
		Paid:                row.Paid,
		PaidAt:              timestamptzPtr(row.PaidAt),
		DueDate:             timestamptzPtr(row.DueDate),
		Notes:               row.Notes,
		Disputed:            row.Disputed,
		CreatedAt:           row.CreatedAt.Time,
		UpdatedAt:           row.UpdatedAt.Time,
	}
}
