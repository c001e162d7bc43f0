package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/debtledger/internal/domain"
	"github.com/iho/debtledger/internal/infrastructure/postgres/generated"
	"github.com/iho/debtledger/internal/usecase"
)

// AdditionRepository implements usecase.AdditionRepository.
type AdditionRepository struct {
	queries *generated.Queries
}

// NewAdditionRepository creates a new AdditionRepository.
func NewAdditionRepository(pool *pgxpool.Pool) *AdditionRepository {
	return newAdditionRepository(pool)
}

func newAdditionRepository(db generated.DBTX) *AdditionRepository {
	return &AdditionRepository{queries: generated.New(db)}
}

// Create inserts an addition.
func (r *AdditionRepository) Create(ctx context.Context, tx usecase.Transaction, addition *domain.Addition) error {
	return queriesFor(tx).CreateAddition(ctx, generated.CreateAdditionParams{
		ID:        addition.ID,
		DebtID:    addition.DebtID,
		Amount:    decimalToNumeric(addition.Amount),
		Notes:     addition.Notes,
		CreatedAt: timeToPgTimestamptz(addition.CreatedAt),
	})
}

// Delete removes an addition of debtID and returns it.
func (r *AdditionRepository) Delete(ctx context.Context, tx usecase.Transaction, debtID, id string) (*domain.Addition, error) {
	row, err := queriesFor(tx).DeleteAddition(ctx, generated.DeleteAdditionParams{ID: id, DebtID: debtID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAdditionNotFound
		}
		return nil, err
	}

	return rowToAddition(row), nil
}

// ListByDebt lists the additions of a debt in creation order.
func (r *AdditionRepository) ListByDebt(ctx context.Context, debtID string) ([]*domain.Addition, error) {
	return listAdditions(ctx, r.queries, debtID)
}

// ListByDebtTx lists additions inside a transaction.
func (r *AdditionRepository) ListByDebtTx(ctx context.Context, tx usecase.Transaction, debtID string) ([]*domain.Addition, error) {
	return listAdditions(ctx, queriesFor(tx), debtID)
}

// SumByDebts totals additions per debt in one query.
func (r *AdditionRepository) SumByDebts(ctx context.Context, debtIDs []string) (map[string]decimal.Decimal, error) {
	rows, err := r.queries.SumAdditionsByDebts(ctx, debtIDs)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		totals[row.DebtID] = numericToDecimal(row.Total)
	}

	return totals, nil
}

func listAdditions(ctx context.Context, q *generated.Queries, debtID string) ([]*domain.Addition, error) {
	rows, err := q.ListAdditionsByDebt(ctx, debtID)
	if err != nil {
		return nil, err
	}

	additions := make([]*domain.Addition, 0, len(rows))
	for _, row := range rows {
		additions = append(additions, rowToAddition(row))
	}

	return additions, nil
}

func rowToAddition(row generated.DebtAddition) *domain.Addition {
	return &domain.Addition{
		ID:        row.ID,
		DebtID:    row.DebtID,
		Amount:    numericToDecimal(row.Amount),
		Notes:     row.Notes,
		CreatedAt: row.CreatedAt.Time,
	}
}

// PaymentRepository implements usecase.PaymentRepository.
type PaymentRepository struct {
	queries *generated.Queries
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return newPaymentRepository(pool)
}

func newPaymentRepository(db generated.DBTX) *PaymentRepository {
	return &PaymentRepository{queries: generated.New(db)}
}

// Create inserts a payment.
func (r *PaymentRepository) Create(ctx context.Context, tx usecase.Transaction, payment *domain.Payment) error {
	return queriesFor(tx).CreatePayment(ctx, generated.CreatePaymentParams{
		ID:        payment.ID,
		DebtID:    payment.DebtID,
		Amount:    decimalToNumeric(payment.Amount),
		Notes:     payment.Notes,
		CreatedAt: timeToPgTimestamptz(payment.CreatedAt),
	})
}

// ListByDebt lists the payments of a debt in creation order.
func (r *PaymentRepository) ListByDebt(ctx context.Context, debtID string) ([]*domain.Payment, error) {
	return listPayments(ctx, r.queries, debtID)
}

// ListByDebtTx lists payments inside a transaction.
func (r *PaymentRepository) ListByDebtTx(ctx context.Context, tx usecase.Transaction, debtID string) ([]*domain.Payment, error) {
	return listPayments(ctx, queriesFor(tx), debtID)
}

// SumByDebts totals payments per debt in one query.
func (r *PaymentRepository) SumByDebts(ctx context.Context, debtIDs []string) (map[string]decimal.Decimal, error) {
	rows, err := r.queries.SumPaymentsByDebts(ctx, debtIDs)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		totals[row.DebtID] = numericToDecimal(row.Total)
	}

	return totals, nil
}

func listPayments(ctx context.Context, q *generated.Queries, debtID string) ([]*domain.Payment, error) {
	rows, err := q.ListPaymentsByDebt(ctx, debtID)
	if err != nil {
		return nil, err
	}

	payments := make([]*domain.Payment, 0, len(rows))
	for _, row := range rows {
		payments = append(payments, &domain.Payment{
			ID:        row.ID,
			DebtID:    row.DebtID,
			Amount:    numericToDecimal(row.Amount),
			Notes:     row.Notes,
			CreatedAt: row.CreatedAt.Time,
		})
	}

	return payments, nil
}
