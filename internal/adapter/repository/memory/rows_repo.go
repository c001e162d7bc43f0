package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/iho/debtledger/internal/domain"
	"github.com/iho/debtledger/internal/usecase"
)

// AdditionRepository implements usecase.AdditionRepository.
type AdditionRepository struct {
	store *Store
}

// NewAdditionRepository creates a new AdditionRepository.
func NewAdditionRepository(store *Store) *AdditionRepository {
	return &AdditionRepository{store: store}
}

// Create inserts an addition.
func (r *AdditionRepository) Create(ctx context.Context, tx usecase.Transaction, addition *domain.Addition) error {
	row := *addition
	return asTx(tx).record(
		func() { r.store.additions[row.ID] = &row },
		func() { delete(r.store.additions, row.ID) },
	)
}

// Delete removes an addition of debtID.
func (r *AdditionRepository) Delete(ctx context.Context, tx usecase.Transaction, debtID, id string) (*domain.Addition, error) {
	r.store.mu.Lock()
	existing, ok := r.store.additions[id]
	r.store.mu.Unlock()

	if !ok || existing.DebtID != debtID {
		return nil, domain.ErrAdditionNotFound
	}

	err := asTx(tx).record(
		func() { delete(r.store.additions, id) },
		func() { r.store.additions[id] = existing },
	)
	if err != nil {
		return nil, err
	}

	removed := *existing
	return &removed, nil
}

// ListByDebt lists the additions of a debt in creation order.
func (r *AdditionRepository) ListByDebt(ctx context.Context, debtID string) ([]*domain.Addition, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var rows []*domain.Addition
	for _, a := range r.store.additions {
		if a.DebtID == debtID {
			c := *a
			rows = append(rows, &c)
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].ID < rows[j].ID
		}
		return rows[i].CreatedAt.Before(rows[j].CreatedAt)
	})

	return rows, nil
}

// ListByDebtTx lists additions inside a transaction.
func (r *AdditionRepository) ListByDebtTx(ctx context.Context, tx usecase.Transaction, debtID string) ([]*domain.Addition, error) {
	return r.ListByDebt(ctx, debtID)
}

// SumByDebts totals additions per debt.
func (r *AdditionRepository) SumByDebts(ctx context.Context, debtIDs []string) (map[string]decimal.Decimal, error) {
	wanted := idSet(debtIDs)
	totals := make(map[string]decimal.Decimal, len(debtIDs))

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, a := range r.store.additions {
		if wanted[a.DebtID] {
			totals[a.DebtID] = totals[a.DebtID].Add(a.Amount)
		}
	}

	return totals, nil
}

// PaymentRepository implements usecase.PaymentRepository.
type PaymentRepository struct {
	store *Store
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(store *Store) *PaymentRepository {
	return &PaymentRepository{store: store}
}

// Create inserts a payment.
func (r *PaymentRepository) Create(ctx context.Context, tx usecase.Transaction, payment *domain.Payment) error {
	row := *payment
	return asTx(tx).record(
		func() { r.store.payments[row.ID] = &row },
		func() { delete(r.store.payments, row.ID) },
	)
}

// ListByDebt lists the payments of a debt in creation order.
func (r *PaymentRepository) ListByDebt(ctx context.Context, debtID string) ([]*domain.Payment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var rows []*domain.Payment
	for _, p := range r.store.payments {
		if p.DebtID == debtID {
			c := *p
			rows = append(rows, &c)
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].ID < rows[j].ID
		}
		return rows[i].CreatedAt.Before(rows[j].CreatedAt)
	})

	return rows, nil
}

// ListByDebtTx lists payments inside a transaction.
func (r *PaymentRepository) ListByDebtTx(ctx context.Context, tx usecase.Transaction, debtID string) ([]*domain.Payment, error) {
	return r.ListByDebt(ctx, debtID)
}

// SumByDebts totals payments per debt.
func (r *PaymentRepository) SumByDebts(ctx context.Context, debtIDs []string) (map[string]decimal.Decimal, error) {
	wanted := idSet(debtIDs)
	totals := make(map[string]decimal.Decimal, len(debtIDs))

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, p := range r.store.payments {
		if wanted[p.DebtID] {
			totals[p.DebtID] = totals[p.DebtID].Add(p.Amount)
		}
	}

	return totals, nil
}

func idSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
