package memory

import (
	"context"
	"sort"

	"github.com/iho/debtledger/internal/domain"
	"github.com/iho/debtledger/internal/usecase"
)

// DisputeRepository implements usecase.DisputeRepository.
type DisputeRepository struct {
	store *Store
}

// NewDisputeRepository creates a new DisputeRepository.
func NewDisputeRepository(store *Store) *DisputeRepository {
	return &DisputeRepository{store: store}
}

// Create inserts a dispute.
func (r *DisputeRepository) Create(ctx context.Context, tx usecase.Transaction, dispute *domain.Dispute) error {
	row := *dispute
	return asTx(tx).record(
		func() { r.store.disputes[row.ID] = &row },
		func() { delete(r.store.disputes, row.ID) },
	)
}

// GetByIDForUpdate locks and returns a dispute.
func (r *DisputeRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Dispute, error) {
	if err := asTx(tx).lock(ctx, "dispute:"+id); err != nil {
		return nil, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	d, ok := r.store.disputes[id]
	if !ok {
		return nil, domain.ErrDisputeNotFound
	}

	c := *d
	return &c, nil
}

// GetOpenByDebt returns the unresolved dispute of a debt.
func (r *DisputeRepository) GetOpenByDebt(ctx context.Context, tx usecase.Transaction, debtID string) (*domain.Dispute, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, d := range r.store.disputes {
		if d.DebtID == debtID && d.IsOpen() {
			c := *d
			return &c, nil
		}
	}

	return nil, domain.ErrDisputeNotFound
}

// Resolve stores the resolution fields of a dispute.
func (r *DisputeRepository) Resolve(ctx context.Context, tx usecase.Transaction, dispute *domain.Dispute) error {
	r.store.mu.Lock()
	previous, ok := r.store.disputes[dispute.ID]
	r.store.mu.Unlock()
	if !ok {
		return domain.ErrDisputeNotFound
	}

	row := *dispute
	return asTx(tx).record(
		func() { r.store.disputes[row.ID] = &row },
		func() { r.store.disputes[row.ID] = previous },
	)
}

// ListByDebt lists the disputes of a debt, oldest first.
func (r *DisputeRepository) ListByDebt(ctx context.Context, debtID string) ([]*domain.Dispute, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var rows []*domain.Dispute
	for _, d := range r.store.disputes {
		if d.DebtID == debtID {
			c := *d
			rows = append(rows, &c)
		}
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.Before(rows[j].CreatedAt) })

	return rows, nil
}
