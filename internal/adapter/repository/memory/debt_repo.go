package memory

import (
	"context"
	"sort"

	"github.com/iho/debtledger/internal/domain"
	"github.com/iho/debtledger/internal/usecase"
)

// DebtRepository implements usecase.DebtRepository.
type DebtRepository struct {
	store *Store
}

// NewDebtRepository creates a new DebtRepository.
func NewDebtRepository(store *Store) *DebtRepository {
	return &DebtRepository{store: store}
}

func debtKey(id string) string { return "debt:" + id }

func cloneDebt(d *domain.Debt) *domain.Debt {
	c := *d
	return &c
}

// Create inserts a debt.
func (r *DebtRepository) Create(ctx context.Context, tx usecase.Transaction, debt *domain.Debt) error {
	t := asTx(tx)
	if err := t.lock(ctx, debtKey(debt.ID)); err != nil {
		return err
	}

	row := cloneDebt(debt)
	return t.record(
		func() {
			r.store.keepDebtImage(t, row.ID)
			r.store.debts[row.ID] = row
		},
		func() { delete(r.store.debts, row.ID) },
	)
}

// GetByID retrieves the committed state of a debt.
func (r *DebtRepository) GetByID(ctx context.Context, id string) (*domain.Debt, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	d, ok := r.store.committedDebt(id)
	if !ok {
		return nil, domain.ErrDebtNotFound
	}

	return cloneDebt(d), nil
}

// GetByIDForUpdate locks the debt for the rest of the transaction and returns
// its latest state.
func (r *DebtRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Debt, error) {
	if err := asTx(tx).lock(ctx, debtKey(id)); err != nil {
		return nil, err
	}

	return r.latest(id)
}

func (r *DebtRepository) latest(id string) (*domain.Debt, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	d, ok := r.store.debts[id]
	if !ok {
		return nil, domain.ErrDebtNotFound
	}

	return cloneDebt(d), nil
}

// LockRelationship serializes creates for one relationship key.
func (r *DebtRepository) LockRelationship(ctx context.Context, tx usecase.Transaction, key string) error {
	return asTx(tx).lock(ctx, "relationship:"+key)
}

// FindOpenForUpdate returns the newest open debt of the relationship, locked.
// The candidate is picked from committed state and checked again once its lock
// is held; a debt settled or moved in the meantime is skipped and the scan
// starts over.
func (r *DebtRepository) FindOpenForUpdate(
	ctx context.Context,
	tx usecase.Transaction,
	creditorID, counterpartyID string,
	direction domain.Direction,
	includeDisputed bool,
) (*domain.Debt, error) {
	t := asTx(tx)
	open := func(d *domain.Debt) bool {
		if d.CreditorID != creditorID || d.CounterpartyID != counterpartyID || d.Direction != direction || d.Paid {
			return false
		}
		return includeDisputed || !d.Disputed
	}

	skipped := map[string]bool{}
	for {
		r.store.mu.Lock()
		var found *domain.Debt
		r.store.visibleDebts(t, func(d *domain.Debt) {
			if skipped[d.ID] || !open(d) {
				return
			}
			if found == nil || newer(d, found) {
				found = d
			}
		})
		r.store.mu.Unlock()

		if found == nil {
			return nil, domain.ErrDebtNotFound
		}

		key := debtKey(found.ID)
		held := t.holds(key)
		if err := t.lock(ctx, key); err != nil {
			return nil, err
		}

		current, err := r.latest(found.ID)
		if err == nil && open(current) {
			return current, nil
		}

		if !held {
			t.unlock(key)
		}
		skipped[found.ID] = true
	}
}

// Update replaces the stored debt.
func (r *DebtRepository) Update(ctx context.Context, tx usecase.Transaction, debt *domain.Debt) error {
	t := asTx(tx)
	if err := t.lock(ctx, debtKey(debt.ID)); err != nil {
		return err
	}

	r.store.mu.Lock()
	previous, ok := r.store.debts[debt.ID]
	r.store.mu.Unlock()
	if !ok {
		return domain.ErrDebtNotFound
	}

	row := cloneDebt(debt)
	return t.record(
		func() {
			r.store.keepDebtImage(t, row.ID)
			r.store.debts[row.ID] = row
		},
		func() { r.store.debts[row.ID] = previous },
	)
}

// Delete removes the debt and every row that belongs to it.
func (r *DebtRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	t := asTx(tx)
	if err := t.lock(ctx, debtKey(id)); err != nil {
		return err
	}

	s := r.store
	s.mu.Lock()
	debt, ok := s.debts[id]
	additions := map[string]*domain.Addition{}
	payments := map[string]*domain.Payment{}
	disputes := map[string]*domain.Dispute{}
	for k, a := range s.additions {
		if a.DebtID == id {
			additions[k] = a
		}
	}
	for k, p := range s.payments {
		if p.DebtID == id {
			payments[k] = p
		}
	}
	for k, d := range s.disputes {
		if d.DebtID == id {
			disputes[k] = d
		}
	}
	s.mu.Unlock()

	if !ok {
		return domain.ErrDebtNotFound
	}

	return t.record(
		func() {
			s.keepDebtImage(t, id)
			delete(s.debts, id)
			for k := range additions {
				delete(s.additions, k)
			}
			for k := range payments {
				delete(s.payments, k)
			}
			for k := range disputes {
				delete(s.disputes, k)
			}
		},
		func() {
			s.debts[id] = debt
			for k, a := range additions {
				s.additions[k] = a
			}
			for k, p := range payments {
				s.payments[k] = p
			}
			for k, d := range disputes {
				s.disputes[k] = d
			}
		},
	)
}

// List returns the debts matching filter, newest first.
func (r *DebtRepository) List(ctx context.Context, filter domain.DebtFilter) ([]*domain.Debt, error) {
	r.store.mu.Lock()
	var matched []*domain.Debt
	r.store.visibleDebts(nil, func(d *domain.Debt) {
		if filter.Matches(d) {
			matched = append(matched, cloneDebt(d))
		}
	})
	r.store.mu.Unlock()

	sortNewestFirst(matched)

	return page(matched, filter.Limit, filter.Offset), nil
}

// ListAll returns every debt, newest first.
func (r *DebtRepository) ListAll(ctx context.Context, limit, offset int) ([]*domain.Debt, error) {
	return r.List(ctx, domain.DebtFilter{Limit: limit, Offset: offset})
}

func newer(a, b *domain.Debt) bool {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.ID > b.ID
	}
	return a.CreatedAt.After(b.CreatedAt)
}

func sortNewestFirst(debts []*domain.Debt) {
	sort.Slice(debts, func(i, j int) bool { return newer(debts[i], debts[j]) })
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}

	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}

	return items
}
