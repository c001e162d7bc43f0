// Package memory is an in-process implementation of the repositories. It keeps
// the transactional contract of the postgres adapter: rows locked "for update"
// stay locked until commit or rollback, and a rollback undoes every write.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/iho/debtledger/internal/domain"
	"github.com/iho/debtledger/internal/usecase"
)

var errTxDone = errors.New("transaction already closed")

// Store holds all rows and the lock table.
//
// Writes land in the row maps as soon as they are made. Readers that do not
// hold a debt's lock see the committed image kept in debtImages until the
// writing transaction ends.
type Store struct {
	mu         sync.Mutex
	debts      map[string]*domain.Debt
	debtImages map[string]*domain.Debt
	additions  map[string]*domain.Addition
	payments   map[string]*domain.Payment
	disputes   map[string]*domain.Dispute
	activities []*domain.Activity
	events     []*domain.OutboxEvent
	locks      map[string]*lockEntry
}

// lockEntry is one row lock. refs counts holders and waiters; the entry is
// dropped from the table when it reaches zero.
type lockEntry struct {
	ch   chan struct{}
	refs int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		debts:      make(map[string]*domain.Debt),
		debtImages: make(map[string]*domain.Debt),
		additions:  make(map[string]*domain.Addition),
		payments:   make(map[string]*domain.Payment),
		disputes:   make(map[string]*domain.Dispute),
		locks:      make(map[string]*lockEntry),
	}
}

func (s *Store) acquireRef(key string) *lockEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.locks[key]
	if !ok {
		e = &lockEntry{ch: make(chan struct{}, 1)}
		s.locks[key] = e
	}
	e.refs++

	return e
}

func (s *Store) dropRef(key string, e *lockEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.refs--
	if e.refs == 0 && s.locks[key] == e {
		delete(s.locks, key)
	}
}

// keepDebtImage saves the committed image of a debt before t first writes it.
// Callers hold s.mu.
func (s *Store) keepDebtImage(t *Tx, id string) {
	if _, ok := s.debtImages[id]; ok {
		return
	}

	s.debtImages[id] = s.debts[id]
	t.settle = append(t.settle, func() { delete(s.debtImages, id) })
}

// committedDebt returns the debt as other transactions see it. Callers hold s.mu.
func (s *Store) committedDebt(id string) (*domain.Debt, bool) {
	if img, ok := s.debtImages[id]; ok {
		return img, img != nil
	}

	d, ok := s.debts[id]
	return d, ok
}

// visibleDebts calls fn for every debt visible to t: the latest row when t
// holds its lock, the committed image otherwise. t may be nil. Callers hold s.mu.
func (s *Store) visibleDebts(t *Tx, fn func(*domain.Debt)) {
	for id, d := range s.debts {
		if t == nil || !t.holds(debtKey(id)) {
			if img, ok := s.debtImages[id]; ok {
				d = img
			}
		}
		if d != nil {
			fn(d)
		}
	}

	for id, img := range s.debtImages {
		if _, ok := s.debts[id]; ok || img == nil {
			continue
		}
		if t != nil && t.holds(debtKey(id)) {
			continue
		}
		fn(img)
	}
}

// TxManager implements usecase.TransactionManager.
type TxManager struct {
	store *Store
}

// NewTxManager creates a new TxManager.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Begin starts a new transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &Tx{store: m.store, held: make(map[string]*lockEntry)}, nil
}

// Tx is an in-memory transaction: an undo log plus the row locks it holds.
type Tx struct {
	store  *Store
	held   map[string]*lockEntry
	undo   []func()
	settle []func()
	done   bool
}

func (t *Tx) holds(key string) bool {
	_, ok := t.held[key]
	return ok
}

// lock blocks until key is held by this transaction or ctx ends.
func (t *Tx) lock(ctx context.Context, key string) error {
	if t.done {
		return errTxDone
	}
	if t.holds(key) {
		return nil
	}

	e := t.store.acquireRef(key)
	select {
	case e.ch <- struct{}{}:
		t.held[key] = e
		return nil
	case <-ctx.Done():
		t.store.dropRef(key, e)
		return ctx.Err()
	}
}

// unlock releases a key this transaction locked but never wrote under.
func (t *Tx) unlock(key string) {
	e, ok := t.held[key]
	if !ok {
		return
	}

	<-e.ch
	delete(t.held, key)
	t.store.dropRef(key, e)
}

// record applies a write under the store mutex and remembers how to undo it.
func (t *Tx) record(apply func(), undo func()) error {
	if t.done {
		return errTxDone
	}

	t.store.mu.Lock()
	apply()
	t.store.mu.Unlock()

	t.undo = append(t.undo, undo)
	return nil
}

// Commit commits the transaction.
func (t *Tx) Commit(ctx context.Context) error {
	if t.done {
		return errTxDone
	}

	t.done = true

	t.store.mu.Lock()
	t.runSettle()
	t.store.mu.Unlock()

	t.release()

	return nil
}

// Rollback rolls back the transaction. It is a no-op after Commit.
func (t *Tx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}

	t.done = true

	t.store.mu.Lock()
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.runSettle()
	t.store.mu.Unlock()

	t.release()

	return nil
}

func (t *Tx) runSettle() {
	for _, fn := range t.settle {
		fn()
	}
	t.settle = nil
}

func (t *Tx) release() {
	for key := range t.held {
		t.unlock(key)
	}
	t.undo = nil
}

func asTx(tx usecase.Transaction) *Tx {
	return tx.(*Tx)
}
