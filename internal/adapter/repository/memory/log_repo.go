package memory

import (
	"context"
	"time"

	"github.com/iho/debtledger/internal/domain"
	"github.com/iho/debtledger/internal/usecase"
)

// ActivityRepository implements usecase.ActivityRepository.
type ActivityRepository struct {
	store *Store
}

// NewActivityRepository creates a new ActivityRepository.
func NewActivityRepository(store *Store) *ActivityRepository {
	return &ActivityRepository{store: store}
}

// Create appends an activity record.
func (r *ActivityRepository) Create(ctx context.Context, activity *domain.Activity) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	row := *activity
	r.store.activities = append(r.store.activities, &row)

	return nil
}

// List returns activity records, newest first.
func (r *ActivityRepository) List(ctx context.Context, filter domain.ActivityFilter) ([]*domain.Activity, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var rows []*domain.Activity
	for i := len(r.store.activities) - 1; i >= 0; i-- {
		a := r.store.activities[i]
		if filter.ActorID != "" && a.ActorID != filter.ActorID {
			continue
		}
		if filter.DebtID != "" && a.DebtID != filter.DebtID {
			continue
		}
		if filter.Action != "" && a.Action != filter.Action {
			continue
		}
		c := *a
		rows = append(rows, &c)
	}

	return page(rows, filter.Limit, filter.Offset), nil
}

// OutboxRepository implements usecase.OutboxRepository.
type OutboxRepository struct {
	store *Store
}

// NewOutboxRepository creates a new OutboxRepository.
func NewOutboxRepository(store *Store) *OutboxRepository {
	return &OutboxRepository{store: store}
}

// Create appends an event within a transaction.
func (r *OutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	row := *event
	s := r.store

	return asTx(tx).record(
		func() { s.events = append(s.events, &row) },
		func() {
			for i, e := range s.events {
				if e.ID == row.ID {
					s.events = append(s.events[:i], s.events[i+1:]...)
					return
				}
			}
		},
	)
}

// GetUnpublished returns unpublished events, oldest first.
func (r *OutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var rows []*domain.OutboxEvent
	for _, e := range r.store.events {
		if !e.Published {
			c := *e
			rows = append(rows, &c)
		}
	}

	return page(rows, limit, 0), nil
}

// MarkPublished marks an event as published.
func (r *OutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, e := range r.store.events {
		if e.ID == id {
			at := publishedAt
			e.Published = true
			e.PublishedAt = &at
		}
	}

	return nil
}

// GetByAggregate returns the events of one aggregate, oldest first.
func (r *OutboxRepository) GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var rows []*domain.OutboxEvent
	for _, e := range r.store.events {
		if e.AggregateType == aggregateType && e.AggregateID == aggregateID {
			c := *e
			rows = append(rows, &c)
		}
	}

	return page(rows, limit, offset), nil
}

// DeletePublished drops published events older than before.
func (r *OutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	kept := r.store.events[:0]
	for _, e := range r.store.events {
		if e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before) {
			continue
		}
		kept = append(kept, e)
	}
	r.store.events = kept

	return nil
}
