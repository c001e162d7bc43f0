package usecase

import (
	"context"

	"github.com/iho/debtledger/internal/domain"
)

// ListActivity returns the activity records of one debt, newest first.
// Both parties of the debt may read it.
func (uc *DebtUseCase) ListActivity(ctx context.Context, actor domain.Actor, debtID string, limit, offset int) ([]*domain.Activity, error) {
	if _, err := uc.visibleDebt(ctx, actor, debtID); err != nil {
		return nil, err
	}

	limit, offset, _ = domain.ValidatePagination(limit, offset)

	return uc.activityRepo.List(ctx, domain.ActivityFilter{
		DebtID: debtID,
		Limit:  limit,
		Offset: offset,
	})
}

// ListEvents returns the outbox events written for one debt in the order
// they were produced.
func (uc *DebtUseCase) ListEvents(ctx context.Context, actor domain.Actor, debtID string, limit, offset int) ([]*domain.OutboxEvent, error) {
	if _, err := uc.visibleDebt(ctx, actor, debtID); err != nil {
		return nil, err
	}

	limit, offset, _ = domain.ValidatePagination(limit, offset)

	return uc.outboxRepo.GetByAggregate(ctx, domain.AggregateTypeDebt, debtID, limit, offset)
}

func (uc *DebtUseCase) visibleDebt(ctx context.Context, actor domain.Actor, debtID string) (*domain.Debt, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	debt, err := uc.debtRepo.GetByID(ctx, debtID)
	if err != nil {
		return nil, err
	}

	if !debt.CanView(actor) {
		return nil, domain.ErrForbidden
	}

	return debt, nil
}
