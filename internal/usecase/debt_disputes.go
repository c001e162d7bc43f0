package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/debtledger/internal/domain"
)

// RaiseDisputeInput represents input for disputing a debt.
type RaiseDisputeInput struct {
	Reason  string
	Message string
}

// RaiseDispute lets the counterparty owner object to a debt. A debt carries
// at most one open dispute; the balance is not affected.
func (uc *DebtUseCase) RaiseDispute(ctx context.Context, actor domain.Actor, debtID string, input RaiseDisputeInput) (*domain.Dispute, error) {
	start := time.Now()

	if err := requireActor(actor); err != nil {
		return nil, err
	}

	input.Reason = strings.TrimSpace(input.Reason)
	if err := domain.ValidateDisputeReason(input.Reason); err != nil {
		return nil, err
	}
	if err := domain.ValidateNotes(input.Message); err != nil {
		return nil, err
	}

	var dispute *domain.Dispute
	var debt *domain.Debt

	err := uc.inTx(ctx, func(txCtx context.Context, tx Transaction) error {
		locked, err := uc.debtRepo.GetByIDForUpdate(txCtx, tx, debtID)
		if err != nil {
			return err
		}
		if !locked.IsCounterparty(actor) {
			return domain.ErrForbidden
		}

		_, err = uc.disputeRepo.GetOpenByDebt(txCtx, tx, debtID)
		switch {
		case err == nil:
			return domain.ErrDisputeAlreadyOpen
		case !errors.Is(err, domain.ErrDisputeNotFound):
			return err
		}

		now := uc.now()
		created := &domain.Dispute{
			ID:        uc.idGen.Generate(),
			DebtID:    debtID,
			RaisedBy:  actor.ID,
			Reason:    input.Reason,
			Message:   input.Message,
			CreatedAt: now,
		}
		if err := uc.disputeRepo.Create(txCtx, tx, created); err != nil {
			return err
		}

		locked.Disputed = true
		locked.UpdatedAt = now
		if err := uc.debtRepo.Update(txCtx, tx, locked); err != nil {
			return err
		}

		err = uc.emit(txCtx, tx, created.ID, domain.AggregateTypeDispute, domain.EventTypeDisputeRaised, domain.DisputeEvent{
			DisputeID: created.ID,
			DebtID:    debtID,
			ActorID:   actor.ID,
			Reason:    created.Reason,
		})
		if err != nil {
			return err
		}

		dispute = created
		debt = locked
		return nil
	})
	uc.observe("dispute_raise", start, decimal.Zero, err)
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.DisputesRaised.Inc()
	}
	uc.afterCommit(ctx, debt, &domain.Activity{
		ActorID:    actor.ID,
		Action:     domain.ActivityDisputeRaise,
		DebtID:     debtID,
		ResourceID: dispute.ID,
		Details:    domain.JSON{"reason": dispute.Reason},
	})

	return dispute, nil
}

// ResolveDispute closes an open dispute. Either party of the debt may resolve it.
func (uc *DebtUseCase) ResolveDispute(ctx context.Context, actor domain.Actor, debtID, disputeID, note string) (*domain.Dispute, error) {
	start := time.Now()

	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := domain.ValidateNotes(note); err != nil {
		return nil, err
	}

	var dispute *domain.Dispute
	var debt *domain.Debt

	err := uc.inTx(ctx, func(txCtx context.Context, tx Transaction) error {
		locked, err := uc.debtRepo.GetByIDForUpdate(txCtx, tx, debtID)
		if err != nil {
			return err
		}
		if !locked.CanView(actor) {
			return domain.ErrForbidden
		}

		found, err := uc.disputeRepo.GetByIDForUpdate(txCtx, tx, disputeID)
		if err != nil {
			return err
		}
		if found.DebtID != debtID {
			return domain.ErrDisputeNotFound
		}

		now := uc.now()
		if err := found.Resolve(actor, note, now); err != nil {
			return err
		}
		if err := uc.disputeRepo.Resolve(txCtx, tx, found); err != nil {
			return err
		}

		locked.Disputed = false
		locked.UpdatedAt = now
		if err := uc.debtRepo.Update(txCtx, tx, locked); err != nil {
			return err
		}

		err = uc.emit(txCtx, tx, found.ID, domain.AggregateTypeDispute, domain.EventTypeDisputeResolved, domain.DisputeEvent{
			DisputeID: found.ID,
			DebtID:    debtID,
			ActorID:   actor.ID,
		})
		if err != nil {
			return err
		}

		dispute = found
		debt = locked
		return nil
	})
	uc.observe("dispute_resolve", start, decimal.Zero, err)
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.DisputesResolved.Inc()
	}
	uc.afterCommit(ctx, debt, &domain.Activity{
		ActorID:    actor.ID,
		Action:     domain.ActivityDisputeResolve,
		DebtID:     debtID,
		ResourceID: dispute.ID,
		Details:    domain.JSON{"note": note},
	})

	return dispute, nil
}
