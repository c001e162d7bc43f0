package usecase

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/iho/debtledger/internal/domain"
	"github.com/iho/debtledger/internal/infrastructure/logger"
)

// DebtDetails is a debt as seen by one reader, with its rows.
type DebtDetails struct {
	View      domain.DebtView
	Additions []*domain.Addition
	Payments  []*domain.Payment
	Disputes  []*domain.Dispute
}

// ListDebtsInput represents input for listing debts.
type ListDebtsInput struct {
	CounterpartyID string
	Direction      string
	Status         string
	Limit          int
	Offset         int
}

// GetDebt returns a debt with its balance and rows. The counterparty owner
// gets the flipped view. The debt and its rows are read under the debt's row
// lock, so the flag and the balance always agree.
func (uc *DebtUseCase) GetDebt(ctx context.Context, actor domain.Actor, id string) (*DebtDetails, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	var state *ledgerState
	err := uc.inTx(ctx, func(txCtx context.Context, tx Transaction) error {
		debt, err := uc.debtRepo.GetByIDForUpdate(txCtx, tx, id)
		if err != nil {
			return err
		}

		if !debt.CanView(actor) {
			return domain.ErrForbidden
		}

		state, err = uc.loadRows(txCtx, tx, debt)
		return err
	})
	if err != nil {
		return nil, err
	}

	var disputes []*domain.Dispute
	if uc.disputeRepo != nil {
		disputes, err = uc.disputeRepo.ListByDebt(ctx, id)
		if err != nil {
			return nil, err
		}
	}

	return &DebtDetails{
		View:      domain.ViewFor(actor, state.debt, state.balance()),
		Additions: state.additions,
		Payments:  state.payments,
		Disputes:  disputes,
	}, nil
}

// ListDebts lists the debts the actor holds as creditor or as linked
// counterparty, each in the actor's perspective.
func (uc *DebtUseCase) ListDebts(ctx context.Context, actor domain.Actor, input ListDebtsInput) ([]domain.DebtView, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	filter := domain.DebtFilter{
		ActorID:        actor.ID,
		CounterpartyID: input.CounterpartyID,
	}

	if input.Direction != "" {
		direction, err := domain.ParseDirection(input.Direction)
		if err != nil {
			return nil, err
		}
		filter.Direction = direction
	}

	status, err := domain.ParseDebtStatus(input.Status)
	if err != nil {
		return nil, err
	}
	filter.Status = status

	filter.Limit, filter.Offset, _ = domain.ValidatePagination(input.Limit, input.Offset)

	debts, err := uc.debtRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return uc.views(ctx, actor, debts)
}

// Summary returns what the actor is owed and what the actor owes across
// open debts. Results are cached per actor and invalidated on mutation.
func (uc *DebtUseCase) Summary(ctx context.Context, actor domain.Actor) (*domain.Summary, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	key := summaryCacheKey(actor.ID)
	if cached, ok := uc.cachedSummary(ctx, key); ok {
		return cached, nil
	}

	summary := &domain.Summary{ActorID: actor.ID}
	now := uc.now()

	err := uc.scan(ctx, domain.DebtFilter{ActorID: actor.ID, Status: domain.DebtStatusOpen}, func(debts []*domain.Debt) error {
		views, err := uc.views(ctx, actor, debts)
		if err != nil {
			return err
		}
		for _, v := range views {
			summary.Add(v, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.storeSummary(ctx, key, summary)

	return summary, nil
}

// CounterpartySummary aggregates all debts the actor holds as creditor
// against one counterparty.
func (uc *DebtUseCase) CounterpartySummary(ctx context.Context, actor domain.Actor, counterpartyID string) (*domain.CounterpartySummary, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if counterpartyID == "" {
		return nil, domain.ErrMissingCounterparty
	}

	summary := &domain.CounterpartySummary{CounterpartyID: counterpartyID}

	filter := domain.DebtFilter{ActorID: actor.ID, CounterpartyID: counterpartyID, Status: domain.DebtStatusAll}
	err := uc.scan(ctx, filter, func(debts []*domain.Debt) error {
		owned := debts[:0:0]
		for _, d := range debts {
			if d.IsCreditor(actor) {
				owned = append(owned, d)
			}
		}

		balances, err := uc.balances(ctx, owned)
		if err != nil {
			return err
		}
		for _, d := range owned {
			summary.Add(d, balances[d.ID])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return summary, nil
}

// scan pages through every debt matching filter.
func (uc *DebtUseCase) scan(ctx context.Context, filter domain.DebtFilter, fn func([]*domain.Debt) error) error {
	filter.Limit = scanPageSize
	filter.Offset = 0

	for {
		debts, err := uc.debtRepo.List(ctx, filter)
		if err != nil {
			return err
		}

		if len(debts) > 0 {
			if err := fn(debts); err != nil {
				return err
			}
		}

		if len(debts) < filter.Limit {
			return nil
		}
		filter.Offset += filter.Limit
	}
}

func (uc *DebtUseCase) views(ctx context.Context, actor domain.Actor, debts []*domain.Debt) ([]domain.DebtView, error) {
	balances, err := uc.balances(ctx, debts)
	if err != nil {
		return nil, err
	}

	views := make([]domain.DebtView, 0, len(debts))
	for _, d := range debts {
		views = append(views, domain.ViewFor(actor, d, balances[d.ID]))
	}

	return views, nil
}

// balances derives the balance of each debt from per-debt row totals.
func (uc *DebtUseCase) balances(ctx context.Context, debts []*domain.Debt) (map[string]domain.Balance, error) {
	return deriveBalances(ctx, uc.additionRepo, uc.paymentRepo, debts)
}

func deriveBalances(ctx context.Context, additionRepo AdditionRepository, paymentRepo PaymentRepository, debts []*domain.Debt) (map[string]domain.Balance, error) {
	result := make(map[string]domain.Balance, len(debts))
	if len(debts) == 0 {
		return result, nil
	}

	ids := make([]string, len(debts))
	for i, d := range debts {
		ids[i] = d.ID
	}

	additionTotals, err := additionRepo.SumByDebts(ctx, ids)
	if err != nil {
		return nil, err
	}

	paymentTotals, err := paymentRepo.SumByDebts(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, d := range debts {
		result[d.ID] = domain.CalculateBalance(
			d.BaseAmount,
			[]decimal.Decimal{additionTotals[d.ID]},
			[]decimal.Decimal{paymentTotals[d.ID]},
		)
	}

	return result, nil
}

func summaryCacheKey(actorID string) string {
	return "summary:" + actorID
}

func (uc *DebtUseCase) cachedSummary(ctx context.Context, key string) (*domain.Summary, bool) {
	if uc.cache == nil {
		return nil, false
	}

	data, err := uc.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			uc.cacheFailure(ctx, "get", err)
		}
		uc.countCacheLookup("miss")
		return nil, false
	}

	var summary domain.Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		uc.countCacheLookup("miss")
		return nil, false
	}

	uc.countCacheLookup("hit")
	return &summary, true
}

func (uc *DebtUseCase) storeSummary(ctx context.Context, key string, summary *domain.Summary) {
	if uc.cache == nil {
		return
	}

	data, err := json.Marshal(summary)
	if err != nil {
		return
	}

	if err := uc.cache.Set(ctx, key, data, uc.summaryTTL); err != nil {
		uc.cacheFailure(ctx, "set", err)
	}
}

// invalidateSummaries drops the cached summaries of both parties of a debt.
func (uc *DebtUseCase) invalidateSummaries(ctx context.Context, actorIDs ...string) {
	if uc.cache == nil {
		return
	}

	for _, id := range actorIDs {
		if id == "" {
			continue
		}
		if err := uc.cache.Delete(ctx, summaryCacheKey(id)); err != nil {
			uc.cacheFailure(ctx, "delete", err)
		}
	}
}

func (uc *DebtUseCase) cacheFailure(ctx context.Context, operation string, err error) {
	log := logger.FromContext(ctx, uc.logger)
	log.Warn().Err(err).Str("operation", operation).Msg("summary cache unavailable")

	if uc.metrics != nil {
		uc.metrics.RedisErrors.WithLabelValues(operation).Inc()
	}
}

func (uc *DebtUseCase) countCacheLookup(result string) {
	if uc.metrics != nil {
		uc.metrics.CacheHits.WithLabelValues(result).Inc()
	}
}
