package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/debtledger/internal/domain"
	"github.com/iho/debtledger/internal/infrastructure/logger"
	"github.com/iho/debtledger/internal/infrastructure/metrics"
)

// DebtUseCase is the debt ledger engine. It owns every balance mutation:
// each one runs in a single transaction that locks the debt row, re-reads its
// additions and payments, recomputes the balance and persists the settlement flag.
type DebtUseCase struct {
	txManager    TransactionManager
	debtRepo     DebtRepository
	additionRepo AdditionRepository
	paymentRepo  PaymentRepository
	disputeRepo  DisputeRepository
	outboxRepo   OutboxRepository
	activityRepo ActivityRepository
	idGen        IDGenerator

	retrier          Retrier
	cache            Cache
	summaryTTL       time.Duration
	metrics          *metrics.Metrics
	logger           zerolog.Logger
	mergeIntoDispute bool
	now              func() time.Time
}

// DebtOption configures optional collaborators of DebtUseCase.
type DebtOption func(*DebtUseCase)

// WithRetrier retries whole transactions on transient storage errors.
func WithRetrier(r Retrier) DebtOption {
	return func(uc *DebtUseCase) { uc.retrier = r }
}

// WithSummaryCache caches per-actor summaries for ttl.
func WithSummaryCache(c Cache, ttl time.Duration) DebtOption {
	return func(uc *DebtUseCase) {
		uc.cache = c
		if ttl > 0 {
			uc.summaryTTL = ttl
		}
	}
}

// WithMetrics records engine metrics.
func WithMetrics(m *metrics.Metrics) DebtOption {
	return func(uc *DebtUseCase) { uc.metrics = m }
}

// WithLogger sets the logger used for best-effort side effects.
func WithLogger(l zerolog.Logger) DebtOption {
	return func(uc *DebtUseCase) { uc.logger = l }
}

// WithMergeIntoDisputed controls whether a create may fold into an open
// debt that has an unresolved dispute.
func WithMergeIntoDisputed(enabled bool) DebtOption {
	return func(uc *DebtUseCase) { uc.mergeIntoDispute = enabled }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) DebtOption {
	return func(uc *DebtUseCase) { uc.now = now }
}

// NewDebtUseCase creates a new DebtUseCase.
func NewDebtUseCase(
	txManager TransactionManager,
	debtRepo DebtRepository,
	additionRepo AdditionRepository,
	paymentRepo PaymentRepository,
	disputeRepo DisputeRepository,
	outboxRepo OutboxRepository,
	activityRepo ActivityRepository,
	idGen IDGenerator,
	opts ...DebtOption,
) *DebtUseCase {
	uc := &DebtUseCase{
		txManager:        txManager,
		debtRepo:         debtRepo,
		additionRepo:     additionRepo,
		paymentRepo:      paymentRepo,
		disputeRepo:      disputeRepo,
		outboxRepo:       outboxRepo,
		activityRepo:     activityRepo,
		idGen:            idGen,
		summaryTTL:       DefaultSummaryCacheTTL,
		logger:           zerolog.Nop(),
		mergeIntoDispute: true,
		now:              func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// CreateOutcome tells whether a create produced a new debt or folded into an existing one.
type CreateOutcome string

const (
	OutcomeDebt     CreateOutcome = "debt"
	OutcomeAddition CreateOutcome = "addition"
)

// CreateDebtInput represents input for creating a debt or loan.
type CreateDebtInput struct {
	CounterpartyID      string
	CounterpartyOwnerID string
	Amount              decimal.Decimal
	Direction           domain.Direction
	DueDate             *time.Time
	Notes               string
	CreatedAt           *time.Time
}

// CreateDebtResult is the outcome of CreateDebt.
type CreateDebtResult struct {
	Outcome  CreateOutcome
	Debt     *domain.Debt
	Addition *domain.Addition // set when the amount was merged into an existing debt
	Balance  domain.Balance
}

// AddAmountInput represents input for adding to a debt's principal.
type AddAmountInput struct {
	DebtID  string
	Amount  decimal.Decimal
	Notes   string
	AddedAt *time.Time
}

// AdditionResult is the outcome of AddAmount and ReverseAddition.
type AdditionResult struct {
	Debt     *domain.Debt
	Addition *domain.Addition
	Balance  domain.Balance
}

// RecordPaymentInput represents input for recording a payment.
type RecordPaymentInput struct {
	DebtID string
	Amount decimal.Decimal
	Notes  string
	PaidAt *time.Time
}

// PaymentResult is the outcome of RecordPayment.
type PaymentResult struct {
	Debt    *domain.Debt
	Payment *domain.Payment
	Balance domain.Balance
}

// ledgerState is a debt row locked for the current transaction together with
// the addition and payment rows read inside the same transaction.
type ledgerState struct {
	debt      *domain.Debt
	additions []*domain.Addition
	payments  []*domain.Payment
}

func (s *ledgerState) balance() domain.Balance {
	return domain.BalanceOf(s.debt, s.additions, s.payments)
}

type settlementChange int

const (
	settlementUnchanged settlementChange = iota
	settlementSettled
	settlementReopened
)

// CreateDebt records a new debt, or folds the amount into the open debt of the
// same (creditor, counterparty, direction) relationship.
func (uc *DebtUseCase) CreateDebt(ctx context.Context, actor domain.Actor, input CreateDebtInput) (*CreateDebtResult, error) {
	const op = "create"
	start := time.Now()

	if err := requireActor(actor); err != nil {
		return nil, err
	}

	if input.CounterpartyID == "" {
		return nil, domain.ErrMissingCounterparty
	}
	if err := domain.ValidateReference(input.CounterpartyID); err != nil {
		return nil, err
	}
	if input.CounterpartyOwnerID == actor.ID {
		return nil, domain.ErrSelfCounterparty
	}
	if input.Direction == "" {
		input.Direction = domain.DirectionDebt
	}
	if !input.Direction.IsValid() {
		return nil, domain.ErrInvalidDirection
	}
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}
	if err := domain.ValidateNotes(input.Notes); err != nil {
		return nil, err
	}

	var result *CreateDebtResult
	var change settlementChange

	err := uc.inTx(ctx, func(txCtx context.Context, tx Transaction) error {
		key := domain.RelationshipKey(actor.ID, input.CounterpartyID, input.Direction)
		if err := uc.debtRepo.LockRelationship(txCtx, tx, key); err != nil {
			return err
		}

		existing, err := uc.debtRepo.FindOpenForUpdate(txCtx, tx, actor.ID, input.CounterpartyID, input.Direction, uc.mergeIntoDispute)
		switch {
		case err == nil:
			state, err := uc.loadRows(txCtx, tx, existing)
			if err != nil {
				return err
			}
			if existing.CounterpartyOwnerID == "" && input.CounterpartyOwnerID != "" {
				existing.CounterpartyOwnerID = input.CounterpartyOwnerID
			}

			addition, balance, ch, err := uc.addLocked(txCtx, tx, state, input.Amount, input.Notes, input.CreatedAt)
			if err != nil {
				return err
			}

			result = &CreateDebtResult{Outcome: OutcomeAddition, Debt: state.debt, Addition: addition, Balance: balance}
			change = ch
			return nil

		case errors.Is(err, domain.ErrDebtNotFound):
			debt, err := uc.insertDebt(txCtx, tx, actor, input)
			if err != nil {
				return err
			}

			result = &CreateDebtResult{
				Outcome: OutcomeDebt,
				Debt:    debt,
				Balance: domain.CalculateBalance(debt.BaseAmount, nil, nil),
			}
			change = settlementUnchanged
			return nil

		default:
			return err
		}
	})
	uc.observe(op, start, input.Amount, err)
	if err != nil {
		return nil, err
	}

	if result.Outcome == OutcomeAddition {
		uc.countChange(change)
		if uc.metrics != nil {
			uc.metrics.DebtsMerged.Inc()
			uc.metrics.AdditionsRecorded.Inc()
		}
		uc.afterCommit(ctx, result.Debt, &domain.Activity{
			ActorID:    actor.ID,
			Action:     domain.ActivityDebtMerge,
			DebtID:     result.Debt.ID,
			ResourceID: result.Addition.ID,
			Amount:     amountPtr(input.Amount),
		})
		return result, nil
	}

	if uc.metrics != nil {
		uc.metrics.DebtsCreated.WithLabelValues(string(result.Debt.Direction)).Inc()
	}
	uc.afterCommit(ctx, result.Debt, &domain.Activity{
		ActorID: actor.ID,
		Action:  domain.ActivityDebtCreate,
		DebtID:  result.Debt.ID,
		Amount:  amountPtr(input.Amount),
		Details: domain.JSON{
			"counterparty_id": result.Debt.CounterpartyID,
			"direction":       string(result.Debt.Direction),
		},
	})

	return result, nil
}

func (uc *DebtUseCase) insertDebt(ctx context.Context, tx Transaction, actor domain.Actor, input CreateDebtInput) (*domain.Debt, error) {
	now := uc.now()
	createdAt := now
	if input.CreatedAt != nil {
		createdAt = input.CreatedAt.UTC()
	}

	debt := &domain.Debt{
		ID:                  uc.idGen.Generate(),
		CreditorID:          actor.ID,
		CounterpartyID:      input.CounterpartyID,
		CounterpartyOwnerID: input.CounterpartyOwnerID,
		Direction:           input.Direction,
		BaseAmount:          input.Amount,
		DueDate:             input.DueDate,
		Notes:               input.Notes,
		CreatedAt:           createdAt,
		UpdatedAt:           now,
	}

	if err := uc.debtRepo.Create(ctx, tx, debt); err != nil {
		return nil, err
	}

	err := uc.emit(ctx, tx, debt.ID, domain.AggregateTypeDebt, domain.EventTypeDebtCreated, domain.DebtCreatedEvent{
		DebtID:         debt.ID,
		CreditorID:     debt.CreditorID,
		CounterpartyID: debt.CounterpartyID,
		Direction:      string(debt.Direction),
		Amount:         debt.BaseAmount.String(),
		EventAt:        createdAt.Format(time.RFC3339),
	})
	if err != nil {
		return nil, err
	}

	return debt, nil
}

// AddAmount increases the principal of an existing debt. A settled debt is
// reopened when the new remaining balance exceeds the settlement tolerance.
func (uc *DebtUseCase) AddAmount(ctx context.Context, actor domain.Actor, input AddAmountInput) (*AdditionResult, error) {
	const op = "add"
	start := time.Now()

	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}
	if err := domain.ValidateNotes(input.Notes); err != nil {
		return nil, err
	}

	var result *AdditionResult
	var change settlementChange

	err := uc.inTx(ctx, func(txCtx context.Context, tx Transaction) error {
		state, err := uc.lockForCreditor(txCtx, tx, actor, input.DebtID)
		if err != nil {
			return err
		}

		addition, balance, ch, err := uc.addLocked(txCtx, tx, state, input.Amount, input.Notes, input.AddedAt)
		if err != nil {
			return err
		}

		result = &AdditionResult{Debt: state.debt, Addition: addition, Balance: balance}
		change = ch
		return nil
	})
	uc.observe(op, start, input.Amount, err)
	if err != nil {
		return nil, err
	}

	uc.countChange(change)
	if uc.metrics != nil {
		uc.metrics.AdditionsRecorded.Inc()
	}
	uc.afterCommit(ctx, result.Debt, &domain.Activity{
		ActorID:    actor.ID,
		Action:     domain.ActivityDebtAdd,
		DebtID:     result.Debt.ID,
		ResourceID: result.Addition.ID,
		Amount:     amountPtr(input.Amount),
	})

	return result, nil
}

func (uc *DebtUseCase) addLocked(
	ctx context.Context,
	tx Transaction,
	state *ledgerState,
	amount decimal.Decimal,
	notes string,
	at *time.Time,
) (*domain.Addition, domain.Balance, settlementChange, error) {
	now := uc.now()
	createdAt := now
	if at != nil {
		createdAt = at.UTC()
	}

	state.debt.CaptureOriginalAmount()

	addition := &domain.Addition{
		ID:        uc.idGen.Generate(),
		DebtID:    state.debt.ID,
		Amount:    amount,
		Notes:     notes,
		CreatedAt: createdAt,
	}
	if err := uc.additionRepo.Create(ctx, tx, addition); err != nil {
		return nil, domain.Balance{}, settlementUnchanged, err
	}
	state.additions = append(state.additions, addition)

	balance, change, err := uc.settle(ctx, tx, state, now)
	if err != nil {
		return nil, domain.Balance{}, settlementUnchanged, err
	}

	err = uc.emit(ctx, tx, state.debt.ID, domain.AggregateTypeDebt, domain.EventTypeDebtAmountAdded,
		balanceEvent(state.debt, addition.ID, amount, balance))
	if err != nil {
		return nil, domain.Balance{}, settlementUnchanged, err
	}

	return addition, balance, change, nil
}

// RecordPayment records a payment against a debt. Payments larger than the
// remaining balance are rejected with a *domain.BalanceViolationError and leave
// the debt untouched.
func (uc *DebtUseCase) RecordPayment(ctx context.Context, actor domain.Actor, input RecordPaymentInput) (*PaymentResult, error) {
	const op = "pay"
	start := time.Now()

	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}
	if err := domain.ValidateNotes(input.Notes); err != nil {
		return nil, err
	}

	var result *PaymentResult
	var change settlementChange

	err := uc.inTx(ctx, func(txCtx context.Context, tx Transaction) error {
		state, err := uc.lockForCreditor(txCtx, tx, actor, input.DebtID)
		if err != nil {
			return err
		}

		if err := state.balance().ValidatePayment(input.Amount); err != nil {
			return err
		}

		payment, balance, ch, err := uc.payLocked(txCtx, tx, state, input.Amount, input.Notes, input.PaidAt)
		if err != nil {
			return err
		}

		result = &PaymentResult{Debt: state.debt, Payment: payment, Balance: balance}
		change = ch
		return nil
	})
	uc.observe(op, start, input.Amount, err)
	if err != nil {
		var violation *domain.BalanceViolationError
		if errors.As(err, &violation) && uc.metrics != nil {
			uc.metrics.PaymentRejections.Inc()
		}
		return nil, err
	}

	uc.countChange(change)
	if uc.metrics != nil {
		uc.metrics.PaymentsRecorded.Inc()
	}
	uc.afterCommit(ctx, result.Debt, &domain.Activity{
		ActorID:    actor.ID,
		Action:     domain.ActivityDebtPay,
		DebtID:     result.Debt.ID,
		ResourceID: result.Payment.ID,
		Amount:     amountPtr(input.Amount),
	})

	return result, nil
}

func (uc *DebtUseCase) payLocked(
	ctx context.Context,
	tx Transaction,
	state *ledgerState,
	amount decimal.Decimal,
	notes string,
	at *time.Time,
) (*domain.Payment, domain.Balance, settlementChange, error) {
	now := uc.now()
	createdAt := now
	if at != nil {
		createdAt = at.UTC()
	}

	payment := &domain.Payment{
		ID:        uc.idGen.Generate(),
		DebtID:    state.debt.ID,
		Amount:    amount,
		Notes:     notes,
		CreatedAt: createdAt,
	}
	if err := uc.paymentRepo.Create(ctx, tx, payment); err != nil {
		return nil, domain.Balance{}, settlementUnchanged, err
	}
	state.payments = append(state.payments, payment)

	balance, change, err := uc.settle(ctx, tx, state, now)
	if err != nil {
		return nil, domain.Balance{}, settlementUnchanged, err
	}

	err = uc.emit(ctx, tx, state.debt.ID, domain.AggregateTypeDebt, domain.EventTypeDebtPaid,
		balanceEvent(state.debt, payment.ID, amount, balance))
	if err != nil {
		return nil, domain.Balance{}, settlementUnchanged, err
	}

	return payment, balance, change, nil
}

// ReverseAddition deletes one addition of a debt and re-derives the balance.
// The resulting state equals the state in which the addition was never made.
func (uc *DebtUseCase) ReverseAddition(ctx context.Context, actor domain.Actor, debtID, additionID string) (*AdditionResult, error) {
	const op = "reverse_addition"
	start := time.Now()

	if err := requireActor(actor); err != nil {
		return nil, err
	}

	var result *AdditionResult
	var change settlementChange

	err := uc.inTx(ctx, func(txCtx context.Context, tx Transaction) error {
		state, err := uc.lockForCreditor(txCtx, tx, actor, debtID)
		if err != nil {
			return err
		}

		removed, err := uc.additionRepo.Delete(txCtx, tx, debtID, additionID)
		if err != nil {
			return err
		}

		kept := state.additions[:0]
		for _, a := range state.additions {
			if a.ID != removed.ID {
				kept = append(kept, a)
			}
		}
		state.additions = kept

		balance, ch, err := uc.settle(txCtx, tx, state, uc.now())
		if err != nil {
			return err
		}

		err = uc.emit(txCtx, tx, debtID, domain.AggregateTypeDebt, domain.EventTypeAdditionReversed,
			balanceEvent(state.debt, removed.ID, removed.Amount, balance))
		if err != nil {
			return err
		}

		result = &AdditionResult{Debt: state.debt, Addition: removed, Balance: balance}
		change = ch
		return nil
	})
	uc.observe(op, start, decimal.Zero, err)
	if err != nil {
		return nil, err
	}

	uc.countChange(change)
	if uc.metrics != nil {
		uc.metrics.AdditionsReversed.Inc()
	}
	uc.afterCommit(ctx, result.Debt, &domain.Activity{
		ActorID:    actor.ID,
		Action:     domain.ActivityDebtReverseAdd,
		DebtID:     debtID,
		ResourceID: additionID,
		Amount:     amountPtr(result.Addition.Amount),
	})

	return result, nil
}

// UpdateDebt changes the descriptive fields of a debt. An explicit settled
// override settles the debt by paying the outstanding remainder; un-settling a
// fully paid debt is rejected.
func (uc *DebtUseCase) UpdateDebt(ctx context.Context, actor domain.Actor, id string, update domain.DebtUpdate) (*domain.DebtView, error) {
	const op = "update"
	start := time.Now()

	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if update.IsEmpty() {
		return nil, domain.ErrEmptyUpdate
	}
	if update.Notes != nil {
		if err := domain.ValidateNotes(*update.Notes); err != nil {
			return nil, err
		}
	}

	var view domain.DebtView
	var change settlementChange
	var settledWith *domain.Payment

	err := uc.inTx(ctx, func(txCtx context.Context, tx Transaction) error {
		settledWith = nil

		state, err := uc.lockForCreditor(txCtx, tx, actor, id)
		if err != nil {
			return err
		}

		update.ApplyTo(state.debt)

		if update.Settled != nil {
			current := state.balance()
			switch {
			case *update.Settled && !current.IsSettled():
				payment, _, _, err := uc.payLocked(txCtx, tx, state, current.Remaining, "settled in full", nil)
				if err != nil {
					return err
				}
				settledWith = payment
			case !*update.Settled && current.IsSettled():
				return domain.ErrInvalidSettlement
			}
		}

		balance, ch, err := uc.settle(txCtx, tx, state, uc.now())
		if err != nil {
			return err
		}
		if settledWith != nil {
			ch = settlementSettled
		}

		err = uc.emit(txCtx, tx, id, domain.AggregateTypeDebt, domain.EventTypeDebtUpdated,
			balanceEvent(state.debt, "", decimal.Zero, balance))
		if err != nil {
			return err
		}

		view = domain.ViewFor(actor, state.debt, balance)
		change = ch
		return nil
	})
	uc.observe(op, start, decimal.Zero, err)
	if err != nil {
		return nil, err
	}

	uc.countChange(change)
	details := domain.JSON{}
	if update.Notes != nil {
		details["notes"] = *update.Notes
	}
	if update.DueDate != nil {
		details["due_date"] = update.DueDate.Format(time.RFC3339)
	}
	if update.ClearDueDate {
		details["due_date"] = nil
	}
	if update.Settled != nil {
		details["settled"] = *update.Settled
	}

	activity := &domain.Activity{
		ActorID: actor.ID,
		Action:  domain.ActivityDebtUpdate,
		DebtID:  id,
		Details: details,
	}
	if settledWith != nil {
		if uc.metrics != nil {
			uc.metrics.PaymentsRecorded.Inc()
		}
		activity.ResourceID = settledWith.ID
		activity.Amount = amountPtr(settledWith.Amount)
	}
	uc.afterCommit(ctx, view.Debt, activity)

	return &view, nil
}

// DeleteDebt removes a debt with its additions, payments and disputes.
// Only the creditor may delete, and deletion is unconditional.
func (uc *DebtUseCase) DeleteDebt(ctx context.Context, actor domain.Actor, id string) error {
	const op = "delete"
	start := time.Now()

	if err := requireActor(actor); err != nil {
		return err
	}

	var deleted *domain.Debt

	err := uc.inTx(ctx, func(txCtx context.Context, tx Transaction) error {
		debt, err := uc.debtRepo.GetByIDForUpdate(txCtx, tx, id)
		if err != nil {
			return err
		}
		if !debt.IsCreditor(actor) {
			return domain.ErrForbidden
		}

		if err := uc.debtRepo.Delete(txCtx, tx, id); err != nil {
			return err
		}

		err = uc.emit(txCtx, tx, id, domain.AggregateTypeDebt, domain.EventTypeDebtDeleted, map[string]any{
			"debt_id":     id,
			"creditor_id": debt.CreditorID,
		})
		if err != nil {
			return err
		}

		deleted = debt
		return nil
	})
	uc.observe(op, start, decimal.Zero, err)
	if err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.DebtsDeleted.Inc()
	}
	uc.afterCommit(ctx, deleted, &domain.Activity{
		ActorID: actor.ID,
		Action:  domain.ActivityDebtDelete,
		DebtID:  id,
		Details: domain.MarshalState(map[string]any{
			"counterparty_id": deleted.CounterpartyID,
			"base_amount":     deleted.BaseAmount.String(),
		}),
	})

	return nil
}

// inTx runs fn inside a transaction bounded by DefaultTransactionTimeout,
// retrying the whole transaction on transient storage errors.
func (uc *DebtUseCase) inTx(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error {
	run := func() error {
		txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
		defer cancel()

		tx, err := uc.txManager.Begin(txCtx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(txCtx) }()

		if err := fn(txCtx, tx); err != nil {
			return err
		}

		return tx.Commit(txCtx)
	}

	if uc.retrier == nil {
		return run()
	}

	return uc.retrier.Retry(ctx, run)
}

// lockForCreditor locks the debt and its rows and checks that actor may mutate it.
func (uc *DebtUseCase) lockForCreditor(ctx context.Context, tx Transaction, actor domain.Actor, id string) (*ledgerState, error) {
	debt, err := uc.debtRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if !debt.IsCreditor(actor) {
		return nil, domain.ErrForbidden
	}

	return uc.loadRows(ctx, tx, debt)
}

func (uc *DebtUseCase) loadRows(ctx context.Context, tx Transaction, debt *domain.Debt) (*ledgerState, error) {
	additions, err := uc.additionRepo.ListByDebtTx(ctx, tx, debt.ID)
	if err != nil {
		return nil, err
	}

	payments, err := uc.paymentRepo.ListByDebtTx(ctx, tx, debt.ID)
	if err != nil {
		return nil, err
	}

	return &ledgerState{debt: debt, additions: additions, payments: payments}, nil
}

// settle recomputes the balance from the locked rows and persists the
// settlement flag. It also emits settled/reopened events on transitions.
func (uc *DebtUseCase) settle(ctx context.Context, tx Transaction, state *ledgerState, now time.Time) (domain.Balance, settlementChange, error) {
	balance := state.balance()
	wasPaid := state.debt.Paid

	state.debt.ApplySettlement(balance, now)
	state.debt.UpdatedAt = now

	if err := uc.debtRepo.Update(ctx, tx, state.debt); err != nil {
		return domain.Balance{}, settlementUnchanged, err
	}

	change := settlementUnchanged
	eventType := ""
	switch {
	case !wasPaid && state.debt.Paid:
		change = settlementSettled
		eventType = domain.EventTypeDebtSettled
	case wasPaid && !state.debt.Paid:
		change = settlementReopened
		eventType = domain.EventTypeDebtReopened
	}

	if eventType != "" {
		err := uc.emit(ctx, tx, state.debt.ID, domain.AggregateTypeDebt, eventType,
			balanceEvent(state.debt, "", decimal.Zero, balance))
		if err != nil {
			return domain.Balance{}, settlementUnchanged, err
		}
	}

	return balance, change, nil
}

// emit writes an outbox event in the current transaction.
func (uc *DebtUseCase) emit(ctx context.Context, tx Transaction, aggregateID, aggregateType, eventType string, payload any) error {
	if uc.outboxRepo == nil {
		return nil
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Payload:       domain.MarshalState(payload),
		CreatedAt:     uc.now(),
		Published:     false,
	}

	return uc.outboxRepo.Create(ctx, tx, event)
}

// afterCommit runs the best-effort side effects of a committed mutation.
func (uc *DebtUseCase) afterCommit(ctx context.Context, debt *domain.Debt, activity *domain.Activity) {
	uc.recordActivity(ctx, activity)

	if debt != nil {
		uc.invalidateSummaries(ctx, debt.CreditorID, debt.CounterpartyOwnerID)
	}
}

// recordActivity appends to the activity log. Failures are logged and counted,
// never returned: the mutation has already committed.
func (uc *DebtUseCase) recordActivity(ctx context.Context, activity *domain.Activity) {
	if uc.activityRepo == nil || activity == nil {
		return
	}

	activity.ID = uc.idGen.Generate()
	activity.RequestID = logger.RequestID(ctx)
	activity.CreatedAt = uc.now()

	status := "success"
	if err := uc.activityRepo.Create(ctx, activity); err != nil {
		status = "error"
		log := logger.FromContext(ctx, uc.logger)
		log.Warn().
			Err(err).
			Str("action", string(activity.Action)).
			Str("debt_id", activity.DebtID).
			Msg("failed to record activity")
	}

	if uc.metrics != nil {
		uc.metrics.ActivityRecords.WithLabelValues(string(activity.Action), status).Inc()
	}
}

func (uc *DebtUseCase) observe(op string, start time.Time, amount decimal.Decimal, err error) {
	if uc.metrics == nil {
		return
	}

	uc.metrics.MutationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		uc.metrics.MutationErrors.WithLabelValues(op).Inc()
		return
	}

	if amount.IsPositive() {
		uc.metrics.MutationAmount.WithLabelValues(op).Observe(amount.InexactFloat64())
	}
}

func (uc *DebtUseCase) countChange(change settlementChange) {
	if uc.metrics == nil {
		return
	}

	switch change {
	case settlementSettled:
		uc.metrics.DebtsSettled.Inc()
	case settlementReopened:
		uc.metrics.DebtsReopened.Inc()
	}
}

func requireActor(actor domain.Actor) error {
	if actor.ID == "" {
		return domain.ErrMissingActor
	}
	return nil
}

func amountPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

func balanceEvent(debt *domain.Debt, resourceID string, amount decimal.Decimal, b domain.Balance) domain.DebtBalanceEvent {
	event := domain.DebtBalanceEvent{
		DebtID:     debt.ID,
		ResourceID: resourceID,
		TotalDebt:  b.TotalDebt.String(),
		Remaining:  b.Remaining.String(),
		Paid:       debt.Paid,
	}
	if amount.IsPositive() {
		event.Amount = amount.String()
	}
	return event
}
