package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/debtledger/internal/domain"
	"github.com/iho/debtledger/internal/infrastructure/logger"
	"github.com/iho/debtledger/internal/infrastructure/metrics"
)

// ReconciliationUseCase checks the stored settlement flags against balances
// derived from the addition and payment rows.
type ReconciliationUseCase struct {
	txManager    TransactionManager
	debtRepo     DebtRepository
	additionRepo AdditionRepository
	paymentRepo  PaymentRepository
	activityRepo ActivityRepository
	metrics      *metrics.Metrics
	logger       zerolog.Logger
}

// ReconciliationOption configures optional collaborators of ReconciliationUseCase.
type ReconciliationOption func(*ReconciliationUseCase)

// WithRepairLog records every repaired debt in the activity log.
func WithRepairLog(repo ActivityRepository) ReconciliationOption {
	return func(uc *ReconciliationUseCase) { uc.activityRepo = repo }
}

// WithRepairLogger sets the logger used when a repair record cannot be written.
func WithRepairLogger(l zerolog.Logger) ReconciliationOption {
	return func(uc *ReconciliationUseCase) { uc.logger = l }
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(
	txManager TransactionManager,
	debtRepo DebtRepository,
	additionRepo AdditionRepository,
	paymentRepo PaymentRepository,
	metrics *metrics.Metrics,
	opts ...ReconciliationOption,
) *ReconciliationUseCase {
	uc := &ReconciliationUseCase{
		txManager:    txManager,
		debtRepo:     debtRepo,
		additionRepo: additionRepo,
		paymentRepo:  paymentRepo,
		metrics:      metrics,
		logger:       zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// ReconciliationResult represents the result of a reconciliation check
type ReconciliationResult struct {
	DebtID       string
	StoredPaid   bool
	ExpectedPaid bool
	TotalDebt    decimal.Decimal
	Remaining    decimal.Decimal
	IsReconciled bool
	LastChecked  time.Time
}

// ReconciliationReport represents a full reconciliation report
type ReconciliationReport struct {
	TotalDebts      int
	ReconciledDebts int
	Discrepancies   []*ReconciliationResult
	Consistent      bool
	CheckedAt       time.Time
}

// ReconcileDebt compares one debt's stored flag with its derived balance.
func (uc *ReconciliationUseCase) ReconcileDebt(ctx context.Context, debtID string) (*ReconciliationResult, error) {
	debt, err := uc.debtRepo.GetByID(ctx, debtID)
	if err != nil {
		return nil, err
	}

	balances, err := deriveBalances(ctx, uc.additionRepo, uc.paymentRepo, []*domain.Debt{debt})
	if err != nil {
		return nil, err
	}

	return compare(debt, balances[debt.ID], time.Now().UTC()), nil
}

// Check reconciles every debt in the ledger.
func (uc *ReconciliationUseCase) Check(ctx context.Context) (*ReconciliationReport, error) {
	report := &ReconciliationReport{
		Discrepancies: make([]*ReconciliationResult, 0),
		CheckedAt:     time.Now().UTC(),
	}

	offset := 0
	for {
		debts, err := uc.debtRepo.ListAll(ctx, scanPageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("failed to list debts at offset %d: %w", offset, err)
		}

		balances, err := deriveBalances(ctx, uc.additionRepo, uc.paymentRepo, debts)
		if err != nil {
			return nil, err
		}

		for _, debt := range debts {
			result := compare(debt, balances[debt.ID], report.CheckedAt)
			report.TotalDebts++
			if result.IsReconciled {
				report.ReconciledDebts++
			} else {
				report.Discrepancies = append(report.Discrepancies, result)
			}
		}

		if len(debts) < scanPageSize {
			break
		}
		offset += scanPageSize
	}

	report.Consistent = len(report.Discrepancies) == 0

	if uc.metrics != nil {
		uc.metrics.ReconciliationMismatches.Set(float64(len(report.Discrepancies)))
	}

	return report, nil
}

// Repair rewrites the settlement flag of one debt from its rows, under the
// same row lock the mutations use.
func (uc *ReconciliationUseCase) Repair(ctx context.Context, debtID string) (*ReconciliationResult, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	debt, err := uc.debtRepo.GetByIDForUpdate(txCtx, tx, debtID)
	if err != nil {
		return nil, err
	}

	additions, err := uc.additionRepo.ListByDebtTx(txCtx, tx, debtID)
	if err != nil {
		return nil, err
	}

	payments, err := uc.paymentRepo.ListByDebtTx(txCtx, tx, debtID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	balance := domain.BalanceOf(debt, additions, payments)
	storedPaid := debt.Paid
	debt.ApplySettlement(balance, now)
	debt.UpdatedAt = now

	if err := uc.debtRepo.Update(txCtx, tx, debt); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if storedPaid != debt.Paid {
		uc.recordRepair(ctx, &domain.Activity{
			ActorID:   domain.SystemActor.ID,
			Action:    domain.ActivityLedgerReconciled,
			DebtID:    debt.ID,
			RequestID: logger.RequestID(ctx),
			Details:   domain.JSON{"stored_paid": storedPaid, "paid": debt.Paid, "remaining": balance.Remaining.String()},
			CreatedAt: now,
		})
	}

	return compare(debt, balance, now), nil
}

// recordRepair appends a repair to the activity log. The repair has already
// committed, so a failure is logged and counted only.
func (uc *ReconciliationUseCase) recordRepair(ctx context.Context, activity *domain.Activity) {
	if uc.activityRepo == nil {
		return
	}

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

func compare(debt *domain.Debt, b domain.Balance, at time.Time) *ReconciliationResult {
	expected := b.IsSettled()

	return &ReconciliationResult{
		DebtID:       debt.ID,
		StoredPaid:   debt.Paid,
		ExpectedPaid: expected,
		TotalDebt:    b.TotalDebt,
		Remaining:    b.Remaining,
		IsReconciled: debt.Paid == expected,
		LastChecked:  at,
	}
}
