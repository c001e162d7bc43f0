package usecase_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/debtledger/internal/adapter/repository/memory"
	"github.com/iho/debtledger/internal/domain"
	"github.com/iho/debtledger/internal/usecase"
)

var (
	owner    = domain.Actor{ID: "owner-1"}
	other    = domain.Actor{ID: "owner-2"}
	stranger = domain.Actor{ID: "owner-3"}
)

type seqIDs struct {
	n atomic.Int64
}

func (s *seqIDs) Generate() string {
	return fmt.Sprintf("id-%06d", s.n.Add(1))
}

// ledger is an engine wired to the in-memory store.
type ledger struct {
	uc       *usecase.DebtUseCase
	store    *memory.Store
	txm      *memory.TxManager
	debts    *memory.DebtRepository
	adds     *memory.AdditionRepository
	pays     *memory.PaymentRepository
	disputes *memory.DisputeRepository
	outbox   *memory.OutboxRepository
	activity *memory.ActivityRepository
}

func newLedger(t *testing.T, opts ...usecase.DebtOption) *ledger {
	t.Helper()

	store := memory.NewStore()
	l := &ledger{
		store:    store,
		txm:      memory.NewTxManager(store),
		debts:    memory.NewDebtRepository(store),
		adds:     memory.NewAdditionRepository(store),
		pays:     memory.NewPaymentRepository(store),
		disputes: memory.NewDisputeRepository(store),
		outbox:   memory.NewOutboxRepository(store),
		activity: memory.NewActivityRepository(store),
	}

	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	var ticks atomic.Int64
	opts = append([]usecase.DebtOption{usecase.WithClock(func() time.Time {
		return clock.Add(time.Duration(ticks.Add(1)) * time.Millisecond)
	})}, opts...)

	l.uc = usecase.NewDebtUseCase(l.txm, l.debts, l.adds, l.pays, l.disputes, l.outbox, l.activity, &seqIDs{}, opts...)

	return l
}

func (l *ledger) create(t *testing.T, actor domain.Actor, counterparty, amount string, dir domain.Direction) *usecase.CreateDebtResult {
	t.Helper()

	res, err := l.uc.CreateDebt(context.Background(), actor, usecase.CreateDebtInput{
		CounterpartyID: counterparty,
		Amount:         dec(amount),
		Direction:      dir,
	})
	if err != nil {
		t.Fatalf("CreateDebt(%s, %s) error = %v", counterparty, amount, err)
	}

	return res
}

func (l *ledger) pay(t *testing.T, debtID, amount string) *usecase.PaymentResult {
	t.Helper()

	res, err := l.uc.RecordPayment(context.Background(), owner, usecase.RecordPaymentInput{DebtID: debtID, Amount: dec(amount)})
	if err != nil {
		t.Fatalf("RecordPayment(%s) error = %v", amount, err)
	}

	return res
}

func (l *ledger) add(t *testing.T, debtID, amount string) *usecase.AdditionResult {
	t.Helper()

	res, err := l.uc.AddAmount(context.Background(), owner, usecase.AddAmountInput{DebtID: debtID, Amount: dec(amount)})
	if err != nil {
		t.Fatalf("AddAmount(%s) error = %v", amount, err)
	}

	return res
}

// stored re-derives the balance from committed rows, independent of the engine.
func (l *ledger) stored(t *testing.T, debtID string) (*domain.Debt, domain.Balance) {
	t.Helper()
	ctx := context.Background()

	debt, err := l.debts.GetByID(ctx, debtID)
	if err != nil {
		t.Fatalf("GetByID(%s) error = %v", debtID, err)
	}
	additions, _ := l.adds.ListByDebt(ctx, debtID)
	payments, _ := l.pays.ListByDebt(ctx, debtID)

	return debt, domain.BalanceOf(debt, additions, payments)
}

func (l *ledger) events(t *testing.T, debtID string) []string {
	t.Helper()

	events, err := l.outbox.GetByAggregate(context.Background(), domain.AggregateTypeDebt, debtID, 100, 0)
	if err != nil {
		t.Fatalf("GetByAggregate() error = %v", err)
	}

	types := make([]string, 0, len(events))
	for _, e := range events {
		types = append(types, e.EventType)
	}

	return types
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("%s = %s, want %s", name, got, want)
	}
}
