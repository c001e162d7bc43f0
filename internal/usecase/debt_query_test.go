package usecase_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/debtledger/internal/domain"
	"github.com/iho/debtledger/internal/usecase"
	"github.com/iho/debtledger/internal/usecase/mocks"
)

func createLinked(t *testing.T, l *ledger, counterparty, amount string, dir domain.Direction) *domain.Debt {
	t.Helper()

	res, err := l.uc.CreateDebt(context.Background(), owner, usecase.CreateDebtInput{
		CounterpartyID:      counterparty,
		CounterpartyOwnerID: other.ID,
		Amount:              dec(amount),
		Direction:           dir,
	})
	require.NoError(t, err)

	return res.Debt
}

func TestDebtUseCase_GetDebtWaitsForInFlightPayment(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	debt := l.create(t, owner, "cust-1", "100", domain.DirectionDebt).Debt

	tx, err := l.txm.Begin(ctx)
	require.NoError(t, err)
	locked, err := l.debts.GetByIDForUpdate(ctx, tx, debt.ID)
	require.NoError(t, err)
	require.NoError(t, l.pays.Create(ctx, tx, &domain.Payment{ID: "pay-1", DebtID: debt.ID, Amount: dec("100"), CreatedAt: time.Now()}))

	done := make(chan *usecase.DebtDetails, 1)
	go func() {
		details, err := l.uc.GetDebt(ctx, owner, debt.ID)
		assert.NoError(t, err)
		done <- details
	}()

	select {
	case <-done:
		t.Fatal("GetDebt read a debt with a payment in flight")
	case <-time.After(50 * time.Millisecond):
	}

	locked.Paid = true
	require.NoError(t, l.debts.Update(ctx, tx, locked))
	require.NoError(t, tx.Commit(ctx))

	select {
	case details := <-done:
		require.NotNil(t, details)
		assert.True(t, details.View.Debt.Paid)
		assertDecimal(t, "remaining", details.View.Balance.Remaining, "0")
		assert.Len(t, details.Payments, 1)
	case <-time.After(time.Second):
		t.Fatal("GetDebt did not resume after commit")
	}
}

func TestDebtUseCase_GetDebtPerspective(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	debt := createLinked(t, l, "cust-1", "100", domain.DirectionDebt)
	l.add(t, debt.ID, "20")
	l.pay(t, debt.ID, "30")

	mine, err := l.uc.GetDebt(ctx, owner, debt.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PerspectiveCreditor, mine.View.Perspective)
	assert.Equal(t, domain.DirectionDebt, mine.View.Direction)
	assertDecimal(t, "remaining", mine.View.Balance.Remaining, "90")
	assert.Len(t, mine.Additions, 1)
	assert.Len(t, mine.Payments, 1)

	theirs, err := l.uc.GetDebt(ctx, other, debt.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PerspectiveCounterparty, theirs.View.Perspective)
	assert.Equal(t, domain.DirectionLoan, theirs.View.Direction)
	assert.Equal(t, domain.DirectionDebt, theirs.View.OriginalDirection)
	assert.Equal(t, mine.View.Balance, theirs.View.Balance)

	_, err = l.uc.GetDebt(ctx, stranger, debt.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = l.uc.GetDebt(ctx, owner, "missing")
	assert.ErrorIs(t, err, domain.ErrDebtNotFound)
}

func TestDebtUseCase_ListDebts(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	receivable := createLinked(t, l, "cust-1", "100", domain.DirectionDebt)
	payable := createLinked(t, l, "cust-1", "40", domain.DirectionLoan)
	closed := l.create(t, owner, "cust-2", "10", domain.DirectionDebt).Debt
	l.pay(t, closed.ID, "10")

	tests := []struct {
		name    string
		actor   domain.Actor
		input   usecase.ListDebtsInput
		wantIDs []string
	}{
		{name: "all for creditor", actor: owner, wantIDs: []string{closed.ID, payable.ID, receivable.ID}},
		{name: "open only", actor: owner, input: usecase.ListDebtsInput{Status: "open"}, wantIDs: []string{payable.ID, receivable.ID}},
		{name: "settled only", actor: owner, input: usecase.ListDebtsInput{Status: "settled"}, wantIDs: []string{closed.ID}},
		{name: "creditor direction", actor: owner, input: usecase.ListDebtsInput{Direction: "loan"}, wantIDs: []string{payable.ID}},
		{name: "counterparty sees flipped direction", actor: other, input: usecase.ListDebtsInput{Direction: "loan"}, wantIDs: []string{receivable.ID}},
		{name: "by counterparty", actor: owner, input: usecase.ListDebtsInput{CounterpartyID: "cust-2"}, wantIDs: []string{closed.ID}},
		{name: "paged", actor: owner, input: usecase.ListDebtsInput{Limit: 1, Offset: 1}, wantIDs: []string{payable.ID}},
		{name: "stranger sees nothing", actor: stranger, wantIDs: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			views, err := l.uc.ListDebts(ctx, tt.actor, tt.input)
			require.NoError(t, err)

			ids := make([]string, 0, len(views))
			for _, v := range views {
				ids = append(ids, v.Debt.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}

	_, err := l.uc.ListDebts(ctx, owner, usecase.ListDebtsInput{Status: "archived"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = l.uc.ListDebts(ctx, owner, usecase.ListDebtsInput{Direction: "gift"})
	assert.ErrorIs(t, err, domain.ErrInvalidDirection)
}

func TestDebtUseCase_Summary(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	receivable := createLinked(t, l, "cust-1", "100", domain.DirectionDebt)
	l.pay(t, receivable.ID, "25")
	createLinked(t, l, "cust-1", "40", domain.DirectionLoan)
	settled := l.create(t, owner, "cust-2", "10", domain.DirectionDebt).Debt
	l.pay(t, settled.ID, "10")

	past := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := l.uc.UpdateDebt(ctx, owner, receivable.ID, domain.DebtUpdate{DueDate: &past})
	require.NoError(t, err)

	mine, err := l.uc.Summary(ctx, owner)
	require.NoError(t, err)
	assertDecimal(t, "owed to me", mine.OwedToMe, "75")
	assertDecimal(t, "i owe", mine.IOwe, "40")
	assertDecimal(t, "net", mine.Net, "35")
	assert.Equal(t, 1, mine.OwedToMeCount)
	assert.Equal(t, 1, mine.IOweCount)
	assert.Equal(t, 1, mine.OverdueCount)

	theirs, err := l.uc.Summary(ctx, other)
	require.NoError(t, err)
	assertDecimal(t, "owed to them", theirs.OwedToMe, "40")
	assertDecimal(t, "they owe", theirs.IOwe, "75")
	assertDecimal(t, "net", theirs.Net, "-35")
}

func TestDebtUseCase_SummaryCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := mocks.NewMockCache(ctrl)

	l := newLedger(t, usecase.WithSummaryCache(cache, time.Minute))
	ctx := context.Background()

	cached, err := json.Marshal(domain.Summary{ActorID: owner.ID, OwedToMe: dec("12"), Net: dec("12"), OwedToMeCount: 1})
	require.NoError(t, err)

	gomock.InOrder(
		cache.EXPECT().Get(gomock.Any(), "summary:owner-1").Return(nil, usecase.ErrCacheMiss),
		cache.EXPECT().Set(gomock.Any(), "summary:owner-1", gomock.Any(), time.Minute).Return(nil),
		cache.EXPECT().Get(gomock.Any(), "summary:owner-1").Return(cached, nil),
	)

	first, err := l.uc.Summary(ctx, owner)
	require.NoError(t, err)
	assert.True(t, first.OwedToMe.IsZero())

	second, err := l.uc.Summary(ctx, owner)
	require.NoError(t, err)
	assertDecimal(t, "cached owed to me", second.OwedToMe, "12")

	cache.EXPECT().Delete(gomock.Any(), "summary:owner-1").Return(nil)
	l.create(t, owner, "cust-1", "5", domain.DirectionDebt)
}

func TestDebtUseCase_CounterpartySummary(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	first := l.create(t, owner, "cust-1", "100", domain.DirectionDebt).Debt
	l.add(t, first.ID, "50")
	l.pay(t, first.ID, "150")
	second := l.create(t, owner, "cust-1", "30", domain.DirectionDebt).Debt
	l.pay(t, second.ID, "10")
	l.create(t, owner, "cust-2", "999", domain.DirectionDebt)
	l.create(t, other, "cust-1", "999", domain.DirectionDebt)

	summary, err := l.uc.CounterpartySummary(ctx, owner, "cust-1")
	require.NoError(t, err)
	assertDecimal(t, "total debt", summary.TotalDebt, "180")
	assertDecimal(t, "total paid", summary.TotalPaid, "160")
	assertDecimal(t, "total remaining", summary.TotalRemaining, "20")
	assert.Equal(t, 2, summary.DebtsCount)
	assert.Equal(t, 1, summary.ActiveDebtsCount)

	_, err = l.uc.CounterpartySummary(ctx, owner, "")
	assert.ErrorIs(t, err, domain.ErrMissingCounterparty)
}
