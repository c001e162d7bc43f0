package usecase_test

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/debtledger/internal/domain"
	"github.com/iho/debtledger/internal/usecase"
)

func TestDebtUseCase_PaymentLifecycle(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	created := l.create(t, owner, "cust-1", "100", domain.DirectionDebt)
	require.Equal(t, usecase.OutcomeDebt, created.Outcome)
	assertDecimal(t, "remaining", created.Balance.Remaining, "100")
	id := created.Debt.ID

	added := l.add(t, id, "50")
	assertDecimal(t, "total_debt", added.Balance.TotalDebt, "150")
	assertDecimal(t, "remaining", added.Balance.Remaining, "150")

	paid := l.pay(t, id, "30")
	assertDecimal(t, "remaining", paid.Balance.Remaining, "120")
	assert.False(t, paid.Debt.Paid)

	paid = l.pay(t, id, "120")
	assertDecimal(t, "remaining", paid.Balance.Remaining, "0")
	assert.True(t, paid.Debt.Paid)
	require.NotNil(t, paid.Debt.PaidAt)

	_, err := l.uc.RecordPayment(ctx, owner, usecase.RecordPaymentInput{DebtID: id, Amount: dec("1")})
	var violation *domain.BalanceViolationError
	require.ErrorAs(t, err, &violation)
	assert.ErrorIs(t, err, domain.ErrExceedsBalance)
	assertDecimal(t, "violation remaining", violation.Remaining, "0")
	assertDecimal(t, "violation attempted", violation.Attempted, "1")

	debt, balance := l.stored(t, id)
	assert.True(t, debt.Paid)
	assertDecimal(t, "stored remaining", balance.Remaining, "0")

	assert.Equal(t, []string{
		domain.EventTypeDebtCreated,
		domain.EventTypeDebtAmountAdded,
		domain.EventTypeDebtPaid,
		domain.EventTypeDebtSettled,
		domain.EventTypeDebtPaid,
	}, l.events(t, id))
}

func TestDebtUseCase_RejectedPaymentLeavesStateUnchanged(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	id := l.create(t, owner, "cust-1", "80", domain.DirectionDebt).Debt.ID
	l.pay(t, id, "30")

	before, beforeBalance := l.stored(t, id)
	payments, _ := l.pays.ListByDebt(ctx, id)

	_, err := l.uc.RecordPayment(ctx, owner, usecase.RecordPaymentInput{DebtID: id, Amount: dec("50.01")})
	require.ErrorIs(t, err, domain.ErrExceedsBalance)

	after, afterBalance := l.stored(t, id)
	assert.Equal(t, before, after)
	assert.Equal(t, beforeBalance, afterBalance)

	again, _ := l.pays.ListByDebt(ctx, id)
	assert.Len(t, again, len(payments))

	res := l.pay(t, id, "50")
	assert.True(t, res.Debt.Paid)
}

func TestDebtUseCase_BalanceIsOrderIndependent(t *testing.T) {
	additions := []string{"12.50", "7.25", "30", "0.75"}
	payments := []string{"10", "20.50", "5.25"}
	// base + additions - payments = 100 + 50.50 - 35.75
	const want = "114.75"

	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 20; round++ {
		l := newLedger(t)
		id := l.create(t, owner, "cust-1", "100", domain.DirectionDebt).Debt.ID

		type step struct {
			pay    bool
			amount string
		}
		var steps []step
		for _, a := range additions {
			steps = append(steps, step{amount: a})
		}
		for _, p := range payments {
			steps = append(steps, step{pay: true, amount: p})
		}
		rng.Shuffle(len(steps), func(i, j int) { steps[i], steps[j] = steps[j], steps[i] })

		for _, s := range steps {
			if s.pay {
				l.pay(t, id, s.amount)
			} else {
				l.add(t, id, s.amount)
			}
		}

		_, balance := l.stored(t, id)
		assertDecimal(t, "remaining", balance.Remaining, want)
	}
}

func TestDebtUseCase_AdditionReopensSettledDebt(t *testing.T) {
	l := newLedger(t)

	id := l.create(t, owner, "cust-1", "40", domain.DirectionDebt).Debt.ID
	settled := l.pay(t, id, "40")
	require.True(t, settled.Debt.Paid)

	reopened := l.add(t, id, "0.02")
	assert.False(t, reopened.Debt.Paid)
	assert.Nil(t, reopened.Debt.PaidAt)
	assertDecimal(t, "remaining", reopened.Balance.Remaining, "0.02")

	events := l.events(t, id)
	assert.Equal(t, domain.EventTypeDebtReopened, events[len(events)-2])
}

func TestDebtUseCase_RemainderWithinToleranceSettles(t *testing.T) {
	l := newLedger(t)

	id := l.create(t, owner, "cust-1", "10", domain.DirectionDebt).Debt.ID
	res := l.pay(t, id, "9.99")

	assert.True(t, res.Debt.Paid)
	assertDecimal(t, "remaining", res.Balance.Remaining, "0.01")
}

func TestDebtUseCase_ReverseAdditionRestoresState(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	id := l.create(t, owner, "cust-1", "100", domain.DirectionDebt).Debt.ID
	_, before := l.stored(t, id)

	added := l.add(t, id, "50")
	assertDecimal(t, "total_debt", added.Balance.TotalDebt, "150")

	reversed, err := l.uc.ReverseAddition(ctx, owner, id, added.Addition.ID)
	require.NoError(t, err)
	assertDecimal(t, "total_debt", reversed.Balance.TotalDebt, "100")
	assertDecimal(t, "remaining", reversed.Balance.Remaining, "100")

	_, after := l.stored(t, id)
	assert.Equal(t, before.TotalDebt.String(), after.TotalDebt.String())
	assert.Equal(t, before.Remaining.String(), after.Remaining.String())

	_, err = l.uc.ReverseAddition(ctx, owner, id, added.Addition.ID)
	assert.ErrorIs(t, err, domain.ErrAdditionNotFound)
}

func TestDebtUseCase_ReverseAdditionCommutesWithOtherRows(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	id := l.create(t, owner, "cust-1", "100", domain.DirectionDebt).Debt.ID
	l.add(t, id, "20")
	target := l.add(t, id, "35")
	l.pay(t, id, "60")
	l.add(t, id, "5")

	_, err := l.uc.ReverseAddition(ctx, owner, id, target.Addition.ID)
	require.NoError(t, err)

	control := newLedger(t)
	cid := control.create(t, owner, "cust-1", "100", domain.DirectionDebt).Debt.ID
	control.add(t, cid, "20")
	control.pay(t, cid, "60")
	control.add(t, cid, "5")

	_, got := l.stored(t, id)
	_, want := control.stored(t, cid)
	assert.Equal(t, want.TotalDebt.String(), got.TotalDebt.String())
	assert.Equal(t, want.Remaining.String(), got.Remaining.String())
}

func TestDebtUseCase_ReverseAdditionSettlesWhenPaymentsCover(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	id := l.create(t, owner, "cust-1", "100", domain.DirectionDebt).Debt.ID
	added := l.add(t, id, "50")
	l.pay(t, id, "100")

	res, err := l.uc.ReverseAddition(ctx, owner, id, added.Addition.ID)
	require.NoError(t, err)
	assert.True(t, res.Debt.Paid)
	assertDecimal(t, "remaining", res.Balance.Remaining, "0")
}

func TestDebtUseCase_CreateMergesIntoOpenDebt(t *testing.T) {
	l := newLedger(t)

	first := l.create(t, owner, "cust-1", "100", domain.DirectionDebt)
	second := l.create(t, owner, "cust-1", "25", domain.DirectionDebt)

	assert.Equal(t, usecase.OutcomeAddition, second.Outcome)
	assert.Equal(t, first.Debt.ID, second.Debt.ID)
	require.NotNil(t, second.Addition)
	assertDecimal(t, "total_debt", second.Balance.TotalDebt, "125")
	require.NotNil(t, second.Debt.OriginalAmount)
	assertDecimal(t, "original_amount", *second.Debt.OriginalAmount, "100")

	loan := l.create(t, owner, "cust-1", "10", domain.DirectionLoan)
	assert.Equal(t, usecase.OutcomeDebt, loan.Outcome)
	assert.NotEqual(t, first.Debt.ID, loan.Debt.ID)

	elsewhere := l.create(t, owner, "cust-2", "10", domain.DirectionDebt)
	assert.Equal(t, usecase.OutcomeDebt, elsewhere.Outcome)

	theirs := l.create(t, other, "cust-1", "10", domain.DirectionDebt)
	assert.Equal(t, usecase.OutcomeDebt, theirs.Outcome)
}

func TestDebtUseCase_CreateAfterSettlementStartsNewDebt(t *testing.T) {
	l := newLedger(t)

	first := l.create(t, owner, "cust-1", "100", domain.DirectionDebt)
	l.pay(t, first.Debt.ID, "100")

	next := l.create(t, owner, "cust-1", "30", domain.DirectionDebt)
	assert.Equal(t, usecase.OutcomeDebt, next.Outcome)
	assert.NotEqual(t, first.Debt.ID, next.Debt.ID)
}

func TestDebtUseCase_CreateLinksCounterpartyOwnerOnMerge(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	first := l.create(t, owner, "cust-1", "100", domain.DirectionDebt)
	assert.Empty(t, first.Debt.CounterpartyOwnerID)

	merged, err := l.uc.CreateDebt(ctx, owner, usecase.CreateDebtInput{
		CounterpartyID:      "cust-1",
		CounterpartyOwnerID: other.ID,
		Amount:              dec("5"),
	})
	require.NoError(t, err)
	assert.Equal(t, other.ID, merged.Debt.CounterpartyOwnerID)
}

func TestDebtUseCase_MergeIntoDisputedDebt(t *testing.T) {
	tests := []struct {
		name        string
		merge       bool
		wantOutcome usecase.CreateOutcome
	}{
		{name: "merge allowed", merge: true, wantOutcome: usecase.OutcomeAddition},
		{name: "merge blocked", merge: false, wantOutcome: usecase.OutcomeDebt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newLedger(t, usecase.WithMergeIntoDisputed(tt.merge))
			ctx := context.Background()

			res, err := l.uc.CreateDebt(ctx, owner, usecase.CreateDebtInput{
				CounterpartyID:      "cust-1",
				CounterpartyOwnerID: other.ID,
				Amount:              dec("100"),
			})
			require.NoError(t, err)

			_, err = l.uc.RaiseDispute(ctx, other, res.Debt.ID, usecase.RaiseDisputeInput{Reason: "never borrowed"})
			require.NoError(t, err)

			next := l.create(t, owner, "cust-1", "10", domain.DirectionDebt)
			assert.Equal(t, tt.wantOutcome, next.Outcome)
		})
	}
}

func TestDebtUseCase_CreateValidation(t *testing.T) {
	tests := []struct {
		name    string
		actor   domain.Actor
		input   usecase.CreateDebtInput
		wantErr error
	}{
		{
			name:    "missing actor",
			input:   usecase.CreateDebtInput{CounterpartyID: "c", Amount: dec("1")},
			wantErr: domain.ErrMissingActor,
		},
		{
			name:    "missing counterparty",
			actor:   owner,
			input:   usecase.CreateDebtInput{Amount: dec("1")},
			wantErr: domain.ErrMissingCounterparty,
		},
		{
			name:    "self counterparty",
			actor:   owner,
			input:   usecase.CreateDebtInput{CounterpartyID: "c", CounterpartyOwnerID: owner.ID, Amount: dec("1")},
			wantErr: domain.ErrSelfCounterparty,
		},
		{
			name:    "bad direction",
			actor:   owner,
			input:   usecase.CreateDebtInput{CounterpartyID: "c", Amount: dec("1"), Direction: "gift"},
			wantErr: domain.ErrInvalidDirection,
		},
		{
			name:    "zero amount",
			actor:   owner,
			input:   usecase.CreateDebtInput{CounterpartyID: "c", Amount: decimal.Zero},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "amount below minimum",
			actor:   owner,
			input:   usecase.CreateDebtInput{CounterpartyID: "c", Amount: dec("0.001")},
			wantErr: domain.ErrAmountTooSmall,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newLedger(t)

			_, err := l.uc.CreateDebt(context.Background(), tt.actor, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDebtUseCase_MutationsRequireCreditor(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	res, err := l.uc.CreateDebt(ctx, owner, usecase.CreateDebtInput{
		CounterpartyID:      "cust-1",
		CounterpartyOwnerID: other.ID,
		Amount:              dec("100"),
	})
	require.NoError(t, err)
	id := res.Debt.ID

	for _, actor := range []domain.Actor{other, stranger} {
		_, err = l.uc.RecordPayment(ctx, actor, usecase.RecordPaymentInput{DebtID: id, Amount: dec("1")})
		assert.ErrorIs(t, err, domain.ErrForbidden)

		_, err = l.uc.AddAmount(ctx, actor, usecase.AddAmountInput{DebtID: id, Amount: dec("1")})
		assert.ErrorIs(t, err, domain.ErrForbidden)

		assert.ErrorIs(t, l.uc.DeleteDebt(ctx, actor, id), domain.ErrForbidden)
	}

	_, err = l.uc.RecordPayment(ctx, owner, usecase.RecordPaymentInput{DebtID: "missing", Amount: dec("1")})
	assert.ErrorIs(t, err, domain.ErrDebtNotFound)
}

func TestDebtUseCase_UpdateDebt(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	id := l.create(t, owner, "cust-1", "100", domain.DirectionDebt).Debt.ID
	l.pay(t, id, "40")

	_, err := l.uc.UpdateDebt(ctx, owner, id, domain.DebtUpdate{})
	assert.ErrorIs(t, err, domain.ErrEmptyUpdate)

	notes := "rent for march"
	view, err := l.uc.UpdateDebt(ctx, owner, id, domain.DebtUpdate{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, notes, view.Debt.Notes)
	assertDecimal(t, "remaining", view.Balance.Remaining, "60")

	unsettle := false
	_, err = l.uc.UpdateDebt(ctx, owner, id, domain.DebtUpdate{Settled: &unsettle})
	require.NoError(t, err)

	settle := true
	view, err = l.uc.UpdateDebt(ctx, owner, id, domain.DebtUpdate{Settled: &settle})
	require.NoError(t, err)
	assert.True(t, view.Debt.Paid)
	assertDecimal(t, "remaining", view.Balance.Remaining, "0")

	payments, _ := l.pays.ListByDebt(ctx, id)
	require.Len(t, payments, 2)
	assertDecimal(t, "settling payment", payments[1].Amount, "60")

	_, err = l.uc.UpdateDebt(ctx, owner, id, domain.DebtUpdate{Settled: &unsettle})
	assert.ErrorIs(t, err, domain.ErrInvalidSettlement)

	debt, _ := l.stored(t, id)
	assert.True(t, debt.Paid)
}

func TestDebtUseCase_DeleteDebt(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	id := l.create(t, owner, "cust-1", "100", domain.DirectionDebt).Debt.ID
	l.add(t, id, "10")
	l.pay(t, id, "10")

	require.NoError(t, l.uc.DeleteDebt(ctx, owner, id))

	_, err := l.debts.GetByID(ctx, id)
	assert.ErrorIs(t, err, domain.ErrDebtNotFound)

	rows, _ := l.pays.ListByDebt(ctx, id)
	assert.Empty(t, rows)

	assert.ErrorIs(t, l.uc.DeleteDebt(ctx, owner, id), domain.ErrDebtNotFound)
}

func TestDebtUseCase_RecordsActivity(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	id := l.create(t, owner, "cust-1", "100", domain.DirectionDebt).Debt.ID
	l.create(t, owner, "cust-1", "5", domain.DirectionDebt)
	l.pay(t, id, "5")

	got, err := l.activity.List(ctx, domain.ActivityFilter{DebtID: id})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, domain.ActivityDebtPay, got[0].Action)
	assert.Equal(t, domain.ActivityDebtMerge, got[1].Action)
	assert.Equal(t, domain.ActivityDebtCreate, got[2].Action)
	assertDecimal(t, "amount", *got[0].Amount, "5")
}

func TestDebtUseCase_ConcurrentPaymentsNeverOverpay(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	id := l.create(t, owner, "cust-1", "100", domain.DirectionDebt).Debt.ID

	const workers = 25
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		rejected int
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.uc.RecordPayment(ctx, owner, usecase.RecordPaymentInput{DebtID: id, Amount: dec("10")})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				accepted++
			case errors.Is(err, domain.ErrExceedsBalance):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, accepted)
	assert.Equal(t, workers-10, rejected)

	debt, balance := l.stored(t, id)
	assert.True(t, debt.Paid)
	assertDecimal(t, "total payments", balance.TotalPayments, "100")
}

func TestDebtUseCase_ConcurrentCreatesMergeIntoOneDebt(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.uc.CreateDebt(ctx, owner, usecase.CreateDebtInput{CounterpartyID: "cust-1", Amount: dec("5")})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	debts, err := l.debts.List(ctx, domain.DebtFilter{ActorID: owner.ID})
	require.NoError(t, err)
	require.Len(t, debts, 1)

	_, balance := l.stored(t, debts[0].ID)
	assertDecimal(t, "total_debt", balance.TotalDebt, "100")
}

func TestDebtUseCase_ConcurrentMixedMutationsMatchSerialTotals(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	id := l.create(t, owner, "cust-1", "1000", domain.DirectionDebt).Debt.ID

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := l.uc.AddAmount(ctx, owner, usecase.AddAmountInput{DebtID: id, Amount: dec("3")})
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := l.uc.RecordPayment(ctx, owner, usecase.RecordPaymentInput{DebtID: id, Amount: dec("7")})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	_, balance := l.stored(t, id)
	assertDecimal(t, "total_debt", balance.TotalDebt, "1090")
	assertDecimal(t, "remaining", balance.Remaining, "880")
}

func TestDebtUseCase_ConcurrentCreatesNeverReopenSettledDebt(t *testing.T) {
	ctx := context.Background()

	for round := 0; round < 20; round++ {
		l := newLedger(t)
		id := l.create(t, owner, "cust-1", "100", domain.DirectionDebt).Debt.ID

		const creators = 8
		var (
			wg      sync.WaitGroup
			settled *usecase.PaymentResult
		)

		wg.Add(creators + 1)
		go func() {
			defer wg.Done()
			res, err := l.uc.RecordPayment(ctx, owner, usecase.RecordPaymentInput{DebtID: id, Amount: dec("100")})
			assert.NoError(t, err)
			settled = res
		}()
		for i := 0; i < creators; i++ {
			go func() {
				defer wg.Done()
				_, err := l.uc.CreateDebt(ctx, owner, usecase.CreateDebtInput{CounterpartyID: "cust-1", Amount: dec("5")})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()
		require.NotNil(t, settled)

		debts, err := l.debts.List(ctx, domain.DebtFilter{ActorID: owner.ID})
		require.NoError(t, err)

		open := 0
		total := decimal.Zero
		for _, d := range debts {
			stored, balance := l.stored(t, d.ID)
			if !stored.Paid {
				open++
			}
			total = total.Add(balance.TotalDebt)
		}
		assert.LessOrEqual(t, open, 1, "round %d: open debts", round)
		assertDecimal(t, "total_debt", total, "140")

		if settled.Debt.Paid {
			stored, balance := l.stored(t, id)
			assert.True(t, stored.Paid, "round %d: settled debt was reopened", round)
			assert.True(t, balance.TotalDebt.Equal(settled.Balance.TotalDebt), "round %d: amount merged into settled debt", round)
		}
	}
}
