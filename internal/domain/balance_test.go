package domain

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCalculateBalance(t *testing.T) {
	tests := []struct {
		name          string
		base          decimal.Decimal
		additions     []decimal.Decimal
		payments      []decimal.Decimal
		wantTotalDebt string
		wantRemaining string
		wantSettled   bool
	}{
		{
			name:          "base only",
			base:          d("100"),
			wantTotalDebt: "100",
			wantRemaining: "100",
		},
		{
			name:          "additions and partial payment",
			base:          d("100"),
			additions:     []decimal.Decimal{d("50")},
			payments:      []decimal.Decimal{d("30")},
			wantTotalDebt: "150",
			wantRemaining: "120",
		},
		{
			name:          "paid in full",
			base:          d("100"),
			additions:     []decimal.Decimal{d("50")},
			payments:      []decimal.Decimal{d("30"), d("120")},
			wantTotalDebt: "150",
			wantRemaining: "0",
			wantSettled:   true,
		},
		{
			name:          "overpaid rows clamp to zero",
			base:          d("10"),
			payments:      []decimal.Decimal{d("25")},
			wantTotalDebt: "10",
			wantRemaining: "0",
			wantSettled:   true,
		},
		{
			name:          "remainder within epsilon counts as settled",
			base:          d("10"),
			payments:      []decimal.Decimal{d("9.99")},
			wantTotalDebt: "10",
			wantRemaining: "0.01",
			wantSettled:   true,
		},
		{
			name:          "remainder above epsilon stays open",
			base:          d("10"),
			payments:      []decimal.Decimal{d("9.98")},
			wantTotalDebt: "10",
			wantRemaining: "0.02",
		},
		{
			name:          "fractional amounts do not drift",
			base:          d("0.1"),
			additions:     []decimal.Decimal{d("0.2")},
			payments:      []decimal.Decimal{d("0.3")},
			wantTotalDebt: "0.3",
			wantRemaining: "0",
			wantSettled:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := CalculateBalance(tt.base, tt.additions, tt.payments)

			if !b.TotalDebt.Equal(d(tt.wantTotalDebt)) {
				t.Errorf("total debt = %s, want %s", b.TotalDebt, tt.wantTotalDebt)
			}
			if !b.Remaining.Equal(d(tt.wantRemaining)) {
				t.Errorf("remaining = %s, want %s", b.Remaining, tt.wantRemaining)
			}
			if b.IsSettled() != tt.wantSettled {
				t.Errorf("settled = %v, want %v", b.IsSettled(), tt.wantSettled)
			}
		})
	}
}

func TestCalculateBalance_OrderIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 50; round++ {
		base := decimal.New(rng.Int63n(100000), -2)
		additions := randomAmounts(rng, rng.Intn(8))
		payments := randomAmounts(rng, rng.Intn(8))

		want := CalculateBalance(base, additions, payments)

		rng.Shuffle(len(additions), func(i, j int) { additions[i], additions[j] = additions[j], additions[i] })
		rng.Shuffle(len(payments), func(i, j int) { payments[i], payments[j] = payments[j], payments[i] })

		got := CalculateBalance(base, additions, payments)
		if !got.Remaining.Equal(want.Remaining) || !got.TotalDebt.Equal(want.TotalDebt) {
			t.Fatalf("round %d: shuffled balance %+v differs from %+v", round, got, want)
		}

		expected := base.Add(decimal.Sum(decimal.Zero, additions...)).Sub(decimal.Sum(decimal.Zero, payments...))
		if expected.IsNegative() {
			expected = decimal.Zero
		}
		if !got.Remaining.Equal(expected) {
			t.Fatalf("round %d: remaining %s, want %s", round, got.Remaining, expected)
		}
	}
}

func randomAmounts(rng *rand.Rand, n int) []decimal.Decimal {
	out := make([]decimal.Decimal, n)
	for i := range out {
		out[i] = decimal.New(rng.Int63n(5000)+1, -2)
	}
	return out
}

func TestBalance_ValidatePayment(t *testing.T) {
	b := CalculateBalance(d("100"), []decimal.Decimal{d("50")}, []decimal.Decimal{d("30")})

	if err := b.ValidatePayment(d("120")); err != nil {
		t.Fatalf("exact remaining should be accepted, got %v", err)
	}

	if err := b.ValidatePayment(decimal.Zero); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	err := b.ValidatePayment(d("120.01"))
	if !errors.Is(err, ErrExceedsBalance) {
		t.Fatalf("expected ErrExceedsBalance, got %v", err)
	}

	var violation *BalanceViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("expected BalanceViolationError, got %T", err)
	}
	if !violation.Remaining.Equal(d("120")) || !violation.Attempted.Equal(d("120.01")) {
		t.Errorf("unexpected violation payload: %+v", violation)
	}
}

func TestBalanceOf(t *testing.T) {
	debt := &Debt{ID: "d1", BaseAmount: d("100")}
	additions := []*Addition{{Amount: d("25")}, {Amount: d("5")}}
	payments := []*Payment{{Amount: d("40")}}

	b := BalanceOf(debt, additions, payments)

	if !b.TotalAdditions.Equal(d("30")) {
		t.Errorf("total additions = %s, want 30", b.TotalAdditions)
	}
	if !b.TotalPayments.Equal(d("40")) {
		t.Errorf("total payments = %s, want 40", b.TotalPayments)
	}
	if !b.Remaining.Equal(d("90")) {
		t.Errorf("remaining = %s, want 90", b.Remaining)
	}
}
