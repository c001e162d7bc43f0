package domain

import (
	"github.com/shopspring/decimal"
)

// SettlementEpsilon is the tolerance below which a remaining balance counts as settled.
var SettlementEpsilon = decimal.New(1, -2)

// Balance is the derived state of a debt. It is never stored.
type Balance struct {
	BaseAmount     decimal.Decimal
	TotalAdditions decimal.Decimal
	TotalPayments  decimal.Decimal
	TotalDebt      decimal.Decimal
	Remaining      decimal.Decimal
}

// CalculateBalance derives the balance of a debt from its base amount and
// the amounts of its addition and payment rows.
func CalculateBalance(base decimal.Decimal, additions, payments []decimal.Decimal) Balance {
	totalAdditions := decimal.Sum(decimal.Zero, additions...)
	totalPayments := decimal.Sum(decimal.Zero, payments...)
	totalDebt := base.Add(totalAdditions)

	remaining := totalDebt.Sub(totalPayments)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	return Balance{
		BaseAmount:     base,
		TotalAdditions: totalAdditions,
		TotalPayments:  totalPayments,
		TotalDebt:      totalDebt,
		Remaining:      remaining,
	}
}

// BalanceOf computes the balance of d from its rows.
func BalanceOf(d *Debt, additions []*Addition, payments []*Payment) Balance {
	return CalculateBalance(d.BaseAmount, AdditionAmounts(additions), PaymentAmounts(payments))
}

// AdditionAmounts extracts the amounts of additions.
func AdditionAmounts(additions []*Addition) []decimal.Decimal {
	amounts := make([]decimal.Decimal, len(additions))
	for i, a := range additions {
		amounts[i] = a.Amount
	}
	return amounts
}

// PaymentAmounts extracts the amounts of payments.
func PaymentAmounts(payments []*Payment) []decimal.Decimal {
	amounts := make([]decimal.Decimal, len(payments))
	for i, p := range payments {
		amounts[i] = p.Amount
	}
	return amounts
}

// IsSettled reports whether the remaining balance is within SettlementEpsilon of zero.
func (b Balance) IsSettled() bool {
	return b.Remaining.LessThanOrEqual(SettlementEpsilon)
}

// ValidatePayment checks a payment amount against the remaining balance.
func (b Balance) ValidatePayment(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if amount.GreaterThan(b.Remaining) {
		return &BalanceViolationError{Remaining: b.Remaining, Attempted: amount}
	}

	return nil
}
