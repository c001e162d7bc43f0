package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Perspective says which side of a debt a reader is on.
type Perspective string

const (
	PerspectiveCreditor     Perspective = "creditor"
	PerspectiveCounterparty Perspective = "counterparty"
)

// DebtView is a debt as presented to one reader. It is derived at read
// time and never written back.
type DebtView struct {
	Debt              *Debt
	Balance           Balance
	Direction         Direction // direction as the reader sees it
	OriginalDirection Direction // direction as stored
	Perspective       Perspective
}

// ViewFor presents d to actor. A reader who is not the creditor sees the
// direction inverted: the creditor's debt is the counterparty's loan.
func ViewFor(actor Actor, d *Debt, b Balance) DebtView {
	view := DebtView{
		Debt:              d,
		Balance:           b,
		Direction:         d.Direction,
		OriginalDirection: d.Direction,
		Perspective:       PerspectiveCreditor,
	}

	if !d.IsCreditor(actor) {
		view.Direction = d.Direction.Opposite()
		view.Perspective = PerspectiveCounterparty
	}

	return view
}

// IsOverdue reports whether the debt is open and past its due date.
func (v DebtView) IsOverdue(now time.Time) bool {
	return !v.Debt.Paid && v.Debt.DueDate != nil && v.Debt.DueDate.Before(now)
}

// Summary aggregates a reader's open positions.
type Summary struct {
	ActorID       string          `json:"actor_id"`
	OwedToMe      decimal.Decimal `json:"owed_to_me"`
	IOwe          decimal.Decimal `json:"i_owe"`
	Net           decimal.Decimal `json:"net"`
	OwedToMeCount int             `json:"owed_to_me_count"`
	IOweCount     int             `json:"i_owe_count"`
	DisputedCount int             `json:"disputed_count"`
	OverdueCount  int             `json:"overdue_count"`
}

// Add folds one open view into the summary.
func (s *Summary) Add(v DebtView, now time.Time) {
	if v.Debt.Paid {
		return
	}

	switch v.Direction {
	case DirectionDebt:
		s.OwedToMe = s.OwedToMe.Add(v.Balance.Remaining)
		s.OwedToMeCount++
	case DirectionLoan:
		s.IOwe = s.IOwe.Add(v.Balance.Remaining)
		s.IOweCount++
	}

	if v.Debt.Disputed {
		s.DisputedCount++
	}
	if v.IsOverdue(now) {
		s.OverdueCount++
	}

	s.Net = s.OwedToMe.Sub(s.IOwe)
}

// CounterpartySummary aggregates every debt a creditor holds against one counterparty.
type CounterpartySummary struct {
	CounterpartyID   string          `json:"counterparty_id"`
	TotalDebt        decimal.Decimal `json:"total_debt"`
	TotalPaid        decimal.Decimal `json:"total_paid"`
	TotalRemaining   decimal.Decimal `json:"total_remaining"`
	ActiveDebtsCount int             `json:"active_debts_count"`
	DebtsCount       int             `json:"debts_count"`
}

// Add folds one debt balance into the counterparty totals.
func (s *CounterpartySummary) Add(d *Debt, b Balance) {
	s.TotalDebt = s.TotalDebt.Add(b.TotalDebt)
	s.TotalPaid = s.TotalPaid.Add(b.TotalPayments)
	s.TotalRemaining = s.TotalRemaining.Add(b.Remaining)
	s.DebtsCount++
	if !d.Paid {
		s.ActiveDebtsCount++
	}
}
