package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction tells whose side of the relationship the creator is on.
type Direction string

const (
	// DirectionDebt means the creator is owed money by the counterparty.
	DirectionDebt Direction = "debt"
	// DirectionLoan means the creator owes money to the counterparty.
	DirectionLoan Direction = "loan"
)

// IsValid checks if the direction is one of the known tags.
func (d Direction) IsValid() bool {
	return d == DirectionDebt || d == DirectionLoan
}

// Opposite returns the direction as seen by the other party.
func (d Direction) Opposite() Direction {
	switch d {
	case DirectionDebt:
		return DirectionLoan
	case DirectionLoan:
		return DirectionDebt
	default:
		return d
	}
}

// ParseDirection parses a direction tag, defaulting empty input to DirectionDebt.
func ParseDirection(s string) (Direction, error) {
	if s == "" {
		return DirectionDebt, nil
	}

	d := Direction(s)
	if !d.IsValid() {
		return "", ErrInvalidDirection
	}

	return d, nil
}

// Debt is one ledger line between a creditor and a counterparty.
//
// BaseAmount is written at creation and never replaced afterwards; the
// outstanding balance is always derived from it plus the addition and
// payment rows (see CalculateBalance).
type Debt struct {
	ID                  string
	CreditorID          string
	CounterpartyID      string
	CounterpartyOwnerID string // set when the counterparty is itself a shop owner
	Direction           Direction
	BaseAmount          decimal.Decimal
	OriginalAmount      *decimal.Decimal // snapshot of BaseAmount taken on the first addition
	Paid                bool
	PaidAt              *time.Time
	DueDate             *time.Time
	Notes               string
	Disputed            bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// RelationshipKey identifies the ledger line used by merge-on-create.
func (d *Debt) RelationshipKey() string {
	return RelationshipKey(d.CreditorID, d.CounterpartyID, d.Direction)
}

// RelationshipKey builds the (creditor, counterparty, direction) key.
func RelationshipKey(creditorID, counterpartyID string, direction Direction) string {
	return creditorID + "|" + counterpartyID + "|" + string(direction)
}

// IsCreditor reports whether actor created the debt.
func (d *Debt) IsCreditor(actor Actor) bool {
	return actor.ID != "" && actor.ID == d.CreditorID
}

// IsCounterparty reports whether actor is the owner linked to the counterparty.
func (d *Debt) IsCounterparty(actor Actor) bool {
	return actor.ID != "" && d.CounterpartyOwnerID != "" && actor.ID == d.CounterpartyOwnerID
}

// CanView checks if actor is allowed to read the debt.
func (d *Debt) CanView(actor Actor) bool {
	return d.IsCreditor(actor) || d.IsCounterparty(actor)
}

// ApplySettlement sets the paid flag from a freshly computed balance.
// The settlement timestamp is stamped once and kept on re-settlement;
// it is cleared when the debt reopens.
func (d *Debt) ApplySettlement(b Balance, now time.Time) {
	if b.IsSettled() {
		d.Paid = true
		if d.PaidAt == nil {
			t := now
			d.PaidAt = &t
		}
		return
	}

	d.Paid = false
	d.PaidAt = nil
}

// CaptureOriginalAmount records BaseAmount as the original amount if not
// captured yet. It returns true when the snapshot was taken.
func (d *Debt) CaptureOriginalAmount() bool {
	if d.OriginalAmount != nil {
		return false
	}

	original := d.BaseAmount
	d.OriginalAmount = &original

	return true
}

// Addition increments the principal of an existing debt.
type Addition struct {
	ID        string
	DebtID    string
	Amount    decimal.Decimal
	Notes     string
	CreatedAt time.Time
}

// Payment reduces the outstanding balance of a debt.
type Payment struct {
	ID        string
	DebtID    string
	Amount    decimal.Decimal
	Notes     string
	CreatedAt time.Time
}

// DebtStatus filters debts by settlement state.
type DebtStatus string

const (
	DebtStatusAll     DebtStatus = "all"
	DebtStatusOpen    DebtStatus = "open"
	DebtStatusSettled DebtStatus = "settled"
)

// ParseDebtStatus parses a status filter, defaulting to DebtStatusAll.
func ParseDebtStatus(s string) (DebtStatus, error) {
	switch DebtStatus(s) {
	case "", DebtStatusAll:
		return DebtStatusAll, nil
	case DebtStatusOpen:
		return DebtStatusOpen, nil
	case DebtStatusSettled:
		return DebtStatusSettled, nil
	default:
		return "", ErrInvalidStatus
	}
}

// DebtFilter narrows a debt listing for one actor. Direction is expressed
// from the actor's point of view.
type DebtFilter struct {
	ActorID        string
	CounterpartyID string
	Direction      Direction
	Status         DebtStatus
	Limit          int
	Offset         int
}

// Matches reports whether d passes the filter. Repositories that cannot push
// the filter into a query use it directly.
func (f DebtFilter) Matches(d *Debt) bool {
	if f.ActorID != "" && d.CreditorID != f.ActorID && d.CounterpartyOwnerID != f.ActorID {
		return false
	}
	if f.CounterpartyID != "" && d.CounterpartyID != f.CounterpartyID {
		return false
	}
	if f.Direction != "" && d.Direction != f.storedDirection(d) {
		return false
	}

	switch f.Status {
	case DebtStatusOpen:
		return !d.Paid
	case DebtStatusSettled:
		return d.Paid
	}

	return true
}

// storedDirection translates the reader-facing direction filter into the
// direction stored on d.
func (f DebtFilter) storedDirection(d *Debt) Direction {
	if f.ActorID != "" && d.CreditorID != f.ActorID {
		return f.Direction.Opposite()
	}
	return f.Direction
}

// DebtUpdate lists the fields an owner may change on an existing debt.
// Amounts are not part of it: they only move through additions and payments.
type DebtUpdate struct {
	DueDate      *time.Time
	ClearDueDate bool
	Notes        *string
	Settled      *bool
}

// IsEmpty reports whether the update changes nothing.
func (u DebtUpdate) IsEmpty() bool {
	return u.DueDate == nil && !u.ClearDueDate && u.Notes == nil && u.Settled == nil
}

// ApplyTo copies the descriptive fields onto d. Settlement overrides are
// handled by the engine because they touch the balance.
func (u DebtUpdate) ApplyTo(d *Debt) {
	if u.ClearDueDate {
		d.DueDate = nil
	}
	if u.DueDate != nil {
		due := *u.DueDate
		d.DueDate = &due
	}
	if u.Notes != nil {
		d.Notes = *u.Notes
	}
}
