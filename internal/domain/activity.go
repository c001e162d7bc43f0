package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Activity is an append-only record of a successful ledger mutation.
// Writing it is best effort: a failure never undoes the mutation.
type Activity struct {
	ID         string
	ActorID    string         // who performed the action
	Action     ActivityAction // what happened
	DebtID     string
	ResourceID string // addition, payment or dispute id when applicable
	Amount     *decimal.Decimal
	Details    JSON
	RequestID  string
	CreatedAt  time.Time
}

// JSON is free-form structured data stored alongside an activity.
type JSON map[string]any

// ActivityAction names an auditable ledger action.
type ActivityAction string

const (
	ActivityDebtCreate       ActivityAction = "debt.create"
	ActivityDebtMerge        ActivityAction = "debt.merge"
	ActivityDebtAdd          ActivityAction = "debt.add"
	ActivityDebtPay          ActivityAction = "debt.pay"
	ActivityDebtReverseAdd   ActivityAction = "debt.reverse_addition"
	ActivityDebtUpdate       ActivityAction = "debt.update"
	ActivityDebtDelete       ActivityAction = "debt.delete"
	ActivityDisputeRaise     ActivityAction = "dispute.raise"
	ActivityDisputeResolve   ActivityAction = "dispute.resolve"
	ActivityLedgerReconciled ActivityAction = "ledger.reconcile"
)

// ActivityFilter narrows activity listings.
type ActivityFilter struct {
	ActorID string
	DebtID  string
	Action  ActivityAction
	Limit   int
	Offset  int
}

// MarshalState converts a domain object to JSON for activity details.
func MarshalState(v any) JSON {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return JSON{"error": "failed to marshal state"}
	}

	var result JSON
	if err := json.Unmarshal(data, &result); err != nil {
		return JSON{"error": "failed to unmarshal state"}
	}

	return result
}
