package domain

import "time"

// Event types
const (
	EventTypeDebtCreated      = "debt.created"
	EventTypeDebtAmountAdded  = "debt.amount_added"
	EventTypeDebtPaid         = "debt.payment_recorded"
	EventTypeDebtSettled      = "debt.settled"
	EventTypeDebtReopened     = "debt.reopened"
	EventTypeAdditionReversed = "debt.addition_reversed"
	EventTypeDebtUpdated      = "debt.updated"
	EventTypeDebtDeleted      = "debt.deleted"
	EventTypeDisputeRaised    = "dispute.raised"
	EventTypeDisputeResolved  = "dispute.resolved"
)

// Aggregate types
const (
	AggregateTypeDebt    = "debt"
	AggregateTypeDispute = "dispute"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// DebtCreatedEvent payload
type DebtCreatedEvent struct {
	DebtID         string `json:"debt_id"`
	CreditorID     string `json:"creditor_id"`
	CounterpartyID string `json:"counterparty_id"`
	Direction      string `json:"direction"`
	Amount         string `json:"amount"`
	EventAt        string `json:"event_at"`
}

// DebtBalanceEvent is the payload of every event that moves a balance.
type DebtBalanceEvent struct {
	DebtID     string `json:"debt_id"`
	ResourceID string `json:"resource_id,omitempty"`
	Amount     string `json:"amount,omitempty"`
	TotalDebt  string `json:"total_debt"`
	Remaining  string `json:"remaining"`
	Paid       bool   `json:"paid"`
}

// DisputeEvent payload
type DisputeEvent struct {
	DisputeID string `json:"dispute_id"`
	DebtID    string `json:"debt_id"`
	ActorID   string `json:"actor_id"`
	Reason    string `json:"reason,omitempty"`
}
