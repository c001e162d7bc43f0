package generated

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type ActivityLog struct {
	ID         string             `json:"id"`
	ActorID    string             `json:"actor_id"`
	Action     string             `json:"action"`
	DebtID     string             `json:"debt_id"`
	ResourceID string             `json:"resource_id"`
	Amount     pgtype.Numeric     `json:"amount"`
	Details    []byte             `json:"details"`
	RequestID  string             `json:"request_id"`
	CreatedAt  pgtype.Timestamptz `json:"created_at"`
}

type Debt struct {
	ID                  string             `json:"id"`
	CreditorID          string             `json:"creditor_id"`
	CounterpartyID      string             `json:"counterparty_id"`
	CounterpartyOwnerID string             `json:"counterparty_owner_id"`
	Direction           string             `json:"direction"`
	BaseAmount          pgtype.Numeric     `json:"base_amount"`
	OriginalAmount      pgtype.Numeric     `json:"original_amount"`
	Paid                bool               `json:"paid"`
	PaidAt              pgtype.Timestamptz `json:"paid_at"`
	DueDate             pgtype.Timestamptz `json:"due_date"`
	Notes               string             `json:"notes"`
	Disputed            bool               `json:"disputed"`
	CreatedAt           pgtype.Timestamptz `json:"created_at"`
	UpdatedAt           pgtype.Timestamptz `json:"updated_at"`
}

type DebtAddition struct {
	ID        string             `json:"id"`
	DebtID    string             `json:"debt_id"`
	Amount    pgtype.Numeric     `json:"amount"`
	Notes     string             `json:"notes"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
}

type Dispute struct {
	ID             string             `json:"id"`
	DebtID         string             `json:"debt_id"`
	RaisedBy       string             `json:"raised_by"`
	Reason         string             `json:"reason"`
	Message        string             `json:"message"`
	CreatedAt      pgtype.Timestamptz `json:"created_at"`
	ResolvedAt     pgtype.Timestamptz `json:"resolved_at"`
	ResolvedBy     string             `json:"resolved_by"`
	ResolutionNote string             `json:"resolution_note"`
}

type OutboxEvent struct {
	ID            string             `json:"id"`
	AggregateID   string             `json:"aggregate_id"`
	AggregateType string             `json:"aggregate_type"`
	EventType     string             `json:"event_type"`
	Payload       []byte             `json:"payload"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
	PublishedAt   pgtype.Timestamptz `json:"published_at"`
	Published     bool               `json:"published"`
}

type Payment struct {
	ID        string             `json:"id"`
	DebtID    string             `json:"debt_id"`
	Amount    pgtype.Numeric     `json:"amount"`
	Notes     string             `json:"notes"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
}
