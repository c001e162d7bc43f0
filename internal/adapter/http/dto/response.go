package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/debtledger/internal/domain"
	"github.com/iho/debtledger/internal/usecase"
)

// DebtResponse represents a debt as seen by the requesting owner.
type DebtResponse struct {
	ID                  string           `json:"id"`
	CreditorID          string           `json:"creditor_id"`
	CounterpartyID      string           `json:"counterparty_id"`
	CounterpartyOwnerID string           `json:"counterparty_owner_id,omitempty"`
	Direction           domain.Direction `json:"direction"`
	OriginalDirection   domain.Direction `json:"original_direction"`
	Perspective         string           `json:"perspective"`
	Amount              decimal.Decimal  `json:"amount"`
	OriginalAmount      *decimal.Decimal `json:"original_amount,omitempty"`
	TotalAdditions      decimal.Decimal  `json:"total_additions"`
	TotalDebt           decimal.Decimal  `json:"total_debt"`
	TotalPaid           decimal.Decimal  `json:"total_paid"`
	Remaining           decimal.Decimal  `json:"remaining"`
	Paid                bool             `json:"paid"`
	PaidAt              *time.Time       `json:"paid_at,omitempty"`
	DueDate             *time.Time       `json:"due_date,omitempty"`
	Notes               string           `json:"notes,omitempty"`
	Disputed            bool             `json:"disputed"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

// DebtFromView converts a perspective view to a response.
func DebtFromView(v domain.DebtView) *DebtResponse {
	d := v.Debt
	return &DebtResponse{
		ID:                  d.ID,
		CreditorID:          d.CreditorID,
		CounterpartyID:      d.CounterpartyID,
		CounterpartyOwnerID: d.CounterpartyOwnerID,
		Direction:           v.Direction,
		OriginalDirection:   v.OriginalDirection,
		Perspective:         string(v.Perspective),
		Amount:              d.BaseAmount,
		OriginalAmount:      d.OriginalAmount,
		TotalAdditions:      v.Balance.TotalAdditions,
		TotalDebt:           v.Balance.TotalDebt,
		TotalPaid:           v.Balance.TotalPayments,
		Remaining:           v.Balance.Remaining,
		Paid:                d.Paid,
		PaidAt:              d.PaidAt,
		DueDate:             d.DueDate,
		Notes:               d.Notes,
		Disputed:            d.Disputed,
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
	}
}

// DebtsFromViews converts views to responses.
func DebtsFromViews(views []domain.DebtView) []*DebtResponse {
	result := make([]*DebtResponse, len(views))
	for i, v := range views {
		result[i] = DebtFromView(v)
	}
	return result
}

// ListDebtsResponse represents a page of debts.
type ListDebtsResponse struct {
	Debts  []*DebtResponse `json:"debts"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// DebtDetailsResponse is a debt with its rows.
type DebtDetailsResponse struct {
	*DebtResponse
	Additions []*RowResponse     `json:"additions"`
	Payments  []*RowResponse     `json:"payments"`
	Disputes  []*DisputeResponse `json:"disputes"`
}

// DebtDetailsFromUseCase converts debt details to a response.
func DebtDetailsFromUseCase(d *usecase.DebtDetails) *DebtDetailsResponse {
	resp := &DebtDetailsResponse{
		DebtResponse: DebtFromView(d.View),
		Additions:    make([]*RowResponse, len(d.Additions)),
		Payments:     make([]*RowResponse, len(d.Payments)),
		Disputes:     make([]*DisputeResponse, len(d.Disputes)),
	}
	for i, a := range d.Additions {
		resp.Additions[i] = AdditionFromDomain(a)
	}
	for i, p := range d.Payments {
		resp.Payments[i] = PaymentFromDomain(p)
	}
	for i, dp := range d.Disputes {
		resp.Disputes[i] = DisputeFromDomain(dp)
	}
	return resp
}

// RowResponse represents an addition or a payment.
type RowResponse struct {
	ID        string          `json:"id"`
	DebtID    string          `json:"debt_id"`
	Amount    decimal.Decimal `json:"amount"`
	Notes     string          `json:"notes,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// AdditionFromDomain converts an addition to a response.
func AdditionFromDomain(a *domain.Addition) *RowResponse {
	if a == nil {
		return nil
	}
	return &RowResponse{ID: a.ID, DebtID: a.DebtID, Amount: a.Amount, Notes: a.Notes, CreatedAt: a.CreatedAt}
}

// PaymentFromDomain converts a payment to a response.
func PaymentFromDomain(p *domain.Payment) *RowResponse {
	return &RowResponse{ID: p.ID, DebtID: p.DebtID, Amount: p.Amount, Notes: p.Notes, CreatedAt: p.CreatedAt}
}

// CreateDebtResponse reports whether a create opened a debt or merged into one.
type CreateDebtResponse struct {
	Outcome   usecase.CreateOutcome `json:"outcome"`
	Debt      *DebtResponse         `json:"debt"`
	Addition  *RowResponse          `json:"addition,omitempty"`
	TotalDebt decimal.Decimal       `json:"total_debt"`
	Remaining decimal.Decimal       `json:"remaining"`
}

// CreateDebtFromResult converts a create result to a response in the actor's perspective.
func CreateDebtFromResult(actor domain.Actor, res *usecase.CreateDebtResult) *CreateDebtResponse {
	return &CreateDebtResponse{
		Outcome:   res.Outcome,
		Debt:      DebtFromView(domain.ViewFor(actor, res.Debt, res.Balance)),
		Addition:  AdditionFromDomain(res.Addition),
		TotalDebt: res.Balance.TotalDebt,
		Remaining: res.Balance.Remaining,
	}
}

// AdditionResultResponse is returned by add-amount.
type AdditionResultResponse struct {
	Addition  *RowResponse    `json:"addition"`
	TotalDebt decimal.Decimal `json:"total_debt"`
	Remaining decimal.Decimal `json:"remaining"`
	Paid      bool            `json:"paid"`
}

// AdditionFromResult converts an addition result to a response.
func AdditionFromResult(res *usecase.AdditionResult) *AdditionResultResponse {
	return &AdditionResultResponse{
		Addition:  AdditionFromDomain(res.Addition),
		TotalDebt: res.Balance.TotalDebt,
		Remaining: res.Balance.Remaining,
		Paid:      res.Debt.Paid,
	}
}

// ReverseAdditionResponse is returned when an addition is reversed.
type ReverseAdditionResponse struct {
	Success   bool            `json:"success"`
	TotalDebt decimal.Decimal `json:"total_debt"`
	Remaining decimal.Decimal `json:"remaining"`
	Paid      bool            `json:"paid"`
}

// PaymentResultResponse is returned by record-payment.
type PaymentResultResponse struct {
	Payment   *RowResponse    `json:"payment"`
	TotalPaid decimal.Decimal `json:"total_paid"`
	Remaining decimal.Decimal `json:"remaining"`
	Paid      bool            `json:"paid"`
}

// PaymentFromResult converts a payment result to a response.
func PaymentFromResult(res *usecase.PaymentResult) *PaymentResultResponse {
	return &PaymentResultResponse{
		Payment:   PaymentFromDomain(res.Payment),
		TotalPaid: res.Balance.TotalPayments,
		Remaining: res.Balance.Remaining,
		Paid:      res.Debt.Paid,
	}
}

// DisputeResponse represents a dispute.
type DisputeResponse struct {
	ID             string     `json:"id"`
	DebtID         string     `json:"debt_id"`
	RaisedBy       string     `json:"raised_by"`
	Reason         string     `json:"reason"`
	Message        string     `json:"message,omitempty"`
	Open           bool       `json:"open"`
	CreatedAt      time.Time  `json:"created_at"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
	ResolvedBy     string     `json:"resolved_by,omitempty"`
	ResolutionNote string     `json:"resolution_note,omitempty"`
}

// DisputeFromDomain converts a dispute to a response.
func DisputeFromDomain(d *domain.Dispute) *DisputeResponse {
	return &DisputeResponse{
		ID:             d.ID,
		DebtID:         d.DebtID,
		RaisedBy:       d.RaisedBy,
		Reason:         d.Reason,
		Message:        d.Message,
		Open:           d.IsOpen(),
		CreatedAt:      d.CreatedAt,
		ResolvedAt:     d.ResolvedAt,
		ResolvedBy:     d.ResolvedBy,
		ResolutionNote: d.ResolutionNote,
	}
}

// ActivityResponse represents an activity record.
type ActivityResponse struct {
	ID         string           `json:"id"`
	ActorID    string           `json:"actor_id"`
	Action     string           `json:"action"`
	DebtID     string           `json:"debt_id,omitempty"`
	ResourceID string           `json:"resource_id,omitempty"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	Details    map[string]any   `json:"details,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}

// ActivitiesFromDomain converts activity records to responses.
func ActivitiesFromDomain(items []*domain.Activity) []*ActivityResponse {
	result := make([]*ActivityResponse, len(items))
	for i, a := range items {
		result[i] = &ActivityResponse{
			ID:         a.ID,
			ActorID:    a.ActorID,
			Action:     string(a.Action),
			DebtID:     a.DebtID,
			ResourceID: a.ResourceID,
			Amount:     a.Amount,
			Details:    a.Details,
			CreatedAt:  a.CreatedAt,
		}
	}
	return result
}

// EventResponse represents an outbox event.
type EventResponse struct {
	ID          string         `json:"id"`
	EventType   string         `json:"event_type"`
	Payload     map[string]any `json:"payload"`
	CreatedAt   time.Time      `json:"created_at"`
	PublishedAt *time.Time     `json:"published_at,omitempty"`
}

// EventsFromDomain converts outbox events to responses.
func EventsFromDomain(events []*domain.OutboxEvent) []*EventResponse {
	result := make([]*EventResponse, len(events))
	for i, e := range events {
		result[i] = &EventResponse{
			ID:          e.ID,
			EventType:   e.EventType,
			Payload:     e.Payload,
			CreatedAt:   e.CreatedAt,
			PublishedAt: e.PublishedAt,
		}
	}
	return result
}

// ReconciliationResponse represents a reconciliation report.
type ReconciliationResponse struct {
	Consistent      bool                   `json:"consistent"`
	TotalDebts      int                    `json:"total_debts"`
	ReconciledDebts int                    `json:"reconciled_debts"`
	Discrepancies   []*DiscrepancyResponse `json:"discrepancies"`
	CheckedAt       time.Time              `json:"checked_at"`
}

// DiscrepancyResponse is one debt whose stored flag disagrees with its rows.
type DiscrepancyResponse struct {
	DebtID       string          `json:"debt_id"`
	StoredPaid   bool            `json:"stored_paid"`
	ExpectedPaid bool            `json:"expected_paid"`
	TotalDebt    decimal.Decimal `json:"total_debt"`
	Remaining    decimal.Decimal `json:"remaining"`
}

// ReconciliationFromReport converts a report to a response.
func ReconciliationFromReport(r *usecase.ReconciliationReport) *ReconciliationResponse {
	resp := &ReconciliationResponse{
		Consistent:      r.Consistent,
		TotalDebts:      r.TotalDebts,
		ReconciledDebts: r.ReconciledDebts,
		Discrepancies:   make([]*DiscrepancyResponse, len(r.Discrepancies)),
		CheckedAt:       r.CheckedAt,
	}
	for i, d := range r.Discrepancies {
		resp.Discrepancies[i] = &DiscrepancyResponse{
			DebtID:       d.DebtID,
			StoredPaid:   d.StoredPaid,
			ExpectedPaid: d.ExpectedPaid,
			TotalDebt:    d.TotalDebt,
			Remaining:    d.Remaining,
		}
	}
	return resp
}

// SuccessResponse acknowledges an operation without a body.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error     string           `json:"error"`
	Message   string           `json:"message,omitempty"`
	Field     string           `json:"field,omitempty"`
	Remaining *decimal.Decimal `json:"remaining,omitempty"`
	Attempted *decimal.Decimal `json:"attempted,omitempty"`
}
