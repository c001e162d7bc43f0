package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/debtledger/internal/domain"
	"github.com/iho/debtledger/internal/usecase"
)

// CreateDebtRequest represents a request to create a debt or a loan.
type CreateDebtRequest struct {
	CounterpartyID      string          `json:"counterparty_id"`
	CounterpartyOwnerID string          `json:"counterparty_owner_id,omitempty"`
	Amount              decimal.Decimal `json:"amount"`
	Direction           string          `json:"direction,omitempty"`
	DueDate             *time.Time      `json:"due_date,omitempty"`
	Notes               string          `json:"notes,omitempty"`
	CreatedAt           *time.Time      `json:"created_at,omitempty"`
}

// ToUseCaseInput converts to use case input. An empty direction means debt.
func (r *CreateDebtRequest) ToUseCaseInput() (usecase.CreateDebtInput, error) {
	direction := domain.DirectionDebt
	if r.Direction != "" {
		parsed, err := domain.ParseDirection(r.Direction)
		if err != nil {
			return usecase.CreateDebtInput{}, err
		}
		direction = parsed
	}

	return usecase.CreateDebtInput{
		CounterpartyID:      r.CounterpartyID,
		CounterpartyOwnerID: r.CounterpartyOwnerID,
		Amount:              r.Amount,
		Direction:           direction,
		DueDate:             r.DueDate,
		Notes:               r.Notes,
		CreatedAt:           r.CreatedAt,
	}, nil
}

// AddAmountRequest represents a request to add to a debt.
type AddAmountRequest struct {
	Amount  decimal.Decimal `json:"amount"`
	Notes   string          `json:"notes,omitempty"`
	AddedAt *time.Time      `json:"added_at,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *AddAmountRequest) ToUseCaseInput(debtID string) usecase.AddAmountInput {
	return usecase.AddAmountInput{
		DebtID:  debtID,
		Amount:  r.Amount,
		Notes:   r.Notes,
		AddedAt: r.AddedAt,
	}
}

// RecordPaymentRequest represents a request to record a payment.
type RecordPaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Notes  string          `json:"notes,omitempty"`
	PaidAt *time.Time      `json:"paid_at,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *RecordPaymentRequest) ToUseCaseInput(debtID string) usecase.RecordPaymentInput {
	return usecase.RecordPaymentInput{
		DebtID: debtID,
		Amount: r.Amount,
		Notes:  r.Notes,
		PaidAt: r.PaidAt,
	}
}

// DecodeUpdateDebtRequest reads a partial update. Only due_date, notes and
// paid may be sent; a body naming amount is rejected with
// domain.ErrAmountImmutable, and a null due_date clears it.
func DecodeUpdateDebtRequest(body io.Reader) (domain.DebtUpdate, error) {
	var fields map[string]json.RawMessage
	if err := json.NewDecoder(body).Decode(&fields); err != nil {
		return domain.DebtUpdate{}, err
	}

	var update domain.DebtUpdate

	for name, raw := range fields {
		switch name {
		case "amount", "base_amount", "total_debt", "remaining":
			return domain.DebtUpdate{}, domain.ErrAmountImmutable
		case "due_date":
			if isNull(raw) {
				update.ClearDueDate = true
				continue
			}
			var due time.Time
			if err := json.Unmarshal(raw, &due); err != nil {
				return domain.DebtUpdate{}, fmt.Errorf("due_date: %w", err)
			}
			update.DueDate = &due
		case "notes":
			var notes string
			if err := json.Unmarshal(raw, &notes); err != nil {
				return domain.DebtUpdate{}, fmt.Errorf("notes: %w", err)
			}
			update.Notes = &notes
		case "paid":
			var paid bool
			if err := json.Unmarshal(raw, &paid); err != nil {
				return domain.DebtUpdate{}, fmt.Errorf("paid: %w", err)
			}
			update.Settled = &paid
		default:
			return domain.DebtUpdate{}, fmt.Errorf("unknown field %q", name)
		}
	}

	return update, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// RaiseDisputeRequest represents a counterparty's objection to a debt.
type RaiseDisputeRequest struct {
	Reason  string `json:"reason"`
	Message string `json:"message,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *RaiseDisputeRequest) ToUseCaseInput() usecase.RaiseDisputeInput {
	return usecase.RaiseDisputeInput{
		Reason:  r.Reason,
		Message: r.Message,
	}
}

// ResolveDisputeRequest represents the resolution of a dispute.
type ResolveDisputeRequest struct {
	Note string `json:"note,omitempty"`
}
