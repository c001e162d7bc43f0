package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// Debt errors
	ErrDebtNotFound        = errors.New("debt not found")
	ErrAdditionNotFound    = errors.New("addition not found")
	ErrExceedsBalance      = errors.New("payment exceeds remaining balance")
	ErrInvalidSettlement   = errors.New("settlement override does not match balance")
	ErrAmountImmutable     = errors.New("amount cannot be updated directly")
	ErrInvalidDirection    = errors.New("direction must be debt or loan")
	ErrInvalidStatus       = errors.New("status must be open, settled or all")
	ErrMissingCounterparty = errors.New("counterparty is required")
	ErrSelfCounterparty    = errors.New("counterparty owner cannot be the creditor")
	ErrEmptyUpdate         = errors.New("update contains no fields")

	// Dispute errors
	ErrDisputeNotFound    = errors.New("dispute not found")
	ErrDisputeAlreadyOpen = errors.New("debt already has an open dispute")
	ErrDisputeResolved    = errors.New("dispute is already resolved")

	// Access errors
	ErrMissingActor = errors.New("actor identity is required")
	ErrForbidden    = errors.New("actor is not allowed to access this debt")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// BalanceViolationError is returned when a payment is larger than the
// remaining balance. It carries both values so callers can offer a
// corrected amount.
type BalanceViolationError struct {
	Remaining decimal.Decimal
	Attempted decimal.Decimal
}

func (e *BalanceViolationError) Error() string {
	return fmt.Sprintf("%s: remaining %s, attempted %s", ErrExceedsBalance, e.Remaining, e.Attempted)
}

func (e *BalanceViolationError) Unwrap() error {
	return ErrExceedsBalance
}
