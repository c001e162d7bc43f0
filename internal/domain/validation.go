package domain

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidAmount   = errors.New("amount must be positive")
	ErrAmountTooLarge  = errors.New("amount exceeds maximum allowed")
	ErrAmountTooSmall  = errors.New("amount below minimum allowed")
	ErrNotesTooLong    = errors.New("notes exceed maximum length")
	ErrInvalidIDFormat = errors.New("invalid ID format")
	ErrInvalidReason   = errors.New("invalid dispute reason")
)

// Validation constants
const (
	MaxDebtAmount      = "1000000000000" // 1 trillion
	MinDebtAmount      = "0.01"
	MaxNotesLength     = 1000
	MaxDisputeReason   = 255
	MaxReferenceLength = 128
)

var (
	minDebtAmount = decimal.RequireFromString(MinDebtAmount)
	maxDebtAmount = decimal.RequireFromString(MaxDebtAmount)
)

// ValidateAmount validates a debt, addition or payment amount.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if amount.LessThan(minDebtAmount) {
		return fmt.Errorf("%w: minimum amount is %s", ErrAmountTooSmall, MinDebtAmount)
	}

	if amount.GreaterThan(maxDebtAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxDebtAmount)
	}

	return nil
}

// ValidateNotes validates free text attached to debts and rows.
func ValidateNotes(notes string) error {
	if utf8.RuneCountInString(notes) > MaxNotesLength {
		return fmt.Errorf("%w: notes exceed %d characters", ErrNotesTooLong, MaxNotesLength)
	}
	return nil
}

// ValidateReference validates an opaque identifier such as a counterparty
// or owner reference.
func ValidateReference(ref string) error {
	ref = strings.TrimSpace(ref)

	if ref == "" {
		return ErrInvalidIDFormat
	}

	if len(ref) > MaxReferenceLength {
		return fmt.Errorf("%w: reference exceeds %d characters", ErrInvalidIDFormat, MaxReferenceLength)
	}

	return nil
}

// ValidateDisputeReason validates the short reason of a dispute.
func ValidateDisputeReason(reason string) error {
	reason = strings.TrimSpace(reason)

	if reason == "" {
		return fmt.Errorf("%w: reason cannot be empty", ErrInvalidReason)
	}

	if utf8.RuneCountInString(reason) > MaxDisputeReason {
		return fmt.Errorf("%w: reason exceeds %d characters", ErrInvalidReason, MaxDisputeReason)
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int, error) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset, nil
}
