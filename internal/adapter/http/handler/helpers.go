package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/iho/debtledger/internal/adapter/http/dto"
	"github.com/iho/debtledger/internal/adapter/http/middleware"
	"github.com/iho/debtledger/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// writeDomainError maps err to a status code and writes it. Unmapped errors
// are logged and hidden behind a generic message.
func writeDomainError(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := mapDomainError(err)

	resp := dto.ErrorResponse{Error: message, Message: err.Error()}

	var violation *domain.BalanceViolationError
	switch {
	case errors.As(err, &violation):
		resp.Remaining = &violation.Remaining
		resp.Attempted = &violation.Attempted
	case status == http.StatusBadRequest:
		resp.Field = errorField(err)
	case status == http.StatusInternalServerError:
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg(message)
		resp.Message = "internal error"
	}

	writeJSON(w, status, resp)
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	var violation *domain.BalanceViolationError

	switch {
	case errors.As(err, &violation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrDebtNotFound),
		errors.Is(err, domain.ErrAdditionNotFound),
		errors.Is(err, domain.ErrDisputeNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrMissingActor),
		errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrExpiredToken):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrDisputeAlreadyOpen),
		errors.Is(err, domain.ErrDisputeResolved):
		return http.StatusConflict
	case errorField(err) != "",
		errors.Is(err, domain.ErrExceedsBalance),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrSelfCounterparty),
		errors.Is(err, domain.ErrEmptyUpdate),
		errors.Is(err, domain.ErrInvalidIDFormat):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// errorField names the request field a validation error refers to.
func errorField(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrAmountTooSmall),
		errors.Is(err, domain.ErrAmountTooLarge),
		errors.Is(err, domain.ErrAmountImmutable):
		return "amount"
	case errors.Is(err, domain.ErrInvalidDirection):
		return "direction"
	case errors.Is(err, domain.ErrMissingCounterparty):
		return "counterparty_id"
	case errors.Is(err, domain.ErrInvalidSettlement):
		return "paid"
	case errors.Is(err, domain.ErrNotesTooLong):
		return "notes"
	case errors.Is(err, domain.ErrInvalidReason):
		return "reason"
	default:
		return ""
	}
}

// actorOrReject returns the acting owner or writes 401.
func actorOrReject(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", domain.ErrMissingActor.Error())
		return domain.Actor{}, false
	}
	return actor, true
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
