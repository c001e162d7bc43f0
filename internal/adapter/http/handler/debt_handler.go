package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/debtledger/internal/adapter/http/dto"
	"github.com/iho/debtledger/internal/domain"
	"github.com/iho/debtledger/internal/usecase"
)

// DebtService defines the behavior needed by DebtHandler.
type DebtService interface {
	CreateDebt(ctx context.Context, actor domain.Actor, input usecase.CreateDebtInput) (*usecase.CreateDebtResult, error)
	GetDebt(ctx context.Context, actor domain.Actor, id string) (*usecase.DebtDetails, error)
	ListDebts(ctx context.Context, actor domain.Actor, input usecase.ListDebtsInput) ([]domain.DebtView, error)
	UpdateDebt(ctx context.Context, actor domain.Actor, id string, update domain.DebtUpdate) (*domain.DebtView, error)
	DeleteDebt(ctx context.Context, actor domain.Actor, id string) error
	AddAmount(ctx context.Context, actor domain.Actor, input usecase.AddAmountInput) (*usecase.AdditionResult, error)
	RecordPayment(ctx context.Context, actor domain.Actor, input usecase.RecordPaymentInput) (*usecase.PaymentResult, error)
	ReverseAddition(ctx context.Context, actor domain.Actor, debtID, additionID string) (*usecase.AdditionResult, error)
	ListActivity(ctx context.Context, actor domain.Actor, debtID string, limit, offset int) ([]*domain.Activity, error)
	ListEvents(ctx context.Context, actor domain.Actor, debtID string, limit, offset int) ([]*domain.OutboxEvent, error)
}

// DebtHandler handles debt-related HTTP requests.
type DebtHandler struct {
	debtUC DebtService
}

// NewDebtHandler creates a new DebtHandler.
func NewDebtHandler(debtUC DebtService) *DebtHandler {
	return &DebtHandler{debtUC: debtUC}
}

// Create records a debt, or folds the amount into the open debt of the same relationship.
func (h *DebtHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, "")
}

// CreateLoan is Create with the direction forced to loan.
func (h *DebtHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, string(domain.DirectionLoan))
}

func (h *DebtHandler) create(w http.ResponseWriter, r *http.Request, direction string) {
	actor, ok := actorOrReject(w, r)
	if !ok {
		return
	}

	var req dto.CreateDebtRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if direction != "" {
		req.Direction = direction
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeDomainError(w, r, "invalid request", err)
		return
	}

	result, err := h.debtUC.CreateDebt(r.Context(), actor, input)
	if err != nil {
		writeDomainError(w, r, "failed to create debt", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.CreateDebtFromResult(actor, result))
}

// Get returns a debt with its balance and rows.
func (h *DebtHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrReject(w, r)
	if !ok {
		return
	}

	details, err := h.debtUC.GetDebt(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, "failed to get debt", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.DebtDetailsFromUseCase(details))
}

// List returns the actor's debts in the actor's perspective.
func (h *DebtHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrReject(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	limit, offset, _ := domain.ValidatePagination(parseIntQuery(r, "limit", 50), parseIntQuery(r, "offset", 0))

	views, err := h.debtUC.ListDebts(r.Context(), actor, usecase.ListDebtsInput{
		CounterpartyID: q.Get("counterparty_id"),
		Direction:      q.Get("direction"),
		Status:         q.Get("status"),
		Limit:          limit,
		Offset:         offset,
	})
	if err != nil {
		writeDomainError(w, r, "failed to list debts", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListDebtsResponse{
		Debts:  dto.DebtsFromViews(views),
		Limit:  limit,
		Offset: offset,
	})
}

// Update changes the due date, notes or settled flag of a debt.
func (h *DebtHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrReject(w, r)
	if !ok {
		return
	}

	update, err := dto.DecodeUpdateDebtRequest(r.Body)
	if err != nil {
		if mapDomainError(err) == http.StatusBadRequest {
			writeDomainError(w, r, "invalid request", err)
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	view, err := h.debtUC.UpdateDebt(r.Context(), actor, chi.URLParam(r, "id"), update)
	if err != nil {
		writeDomainError(w, r, "failed to update debt", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.DebtFromView(*view))
}

// Delete removes a debt and its rows.
func (h *DebtHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrReject(w, r)
	if !ok {
		return
	}

	if err := h.debtUC.DeleteDebt(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, r, "failed to delete debt", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Success: true})
}

// AddAmount increases a debt.
func (h *DebtHandler) AddAmount(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrReject(w, r)
	if !ok {
		return
	}

	var req dto.AddAmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.debtUC.AddAmount(r.Context(), actor, req.ToUseCaseInput(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, r, "failed to add amount", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.AdditionFromResult(result))
}

// RecordPayment pays down a debt. Over-payments are rejected with the
// remaining balance in the body.
func (h *DebtHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrReject(w, r)
	if !ok {
		return
	}

	var req dto.RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.debtUC.RecordPayment(r.Context(), actor, req.ToUseCaseInput(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, r, "failed to record payment", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.PaymentFromResult(result))
}

// ReverseAddition deletes an addition from a debt.
func (h *DebtHandler) ReverseAddition(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrReject(w, r)
	if !ok {
		return
	}

	result, err := h.debtUC.ReverseAddition(r.Context(), actor, chi.URLParam(r, "id"), chi.URLParam(r, "additionID"))
	if err != nil {
		writeDomainError(w, r, "failed to reverse addition", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReverseAdditionResponse{
		Success:   true,
		TotalDebt: result.Balance.TotalDebt,
		Remaining: result.Balance.Remaining,
		Paid:      result.Debt.Paid,
	})
}

// Activity lists the activity records of a debt.
func (h *DebtHandler) Activity(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrReject(w, r)
	if !ok {
		return
	}

	items, err := h.debtUC.ListActivity(r.Context(), actor, chi.URLParam(r, "id"),
		parseIntQuery(r, "limit", 50), parseIntQuery(r, "offset", 0))
	if err != nil {
		writeDomainError(w, r, "failed to list activity", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ActivitiesFromDomain(items))
}

// Events lists the domain events emitted for a debt.
func (h *DebtHandler) Events(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrReject(w, r)
	if !ok {
		return
	}

	events, err := h.debtUC.ListEvents(r.Context(), actor, chi.URLParam(r, "id"),
		parseIntQuery(r, "limit", 50), parseIntQuery(r, "offset", 0))
	if err != nil {
		writeDomainError(w, r, "failed to list events", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EventsFromDomain(events))
}
