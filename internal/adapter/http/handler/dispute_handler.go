package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/debtledger/internal/adapter/http/dto"
	"github.com/iho/debtledger/internal/domain"
	"github.com/iho/debtledger/internal/usecase"
)

// DisputeService defines the behavior needed by DisputeHandler.
type DisputeService interface {
	RaiseDispute(ctx context.Context, actor domain.Actor, debtID string, input usecase.RaiseDisputeInput) (*domain.Dispute, error)
	ResolveDispute(ctx context.Context, actor domain.Actor, debtID, disputeID, note string) (*domain.Dispute, error)
}

// DisputeHandler handles dispute-related HTTP requests.
type DisputeHandler struct {
	disputeUC DisputeService
}

// NewDisputeHandler creates a new DisputeHandler.
func NewDisputeHandler(disputeUC DisputeService) *DisputeHandler {
	return &DisputeHandler{disputeUC: disputeUC}
}

// Raise opens a dispute on a debt.
func (h *DisputeHandler) Raise(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrReject(w, r)
	if !ok {
		return
	}

	var req dto.RaiseDisputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	dispute, err := h.disputeUC.RaiseDispute(r.Context(), actor, chi.URLParam(r, "id"), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, r, "failed to raise dispute", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.DisputeFromDomain(dispute))
}

// Resolve closes a dispute. The body is optional.
func (h *DisputeHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrReject(w, r)
	if !ok {
		return
	}

	var req dto.ResolveDisputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	dispute, err := h.disputeUC.ResolveDispute(r.Context(), actor, chi.URLParam(r, "id"), chi.URLParam(r, "disputeID"), req.Note)
	if err != nil {
		writeDomainError(w, r, "failed to resolve dispute", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.DisputeFromDomain(dispute))
}
