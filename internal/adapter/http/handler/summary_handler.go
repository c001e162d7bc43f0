package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/debtledger/internal/domain"
)

// SummaryService defines the behavior needed by SummaryHandler.
type SummaryService interface {
	Summary(ctx context.Context, actor domain.Actor) (*domain.Summary, error)
	CounterpartySummary(ctx context.Context, actor domain.Actor, counterpartyID string) (*domain.CounterpartySummary, error)
}

// SummaryHandler serves aggregate balances.
type SummaryHandler struct {
	summaryUC SummaryService
}

// NewSummaryHandler creates a new SummaryHandler.
func NewSummaryHandler(summaryUC SummaryService) *SummaryHandler {
	return &SummaryHandler{summaryUC: summaryUC}
}

// Summary returns what the actor is owed and owes across open debts.
func (h *SummaryHandler) Summary(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrReject(w, r)
	if !ok {
		return
	}

	summary, err := h.summaryUC.Summary(r.Context(), actor)
	if err != nil {
		writeDomainError(w, r, "failed to build summary", err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// Counterparty returns the totals of every debt held against one counterparty.
func (h *SummaryHandler) Counterparty(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrReject(w, r)
	if !ok {
		return
	}

	summary, err := h.summaryUC.CounterpartySummary(r.Context(), actor, chi.URLParam(r, "counterpartyID"))
	if err != nil {
		writeDomainError(w, r, "failed to build counterparty summary", err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
