package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/debtledger/internal/adapter/http/dto"
	"github.com/iho/debtledger/internal/domain"
	"github.com/iho/debtledger/internal/usecase"
)

type disputeServiceStub struct {
	raiseFn   func(ctx context.Context, actor domain.Actor, debtID string, input usecase.RaiseDisputeInput) (*domain.Dispute, error)
	resolveFn func(ctx context.Context, actor domain.Actor, debtID, disputeID, note string) (*domain.Dispute, error)
}

func (s *disputeServiceStub) RaiseDispute(ctx context.Context, actor domain.Actor, debtID string, input usecase.RaiseDisputeInput) (*domain.Dispute, error) {
	return s.raiseFn(ctx, actor, debtID, input)
}

func (s *disputeServiceStub) ResolveDispute(ctx context.Context, actor domain.Actor, debtID, disputeID, note string) (*domain.Dispute, error) {
	return s.resolveFn(ctx, actor, debtID, disputeID, note)
}

func TestDisputeHandler_Raise(t *testing.T) {
	var captured usecase.RaiseDisputeInput
	h := NewDisputeHandler(&disputeServiceStub{
		raiseFn: func(ctx context.Context, actor domain.Actor, debtID string, input usecase.RaiseDisputeInput) (*domain.Dispute, error) {
			captured = input
			return &domain.Dispute{ID: "dsp-1", DebtID: debtID, RaisedBy: actor.ID, Reason: input.Reason}, nil
		},
	})

	rec := httptest.NewRecorder()
	h.Raise(rec, newRequest(http.MethodPost, "/api/v1/debts/debt-1/disputes", "owner-2",
		dto.RaiseDisputeRequest{Reason: "wrong_amount", Message: "it was 90"}, map[string]string{"id": "debt-1"}))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "wrong_amount", captured.Reason)
	assert.Equal(t, "it was 90", captured.Message)

	var resp dto.DisputeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "dsp-1", resp.ID)
	assert.Equal(t, "owner-2", resp.RaisedBy)
	assert.True(t, resp.Open)
}

func TestDisputeHandler_Raise_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"creditor cannot dispute", domain.ErrForbidden, http.StatusForbidden},
		{"already open", domain.ErrDisputeAlreadyOpen, http.StatusConflict},
		{"bad reason", domain.ErrInvalidReason, http.StatusBadRequest},
		{"unknown debt", domain.ErrDebtNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewDisputeHandler(&disputeServiceStub{
				raiseFn: func(ctx context.Context, actor domain.Actor, debtID string, input usecase.RaiseDisputeInput) (*domain.Dispute, error) {
					return nil, tt.err
				},
			})

			rec := httptest.NewRecorder()
			h.Raise(rec, newRequest(http.MethodPost, "/", "owner-1", dto.RaiseDisputeRequest{Reason: "x"}, map[string]string{"id": "debt-1"}))

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestDisputeHandler_Resolve_EmptyBody(t *testing.T) {
	var gotDispute, gotNote string
	h := NewDisputeHandler(&disputeServiceStub{
		resolveFn: func(ctx context.Context, actor domain.Actor, debtID, disputeID, note string) (*domain.Dispute, error) {
			gotDispute, gotNote = disputeID, note
			resolved := time.Now().UTC()
			return &domain.Dispute{ID: disputeID, DebtID: debtID, ResolvedAt: &resolved, ResolvedBy: actor.ID}, nil
		},
	})

	rec := httptest.NewRecorder()
	h.Resolve(rec, newRequest(http.MethodPost, "/api/v1/debts/debt-1/disputes/dsp-1/resolve", "owner-1", nil,
		map[string]string{"id": "debt-1", "disputeID": "dsp-1"}))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "dsp-1", gotDispute)
	assert.Empty(t, gotNote)

	var resp dto.DisputeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Open)
}

func TestDisputeHandler_Resolve_AlreadyResolved(t *testing.T) {
	h := NewDisputeHandler(&disputeServiceStub{
		resolveFn: func(ctx context.Context, actor domain.Actor, debtID, disputeID, note string) (*domain.Dispute, error) {
			assert.Equal(t, "paid in cash", note)
			return nil, domain.ErrDisputeResolved
		},
	})

	rec := httptest.NewRecorder()
	h.Resolve(rec, newRequest(http.MethodPost, "/", "owner-1", dto.ResolveDisputeRequest{Note: "paid in cash"},
		map[string]string{"id": "debt-1", "disputeID": "dsp-1"}))

	assert.Equal(t, http.StatusConflict, rec.Code)
}
