package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/debtledger/internal/adapter/http/dto"
	"github.com/iho/debtledger/internal/usecase"
)

type reconciliationStub struct {
	report *usecase.ReconciliationReport
	err    error
}

func (s *reconciliationStub) Check(ctx context.Context) (*usecase.ReconciliationReport, error) {
	return s.report, s.err
}

func TestLedgerHandler_Reconciliation(t *testing.T) {
	h := NewLedgerHandler(&reconciliationStub{report: &usecase.ReconciliationReport{
		TotalDebts:      2,
		ReconciledDebts: 1,
		Discrepancies: []*usecase.ReconciliationResult{
			{DebtID: "debt-2", StoredPaid: true, ExpectedPaid: false, Remaining: decimal.NewFromInt(5)},
		},
		CheckedAt: time.Now().UTC(),
	}})

	rec := httptest.NewRecorder()
	h.Reconciliation(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ledger/reconciliation", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.ReconciliationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Consistent)
	assert.Equal(t, 2, resp.TotalDebts)
	require.Len(t, resp.Discrepancies, 1)
	assert.Equal(t, "debt-2", resp.Discrepancies[0].DebtID)
}

func TestLedgerHandler_Reconciliation_Error(t *testing.T) {
	h := NewLedgerHandler(&reconciliationStub{err: errors.New("db down")})

	rec := httptest.NewRecorder()
	h.Reconciliation(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ledger/reconciliation", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
