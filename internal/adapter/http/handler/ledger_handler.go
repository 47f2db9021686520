package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/iho/zionledger/internal/adapter/http/dto"
	"github.com/iho/zionledger/internal/usecase"
)

// LedgerService defines ledger-wide checks.
type LedgerService interface {
	CheckConsistency(ctx context.Context) (*usecase.ConsistencyReport, error)
}

// LedgerHandler handles ledger-wide operations.
type LedgerHandler struct {
	ledgerUC LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

// CheckConsistency checks if the ledger is consistent.
func (h *LedgerHandler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	report, err := h.ledgerUC.CheckConsistency(r.Context())
	if err != nil {
		if errors.Is(err, usecase.ErrInconsistentLedger) && report != nil {
			writeJSON(w, http.StatusConflict, dto.ConsistencyFromReport(report))
			return
		}
		writeInternalError(w, r, "failed to check consistency")
		return
	}

	writeJSON(w, http.StatusOK, dto.ConsistencyFromReport(report))
}
