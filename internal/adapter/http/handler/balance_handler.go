package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/zionledger/internal/adapter/http/dto"
	"github.com/iho/zionledger/internal/domain"
	"github.com/iho/zionledger/internal/usecase"
)

// BalanceService defines the balance operations the handler depends on.
type BalanceService interface {
	Calculate(ctx context.Context, input usecase.CalculateBalanceInput) (*domain.Balance, error)
	AvailableBalances() []string
	DefaultBalance() string
}

// BalanceHandler handles balance HTTP requests.
type BalanceHandler struct {
	balanceUC BalanceService
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(balanceUC BalanceService) *BalanceHandler {
	return &BalanceHandler{balanceUC: balanceUC}
}

// Get calculates a named balance for an account.
func (h *BalanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	input := usecase.CalculateBalanceInput{
		AccountID:   chi.URLParam(r, "account_id"),
		BalanceName: r.URL.Query().Get("balance_name"),
	}

	if raw := r.URL.Query().Get("as_of"); raw != "" {
		asOf, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid 'as_of' format (use RFC3339)", err.Error())
			return
		}
		input.AsOf = &asOf
	}

	balance, err := h.balanceUC.Calculate(r.Context(), input)
	if err != nil {
		if errors.Is(err, domain.ErrBalanceDefinitionNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{
				Error:             "balance definition not found",
				Message:           err.Error(),
				AvailableBalances: h.balanceUC.AvailableBalances(),
			})
			return
		}

		writeDomainError(w, r, "failed to calculate balance", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromDomain(balance))
}

// Available lists the configured balance names.
func (h *BalanceHandler) Available(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.AvailableBalancesResponse{
		Balances: h.balanceUC.AvailableBalances(),
		Default:  h.balanceUC.DefaultBalance(),
	})
}
