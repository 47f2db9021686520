package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/iho/zionledger/internal/adapter/http/dto"
	"github.com/iho/zionledger/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// writeInternalError hides err from the client and returns the request ID
// instead, so the failure can be found in the server log.
func writeInternalError(w http.ResponseWriter, r *http.Request, message string) {
	writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{
		Error:     message,
		Message:   "internal error",
		RequestID: chimiddleware.GetReqID(r.Context()),
	})
}

// writeDomainError writes err with the status its domain error maps to.
func writeDomainError(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := mapDomainError(err)
	if status == http.StatusInternalServerError {
		writeInternalError(w, r, message)
		return
	}

	writeError(w, status, message, err.Error())
}

// errorStatuses is checked in order; the first match wins.
var errorStatuses = []struct {
	target error
	status int
}{
	{domain.ErrEntrySetNotFound, http.StatusNotFound},
	{domain.ErrBalanceDefinitionNotFound, http.StatusNotFound},
	{domain.ErrIdempotencyConflict, http.StatusConflict},
	{domain.ErrUnbalancedEntries, http.StatusUnprocessableEntity},
	{domain.ErrInvalidEntry, http.StatusUnprocessableEntity},
	{domain.ErrInvalidTimeAxis, http.StatusUnprocessableEntity},
	{domain.ErrCurrencyMismatch, http.StatusUnprocessableEntity},
	{domain.ErrInvalidAccountID, http.StatusBadRequest},
}

func mapDomainError(err error) int {
	for _, e := range errorStatuses {
		if errors.Is(err, e.target) {
			return e.status
		}
	}

	return http.StatusInternalServerError
}

// parseIntQuery returns def when key is absent or not an integer.
func parseIntQuery(r *http.Request, key string, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return def
	}

	return n
}
