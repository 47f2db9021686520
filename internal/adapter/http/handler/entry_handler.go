package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/zionledger/internal/adapter/http/dto"
	"github.com/iho/zionledger/internal/usecase"
)

// EntryService pages through an account's entries.
type EntryService interface {
	GetEntriesByAccount(ctx context.Context, input usecase.GetEntriesByAccountInput) (*usecase.EntryPage, error)
}

// EntryHandler serves GET /api/v1/accounts/{account_id}/entries.
type EntryHandler struct {
	entries EntryService
}

func NewEntryHandler(entries EntryService) *EntryHandler {
	return &EntryHandler{entries: entries}
}

// ListByAccount returns one page of entries. Out-of-range limit and
// offset values are clamped by the use case and echoed back.
func (h *EntryHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	input := usecase.GetEntriesByAccountInput{
		AccountID: chi.URLParam(r, "account_id"),
		Limit:     parseIntQuery(r, "limit", usecase.DefaultEntriesPageSize),
		Offset:    parseIntQuery(r, "offset", 0),
	}

	page, err := h.entries.GetEntriesByAccount(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, "failed to list entries", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryPageFromUseCase(page))
}
