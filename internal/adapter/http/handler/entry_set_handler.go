package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/zionledger/internal/adapter/http/dto"
	"github.com/iho/zionledger/internal/domain"
	"github.com/iho/zionledger/internal/usecase"
)

// maxEntrySetBody caps the size of a create request body.
const maxEntrySetBody = 1 << 20

// EntrySetService defines the entry set operations the handler depends on.
type EntrySetService interface {
	CreateEntrySet(ctx context.Context, input usecase.CreateEntrySetInput) (*domain.EntrySet, bool, error)
	GetEntrySet(ctx context.Context, id string) (*domain.EntrySet, error)
}

// EntrySetHandler handles entry set HTTP requests.
type EntrySetHandler struct {
	entrySetUC EntrySetService
}

// NewEntrySetHandler creates a new EntrySetHandler.
func NewEntrySetHandler(entrySetUC EntrySetService) *EntrySetHandler {
	return &EntrySetHandler{entrySetUC: entrySetUC}
}

// Create records an entry set. A replay of an identical request returns 200
// with the stored entry set.
func (h *EntrySetHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxEntrySetBody)

	var req dto.CreateEntrySetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large", err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entrySet, created, err := h.entrySetUC.CreateEntrySet(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, r, "failed to create entry set", err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}

	writeJSON(w, status, dto.EntrySetFromDomain(entrySet))
}

// Get retrieves an entry set by ID.
func (h *EntrySetHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing entry set ID", "")
		return
	}

	entrySet, err := h.entrySetUC.GetEntrySet(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, "failed to get entry set", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EntrySetFromDomain(entrySet))
}
