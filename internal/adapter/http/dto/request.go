package dto

import (
	"time"

	"github.com/iho/zionledger/internal/usecase"
)

// CreateEntryRequest represents one leg of an entry set request.
type CreateEntryRequest struct {
	AccountID   *string    `json:"account_id,omitempty"`
	Namespace   string     `json:"namespace"`
	Name        string     `json:"name"`
	LegalEntity string     `json:"legal_entity"`
	Currency    string     `json:"currency"`
	Amount      int64      `json:"amount"`
	CommittedAt *time.Time `json:"committed_at,omitempty"`
	ReportingAt *time.Time `json:"reporting_at,omitempty"`
}

// CreateEntrySetRequest represents a request to record an entry set.
type CreateEntrySetRequest struct {
	IdempotencyKey string               `json:"idempotency_key"`
	Description    *string              `json:"description,omitempty"`
	CommittedAt    *time.Time           `json:"committed_at"`
	ReportingAt    *time.Time           `json:"reporting_at,omitempty"`
	Entries        []CreateEntryRequest `json:"entries"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateEntrySetRequest) ToUseCaseInput() usecase.CreateEntrySetInput {
	input := usecase.CreateEntrySetInput{
		IdempotencyKey: r.IdempotencyKey,
		Description:    r.Description,
		ReportingAt:    r.ReportingAt,
		Entries:        make([]usecase.CreateEntryInput, len(r.Entries)),
	}

	if r.CommittedAt != nil {
		input.CommittedAt = *r.CommittedAt
	}

	for i, e := range r.Entries {
		entry := usecase.CreateEntryInput{
			AccountID:   e.AccountID,
			Namespace:   e.Namespace,
			Name:        e.Name,
			LegalEntity: e.LegalEntity,
			Currency:    e.Currency,
			Amount:      e.Amount,
			ReportingAt: e.ReportingAt,
		}
		if e.CommittedAt != nil {
			entry.CommittedAt = *e.CommittedAt
		}

		input.Entries[i] = entry
	}

	return input
}

// PaginationRequest represents pagination parameters.
type PaginationRequest struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}
