package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/zionledger/internal/domain"
	"github.com/iho/zionledger/internal/usecase"
)

// EntryResponse represents an entry in API responses.
type EntryResponse struct {
	ID          string     `json:"id"`
	EntrySetID  string     `json:"entry_set_id"`
	AccountID   *string    `json:"account_id"`
	Namespace   string     `json:"namespace"`
	Name        string     `json:"name"`
	LegalEntity string     `json:"legal_entity"`
	Currency    string     `json:"currency"`
	Amount      int64      `json:"amount"`
	CommittedAt time.Time  `json:"committed_at"`
	ReportingAt *time.Time `json:"reporting_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

// EntryFromDomain converts domain entry to response.
func EntryFromDomain(e *domain.Entry) *EntryResponse {
	return &EntryResponse{
		ID:          e.ID,
		EntrySetID:  e.EntrySetID,
		AccountID:   e.AccountID,
		Namespace:   e.Namespace,
		Name:        e.Name,
		LegalEntity: e.LegalEntity,
		Currency:    e.Currency,
		Amount:      e.Amount,
		CommittedAt: e.CommittedAt,
		ReportingAt: e.ReportingAt,
		CreatedAt:   e.CreatedAt,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.Entry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// EntryPageResponse is one page of an account's entries.
type EntryPageResponse struct {
	AccountID  string           `json:"account_id"`
	Entries    []*EntryResponse `json:"entries"`
	Limit      int              `json:"limit"`
	Offset     int              `json:"offset"`
	NextOffset *int             `json:"next_offset"`
}

// EntryPageFromUseCase converts a page of entries. NextOffset is null on the last page.
func EntryPageFromUseCase(p *usecase.EntryPage) *EntryPageResponse {
	resp := &EntryPageResponse{
		AccountID: p.AccountID,
		Entries:   EntriesFromDomain(p.Entries),
		Limit:     p.Limit,
		Offset:    p.Offset,
	}
	if next := p.NextOffset(); next >= 0 {
		resp.NextOffset = &next
	}

	return resp
}

// EntrySetResponse represents an entry set in API responses.
type EntrySetResponse struct {
	ID             string           `json:"id"`
	IdempotencyKey string           `json:"idempotency_key"`
	Description    *string          `json:"description"`
	CommittedAt    time.Time        `json:"committed_at"`
	ReportingAt    *time.Time       `json:"reporting_at"`
	CreatedAt      time.Time        `json:"created_at"`
	Entries        []*EntryResponse `json:"entries"`
}

// EntrySetFromDomain converts domain entry set to response.
func EntrySetFromDomain(s *domain.EntrySet) *EntrySetResponse {
	return &EntrySetResponse{
		ID:             s.ID,
		IdempotencyKey: s.IdempotencyKey,
		Description:    s.Description,
		CommittedAt:    s.CommittedAt,
		ReportingAt:    s.ReportingAt,
		CreatedAt:      s.CreatedAt,
		Entries:        EntriesFromDomain(s.Entries),
	}
}

// BalanceResponse represents a calculated balance.
type BalanceResponse struct {
	AccountID        string          `json:"account_id"`
	BalanceName      string          `json:"balance_name"`
	Balance          int64           `json:"balance"`
	BalanceInDollars decimal.Decimal `json:"balance_in_dollars"`
	Currency         string          `json:"currency"`
	AsOf             time.Time       `json:"as_of"`
	TimeAxis         string          `json:"time_axis"`
	Description      string          `json:"description,omitempty"`
}

// BalanceFromDomain converts a domain balance to response.
func BalanceFromDomain(b *domain.Balance) *BalanceResponse {
	return &BalanceResponse{
		AccountID:        b.AccountID,
		BalanceName:      b.BalanceName,
		Balance:          b.Amount,
		BalanceInDollars: b.AmountDecimal(),
		Currency:         b.Currency,
		AsOf:             b.AsOf,
		TimeAxis:         string(b.TimeAxis),
		Description:      b.Description,
	}
}

// AvailableBalancesResponse lists the configured balance names.
type AvailableBalancesResponse struct {
	Balances []string `json:"balances"`
	Default  string   `json:"default"`
}

// ConsistencyResponse reports the ledger-wide double-entry check.
type ConsistencyResponse struct {
	Status              string `json:"status"`
	Consistent          bool   `json:"consistent"`
	TotalAmount         int64  `json:"total_amount"`
	UnbalancedEntrySets int64  `json:"unbalanced_entry_sets"`
}

// ConsistencyFromReport converts a consistency report to response.
func ConsistencyFromReport(r *usecase.ConsistencyReport) *ConsistencyResponse {
	status := "consistent"
	if !r.Consistent {
		status = "inconsistent"
	}

	return &ConsistencyResponse{
		Status:              status,
		Consistent:          r.Consistent,
		TotalAmount:         r.TotalAmount,
		UnbalancedEntrySets: r.UnbalancedEntrySets,
	}
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error             string   `json:"error"`
	Message           string   `json:"message,omitempty"`
	AvailableBalances []string `json:"available_balances,omitempty"`
	RequestID         string   `json:"request_id,omitempty"`
}
