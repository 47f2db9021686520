package usecase

import (
	"context"
	"strings"

	"github.com/iho/zionledger/internal/domain"
)

// EntryUseCase serves paginated reads of an account's entries.
type EntryUseCase struct {
	entryRepo EntryRepository
}

func NewEntryUseCase(entryRepo EntryRepository) *EntryUseCase {
	return &EntryUseCase{entryRepo: entryRepo}
}

// GetEntriesByAccountInput selects one page of an account's entries.
type GetEntriesByAccountInput struct {
	AccountID string
	Limit     int
	Offset    int
}

// EntryPage is one page of entries, newest first. Limit and Offset are
// the values actually applied after clamping.
type EntryPage struct {
	AccountID string
	Entries   []*domain.Entry
	Limit     int
	Offset    int
	HasMore   bool
}

// NextOffset returns the offset of the following page, or -1 on the last one.
func (p *EntryPage) NextOffset() int {
	if !p.HasMore {
		return -1
	}

	return p.Offset + len(p.Entries)
}

// GetEntriesByAccount returns one page of entries for an account.
func (uc *EntryUseCase) GetEntriesByAccount(ctx context.Context, input GetEntriesByAccountInput) (*EntryPage, error) {
	accountID := strings.TrimSpace(input.AccountID)
	if accountID == "" {
		return nil, domain.ErrInvalidAccountID
	}

	limit := input.Limit
	switch {
	case limit <= 0:
		limit = DefaultEntriesPageSize
	case limit > MaxEntriesPageSize:
		limit = MaxEntriesPageSize
	}

	offset := max(input.Offset, 0)

	// One extra row tells whether another page exists.
	entries, err := uc.entryRepo.ListByAccount(ctx, accountID, limit+1, offset)
	if err != nil {
		return nil, err
	}

	page := &EntryPage{AccountID: accountID, Limit: limit, Offset: offset}
	if len(entries) > limit {
		page.HasMore = true
		entries = entries[:limit]
	}
	page.Entries = entries

	return page, nil
}
