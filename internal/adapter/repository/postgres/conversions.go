package postgres

import (
	"time"

	"github.com/iho/zionledger/internal/domain"
	"github.com/iho/zionledger/internal/infrastructure/postgres/generated"
)

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}

	u := t.UTC()

	return &u
}

func rowToEntrySet(row generated.EntrySet) *domain.EntrySet {
	return &domain.EntrySet{
		ID:             row.ID,
		IdempotencyKey: row.IdempotencyKey,
		Description:    row.Description,
		CommittedAt:    row.CommittedAt.UTC(),
		ReportingAt:    utcPtr(row.ReportingAt),
		CreatedAt:      row.CreatedAt.UTC(),
	}
}

func rowToEntry(row generated.Entry) *domain.Entry {
	return &domain.Entry{
		ID:          row.ID,
		EntrySetID:  row.EntrySetID,
		Amount:      row.Amount,
		Namespace:   row.Namespace,
		Name:        row.Name,
		LegalEntity: row.LegalEntity,
		Currency:    row.Currency,
		AccountID:   row.AccountID,
		CommittedAt: row.CommittedAt.UTC(),
		ReportingAt: utcPtr(row.ReportingAt),
		CreatedAt:   row.CreatedAt.UTC(),
	}
}
