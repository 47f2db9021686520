package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/zionledger/internal/domain"
	"github.com/iho/zionledger/internal/infrastructure/postgres/generated"
)

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	queries *generated.Queries
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return newEntryRepository(pool)
}

func newEntryRepository(db generated.DBTX) *EntryRepository {
	return &EntryRepository{queries: generated.New(db)}
}

// SumByCurrency sums entries on the query's addresses up to its as-of
// instant on its time axis, grouped by currency.
func (r *EntryRepository) SumByCurrency(ctx context.Context, query domain.BalanceQuery) (map[string]int64, error) {
	sums := make(map[string]int64)
	if len(query.Addresses) == 0 {
		return sums, nil
	}

	params := generated.SumEntriesByCurrencyParams{
		Namespaces: make([]string, 0, len(query.Addresses)),
		Names:      make([]string, 0, len(query.Addresses)),
		AccountIds: make([]string, 0, len(query.Addresses)),
		TimeAxis:   string(query.TimeAxis),
		AsOf:       query.AsOf,
	}

	for _, a := range query.Addresses {
		params.Namespaces = append(params.Namespaces, a.Namespace)
		params.Names = append(params.Names, a.Name)
		accountID := ""
		if a.AccountID != nil {
			accountID = *a.AccountID
		}
		params.AccountIds = append(params.AccountIds, accountID)
	}

	rows, err := r.queries.SumEntriesByCurrency(ctx, params)
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		sums[row.Currency] = row.Total
	}

	return sums, nil
}

// ListByAccount retrieves an account's entries, newest first.
func (r *EntryRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Entry, error) {
	rows, err := r.queries.ListEntriesByAccount(ctx, generated.ListEntriesByAccountParams{
		AccountID: accountID,
		RowLimit:  int32(limit),
		RowOffset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	entries := make([]*domain.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, rowToEntry(row))
	}

	return entries, nil
}
