package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/zionledger/internal/domain"
	"github.com/iho/zionledger/internal/infrastructure/postgres/generated"
	"github.com/iho/zionledger/internal/usecase"
)

// EntrySetRepository implements usecase.EntrySetRepository.
type EntrySetRepository struct {
	queries *generated.Queries
}

// NewEntrySetRepository creates a new EntrySetRepository.
func NewEntrySetRepository(pool *pgxpool.Pool) *EntrySetRepository {
	return newEntrySetRepository(pool)
}

func newEntrySetRepository(db generated.DBTX) *EntrySetRepository {
	return &EntrySetRepository{queries: generated.New(db)}
}

// Create inserts the entry set header and its entries within tx.
func (r *EntrySetRepository) Create(ctx context.Context, tx usecase.Transaction, set *domain.EntrySet) error {
	pgxTx := tx.(*Tx).PgxTx()
	queries := r.queries.WithTx(pgxTx)

	err := queries.CreateEntrySet(ctx, generated.CreateEntrySetParams{
		ID:             set.ID,
		IdempotencyKey: set.IdempotencyKey,
		Description:    set.Description,
		CommittedAt:    set.CommittedAt,
		ReportingAt:    set.ReportingAt,
		CreatedAt:      set.CreatedAt,
	})
	if err != nil {
		return mapError(err)
	}

	for _, e := range set.Entries {
		err := queries.CreateEntry(ctx, generated.CreateEntryParams{
			ID:          e.ID,
			EntrySetID:  set.ID,
			Amount:      e.Amount,
			Namespace:   e.Namespace,
			Name:        e.Name,
			LegalEntity: e.LegalEntity,
			Currency:    e.Currency,
			AccountID:   e.AccountID,
			CommittedAt: e.CommittedAt,
			ReportingAt: e.ReportingAt,
			CreatedAt:   e.CreatedAt,
		})
		if err != nil {
			return fmt.Errorf("insert entry %s: %w", e.ID, err)
		}
	}

	return nil
}

// GetByID retrieves an entry set with its entries.
func (r *EntrySetRepository) GetByID(ctx context.Context, id string) (*domain.EntrySet, error) {
	row, err := r.queries.GetEntrySetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntrySetNotFound
		}

		return nil, err
	}

	return r.withEntries(ctx, row)
}

// FindByIdempotencyKey returns the entry set stored under key, or nil.
func (r *EntrySetRepository) FindByIdempotencyKey(ctx context.Context, key string) (*domain.EntrySet, error) {
	row, err := r.queries.GetEntrySetByIdempotencyKey(ctx, key)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return r.withEntries(ctx, row)
}

func (r *EntrySetRepository) withEntries(ctx context.Context, row generated.EntrySet) (*domain.EntrySet, error) {
	set := rowToEntrySet(row)

	rows, err := r.queries.ListEntriesByEntrySet(ctx, set.ID)
	if err != nil {
		return nil, fmt.Errorf("list entries of %s: %w", set.ID, err)
	}

	set.Entries = make([]*domain.Entry, 0, len(rows))
	for _, er := range rows {
		set.Entries = append(set.Entries, rowToEntry(er))
	}

	return set, nil
}
