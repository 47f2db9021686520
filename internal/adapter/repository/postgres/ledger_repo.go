package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/zionledger/internal/infrastructure/postgres/generated"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	queries *generated.Queries
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return newLedgerRepository(pool)
}

func newLedgerRepository(db generated.DBTX) *LedgerRepository {
	return &LedgerRepository{queries: generated.New(db)}
}

// CheckConsistency returns the sum of every entry and the number of entry
// sets whose entries do not sum to zero.
func (r *LedgerRepository) CheckConsistency(ctx context.Context) (int64, int64, error) {
	result, err := r.queries.CheckLedgerConsistency(ctx)
	if err != nil {
		return 0, 0, err
	}

	return result.TotalEntryAmount, result.UnbalancedEntrySets, nil
}
