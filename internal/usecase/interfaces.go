package usecase

import (
	"context"
	"time"

	"github.com/iho/zionledger/internal/domain"
)

// EntrySetRepository defines data access for entry sets.
type EntrySetRepository interface {
	// Create inserts the entry set and all of its entries. A unique violation
	// on the idempotency key is reported as domain.ErrDuplicateIdempotencyKey.
	Create(ctx context.Context, tx Transaction, set *domain.EntrySet) error
	GetByID(ctx context.Context, id string) (*domain.EntrySet, error)
	// FindByIdempotencyKey returns nil, nil when no entry set uses key.
	FindByIdempotencyKey(ctx context.Context, key string) (*domain.EntrySet, error)
}

// EntryRepository defines data access for entries.
type EntryRepository interface {
	// SumByCurrency aggregates the amounts of entries matching the query,
	// grouped by currency.
	SumByCurrency(ctx context.Context, query domain.BalanceQuery) (map[string]int64, error)
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Entry, error)
}

// LedgerRepository defines data access for ledger-wide operations.
type LedgerRepository interface {
	CheckConsistency(ctx context.Context) (totalAmount, unbalancedEntrySets int64, err error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// BalanceDefinitionRegistry resolves balance names to definitions.
type BalanceDefinitionRegistry interface {
	Definition(name string) (*domain.BalanceDefinition, error)
	Names() []string
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier re-runs an operation on transient store errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}
