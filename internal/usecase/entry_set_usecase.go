package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/zionledger/internal/domain"
	"github.com/iho/zionledger/internal/infrastructure/metrics"
)

// EntrySetUseCase handles the idempotent entry set write path.
type EntrySetUseCase struct {
	txManager    TransactionManager
	entrySetRepo EntrySetRepository
	outboxRepo   OutboxRepository
	idGen        IDGenerator
	retrier      Retrier
	metrics      *metrics.Metrics
	logger       zerolog.Logger
	now          func() time.Time
}

// NewEntrySetUseCase creates a new EntrySetUseCase. outboxRepo may be nil.
func NewEntrySetUseCase(
	txManager TransactionManager,
	entrySetRepo EntrySetRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
) *EntrySetUseCase {
	return &EntrySetUseCase{
		txManager:    txManager,
		entrySetRepo: entrySetRepo,
		outboxRepo:   outboxRepo,
		idGen:        idGen,
		logger:       zerolog.Nop(),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// WithRetrier retries the write transaction on deadlocks and serialization failures.
func (uc *EntrySetUseCase) WithRetrier(r Retrier) *EntrySetUseCase {
	uc.retrier = r
	return uc
}

// WithMetrics records entry set metrics.
func (uc *EntrySetUseCase) WithMetrics(m *metrics.Metrics) *EntrySetUseCase {
	uc.metrics = m
	return uc
}

// WithLogger sets the logger.
func (uc *EntrySetUseCase) WithLogger(l zerolog.Logger) *EntrySetUseCase {
	uc.logger = l.With().Str("component", "entry_set_usecase").Logger()
	return uc
}

// CreateEntryInput represents one leg of a new entry set.
// Zero CommittedAt and nil ReportingAt inherit the entry set's values.
type CreateEntryInput struct {
	CommittedAt time.Time
	ReportingAt *time.Time
	AccountID   *string
	Namespace   string
	Name        string
	LegalEntity string
	Currency    string
	Amount      int64
}

// CreateEntrySetInput represents input for creating an entry set.
type CreateEntrySetInput struct {
	CommittedAt    time.Time
	ReportingAt    *time.Time
	Description    *string
	IdempotencyKey string
	Entries        []CreateEntryInput
}

// CreateEntrySet records an entry set exactly once per idempotency key.
// created is false when an identical entry set already existed.
func (uc *EntrySetUseCase) CreateEntrySet(ctx context.Context, input CreateEntrySetInput) (*domain.EntrySet, bool, error) {
	start := time.Now()

	if err := domain.ValidateIdempotencyKey(input.IdempotencyKey); err != nil {
		uc.reject(metrics.ReasonInvalid)
		return nil, false, err
	}

	candidate := uc.buildEntrySet(input)

	// 1. Replay or conflict when the key is already taken
	existing, err := uc.entrySetRepo.FindByIdempotencyKey(ctx, candidate.IdempotencyKey)
	if err != nil {
		uc.reject(metrics.ReasonInternal)
		return nil, false, err
	}

	if existing != nil {
		return uc.resolveExisting(existing, candidate)
	}

	// 2. Validate before touching the store
	if err := candidate.Validate(); err != nil {
		if errors.Is(err, domain.ErrUnbalancedEntries) {
			uc.reject(metrics.ReasonUnbalanced)
		} else {
			uc.reject(metrics.ReasonInvalid)
		}

		return nil, false, err
	}

	uc.assignIdentity(candidate)

	// 3. Insert; a concurrent writer may win the key between 1 and here
	err = uc.persist(ctx, candidate)
	if errors.Is(err, domain.ErrDuplicateIdempotencyKey) {
		if uc.metrics != nil {
			uc.metrics.IdempotencyRaces.Inc()
		}

		uc.logger.Debug().
			Str("idempotency_key", candidate.IdempotencyKey).
			Msg("lost idempotency race, re-fetching entry set")

		winner, ferr := uc.entrySetRepo.FindByIdempotencyKey(ctx, candidate.IdempotencyKey)
		if ferr != nil {
			uc.reject(metrics.ReasonInternal)
			return nil, false, fmt.Errorf("re-fetch entry set after idempotency race: %w", ferr)
		}

		if winner == nil {
			uc.reject(metrics.ReasonInternal)
			return nil, false, fmt.Errorf("entry set with idempotency key %q missing after unique violation", candidate.IdempotencyKey)
		}

		return uc.resolveExisting(winner, candidate)
	}

	if err != nil {
		uc.reject(metrics.ReasonInternal)
		return nil, false, err
	}

	if uc.metrics != nil {
		uc.metrics.EntrySetsCreated.Inc()
		uc.metrics.EntriesWritten.Add(float64(len(candidate.Entries)))
		uc.metrics.EntrySetDuration.Observe(time.Since(start).Seconds())
	}

	uc.logger.Info().
		Str("entry_set_id", candidate.ID).
		Str("idempotency_key", candidate.IdempotencyKey).
		Int("entries", len(candidate.Entries)).
		Msg("entry set created")

	return candidate, true, nil
}

// GetEntrySet returns an entry set with its entries.
func (uc *EntrySetUseCase) GetEntrySet(ctx context.Context, id string) (*domain.EntrySet, error) {
	return uc.entrySetRepo.GetByID(ctx, id)
}

func (uc *EntrySetUseCase) buildEntrySet(input CreateEntrySetInput) *domain.EntrySet {
	set := &domain.EntrySet{
		IdempotencyKey: input.IdempotencyKey,
		CommittedAt:    domain.NormalizeTimestamp(input.CommittedAt),
		Description:    domain.NormalizeDescription(input.Description),
		Entries:        make([]*domain.Entry, 0, len(input.Entries)),
	}

	if input.ReportingAt != nil {
		r := domain.NormalizeTimestamp(*input.ReportingAt)
		set.ReportingAt = &r
	}

	for _, ei := range input.Entries {
		e := &domain.Entry{
			AccountID:   ei.AccountID,
			Namespace:   ei.Namespace,
			Name:        ei.Name,
			LegalEntity: ei.LegalEntity,
			Currency:    ei.Currency,
			Amount:      ei.Amount,
		}

		if !ei.CommittedAt.IsZero() {
			e.CommittedAt = domain.NormalizeTimestamp(ei.CommittedAt)
		}

		if ei.ReportingAt != nil {
			r := domain.NormalizeTimestamp(*ei.ReportingAt)
			e.ReportingAt = &r
		}

		set.Entries = append(set.Entries, e)
	}

	return set
}

func (uc *EntrySetUseCase) assignIdentity(set *domain.EntrySet) {
	now := domain.NormalizeTimestamp(uc.now())

	set.ID = uc.idGen.Generate()
	set.CreatedAt = now
	set.ApplyTimestamps()

	for _, e := range set.Entries {
		e.ID = uc.idGen.Generate()
		e.EntrySetID = set.ID
		e.CreatedAt = now
	}
}

func (uc *EntrySetUseCase) persist(ctx context.Context, set *domain.EntrySet) error {
	if uc.retrier == nil {
		return uc.writeInTx(ctx, set)
	}

	return uc.retrier.Retry(ctx, func() error {
		return uc.writeInTx(ctx, set)
	})
}

func (uc *EntrySetUseCase) writeInTx(ctx context.Context, set *domain.EntrySet) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := uc.entrySetRepo.Create(txCtx, tx, set); err != nil {
		return err
	}

	if uc.outboxRepo != nil {
		event := domain.NewEntrySetCreatedEvent(uc.idGen.Generate(), set, set.CreatedAt)
		if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
			return err
		}
	}

	return tx.Commit(txCtx)
}

func (uc *EntrySetUseCase) resolveExisting(existing, candidate *domain.EntrySet) (*domain.EntrySet, bool, error) {
	if existing.Matches(candidate) {
		if uc.metrics != nil {
			uc.metrics.EntrySetsReplayed.Inc()
		}

		uc.logger.Debug().
			Str("entry_set_id", existing.ID).
			Str("idempotency_key", existing.IdempotencyKey).
			Msg("idempotent replay")

		return existing, false, nil
	}

	uc.reject(metrics.ReasonConflict)

	uc.logger.Warn().
		Str("entry_set_id", existing.ID).
		Str("idempotency_key", existing.IdempotencyKey).
		Msg("idempotency key reused with different payload")

	return nil, false, domain.ErrIdempotencyConflict
}

func (uc *EntrySetUseCase) reject(reason string) {
	if uc.metrics != nil {
		uc.metrics.EntrySetsRejected.WithLabelValues(reason).Inc()
	}
}
