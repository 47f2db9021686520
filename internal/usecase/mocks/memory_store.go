package mocks

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/iho/zionledger/internal/domain"
	"github.com/iho/zionledger/internal/usecase"
)

// MemoryStore is an in-memory ledger store with the same idempotency key
// semantics as the PostgreSQL unique index: a second insert of a key blocks
// while the first transaction is open and fails once it commits.
type MemoryStore struct {
	mu   sync.Mutex
	cond *sync.Cond

	setsByID  map[string]*domain.EntrySet
	setsByKey map[string]*domain.EntrySet
	reserved  map[string]*memTx
	outbox    []*domain.OutboxEvent

	// FindHook, when set, runs at the start of FindByIdempotencyKey.
	FindHook func(key string)

	creates int
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		setsByID:  make(map[string]*domain.EntrySet),
		setsByKey: make(map[string]*domain.EntrySet),
		reserved:  make(map[string]*memTx),
	}
	s.cond = sync.NewCond(&s.mu)

	return s
}

var (
	_ usecase.EntrySetRepository = (*MemoryStore)(nil)
	_ usecase.EntryRepository    = (*MemoryStore)(nil)
	_ usecase.OutboxRepository   = (*MemoryOutbox)(nil)
	_ usecase.TransactionManager = (*MemoryStore)(nil)
	_ usecase.LedgerRepository   = (*MemoryStore)(nil)
)

type memTx struct {
	store  *MemoryStore
	sets   []*domain.EntrySet
	events []*domain.OutboxEvent
	done   bool
}

// Begin starts a transaction.
func (s *MemoryStore) Begin(ctx context.Context) (usecase.Transaction, error) {
	return &memTx{store: s}, nil
}

func (t *memTx) Commit(ctx context.Context) error {
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.done {
		return errors.New("transaction already closed")
	}
	t.done = true

	for _, set := range t.sets {
		s.setsByID[set.ID] = set
		s.setsByKey[set.IdempotencyKey] = set
		delete(s.reserved, set.IdempotencyKey)
		s.creates++
	}

	s.outbox = append(s.outbox, t.events...)
	s.cond.Broadcast()

	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.done {
		return nil
	}
	t.done = true

	for _, set := range t.sets {
		if s.reserved[set.IdempotencyKey] == t {
			delete(s.reserved, set.IdempotencyKey)
		}
	}
	s.cond.Broadcast()

	return nil
}

func asMemTx(tx usecase.Transaction) (*memTx, error) {
	mt, ok := tx.(*memTx)
	if !ok {
		return nil, errors.New("memory store: foreign transaction")
	}

	return mt, nil
}

// Create stages set in tx, enforcing idempotency key uniqueness.
func (s *MemoryStore) Create(ctx context.Context, tx usecase.Transaction, set *domain.EntrySet) error {
	mt, err := asMemTx(tx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		if _, ok := s.setsByKey[set.IdempotencyKey]; ok {
			return domain.ErrDuplicateIdempotencyKey
		}

		owner, ok := s.reserved[set.IdempotencyKey]
		if !ok || owner == mt {
			break
		}

		s.cond.Wait()
	}

	s.reserved[set.IdempotencyKey] = mt
	mt.sets = append(mt.sets, cloneEntrySet(set))

	return nil
}

// GetByID returns a committed entry set.
func (s *MemoryStore) GetByID(ctx context.Context, id string) (*domain.EntrySet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.setsByID[id]
	if !ok {
		return nil, domain.ErrEntrySetNotFound
	}

	return cloneEntrySet(set), nil
}

// FindByIdempotencyKey returns a committed entry set or nil.
func (s *MemoryStore) FindByIdempotencyKey(ctx context.Context, key string) (*domain.EntrySet, error) {
	if s.FindHook != nil {
		s.FindHook(key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.setsByKey[key]
	if !ok {
		return nil, nil
	}

	return cloneEntrySet(set), nil
}

// SumByCurrency sums committed entries matching the query.
func (s *MemoryStore) SumByCurrency(ctx context.Context, query domain.BalanceQuery) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sums := make(map[string]int64)
	for _, set := range s.setsByID {
		for _, e := range set.Entries {
			if !matchesAddress(e, query.Addresses) || !withinAxis(e, query) {
				continue
			}

			sums[e.Currency] += e.Amount
		}
	}

	return sums, nil
}

// ListByAccount lists committed entries for an account, newest first.
func (s *MemoryStore) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entries []*domain.Entry
	for _, set := range s.setsByID {
		for _, e := range set.Entries {
			if e.AccountID != nil && *e.AccountID == accountID {
				c := *e
				entries = append(entries, &c)
			}
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CommittedAt.Equal(entries[j].CommittedAt) {
			return entries[i].ID > entries[j].ID
		}

		return entries[i].CommittedAt.After(entries[j].CommittedAt)
	})

	if offset >= len(entries) {
		return []*domain.Entry{}, nil
	}

	end := offset + limit
	if end > len(entries) {
		end = len(entries)
	}

	return entries[offset:end], nil
}

// CheckConsistency sums every committed entry and counts unbalanced sets.
func (s *MemoryStore) CheckConsistency(ctx context.Context) (int64, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total, unbalanced int64
	for _, set := range s.setsByID {
		sum, ok := set.Sum()
		total += sum

		if !ok || sum != 0 {
			unbalanced++
		}
	}

	return total, unbalanced, nil
}

// MemoryOutbox is the outbox view of a MemoryStore.
type MemoryOutbox struct {
	s *MemoryStore
}

// Outbox returns an OutboxRepository sharing the store's transactions.
func (s *MemoryStore) Outbox() *MemoryOutbox {
	return &MemoryOutbox{s: s}
}

func (o *MemoryOutbox) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	mt, err := asMemTx(tx)
	if err != nil {
		return err
	}

	o.s.mu.Lock()
	defer o.s.mu.Unlock()

	c := *event
	mt.events = append(mt.events, &c)

	return nil
}

func (o *MemoryOutbox) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()

	var events []*domain.OutboxEvent
	for _, e := range o.s.outbox {
		if e.Published {
			continue
		}

		c := *e
		events = append(events, &c)

		if len(events) == limit {
			break
		}
	}

	return events, nil
}

func (o *MemoryOutbox) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()

	for _, e := range o.s.outbox {
		if e.ID == id {
			t := publishedAt
			e.Published = true
			e.PublishedAt = &t
		}
	}

	return nil
}

func (o *MemoryOutbox) DeletePublished(ctx context.Context, before time.Time) error {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()

	kept := o.s.outbox[:0]
	for _, e := range o.s.outbox {
		if e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before) {
			continue
		}
		kept = append(kept, e)
	}
	o.s.outbox = kept

	return nil
}

// CommittedCount returns the number of committed entry sets.
func (s *MemoryStore) CommittedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.creates
}

// Events returns all recorded outbox events.
func (s *MemoryStore) Events() []*domain.OutboxEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	events := make([]*domain.OutboxEvent, len(s.outbox))
	copy(events, s.outbox)

	return events
}

func matchesAddress(e *domain.Entry, addresses []domain.Address) bool {
	for _, a := range addresses {
		if a.Namespace != e.Namespace || a.Name != e.Name {
			continue
		}

		switch {
		case a.AccountID == nil && e.AccountID == nil:
			return true
		case a.AccountID != nil && e.AccountID != nil && *a.AccountID == *e.AccountID:
			return true
		}
	}

	return false
}

func withinAxis(e *domain.Entry, q domain.BalanceQuery) bool {
	if q.TimeAxis == domain.TimeAxisReporting {
		return e.ReportingAt != nil && !e.ReportingAt.After(q.AsOf)
	}

	return !e.CommittedAt.After(q.AsOf)
}

func cloneEntrySet(set *domain.EntrySet) *domain.EntrySet {
	c := *set
	c.Entries = make([]*domain.Entry, len(set.Entries))

	for i, e := range set.Entries {
		ec := *e
		c.Entries[i] = &ec
	}

	return &c
}
