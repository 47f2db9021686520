package postgres

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"

	"github.com/iho/zionledger/internal/domain"
)

var (
	entrySetColumns = []string{"id", "idempotency_key", "description", "committed_at", "reporting_at", "created_at"}
	entryColumns    = []string{
		"id", "entry_set_id", "amount", "namespace", "name", "legal_entity",
		"currency", "account_id", "committed_at", "reporting_at", "created_at",
	}
)

func sampleEntrySet() *domain.EntrySet {
	committed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	account := "merchant-456"

	return &domain.EntrySet{
		ID:             "es-1",
		IdempotencyKey: "payment-001",
		CommittedAt:    committed,
		CreatedAt:      committed,
		Entries: []*domain.Entry{
			{ID: "e-1", Namespace: "payments", Name: "revenue", LegalEntity: "acme_corp", Currency: "USD", Amount: -1000, AccountID: &account, CommittedAt: committed, CreatedAt: committed},
			{ID: "e-2", Namespace: "payments", Name: "accounts_receivable", LegalEntity: "acme_corp", Currency: "USD", Amount: 1000, CommittedAt: committed, CreatedAt: committed},
		},
	}
}

func TestEntrySetRepositoryCreate(t *testing.T) {
	mockPool := newMockPool(t)
	set := sampleEntrySet()

	mockPool.ExpectBeginTx(readCommitted)
	mockPool.ExpectExec("INSERT INTO entry_sets").
		WithArgs("es-1", "payment-001", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mockPool.ExpectExec("INSERT INTO entries").
		WithArgs("e-1", "es-1", int64(-1000), "payments", "revenue", "acme_corp", "USD",
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mockPool.ExpectExec("INSERT INTO entries").
		WithArgs("e-2", "es-1", int64(1000), "payments", "accounts_receivable", "acme_corp", "USD",
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mockPool.ExpectCommit()

	tx, err := newTxManagerWithPool(mockPool).Begin(context.Background())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	repo := newEntrySetRepository(mockPool)
	if err := repo.Create(context.Background(), tx, set); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := tx.Commit(context.Background()); err != nil {
		t.Fatalf("commit: %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestEntrySetRepositoryCreateDuplicateKey(t *testing.T) {
	mockPool := newMockPool(t)

	mockPool.ExpectBeginTx(readCommitted)
	mockPool.ExpectExec("INSERT INTO entry_sets").
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation, ConstraintName: idempotencyKeyConstraint})
	mockPool.ExpectRollback()

	tx, err := newTxManagerWithPool(mockPool).Begin(context.Background())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	err = newEntrySetRepository(mockPool).Create(context.Background(), tx, sampleEntrySet())
	if !errors.Is(err, domain.ErrDuplicateIdempotencyKey) {
		t.Fatalf("expected ErrDuplicateIdempotencyKey, got %v", err)
	}

	if err := tx.Rollback(context.Background()); err != nil {
		t.Fatalf("rollback: %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestEntrySetRepositoryCreateEntryError(t *testing.T) {
	mockPool := newMockPool(t)
	insertErr := errors.New("check constraint violated")

	mockPool.ExpectBeginTx(readCommitted)
	mockPool.ExpectExec("INSERT INTO entry_sets").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mockPool.ExpectExec("INSERT INTO entries").
		WillReturnError(insertErr)

	tx, err := newTxManagerWithPool(mockPool).Begin(context.Background())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	err = newEntrySetRepository(mockPool).Create(context.Background(), tx, sampleEntrySet())
	if !errors.Is(err, insertErr) {
		t.Fatalf("expected insert error, got %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestEntrySetRepositoryFindByIdempotencyKey(t *testing.T) {
	mockPool := newMockPool(t)
	committed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	desc := "Order #123"
	merchant := "merchant-456"

	mockPool.ExpectQuery("FROM entry_sets").
		WithArgs("payment-001").
		WillReturnRows(pgxmock.NewRows(entrySetColumns).
			AddRow("es-1", "payment-001", &desc, committed, nil, committed))
	mockPool.ExpectQuery("FROM entries").
		WithArgs("es-1").
		WillReturnRows(pgxmock.NewRows(entryColumns).
			AddRow("e-1", "es-1", int64(-1000), "payments", "revenue", "acme_corp", "USD", &merchant, committed, nil, committed).
			AddRow("e-2", "es-1", int64(1000), "payments", "accounts_receivable", "acme_corp", "USD", nil, committed, nil, committed))

	set, err := newEntrySetRepository(mockPool).FindByIdempotencyKey(context.Background(), "payment-001")
	if err != nil {
		t.Fatalf("find: %v", err)
	}

	if set == nil || set.ID != "es-1" {
		t.Fatalf("expected es-1, got %+v", set)
	}
	if set.Description == nil || *set.Description != "Order #123" {
		t.Fatalf("unexpected description %v", set.Description)
	}
	if set.ReportingAt != nil {
		t.Fatalf("expected nil reporting_at, got %v", set.ReportingAt)
	}
	if len(set.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(set.Entries))
	}
	if set.Entries[0].AccountID == nil || *set.Entries[0].AccountID != "merchant-456" {
		t.Fatalf("expected account on first entry")
	}
	if set.Entries[1].AccountID != nil {
		t.Fatalf("expected system entry without account")
	}

	assertExpectations(t, mockPool)
}

func TestEntrySetRepositoryFindByIdempotencyKeyMissing(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery("FROM entry_sets").
		WithArgs("unknown").
		WillReturnError(pgx.ErrNoRows)

	set, err := newEntrySetRepository(mockPool).FindByIdempotencyKey(context.Background(), "unknown")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if set != nil {
		t.Fatalf("expected nil entry set, got %+v", set)
	}

	assertExpectations(t, mockPool)
}

func TestEntrySetRepositoryGetByIDNotFound(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery("FROM entry_sets").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := newEntrySetRepository(mockPool).GetByID(context.Background(), "missing")
	if !errors.Is(err, domain.ErrEntrySetNotFound) {
		t.Fatalf("expected ErrEntrySetNotFound, got %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestEntryRepositorySumByCurrency(t *testing.T) {
	mockPool := newMockPool(t)
	account := "account_123"
	asOf := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	mockPool.ExpectQuery("SUM\\(e.amount\\)").
		WithArgs(
			[]string{"com.zion.account", "com.zion.fees"},
			[]string{"main", "transaction_fees"},
			[]string{"account_123", ""},
			"committed",
			asOf,
		).
		WillReturnRows(pgxmock.NewRows([]string{"currency", "total"}).
			AddRow("USD", int64(8000)))

	sums, err := newEntryRepository(mockPool).SumByCurrency(context.Background(), domain.BalanceQuery{
		AsOf:     asOf,
		TimeAxis: domain.TimeAxisCommitted,
		Addresses: []domain.Address{
			{Namespace: "com.zion.account", Name: "main", AccountID: &account},
			{Namespace: "com.zion.fees", Name: "transaction_fees"},
		},
	})
	if err != nil {
		t.Fatalf("sum: %v", err)
	}

	if len(sums) != 1 || sums["USD"] != 8000 {
		t.Fatalf("unexpected sums %v", sums)
	}

	assertExpectations(t, mockPool)
}

func TestEntryRepositorySumByCurrencyNoAddresses(t *testing.T) {
	mockPool := newMockPool(t)

	sums, err := newEntryRepository(mockPool).SumByCurrency(context.Background(), domain.BalanceQuery{
		TimeAxis: domain.TimeAxisReporting,
	})
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	if len(sums) != 0 {
		t.Fatalf("expected empty sums, got %v", sums)
	}

	assertExpectations(t, mockPool)
}

func TestEntryRepositoryListByAccount(t *testing.T) {
	mockPool := newMockPool(t)
	committed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	reporting := committed.Add(24 * time.Hour)
	account := "account_123"

	mockPool.ExpectQuery("WHERE account_id = \\$1").
		WithArgs("account_123", int32(20), int32(40)).
		WillReturnRows(pgxmock.NewRows(entryColumns).
			AddRow("e-1", "es-1", int64(10000), "com.zion.account", "main", "zion_bank", "USD", &account, committed, &reporting, committed))

	entries, err := newEntryRepository(mockPool).ListByAccount(context.Background(), "account_123", 20, 40)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].ReportingAt == nil || !entries[0].ReportingAt.Equal(reporting) {
		t.Fatalf("unexpected reporting_at %v", entries[0].ReportingAt)
	}
	if entries[0].Amount != 10000 {
		t.Fatalf("unexpected amount %d", entries[0].Amount)
	}

	assertExpectations(t, mockPool)
}

func TestLedgerRepositoryCheckConsistency(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery("total_entry_amount").
		WillReturnRows(pgxmock.NewRows([]string{"total_entry_amount", "unbalanced_entry_sets"}).
			AddRow(int64(0), int64(0)))

	total, unbalanced, err := newLedgerRepository(mockPool).CheckConsistency(context.Background())
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if total != 0 || unbalanced != 0 {
		t.Fatalf("expected consistent ledger, got total=%d unbalanced=%d", total, unbalanced)
	}

	assertExpectations(t, mockPool)
}

func TestOutboxRepositoryCreateAndFetch(t *testing.T) {
	mockPool := newMockPool(t)
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mockPool.ExpectBeginTx(readCommitted)
	mockPool.ExpectExec("INSERT INTO outbox_events").
		WithArgs("ev-1", "es-1", domain.AggregateTypeEntrySet, domain.EventTypeEntrySetCreated,
			pgxmock.AnyArg(), pgxmock.AnyArg(), false).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mockPool.ExpectCommit()
	mockPool.ExpectQuery("WHERE published = FALSE").
		WithArgs(int32(10)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "aggregate_id", "aggregate_type", "event_type", "payload", "created_at", "published_at", "published"}).
			AddRow("ev-1", "es-1", domain.AggregateTypeEntrySet, domain.EventTypeEntrySetCreated,
				[]byte(`{"entry_set_id":"es-1"}`), created, nil, false))

	repo := newOutboxRepository(mockPool)
	tx, err := newTxManagerWithPool(mockPool).Begin(context.Background())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	event := domain.NewEntrySetCreatedEvent("ev-1", sampleEntrySet(), created)
	if err := repo.Create(context.Background(), tx, event); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := tx.Commit(context.Background()); err != nil {
		t.Fatalf("commit: %v", err)
	}

	events, err := repo.GetUnpublished(context.Background(), 10)
	if err != nil {
		t.Fatalf("get unpublished: %v", err)
	}
	if len(events) != 1 || events[0].Payload["entry_set_id"] != "es-1" {
		t.Fatalf("unexpected events %+v", events)
	}
	if events[0].PublishedAt != nil {
		t.Fatalf("expected unpublished event")
	}

	assertExpectations(t, mockPool)
}

func TestMapError(t *testing.T) {
	other := &pgconn.PgError{Code: pgErrUniqueViolation, ConstraintName: "entries_pkey"}
	if mapped := mapError(other); mapped != other {
		t.Fatalf("expected unrelated constraint to pass through, got %v", mapped)
	}

	dup := &pgconn.PgError{Code: pgErrUniqueViolation, ConstraintName: idempotencyKeyConstraint}
	if !errors.Is(mapError(dup), domain.ErrDuplicateIdempotencyKey) {
		t.Fatalf("expected duplicate key mapping")
	}
}

func TestOutboxRepositoryReportsCorruptPayload(t *testing.T) {
	mockPool := newMockPool(t)
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mockPool.ExpectQuery("WHERE published = FALSE").
		WithArgs(int32(defaultOutboxBatch)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "aggregate_id", "aggregate_type", "event_type", "payload", "created_at", "published_at", "published"}).
			AddRow("ev-bad", "es-1", domain.AggregateTypeEntrySet, domain.EventTypeEntrySetCreated,
				[]byte(`{"entry_set_id":`), created, nil, false))

	_, err := newOutboxRepository(mockPool).GetUnpublished(context.Background(), 0)
	if err == nil || !strings.Contains(err.Error(), "ev-bad") {
		t.Fatalf("expected decode error naming the event, got %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestClampBatch(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, defaultOutboxBatch},
		{-5, defaultOutboxBatch},
		{25, 25},
		{maxOutboxBatch + 1, maxOutboxBatch},
	}

	for _, tt := range tests {
		if got := clampBatch(tt.in); got != tt.want {
			t.Errorf("clampBatch(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
