package domain

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func testEntry(amount int64, name string) *Entry {
	return &Entry{
		Amount:      amount,
		Namespace:   "payments",
		Name:        name,
		LegalEntity: "acme_corp",
		Currency:    "USD",
		AccountID:   strPtr("user-789"),
	}
}

func testEntrySet(entries ...*Entry) *EntrySet {
	return &EntrySet{
		IdempotencyKey: "payment-order-12345",
		CommittedAt:    time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC),
		Description:    strPtr("Payment for order #12345"),
		Entries:        entries,
	}
}

func TestEntrySet_ValidateBalance(t *testing.T) {
	tests := []struct {
		name      string
		entries   []*Entry
		expectErr bool
		wantCount int
		wantSum   int64
		wantOver  bool
		wantMsg   string
	}{
		{
			name:    "balanced pair",
			entries: []*Entry{testEntry(5000, "revenue"), testEntry(-5000, "accounts_receivable")},
		},
		{
			name:      "no entries",
			entries:   nil,
			expectErr: true,
			wantCount: 0,
			wantMsg:   "received 0 entries",
		},
		{
			name:      "single entry",
			entries:   []*Entry{testEntry(5000, "revenue")},
			expectErr: true,
			wantCount: 1,
			wantMsg:   "received 1 entry",
		},
		{
			name:      "non-zero sum",
			entries:   []*Entry{testEntry(5000, "revenue"), testEntry(-4000, "accounts_receivable")},
			expectErr: true,
			wantCount: 2,
			wantSum:   1000,
			wantMsg:   "current sum: 1000",
		},
		{
			name: "three legs balanced",
			entries: []*Entry{
				testEntry(-10000, "checking"),
				testEntry(9900, "merchant"),
				testEntry(100, "fees"),
			},
		},
		{
			name:      "two min int64 legs wrap to zero",
			entries:   []*Entry{testEntry(math.MinInt64, "checking"), testEntry(math.MinInt64, "merchant")},
			expectErr: true,
			wantCount: 2,
			wantOver:  true,
			wantMsg:   "overflow",
		},
		{
			name: "max int64 legs wrap to zero",
			entries: []*Entry{
				testEntry(math.MaxInt64, "checking"),
				testEntry(math.MaxInt64, "merchant"),
				testEntry(2, "fees"),
			},
			expectErr: true,
			wantCount: 3,
			wantOver:  true,
			wantMsg:   "overflow",
		},
		{
			name: "balanced but each side beyond int64",
			entries: []*Entry{
				testEntry(math.MaxInt64, "checking"),
				testEntry(1, "fees"),
				testEntry(-math.MaxInt64, "merchant"),
				testEntry(-1, "fees"),
			},
			expectErr: true,
			wantCount: 4,
			wantOver:  true,
			wantMsg:   "overflow",
		},
		{
			name:    "max int64 pair",
			entries: []*Entry{testEntry(math.MaxInt64, "checking"), testEntry(-math.MaxInt64, "merchant")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := testEntrySet(tt.entries...).ValidateBalance()
			if !tt.expectErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			if !errors.Is(err, ErrUnbalancedEntries) {
				t.Fatalf("expected ErrUnbalancedEntries, got %v", err)
			}

			var ue *UnbalancedEntriesError
			if !errors.As(err, &ue) {
				t.Fatalf("expected *UnbalancedEntriesError, got %T", err)
			}
			if ue.Count != tt.wantCount || ue.Sum != tt.wantSum || ue.Overflow != tt.wantOver {
				t.Fatalf("expected count=%d sum=%d overflow=%v, got %+v", tt.wantCount, tt.wantSum, tt.wantOver, ue)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Fatalf("expected message to contain %q, got %q", tt.wantMsg, err.Error())
			}
		})
	}
}

func TestEntrySet_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		set := testEntrySet(testEntry(5000, "revenue"), testEntry(-5000, "accounts_receivable"))
		if err := set.Validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("missing idempotency key", func(t *testing.T) {
		set := testEntrySet(testEntry(5000, "revenue"), testEntry(-5000, "accounts_receivable"))
		set.IdempotencyKey = ""
		if err := set.Validate(); !errors.Is(err, ErrInvalidEntry) {
			t.Fatalf("expected ErrInvalidEntry, got %v", err)
		}
	})

	t.Run("missing committed_at", func(t *testing.T) {
		set := testEntrySet(testEntry(5000, "revenue"), testEntry(-5000, "accounts_receivable"))
		set.CommittedAt = time.Time{}
		if err := set.Validate(); !errors.Is(err, ErrInvalidEntry) {
			t.Fatalf("expected ErrInvalidEntry, got %v", err)
		}
	})

	t.Run("blank currency", func(t *testing.T) {
		bad := testEntry(5000, "revenue")
		bad.Currency = ""
		set := testEntrySet(bad, testEntry(-5000, "accounts_receivable"))
		if err := set.Validate(); !errors.Is(err, ErrInvalidEntry) {
			t.Fatalf("expected ErrInvalidEntry, got %v", err)
		}
	})

	t.Run("zero amount legs", func(t *testing.T) {
		set := testEntrySet(testEntry(0, "revenue"), testEntry(0, "accounts_receivable"))
		if err := set.Validate(); !errors.Is(err, ErrInvalidEntry) {
			t.Fatalf("expected ErrInvalidEntry, got %v", err)
		}
	})

	t.Run("empty account id", func(t *testing.T) {
		bad := testEntry(5000, "revenue")
		bad.AccountID = strPtr("")
		set := testEntrySet(bad, testEntry(-5000, "accounts_receivable"))
		if err := set.Validate(); !errors.Is(err, ErrInvalidEntry) {
			t.Fatalf("expected ErrInvalidEntry, got %v", err)
		}
	})

	t.Run("unbalanced wins over field errors", func(t *testing.T) {
		bad := testEntry(5000, "revenue")
		bad.Currency = ""
		set := testEntrySet(bad)
		if err := set.Validate(); !errors.Is(err, ErrUnbalancedEntries) {
			t.Fatalf("expected ErrUnbalancedEntries, got %v", err)
		}
	})
}

func TestEntrySet_ApplyTimestamps(t *testing.T) {
	reporting := time.Date(2025, 1, 17, 0, 0, 0, 0, time.UTC)
	own := time.Date(2025, 1, 14, 0, 0, 0, 0, time.UTC)

	withOwn := testEntry(-5000, "accounts_receivable")
	withOwn.CommittedAt = own

	set := testEntrySet(testEntry(5000, "revenue"), withOwn)
	set.ReportingAt = &reporting
	set.ApplyTimestamps()

	if !set.Entries[0].CommittedAt.Equal(set.CommittedAt) {
		t.Fatalf("expected committed_at copied from set, got %s", set.Entries[0].CommittedAt)
	}
	if !set.Entries[1].CommittedAt.Equal(own) {
		t.Fatalf("expected own committed_at kept, got %s", set.Entries[1].CommittedAt)
	}
	for i, e := range set.Entries {
		if e.ReportingAt == nil || !e.ReportingAt.Equal(reporting) {
			t.Fatalf("entry %d: expected reporting_at %s, got %v", i, reporting, e.ReportingAt)
		}
	}

	pending := testEntrySet(testEntry(5000, "revenue"), testEntry(-5000, "accounts_receivable"))
	pending.ApplyTimestamps()
	for i, e := range pending.Entries {
		if e.ReportingAt != nil {
			t.Fatalf("entry %d: expected nil reporting_at for pending set, got %v", i, e.ReportingAt)
		}
	}
}

func TestEntrySet_Matches(t *testing.T) {
	base := func() *EntrySet {
		return testEntrySet(testEntry(5000, "revenue"), testEntry(-5000, "accounts_receivable"))
	}

	tests := []struct {
		name   string
		mutate func(s *EntrySet)
		want   bool
	}{
		{name: "identical", mutate: func(s *EntrySet) {}, want: true},
		{
			name: "entries in different order",
			mutate: func(s *EntrySet) {
				s.Entries[0], s.Entries[1] = s.Entries[1], s.Entries[0]
			},
			want: true,
		},
		{
			name: "same instant in another zone",
			mutate: func(s *EntrySet) {
				s.CommittedAt = s.CommittedAt.In(time.FixedZone("UTC+3", 3*3600))
			},
			want: true,
		},
		{
			name: "reporting_at is not compared",
			mutate: func(s *EntrySet) {
				r := time.Now()
				s.ReportingAt = &r
			},
			want: true,
		},
		{
			name: "different description",
			mutate: func(s *EntrySet) {
				s.Description = strPtr("Different description")
			},
			want: false,
		},
		{
			name: "different committed_at",
			mutate: func(s *EntrySet) {
				s.CommittedAt = s.CommittedAt.Add(time.Second)
			},
			want: false,
		},
		{
			name: "different amounts",
			mutate: func(s *EntrySet) {
				s.Entries[0].Amount = 9999
				s.Entries[1].Amount = -9999
			},
			want: false,
		},
		{
			name: "account id removed",
			mutate: func(s *EntrySet) {
				s.Entries[0].AccountID = nil
			},
			want: false,
		},
		{
			name: "extra entry",
			mutate: func(s *EntrySet) {
				s.Entries = append(s.Entries, testEntry(1, "x"))
			},
			want: false,
		},
		{
			name: "multiset counts differ",
			mutate: func(s *EntrySet) {
				s.Entries = []*Entry{testEntry(5000, "revenue"), testEntry(5000, "revenue")}
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other := base()
			tt.mutate(other)

			if got := base().Matches(other); got != tt.want {
				t.Fatalf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeTimestamp(t *testing.T) {
	in := time.Date(2025, 1, 15, 10, 30, 0, 123456789, time.FixedZone("X", 3600))
	got := NormalizeTimestamp(in)

	if got.Location() != time.UTC {
		t.Fatalf("expected UTC, got %s", got.Location())
	}
	if got.Nanosecond() != 123456000 {
		t.Fatalf("expected microsecond precision, got %d ns", got.Nanosecond())
	}
	if !got.Equal(in.Truncate(time.Microsecond)) {
		t.Fatalf("expected same instant")
	}
}

func TestNormalizeDescription(t *testing.T) {
	if NormalizeDescription(strPtr("")) != nil {
		t.Fatalf("expected blank description to become nil")
	}
	if got := NormalizeDescription(strPtr("coffee")); got == nil || *got != "coffee" {
		t.Fatalf("expected description kept, got %v", got)
	}
}

func TestEntry_DebitCredit(t *testing.T) {
	if !testEntry(-1, "a").IsDebit() || testEntry(-1, "a").IsCredit() {
		t.Fatalf("expected negative entry to be a debit")
	}
	if !testEntry(1, "a").IsCredit() || testEntry(1, "a").IsDebit() {
		t.Fatalf("expected positive entry to be a credit")
	}
}

func TestEntrySet_SumReportsOverflow(t *testing.T) {
	sum, ok := testEntrySet(testEntry(math.MinInt64, "checking"), testEntry(math.MinInt64, "merchant")).Sum()
	if ok || sum != 0 {
		t.Fatalf("expected overflow, got sum=%d ok=%v", sum, ok)
	}

	sum, ok = testEntrySet(testEntry(5000, "revenue"), testEntry(-4000, "accounts_receivable")).Sum()
	if !ok || sum != 1000 {
		t.Fatalf("expected sum 1000, got sum=%d ok=%v", sum, ok)
	}
}
