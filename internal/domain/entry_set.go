package domain

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// MinEntriesPerSet is the smallest valid entry set: one debit and one credit.
const MinEntriesPerSet = 2

// EntrySet is one atomic ledger transaction.
type EntrySet struct {
	CommittedAt    time.Time
	CreatedAt      time.Time
	ReportingAt    *time.Time
	Description    *string
	ID             string
	IdempotencyKey string
	Entries        []*Entry
}

// Entry is one leg of an entry set, in minor currency units.
// Negative amounts are debits, positive amounts are credits.
type Entry struct {
	CommittedAt time.Time
	CreatedAt   time.Time
	ReportingAt *time.Time
	AccountID   *string
	ID          string
	EntrySetID  string
	Namespace   string
	Name        string
	LegalEntity string
	Currency    string
	Amount      int64
}

// IsDebit reports whether the entry moves value out of its address.
func (e *Entry) IsDebit() bool {
	return e.Amount < 0
}

// IsCredit reports whether the entry moves value into its address.
func (e *Entry) IsCredit() bool {
	return e.Amount > 0
}

// Address returns the ledger address the entry posts to.
func (e *Entry) Address() Address {
	return Address{Namespace: e.Namespace, Name: e.Name, AccountID: e.AccountID}
}

// Validate checks a single entry's fields.
func (e *Entry) Validate() error {
	if e.Amount == 0 {
		return invalidEntry("amount must be non-zero")
	}

	if err := ValidateAddressPart("namespace", e.Namespace); err != nil {
		return err
	}

	if err := ValidateAddressPart("name", e.Name); err != nil {
		return err
	}

	if err := ValidateAddressPart("legal_entity", e.LegalEntity); err != nil {
		return err
	}

	if err := ValidateCurrency(e.Currency); err != nil {
		return invalidEntry(err.Error())
	}

	if e.AccountID != nil && *e.AccountID == "" {
		return invalidEntry("account_id must be omitted or non-empty")
	}

	return nil
}

var maxAmount = decimal.NewFromInt(math.MaxInt64)

// totals sums amounts exactly, so int64 wraparound cannot hide an imbalance.
// credits is the sum of the positive legs.
func (s *EntrySet) totals() (sum, credits decimal.Decimal) {
	sum, credits = decimal.Zero, decimal.Zero
	for _, e := range s.Entries {
		amount := decimal.NewFromInt(e.Amount)
		sum = sum.Add(amount)
		if e.Amount > 0 {
			credits = credits.Add(amount)
		}
	}

	return sum, credits
}

// Sum returns the signed sum of all entry amounts. ok is false when the
// exact sum does not fit in an int64.
func (s *EntrySet) Sum() (sum int64, ok bool) {
	total, _ := s.totals()
	if total.Abs().GreaterThan(maxAmount) {
		return 0, false
	}

	return total.IntPart(), true
}

// IsBalanced reports whether the entries sum to zero.
func (s *EntrySet) IsBalanced() bool {
	return s.ValidateBalance() == nil
}

// ValidateBalance enforces the double-entry rule. Each side must also fit
// in an int64 so that stored sums never overflow.
func (s *EntrySet) ValidateBalance() error {
	if len(s.Entries) < MinEntriesPerSet {
		return &UnbalancedEntriesError{Count: len(s.Entries)}
	}

	total, credits := s.totals()
	if total.IsZero() && !credits.GreaterThan(maxAmount) {
		return nil
	}

	if total.IsZero() || total.Abs().GreaterThan(maxAmount) {
		return &UnbalancedEntriesError{Count: len(s.Entries), Overflow: true}
	}

	return &UnbalancedEntriesError{Count: len(s.Entries), Sum: total.IntPart()}
}

// Validate checks the entry set header, every entry and the double-entry rule.
func (s *EntrySet) Validate() error {
	if err := ValidateIdempotencyKey(s.IdempotencyKey); err != nil {
		return err
	}

	if s.CommittedAt.IsZero() {
		return invalidEntry("committed_at is required")
	}

	if err := ValidateDescription(s.Description); err != nil {
		return err
	}

	if err := s.ValidateBalance(); err != nil {
		return err
	}

	for _, e := range s.Entries {
		if err := e.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// ApplyTimestamps copies the set's committed and reporting instants onto
// entries that do not carry their own.
func (s *EntrySet) ApplyTimestamps() {
	for _, e := range s.Entries {
		if e.CommittedAt.IsZero() {
			e.CommittedAt = s.CommittedAt
		}

		if e.ReportingAt == nil && s.ReportingAt != nil {
			t := *s.ReportingAt
			e.ReportingAt = &t
		}
	}
}

// Matches reports whether other describes the same logical transaction.
// Committed instant, description and the entries (as an unordered multiset)
// are compared; ids, reporting instant and creation time are ignored.
func (s *EntrySet) Matches(other *EntrySet) bool {
	if !s.CommittedAt.Equal(other.CommittedAt) {
		return false
	}

	if stringValue(s.Description) != stringValue(other.Description) {
		return false
	}

	if len(s.Entries) != len(other.Entries) {
		return false
	}

	counts := make(map[entryKey]int, len(s.Entries))
	for _, e := range s.Entries {
		counts[keyOf(e)]++
	}

	for _, e := range other.Entries {
		k := keyOf(e)
		if counts[k] == 0 {
			return false
		}
		counts[k]--
	}

	return true
}

// entryKey is the canonical identity of an entry for payload comparison.
type entryKey struct {
	namespace   string
	name        string
	legalEntity string
	currency    string
	accountID   string
	amount      int64
	hasAccount  bool
}

func keyOf(e *Entry) entryKey {
	k := entryKey{
		amount:      e.Amount,
		namespace:   e.Namespace,
		name:        e.Name,
		legalEntity: e.LegalEntity,
		currency:    e.Currency,
	}

	if e.AccountID != nil {
		k.accountID = *e.AccountID
		k.hasAccount = true
	}

	return k
}

// NormalizeTimestamp truncates t to the precision the store keeps.
func NormalizeTimestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// NormalizeDescription maps blank descriptions to nil.
func NormalizeDescription(d *string) *string {
	if d == nil || *d == "" {
		return nil
	}

	return d
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
