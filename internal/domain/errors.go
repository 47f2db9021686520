package domain

import (
	"errors"
	"fmt"
)

var (
	// Entry set errors
	ErrUnbalancedEntries       = errors.New("unbalanced entries")
	ErrIdempotencyConflict     = errors.New("idempotency key already used with different payload")
	ErrInvalidEntry            = errors.New("invalid entry")
	ErrEntrySetNotFound        = errors.New("entry set not found")
	ErrDuplicateIdempotencyKey = errors.New("idempotency key already exists")

	// Balance errors
	ErrBalanceDefinitionNotFound = errors.New("balance definition not found")
	ErrInvalidTimeAxis           = errors.New("invalid time axis")
	ErrInvalidBalanceDefinition  = errors.New("invalid balance definition")
	ErrInvalidAccountID          = errors.New("account id is required")
	ErrCurrencyMismatch          = errors.New("balance spans more than one currency")
)

// UnbalancedEntriesError reports why a set of entries violates the double-entry rule.
// Overflow is set when the amounts leave the int64 range, in which case Sum is zero.
type UnbalancedEntriesError struct {
	Count    int
	Sum      int64
	Overflow bool
}

func (e *UnbalancedEntriesError) Error() string {
	if e.Count < MinEntriesPerSet {
		noun := "entries"
		if e.Count == 1 {
			noun = "entry"
		}

		return fmt.Sprintf("%s: entry set must have at least %d entries, received %d %s",
			ErrUnbalancedEntries, MinEntriesPerSet, e.Count, noun)
	}

	if e.Overflow {
		return fmt.Sprintf("%s: entry amounts overflow a 64-bit sum", ErrUnbalancedEntries)
	}

	return fmt.Sprintf("%s: entries must sum to zero, current sum: %d", ErrUnbalancedEntries, e.Sum)
}

// Is lets errors.Is match the sentinel.
func (e *UnbalancedEntriesError) Is(target error) bool {
	return target == ErrUnbalancedEntries
}
