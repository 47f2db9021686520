package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TimeAxis selects which timestamp governs inclusion of an entry in a balance.
type TimeAxis string

const (
	// TimeAxisCommitted uses the instant the movement became economically effective.
	TimeAxisCommitted TimeAxis = "committed"
	// TimeAxisReporting uses the instant the movement was recognized for accounting.
	// Entries without a reporting instant never count on this axis.
	TimeAxisReporting TimeAxis = "reporting"
)

// DefaultBalanceCurrency is reported when no matching entry carries a currency.
const DefaultBalanceCurrency = "USD"

// ParseTimeAxis converts a configured axis name.
func ParseTimeAxis(s string) (TimeAxis, error) {
	switch TimeAxis(s) {
	case TimeAxisCommitted, TimeAxisReporting:
		return TimeAxis(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTimeAxis, s)
	}
}

// Address is a concrete ledger dimension. A nil AccountID denotes a
// system-level address such as fees or settlement.
type Address struct {
	AccountID *string
	Namespace string
	Name      string
}

// Key returns the address as "namespace:name".
func (a Address) Key() string {
	return a.Namespace + ":" + a.Name
}

// AddressPattern selects addresses by exact namespace and a set of names.
type AddressPattern struct {
	Namespace     string
	Names         []string
	AccountScoped bool
}

// BalanceDefinition names a balance and how it is derived.
type BalanceDefinition struct {
	Name            string
	TimeAxis        TimeAxis
	Description     string
	Currency        string
	AddressPatterns []AddressPattern
}

// Validate checks the definition's structure.
func (d *BalanceDefinition) Validate() error {
	if _, err := ParseTimeAxis(string(d.TimeAxis)); err != nil {
		return fmt.Errorf("balance %q: %w", d.Name, err)
	}

	if len(d.AddressPatterns) == 0 {
		return fmt.Errorf("%w: balance %q has no address patterns", ErrInvalidBalanceDefinition, d.Name)
	}

	for i, p := range d.AddressPatterns {
		if p.Namespace == "" {
			return fmt.Errorf("%w: balance %q pattern %d has no namespace", ErrInvalidBalanceDefinition, d.Name, i)
		}

		if len(p.Names) == 0 {
			return fmt.Errorf("%w: balance %q pattern %d has no names", ErrInvalidBalanceDefinition, d.Name, i)
		}

		for _, n := range p.Names {
			if n == "" {
				return fmt.Errorf("%w: balance %q pattern %d has an empty name", ErrInvalidBalanceDefinition, d.Name, i)
			}
		}
	}

	return nil
}

// AccountScoped reports whether any pattern binds to an account. A
// definition without one selects only system-level addresses.
func (d *BalanceDefinition) AccountScoped() bool {
	for _, p := range d.AddressPatterns {
		if p.AccountScoped {
			return true
		}
	}
	return false
}

// ResolveAddresses expands the definition's patterns into the concrete
// addresses that belong to accountID. Account-scoped patterns bind to
// accountID; the others resolve to system-level addresses. The result is
// deduplicated and keeps the order of first appearance.
func (d *BalanceDefinition) ResolveAddresses(accountID string) []Address {
	type seenKey struct {
		namespace string
		name      string
		scoped    bool
	}

	seen := make(map[seenKey]bool)

	var addresses []Address
	for _, p := range d.AddressPatterns {
		for _, name := range p.Names {
			k := seenKey{namespace: p.Namespace, name: name, scoped: p.AccountScoped}
			if seen[k] {
				continue
			}
			seen[k] = true

			addr := Address{Namespace: p.Namespace, Name: name}
			if p.AccountScoped {
				id := accountID
				addr.AccountID = &id
			}

			addresses = append(addresses, addr)
		}
	}

	return addresses
}

// BalanceQuery is what the store needs to aggregate a balance.
type BalanceQuery struct {
	AsOf      time.Time
	TimeAxis  TimeAxis
	Addresses []Address
}

// Balance is the result of a balance calculation.
type Balance struct {
	AsOf        time.Time
	BalanceName string
	AccountID   string
	Currency    string
	Description string
	TimeAxis    TimeAxis
	Amount      int64
}

// AmountDecimal converts the minor-unit amount to display units.
func (b *Balance) AmountDecimal() decimal.Decimal {
	return MinorUnitsToDecimal(b.Amount)
}

// MinorUnitsToDecimal converts an integer amount in cents to a decimal.
func MinorUnitsToDecimal(amount int64) decimal.Decimal {
	return decimal.New(amount, -2)
}
