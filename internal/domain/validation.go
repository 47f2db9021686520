package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// Validation constants
const (
	MaxIdempotencyKeyLength = 255
	MaxAddressPartLength    = 255
	MaxDescriptionLength    = 4096
)

var currencyRegex = regexp.MustCompile(`^[A-Z]{3}$`)

func invalidEntry(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidEntry, reason)
}

// ValidateIdempotencyKey validates a caller-supplied idempotency key
func ValidateIdempotencyKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return invalidEntry("idempotency_key is required")
	}

	if len(key) > MaxIdempotencyKeyLength {
		return invalidEntry(fmt.Sprintf("idempotency_key exceeds %d characters", MaxIdempotencyKeyLength))
	}

	return nil
}

// ValidateAddressPart validates one dimension of a ledger address
func ValidateAddressPart(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return invalidEntry(field + " is required")
	}

	if len(value) > MaxAddressPartLength {
		return invalidEntry(fmt.Sprintf("%s exceeds %d characters", field, MaxAddressPartLength))
	}

	return nil
}

// ValidateCurrency validates an ISO 4217 style currency code
func ValidateCurrency(currency string) error {
	if !currencyRegex.MatchString(currency) {
		return fmt.Errorf("currency %q is not a three-letter uppercase code", currency)
	}

	return nil
}

// ValidateDescription validates the optional free-text description
func ValidateDescription(description *string) error {
	if description != nil && len(*description) > MaxDescriptionLength {
		return invalidEntry(fmt.Sprintf("description exceeds %d characters", MaxDescriptionLength))
	}

	return nil
}
