package usecase

import "time"

const (
	// DefaultTransactionTimeout bounds each entry set write transaction.
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultBalanceName is used when a balance request does not name one.
	DefaultBalanceName = "customer_facing_balance"

	// DefaultEntriesPageSize and MaxEntriesPageSize bound entry listings.
	DefaultEntriesPageSize = 20
	MaxEntriesPageSize     = 100
)
