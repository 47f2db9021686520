package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/iho/zionledger/internal/infrastructure/metrics"
)

// ErrInconsistentLedger is returned when some entry set, or the ledger as a
// whole, does not sum to zero.
var ErrInconsistentLedger = errors.New("ledger is inconsistent: debits do not equal credits")

// ConsistencyReport summarizes a ledger-wide double-entry check.
type ConsistencyReport struct {
	TotalAmount         int64
	UnbalancedEntrySets int64
	Consistent          bool
}

// LedgerUseCase runs ledger-wide audits.
type LedgerUseCase struct {
	ledgerRepo LedgerRepository
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

func NewLedgerUseCase(ledgerRepo LedgerRepository) *LedgerUseCase {
	return &LedgerUseCase{
		ledgerRepo: ledgerRepo,
		logger:     zerolog.Nop(),
	}
}

// WithMetrics publishes the unbalanced set count of each check.
func (uc *LedgerUseCase) WithMetrics(m *metrics.Metrics) *LedgerUseCase {
	uc.metrics = m
	return uc
}

func (uc *LedgerUseCase) WithLogger(l zerolog.Logger) *LedgerUseCase {
	uc.logger = l.With().Str("component", "ledger_usecase").Logger()
	return uc
}

// CheckConsistency audits every recorded entry set. When the ledger is
// off, the report comes back together with ErrInconsistentLedger.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) (*ConsistencyReport, error) {
	total, unbalanced, err := uc.ledgerRepo.CheckConsistency(ctx)
	if err != nil {
		return nil, fmt.Errorf("check ledger consistency: %w", err)
	}

	report := &ConsistencyReport{
		TotalAmount:         total,
		UnbalancedEntrySets: unbalanced,
		Consistent:          total == 0 && unbalanced == 0,
	}

	if uc.metrics != nil {
		uc.metrics.UnbalancedEntrySets.Set(float64(unbalanced))
	}

	if !report.Consistent {
		uc.logger.Error().
			Int64("total_amount", total).
			Int64("unbalanced_entry_sets", unbalanced).
			Msg("ledger consistency check failed")

		return report, ErrInconsistentLedger
	}

	return report, nil
}
