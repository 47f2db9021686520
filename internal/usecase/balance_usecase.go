package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/zionledger/internal/domain"
	"github.com/iho/zionledger/internal/infrastructure/metrics"
)

// BalanceUseCase derives balances from entries using named definitions.
type BalanceUseCase struct {
	registry           BalanceDefinitionRegistry
	entryRepo          EntryRepository
	defaultBalanceName string
	metrics            *metrics.Metrics
	logger             zerolog.Logger
	now                func() time.Time
}

// NewBalanceUseCase creates a new BalanceUseCase.
func NewBalanceUseCase(registry BalanceDefinitionRegistry, entryRepo EntryRepository) *BalanceUseCase {
	return &BalanceUseCase{
		registry:           registry,
		entryRepo:          entryRepo,
		defaultBalanceName: DefaultBalanceName,
		logger:             zerolog.Nop(),
		now:                func() time.Time { return time.Now().UTC() },
	}
}

// WithDefaultBalanceName overrides the balance used when none is requested.
func (uc *BalanceUseCase) WithDefaultBalanceName(name string) *BalanceUseCase {
	if name != "" {
		uc.defaultBalanceName = name
	}

	return uc
}

// WithMetrics records balance metrics.
func (uc *BalanceUseCase) WithMetrics(m *metrics.Metrics) *BalanceUseCase {
	uc.metrics = m
	return uc
}

// WithLogger sets the logger.
func (uc *BalanceUseCase) WithLogger(l zerolog.Logger) *BalanceUseCase {
	uc.logger = l.With().Str("component", "balance_usecase").Logger()
	return uc
}

// CalculateBalanceInput represents input for a balance calculation.
// A nil AsOf means now; a blank BalanceName means the default balance.
type CalculateBalanceInput struct {
	AsOf        *time.Time
	BalanceName string
	AccountID   string
}

// Calculate sums the entries selected by the named balance definition for
// one account up to AsOf on the definition's time axis. The account id may
// be blank only when the definition has no account-scoped pattern.
func (uc *BalanceUseCase) Calculate(ctx context.Context, input CalculateBalanceInput) (*domain.Balance, error) {
	start := time.Now()

	name := input.BalanceName
	if name == "" {
		name = uc.defaultBalanceName
	}

	balance, err := uc.calculate(ctx, name, input)

	status := "ok"
	if err != nil {
		status = "error"
		uc.logger.Debug().Err(err).
			Str("balance_name", name).
			Str("account_id", input.AccountID).
			Msg("balance calculation failed")
	}

	if uc.metrics != nil {
		uc.metrics.BalanceCalculations.WithLabelValues(name, status).Inc()
		uc.metrics.BalanceDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}

	return balance, err
}

func (uc *BalanceUseCase) calculate(ctx context.Context, name string, input CalculateBalanceInput) (*domain.Balance, error) {
	def, err := uc.registry.Definition(name)
	if err != nil {
		return nil, err
	}

	// Registry implementations other than the YAML loader are not
	// required to validate, so an unknown time axis is caught here.
	if err := def.Validate(); err != nil {
		return nil, err
	}

	if strings.TrimSpace(input.AccountID) == "" {
		if def.AccountScoped() {
			return nil, domain.ErrInvalidAccountID
		}
		input.AccountID = ""
	}

	asOf := domain.NormalizeTimestamp(uc.now())
	if input.AsOf != nil {
		asOf = domain.NormalizeTimestamp(*input.AsOf)
	}

	sums, err := uc.entryRepo.SumByCurrency(ctx, domain.BalanceQuery{
		AsOf:      asOf,
		TimeAxis:  def.TimeAxis,
		Addresses: def.ResolveAddresses(input.AccountID),
	})
	if err != nil {
		return nil, err
	}

	currency, amount, err := singleCurrency(sums, def.Currency)
	if err != nil {
		return nil, err
	}

	return &domain.Balance{
		AsOf:        asOf,
		BalanceName: def.Name,
		AccountID:   input.AccountID,
		Currency:    currency,
		Description: def.Description,
		TimeAxis:    def.TimeAxis,
		Amount:      amount,
	}, nil
}

// AvailableBalances lists the configured balance names.
func (uc *BalanceUseCase) AvailableBalances() []string {
	return uc.registry.Names()
}

// DefaultBalance returns the balance name used when none is requested.
func (uc *BalanceUseCase) DefaultBalance() string {
	return uc.defaultBalanceName
}

func singleCurrency(sums map[string]int64, fallback string) (string, int64, error) {
	switch len(sums) {
	case 0:
		if fallback == "" {
			fallback = domain.DefaultBalanceCurrency
		}

		return fallback, 0, nil
	case 1:
		for currency, amount := range sums {
			return currency, amount, nil
		}
	}

	currencies := make([]string, 0, len(sums))
	for c := range sums {
		currencies = append(currencies, c)
	}
	sort.Strings(currencies)

	return "", 0, fmt.Errorf("%w: %s", domain.ErrCurrencyMismatch, strings.Join(currencies, ", "))
}
