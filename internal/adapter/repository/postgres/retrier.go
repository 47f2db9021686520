package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/iho/zionledger/internal/infrastructure/logger"
	"github.com/iho/zionledger/internal/infrastructure/metrics"
)

// PostgreSQL error codes for retryable errors.
const (
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"
)

// RetrierConfig tunes the retry policy. Zero fields take the defaults.
type RetrierConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
}

func (c RetrierConfig) withDefaults() RetrierConfig {
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.InitialInterval <= 0 {
		c.InitialInterval = 50 * time.Millisecond
	}
	if c.MaxInterval <= 0 {
		c.MaxInterval = time.Second
	}
	if c.MaxElapsedTime <= 0 {
		c.MaxElapsedTime = 10 * time.Second
	}

	return c
}

// Retrier implements usecase.Retrier. Only deadlocks and serialization
// failures are retried; every other error is returned on first sight.
type Retrier struct {
	cfg     RetrierConfig
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// NewRetrier creates a new PostgreSQL retrier with default settings.
func NewRetrier(log zerolog.Logger) *Retrier {
	return NewRetrierWithConfig(log, RetrierConfig{})
}

// NewRetrierWithConfig creates a retrier with an explicit policy.
func NewRetrierWithConfig(log zerolog.Logger, cfg RetrierConfig) *Retrier {
	return &Retrier{
		cfg:    cfg.withDefaults(),
		logger: logger.Component(log, "pg_retrier"),
	}
}

// WithMetrics counts retries per SQLSTATE on m.
func (r *Retrier) WithMetrics(m *metrics.Metrics) *Retrier {
	r.metrics = m
	return r
}

// Retry executes operation, backing off exponentially between attempts.
func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.cfg.InitialInterval
	b.MaxInterval = r.cfg.MaxInterval
	b.MaxElapsedTime = r.cfg.MaxElapsedTime

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(r.cfg.MaxRetries)), ctx)

	attempt := 0
	op := func() error {
		attempt++

		err := operation()
		if err == nil || isRetryableError(err) {
			return err
		}

		return backoff.Permanent(err)
	}

	notify := func(err error, wait time.Duration) {
		code := sqlState(err)
		if r.metrics != nil {
			r.metrics.TxRetries.WithLabelValues(code).Inc()
		}

		r.logger.Warn().
			Err(err).
			Str("sqlstate", code).
			Int("attempt", attempt).
			Dur("wait", wait).
			Msg("retryable database error, retrying")
	}

	return backoff.RetryNotify(op, policy, notify)
}

// isRetryableError checks if a PostgreSQL error should trigger a retry.
func isRetryableError(err error) bool {
	switch sqlState(err) {
	case pgErrDeadlock, pgErrSerializationFailure:
		return true
	default:
		return false
	}
}

func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}

	return ""
}
