package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Rejection reasons recorded on EntrySetsRejected.
const (
	ReasonUnbalanced = "unbalanced"
	ReasonInvalid    = "invalid"
	ReasonConflict   = "conflict"
	ReasonInternal   = "internal"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Entry set metrics
	EntrySetsCreated  prometheus.Counter
	EntrySetsReplayed prometheus.Counter
	EntrySetsRejected *prometheus.CounterVec
	EntriesWritten    prometheus.Counter
	IdempotencyRaces  prometheus.Counter
	EntrySetDuration  prometheus.Histogram

	// Ledger metrics
	UnbalancedEntrySets prometheus.Gauge

	// Balance metrics
	BalanceCalculations *prometheus.CounterVec
	BalanceDuration     *prometheus.HistogramVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge

	// Database metrics
	DBErrors  *prometheus.CounterVec
	TxRetries *prometheus.CounterVec

	// Outbox metrics
	OutboxPublished prometheus.Counter
	OutboxFailures  prometheus.Counter

	// Redis metrics
	RedisOperations *prometheus.CounterVec
	RedisErrors     *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates all metrics and registers them with reg.
// A nil reg registers with the default registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)

	return &Metrics{
		EntrySetsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "zionledger_entry_sets_created_total",
			Help: "Total number of entry sets created",
		}),
		EntrySetsReplayed: factory.NewCounter(prometheus.CounterOpts{
			Name: "zionledger_entry_sets_replayed_total",
			Help: "Total number of idempotent entry set replays",
		}),
		EntrySetsRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zionledger_entry_sets_rejected_total",
				Help: "Total number of rejected entry sets by reason",
			},
			[]string{"reason"},
		),
		EntriesWritten: factory.NewCounter(prometheus.CounterOpts{
			Name: "zionledger_entries_written_total",
			Help: "Total number of entries written",
		}),
		IdempotencyRaces: factory.NewCounter(prometheus.CounterOpts{
			Name: "zionledger_idempotency_races_total",
			Help: "Total number of unique-key races recovered by re-fetching",
		}),
		EntrySetDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "zionledger_entry_set_duration_seconds",
			Help:    "Duration of entry set writes",
			Buckets: prometheus.DefBuckets,
		}),

		UnbalancedEntrySets: factory.NewGauge(prometheus.GaugeOpts{
			Name: "zionledger_unbalanced_entry_sets",
			Help: "Entry sets whose amounts did not sum to zero at the last consistency check",
		}),

		BalanceCalculations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zionledger_balance_calculations_total",
				Help: "Total balance calculations by balance name and status",
			},
			[]string{"balance_name", "status"},
		),
		BalanceDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "zionledger_balance_duration_seconds",
				Help:    "Duration of balance calculations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"balance_name"},
		),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zionledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "zionledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "zionledger_http_requests_in_flight",
			Help: "HTTP requests currently being served",
		}),

		DBErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zionledger_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),
		TxRetries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zionledger_tx_retries_total",
				Help: "Write transactions retried after a transient database error",
			},
			[]string{"sqlstate"},
		),

		OutboxPublished: factory.NewCounter(prometheus.CounterOpts{
			Name: "zionledger_outbox_published_total",
			Help: "Total outbox events published",
		}),
		OutboxFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "zionledger_outbox_failures_total",
			Help: "Total outbox events that failed to publish",
		}),

		RedisOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zionledger_redis_operations_total",
				Help: "Total Redis operations",
			},
			[]string{"operation"},
		),
		RedisErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zionledger_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),

		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zionledger_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"path"},
		),
	}
}
