package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()

	m := New(registry)

	if m.EntrySetsCreated == nil || m.HTTPRequests == nil || m.BalanceCalculations == nil {
		t.Fatalf("expected key metrics to be initialized: %+v", m)
	}

	m.EntrySetsCreated.Inc()
	m.EntrySetsRejected.WithLabelValues(ReasonUnbalanced).Inc()
	m.BalanceCalculations.WithLabelValues("customer_facing_balance", "ok").Inc()

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	if len(metricFamilies) == 0 {
		t.Fatalf("expected registered metrics, got none")
	}

	if got := testutil.ToFloat64(m.EntrySetsCreated); got != 1 {
		t.Fatalf("expected entry sets created = 1, got %v", got)
	}

	if got := testutil.ToFloat64(m.EntrySetsRejected.WithLabelValues(ReasonUnbalanced)); got != 1 {
		t.Fatalf("expected unbalanced rejections = 1, got %v", got)
	}
}

func TestNewTwiceOnSeparateRegistries(t *testing.T) {
	a := New(prometheus.NewRegistry())
	b := New(prometheus.NewRegistry())

	a.EntriesWritten.Add(3)

	if got := testutil.ToFloat64(b.EntriesWritten); got != 0 {
		t.Fatalf("expected independent metrics, got %v", got)
	}
}
