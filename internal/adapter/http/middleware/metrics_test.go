package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/iho/zionledger/internal/infrastructure/metrics"
)

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		status int
		label  string
	}{
		{"account path falls back to normalized label", http.MethodGet, "/api/v1/accounts/ABC123/balance", http.StatusTeapot, "/api/v1/accounts/:id/balance"},
		{"static path kept", http.MethodPost, "/health", http.StatusCreated, "/health"},
		{"implicit 200", http.MethodGet, "/up", 0, "/up"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := metrics.New(prometheus.NewRegistry())

			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, float64(1), testutil.ToFloat64(m.HTTPInFlight))
				if tt.status != 0 {
					w.WriteHeader(tt.status)
				}
			})

			Metrics(m)(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(tt.method, tt.path, nil))

			want := tt.status
			if want == 0 {
				want = http.StatusOK
			}
			require.Zero(t, testutil.ToFloat64(m.HTTPInFlight))
			require.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequests.WithLabelValues(tt.method, tt.label, strconv.Itoa(want))))
		})
	}
}

func TestMetricsMiddlewareSkipsScrapePath(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	Metrics(m, "/metrics")(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Zero(t, testutil.CollectAndCount(m.HTTPRequests))
}

func TestMetricsMiddlewareUsesRoutePattern(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(Metrics(m))
	r.Get("/api/v1/entry_sets/{id}", func(w http.ResponseWriter, r *http.Request) {})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/entry_sets/01HXYZ", nil))

	counter := m.HTTPRequests.WithLabelValues(http.MethodGet, "/api/v1/entry_sets/{id}", "200")
	require.Equal(t, float64(1), testutil.ToFloat64(counter))
}

func TestNormalizePath(t *testing.T) {
	tests := map[string]string{
		"/api/v1/accounts/ABC123":         "/api/v1/accounts/:id",
		"/api/v1/accounts/ABC123/entries": "/api/v1/accounts/:id/entries",
		"/api/v1/entry_sets/XYZ789":       "/api/v1/entry_sets/:id",
		"/api/v1/entry_sets/":             "/api/v1/entry_sets/",
		"/api/v1/balances/available":      "/api/v1/balances/available",
	}

	for in, want := range tests {
		require.Equal(t, want, normalizePath(in), in)
	}
}
