package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// Ping calls f.
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type dependency struct {
	name   string
	pinger Pinger
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	deps    []dependency
	timeout time.Duration
}

// NewHealthHandler creates a new HealthHandler. redisClient may be nil when
// no broker is configured.
func NewHealthHandler(pool *pgxpool.Pool, redisClient *redis.Client) *HealthHandler {
	h := NewHealthHandlerWithPingers(pool, nil)
	if redisClient != nil {
		h.deps = append(h.deps, dependency{
			name: "redis",
			pinger: PingFunc(func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			}),
		})
	}

	return h
}

// NewHealthHandlerWithPingers creates a HealthHandler over arbitrary pingers.
// A nil broker pinger is skipped.
func NewHealthHandlerWithPingers(postgres, broker Pinger) *HealthHandler {
	h := &HealthHandler{timeout: 5 * time.Second}
	if postgres != nil {
		h.deps = append(h.deps, dependency{name: "postgres", pinger: postgres})
	}
	if broker != nil {
		h.deps = append(h.deps, dependency{name: "redis", pinger: broker})
	}

	return h
}

// Liveness returns 200 if the service is alive.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness returns 200 if the service is ready to accept traffic.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	resp := map[string]string{"status": "ready"}
	for _, dep := range h.deps {
		if err := dep.pinger.Ping(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, dep.name+" unhealthy", err.Error())
			return
		}
		resp[dep.name] = "ok"
	}

	writeJSON(w, http.StatusOK, resp)
}
