package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func okPinger() Pinger {
	return PingFunc(func(context.Context) error { return nil })
}

func failingPinger() Pinger {
	return PingFunc(func(context.Context) error { return errors.New("connection refused") })
}

func TestHealthHandler_Liveness(t *testing.T) {
	h := NewHealthHandlerWithPingers(failingPinger(), nil)
	rr := httptest.NewRecorder()

	h.Liveness(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("liveness must not depend on dependencies, got %d", rr.Code)
	}
}

func TestHealthHandler_Readiness(t *testing.T) {
	tests := []struct {
		name       string
		postgres   Pinger
		broker     Pinger
		wantStatus int
		wantKeys   []string
	}{
		{name: "postgres only", postgres: okPinger(), wantStatus: http.StatusOK, wantKeys: []string{"postgres"}},
		{name: "postgres and redis", postgres: okPinger(), broker: okPinger(), wantStatus: http.StatusOK, wantKeys: []string{"postgres", "redis"}},
		{name: "postgres down", postgres: failingPinger(), broker: okPinger(), wantStatus: http.StatusServiceUnavailable},
		{name: "redis down", postgres: okPinger(), broker: failingPinger(), wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandlerWithPingers(tt.postgres, tt.broker)
			rr := httptest.NewRecorder()

			h.Readiness(rr, httptest.NewRequest(http.MethodGet, "/ready", nil))

			if rr.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rr.Code)
			}

			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp map[string]string
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			for _, key := range tt.wantKeys {
				if resp[key] != "ok" {
					t.Fatalf("expected %s=ok, got %+v", key, resp)
				}
			}
		})
	}
}
