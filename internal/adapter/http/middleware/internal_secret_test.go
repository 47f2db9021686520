package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestInternalSecret(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		secret     string
		path       string
		header     string
		wantStatus int
	}{
		{name: "disabled", secret: "", path: "/api/v1/entry_sets", wantStatus: http.StatusOK},
		{name: "missing header", secret: "s3cret", path: "/api/v1/entry_sets", wantStatus: http.StatusUnauthorized},
		{name: "wrong header", secret: "s3cret", path: "/api/v1/entry_sets", header: "nope", wantStatus: http.StatusUnauthorized},
		{name: "matching header", secret: "s3cret", path: "/api/v1/entry_sets", header: "s3cret", wantStatus: http.StatusOK},
		{name: "health bypass", secret: "s3cret", path: "/up", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(InternalSecretHeader, tt.header)
			}
			rr := httptest.NewRecorder()

			InternalSecret(tt.secret, "/health", "/ready", "/up")(ok).ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rr.Code)
			}
		})
	}
}
