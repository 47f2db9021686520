package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/iho/zionledger/internal/adapter/http/dto"
)

// InternalSecretHeader carries the shared secret set by the fronting sidecar.
const InternalSecretHeader = "X-Internal-Secret"

// InternalSecret rejects requests whose X-Internal-Secret header does not
// match secret. Paths in bypass are always allowed. An empty secret disables
// the check.
func InternalSecret(secret string, bypass ...string) func(http.Handler) http.Handler {
	open := make(map[string]bool, len(bypass))
	for _, p := range bypass {
		open[p] = true
	}

	return func(next http.Handler) http.Handler {
		if secret == "" {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if open[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			got := r.Header.Get(InternalSecretHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				writeErrorJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
