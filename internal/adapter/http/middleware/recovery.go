package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/zionledger/internal/adapter/http/dto"
)

// Recovery turns a handler panic into a 500 and logs the stack.
// http.ErrAbortHandler is re-raised so net/http can drop the connection.
func Recovery(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}

				err, ok := rec.(error)
				if !ok {
					err = fmt.Errorf("%v", rec)
				}
				if errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				reqID := chimiddleware.GetReqID(r.Context())
				logger.Error().
					Err(err).
					Bytes("stack", debug.Stack()).
					Str("request_id", reqID).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Msg("panic recovered")

				writeErrorJSON(w, http.StatusInternalServerError, dto.ErrorResponse{
					Error:     "internal server error",
					RequestID: reqID,
				})
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// writeErrorJSON writes body in the same shape the handlers use.
func writeErrorJSON(w http.ResponseWriter, status int, body dto.ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
