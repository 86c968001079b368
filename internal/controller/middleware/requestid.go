package middleware

import (
	"net/http"

	"swipefleet/internal/logger"

	"github.com/google/uuid"
)

// RequestID tags every request with a correlation ID. An incoming
// X-Request-ID header is honored so upstream proxies can thread their own.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(logger.WithRequestID(r.Context(), id)))
	})
}
