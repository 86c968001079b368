// Package middleware contains HTTP middleware for the controller.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"swipefleet/internal/auth"
	"swipefleet/pkg/api"
)

// callerKey is the context key for the hash of the presented API key.
type callerKey struct{}

// RequireAPIKey validates the Bearer token against the configured
// operator key hash and stores the caller identity for rate limiting.
func RequireAPIKey(keyHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, "Missing authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				unauthorized(w, "Invalid authorization header")
				return
			}

			if !auth.Matches(parts[1], keyHash) {
				unauthorized(w, "Invalid API key")
				return
			}

			ctx := context.WithValue(r.Context(), callerKey{}, auth.HashKey(parts[1]))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CallerFromContext returns the hash identifying the authenticated caller.
func CallerFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(callerKey{}).(string)
	return v, ok
}

// NewContextWithCaller is a test helper mirroring what RequireAPIKey does.
func NewContextWithCaller(ctx context.Context, caller string) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(api.ErrorResponse{
		Error: message,
		Code:  "401",
	})
}
