package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"swipefleet/internal/auth"
)

func authedHandler(t *testing.T, keyHash string, called *bool) http.Handler {
	t.Helper()
	return RequireAPIKey(keyHash)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		if _, ok := CallerFromContext(r.Context()); !ok {
			t.Error("caller missing from context")
		}
		w.WriteHeader(http.StatusOK)
	}))
}

func TestRequireAPIKey(t *testing.T) {
	keyHash := auth.HashKey("fleet-secret")

	tests := []struct {
		name           string
		header         string
		expectedStatus int
		expectCalled   bool
	}{
		{
			name:           "Valid Key",
			header:         "Bearer fleet-secret",
			expectedStatus: http.StatusOK,
			expectCalled:   true,
		},
		{
			name:           "Missing Header",
			header:         "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Malformed Header",
			header:         "fleet-secret",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Wrong Scheme",
			header:         "Basic fleet-secret",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Wrong Key",
			header:         "Bearer not-the-key",
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := authedHandler(t, keyHash, &called)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("got status %d, want %d", rr.Code, tt.expectedStatus)
			}
			if called != tt.expectCalled {
				t.Errorf("handler called = %v, want %v", called, tt.expectCalled)
			}
		})
	}
}
