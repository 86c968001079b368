package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func limitedRequest(caller string) *http.Request {
	ctx := NewContextWithCaller(context.Background(), caller)
	return httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
}

func TestRateLimit_NoCallerInContext(t *testing.T) {
	mw := NewRateLimiter(WithTTL(5 * time.Minute)).Middleware()

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called without a caller in context")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("got status %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestRateLimit_AllowsUnderLimit(t *testing.T) {
	mw := NewRateLimiter(WithLimit(100, 200)).Middleware()

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, limitedRequest("caller-a"))

	if rr.Code != http.StatusOK {
		t.Errorf("got status %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestRateLimit_BlocksOverLimit(t *testing.T) {
	mw := NewRateLimiter(WithLimit(1, 1)).Middleware()

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, limitedRequest("caller-a"))
	if first.Code != http.StatusOK {
		t.Fatalf("first request got status %d, want %d", first.Code, http.StatusOK)
	}

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, limitedRequest("caller-a"))
	if second.Code != http.StatusTooManyRequests {
		t.Errorf("second request got status %d, want %d", second.Code, http.StatusTooManyRequests)
	}
	if second.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}
}

func TestRateLimit_CallersAreIndependent(t *testing.T) {
	mw := NewRateLimiter(WithLimit(1, 1)).Middleware()

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, limitedRequest("caller-a"))

	other := httptest.NewRecorder()
	handler.ServeHTTP(other, limitedRequest("caller-b"))
	if other.Code != http.StatusOK {
		t.Errorf("independent caller got status %d, want %d", other.Code, http.StatusOK)
	}
}
