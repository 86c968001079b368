// Package controller contains the controller-specific logic for the HTTP API.
package controller

import (
	"context"
	"net/http"
	"time"

	"swipefleet/internal/controller/handlers"
	"swipefleet/internal/controller/middleware"
)

// Config holds the server configuration.
type Config struct {
	Addr string
	// APIKeyHash is the SHA-256 hash of the operator key.
	APIKeyHash string
	// RateLimit is requests per second per caller; 0 disables limiting.
	RateLimit      float64
	RateLimitBurst int
}

// Server is the HTTP server for the controller API.
type Server struct {
	httpServer *http.Server
}

// New creates a new controller server. metricsHandler serves the
// Prometheus scrape endpoint; pass nil to leave /metrics unmounted.
func New(cfg Config, h *handlers.Handlers, metricsHandler http.Handler) *Server {
	authMW := middleware.RequireAPIKey(cfg.APIKeyHash)
	rateMW := middleware.NewRateLimiter(
		middleware.WithLimit(cfg.RateLimit, cfg.RateLimitBurst),
	).Middleware()
	protect := func(hf http.HandlerFunc) http.Handler {
		return authMW(rateMW(hf))
	}

	mux := http.NewServeMux()

	// Probes and metrics stay unauthenticated.
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}

	// Fleet management
	mux.Handle("POST /accounts", protect(h.CreateAccount))
	mux.Handle("GET /accounts", protect(h.ListAccounts))
	mux.Handle("GET /accounts/{id}", protect(h.GetAccount))
	mux.Handle("DELETE /accounts/{id}", protect(h.DeleteAccount))
	mux.Handle("POST /vps", protect(h.CreateVPS))
	mux.Handle("GET /vps", protect(h.ListVPS))
	mux.Handle("DELETE /vps/{id}", protect(h.DeleteVPS))

	// Collaborator services
	mux.Handle("GET /accounts/{id}/profile", protect(h.GetAccountProfile))
	mux.Handle("GET /vps/{id}/location", protect(h.GetVPSLocation))

	// Account health
	mux.Handle("PUT /accounts/{id}/status", protect(h.SetStatus))
	mux.Handle("GET /accounts/{id}/status/previous", protect(h.PreviousStatus))
	mux.Handle("GET /accounts/{id}/transitions", protect(h.ListTransitions))

	// Job admission and executor callbacks
	mux.Handle("POST /accounts/{id}/jobs", protect(h.RequestJob))
	mux.Handle("GET /jobs/{id}", protect(h.GetJob))
	mux.Handle("POST /jobs/{id}/start", protect(h.StartJob))
	mux.Handle("POST /jobs/{id}/complete", protect(h.CompleteJob))
	mux.Handle("POST /jobs/{id}/fail", protect(h.FailJob))
	mux.Handle("POST /jobs/{id}/cancel", protect(h.CancelJob))

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Addr,
			Handler:      middleware.RequestID(mux),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}
}

// Run starts the HTTP server. It blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		shutDownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return s.Shutdown(shutDownCtx)
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
