// Package config handles environment variable loading for ports, database strings, etc.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values for the application.
type Config struct {
	// Database connection string
	DatabaseURL string

	// HTTP server port for the controller
	HTTPPort int

	// SHA-256 hash of the operator API key
	APIKeyHash string

	// Requests per second per caller; 0 disables limiting
	RateLimit      float64
	RateLimitBurst int

	// Scheduler sweep cadence
	SchedulerPollInterval time.Duration

	// URL of the controller (e.g., "http://localhost:7171")
	ControllerURL string

	// External collaborator endpoints; empty disables the client
	ProfileSyncURL string
	GeoURL         string

	// OTLP collector endpoint for traces
	OTELEndpoint string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	dbUrl := os.Getenv("DATABASE_URL")
	if dbUrl == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	keyHash := os.Getenv("API_KEY_HASH")
	if keyHash == "" {
		return nil, fmt.Errorf("API_KEY_HASH is required")
	}

	portStr := os.Getenv("PORT")
	port := 7171 // Default
	if portStr != "" {
		p, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %w", err)
		}
		port = p
	}

	rateLimit := 10.0 // Default
	if v := os.Getenv("RATE_LIMIT"); v != "" {
		rl, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid RATE_LIMIT: %w", err)
		}
		rateLimit = rl
	}

	rateBurst := 20 // Default
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		b, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
		}
		rateBurst = b
	}

	pollInterval := 30 * time.Second // Default
	if v := os.Getenv("SCHEDULER_POLL_INTERVAL"); v != "" {
		pi, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SCHEDULER_POLL_INTERVAL: %w", err)
		}
		pollInterval = pi
	}

	controllerURL := os.Getenv("CONTROLLER_URL")
	if controllerURL == "" {
		controllerURL = fmt.Sprintf("http://localhost:%d", port)
	}

	otelEndpoint := os.Getenv("OTEL_ENDPOINT")
	if otelEndpoint == "" {
		otelEndpoint = "localhost:4317"
	}

	return &Config{
		DatabaseURL:           dbUrl,
		HTTPPort:              port,
		APIKeyHash:            keyHash,
		RateLimit:             rateLimit,
		RateLimitBurst:        rateBurst,
		SchedulerPollInterval: pollInterval,
		ControllerURL:         controllerURL,
		ProfileSyncURL:        os.Getenv("PROFILE_SYNC_URL"),
		GeoURL:                os.Getenv("GEO_URL"),
		OTELEndpoint:          otelEndpoint,
	}, nil
}
