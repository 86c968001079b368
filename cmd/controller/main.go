// Package main is the entry point for the swipefleet controller.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"swipefleet/internal/collab/geo"
	"swipefleet/internal/collab/profilesync"
	"swipefleet/internal/config"
	"swipefleet/internal/controller"
	"swipefleet/internal/controller/handlers"
	"swipefleet/internal/engine"
	"swipefleet/internal/logger"
	"swipefleet/internal/observability"
	"swipefleet/internal/store/postgres"
)

func main() {
	// Parse flags
	migrateFlag := flag.Bool("migrate", false, "Run database migrations before starting")
	flag.Parse()

	// Load Config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	slogger := logger.New()

	// Setup Database
	ctx := context.Background()
	st, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer st.Close()

	// Run migrations if requested
	if *migrateFlag {
		log.Println("Running database migrations...")
		if err := postgres.Migrate(st.DB()); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Migrations completed successfully")
	}

	// Tracing
	shutdownTracer, err := observability.InitTracer(ctx, "swipefleet-controller", cfg.OTELEndpoint)
	if err != nil {
		log.Fatalf("Failed to init tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Printf("Failed to shutdown tracer: %v", err)
		}
	}()

	// Metrics
	metricsHandler, shutdownMetrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to init metrics: %v", err)
	}
	defer func() {
		if err := shutdownMetrics(context.Background()); err != nil {
			log.Printf("Failed to shutdown metrics: %v", err)
		}
	}()

	// Async gauge: queries the DB only when /metrics is scraped.
	if err := observability.RegisterInFlightJobsGauge(st, slogger); err != nil {
		log.Printf("Failed to register in-flight jobs gauge: %v", err)
	}

	// Wire the coordination engine and the HTTP surface. Collaborator
	// endpoints stay disabled unless their service URL is configured.
	coordinator := engine.NewCoordinator(st, slogger)
	var opts []handlers.Option
	if cfg.ProfileSyncURL != "" {
		opts = append(opts, handlers.WithProfileSync(profilesync.New(cfg.ProfileSyncURL)))
	}
	if cfg.GeoURL != "" {
		opts = append(opts, handlers.WithGeo(geo.New(cfg.GeoURL)))
	}
	h := handlers.New(st, coordinator, opts...)

	srv := controller.New(controller.Config{
		Addr:           fmt.Sprintf(":%d", cfg.HTTPPort),
		APIKeyHash:     cfg.APIKeyHash,
		RateLimit:      cfg.RateLimit,
		RateLimitBurst: cfg.RateLimitBurst,
	}, h, metricsHandler)

	go func() {
		slogger.Info("controller starting", "port", cfg.HTTPPort)
		if err := srv.Run(ctx); err != nil {
			slogger.Error("server stopped", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slogger.Info("shutting down controller")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	slogger.Info("server exited properly")
}
