// Package main is the entry point for the swipefleet scheduler.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"swipefleet/internal/config"
	"swipefleet/internal/engine"
	"swipefleet/internal/logger"
	"swipefleet/internal/observability"
	"swipefleet/internal/scheduler"
	"swipefleet/internal/store/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	slogger := logger.New()

	ctx := context.Background()
	st, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer st.Close()

	shutdownTracer, err := observability.InitTracer(ctx, "swipefleet-scheduler", cfg.OTELEndpoint)
	if err != nil {
		log.Fatalf("Failed to init tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Printf("Failed to shutdown tracer: %v", err)
		}
	}()

	coordinator := engine.NewCoordinator(st, slogger)
	loop := scheduler.NewLoop(st, coordinator, scheduler.Config{
		PollInterval: cfg.SchedulerPollInterval,
	}, slogger)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		slogger.Info("scheduler starting", "poll_interval", cfg.SchedulerPollInterval)
		if err := loop.Start(runCtx); err != nil {
			slogger.Error("scheduler stopped", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slogger.Info("shutting down scheduler")
	if err := loop.Stop(); err != nil {
		slogger.Error("scheduler shutdown", "error", err)
	}
	slogger.Info("scheduler exited properly")
}
