// Package observability provides OpenTelemetry instrumentation for tracing and metrics.
package observability

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"swipefleet/internal/store"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// InitMetrics initializes the OpenTelemetry metrics provider with a Prometheus exporter.
// It returns the HTTP handler for the /metrics endpoint and a shutdown function.
// The shutdown function should be called on application exit for graceful cleanup.
func InitMetrics() (http.Handler, func(context.Context) error, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)

	otel.SetMeterProvider(provider)

	return promhttp.Handler(), provider.Shutdown, nil
}

// JobCounter reports how many jobs sit in the given statuses.
type JobCounter interface {
	CountJobs(ctx context.Context, statuses []store.JobStatus) (int64, error)
}

// RegisterInFlightJobsGauge registers an async gauge for the number of
// unfinished jobs. The DB is queried only when the endpoint is scraped.
func RegisterInFlightJobsGauge(jc JobCounter, logger *slog.Logger) error {
	meter := otel.Meter("swipefleet-controller")
	_, err := meter.Int64ObservableGauge("swipefleet.jobs.in_flight",
		metric.WithDescription("Number of jobs in pending, queued or running state"),
		metric.WithInt64Callback(func(ctx context.Context, obs metric.Int64Observer) error {
			count, err := jc.CountJobs(ctx, store.NonTerminalJobStatuses)
			if err != nil {
				logger.Error("count in-flight jobs", "error", err)
				return nil // a failed scrape should not fail the exporter
			}
			obs.Observe(count)
			return nil
		}),
	)
	return err
}
