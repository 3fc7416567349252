// Package telemetry provides Prometheus metrics, correlation-id aware logging
// helpers, and OpenTelemetry tracing setup.
package telemetry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// Counters
	JobsStarted         prometheus.Counter
	JobsFailed          prometheus.Counter
	JobsSucceeded       prometheus.Counter
	DeliveriesSucceeded prometheus.Counter
	DeliveriesFailed    prometheus.Counter
	DirectiveErrors     prometheus.Counter
	SweptArtifacts      prometheus.Counter

	// Histograms (seconds)
	AcquireDuration prometheus.Observer

	// Gauges
	ActiveJobs prometheus.Gauge
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		JobsStarted = promauto.NewCounter(prometheus.CounterOpts{Name: "relay_jobs_started_total", Help: "Number of media acquisition jobs started"})
		JobsFailed = promauto.NewCounter(prometheus.CounterOpts{Name: "relay_jobs_failed_total", Help: "Number of media acquisition jobs failed"})
		JobsSucceeded = promauto.NewCounter(prometheus.CounterOpts{Name: "relay_jobs_succeeded_total", Help: "Number of media acquisition jobs succeeded"})
		DeliveriesSucceeded = promauto.NewCounter(prometheus.CounterOpts{Name: "relay_deliveries_succeeded_total", Help: "Number of artifacts delivered to chat"})
		DeliveriesFailed = promauto.NewCounter(prometheus.CounterOpts{Name: "relay_deliveries_failed_total", Help: "Number of artifact deliveries rejected or failed"})
		DirectiveErrors = promauto.NewCounter(prometheus.CounterOpts{Name: "relay_directive_errors_total", Help: "Number of messages with invalid trim directives"})
		SweptArtifacts = promauto.NewCounter(prometheus.CounterOpts{Name: "relay_swept_artifacts_total", Help: "Number of stale artifacts removed by the sweeper"})
		AcquireDuration = promauto.NewHistogram(prometheus.HistogramOpts{Name: "relay_acquire_duration_seconds", Help: "Acquisition duration seconds", Buckets: prometheus.DefBuckets})
		ActiveJobs = promauto.NewGauge(prometheus.GaugeOpts{Name: "relay_active_jobs", Help: "Number of acquisition jobs currently running"})
	})
}

// TimeFunc measures the duration of fn and records in observer if non-nil.
func TimeFunc(obs prometheus.Observer, fn func()) time.Duration {
	start := time.Now()
	fn()
	d := time.Since(start)
	if obs != nil {
		obs.Observe(d.Seconds())
	}
	return d
}

// Correlation ID helpers ----------------------------------------------------

type corrKeyType struct{}

var corrKey corrKeyType

// WithCorrelation returns a new context embedding the correlation id.
func WithCorrelation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, corrKey, id)
}

// GetCorrelation returns the correlation id or empty string.
func GetCorrelation(ctx context.Context) string {
	if s, ok := ctx.Value(corrKey).(string); ok {
		return s
	}
	return ""
}

// LoggerWithCorr returns a logger with a corr attribute if present.
func LoggerWithCorr(ctx context.Context) *slog.Logger {
	if id := GetCorrelation(ctx); id != "" {
		return slog.Default().With(slog.String("corr", id))
	}
	return slog.Default()
}
