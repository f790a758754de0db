package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records event dispatch metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordDispatch records one event routed by a component
	// and how many filters matched it.
	RecordDispatch(ctx context.Context, component string, matched int, duration time.Duration)

	// RecordHandlerInvocation records one handler call inside a queue.
	RecordHandlerInvocation(ctx context.Context, priority int, duration time.Duration, err error)

	// RecordPropagationHalted records a queue cut short by a stopped event.
	RecordPropagationHalted(ctx context.Context, skipped int)

	// RecordAggregation records an aggregator accepting or rejecting an event.
	RecordAggregation(ctx context.Context, accepted bool)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	dispatches      metric.Int64Counter
	dispatchLatency metric.Float64Histogram
	filterMatches   metric.Int64Histogram
	invocations     metric.Int64Counter
	handlerLatency  metric.Float64Histogram
	handlerErrors   metric.Int64Counter
	halts           metric.Int64Counter
	skipped         metric.Int64Counter
	aggregations    metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics lazily initializes the shared OTel metrics instance.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("phabstractic")
	m := &otelMetrics{}
	var err error

	if m.dispatches, err = meter.Int64Counter("phabstractic.dispatch.count",
		metric.WithDescription("Number of events routed"),
	); err != nil {
		return nil, err
	}
	if m.dispatchLatency, err = meter.Float64Histogram("phabstractic.dispatch.latency_ms",
		metric.WithDescription("Event routing latency in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}
	if m.filterMatches, err = meter.Int64Histogram("phabstractic.dispatch.filters_matched",
		metric.WithDescription("Filters matched per routed event"),
	); err != nil {
		return nil, err
	}
	if m.invocations, err = meter.Int64Counter("phabstractic.handler.invocations",
		metric.WithDescription("Number of handler invocations"),
	); err != nil {
		return nil, err
	}
	if m.handlerLatency, err = meter.Float64Histogram("phabstractic.handler.latency_ms",
		metric.WithDescription("Handler latency in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}
	if m.handlerErrors, err = meter.Int64Counter("phabstractic.handler.errors",
		metric.WithDescription("Number of handler failures"),
	); err != nil {
		return nil, err
	}
	if m.halts, err = meter.Int64Counter("phabstractic.propagation.halted",
		metric.WithDescription("Number of queues cut short by a stopped event"),
	); err != nil {
		return nil, err
	}
	if m.skipped, err = meter.Int64Counter("phabstractic.propagation.skipped",
		metric.WithDescription("Number of handlers skipped after a stop"),
	); err != nil {
		return nil, err
	}
	if m.aggregations, err = meter.Int64Counter("phabstractic.aggregator.events",
		metric.WithDescription("Events seen by aggregators"),
	); err != nil {
		return nil, err
	}
	return m, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

func (m *otelMetrics) RecordDispatch(ctx context.Context, component string, matched int, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("component", component))
	m.dispatches.Add(ctx, 1, attrs)
	m.dispatchLatency.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	m.filterMatches.Record(ctx, int64(matched), attrs)
}

func (m *otelMetrics) RecordHandlerInvocation(ctx context.Context, priority int, duration time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.Int("priority", priority))
	m.invocations.Add(ctx, 1, attrs)
	m.handlerLatency.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	if err != nil {
		m.handlerErrors.Add(ctx, 1, attrs)
	}
}

func (m *otelMetrics) RecordPropagationHalted(ctx context.Context, skipped int) {
	m.halts.Add(ctx, 1)
	m.skipped.Add(ctx, int64(skipped))
}

func (m *otelMetrics) RecordAggregation(ctx context.Context, accepted bool) {
	m.aggregations.Add(ctx, 1, metric.WithAttributes(attribute.Bool("accepted", accepted)))
}
