package operation

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records operation counts and latencies. A nil *Metrics is a valid
// no-op receiver.
type Metrics struct {
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	retryCount   metric.Int64Counter
	durationHist metric.Float64Histogram
}

// NewMetrics creates operation instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	totalCount, err := meter.Int64Counter(
		"dal.operation.total",
		metric.WithDescription("Total number of store operations"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"dal.operation.errors",
		metric.WithDescription("Total number of failed store operations"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	retryCount, err := meter.Int64Counter(
		"dal.operation.retries",
		metric.WithDescription("Total number of retry attempts"),
		metric.WithUnit("{retry}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"dal.operation.duration_ms",
		metric.WithDescription("Store operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		totalCount:   totalCount,
		errorCount:   errorCount,
		retryCount:   retryCount,
		durationHist: durationHist,
	}, nil
}

// Record registers one completed operation.
func (m *Metrics) Record(ctx context.Context, opctx Context, duration time.Duration, err error) {
	if m == nil {
		return
	}

	opt := metric.WithAttributes(
		attribute.String("operation", opctx.Operation),
		attribute.String("resource", opctx.Resource),
	)

	m.totalCount.Add(ctx, 1, opt)
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

// RecordRetry registers one retry attempt.
func (m *Metrics) RecordRetry(ctx context.Context, opctx Context) {
	if m == nil {
		return
	}

	m.retryCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", opctx.Operation),
		attribute.String("resource", opctx.Resource),
	))
}
