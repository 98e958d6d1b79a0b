package recovery

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// managerMetrics records recovery outcomes against an injected meter.
type managerMetrics struct {
	attempts    metric.Int64Counter
	unrecovered metric.Int64Counter
}

func newManagerMetrics(meter metric.Meter) (*managerMetrics, error) {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter("apiward/recovery")
	}

	attempts, err := meter.Int64Counter(
		"recovery.attempts",
		metric.WithDescription("Recovery attempts by strategy"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	unrecovered, err := meter.Int64Counter(
		"recovery.unrecovered",
		metric.WithDescription("Failures no strategy could recover"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	return &managerMetrics{attempts: attempts, unrecovered: unrecovered}, nil
}

func (m *managerMetrics) recordAttempt(ctx context.Context, strategy string) {
	m.attempts.Add(ctx, 1, metric.WithAttributes(attribute.String("strategy", strategy)))
}

func (m *managerMetrics) recordUnrecovered(ctx context.Context, kind string) {
	m.unrecovered.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}
