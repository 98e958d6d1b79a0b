package pool

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// poolMetrics records pool traffic against an injected meter.
type poolMetrics struct {
	requests  metric.Int64Counter
	coalesced metric.Int64Counter
}

func newPoolMetrics(meter metric.Meter) (*poolMetrics, error) {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter("apiward/pool")
	}

	requests, err := meter.Int64Counter(
		"pool.requests",
		metric.WithDescription("Outbound requests tracked by the pool"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	coalesced, err := meter.Int64Counter(
		"pool.batch.coalesced",
		metric.WithDescription("Calls that shared an in-flight result"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	return &poolMetrics{requests: requests, coalesced: coalesced}, nil
}

func (m *poolMetrics) recordRequest()   { m.requests.Add(context.Background(), 1) }
func (m *poolMetrics) recordCoalesced() { m.coalesced.Add(context.Background(), 1) }
