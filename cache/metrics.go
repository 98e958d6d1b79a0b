package cache

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// cacheMetrics records cache traffic against an injected meter.
type cacheMetrics struct {
	hits      metric.Int64Counter
	misses    metric.Int64Counter
	evictions metric.Int64Counter
}

func newCacheMetrics(meter metric.Meter) (*cacheMetrics, error) {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter("apiward/cache")
	}

	hits, err := meter.Int64Counter(
		"cache.hits",
		metric.WithDescription("Cache reads served from an unexpired entry"),
		metric.WithUnit("{read}"),
	)
	if err != nil {
		return nil, err
	}

	misses, err := meter.Int64Counter(
		"cache.misses",
		metric.WithDescription("Cache reads that found no usable entry"),
		metric.WithUnit("{read}"),
	)
	if err != nil {
		return nil, err
	}

	evictions, err := meter.Int64Counter(
		"cache.evictions",
		metric.WithDescription("Entries evicted by the capacity bound"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, err
	}

	return &cacheMetrics{hits: hits, misses: misses, evictions: evictions}, nil
}

func (m *cacheMetrics) recordHit(ctx context.Context)      { m.hits.Add(ctx, 1) }
func (m *cacheMetrics) recordMiss(ctx context.Context)     { m.misses.Add(ctx, 1) }
func (m *cacheMetrics) recordEviction(ctx context.Context) { m.evictions.Add(ctx, 1) }
