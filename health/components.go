package health

import (
	"context"
	"fmt"

	"github.com/jonwraymond/apiward/cache"
	"github.com/jonwraymond/apiward/pool"
	"github.com/jonwraymond/apiward/recovery"
)

// CircuitBreakerChecker reports the breaker's state: open is unhealthy,
// half-open is degraded (a probe is pending), closed is healthy.
func CircuitBreakerChecker(cb *recovery.CircuitBreaker) CheckFunc {
	return func(_ context.Context) Result {
		m := cb.Metrics()
		details := map[string]any{
			"state":    m.State.String(),
			"failures": m.Failures,
		}

		switch m.State {
		case recovery.StateOpen:
			return Unhealthy("circuit breaker is open").WithDetails(details)
		case recovery.StateHalfOpen:
			return Degraded("circuit breaker is probing").WithDetails(details)
		default:
			return Healthy("circuit breaker is closed").WithDetails(details)
		}
	}
}

// CacheChecker reports degraded when the hit ratio drops below minHitRatio.
// The ratio is only judged once minSamples reads have accumulated, so a
// cold cache does not flap the status.
func CacheChecker(m *cache.Manager, minHitRatio float64, minSamples uint64) CheckFunc {
	return func(_ context.Context) Result {
		s := m.Stats()
		details := map[string]any{
			"hits":     s.Hits,
			"misses":   s.Misses,
			"hitRatio": s.HitRatio,
			"size":     s.Size,
		}

		if s.Hits+s.Misses >= minSamples && s.HitRatio < minHitRatio {
			msg := fmt.Sprintf("cache hit ratio %.2f below %.2f", s.HitRatio, minHitRatio)
			return Degraded(msg).WithDetails(details)
		}
		return Healthy("cache is effective").WithDetails(details)
	}
}

// PoolChecker reports degraded when the in-flight batch backlog exceeds
// maxBacklog, which usually means calls are piling up without settling.
func PoolChecker(p *pool.Pool, maxBacklog int) CheckFunc {
	return func(_ context.Context) Result {
		s := p.Stats()
		details := map[string]any{
			"totalRequests": s.TotalRequests,
			"activeBatches": s.ActiveBatches,
		}

		if s.ActiveBatches > maxBacklog {
			msg := fmt.Sprintf("%d batches in flight, limit %d", s.ActiveBatches, maxBacklog)
			return Degraded(msg).WithDetails(details)
		}
		return Healthy("pool backlog is nominal").WithDetails(details)
	}
}
