package pool

import (
	"context"
	"time"
)

// Batch coalesces concurrent identical work: when an in-flight call for key
// already exists, the caller shares that call's result instead of running
// fn. Otherwise fn runs, its pending result is recorded with a timestamp,
// and the record is removed once it settles.
//
// The underlying call runs under the first caller's context; later callers
// observe its outcome in the order it resolves.
func (p *Pool) Batch(ctx context.Context, key string, fn func(ctx context.Context) (any, error)) (any, error) {
	p.mu.Lock()
	if _, ok := p.inflight[key]; !ok {
		p.inflight[key] = time.Now()
	}
	p.mu.Unlock()

	result, err, shared := p.group.Do(key, func() (any, error) {
		defer func() {
			p.mu.Lock()
			delete(p.inflight, key)
			p.mu.Unlock()
		}()
		return fn(ctx)
	})
	if shared {
		p.metrics.recordCoalesced()
	}
	return result, err
}

// CleanupBatches removes batch records older than maxAge regardless of
// settlement state and reports how many were swept. New callers after a
// sweep start a fresh underlying call.
func (p *Pool) CleanupBatches(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	p.mu.Lock()
	defer p.mu.Unlock()

	swept := 0
	for key, started := range p.inflight {
		if started.Before(cutoff) {
			p.group.Forget(key)
			delete(p.inflight, key)
			swept++
		}
	}
	return swept
}

// StartSweeper runs CleanupBatches on a ticker until ctx is done.
func (p *Pool) StartSweeper(ctx context.Context, interval, maxAge time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.CleanupBatches(maxAge)
			}
		}
	}()
}
