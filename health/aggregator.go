package health

import (
	"context"
	"sync"
	"time"
)

// AggregatorConfig configures the health aggregator.
type AggregatorConfig struct {
	// Timeout is the maximum time to wait for all checks. Default: 10s
	Timeout time.Duration
}

// Aggregator combines multiple checkers into a single composite check. The
// composite status is the worst individual status.
type Aggregator struct {
	config AggregatorConfig

	mu       sync.RWMutex
	checkers map[string]Checker
	order    []string
}

// NewAggregator creates a health aggregator.
func NewAggregator(config AggregatorConfig) *Aggregator {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	return &Aggregator{
		config:   config,
		checkers: make(map[string]Checker),
	}
}

// Register adds a checker under name, replacing any previous one.
func (a *Aggregator) Register(name string, checker Checker) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.checkers[name]; !exists {
		a.order = append(a.order, name)
	}
	a.checkers[name] = checker
}

// Check runs every registered checker in registration order and returns
// the per-component results plus the composite status.
func (a *Aggregator) Check(ctx context.Context) (map[string]Result, Status) {
	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	a.mu.RLock()
	order := make([]string, len(a.order))
	copy(order, a.order)
	checkers := make(map[string]Checker, len(a.checkers))
	for name, c := range a.checkers {
		checkers[name] = c
	}
	a.mu.RUnlock()

	results := make(map[string]Result, len(order))
	composite := StatusHealthy
	for _, name := range order {
		r := checkers[name].Check(ctx)
		results[name] = r
		if r.Status > composite {
			composite = r.Status
		}
	}
	return results, composite
}
