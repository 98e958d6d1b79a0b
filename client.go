package apiward

import (
	"context"
	"net/http"
	"time"

	"github.com/jonwraymond/apiward/apierror"
	"github.com/jonwraymond/apiward/cache"
	"github.com/jonwraymond/apiward/health"
	"github.com/jonwraymond/apiward/pool"
	"github.com/jonwraymond/apiward/recovery"
)

// Client composes the recovery manager, the cache, and the connection pool
// into the surface calling code uses. One Client is long-lived and shared
// by every call to one remote API.
type Client struct {
	manager *recovery.Manager
	breaker *recovery.CircuitBreaker
	cache   *cache.Manager
	pool    *pool.Pool
}

// New creates a Client. The recovery chain is Retry, then Fallback when a
// fallback function is configured, then the circuit breaker.
func New(config Config) (*Client, error) {
	config = config.withShared()

	cacheManager, err := cache.NewManager(config.Cache)
	if err != nil {
		return nil, err
	}

	connPool, err := pool.New(config.Pool)
	if err != nil {
		return nil, err
	}

	d := config.Recovery

	retry := recovery.NewRetryStrategy(recovery.RetryConfig{
		MaxRetries: d.MaxRetries,
		BaseDelay:  d.BaseDelay,
		MaxDelay:   d.MaxDelay,
		Jitter:     true,
		Clock:      d.Clock,
	})
	breaker := recovery.NewCircuitBreaker(recovery.CircuitBreakerConfig{
		FailureThreshold: d.CircuitFailureThreshold,
		ResetTimeout:     d.CircuitResetTimeout,
		TrippingKinds:    d.TrippingKinds,
		Clock:            d.Clock,
	})

	strategies := []recovery.Strategy{retry}
	if d.Fallback != nil {
		strategies = append(strategies, recovery.NewFallbackStrategy(d.Fallback, d.FallbackKinds...))
	}
	strategies = append(strategies, breaker)

	manager := recovery.NewManager(
		recovery.WithStrategies(strategies...),
		recovery.WithLogger(d.Logger),
		recovery.WithMeter(d.Meter),
	)

	return &Client{
		manager: manager,
		breaker: breaker,
		cache:   cacheManager,
		pool:    connPool,
	}, nil
}

// Execute runs the operation under the recovery chain.
func (c *Client) Execute(ctx context.Context, op recovery.Operation) (any, error) {
	return c.manager.Execute(ctx, op)
}

// WithCache returns the cached value for key when present and unexpired;
// otherwise it runs compute, caches the result, and returns it.
func (c *Client) WithCache(ctx context.Context, key string, compute func(ctx context.Context) (any, error), ttl ...time.Duration) (any, error) {
	return c.cache.WithCache(ctx, key, compute, ttl...)
}

// Batch coalesces concurrent identical calls by key.
func (c *Client) Batch(ctx context.Context, key string, fn func(ctx context.Context) (any, error)) (any, error) {
	return c.pool.Batch(ctx, key, fn)
}

// HTTPClient returns the pooled client for plain requests.
func (c *Client) HTTPClient() *http.Client { return c.pool.HTTPClient() }

// HTTPSClient returns the pooled client for TLS requests.
func (c *Client) HTTPSClient() *http.Client { return c.pool.HTTPSClient() }

// HTTPTransport returns the plain transport agent.
func (c *Client) HTTPTransport() *http.Transport { return c.pool.HTTPTransport() }

// HTTPSTransport returns the TLS transport agent.
func (c *Client) HTTPSTransport() *http.Transport { return c.pool.HTTPSTransport() }

// TranslateError classifies a raw transport failure.
func (c *Client) TranslateError(err error) *apierror.Error {
	return apierror.Translate(err)
}

// ErrorResponse renders any failure into the user-facing structured shape.
func (c *Client) ErrorResponse(err error) apierror.Response {
	return apierror.ToResponse(err)
}

// Cache returns the cache manager.
func (c *Client) Cache() *cache.Manager { return c.cache }

// Pool returns the connection pool.
func (c *Client) Pool() *pool.Pool { return c.pool }

// CircuitBreaker returns the breaker guarding this client's calls.
func (c *Client) CircuitBreaker() *recovery.CircuitBreaker { return c.breaker }

// NewHealth returns an aggregator preloaded with checkers over this
// client's components.
func (c *Client) NewHealth() *health.Aggregator {
	agg := health.NewAggregator(health.AggregatorConfig{})
	agg.Register("circuit", health.CircuitBreakerChecker(c.breaker))
	agg.Register("cache", health.CacheChecker(c.cache, 0.1, 100))
	agg.Register("pool", health.PoolChecker(c.pool, 1000))
	return agg
}

// Close releases pooled connections.
func (c *Client) Close() {
	c.pool.Close()
}
