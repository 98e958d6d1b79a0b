package apiward

import (
	"go.opentelemetry.io/otel/metric"

	"github.com/jonwraymond/apiward/cache"
	"github.com/jonwraymond/apiward/observe"
	"github.com/jonwraymond/apiward/pool"
	"github.com/jonwraymond/apiward/recovery"
)

// Config is the startup configuration for one Client. It is supplied once
// and threaded through every constructor; there is no global state.
type Config struct {
	// Cache configures the TTL store.
	Cache cache.Config

	// Pool configures the shared network agents and request batching.
	Pool pool.Config

	// Recovery configures the default strategy chain.
	Recovery recovery.Defaults

	// Logger is shared by all components unless a component overrides it.
	// Default: observe.Nop.
	Logger observe.Logger

	// Meter is shared by all components unless a component overrides it.
	Meter metric.Meter
}

// withShared propagates the shared logger and meter into component configs
// that did not set their own.
func (c Config) withShared() Config {
	if c.Logger == nil {
		c.Logger = observe.Nop()
	}

	if c.Cache.Logger == nil {
		c.Cache.Logger = c.Logger
	}
	if c.Cache.Meter == nil {
		c.Cache.Meter = c.Meter
	}
	if c.Pool.Meter == nil {
		c.Pool.Meter = c.Meter
	}
	if c.Recovery.Logger == nil {
		c.Recovery.Logger = c.Logger
	}
	if c.Recovery.Meter == nil {
		c.Recovery.Meter = c.Meter
	}
	return c
}
