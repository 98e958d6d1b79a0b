package pool

import (
	"crypto/tls"
	"net"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/singleflight"
)

// Config configures the connection pool.
type Config struct {
	// MaxSockets caps connections per host. Default: 50
	MaxSockets int

	// MaxFreeSockets caps idle connections kept per host. Default: 10
	MaxFreeSockets int

	// Timeout is the per-request timeout carried by the pooled clients.
	// Default: 30s
	Timeout time.Duration

	// DisableKeepAlive turns connection reuse off. Keep-alive is on by
	// default; disabling it defeats the point of pooling.
	DisableKeepAlive bool

	// KeepAliveTimeout is how long an idle connection is kept. Default: 90s
	KeepAliveTimeout time.Duration

	// Meter records request and coalescing counters. Default: noop.
	Meter metric.Meter
}

// Stats is a snapshot of the pool counters.
type Stats struct {
	TotalRequests uint64
	ActiveBatches int
}

// Pool holds the shared transports and the in-flight batch map. One Pool is
// created at configuration time and shared by all calls from one client.
type Pool struct {
	config         Config
	httpTransport  *http.Transport
	httpsTransport *http.Transport
	httpClient     *http.Client
	httpsClient    *http.Client
	metrics        *poolMetrics

	group singleflight.Group

	mu       sync.Mutex
	requests uint64
	inflight map[string]time.Time
}

// New creates a pool with both transports configured.
func New(config Config) (*Pool, error) {
	if config.MaxSockets <= 0 {
		config.MaxSockets = 50
	}
	if config.MaxFreeSockets <= 0 {
		config.MaxFreeSockets = 10
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.KeepAliveTimeout <= 0 {
		config.KeepAliveTimeout = 90 * time.Second
	}

	metrics, err := newPoolMetrics(config.Meter)
	if err != nil {
		return nil, err
	}

	p := &Pool{
		config:   config,
		metrics:  metrics,
		inflight: make(map[string]time.Time),
	}
	p.httpTransport = p.newTransport(nil)
	p.httpsTransport = p.newTransport(&tls.Config{MinVersion: tls.VersionTLS12})
	p.httpClient = &http.Client{Transport: p.httpTransport, Timeout: config.Timeout}
	p.httpsClient = &http.Client{Transport: p.httpsTransport, Timeout: config.Timeout}

	return p, nil
}

func (p *Pool) newTransport(tlsConfig *tls.Config) *http.Transport {
	return &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSClientConfig:     tlsConfig,
		TLSHandshakeTimeout: 10 * time.Second,
		MaxConnsPerHost:     p.config.MaxSockets,
		MaxIdleConnsPerHost: p.config.MaxFreeSockets,
		MaxIdleConns:        p.config.MaxFreeSockets * 2,
		IdleConnTimeout:     p.config.KeepAliveTimeout,
		DisableKeepAlives:   p.config.DisableKeepAlive,
	}
}

// HTTPTransport returns the plain transport agent.
func (p *Pool) HTTPTransport() *http.Transport { return p.httpTransport }

// HTTPSTransport returns the TLS transport agent.
func (p *Pool) HTTPSTransport() *http.Transport { return p.httpsTransport }

// HTTPClient returns the pooled client for plain requests.
func (p *Pool) HTTPClient() *http.Client { return p.httpClient }

// HTTPSClient returns the pooled client for TLS requests.
func (p *Pool) HTTPSClient() *http.Client { return p.httpsClient }

// TrackRequest counts one outbound request.
func (p *Pool) TrackRequest() {
	p.mu.Lock()
	p.requests++
	p.mu.Unlock()
	p.metrics.recordRequest()
}

// Stats returns a snapshot of the counters.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		TotalRequests: p.requests,
		ActiveBatches: len(p.inflight),
	}
}

// Close releases idle connections on both transports.
func (p *Pool) Close() {
	p.httpTransport.CloseIdleConnections()
	p.httpsTransport.CloseIdleConnections()
}
