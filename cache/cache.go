package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/jonwraymond/apiward/observe"
)

// MaxKeyLength is the maximum allowed length for a cache key.
const MaxKeyLength = 512

// Sentinel errors for cache operations.
var (
	ErrInvalidKey = errors.New("cache: key is invalid")
	ErrKeyTooLong = errors.New("cache: key exceeds max length")
	ErrNilCompute = errors.New("cache: nil compute function")
)

// ValidateKey checks if a key is valid for caching.
func ValidateKey(key string) error {
	if key == "" || strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}

// Config configures the cache manager.
type Config struct {
	// DefaultTTL is the TTL used when Set is given none. Default: 5m
	DefaultTTL time.Duration

	// MaxEntries bounds the entry count; the oldest entry is evicted when
	// exceeded. Default: 1000
	MaxEntries int

	// Persistent enables on-disk persistence of entries under Dir.
	// Persisted values round-trip through JSON, so a restored value may be
	// a map[string]any where the original was a struct.
	Persistent bool

	// Dir is the storage directory for persisted entries.
	Dir string

	// Logger receives persistence warnings. Default: observe.Nop.
	Logger observe.Logger

	// Meter records hit/miss/eviction counters. Default: noop.
	Meter metric.Meter
}

type entry struct {
	key       string
	value     any
	createdAt time.Time
	expiresAt time.Time
}

// Stats is a snapshot of the cache counters. Counters accumulate for the
// life of the manager and reset only on reconstruction.
type Stats struct {
	Hits     uint64
	Misses   uint64
	HitRatio float64
	Size     int
}

// Manager is the TTL-keyed store. Safe for concurrent use.
type Manager struct {
	config  Config
	metrics *cacheMetrics
	store   *diskStore

	mu      sync.Mutex
	entries map[string]*entry
	hits    uint64
	misses  uint64
}

// NewManager creates a cache manager. With Persistent set it restores
// previously persisted entries, silently discarding any that fail to parse
// or have already expired.
func NewManager(config Config) (*Manager, error) {
	if config.DefaultTTL <= 0 {
		config.DefaultTTL = 5 * time.Minute
	}
	if config.MaxEntries <= 0 {
		config.MaxEntries = 1000
	}
	if config.Logger == nil {
		config.Logger = observe.Nop()
	}

	metrics, err := newCacheMetrics(config.Meter)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		config:  config,
		metrics: metrics,
		entries: make(map[string]*entry),
	}

	if config.Persistent {
		store, err := newDiskStore(config.Dir)
		if err != nil {
			return nil, err
		}
		m.store = store

		for _, rec := range store.load(context.Background(), config.Logger) {
			m.entries[rec.Key] = &entry{
				key:       rec.Key,
				value:     rec.Value,
				createdAt: rec.CreatedAt,
				expiresAt: rec.ExpiresAt,
			}
		}
	}

	return m, nil
}

// Get returns the value for key and whether it was present and unexpired.
// Every read records a hit or a miss.
func (m *Manager) Get(ctx context.Context, key string) (any, bool) {
	m.mu.Lock()
	e, ok := m.entries[key]
	expired := false
	if ok && time.Now().After(e.expiresAt) {
		delete(m.entries, key)
		ok = false
		expired = true
	}
	if !ok {
		m.misses++
		m.mu.Unlock()
		m.metrics.recordMiss(ctx)
		if expired && m.store != nil {
			m.store.remove(key)
		}
		return nil, false
	}
	m.hits++
	value := e.value
	m.mu.Unlock()

	m.metrics.recordHit(ctx)
	return value, true
}

// Set stores value under key with an absolute expiry. When no TTL is given
// (or it is non-positive) the configured default applies.
func (m *Manager) Set(ctx context.Context, key string, value any, ttl ...time.Duration) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	effective := m.config.DefaultTTL
	if len(ttl) > 0 && ttl[0] > 0 {
		effective = ttl[0]
	}

	now := time.Now()
	e := &entry{
		key:       key,
		value:     value,
		createdAt: now,
		expiresAt: now.Add(effective),
	}

	m.mu.Lock()
	m.entries[key] = e
	evicted := m.evictLocked()
	m.mu.Unlock()

	for _, victim := range evicted {
		m.metrics.recordEviction(ctx)
		if m.store != nil {
			m.store.remove(victim)
		}
	}

	if m.store != nil {
		if err := m.store.write(record{
			Key:       key,
			Value:     value,
			CreatedAt: e.createdAt,
			ExpiresAt: e.expiresAt,
		}); err != nil {
			m.config.Logger.Warn(ctx, "cache persistence failed",
				observe.Field{Key: "key", Value: key},
				observe.Field{Key: "error", Value: err.Error()},
			)
		}
	}

	return nil
}

// evictLocked removes oldest entries until the capacity bound holds and
// returns the evicted keys.
func (m *Manager) evictLocked() []string {
	var evicted []string
	for len(m.entries) > m.config.MaxEntries {
		var oldest *entry
		for _, e := range m.entries {
			if oldest == nil || e.createdAt.Before(oldest.createdAt) {
				oldest = e
			}
		}
		delete(m.entries, oldest.key)
		evicted = append(evicted, oldest.key)
	}
	return evicted
}

// Delete removes an entry. Idempotent - no error on miss.
func (m *Manager) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()

	if m.store != nil {
		m.store.remove(key)
	}
	return nil
}

// Clear removes every entry, including persisted ones.
func (m *Manager) Clear(_ context.Context) error {
	m.mu.Lock()
	m.entries = make(map[string]*entry)
	m.mu.Unlock()

	if m.store != nil {
		return m.store.purge()
	}
	return nil
}

// WithCache returns the cached value when present and unexpired; otherwise
// it runs compute, stores the result under key, and returns it. Compute
// errors are never cached.
func (m *Manager) WithCache(ctx context.Context, key string, compute func(ctx context.Context) (any, error), ttl ...time.Duration) (any, error) {
	if compute == nil {
		return nil, ErrNilCompute
	}
	if err := ValidateKey(key); err != nil {
		return nil, err
	}

	if value, ok := m.Get(ctx, key); ok {
		return value, nil
	}

	value, err := compute(ctx)
	if err != nil {
		return nil, err
	}

	if err := m.Set(ctx, key, value, ttl...); err != nil {
		return nil, err
	}
	return value, nil
}

// Stats returns a snapshot of the counters.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Stats{
		Hits:   m.hits,
		Misses: m.misses,
		Size:   len(m.entries),
	}
	if total := m.hits + m.misses; total > 0 {
		s.HitRatio = float64(m.hits) / float64(total)
	}
	return s
}
