package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/jonwraymond/apiward/observe"
)

// record is the on-disk shape of one cache entry.
type record struct {
	Key       string    `json:"key"`
	Value     any       `json:"value"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// diskStore persists one JSON file per entry, named by a hash of the cache
// key so arbitrary keys map to safe filenames.
type diskStore struct {
	dir string
}

func newDiskStore(dir string) (*diskStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("cache: persistence enabled without a storage directory")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("cache: create storage directory: %w", err)
	}
	return &diskStore{dir: dir}, nil
}

// fileFor derives the entry filename: first 8 bytes of SHA-256(key) as hex.
func (s *diskStore) fileFor(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:8])+".json")
}

func (s *diskStore) write(rec record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("cache: encode entry: %w", err)
	}
	if err := os.WriteFile(s.fileFor(rec.Key), data, 0o600); err != nil {
		return fmt.Errorf("cache: write entry: %w", err)
	}
	return nil
}

func (s *diskStore) remove(key string) {
	_ = os.Remove(s.fileFor(key))
}

func (s *diskStore) purge() error {
	dirents, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("cache: read storage directory: %w", err)
	}
	for _, de := range dirents {
		if strings.HasSuffix(de.Name(), ".json") {
			_ = os.Remove(filepath.Join(s.dir, de.Name()))
		}
	}
	return nil
}

// load restores persisted entries. Files that fail to parse or hold expired
// entries are discarded and removed; restoration never fails the caller.
func (s *diskStore) load(ctx context.Context, logger observe.Logger) []record {
	dirents, err := os.ReadDir(s.dir)
	if err != nil {
		logger.Warn(ctx, "cache restore skipped",
			observe.Field{Key: "error", Value: err.Error()},
		)
		return nil
	}

	now := time.Now()
	var out []record
	for _, de := range dirents {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".json") {
			continue
		}
		path := filepath.Join(s.dir, de.Name())

		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		var rec record
		if err := json.Unmarshal(data, &rec); err != nil || rec.Key == "" {
			_ = os.Remove(path)
			continue
		}
		if now.After(rec.ExpiresAt) {
			_ = os.Remove(path)
			continue
		}
		out = append(out, rec)
	}
	return out
}
