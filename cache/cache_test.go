package cache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestManager(t *testing.T, config Config) *Manager {
	t.Helper()
	m, err := NewManager(config)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	return m
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr error
	}{
		{"valid", "catalog:item:42", nil},
		{"empty", "", ErrInvalidKey},
		{"whitespace", "   ", ErrInvalidKey},
		{"newline", "a\nb", ErrInvalidKey},
		{"too long", strings.Repeat("k", MaxKeyLength+1), ErrKeyTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateKey(tt.key); err != tt.wantErr {
				t.Errorf("ValidateKey(%q) = %v, want %v", tt.key, err, tt.wantErr)
			}
		})
	}
}

func TestManager_SetGet(t *testing.T) {
	m := newTestManager(t, Config{})
	ctx := context.Background()

	if err := m.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	value, ok := m.Get(ctx, "k")
	if !ok {
		t.Fatal("Get() miss, want hit")
	}
	if value != "v" {
		t.Errorf("value = %v, want v", value)
	}
}

func TestManager_GetExpired(t *testing.T) {
	m := newTestManager(t, Config{})
	ctx := context.Background()

	_ = m.Set(ctx, "k", "v", 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	if _, ok := m.Get(ctx, "k"); ok {
		t.Error("Get() hit on an expired entry")
	}
	if s := m.Stats(); s.Size != 0 {
		t.Errorf("Size = %d after expiry read, want 0", s.Size)
	}
}

func TestManager_Delete(t *testing.T) {
	m := newTestManager(t, Config{})
	ctx := context.Background()

	_ = m.Set(ctx, "k", "v")
	if err := m.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok := m.Get(ctx, "k"); ok {
		t.Error("Get() hit after Delete")
	}

	// Idempotent.
	if err := m.Delete(ctx, "k"); err != nil {
		t.Errorf("second Delete() error = %v", err)
	}
}

func TestManager_Clear(t *testing.T) {
	m := newTestManager(t, Config{})
	ctx := context.Background()

	_ = m.Set(ctx, "a", 1)
	_ = m.Set(ctx, "b", 2)

	if err := m.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if s := m.Stats(); s.Size != 0 {
		t.Errorf("Size = %d after Clear, want 0", s.Size)
	}
}

func TestManager_Stats(t *testing.T) {
	m := newTestManager(t, Config{})
	ctx := context.Background()

	_ = m.Set(ctx, "k", "v")
	m.Get(ctx, "k")      // hit
	m.Get(ctx, "k")      // hit
	m.Get(ctx, "absent") // miss

	s := m.Stats()
	if s.Hits != 2 {
		t.Errorf("Hits = %d, want 2", s.Hits)
	}
	if s.Misses != 1 {
		t.Errorf("Misses = %d, want 1", s.Misses)
	}
	if want := 2.0 / 3.0; s.HitRatio != want {
		t.Errorf("HitRatio = %f, want %f", s.HitRatio, want)
	}
	if s.Size != 1 {
		t.Errorf("Size = %d, want 1", s.Size)
	}
}

func TestManager_EvictsOldest(t *testing.T) {
	m := newTestManager(t, Config{MaxEntries: 2})
	ctx := context.Background()

	_ = m.Set(ctx, "first", 1)
	time.Sleep(2 * time.Millisecond)
	_ = m.Set(ctx, "second", 2)
	time.Sleep(2 * time.Millisecond)
	_ = m.Set(ctx, "third", 3)

	if _, ok := m.Get(ctx, "first"); ok {
		t.Error("oldest entry survived eviction")
	}
	if _, ok := m.Get(ctx, "second"); !ok {
		t.Error("second entry was evicted")
	}
	if _, ok := m.Get(ctx, "third"); !ok {
		t.Error("newest entry was evicted")
	}
}

func TestManager_WithCache_ComputeOncePerTTL(t *testing.T) {
	m := newTestManager(t, Config{})
	ctx := context.Background()

	computed := 0
	compute := func(ctx context.Context) (any, error) {
		computed++
		return "result", nil
	}

	for i := 0; i < 2; i++ {
		value, err := m.WithCache(ctx, "k", compute, 50*time.Millisecond)
		if err != nil {
			t.Fatalf("WithCache() error = %v", err)
		}
		if value != "result" {
			t.Errorf("value = %v, want result", value)
		}
	}
	if computed != 1 {
		t.Fatalf("compute ran %d times inside the TTL window, want 1", computed)
	}

	time.Sleep(60 * time.Millisecond)

	if _, err := m.WithCache(ctx, "k", compute, 50*time.Millisecond); err != nil {
		t.Fatalf("WithCache() after expiry error = %v", err)
	}
	if computed != 2 {
		t.Errorf("compute ran %d times after expiry, want 2", computed)
	}
}

func TestManager_WithCache_ErrorNotCached(t *testing.T) {
	m := newTestManager(t, Config{})
	ctx := context.Background()

	computeErr := errors.New("upstream down")
	computed := 0
	compute := func(ctx context.Context) (any, error) {
		computed++
		return nil, computeErr
	}

	if _, err := m.WithCache(ctx, "k", compute); err != computeErr {
		t.Fatalf("WithCache() error = %v, want computeErr", err)
	}
	if _, err := m.WithCache(ctx, "k", compute); err != computeErr {
		t.Fatalf("second WithCache() error = %v, want computeErr", err)
	}
	if computed != 2 {
		t.Errorf("compute ran %d times, want 2 (errors are not cached)", computed)
	}
}

func TestManager_WithCache_NilCompute(t *testing.T) {
	m := newTestManager(t, Config{})

	if _, err := m.WithCache(context.Background(), "k", nil); err != ErrNilCompute {
		t.Errorf("WithCache(nil) error = %v, want ErrNilCompute", err)
	}
}

func TestManager_SetInvalidKey(t *testing.T) {
	m := newTestManager(t, Config{})

	if err := m.Set(context.Background(), "", "v"); err != ErrInvalidKey {
		t.Errorf("Set(\"\") error = %v, want ErrInvalidKey", err)
	}
}
