package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestPersistence_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	m := newTestManager(t, Config{Persistent: true, Dir: dir})
	if err := m.Set(ctx, "orders:recent", map[string]any{"count": float64(3)}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	// A new manager over the same directory restores the entry.
	restored := newTestManager(t, Config{Persistent: true, Dir: dir})
	value, ok := restored.Get(ctx, "orders:recent")
	if !ok {
		t.Fatal("restored manager missed a persisted entry")
	}
	asMap, ok := value.(map[string]any)
	if !ok {
		t.Fatalf("restored value has type %T, want map[string]any", value)
	}
	if asMap["count"] != float64(3) {
		t.Errorf("restored count = %v, want 3", asMap["count"])
	}
}

func TestPersistence_ExpiredEntriesDiscardedOnLoad(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	m := newTestManager(t, Config{Persistent: true, Dir: dir})
	_ = m.Set(ctx, "ephemeral", "v", 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	restored := newTestManager(t, Config{Persistent: true, Dir: dir})
	if _, ok := restored.Get(ctx, "ephemeral"); ok {
		t.Error("restored manager returned an expired entry")
	}
}

func TestPersistence_CorruptFilesDiscardedOnLoad(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "deadbeefdeadbeef.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	restored := newTestManager(t, Config{Persistent: true, Dir: dir})
	if s := restored.Stats(); s.Size != 0 {
		t.Errorf("Size = %d after loading a corrupt file, want 0", s.Size)
	}
	if _, err := os.Stat(bad); !os.IsNotExist(err) {
		t.Error("corrupt file was not removed")
	}
}

func TestPersistence_DeleteRemovesFile(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	m := newTestManager(t, Config{Persistent: true, Dir: dir})
	_ = m.Set(ctx, "k", "v")
	_ = m.Delete(ctx, "k")

	restored := newTestManager(t, Config{Persistent: true, Dir: dir})
	if _, ok := restored.Get(ctx, "k"); ok {
		t.Error("deleted entry survived on disk")
	}
}

func TestPersistence_RequiresDir(t *testing.T) {
	if _, err := NewManager(Config{Persistent: true}); err == nil {
		t.Error("NewManager() accepted persistence without a directory")
	}
}

func TestPersistence_FilenameIsKeyHash(t *testing.T) {
	dir := t.TempDir()

	m := newTestManager(t, Config{Persistent: true, Dir: dir})
	// Keys with separators must still map to flat, safe filenames.
	_ = m.Set(context.Background(), "catalog/items?page=2", "v")

	dirents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(dirents) != 1 {
		t.Fatalf("persisted files = %d, want 1", len(dirents))
	}
	name := dirents[0].Name()
	if filepath.Ext(name) != ".json" || len(name) != len("0123456789abcdef.json") {
		t.Errorf("filename %q is not a 16-hex-char hash", name)
	}
}
