package adapters

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestCacheStatsFileDriver(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"ab/cd/entry1": "0123456789",
		"ef/entry2":    "hello",
		".gitignore":   "*\n",
	}
	for name, body := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}

	c := NewCacheAdapter("File", dir, nil, nil)
	stats, err := c.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}
	if stats.Driver != "file" || stats.Entries != 2 || stats.Size != 15 {
		t.Errorf("Stats = %+v, want 2 entries of 15 bytes", stats)
	}

	if err := c.Clear(context.Background()); err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != ".gitignore" {
		t.Errorf("after Clear dir holds %v, want only .gitignore", entries)
	}
}

func TestCacheStatsMissingDir(t *testing.T) {
	c := NewCacheAdapter("file", filepath.Join(t.TempDir(), "missing"), nil, nil)
	if _, err := c.Stats(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Stats error = %v, want ErrUnavailable", err)
	}
}

func TestCacheStatsDatabaseDriver(t *testing.T) {
	store := NewQueueStore(newTestDB(t, laravelQueueSchema,
		`INSERT INTO cache VALUES ('a', 'abc', 0)`,
		`INSERT INTO cache VALUES ('b', 'de', 0)`))
	defer store.Close()

	stats, err := NewCacheAdapter("database", "", store, nil).Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}
	if stats.Entries != 2 || stats.Size != 5 {
		t.Errorf("Stats = %+v, want 2 entries of 5 bytes", stats)
	}
}

func TestCacheStatsOtherDrivers(t *testing.T) {
	tests := map[string]string{
		"array": "per-request",
		"redis": "not inspectable",
	}
	for driver, status := range tests {
		stats, err := NewCacheAdapter(driver, "", nil, nil).Stats(context.Background())
		if err != nil || stats.Status != status {
			t.Errorf("%s: Stats = %+v, %v, want status %q", driver, stats, err, status)
		}
	}
	if _, err := NewCacheAdapter("database", "", nil, nil).Stats(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Errorf("database without store: error = %v, want ErrUnavailable", err)
	}
	if err := NewCacheAdapter("redis", "", nil, nil).Clear(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Errorf("redis Clear without artisan: error = %v, want ErrUnavailable", err)
	}
}

func TestCacheSizeText(t *testing.T) {
	if got := (CacheStats{Driver: "file", Size: 1500}).SizeText(); got != "1.5 kB" {
		t.Errorf("SizeText() = %q, want 1.5 kB", got)
	}
	if got := (CacheStats{Driver: "array"}).SizeText(); got != "in-memory" {
		t.Errorf("SizeText() = %q, want in-memory", got)
	}
}

func TestCacheClearRunsArtisan(t *testing.T) {
	a := fakeApp(t, 0)
	dir := t.TempDir()
	keep := filepath.Join(dir, "entry")
	if err := os.WriteFile(keep, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := NewCacheAdapter("file", dir, nil, a).Clear(context.Background()); err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}
	// artisan owns the clear, so the directory is left to it
	if _, err := os.Stat(keep); err != nil {
		t.Errorf("Clear removed files directly: %v", err)
	}
}
