package adapters

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
)

// CacheStats describes the application cache store
type CacheStats struct {
	Driver  string
	Entries int
	Size    uint64
	Status  string
}

// SizeText formats Size for display
func (c CacheStats) SizeText() string {
	if c.Driver == "array" {
		return "in-memory"
	}
	return humanize.Bytes(c.Size)
}

// clearCommands are run in order by Clear
var clearCommands = [][]string{
	{"cache:clear"},
	{"config:clear"},
	{"view:clear"},
	{"route:clear"},
}

// CacheAdapter inspects and clears the Laravel cache.
type CacheAdapter struct {
	driver  string
	dir     string
	queue   *QueueStore
	artisan *Artisan
}

// NewCacheAdapter creates an adapter. dir is the file store directory and
// queue gives access to the database store.
func NewCacheAdapter(driver, dir string, queue *QueueStore, artisan *Artisan) *CacheAdapter {
	return &CacheAdapter{driver: strings.ToLower(driver), dir: dir, queue: queue, artisan: artisan}
}

// Stats returns the current cache statistics.
func (c *CacheAdapter) Stats(ctx context.Context) (CacheStats, error) {
	return Guard("cache stats", func() (CacheStats, error) {
		stats := CacheStats{Driver: c.driver, Status: "ok"}
		switch c.driver {
		case "file":
			n, size, err := dirUsage(c.dir)
			if err != nil {
				return CacheStats{}, err
			}
			stats.Entries, stats.Size = n, size
		case "database":
			n, size, err := c.databaseUsage(ctx)
			if err != nil {
				return CacheStats{}, err
			}
			stats.Entries, stats.Size = n, size
		case "array":
			stats.Status = "per-request"
		default:
			stats.Status = "not inspectable"
		}
		return stats, nil
	})
}

func (c *CacheAdapter) databaseUsage(ctx context.Context) (int, uint64, error) {
	if c.queue == nil {
		return 0, 0, fmt.Errorf("no database: %w", ErrUnavailable)
	}
	db, err := c.queue.conn()
	if err != nil {
		return 0, 0, err
	}
	ctx, cancel := context.WithTimeout(ctx, dbOperationTimeout)
	defer cancel()
	type usage struct {
		n    int
		size int64
	}
	u, err := withRetry(ctx, func() (usage, error) {
		var u usage
		err := db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(LENGTH(value)), 0) FROM cache`).Scan(&u.n, &u.size)
		return u, err
	})
	if err != nil {
		return 0, 0, fmt.Errorf("query cache table: %w", err)
	}
	return u.n, uint64(u.size), nil
}

// Clear flushes the application, config, view and route caches through
// artisan. Without artisan, a file store is emptied directly.
func (c *CacheAdapter) Clear(ctx context.Context) error {
	return GuardErr("clear cache", func() error {
		if c.artisan != nil && c.artisan.Available() {
			for _, args := range clearCommands {
				if _, err := c.artisan.Run(ctx, args...); err != nil {
					return err
				}
			}
			return nil
		}
		if c.driver == "file" {
			return clearDir(c.dir)
		}
		return fmt.Errorf("no artisan for %s driver: %w", c.driver, ErrUnavailable)
	})
}

// dirUsage counts regular files under dir and their total size.
func dirUsage(dir string) (int, uint64, error) {
	if _, err := os.Stat(dir); err != nil {
		return 0, 0, fmt.Errorf("cache dir %s: %w", dir, ErrUnavailable)
	}
	var n int
	var size uint64
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		n++
		size += uint64(info.Size())
		return nil
	})
	return n, size, err
}

// clearDir removes everything inside dir except dotfiles such as .gitignore.
func clearDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}
