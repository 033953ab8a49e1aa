package adapters

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const (
	// SQLite allows one writer; one connection avoids lock churn.
	maxOpenConns = 1
	maxIdleConns = 1

	busyAttempts   = 3
	busyBackoff    = 50 * time.Millisecond
	busyBackoffMax = 200 * time.Millisecond

	dbOperationTimeout = 2 * time.Second
)

// openDB opens an existing SQLite database. It never creates one: a missing
// file means the application has no database yet. The database belongs to
// the application, so only connection-local pragmas are set.
func openDB(path string, readOnly bool) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("database path not set: %w", ErrUnavailable)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("database %s: %w", path, ErrUnavailable)
	}
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)"
	if readOnly {
		dsn += "&mode=ro"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	return db, nil
}

// withRetry runs op, repeating it with a doubling backoff while SQLite
// reports the database as busy. Other errors return immediately.
func withRetry[T any](ctx context.Context, op func() (T, error)) (T, error) {
	var zero T
	wait := busyBackoff
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		v, err := op()
		switch {
		case err == nil:
			return v, nil
		case !isLockError(err):
			return zero, err
		case attempt == busyAttempts:
			return zero, fmt.Errorf("database busy after %d attempts: %w", attempt, err)
		}

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return zero, ctx.Err()
		case <-t.C:
		}
		wait = min(wait*2, busyBackoffMax)
	}
}

func withRetryNoResult(ctx context.Context, op func() error) error {
	_, err := withRetry(ctx, func() (struct{}, error) { return struct{}{}, op() })
	return err
}

var lockMessages = []string{"database is locked", "database table is locked", "SQLITE_BUSY", "SQLITE_LOCKED"}

func isLockError(err error) bool {
	msg := err.Error()
	for _, m := range lockMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// isMissingTable reports whether err is SQLite's "no such table" error.
func isMissingTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}
