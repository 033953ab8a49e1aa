package adapters

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"strings"
	"testing"
)

func TestWithRetry(t *testing.T) {
	busy := errors.New("database is locked (5) (SQLITE_BUSY)")

	t.Run("recovers from busy", func(t *testing.T) {
		calls := 0
		got, err := withRetry(context.Background(), func() (int, error) {
			calls++
			if calls < 2 {
				return 0, busy
			}
			return 7, nil
		})
		if err != nil || got != 7 {
			t.Fatalf("withRetry = %d, %v; want 7, nil", got, err)
		}
		if calls != 2 {
			t.Errorf("calls = %d, want 2", calls)
		}
	})

	t.Run("other errors are not retried", func(t *testing.T) {
		calls := 0
		boom := errors.New("no such table: jobs")
		_, err := withRetry(context.Background(), func() (int, error) {
			calls++
			return 0, boom
		})
		if !errors.Is(err, boom) || calls != 1 {
			t.Errorf("err = %v after %d calls, want %v after 1", err, calls, boom)
		}
	})

	t.Run("gives up", func(t *testing.T) {
		calls := 0
		err := withRetryNoResult(context.Background(), func() error {
			calls++
			return busy
		})
		if calls != busyAttempts {
			t.Errorf("calls = %d, want %d", calls, busyAttempts)
		}
		if !errors.Is(err, busy) || !strings.Contains(err.Error(), "database busy") {
			t.Errorf("err = %v, want wrapped busy error", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		calls := 0
		err := withRetryNoResult(ctx, func() error {
			calls++
			return nil
		})
		if !errors.Is(err, context.Canceled) || calls != 0 {
			t.Errorf("err = %v after %d calls, want context.Canceled after 0", err, calls)
		}
	})
}

func journalMode(t *testing.T, path string) string {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	var mode string
	if err := db.QueryRow(`PRAGMA journal_mode`).Scan(&mode); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	return strings.ToLower(mode)
}

func TestQueueStoreKeepsJournalMode(t *testing.T) {
	s := seededStore(t)
	defer s.Close()
	before := journalMode(t, s.Path())
	ctx := context.Background()

	if _, err := s.Queues(ctx); err != nil {
		t.Fatalf("Queues returned error: %v", err)
	}
	if _, err := s.RecentJobs(ctx, 10); err != nil {
		t.Fatalf("RecentJobs returned error: %v", err)
	}
	if _, err := s.FlushFailed(ctx); err != nil {
		t.Fatalf("FlushFailed returned error: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	if after := journalMode(t, s.Path()); after != before {
		t.Errorf("journal_mode = %q after use, want %q", after, before)
	}
	if _, err := os.Stat(s.Path() + "-wal"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("found a -wal file next to the database (stat err %v)", err)
	}
}

func TestQueueStoreReadConnectionIsReadOnly(t *testing.T) {
	s := seededStore(t)
	defer s.Close()
	db, err := s.conn()
	if err != nil {
		t.Fatalf("conn: %v", err)
	}
	if _, err := db.Exec(`DELETE FROM failed_jobs`); err == nil {
		t.Error("delete through the read connection succeeded")
	}
}
