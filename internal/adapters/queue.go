package adapters

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// JobStatus is the state of a queued job
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobFailed     JobStatus = "failed"
)

// QueueStat summarizes one queue
type QueueStat struct {
	Name     string
	Pending  int
	Reserved int
	Failed   int
}

// Job is one row of the jobs or failed_jobs table
type Job struct {
	ID       int64
	Queue    string
	Class    string
	Status   JobStatus
	Attempts int
	At       time.Time
}

// QueueStore reads and modifies the Laravel database queue tables. Reads go
// through a read-only connection; a writable one is opened only for the
// retry and flush actions.
type QueueStore struct {
	path string
	ro   *sql.DB
	rw   *sql.DB
	now  func() time.Time
}

// NewQueueStore creates a store for the SQLite database at path. The file is
// opened on first use.
func NewQueueStore(path string) *QueueStore {
	return &QueueStore{path: path, now: time.Now}
}

// Path returns the database path
func (s *QueueStore) Path() string { return s.path }

func (s *QueueStore) conn() (*sql.DB, error) {
	if s.ro == nil {
		db, err := openDB(s.path, true)
		if err != nil {
			return nil, err
		}
		s.ro = db
	}
	return s.ro, nil
}

func (s *QueueStore) writeConn() (*sql.DB, error) {
	if s.rw == nil {
		db, err := openDB(s.path, false)
		if err != nil {
			return nil, err
		}
		s.rw = db
	}
	return s.rw, nil
}

// Close closes whichever connections were opened
func (s *QueueStore) Close() error {
	var errs []error
	for _, db := range []*sql.DB{s.ro, s.rw} {
		if db != nil {
			errs = append(errs, db.Close())
		}
	}
	s.ro, s.rw = nil, nil
	return errors.Join(errs...)
}

// Ping checks that the database answers queries
func (s *QueueStore) Ping(ctx context.Context) error {
	return GuardErr("ping database", func() error {
		db, err := s.conn()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(ctx, dbOperationTimeout)
		defer cancel()
		return db.PingContext(ctx)
	})
}

// Queues returns per-queue counts sorted by name. A database without jobs
// reports a single empty "default" queue.
func (s *QueueStore) Queues(ctx context.Context) ([]QueueStat, error) {
	return Guard("queue stats", func() ([]QueueStat, error) {
		db, err := s.conn()
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(ctx, dbOperationTimeout)
		defer cancel()

		return withRetry(ctx, func() ([]QueueStat, error) {
			byName := map[string]*QueueStat{}
			get := func(name string) *QueueStat {
				if q, ok := byName[name]; ok {
					return q
				}
				q := &QueueStat{Name: name}
				byName[name] = q
				return q
			}

			rows, err := db.QueryContext(ctx, `
				SELECT queue, COUNT(*), COALESCE(SUM(CASE WHEN reserved_at IS NOT NULL THEN 1 ELSE 0 END), 0)
				FROM jobs GROUP BY queue`)
			if err != nil {
				return nil, fmt.Errorf("query jobs: %w", err)
			}
			err = scanJobCounts(rows, get)
			rows.Close()
			if err != nil {
				return nil, fmt.Errorf("read jobs: %w", err)
			}

			failed, err := s.failedByQueue(ctx, db)
			if err != nil {
				return nil, err
			}
			for name, n := range failed {
				get(name).Failed = n
			}

			stats := make([]QueueStat, 0, len(byName))
			for _, q := range byName {
				stats = append(stats, *q)
			}
			sort.Slice(stats, func(i, j int) bool { return stats[i].Name < stats[j].Name })
			if len(stats) == 0 {
				stats = append(stats, QueueStat{Name: "default"})
			}
			return stats, nil
		})
	})
}

// rowIter is the part of *sql.Rows the scanners use
type rowIter interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// scanJobCounts reads (queue, pending, reserved) rows into the stats
// returned by get.
func scanJobCounts(rows rowIter, get func(string) *QueueStat) error {
	for rows.Next() {
		var name string
		var pending, reserved int
		if err := rows.Scan(&name, &pending, &reserved); err != nil {
			return err
		}
		q := get(name)
		q.Pending, q.Reserved = pending, reserved
	}
	return rows.Err()
}

// failedByQueue counts failed jobs per queue. A missing failed_jobs table
// counts as no failures.
func (s *QueueStore) failedByQueue(ctx context.Context, db *sql.DB) (map[string]int, error) {
	out := map[string]int{}
	rows, err := db.QueryContext(ctx, `SELECT queue, COUNT(*) FROM failed_jobs GROUP BY queue`)
	if err != nil {
		if isMissingTable(err) {
			return out, nil
		}
		return nil, fmt.Errorf("query failed_jobs: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("scan failed_jobs: %w", err)
		}
		out[name] = n
	}
	return out, rows.Err()
}

// RecentJobs returns up to limit pending and failed jobs, newest first.
func (s *QueueStore) RecentJobs(ctx context.Context, limit int) ([]Job, error) {
	return Guard("recent jobs", func() ([]Job, error) {
		db, err := s.conn()
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(ctx, dbOperationTimeout)
		defer cancel()

		return withRetry(ctx, func() ([]Job, error) {
			jobs, err := s.pendingJobs(ctx, db, limit)
			if err != nil {
				return nil, err
			}
			failed, err := s.failedJobs(ctx, db, limit)
			if err != nil {
				return nil, err
			}
			jobs = append(jobs, failed...)
			sort.SliceStable(jobs, func(i, j int) bool {
				if !jobs[i].At.Equal(jobs[j].At) {
					return jobs[i].At.After(jobs[j].At)
				}
				return jobs[i].ID > jobs[j].ID
			})
			if len(jobs) > limit {
				jobs = jobs[:limit]
			}
			return jobs, nil
		})
	})
}

func (s *QueueStore) pendingJobs(ctx context.Context, db *sql.DB, limit int) ([]Job, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, queue, payload, attempts, reserved_at, created_at
		FROM jobs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		var j Job
		var payload string
		var reserved sql.NullInt64
		var created int64
		if err := rows.Scan(&j.ID, &j.Queue, &payload, &j.Attempts, &reserved, &created); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		j.Class = displayName(payload)
		j.Status = JobPending
		if reserved.Valid {
			j.Status = JobProcessing
		}
		j.At = time.Unix(created, 0)
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (s *QueueStore) failedJobs(ctx context.Context, db *sql.DB, limit int) ([]Job, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, queue, payload, failed_at
		FROM failed_jobs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		if isMissingTable(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("query failed_jobs: %w", err)
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		var j Job
		var payload string
		var failedAt sql.NullString
		if err := rows.Scan(&j.ID, &j.Queue, &payload, &failedAt); err != nil {
			return nil, fmt.Errorf("scan failed job: %w", err)
		}
		j.Class = displayName(payload)
		j.Status = JobFailed
		j.At = parseTimestamp(failedAt.String)
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// RetryFailed moves a failed job back onto its queue.
func (s *QueueStore) RetryFailed(ctx context.Context, id int64) error {
	return GuardErr("retry job", func() error {
		db, err := s.writeConn()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(ctx, dbOperationTimeout)
		defer cancel()
		return withRetryNoResult(ctx, func() error {
			return s.retry(ctx, db, id)
		})
	})
}

func (s *QueueStore) retry(ctx context.Context, db *sql.DB, id int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var queue, payload string
	err = tx.QueryRowContext(ctx, `SELECT queue, payload FROM failed_jobs WHERE id = ?`, id).Scan(&queue, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed job %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("load failed job: %w", err)
	}

	now := s.now().Unix()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO jobs (queue, payload, attempts, reserved_at, available_at, created_at)
		VALUES (?, ?, 0, NULL, ?, ?)`, queue, payload, now, now); err != nil {
		return fmt.Errorf("requeue job: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM failed_jobs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete failed job: %w", err)
	}
	return tx.Commit()
}

// RetryAllFailed requeues every failed job and returns how many moved.
func (s *QueueStore) RetryAllFailed(ctx context.Context) (int, error) {
	return Guard("retry all jobs", func() (int, error) {
		db, err := s.writeConn()
		if err != nil {
			return 0, err
		}
		ctx, cancel := context.WithTimeout(ctx, dbOperationTimeout)
		defer cancel()

		ids, err := withRetry(ctx, func() ([]int64, error) {
			rows, err := db.QueryContext(ctx, `SELECT id FROM failed_jobs ORDER BY id`)
			if err != nil {
				return nil, err
			}
			defer rows.Close()
			var ids []int64
			for rows.Next() {
				var id int64
				if err := rows.Scan(&id); err != nil {
					return nil, err
				}
				ids = append(ids, id)
			}
			return ids, rows.Err()
		})
		if err != nil {
			return 0, fmt.Errorf("list failed jobs: %w", err)
		}
		moved := 0
		for _, id := range ids {
			if err := withRetryNoResult(ctx, func() error { return s.retry(ctx, db, id) }); err != nil {
				return moved, err
			}
			moved++
		}
		return moved, nil
	})
}

// FlushFailed deletes every failed job and returns how many were removed.
func (s *QueueStore) FlushFailed(ctx context.Context) (int64, error) {
	return Guard("flush failed jobs", func() (int64, error) {
		db, err := s.writeConn()
		if err != nil {
			return 0, err
		}
		ctx, cancel := context.WithTimeout(ctx, dbOperationTimeout)
		defer cancel()
		return withRetry(ctx, func() (int64, error) {
			res, err := db.ExecContext(ctx, `DELETE FROM failed_jobs`)
			if err != nil {
				return 0, err
			}
			return res.RowsAffected()
		})
	})
}

// Totals returns the number of queued and failed jobs across all queues.
func (s *QueueStore) Totals(ctx context.Context) (pending, failed int, err error) {
	stats, err := s.Queues(ctx)
	if err != nil {
		return 0, 0, err
	}
	for _, q := range stats {
		pending += q.Pending
		failed += q.Failed
	}
	return pending, failed, nil
}

// displayName extracts the job class from a Laravel payload.
func displayName(payload string) string {
	var p struct {
		DisplayName string `json:"displayName"`
	}
	if err := json.Unmarshal([]byte(payload), &p); err != nil || strings.TrimSpace(p.DisplayName) == "" {
		return "Unknown"
	}
	return p.DisplayName
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999-07:00",
}

// parseTimestamp parses the date formats Laravel and SQLite produce. Unknown
// formats yield the zero time.
func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}
