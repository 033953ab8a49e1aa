package state

import (
	"log/slog"
	"time"
)

// Feed is the latest result of one periodic fetch. It is only touched from
// the event loop, so it needs no locking.
type Feed[T any] struct {
	name                string
	log                 *slog.Logger
	data                T
	has                 bool
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int
}

// NewFeed creates a feed; name identifies it in log messages.
func NewFeed[T any](name string, log *slog.Logger) *Feed[T] {
	if log == nil {
		log = slog.Default()
	}
	return &Feed[T]{name: name, log: log}
}

// Update stores the result of a fetch. On error the data is dropped so the
// panel shows its empty state; the first failure in a row and the recovery
// after one are logged.
func (f *Feed[T]) Update(data T, err error) {
	f.LastUpdated = time.Now()
	if err != nil {
		var zero T
		f.data, f.has = zero, false
		if f.ConsecutiveFailures == 0 {
			f.log.Warn("fetch failed", "feed", f.name, "error", err)
		}
		f.LastError = err
		f.ConsecutiveFailures++
		return
	}
	if f.ConsecutiveFailures > 0 {
		f.log.Info("fetch recovered", "feed", f.name, "failures", f.ConsecutiveFailures)
	}
	f.data, f.has = data, true
	f.LastError = nil
	f.ConsecutiveFailures = 0
}

// Data returns the stored data and whether the last fetch succeeded.
func (f *Feed[T]) Data() (T, bool) { return f.data, f.has }

// OK reports whether the last fetch succeeded
func (f *Feed[T]) OK() bool { return f.has }

// IsOffline returns true when the source has failed for multiple polls.
func (f *Feed[T]) IsOffline() bool { return f.ConsecutiveFailures >= 2 }
