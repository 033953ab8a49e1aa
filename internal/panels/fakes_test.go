package panels

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/jedarden/frankendash/internal/adapters"
	"github.com/jedarden/frankendash/internal/keys"
	"github.com/jedarden/frankendash/internal/ui"
)

var errDown = errors.New("connection refused")

var testNow = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

func testDeps() Deps {
	return Deps{
		Theme:  ui.DefaultTheme(),
		Keys:   keys.DefaultMap(),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:    func() time.Time { return testNow },
	}
}

// plain renders a panel and strips styling
func plain(p ui.Panel, width, height int) string {
	p.Measure(width, height)
	return ui.Strip(strings.Join(p.Render(width, height), "\n"))
}

type fakeQueues struct {
	stats []adapters.QueueStat
	err   error
}

func (f *fakeQueues) Queues(context.Context) ([]adapters.QueueStat, error) { return f.stats, f.err }

type fakeWorkers struct {
	workers []adapters.Worker
	err     error
}

func (f *fakeWorkers) Workers(context.Context) ([]adapters.Worker, error) { return f.workers, f.err }

type fakeJobs struct {
	jobs    []adapters.Job
	err     error
	retried []int64
	flushed int
	fetches int
}

func (f *fakeJobs) RecentJobs(_ context.Context, limit int) ([]adapters.Job, error) {
	f.fetches++
	return f.jobs, f.err
}

func (f *fakeJobs) RetryFailed(_ context.Context, id int64) error {
	f.retried = append(f.retried, id)
	return nil
}

func (f *fakeJobs) RetryAllFailed(context.Context) (int, error) { return 2, nil }

func (f *fakeJobs) FlushFailed(context.Context) (int64, error) {
	f.flushed++
	return 3, nil
}

type fakeLogs struct {
	entries []adapters.LogEntry
	err     error
	cleared bool
}

func (f *fakeLogs) Recent(int) ([]adapters.LogEntry, error) { return f.entries, f.err }

func (f *fakeLogs) Clear() error {
	f.cleared = true
	f.entries = nil
	return nil
}

type fakeCache struct {
	stats   adapters.CacheStats
	err     error
	cleared bool
}

func (f *fakeCache) Stats(context.Context) (adapters.CacheStats, error) { return f.stats, f.err }

func (f *fakeCache) Clear(context.Context) error {
	f.cleared = true
	return nil
}

type fakeSystem struct{ stats adapters.SystemStats }

func (f *fakeSystem) Collect(context.Context) adapters.SystemStats { return f.stats }

type fakePinger struct{ err error }

func (f *fakePinger) Ping(context.Context) error { return f.err }

type fakeSampler struct {
	series []adapters.Series
	err    error
}

func (f *fakeSampler) Sample(context.Context) ([]adapters.Series, error) { return f.series, f.err }

type fakeArtisan struct {
	runs     [][]string
	execs    []string
	versions int
	output   []string
	err      error
}

func (f *fakeArtisan) Run(_ context.Context, args ...string) ([]string, error) {
	f.runs = append(f.runs, args)
	return f.output, f.err
}

func (f *fakeArtisan) Exec(_ context.Context, line string) ([]string, error) {
	f.execs = append(f.execs, line)
	return f.output, f.err
}

func (f *fakeArtisan) Version(context.Context) (string, error) {
	f.versions++
	return "Laravel Framework 11.9.2", f.err
}
