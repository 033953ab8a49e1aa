package panels

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jedarden/frankendash/internal/adapters"
	"github.com/jedarden/frankendash/internal/keys"
	"github.com/jedarden/frankendash/internal/ui"
)

func sampleJobs() []adapters.Job {
	return []adapters.Job{
		{ID: 7, Queue: "emails", Class: "App\\Jobs\\SendMail", Status: adapters.JobFailed, At: testNow.Add(-time.Minute)},
		{ID: 6, Queue: "default", Class: "App\\Jobs\\ProcessPodcast", Status: adapters.JobPending, At: testNow.Add(-2 * time.Minute)},
		{ID: 5, Queue: "emails", Class: "App\\Jobs\\SendNewsletter", Status: adapters.JobProcessing, At: testNow.Add(-3 * time.Minute)},
	}
}

func TestPanelsRenderNoDataOnFetchError(t *testing.T) {
	deps := testDeps()
	art := &fakeArtisan{err: errDown}
	all := []ui.Panel{
		NewOverview(deps, &fakeSystem{stats: adapters.SystemStats{CPUError: errDown, MemError: errDown, LoadError: errDown}},
			&fakePinger{err: errDown}, &fakeQueues{err: errDown}, &fakeWorkers{err: errDown}, art),
		NewQueues(deps, &fakeQueues{err: errDown}, &fakeWorkers{err: errDown}, art),
		NewJobs(deps, &fakeJobs{err: errDown}),
		NewLogs(deps, &fakeLogs{err: errDown}, nil),
		NewCache(deps, &fakeCache{err: errDown}),
		NewScheduler(deps, art),
		NewMetrics(deps, &fakeSampler{err: errDown}),
		NewSettings(deps, func() ([]byte, error) { return nil, errDown }),
	}
	for _, p := range all {
		t.Run(p.ID(), func(t *testing.T) {
			p.Refresh(context.Background())
			out := plain(p, 100, 20)
			if !strings.Contains(out, NoData) {
				t.Errorf("render missing %q:\n%s", NoData, out)
			}
			if !strings.Contains(out, "connection refused") {
				t.Errorf("render missing the fetch error:\n%s", out)
			}
		})
	}
}

func TestRepeatedFetchErrorsMarkOffline(t *testing.T) {
	ctx := context.Background()
	for _, p := range []ui.Panel{
		NewJobs(testDeps(), &fakeJobs{err: errDown}),
		NewLogs(testDeps(), &fakeLogs{err: errDown}, nil),
	} {
		t.Run(p.ID(), func(t *testing.T) {
			p.Refresh(ctx)
			if out := plain(p, 120, 20); strings.Contains(out, "offline") {
				t.Errorf("offline after one failure:\n%s", out)
			}
			p.Refresh(ctx)
			if out := plain(p, 120, 20); !strings.Contains(out, "(offline, 2 failed polls)") {
				t.Errorf("render missing offline marker:\n%s", out)
			}
		})
	}
}

func TestNoDataLineUnavailable(t *testing.T) {
	line := ui.Strip(noDataLine(ui.DefaultTheme(), errors.Join(adapters.ErrUnavailable)))
	if !strings.Contains(line, "source unavailable") {
		t.Errorf("noDataLine = %q", line)
	}
}

func TestJobsSearchAndRetry(t *testing.T) {
	ctx := context.Background()
	src := &fakeJobs{jobs: sampleJobs()}
	j := NewJobs(testDeps(), src)
	j.Refresh(ctx)

	out := plain(j, 120, 20)
	for _, want := range []string{"SendMail", "ProcessPodcast", "SendNewsletter", "1 of 3"} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q:\n%s", want, out)
		}
	}

	j.EnterSearch()
	for _, r := range "send" {
		j.AppendSearch(r)
	}
	out = plain(j, 120, 20)
	if strings.Contains(out, "ProcessPodcast") || !strings.Contains(out, "SendNewsletter") {
		t.Errorf("search did not filter:\n%s", out)
	}
	if !strings.Contains(out, "Search: send_") {
		t.Errorf("search prompt missing:\n%s", out)
	}
	j.ExitSearch()

	// Selection starts on the failed job.
	if !j.HandleKey(ctx, keys.Char('x')) {
		t.Fatal("x not handled")
	}
	if len(src.retried) != 1 || src.retried[0] != 7 {
		t.Errorf("retried = %v, want [7]", src.retried)
	}
	if !strings.Contains(plain(j, 120, 20), "job 7 queued for retry") {
		t.Error("retry note missing")
	}

	j.Down()
	j.HandleKey(ctx, keys.Char('x'))
	if len(src.retried) != 1 {
		t.Errorf("retried a pending job: %v", src.retried)
	}
	if !strings.Contains(plain(j, 120, 20), "select a failed job") {
		t.Error("pending job note missing")
	}

	fetches := src.fetches
	j.HandleKey(ctx, keys.Char('F'))
	if src.flushed != 1 || src.fetches != fetches+1 {
		t.Errorf("flush = %d, refetches = %d", src.flushed, src.fetches-fetches)
	}
	if j.HandleKey(ctx, keys.Char('?')) {
		t.Error("unbound key handled")
	}
}

func TestJobsNoMatches(t *testing.T) {
	j := NewJobs(testDeps(), &fakeJobs{jobs: sampleJobs()})
	j.Refresh(context.Background())
	j.EnterSearch()
	j.AppendSearch('z')
	if out := plain(j, 120, 20); !strings.Contains(out, `No jobs match "z"`) {
		t.Errorf("render = %s", out)
	}
}

func TestLogsLevelsAndClear(t *testing.T) {
	ctx := context.Background()
	src := &fakeLogs{entries: []adapters.LogEntry{
		{Timestamp: "2024-01-10 11:59:00", Channel: "local", Level: "error", Message: "Payment declined\n#0 trace"},
		{Timestamp: "2024-01-10 11:58:00", Channel: "local", Level: "debug", Message: "Cache miss"},
		{Timestamp: "2024-01-10 11:57:00", Channel: "stack", Level: "info", Message: "User 4 logged in"},
	}}
	l := NewLogs(testDeps(), src, []string{"ERROR", "info"})
	l.Refresh(ctx)

	out := plain(l, 120, 20)
	if strings.Contains(out, "Cache miss") || !strings.Contains(out, "Payment declined") || !strings.Contains(out, "User 4") {
		t.Errorf("level filter wrong:\n%s", out)
	}
	if strings.Contains(out, "#0 trace") {
		t.Errorf("continuation lines rendered:\n%s", out)
	}

	l.EnterSearch()
	for _, r := range "STACK" {
		l.AppendSearch(r)
	}
	out = plain(l, 120, 20)
	if strings.Contains(out, "Payment") || !strings.Contains(out, "User 4") {
		t.Errorf("search by channel failed:\n%s", out)
	}
	l.ExitSearch()

	if !l.HandleKey(ctx, keys.Char('C')) || !src.cleared {
		t.Fatal("C did not clear the log")
	}
	out = plain(l, 120, 20)
	if !strings.Contains(out, "log cleared") || !strings.Contains(out, "No log entries") {
		t.Errorf("after clear:\n%s", out)
	}
}

func TestQueuesRender(t *testing.T) {
	ctx := context.Background()
	art := &fakeArtisan{}
	q := NewQueues(testDeps(),
		&fakeQueues{stats: []adapters.QueueStat{{Name: "default", Pending: 4, Failed: 1}, {Name: "emails", Reserved: 2}}},
		&fakeWorkers{workers: []adapters.Worker{{PID: 101, Started: testNow.Add(-time.Hour)}}},
		art)
	q.Refresh(ctx)

	out := plain(q, 100, 20)
	for _, want := range []string{"Workers: 1 running", "pid 101", "default", "emails", "QUEUE"} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q:\n%s", want, out)
		}
	}

	if !q.HandleKey(ctx, keys.Char('R')) {
		t.Fatal("R not handled")
	}
	if len(art.runs) != 1 || art.runs[0][0] != "queue:restart" {
		t.Errorf("artisan runs = %v", art.runs)
	}
	if !strings.Contains(plain(q, 100, 20), "workers will restart") {
		t.Error("restart note missing")
	}
}

func TestQueuesNoWorkers(t *testing.T) {
	q := NewQueues(testDeps(), &fakeQueues{stats: []adapters.QueueStat{{Name: "default"}}}, &fakeWorkers{}, &fakeArtisan{})
	q.Refresh(context.Background())
	if out := plain(q, 100, 20); !strings.Contains(out, "none running") {
		t.Errorf("render = %s", out)
	}
}

func TestCacheClear(t *testing.T) {
	src := &fakeCache{stats: adapters.CacheStats{Driver: "file", Entries: 12, Size: 2048, Status: "ok"}}
	c := NewCache(testDeps(), src)
	c.Refresh(context.Background())
	out := plain(c, 80, 20)
	if !strings.Contains(out, "Entries  12") || !strings.Contains(out, "2.0 kB") {
		t.Errorf("render = %s", out)
	}
	if !c.HandleKey(context.Background(), keys.Char('c')) || !src.cleared {
		t.Error("c did not clear the cache")
	}
}

func TestSchedulerRefreshThrottle(t *testing.T) {
	ctx := context.Background()
	now := testNow
	deps := testDeps()
	deps.Now = func() time.Time { return now }
	art := &fakeArtisan{output: []string{"  0 * * * *  php artisan inspire ..... Next Due: 1 hour from now  ", "", "  0 0 * * *  php artisan backup:run"}}
	s := NewScheduler(deps, art)

	s.Refresh(ctx)
	now = now.Add(10 * time.Second)
	s.Refresh(ctx)
	if len(art.runs) != 1 {
		t.Fatalf("schedule:list ran %d times within TTL, want 1", len(art.runs))
	}
	s.OnFocus()
	s.Refresh(ctx)
	if len(art.runs) != 2 {
		t.Errorf("focus did not force a refresh: %d runs", len(art.runs))
	}
	now = now.Add(scheduleTTL)
	s.Refresh(ctx)
	if len(art.runs) != 3 {
		t.Errorf("expired listing not refreshed: %d runs", len(art.runs))
	}

	out := plain(s, 100, 20)
	if !strings.Contains(out, "inspire") || !strings.Contains(out, "backup:run") || !strings.Contains(out, "1 of 2") {
		t.Errorf("render = %s", out)
	}
}

func TestMetricsRender(t *testing.T) {
	m := NewMetrics(testDeps(), &fakeSampler{series: []adapters.Series{
		{Name: "cpu", Unit: "%", Samples: []float64{10, 20, 30}},
		{Name: "queued jobs", Samples: []float64{4}},
		{Name: "memory", Unit: "%", Err: errDown},
	}})
	m.Refresh(context.Background())
	out := plain(m, 100, 20)
	for _, want := range []string{"now 30.0%", "avg 20.0%", "max 30.0%", "now 4", "memory", NoData} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q:\n%s", want, out)
		}
	}
}

func TestSparkline(t *testing.T) {
	tests := []struct {
		in   []float64
		want string
	}{
		{nil, ""},
		{[]float64{5, 5, 5}, "▁▁▁"},
		{[]float64{0, 7}, "▁█"},
		{[]float64{0, 1, 2, 3, 4, 5, 6, 7}, "▁▂▃▄▅▆▇█"},
	}
	for _, tt := range tests {
		if got := Sparkline(tt.in); got != tt.want {
			t.Errorf("Sparkline(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		v    float64
		unit string
		want string
	}{
		{42.26, "%", "42.3%"},
		{3, "", "3"},
		{2.5, "s", "2.5s"},
	}
	for _, tt := range tests {
		if got := formatValue(tt.v, tt.unit); got != tt.want {
			t.Errorf("formatValue(%v, %q) = %q, want %q", tt.v, tt.unit, got, tt.want)
		}
	}
}

func TestShellRunsCommands(t *testing.T) {
	ctx := context.Background()
	art := &fakeArtisan{output: []string{"Application cache cleared."}}
	s := NewShell(testDeps(), art)

	if !s.HandleKey(ctx, keys.Control(keys.Enter)) || !s.Searching() {
		t.Fatal("enter did not open the prompt")
	}
	for _, r := range "cache:clear" {
		s.AppendSearch(r)
	}
	if out := plain(s, 100, 20); !strings.Contains(out, "php artisan cache:clear_") {
		t.Errorf("prompt = %s", out)
	}
	s.SubmitSearch(ctx)
	if s.Searching() {
		t.Error("prompt still open after submit")
	}
	if len(art.execs) != 1 || art.execs[0] != "cache:clear" {
		t.Errorf("execs = %v", art.execs)
	}
	out := plain(s, 100, 20)
	if !strings.Contains(out, "$ php artisan cache:clear") || !strings.Contains(out, "Application cache cleared.") {
		t.Errorf("output = %s", out)
	}

	s.EnterSearch()
	s.AppendSearch('x')
	s.OnBlur()
	if s.Searching() {
		t.Error("blur left the prompt open")
	}
	s.EnterSearch()
	s.SubmitSearch(ctx)
	if len(art.execs) != 1 {
		t.Error("empty command was executed")
	}
}

func TestShellCommandFailure(t *testing.T) {
	ctx := context.Background()
	art := &fakeArtisan{err: errors.New("exit status 1")}
	s := NewShell(testDeps(), art)
	s.EnterSearch()
	s.AppendSearch('z')
	s.SubmitSearch(ctx)
	out := plain(s, 100, 20)
	if !strings.Contains(out, "error: exit status 1") || !strings.Contains(out, "command failed") {
		t.Errorf("output = %s", out)
	}
}

func TestShellRejectsBadCommandLine(t *testing.T) {
	art := &fakeArtisan{err: fmt.Errorf("%w: unterminated quote", adapters.ErrBadCommand)}
	s := NewShell(testDeps(), art)
	s.EnterSearch()
	for _, r := range `migrate --path="x` {
		s.AppendSearch(r)
	}
	s.SubmitSearch(context.Background())

	if len(s.output) != 0 {
		t.Errorf("output = %q, want nothing echoed", s.output)
	}
	if out := plain(s, 100, 20); !strings.Contains(out, "invalid command: unterminated quote") {
		t.Errorf("render = %s", out)
	}
}

func TestShellPromptInputResetsScroll(t *testing.T) {
	art := &fakeArtisan{output: make([]string, 40)}
	s := NewShell(testDeps(), art)
	s.EnterSearch()
	s.AppendSearch('a')
	s.SubmitSearch(context.Background())
	plain(s, 100, 10)

	s.EnterSearch()
	s.Down()
	s.Down()
	if s.View.Selected() == 0 {
		t.Fatal("setup did not move selection")
	}
	if !s.RemoveSearch() {
		t.Error("backspace on an empty prompt reported no change")
	}
	if s.View.Selected() != 0 || s.View.Offset() != 0 {
		t.Errorf("viewport = (%d, %d), want (0, 0)", s.View.Selected(), s.View.Offset())
	}
}

func TestShellOutputIsBounded(t *testing.T) {
	art := &fakeArtisan{output: make([]string, 300)}
	s := NewShell(testDeps(), art)
	for i := 0; i < 3; i++ {
		s.EnterSearch()
		s.AppendSearch('a')
		s.SubmitSearch(context.Background())
	}
	if len(s.output) != maxShellOutput {
		t.Errorf("scrollback = %d lines, want %d", len(s.output), maxShellOutput)
	}
}

func TestSettingsRender(t *testing.T) {
	s := NewSettings(testDeps(), func() ([]byte, error) {
		return []byte("polling_interval = 2.0\ntheme = 'dark'\n"), nil
	})
	out := plain(s, 80, 20)
	if !strings.Contains(out, "polling_interval = 2.0") || !strings.Contains(out, "theme = 'dark'") {
		t.Errorf("render = %s", out)
	}
}

func TestOverviewRender(t *testing.T) {
	ctx := context.Background()
	now := testNow
	deps := testDeps()
	deps.Now = func() time.Time { return now }
	art := &fakeArtisan{}
	o := NewOverview(deps,
		&fakeSystem{stats: adapters.SystemStats{CPUPercent: 42, MemPercent: 50, MemUsed: 1 << 30, MemTotal: 2 << 30, Load1: 0.5, Uptime: 3 * time.Hour}},
		&fakePinger{},
		&fakeQueues{stats: []adapters.QueueStat{{Name: "default", Pending: 3, Failed: 2}, {Name: "emails", Pending: 1}}},
		&fakeWorkers{workers: []adapters.Worker{{PID: 1}, {PID: 2}}},
		art)

	o.Refresh(ctx)
	now = now.Add(10 * time.Second)
	o.Refresh(ctx)
	if art.versions != 1 {
		t.Errorf("version looked up %d times, want 1", art.versions)
	}

	out := plain(o, 100, 30)
	for _, want := range []string{"42.0%", "1.0 GiB / 2.0 GiB", "Laravel Framework 11.9.2", "connected",
		"4 pending, 2 failed across 2 queues", "Workers   2 running", "3.0h"} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q:\n%s", want, out)
		}
	}
}

func TestRenderBar(t *testing.T) {
	if got := renderBar(55.5, 8); got != "55.5%" {
		t.Errorf("narrow bar = %q", got)
	}
	bar := ui.Strip(renderBar(50, 30))
	if ui.VisibleLength(bar) != 30 || !strings.Contains(bar, "50.0%") {
		t.Errorf("bar = %q", bar)
	}
}
