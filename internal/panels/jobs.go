package panels

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"

	"github.com/jedarden/frankendash/internal/adapters"
	"github.com/jedarden/frankendash/internal/keys"
	"github.com/jedarden/frankendash/internal/state"
	"github.com/jedarden/frankendash/internal/ui"
)

const (
	jobLimit      = 200
	jobHeaderRows = 3
)

// Jobs lists pending and failed jobs and can retry or flush failures
type Jobs struct {
	ui.Base
	ui.SearchList

	deps Deps
	src  JobSource
	feed *state.Feed[[]adapters.Job]
	note ui.Note
}

// NewJobs creates the jobs panel
func NewJobs(deps Deps, src JobSource) *Jobs {
	return &Jobs{
		Base: ui.NewBase("jobs", "Jobs"),
		deps: deps,
		src:  src,
		feed: state.NewFeed[[]adapters.Job]("jobs", deps.log()),
	}
}

// Refresh fetches recent jobs
func (j *Jobs) Refresh(ctx context.Context) {
	j.feed.Update(j.src.RecentJobs(ctx, jobLimit))
}

// visible returns the jobs matching the search query
func (j *Jobs) visible() []adapters.Job {
	all, _ := j.feed.Data()
	var out []adapters.Job
	for _, job := range all {
		if j.Search.Matches(job.Class, job.Queue, string(job.Status)) {
			out = append(out, job)
		}
	}
	return out
}

// Bindings lists the panel actions
func (j *Jobs) Bindings() []key.Binding {
	k := j.deps.Keys
	return []key.Binding{k.RetryJob, k.RetryAll, k.FlushFailed}
}

// HandleKey runs the retry and flush actions
func (j *Jobs) HandleKey(ctx context.Context, ev keys.Event) bool {
	k := j.deps.Keys
	now := j.deps.now()
	switch {
	case keys.Matches(ev, k.RetryJob):
		jobs := j.visible()
		sel := j.View.Selected()
		if sel >= len(jobs) || jobs[sel].Status != adapters.JobFailed {
			j.note.Set(now, false, "select a failed job to retry")
			return true
		}
		id := jobs[sel].ID
		if err := j.src.RetryFailed(ctx, id); err != nil {
			j.deps.log().Error("retry job", "id", id, "error", err)
			j.note.Set(now, false, "retry failed: "+err.Error())
		} else {
			j.note.Set(now, true, fmt.Sprintf("job %d queued for retry", id))
		}
	case keys.Matches(ev, k.RetryAll):
		n, err := j.src.RetryAllFailed(ctx)
		if err != nil {
			j.deps.log().Error("retry all jobs", "error", err)
			j.note.Set(now, false, "retry failed: "+err.Error())
		} else {
			j.note.Set(now, true, fmt.Sprintf("%d failed jobs queued for retry", n))
		}
	case keys.Matches(ev, k.FlushFailed):
		n, err := j.src.FlushFailed(ctx)
		if err != nil {
			j.deps.log().Error("flush failed jobs", "error", err)
			j.note.Set(now, false, "flush failed: "+err.Error())
		} else {
			j.note.Set(now, true, fmt.Sprintf("%d failed jobs deleted", n))
		}
	default:
		return false
	}
	j.Refresh(ctx)
	return true
}

// Measure sizes the viewport to the filtered job list
func (j *Jobs) Measure(width, height int) {
	j.View.SetDimensions(len(j.visible()), listCapacity(height, jobHeaderRows))
}

// Render draws the job table
func (j *Jobs) Render(width, height int) []string {
	t := j.deps.Theme
	now := j.deps.now()

	status := j.SearchLine(t)
	if status == "" {
		status = j.note.Line(now, t)
	}
	lines := []string{
		status,
		"",
		t.Bold.Render(fmt.Sprintf("  %-8s %-10s %-12s %-14s %s", "ID", "STATUS", "QUEUE", "WHEN", "JOB")),
	}
	if !j.feed.OK() {
		return append(lines, feedNoData(t, j.feed))
	}

	jobs := j.visible()
	if len(jobs) == 0 {
		if j.Search.Query() != "" {
			return append(lines, t.Muted.Render("No jobs match \""+j.Search.Query()+"\""))
		}
		return append(lines, t.Muted.Render("No jobs"))
	}
	rows := make([]string, len(jobs))
	for i, job := range jobs {
		rows[i] = fmt.Sprintf("%-8d %s %-12s %-14s %s",
			job.ID, j.statusText(job.Status), job.Queue, ago(job.At, now), job.Class)
	}
	return append(lines, renderRows(&j.View, rows, t, width)...)
}

func (j *Jobs) statusText(s adapters.JobStatus) string {
	t := j.deps.Theme
	text := fmt.Sprintf("%-10s", s)
	switch s {
	case adapters.JobFailed:
		return t.Error.Render(text)
	case adapters.JobProcessing:
		return t.Warning.Render(text)
	default:
		return t.Info.Render(text)
	}
}
