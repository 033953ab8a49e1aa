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

// queueHeaderRows is the number of rows above the queue list
const queueHeaderRows = 4

// Queues lists queues with pending and failed counts and the running workers
type Queues struct {
	ui.Base
	ui.ScrollList
	ui.NoSearch

	deps    Deps
	queues  QueueSource
	workers WorkerSource
	artisan CommandRunner

	queueFeed  *state.Feed[[]adapters.QueueStat]
	workerFeed *state.Feed[[]adapters.Worker]
	note       ui.Note
}

// NewQueues creates the queues panel
func NewQueues(deps Deps, queues QueueSource, workers WorkerSource, artisan CommandRunner) *Queues {
	return &Queues{
		Base:       ui.NewBase("queues", "Queues"),
		deps:       deps,
		queues:     queues,
		workers:    workers,
		artisan:    artisan,
		queueFeed:  state.NewFeed[[]adapters.QueueStat]("queues", deps.log()),
		workerFeed: state.NewFeed[[]adapters.Worker]("workers", deps.log()),
	}
}

// Refresh fetches queue counts and workers
func (q *Queues) Refresh(ctx context.Context) {
	q.queueFeed.Update(q.queues.Queues(ctx))
	q.workerFeed.Update(q.workers.Workers(ctx))
}

// Bindings lists the panel actions
func (q *Queues) Bindings() []key.Binding {
	return []key.Binding{q.deps.Keys.RestartWorker}
}

// HandleKey runs the restart-workers action
func (q *Queues) HandleKey(ctx context.Context, ev keys.Event) bool {
	if !keys.Matches(ev, q.deps.Keys.RestartWorker) {
		return false
	}
	_, err := q.artisan.Run(ctx, "queue:restart")
	if err != nil {
		q.deps.log().Error("restart workers", "error", err)
		q.note.Set(q.deps.now(), false, "restart failed: "+err.Error())
	} else {
		q.deps.log().Info("workers restart signalled")
		q.note.Set(q.deps.now(), true, "workers will restart after their current job")
	}
	return true
}

func (q *Queues) rows() []string {
	qs, ok := q.queueFeed.Data()
	if !ok {
		return nil
	}
	t := q.deps.Theme
	rows := make([]string, len(qs))
	for i, s := range qs {
		failed := fmt.Sprintf("%6d", s.Failed)
		if s.Failed > 0 {
			failed = t.Error.Render(failed)
		}
		rows[i] = fmt.Sprintf("%-24s %8d %8d %s", s.Name, s.Pending, s.Reserved, failed)
	}
	return rows
}

// Measure sizes the viewport to the queue list
func (q *Queues) Measure(width, height int) {
	q.View.SetDimensions(len(q.rows()), listCapacity(height, queueHeaderRows))
}

// Render draws the worker summary and the queue table
func (q *Queues) Render(width, height int) []string {
	t := q.deps.Theme
	var lines []string

	if ws, ok := q.workerFeed.Data(); ok {
		summary := fmt.Sprintf("Workers: %d running", len(ws))
		for i, w := range ws {
			if i == 3 {
				summary += fmt.Sprintf(" (+%d)", len(ws)-3)
				break
			}
			summary += fmt.Sprintf("  pid %d %s", w.PID, ago(w.Started, q.deps.now()))
		}
		if len(ws) == 0 {
			summary = t.Warning.Render("Workers: none running")
		}
		lines = append(lines, summary)
	} else {
		lines = append(lines, "Workers: "+feedNoData(t, q.workerFeed))
	}
	lines = append(lines, q.note.Line(q.deps.now(), t))
	lines = append(lines, "", t.Bold.Render(fmt.Sprintf("  %-24s %8s %8s %6s", "QUEUE", "PENDING", "RUNNING", "FAILED")))

	rows := q.rows()
	if !q.queueFeed.OK() {
		return append(lines, feedNoData(t, q.queueFeed))
	}
	return append(lines, renderRows(&q.View, rows, t, width)...)
}
