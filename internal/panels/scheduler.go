package panels

import (
	"context"
	"strings"
	"time"

	"github.com/jedarden/frankendash/internal/state"
	"github.com/jedarden/frankendash/internal/ui"
)

// scheduleTTL limits how often `schedule:list` is run while the panel is in
// the background.
const scheduleTTL = 30 * time.Second

const scheduleHeaderRows = 2

// Scheduler lists the scheduled tasks reported by artisan
type Scheduler struct {
	ui.Base
	ui.ScrollList
	ui.NoSearch

	deps    Deps
	artisan CommandRunner
	feed    *state.Feed[[]string]
	fetched time.Time
	stale   bool
}

// NewScheduler creates the scheduler panel
func NewScheduler(deps Deps, artisan CommandRunner) *Scheduler {
	return &Scheduler{
		Base:    ui.NewBase("scheduler", "Scheduler"),
		deps:    deps,
		artisan: artisan,
		feed:    state.NewFeed[[]string]("scheduler", deps.log()),
		stale:   true,
	}
}

// OnFocus forces a fresh listing on the next refresh
func (s *Scheduler) OnFocus() { s.stale = true }

// Refresh runs schedule:list when the cached listing is stale
func (s *Scheduler) Refresh(ctx context.Context) {
	now := s.deps.now()
	if !s.stale && now.Sub(s.fetched) < scheduleTTL {
		return
	}
	s.stale = false
	s.fetched = now
	lines, err := s.artisan.Run(ctx, "schedule:list")
	var tasks []string
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			tasks = append(tasks, strings.TrimRight(l, " "))
		}
	}
	s.feed.Update(tasks, err)
}

// Measure sizes the viewport to the listing
func (s *Scheduler) Measure(width, height int) {
	tasks, _ := s.feed.Data()
	s.View.SetDimensions(len(tasks), listCapacity(height, scheduleHeaderRows))
}

// Render draws the listing
func (s *Scheduler) Render(width, height int) []string {
	t := s.deps.Theme
	lines := []string{title(t, "Scheduled tasks"), ""}
	tasks, ok := s.feed.Data()
	if !ok {
		return append(lines, feedNoData(t, s.feed))
	}
	if len(tasks) == 0 {
		return append(lines, t.Muted.Render("No scheduled tasks"))
	}
	return append(lines, renderRows(&s.View, tasks, t, width)...)
}
