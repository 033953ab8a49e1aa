package panels

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jedarden/frankendash/internal/adapters"
	"github.com/jedarden/frankendash/internal/state"
	"github.com/jedarden/frankendash/internal/ui"
)

// versionTTL limits how often the framework version is looked up
const versionTTL = time.Minute

// Overview summarizes the host and the application
type Overview struct {
	ui.Base
	ui.NoNavigation
	ui.NoSearch

	deps    Deps
	system  SystemSource
	db      Pinger
	queues  QueueSource
	workers WorkerSource
	artisan CommandRunner

	stats       adapters.SystemStats
	dbFeed      *state.Feed[bool]
	queueFeed   *state.Feed[[]adapters.QueueStat]
	workerFeed  *state.Feed[[]adapters.Worker]
	version     string
	versionAt   time.Time
	versionErr  error
	refreshedAt time.Time
}

// NewOverview creates the overview panel
func NewOverview(deps Deps, system SystemSource, db Pinger, queues QueueSource, workers WorkerSource, artisan CommandRunner) *Overview {
	log := deps.log()
	return &Overview{
		Base:       ui.NewBase("overview", "Overview"),
		deps:       deps,
		system:     system,
		db:         db,
		queues:     queues,
		workers:    workers,
		artisan:    artisan,
		dbFeed:     state.NewFeed[bool]("database", log),
		queueFeed:  state.NewFeed[[]adapters.QueueStat]("overview queues", log),
		workerFeed: state.NewFeed[[]adapters.Worker]("overview workers", log),
	}
}

// Refresh collects host metrics and application status
func (o *Overview) Refresh(ctx context.Context) {
	o.refreshedAt = o.deps.now()
	o.stats = o.system.Collect(ctx)

	err := o.db.Ping(ctx)
	o.dbFeed.Update(err == nil, err)

	o.queueFeed.Update(o.queues.Queues(ctx))
	o.workerFeed.Update(o.workers.Workers(ctx))

	if o.versionAt.IsZero() || o.refreshedAt.Sub(o.versionAt) >= versionTTL {
		o.versionAt = o.refreshedAt
		o.version, o.versionErr = o.artisan.Version(ctx)
	}
}

// Render draws the overview
func (o *Overview) Render(width, height int) []string {
	t := o.deps.Theme
	var lines []string
	lines = append(lines, title(t, "System"))

	if o.stats.CPUError != nil {
		lines = append(lines, "CPU     "+noDataLine(t, o.stats.CPUError))
	} else {
		lines = append(lines, "CPU     "+renderBar(o.stats.CPUPercent, min(width-8, 40)))
	}
	if o.stats.MemError != nil {
		lines = append(lines, "Memory  "+noDataLine(t, o.stats.MemError))
	} else {
		lines = append(lines, "Memory  "+renderBar(o.stats.MemPercent, min(width-8, 40))+
			fmt.Sprintf(" %s / %s", humanize.IBytes(o.stats.MemUsed), humanize.IBytes(o.stats.MemTotal)))
	}
	if o.stats.LoadError != nil {
		lines = append(lines, "Load    "+noDataLine(t, o.stats.LoadError))
	} else {
		lines = append(lines, fmt.Sprintf("Load    %.2f %.2f %.2f", o.stats.Load1, o.stats.Load5, o.stats.Load15))
	}
	if o.stats.UptimeError == nil {
		lines = append(lines, "Uptime  "+formatDuration(o.stats.Uptime))
	}

	lines = append(lines, "", title(t, "Application"))
	if o.versionErr != nil {
		lines = append(lines, "Version   "+noDataLine(t, o.versionErr))
	} else {
		lines = append(lines, "Version   "+o.version)
	}
	if _, ok := o.dbFeed.Data(); ok {
		lines = append(lines, "Database  "+t.Success.Render("connected"))
	} else {
		lines = append(lines, "Database  "+feedNoData(t, o.dbFeed))
	}

	if qs, ok := o.queueFeed.Data(); ok {
		pending, failed := 0, 0
		for _, q := range qs {
			pending += q.Pending
			failed += q.Failed
		}
		failedText := fmt.Sprintf("%d failed", failed)
		if failed > 0 {
			failedText = t.Error.Render(failedText)
		}
		lines = append(lines, fmt.Sprintf("Jobs      %d pending, %s across %d queues", pending, failedText, len(qs)))
	} else {
		lines = append(lines, "Jobs      "+feedNoData(t, o.queueFeed))
	}
	if ws, ok := o.workerFeed.Data(); ok {
		lines = append(lines, fmt.Sprintf("Workers   %d running", len(ws)))
	} else {
		lines = append(lines, "Workers   "+feedNoData(t, o.workerFeed))
	}

	if !o.refreshedAt.IsZero() {
		lines = append(lines, "", t.Muted.Render("Last update: "+o.refreshedAt.Format("15:04:05")))
	}
	return lines
}

// renderBar renders a progress bar with percentage inside
func renderBar(percent float64, width int) string {
	if width < 10 {
		return fmt.Sprintf("%.1f%%", percent)
	}

	barWidth := width - 2
	filledWidth := int(float64(barWidth) * percent / 100.0)
	filledWidth = max(0, min(filledWidth, barWidth))

	barRunes := []rune(strings.Repeat("█", filledWidth) + strings.Repeat("░", barWidth-filledWidth))

	// Overlay percentage text in the middle
	text := []rune(fmt.Sprintf(" %.1f%% ", percent))
	pos := max(0, (barWidth-len(text))/2)
	for i, r := range text {
		if pos+i < len(barRunes) {
			barRunes[pos+i] = r
		}
	}

	style := lipgloss.NewStyle().Foreground(ui.StatusColor(percent, 60, 80))
	return style.Render("[" + string(barRunes) + "]")
}
