package panels

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/jedarden/frankendash/internal/adapters"
	"github.com/jedarden/frankendash/internal/keys"
	"github.com/jedarden/frankendash/internal/state"
	"github.com/jedarden/frankendash/internal/ui"
)

const logHeaderRows = 2

// Logs shows the newest application log entries, filterable by search
type Logs struct {
	ui.Base
	ui.SearchList

	deps   Deps
	src    LogSource
	levels map[string]bool
	limit  int
	feed   *state.Feed[[]adapters.LogEntry]
	note   ui.Note
}

// NewLogs creates the logs panel. Only entries whose level is in levels are
// shown; an empty list shows everything.
func NewLogs(deps Deps, src LogSource, levels []string) *Logs {
	l := &Logs{
		Base:  ui.NewBase("logs", "Logs"),
		deps:  deps,
		src:   src,
		limit: adapters.DefaultLogLimit,
		feed:  state.NewFeed[[]adapters.LogEntry]("logs", deps.log()),
	}
	if len(levels) > 0 {
		l.levels = make(map[string]bool, len(levels))
		for _, lv := range levels {
			l.levels[strings.ToLower(lv)] = true
		}
	}
	return l
}

// Refresh reads the newest entries
func (l *Logs) Refresh(ctx context.Context) {
	l.feed.Update(l.src.Recent(l.limit))
}

func (l *Logs) visible() []adapters.LogEntry {
	all, _ := l.feed.Data()
	var out []adapters.LogEntry
	for _, e := range all {
		if l.levels != nil && !l.levels[e.Level] {
			continue
		}
		if l.Search.Matches(e.Message, e.Level, e.Channel) {
			out = append(out, e)
		}
	}
	return out
}

// Bindings lists the panel actions
func (l *Logs) Bindings() []key.Binding {
	return []key.Binding{l.deps.Keys.ClearLogs}
}

// HandleKey clears the log file
func (l *Logs) HandleKey(ctx context.Context, ev keys.Event) bool {
	if !keys.Matches(ev, l.deps.Keys.ClearLogs) {
		return false
	}
	if err := l.src.Clear(); err != nil {
		l.deps.log().Error("clear log", "error", err)
		l.note.Set(l.deps.now(), false, "clear failed: "+err.Error())
	} else {
		l.note.Set(l.deps.now(), true, "log cleared")
		l.View.Reset()
	}
	l.Refresh(ctx)
	return true
}

// Measure sizes the viewport to the filtered entries
func (l *Logs) Measure(width, height int) {
	l.View.SetDimensions(len(l.visible()), listCapacity(height, logHeaderRows))
}

// Render draws the log list, one entry per row
func (l *Logs) Render(width, height int) []string {
	t := l.deps.Theme
	status := l.SearchLine(t)
	if status == "" {
		status = l.note.Line(l.deps.now(), t)
	}
	lines := []string{status, ""}

	if !l.feed.OK() {
		return append(lines, feedNoData(t, l.feed))
	}
	entries := l.visible()
	if len(entries) == 0 {
		if l.Search.Query() != "" {
			return append(lines, t.Muted.Render("No logs match \""+l.Search.Query()+"\""))
		}
		return append(lines, t.Muted.Render("No log entries"))
	}

	rows := make([]string, len(entries))
	for i, e := range entries {
		ts := e.Timestamp
		if !e.Time.IsZero() {
			ts = e.Time.Format("01-02 15:04:05")
		}
		rows[i] = fmt.Sprintf("%s %s %s %s",
			t.Muted.Render(ts),
			l.levelStyle(e.Level).Render(fmt.Sprintf("%-9s", strings.ToUpper(e.Level))),
			t.Muted.Render(e.Channel),
			e.FirstLine())
	}
	return append(lines, renderRows(&l.View, rows, t, width)...)
}

func (l *Logs) levelStyle(level string) lipgloss.Style {
	t := l.deps.Theme
	switch level {
	case "emergency", "alert", "critical", "error":
		return t.Error
	case "warning":
		return t.Warning
	case "notice", "info":
		return t.Info
	default:
		return t.Muted
	}
}
