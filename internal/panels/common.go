// Package panels contains the dashboard tabs. Each panel keeps its own
// viewport and search state and reads data from adapters through a
// state.Feed, so a failed fetch renders as an explicit "no data" line.
package panels

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jedarden/frankendash/internal/adapters"
	"github.com/jedarden/frankendash/internal/keys"
	"github.com/jedarden/frankendash/internal/state"
	"github.com/jedarden/frankendash/internal/ui"
)

// NoData is shown in place of content whose fetch failed.
const NoData = "no data"

// Deps are shared by every panel
type Deps struct {
	Theme  ui.Theme
	Keys   keys.Map
	Logger *slog.Logger
	Now    func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

func (d Deps) log() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

// noDataLine renders the empty state for a failed fetch
func noDataLine(theme ui.Theme, err error) string {
	if err == nil {
		return theme.Muted.Render("-- " + NoData + " --")
	}
	reason := err.Error()
	if errors.Is(err, adapters.ErrUnavailable) {
		reason = "source unavailable"
	}
	return theme.Muted.Render("-- "+NoData+" --") + " " + theme.Error.Render(reason)
}

// feedNoData renders the empty state for a failed feed, marking sources that
// have failed several polls in a row as offline.
func feedNoData[T any](theme ui.Theme, f *state.Feed[T]) string {
	line := noDataLine(theme, f.LastError)
	if f.IsOffline() {
		line += " " + theme.Muted.Render(fmt.Sprintf("(offline, %d failed polls)", f.ConsecutiveFailures))
	}
	return line
}

// listChrome is the number of rows a list spends on its scroll indicator.
const listChrome = 1

// listCapacity returns how many rows a list gets in height after header rows
func listCapacity(height, header int) int {
	c := height - header - listChrome
	if c < 1 {
		return 1
	}
	return c
}

// renderRows draws the visible window of rows with the selection marked and
// a trailing scroll indicator line.
func renderRows(v *ui.Viewport, rows []string, theme ui.Theme, width int) []string {
	start, end := v.Window()
	out := make([]string, 0, end-start+1)
	for i := start; i < end; i++ {
		if i == v.Selected() {
			out = append(out, theme.Selected.Render(ui.Fit("▶ "+ui.Strip(rows[i]), width)))
		} else {
			out = append(out, "  "+rows[i])
		}
	}
	out = append(out, scrollLine(v, theme))
	return out
}

// scrollLine reports how many rows are hidden above and below
func scrollLine(v *ui.Viewport, theme ui.Theme) string {
	var parts []string
	if n := v.Above(); n > 0 {
		parts = append(parts, fmt.Sprintf("↑ %d more above", n))
	}
	if n := v.Below(); n > 0 {
		parts = append(parts, fmt.Sprintf("↓ %d more below", n))
	}
	if len(parts) == 0 {
		if v.Total() > 0 {
			return theme.Muted.Render(fmt.Sprintf("%d of %d", v.Selected()+1, v.Total()))
		}
		return ""
	}
	return theme.Muted.Render(strings.Join(parts, "  ·  ") + fmt.Sprintf("  (%d of %d)", v.Selected()+1, v.Total()))
}

// ago formats a timestamp relative to now
func ago(t, now time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// formatDuration renders a duration compactly
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	} else if d < time.Hour {
		return fmt.Sprintf("%.0fm", d.Minutes())
	} else if d < 24*time.Hour {
		return fmt.Sprintf("%.1fh", d.Hours())
	}
	return fmt.Sprintf("%.1fd", d.Hours()/24)
}

// title renders a panel heading
func title(theme ui.Theme, s string) string {
	return theme.Title.Render(s)
}
