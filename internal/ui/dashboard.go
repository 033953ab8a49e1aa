package ui

import (
	"context"
	"fmt"
	"log/slog"
)

// Dashboard owns the panel list and the single focused index.
type Dashboard struct {
	panels  []Panel
	focused int
	log     *slog.Logger
}

// NewDashboard creates a dashboard focused on the first panel
func NewDashboard(log *slog.Logger, panels ...Panel) *Dashboard {
	if log == nil {
		log = slog.Default()
	}
	d := &Dashboard{panels: panels, log: log}
	if len(panels) > 0 {
		panels[0].OnFocus()
	}
	return d
}

// Panels returns the panels in tab order
func (d *Dashboard) Panels() []Panel { return d.panels }

// Labels returns the tab labels in order
func (d *Dashboard) Labels() []string {
	labels := make([]string, len(d.panels))
	for i, p := range d.panels {
		labels[i] = p.Label()
	}
	return labels
}

// Focused returns the focused index
func (d *Dashboard) Focused() int { return d.focused }

// Active returns the focused panel, or nil when there are none
func (d *Dashboard) Active() Panel {
	if len(d.panels) == 0 {
		return nil
	}
	return d.panels[d.focused]
}

// Focus moves focus to panel i. It reports whether focus changed.
func (d *Dashboard) Focus(i int) bool {
	if i < 0 || i >= len(d.panels) || i == d.focused {
		return false
	}
	d.panels[d.focused].OnBlur()
	d.focused = i
	d.panels[d.focused].OnFocus()
	return true
}

// Next focuses the next panel, wrapping around
func (d *Dashboard) Next() bool {
	if len(d.panels) < 2 {
		return false
	}
	return d.Focus((d.focused + 1) % len(d.panels))
}

// Prev focuses the previous panel, wrapping around
func (d *Dashboard) Prev() bool {
	if len(d.panels) < 2 {
		return false
	}
	return d.Focus((d.focused - 1 + len(d.panels)) % len(d.panels))
}

// Refresh asks every panel to fetch fresh data. A panel that panics is
// logged and skipped.
func (d *Dashboard) Refresh(ctx context.Context) {
	for _, p := range d.panels {
		d.refreshOne(ctx, p)
	}
}

func (d *Dashboard) refreshOne(ctx context.Context, p Panel) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("panel refresh panicked", "panel", p.ID(), "panic", fmt.Sprint(r))
		}
	}()
	p.Refresh(ctx)
}
