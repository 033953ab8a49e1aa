package ui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"

	"github.com/jedarden/frankendash/internal/keys"
)

const (
	// MinHotkeyHeight is the smallest terminal height that still gets a
	// hotkey bar.
	MinHotkeyHeight = 10

	clearLine = "\x1b[K"
)

// ContentHeight is the number of rows left for the panel body.
func ContentHeight(height int) int {
	h := height - 2
	if height >= MinHotkeyHeight {
		h--
	}
	if h < 0 {
		return 0
	}
	return h
}

// ComposeFrame lays out one full screen: tab bar, rule, panel block padded
// with blank rows, and the hotkey legend on terminals tall enough for it.
// Every row is addressed absolutely, fitted to the screen width and followed
// by a clear-to-end-of-line so nothing from a previous frame survives.
func ComposeFrame(screen ScreenMetrics, tabLine, rule string, block []string, legend string) string {
	w, h := screen.Width, screen.Height
	rows := make([]string, 0, h)
	rows = append(rows, tabLine, rule)

	body := ContentHeight(h)
	for i := 0; i < body; i++ {
		if i < len(block) {
			rows = append(rows, block[i])
		} else {
			rows = append(rows, "")
		}
	}
	if h >= MinHotkeyHeight {
		rows = append(rows, legend)
	}
	rows = rows[:min(len(rows), h)]

	var b strings.Builder
	for i, row := range rows {
		fmt.Fprintf(&b, "\x1b[%d;1H", i+1)
		b.WriteString(Fit(row, w))
		b.WriteString(clearLine)
	}
	return b.String()
}

// Compositor renders the dashboard into frames.
type Compositor struct {
	theme  Theme
	keymap keys.Map
	help   help.Model
	log    *slog.Logger
}

// NewCompositor creates a Compositor
func NewCompositor(theme Theme, keymap keys.Map, log *slog.Logger) *Compositor {
	if log == nil {
		log = slog.Default()
	}
	return &Compositor{theme: theme, keymap: keymap, help: help.New(), log: log}
}

// Frame renders the focused panel of d at the given size.
func (c *Compositor) Frame(screen ScreenMetrics, d *Dashboard) string {
	tabLine := RenderTabBar(d.Labels(), d.Focused(), screen.Width, c.theme)
	rule := c.theme.Rule.Render(strings.Repeat("─", screen.Width))

	var block []string
	var legend string
	if p := d.Active(); p != nil {
		block = c.renderPanel(p, screen.Width, ContentHeight(screen.Height))
		legend = c.legend(p, screen.Width)
	}
	return ComposeFrame(screen, tabLine, rule, block, legend)
}

// renderPanel measures and renders p, replacing the whole block with a
// single error line if the panel panics.
func (c *Compositor) renderPanel(p Panel, width, height int) (lines []string) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("panel render panicked", "panel", p.ID(), "panic", fmt.Sprint(r))
			lines = []string{c.theme.Error.Render(fmt.Sprintf("%s: render failed: %v", p.Label(), r))}
		}
	}()
	p.Measure(width, height)
	return p.Render(width, height)
}

func (c *Compositor) legend(p Panel, width int) string {
	var bindings []key.Binding
	if p.Searching() {
		bindings = append(bindings,
			key.NewBinding(key.WithKeys(keys.Escape), key.WithHelp("esc", "cancel")),
			key.NewBinding(key.WithKeys(keys.Enter), key.WithHelp("enter", "done")),
			key.NewBinding(key.WithKeys(keys.CtrlC), key.WithHelp("ctrl+c", "quit")),
		)
	} else {
		bindings = append(bindings, c.keymap.Quit, c.keymap.Refresh, c.keymap.NextTab)
		if p.SupportsSearch() {
			bindings = append(bindings, c.keymap.Search)
		}
		bindings = append(bindings, p.Bindings()...)
	}
	h := c.help
	h.Width = width
	return Center(h.ShortHelpView(bindings), width)
}
