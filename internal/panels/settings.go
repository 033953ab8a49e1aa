package panels

import (
	"github.com/jedarden/frankendash/internal/ui"
)

const settingsHeaderRows = 2

// Settings shows the effective configuration as TOML
type Settings struct {
	ui.Base
	ui.ScrollList
	ui.NoSearch

	deps  Deps
	lines []string
	err   error
}

// NewSettings creates the settings panel. encode renders the configuration.
func NewSettings(deps Deps, encode func() ([]byte, error)) *Settings {
	s := &Settings{Base: ui.NewBase("settings", "Settings"), deps: deps}
	data, err := encode()
	if err != nil {
		s.err = err
		return s
	}
	s.lines = ui.SplitLines(string(data))
	return s
}

// Measure sizes the viewport to the configuration text
func (s *Settings) Measure(width, height int) {
	s.View.SetDimensions(len(s.lines), listCapacity(height, settingsHeaderRows))
}

// Render draws the configuration
func (s *Settings) Render(width, height int) []string {
	t := s.deps.Theme
	lines := []string{title(t, "Effective configuration"), ""}
	if s.err != nil {
		return append(lines, noDataLine(t, s.err))
	}
	return append(lines, renderRows(&s.View, s.lines, t, width)...)
}
