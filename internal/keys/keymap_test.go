package keys

import (
	"errors"
	"testing"

	"github.com/charmbracelet/bubbles/key"
)

func TestDefaultMapMatches(t *testing.T) {
	m := DefaultMap()
	tests := []struct {
		name    string
		ev      Event
		binding key.Binding
		want    bool
	}{
		{"quit", Char('q'), m.Quit, true},
		{"down arrow", Named(Down), m.Down, true},
		{"down vim", Char('j'), m.Down, true},
		{"page up", Named(PageUp), m.PageUp, true},
		{"next tab", Control(Tab), m.NextTab, true},
		{"prev tab", Named(ShiftTab), m.PrevTab, true},
		{"restart worker", Char('R'), m.RestartWorker, true},
		{"refresh is case sensitive", Char('R'), m.Refresh, false},
		{"x does not quit", Char('x'), m.Quit, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(tt.ev, tt.binding); got != tt.want {
				t.Errorf("Matches(%v, %v) = %v, want %v", tt.ev, tt.binding.Keys(), got, tt.want)
			}
		})
	}
}

func TestMatchesSkipsDisabled(t *testing.T) {
	b := key.NewBinding(key.WithKeys("q"))
	b.SetEnabled(false)
	if Matches(Char('q'), b) {
		t.Error("disabled binding matched")
	}
}

func TestPanelIndex(t *testing.T) {
	m := DefaultMap()
	if got := m.PanelIndex(Char('1')); got != 0 {
		t.Errorf("PanelIndex('1') = %d, want 0", got)
	}
	if got := m.PanelIndex(Char('9')); got != 8 {
		t.Errorf("PanelIndex('9') = %d, want 8", got)
	}
	if got := m.PanelIndex(Char('0')); got != -1 {
		t.Errorf("PanelIndex('0') = %d, want -1", got)
	}
}

func TestWithOverrides(t *testing.T) {
	base := DefaultMap()
	m, err := base.WithOverrides(map[string]string{
		"quit":            "x, ctrl+q",
		"page_down":       "PageDown",
		"switch_settings": "0",
	})
	if err != nil {
		t.Fatalf("WithOverrides() error = %v", err)
	}
	if !Matches(Char('x'), m.Quit) || !Matches(Control("ctrl+q"), m.Quit) {
		t.Errorf("quit keys = %v, want [x ctrl+q]", m.Quit.Keys())
	}
	if Matches(Char('q'), m.Quit) {
		t.Error("q should no longer quit")
	}
	if !Matches(Named(PageDown), m.PageDown) {
		t.Errorf("page_down keys = %v", m.PageDown.Keys())
	}
	if got := m.PanelIndex(Char('0')); got != 8 {
		t.Errorf("PanelIndex('0') = %d, want 8", got)
	}
	if !Matches(Char('q'), base.Quit) || base.PanelIndex(Char('9')) != 8 {
		t.Error("overrides modified the base map")
	}
}

func TestWithOverridesErrors(t *testing.T) {
	tests := map[string]map[string]string{
		"unknown action": {"fly": "f"},
		"unknown key":    {"quit": "hyper+q"},
		"empty key":      {"quit": "q,"},
	}
	for name, overrides := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DefaultMap().WithOverrides(overrides)
			if !errors.Is(err, ErrUnknownKey) {
				t.Errorf("WithOverrides(%v) error = %v, want ErrUnknownKey", overrides, err)
			}
		})
	}
}

func TestNormalizeKey(t *testing.T) {
	tests := map[string]string{
		"PageUp":    PageUp,
		"pgdn":      PageDown,
		"Home":      Home,
		"Enter":     Enter,
		"Escape":    Escape,
		"R":         "R",
		" / ":       "/",
		"Ctrl+X":    "ctrl+x",
		"shift+tab": ShiftTab,
	}
	for in, want := range tests {
		got, err := NormalizeKey(in)
		if err != nil || got != want {
			t.Errorf("NormalizeKey(%q) = %q, %v, want %q", in, got, err, want)
		}
	}
}
