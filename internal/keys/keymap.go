package keys

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// ErrUnknownKey is returned when a keybinding override names an action or a
// key that does not exist.
var ErrUnknownKey = errors.New("unknown key")

// PanelNames are the action suffixes used by the switch_<panel> bindings, in
// tab order.
var PanelNames = []string{
	"overview", "queues", "jobs", "logs", "cache",
	"scheduler", "metrics", "shell", "settings",
}

// Map is the resolved, read-only set of keybindings. It is built once at
// startup and handed to the event loop and the panels; nothing mutates it
// afterwards.
type Map struct {
	Quit     key.Binding
	Refresh  key.Binding
	Search   key.Binding
	NextTab  key.Binding
	PrevTab  key.Binding
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding

	// Panel actions
	RestartWorker key.Binding
	ClearCache    key.Binding
	RetryJob      key.Binding
	RetryAll      key.Binding
	FlushFailed   key.Binding
	ClearLogs     key.Binding
	Run           key.Binding

	// Panels holds one switch binding per tab, in tab order.
	Panels []key.Binding
}

// DefaultMap returns the stock bindings.
func DefaultMap() Map {
	m := Map{
		Quit:     key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		NextTab:  key.NewBinding(key.WithKeys(Tab, Right), key.WithHelp("tab/→", "next")),
		PrevTab:  key.NewBinding(key.WithKeys(ShiftTab, Left), key.WithHelp("←", "prev")),
		Up:       key.NewBinding(key.WithKeys(Up, "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys(Down, "j"), key.WithHelp("↓/j", "down")),
		PageUp:   key.NewBinding(key.WithKeys(PageUp), key.WithHelp("pgup", "page up")),
		PageDown: key.NewBinding(key.WithKeys(PageDown), key.WithHelp("pgdn", "page down")),
		Top:      key.NewBinding(key.WithKeys(Home, "g"), key.WithHelp("home", "top")),
		Bottom:   key.NewBinding(key.WithKeys(End, "G"), key.WithHelp("end", "bottom")),

		RestartWorker: key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "restart workers")),
		ClearCache:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear cache")),
		RetryJob:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "retry job")),
		RetryAll:      key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "retry all")),
		FlushFailed:   key.NewBinding(key.WithKeys("F"), key.WithHelp("F", "flush failed")),
		ClearLogs:     key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "clear log")),
		Run:           key.NewBinding(key.WithKeys(Enter), key.WithHelp("enter", "run")),
	}
	for i := range PanelNames {
		d := fmt.Sprintf("%d", i+1)
		m.Panels = append(m.Panels, key.NewBinding(key.WithKeys(d), key.WithHelp(d, PanelNames[i])))
	}
	return m
}

// actions maps config action names to the binding they override.
func (m *Map) actions() map[string]*key.Binding {
	a := map[string]*key.Binding{
		"quit":           &m.Quit,
		"refresh":        &m.Refresh,
		"search":         &m.Search,
		"search_logs":    &m.Search,
		"next_tab":       &m.NextTab,
		"prev_tab":       &m.PrevTab,
		"navigate_up":    &m.Up,
		"navigate_down":  &m.Down,
		"page_up":        &m.PageUp,
		"page_down":      &m.PageDown,
		"scroll_top":     &m.Top,
		"scroll_bottom":  &m.Bottom,
		"restart_worker": &m.RestartWorker,
		"clear_cache":    &m.ClearCache,
		"retry_job":      &m.RetryJob,
		"retry_all":      &m.RetryAll,
		"flush_failed":   &m.FlushFailed,
		"clear_logs":     &m.ClearLogs,
		"run_command":    &m.Run,
		"enter":          &m.Run,
	}
	for i, name := range PanelNames {
		a["switch_"+name] = &m.Panels[i]
	}
	return a
}

// WithOverrides returns a copy of m with the given action -> keys overrides
// applied. Keys are comma separated; "PageUp", "Home" and friends are
// accepted in any case. Unknown actions fail with ErrUnknownKey.
func (m Map) WithOverrides(overrides map[string]string) (Map, error) {
	out := m
	out.Panels = append([]key.Binding(nil), m.Panels...)
	actions := out.actions()

	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		b, ok := actions[name]
		if !ok {
			return m, fmt.Errorf("keybinding %q: %w", name, ErrUnknownKey)
		}
		var ks []string
		for _, raw := range strings.Split(overrides[name], ",") {
			k, err := NormalizeKey(raw)
			if err != nil {
				return m, fmt.Errorf("keybinding %q: %w", name, err)
			}
			ks = append(ks, k)
		}
		nb := key.NewBinding(key.WithKeys(ks...), key.WithHelp(strings.Join(ks, "/"), b.Help().Desc))
		*b = nb
	}
	return out, nil
}

var namedKeys = map[string]string{
	"up": Up, "down": Down, "left": Left, "right": Right,
	"pageup": PageUp, "pgup": PageUp, "page_up": PageUp,
	"pagedown": PageDown, "pgdown": PageDown, "pgdn": PageDown, "page_down": PageDown,
	"home": Home, "end": End,
	"enter": Enter, "return": Enter,
	"esc": Escape, "escape": Escape,
	"backspace": Backspace, "tab": Tab, "shift+tab": ShiftTab,
	"delete": Delete, "del": Delete,
	"space": "space",
}

// NormalizeKey converts a user-written key name to the name an Event
// reports. Single characters are case sensitive.
func NormalizeKey(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("empty key: %w", ErrUnknownKey)
	}
	if len([]rune(s)) == 1 {
		return s, nil
	}
	lower := strings.ToLower(s)
	if name, ok := namedKeys[lower]; ok {
		return name, nil
	}
	if strings.HasPrefix(lower, "ctrl+") && len(lower) == 6 && lower[5] >= 'a' && lower[5] <= 'z' {
		return lower, nil
	}
	return "", fmt.Errorf("%q: %w", raw, ErrUnknownKey)
}

// Matches reports whether ev triggers any of the given bindings.
func Matches(ev Event, bindings ...key.Binding) bool {
	name := ev.String()
	if name == "" {
		return false
	}
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		for _, k := range b.Keys() {
			if k == name {
				return true
			}
		}
	}
	return false
}

// PanelIndex returns the tab index bound to ev, or -1.
func (m Map) PanelIndex(ev Event) int {
	for i, b := range m.Panels {
		if Matches(ev, b) {
			return i
		}
	}
	return -1
}

// Bindings returns all bindings as action -> keys, sorted by action, for
// display.
func (m Map) Bindings() [][2]string {
	mm := m
	var out [][2]string
	for name, b := range mm.actions() {
		if name == "search_logs" || name == "enter" {
			continue
		}
		out = append(out, [2]string{name, strings.Join(b.Keys(), ", ")})
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}
