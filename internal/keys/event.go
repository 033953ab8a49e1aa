package keys

import "unicode/utf8"

// Kind tags which variant of Event is populated
type Kind int

const (
	// KindChar is a printable character
	KindChar Kind = iota
	// KindControl is a control key such as Enter or Ctrl+C
	KindControl
	// KindNamed is a navigation key decoded from an escape sequence
	KindNamed
)

// Control and named key identifiers. The strings double as the key names used
// by bindings, so "pgup" in a config file matches Event{Name: PageUp}.
const (
	CtrlC     = "ctrl+c"
	Enter     = "enter"
	Escape    = "esc"
	Backspace = "backspace"
	Tab       = "tab"

	Up       = "up"
	Down     = "down"
	Left     = "left"
	Right    = "right"
	PageUp   = "pgup"
	PageDown = "pgdown"
	Home     = "home"
	End      = "end"
	ShiftTab = "shift+tab"
	Delete   = "delete"
)

// Event is one decoded keystroke
type Event struct {
	Kind Kind
	Rune rune
	Name string
}

// Char builds a printable character event
func Char(r rune) Event { return Event{Kind: KindChar, Rune: r} }

// Control builds a control key event
func Control(name string) Event { return Event{Kind: KindControl, Name: name} }

// Named builds a navigation key event
func Named(name string) Event { return Event{Kind: KindNamed, Name: name} }

// String returns the binding name of the event: the character itself for
// KindChar, the key name otherwise.
func (e Event) String() string {
	if e.Kind == KindChar {
		if e.Rune == ' ' {
			return "space"
		}
		if !utf8.ValidRune(e.Rune) {
			return ""
		}
		return string(e.Rune)
	}
	return e.Name
}

// IsChar reports whether the event is a printable character
func (e Event) IsChar() bool { return e.Kind == KindChar }

// Is reports whether the event carries the given control or named key
func (e Event) Is(name string) bool { return e.Kind != KindChar && e.Name == name }
