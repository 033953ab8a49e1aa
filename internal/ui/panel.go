package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"

	"github.com/jedarden/frankendash/internal/keys"
)

// Navigator moves a panel's selection.
type Navigator interface {
	Up()
	Down()
	PageUp()
	PageDown()
	Home()
	End()
}

// Searcher is the text-entry capability of a panel. Panels without list
// content report SupportsSearch false and ignore the rest.
type Searcher interface {
	SupportsSearch() bool
	Searching() bool
	EnterSearch()
	ExitSearch()
	// SubmitSearch is called on Enter while searching.
	SubmitSearch(ctx context.Context)
	AppendSearch(r rune) bool
	RemoveSearch() bool
}

// Panel is one tab of the dashboard.
//
// Measure is called with the content area size before every Render and is
// the only place a panel updates its viewport dimensions. Render must not
// change navigation state.
type Panel interface {
	ID() string
	Label() string
	Measure(width, height int)
	Render(width, height int) []string
	OnFocus()
	OnBlur()
	Navigator
	Searcher
	HandleKey(ctx context.Context, ev keys.Event) bool
	Bindings() []key.Binding
	Refresh(ctx context.Context)
}

// Base provides identity and no-op lifecycle hooks for panels.
type Base struct {
	id    string
	label string
}

// NewBase creates a Base
func NewBase(id, label string) Base { return Base{id: id, label: label} }

func (b Base) ID() string                               { return b.id }
func (b Base) Label() string                            { return b.label }
func (Base) OnFocus()                                   {}
func (Base) OnBlur()                                    {}
func (Base) HandleKey(context.Context, keys.Event) bool { return false }
func (Base) Bindings() []key.Binding                    { return nil }
func (Base) Refresh(context.Context)                    {}
func (Base) Measure(int, int)                           {}

// NoNavigation is embedded by panels without a list.
type NoNavigation struct{}

func (NoNavigation) Up()       {}
func (NoNavigation) Down()     {}
func (NoNavigation) PageUp()   {}
func (NoNavigation) PageDown() {}
func (NoNavigation) Home()     {}
func (NoNavigation) End()      {}

// NoSearch is embedded by panels that cannot be searched.
type NoSearch struct{}

func (NoSearch) SupportsSearch() bool         { return false }
func (NoSearch) Searching() bool              { return false }
func (NoSearch) EnterSearch()                 {}
func (NoSearch) ExitSearch()                  {}
func (NoSearch) SubmitSearch(context.Context) {}
func (NoSearch) AppendSearch(rune) bool       { return false }
func (NoSearch) RemoveSearch() bool           { return false }

// ScrollList gives a panel a viewport and navigation.
type ScrollList struct {
	View Viewport
}

func (l *ScrollList) Up()       { l.View.MoveSelection(-1) }
func (l *ScrollList) Down()     { l.View.MoveSelection(1) }
func (l *ScrollList) PageUp()   { l.View.PageMove(-1) }
func (l *ScrollList) PageDown() { l.View.PageMove(1) }
func (l *ScrollList) Home()     { l.View.JumpToStart() }
func (l *ScrollList) End()      { l.View.JumpToEnd() }

// SearchList is a ScrollList that can be filtered. Search input moves the
// selection back to the top.
type SearchList struct {
	ScrollList
	Search SearchState
}

func (l *SearchList) SupportsSearch() bool { return true }
func (l *SearchList) Searching() bool      { return l.Search.Active() }

func (l *SearchList) EnterSearch() {
	l.Search.Enter()
	l.View.Reset()
}

func (l *SearchList) ExitSearch() {
	l.Search.Exit()
	l.View.Reset()
}

func (l *SearchList) SubmitSearch(context.Context) { l.ExitSearch() }

// AppendSearch and RemoveSearch return the list to the top on every call
// while searching, even when the query is left unchanged.
func (l *SearchList) AppendSearch(r rune) bool {
	if !l.Search.Active() {
		return false
	}
	l.Search.Append(r)
	l.View.Reset()
	return true
}

func (l *SearchList) RemoveSearch() bool {
	if !l.Search.Active() {
		return false
	}
	l.Search.Backspace()
	l.View.Reset()
	return true
}

// SearchLine renders the search prompt, or "" when not searching.
func (l *SearchList) SearchLine(theme Theme) string {
	if !l.Search.Active() {
		return ""
	}
	return theme.Secondary.Render("Search: ") + l.Search.Query() + "_"
}

// Note is a short-lived status message shown after an action.
type Note struct {
	Text  string
	OK    bool
	until time.Time
}

// NoteTTL is how long a Note stays visible.
const NoteTTL = 3 * time.Second

// Set records a message expiring NoteTTL after now.
func (n *Note) Set(now time.Time, ok bool, text string) {
	n.Text, n.OK, n.until = text, ok, now.Add(NoteTTL)
}

// Line renders the note, or "" once it has expired.
func (n *Note) Line(now time.Time, theme Theme) string {
	if n.Text == "" || !now.Before(n.until) {
		return ""
	}
	if n.OK {
		return theme.Success.Render("✓ " + n.Text)
	}
	return theme.Error.Render("✗ " + n.Text)
}
