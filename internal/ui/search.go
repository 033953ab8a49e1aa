package ui

import (
	"strings"
	"unicode"
)

// SearchState is a one-line text entry buffer used to filter a panel's list.
type SearchState struct {
	active bool
	query  []rune
}

// Enter activates search with an empty query.
func (s *SearchState) Enter() {
	s.active = true
	s.query = s.query[:0]
}

// Exit deactivates search and clears the query, so the next Enter starts
// blank and the list is no longer filtered.
func (s *SearchState) Exit() {
	s.active = false
	s.query = s.query[:0]
}

// Append adds r to the query. It reports whether the query changed; input
// while inactive and non-printable runes are ignored.
func (s *SearchState) Append(r rune) bool {
	if !s.active || !unicode.IsPrint(r) {
		return false
	}
	s.query = append(s.query, r)
	return true
}

// Backspace drops the last rune of the query and reports whether it did.
func (s *SearchState) Backspace() bool {
	if len(s.query) == 0 {
		return false
	}
	s.query = s.query[:len(s.query)-1]
	return true
}

// Active reports whether search is in progress.
func (s *SearchState) Active() bool { return s.active }

// Query returns the current query.
func (s *SearchState) Query() string { return string(s.query) }

// Matches reports whether any field contains the query, ignoring case. An
// inactive search or an empty query matches everything.
func (s *SearchState) Matches(fields ...string) bool {
	if !s.active || len(s.query) == 0 {
		return true
	}
	q := strings.ToLower(string(s.query))
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
