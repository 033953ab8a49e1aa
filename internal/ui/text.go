package ui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Ellipsis marks a truncated line
const Ellipsis = "…"

// VisibleLength returns the number of terminal columns s occupies, ignoring
// SGR and other escape sequences.
func VisibleLength(s string) int {
	return ansi.StringWidth(s)
}

// PadTo appends spaces until s is width columns wide. Strings that are
// already at least width wide are returned unchanged.
func PadTo(s string, width int) string {
	n := width - VisibleLength(s)
	if n <= 0 {
		return s
	}
	return s + strings.Repeat(" ", n)
}

// TruncateTo cuts s to at most width visible columns. When a cut happens the
// last visible column becomes an ellipsis; escape sequences are never split
// and styling that precedes the cut is kept.
func TruncateTo(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if VisibleLength(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, Ellipsis)
}

// Fit truncates and pads s so it is exactly width columns wide.
func Fit(s string, width int) string {
	return PadTo(TruncateTo(s, width), width)
}

// Strip removes all escape sequences from s.
func Strip(s string) string {
	return ansi.Strip(s)
}

// Center pads s on both sides to width columns, truncating when too wide.
func Center(s string, width int) string {
	s = TruncateTo(s, width)
	gap := width - VisibleLength(s)
	if gap <= 0 {
		return s
	}
	left := gap / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
}

// SplitLines splits text into lines, dropping a single trailing newline.
func SplitLines(block string) []string {
	block = strings.TrimSuffix(block, "\n")
	if block == "" {
		return nil
	}
	return strings.Split(block, "\n")
}
