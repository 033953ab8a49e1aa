package ui

import (
	"fmt"
	"strings"
)

const (
	// OverflowMargin is the width held back for the "‹ N" and "N ›"
	// indicators whenever not every tab fits.
	OverflowMargin = 12

	tabSeparator = "│"
)

// TabLayout is the visible window of tabs for one frame. Start and End are
// inclusive indexes.
type TabLayout struct {
	Start         int
	End           int
	LeftOverflow  int
	RightOverflow int
}

// Contains reports whether tab i is visible.
func (l TabLayout) Contains(i int) bool { return i >= l.Start && i <= l.End }

// LayoutTabs picks the tabs to show for the given per-tab widths. When every
// tab fits, all are shown. Otherwise the window starts at the focused tab and
// grows one tab at a time on the side nearer the focus (left on a tie), or on
// the other side when the nearer one has no room, until neither side fits
// within width minus margin. The focused tab is always included.
func LayoutTabs(widths []int, focused, width, margin int) TabLayout {
	n := len(widths)
	if n == 0 {
		return TabLayout{Start: 0, End: -1}
	}
	focused = clamp(focused, 0, n-1)

	total := 0
	for i, w := range widths {
		if i > 0 {
			total++
		}
		total += w
	}
	if total <= width {
		return TabLayout{Start: 0, End: n - 1}
	}

	start, end := focused, focused
	used := widths[focused]
	fits := func(i int) bool {
		return used+1+widths[i]+margin <= width
	}
	for {
		canLeft := start > 0 && fits(start-1)
		canRight := end < n-1 && fits(end+1)
		if !canLeft && !canRight {
			break
		}
		left := canLeft
		if canLeft && canRight {
			left = focused-start <= end-focused
		}
		if left {
			start--
			used += 1 + widths[start]
		} else {
			end++
			used += 1 + widths[end]
		}
	}
	return TabLayout{Start: start, End: end, LeftOverflow: start, RightOverflow: n - 1 - end}
}

// TabText is the plain text drawn for tab i.
func TabText(i int, label string) string {
	return fmt.Sprintf(" [%d] %s ", i+1, label)
}

// RenderTabBar draws the tab line for labels with the focused tab
// highlighted and overflow counters on either side.
func RenderTabBar(labels []string, focused, width int, theme Theme) string {
	texts := make([]string, len(labels))
	widths := make([]int, len(labels))
	for i, l := range labels {
		texts[i] = TabText(i, l)
		widths[i] = VisibleLength(texts[i])
	}
	layout := LayoutTabs(widths, focused, width, OverflowMargin)

	var b strings.Builder
	if layout.LeftOverflow > 0 {
		b.WriteString(theme.Muted.Render(fmt.Sprintf("‹ %d ", layout.LeftOverflow)))
	}
	for i := layout.Start; i <= layout.End; i++ {
		if i > layout.Start {
			b.WriteString(theme.Muted.Render(tabSeparator))
		}
		if i == focused {
			b.WriteString(theme.TabActive.Render(texts[i]))
		} else {
			b.WriteString(theme.TabInactive.Render(texts[i]))
		}
	}
	if layout.RightOverflow > 0 {
		b.WriteString(theme.Muted.Render(fmt.Sprintf(" %d ›", layout.RightOverflow)))
	}
	return b.String()
}
