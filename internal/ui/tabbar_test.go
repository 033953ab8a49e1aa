package ui

import (
	"strings"
	"testing"
)

var dashboardLabels = []string{
	"Overview", "Queues", "Jobs", "Logs", "Cache",
	"Scheduler", "Metrics", "Shell", "Settings",
}

func tabWidths(labels []string) []int {
	widths := make([]int, len(labels))
	for i, l := range labels {
		widths[i] = VisibleLength(TabText(i, l))
	}
	return widths
}

func TestLayoutTabsNarrowMiddleFocus(t *testing.T) {
	got := LayoutTabs(tabWidths(dashboardLabels), 4, 40, OverflowMargin)
	want := TabLayout{Start: 3, End: 4, LeftOverflow: 3, RightOverflow: 4}
	if got != want {
		t.Errorf("LayoutTabs() = %+v, want %+v", got, want)
	}

	bar := Strip(RenderTabBar(dashboardLabels, 4, 40, DefaultTheme()))
	if !strings.HasPrefix(bar, "‹ 3 ") || !strings.HasSuffix(bar, " 4 ›") {
		t.Errorf("RenderTabBar() = %q, want both overflow indicators", bar)
	}
	if !strings.Contains(bar, "[5] Cache") {
		t.Errorf("RenderTabBar() = %q, missing focused tab", bar)
	}
	if VisibleLength(bar) > 40 {
		t.Errorf("RenderTabBar() is %d columns wide, want <= 40", VisibleLength(bar))
	}
}

func TestLayoutTabsAllFit(t *testing.T) {
	widths := tabWidths(dashboardLabels)
	total := len(widths) - 1
	for _, w := range widths {
		total += w
	}
	for _, focused := range []int{0, 4, 8} {
		got := LayoutTabs(widths, focused, total, OverflowMargin)
		if got.Start != 0 || got.End != 8 || got.LeftOverflow != 0 || got.RightOverflow != 0 {
			t.Errorf("LayoutTabs(focused=%d, width=%d) = %+v, want all tabs", focused, total, got)
		}
	}
	bar := Strip(RenderTabBar(dashboardLabels, 0, 200, DefaultTheme()))
	if strings.Contains(bar, "‹") || strings.Contains(bar, "›") {
		t.Errorf("RenderTabBar() = %q, want no overflow indicators", bar)
	}
}

func TestLayoutTabsEdges(t *testing.T) {
	widths := tabWidths(dashboardLabels)
	first := LayoutTabs(widths, 0, 40, OverflowMargin)
	if first.Start != 0 || first.LeftOverflow != 0 || first.RightOverflow == 0 {
		t.Errorf("focused first = %+v", first)
	}
	last := LayoutTabs(widths, 8, 40, OverflowMargin)
	if last.End != 8 || last.RightOverflow != 0 || last.LeftOverflow == 0 {
		t.Errorf("focused last = %+v", last)
	}
	if got := LayoutTabs(nil, 0, 40, OverflowMargin); got.End != -1 {
		t.Errorf("empty = %+v, want End -1", got)
	}
}

func TestLayoutTabsFocusAlwaysVisible(t *testing.T) {
	widthSets := [][]int{
		tabWidths(dashboardLabels),
		{10, 10, 10, 10, 10, 10},
		{3, 40, 3, 40, 3},
		{50},
	}
	for _, widths := range widthSets {
		for focused := range widths {
			for width := 1; width <= 160; width++ {
				l := LayoutTabs(widths, focused, width, OverflowMargin)
				if !l.Contains(focused) {
					t.Fatalf("widths %v focused %d width %d: layout %+v hides focus", widths, focused, width, l)
				}
				if l.LeftOverflow != l.Start || l.RightOverflow != len(widths)-1-l.End {
					t.Fatalf("widths %v focused %d width %d: bad overflow %+v", widths, focused, width, l)
				}
			}
		}
	}
}

func TestRenderTabBarFitsWhenFocusFits(t *testing.T) {
	widths := tabWidths(dashboardLabels)
	for focused := range dashboardLabels {
		for width := widths[focused] + OverflowMargin; width <= 140; width++ {
			bar := RenderTabBar(dashboardLabels, focused, width, DefaultTheme())
			if got := VisibleLength(bar); got > width {
				t.Fatalf("focused %d width %d: bar is %d columns", focused, width, got)
			}
		}
	}
}
