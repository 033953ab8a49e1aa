package panels

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/jedarden/frankendash/internal/adapters"
	"github.com/jedarden/frankendash/internal/state"
	"github.com/jedarden/frankendash/internal/ui"
)

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// Metrics draws a sparkline with current, average and maximum per series
type Metrics struct {
	ui.Base
	ui.NoNavigation
	ui.NoSearch

	deps Deps
	src  MetricSampler
	feed *state.Feed[[]adapters.Series]
}

// NewMetrics creates the metrics panel
func NewMetrics(deps Deps, src MetricSampler) *Metrics {
	return &Metrics{
		Base: ui.NewBase("metrics", "Metrics"),
		deps: deps,
		src:  src,
		feed: state.NewFeed[[]adapters.Series]("metrics", deps.log()),
	}
}

// Refresh takes a sample
func (m *Metrics) Refresh(ctx context.Context) {
	m.feed.Update(m.src.Sample(ctx))
}

// Render draws one block per series
func (m *Metrics) Render(width, height int) []string {
	t := m.deps.Theme
	lines := []string{title(t, "Metrics"), ""}
	series, ok := m.feed.Data()
	if !ok {
		return append(lines, feedNoData(t, m.feed))
	}
	for _, s := range series {
		label := fmt.Sprintf("%-14s", s.Name)
		if s.Err != nil && len(s.Samples) == 0 {
			lines = append(lines, label+noDataLine(t, s.Err))
			continue
		}
		lines = append(lines, label+t.Primary.Render(Sparkline(s.Samples))+
			t.Muted.Render(fmt.Sprintf("  now %s  avg %s  max %s",
				formatValue(s.Current(), s.Unit), formatValue(s.Average(), s.Unit), formatValue(s.Max(), s.Unit))))
	}
	return lines
}

// Sparkline renders samples scaled between their minimum and maximum
func Sparkline(samples []float64) string {
	if len(samples) == 0 {
		return ""
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range samples {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	var b strings.Builder
	for _, v := range samples {
		idx := 0
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(len(sparkBlocks)-1))
		}
		b.WriteRune(sparkBlocks[idx])
	}
	return b.String()
}

func formatValue(v float64, unit string) string {
	if unit == "%" {
		return fmt.Sprintf("%.1f%%", v)
	}
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f%s", v, unit)
	}
	return fmt.Sprintf("%.1f%s", v, unit)
}
