package adapters

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemStats holds host metrics with timestamp. Each group carries its own
// error so one unsupported metric does not hide the others.
type SystemStats struct {
	CPUPercent float64
	CPUError   error

	Load1, Load5, Load15 float64
	LoadError            error

	MemUsed    uint64
	MemTotal   uint64
	MemPercent float64
	MemError   error

	Uptime      time.Duration
	UptimeError error

	LastUpdate time.Time
}

// systemCacheTTL is how long a sample is reused. CPU usage is measured
// between calls, so callers within one refresh must share a sample.
const systemCacheTTL = time.Second

// SystemCollector collects host metrics
type SystemCollector struct {
	last SystemStats
	now  func() time.Time
}

// NewSystemCollector creates a new SystemCollector instance
func NewSystemCollector() *SystemCollector {
	return &SystemCollector{now: time.Now}
}

// Collect gathers host metrics. CPU usage is measured since the previous
// sample, so the loop is never blocked sampling.
func (sc *SystemCollector) Collect(ctx context.Context) SystemStats {
	now := sc.now()
	if !sc.last.LastUpdate.IsZero() && now.Sub(sc.last.LastUpdate) < systemCacheTTL {
		return sc.last
	}
	stats := SystemStats{LastUpdate: now}

	if pct, err := cpu.PercentWithContext(ctx, 0, false); err != nil {
		stats.CPUError = fmt.Errorf("failed to collect CPU: %w", err)
	} else if len(pct) > 0 {
		stats.CPUPercent = pct[0]
	}

	if avg, err := load.AvgWithContext(ctx); err != nil {
		stats.LoadError = fmt.Errorf("failed to collect load average: %w", err)
	} else {
		stats.Load1, stats.Load5, stats.Load15 = avg.Load1, avg.Load5, avg.Load15
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err != nil {
		stats.MemError = fmt.Errorf("failed to collect memory: %w", err)
	} else {
		stats.MemUsed, stats.MemTotal, stats.MemPercent = vm.Used, vm.Total, vm.UsedPercent
	}

	if up, err := host.UptimeWithContext(ctx); err != nil {
		stats.UptimeError = fmt.Errorf("failed to collect uptime: %w", err)
	} else {
		stats.Uptime = time.Duration(up) * time.Second
	}

	sc.last = stats
	return stats
}
