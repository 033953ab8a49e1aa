package adapters

import (
	"context"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// workerPatterns identify queue worker processes by command line.
var workerPatterns = []string{"queue:work", "queue:listen", "horizon:work"}

// Worker is one running queue worker process
type Worker struct {
	PID     int32
	Command string
	Status  string
	Started time.Time
	RSS     uint64
}

// WorkerScanner finds queue worker processes on this host.
type WorkerScanner struct {
	self int32
	list func(ctx context.Context) ([]*process.Process, error)
}

// NewWorkerScanner creates a scanner over the host process table
func NewWorkerScanner() *WorkerScanner {
	return &WorkerScanner{self: int32(os.Getpid()), list: process.ProcessesWithContext}
}

// Workers returns the running workers ordered by PID.
func (w *WorkerScanner) Workers(ctx context.Context) ([]Worker, error) {
	return Guard("scan workers", func() ([]Worker, error) {
		procs, err := w.list(ctx)
		if err != nil {
			return nil, err
		}
		var workers []Worker
		for _, p := range procs {
			if p.Pid == w.self {
				continue
			}
			cmdline, err := p.CmdlineWithContext(ctx)
			if err != nil || !IsWorkerCommand(cmdline) {
				continue
			}
			worker := Worker{PID: p.Pid, Command: cmdline, Status: "running"}
			if st, err := p.StatusWithContext(ctx); err == nil && len(st) > 0 {
				worker.Status = strings.Join(st, ",")
			}
			if ms, err := p.CreateTimeWithContext(ctx); err == nil {
				worker.Started = time.UnixMilli(ms)
			}
			if mi, err := p.MemoryInfoWithContext(ctx); err == nil && mi != nil {
				worker.RSS = mi.RSS
			}
			workers = append(workers, worker)
		}
		sort.Slice(workers, func(i, j int) bool { return workers[i].PID < workers[j].PID })
		return workers, nil
	})
}

// IsWorkerCommand reports whether a command line runs a queue worker.
func IsWorkerCommand(cmdline string) bool {
	for _, p := range workerPatterns {
		if strings.Contains(cmdline, p) {
			return true
		}
	}
	return false
}
