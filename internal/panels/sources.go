package panels

import (
	"context"

	"github.com/jedarden/frankendash/internal/adapters"
)

// Data and action collaborators, satisfied by the adapters package.
type (
	QueueSource interface {
		Queues(ctx context.Context) ([]adapters.QueueStat, error)
	}

	WorkerSource interface {
		Workers(ctx context.Context) ([]adapters.Worker, error)
	}

	JobSource interface {
		RecentJobs(ctx context.Context, limit int) ([]adapters.Job, error)
		RetryFailed(ctx context.Context, id int64) error
		RetryAllFailed(ctx context.Context) (int, error)
		FlushFailed(ctx context.Context) (int64, error)
	}

	LogSource interface {
		Recent(limit int) ([]adapters.LogEntry, error)
		Clear() error
	}

	CacheSource interface {
		Stats(ctx context.Context) (adapters.CacheStats, error)
		Clear(ctx context.Context) error
	}

	SystemSource interface {
		Collect(ctx context.Context) adapters.SystemStats
	}

	MetricSampler interface {
		Sample(ctx context.Context) ([]adapters.Series, error)
	}

	// CommandRunner runs artisan commands
	CommandRunner interface {
		Run(ctx context.Context, args ...string) ([]string, error)
		Exec(ctx context.Context, line string) ([]string, error)
		Version(ctx context.Context) (string, error)
	}

	// Pinger checks database connectivity
	Pinger interface {
		Ping(ctx context.Context) error
	}
)
