package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/jedarden/frankendash/internal/adapters"
	"github.com/jedarden/frankendash/internal/config"
	"github.com/jedarden/frankendash/internal/logger"
	"github.com/jedarden/frankendash/internal/panels"
	"github.com/jedarden/frankendash/internal/terminal"
	"github.com/jedarden/frankendash/internal/ui"
)

// Options configure the dashboard.
type Options struct {
	ConfigPath string
	PollEvery  time.Duration // zero uses the configured interval
	LogPath    string        // empty uses the configured debug log
	Debug      bool
	Stdin      *os.File
	Stdout     *os.File
}

// Components are the adapters built from a Config. They are exposed so the
// wiring can be reused without a terminal.
type Components struct {
	Queue   *adapters.QueueStore
	Workers *adapters.WorkerScanner
	Logs    *adapters.LogAdapter
	Cache   *adapters.CacheAdapter
	System  *adapters.SystemCollector
	Artisan *adapters.Artisan
	Metrics *adapters.MetricsAdapter
}

// Close releases the database connection
func (c *Components) Close() error {
	return c.Queue.Close()
}

// NewComponents builds the adapters for cfg
func NewComponents(cfg config.Config) *Components {
	c := &Components{
		Queue:   adapters.NewQueueStore(cfg.Database),
		Workers: adapters.NewWorkerScanner(),
		Logs:    adapters.NewLogAdapter(cfg.LogFile),
		System:  adapters.NewSystemCollector(),
		Artisan: adapters.NewArtisan(cfg.PHPBinary, cfg.AppPath, cfg.CommandTimeout),
	}
	c.Cache = adapters.NewCacheAdapter(cfg.CacheDriver, cfg.CachePath, c.Queue, c.Artisan)
	c.Metrics = adapters.NewMetricsAdapter(adapters.DefaultHistorySize, metricSources(c)...)
	return c
}

func metricSources(c *Components) []adapters.MetricSource {
	return []adapters.MetricSource{
		{Name: "cpu", Unit: "%", Sample: func(ctx context.Context) (float64, error) {
			s := c.System.Collect(ctx)
			return s.CPUPercent, s.CPUError
		}},
		{Name: "memory", Unit: "%", Sample: func(ctx context.Context) (float64, error) {
			s := c.System.Collect(ctx)
			return s.MemPercent, s.MemError
		}},
		{Name: "queued jobs", Sample: func(ctx context.Context) (float64, error) {
			pending, _, err := c.Queue.Totals(ctx)
			return float64(pending), err
		}},
		{Name: "failed jobs", Sample: func(ctx context.Context) (float64, error) {
			_, failed, err := c.Queue.Totals(ctx)
			return float64(failed), err
		}},
		{Name: "log errors", Sample: func(ctx context.Context) (float64, error) {
			entries, err := c.Logs.Recent(adapters.DefaultLogLimit)
			if err != nil {
				return 0, err
			}
			n := 0
			for _, e := range entries {
				if e.IsError() {
					n++
				}
			}
			return float64(n), nil
		}},
	}
}

// NewPanels builds the nine dashboard tabs in order
func NewPanels(cfg config.Config, c *Components, deps panels.Deps) []ui.Panel {
	return []ui.Panel{
		panels.NewOverview(deps, c.System, c.Queue, c.Queue, c.Workers, c.Artisan),
		panels.NewQueues(deps, c.Queue, c.Workers, c.Artisan),
		panels.NewJobs(deps, c.Queue),
		panels.NewLogs(deps, c.Logs, cfg.LogLevels),
		panels.NewCache(deps, c.Cache),
		panels.NewScheduler(deps, c.Artisan),
		panels.NewMetrics(deps, c.Metrics),
		panels.NewShell(deps, c.Artisan),
		panels.NewSettings(deps, cfg.Encode),
	}
}

// Run starts the dashboard and blocks until the user quits or ctx is
// cancelled. The terminal is restored on every return path.
func Run(ctx context.Context, opts Options) (err error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.PollEvery > 0 {
		cfg.PollingInterval = opts.PollEvery
	}
	if opts.LogPath != "" {
		cfg.DebugLog = opts.LogPath
	}
	level := logger.ParseLevel(cfg.LogLevel)
	if opts.Debug {
		level = slog.LevelDebug
	}
	log, closer, err := logger.Open(cfg.DebugLog, level)
	if err != nil {
		return err
	}
	defer closer.Close()

	in, out := opts.Stdin, opts.Stdout
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	term, err := terminal.Open(in, out, log)
	if err != nil {
		return err
	}

	log.Info("starting",
		"config", cfg.Path,
		"app", cfg.AppPath,
		"database", cfg.Database,
		"log_file", cfg.LogFile,
		"interval", cfg.PollingInterval,
		"theme", cfg.ThemeName)

	comps := NewComponents(cfg)
	defer comps.Close()

	theme := ui.NewTheme(cfg.Palette)
	deps := panels.Deps{Theme: theme, Keys: cfg.Keymap, Logger: log}
	dash := ui.NewDashboard(log, NewPanels(cfg, comps, deps)...)

	var notifiers []ui.Notifier
	if w, werr := adapters.WatchFile(cfg.LogFile); werr != nil {
		log.Warn("log file watch unavailable", "error", werr)
	} else {
		defer w.Close()
		notifiers = append(notifiers, w)
	}

	if err := term.Start(); err != nil {
		return err
	}
	defer term.Restore()
	defer func() {
		if r := recover(); r != nil {
			term.Restore()
			log.Error("panic", "panic", fmt.Sprint(r))
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	loop := ui.NewLoop(ui.LoopOptions{
		Dashboard:       dash,
		Compositor:      ui.NewCompositor(theme, cfg.Keymap, log),
		Screen:          ui.NewScreen(term.Size, ui.DefaultMetricsTTL),
		Input:           term,
		Output:          term,
		Keymap:          cfg.Keymap,
		PollTimeout:     cfg.PollTimeout,
		RefreshInterval: cfg.PollingInterval,
		Notifiers:       notifiers,
		Resize:          term.Resized(),
		Logger:          log,
	})
	err = loop.Run(ctx)
	if err != nil && !errors.Is(err, io.EOF) {
		log.Error("loop stopped", "error", err)
		return err
	}
	log.Info("stopped")
	return nil
}
