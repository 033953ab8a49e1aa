package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jedarden/frankendash/internal/app"
	"github.com/jedarden/frankendash/internal/terminal"
)

// version is set at build time via -ldflags "-X main.version=vX.X.X"
var version = "dev"

// usageError marks command-line misuse, which exits with status 2.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

type cliOptions struct {
	configPath  string
	pollSeconds float64
	logPath     string
	debug       bool
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, app.Run)
	cancel()
	os.Exit(code)
}

type runFunc func(context.Context, app.Options) error

// run executes the command line and maps the outcome to an exit status.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, start runFunc) int {
	cmd := newRootCmd(start)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	var usage usageError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &usage):
		fmt.Fprintf(stderr, "Error: %v\n", err)
		fmt.Fprintln(stderr, "Run 'frankendash --help' for usage.")
		return 2
	case errors.Is(err, terminal.ErrNotTerminal):
		fmt.Fprintln(stderr, "Error: frankendash must be run in a terminal")
		return 1
	default:
		fmt.Fprintf(stderr, "frankendash: %v\n", err)
		return 1
	}
}

func newRootCmd(start runFunc) *cobra.Command {
	var opts cliOptions
	cmd := &cobra.Command{
		Use:   "frankendash",
		Short: "Laravel application dashboard",
		Long:  longHelp,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usageError{fmt.Errorf("unexpected argument %q", args[0])}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.pollSeconds < 0 {
				return usageError{errors.New("--poll must be positive")}
			}
			return start(cmd.Context(), app.Options{
				ConfigPath: opts.configPath,
				PollEvery:  time.Duration(opts.pollSeconds * float64(time.Second)),
				LogPath:    opts.logPath,
				Debug:      opts.debug,
			})
		},
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetVersionTemplate("frankendash version {{.Version}}\n")
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default ~/.config/frankendash/config.toml)")
	flags.Float64Var(&opts.pollSeconds, "poll", 0, "data refresh interval in seconds (overrides config)")
	flags.StringVar(&opts.logPath, "log", "", "write diagnostics to this file")
	flags.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	return cmd
}

const longHelp = `frankendash - Laravel application dashboard

KEYBOARD SHORTCUTS:
  q, Ctrl+C         Quit
  1-9               Switch panel
  Tab, ←/→          Next / previous panel
  ↑/↓, j/k          Move selection
  PgUp/PgDn         Page up / down
  Home/End          First / last item
  r                 Refresh now
  /                 Search (Esc cancels, Enter closes)

PANELS:
  Overview   Host metrics, database, version and workers
  Queues     Pending and failed jobs per queue (R restarts workers)
  Jobs       Recent jobs (x retry, X retry all, F flush failed)
  Logs       Newest log entries (C clears the log)
  Cache      Cache store statistics (c clears caches)
  Scheduler  Scheduled tasks
  Metrics    Recent history sparklines
  Shell      Run artisan commands
  Settings   Effective configuration`
