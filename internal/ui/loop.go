package ui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/jedarden/frankendash/internal/keys"
)

// State of the event loop
type State int

const (
	Running State = iota
	Stopped
)

func (s State) String() string {
	if s == Stopped {
		return "stopped"
	}
	return "running"
}

// Defaults for LoopOptions
const (
	DefaultPollTimeout     = 25 * time.Millisecond
	DefaultRefreshInterval = 2 * time.Second
)

// Input delivers raw terminal bytes. Poll waits at most timeout and returns
// nil without error when nothing arrived.
type Input interface {
	Poll(timeout time.Duration) ([]byte, error)
}

// Notifier reports, without blocking, whether a data source changed since
// the last call.
type Notifier interface {
	Changed() bool
}

// LoopOptions configures a Loop
type LoopOptions struct {
	Dashboard       *Dashboard
	Compositor      *Compositor
	Screen          *Screen
	Input           Input
	Output          io.Writer
	Keymap          keys.Map
	PollTimeout     time.Duration
	RefreshInterval time.Duration
	// Notifiers trigger an early refresh when they report a change.
	Notifiers []Notifier
	// Resize receives a value when the terminal size changes.
	Resize <-chan os.Signal
	Logger *slog.Logger
	Now    func() time.Time
}

// Loop is the single-threaded poll, dispatch and render cycle.
type Loop struct {
	opts        LoopOptions
	state       State
	dirty       bool
	lastRefresh time.Time
	now         func() time.Time
	log         *slog.Logger
}

// NewLoop creates a Loop
func NewLoop(opts LoopOptions) *Loop {
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = DefaultPollTimeout
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = DefaultRefreshInterval
	}
	l := &Loop{opts: opts, now: opts.Now, log: opts.Logger}
	if l.now == nil {
		l.now = time.Now
	}
	if l.log == nil {
		l.log = slog.Default()
	}
	return l
}

// State returns the loop state
func (l *Loop) State() State { return l.state }

// Dirty reports whether a redraw is pending
func (l *Loop) Dirty() bool { return l.dirty }

// Stop ends the loop at the top of the next iteration
func (l *Loop) Stop() { l.state = Stopped }

// Run fetches data, draws the first frame and then steps until the loop is
// stopped or ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	l.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			l.state = Stopped
			return nil
		default:
		}
		if l.state == Stopped {
			return nil
		}
		if err := l.Step(ctx); err != nil {
			l.state = Stopped
			return err
		}
	}
}

// Step runs one iteration: poll input, dispatch every decoded key in order,
// refresh data when due, and draw if anything changed. Only input and output
// errors are returned.
func (l *Loop) Step(ctx context.Context) error {
	buf, err := l.opts.Input.Poll(l.opts.PollTimeout)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	for _, ev := range keys.Decode(buf) {
		if l.Dispatch(ctx, ev) {
			l.dirty = true
		}
		if l.state == Stopped {
			return nil
		}
	}

	select {
	case <-l.opts.Resize:
		l.dirty = true
	default:
	}

	if l.refreshDue() {
		l.refresh(ctx)
	}

	if l.dirty {
		return l.draw()
	}
	return nil
}

func (l *Loop) refreshDue() bool {
	if l.now().Sub(l.lastRefresh) >= l.opts.RefreshInterval {
		return true
	}
	changed := false
	for _, n := range l.opts.Notifiers {
		if n.Changed() {
			changed = true
		}
	}
	return changed
}

func (l *Loop) refresh(ctx context.Context) {
	l.opts.Dashboard.Refresh(ctx)
	l.lastRefresh = l.now()
	l.dirty = true
}

func (l *Loop) draw() error {
	l.opts.Screen.Invalidate()
	frame := l.opts.Compositor.Frame(l.opts.Screen.Metrics(), l.opts.Dashboard)
	if _, err := io.WriteString(l.opts.Output, frame); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	l.dirty = false
	return nil
}

// Dispatch applies one key event and reports whether visible state changed.
// Ctrl+C always quits. While the active panel is searching, text keys edit
// the query; otherwise global keys are tried before panel keys.
func (l *Loop) Dispatch(ctx context.Context, ev keys.Event) bool {
	if ev.Is(keys.CtrlC) {
		l.Stop()
		return false
	}
	d := l.opts.Dashboard
	p := d.Active()
	if p == nil {
		if keys.Matches(ev, l.opts.Keymap.Quit) {
			l.Stop()
		}
		return false
	}
	km := l.opts.Keymap

	if p.Searching() {
		switch {
		case ev.Is(keys.Escape):
			p.ExitSearch()
			return true
		case ev.Is(keys.Enter):
			p.SubmitSearch(ctx)
			return true
		case ev.Is(keys.Backspace):
			return p.RemoveSearch()
		case ev.IsChar():
			return p.AppendSearch(ev.Rune)
		}
		if ev.Kind == keys.KindNamed {
			return l.navigate(p, ev)
		}
		return false
	}

	switch {
	case keys.Matches(ev, km.Quit):
		l.Stop()
		return false
	case d.Focus(km.PanelIndex(ev)):
		return true
	case keys.Matches(ev, km.NextTab):
		return d.Next()
	case keys.Matches(ev, km.PrevTab):
		return d.Prev()
	case keys.Matches(ev, km.Refresh):
		l.log.Debug("manual refresh")
		l.refresh(ctx)
		return true
	case keys.Matches(ev, km.Search) && p.SupportsSearch():
		p.EnterSearch()
		return true
	}
	if l.navigate(p, ev) {
		return true
	}
	return p.HandleKey(ctx, ev)
}

func (l *Loop) navigate(p Panel, ev keys.Event) bool {
	km := l.opts.Keymap
	switch {
	case keys.Matches(ev, km.Up):
		p.Up()
	case keys.Matches(ev, km.Down):
		p.Down()
	case keys.Matches(ev, km.PageUp):
		p.PageUp()
	case keys.Matches(ev, km.PageDown):
		p.PageDown()
	case keys.Matches(ev, km.Top):
		p.Home()
	case keys.Matches(ev, km.Bottom):
		p.End()
	default:
		return false
	}
	return true
}
