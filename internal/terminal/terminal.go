// Package terminal owns the controlling terminal: raw mode, the alternate
// screen, bounded input polling and resize notifications.
package terminal

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Control sequences written on start and stop.
const (
	EnterAltScreen = "\x1b[?1049h"
	ExitAltScreen  = "\x1b[?1049l"
	HideCursor     = "\x1b[?25l"
	ShowCursor     = "\x1b[?25h"
	ClearScreen    = "\x1b[2J"
	CursorHome     = "\x1b[H"
)

// readBufferSize bounds how many bytes one poll consumes. Several queued
// keys fit; a sequence split across reads is not reassembled.
const readBufferSize = 64

// ErrNotTerminal is returned when stdin or stdout is not a TTY.
var ErrNotTerminal = errors.New("not a terminal")

// Terminal is a raw-mode session on a pair of TTY file descriptors.
type Terminal struct {
	in   *os.File
	out  *os.File
	log  *slog.Logger
	buf  []byte
	raw  *term.State
	sigs chan os.Signal

	restoreOnce sync.Once
}

// Open checks that in and out are terminals. Nothing is changed until Start.
func Open(in, out *os.File, log *slog.Logger) (*Terminal, error) {
	if log == nil {
		log = slog.Default()
	}
	if !term.IsTerminal(int(in.Fd())) {
		return nil, fmt.Errorf("stdin: %w", ErrNotTerminal)
	}
	if !term.IsTerminal(int(out.Fd())) {
		return nil, fmt.Errorf("stdout: %w", ErrNotTerminal)
	}
	return &Terminal{in: in, out: out, log: log, buf: make([]byte, readBufferSize)}, nil
}

// Start enters raw mode and the alternate screen and hides the cursor. If raw
// mode cannot be enabled the session continues in cooked mode.
func (t *Terminal) Start() error {
	state, err := term.MakeRaw(int(t.in.Fd()))
	if err != nil {
		t.log.Warn("raw mode unavailable, continuing in cooked mode", "error", err)
	} else {
		t.raw = state
	}

	t.sigs = make(chan os.Signal, 1)
	signal.Notify(t.sigs, syscall.SIGWINCH)

	if _, err := t.out.WriteString(EnterAltScreen + HideCursor + ClearScreen + CursorHome); err != nil {
		t.Restore()
		return fmt.Errorf("init screen: %w", err)
	}
	return nil
}

// Restore leaves the alternate screen, shows the cursor and restores the
// original terminal mode. It is safe to call more than once; only the first
// call has any effect.
func (t *Terminal) Restore() {
	t.restoreOnce.Do(func() {
		if t.sigs != nil {
			signal.Stop(t.sigs)
		}
		_, _ = t.out.WriteString(ShowCursor + ExitAltScreen)
		if t.raw != nil {
			if err := term.Restore(int(t.in.Fd()), t.raw); err != nil {
				t.log.Error("restore terminal", "error", err)
				return
			}
		}
		t.log.Debug("terminal restored")
	})
}

// Poll waits up to timeout for input and returns what one read delivers. It
// returns nil, nil on timeout or when interrupted by a signal.
func (t *Terminal) Poll(timeout time.Duration) ([]byte, error) {
	fds := []unix.PollFd{{Fd: int32(t.in.Fd()), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, int(timeout/time.Millisecond))
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return nil, nil
		}
		return nil, fmt.Errorf("poll stdin: %w", err)
	}
	if n == 0 || fds[0].Revents&unix.POLLIN == 0 {
		if fds[0].Revents&(unix.POLLHUP|unix.POLLERR) != 0 {
			return nil, fmt.Errorf("poll stdin: hangup")
		}
		return nil, nil
	}
	m, err := t.in.Read(t.buf)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	out := make([]byte, m)
	copy(out, t.buf[:m])
	return out, nil
}

// Size returns the terminal size in columns and rows.
func (t *Terminal) Size() (int, int, error) {
	return term.GetSize(int(t.out.Fd()))
}

// Resized delivers a value on every SIGWINCH after Start.
func (t *Terminal) Resized() <-chan os.Signal { return t.sigs }

// Write sends a frame to the terminal.
func (t *Terminal) Write(p []byte) (int, error) { return t.out.Write(p) }
