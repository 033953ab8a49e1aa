package panels

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/jedarden/frankendash/internal/adapters"
	"github.com/jedarden/frankendash/internal/keys"
	"github.com/jedarden/frankendash/internal/ui"
)

const (
	shellHeaderRows = 2
	maxShellOutput  = 500
)

// Shell runs artisan commands typed at a one-line prompt. The prompt uses
// the search text-entry keys: "/" or Enter opens it, Enter runs the command
// and Esc cancels.
type Shell struct {
	ui.Base
	ui.ScrollList

	deps    Deps
	artisan CommandRunner
	prompt  ui.SearchState
	output  []string
	note    ui.Note
}

// NewShell creates the shell panel
func NewShell(deps Deps, artisan CommandRunner) *Shell {
	return &Shell{
		Base:    ui.NewBase("shell", "Shell"),
		deps:    deps,
		artisan: artisan,
	}
}

// OnBlur discards a half-typed command
func (s *Shell) OnBlur() { s.prompt.Exit() }

func (s *Shell) SupportsSearch() bool { return true }
func (s *Shell) Searching() bool      { return s.prompt.Active() }

func (s *Shell) EnterSearch() {
	s.prompt.Enter()
	s.View.Reset()
}

func (s *Shell) ExitSearch() { s.prompt.Exit() }

// SubmitSearch runs the typed command and records its output
func (s *Shell) SubmitSearch(ctx context.Context) {
	line := strings.TrimSpace(s.prompt.Query())
	s.prompt.Exit()
	if line == "" {
		return
	}
	s.deps.log().Info("running artisan command", "command", line)
	out, err := s.artisan.Exec(ctx, line)
	if errors.Is(err, adapters.ErrBadCommand) {
		s.note.Set(s.deps.now(), false, err.Error())
		return
	}

	s.output = append(s.output, "$ php artisan "+line)
	s.output = append(s.output, out...)
	if err != nil {
		s.deps.log().Warn("artisan command failed", "command", line, "error", err)
		s.output = append(s.output, s.deps.Theme.Error.Render("error: "+err.Error()))
		s.note.Set(s.deps.now(), false, "command failed")
	} else {
		s.note.Set(s.deps.now(), true, "command finished")
	}
	s.output = append(s.output, "")
	if len(s.output) > maxShellOutput {
		s.output = s.output[len(s.output)-maxShellOutput:]
	}
	s.View.SetDimensions(len(s.output), max(1, s.View.Capacity()))
	s.View.JumpToEnd()
}

func (s *Shell) AppendSearch(r rune) bool {
	if !s.prompt.Active() {
		return false
	}
	s.prompt.Append(r)
	s.View.Reset()
	return true
}

func (s *Shell) RemoveSearch() bool {
	if !s.prompt.Active() {
		return false
	}
	s.prompt.Backspace()
	s.View.Reset()
	return true
}

// Bindings lists the panel actions
func (s *Shell) Bindings() []key.Binding {
	return []key.Binding{s.deps.Keys.Run}
}

// HandleKey opens the prompt
func (s *Shell) HandleKey(_ context.Context, ev keys.Event) bool {
	if keys.Matches(ev, s.deps.Keys.Run) {
		s.EnterSearch()
		return true
	}
	return false
}

// Measure sizes the viewport to the output
func (s *Shell) Measure(width, height int) {
	s.View.SetDimensions(len(s.output), listCapacity(height, shellHeaderRows))
}

// Render draws the prompt and the scrollback
func (s *Shell) Render(width, height int) []string {
	t := s.deps.Theme
	var head string
	switch {
	case s.prompt.Active():
		head = t.Secondary.Render("php artisan ") + s.prompt.Query() + "_"
	default:
		head = s.note.Line(s.deps.now(), t)
		if head == "" {
			head = t.Muted.Render("Press enter to run an artisan command")
		}
	}
	lines := []string{head, ""}
	if len(s.output) == 0 {
		return append(lines, t.Muted.Render("No commands run yet"))
	}
	start, end := s.View.Window()
	lines = append(lines, s.output[start:end]...)
	return append(lines, scrollLine(&s.View, t))
}
