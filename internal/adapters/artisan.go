package adapters

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-shellwords"
)

// DefaultCommandTimeout bounds a single artisan invocation
const DefaultCommandTimeout = 30 * time.Second

// Artisan runs `php artisan` commands in the application directory.
type Artisan struct {
	php     string
	appPath string
	timeout time.Duration
}

// NewArtisan creates a runner
func NewArtisan(php, appPath string, timeout time.Duration) *Artisan {
	if php == "" {
		php = "php"
	}
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	return &Artisan{php: php, appPath: appPath, timeout: timeout}
}

// Available reports whether the application has an artisan script
func (a *Artisan) Available() bool {
	_, err := os.Stat(filepath.Join(a.appPath, "artisan"))
	return err == nil
}

// Run executes artisan with args and returns its combined output as lines.
func (a *Artisan) Run(ctx context.Context, args ...string) ([]string, error) {
	return Guard("artisan "+strings.Join(args, " "), func() ([]string, error) {
		if !a.Available() {
			return nil, fmt.Errorf("no artisan in %s: %w", a.appPath, ErrUnavailable)
		}
		ctx, cancel := context.WithTimeout(ctx, a.timeout)
		defer cancel()

		cmd := exec.CommandContext(ctx, a.php, append([]string{"artisan", "--no-ansi", "--no-interaction"}, args...)...)
		cmd.Dir = a.appPath
		var out bytes.Buffer
		cmd.Stdout = &out
		cmd.Stderr = &out

		err := cmd.Run()
		lines := splitOutput(out.String())
		if err != nil {
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return lines, fmt.Errorf("timed out after %s", a.timeout)
			}
			if len(lines) > 0 {
				return lines, fmt.Errorf("%w: %s", err, lines[len(lines)-1])
			}
			return lines, err
		}
		return lines, nil
	})
}

// Exec runs a command line typed by the user. A leading "php artisan" or
// "artisan" is optional.
func (a *Artisan) Exec(ctx context.Context, line string) ([]string, error) {
	args, err := ParseCommandLine(line)
	if err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	return a.Run(ctx, args...)
}

// Version returns the framework version line
func (a *Artisan) Version(ctx context.Context) (string, error) {
	lines, err := a.Run(ctx, "--version")
	if err != nil {
		return "", err
	}
	if len(lines) == 0 {
		return "", fmt.Errorf("artisan --version: no output")
	}
	return lines[0], nil
}

// ErrBadCommand is returned for a command line that cannot be split into
// arguments.
var ErrBadCommand = errors.New("invalid command")

// ParseCommandLine splits a typed artisan command into arguments with shell
// quoting and escaping rules, and drops a leading "php artisan" or "artisan".
// Unterminated quotes and shell operators such as pipes are rejected.
func ParseCommandLine(line string) ([]string, error) {
	p := shellwords.NewParser()
	args, err := p.Parse(line)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadCommand, err)
	}
	if p.Position >= 0 {
		return nil, fmt.Errorf("%w: unsupported shell operator at column %d", ErrBadCommand, p.Position+1)
	}
	if len(args) > 0 && args[0] == "php" {
		args = args[1:]
	}
	if len(args) > 0 && args[0] == "artisan" {
		args = args[1:]
	}
	return args, nil
}

func splitOutput(s string) []string {
	s = strings.TrimRight(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
