package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/jedarden/frankendash/internal/keys"
	"github.com/jedarden/frankendash/internal/ui"
)

// ErrInvalid wraps configuration values that parse but make no sense.
var ErrInvalid = errors.New("invalid config")

// Config is the resolved dashboard configuration.
type Config struct {
	Path            string
	PollingInterval time.Duration
	PollTimeout     time.Duration
	AppPath         string
	Database        string
	LogFile         string
	CacheDriver     string
	CachePath       string
	PHPBinary       string
	CommandTimeout  time.Duration
	LogLevels       []string
	ThemeName       string
	Palette         ui.Palette
	Keybindings     map[string]string
	Keymap          keys.Map
	DebugLog        string
	LogLevel        string
}

const (
	defaultConfigPath      = "~/.config/frankendash/config.toml"
	defaultPollingInterval = 2
	defaultPollTimeoutMS   = 25
	defaultCommandTimeout  = 30
	defaultCacheDriver     = "file"
	defaultPHPBinary       = "php"
	defaultTheme           = "dark"
	defaultLogLevel        = "info"
)

// DefaultLogLevels are the PSR-3 levels shown by the logs panel.
var DefaultLogLevels = []string{"emergency", "alert", "critical", "error", "warning", "notice", "info", "debug"}

type rawTheme struct {
	Name   string            `toml:"name"`
	Colors map[string]string `toml:"colors"`
}

type rawConfig struct {
	PollingInterval any               `toml:"polling_interval"`
	PollTimeoutMS   *int              `toml:"poll_timeout_ms"`
	AppPath         string            `toml:"app_path"`
	Database        string            `toml:"database"`
	LogFile         string            `toml:"log_file"`
	CacheDriver     string            `toml:"cache_driver"`
	CachePath       string            `toml:"cache_path"`
	PHPBinary       string            `toml:"php_binary"`
	CommandTimeout  *int              `toml:"command_timeout"`
	LogLevels       []string          `toml:"log_levels"`
	Theme           rawTheme          `toml:"theme"`
	Keybindings     map[string]string `toml:"keybindings"`
	DebugLog        string            `toml:"debug_log"`
	LogLevel        string            `toml:"log_level"`
}

// Load reads the config at path (or the default location), falling back to
// defaults when the file does not exist. FRANKEN_POLLING_INTERVAL and
// FRANKEN_THEME override the file.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	var raw rawConfig
	file, err := os.Open(resolved)
	switch {
	case err == nil:
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("open config: %w", err)
	}

	cfg, err := resolve(raw)
	if err != nil {
		return Config{}, err
	}
	cfg.Path = resolved
	return cfg, nil
}

func resolve(raw rawConfig) (Config, error) {
	cfg := Config{
		PollingInterval: defaultPollingInterval * time.Second,
		PollTimeout:     defaultPollTimeoutMS * time.Millisecond,
		CommandTimeout:  defaultCommandTimeout * time.Second,
		LogLevels:       DefaultLogLevels,
		Keybindings:     raw.Keybindings,
	}

	interval, err := seconds(raw.PollingInterval)
	if err != nil {
		return Config{}, err
	}
	if env := strings.TrimSpace(os.Getenv("FRANKEN_POLLING_INTERVAL")); env != "" {
		v, err := strconv.ParseFloat(env, 64)
		if err != nil {
			return Config{}, fmt.Errorf("FRANKEN_POLLING_INTERVAL %q: %w", env, ErrInvalid)
		}
		interval = &v
	}
	if interval != nil {
		if *interval <= 0 {
			return Config{}, fmt.Errorf("polling_interval must be positive: %w", ErrInvalid)
		}
		cfg.PollingInterval = time.Duration(*interval * float64(time.Second))
	}
	if raw.PollTimeoutMS != nil {
		if *raw.PollTimeoutMS <= 0 {
			return Config{}, fmt.Errorf("poll_timeout_ms must be positive: %w", ErrInvalid)
		}
		cfg.PollTimeout = time.Duration(*raw.PollTimeoutMS) * time.Millisecond
	}
	if raw.CommandTimeout != nil && *raw.CommandTimeout > 0 {
		cfg.CommandTimeout = time.Duration(*raw.CommandTimeout) * time.Second
	}

	appPath := strings.TrimSpace(raw.AppPath)
	if appPath == "" {
		appPath = "."
	}
	cfg.AppPath = mustExpand(appPath)
	cfg.Database = pathOr(raw.Database, filepath.Join(cfg.AppPath, "database", "database.sqlite"))
	cfg.LogFile = pathOr(raw.LogFile, filepath.Join(cfg.AppPath, "storage", "logs", "laravel.log"))
	cfg.CachePath = pathOr(raw.CachePath, filepath.Join(cfg.AppPath, "storage", "framework", "cache", "data"))
	cfg.DebugLog = pathOr(raw.DebugLog, filepath.Join(os.TempDir(), "frankendash.log"))

	cfg.CacheDriver = strings.ToLower(strings.TrimSpace(raw.CacheDriver))
	if cfg.CacheDriver == "" {
		cfg.CacheDriver = defaultCacheDriver
	}
	cfg.PHPBinary = strings.TrimSpace(raw.PHPBinary)
	if cfg.PHPBinary == "" {
		cfg.PHPBinary = defaultPHPBinary
	}
	if len(raw.LogLevels) > 0 {
		cfg.LogLevels = raw.LogLevels
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(raw.LogLevel))
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}

	cfg.ThemeName = strings.ToLower(strings.TrimSpace(raw.Theme.Name))
	if env := strings.TrimSpace(os.Getenv("FRANKEN_THEME")); env != "" {
		cfg.ThemeName = strings.ToLower(env)
	}
	if cfg.ThemeName == "" {
		cfg.ThemeName = defaultTheme
	}
	palette, err := paletteFor(cfg.ThemeName, raw.Theme.Colors)
	if err != nil {
		return Config{}, err
	}
	cfg.Palette = palette

	km, err := keys.DefaultMap().WithOverrides(raw.Keybindings)
	if err != nil {
		return Config{}, fmt.Errorf("keybindings: %w", err)
	}
	cfg.Keymap = km

	return cfg, nil
}

func paletteFor(name string, colors map[string]string) (ui.Palette, error) {
	var p ui.Palette
	switch name {
	case "dark":
		p = ui.DarkPalette
	case "light":
		p = ui.LightPalette
	default:
		return ui.Palette{}, fmt.Errorf("theme %q: %w", name, ErrInvalid)
	}
	for k, v := range colors {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		switch strings.ToLower(k) {
		case "primary":
			p.Primary = v
		case "secondary":
			p.Secondary = v
		case "error":
			p.Error = v
		case "success":
			p.Success = v
		case "warning":
			p.Warning = v
		case "info":
			p.Info = v
		case "muted":
			p.Muted = v
		case "background":
			p.Background = v
		case "foreground":
			p.Foreground = v
		default:
			return ui.Palette{}, fmt.Errorf("theme color %q: %w", k, ErrInvalid)
		}
	}
	return p, nil
}

// Settings returns the effective configuration as sorted key/value pairs.
func (c Config) Settings() [][2]string {
	out := [][2]string{
		{"config", c.Path},
		{"polling_interval", c.PollingInterval.String()},
		{"poll_timeout", c.PollTimeout.String()},
		{"app_path", c.AppPath},
		{"database", c.Database},
		{"log_file", c.LogFile},
		{"cache_driver", c.CacheDriver},
		{"cache_path", c.CachePath},
		{"php_binary", c.PHPBinary},
		{"command_timeout", c.CommandTimeout.String()},
		{"log_levels", strings.Join(c.LogLevels, ", ")},
		{"theme", c.ThemeName},
		{"debug_log", c.DebugLog},
		{"log_level", c.LogLevel},
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

// Encode renders the effective configuration back to TOML.
func (c Config) Encode() ([]byte, error) {
	kb := map[string]string{}
	for _, b := range c.Keymap.Bindings() {
		kb[b[0]] = b[1]
	}
	out := struct {
		PollingInterval float64           `toml:"polling_interval"`
		PollTimeoutMS   int64             `toml:"poll_timeout_ms"`
		AppPath         string            `toml:"app_path"`
		Database        string            `toml:"database"`
		LogFile         string            `toml:"log_file"`
		CacheDriver     string            `toml:"cache_driver"`
		PHPBinary       string            `toml:"php_binary"`
		LogLevels       []string          `toml:"log_levels"`
		Theme           string            `toml:"theme"`
		Keybindings     map[string]string `toml:"keybindings"`
	}{
		PollingInterval: c.PollingInterval.Seconds(),
		PollTimeoutMS:   c.PollTimeout.Milliseconds(),
		AppPath:         c.AppPath,
		Database:        c.Database,
		LogFile:         c.LogFile,
		CacheDriver:     c.CacheDriver,
		PHPBinary:       c.PHPBinary,
		LogLevels:       c.LogLevels,
		Theme:           c.ThemeName,
		Keybindings:     kb,
	}
	return toml.Marshal(out)
}

// seconds accepts an integer or float TOML value.
func seconds(v any) (*float64, error) {
	var f float64
	switch n := v.(type) {
	case nil:
		return nil, nil
	case int64:
		f = float64(n)
	case float64:
		f = n
	default:
		return nil, fmt.Errorf("polling_interval %v: %w", v, ErrInvalid)
	}
	return &f, nil
}

func pathOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return mustExpand(value)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
