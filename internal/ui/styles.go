package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette names the colors of a theme. Values are color names ("cyan"),
// ANSI numbers ("6") or hex ("#00ffff").
type Palette struct {
	Primary    string
	Secondary  string
	Error      string
	Success    string
	Warning    string
	Info       string
	Muted      string
	Background string
	Foreground string
}

// Built-in palettes
var (
	DarkPalette = Palette{
		Primary: "cyan", Secondary: "yellow", Error: "red", Success: "green",
		Warning: "yellow", Info: "blue", Muted: "gray", Background: "black", Foreground: "white",
	}
	LightPalette = Palette{
		Primary: "blue", Secondary: "magenta", Error: "red", Success: "green",
		Warning: "yellow", Info: "cyan", Muted: "gray", Background: "white", Foreground: "black",
	}
)

var colorNames = map[string]string{
	"black":   "0",
	"red":     "1",
	"green":   "2",
	"yellow":  "3",
	"blue":    "4",
	"magenta": "5",
	"cyan":    "6",
	"white":   "7",
	"gray":    "8",
	"grey":    "8",
}

// Color converts a palette entry to a lipgloss color.
func Color(name string) lipgloss.Color {
	if c, ok := colorNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		return lipgloss.Color(c)
	}
	return lipgloss.Color(name)
}

// Theme holds the styles used across the dashboard
type Theme struct {
	TabActive   lipgloss.Style
	TabInactive lipgloss.Style
	Rule        lipgloss.Style
	Title       lipgloss.Style
	Selected    lipgloss.Style
	Muted       lipgloss.Style
	Primary     lipgloss.Style
	Secondary   lipgloss.Style
	Error       lipgloss.Style
	Success     lipgloss.Style
	Warning     lipgloss.Style
	Info        lipgloss.Style
	Bold        lipgloss.Style
}

// NewTheme builds a Theme from a palette
func NewTheme(p Palette) Theme {
	return Theme{
		TabActive: lipgloss.NewStyle().
			Bold(true).
			Foreground(Color(p.Background)).
			Background(Color(p.Primary)),
		TabInactive: lipgloss.NewStyle().Foreground(Color(p.Foreground)),
		Rule:        lipgloss.NewStyle().Foreground(Color(p.Muted)),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(Color(p.Primary)),
		Selected: lipgloss.NewStyle().
			Foreground(Color(p.Background)).
			Background(Color(p.Secondary)),
		Muted:     lipgloss.NewStyle().Foreground(Color(p.Muted)),
		Primary:   lipgloss.NewStyle().Foreground(Color(p.Primary)),
		Secondary: lipgloss.NewStyle().Foreground(Color(p.Secondary)),
		Error:     lipgloss.NewStyle().Foreground(Color(p.Error)).Bold(true),
		Success:   lipgloss.NewStyle().Foreground(Color(p.Success)),
		Warning:   lipgloss.NewStyle().Foreground(Color(p.Warning)),
		Info:      lipgloss.NewStyle().Foreground(Color(p.Info)),
		Bold:      lipgloss.NewStyle().Bold(true),
	}
}

// DefaultTheme is the dark theme
func DefaultTheme() Theme { return NewTheme(DarkPalette) }

// StatusColor returns a color based on percentage thresholds
func StatusColor(percent, warning, critical float64) lipgloss.Color {
	if percent >= critical {
		return lipgloss.Color("#ff0000")
	} else if percent >= warning {
		return lipgloss.Color("#ffaa00")
	}
	return lipgloss.Color("#00ff00")
}
