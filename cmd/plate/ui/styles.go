// Package ui provides the visual styling and the pure card renderer for the
// platefinder terminal client.
package ui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Semantic colors, shared by both palettes.
var (
	Success = lipgloss.Color("#8BC34A")
	Error   = lipgloss.Color("#e53935")
	Warning = lipgloss.Color("#FFC107")
	Info    = lipgloss.Color("#2196F3")
)

// Theme holds the current color scheme.
type Theme struct {
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light palette.
func LightTheme() Theme {
	return Theme{
		Foreground: lipgloss.Color("#101F38"),
		Primary:    lipgloss.Color("#B23A48"), // terracotta
		Accent:     lipgloss.Color("#2A9D8F"), // teal
		Muted:      lipgloss.Color("#8a8f98"),
		Border:     lipgloss.Color("#dce0e5"),
		IsDark:     false,
	}
}

// DarkTheme returns the dark palette.
func DarkTheme() Theme {
	return Theme{
		Foreground: lipgloss.Color("#f2f2f2"),
		Primary:    lipgloss.Color("#E76F51"),
		Accent:     lipgloss.Color("#2A9D8F"),
		Muted:      lipgloss.Color("#6c7380"),
		Border:     lipgloss.Color("#2a3850"),
		IsDark:     true,
	}
}

// ThemeFor maps a config value (auto, light, dark) to a theme.
func ThemeFor(name string) Theme {
	switch name {
	case "light":
		return LightTheme()
	case "dark":
		return DarkTheme()
	default:
		return detectTheme()
	}
}

func detectTheme() Theme {
	// COLORFGBG carries "fg;bg"; a low background number means dark.
	if v := os.Getenv("COLORFGBG"); v != "" {
		parts := strings.Split(v, ";")
		bg := parts[len(parts)-1]
		if bg == "0" || bg == "1" || bg == "8" {
			return DarkTheme()
		}
		return LightTheme()
	}
	return DarkTheme()
}

// Styles bundles the lipgloss styles used across the app.
type Styles struct {
	Theme Theme

	// Layout
	Header lipgloss.Style
	Footer lipgloss.Style
	Card   lipgloss.Style

	// Text
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Muted    lipgloss.Style
	Bold     lipgloss.Style

	// Status
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	// Components
	Tag        lipgloss.Style
	CuisineTag lipgloss.Style
	DietaryTag lipgloss.Style
	Score      lipgloss.Style
	NavActive  lipgloss.Style
	NavItem    lipgloss.Style
	Spinner    lipgloss.Style
}

// NewStyles creates the style set for a theme.
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Primary).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(theme.Border),
		Footer: lipgloss.NewStyle().Foreground(theme.Muted),
		Card: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		Title:    lipgloss.NewStyle().Bold(true).Foreground(theme.Primary),
		Subtitle: lipgloss.NewStyle().Foreground(theme.Accent),
		Muted:    lipgloss.NewStyle().Foreground(theme.Muted),
		Bold:     lipgloss.NewStyle().Bold(true),

		Success: lipgloss.NewStyle().Foreground(Success),
		Error:   lipgloss.NewStyle().Foreground(Error),
		Warning: lipgloss.NewStyle().Foreground(Warning),
		Info:    lipgloss.NewStyle().Foreground(Info),

		Tag:        lipgloss.NewStyle().Foreground(theme.Muted),
		CuisineTag: lipgloss.NewStyle().Foreground(theme.Accent),
		DietaryTag: lipgloss.NewStyle().Foreground(Success),
		Score:      lipgloss.NewStyle().Bold(true).Foreground(theme.Accent),
		NavActive:  lipgloss.NewStyle().Bold(true).Foreground(theme.Primary).Underline(true),
		NavItem:    lipgloss.NewStyle().Foreground(theme.Muted),
		Spinner:    lipgloss.NewStyle().Foreground(theme.Accent),
	}
}

// PlainStyles returns an uncolored style set for one-shot command output.
func PlainStyles() Styles {
	return NewStyles(Theme{})
}
