package plotpage

import (
	"errors"
	"fmt"
)

// Theme represents a color theme for the report page.
type Theme string

const (
	// ThemeLight is the light color theme.
	ThemeLight Theme = "light"
	// ThemeDark is the dark color theme.
	ThemeDark Theme = "dark"
)

// ErrUnknownTheme is returned by ParseTheme for unsupported names.
var ErrUnknownTheme = errors.New("unknown theme")

// ParseTheme converts a configured theme name.
func ParseTheme(name string) (Theme, error) {
	switch Theme(name) {
	case ThemeLight, ThemeDark:
		return Theme(name), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}
}

// ThemeConfig holds all theme-specific styling values.
type ThemeConfig struct {
	// Base colors.
	Background string
	Surface    string
	Border     string

	// Text colors.
	TextPrimary string
	TextMuted   string

	// Accent and error colors.
	Accent     string
	AccentText string
	Error      string

	// Chart-specific.
	ChartBackground string
	ChartGrid       string
	ChartAxis       string
	ChartText       string
	ChartTextMuted  string

	// ECharts theme name.
	EChartsTheme string
}

// GetThemeConfig returns the configuration for a given theme.
func GetThemeConfig(theme Theme) ThemeConfig {
	if theme == ThemeDark {
		return darkTheme
	}

	return lightTheme
}

// DefaultPalette is the series palette shared by every renderer, so a
// category keeps its colour whichever renderer draws it.
var DefaultPalette = []string{
	"#7cb5ec", "#434348", "#90ed7d", "#f7a35c", "#8085e9",
	"#f15c80", "#e4d354", "#2b908f", "#f45b5b", "#91e8e1",
}

// PaletteColor returns the palette colour for series idx, wrapping around.
func PaletteColor(idx int) string {
	return DefaultPalette[idx%len(DefaultPalette)]
}

var lightTheme = ThemeConfig{
	Background: "#fafaf9", // stone-50.
	Surface:    "#ffffff",
	Border:     "#e7e5e4", // stone-200.

	TextPrimary: "#1c1917", // stone-900.
	TextMuted:   "#78716c", // stone-500.

	Accent:     "#a16207", // amber-700.
	AccentText: "#ffffff",
	Error:      "#dc2626", // red-600.

	ChartBackground: "transparent",
	ChartGrid:       "#e7e5e4", // stone-200.
	ChartAxis:       "#a8a29e", // stone-400.
	ChartText:       "#44403c", // stone-700.
	ChartTextMuted:  "#78716c", // stone-500.

	EChartsTheme: "",
}

var darkTheme = ThemeConfig{
	Background: "#0c0a09", // stone-950.
	Surface:    "#1c1917", // stone-900.
	Border:     "#44403c", // stone-700.

	TextPrimary: "#fafaf9", // stone-50.
	TextMuted:   "#a8a29e", // stone-400.

	Accent:     "#d97706", // amber-600.
	AccentText: "#ffffff",
	Error:      "#ef4444", // red-500.

	ChartBackground: "transparent",
	ChartGrid:       "#44403c", // stone-700.
	ChartAxis:       "#57534e", // stone-600.
	ChartText:       "#d6d3d1", // stone-300.
	ChartTextMuted:  "#a8a29e", // stone-400.

	EChartsTheme: "",
}
