package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// customTheme pins the light or dark variant of the default theme and scales
// text from the configured font size
type customTheme struct {
	baseFontSize float32
	variant      fyne.ThemeVariant
	baseTheme    fyne.Theme
}

func newCustomTheme(baseFontSize int, isDark bool) fyne.Theme {
	if baseFontSize < 10 {
		baseFontSize = 14
	}
	variant := theme.VariantLight
	if isDark {
		variant = theme.VariantDark
	}

	return &customTheme{
		baseFontSize: float32(baseFontSize),
		variant:      variant,
		baseTheme:    theme.DefaultTheme(),
	}
}

func (t *customTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	// Read-only text areas are disabled entries; keep them readable
	if name == theme.ColorNameDisabled {
		return t.baseTheme.Color(theme.ColorNameForeground, t.variant)
	}
	return t.baseTheme.Color(name, t.variant)
}

func (t *customTheme) Font(style fyne.TextStyle) fyne.Resource {
	return t.baseTheme.Font(style)
}

func (t *customTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return t.baseTheme.Icon(name)
}

func (t *customTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameText:
		return t.baseFontSize
	case theme.SizeNameHeadingText:
		return t.baseFontSize * 1.5
	case theme.SizeNameSubHeadingText:
		return t.baseFontSize * 1.2
	case theme.SizeNameCaptionText:
		return t.baseFontSize * 0.85
	default:
		return t.baseTheme.Size(name)
	}
}
