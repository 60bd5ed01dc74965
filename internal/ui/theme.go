package ui

import "github.com/charmbracelet/lipgloss"

// Palette
var (
	AccentTeal   = lipgloss.Color("#2a9d8f")
	AccentSand   = lipgloss.Color("#e9c46a")
	PaletteInk   = lipgloss.Color("#1d2731")
	PalettePaper = lipgloss.Color("#f1faee")
	PaletteSlate = lipgloss.Color("#8a9ba8")

	// Semantic colors
	ColorSuccess = lipgloss.Color("#52b788")
	ColorWarning = lipgloss.Color("#f4a261")
	ColorError   = lipgloss.Color("#e63946")
	ColorInfo    = lipgloss.Color("#4895ef")
)

// Styles for TUI components
var (
	// Header bar
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PalettePaper).
			Background(AccentTeal).
			Padding(0, 1).
			Width(80)

	// Footer bar (keybindings)
	FooterStyle = lipgloss.NewStyle().
			Foreground(PaletteSlate).
			Background(PaletteInk).
			Padding(0, 1).
			Width(80)

	// Section titles
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(AccentTeal).
			MarginTop(1).
			MarginBottom(1)

	ContentStyle = lipgloss.NewStyle().
			Foreground(PalettePaper)

	MutedStyle = lipgloss.NewStyle().
			Foreground(PaletteSlate)

	// Focused input label
	HighlightStyle = lipgloss.NewStyle().
			Foreground(PaletteInk).
			Background(AccentSand).
			Bold(true)

	// Matched files, copied files
	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true)

	// Check failures, failed copies
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	// Unmatched files
	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(ColorInfo)

	// Counters
	StatStyle = lipgloss.NewStyle().
			Foreground(AccentSand).
			Bold(true)
)

// FormatKeybinding formats a keybinding for display in footer
func FormatKeybinding(key, description string) string {
	keyStyle := lipgloss.NewStyle().
		Foreground(AccentSand).
		Bold(true)

	return keyStyle.Render(key) + " " + MutedStyle.Render(description)
}

// FormatHeader formats a header with consistent styling
func FormatHeader(title string) string {
	return HeaderStyle.Render(title)
}

// FormatFooter formats footer with keybindings
func FormatFooter(keybindings ...string) string {
	footer := ""
	for i, kb := range keybindings {
		if i > 0 {
			footer += "  "
		}
		footer += kb
	}
	return FooterStyle.Render(footer)
}

// Status markers
var (
	OKMarker   = lipgloss.NewStyle().Foreground(ColorSuccess).SetString("[OK]")
	InfoMarker = lipgloss.NewStyle().Foreground(ColorInfo).SetString("[INFO]")
	WarnMarker = lipgloss.NewStyle().Foreground(ColorWarning).SetString("[WARN]")
	FailMarker = lipgloss.NewStyle().Foreground(ColorError).SetString("[FAIL]")
)

// FormatStatusOK returns an [OK] marker with message
func FormatStatusOK(message string) string {
	return OKMarker.String() + " " + message
}

// FormatStatusInfo returns an [INFO] marker with message
func FormatStatusInfo(message string) string {
	return InfoMarker.String() + " " + message
}

// FormatStatusWarn returns a [WARN] marker with message
func FormatStatusWarn(message string) string {
	return WarnMarker.String() + " " + message
}

// FormatStatusFail returns a [FAIL] marker with message
func FormatStatusFail(message string) string {
	return FailMarker.String() + " " + message
}

// FormatSeverity renders a log message with the marker for its severity
func FormatSeverity(severity, message string) string {
	switch severity {
	case "error":
		return FormatStatusFail(message)
	case "warn":
		return FormatStatusWarn(message)
	case "debug":
		return MutedStyle.Render(message)
	default:
		return FormatStatusInfo(message)
	}
}
