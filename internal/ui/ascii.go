package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// brandcheck header, one line per row
var brandcheckASCII = strings.Join([]string{
	" _                         _      _               _    ",
	"| |__  _ __ __ _ _ __   __| | ___| |__   ___  ___| | __",
	"| '_ \\| '__/ _` | '_ \\ / _` |/ __| '_ \\ / _ \\/ __| |/ /",
	"| |_) | | | (_| | | | | (_| | (__| | | |  __/ (__|   < ",
	"|_.__/|_|  \\__,_|_| |_|\\__,_|\\___|_| |_|\\___|\\___|_|\\_\\",
}, "\n")

// FormatASCIIHeader renders the brandcheck header
func FormatASCIIHeader() string {
	headerStyle := lipgloss.NewStyle().
		Foreground(AccentTeal).
		Bold(true)

	return headerStyle.Render(brandcheckASCII)
}

// FormatASCIIHeaderWithSubtext renders header with subtitle
func FormatASCIIHeaderWithSubtext(subtext string) string {
	subtitle := lipgloss.NewStyle().
		Foreground(PaletteSlate).
		Render(subtext)

	return FormatASCIIHeader() + "\n\n" + subtitle
}
