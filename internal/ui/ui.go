package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Nomadcxx/brandcheck/internal/reporter"
	"github.com/Nomadcxx/brandcheck/internal/scanner"
	"github.com/Nomadcxx/brandcheck/internal/session"
)

// ViewMode represents the current report view
type ViewMode int

const (
	ViewSummary ViewMode = iota
	ViewUnmatched
)

// LogLine is one rendered progress event
type LogLine struct {
	Timestamp string
	Operation string
	Message   string
	Severity  string
}

// ReportModel shows a saved or just-finished check report
type ReportModel struct {
	report   reporter.Report
	outcome  *session.Outcome // Set when opened from a finished check
	mode     ViewMode
	viewport viewport.Model
	ready    bool
	width    int
	height   int
}

// NewReportModel creates a report viewer
func NewReportModel(report reporter.Report) ReportModel {
	return ReportModel{
		report: report,
		mode:   ViewSummary,
	}
}

// Init initializes the TUI
func (m ReportModel) Init() tea.Cmd {
	return nil
}

// Outcome returns the check that produced the report, nil for saved reports
func (m ReportModel) Outcome() *session.Outcome {
	return m.outcome
}

// Mode returns the active view
func (m ReportModel) Mode() ViewMode {
	return m.mode
}

// Update handles messages
func (m ReportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "esc":
			if m.mode != ViewSummary {
				m.mode = ViewSummary
				m.viewport.SetContent(m.renderSummary())
				return m, nil
			}
			return m, tea.Quit

		case "f1", "u":
			m.mode = ViewUnmatched
			m.viewport.SetContent(m.renderUnmatched())
			m.viewport.GotoTop()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-4) // Leave room for header/footer
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 4
		}
		m.refresh()
		return m, nil
	}

	// Handle viewport updates (scrolling)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *ReportModel) refresh() {
	if m.mode == ViewUnmatched {
		m.viewport.SetContent(m.renderUnmatched())
		return
	}
	m.viewport.SetContent(m.renderSummary())
}

// View renders the TUI
func (m ReportModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var header, footer string
	switch m.mode {
	case ViewSummary:
		header = FormatHeader("BRANDCHECK SUMMARY")
		footer = FormatFooter(
			FormatKeybinding("F1", "Unmatched Files"),
			FormatKeybinding("Esc", "Exit"),
		)

	case ViewUnmatched:
		header = FormatHeader("UNMATCHED FILES")
		scrollInfo := fmt.Sprintf("%d%%", int(m.viewport.ScrollPercent()*100))
		footer = FormatFooter(
			FormatKeybinding("↑↓", "Scroll"),
			FormatKeybinding("PgUp/PgDn", "Page"),
			FormatKeybinding("Esc", "Back"),
			MutedStyle.Render(scrollInfo),
		)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		m.viewport.View(),
		footer,
	)
}

// renderSummary renders the summary view
func (m ReportModel) renderSummary() string {
	var sb strings.Builder
	r := m.report

	sb.WriteString(FormatASCIIHeader() + "\n\n")

	sb.WriteString(InfoStyle.Render("Generated: ") + ContentStyle.Render(r.Timestamp.Format("2006-01-02 15:04:05")) + "\n")
	sb.WriteString(InfoStyle.Render("Run ID: ") + ContentStyle.Render(r.RunID) + "\n")
	sb.WriteString(InfoStyle.Render("Brand root: ") + ContentStyle.Render(r.BrandRoot) + "\n")
	sb.WriteString(InfoStyle.Render("Image root: ") + ContentStyle.Render(r.ImageRoot) + "\n")

	sb.WriteString(TitleStyle.Render("RESULTS") + "\n")
	sb.WriteString(renderCounters(r.BrandCount, r.Processed, r.Matched, r.UnmatchedCount(), r.Copied))
	if r.CopyErrors > 0 {
		sb.WriteString(ErrorStyle.Render(fmt.Sprintf("Copy failures: %d", r.CopyErrors)) + "\n")
	}
	if r.Destination != "" {
		sb.WriteString(InfoStyle.Render("Quarantine folder: ") + ContentStyle.Render(r.Destination) + "\n")
	}
	sb.WriteString("\n")

	if missing := reporter.TopMissingBrands(r); len(missing) > 0 {
		sb.WriteString(MutedStyle.Render("Most frequent unknown brands:") + "\n")
		limit := 5
		if len(missing) < limit {
			limit = len(missing)
		}
		for i := 0; i < limit; i++ {
			sb.WriteString(fmt.Sprintf("  %s %s - %s files\n",
				WarningStyle.Render(fmt.Sprintf("%d.", i+1)),
				ContentStyle.Render(missing[i].Token),
				StatStyle.Render(fmt.Sprintf("%d", missing[i].Count))))
		}
		sb.WriteString("\n")
	}

	if r.UnmatchedCount() == 0 {
		sb.WriteString(SuccessStyle.Render("All images have a matching brand.") + "\n")
	}

	return sb.String()
}

// renderUnmatched renders every unmatched file and where it went
func (m ReportModel) renderUnmatched() string {
	var sb strings.Builder

	if len(m.report.Unmatched) == 0 {
		sb.WriteString(MutedStyle.Render("No unmatched files.") + "\n")
		return sb.String()
	}

	for _, entry := range m.report.Unmatched {
		reason := "no brand token"
		if entry.Reason == string(scanner.ReasonBrandNotFound) {
			reason = "brand: " + entry.Token
		}
		sb.WriteString(fmt.Sprintf("%s %s\n",
			WarningStyle.Render("✗"),
			ContentStyle.Render(entry.RelPath)))
		sb.WriteString(fmt.Sprintf("    %s\n", MutedStyle.Render(reason)))

		switch {
		case entry.CopiedTo != "":
			sb.WriteString(fmt.Sprintf("    %s %s\n", SuccessStyle.Render("COPIED:"), MutedStyle.Render(entry.CopiedTo)))
		case entry.Error != "":
			sb.WriteString(fmt.Sprintf("    %s %s\n", ErrorStyle.Render("FAILED:"), ContentStyle.Render(entry.Error)))
		}
	}

	return sb.String()
}

// renderCounters renders the counter block shared by the report and check views
func renderCounters(brands, processed, matched, unmatched, copied int) string {
	var sb strings.Builder
	sb.WriteString(InfoStyle.Render("Brands loaded: ") + StatStyle.Render(fmt.Sprintf("%d", brands)) + "\n")
	sb.WriteString(InfoStyle.Render("Images processed: ") + StatStyle.Render(fmt.Sprintf("%d", processed)) + "\n")
	sb.WriteString(InfoStyle.Render("Matched: ") + SuccessStyle.Render(fmt.Sprintf("%d", matched)) + "\n")
	sb.WriteString(InfoStyle.Render("Unmatched: ") + WarningStyle.Render(fmt.Sprintf("%d", unmatched)) + "\n")
	sb.WriteString(InfoStyle.Render("Copied: ") + StatStyle.Render(fmt.Sprintf("%d", copied)) + "\n")
	return sb.String()
}

// renderProgressBar creates a text-based progress bar
func renderProgressBar(percent float64, width int) string {
	filled := int((percent / 100.0) * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := "[" + strings.Repeat("█", filled) + strings.Repeat(" ", width-filled) + "]"
	return SuccessStyle.Render(bar)
}
