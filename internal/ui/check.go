package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Nomadcxx/brandcheck/internal/reporter"
	"github.com/Nomadcxx/brandcheck/internal/scanner"
	"github.com/Nomadcxx/brandcheck/internal/session"
)

// CheckPhase is the stage the check screen is in
type CheckPhase int

const (
	PhaseInput   CheckPhase = iota // Asking for roots
	PhaseRunning                   // Check in flight
	PhaseDone                      // Outcome or failure shown
)

// maxLogLines bounds the in-memory log buffer
const maxLogLines = 1000

// checkStartedMsg carries the channels of a started check
type checkStartedMsg struct {
	events <-chan scanner.ScanProgress
	done   <-chan session.Completion
}

// checkStartErrMsg reports a check that could not start
type checkStartErrMsg struct{ err error }

// CheckModel runs a check and streams its log
type CheckModel struct {
	session *session.Session
	req     session.Request

	phase  CheckPhase
	inputs []textinput.Model
	focus  int

	spinner  spinner.Model
	viewport viewport.Model
	ready    bool
	width    int
	height   int

	events <-chan scanner.ScanProgress
	done   <-chan session.Completion

	logs            []LogLine
	currentProgress string
	progressPercent float64
	notice          string

	outcome *session.Outcome
	err     error
}

// NewCheckModel creates the check screen. Missing roots are asked for
// before the check starts.
func NewCheckModel(s *session.Session, req session.Request) CheckModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(AccentTeal)

	m := CheckModel{
		session: s,
		req:     req,
		phase:   PhaseRunning,
		spinner: sp,
	}

	if req.BrandRoot == "" || req.ImageRoot == "" {
		m.phase = PhaseInput
		m.inputs = []textinput.Model{
			newRootInput("Brand root directory", req.BrandRoot),
			newRootInput("Image root directory", req.ImageRoot),
		}
		if req.BrandRoot != "" {
			m.focus = 1
		}
		m.inputs[m.focus].Focus()
	}

	return m
}

func newRootInput(placeholder, value string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 4096
	ti.Width = 60
	ti.SetValue(value)
	return ti
}

// Init starts the check, or the cursor blink when roots are missing
func (m CheckModel) Init() tea.Cmd {
	if m.phase == PhaseInput {
		return textinput.Blink
	}
	return tea.Batch(m.spinner.Tick, m.startCheck())
}

// Phase returns the current phase
func (m CheckModel) Phase() CheckPhase {
	return m.phase
}

// Outcome returns the finished check's outcome, nil until done or on failure
func (m CheckModel) Outcome() *session.Outcome {
	return m.outcome
}

// Err returns the check failure, if any
func (m CheckModel) Err() error {
	return m.err
}

// Logs returns the buffered log lines
func (m CheckModel) Logs() []LogLine {
	return m.logs
}

// Notice returns the transient status line
func (m CheckModel) Notice() string {
	return m.notice
}

// Request returns the roots the check runs with
func (m CheckModel) Request() session.Request {
	return m.req
}

// startCheck starts the session run and hands its channels to Update
func (m CheckModel) startCheck() tea.Cmd {
	s, req := m.session, m.req
	return func() tea.Msg {
		events := make(chan scanner.ScanProgress, 256)
		done, err := s.Start(req, events)
		if err != nil {
			return checkStartErrMsg{err: err}
		}
		return checkStartedMsg{events: events, done: done}
	}
}

// waitForEvent delivers the next progress event or the completion
func waitForEvent(events <-chan scanner.ScanProgress, done <-chan session.Completion) tea.Cmd {
	return func() tea.Msg {
		select {
		case p := <-events:
			return p
		case c := <-done:
			return c
		}
	}
}

// Update handles messages
func (m CheckModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-12)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 12
		}
		m.refreshLog()
		return m, nil

	case spinner.TickMsg:
		if m.phase != PhaseRunning {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case checkStartedMsg:
		m.events, m.done = msg.events, msg.done
		return m, waitForEvent(m.events, m.done)

	case checkStartErrMsg:
		m.phase = PhaseDone
		m.err = msg.err
		m.appendLog(scanner.ScanProgress{Operation: "brand_check", Message: msg.err.Error(), Severity: scanner.SeverityError})
		return m, nil

	case scanner.ScanProgress:
		m.applyProgress(msg)
		if m.events == nil {
			return m, nil
		}
		return m, waitForEvent(m.events, m.done)

	case session.Completion:
		// Events sent before completion may still be buffered
	drain:
		for m.events != nil {
			select {
			case p, ok := <-m.events:
				if !ok {
					break drain
				}
				m.applyProgress(p)
			default:
				break drain
			}
		}
		m.phase = PhaseDone
		m.outcome, m.err = msg.Outcome, msg.Err
		m.notice = ""
		if msg.Err != nil {
			m.appendLog(scanner.ScanProgress{Operation: "brand_check", Message: msg.Err.Error(), Severity: scanner.SeverityError})
		}
		return m, nil
	}

	if m.phase == PhaseInput && len(m.inputs) > 0 {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m CheckModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.phase {
	case PhaseInput:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "tab", "shift+tab", "up", "down":
			m.inputs[m.focus].Blur()
			m.focus = (m.focus + 1) % len(m.inputs)
			m.inputs[m.focus].Focus()
			return m, textinput.Blink

		case "enter":
			if m.focus < len(m.inputs)-1 {
				m.inputs[m.focus].Blur()
				m.focus++
				m.inputs[m.focus].Focus()
				return m, textinput.Blink
			}
			m.req.BrandRoot = strings.TrimSpace(m.inputs[0].Value())
			m.req.ImageRoot = strings.TrimSpace(m.inputs[1].Value())
			m.inputs[m.focus].Blur()
			m.phase = PhaseRunning
			return m, tea.Batch(m.spinner.Tick, m.startCheck())
		}

		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd

	case PhaseRunning:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			// A running check cannot be cancelled; it finishes on its own
			m.notice = "A check cannot be cancelled once started, waiting for it to finish..."
			return m, nil
		}

	case PhaseDone:
		switch msg.String() {
		case "ctrl+c", "q", "esc", "enter":
			return m, tea.Quit

		case "r":
			if m.outcome == nil {
				return m, nil
			}
			report := reporter.New(m.outcome.RunID, m.req.BrandRoot, m.req.ImageRoot,
				string(m.outcome.Status), m.outcome.Result, m.outcome.Copy)
			reportModel := NewReportModel(report)
			reportModel.outcome = m.outcome
			width, height := m.width, m.height
			return reportModel, func() tea.Msg {
				return tea.WindowSizeMsg{Width: width, Height: height}
			}
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *CheckModel) applyProgress(p scanner.ScanProgress) {
	if p.Total > 0 {
		m.progressPercent = p.Percentage
	}
	if p.Message != "" && !p.IsLogLine() {
		m.currentProgress = p.Message
	}
	if p.IsLogLine() {
		m.appendLog(p)
	}
}

func (m *CheckModel) appendLog(p scanner.ScanProgress) {
	m.logs = append(m.logs, LogLine{
		Timestamp: fmt.Sprintf("%02d:%02d", p.ElapsedSeconds/60, p.ElapsedSeconds%60),
		Operation: p.Operation,
		Message:   p.Message,
		Severity:  p.Severity,
	})
	if len(m.logs) > maxLogLines {
		m.logs = m.logs[len(m.logs)-maxLogLines:]
	}
	m.refreshLog()
}

func (m *CheckModel) refreshLog() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderLog())
	m.viewport.GotoBottom()
}

// View renders the check screen
func (m CheckModel) View() string {
	if m.phase == PhaseInput {
		return m.viewInput()
	}
	if !m.ready {
		return "Initializing..."
	}

	var sb strings.Builder
	var header, footer string

	switch m.phase {
	case PhaseRunning:
		header = FormatHeader("CHECK IN PROGRESS")
		sb.WriteString(fmt.Sprintf("%s %s\n", m.spinner.View(), ContentStyle.Render(m.currentProgress)))
		sb.WriteString(renderProgressBar(m.progressPercent, 50))
		sb.WriteString(fmt.Sprintf(" %.1f%%\n", m.progressPercent))
		if m.notice != "" {
			sb.WriteString(WarningStyle.Render(m.notice) + "\n")
		}
		footer = FormatFooter(MutedStyle.Render("Please wait..."))

	case PhaseDone:
		header = FormatHeader("CHECK COMPLETE")
		sb.WriteString(m.renderResult())
		if m.outcome != nil {
			footer = FormatFooter(
				FormatKeybinding("R", "View Report"),
				FormatKeybinding("↑↓", "Scroll Log"),
				FormatKeybinding("Enter", "Exit"),
			)
		} else {
			footer = FormatFooter(FormatKeybinding("Enter", "Exit"))
		}
	}

	sb.WriteString("\n" + TitleStyle.Render("LOG") + "\n")
	sb.WriteString(m.viewport.View())

	return lipgloss.JoinVertical(lipgloss.Left, header, sb.String(), footer)
}

func (m CheckModel) viewInput() string {
	var sb strings.Builder

	sb.WriteString(FormatASCIIHeaderWithSubtext("Match image filenames against your brand folders") + "\n\n")
	labels := []string{"Brand root", "Image root"}
	for i, input := range m.inputs {
		label := MutedStyle.Render(labels[i] + ":")
		if i == m.focus {
			label = HighlightStyle.Render(labels[i] + ":")
		}
		sb.WriteString(label + "\n" + input.View() + "\n\n")
	}
	sb.WriteString(FormatFooter(
		FormatKeybinding("Tab", "Switch"),
		FormatKeybinding("Enter", "Next / Start"),
		FormatKeybinding("Esc", "Quit"),
	))

	return sb.String()
}

// renderResult renders the outcome or failure
func (m CheckModel) renderResult() string {
	if m.err != nil {
		return FormatStatusFail(m.err.Error()) + "\n"
	}
	if m.outcome == nil {
		return ""
	}

	var sb strings.Builder
	sum := m.outcome.Summary()
	sb.WriteString(renderCounters(m.outcome.Result.BrandCount, sum.Processed, sum.Matched, sum.Unmatched, sum.Copied))

	switch m.outcome.Status {
	case session.StatusAllMatched:
		sb.WriteString(FormatStatusOK("All images have a matching brand") + "\n")
	case session.StatusCopied:
		sb.WriteString(FormatStatusOK(fmt.Sprintf("Copied %d files to %s", sum.Copied, m.outcome.Copy.Destination)) + "\n")
	case session.StatusPartial:
		sb.WriteString(FormatStatusWarn(fmt.Sprintf("Copied %d files to %s, %d failed",
			sum.Copied, m.outcome.Copy.Destination, m.outcome.Copy.FailedCount())) + "\n")
	}
	if m.outcome.ReportPath != "" {
		sb.WriteString(FormatStatusInfo("Report saved: "+m.outcome.ReportPath) + "\n")
	}

	return sb.String()
}

// renderLog renders the buffered log lines
func (m CheckModel) renderLog() string {
	var sb strings.Builder
	for _, entry := range m.logs {
		line := fmt.Sprintf("%s %s", MutedStyle.Render(entry.Timestamp), FormatSeverity(entry.Severity, entry.Message))
		sb.WriteString(line + "\n")
	}
	return sb.String()
}
