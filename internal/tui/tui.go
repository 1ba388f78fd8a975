package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ohmyarthur/mistral-vibe/internal/app"
	"github.com/ohmyarthur/mistral-vibe/internal/model"
)

// --- Styles ---
var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")) // Mauve
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))            // Green
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("197"))           // Red
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))           // Orange
	addStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	delStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("197"))
	pathStyle    = lipgloss.NewStyle()
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

// --- Messages ---
type summaryMsg struct {
	model.Summary
}

type previewMsg struct {
	summary model.Summary
	result  *model.MultiEditResult
}

type errorMsg struct{ err error }

func (e errorMsg) Error() string { return e.err.Error() }

// --- Model ---
type Model struct {
	app     *app.App
	spinner spinner.Model
	state   state
	summary summaryMsg
	preview *model.MultiEditResult
	err     error
}

type state int

const (
	stateProcessing state = iota
	stateConfirm
	stateApplying
	stateSummary
	stateError
)

func New(a *app.App) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return Model{
		app:     a,
		spinner: s,
		state:   stateProcessing,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.runApp)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "y", "Y":
			if m.state == stateConfirm {
				m.state = stateApplying
				return m, tea.Batch(m.spinner.Tick, m.applyEdits)
			}
		case "n", "N", "enter":
			if m.state == stateConfirm {
				return m, tea.Quit
			}
		}

	case previewMsg:
		m.state = stateConfirm
		m.summary = summaryMsg{msg.summary}
		m.preview = msg.result
		return m, nil

	case summaryMsg:
		m.state = stateSummary
		m.summary = msg
		return m, tea.Quit

	case errorMsg:
		m.state = stateError
		m.err = msg
		return m, tea.Quit

	default:
		var cmd tea.Cmd
		if m.state == stateProcessing || m.state == stateApplying {
			m.spinner, cmd = m.spinner.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	switch m.state {
	case stateProcessing:
		return fmt.Sprintf("%s Processing...", m.spinner.View())
	case stateApplying:
		return fmt.Sprintf("%s Applying edits...", m.spinner.View())
	case stateConfirm:
		return m.renderPreview()
	case stateError:
		return errorStyle.Render("Error: ", m.err.Error())
	case stateSummary:
		return m.renderSummary()
	default:
		return ""
	}
}

func (m *Model) renderPreview() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(m.summary.Message))
	b.WriteString("\n\n")

	for _, fr := range m.preview.Results {
		b.WriteString(pathStyle.Render(fr.Path))
		b.WriteString("\n")
		if fr.DiffPreview != "" {
			b.WriteString(renderDiff(fr.DiffPreview))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(warnStyle.Render("Apply these edits? [y/N] "))
	return b.String()
}

// renderDiff colorizes unified diff lines.
func renderDiff(diff string) string {
	var b strings.Builder
	for _, line := range strings.Split(strings.TrimRight(diff, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
			b.WriteString(addStyle.Render(line))
		case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
			b.WriteString(delStyle.Render(line))
		case strings.HasPrefix(line, "@@"):
			b.WriteString(faintStyle.Render(line))
		default:
			b.WriteString(line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderSummary() string {
	var b strings.Builder

	if m.summary.Message != "" {
		b.WriteString(headerStyle.Render(m.summary.Message))
		b.WriteString("\n\n")
	}

	hasContent := false
	if len(m.summary.Modified) > 0 {
		hasContent = true
		b.WriteString(successStyle.Render("Modified:"))
		b.WriteString("\n")
		for _, f := range m.summary.Modified {
			b.WriteString(fmt.Sprintf("  %s\n", pathStyle.Render(f)))
		}
	}
	if len(m.summary.Failed) > 0 {
		hasContent = true
		b.WriteString(errorStyle.Render("Failed:"))
		b.WriteString("\n")
		for _, f := range m.summary.Failed {
			b.WriteString(fmt.Sprintf("  %s\n", pathStyle.Render(f)))
		}
	}
	if len(m.summary.Rejected) > 0 {
		hasContent = true
		b.WriteString(warnStyle.Render("Rejected edits in:"))
		b.WriteString("\n")
		for _, f := range m.summary.Rejected {
			b.WriteString(fmt.Sprintf("  %s\n", pathStyle.Render(f)))
		}
	}

	if !hasContent && m.summary.Message == "" {
		b.WriteString(faintStyle.Render("Nothing to do."))
	}

	return b.String()
}

func (m *Model) runApp() tea.Msg {
	summary, err := m.app.Execute()
	if err != nil {
		// Check for detailed error to print stack
		if e, ok := err.(*app.DetailedError); ok {
			// The TUI will exit, so we can print to stderr here for the stack trace.
			fmt.Fprintf(os.Stderr, "\n--- Stack Trace ---\n%s\n", e.Stack)
		}
		return errorMsg{err}
	}

	// A clean preview pauses for confirmation instead of exiting.
	if result, ok := m.app.Result.(*model.MultiEditResult); ok && result.CanApply {
		return previewMsg{summary: summary, result: result}
	}
	return summaryMsg{Summary: summary}
}

func (m *Model) applyEdits() tea.Msg {
	summary, err := m.app.Apply()
	if err != nil {
		if e, ok := err.(*app.DetailedError); ok {
			fmt.Fprintf(os.Stderr, "\n--- Stack Trace ---\n%s\n", e.Stack)
		}
		return errorMsg{err}
	}
	return summaryMsg{Summary: summary}
}
