package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// View renders the entire TUI interface.
func (m *model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.buildHeader(),
		m.buildTips(),
		m.viewport.View(),
		m.buildLoadingIndicator(),
		m.buildInputBox(),
		m.buildStatusBar(),
	)
}

func (m *model) buildHeader() string {
	return headerStyle.Render(" autochart")
}

func (m *model) buildTips() string {
	return tipsStyle.Render(" HELP lists commands • ↑/↓ history • PgUp/PgDn scroll • EXIT or Ctrl+C to quit")
}

// buildLoadingIndicator renders the spinner while a command runs
func (m *model) buildLoadingIndicator() string {
	if !m.busy {
		return ""
	}
	return lipgloss.NewStyle().
		Foreground(amber).
		Padding(0, 2).
		Render(fmt.Sprintf("%s running %s", m.spinner.View(), m.running))
}

func (m *model) buildInputBox() string {
	return inputBoxStyle.Width(m.width - 4).Render(m.input.View())
}

func (m *model) buildStatusBar() string {
	state := "ready"
	if m.busy {
		state = "busy"
	}
	return statusBarStyle.Render(fmt.Sprintf("%d commands • %s", len(m.history), state))
}
