package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
)

// model represents the state of the TUI application.
type model struct {
	// Bubble Tea components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	ctx        context.Context
	dispatcher Dispatcher

	// Transcript of echoed commands and their output
	content *strings.Builder

	// Command state
	busy    bool
	running string

	// Input history, oldest first; historyPos == len(history) means "new line"
	history    []string
	historyPos int

	// Window dimensions
	width  int
	height int
	ready  bool

	// err is the error that ended the program, if any
	err error
}

// commandDoneMsg carries the result of one dispatched command
type commandDoneMsg struct {
	name   string
	output string
	err    error
}

func newModel(ctx context.Context, d Dispatcher) *model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "CHART AAPL MSFT"
	ti.PromptStyle = echoStyle
	ti.CharLimit = 256
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(amber)

	return &model{
		input:      ti,
		spinner:    sp,
		ctx:        ctx,
		dispatcher: d,
		content:    &strings.Builder{},
	}
}

// appendLine adds a rendered line to the transcript.
func (m *model) appendLine(s string) {
	m.content.WriteString(s)
	m.content.WriteString("\n")
	if m.ready {
		m.viewport.SetContent(m.content.String())
		m.viewport.GotoBottom()
	}
}

func (m *model) appendOutput(out string) {
	out = strings.TrimRight(out, "\n")
	if out == "" {
		return
	}
	for _, line := range strings.Split(out, "\n") {
		m.appendLine(outputStyle.Render(line))
	}
}

func (m *model) pushHistory(line string) {
	if n := len(m.history); n == 0 || m.history[n-1] != line {
		m.history = append(m.history, line)
	}
	m.historyPos = len(m.history)
}

func (m *model) historyPrev() {
	if m.historyPos == 0 {
		return
	}
	m.historyPos--
	m.input.SetValue(m.history[m.historyPos])
	m.input.CursorEnd()
}

func (m *model) historyNext() {
	if m.historyPos >= len(m.history) {
		return
	}
	m.historyPos++
	if m.historyPos == len(m.history) {
		m.input.Reset()
		return
	}
	m.input.SetValue(m.history[m.historyPos])
	m.input.CursorEnd()
}
