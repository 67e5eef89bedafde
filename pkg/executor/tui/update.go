package tui

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/entrhq/autochart/pkg/command"
)

// chromeHeight is the number of rows used by everything except the viewport.
const chromeHeight = 7

// helpCommand is handled locally and never dispatched.
const helpCommand = "HELP"

// Init starts the cursor blink.
func (m *model) Init() tea.Cmd {
	return tea.Batch(tea.SetWindowTitle("autochart"), m.input.Focus())
}

// Update handles all state updates for the TUI model.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case commandDoneMsg:
		return m.handleDone(msg)

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) resize(width, height int) {
	m.width = width
	m.height = height
	vpHeight := height - chromeHeight
	if vpHeight < 1 {
		vpHeight = 1
	}
	if !m.ready {
		m.viewport = viewport.New(width, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = vpHeight
	}
	m.input.Width = width - 8
	m.viewport.SetContent(m.content.String())
	m.viewport.GotoBottom()
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit

	case tea.KeyUp:
		m.historyPrev()
		return m, nil

	case tea.KeyDown:
		m.historyNext()
		return m, nil

	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case tea.KeyEnter:
		return m.submit()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit dispatches the current input line.
func (m *model) submit() (tea.Model, tea.Cmd) {
	line := m.input.Value()
	name, args, ok := command.ParseInput(line)
	if !ok {
		return m, nil
	}
	if m.busy {
		m.appendLine(errorStyle.Render(fmt.Sprintf("%s is still running", m.running)))
		return m, nil
	}

	m.input.Reset()
	m.pushHistory(line)
	m.appendLine(echoStyle.Render("> " + line))

	if name == helpCommand {
		m.appendHelp()
		return m, nil
	}

	m.busy = true
	m.running = name
	return m, tea.Batch(m.execute(name, args), m.spinner.Tick)
}

// execute runs the command off the UI goroutine and reports its output.
func (m *model) execute(name string, args []string) tea.Cmd {
	ctx, d := m.ctx, m.dispatcher
	return func() tea.Msg {
		var out bytes.Buffer
		err := d.Execute(ctx, &out, name, args...)
		return commandDoneMsg{name: name, output: out.String(), err: err}
	}
}

func (m *model) handleDone(msg commandDoneMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	m.running = ""
	m.appendOutput(msg.output)

	if msg.err == nil {
		return m, nil
	}
	if _, fatal := command.IsFatal(msg.err); fatal || errors.Is(msg.err, command.ErrTerminated) {
		m.err = msg.err
		return m, tea.Quit
	}

	var unknown *command.UnknownCommandError
	if errors.As(msg.err, &unknown) {
		m.appendLine(errorStyle.Render(msg.err.Error() + ". Type HELP for a list of commands."))
		return m, nil
	}
	m.appendLine(errorStyle.Render("error: " + msg.err.Error()))
	return m, nil
}

func (m *model) appendHelp() {
	registry := m.dispatcher.Commands()
	for _, name := range registry.Names() {
		cmd, ok := registry.Lookup(name)
		if !ok {
			continue
		}
		m.appendLine(helpNameStyle.Render(name) + tipsStyle.Render(cmd.Description()))
	}
}
