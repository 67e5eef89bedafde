// Package tui provides a terminal user interface executor for the chart
// dispatcher.
//
// The TUI codebase is split into multiple files:
// - executor.go: Executor and program lifecycle
// - model.go: Model state, transcript and history
// - update.go: Bubble Tea Update function and command dispatch
// - view.go: Bubble Tea View function and rendering
// - styles.go: Color scheme and styling
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/entrhq/autochart/pkg/command"
)

// Dispatcher runs parsed commands.
type Dispatcher interface {
	Execute(ctx context.Context, out io.Writer, name string, args ...string) error
	Commands() *command.Registry
}

// Executor is a TUI-based executor for the chart dispatcher.
type Executor struct {
	dispatcher Dispatcher
	program    *tea.Program
}

// NewExecutor creates a new TUI executor over d.
func NewExecutor(d Dispatcher) *Executor {
	return &Executor{dispatcher: d}
}

// Run starts the TUI and blocks until the user quits. It returns the
// *command.FatalSessionError that ended the session, if any.
func (e *Executor) Run(ctx context.Context) error {
	m := newModel(ctx, e.dispatcher)

	e.program = tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	if _, err := e.program.Run(); err != nil {
		if ctx.Err() != nil && errors.Is(err, tea.ErrProgramKilled) {
			return ctx.Err()
		}
		return fmt.Errorf("failed to run TUI program: %w", err)
	}

	return m.err
}
