// Package cli provides a line-oriented executor for the chart dispatcher.
//
// Example usage:
//
//	d := command.NewDispatcher(deps)
//	err := command.Run(ctx, d, func(*command.Registry) error {
//	    return cli.NewExecutor(d).Run(ctx)
//	})
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/entrhq/autochart/pkg/command"
)

// helpCommand is handled by the executor itself and never dispatched.
const helpCommand = "HELP"

// Dispatcher runs parsed commands.
type Dispatcher interface {
	Execute(ctx context.Context, out io.Writer, name string, args ...string) error
	Commands() *command.Registry
}

// Executor reads commands from a reader one line at a time and dispatches
// them until EOF, EXIT or session loss.
type Executor struct {
	dispatcher Dispatcher
	reader     *bufio.Reader
	writer     io.Writer
	prompt     string
}

// ExecutorOption is a function that configures an Executor.
type ExecutorOption func(*Executor)

// WithWriter sets a custom output writer (default is os.Stdout).
func WithWriter(w io.Writer) ExecutorOption {
	return func(e *Executor) {
		e.writer = w
	}
}

// WithReader sets a custom input reader (default is os.Stdin).
func WithReader(r io.Reader) ExecutorOption {
	return func(e *Executor) {
		e.reader = bufio.NewReader(r)
	}
}

// WithPrompt sets the prompt printed before each read.
func WithPrompt(p string) ExecutorOption {
	return func(e *Executor) {
		e.prompt = p
	}
}

// NewExecutor creates a new CLI executor over d.
func NewExecutor(d Dispatcher, opts ...ExecutorOption) *Executor {
	e := &Executor{
		dispatcher: d,
		reader:     bufio.NewReader(os.Stdin),
		writer:     os.Stdout,
		prompt:     "> ",
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Run starts the input loop. It returns nil on EOF, the context error on
// cancellation, and the *command.FatalSessionError that ended the session
// on EXIT or session loss.
func (e *Executor) Run(ctx context.Context) error {
	fmt.Fprintln(e.writer, "autochart")
	fmt.Fprintln(e.writer, "Type a command and press Enter. HELP lists commands, EXIT quits.")
	fmt.Fprintln(e.writer)

	lines := make(chan readResult)
	done := make(chan struct{})
	defer close(done)
	go e.readLines(lines, done)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		fmt.Fprint(e.writer, e.prompt)

		var in readResult
		select {
		case <-ctx.Done():
			fmt.Fprintln(e.writer)
			return ctx.Err()
		case in = <-lines:
		}
		if in.err != nil && !errors.Is(in.err, io.EOF) {
			return fmt.Errorf("failed to read input: %w", in.err)
		}
		eof := errors.Is(in.err, io.EOF)

		if name, args, ok := command.ParseInput(in.line); ok {
			if ferr := e.handle(ctx, name, args); ferr != nil {
				return ferr
			}
		}

		if eof {
			fmt.Fprintln(e.writer)
			return nil
		}
	}
}

// readResult is one line read from the input, with the read error if any
type readResult struct {
	line string
	err  error
}

// readLines feeds input lines to out until a read fails or done is closed.
// ReadString ignores ctx; Run selects on out and ctx together.
func (e *Executor) readLines(out chan<- readResult, done <-chan struct{}) {
	for {
		line, err := e.reader.ReadString('\n')
		select {
		case out <- readResult{line: line, err: err}:
		case <-done:
			return
		}
		if err != nil {
			return
		}
	}
}

// handle dispatches one command and returns only errors that end the loop.
func (e *Executor) handle(ctx context.Context, name string, args []string) error {
	if name == helpCommand {
		e.printHelp()
		return nil
	}

	err := e.dispatcher.Execute(ctx, e.writer, name, args...)
	if err == nil {
		return nil
	}
	if _, fatal := command.IsFatal(err); fatal {
		return err
	}
	if errors.Is(err, command.ErrTerminated) {
		return err
	}

	var unknown *command.UnknownCommandError
	if errors.As(err, &unknown) {
		fmt.Fprintf(e.writer, "%v. Type HELP for a list of commands.\n", err)
		return nil
	}
	fmt.Fprintf(e.writer, "error: %v\n", err)
	return nil
}

func (e *Executor) printHelp() {
	registry := e.dispatcher.Commands()
	for _, name := range registry.Names() {
		cmd, ok := registry.Lookup(name)
		if !ok {
			continue
		}
		fmt.Fprintf(e.writer, "  %-20s %s\n", name, cmd.Description())
	}
}
