// Package command maps short textual commands to chart actions.
//
// A Registry holds one Command per canonical name. The Dispatcher owns the
// registry and the browser session: it acquires the session in Open,
// releases it in Close, and runs one command at a time with an Env that
// carries every collaborator the command may touch.
package command

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/entrhq/autochart/pkg/logging"
)

// Command is one named chart action.
type Command interface {
	// Name is the canonical uppercase key used for lookup
	Name() string

	// Description is a one-line summary for help output
	Description() string

	// Execute runs the command. It never fails on malformed arguments;
	// a *FatalSessionError asks the caller to end the process.
	Execute(ctx context.Context, env *Env, args []string) error
}

// Session is the live browser session as seen by commands.
type Session interface {
	Refresh(ctx context.Context) error
	Screenshot(ctx context.Context) (string, error)
}

// SessionLifecycle is the session as owned by the dispatcher.
type SessionLifecycle interface {
	Session
	Start(ctx context.Context) error
	Quit() error
}

// SymbolProvider supplies tickers. Each n-taking call returns 0..n tickers.
type SymbolProvider interface {
	AllSymbols(ctx context.Context) ([]string, error)
	RandomSymbols(ctx context.Context, n int) ([]string, error)
	RandomCrypto(ctx context.Context, n int) ([]string, error)
	RandomStock(ctx context.Context, n int) ([]string, error)
	TopGainers(ctx context.Context, n int) ([]string, error)
	TopLosers(ctx context.Context, n int) ([]string, error)
	FilteredCoins(ctx context.Context, n int) ([]string, error)
}

// Model is the set of displayed tickers.
type Model interface {
	// Add reports whether ticker was not already displayed
	Add(ctx context.Context, ticker string) (bool, error)
	DeleteLast(ctx context.Context) error
	ClearAll(ctx context.Context) error
}

// ProfileScraper resolves a social profile to the tickers it mentions.
type ProfileScraper interface {
	Resolve(ctx context.Context, profile string) ([]string, error)
}

// Env is the execution context handed to a command for one Execute call.
// Commands must not keep any of it after returning.
type Env struct {
	Session Session
	Symbols SymbolProvider
	Model   Model
	Scraper ProfileScraper
	Out     io.Writer
	Logger  *logging.Logger

	// Clipboard receives the screenshot path when set
	Clipboard func(string) error

	// MaxCount caps count arguments; zero means no cap
	MaxCount int

	release func() error
}

// Release quits the session. Repeated calls, including the dispatcher's
// own Close, quit it only once.
func (e *Env) Release() error {
	if e.release == nil {
		return nil
	}
	return e.release()
}

func (e *Env) printf(format string, a ...any) {
	if e.Out != nil {
		fmt.Fprintf(e.Out, format, a...)
	}
}

func (e *Env) logger() *logging.Logger {
	if e.Logger == nil {
		return logging.Discard()
	}
	return e.Logger
}

var (
	// ErrBusy is returned when a command is dispatched while another runs.
	ErrBusy = errors.New("another command is running")

	// ErrTerminated is returned for commands dispatched after termination.
	ErrTerminated = errors.New("dispatcher terminated")
)

// TerminationReason says why a FatalSessionError was raised.
type TerminationReason string

const (
	ReasonExit        TerminationReason = "exit requested"
	ReasonSessionLost TerminationReason = "session lost"
)

// FatalSessionError requests process termination. The session has already
// been released when it is returned.
type FatalSessionError struct {
	Reason TerminationReason
	Err    error
}

func (e *FatalSessionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return string(e.Reason)
}

func (e *FatalSessionError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err requests termination and returns it.
func IsFatal(err error) (*FatalSessionError, bool) {
	var fatal *FatalSessionError
	if errors.As(err, &fatal) {
		return fatal, true
	}
	return nil, false
}

// UnknownCommandError is returned for names missing from the registry.
type UnknownCommandError struct {
	Name       string
	Suggestion string
}

func (e *UnknownCommandError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown command %q (did you mean %s?)", e.Name, e.Suggestion)
	}
	return fmt.Sprintf("unknown command %q", e.Name)
}
