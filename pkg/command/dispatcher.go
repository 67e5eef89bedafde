package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/entrhq/autochart/pkg/logging"
)

// ErrNotOpen is returned for commands dispatched before Open succeeded.
var ErrNotOpen = errors.New("dispatcher not open")

// Deps are the collaborators a Dispatcher hands to commands.
type Deps struct {
	Session SessionLifecycle
	Symbols SymbolProvider
	Model   Model
	Scraper ProfileScraper
}

// Dispatcher owns the registry and the browser session. It runs at most
// one command at a time and quits the session exactly once.
type Dispatcher struct {
	deps     Deps
	registry *Registry

	out       io.Writer
	logger    *logging.Logger
	clipboard func(string) error
	maxCount  int

	// exec serializes Execute; a second concurrent call gets ErrBusy
	exec sync.Mutex

	opened     atomic.Bool
	terminated atomic.Bool

	releaseOnce sync.Once
	releaseErr  error

	universe []string
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithOutput sets the default writer for command feedback (default os.Stdout).
func WithOutput(w io.Writer) Option {
	return func(d *Dispatcher) {
		d.out = w
	}
}

// WithLogger sets the logger passed to commands.
func WithLogger(l *logging.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = l
	}
}

// WithClipboard sets the function SCREENSHOT copies the saved path with.
func WithClipboard(fn func(string) error) Option {
	return func(d *Dispatcher) {
		d.clipboard = fn
	}
}

// WithMaxCount caps count arguments of the fetching commands.
func WithMaxCount(n int) Option {
	return func(d *Dispatcher) {
		d.maxCount = n
	}
}

// NewDispatcher creates a dispatcher over deps with the full command set.
func NewDispatcher(deps Deps, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		deps:     deps,
		registry: NewRegistry(),
		out:      os.Stdout,
		logger:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Open starts the browser session and loads the symbol universe. On any
// failure the session is released before the error is returned.
func (d *Dispatcher) Open(ctx context.Context) (*Registry, error) {
	if d.deps.Session == nil {
		return nil, errors.New("no browser session configured")
	}
	if d.opened.Load() {
		return d.registry, nil
	}

	d.logger.Infof("starting browser session")
	if err := d.deps.Session.Start(ctx); err != nil {
		d.release()
		return nil, fmt.Errorf("start browser session: %w", err)
	}

	if d.deps.Symbols != nil {
		universe, err := d.deps.Symbols.AllSymbols(ctx)
		if err != nil {
			d.release()
			return nil, fmt.Errorf("load symbol universe: %w", err)
		}
		d.universe = universe
		d.logger.Infof("loaded %d symbols", len(universe))
	}

	d.opened.Store(true)
	return d.registry, nil
}

// Close releases the session. It is safe to call more than once.
func (d *Dispatcher) Close() error {
	return d.release()
}

func (d *Dispatcher) release() error {
	d.releaseOnce.Do(func() {
		if d.deps.Session == nil {
			return
		}
		d.logger.Infof("releasing browser session")
		d.releaseErr = d.deps.Session.Quit()
		if d.releaseErr != nil {
			d.logger.Warnf("session quit failed: %v", d.releaseErr)
		}
	})
	return d.releaseErr
}

// Universe returns the symbols loaded by Open.
func (d *Dispatcher) Universe() []string {
	return append([]string(nil), d.universe...)
}

// Commands returns the registry.
func (d *Dispatcher) Commands() *Registry {
	return d.registry
}

// Terminated reports whether a command requested termination.
func (d *Dispatcher) Terminated() bool {
	return d.terminated.Load()
}

// Execute runs the command registered under name. Names match exactly, so
// line input goes through ParseInput first. Feedback goes to out, or to the
// dispatcher's writer when out is nil.
func (d *Dispatcher) Execute(ctx context.Context, out io.Writer, name string, args ...string) error {
	if d.terminated.Load() {
		return ErrTerminated
	}
	if !d.opened.Load() {
		return ErrNotOpen
	}

	cmd, ok := d.registry.Lookup(name)
	if !ok {
		return &UnknownCommandError{
			Name:       name,
			Suggestion: d.registry.Suggest(name),
		}
	}

	if !d.exec.TryLock() {
		return ErrBusy
	}
	defer d.exec.Unlock()

	if d.terminated.Load() {
		return ErrTerminated
	}

	if out == nil {
		out = d.out
	}
	env := &Env{
		Session:   d.deps.Session,
		Symbols:   d.deps.Symbols,
		Model:     d.deps.Model,
		Scraper:   d.deps.Scraper,
		Out:       out,
		Logger:    d.logger,
		Clipboard: d.clipboard,
		MaxCount:  d.maxCount,
		release:   d.release,
	}

	d.logger.Debugf("execute %s %v", cmd.Name(), args)
	err := cmd.Execute(ctx, env, args)
	if fatal, ok := IsFatal(err); ok {
		d.logger.Infof("terminating: %v", fatal)
		d.terminated.Store(true)
		d.release()
	}
	return err
}

// Run opens d, calls fn with the registry and always closes d, including
// when fn panics.
func Run(ctx context.Context, d *Dispatcher, fn func(*Registry) error) (err error) {
	registry, err := d.Open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := d.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("release session: %w", cerr)
		}
	}()
	return fn(registry)
}

// ParseInput splits a line into an uppercased command name and its
// arguments. Blank lines report ok=false.
func ParseInput(line string) (name string, args []string, ok bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil, false
	}
	return strings.ToUpper(fields[0]), fields[1:], true
}
