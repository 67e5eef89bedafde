package browser

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/autochart/pkg/logging"
)

// ChartSession drives one Chromium window showing the chart page.
type ChartSession struct {
	mu     sync.Mutex
	opts   SessionOptions
	logger *logging.Logger
	now    func() time.Time

	playwright *playwright.Playwright
	browser    playwright.Browser
	context    playwright.BrowserContext
	page       playwright.Page

	started    bool
	closed     bool
	createdAt  time.Time
	lastUsedAt time.Time
}

// NewChartSession creates an unstarted session.
func NewChartSession(opts SessionOptions, logger *logging.Logger) *ChartSession {
	if opts.Viewport == nil {
		opts.Viewport = &Viewport{Width: DefaultViewportWidth, Height: DefaultViewportHeight}
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.ScreenshotDir == "" {
		opts.ScreenshotDir = os.TempDir()
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &ChartSession{
		opts:   opts,
		logger: logger,
		now:    time.Now,
	}
}

// Start installs and runs playwright, launches Chromium and opens the chart page.
func (s *ChartSession) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// keep driver output off the terminal
	runOpts := &playwright.RunOptions{
		Browsers: []string{"chromium"},
		Verbose:  false,
		Stdout:   io.Discard,
		Stderr:   io.Discard,
	}
	if !s.opts.SkipInstall {
		if err := playwright.Install(runOpts); err != nil {
			return fmt.Errorf("failed to install playwright: %w", err)
		}
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(s.opts.Headless),
	})
	if err != nil {
		_ = pw.Stop()
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  s.opts.Viewport.Width,
			Height: s.opts.Viewport.Height,
		},
	})
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return fmt.Errorf("failed to create context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		_ = browser.Close()
		_ = pw.Stop()
		return fmt.Errorf("failed to create page: %w", err)
	}
	page.SetDefaultTimeout(s.opts.Timeout)

	s.playwright = pw
	s.attach(browser, bctx, page)

	if s.opts.URL != "" {
		waitUntil := playwright.WaitUntilState(DefaultWaitUntil)
		if _, err := page.Goto(s.opts.URL, playwright.PageGotoOptions{WaitUntil: &waitUntil}); err != nil {
			s.closeLocked()
			return fmt.Errorf("failed to open chart page %s: %w", s.opts.URL, err)
		}
	}

	s.logger.Infof("browser session started (headless=%v, url=%s)", s.opts.Headless, s.opts.URL)
	return nil
}

// attach records live playwright handles as the session's resources.
func (s *ChartSession) attach(browser playwright.Browser, bctx playwright.BrowserContext, page playwright.Page) {
	now := s.now()
	s.browser = browser
	s.context = bctx
	s.page = page
	s.started = true
	s.closed = false
	s.createdAt = now
	s.lastUsedAt = now
}

// Refresh reloads the chart page. Errors wrap ErrSessionLost when the
// browser is disconnected, the page is closed, or the reload fails.
func (s *ChartSession) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.usableLocked(ctx); err != nil {
		return err
	}
	s.lastUsedAt = s.now()

	if _, err := s.page.Reload(); err != nil {
		return fmt.Errorf("%w: reload failed: %v", ErrSessionLost, err)
	}
	return nil
}

// Screenshot saves a full-page PNG and returns its path.
func (s *ChartSession) Screenshot(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.usableLocked(ctx); err != nil {
		return "", err
	}
	s.lastUsedAt = s.now()

	if err := os.MkdirAll(s.opts.ScreenshotDir, 0750); err != nil {
		return "", fmt.Errorf("failed to create screenshot directory: %w", err)
	}
	name := fmt.Sprintf("autochart-%s.png", s.lastUsedAt.Format("20060102-150405.000"))
	path := filepath.Join(s.opts.ScreenshotDir, name)

	if _, err := s.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	}); err != nil {
		return "", fmt.Errorf("screenshot failed: %w", err)
	}
	return path, nil
}

func (s *ChartSession) usableLocked(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.started {
		return ErrNotStarted
	}
	if s.closed || s.page == nil || s.page.IsClosed() || !s.browser.IsConnected() {
		return ErrSessionLost
	}
	return nil
}

// Quit closes the page, context and browser and stops playwright.
// Safe to call more than once and after the browser has died.
func (s *ChartSession) Quit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeLocked()
}

func (s *ChartSession) closeLocked() error {
	if !s.started || s.closed {
		return nil
	}
	s.closed = true

	// the browser may already be gone; close what is left
	if s.page != nil {
		_ = s.page.Close()
	}
	if s.context != nil {
		_ = s.context.Close()
	}
	if s.browser != nil {
		_ = s.browser.Close()
	}
	s.logger.Infof("browser session closed after %s", s.now().Sub(s.createdAt).Round(time.Second))

	if s.playwright != nil {
		if err := s.playwright.Stop(); err != nil {
			return fmt.Errorf("failed to stop playwright: %w", err)
		}
	}
	return nil
}

// LastUsedAt returns the time of the last refresh or screenshot.
func (s *ChartSession) LastUsedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsedAt
}
