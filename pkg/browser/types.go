package browser

import "errors"

var (
	// ErrSessionLost means the browser or chart page is gone and the
	// session can no longer be driven.
	ErrSessionLost = errors.New("browser session lost")

	// ErrNotStarted is returned by operations called before Start.
	ErrNotStarted = errors.New("browser session not started")
)

// SessionOptions configures a chart session.
type SessionOptions struct {
	// URL is the chart page opened on start and reloaded on refresh
	URL string

	// Headless controls whether the browser runs without a visible window
	Headless bool

	// Viewport sets the initial viewport size
	Viewport *Viewport

	// Timeout sets the default timeout for page operations (in milliseconds)
	Timeout float64

	// SkipInstall skips downloading the playwright driver and Chromium
	SkipInstall bool

	// ScreenshotDir is where screenshots are written
	ScreenshotDir string
}

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int
	Height int
}

const (
	DefaultTimeout        = 30000.0 // 30 seconds in milliseconds
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720
	DefaultWaitUntil      = "domcontentloaded"
)
