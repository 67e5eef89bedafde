// Package browser drives the chart page through Playwright.
//
// A ChartSession owns one Chromium instance with a single page pointed at
// the local chart server. The page renders whatever tickers the model holds,
// so updating the display is a matter of reloading it.
//
// # Session Lifecycle
//
//  1. Start: install the driver (unless skipped), launch Chromium, open the URL
//  2. Use: Refresh reloads the page, Screenshot saves a full-page PNG
//  3. Quit: close page, context and browser, stop Playwright
//
// Quit is idempotent and tolerates a browser that has already exited.
// Once the window is closed or the browser disconnects, Refresh and
// Screenshot return errors wrapping ErrSessionLost; the session is not
// reconnected.
//
// # Example Usage
//
//	session := browser.NewChartSession(browser.SessionOptions{
//	    URL:      "http://127.0.0.1:5000/",
//	    Viewport: &browser.Viewport{Width: 1280, Height: 720},
//	}, logger)
//	if err := session.Start(ctx); err != nil {
//	    return err
//	}
//	defer session.Quit()
//
//	if err := session.Refresh(ctx); errors.Is(err, browser.ErrSessionLost) {
//	    // the window is gone
//	}
package browser
