package command

import (
	"context"
	"strings"
)

// Canonical command names.
const (
	NameExit           = "EXIT"
	NameQuit           = "QUIT"
	NameRefresh        = "REFRESH"
	NameClear          = "CLEAR"
	NameDelete         = "DELETE"
	NameChart          = "CHART"
	NameRandom         = "RANDOM"
	NameRandomCrypto   = "RANDOMCRYPTO"
	NameRandomStock    = "RANDOMSTOCK"
	NameTopGainers     = "TOPSTOCKGAINERS"
	NameTopLosers      = "TOPSTOCKLOSERS"
	NameFomoFilter     = "FOMODDSUPERFILTER"
	NameTwitterScraper = "TWITTERSTOCKSCRAPER"
	NameScreenshot     = "SCREENSHOT"
)

// ExitCommand releases the session and requests termination.
type ExitCommand struct{}

func (ExitCommand) Name() string        { return NameExit }
func (ExitCommand) Description() string { return "Close the browser and quit" }

func (ExitCommand) Execute(ctx context.Context, env *Env, args []string) error {
	env.printf("exiting...\n")
	if err := env.Release(); err != nil {
		env.logger().Warnf("session release failed: %v", err)
	}
	return &FatalSessionError{Reason: ReasonExit}
}

// RefreshCommand reloads the chart page.
type RefreshCommand struct{}

func (RefreshCommand) Name() string        { return NameRefresh }
func (RefreshCommand) Description() string { return "Reload the chart page" }

func (RefreshCommand) Execute(ctx context.Context, env *Env, args []string) error {
	return refresh(ctx, env)
}

// refresh reloads the page. Any failure means the browser can no longer
// be driven: the session is released and termination requested.
func refresh(ctx context.Context, env *Env) error {
	err := env.Session.Refresh(ctx)
	if err == nil {
		return nil
	}
	env.logger().Errorf("refresh failed, releasing session: %v", err)
	if qerr := env.Release(); qerr != nil {
		env.logger().Warnf("session release failed: %v", qerr)
	}
	env.printf("browser session lost, exiting\n")
	return &FatalSessionError{Reason: ReasonSessionLost, Err: err}
}

// ClearCommand removes every displayed ticker.
type ClearCommand struct{}

func (ClearCommand) Name() string        { return NameClear }
func (ClearCommand) Description() string { return "Remove all charts" }

func (ClearCommand) Execute(ctx context.Context, env *Env, args []string) error {
	if err := env.Model.ClearAll(ctx); err != nil {
		env.logger().Errorf("clear failed: %v", err)
		env.printf("could not clear charts: %v\n", err)
		return nil
	}
	if err := refresh(ctx, env); err != nil {
		return err
	}
	env.printf("clearing all\n")
	return nil
}

// DeleteCommand removes the most recently added ticker.
type DeleteCommand struct{}

func (DeleteCommand) Name() string        { return NameDelete }
func (DeleteCommand) Description() string { return "Remove the last chart added" }

func (DeleteCommand) Execute(ctx context.Context, env *Env, args []string) error {
	if err := env.Model.DeleteLast(ctx); err != nil {
		env.logger().Errorf("delete failed: %v", err)
		env.printf("could not delete chart: %v\n", err)
		return nil
	}
	return refresh(ctx, env)
}

// ChartCommand adds tickers to the display.
type ChartCommand struct{}

func (ChartCommand) Name() string        { return NameChart }
func (ChartCommand) Description() string { return "Chart one or more tickers: CHART AAPL MSFT" }

func (ChartCommand) Execute(ctx context.Context, env *Env, args []string) error {
	return chart(ctx, env, args)
}

// chart adds each non-blank ticker and refreshes once if any was new.
// A failed addition is reported and the remaining tickers are still tried.
func chart(ctx context.Context, env *Env, tickers []string) error {
	novel := false
	for _, ticker := range tickers {
		if strings.TrimSpace(ticker) == "" {
			continue
		}
		added, err := env.Model.Add(ctx, ticker)
		if err != nil {
			env.logger().Warnf("add %q failed: %v", ticker, err)
			env.printf("could not chart %s: %v\n", ticker, err)
			continue
		}
		novel = novel || added
	}
	if !novel {
		return nil
	}
	return refresh(ctx, env)
}

// fetchFunc pulls n tickers from one symbol pool.
type fetchFunc func(p SymbolProvider, ctx context.Context, n int) ([]string, error)

// FetchCommand charts tickers fetched from a symbol pool. The count comes
// from the first argument via ParseCount.
type FetchCommand struct {
	name        string
	description string
	pool        string
	fetch       fetchFunc
}

func (c *FetchCommand) Name() string        { return c.name }
func (c *FetchCommand) Description() string { return c.description }

func (c *FetchCommand) Execute(ctx context.Context, env *Env, args []string) error {
	n := ParseCount(args, env.MaxCount)
	tickers, err := c.fetch(env.Symbols, ctx, n)
	if err != nil {
		env.logger().Errorf("%s: fetching %d from %s failed: %v", c.name, n, c.pool, err)
		env.printf("could not fetch %s: %v\n", c.pool, err)
		return nil
	}
	env.logger().Debugf("%s: requested %d, got %v", c.name, n, tickers)
	if len(tickers) == 0 {
		env.printf("no %s available\n", c.pool)
		return nil
	}
	env.printf("%s: %s\n", c.pool, strings.Join(tickers, " "))
	return chart(ctx, env, tickers)
}

// NewRandomCommand charts random tickers from the whole universe.
func NewRandomCommand() *FetchCommand {
	return &FetchCommand{
		name:        NameRandom,
		description: "Chart random tickers: RANDOM [count]",
		pool:        "random symbols",
		fetch:       SymbolProvider.RandomSymbols,
	}
}

// NewRandomCryptoCommand charts random crypto tickers.
func NewRandomCryptoCommand() *FetchCommand {
	return &FetchCommand{
		name:        NameRandomCrypto,
		description: "Chart random crypto pairs: RANDOMCRYPTO [count]",
		pool:        "random crypto",
		fetch:       SymbolProvider.RandomCrypto,
	}
}

// NewRandomStockCommand charts random stock tickers.
func NewRandomStockCommand() *FetchCommand {
	return &FetchCommand{
		name:        NameRandomStock,
		description: "Chart random stocks: RANDOMSTOCK [count]",
		pool:        "random stocks",
		fetch:       SymbolProvider.RandomStock,
	}
}

// NewTopGainersCommand charts the top gaining stocks.
func NewTopGainersCommand() *FetchCommand {
	return &FetchCommand{
		name:        NameTopGainers,
		description: "Chart the top gaining stocks: TOPSTOCKGAINERS [count]",
		pool:        "top gainers",
		fetch:       SymbolProvider.TopGainers,
	}
}

// NewTopLosersCommand charts the top losing stocks.
func NewTopLosersCommand() *FetchCommand {
	return &FetchCommand{
		name:        NameTopLosers,
		description: "Chart the top losing stocks: TOPSTOCKLOSERS [count]",
		pool:        "top losers",
		fetch:       SymbolProvider.TopLosers,
	}
}

// NewFomoFilterCommand charts coins from the screening source.
func NewFomoFilterCommand() *FetchCommand {
	return &FetchCommand{
		name:        NameFomoFilter,
		description: "Chart coins from the screener at symbols.sources.filtered (no default, must be configured): FOMODDSUPERFILTER [count]",
		pool:        "filtered coins",
		fetch:       SymbolProvider.FilteredCoins,
	}
}

// TwitterScraperCommand charts the tickers a social profile mentions.
type TwitterScraperCommand struct{}

func (TwitterScraperCommand) Name() string { return NameTwitterScraper }
func (TwitterScraperCommand) Description() string {
	return "Chart tickers mentioned by a profile: TWITTERSTOCKSCRAPER @handle"
}

func (TwitterScraperCommand) Execute(ctx context.Context, env *Env, args []string) error {
	profile := ""
	if len(args) > 0 {
		profile = strings.TrimSpace(args[0])
	}
	if profile == "" {
		env.printf("Twitter profile doesnt exist.\n")
		return nil
	}

	tickers, err := env.Scraper.Resolve(ctx, profile)
	if err != nil {
		env.logger().Warnf("resolve %q failed: %v", profile, err)
		env.printf("Twitter profile %s doesnt exist.\n", profile)
		return nil
	}
	if len(tickers) == 0 {
		env.printf("no tickers found on %s\n", profile)
		return nil
	}
	env.printf("%s: %s\n", profile, strings.Join(tickers, " "))
	return chart(ctx, env, tickers)
}

// ScreenshotCommand saves a screenshot of the chart page.
type ScreenshotCommand struct{}

func (ScreenshotCommand) Name() string        { return NameScreenshot }
func (ScreenshotCommand) Description() string { return "Save a screenshot of the charts" }

func (ScreenshotCommand) Execute(ctx context.Context, env *Env, args []string) error {
	path, err := env.Session.Screenshot(ctx)
	if err != nil {
		env.logger().Errorf("screenshot failed: %v", err)
		env.printf("could not take screenshot: %v\n", err)
		return nil
	}
	env.printf("screenshot saved to %s\n", path)

	if env.Clipboard != nil {
		if err := env.Clipboard(path); err != nil {
			env.logger().Warnf("clipboard copy failed: %v", err)
		} else {
			env.printf("path copied to clipboard\n")
		}
	}
	return nil
}
