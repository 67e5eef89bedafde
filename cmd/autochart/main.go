// Package main provides the autochart command: an interactive prompt that
// drives a browser window full of TradingView charts.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atotto/clipboard"
	"github.com/entrhq/autochart/pkg/browser"
	"github.com/entrhq/autochart/pkg/chartserver"
	"github.com/entrhq/autochart/pkg/command"
	appconfig "github.com/entrhq/autochart/pkg/config"
	"github.com/entrhq/autochart/pkg/executor/cli"
	"github.com/entrhq/autochart/pkg/executor/tui"
	"github.com/entrhq/autochart/pkg/fetch"
	"github.com/entrhq/autochart/pkg/logging"
	"github.com/entrhq/autochart/pkg/model"
	"github.com/entrhq/autochart/pkg/symbols"
	"github.com/entrhq/autochart/pkg/twitter"
)

const (
	version         = "0.1.0"
	shutdownTimeout = 5 * time.Second
)

// Options holds the command line flags
type Options struct {
	ConfigPath  string
	Port        int
	Headless    bool
	Plain       bool
	Script      string
	PrintConfig bool
	ShowVersion bool
}

func main() {
	opts := parseFlags()

	if opts.ShowVersion {
		fmt.Printf("autochart v%s\n", version)
		return
	}

	if opts.PrintConfig {
		if err := printConfig(os.Stdout, opts, os.Getenv("NO_COLOR") == ""); err != nil {
			fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := exitCode(run(ctx, opts))
	stop()
	os.Exit(code)
}

// parseFlags parses command line flags
func parseFlags() *Options {
	opts := &Options{}

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file (default: ~/.autochart/config.yaml)")
	flag.IntVar(&opts.Port, "port", 0, "Chart page server port (overrides server.port)")
	flag.BoolVar(&opts.Headless, "headless", false, "Run the browser without a window")
	flag.BoolVar(&opts.Plain, "plain", false, "Use a plain line prompt instead of the full-screen UI")
	flag.StringVar(&opts.Script, "script", "", "Run commands from a file, one per line, then exit")
	flag.BoolVar(&opts.PrintConfig, "print-config", false, "Print the effective configuration and exit")
	flag.BoolVar(&opts.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "autochart - chart tickers from the command line\n\n")
		fmt.Fprintf(os.Stderr, "Usage: autochart [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  autochart                      # Full-screen prompt, visible browser\n")
		fmt.Fprintf(os.Stderr, "  autochart -plain -headless     # Line prompt, headless browser\n")
		fmt.Fprintf(os.Stderr, "  autochart -config ./autochart.yaml -port 5050\n")
		fmt.Fprintf(os.Stderr, "  autochart -headless -script morning.txt   # e.g. TOPSTOCKGAINERS 6 then SCREENSHOT\n")
		fmt.Fprintf(os.Stderr, "  autochart -print-config > ~/.autochart/config.yaml\n")
	}

	flag.Parse()
	return opts
}

// loadConfig reads the configuration file and applies flag overrides
func loadConfig(opts *Options) (*appconfig.Config, error) {
	cfg, err := appconfig.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.Port != 0 {
		cfg.Server.Port = opts.Port
	}
	if opts.Headless {
		cfg.Browser.Headless = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// run wires the collaborators together and blocks until the session ends
func run(ctx context.Context, opts *Options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logging.SetDirectory(cfg.Log.Dir)
	logger, err := logging.NewLogger("autochart")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: file logging unavailable: %v\n", err)
	}
	defer logger.Close()
	if level, lerr := logging.ParseLevel(cfg.Log.Level); lerr == nil {
		logger.SetLevel(level)
	}
	logger.Infof("autochart v%s starting, log file %s", version, logger.LogPath())

	store, err := model.Open(cfg.Model.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	srv := chartserver.New(cfg.ServerAddr(), store, chartserver.ChartOptions{
		Interval: cfg.Chart.Interval,
		Theme:    cfg.Chart.Theme,
		Style:    cfg.Chart.Style,
		Timezone: cfg.Chart.Timezone,
		Locale:   cfg.Chart.Locale,
	}, logger.With("chartserver"))
	if err := srv.Start(); err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			logger.Warnf("chart server shutdown: %v", err)
		}
	}()

	client := fetch.NewClient(
		fetch.WithTimeout(cfg.Symbols.Timeout),
		fetch.WithRateLimit(cfg.Symbols.RequestsPerSecond, cfg.Symbols.Burst),
		fetch.WithUserAgent(cfg.Symbols.UserAgent),
	)

	exclude, err := symbols.NewFilter(cfg.Symbols.Exclude)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	exchange := symbols.NewExchange(client, sourcesFromConfig(cfg.Symbols.Sources),
		symbols.WithExclude(exclude),
		symbols.WithLogger(logger.With("symbols")),
	)

	session := browser.NewChartSession(browser.SessionOptions{
		URL:      srv.URL(),
		Headless: cfg.Browser.Headless,
		Viewport: &browser.Viewport{
			Width:  cfg.Browser.Width,
			Height: cfg.Browser.Height,
		},
		Timeout:       float64(cfg.Browser.Timeout.Milliseconds()),
		SkipInstall:   cfg.Browser.SkipInstall,
		ScreenshotDir: cfg.Browser.ScreenshotDir,
	}, logger.With("browser"))

	dispatcherOpts := []command.Option{
		command.WithLogger(logger.With("command")),
		command.WithMaxCount(cfg.Symbols.MaxCount),
	}
	if cfg.Browser.CopyScreenshotPath && !clipboard.Unsupported {
		dispatcherOpts = append(dispatcherOpts, command.WithClipboard(clipboard.WriteAll))
	}

	d := command.NewDispatcher(command.Deps{
		Session: session,
		Symbols: exchange,
		Model:   store,
		Scraper: twitter.NewScraper(client, cfg.Twitter.BaseURL),
	}, dispatcherOpts...)

	fmt.Fprintf(os.Stderr, "Starting browser on %s ...\n", srv.URL())
	return command.Run(ctx, d, func(*command.Registry) error {
		logger.Infof("session open, %d symbols available", len(d.Universe()))
		if opts.Script != "" {
			return runScript(ctx, d, opts.Script)
		}
		if opts.Plain {
			return cli.NewExecutor(d).Run(ctx)
		}
		return tui.NewExecutor(d).Run(ctx)
	})
}

// runScript feeds a command file through the line executor
func runScript(ctx context.Context, d *command.Dispatcher, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open script: %w", err)
	}
	defer f.Close()
	return cli.NewExecutor(d, cli.WithReader(f), cli.WithPrompt("")).Run(ctx)
}

func sourcesFromConfig(c appconfig.SourcesConfig) symbols.Sources {
	source := func(name string, sc appconfig.SourceConfig) symbols.Source {
		return symbols.Source{Name: name, URL: sc.URL, Path: sc.Path, Prefix: sc.Prefix}
	}
	return symbols.Sources{
		Crypto:   source("crypto", c.Crypto),
		Stock:    source("stock", c.Stock),
		Gainers:  source("gainers", c.Gainers),
		Losers:   source("losers", c.Losers),
		Filtered: source("filtered", c.Filtered),
	}
}

// exitCode maps the result of run to a process exit status: 0 for EXIT,
// end of input or an interrupt, 1 for session loss and startup failures.
func exitCode(err error) int {
	if err == nil || errors.Is(err, context.Canceled) {
		return 0
	}
	if fatal, ok := command.IsFatal(err); ok {
		if fatal.Reason == command.ReasonExit {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Session ended: %v\n", fatal)
		return 1
	}
	fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
	return 1
}
