// Package config loads autochart settings from a YAML file.
//
// A missing file is not an error: every field has a default, and values in
// the file overlay those defaults section by section.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root of the autochart configuration file.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Browser BrowserConfig `yaml:"browser"`
	Chart   ChartConfig   `yaml:"chart"`
	Symbols SymbolsConfig `yaml:"symbols"`
	Twitter TwitterConfig `yaml:"twitter"`
	Model   ModelConfig   `yaml:"model"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig controls the local chart page server.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// BrowserConfig controls the automated browser session.
type BrowserConfig struct {
	Headless      bool          `yaml:"headless"`
	Width         int           `yaml:"width"`
	Height        int           `yaml:"height"`
	Timeout       time.Duration `yaml:"timeout"`
	SkipInstall   bool          `yaml:"skip_install"`
	ScreenshotDir string        `yaml:"screenshot_dir"`

	// CopyScreenshotPath puts the saved screenshot path on the clipboard
	CopyScreenshotPath bool `yaml:"copy_screenshot_path"`
}

// ChartConfig is passed through to the TradingView widgets.
type ChartConfig struct {
	Interval string `yaml:"interval"`
	Theme    string `yaml:"theme"`
	Style    string `yaml:"style"`
	Timezone string `yaml:"timezone"`
	Locale   string `yaml:"locale"`
}

// SymbolsConfig configures the symbol provider and its HTTP sources.
type SymbolsConfig struct {
	MaxCount          int           `yaml:"max_count"`
	Exclude           []string      `yaml:"exclude"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
	Timeout           time.Duration `yaml:"timeout"`
	UserAgent         string        `yaml:"user_agent"`
	Sources           SourcesConfig `yaml:"sources"`
}

// SourcesConfig names one JSON endpoint per symbol pool.
type SourcesConfig struct {
	Crypto   SourceConfig `yaml:"crypto"`
	Stock    SourceConfig `yaml:"stock"`
	Gainers  SourceConfig `yaml:"gainers"`
	Losers   SourceConfig `yaml:"losers"`
	// Filtered has no default; FOMODDSUPERFILTER reports an error until it is set.
	Filtered SourceConfig `yaml:"filtered"`
}

// SourceConfig describes where a list of tickers lives.
// Path is a gjson path that must resolve to an array of strings.
type SourceConfig struct {
	URL    string `yaml:"url"`
	Path   string `yaml:"path"`
	Prefix string `yaml:"prefix"`
}

// TwitterConfig configures the profile scraper.
type TwitterConfig struct {
	BaseURL string `yaml:"base_url"`
}

// ModelConfig configures the displayed-tickers store.
type ModelConfig struct {
	Database string `yaml:"database"`
}

// LogConfig configures the file logger.
type LogConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 5000,
		},
		Browser: BrowserConfig{
			Headless:      false,
			Width:         1280,
			Height:        720,
			Timeout:       30 * time.Second,
			ScreenshotDir: "~/.autochart/screenshots",
		},
		Chart: ChartConfig{
			Interval: "D",
			Theme:    "dark",
			Style:    "1",
			Timezone: "Etc/UTC",
			Locale:   "en",
		},
		Symbols: SymbolsConfig{
			MaxCount:          25,
			RequestsPerSecond: 2,
			Burst:             4,
			Timeout:           15 * time.Second,
			UserAgent:         "autochart/0.1",
			Sources: SourcesConfig{
				Crypto: SourceConfig{
					URL:    "https://api.binance.com/api/v3/exchangeInfo",
					Path:   `symbols.#(status=="TRADING")#.symbol`,
					Prefix: "BINANCE:",
				},
				Stock: SourceConfig{
					URL:  "https://api.nasdaq.com/api/screener/stocks?tableonly=true&download=true",
					Path: "data.rows.#.symbol",
				},
				Gainers: SourceConfig{
					URL:  "https://api.nasdaq.com/api/marketmovers?assetclass=stocks",
					Path: "data.STOCKS.MostAdvanced.table.rows.#.symbol",
				},
				Losers: SourceConfig{
					URL:  "https://api.nasdaq.com/api/marketmovers?assetclass=stocks",
					Path: "data.STOCKS.MostDeclined.table.rows.#.symbol",
				},
			},
		},
		Twitter: TwitterConfig{
			BaseURL: "https://nitter.net",
		},
		Model: ModelConfig{
			Database: "~/.autochart/autochart.db",
		},
		Log: LogConfig{
			Level: "info",
			Dir:   "~/.autochart/logs",
		},
	}
}

// DefaultPath returns ~/.autochart/config.yaml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".autochart", "config.yaml"), nil
}

// Load reads the configuration at path, or DefaultPath when path is empty.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// defaults only
	case err != nil:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) expandPaths() error {
	for _, p := range []*string{&c.Browser.ScreenshotDir, &c.Model.Database, &c.Log.Dir} {
		expanded, err := ExpandHome(*p)
		if err != nil {
			return err
		}
		*p = expanded
	}
	return nil
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to expand %q: %w", path, err)
	}
	return filepath.Join(homeDir, strings.TrimPrefix(path, "~")), nil
}

// Validate checks the configuration for values the program cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Browser.Width <= 0 || c.Browser.Height <= 0 {
		return fmt.Errorf("browser viewport must be positive, got %dx%d", c.Browser.Width, c.Browser.Height)
	}
	if c.Browser.Timeout <= 0 {
		return fmt.Errorf("browser.timeout must be positive")
	}
	if c.Symbols.MaxCount < 1 {
		return fmt.Errorf("symbols.max_count must be at least 1, got %d", c.Symbols.MaxCount)
	}
	if c.Symbols.RequestsPerSecond <= 0 {
		return fmt.Errorf("symbols.requests_per_second must be positive")
	}
	if c.Symbols.Burst < 1 {
		return fmt.Errorf("symbols.burst must be at least 1, got %d", c.Symbols.Burst)
	}
	if c.Symbols.Timeout <= 0 {
		return fmt.Errorf("symbols.timeout must be positive")
	}
	if c.Model.Database == "" {
		return fmt.Errorf("model.database is required")
	}
	return nil
}

// ServerAddr returns host:port for the chart page server.
func (c *Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
