package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)

		assert.Equal(t, 5000, cfg.Server.Port)
		assert.Equal(t, "D", cfg.Chart.Interval)
		assert.Equal(t, 25, cfg.Symbols.MaxCount)
		assert.Equal(t, "BINANCE:", cfg.Symbols.Sources.Crypto.Prefix)
		assert.NotContains(t, cfg.Model.Database, "~")
	})

	t.Run("file values overlay defaults", func(t *testing.T) {
		path := writeConfig(t, `
server:
  port: 8123
browser:
  headless: true
  timeout: 5s
symbols:
  max_count: 5
  exclude: ["*UP*", "*DOWN*"]
  sources:
    filtered:
      url: https://example.test/coins
      path: coins.#.ticker
chart:
  interval: "60"
`)
		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, 8123, cfg.Server.Port)
		assert.Equal(t, "127.0.0.1", cfg.Server.Host)
		assert.True(t, cfg.Browser.Headless)
		assert.Equal(t, 5*time.Second, cfg.Browser.Timeout)
		assert.Equal(t, 1280, cfg.Browser.Width)
		assert.Equal(t, 5, cfg.Symbols.MaxCount)
		assert.Equal(t, []string{"*UP*", "*DOWN*"}, cfg.Symbols.Exclude)
		assert.Equal(t, "https://example.test/coins", cfg.Symbols.Sources.Filtered.URL)
		assert.NotEmpty(t, cfg.Symbols.Sources.Crypto.URL)
		assert.Equal(t, "60", cfg.Chart.Interval)
		assert.Equal(t, "dark", cfg.Chart.Theme)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeConfig(t, "server: [unterminated")
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config file")
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		path := writeConfig(t, "server:\n  port: 70000\n")
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "server.port")
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}},
		{name: "zero viewport", mutate: func(c *Config) { c.Browser.Width = 0 }, wantErr: "viewport"},
		{name: "zero browser timeout", mutate: func(c *Config) { c.Browser.Timeout = 0 }, wantErr: "browser.timeout"},
		{name: "zero max count", mutate: func(c *Config) { c.Symbols.MaxCount = 0 }, wantErr: "max_count"},
		{name: "zero rate", mutate: func(c *Config) { c.Symbols.RequestsPerSecond = 0 }, wantErr: "requests_per_second"},
		{name: "zero burst", mutate: func(c *Config) { c.Symbols.Burst = 0 }, wantErr: "burst"},
		{name: "empty database", mutate: func(c *Config) { c.Model.Database = "" }, wantErr: "model.database"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ExpandHome("~/.autochart/autochart.db")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".autochart", "autochart.db"), got)

	got, err = ExpandHome("/var/lib/autochart.db")
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/autochart.db", got)
}

func TestServerAddr(t *testing.T) {
	cfg := Default()
	cfg.Server.Port = 8080
	assert.Equal(t, "127.0.0.1:8080", cfg.ServerAddr())
}
