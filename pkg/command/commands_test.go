package command

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	env      *Env
	session  *fakeSession
	provider *fakeProvider
	model    *fakeModel
	scraper  *fakeScraper
	out      *bytes.Buffer
}

func newFixture() *fixture {
	f := &fixture{
		session:  &fakeSession{path: "/tmp/autochart-1.png"},
		provider: &fakeProvider{pool: []string{"AAPL", "MSFT", "NVDA", "TSLA", "AMZN"}},
		model:    &fakeModel{},
		scraper:  &fakeScraper{profiles: map[string][]string{}},
		out:      &bytes.Buffer{},
	}
	var once sync.Once
	f.env = &Env{
		Session: f.session,
		Symbols: f.provider,
		Model:   f.model,
		Scraper: f.scraper,
		Out:     f.out,
		release: func() error {
			var err error
			once.Do(func() { err = f.session.Quit() })
			return err
		},
	}
	return f
}

func (f *fixture) run(t *testing.T, cmd Command, args ...string) error {
	t.Helper()
	return cmd.Execute(context.Background(), f.env, args)
}

func TestExitReleasesAndTerminates(t *testing.T) {
	f := newFixture()

	err := f.run(t, ExitCommand{})

	fatal, ok := IsFatal(err)
	require.True(t, ok)
	assert.Equal(t, ReasonExit, fatal.Reason)
	assert.Contains(t, f.out.String(), "exiting...")
	_, quits := f.session.counts()
	assert.Equal(t, 1, quits)

	// A second release through the env does not quit again.
	require.NoError(t, f.env.Release())
	_, quits = f.session.counts()
	assert.Equal(t, 1, quits)
}

func TestRefresh(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := newFixture()
		require.NoError(t, f.run(t, RefreshCommand{}))
		refreshes, quits := f.session.counts()
		assert.Equal(t, 1, refreshes)
		assert.Equal(t, 0, quits)
	})

	t.Run("failure is fatal", func(t *testing.T) {
		f := newFixture()
		cause := errors.New("target closed")
		f.session.refreshErr = cause

		err := f.run(t, RefreshCommand{})

		fatal, ok := IsFatal(err)
		require.True(t, ok)
		assert.Equal(t, ReasonSessionLost, fatal.Reason)
		assert.ErrorIs(t, err, cause)
		_, quits := f.session.counts()
		assert.Equal(t, 1, quits)
	})
}

func TestClear(t *testing.T) {
	f := newFixture()
	f.model.tickers = []string{"AAPL", "MSFT"}

	require.NoError(t, f.run(t, ClearCommand{}))

	assert.Empty(t, f.model.tickers)
	refreshes, _ := f.session.counts()
	assert.Equal(t, 1, refreshes)
	assert.Contains(t, f.out.String(), "clearing all")
}

func TestClearModelErrorSkipsRefresh(t *testing.T) {
	f := newFixture()
	f.model.clearErr = errors.New("disk full")

	require.NoError(t, f.run(t, ClearCommand{}))

	refreshes, _ := f.session.counts()
	assert.Equal(t, 0, refreshes)
	assert.Contains(t, f.out.String(), "disk full")
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name    string
		initial []string
		want    []string
	}{
		{name: "removes last", initial: []string{"AAPL", "MSFT"}, want: []string{"AAPL"}},
		{name: "empty is a no-op", initial: nil, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.model.tickers = tt.initial

			require.NoError(t, f.run(t, DeleteCommand{}))

			assert.Equal(t, tt.want, f.model.tickers)
			assert.Equal(t, 1, f.model.deletes)
			refreshes, _ := f.session.counts()
			assert.Equal(t, 1, refreshes)
		})
	}
}

func TestChart(t *testing.T) {
	tests := []struct {
		name          string
		initial       []string
		args          []string
		wantTickers   []string
		wantRefreshes int
	}{
		{
			name:          "adds in order and refreshes once",
			args:          []string{"aapl", "MSFT"},
			wantTickers:   []string{"AAPL", "MSFT"},
			wantRefreshes: 1,
		},
		{
			name:          "duplicates only skip refresh",
			initial:       []string{"AAPL"},
			args:          []string{"AAPL"},
			wantTickers:   []string{"AAPL"},
			wantRefreshes: 0,
		},
		{
			name:          "no args is a no-op",
			wantRefreshes: 0,
		},
		{
			name:          "blank tokens skipped",
			args:          []string{"", "  ", "TSLA"},
			wantTickers:   []string{"TSLA"},
			wantRefreshes: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.model.tickers = tt.initial

			require.NoError(t, f.run(t, ChartCommand{}, tt.args...))

			assert.Equal(t, tt.wantTickers, f.model.tickers)
			refreshes, _ := f.session.counts()
			assert.Equal(t, tt.wantRefreshes, refreshes)
		})
	}
}

func TestChartContinuesPastFailedAdd(t *testing.T) {
	f := newFixture()
	f.model.failOn = map[string]error{"BAD": errors.New("constraint failed")}

	require.NoError(t, f.run(t, ChartCommand{}, "BAD", "AAPL"))

	assert.Equal(t, []string{"AAPL"}, f.model.tickers)
	assert.Contains(t, f.out.String(), "could not chart BAD")
	refreshes, _ := f.session.counts()
	assert.Equal(t, 1, refreshes)
}

func TestChartRefreshFailureIsFatal(t *testing.T) {
	f := newFixture()
	f.session.refreshErr = errors.New("browser crashed")

	err := f.run(t, ChartCommand{}, "AAPL")

	fatal, ok := IsFatal(err)
	require.True(t, ok)
	assert.Equal(t, ReasonSessionLost, fatal.Reason)
}

func TestFetchCommands(t *testing.T) {
	tests := []struct {
		cmd    Command
		method string
	}{
		{cmd: NewRandomCommand(), method: "RandomSymbols"},
		{cmd: NewRandomCryptoCommand(), method: "RandomCrypto"},
		{cmd: NewRandomStockCommand(), method: "RandomStock"},
		{cmd: NewTopGainersCommand(), method: "TopGainers"},
		{cmd: NewTopLosersCommand(), method: "TopLosers"},
		{cmd: NewFomoFilterCommand(), method: "FilteredCoins"},
	}

	for _, tt := range tests {
		t.Run(tt.cmd.Name(), func(t *testing.T) {
			f := newFixture()

			require.NoError(t, f.run(t, tt.cmd, "3"))

			require.Len(t, f.provider.calls, 1)
			assert.Equal(t, providerCall{method: tt.method, n: 3}, f.provider.calls[0])
			assert.Equal(t, []string{"AAPL", "MSFT", "NVDA"}, f.model.tickers)
			refreshes, _ := f.session.counts()
			assert.Equal(t, 1, refreshes)
		})
	}
}

func TestFetchCommandCountParsing(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		maxCount int
		wantN    int
	}{
		{name: "missing", args: nil, wantN: 1},
		{name: "non numeric", args: []string{"abc"}, wantN: 1},
		{name: "zero", args: []string{"0"}, wantN: 1},
		{name: "negative", args: []string{"-4"}, wantN: 1},
		{name: "explicit", args: []string{"4"}, wantN: 4},
		{name: "multi digit", args: []string{"12"}, wantN: 12},
		{name: "clamped", args: []string{"50"}, maxCount: 10, wantN: 10},
		{name: "extra args ignored", args: []string{"2", "junk"}, wantN: 2},
	}

	commands := []*FetchCommand{
		NewRandomCommand(),
		NewRandomCryptoCommand(),
		NewRandomStockCommand(),
		NewTopGainersCommand(),
		NewTopLosersCommand(),
		NewFomoFilterCommand(),
	}

	for _, cmd := range commands {
		for _, tt := range tests {
			t.Run(cmd.Name()+"/"+tt.name, func(t *testing.T) {
				f := newFixture()
				f.env.MaxCount = tt.maxCount

				require.NoError(t, f.run(t, cmd, tt.args...))

				require.Len(t, f.provider.calls, 1)
				assert.Equal(t, tt.wantN, f.provider.calls[0].n)
			})
		}
	}
}

func TestEveryCommandToleratesMissingArgs(t *testing.T) {
	r := NewRegistry()

	for _, name := range r.Names() {
		t.Run(name, func(t *testing.T) {
			cmd, ok := r.Lookup(name)
			require.True(t, ok)
			f := newFixture()

			var err error
			assert.NotPanics(t, func() { err = cmd.Execute(context.Background(), f.env, nil) })

			if name == NameExit || name == NameQuit {
				fatal, ok := IsFatal(err)
				require.True(t, ok)
				assert.Equal(t, ReasonExit, fatal.Reason)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestFomoFilterNamesItsSourceSetting(t *testing.T) {
	assert.Contains(t, NewFomoFilterCommand().Description(), "symbols.sources.filtered")
}

func TestFetchCommandProviderError(t *testing.T) {
	f := newFixture()
	f.provider.err = errors.New("upstream 503")

	require.NoError(t, f.run(t, NewTopGainersCommand(), "2"))

	assert.Equal(t, 0, f.model.calls())
	refreshes, _ := f.session.counts()
	assert.Equal(t, 0, refreshes)
	assert.Contains(t, f.out.String(), "upstream 503")
}

func TestFetchCommandEmptyResult(t *testing.T) {
	f := newFixture()
	f.provider.pool = nil

	require.NoError(t, f.run(t, NewRandomStockCommand(), "2"))

	assert.Equal(t, 0, f.model.calls())
	assert.Contains(t, f.out.String(), "no random stocks available")
}

func TestTwitterScraper(t *testing.T) {
	t.Run("charts resolved tickers", func(t *testing.T) {
		f := newFixture()
		f.scraper.profiles["@trader"] = []string{"AAPL", "TSLA"}

		require.NoError(t, f.run(t, TwitterScraperCommand{}, "@trader"))

		assert.Equal(t, []string{"@trader"}, f.scraper.calls)
		assert.Equal(t, []string{"AAPL", "TSLA"}, f.model.tickers)
		refreshes, _ := f.session.counts()
		assert.Equal(t, 1, refreshes)
	})

	t.Run("unknown profile", func(t *testing.T) {
		f := newFixture()

		require.NoError(t, f.run(t, TwitterScraperCommand{}, "@ghost"))

		assert.Equal(t, 0, f.model.calls())
		assert.Contains(t, f.out.String(), "Twitter profile @ghost doesnt exist.")
	})

	t.Run("missing argument", func(t *testing.T) {
		f := newFixture()

		require.NoError(t, f.run(t, TwitterScraperCommand{}))

		assert.Empty(t, f.scraper.calls)
		assert.Equal(t, 0, f.model.calls())
		assert.Contains(t, f.out.String(), "Twitter profile doesnt exist.")
	})
}

func TestScreenshot(t *testing.T) {
	t.Run("prints path and copies", func(t *testing.T) {
		f := newFixture()
		var copied string
		f.env.Clipboard = func(s string) error {
			copied = s
			return nil
		}

		require.NoError(t, f.run(t, ScreenshotCommand{}))

		assert.Equal(t, "/tmp/autochart-1.png", copied)
		assert.Contains(t, f.out.String(), "screenshot saved to /tmp/autochart-1.png")
		assert.Equal(t, 0, f.model.calls())
	})

	t.Run("clipboard failure is not an error", func(t *testing.T) {
		f := newFixture()
		f.env.Clipboard = func(string) error { return errors.New("no display") }

		require.NoError(t, f.run(t, ScreenshotCommand{}))
		assert.NotContains(t, f.out.String(), "copied")
	})

	t.Run("session error reported", func(t *testing.T) {
		f := newFixture()
		f.session.screenshotErr = errors.New("page closed")

		require.NoError(t, f.run(t, ScreenshotCommand{}))
		assert.Contains(t, f.out.String(), "could not take screenshot")
	})
}
