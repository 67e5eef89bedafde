package symbols

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"
	"github.com/tidwall/gjson"
)

// ErrSourceNotConfigured is returned when a pool has no URL.
var ErrSourceNotConfigured = errors.New("symbol source not configured")

// Getter fetches a URL. *fetch.Client satisfies it.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Source is one JSON endpoint yielding tickers.
type Source struct {
	Name string

	// URL is fetched with a GET request
	URL string

	// Path is a gjson path resolving to an array of strings
	Path string

	// Prefix is prepended to every ticker, e.g. "BINANCE:"
	Prefix string
}

func (s Source) configured() bool {
	return s.URL != ""
}

// load fetches the source and returns the normalized tickers in document order.
func (s Source) load(ctx context.Context, getter Getter, exclude *Filter) ([]string, error) {
	if !s.configured() {
		return nil, fmt.Errorf("%s: %w", s.Name, ErrSourceNotConfigured)
	}

	body, err := getter.Get(ctx, s.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s symbols: %w", s.Name, err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%s source returned invalid JSON", s.Name)
	}

	result := gjson.GetBytes(body, s.Path)
	if !result.Exists() {
		return nil, fmt.Errorf("%s source: path %q matched nothing", s.Name, s.Path)
	}

	seen := make(map[string]struct{})
	var tickers []string
	for _, item := range result.Array() {
		raw := strings.ToUpper(strings.TrimSpace(item.String()))
		if raw == "" || exclude.Match(raw) {
			continue
		}
		ticker := s.Prefix + raw
		if _, dup := seen[ticker]; dup {
			continue
		}
		seen[ticker] = struct{}{}
		tickers = append(tickers, ticker)
	}
	return tickers, nil
}

// Filter excludes tickers matching any of a set of glob patterns.
// A nil Filter matches nothing.
type Filter struct {
	patterns []glob.Glob
}

// NewFilter compiles glob patterns such as "*UP" or "*DOWN*".
// Patterns are matched against the uppercased ticker without prefix.
func NewFilter(patterns []string) (*Filter, error) {
	f := &Filter{}
	for _, p := range patterns {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
		f.patterns = append(f.patterns, g)
	}
	return f, nil
}

// Match reports whether ticker is excluded.
func (f *Filter) Match(ticker string) bool {
	if f == nil {
		return false
	}
	for _, g := range f.patterns {
		if g.Match(ticker) {
			return true
		}
	}
	return false
}
