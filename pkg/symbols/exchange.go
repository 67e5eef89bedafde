// Package symbols provides ticker symbols for the chart commands.
//
// Every pool is a JSON HTTP endpoint described by a Source. The crypto and
// stock pools form the symbol universe, which is fetched once and cached for
// the run; movers and screeners are fetched fresh on every call.
package symbols

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/entrhq/autochart/pkg/logging"
)

// Sources groups the endpoints an Exchange reads from.
type Sources struct {
	Crypto   Source
	Stock    Source
	Gainers  Source
	Losers   Source
	Filtered Source
}

// Exchange implements the symbol provider over HTTP sources.
type Exchange struct {
	getter  Getter
	sources Sources
	exclude *Filter
	logger  *logging.Logger

	mu     sync.Mutex
	rng    *rand.Rand
	loaded bool
	crypto []string
	stock  []string
}

// Option configures an Exchange.
type Option func(*Exchange)

// WithExclude drops tickers matching the filter from every pool.
func WithExclude(f *Filter) Option {
	return func(e *Exchange) {
		e.exclude = f
	}
}

// WithRand sets the random source used for sampling.
func WithRand(r *rand.Rand) Option {
	return func(e *Exchange) {
		e.rng = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Exchange) {
		e.logger = l
	}
}

// NewExchange creates an Exchange reading sources through getter.
func NewExchange(getter Getter, sources Sources, opts ...Option) *Exchange {
	sources.Crypto.Name = "crypto"
	sources.Stock.Name = "stock"
	sources.Gainers.Name = "gainers"
	sources.Losers.Name = "losers"
	sources.Filtered.Name = "filtered"

	seed := uint64(time.Now().UnixNano())
	e := &Exchange{
		getter:  getter,
		sources: sources,
		logger:  logging.Discard(),
		rng:     rand.New(rand.NewPCG(seed, seed>>1)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AllSymbols returns the full universe: crypto symbols followed by stocks.
func (e *Exchange) AllSymbols(ctx context.Context) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}
	all := make([]string, 0, len(e.crypto)+len(e.stock))
	all = append(all, e.crypto...)
	all = append(all, e.stock...)
	return all, nil
}

// RandomSymbols samples n distinct tickers from the whole universe.
func (e *Exchange) RandomSymbols(ctx context.Context, n int) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}
	pool := make([]string, 0, len(e.crypto)+len(e.stock))
	pool = append(pool, e.crypto...)
	pool = append(pool, e.stock...)
	return e.sampleLocked(pool, n), nil
}

// RandomCrypto samples n distinct crypto tickers.
func (e *Exchange) RandomCrypto(ctx context.Context, n int) ([]string, error) {
	return e.randomFrom(ctx, e.sources.Crypto, func() []string { return e.crypto }, n)
}

// RandomStock samples n distinct stock tickers.
func (e *Exchange) RandomStock(ctx context.Context, n int) ([]string, error) {
	return e.randomFrom(ctx, e.sources.Stock, func() []string { return e.stock }, n)
}

// TopGainers returns up to n of the top gaining stocks, best first.
func (e *Exchange) TopGainers(ctx context.Context, n int) ([]string, error) {
	return e.top(ctx, e.sources.Gainers, n)
}

// TopLosers returns up to n of the top losing stocks, worst first.
func (e *Exchange) TopLosers(ctx context.Context, n int) ([]string, error) {
	return e.top(ctx, e.sources.Losers, n)
}

// FilteredCoins returns up to n coins from the screening source.
func (e *Exchange) FilteredCoins(ctx context.Context, n int) ([]string, error) {
	return e.top(ctx, e.sources.Filtered, n)
}

func (e *Exchange) randomFrom(ctx context.Context, src Source, pool func() []string, n int) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !src.configured() {
		return nil, fmt.Errorf("%s: %w", src.Name, ErrSourceNotConfigured)
	}
	if err := e.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}
	return e.sampleLocked(pool(), n), nil
}

func (e *Exchange) top(ctx context.Context, src Source, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	tickers, err := src.load(ctx, e.getter, e.exclude)
	if err != nil {
		return nil, err
	}
	if len(tickers) > n {
		tickers = tickers[:n]
	}
	e.logger.Debugf("%s: %d ticker(s) %v", src.Name, len(tickers), tickers)
	return tickers, nil
}

// ensureLoadedLocked fetches the universe once. Unconfigured pools stay empty.
func (e *Exchange) ensureLoadedLocked(ctx context.Context) error {
	if e.loaded {
		return nil
	}
	if !e.sources.Crypto.configured() && !e.sources.Stock.configured() {
		return fmt.Errorf("universe: %w", ErrSourceNotConfigured)
	}

	var crypto, stock []string
	var err error
	if e.sources.Crypto.configured() {
		if crypto, err = e.sources.Crypto.load(ctx, e.getter, e.exclude); err != nil {
			return err
		}
	}
	if e.sources.Stock.configured() {
		if stock, err = e.sources.Stock.load(ctx, e.getter, e.exclude); err != nil {
			return err
		}
	}

	e.crypto, e.stock = crypto, stock
	e.loaded = true
	e.logger.Infof("loaded symbol universe: %d crypto, %d stock", len(crypto), len(stock))
	return nil
}

func (e *Exchange) sampleLocked(pool []string, n int) []string {
	if n <= 0 || len(pool) == 0 {
		return nil
	}
	if n > len(pool) {
		n = len(pool)
	}
	out := make([]string, 0, n)
	for _, i := range e.rng.Perm(len(pool))[:n] {
		out = append(out, pool[i])
	}
	return out
}
