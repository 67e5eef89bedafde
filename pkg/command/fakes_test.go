package command

import (
	"context"
	"errors"
	"strings"
	"sync"
)

type fakeSession struct {
	mu            sync.Mutex
	starts        int
	refreshes     int
	quits         int
	screenshots   int
	startErr      error
	refreshErr    error
	quitErr       error
	screenshotErr error
	path          string

	// block, when set, holds Refresh until closed
	block   chan struct{}
	entered chan struct{}
}

func (s *fakeSession) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.starts++
	return s.startErr
}

func (s *fakeSession) Refresh(ctx context.Context) error {
	if s.block != nil {
		if s.entered != nil {
			close(s.entered)
		}
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshes++
	return s.refreshErr
}

func (s *fakeSession) Screenshot(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.screenshots++
	if s.screenshotErr != nil {
		return "", s.screenshotErr
	}
	return s.path, nil
}

func (s *fakeSession) Quit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quits++
	return s.quitErr
}

func (s *fakeSession) counts() (refreshes, quits int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshes, s.quits
}

type providerCall struct {
	method string
	n      int
}

type fakeProvider struct {
	universe []string
	pool     []string
	err      error
	allErr   error
	calls    []providerCall
}

func (p *fakeProvider) AllSymbols(ctx context.Context) ([]string, error) {
	p.calls = append(p.calls, providerCall{method: "AllSymbols"})
	return p.universe, p.allErr
}

func (p *fakeProvider) take(method string, n int) ([]string, error) {
	p.calls = append(p.calls, providerCall{method: method, n: n})
	if p.err != nil {
		return nil, p.err
	}
	if n > len(p.pool) {
		n = len(p.pool)
	}
	return append([]string(nil), p.pool[:n]...), nil
}

func (p *fakeProvider) RandomSymbols(ctx context.Context, n int) ([]string, error) {
	return p.take("RandomSymbols", n)
}

func (p *fakeProvider) RandomCrypto(ctx context.Context, n int) ([]string, error) {
	return p.take("RandomCrypto", n)
}

func (p *fakeProvider) RandomStock(ctx context.Context, n int) ([]string, error) {
	return p.take("RandomStock", n)
}

func (p *fakeProvider) TopGainers(ctx context.Context, n int) ([]string, error) {
	return p.take("TopGainers", n)
}

func (p *fakeProvider) TopLosers(ctx context.Context, n int) ([]string, error) {
	return p.take("TopLosers", n)
}

func (p *fakeProvider) FilteredCoins(ctx context.Context, n int) ([]string, error) {
	return p.take("FilteredCoins", n)
}

type fakeModel struct {
	tickers  []string
	failOn   map[string]error
	clearErr error
	adds     int
	deletes  int
	clears   int
}

func (m *fakeModel) Add(ctx context.Context, ticker string) (bool, error) {
	m.adds++
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if err, ok := m.failOn[ticker]; ok {
		return false, err
	}
	for _, t := range m.tickers {
		if t == ticker {
			return false, nil
		}
	}
	m.tickers = append(m.tickers, ticker)
	return true, nil
}

func (m *fakeModel) DeleteLast(ctx context.Context) error {
	m.deletes++
	if len(m.tickers) > 0 {
		m.tickers = m.tickers[:len(m.tickers)-1]
	}
	return nil
}

func (m *fakeModel) ClearAll(ctx context.Context) error {
	m.clears++
	if m.clearErr != nil {
		return m.clearErr
	}
	m.tickers = nil
	return nil
}

func (m *fakeModel) calls() int {
	return m.adds + m.deletes + m.clears
}

type fakeScraper struct {
	profiles map[string][]string
	calls    []string
}

var errNoProfile = errors.New("profile not found")

func (s *fakeScraper) Resolve(ctx context.Context, profile string) ([]string, error) {
	s.calls = append(s.calls, profile)
	tickers, ok := s.profiles[profile]
	if !ok {
		return nil, errNoProfile
	}
	return tickers, nil
}
