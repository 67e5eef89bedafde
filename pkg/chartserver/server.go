// Package chartserver serves the page the browser session displays: one
// TradingView widget per displayed ticker.
package chartserver

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"time"

	"github.com/entrhq/autochart/pkg/logging"
)

//go:embed page.html.tmpl
var pageTemplate string

var page = template.Must(template.New("page").Parse(pageTemplate))

// TickerLister returns the tickers to render, oldest first.
type TickerLister interface {
	Tickers(ctx context.Context) ([]string, error)
}

// ChartOptions are passed through to every widget.
type ChartOptions struct {
	Interval string
	Theme    string
	Style    string
	Timezone string
	Locale   string
}

type widget struct {
	ID     string
	Symbol string
}

type pageData struct {
	Chart   ChartOptions
	Widgets []widget
	Columns int
}

// Server is the local chart page server.
type Server struct {
	addr    string
	tickers TickerLister
	chart   ChartOptions
	logger  *logging.Logger

	srv      *http.Server
	listener net.Listener
}

// New creates a server that will listen on addr.
func New(addr string, tickers TickerLister, chart ChartOptions, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Server{
		addr:    addr,
		tickers: tickers,
		chart:   chart,
		logger:  logger,
	}
	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	tickers, err := s.tickers.Tickers(r.Context())
	if err != nil {
		s.logger.Errorf("failed to load tickers: %v", err)
		http.Error(w, "failed to load tickers", http.StatusInternalServerError)
		return
	}

	data := pageData{Chart: s.chart, Columns: columns(len(tickers))}
	for i, t := range tickers {
		data.Widgets = append(data.Widgets, widget{ID: fmt.Sprintf("tv_chart_%d", i), Symbol: t})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := page.Execute(w, data); err != nil {
		s.logger.Errorf("failed to render chart page: %v", err)
	}
}

// columns picks a grid width that keeps charts roughly square.
func columns(n int) int {
	switch {
	case n <= 1:
		return 1
	case n <= 4:
		return 2
	case n <= 9:
		return 3
	default:
		return 4
	}
}

// Start binds the listener and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = ln
	s.logger.Infof("chart server listening on %s", ln.Addr())

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Errorf("chart server stopped: %v", err)
		}
	}()
	return nil
}

// URL returns the page URL. Valid after Start.
func (s *Server) URL() string {
	if s.listener != nil {
		return "http://" + s.listener.Addr().String() + "/"
	}
	return "http://" + s.addr + "/"
}

// Shutdown stops the server, waiting for in-flight requests until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
