// Package viewer serves the most recently rendered page of each figure
// over HTTP.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"
)

// Page is one published rendering.
type Page struct {
	HTML      []byte
	UpdatedAt time.Time
	Refresh   int
}

// Server holds the latest page per figure name.
type Server struct {
	mu     sync.RWMutex
	pages  map[string]Page
	logger *slog.Logger
}

// New creates an empty viewer.
func New(logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{pages: make(map[string]Page), logger: logger}
}

// Publish replaces the page for name.
func (s *Server) Publish(name string, html []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.pages[name]
	s.pages[name] = Page{
		HTML:      append([]byte(nil), html...),
		UpdatedAt: time.Now(),
		Refresh:   prev.Refresh + 1,
	}
}

// Latest returns the current page for name.
func (s *Server) Latest(name string) (Page, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pages[name]
	return p, ok
}

// Names returns the published figure names in order.
func (s *Server) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.pages))
	for n := range s.pages {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Handler routes /{name} to the figure page and / to the only figure, or
// an index when several are published.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.HandleFunc("/", s.handlePage)
	return mux
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	name := strings.Trim(r.URL.Path, "/")
	if name == "" {
		names := s.Names()
		if len(names) != 1 {
			s.writeIndex(w, names)
			return
		}
		name = names[0]
	}

	page, ok := s.Latest(name)
	if !ok {
		http.Error(w, fmt.Sprintf("no figure %q has been rendered yet", name), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Last-Modified", page.UpdatedAt.UTC().Format(http.TimeFormat))
	w.Header().Set("X-Ctrlviz-Refresh", fmt.Sprint(page.Refresh))
	_, _ = w.Write(page.HTML)
}

func (s *Server) writeIndex(w http.ResponseWriter, names []string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><head><title>ctrlviz</title></head><body><ul>\n")
	for _, n := range names {
		fmt.Fprintf(&b, "<li><a href=\"/%s\">%s</a></li>\n", n, n)
	}
	b.WriteString("</ul></body></html>\n")
	_, _ = w.Write([]byte(b.String()))
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("viewer listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()

	s.logger.Info("viewer listening", "addr", "http://"+ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("viewer: %w", err)
	}
	return nil
}
