// Package web serves the clock's status page, its JSON form and a health
// check.
package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/sweeney/medclock/internal/logger"
	"github.com/sweeney/medclock/internal/status"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Server renders snapshots taken from a status.Tracker.
type Server struct {
	srv     *http.Server
	tracker *status.Tracker
}

// New creates a Server for addr. Nothing listens until Run or Serve.
func New(addr string, tracker *status.Tracker) *Server {
	s := &Server{tracker: tracker}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s
}

// Handler routes:
//
//	GET /, /index.html  status page
//	GET /index.json     status snapshot
//	GET /healthz        200 while the last clock read succeeded, 503 otherwise
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.page)
	mux.HandleFunc("GET /index.html", s.page)
	mux.HandleFunc("GET /index.json", s.snapshotJSON)
	mux.HandleFunc("GET /healthz", s.health)
	return mux
}

// Run listens on the configured address until ctx ends, then shuts down
// gracefully. A listen failure is returned; a normal shutdown returns nil.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	logger.Infof(ctx, "http status server listening on %s", ln.Addr())
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	done := make(chan error, 1)
	go func() { done <- s.srv.Serve(ln) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-done; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) page(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := renderHTML(w, s.tracker.Snapshot()); err != nil {
		logger.Warnf(r.Context(), "render status page: %v", err)
	}
}

func (s *Server) snapshotJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write(status.FormatJSON(s.tracker.Snapshot())); err != nil {
		logger.Debugf(r.Context(), "write status json: %v", err)
	}
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if !snap.ClockValid || snap.ClockError != "" {
		reason := snap.ClockError
		if reason == "" {
			reason = "no clock reading yet"
		}
		http.Error(w, reason, http.StatusServiceUnavailable)
		return
	}
	_, _ = w.Write([]byte("ok\n"))
}
