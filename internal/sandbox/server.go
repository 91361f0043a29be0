// Package sandbox hosts synthesized preview documents: over HTTP under a
// restrictive Content-Security-Policy sandbox, or in a headless browser.
package sandbox

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/jeanhaley32/projecthub/internal/constants"
	"github.com/jeanhaley32/projecthub/internal/logging"
	"github.com/jeanhaley32/projecthub/internal/metrics"
)

// ReloadFunc re-synthesizes the current document.
type ReloadFunc func() (string, error)

// Server serves the current preview document.
type Server struct {
	reload ReloadFunc
	log    *zap.Logger

	mu  sync.RWMutex
	doc string
}

// NewServer creates a Server. reload may be nil, in which case POST
// /reload answers 501.
func NewServer(reload ReloadFunc, log *zap.Logger) *Server {
	if log == nil {
		log = logging.Named("sandbox")
	}
	return &Server{reload: reload, log: log}
}

// Load replaces the served document.
func (s *Server) Load(_ context.Context, doc string) error {
	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
	return nil
}

// Document returns the served document.
func (s *Server) Document() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc
}

// Handler returns the HTTP routes of the sandbox host.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/", s.handleDocument)
	r.Post("/reload", s.handleReload)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler())

	return r
}

func (s *Server) handleDocument(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Security-Policy", constants.SandboxPolicy)
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Write([]byte(s.Document()))
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if s.reload == nil {
		http.Error(w, "reload not configured", http.StatusNotImplemented)
		return
	}
	doc, err := s.reload()
	if err != nil {
		s.log.Warn("preview reload failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	s.Load(r.Context(), doc)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

// Serve listens on addr until ctx is cancelled. ready, if non-nil, is
// called with the bound address once the listener is open.
func (s *Server) Serve(ctx context.Context, addr string, ready func(net.Addr)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	if ready != nil {
		ready(ln.Addr())
	}
	s.log.Info("preview server listening", zap.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.PreviewShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down preview server: %w", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
