// Package server exposes the calculator catalog over HTTP: a REST API and
// the CMS admin-ajax endpoint.
package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/Veraticus/calcman/internal/catalog"
)

// Config holds the listener and middleware settings.
type Config struct {
	Addr            string
	RateLimit       float64
	Burst           int
	MaxBodyBytes    int64
	ShutdownTimeout time.Duration

	// TLS, when set, makes the server accept HTTPS connections only.
	TLS *tls.Config
}

// DefaultConfig returns the settings used when none are configured.
func DefaultConfig() Config {
	return Config{
		Addr:            "127.0.0.1:8080",
		RateLimit:       20,
		Burst:           40,
		MaxBodyBytes:    1 << 20,
		ShutdownTimeout: 10 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Addr == "" {
		c.Addr = d.Addr
	}
	if c.RateLimit <= 0 {
		c.RateLimit = d.RateLimit
	}
	if c.Burst <= 0 {
		c.Burst = d.Burst
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = d.MaxBodyBytes
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	return c
}

// Server serves one catalog store.
type Server struct {
	store   *catalog.Store
	logger  *slog.Logger
	now     func() time.Time
	handler http.Handler
	cfg     Config
}

// New creates a server for store. A nil logger uses slog.Default().
func New(store *catalog.Store, cfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		store:  store,
		cfg:    cfg.withDefaults(),
		logger: logger,
		now:    time.Now,
	}

	limiter := rate.NewLimiter(rate.Limit(s.cfg.RateLimit), s.cfg.Burst)
	s.handler = Chain(
		RequestIDMiddleware(),
		LoggingMiddleware(logger),
		RecoveryMiddleware(logger),
		RateLimitMiddleware(limiter),
		BodyLimitMiddleware(s.cfg.MaxBodyBytes),
	)(s.routes())
	return s
}

// Handler returns the complete handler including middleware.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/calculators", s.handleList)
	mux.HandleFunc("POST /api/calculators", s.handleCreate)
	mux.HandleFunc("GET /api/calculators/{id}", s.handleGet)
	mux.HandleFunc("PUT /api/calculators/{id}", s.handleUpdate)
	mux.HandleFunc("DELETE /api/calculators/{id}", s.handleDelete)
	mux.HandleFunc("GET /api/calculators/{id}/seo", s.handleRenderSEO)

	mux.HandleFunc("GET /api/seo/global", s.handleGetFormulas)
	mux.HandleFunc("PUT /api/seo/global", s.handleUpdateFormulas)

	mux.HandleFunc("GET /api/config/export", s.handleExport)
	mux.HandleFunc("POST /api/config/import", s.handleImport)

	mux.HandleFunc("GET /sitemap.xml", s.handleSitemap)
	mux.HandleFunc("POST "+AjaxPath, s.handleAjax)

	mux.HandleFunc("GET /health", s.handleHealth)

	return mux
}

// ListenAndServe listens on the configured address and serves until ctx is
// canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is canceled, then shuts down
// gracefully within the configured timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.cfg.TLS != nil {
		ln = tls.NewListener(ln, s.cfg.TLS)
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", ln.Addr().String(), "tls", s.cfg.TLS != nil)
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Shutting down HTTP server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
