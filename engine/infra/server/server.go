package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/plexify/plexify/engine/infra/server/routes"
	"github.com/plexify/plexify/pkg/config"
	"github.com/plexify/plexify/pkg/logger"
	"github.com/plexify/plexify/pkg/version"
)

const (
	defaultShutdownTimeout = 10 * time.Second
	httpIdleTimeout        = 60 * time.Second
	hostAny                = "0.0.0.0"
	hostLoopback           = "127.0.0.1"
)

type Server struct {
	ctx    context.Context
	cfg    *config.Config
	deps   *Dependencies
	router *gin.Engine
}

// NewServer builds the dependencies and router from the config attached to ctx.
func NewServer(ctx context.Context, opts ...Option) (*Server, error) {
	cfg := config.FromContext(ctx)
	if cfg == nil {
		return nil, fmt.Errorf("configuration missing from context; attach a manager with config.ContextWithManager")
	}
	if cfg.Runtime.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	deps, err := BuildDependencies(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}
	r, err := BuildRouter(ctx, deps)
	if err != nil {
		_ = deps.Close(ctx)
		return nil, err
	}
	return &Server{ctx: ctx, cfg: cfg, deps: deps, router: r}, nil
}

// Handler exposes the router, e.g. for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until SIGINT/SIGTERM or ctx cancellation, then drains in-flight
// requests for up to the configured shutdown timeout.
func (s *Server) Run() error {
	ctx, stop := signal.NotifyContext(s.ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	log := logger.FromContext(s.ctx)
	srv := s.createHTTPServer()
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	s.logStartupBanner()
	select {
	case err := <-errCh:
		if err != nil {
			_ = s.deps.Close(context.WithoutCancel(s.ctx))
			return fmt.Errorf("server failed to start: %w", err)
		}
	case <-ctx.Done():
		log.Debug("Received shutdown signal, initiating graceful shutdown")
	}
	timeout := s.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(s.ctx), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	if err := s.deps.Close(shutdownCtx); err != nil {
		log.Warn("Failed to release dependencies", "error", err)
	}
	log.Info("Server shutdown completed successfully")
	return nil
}

func (s *Server) createHTTPServer() *http.Server {
	return &http.Server{
		Addr:              net.JoinHostPort(s.cfg.Server.Host, strconv.Itoa(s.cfg.Server.Port)),
		Handler:           s.router,
		ReadTimeout:       s.cfg.Server.ReadTimeout,
		ReadHeaderTimeout: s.cfg.Server.ReadTimeout,
		WriteTimeout:      s.cfg.Server.WriteTimeout,
		IdleTimeout:       httpIdleTimeout,
	}
}

func (s *Server) logStartupBanner() {
	httpURL := fmt.Sprintf("http://%s", net.JoinHostPort(friendlyHost(s.cfg.Server.Host), strconv.Itoa(s.cfg.Server.Port)))
	lines := []string{
		fmt.Sprintf("Plexify %s", version.GetVersion()),
		fmt.Sprintf("  API           > %s%s", httpURL, routes.Base()),
		fmt.Sprintf("  Health        > %s%s", httpURL, routes.Health()),
		fmt.Sprintf("  Audio         > %s%s", httpURL, s.cfg.Storage.AudioPath),
		fmt.Sprintf("  Podcasts      > %s%s", httpURL, s.cfg.Storage.PodcastPath),
	}
	if s.deps.Monitoring != nil && s.deps.Monitoring.IsInitialized() {
		lines = append(lines, fmt.Sprintf("  Metrics       > %s%s", httpURL, s.deps.Monitoring.Path()))
	}
	logger.FromContext(s.ctx).Info("\n" + strings.Join(lines, "\n"))
}

func friendlyHost(h string) string {
	if h == hostAny || h == "::" || h == "" {
		return hostLoopback
	}
	return h
}
