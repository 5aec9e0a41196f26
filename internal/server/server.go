// Package server assembles the HTTP engine from the loaded modules.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"

	"github.com/mantonx/reelbase/internal/config"
	"github.com/mantonx/reelbase/internal/logger"
	"github.com/mantonx/reelbase/internal/middleware"
	"github.com/mantonx/reelbase/internal/modules/modulemanager"
)

// Server owns the HTTP listener and the modules behind it.
type Server struct {
	cfg     config.ServerConfig
	modules *modulemanager.Manager
	engine  *gin.Engine
	http    *http.Server
	logger  hclog.Logger
}

// New builds the router for modules, which must already be loaded.
func New(cfg config.ServerConfig, modules *modulemanager.Manager) (*Server, error) {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	engine.Use(gin.Recovery(), middleware.RequestID())
	if cfg.EnableCORS {
		engine.Use(middleware.CORS())
	}
	engine.Use(middleware.ErrorLogger(), middleware.RequestLogger())

	s := &Server{
		cfg:     cfg,
		modules: modules,
		engine:  engine,
		logger:  logger.Named("server"),
	}
	s.setupRoutes()

	s.http = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      engine,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then drains in-flight requests for at
// most grace and shuts the modules down.
func (s *Server) Run(ctx context.Context, grace time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	case <-ctx.Done():
	}

	s.logger.Info("shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	httpErr := s.http.Shutdown(shutdownCtx)
	if httpErr != nil {
		s.logger.Error("HTTP server shutdown error", "error", httpErr)
	}
	return errors.Join(httpErr, s.modules.Shutdown(shutdownCtx))
}
