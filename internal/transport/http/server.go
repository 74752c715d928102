package http

import (
	"context"
	"errors"
	stdhttp "net/http"
	"time"

	"go.uber.org/zap"

	"github.com/jeenyuhs/Ragnarok/internal/config"
)

// Server runs the HTTP listener as a lifecycle service.
type Server struct {
	srv             *stdhttp.Server
	shutdownTimeout time.Duration
	logger          *zap.Logger
}

// NewServer creates a Server listening on cfg.Addr().
//
// Precondition: handler and logger must be non-nil.
func NewServer(cfg config.HTTPConfig, handler stdhttp.Handler, logger *zap.Logger) *Server {
	return &Server{
		srv: &stdhttp.Server{
			Addr:         cfg.Addr(),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          logger,
	}
}

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.srv.Addr }

// Start serves until Stop is called.
func (s *Server) Start() error {
	s.logger.Info("http listening", zap.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop drains in-flight requests for up to the shutdown timeout.
func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		s.logger.Warn("http shutdown", zap.Error(err))
	}
}
