package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/quantmind-br/repozip/internal/config"
	"github.com/quantmind-br/repozip/internal/utils"
)

// Server serves HTTP on a TCP listener until its context is cancelled
type Server struct {
	cfg     config.ServerConfig
	handler http.Handler
	logger  *utils.Logger

	// ready is closed once the listener is bound
	ready chan struct{}
	addr  net.Addr
}

// Options contains options for creating a Server
type Options struct {
	Config  config.ServerConfig
	Handler http.Handler
	Logger  *utils.Logger
}

// New creates a Server. Call Serve to start accepting connections.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	if opts.Config.Addr == "" {
		opts.Config.Addr = config.DefaultAddr
	}
	if opts.Config.ShutdownTimeout <= 0 {
		opts.Config.ShutdownTimeout = config.DefaultShutdownTimeout
	}

	return &Server{
		cfg:     opts.Config,
		handler: opts.Handler,
		logger:  logger.WithComponent("server"),
		ready:   make(chan struct{}),
	}
}

// Ready returns a channel that is closed once the server accepts
// connections
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the bound address. Only valid after Ready is closed.
func (s *Server) Addr() net.Addr {
	return s.addr
}

// Serve blocks until ctx is cancelled, then stops accepting connections
// and waits up to the shutdown timeout for in-flight requests.
func (s *Server) Serve(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	s.addr = listener.Addr()
	close(s.ready)

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       s.cfg.IdleTimeout,
	}

	s.logger.Info().Str("addr", s.addr.String()).Msg("HTTP server listening")

	serveDone := make(chan error, 1)
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveDone <- err
		}
		close(serveDone)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info().Msg("HTTP server shutting down")
	case err := <-serveDone:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	start := time.Now()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}

	s.logger.Info().Dur("drained_in", time.Since(start)).Msg("HTTP server stopped")
	return nil
}
