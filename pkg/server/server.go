// Package server exposes a replay.Responder over HTTP.
//
// The replay listener answers every request from the recording; failures are
// written as JSON {"error": kind, "message": ...} with a status chosen by a
// StatusMap. An optional admin listener serves health, metrics, the key list
// and the request log.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/getmockd/harplay/pkg/logging"
)

// DefaultShutdownTimeout bounds graceful shutdown when Config leaves it unset.
const DefaultShutdownTimeout = 10 * time.Second

// Config holds listener settings.
type Config struct {
	// Addr is the replay listener address, e.g. "127.0.0.1:3030".
	Addr string
	// AdminAddr is the admin listener address; empty disables it.
	AdminAddr string

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server runs the replay and admin listeners.
type Server struct {
	cfg    Config
	replay *http.Server
	admin  *http.Server
	logger *slog.Logger
}

// New creates a server. admin may be nil when no admin listener is wanted.
func New(cfg Config, handler, admin http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.Nop()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	s := &Server{
		cfg:    cfg,
		logger: logger,
		replay: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
		},
	}
	if admin != nil && cfg.AdminAddr != "" {
		s.admin = &http.Server{
			Addr:              cfg.AdminAddr,
			Handler:           admin,
			ReadHeaderTimeout: 5 * time.Second,
		}
	}
	return s
}

// Run listens on the configured addresses and serves until ctx is cancelled
// or a listener fails.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr, err)
	}
	var adminLn net.Listener
	if s.admin != nil {
		adminLn, err = net.Listen("tcp", s.cfg.AdminAddr)
		if err != nil {
			_ = ln.Close()
			return fmt.Errorf("listening on %s: %w", s.cfg.AdminAddr, err)
		}
	}
	return s.Serve(ctx, ln, adminLn)
}

// Serve serves on the given listeners until ctx is cancelled or a listener
// fails, then shuts both servers down gracefully. adminLn may be nil.
func (s *Server) Serve(ctx context.Context, ln, adminLn net.Listener) error {
	errCh := make(chan error, 2)

	s.logger.Info("replay server listening", "addr", ln.Addr().String())
	go func() { errCh <- serve(s.replay, ln) }()

	if s.admin != nil && adminLn != nil {
		s.logger.Info("admin server listening", "addr", adminLn.Addr().String())
		go func() { errCh <- serve(s.admin, adminLn) }()
	} else if adminLn != nil {
		_ = adminLn.Close()
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down")
	shutdownErr := s.replay.Shutdown(shutdownCtx)
	if s.admin != nil {
		shutdownErr = errors.Join(shutdownErr, s.admin.Shutdown(shutdownCtx))
	}
	return errors.Join(runErr, shutdownErr)
}

func serve(srv *http.Server, ln net.Listener) error {
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
