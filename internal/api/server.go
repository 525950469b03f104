package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	coreconfig "github.com/examscores/scorebot/core/config"
	"github.com/examscores/scorebot/core/logger"
)

// Server runs the HTTP API until its context is cancelled.
type Server struct {
	srv             *http.Server
	shutdownTimeout time.Duration
}

// NewServer applies the listen address and timeouts from cfg.
func NewServer(cfg coreconfig.HTTPConfig, h http.Handler) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              cfg.Listen,
			Handler:           h,
			ReadTimeout:       time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
			ReadHeaderTimeout: time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
			WriteTimeout:      time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
		},
		shutdownTimeout: time.Duration(cfg.ShutdownTimeoutSeconds) * time.Second,
	}
}

// Run listens on the configured address.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("http listen %s: %w", s.srv.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln and shuts down gracefully once ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.HTTP.Info("http server started",
			slog.String("event", "http.listen"),
			slog.String("listen", ln.Addr().String()),
		)
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		start := time.Now()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		err := s.srv.Shutdown(shutdownCtx)
		attrs := []slog.Attr{
			slog.String("event", "http.shutdown"),
			slog.Duration("duration", logger.Took(start)),
		}
		if err != nil {
			attrs = append(attrs, slog.String("err", err.Error()))
			logger.HTTP.LogAttrs(context.Background(), slog.LevelWarn, "http server shutdown", attrs...)
			return fmt.Errorf("http shutdown: %w", err)
		}
		logger.HTTP.LogAttrs(context.Background(), slog.LevelInfo, "http server stopped", attrs...)
		return nil
	})

	return g.Wait()
}
