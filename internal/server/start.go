package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// shutdownTimeout bounds how long in-flight requests get to finish.
const shutdownTimeout = 10 * time.Second

// Start launches the background components: the websocket gateway and its
// subscriptions to topic change events.
func (s *Server) Start(ctx context.Context) error {
	gatewayCtx, cancel := context.WithCancel(ctx)
	if err := s.Gateway.Start(gatewayCtx, s.PubSub); err != nil {
		cancel()
		return fmt.Errorf("start websocket gateway: %w", err)
	}
	s.stopGateway = cancel
	return nil
}

// Run starts the server and serves HTTP until ctx is canceled or the process
// receives SIGINT or SIGTERM, then shuts everything down.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := s.Start(context.Background()); err != nil {
		return err
	}

	addr := s.Cfg.GetServerAddr()
	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server listening", "addr", addr)
		if err := s.E.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	case serveErr = <-errCh:
		slog.Error("HTTP server failed", "error", serveErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return errors.Join(serveErr, s.Shutdown(shutdownCtx))
}
