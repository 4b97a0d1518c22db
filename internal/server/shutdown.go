package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Shutdown stops accepting requests, closes every websocket connection, then
// closes the bus and the store. It reports every failure it meets.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	if err := s.E.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}

	if s.stopGateway != nil {
		s.stopGateway()
		select {
		case <-s.Gateway.Done():
		case <-ctx.Done():
			errs = append(errs, fmt.Errorf("websocket gateway: %w", ctx.Err()))
		}
	}

	if err := s.PubSub.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close pubsub: %w", err))
	}
	if err := s.Store.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}

	if len(errs) == 0 {
		slog.Info("Server stopped")
	}
	return errors.Join(errs...)
}
