package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"kafka-relay/src/logger"
)

const shutdownTimeout = 5 * time.Second

// Server runs the handler until its context ends.
type Server struct {
	http   *http.Server
	logger logger.Logger
}

// New creates a server listening on addr. onShutdown runs when shutdown starts,
// which is where long-lived streams must be ended.
func New(addr string, h http.Handler, log logger.Logger, onShutdown func()) *Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if onShutdown != nil {
		srv.RegisterOnShutdown(onShutdown)
	}
	return &Server{http: srv, logger: log}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("[HTTP] Listening on %s", s.http.Addr)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("[HTTP] Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
