// Package api exposes restore, resolve and download tasks over HTTP and
// streams task output over WebSocket.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"rewin/internal/app"
)

const shutdownTimeout = 5 * time.Second

// Server holds the state shared by all handlers.
type Server struct {
	Service app.Service
}

func NewServer(service app.Service) *Server {
	return &Server{Service: service}
}

// ListenAndServe serves the API on addr until ctx is canceled, then shuts
// down gracefully. Running tasks are canceled on shutdown.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(s),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Ctx(ctx).Info().Str("addr", addr).Msg("task API listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	for _, task := range s.Service.Tasks.List() {
		task.Cancel()
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
