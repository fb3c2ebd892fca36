package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tanmay0711/leaveflow/internal/shared/infrastructure/config"
)

// Server wraps the HTTP server with sane timeouts and graceful shutdown.
// The drain window for in-flight requests comes from ServerConfig so a
// deployment with slow calendar round-trips can stretch it.
type Server struct {
	httpServer   *http.Server
	port         string
	drainTimeout time.Duration
}

func NewServer(cfg config.ServerConfig, handler http.Handler) *Server {
	drain := cfg.ShutdownTimeout
	if drain <= 0 {
		drain = 20 * time.Second
	}
	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      handler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		port:         cfg.Port,
		drainTimeout: drain,
	}
}

// Start serves until the process receives an interrupt, then drains
// in-flight requests before returning.
func (s *Server) Start() error {
	serverErrors := make(chan error, 1)

	go func() {
		log.Printf("Server starting on port %s", s.port)
		serverErrors <- s.httpServer.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Printf("Server shutting down: %v (draining up to %s)", sig, s.drainTimeout)

		ctx, cancel := context.WithTimeout(context.Background(), s.drainTimeout)
		defer cancel()

		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.httpServer.Close()
			return fmt.Errorf("could not gracefully shutdown server: %w", err)
		}

		log.Println("Server stopped gracefully")
	}

	return nil
}
