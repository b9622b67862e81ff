package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/salesdesk/salesdesk/engine/infra/server/appstate"
	"github.com/salesdesk/salesdesk/engine/infra/server/events"
	"github.com/salesdesk/salesdesk/pkg/logger"
)

func (s *Server) setupDependencies() error {
	s.hub = events.NewHub(logger.FromContext(s.ctx))
	state, err := appstate.NewState(s.store, s.hub)
	if err != nil {
		return fmt.Errorf("failed to create app state: %w", err)
	}
	s.state = state
	return nil
}

// Run serves until the context is cancelled or SIGINT/SIGTERM arrives, then
// shuts down gracefully.
func (s *Server) Run() error {
	if _, err := s.Handler(); err != nil {
		return fmt.Errorf("failed to build router: %w", err)
	}
	ln, err := net.Listen("tcp", s.Address())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.Address(), err)
	}
	return s.serve(ln)
}

func (s *Server) serve(ln net.Listener) error {
	log := logger.FromContext(s.ctx)
	s.httpServer = s.createHTTPServer()
	s.logStartupBanner(ln.Addr().String())
	serveErr := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()
	sigCtx, stop := signal.NotifyContext(s.ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	select {
	case err := <-serveErr:
		if err != nil {
			log.Error("Server failed", "error", err)
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-sigCtx.Done():
		log.Debug("Received shutdown signal, initiating graceful shutdown")
	}
	return s.Shutdown()
}

func (s *Server) createHTTPServer() *http.Server {
	timeout := s.httpTimeout()
	return &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: timeout,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
		IdleTimeout:       httpIdleTimeout,
	}
}

// Shutdown closes the change feed and drains in-flight requests.
func (s *Server) Shutdown() error {
	var err error
	s.shutdownOnce.Do(func() {
		log := logger.FromContext(s.ctx)
		s.cancel()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(s.ctx), serverShutdownTimeout)
		defer cancel()
		if s.hub != nil {
			if hubErr := s.hub.Close(shutdownCtx); hubErr != nil {
				log.Warn("Event feed closed with errors", "error", hubErr)
			}
		}
		if s.httpServer != nil {
			if shutdownErr := s.httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
				err = fmt.Errorf("server shutdown failed: %w", shutdownErr)
				return
			}
		}
		log.Info("Server shutdown completed successfully")
	})
	return err
}
