package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/salesdesk/salesdesk/engine/infra/server/appstate"
	"github.com/salesdesk/salesdesk/engine/infra/server/events"
	"github.com/salesdesk/salesdesk/engine/infra/sqlite"
	"github.com/salesdesk/salesdesk/pkg/config"
)

const (
	defaultHTTPTimeout    = 15 * time.Second
	httpIdleTimeout       = 60 * time.Second
	serverShutdownTimeout = 5 * time.Second
	hostAny               = "0.0.0.0"
	hostLoopback          = "127.0.0.1"
)

// Server is the development backend behind `salesdesk serve`.
type Server struct {
	serverConfig *config.ServerConfig
	store        *sqlite.Store
	hub          *events.Hub
	state        *appstate.State
	router       *gin.Engine
	ctx          context.Context
	cancel       context.CancelFunc
	httpServer   *http.Server
	buildOnce    sync.Once
	buildErr     error
	shutdownOnce sync.Once
}

// NewServer wires the store into a server. The configuration and logger are
// taken from ctx.
func NewServer(ctx context.Context, store *sqlite.Store) (*Server, error) {
	if store == nil {
		return nil, fmt.Errorf("sqlite store is required")
	}
	serverCtx, cancel := context.WithCancel(ctx)
	cfg := config.FromContext(serverCtx)
	return &Server{
		serverConfig: &cfg.Server,
		store:        store,
		ctx:          serverCtx,
		cancel:       cancel,
	}, nil
}

// Handler returns the fully wired gin engine.
func (s *Server) Handler() (http.Handler, error) {
	s.buildOnce.Do(func() {
		s.buildErr = s.setupDependencies()
		if s.buildErr == nil {
			s.buildErr = s.buildRouter(s.state)
		}
	})
	if s.buildErr != nil {
		return nil, s.buildErr
	}
	return s.router, nil
}

// State exposes the repositories, mainly for seeding.
func (s *Server) State() *appstate.State {
	return s.state
}

// Address is host:port from the server configuration.
func (s *Server) Address() string {
	return net.JoinHostPort(s.serverConfig.Host, strconv.Itoa(s.serverConfig.Port))
}

func (s *Server) httpTimeout() time.Duration {
	if s.serverConfig.Timeout > 0 {
		return s.serverConfig.Timeout
	}
	return defaultHTTPTimeout
}
