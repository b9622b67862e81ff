package server

import (
	"fmt"
	"net"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/salesdesk/salesdesk/engine/infra/server/appstate"
	"github.com/salesdesk/salesdesk/engine/infra/server/routes"
	"github.com/salesdesk/salesdesk/pkg/logger"
)

func (s *Server) buildRouter(state *appstate.State) error {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(logger.FromContext(s.ctx)))
	if s.serverConfig.CORSEnabled {
		r.Use(CORSMiddleware())
	}
	r.Use(appstate.StateMiddleware(state))
	if err := RegisterRoutes(s.ctx, r, state); err != nil {
		return err
	}
	s.router = r
	return nil
}

func (s *Server) logStartupBanner(addr string) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		host, port = addr, ""
	}
	httpURL := fmt.Sprintf("http://%s:%s", friendlyHost(host), port)
	lines := []string{
		"salesdesk dev backend",
		fmt.Sprintf("  API      > %s%s", httpURL, routes.Base()),
		fmt.Sprintf("  Health   > %s%s", httpURL, routes.Health()),
		fmt.Sprintf("  Events   > ws://%s:%s%s", friendlyHost(host), port, routes.Events()),
		fmt.Sprintf("  Database > %s", s.store.Path()),
	}
	logger.FromContext(s.ctx).Info("\n" + strings.Join(lines, "\n"))
}

func friendlyHost(h string) string {
	if h == hostAny || h == "::" || h == "[::]" || h == "" {
		return hostLoopback
	}
	return h
}
