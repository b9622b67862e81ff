package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	crmrouter "github.com/salesdesk/salesdesk/engine/crm/router"
	"github.com/salesdesk/salesdesk/engine/infra/server/appstate"
	"github.com/salesdesk/salesdesk/engine/infra/server/routes"
	"github.com/salesdesk/salesdesk/pkg/logger"
)

func RegisterRoutes(ctx context.Context, router *gin.Engine, state *appstate.State) error {
	apiBase := router.Group(routes.Base())
	apiBase.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "clients": state.Events.Clients()})
	})
	apiBase.GET("/events", state.Events.Handle)
	crmrouter.Register(apiBase)
	logger.FromContext(ctx).Debug("Completed route registration", "routes", len(router.Routes()))
	return nil
}
