package appstate

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/salesdesk/salesdesk/engine/infra/server/events"
	"github.com/salesdesk/salesdesk/engine/infra/sqlite"
)

type contextKey string

const (
	stateKey contextKey = "app_state"
)

// State is what every handler needs: the repositories and the change feed.
type State struct {
	Users     *sqlite.UserRepo
	Estimates *sqlite.EstimateRepo
	Events    *events.Hub
}

func NewState(store *sqlite.Store, hub *events.Hub) (*State, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if hub == nil {
		return nil, fmt.Errorf("event hub is required")
	}
	return &State{
		Users:     sqlite.NewUserRepo(store.DB()),
		Estimates: sqlite.NewEstimateRepo(store.DB()),
		Events:    hub,
	}, nil
}

func WithState(ctx context.Context, state *State) context.Context {
	return context.WithValue(ctx, stateKey, state)
}

func GetState(ctx context.Context) (*State, error) {
	state, ok := ctx.Value(stateKey).(*State)
	if !ok || state == nil {
		return nil, fmt.Errorf("app state not found in context")
	}
	return state, nil
}

// Publish announces a change on the event hub.
func (s *State) Publish(resource, action, id string) {
	if s.Events != nil {
		s.Events.Publish(resource, action, id)
	}
}

func StateMiddleware(state *State) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(WithState(c.Request.Context(), state))
		c.Next()
	}
}
