package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	ws "github.com/gorilla/websocket"
	"github.com/salesdesk/salesdesk/pkg/logger"
)

// Resource names carried in Event.Type.
const (
	ResourceCustomers   = "customers"
	ResourceStaff       = "staff"
	ResourceMemberships = "membership-requests"
	ResourceEstimates   = "estimates"
)

// Event is one change announced on the backend's feed.
type Event struct {
	Type   string `json:"type"`
	ID     string `json:"id"`
	Action string `json:"action"`
}

// EventsURL is the websocket address of the change feed.
func (c *Client) EventsURL() string {
	u := *c.baseURL
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path += defaultEventsSuffix
	return u.String()
}

// Subscribe connects to the change feed. Events are delivered until ctx is
// done or the connection drops; the channel is closed afterwards.
func (c *Client) Subscribe(ctx context.Context) (<-chan Event, error) {
	header := http.Header{}
	if auth := c.http.Token; auth != "" {
		header.Set("Authorization", "Bearer "+auth)
	}
	conn, resp, err := ws.DefaultDialer.DialContext(ctx, c.EventsURL(), header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, transportError("subscribe events", fmt.Errorf("dial %s: %w", c.EventsURL(), err))
	}
	out := make(chan Event, 16)
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()
	go func() {
		defer close(out)
		defer close(done)
		defer conn.Close()
		log := logger.FromContext(ctx)
		for {
			var evt Event
			if err := conn.ReadJSON(&evt); err != nil {
				if ctx.Err() == nil && !ws.IsCloseError(err, ws.CloseNormalClosure, ws.CloseGoingAway) &&
					!errors.Is(err, context.Canceled) {
					log.Debug("event feed closed", "error", err)
				}
				return
			}
			select {
			case out <- evt:
			case <-ctx.Done():
				return
			default:
				// the consumer only needs to know something changed
			}
		}
	}()
	return out, nil
}

// Matches reports whether evt concerns one of the given resource types.
func (e Event) Matches(resources ...string) bool {
	for _, r := range resources {
		if e.Type == r {
			return true
		}
	}
	return false
}
