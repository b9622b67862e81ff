// Package events is the change feed behind GET /api/events. Every successful
// mutation is broadcast to all connected websocket clients so open listing
// screens can reload.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	ws "github.com/gorilla/websocket"
	"github.com/salesdesk/salesdesk/pkg/logger"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// Resource names carried in Event.Type.
const (
	ResourceCustomers   = "customers"
	ResourceStaff       = "staff"
	ResourceMemberships = "membership-requests"
	ResourceEstimates   = "estimates"
)

// Event is the payload broadcast to all connected clients.
type Event struct {
	Type   string `json:"type"`
	ID     string `json:"id"`
	Action string `json:"action"`
}

type client struct {
	conn *ws.Conn
	mu   sync.Mutex
	done chan struct{}
	once sync.Once
}

func (c *client) write(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// Hub maintains connected clients and broadcasts events.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*client]struct{}
	upgrader ws.Upgrader
	log      logger.Logger
}

func NewHub(log logger.Logger) *Hub {
	if log == nil {
		log = logger.GetDefault()
	}
	return &Hub{
		clients: make(map[*client]struct{}),
		upgrader: ws.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		log: log,
	}
}

func (h *Hub) register(c *client) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	return len(h.clients)
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.close()
}

// Clients reports how many connections are open.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends an event to every client, dropping clients whose write fails.
func (h *Hub) Broadcast(evt Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		h.log.Error("events: marshal failed", "error", err)
		return
	}
	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	for _, c := range clients {
		if err := c.write(ws.TextMessage, data); err != nil {
			h.log.Debug("events: dropping client", "error", err)
			h.unregister(c)
		}
	}
}

// Publish broadcasts a change to one record of a resource.
func (h *Hub) Publish(resource, action, id string) {
	h.Broadcast(Event{Type: resource, ID: id, Action: action})
}

// Handle upgrades the request and holds the connection until the peer leaves
// or the hub is closed.
func (h *Hub) Handle(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("events: upgrade failed", "error", err)
		return
	}
	cl := &client{conn: conn, done: make(chan struct{})}
	n := h.register(cl)
	h.log.Debug("events: client connected", "clients", n)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		h.unregister(cl)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go h.keepAlive(cl)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.unregister(cl)
	h.log.Debug("events: client disconnected")
}

func (h *Hub) keepAlive(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.mu.Lock()
			err := c.conn.WriteControl(ws.PingMessage, nil, time.Now().Add(writeWait))
			c.mu.Unlock()
			if err != nil {
				h.unregister(c)
				return
			}
		}
	}
}

// Close sends a close frame to every client and drops them.
func (h *Hub) Close(ctx context.Context) error {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()
	deadline := time.Now().Add(writeWait)
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}
	var failed int
	for _, c := range clients {
		c.mu.Lock()
		err := c.conn.WriteControl(ws.CloseMessage, ws.FormatCloseMessage(ws.CloseGoingAway, "server shutdown"), deadline)
		c.mu.Unlock()
		if err != nil {
			failed++
		}
		c.close()
	}
	if failed > 0 {
		return fmt.Errorf("events: %d clients did not receive close", failed)
	}
	return nil
}
