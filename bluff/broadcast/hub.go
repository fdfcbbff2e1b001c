package broadcast

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 10 * time.Second

// Client is one websocket subscriber of a session code.
type Client struct {
	Code string
	Conn *websocket.Conn

	mu sync.Mutex
}

// Write sends a text frame. Writes to one connection are serialised.
func (c *Client) Write(msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.Conn.WriteMessage(websocket.TextMessage, msg)
}

// Hub keeps the websocket subscribers of this process, grouped by code.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
	logger  *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{clients: make(map[string]map[*Client]struct{}), logger: logger}
}

// Subscribe registers conn for the events of code.
func (h *Hub) Subscribe(code string, conn *websocket.Conn) *Client {
	c := &Client{Code: code, Conn: conn}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[code] == nil {
		h.clients[code] = make(map[*Client]struct{})
	}
	h.clients[code][c] = struct{}{}
	return c
}

// Unsubscribe removes c. Removing an unknown client is a no-op.
func (h *Hub) Unsubscribe(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.clients[c.Code]
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.Code)
	}
}

// Subscribers returns the number of clients listening on code.
func (h *Hub) Subscribers(code string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[code])
}

// Deliver writes an encoded frame to every subscriber of code. A failing client is dropped from the hub;
// its read loop closes the connection.
func (h *Hub) Deliver(code string, msg []byte) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients[code]))
	for c := range h.clients[code] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if err := c.Write(msg); err != nil {
			h.logger.Warn("Failed to deliver event", zap.String("code", code), zap.Error(err))
			h.Unsubscribe(c)
		}
	}
}

// Publish delivers ev to the subscribers of this process only.
func (h *Hub) Publish(_ context.Context, ev Event) error {
	msg, err := Encode(ev)
	if err != nil {
		return err
	}
	h.Deliver(ev.Code, msg)
	return nil
}
