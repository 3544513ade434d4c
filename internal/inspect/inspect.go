// Package inspect streams live bus traffic to debugging clients over
// WebSocket. Wire it into a bus with Tap:
//
//	hub := inspect.NewHub(logger)
//	b := bus.New(bus.WithTap(hub.Tap))
//	router.Get("/inspect", hub.HandleWebSocket)
//
// Each published message becomes one JSON frame carrying the channel
// name, a rendering of the payload, and the listener count at publish
// time. The hub never feeds anything back into the bus.
package inspect

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/fragsync-dev/fragsync/pkg/bus"
)

// Frame is one observed bus message.
type Frame struct {
	Channel   string    `json:"channel"`
	Payload   any       `json:"payload"`
	Listeners int       `json:"listeners"`
	At        time.Time `json:"at"`
}

// Hub manages inspector WebSocket connections.
type Hub struct {
	bus     *bus.Bus
	clients map[*websocket.Conn]bool
	mu      sync.RWMutex

	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHub creates an inspector hub. bus may be nil; the listener count
// in frames is then omitted.
func NewHub(b *bus.Bus, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		bus:     b,
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // debugging endpoint, local use
			},
		},
		logger: logger.With("component", "inspect"),
	}
}

// Tap observes one published message. Pass this method to
// bus.WithTap.
func (h *Hub) Tap(ch bus.Channel, payload any) {
	h.mu.RLock()
	empty := len(h.clients) == 0
	h.mu.RUnlock()
	if empty {
		return
	}

	listeners := 0
	if h.bus != nil {
		listeners = h.bus.Listeners()[ch]
	}
	h.broadcast(Frame{
		Channel:   string(ch),
		Payload:   renderPayload(payload),
		Listeners: listeners,
		At:        time.Now(),
	})
}

// HandleWebSocket upgrades the request and holds the connection open
// until the client disconnects.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := h.upgrader.Upgrade(w, req, nil)
	if err != nil {
		h.logger.Warn("inspector upgrade failed", "error", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()
	h.logger.Debug("inspector connected", "remote", req.RemoteAddr)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

// broadcast sends a frame to all connected clients.
func (h *Hub) broadcast(frame Frame) {
	data, err := json.Marshal(frame)
	if err != nil {
		return
	}

	h.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
			h.mu.Lock()
			delete(h.clients, client)
			h.mu.Unlock()
			client.Close()
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close closes all client connections.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		client.Close()
		delete(h.clients, client)
	}
}

// renderPayload makes a payload JSON-safe. Payload structs marshal
// as-is; anything unmarshalable degrades to its Go string rendering.
func renderPayload(payload any) any {
	if payload == nil {
		return nil
	}
	if _, err := json.Marshal(payload); err != nil {
		return fmt.Sprintf("%+v", payload)
	}
	return payload
}
