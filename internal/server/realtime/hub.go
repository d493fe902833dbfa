package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/docsnap/docsnap/internal/logging"
)

// Hub tracks connected WebSocket clients and broadcasts change events to all
// of them. Register/unregister/broadcast are serialized through channels so
// only the Run goroutine touches the client set for writes.
type Hub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan ChangeEvent
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	mutex      sync.RWMutex
	logger     logging.Logger
}

// NewHub creates an idle hub; call Run to start dispatching.
func NewHub(logger logging.Logger) *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan ChangeEvent, 16),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		logger:     logger,
	}
}

// Run dispatches registrations and broadcasts until ctx is cancelled, then
// closes every remaining client connection.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for client := range h.clients {
				client.Close()
				delete(h.clients, client)
			}
			h.mutex.Unlock()
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mutex.Unlock()
			h.logger.Info(ctx, "subscriber connected", "total", total)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			total := len(h.clients)
			h.mutex.Unlock()
			h.logger.Info(ctx, "subscriber disconnected", "total", total)

		case event := <-h.broadcast:
			payload, err := json.Marshal(event)
			if err != nil {
				h.logger.Error(ctx, "marshal change event", "err", err)
				continue
			}
			h.mutex.Lock()
			for client := range h.clients {
				if err := client.WriteMessage(websocket.TextMessage, payload); err != nil {
					h.logger.Warn(ctx, "dropping slow subscriber", "err", err)
					delete(h.clients, client)
					client.Close()
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Register adds a client connection to the hub.
func (h *Hub) Register(client *websocket.Conn) {
	h.register <- client
}

// Unregister removes a client connection and closes it.
func (h *Hub) Unregister(client *websocket.Conn) {
	h.unregister <- client
}

// Broadcast queues a change event for delivery to every subscriber.
func (h *Hub) Broadcast(event ChangeEvent) {
	h.broadcast <- event
}

// ClientCount reports how many subscribers are currently attached.
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}
