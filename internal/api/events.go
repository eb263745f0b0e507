package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

type eventMessage struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// eventHub fans order events out to connected console clients. Slow or dead
// connections are dropped on write failure rather than buffered.
type eventHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	logger  *slog.Logger
}

func newEventHub(logger *slog.Logger) *eventHub {
	return &eventHub{
		clients: make(map[*websocket.Conn]bool),
		logger:  logger,
	}
}

func (hub *eventHub) add(conn *websocket.Conn) {
	hub.mu.Lock()
	hub.clients[conn] = true
	hub.mu.Unlock()
}

func (hub *eventHub) remove(conn *websocket.Conn) {
	hub.mu.Lock()
	delete(hub.clients, conn)
	hub.mu.Unlock()
	conn.Close()
}

func (hub *eventHub) broadcast(event string, payload interface{}) {
	data, err := json.Marshal(eventMessage{Event: event, Payload: payload})
	if err != nil {
		hub.logger.Error("event marshal failed", "event", event, "error", err)
		return
	}

	hub.mu.Lock()
	defer hub.mu.Unlock()
	for conn := range hub.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			hub.logger.Warn("dropping event client", "error", err)
			delete(hub.clients, conn)
			conn.Close()
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS is enforced on the HTTP layer; the upgrade accepts any origin.
	CheckOrigin: func(*http.Request) bool { return true },
}

// orderEvents upgrades the request and keeps the connection registered
// until the client goes away. Clients only listen; inbound messages are
// read and discarded to service pings.
func (h *Handler) orderEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	h.hub.add(conn)
	defer h.hub.remove(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
