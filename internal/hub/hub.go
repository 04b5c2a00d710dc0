// Package hub fans live sensor updates out to dashboard WebSocket clients.
package hub

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"ipal-monitor/internal/metrics"
)

// Event names sent to dashboards.
const (
	EventConnectionResponse = "connection_response"
	EventSensorUpdate       = "sensor_update"
	EventDeviceStatus       = "device_status"
)

const broadcastBuffer = 64

// Message is the envelope written to every client.
type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub maintains the set of active clients and broadcasts messages.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{} // closed when Run returns
	mu         sync.RWMutex

	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewHub creates a hub. An empty allowedOrigins accepts every origin.
func NewHub(allowedOrigins []string, logger zerolog.Logger) *Hub {
	h := &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger.With().Str("component", "hub").Logger(),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}

// Run processes registrations and broadcasts until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			metrics.WebSocketClients.Set(0)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			metrics.WebSocketClients.Set(float64(len(h.clients)))
			h.mu.Unlock()
			h.logger.Debug().Str("remote", client.remoteAddr).Msg("client connected")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				metrics.WebSocketClients.Set(float64(len(h.clients)))
				h.logger.Debug().Str("remote", client.remoteAddr).Msg("client disconnected")
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow client: drop it rather than block everyone else.
					delete(h.clients, client)
					close(client.send)
					metrics.WebSocketDropped.Inc()
					h.logger.Warn().Str("remote", client.remoteAddr).Msg("send buffer full, client dropped")
				}
			}
			metrics.WebSocketClients.Set(float64(len(h.clients)))
			h.mu.Unlock()
		}
	}
}

// Broadcast queues an event for every connected client. It never blocks;
// when the queue is full the event is dropped.
func (h *Hub) Broadcast(event string, data interface{}) {
	payload, err := encode(event, data)
	if err != nil {
		h.logger.Error().Err(err).Str("event", event).Msg("failed to encode broadcast")
		return
	}

	select {
	case h.broadcast <- payload:
	default:
		h.logger.Warn().Str("event", event).Msg("broadcast queue full, event dropped")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS upgrades the request and attaches the connection to the hub.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an error response.
		h.logger.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("websocket upgrade failed")
		return
	}

	client := newClient(h, conn, r.RemoteAddr)

	greeting, err := encode(EventConnectionResponse, map[string]string{"status": "connected"})
	if err == nil {
		client.send <- greeting
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func encode(event string, data interface{}) ([]byte, error) {
	return json.Marshal(&Message{Event: event, Data: data})
}
