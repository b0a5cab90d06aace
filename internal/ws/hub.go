// Package ws provides the WebSocket hub streaming live usage events to dashboards.
package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Event is the envelope for all WebSocket messages.
type Event struct {
	Type         string    `json:"type"`
	Owner        string    `json:"owner,omitempty"`
	TeamID       string    `json:"team_id,omitempty"`
	Model        string    `json:"model,omitempty"`
	EnergyJoules float64   `json:"energy_joules,omitempty"`
	CarbonKg     float64   `json:"carbon_kg,omitempty"`
	CostUSD      float64   `json:"cost_usd,omitempty"`
	Message      string    `json:"message,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Event type constants.
const (
	TypeRunTracked  = "run_tracked"
	TypeRunAnalyzed = "run_analyzed"
	TypeBudgetAlert = "budget_alert"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub manages all connected WebSocket clients.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*client]struct{}
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*client]struct{}),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *client, 8),
		unregister: make(chan *client, 8),
	}
}

// Run starts the hub event loop. Must be run in a goroutine.
func (h *Hub) Run(ctx interface{ Done() <-chan struct{} }) {
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			h.mu.Unlock()
		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
		case msg := <-h.broadcast:
			h.mu.RLock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Drop slow clients.
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast sends an Event to all connected clients.
func (h *Hub) Broadcast(ev Event) {
	ev.Timestamp = time.Now()
	b, err := json.Marshal(ev)
	if err != nil {
		return
	}
	select {
	case h.broadcast <- b:
	default:
	}
}

// BroadcastRun publishes one persisted run's figures to all dashboards.
func (h *Hub) BroadcastRun(eventType, owner, teamID, model string, energy, carbon, cost float64) {
	h.Broadcast(Event{
		Type:         eventType,
		Owner:        owner,
		TeamID:       teamID,
		Model:        model,
		EnergyJoules: energy,
		CarbonKg:     carbon,
		CostUSD:      cost,
	})
}

// ServeWS handles the WebSocket upgrade and starts pump goroutines.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws.ServeWS: upgrade: %v", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, 64)}
	h.register <- c
	go h.writePump(c)
	go h.readPump(c)
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	})
	for {
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
	}
}

// ClientCount returns the number of connected WebSocket clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
