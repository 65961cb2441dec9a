// Package websocket serves the lobby feed: server events such as match
// creation and results pushed to every subscribed client.
package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Feed clients only send control frames.
	maxMessageSize = 512
)

// Event is one feed message.
type Event struct {
	Type string    `json:"type"`
	Data any       `json:"data"`
	At   time.Time `json:"at,omitzero"`
}

type outbound struct {
	eventType string
	data      []byte
}

// Client is one feed subscriber.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	// Event types to deliver; empty means all.
	types map[string]bool
}

func (c *Client) wants(eventType string) bool {
	return len(c.types) == 0 || c.types[eventType]
}

// Hub maintains the set of feed clients and broadcasts events to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan outbound
	register   chan *Client
	unregister chan *Client

	// Signal to stop the hub.
	done     chan struct{}
	stopOnce sync.Once
	stopped  bool

	upgrader websocket.Upgrader

	mu sync.RWMutex
}

// NewHub creates a hub. checkOrigin may be nil to allow every origin.
func NewHub(checkOrigin func(*http.Request) bool) *Hub {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan outbound),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

// Run starts the hub's main loop.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			h.stopped = true
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			log.Println("[Feed] Hub stopped")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			n := len(h.clients)
			h.mu.Unlock()
			log.Printf("[Feed] Client connected. Total clients: %d", n)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			log.Printf("[Feed] Client disconnected. Total clients: %d", n)

		case msg := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if !client.wants(msg.eventType) {
					continue
				}
				select {
				case client.send <- msg.data:
				default:
					// Too slow to keep up.
					delete(h.clients, client)
					close(client.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastEvent queues an event for every client subscribed to its type.
// Returns false if the hub has been stopped.
func (h *Hub) BroadcastEvent(event Event) bool {
	if h.IsStopped() {
		return false
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[Feed] Error marshaling event %s: %v", event.Type, err)
		return false
	}

	select {
	case h.broadcast <- outbound{eventType: event.Type, data: data}:
		return true
	case <-h.done:
		return false
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stop disconnects all clients. Safe to call multiple times.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)
	})
}

// IsStopped returns true if the hub has been stopped.
func (h *Hub) IsStopped() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.stopped
}

// ServeWs subscribes a client. The optional "types" query parameter is a
// comma separated list of event types to receive.
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	if h.IsStopped() {
		http.Error(w, "event feed is not running", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Feed] Upgrade error: %v", err)
		return
	}

	client := &Client{
		hub:   h,
		conn:  conn,
		send:  make(chan []byte, 256),
		types: parseTypes(r.URL.Query().Get("types")),
	}

	select {
	case h.register <- client:
		go client.writePump()
		go client.readPump()
	case <-h.done:
		if err := conn.Close(); err != nil {
			log.Printf("[Feed] Close error: %v", err)
		}
	}
}

func parseTypes(raw string) map[string]bool {
	types := make(map[string]bool)
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			types[t] = true
		}
	}
	return types
}

// readPump discards client input and detects disconnects.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		if err := c.conn.Close(); err != nil {
			log.Printf("[Feed] Close error: %v", err)
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("[Feed] SetReadDeadline error: %v", err)
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[Feed] Read error: %v", err)
			}
			return
		}
	}
}

// writePump writes one event per text frame, plus keepalive pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if err := c.conn.Close(); err != nil {
			log.Printf("[Feed] Close error: %v", err)
		}
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Printf("[Feed] SetWriteDeadline error: %v", err)
				return
			}
			if !ok {
				// The hub closed the channel.
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[Feed] Write error: %v", err)
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Printf("[Feed] SetWriteDeadline error: %v", err)
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
