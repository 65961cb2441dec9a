package relay

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Outbound messages buffered per peer.
	sendBuffer = 64
)

// errRateLimited is the error sent for a message dropped by the rate limiter.
const errRateLimited = "rate_limited"

// peer is one player's connection to a match room.
type peer struct {
	relay   *Relay
	room    *room
	player  string
	conn    *websocket.Conn
	limiter *rate.Limiter

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func encode(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// enqueue queues data for the write pump. A peer that cannot keep up is
// disconnected.
func (p *peer) enqueue(data []byte) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return false
	}
	select {
	case p.send <- data:
		return true
	default:
		log.Printf("[Relay] Match %s: send buffer full for %s, disconnecting", p.room.id, p.player)
		p.closed = true
		close(p.send)
		return false
	}
}

// sendMessage queues a message for this peer only.
func (p *peer) sendMessage(msg Message) {
	data, err := encode(msg)
	if err != nil {
		log.Printf("[Relay] Error encoding %s message: %v", msg.Type, err)
		return
	}
	p.enqueue(data)
}

func (p *peer) sendError(reason string) {
	p.sendMessage(Message{Type: TypeError, Error: reason})
}

// sendDropped tells the peer that its message seq was not ordered. The
// sender has not applied it, so it may resend the same seq later.
func (p *peer) sendDropped(reason string, seq int64) {
	p.sendMessage(Message{Type: TypeError, Error: reason, Seq: seq})
}

// shutdown closes the send channel so the write pump sends a close frame.
func (p *peer) shutdown() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.send)
	}
}

// readPump handles messages from the connection until it fails.
func (p *peer) readPump() {
	defer func() {
		p.relay.leave(p)
		p.shutdown()
		if err := p.conn.Close(); err != nil {
			log.Printf("[Relay] Close error: %v", err)
		}
	}()

	p.conn.SetReadLimit(p.relay.cfg.MaxMessageBytes)
	if err := p.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("[Relay] SetReadDeadline error: %v", err)
		return
	}
	p.conn.SetPongHandler(func(string) error {
		return p.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("[Relay] Match %s: read error from %s: %v", p.room.id, p.player, err)
			}
			return
		}

		var msg Message
		decodeErr := json.Unmarshal(data, &msg)

		if !p.limiter.Allow() {
			p.relay.metrics().RateLimited.Add(1)
			p.sendDropped(errRateLimited, msg.Seq)
			continue
		}
		if decodeErr != nil {
			p.sendError("malformed message")
			continue
		}
		p.relay.handle(p, msg)
	}
}

// writePump writes queued messages and keepalive pings. Each message is its
// own text frame.
func (p *peer) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if err := p.conn.Close(); err != nil {
			log.Printf("[Relay] Close error: %v", err)
		}
	}()

	for {
		select {
		case message, ok := <-p.send:
			if err := p.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Printf("[Relay] SetWriteDeadline error: %v", err)
				return
			}
			if !ok {
				_ = p.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := p.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[Relay] Write error: %v", err)
				return
			}

		case <-ticker.C:
			if err := p.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Printf("[Relay] SetWriteDeadline error: %v", err)
				return
			}
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
