// Package relay forwards lockstep frames between the two peers of a match.
// It never interprets actions: each peer runs its own copy of the engine and
// the relay only orders, deduplicates, and rate-limits their traffic.
package relay

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/ramonehamilton/spellduel/internal/events"
	"github.com/ramonehamilton/spellduel/internal/metrics"
)

// ErrClosed is returned once the relay has been shut down.
var ErrClosed = errors.New("relay is shut down")

// Config configures a Relay.
type Config struct {
	// Frames accepted per second per connection, and the burst above that rate.
	MessagesPerSecond float64
	Burst             int

	// MaxMessageBytes limits inbound frames. Default: 8192
	MaxMessageBytes int64

	// Admit authorizes a player for a match before the upgrade.
	Admit func(ctx context.Context, matchID, playerID string) error

	// OnJoin runs after a peer joins, with the room size after the join.
	OnJoin func(ctx context.Context, matchID string, peers int)

	// OnFinish records a result reported by a peer.
	OnFinish func(ctx context.Context, matchID, winnerID string) error

	// CheckOrigin defaults to allowing every origin.
	CheckOrigin func(r *http.Request) bool

	Dispatcher *events.EventDispatcher
	Metrics    *metrics.RelayMetrics
}

// Relay holds the rooms of all live matches.
type Relay struct {
	cfg      Config
	upgrader websocket.Upgrader

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	rooms  map[string]*room
	closed bool
}

// New creates a relay.
func New(cfg Config) *Relay {
	if cfg.MessagesPerSecond <= 0 {
		cfg.MessagesPerSecond = 20
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 40
	}
	if cfg.MaxMessageBytes <= 0 {
		cfg.MaxMessageBytes = 8192
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewRelayMetrics()
	}
	checkOrigin := cfg.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Relay{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		ctx:    ctx,
		cancel: cancel,
		rooms:  make(map[string]*room),
	}
}

func (rl *Relay) metrics() *metrics.RelayMetrics {
	return rl.cfg.Metrics
}

// ServeMatch upgrades a request to a match socket. The player is named by
// the "player" query parameter.
func (rl *Relay) ServeMatch(w http.ResponseWriter, r *http.Request, matchID string) {
	player := r.URL.Query().Get("player")
	if matchID == "" || player == "" {
		http.Error(w, "match and player are required", http.StatusBadRequest)
		return
	}

	if rl.cfg.Admit != nil {
		if err := rl.cfg.Admit(r.Context(), matchID, player); err != nil {
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}
	}

	if err := rl.canJoin(matchID, player); err != nil {
		status := http.StatusConflict
		if errors.Is(err, ErrClosed) {
			status = http.StatusServiceUnavailable
		}
		http.Error(w, err.Error(), status)
		return
	}

	conn, err := rl.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Relay] Upgrade error: %v", err)
		return
	}

	p := &peer{
		relay:   rl,
		player:  player,
		conn:    conn,
		limiter: rate.NewLimiter(rate.Limit(rl.cfg.MessagesPerSecond), rl.cfg.Burst),
		send:    make(chan []byte, sendBuffer),
	}

	others, err := rl.join(matchID, p)
	if err != nil {
		// Lost a race with another connection for the same seat.
		msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error())
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}
	rl.metrics().OpenConnections.Add(1)

	go p.writePump()
	go p.readPump()

	for _, other := range others {
		other.sendMessage(Message{Type: TypePeerJoined, Player: player})
		p.sendMessage(Message{Type: TypePeerJoined, Player: other.player})
	}

	peers := len(others) + 1
	log.Printf("[Relay] Match %s: %s joined (%d/%d)", matchID, player, peers, MaxPeers)
	rl.dispatch(events.PeerJoined, events.PeerEvent{MatchID: matchID, PlayerID: player, Peers: peers})
	if rl.cfg.OnJoin != nil {
		rl.cfg.OnJoin(rl.ctx, matchID, peers)
	}
}

// canJoin reports whether player could take a seat in matchID right now.
func (rl *Relay) canJoin(matchID, player string) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.closed {
		return ErrClosed
	}
	if rm, ok := rl.rooms[matchID]; ok {
		return rm.canJoin(player)
	}
	return nil
}

// join seats p in the room of matchID, creating the room if needed, and
// returns the peers already present.
func (rl *Relay) join(matchID string, p *peer) ([]*peer, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.closed {
		return nil, ErrClosed
	}
	rm, ok := rl.rooms[matchID]
	if !ok {
		rm = newRoom(matchID)
	}
	p.room = rm
	others, err := rm.join(p)
	if err != nil {
		return nil, err
	}
	rl.rooms[matchID] = rm
	return others, nil
}

// release drops a room once its last peer is gone.
func (rl *Relay) release(rm *room) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if rm.size() == 0 && rl.rooms[rm.id] == rm {
		delete(rl.rooms, rm.id)
	}
}

func (rl *Relay) leave(p *peer) {
	others := p.room.leave(p)
	rl.metrics().OpenConnections.Add(-1)
	for _, other := range others {
		other.sendMessage(Message{Type: TypePeerLeft, Player: p.player})
	}
	rl.release(p.room)

	log.Printf("[Relay] Match %s: %s left (%d/%d)", p.room.id, p.player, len(others), MaxPeers)
	rl.dispatch(events.PeerLeft, events.PeerEvent{MatchID: p.room.id, PlayerID: p.player, Peers: len(others)})
}

// handle routes one message from p.
func (rl *Relay) handle(p *peer, msg Message) {
	switch msg.Type {
	case TypeAction:
		if msg.Seq <= 0 {
			p.sendError("action requires a positive seq")
			return
		}
		start := time.Now()
		ordered, err := p.room.order(p, msg)
		if err != nil {
			log.Printf("[Relay] Match %s: forward error: %v", p.room.id, err)
			return
		}
		if !ordered {
			rl.metrics().DuplicatesDropped.Add(1)
			return
		}
		rl.metrics().FramesRelayed.Add(1)
		rl.metrics().ForwardLatency.Record(time.Since(start))

	case TypeChecksumMismatch:
		log.Printf("[Relay] Match %s: %s reports desync at frame %d (local %s, remote %s)",
			p.room.id, p.player, msg.RoomSeq, msg.Checksum, msg.Remote)
		rl.dispatch(events.MatchDesync, events.MatchDesyncEvent{
			MatchID:  p.room.id,
			PlayerID: p.player,
			Seq:      msg.RoomSeq,
			Local:    msg.Checksum,
			Remote:   msg.Remote,
		})
		p.room.broadcast(p, msg)

	case TypeChecksum:
		if msg.RoomSeq <= 0 || msg.Checksum == "" {
			p.sendError("checksum requires a roomSeq and a checksum")
			return
		}
		p.room.broadcast(p, msg)

	case TypeFinished:
		if msg.Winner == "" {
			p.sendError("finished requires a winner")
			return
		}
		if rl.cfg.OnFinish != nil {
			if err := rl.cfg.OnFinish(rl.ctx, p.room.id, msg.Winner); err != nil {
				log.Printf("[Relay] Match %s: failed to record result: %v", p.room.id, err)
				p.sendError(err.Error())
			}
		}

	default:
		p.sendError("unknown message type")
	}
}

func (rl *Relay) dispatch(eventType string, data any) {
	if rl.cfg.Dispatcher == nil {
		return
	}
	rl.cfg.Dispatcher.Dispatch(events.NewTypedEvent(eventType, data, rl.ctx))
}

// RoomCount returns the number of rooms with at least one peer.
func (rl *Relay) RoomCount() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.rooms)
}

// Players returns the connected players of a match, sorted.
func (rl *Relay) Players(matchID string) []string {
	rl.mu.Lock()
	rm, ok := rl.rooms[matchID]
	rl.mu.Unlock()
	if !ok {
		return nil
	}
	return rm.players()
}

// Close disconnects every peer and refuses new connections.
// Safe to call multiple times.
func (rl *Relay) Close() {
	rl.mu.Lock()
	if rl.closed {
		rl.mu.Unlock()
		return
	}
	rl.closed = true
	rooms := make([]*room, 0, len(rl.rooms))
	for _, rm := range rl.rooms {
		rooms = append(rooms, rm)
	}
	rl.mu.Unlock()

	rl.cancel()
	for _, rm := range rooms {
		rm.mu.Lock()
		for _, p := range rm.peers {
			p.shutdown()
		}
		rm.mu.Unlock()
	}
}
