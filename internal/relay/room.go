package relay

import (
	"errors"
	"slices"
	"sync"
)

// MaxPeers is the number of players in a match room.
const MaxPeers = 2

var (
	ErrRoomFull         = errors.New("match room is full")
	ErrAlreadyConnected = errors.New("player is already connected")
)

// room is the relay state of one match.
type room struct {
	id string

	mu      sync.Mutex
	peers   map[string]*peer
	lastSeq map[string]int64 // Highest proposal number ordered, per player
	roomSeq int64            // Number of frames ordered
}

func newRoom(id string) *room {
	return &room{
		id:      id,
		peers:   make(map[string]*peer, MaxPeers),
		lastSeq: make(map[string]int64, MaxPeers),
	}
}

func (r *room) canJoinLocked(player string) error {
	if _, ok := r.peers[player]; ok {
		return ErrAlreadyConnected
	}
	if len(r.peers) >= MaxPeers {
		return ErrRoomFull
	}
	return nil
}

// canJoin reports whether player could join right now.
func (r *room) canJoin(player string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.canJoinLocked(player)
}

// join adds p and returns the peers already present.
func (r *room) join(p *peer) ([]*peer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.canJoinLocked(p.player); err != nil {
		return nil, err
	}
	others := r.othersLocked(p)
	r.peers[p.player] = p
	return others, nil
}

// leave removes p and returns the remaining peers.
func (r *room) leave(p *peer) []*peer {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.peers[p.player] == p {
		delete(r.peers, p.player)
	}
	return r.othersLocked(p)
}

func (r *room) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.peers)
}

func (r *room) players() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.peers))
	for id := range r.peers {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

func (r *room) othersLocked(p *peer) []*peer {
	others := make([]*peer, 0, len(r.peers))
	for id, other := range r.peers {
		if id != p.player {
			others = append(others, other)
		}
	}
	return others
}

// order stamps an action with the next room sequence number and queues it
// for every peer, the sender included. Proposals at or below the sender's
// last ordered number are duplicates and are dropped.
func (r *room) order(from *peer, msg Message) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if msg.Seq <= r.lastSeq[from.player] {
		return false, nil
	}
	r.roomSeq++
	msg.RoomSeq = r.roomSeq
	msg.Player = from.player

	data, err := encode(msg)
	if err != nil {
		r.roomSeq--
		return false, err
	}
	r.lastSeq[from.player] = msg.Seq
	for _, p := range r.peers {
		p.enqueue(data)
	}
	return true, nil
}

// broadcast stamps msg with the sender and queues it for every other peer.
func (r *room) broadcast(from *peer, msg Message) {
	msg.Player = from.player
	for _, other := range r.others(from) {
		other.sendMessage(msg)
	}
}

func (r *room) others(p *peer) []*peer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.othersLocked(p)
}
