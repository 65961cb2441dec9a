// Package lockstep wraps the game engine for one peer of a match. Peers
// propose actions, the relay puts every proposal into one order, and each
// peer applies the ordered frames, its own included, then compares state
// checksums with the other peer.
package lockstep

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ramonehamilton/spellduel/internal/game"
)

// checksumHistory is how many recent frame checksums a replica keeps for
// comparison with the other peer.
const checksumHistory = 256

var (
	// ErrDuplicateFrame is returned for a frame that was already applied.
	ErrDuplicateFrame = errors.New("duplicate frame")

	// ErrOutOfOrder is returned when a frame skips ahead of the local
	// sequence, or a checksum names a frame not applied yet.
	ErrOutOfOrder = errors.New("frame out of order")

	// ErrUnknownFrame is returned when a checksum names a frame too old to
	// compare.
	ErrUnknownFrame = errors.New("unknown frame")
)

// Proposal is a local action that passed validation and waits to be ordered.
// ID numbers the proposals of one peer; it is not a frame sequence number.
type Proposal struct {
	ID     int64               `json:"id"`
	Action game.ActionEnvelope `json:"action"`
}

// Ordered returns the frame the relay made of p.
func (p Proposal) Ordered(seq int64, player string) Frame {
	return Frame{Seq: seq, Player: player, Action: p.Action}
}

// Frame is one ordered action. Seq is assigned by the relay and is the same
// on both peers; Player is the peer that proposed the action. Checksum is the
// state checksum after applying the frame, when known.
type Frame struct {
	Seq      int64               `json:"seq"`
	Player   string              `json:"player,omitempty"`
	Action   game.ActionEnvelope `json:"action"`
	Checksum string              `json:"checksum,omitempty"`
}

// DesyncError reports that both peers applied frame Seq but disagree on the
// resulting state.
type DesyncError struct {
	Seq    int64
	Local  string
	Remote string
}

func (e *DesyncError) Error() string {
	return fmt.Sprintf("desync at seq %d: local %s, remote %s", e.Seq, e.Local, e.Remote)
}

// Config configures a Replica.
type Config struct {
	Setup game.Setup
	Seed  int64

	// Logger receives rejected actions and desyncs. Defaults to slog.Default().
	Logger *slog.Logger
}

// Replica is one peer's copy of a match.
type Replica struct {
	mu       sync.Mutex
	state    game.GameState
	seq      int64
	proposed int64
	sums     [checksumHistory]string
	logger   *slog.Logger
}

// NewReplica initializes the match state from the shared setup and seed.
func NewReplica(cfg Config) *Replica {
	return FromState(game.InitializeGame(cfg.Setup, game.NewRNG(cfg.Seed)), cfg.Logger)
}

// FromState wraps an existing state, e.g. one restored from a snapshot.
func FromState(state game.GameState, logger *slog.Logger) *Replica {
	if logger == nil {
		logger = slog.Default()
	}
	return &Replica{state: state, logger: logger}
}

// Propose checks a local action against the current state without applying
// it. A rejected action returns the rejection and must not be sent. An
// accepted one is applied only when it comes back as a Frame, so it may
// still be rejected then if the other peer's action was ordered first.
func (r *Replica) Propose(action game.Action) (Proposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := game.Reduce(r.state, action); err != nil {
		r.logger.Debug("local action rejected", "seq", r.seq, "error", err)
		return Proposal{}, err
	}
	r.proposed++
	return Proposal{ID: r.proposed, Action: game.Envelope(action)}, nil
}

// Receive applies the next ordered frame and returns the local checksum of
// the resulting state. Frames must arrive exactly once and in order. A
// rejected action leaves the state as it was on both peers, so it still
// takes its sequence number. When f carries a checksum it is compared, and
// a mismatch returns a *DesyncError after advancing.
func (r *Replica) Receive(f Frame) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case f.Seq <= r.seq:
		return "", fmt.Errorf("%w: seq %d, applied %d", ErrDuplicateFrame, f.Seq, r.seq)
	case f.Seq != r.seq+1:
		return "", fmt.Errorf("%w: seq %d, expected %d", ErrOutOfOrder, f.Seq, r.seq+1)
	}

	action, err := f.Action.Action()
	if err != nil {
		return "", fmt.Errorf("failed to decode frame %d: %w", f.Seq, err)
	}

	next, rejectErr := game.Reduce(r.state, action)
	if rejectErr != nil {
		r.logger.Warn("ordered action rejected", "seq", f.Seq, "player", f.Player, "error", rejectErr)
	}
	local, err := game.Checksum(next)
	if err != nil {
		return "", err
	}
	r.seq = f.Seq
	r.state = next
	r.sums[f.Seq%checksumHistory] = local

	if f.Checksum != "" && f.Checksum != local {
		return local, r.desync(f.Seq, local, f.Checksum)
	}
	return local, nil
}

// Verify compares the other peer's checksum for frame seq with the local one.
// It returns ErrOutOfOrder while seq is not applied locally, so the caller can
// hold the checksum until it is.
func (r *Replica) Verify(seq int64, remote string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	local, err := r.checksumAtLocked(seq)
	if err != nil {
		return err
	}
	if local != remote {
		return r.desync(seq, local, remote)
	}
	return nil
}

// ChecksumAt returns the local checksum after frame seq.
func (r *Replica) ChecksumAt(seq int64) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.checksumAtLocked(seq)
}

func (r *Replica) checksumAtLocked(seq int64) (string, error) {
	switch {
	case seq > r.seq:
		return "", fmt.Errorf("%w: seq %d, applied %d", ErrOutOfOrder, seq, r.seq)
	case seq <= 0 || seq <= r.seq-checksumHistory:
		return "", fmt.Errorf("%w: seq %d", ErrUnknownFrame, seq)
	}
	return r.sums[seq%checksumHistory], nil
}

func (r *Replica) desync(seq int64, local, remote string) error {
	r.logger.Error("state diverged", "seq", seq, "local", local, "remote", remote)
	return &DesyncError{Seq: seq, Local: local, Remote: remote}
}

// State returns the current state. The value is safe to keep; later actions
// never modify it.
func (r *Replica) State() game.GameState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Seq returns the sequence number of the last applied frame.
func (r *Replica) Seq() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seq
}

// Checksum returns the checksum of the current state.
func (r *Replica) Checksum() (string, error) {
	return game.Checksum(r.State())
}
