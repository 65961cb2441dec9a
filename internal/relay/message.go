package relay

import (
	"encoding/json"
	"fmt"

	"github.com/ramonehamilton/spellduel/internal/game"
	"github.com/ramonehamilton/spellduel/internal/lockstep"
)

// MessageType identifies a relay message.
type MessageType string

const (
	// Sent by peers.
	TypeAction           MessageType = "action"
	TypeChecksum         MessageType = "checksum"
	TypeChecksumMismatch MessageType = "checksum_mismatch"
	TypeFinished         MessageType = "finished"

	// Sent by the relay.
	TypePeerJoined MessageType = "peer_joined"
	TypePeerLeft   MessageType = "peer_left"
	TypeError      MessageType = "error"
)

// Message is the JSON text frame exchanged over a match socket. The relay
// reads only the routing fields; Action is passed through untouched.
//
// Peers send actions numbered with their own Seq. The relay stamps each
// accepted action with the next RoomSeq and echoes it to every peer, the
// sender included; peers apply actions in RoomSeq order only.
type Message struct {
	Type     MessageType     `json:"type"`
	Seq      int64           `json:"seq,omitempty"`     // Sender's proposal number
	RoomSeq  int64           `json:"roomSeq,omitempty"` // Frame order, stamped by the relay
	Action   json.RawMessage `json:"action,omitempty"`
	Checksum string          `json:"checksum,omitempty"`
	Remote   string          `json:"remote,omitempty"` // checksum_mismatch: the checksum that was received
	Winner   string          `json:"winner,omitempty"`
	Player   string          `json:"player,omitempty"` // Originating or affected player, set by the relay
	Error    string          `json:"error,omitempty"`
}

// ProposalMessage wraps a local proposal as an action message.
func ProposalMessage(p lockstep.Proposal) (Message, error) {
	action, err := json.Marshal(p.Action)
	if err != nil {
		return Message{}, fmt.Errorf("failed to encode action: %w", err)
	}
	return Message{Type: TypeAction, Seq: p.ID, Action: action}, nil
}

// ChecksumMessage reports the local checksum after frame seq.
func ChecksumMessage(seq int64, checksum string) Message {
	return Message{Type: TypeChecksum, RoomSeq: seq, Checksum: checksum}
}

// Frame unwraps an ordered action message into a lockstep frame.
func (m Message) Frame() (lockstep.Frame, error) {
	if m.Type != TypeAction {
		return lockstep.Frame{}, fmt.Errorf("message type %q carries no frame", m.Type)
	}
	if m.RoomSeq <= 0 {
		return lockstep.Frame{}, fmt.Errorf("action has not been ordered by the relay")
	}
	var env game.ActionEnvelope
	if err := json.Unmarshal(m.Action, &env); err != nil {
		return lockstep.Frame{}, fmt.Errorf("failed to decode action: %w", err)
	}
	return lockstep.Frame{Seq: m.RoomSeq, Player: m.Player, Action: env}, nil
}
