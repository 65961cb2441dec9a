package events

import "time"

// Event types dispatched by the match registry and the relay.
const (
	MatchCreated   = "match:created"
	MatchActivated = "match:activated"
	MatchFinished  = "match:finished"
	MatchDesync    = "match:desync"
	PeerJoined     = "peer:joined"
	PeerLeft       = "peer:left"
	CatalogUpdated = "catalog:updated"
)

// MatchCreatedEvent is the payload for match:created events.
type MatchCreatedEvent struct {
	MatchID   string `json:"matchId"`
	Player1ID string `json:"player1Id"`
	Player2ID string `json:"player2Id"`
}

// MatchActivatedEvent is the payload for match:activated events.
// Sent when both peers have joined the relay room.
type MatchActivatedEvent struct {
	MatchID string `json:"matchId"`
}

// MatchFinishedEvent is the payload for match:finished events.
// Sent once per match, however many peers report the result.
type MatchFinishedEvent struct {
	MatchID    string    `json:"matchId"`
	WinnerID   string    `json:"winnerId"`
	FinishedAt time.Time `json:"finishedAt"`
}

// MatchDesyncEvent is the payload for match:desync events.
// Sent when a peer reports that its state checksum differs from the other peer's.
type MatchDesyncEvent struct {
	MatchID  string `json:"matchId"`
	PlayerID string `json:"playerId"` // Peer that detected the mismatch
	Seq      int64  `json:"seq"`
	Local    string `json:"local"`
	Remote   string `json:"remote"`
}

// PeerEvent is the payload for peer:joined and peer:left events.
type PeerEvent struct {
	MatchID  string `json:"matchId"`
	PlayerID string `json:"playerId"`
	Peers    int    `json:"peers"` // Peers in the room after the change
}

// CatalogUpdatedEvent is the payload for catalog:updated events.
type CatalogUpdatedEvent struct {
	Cards  int    `json:"cards"`
	Source string `json:"source"` // "import" or "watcher"
}
