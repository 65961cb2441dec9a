package models

import "time"

// Deck is a player's saved deck.
type Deck struct {
	ID        string     `json:"id"`
	OwnerID   string     `json:"owner_id"`
	Name      string     `json:"name"`
	Cards     []DeckCard `json:"cards"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CardCount returns the total number of cards in the deck.
func (d *Deck) CardCount() int {
	total := 0
	for _, c := range d.Cards {
		total += c.Quantity
	}
	return total
}

// DeckCard is one catalog card and its copy count in a deck.
type DeckCard struct {
	CardID   int `json:"card_id"`
	Quantity int `json:"quantity"`
}

// MatchStatus is the lifecycle of a match record.
type MatchStatus string

const (
	MatchWaiting  MatchStatus = "waiting"
	MatchActive   MatchStatus = "active"
	MatchFinished MatchStatus = "finished"
)

// Match records who played which deck and who won. Actions are not stored.
type Match struct {
	ID            string      `json:"id"`
	Player1ID     string      `json:"player1_id"`
	Player2ID     string      `json:"player2_id"`
	Player1DeckID string      `json:"player1_deck_id"`
	Player2DeckID string      `json:"player2_deck_id"`
	Status        MatchStatus `json:"status"`
	WinnerID      *string     `json:"winner_id,omitempty"` // Nullable until finished
	CreatedAt     time.Time   `json:"created_at"`
	FinishedAt    *time.Time  `json:"finished_at,omitempty"`

	// Pools is the encoded card pools of both players, frozen at creation.
	Pools []byte `json:"-"`
}
