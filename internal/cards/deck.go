package cards

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/ramonehamilton/spellduel/internal/game"
)

// Deck construction rules.
const (
	DeckSize  = 30
	MaxCopies = 4
)

var (
	ErrDeckSize        = errors.New("deck must contain exactly 30 cards")
	ErrTooManyCopies   = errors.New("too many copies of a card")
	ErrInvalidQuantity = errors.New("card quantity must be positive")
	ErrUnknownCard     = errors.New("card is not in the catalog")
	ErrManaSpark       = errors.New("mana spark cannot be put in a deck")
)

// DeckEntry is one card and its copy count in a deck list.
type DeckEntry struct {
	CardID   int `json:"card_id"`
	Quantity int `json:"quantity"`
}

// counts merges repeated entries of the same card.
func counts(entries []DeckEntry) (map[int]int, error) {
	out := make(map[int]int, len(entries))
	for _, e := range entries {
		if e.Quantity <= 0 {
			return nil, fmt.Errorf("card %d: %w", e.CardID, ErrInvalidQuantity)
		}
		out[e.CardID] += e.Quantity
	}
	return out, nil
}

// ValidateDeck checks a deck list against the construction rules and the catalog.
func ValidateDeck(entries []DeckEntry, catalog *Catalog) error {
	byCard, err := counts(entries)
	if err != nil {
		return err
	}

	total := 0
	for _, id := range slices.Sorted(maps.Keys(byCard)) {
		n := byCard[id]
		if id == game.ManaSparkCardID {
			return ErrManaSpark
		}
		if _, ok := catalog.Get(id); !ok {
			return fmt.Errorf("card %d: %w", id, ErrUnknownCard)
		}
		if n > MaxCopies {
			return fmt.Errorf("card %d has %d copies, max %d: %w", id, n, MaxCopies, ErrTooManyCopies)
		}
		total += n
	}
	if total != DeckSize {
		return fmt.Errorf("deck has %d cards: %w", total, ErrDeckSize)
	}
	return nil
}

// BuildPool turns a deck list into engine pool entries ordered by card id,
// so both peers expand the same pool in the same order.
func BuildPool(entries []DeckEntry, catalog *Catalog) ([]game.PoolEntry, error) {
	byCard, err := counts(entries)
	if err != nil {
		return nil, err
	}

	pool := make([]game.PoolEntry, 0, len(byCard))
	for _, id := range slices.Sorted(maps.Keys(byCard)) {
		card, ok := catalog.Get(id)
		if !ok {
			return nil, fmt.Errorf("card %d: %w", id, ErrUnknownCard)
		}
		pool = append(pool, game.PoolEntry{Card: card, Quantity: byCard[id]})
	}
	return pool, nil
}
