package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ramonehamilton/spellduel/internal/storage/models"
)

// DeckRepository handles database operations for decks.
type DeckRepository interface {
	// Create inserts a new deck and its cards.
	Create(ctx context.Context, deck *models.Deck) error

	// GetByID retrieves a deck with its cards. Returns nil if not found.
	GetByID(ctx context.Context, id string) (*models.Deck, error)

	// ListByOwner retrieves all decks of a player, without cards.
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Deck, error)

	// ReplaceCards swaps the deck's card list for cards.
	ReplaceCards(ctx context.Context, deckID string, cards []models.DeckCard) error

	// Delete deletes a deck and its card list.
	Delete(ctx context.Context, id string) error
}

type deckRepository struct {
	db DBTX
}

// NewDeckRepository creates a new deck repository.
func NewDeckRepository(db DBTX) DeckRepository {
	return &deckRepository{db: db}
}

func (r *deckRepository) Create(ctx context.Context, deck *models.Deck) error {
	now := time.Now().UTC()
	if deck.CreatedAt.IsZero() {
		deck.CreatedAt = now
	}
	deck.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO decks (id, owner_id, name, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		deck.ID, deck.OwnerID, deck.Name, deck.CreatedAt, deck.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create deck: %w", err)
	}
	return r.insertCards(ctx, deck.ID, deck.Cards)
}

func (r *deckRepository) insertCards(ctx context.Context, deckID string, cards []models.DeckCard) error {
	for _, c := range cards {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO deck_cards (deck_id, card_id, quantity) VALUES (?, ?, ?)`,
			deckID, c.CardID, c.Quantity,
		)
		if err != nil {
			return fmt.Errorf("failed to add card %d to deck: %w", c.CardID, err)
		}
	}
	return nil
}

func (r *deckRepository) GetByID(ctx context.Context, id string) (*models.Deck, error) {
	deck := &models.Deck{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, created_at, updated_at FROM decks WHERE id = ?`, id,
	).Scan(&deck.ID, &deck.OwnerID, &deck.Name, &deck.CreatedAt, &deck.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deck: %w", err)
	}

	cards, err := r.cards(ctx, id)
	if err != nil {
		return nil, err
	}
	deck.Cards = cards
	return deck, nil
}

// cards returns the deck list ordered by card id, the order pools are built in.
func (r *deckRepository) cards(ctx context.Context, deckID string) ([]models.DeckCard, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT card_id, quantity FROM deck_cards WHERE deck_id = ? ORDER BY card_id`, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to get deck cards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cards []models.DeckCard
	for rows.Next() {
		var c models.DeckCard
		if err := rows.Scan(&c.CardID, &c.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan deck card: %w", err)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating deck cards: %w", err)
	}
	return cards, nil
}

func (r *deckRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Deck, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, name, created_at, updated_at FROM decks WHERE owner_id = ? ORDER BY created_at, id`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var decks []*models.Deck
	for rows.Next() {
		d := &models.Deck{}
		if err := rows.Scan(&d.ID, &d.OwnerID, &d.Name, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan deck: %w", err)
		}
		decks = append(decks, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating decks: %w", err)
	}
	return decks, nil
}

func (r *deckRepository) ReplaceCards(ctx context.Context, deckID string, cards []models.DeckCard) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE decks SET updated_at = ? WHERE id = ?`, time.Now().UTC(), deckID)
	if err != nil {
		return fmt.Errorf("failed to update deck: %w", err)
	}
	if err := requireAffected(result, "deck", deckID); err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM deck_cards WHERE deck_id = ?`, deckID); err != nil {
		return fmt.Errorf("failed to clear deck cards: %w", err)
	}
	return r.insertCards(ctx, deckID, cards)
}

func (r *deckRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM decks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete deck: %w", err)
	}
	return requireAffected(result, "deck", id)
}
