package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ramonehamilton/spellduel/internal/game"
	"github.com/ramonehamilton/spellduel/internal/storage/models"
	"github.com/ramonehamilton/spellduel/internal/storage/repository"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = repository.ErrNotFound

// Service provides high-level operations over the catalog, decks and matches.
type Service struct {
	db      *DB
	cards   repository.CardRepository
	decks   repository.DeckRepository
	matches repository.MatchRepository
}

// NewService creates a new storage service.
func NewService(db *DB) *Service {
	return &Service{
		db:      db,
		cards:   repository.NewCardRepository(db.Conn()),
		decks:   repository.NewDeckRepository(db.Conn()),
		matches: repository.NewMatchRepository(db.Conn()),
	}
}

// SaveCards upserts cards by name in one transaction and returns them with
// their assigned IDs.
func (s *Service) SaveCards(ctx context.Context, cards []game.Card) ([]game.Card, error) {
	saved := make([]game.Card, len(cards))
	copy(saved, cards)

	err := s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		repo := repository.NewCardRepository(tx)
		for i := range saved {
			if err := repo.Upsert(ctx, &saved[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save cards: %w", err)
	}
	return saved, nil
}

// Catalog returns every card ordered by ID.
func (s *Service) Catalog(ctx context.Context) ([]game.Card, error) {
	return s.cards.List(ctx)
}

// GetCard returns a card, or ErrNotFound.
func (s *Service) GetCard(ctx context.Context, id int) (*game.Card, error) {
	card, err := s.cards.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, fmt.Errorf("card %d: %w", id, ErrNotFound)
	}
	return card, nil
}

// CreateDeck stores a deck and its card list. An empty ID is replaced by a new UUID.
func (s *Service) CreateDeck(ctx context.Context, deck *models.Deck) error {
	if deck.ID == "" {
		deck.ID = uuid.NewString()
	}
	return s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		return repository.NewDeckRepository(tx).Create(ctx, deck)
	})
}

// UpdateDeckCards replaces the card list of an existing deck.
func (s *Service) UpdateDeckCards(ctx context.Context, deckID string, cards []models.DeckCard) error {
	return s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		return repository.NewDeckRepository(tx).ReplaceCards(ctx, deckID, cards)
	})
}

// GetDeck returns a deck with its cards, or ErrNotFound.
func (s *Service) GetDeck(ctx context.Context, id string) (*models.Deck, error) {
	deck, err := s.decks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if deck == nil {
		return nil, fmt.Errorf("deck %s: %w", id, ErrNotFound)
	}
	return deck, nil
}

// ListDecks returns a player's decks without their card lists.
func (s *Service) ListDecks(ctx context.Context, ownerID string) ([]*models.Deck, error) {
	return s.decks.ListByOwner(ctx, ownerID)
}

// DeleteDeck removes a deck.
func (s *Service) DeleteDeck(ctx context.Context, id string) error {
	return s.decks.Delete(ctx, id)
}

// CreateMatch records a new match in the waiting state.
func (s *Service) CreateMatch(ctx context.Context, match *models.Match) error {
	if match.ID == "" {
		match.ID = uuid.NewString()
	}
	match.Status = models.MatchWaiting
	return s.matches.Create(ctx, match)
}

// GetMatch returns a match, or ErrNotFound.
func (s *Service) GetMatch(ctx context.Context, id string) (*models.Match, error) {
	match, err := s.matches.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if match == nil {
		return nil, fmt.Errorf("match %s: %w", id, ErrNotFound)
	}
	return match, nil
}

// ActivateMatch marks a waiting match as active.
func (s *Service) ActivateMatch(ctx context.Context, id string) error {
	return s.matches.SetStatus(ctx, id, models.MatchActive)
}

// FinishMatch records the winner. It reports false when the match was
// already finished.
func (s *Service) FinishMatch(ctx context.Context, id, winnerID string) (bool, error) {
	finished, err := s.matches.Finish(ctx, id, winnerID, time.Now())
	if err != nil {
		return false, err
	}
	if !finished {
		if _, err := s.GetMatch(ctx, id); err != nil {
			return false, err
		}
	}
	return finished, nil
}

// ListMatches returns matches in a status, newest first.
func (s *Service) ListMatches(ctx context.Context, status models.MatchStatus, limit int) ([]*models.Match, error) {
	return s.matches.ListByStatus(ctx, status, limit)
}

// IsNotFound reports whether err means a record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
