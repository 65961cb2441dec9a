// Package match is the registry of matches: it pairs two players and their
// decks, derives the shared setup both peers initialize from, and records
// the result.
package match

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ramonehamilton/spellduel/internal/cards"
	"github.com/ramonehamilton/spellduel/internal/events"
	"github.com/ramonehamilton/spellduel/internal/game"
	"github.com/ramonehamilton/spellduel/internal/storage/models"
)

var (
	ErrInvalidRequest = errors.New("invalid match request")
	ErrNotParticipant = errors.New("player is not in this match")
	ErrMatchFinished  = errors.New("match is finished")
)

// Store is the persistence the registry needs. *storage.Service implements it.
type Store interface {
	Catalog(ctx context.Context) ([]game.Card, error)
	GetDeck(ctx context.Context, id string) (*models.Deck, error)
	CreateMatch(ctx context.Context, match *models.Match) error
	GetMatch(ctx context.Context, id string) (*models.Match, error)
	ActivateMatch(ctx context.Context, id string) error
	FinishMatch(ctx context.Context, id, winnerID string) (bool, error)
}

// Config configures a Service.
type Config struct {
	Store Store

	// Dispatcher receives match lifecycle events. Optional.
	Dispatcher *events.EventDispatcher

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Service creates matches and tracks their lifecycle.
type Service struct {
	store      Store
	dispatcher *events.EventDispatcher
	logger     *slog.Logger
}

// NewService creates a match registry.
func NewService(cfg Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:      cfg.Store,
		dispatcher: cfg.Dispatcher,
		logger:     logger.With("component", "match"),
	}
}

// CreateRequest pairs two players with their decks.
type CreateRequest struct {
	Player1ID     string `json:"player1_id"`
	Player2ID     string `json:"player2_id"`
	Player1DeckID string `json:"player1_deck_id"`
	Player2DeckID string `json:"player2_deck_id"`
}

// MatchSetup is what both peers need to build the identical initial state.
type MatchSetup struct {
	MatchID string     `json:"match_id"`
	Setup   game.Setup `json:"setup"`
	Seed    int64      `json:"seed"`
}

// frozenPools is the stored form of both card pools of a match.
type frozenPools struct {
	Player1 []game.PoolEntry `json:"player1"`
	Player2 []game.PoolEntry `json:"player2"`
}

// Create validates both decks and records a waiting match under a new id.
// The pools built from the decks are stored with the match; later deck or
// catalog edits do not change them.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.Match, error) {
	if req.Player1ID == "" || req.Player2ID == "" {
		return nil, fmt.Errorf("%w: both player ids are required", ErrInvalidRequest)
	}
	if req.Player1ID == req.Player2ID {
		return nil, fmt.Errorf("%w: players must differ", ErrInvalidRequest)
	}

	catalog, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}
	pool1, err := s.pool(ctx, catalog, req.Player1DeckID, req.Player1ID)
	if err != nil {
		return nil, err
	}
	pool2, err := s.pool(ctx, catalog, req.Player2DeckID, req.Player2ID)
	if err != nil {
		return nil, err
	}
	pools, err := json.Marshal(frozenPools{Player1: pool1, Player2: pool2})
	if err != nil {
		return nil, fmt.Errorf("failed to encode pools: %w", err)
	}

	m := &models.Match{
		Player1ID:     req.Player1ID,
		Player2ID:     req.Player2ID,
		Player1DeckID: req.Player1DeckID,
		Player2DeckID: req.Player2DeckID,
		Pools:         pools,
	}
	if err := s.store.CreateMatch(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}

	s.logger.Info("match created", "match", m.ID, "player1", m.Player1ID, "player2", m.Player2ID)
	s.dispatch(ctx, events.MatchCreated, events.MatchCreatedEvent{
		MatchID:   m.ID,
		Player1ID: m.Player1ID,
		Player2ID: m.Player2ID,
	})
	return m, nil
}

// Get returns a match record.
func (s *Service) Get(ctx context.Context, id string) (*models.Match, error) {
	return s.store.GetMatch(ctx, id)
}

// Setup returns the shared game setup of a match: the pools frozen at
// creation, sorted by card id, with the first player and the seed taken from
// the match id.
func (s *Service) Setup(ctx context.Context, id string) (*MatchSetup, error) {
	m, err := s.store.GetMatch(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(m.Pools) == 0 {
		return nil, fmt.Errorf("match %s has no stored pools", id)
	}
	var pools frozenPools
	if err := json.Unmarshal(m.Pools, &pools); err != nil {
		return nil, fmt.Errorf("failed to decode pools of match %s: %w", id, err)
	}

	return &MatchSetup{
		MatchID: m.ID,
		Setup: game.Setup{
			Player1ID:        m.Player1ID,
			Player2ID:        m.Player2ID,
			Player1Pool:      pools.Player1,
			Player2Pool:      pools.Player2,
			FirstPlayerIndex: game.FirstPlayerFromMatchID(m.ID),
		},
		Seed: game.SeedFromMatchID(m.ID),
	}, nil
}

// Admit checks that playerID may join the relay room of an unfinished match.
func (s *Service) Admit(ctx context.Context, matchID, playerID string) error {
	m, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return err
	}
	if playerID != m.Player1ID && playerID != m.Player2ID {
		return fmt.Errorf("%s: %w", playerID, ErrNotParticipant)
	}
	if m.Status == models.MatchFinished {
		return ErrMatchFinished
	}
	return nil
}

// Activate marks a waiting match as active. Active matches are left as they are.
func (s *Service) Activate(ctx context.Context, id string) error {
	m, err := s.store.GetMatch(ctx, id)
	if err != nil {
		return err
	}
	switch m.Status {
	case models.MatchActive:
		return nil
	case models.MatchFinished:
		return ErrMatchFinished
	}

	if err := s.store.ActivateMatch(ctx, id); err != nil {
		return fmt.Errorf("failed to activate match: %w", err)
	}
	s.logger.Info("match active", "match", id)
	s.dispatch(ctx, events.MatchActivated, events.MatchActivatedEvent{MatchID: id})
	return nil
}

// PeerJoined activates a match once both players are connected to its room.
func (s *Service) PeerJoined(ctx context.Context, matchID string, peers int) {
	if peers < 2 {
		return
	}
	if err := s.Activate(ctx, matchID); err != nil {
		s.logger.Warn("failed to activate match", "match", matchID, "error", err)
	}
}

// Finish records the winner. Both peers report the result, so finishing a
// finished match is not an error and the first result is kept.
func (s *Service) Finish(ctx context.Context, id, winnerID string) error {
	m, err := s.store.GetMatch(ctx, id)
	if err != nil {
		return err
	}
	if winnerID != m.Player1ID && winnerID != m.Player2ID {
		return fmt.Errorf("winner %s: %w", winnerID, ErrNotParticipant)
	}

	changed, err := s.store.FinishMatch(ctx, id, winnerID)
	if err != nil {
		return fmt.Errorf("failed to finish match: %w", err)
	}
	if !changed {
		return nil
	}

	s.logger.Info("match finished", "match", id, "winner", winnerID)
	s.dispatch(ctx, events.MatchFinished, events.MatchFinishedEvent{
		MatchID:    id,
		WinnerID:   winnerID,
		FinishedAt: time.Now().UTC(),
	})
	return nil
}

func (s *Service) catalog(ctx context.Context) (*cards.Catalog, error) {
	list, err := s.store.Catalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return cards.NewCatalog(list)
}

// pool loads a deck, checks its owner and construction rules, and builds its pool.
func (s *Service) pool(ctx context.Context, catalog *cards.Catalog, deckID, ownerID string) ([]game.PoolEntry, error) {
	deck, err := s.store.GetDeck(ctx, deckID)
	if err != nil {
		return nil, err
	}
	if deck.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: deck %s does not belong to %s", ErrInvalidRequest, deckID, ownerID)
	}

	entries := DeckEntries(deck)
	if err := cards.ValidateDeck(entries, catalog); err != nil {
		return nil, fmt.Errorf("%w: deck %s: %w", ErrInvalidRequest, deckID, err)
	}
	return cards.BuildPool(entries, catalog)
}

func (s *Service) dispatch(ctx context.Context, eventType string, data any) {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Dispatch(events.NewTypedEvent(eventType, data, ctx))
}

// DeckEntries converts a stored deck list to catalog deck entries.
func DeckEntries(deck *models.Deck) []cards.DeckEntry {
	entries := make([]cards.DeckEntry, len(deck.Cards))
	for i, c := range deck.Cards {
		entries[i] = cards.DeckEntry{CardID: c.CardID, Quantity: c.Quantity}
	}
	return entries
}
