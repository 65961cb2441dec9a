package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/spellduel/internal/api/response"
	"github.com/ramonehamilton/spellduel/internal/cards"
	"github.com/ramonehamilton/spellduel/internal/charts"
	"github.com/ramonehamilton/spellduel/internal/game"
	"github.com/ramonehamilton/spellduel/internal/match"
	"github.com/ramonehamilton/spellduel/internal/storage/models"
)

// DeckStore is the deck storage used by DeckHandler.
type DeckStore interface {
	Catalog(ctx context.Context) ([]game.Card, error)
	CreateDeck(ctx context.Context, deck *models.Deck) error
	UpdateDeckCards(ctx context.Context, deckID string, cards []models.DeckCard) error
	GetDeck(ctx context.Context, id string) (*models.Deck, error)
	ListDecks(ctx context.Context, ownerID string) ([]*models.Deck, error)
	DeleteDeck(ctx context.Context, id string) error
}

// DeckHandler handles deck requests.
type DeckHandler struct {
	store DeckStore
}

// NewDeckHandler creates a new DeckHandler.
func NewDeckHandler(store DeckStore) *DeckHandler {
	return &DeckHandler{store: store}
}

// DeckRequest is the body of deck create and update requests.
type DeckRequest struct {
	OwnerID string            `json:"owner_id"`
	Name    string            `json:"name"`
	Cards   []cards.DeckEntry `json:"cards"`
}

// CurveResponse is the mana curve of a deck.
type CurveResponse struct {
	DeckID      string             `json:"deck_id"`
	Curve       []cards.CurvePoint `json:"curve"`
	AverageCost float64            `json:"average_cost"`
}

// GetDecks lists the decks of ?owner=.
func (h *DeckHandler) GetDecks(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("owner")
	if owner == "" {
		response.BadRequest(w, errors.New("owner is required"))
		return
	}

	decks, err := h.store.ListDecks(r.Context(), owner)
	if err != nil {
		response.InternalError(w, err)
		return
	}
	if decks == nil {
		decks = []*models.Deck{}
	}
	response.Success(w, decks)
}

// CreateDeck validates and stores a new deck.
func (h *DeckHandler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	var req DeckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}
	if req.OwnerID == "" || req.Name == "" {
		response.BadRequest(w, errors.New("owner_id and name are required"))
		return
	}

	list, err := h.deckCards(r.Context(), req.Cards)
	if err != nil {
		writeError(w, err)
		return
	}

	deck := &models.Deck{OwnerID: req.OwnerID, Name: req.Name, Cards: list}
	if err := h.store.CreateDeck(r.Context(), deck); err != nil {
		response.InternalError(w, err)
		return
	}

	created, err := h.store.GetDeck(r.Context(), deck.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Created(w, created)
}

// UpdateDeck replaces the card list of a deck.
func (h *DeckHandler) UpdateDeck(w http.ResponseWriter, r *http.Request) {
	deckID := chi.URLParam(r, "deckID")

	var req DeckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	list, err := h.deckCards(r.Context(), req.Cards)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.store.UpdateDeckCards(r.Context(), deckID, list); err != nil {
		writeError(w, err)
		return
	}

	deck, err := h.store.GetDeck(r.Context(), deckID)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, deck)
}

// GetDeck returns a deck with its card list.
func (h *DeckHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
	deck, err := h.store.GetDeck(r.Context(), chi.URLParam(r, "deckID"))
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, deck)
}

// DeleteDeck removes a deck.
func (h *DeckHandler) DeleteDeck(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteDeck(r.Context(), chi.URLParam(r, "deckID")); err != nil {
		writeError(w, err)
		return
	}
	response.NoContent(w)
}

// GetDeckCurve returns the mana curve of a deck as JSON.
func (h *DeckHandler) GetDeckCurve(w http.ResponseWriter, r *http.Request) {
	deck, pool, err := h.deckPool(r.Context(), chi.URLParam(r, "deckID"))
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, CurveResponse{
		DeckID:      deck.ID,
		Curve:       cards.ManaCurve(pool),
		AverageCost: cards.AverageCost(pool),
	})
}

// GetDeckCurveChart renders the mana curve of a deck as an HTML chart.
func (h *DeckHandler) GetDeckCurveChart(w http.ResponseWriter, r *http.Request) {
	deck, pool, err := h.deckPool(r.Context(), chi.URLParam(r, "deckID"))
	if err != nil {
		writeError(w, err)
		return
	}

	cfg := charts.DefaultChartConfig()
	cfg.Title = fmt.Sprintf("Mana Curve: %s", deck.Name)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := charts.RenderManaCurve(w, cards.ManaCurve(pool), cfg); err != nil {
		response.InternalError(w, err)
	}
}

func (h *DeckHandler) catalog(ctx context.Context) (*cards.Catalog, error) {
	list, err := h.store.Catalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return cards.NewCatalog(list)
}

// deckCards validates a deck list and merges repeated cards.
func (h *DeckHandler) deckCards(ctx context.Context, entries []cards.DeckEntry) ([]models.DeckCard, error) {
	catalog, err := h.catalog(ctx)
	if err != nil {
		return nil, err
	}
	if err := cards.ValidateDeck(entries, catalog); err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidDeck, err)
	}
	pool, err := cards.BuildPool(entries, catalog)
	if err != nil {
		return nil, err
	}

	list := make([]models.DeckCard, len(pool))
	for i, entry := range pool {
		list[i] = models.DeckCard{CardID: entry.Card.ID, Quantity: entry.Quantity}
	}
	return list, nil
}

func (h *DeckHandler) deckPool(ctx context.Context, deckID string) (*models.Deck, []game.PoolEntry, error) {
	deck, err := h.store.GetDeck(ctx, deckID)
	if err != nil {
		return nil, nil, err
	}
	catalog, err := h.catalog(ctx)
	if err != nil {
		return nil, nil, err
	}
	pool, err := cards.BuildPool(match.DeckEntries(deck), catalog)
	if err != nil {
		return nil, nil, err
	}
	return deck, pool, nil
}
