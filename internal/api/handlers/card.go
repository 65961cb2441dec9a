package handlers

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/spellduel/internal/api/response"
	"github.com/ramonehamilton/spellduel/internal/cards"
	"github.com/ramonehamilton/spellduel/internal/events"
	"github.com/ramonehamilton/spellduel/internal/game"
)

// maxImportBytes limits the size of an uploaded CSV file.
const maxImportBytes = 1 << 20

// CardStore is the card catalog storage used by CardHandler.
type CardStore interface {
	Catalog(ctx context.Context) ([]game.Card, error)
	GetCard(ctx context.Context, id int) (*game.Card, error)
	SaveCards(ctx context.Context, cards []game.Card) ([]game.Card, error)
}

// CardHandler handles card catalog requests.
type CardHandler struct {
	store      CardStore
	dispatcher *events.EventDispatcher
}

// NewCardHandler creates a new CardHandler. dispatcher may be nil.
func NewCardHandler(store CardStore, dispatcher *events.EventDispatcher) *CardHandler {
	return &CardHandler{store: store, dispatcher: dispatcher}
}

// ListCards returns the catalog, optionally filtered by ?type= and ?max_cost=.
func (h *CardHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	cardType := game.CardType(r.URL.Query().Get("type"))
	maxCost := -1
	if raw := r.URL.Query().Get("max_cost"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.BadRequest(w, errors.New("max_cost must be a non-negative number"))
			return
		}
		maxCost = n
	}

	all, err := h.store.Catalog(r.Context())
	if err != nil {
		response.InternalError(w, err)
		return
	}

	out := make([]game.Card, 0, len(all))
	for _, card := range all {
		if cardType != "" && card.Type != cardType {
			continue
		}
		if maxCost >= 0 && card.ManaCost > maxCost {
			continue
		}
		out = append(out, card)
	}
	response.Success(w, out)
}

// GetCard returns a single card by id.
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "cardID"))
	if err != nil || id <= 0 {
		response.BadRequest(w, errors.New("card ID must be a positive number"))
		return
	}

	card, err := h.store.GetCard(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, card)
}

// ImportResult reports a CSV import.
type ImportResult struct {
	Imported []game.Card `json:"imported"`
	Errors   []string    `json:"errors"`
}

// ImportCards adds the valid rows of a text/csv body to the catalog. Rows
// that fail validation are listed in the result; if none are valid nothing
// is saved and the status is 422.
func (h *CardHandler) ImportCards(w http.ResponseWriter, r *http.Request) {
	if mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mediaType != "text/csv" {
		response.UnsupportedMediaType(w, errors.New("content type must be text/csv"))
		return
	}

	parsed, problems := cards.ImportCSV(http.MaxBytesReader(w, r.Body, maxImportBytes))
	result := ImportResult{Imported: []game.Card{}, Errors: make([]string, 0, len(problems))}
	for _, p := range problems {
		result.Errors = append(result.Errors, p.Error())
	}
	if len(parsed) == 0 {
		response.JSON(w, http.StatusUnprocessableEntity, response.SuccessResponse{Data: result})
		return
	}

	saved, err := h.store.SaveCards(r.Context(), parsed)
	if err != nil {
		response.InternalError(w, err)
		return
	}
	result.Imported = saved

	if h.dispatcher != nil {
		h.dispatcher.Dispatch(events.NewTypedEvent(events.CatalogUpdated,
			events.CatalogUpdatedEvent{Cards: len(saved), Source: "import"}, r.Context()))
	}
	response.Created(w, result)
}
