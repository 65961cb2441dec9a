package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/spellduel/internal/api/response"
	"github.com/ramonehamilton/spellduel/internal/match"
	"github.com/ramonehamilton/spellduel/internal/storage/models"
)

// MatchService is the match registry used by MatchHandler.
type MatchService interface {
	Create(ctx context.Context, req match.CreateRequest) (*models.Match, error)
	Get(ctx context.Context, id string) (*models.Match, error)
	Setup(ctx context.Context, id string) (*match.MatchSetup, error)
}

// MatchHandler handles match requests.
type MatchHandler struct {
	service MatchService
}

// NewMatchHandler creates a new MatchHandler.
func NewMatchHandler(service MatchService) *MatchHandler {
	return &MatchHandler{service: service}
}

// CreateMatch registers a match between two players and their decks.
func (h *MatchHandler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	var req match.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	m, err := h.service.Create(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Created(w, m)
}

// GetMatch returns a match record.
func (h *MatchHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	m, err := h.service.Get(r.Context(), chi.URLParam(r, "matchID"))
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, m)
}

// GetMatchSetup returns the shared setup and seed both peers initialize from.
func (h *MatchHandler) GetMatchSetup(w http.ResponseWriter, r *http.Request) {
	setup, err := h.service.Setup(r.Context(), chi.URLParam(r, "matchID"))
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, setup)
}
