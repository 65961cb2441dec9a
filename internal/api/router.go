package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ramonehamilton/spellduel/internal/api/handlers"
	"github.com/ramonehamilton/spellduel/internal/api/response"
	"github.com/ramonehamilton/spellduel/internal/version"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check endpoint (no versioning)
	s.router.Get("/health", s.healthCheck)

	// WebSocket endpoints, outside the request timeout
	s.router.Get("/ws/events", s.wsHub.ServeWs)
	if s.services.Relay != nil {
		s.router.Get("/ws/matches/{matchID}", func(w http.ResponseWriter, r *http.Request) {
			s.services.Relay.ServeMatch(w, r, chi.URLParam(r, "matchID"))
		})
	}

	// API v1 routes
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(s.timeout))

		if s.services.Cards != nil {
			cardHandler := handlers.NewCardHandler(s.services.Cards, s.services.Dispatcher)
			r.Route("/cards", func(r chi.Router) {
				r.Get("/", cardHandler.ListCards)
				r.Post("/import", cardHandler.ImportCards)
				r.Get("/{cardID}", cardHandler.GetCard)
			})
		}

		if s.services.Decks != nil {
			deckHandler := handlers.NewDeckHandler(s.services.Decks)
			r.Route("/decks", func(r chi.Router) {
				r.Get("/", deckHandler.GetDecks)
				r.Post("/", deckHandler.CreateDeck)
				r.Get("/{deckID}", deckHandler.GetDeck)
				r.Put("/{deckID}", deckHandler.UpdateDeck)
				r.Delete("/{deckID}", deckHandler.DeleteDeck)
				r.Get("/{deckID}/curve", deckHandler.GetDeckCurve)
				r.Get("/{deckID}/curve.html", deckHandler.GetDeckCurveChart)
			})
		}

		if s.services.Matches != nil {
			matchHandler := handlers.NewMatchHandler(s.services.Matches)
			r.Route("/matches", func(r chi.Router) {
				r.Post("/", matchHandler.CreateMatch)
				r.Get("/{matchID}", matchHandler.GetMatch)
				r.Get("/{matchID}/setup", matchHandler.GetMatchSetup)
			})
		}

		if s.services.Snapshots != nil {
			snapshotHandler := handlers.NewSnapshotHandler(s.services.Snapshots)
			r.Get("/snapshots", snapshotHandler.GetSnapshots)
			r.Post("/snapshots", snapshotHandler.CreateSnapshot)
		}

		systemHandler := handlers.NewSystemHandler(s.services.Metrics)
		r.Get("/metrics", systemHandler.GetMetrics)
		r.Get("/version", systemHandler.GetVersion)
	})
}

// healthCheck returns server health status.
func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"service": "spellduel",
		"version": version.GetVersion(),
	})
}
