// Package api is the HTTP surface of the duel server: REST endpoints for the
// catalog, decks and matches, the relay socket and the lobby event feed.
package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ramonehamilton/spellduel/internal/api/handlers"
	"github.com/ramonehamilton/spellduel/internal/api/websocket"
	"github.com/ramonehamilton/spellduel/internal/events"
	"github.com/ramonehamilton/spellduel/internal/metrics"
	"github.com/ramonehamilton/spellduel/internal/relay"
)

// Server represents the REST API server.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	port       int
	timeout    time.Duration
	origins    []string

	// Lobby feed of server events
	wsHub *websocket.Hub

	services Services
}

// Config holds configuration for the API server.
type Config struct {
	Port           int
	RequestTimeout time.Duration
	AllowedOrigins []string
}

// DefaultConfig returns the default API server configuration.
func DefaultConfig() *Config {
	return &Config{
		Port:           8080,
		RequestTimeout: 60 * time.Second,
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*", "https://localhost:*"},
	}
}

// Services holds the backends the endpoints are served from.
type Services struct {
	Cards   handlers.CardStore
	Decks   handlers.DeckStore
	Matches handlers.MatchService

	// Relay serves /ws/matches/{matchID}; the route is omitted when nil.
	Relay *relay.Relay

	// Snapshots serves /api/v1/snapshots; the routes are omitted when nil.
	Snapshots handlers.Snapshotter

	Metrics    *metrics.RelayMetrics
	Dispatcher *events.EventDispatcher
}

// NewServer creates a new API server.
func NewServer(cfg *Config, services Services) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	if services.Metrics == nil {
		services.Metrics = metrics.NewRelayMetrics()
	}

	s := &Server{
		router:   chi.NewRouter(),
		port:     cfg.Port,
		timeout:  cfg.RequestTimeout,
		origins:  cfg.AllowedOrigins,
		wsHub:    websocket.NewHub(nil),
		services: services,
	}

	s.setupMiddleware()
	s.setupRoutes()
	go s.wsHub.Run()

	return s
}

// setupMiddleware configures the middleware stack shared by every route.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s.router.Use(contentTypeMiddleware)
}

// contentTypeMiddleware only lets JSON or CSV bodies through.
func contentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			if r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}

			mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if mediaType != "application/json" && mediaType != "text/csv" {
				http.Error(w, "Content-Type must be application/json or text/csv", http.StatusUnsupportedMediaType)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server in a goroutine.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Printf("API server starting on port %d", s.port)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("API server error: %v", err)
		}
	}()

	return nil
}

// Shutdown disconnects relay peers and feed clients, then stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.services.Relay != nil {
		s.services.Relay.Close()
	}
	s.wsHub.Stop()

	if s.httpServer == nil {
		return nil
	}
	log.Println("Shutting down API server...")
	return s.httpServer.Shutdown(ctx)
}

// Port returns the port the server is configured to listen on.
func (s *Server) Port() int {
	return s.port
}

// WebSocketHub returns the lobby feed hub.
func (s *Server) WebSocketHub() *websocket.Hub {
	return s.wsHub
}

// NewWebSocketObserver creates an observer that forwards dispatched events
// to the lobby feed.
func (s *Server) NewWebSocketObserver() *websocket.WebSocketObserver {
	return websocket.NewWebSocketObserver(s.wsHub)
}
