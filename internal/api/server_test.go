package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/spellduel/internal/api/handlers"
	apiwebsocket "github.com/ramonehamilton/spellduel/internal/api/websocket"
	"github.com/ramonehamilton/spellduel/internal/cards"
	"github.com/ramonehamilton/spellduel/internal/events"
	"github.com/ramonehamilton/spellduel/internal/game"
	"github.com/ramonehamilton/spellduel/internal/lockstep"
	"github.com/ramonehamilton/spellduel/internal/match"
	"github.com/ramonehamilton/spellduel/internal/metrics"
	"github.com/ramonehamilton/spellduel/internal/relay"
	"github.com/ramonehamilton/spellduel/internal/storage"
	"github.com/ramonehamilton/spellduel/internal/storage/models"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 60*time.Second, cfg.RequestTimeout)
	assert.NotEmpty(t, cfg.AllowedOrigins)
}

func TestNewServer_NilConfig(t *testing.T) {
	s := NewServer(nil, Services{})
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })

	assert.Equal(t, 8080, s.Port())
	assert.NotNil(t, s.WebSocketHub())
	assert.Equal(t, "LobbyFeed", s.NewWebSocketObserver().GetName())
}

func TestServer_HealthAndUnboundRoutes(t *testing.T) {
	s := NewServer(&Config{Port: 9999}, Services{})
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")

	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	// Routes without a backend are not mounted.
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/cards", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/snapshots", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_Snapshots(t *testing.T) {
	config := storage.DefaultConfig(filepath.Join(t.TempDir(), "duel.db"))
	config.AutoMigrate = true
	db, err := storage.Open(config)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	sched, err := storage.NewSnapshotScheduler(db, storage.SchedulerConfig{Dir: filepath.Join(t.TempDir(), "snaps"), Keep: 1})
	require.NoError(t, err)

	s := NewServer(&Config{Port: 9999}, Services{Snapshots: sched})
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })

	for range 2 {
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/snapshots", nil))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		time.Sleep(2 * time.Millisecond)
	}

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/snapshots", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data handlers.SnapshotResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, 2, body.Data.Status.SnapshotCount)
	assert.Len(t, body.Data.Snapshots, 1, "older snapshot pruned")
}

func TestContentTypeMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })
	h := contentTypeMiddleware(next)

	tests := []struct {
		name        string
		method      string
		contentType string
		body        string
		want        int
	}{
		{"json", http.MethodPost, "application/json", "{}", http.StatusTeapot},
		{"json with charset", http.MethodPut, "application/json; charset=utf-8", "{}", http.StatusTeapot},
		{"csv", http.MethodPost, "text/csv", "a,b", http.StatusTeapot},
		{"plain text", http.MethodPost, "text/plain", "hi", http.StatusUnsupportedMediaType},
		{"missing", http.MethodPost, "", "{}", http.StatusUnsupportedMediaType},
		{"empty body", http.MethodPost, "", "", http.StatusTeapot},
		{"get", http.MethodGet, "text/plain", "", http.StatusTeapot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(tt.method, "/", strings.NewReader(tt.body))
			if tt.contentType != "" {
				r.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

// duel is a fully wired server backed by a temp-dir database.
type duel struct {
	t      *testing.T
	base   string
	server *Server
}

func newDuel(t *testing.T) *duel {
	t.Helper()

	config := storage.DefaultConfig(filepath.Join(t.TempDir(), "duel.db"))
	config.AutoMigrate = true
	db, err := storage.Open(config)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := storage.NewService(db)
	dispatcher := events.NewEventDispatcher()
	relayMetrics := metrics.NewRelayMetrics()
	dispatcher.Register(relayMetrics.NewObserver())

	matches := match.NewService(match.Config{Store: store, Dispatcher: dispatcher})
	rl := relay.New(relay.Config{
		Admit:      matches.Admit,
		OnJoin:     matches.PeerJoined,
		OnFinish:   matches.Finish,
		Dispatcher: dispatcher,
		Metrics:    relayMetrics,
	})

	s := NewServer(nil, Services{
		Cards:      store,
		Decks:      store,
		Matches:    matches,
		Relay:      rl,
		Metrics:    relayMetrics,
		Dispatcher: dispatcher,
	})
	dispatcher.Register(s.NewWebSocketObserver())

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		_ = s.Shutdown(context.Background())
		srv.Close()
	})
	return &duel{t: t, base: srv.URL, server: s}
}

func (d *duel) do(method, path, contentType string, body io.Reader, out any) int {
	d.t.Helper()
	req, err := http.NewRequest(method, d.base+path, body)
	require.NoError(d.t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(d.t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		envelope := struct {
			Data any `json:"data"`
		}{Data: out}
		require.NoError(d.t, json.NewDecoder(resp.Body).Decode(&envelope))
	}
	return resp.StatusCode
}

func (d *duel) postJSON(path string, in, out any) int {
	d.t.Helper()
	data, err := json.Marshal(in)
	require.NoError(d.t, err)
	return d.do(http.MethodPost, path, "application/json", bytes.NewReader(data), out)
}

func (d *duel) dial(path string) *websocket.Conn {
	d.t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(d.base, "http")+path, nil)
	require.NoError(d.t, err)
	d.t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readJSON[T any](t *testing.T, conn *websocket.Conn) T {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var v T
	require.NoError(t, conn.ReadJSON(&v))
	return v
}

func TestServer_MatchOverRelay(t *testing.T) {
	d := newDuel(t)

	assert.Equal(t, http.StatusOK, d.do(http.MethodGet, "/health", "", nil, nil))

	// Import a catalog of ten creatures.
	var csv strings.Builder
	csv.WriteString("name,mana_cost,card_type,attack,health,effect_text,keywords,spell_effect\n")
	for i := 1; i <= 10; i++ {
		fmt.Fprintf(&csv, "Creature %d,%d,creature,%d,%d,,,\n", i, i%5+1, i%3+1, i%4+1)
	}
	var imported handlers.ImportResult
	require.Equal(t, http.StatusCreated, d.do(http.MethodPost, "/api/v1/cards/import", "text/csv", strings.NewReader(csv.String()), &imported))
	require.Len(t, imported.Imported, 10)

	var catalog []game.Card
	require.Equal(t, http.StatusOK, d.do(http.MethodGet, "/api/v1/cards", "", nil, &catalog))
	require.Len(t, catalog, 10)

	entries := make([]cards.DeckEntry, len(catalog))
	for i, c := range catalog {
		entries[i] = cards.DeckEntry{CardID: c.ID, Quantity: 3}
	}
	deckIDs := map[string]string{}
	for _, owner := range []string{"alice", "bob"} {
		var deck models.Deck
		require.Equal(t, http.StatusCreated, d.postJSON("/api/v1/decks", handlers.DeckRequest{OwnerID: owner, Name: owner + "'s deck", Cards: entries}, &deck))
		deckIDs[owner] = deck.ID
	}

	// Decks must be sent as JSON.
	assert.Equal(t, http.StatusUnsupportedMediaType, d.do(http.MethodPost, "/api/v1/decks", "text/plain", strings.NewReader("{}"), nil))

	feed := d.dial("/ws/events?types=" + strings.Join([]string{events.MatchCreated, events.MatchActivated, events.MatchFinished}, ","))
	require.Eventually(t, func() bool { return d.server.WebSocketHub().ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	var m models.Match
	require.Equal(t, http.StatusCreated, d.postJSON("/api/v1/matches", match.CreateRequest{
		Player1ID: "alice", Player2ID: "bob",
		Player1DeckID: deckIDs["alice"], Player2DeckID: deckIDs["bob"],
	}, &m))
	assert.Equal(t, models.MatchWaiting, m.Status)

	var setup match.MatchSetup
	require.Equal(t, http.StatusOK, d.do(http.MethodGet, "/api/v1/matches/"+m.ID+"/setup", "", nil, &setup))
	assert.Equal(t, game.SeedFromMatchID(m.ID), setup.Seed)

	// Outsiders cannot join the room.
	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(d.base, "http")+"/ws/matches/"+m.ID+"?player=mallory", nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	alice := d.dial("/ws/matches/" + m.ID + "?player=alice")
	bob := d.dial("/ws/matches/" + m.ID + "?player=bob")
	assert.Equal(t, relay.TypePeerJoined, readJSON[relay.Message](t, alice).Type)
	assert.Equal(t, relay.TypePeerJoined, readJSON[relay.Message](t, bob).Type)

	var got models.Match
	require.Eventually(t, func() bool {
		return d.do(http.MethodGet, "/api/v1/matches/"+m.ID, "", nil, &got) == http.StatusOK && got.Status == models.MatchActive
	}, 3*time.Second, 20*time.Millisecond)

	// Both peers play from the setup served by the API.
	cfg := lockstep.Config{Setup: setup.Setup, Seed: setup.Seed}
	replicas := map[string]*lockstep.Replica{"alice": lockstep.NewReplica(cfg), "bob": lockstep.NewReplica(cfg)}
	conns := map[string]*websocket.Conn{"alice": alice, "bob": bob}

	// Both mulligan at once; each applies the relay's order, its own included.
	for _, player := range []string{"alice", "bob"} {
		p, err := replicas[player].Propose(game.MulliganAction{PlayerID: player})
		require.NoError(t, err)
		msg, err := relay.ProposalMessage(p)
		require.NoError(t, err)
		require.NoError(t, conns[player].WriteJSON(msg))
	}
	sums := map[string]string{}
	for player, conn := range conns {
		for range 2 {
			f, err := readJSON[relay.Message](t, conn).Frame()
			require.NoError(t, err)
			sums[player], err = replicas[player].Receive(f)
			require.NoError(t, err)
		}
	}
	assert.Equal(t, sums["alice"], sums["bob"])
	assert.Equal(t, game.PhasePlaying, replicas["alice"].State().Phase)

	require.NoError(t, alice.WriteJSON(relay.Message{Type: relay.TypeFinished, Winner: "bob"}))
	require.NoError(t, bob.WriteJSON(relay.Message{Type: relay.TypeFinished, Winner: "bob"}))

	require.Eventually(t, func() bool {
		return d.do(http.MethodGet, "/api/v1/matches/"+m.ID, "", nil, &got) == http.StatusOK && got.Status == models.MatchFinished
	}, 3*time.Second, 20*time.Millisecond)
	require.NotNil(t, got.WinnerID)
	assert.Equal(t, "bob", *got.WinnerID)

	// The lobby feed saw the whole lifecycle, each event once.
	var seen []string
	for len(seen) < 3 {
		seen = append(seen, readJSON[apiwebsocket.Event](t, feed).Type)
	}
	assert.Equal(t, []string{events.MatchCreated, events.MatchActivated, events.MatchFinished}, seen)

	var stats metrics.RelayStats
	require.Equal(t, http.StatusOK, d.do(http.MethodGet, "/api/v1/metrics", "", nil, &stats))
	assert.Equal(t, uint64(2), stats.FramesRelayed)
	assert.Equal(t, uint64(1), stats.MatchesCreated)
	assert.Equal(t, uint64(1), stats.MatchesFinished)
	assert.Equal(t, int64(2), stats.OpenConnections)
}
