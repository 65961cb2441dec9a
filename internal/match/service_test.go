package match

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/spellduel/internal/events"
	"github.com/ramonehamilton/spellduel/internal/game"
	"github.com/ramonehamilton/spellduel/internal/lockstep"
	"github.com/ramonehamilton/spellduel/internal/storage"
	"github.com/ramonehamilton/spellduel/internal/storage/models"
)

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) OnEvent(e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) GetName() string { return "recorder" }

func (r *recorder) ShouldHandle(string) bool { return true }

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

type fixture struct {
	store    *storage.Service
	service  *Service
	recorder *recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	config := storage.DefaultConfig(filepath.Join(t.TempDir(), "match.db"))
	config.AutoMigrate = true
	db, err := storage.Open(config)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := storage.NewService(db)
	rec := &recorder{}
	dispatcher := events.NewEventDispatcher()
	dispatcher.Register(rec)

	return &fixture{
		store:    store,
		service:  NewService(Config{Store: store, Dispatcher: dispatcher}),
		recorder: rec,
	}
}

// seedDeck saves ten creatures and a 30-card deck of three copies each.
func (f *fixture) seedDeck(t *testing.T, owner string) string {
	t.Helper()
	ctx := context.Background()

	list := make([]game.Card, 10)
	for i := range list {
		attack, health := i%4+1, i%3+1
		list[i] = game.Card{
			Name:     fmt.Sprintf("Creature %d", i),
			ManaCost: i % 6,
			Type:     game.CardTypeCreature,
			Attack:   &attack,
			Health:   &health,
		}
	}
	saved, err := f.store.SaveCards(ctx, list)
	require.NoError(t, err)

	deck := &models.Deck{OwnerID: owner, Name: owner + "'s deck"}
	for _, c := range saved {
		deck.Cards = append(deck.Cards, models.DeckCard{CardID: c.ID, Quantity: 3})
	}
	require.NoError(t, f.store.CreateDeck(ctx, deck))
	return deck.ID
}

func (f *fixture) createMatch(t *testing.T) *models.Match {
	t.Helper()
	m, err := f.service.Create(context.Background(), CreateRequest{
		Player1ID:     "alice",
		Player2ID:     "bob",
		Player1DeckID: f.seedDeck(t, "alice"),
		Player2DeckID: f.seedDeck(t, "bob"),
	})
	require.NoError(t, err)
	return m
}

func TestService_Create(t *testing.T) {
	f := newFixture(t)
	m := f.createMatch(t)

	assert.Len(t, m.ID, 36)
	assert.Equal(t, models.MatchWaiting, m.Status)
	assert.Equal(t, []string{events.MatchCreated}, f.recorder.types())
}

func TestService_CreateRejectsBadRequests(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	aliceDeck := f.seedDeck(t, "alice")
	bobDeck := f.seedDeck(t, "bob")

	_, err := f.service.Create(ctx, CreateRequest{Player1ID: "alice", Player2ID: "alice", Player1DeckID: aliceDeck, Player2DeckID: aliceDeck})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = f.service.Create(ctx, CreateRequest{Player1ID: "alice", Player2ID: "bob", Player1DeckID: bobDeck, Player2DeckID: aliceDeck})
	assert.ErrorIs(t, err, ErrInvalidRequest, "decks must belong to their players")

	_, err = f.service.Create(ctx, CreateRequest{Player1ID: "alice", Player2ID: "bob", Player1DeckID: aliceDeck, Player2DeckID: "missing"})
	assert.True(t, storage.IsNotFound(err))

	small := &models.Deck{OwnerID: "bob", Name: "tiny"}
	require.NoError(t, f.store.CreateDeck(ctx, small))
	_, err = f.service.Create(ctx, CreateRequest{Player1ID: "alice", Player2ID: "bob", Player1DeckID: aliceDeck, Player2DeckID: small.ID})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	assert.Empty(t, f.recorder.types())
}

func TestService_SetupIsSharedAndDeterministic(t *testing.T) {
	f := newFixture(t)
	m := f.createMatch(t)
	ctx := context.Background()

	a, err := f.service.Setup(ctx, m.ID)
	require.NoError(t, err)
	b, err := f.service.Setup(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	assert.Equal(t, game.SeedFromMatchID(m.ID), a.Seed)
	assert.Equal(t, game.FirstPlayerFromMatchID(m.ID), a.Setup.FirstPlayerIndex)
	assert.Equal(t, "alice", a.Setup.Player1ID)
	require.Len(t, a.Setup.Player1Pool, 10)
	for i := 1; i < len(a.Setup.Player1Pool); i++ {
		assert.Less(t, a.Setup.Player1Pool[i-1].Card.ID, a.Setup.Player1Pool[i].Card.ID)
	}

	peer1 := lockstep.NewReplica(lockstep.Config{Setup: a.Setup, Seed: a.Seed})
	peer2 := lockstep.NewReplica(lockstep.Config{Setup: b.Setup, Seed: b.Seed})
	c1, err := peer1.Checksum()
	require.NoError(t, err)
	c2, err := peer2.Checksum()
	require.NoError(t, err)
	assert.Equal(t, c1, c2)
}

func TestService_SetupIgnoresLaterEdits(t *testing.T) {
	f := newFixture(t)
	m := f.createMatch(t)
	ctx := context.Background()

	before, err := f.service.Setup(ctx, m.ID)
	require.NoError(t, err)

	// Shrink alice's deck and rebalance a card both decks use.
	deck, err := f.store.GetDeck(ctx, m.Player1DeckID)
	require.NoError(t, err)
	require.NoError(t, f.store.UpdateDeckCards(ctx, deck.ID, deck.Cards[:2]))

	attack, health := 9, 9
	_, err = f.store.SaveCards(ctx, []game.Card{{
		Name: "Creature 0", ManaCost: 0, Type: game.CardTypeCreature, Attack: &attack, Health: &health,
	}})
	require.NoError(t, err)

	after, err := f.service.Setup(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	c1, err := lockstep.NewReplica(lockstep.Config{Setup: before.Setup, Seed: before.Seed}).Checksum()
	require.NoError(t, err)
	c2, err := lockstep.NewReplica(lockstep.Config{Setup: after.Setup, Seed: after.Seed}).Checksum()
	require.NoError(t, err)
	assert.Equal(t, c1, c2)
}

func TestService_Lifecycle(t *testing.T) {
	f := newFixture(t)
	m := f.createMatch(t)
	ctx := context.Background()

	require.NoError(t, f.service.Admit(ctx, m.ID, "alice"))
	assert.ErrorIs(t, f.service.Admit(ctx, m.ID, "mallory"), ErrNotParticipant)

	require.NoError(t, f.service.Activate(ctx, m.ID))
	require.NoError(t, f.service.Activate(ctx, m.ID))

	assert.ErrorIs(t, f.service.Finish(ctx, m.ID, "mallory"), ErrNotParticipant)
	require.NoError(t, f.service.Finish(ctx, m.ID, "bob"))
	require.NoError(t, f.service.Finish(ctx, m.ID, "alice"))

	got, err := f.service.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchFinished, got.Status)
	assert.Equal(t, "bob", *got.WinnerID)

	assert.ErrorIs(t, f.service.Admit(ctx, m.ID, "alice"), ErrMatchFinished)
	assert.ErrorIs(t, f.service.Activate(ctx, m.ID), ErrMatchFinished)

	assert.Equal(t, []string{events.MatchCreated, events.MatchActivated, events.MatchFinished}, f.recorder.types())
}

func TestService_PeerJoinedActivatesWhenFull(t *testing.T) {
	f := newFixture(t)
	m := f.createMatch(t)
	ctx := context.Background()

	f.service.PeerJoined(ctx, m.ID, 1)
	got, err := f.service.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchWaiting, got.Status)

	f.service.PeerJoined(ctx, m.ID, 2)
	got, err = f.service.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchActive, got.Status)

	// Unknown matches are logged, not fatal.
	f.service.PeerJoined(ctx, "missing", 2)
	assert.Equal(t, []string{events.MatchCreated, events.MatchActivated}, f.recorder.types())
}
