package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeGame_OpeningDraw(t *testing.T) {
	state := NewGame("p1", "p2", uniformPool(1, 30), uniformPool(1, 30), 0, 42)

	assert.Len(t, state.Players[0].Hand, StartingHandSize)
	assert.Len(t, state.Players[0].Deck, 30-StartingHandSize)
	assert.Len(t, state.Players[1].Hand, StartingHandSize)
	assert.Equal(t, PhaseMulligan, state.Phase)
	assert.Equal(t, 0, state.TurnNumber)
	assert.Equal(t, 0, state.CurrentPlayerIndex)
	assert.Empty(t, state.Winner)
	assert.Equal(t, [2]bool{false, false}, state.MulliganReady)

	for _, p := range state.Players {
		assert.Equal(t, HeroMaxHP, p.Hero.HP)
		assert.Equal(t, HeroMaxHP, p.Hero.MaxHP)
		assert.Zero(t, p.Mana)
		assert.Zero(t, p.MaxMana)
		assert.Empty(t, p.Board)
		assert.Empty(t, p.Graveyard)
		assert.Zero(t, p.FatigueDamage)
	}
}

func TestInitializeGame_Deterministic(t *testing.T) {
	pool := []PoolEntry{
		{Card: creatureCard(1, 1, 1, 1), Quantity: 10},
		{Card: creatureCard(2, 2, 2, 2, KeywordTaunt), Quantity: 10},
		{Card: spellCard(3, 3, SpellEffect{Type: EffectDrawCards, Amount: intPtr(2)}), Quantity: 10},
	}
	a := NewGame("p1", "p2", pool, pool, 1, 7)
	b := NewGame("p1", "p2", pool, pool, 1, 7)
	require.Equal(t, a, b)
	assert.Equal(t, MustChecksum(a), MustChecksum(b))

	c := NewGame("p1", "p2", pool, pool, 1, 8)
	assert.NotEqual(t, MustChecksum(a), MustChecksum(c))
}

func TestInitializeGame_UniqueInstanceIDs(t *testing.T) {
	state := NewGame("p1", "p2", uniformPool(1, 30), uniformPool(2, 30), 0, 3)
	ids := state.instanceIDs()
	assert.Len(t, ids, 60)
	for id := range ids {
		assert.Len(t, id, 14)
	}
}

func TestInitializeGame_InvalidFirstPlayer(t *testing.T) {
	state := NewGame("p1", "p2", uniformPool(1, 5), uniformPool(1, 5), 4, 1)
	assert.Equal(t, 0, state.CurrentPlayerIndex)
}

func TestInitializeGame_SmallPool(t *testing.T) {
	state := NewGame("p1", "p2", uniformPool(1, 2), nil, 0, 1)
	assert.Len(t, state.Players[0].Hand, 2)
	assert.Empty(t, state.Players[0].Deck)
	assert.Empty(t, state.Players[1].Hand)
}

func TestInitializeGame_CallerRNGUntouched(t *testing.T) {
	rng := NewRNG(11)
	before := rng
	InitializeGame(Setup{Player1ID: "a", Player2ID: "b", Player1Pool: uniformPool(1, 10)}, rng)
	assert.Equal(t, before, rng)
}
