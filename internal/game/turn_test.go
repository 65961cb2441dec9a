package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartTurn_ManaCap(t *testing.T) {
	state := playingState()
	state.Players[0].Mana, state.Players[0].MaxMana = 0, 0
	fillDeck(&state.Players[0], "d", 5)

	prev := 0
	for range 14 {
		state = StartTurn(state)
		p := state.Players[0]
		assert.LessOrEqual(t, p.MaxMana, MaxMana)
		assert.GreaterOrEqual(t, p.MaxMana, prev)
		assert.Equal(t, p.MaxMana, p.Mana)
		prev = p.MaxMana
	}
	assert.Equal(t, MaxMana, state.Players[0].MaxMana)
}

func TestStartTurn_FatigueEscalates(t *testing.T) {
	state := playingState()
	hp := HeroMaxHP
	for i := 1; i <= 4; i++ {
		state = StartTurn(state)
		hp -= i
		assert.Equal(t, i, state.Players[0].FatigueDamage)
		assert.Equal(t, hp, state.Players[0].Hero.HP)
	}
	assert.Equal(t, HeroMaxHP-10, state.Players[0].Hero.HP)
}

func TestStartTurn_BurnsWhenHandFull(t *testing.T) {
	state := playingState()
	for i := range MaxHandSize {
		state.Players[0].Hand = append(state.Players[0].Hand,
			newTestInstance(string(rune('A'+i)), creatureCard(1, 1, 1, 1)))
	}
	fillDeck(&state.Players[0], "d", 2)

	next := StartTurn(state)
	assert.Len(t, next.Players[0].Hand, MaxHandSize)
	require.Len(t, next.Players[0].Graveyard, 1)
	assert.Equal(t, "da", next.Players[0].Graveyard[0].InstanceID)
	assert.Len(t, next.Players[0].Deck, 1)
}

func TestStartTurn_ClearsBoardFlags(t *testing.T) {
	state := playingState()
	c := newTestInstance("c", creatureCard(1, 1, 1, 1))
	c.HasAttacked = true
	state.Players[0].Board = []CardInstance{c}

	next := StartTurn(state)
	assert.False(t, next.Players[0].Board[0].HasAttacked)
	assert.False(t, next.Players[0].Board[0].HasSummoningSickness)
	assert.True(t, state.Players[0].Board[0].HasAttacked, "input untouched")
	assert.Equal(t, state.TurnNumber+1, next.TurnNumber)
}

func TestEndTurn_SwitchesPlayer(t *testing.T) {
	state := playingState()
	fillDeck(&state.Players[1], "e", 3)
	state.Players[1].MaxMana, state.Players[1].Mana = 3, 0
	sick := newTestInstance("fresh", creatureCard(1, 1, 1, 1))
	state.Players[1].Board = []CardInstance{sick}

	next := mustReduce(t, state, EndTurnAction{})
	assert.Equal(t, 1, next.CurrentPlayerIndex)
	assert.Equal(t, 4, next.Players[1].MaxMana)
	assert.Equal(t, 4, next.Players[1].Mana)
	assert.Len(t, next.Players[1].Hand, 1)
	assert.False(t, next.Players[1].Board[0].HasSummoningSickness)

	back := mustReduce(t, next, EndTurnAction{})
	assert.Equal(t, 0, back.CurrentPlayerIndex)
	assert.Equal(t, state.TurnNumber+2, back.TurnNumber)
}

func TestEndTurn_FatigueCanEndGame(t *testing.T) {
	state := playingState()
	state.Players[1].Hero.HP = 1

	next := mustReduce(t, state, EndTurnAction{})
	assert.Equal(t, 0, next.Players[1].Hero.HP)
	assert.Equal(t, PhaseFinished, next.Phase)
	assert.Equal(t, "p1", next.Winner)
}

func TestEndTurn_RejectedDuringMulligan(t *testing.T) {
	state := NewGame("p1", "p2", uniformPool(1, 10), uniformPool(1, 10), 0, 1)
	_, err := Reduce(state, EndTurnAction{})
	assert.ErrorIs(t, err, ErrWrongPhase)
}
