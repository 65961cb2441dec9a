package game

import "testing"

func intPtr(v int) *int { return &v }

func creatureCard(id, cost, attack, health int, keywords ...Keyword) Card {
	if keywords == nil {
		keywords = []Keyword{}
	}
	return Card{
		ID:       id,
		Name:     "Creature",
		ManaCost: cost,
		Type:     CardTypeCreature,
		Attack:   intPtr(attack),
		Health:   intPtr(health),
		Keywords: keywords,
	}
}

func spellCard(id, cost int, effect SpellEffect) Card {
	return Card{
		ID:       id,
		Name:     "Spell",
		ManaCost: cost,
		Type:     CardTypeSpell,
		Keywords: []Keyword{},
		Effect:   &effect,
	}
}

func newTestInstance(id string, card Card) CardInstance {
	ci := CardInstance{InstanceID: id, Card: card}
	ci.reset()
	return ci
}

// awake clears summoning sickness so the creature can attack right away.
func awake(ci CardInstance) CardInstance {
	ci.HasSummoningSickness = false
	return ci
}

func emptyPlayer(id string) PlayerState {
	return PlayerState{
		ID:        id,
		Hero:      HeroState{HP: HeroMaxHP, MaxHP: HeroMaxHP},
		Mana:      MaxMana,
		MaxMana:   MaxMana,
		Hand:      []CardInstance{},
		Board:     []CardInstance{},
		Deck:      []CardInstance{},
		Graveyard: []CardInstance{},
	}
}

// playingState is a mid-match state with p1 to act and empty zones.
func playingState() GameState {
	return GameState{
		Players:            [2]PlayerState{emptyPlayer("p1"), emptyPlayer("p2")},
		CurrentPlayerIndex: 0,
		TurnNumber:         5,
		Phase:              PhasePlaying,
		MulliganReady:      [2]bool{true, true},
		RNG:                NewRNG(7),
	}
}

func fillDeck(p *PlayerState, prefix string, n int) {
	for i := range n {
		p.Deck = append(p.Deck, newTestInstance(prefix+string(rune('a'+i)), creatureCard(100+i, 1, 1, 1)))
	}
}

func mustReduce(t *testing.T, state GameState, action Action) GameState {
	t.Helper()
	next, err := Reduce(state, action)
	if err != nil {
		t.Fatalf("Reduce(%s) failed: %v", action.Type(), err)
	}
	return next
}

func uniformPool(cost, quantity int) []PoolEntry {
	return []PoolEntry{{Card: creatureCard(1, cost, 1, 1), Quantity: quantity}}
}
