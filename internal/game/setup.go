package game

import (
	"fmt"
	"strconv"
	"strings"
)

// PoolEntry is one card definition and how many copies a deck holds.
type PoolEntry struct {
	Card     Card `json:"card"`
	Quantity int  `json:"quantity"`
}

// Setup is everything both peers must agree on before the first action.
// Pools must list entries in the same order on both sides.
type Setup struct {
	Player1ID        string      `json:"player1Id"`
	Player2ID        string      `json:"player2Id"`
	Player1Pool      []PoolEntry `json:"player1Pool"`
	Player2Pool      []PoolEntry `json:"player2Pool"`
	FirstPlayerIndex int         `json:"firstPlayerIndex"`
}

// InitializeGame builds the opening state: both pools are expanded into
// instances, shuffled, and the opening hands dealt off the top. The rng
// stream continues inside the returned state.
func InitializeGame(setup Setup, rng RNG) GameState {
	first := setup.FirstPlayerIndex
	if first != 0 && first != 1 {
		first = 0
	}

	state := GameState{
		CurrentPlayerIndex: first,
		Phase:              PhaseMulligan,
		RNG:                rng,
	}

	ids := make(map[string]struct{})
	deck1 := expandPool(&state.RNG, setup.Player1Pool, ids)
	deck2 := expandPool(&state.RNG, setup.Player2Pool, ids)

	state.Players[0] = newPlayer(setup.Player1ID, deck1)
	state.Players[1] = newPlayer(setup.Player2ID, deck2)
	return state
}

// NewGame seeds a fresh generator and initializes the match.
func NewGame(player1ID, player2ID string, pool1, pool2 []PoolEntry, firstPlayerIndex int, seed int64) GameState {
	return InitializeGame(Setup{
		Player1ID:        player1ID,
		Player2ID:        player2ID,
		Player1Pool:      pool1,
		Player2Pool:      pool2,
		FirstPlayerIndex: firstPlayerIndex,
	}, NewRNG(seed))
}

func newPlayer(id string, deck []CardInstance) PlayerState {
	n := min(StartingHandSize, len(deck))
	hand := make([]CardInstance, n)
	copy(hand, deck[:n])
	rest := make([]CardInstance, len(deck)-n)
	copy(rest, deck[n:])

	return PlayerState{
		ID:        id,
		Hero:      HeroState{HP: HeroMaxHP, MaxHP: HeroMaxHP},
		Hand:      hand,
		Board:     []CardInstance{},
		Deck:      rest,
		Graveyard: []CardInstance{},
	}
}

func expandPool(rng *RNG, pool []PoolEntry, ids map[string]struct{}) []CardInstance {
	var deck []CardInstance
	for _, entry := range pool {
		for range entry.Quantity {
			deck = append(deck, newInstance(rng, entry.Card, ids))
		}
	}
	if deck == nil {
		deck = []CardInstance{}
	}
	shuffleInstances(rng, deck)
	return deck
}

func newInstance(rng *RNG, card Card, ids map[string]struct{}) CardInstance {
	ci := CardInstance{
		InstanceID: mintInstanceID(rng, ids),
		Card:       card,
	}
	ci.reset()
	return ci
}

func shuffleInstances(rng *RNG, cards []CardInstance) {
	rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}

// mintInstanceID draws a 14 character base-36 id that is not in ids, and
// records it there.
func mintInstanceID(rng *RNG, ids map[string]struct{}) string {
	for {
		id := idPart(rng.uint32()) + idPart(rng.uint32())
		if _, taken := ids[id]; !taken {
			ids[id] = struct{}{}
			return id
		}
	}
}

func idPart(v uint32) string {
	s := strconv.FormatUint(uint64(v), 36)
	if len(s) < 7 {
		s = strings.Repeat("0", 7-len(s)) + s
	}
	return s
}

// instanceIDs collects every id currently in play so new ones can avoid them.
func (s *GameState) instanceIDs() map[string]struct{} {
	ids := make(map[string]struct{})
	for i := range s.Players {
		p := &s.Players[i]
		for _, zone := range [][]CardInstance{p.Hand, p.Board, p.Deck, p.Graveyard} {
			for _, c := range zone {
				ids[c.InstanceID] = struct{}{}
			}
		}
	}
	return ids
}

// manaSpark is the compensation card given to the player going second.
func manaSpark() Card {
	amount := 1
	return Card{
		ID:       ManaSparkCardID,
		Name:     "Mana Spark",
		ManaCost: 0,
		Type:     CardTypeSpell,
		Text:     "Gain 1 mana this turn",
		Keywords: []Keyword{},
		Effect:   &SpellEffect{Type: EffectGainMana, Amount: &amount},
	}
}

// String summarizes the state for logs.
func (s GameState) String() string {
	p0, p1 := &s.Players[0], &s.Players[1]
	return fmt.Sprintf("turn=%d phase=%s current=%d hp=%d/%d hand=%d/%d board=%d/%d deck=%d/%d",
		s.TurnNumber, s.Phase, s.CurrentPlayerIndex,
		p0.Hero.HP, p1.Hero.HP,
		len(p0.Hand), len(p1.Hand),
		len(p0.Board), len(p1.Board),
		len(p0.Deck), len(p1.Deck))
}
