package game

import "slices"

// ApplyAction returns the state after action. An illegal action returns
// state unchanged; both peers reach the same verdict without exchanging it.
func ApplyAction(state GameState, action Action) GameState {
	next, _ := Reduce(state, action)
	return next
}

// Reduce is ApplyAction with the rejection reason exposed. On error the
// returned state is the input state.
func Reduce(state GameState, action Action) (GameState, error) {
	if action == nil {
		return state, reject("", ErrUnknownAction)
	}
	if state.Finished() {
		return state, reject(action.Type(), ErrGameFinished)
	}

	var (
		next GameState
		err  error
	)
	switch a := action.(type) {
	case MulliganAction:
		next, err = reduceMulligan(state, a)
	case PlayCardAction:
		next, err = reducePlayCard(state, a)
	case AttackAction:
		next, err = reduceAttack(state, a)
	case EndTurnAction:
		next, err = reduceEndTurn(state)
	default:
		return state, reject(action.Type(), ErrUnknownAction)
	}
	if err != nil {
		return state, reject(action.Type(), err)
	}

	env := Envelope(action)
	next.LastAction = &env
	return next, nil
}

func reduceMulligan(state GameState, a MulliganAction) (GameState, error) {
	if state.Phase != PhaseMulligan {
		return state, ErrWrongPhase
	}
	idx := state.PlayerIndex(a.PlayerID)
	if idx < 0 {
		return state, ErrUnknownPlayer
	}
	if state.MulliganReady[idx] {
		return state, ErrAlreadyReady
	}

	next := state.Clone()
	player := &next.Players[idx]
	if len(a.ReplacedInstanceIDs) > 0 {
		swapOpeningHand(player, a.ReplacedInstanceIDs)
	}
	next.MulliganReady[idx] = true

	if next.MulliganReady[0] && next.MulliganReady[1] {
		shuffleInstances(&next.RNG, next.Players[0].Deck)
		shuffleInstances(&next.RNG, next.Players[1].Deck)

		second := next.Opponent()
		spark := newInstance(&next.RNG, manaSpark(), next.instanceIDs())
		second.Hand = append(second.Hand, spark)

		next.Phase = PhasePlaying
		startTurn(&next)
		checkWinner(&next)
	}
	return next, nil
}

// swapOpeningHand replaces the listed hand cards with draws from the top of
// the deck and puts the replaced cards on the bottom. Kept cards stay in
// order, followed by the new draws.
func swapOpeningHand(p *PlayerState, replaced []string) {
	var kept, out []CardInstance
	for _, c := range p.Hand {
		if slices.Contains(replaced, c.InstanceID) {
			out = append(out, c)
		} else {
			kept = append(kept, c)
		}
	}
	if len(out) == 0 {
		return
	}

	// A thin deck swaps only as many cards as it can replace.
	n := min(len(out), len(p.Deck))
	kept = append(kept, out[n:]...)
	out = out[:n]

	drawn := p.Deck[:n]
	deck := make([]CardInstance, 0, len(p.Deck))
	deck = append(deck, p.Deck[n:]...)
	deck = append(deck, out...)

	hand := make([]CardInstance, 0, len(kept)+n)
	hand = append(hand, kept...)
	hand = append(hand, drawn...)

	p.Hand = hand
	p.Deck = deck
}

func reducePlayCard(state GameState, a PlayCardAction) (GameState, error) {
	if state.Phase != PhasePlaying {
		return state, ErrWrongPhase
	}
	cur := state.Current()
	idx := indexOfInstance(cur.Hand, a.CardInstanceID)
	if idx < 0 {
		return state, ErrCardNotInHand
	}
	card := cur.Hand[idx].Card
	if card.ManaCost > cur.Mana {
		return state, ErrInsufficientMana
	}
	if card.Type == CardTypeCreature && len(cur.Board) >= MaxBoardSize {
		return state, ErrBoardFull
	}

	next := state.Clone()
	player, opponent := next.Current(), next.Opponent()
	inst := player.Hand[idx]
	player.Mana -= card.ManaCost
	player.Hand = removeAt(player.Hand, idx)

	switch card.Type {
	case CardTypeCreature:
		inst.HasSummoningSickness = !card.HasKeyword(KeywordCharge)
		inst.HasAttacked = false
		pos := len(player.Board)
		if a.BoardPosition != nil {
			pos = clampPosition(*a.BoardPosition, len(player.Board))
		}
		player.Board = insertAt(player.Board, pos, inst)
	case CardTypeSpell:
		if card.Effect != nil {
			resolveSpell(&next, *card.Effect, a.Target)
		}
		sweepDead(player)
		sweepDead(opponent)
		player.Graveyard = append(player.Graveyard, inst)
	}

	checkWinner(&next)
	return next, nil
}

func reduceEndTurn(state GameState) (GameState, error) {
	if state.Phase != PhasePlaying {
		return state, ErrWrongPhase
	}
	next := state.Clone()
	next.CurrentPlayerIndex = 1 - next.CurrentPlayerIndex
	startTurn(&next)
	checkWinner(&next)
	return next, nil
}

func clampPosition(pos, n int) int {
	if pos < 0 || pos > n {
		return n
	}
	return pos
}

func removeAt(cards []CardInstance, i int) []CardInstance {
	out := make([]CardInstance, 0, len(cards)-1)
	out = append(out, cards[:i]...)
	return append(out, cards[i+1:]...)
}

func insertAt(cards []CardInstance, i int, c CardInstance) []CardInstance {
	out := make([]CardInstance, 0, len(cards)+1)
	out = append(out, cards[:i]...)
	out = append(out, c)
	return append(out, cards[i:]...)
}
