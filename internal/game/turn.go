package game

// StartTurn runs the start-of-turn procedure for the current player on a
// copy of state.
func StartTurn(state GameState) GameState {
	next := state.Clone()
	startTurn(&next)
	return next
}

func startTurn(s *GameState) {
	s.TurnNumber++
	p := s.Current()
	if p.MaxMana < MaxMana {
		p.MaxMana++
	}
	p.Mana = p.MaxMana
	draw(p)
	for i := range p.Board {
		p.Board[i].HasAttacked = false
		p.Board[i].HasSummoningSickness = false
	}
}

// draw moves the top card of the deck into the hand. An empty deck deals
// escalating fatigue; a full hand burns the card.
func draw(p *PlayerState) {
	if len(p.Deck) == 0 {
		p.FatigueDamage++
		p.Hero.HP -= p.FatigueDamage
		return
	}

	card := p.Deck[0]
	p.Deck = p.Deck[1:]
	if len(p.Hand) >= MaxHandSize {
		p.Graveyard = append(p.Graveyard, card)
		return
	}
	p.Hand = append(p.Hand, card)
}

// checkWinner ends the match when a hero is at or below zero. If both are,
// the active player loses.
func checkWinner(s *GameState) {
	dead0 := s.Players[0].Hero.HP <= 0
	dead1 := s.Players[1].Hero.HP <= 0

	switch {
	case dead0 && dead1:
		s.Winner = s.Opponent().ID
	case dead0:
		s.Winner = s.Players[1].ID
	case dead1:
		s.Winner = s.Players[0].ID
	default:
		return
	}
	s.Phase = PhaseFinished
}
