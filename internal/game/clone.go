package game

import "slices"

// Clone returns a copy of the state that shares no mutable memory with s.
// Card definitions are shared; the engine never writes through them.
func (s GameState) Clone() GameState {
	out := s
	for i := range out.Players {
		out.Players[i] = s.Players[i].clone()
	}
	if s.LastAction != nil {
		env := *s.LastAction
		env.ReplacedInstanceIDs = slices.Clone(env.ReplacedInstanceIDs)
		out.LastAction = &env
	}
	return out
}

func (p PlayerState) clone() PlayerState {
	p.Hand = slices.Clone(p.Hand)
	p.Board = slices.Clone(p.Board)
	p.Deck = slices.Clone(p.Deck)
	p.Graveyard = slices.Clone(p.Graveyard)
	return p
}
