package game

// These helpers gate input before an action is built. The reducer
// re-validates everything on its own.

// CanPlayCard reports whether the current player can play the card now.
func CanPlayCard(state GameState, instanceID string) bool {
	if state.Phase != PhasePlaying {
		return false
	}
	p := state.Current()
	i := indexOfInstance(p.Hand, instanceID)
	if i < 0 {
		return false
	}
	card := p.Hand[i].Card
	if card.ManaCost > p.Mana {
		return false
	}
	if card.Type == CardTypeCreature && len(p.Board) >= MaxBoardSize {
		return false
	}
	return true
}

// CanAttack reports whether the creature can be declared as an attacker.
func CanAttack(state GameState, instanceID string) bool {
	if state.Phase != PhasePlaying {
		return false
	}
	c := state.Current().findOnBoard(instanceID)
	if c == nil {
		return false
	}
	return !c.HasAttacked && !c.HasSummoningSickness && c.CurrentAttack > 0
}

// ValidTargets lists what the attacker may hit. Taunt creatures, when
// present, are the only choices.
func ValidTargets(state GameState, attackerID string) []Target {
	if state.Phase != PhasePlaying {
		return nil
	}
	if state.Current().findOnBoard(attackerID) == nil {
		return nil
	}
	opp := state.Opponent()

	var targets []Target
	if opp.hasTaunt() {
		for _, c := range opp.Board {
			if c.Card.HasKeyword(KeywordTaunt) {
				targets = append(targets, CreatureTarget(c.InstanceID))
			}
		}
		return targets
	}
	for _, c := range opp.Board {
		targets = append(targets, CreatureTarget(c.InstanceID))
	}
	return append(targets, HeroTarget(SideEnemy))
}

// NeedsTarget reports whether playing the card requires picking one target.
func NeedsTarget(card Card) bool {
	if card.Type != CardTypeSpell || card.Effect == nil {
		return false
	}
	switch card.Effect.Target {
	case SelectAny, SelectAnyCreature, SelectFriendlyCreature, SelectEnemyCreature:
		return true
	}
	return false
}

// SpellTargets lists legal targets for a spell that needs one, ordered
// friendly creatures, enemy creatures, then heroes.
func SpellTargets(state GameState, card Card) []Target {
	if card.Effect == nil || state.Phase != PhasePlaying {
		return nil
	}
	p, opp := state.Current(), state.Opponent()

	var targets []Target
	switch card.Effect.Target {
	case SelectAny:
		targets = appendCreatures(targets, p.Board)
		targets = appendCreatures(targets, opp.Board)
		targets = append(targets, HeroTarget(SideEnemy), HeroTarget(SideFriendly))
	case SelectAnyCreature:
		targets = appendCreatures(targets, p.Board)
		targets = appendCreatures(targets, opp.Board)
	case SelectFriendlyCreature:
		targets = appendCreatures(targets, p.Board)
	case SelectEnemyCreature:
		targets = appendCreatures(targets, opp.Board)
	}
	return targets
}

func appendCreatures(targets []Target, board []CardInstance) []Target {
	for _, c := range board {
		targets = append(targets, CreatureTarget(c.InstanceID))
	}
	return targets
}
