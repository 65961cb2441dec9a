package game

func reduceAttack(state GameState, a AttackAction) (GameState, error) {
	if state.Phase != PhasePlaying {
		return state, ErrWrongPhase
	}
	cur, opp := state.Current(), state.Opponent()
	ai := indexOfInstance(cur.Board, a.AttackerInstanceID)
	if ai < 0 {
		return state, ErrAttackerNotFound
	}
	attacker := cur.Board[ai]
	switch {
	case attacker.HasAttacked:
		return state, ErrAlreadyAttacked
	case attacker.HasSummoningSickness:
		return state, ErrSummoningSick
	case attacker.CurrentAttack <= 0:
		return state, ErrNoAttack
	}

	taunt := opp.hasTaunt()
	ti := -1
	switch {
	case a.Target.IsHero(SideEnemy):
		if taunt {
			return state, ErrTauntBlocks
		}
	case a.Target.Kind == TargetCreature:
		ti = indexOfInstance(opp.Board, a.Target.InstanceID)
		if ti < 0 {
			return state, ErrTargetNotFound
		}
		if taunt && !opp.Board[ti].Card.HasKeyword(KeywordTaunt) {
			return state, ErrTauntBlocks
		}
	default:
		return state, ErrTargetNotFound
	}

	next := state.Clone()
	player, opponent := next.Current(), next.Opponent()
	atk := &player.Board[ai]

	if ti < 0 {
		opponent.Hero.HP -= atk.CurrentAttack
		atk.HasAttacked = true
	} else {
		def := &opponent.Board[ti]
		damageCreature(def, atk.CurrentAttack)
		if !atk.Card.HasKeyword(KeywordRanged) {
			damageCreature(atk, def.CurrentAttack)
		}
		atk.HasAttacked = true
		sweepDead(player)
		sweepDead(opponent)
	}

	checkWinner(&next)
	return next, nil
}

// damageCreature applies damage, letting an active divine shield absorb the
// whole hit. Non-positive damage is ignored and does not pop the shield.
func damageCreature(c *CardInstance, damage int) {
	if damage <= 0 {
		return
	}
	if c.HasDivineShield {
		c.HasDivineShield = false
		return
	}
	c.CurrentHealth -= damage
}

// sweepDead moves creatures at or below zero health to the graveyard,
// keeping board order.
func sweepDead(p *PlayerState) {
	alive := make([]CardInstance, 0, len(p.Board))
	for _, c := range p.Board {
		if c.CurrentHealth <= 0 {
			p.Graveyard = append(p.Graveyard, c)
			continue
		}
		alive = append(alive, c)
	}
	p.Board = alive
}
