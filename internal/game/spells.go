package game

import "slices"

// resolveSpell applies a spell effect cast by the current player. Targets
// that do not fit the effect are ignored; the card is still spent.
func resolveSpell(s *GameState, e SpellEffect, target Target) {
	caster, opponent := s.Current(), s.Opponent()

	switch e.Type {
	case EffectDealDamage:
		dealSpellDamage(caster, opponent, e, target)

	case EffectHeal:
		amount := e.amountOr(0)
		switch e.Target {
		case SelectFriendlyHero:
			healHero(&caster.Hero, amount)
		case SelectEnemyHero:
			healHero(&opponent.Hero, amount)
		default:
			if c := friendlyTarget(caster, target); c != nil {
				c.CurrentHealth = min(c.MaxHealth, c.CurrentHealth+amount)
			}
		}

	case EffectBuff:
		if c := friendlyTarget(caster, target); c != nil {
			atk, hp := derefOr(e.Attack, 0), derefOr(e.Health, 0)
			c.CurrentAttack += atk
			c.CurrentHealth += hp
			c.MaxHealth += hp
		}

	case EffectGrantKeyword:
		if e.Keyword == "" {
			return
		}
		if c := friendlyTarget(caster, target); c != nil {
			grantKeyword(c, e.Keyword)
		}

	case EffectDrawCards:
		for range e.amountOr(1) {
			draw(caster)
		}

	case EffectResurrect:
		resurrect(s, caster, e)

	case EffectGainMana:
		caster.Mana += e.amountOr(1)
	}
}

func dealSpellDamage(caster, opponent *PlayerState, e SpellEffect, target Target) {
	amount := e.amountOr(0)

	switch e.Target {
	case SelectEnemyHero:
		opponent.Hero.HP -= amount
	case SelectFriendlyHero:
		// Self damage shares the heal clamp expression.
		caster.Hero.HP = min(caster.Hero.MaxHP, caster.Hero.HP-amount)
	case SelectAny, SelectAnyCreature:
		switch {
		case target.IsHero(SideEnemy):
			opponent.Hero.HP -= amount
		case target.IsHero(SideFriendly):
			caster.Hero.HP -= amount
		case target.Kind == TargetCreature:
			c := caster.findOnBoard(target.InstanceID)
			if c == nil {
				c = opponent.findOnBoard(target.InstanceID)
			}
			if c != nil {
				damageCreature(c, amount)
			}
		}
	// Single creature selectors damage the chosen creature. Earlier clients
	// ignore these selectors for damage, so a match between one of those and
	// this engine desyncs when such a spell is cast.
	case SelectEnemyCreature:
		if target.Kind == TargetCreature {
			if c := opponent.findOnBoard(target.InstanceID); c != nil {
				damageCreature(c, amount)
			}
		}
	case SelectFriendlyCreature:
		if c := friendlyTarget(caster, target); c != nil {
			damageCreature(c, amount)
		}
	case SelectAllEnemyCreatures:
		damageBoard(opponent, amount)
		sweepDead(opponent)
	case SelectAllEnemies:
		opponent.Hero.HP -= amount
		damageBoard(opponent, amount)
		sweepDead(opponent)
	case SelectAllFriendlyCreatures:
		damageBoard(caster, amount)
		sweepDead(caster)
	}
}

func damageBoard(p *PlayerState, amount int) {
	for i := range p.Board {
		damageCreature(&p.Board[i], amount)
	}
}

func healHero(h *HeroState, amount int) {
	h.HP = min(h.MaxHP, h.HP+amount)
}

// friendlyTarget resolves a creature target on the caster's own board.
func friendlyTarget(caster *PlayerState, target Target) *CardInstance {
	if target.Kind != TargetCreature {
		return nil
	}
	return caster.findOnBoard(target.InstanceID)
}

// grantKeyword gives the instance its own keyword list so the shared
// definition is untouched.
func grantKeyword(c *CardInstance, k Keyword) {
	if k == KeywordDivineShield {
		c.HasDivineShield = true
	}
	if c.Card.HasKeyword(k) {
		return
	}
	keywords := make([]Keyword, 0, len(c.Card.Keywords)+1)
	keywords = append(keywords, c.Card.Keywords...)
	c.Card.Keywords = append(keywords, k)
}

// resurrect returns random creatures from the caster's graveyard as fresh
// instances. Cards that do not fit are lost.
func resurrect(s *GameState, caster *PlayerState, e SpellEffect) {
	var dead []CardInstance
	for _, c := range caster.Graveyard {
		if c.Card.Type == CardTypeCreature {
			dead = append(dead, c)
		}
	}
	shuffleInstances(&s.RNG, dead)
	dead = dead[:min(max(e.amountOr(1), 0), len(dead))]

	for _, c := range dead {
		if i := indexOfInstance(caster.Graveyard, c.InstanceID); i >= 0 {
			caster.Graveyard = slices.Delete(caster.Graveyard, i, i+1)
		}
		c.reset()
		c.InstanceID = mintInstanceID(&s.RNG, s.instanceIDs())

		if e.Target == SelectFriendlyGraveyardToBoard {
			if len(caster.Board) < MaxBoardSize {
				caster.Board = append(caster.Board, c)
			}
		} else if len(caster.Hand) < MaxHandSize {
			caster.Hand = append(caster.Hand, c)
		}
	}
}

func derefOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}
