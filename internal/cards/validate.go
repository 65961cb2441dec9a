// Package cards manages the card catalog: loading and validating card
// definitions, importing them from CSV, checking decks and turning them
// into the pools the engine deals from.
package cards

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ramonehamilton/spellduel/internal/game"
)

// MaxManaCost is the highest printable mana cost.
const MaxManaCost = 10

var validKeywords = []game.Keyword{
	game.KeywordCharge,
	game.KeywordTaunt,
	game.KeywordDivineShield,
	game.KeywordRanged,
}

var validEffects = []game.EffectType{
	game.EffectDealDamage,
	game.EffectHeal,
	game.EffectBuff,
	game.EffectDrawCards,
	game.EffectResurrect,
	game.EffectGrantKeyword,
	game.EffectGainMana,
}

var validSelectors = []game.TargetSelector{
	game.SelectAny,
	game.SelectAnyCreature,
	game.SelectEnemyHero,
	game.SelectFriendlyHero,
	game.SelectFriendlyCreature,
	game.SelectEnemyCreature,
	game.SelectAllEnemyCreatures,
	game.SelectAllEnemies,
	game.SelectAllFriendlyCreatures,
	game.SelectFriendlyGraveyard,
	game.SelectFriendlyGraveyardToBoard,
}

// ValidationError lists everything wrong with one card definition.
type ValidationError struct {
	Name     string
	Problems []string
}

func (e *ValidationError) Error() string {
	name := e.Name
	if name == "" {
		name = "<unnamed>"
	}
	return fmt.Sprintf("invalid card %s: %s", name, strings.Join(e.Problems, ", "))
}

// Validate checks a card definition. It returns nil or a *ValidationError.
func Validate(card game.Card) error {
	var problems []string

	if strings.TrimSpace(card.Name) == "" {
		problems = append(problems, "name is required")
	}
	if card.ManaCost < 0 || card.ManaCost > MaxManaCost {
		problems = append(problems, fmt.Sprintf("mana cost must be 0-%d", MaxManaCost))
	}

	switch card.Type {
	case game.CardTypeCreature:
		if card.Attack == nil || *card.Attack < 0 {
			problems = append(problems, "creatures need a valid attack")
		}
		if card.Health == nil || *card.Health < 1 {
			problems = append(problems, "creatures need a valid health")
		}
	case game.CardTypeSpell:
		problems = append(problems, effectProblems(card.Effect)...)
	default:
		problems = append(problems, "type must be creature or spell")
	}

	for _, kw := range card.Keywords {
		if !slices.Contains(validKeywords, kw) {
			problems = append(problems, fmt.Sprintf("invalid keyword: %s", kw))
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Name: card.Name, Problems: problems}
	}
	return nil
}

func effectProblems(effect *game.SpellEffect) []string {
	if effect == nil {
		return []string{"spells need a spell effect"}
	}

	var problems []string
	if !slices.Contains(validEffects, effect.Type) {
		problems = append(problems, fmt.Sprintf("invalid spell effect: %q", effect.Type))
	}
	if effect.Target != "" && !slices.Contains(validSelectors, effect.Target) {
		problems = append(problems, fmt.Sprintf("invalid spell target: %s", effect.Target))
	}
	if effect.Type == game.EffectGrantKeyword && !slices.Contains(validKeywords, effect.Keyword) {
		problems = append(problems, fmt.Sprintf("invalid granted keyword: %q", effect.Keyword))
	}
	return problems
}
