// Package game implements the deterministic duel engine: a pure reducer over
// GameState values that two peers run independently in lockstep.
package game

import "slices"

// CardType is the kind of a card definition.
type CardType string

const (
	CardTypeCreature CardType = "creature"
	CardTypeSpell    CardType = "spell"
)

// Keyword is a static creature ability.
type Keyword string

const (
	KeywordCharge       Keyword = "charge"
	KeywordTaunt        Keyword = "taunt"
	KeywordDivineShield Keyword = "divine_shield"
	KeywordRanged       Keyword = "ranged"
)

// EffectType selects how a spell resolves.
type EffectType string

const (
	EffectDealDamage   EffectType = "deal_damage"
	EffectHeal         EffectType = "heal"
	EffectBuff         EffectType = "buff"
	EffectDrawCards    EffectType = "draw_cards"
	EffectResurrect    EffectType = "resurrect"
	EffectGrantKeyword EffectType = "grant_keyword"
	EffectGainMana     EffectType = "gain_mana"
)

// TargetSelector describes what a spell effect is aimed at.
type TargetSelector string

const (
	SelectAny                      TargetSelector = "any"
	SelectAnyCreature              TargetSelector = "any_creature"
	SelectEnemyHero                TargetSelector = "enemy_hero"
	SelectFriendlyHero             TargetSelector = "friendly_hero"
	SelectFriendlyCreature         TargetSelector = "friendly_creature"
	SelectEnemyCreature            TargetSelector = "enemy_creature"
	SelectAllEnemyCreatures        TargetSelector = "all_enemy_creatures"
	SelectAllEnemies               TargetSelector = "all_enemies"
	SelectAllFriendlyCreatures     TargetSelector = "all_friendly_creatures"
	SelectFriendlyGraveyard        TargetSelector = "friendly_graveyard"
	SelectFriendlyGraveyardToBoard TargetSelector = "friendly_graveyard_to_board"
)

// Phase is the match lifecycle stage. It only moves forward.
type Phase string

const (
	PhaseMulligan Phase = "mulligan"
	PhasePlaying  Phase = "playing"
	PhaseFinished Phase = "finished"
)

// SpellEffect is the resolution descriptor of a spell card.
type SpellEffect struct {
	Type    EffectType     `json:"type"`
	Amount  *int           `json:"amount,omitempty"`
	Attack  *int           `json:"attack,omitempty"`
	Health  *int           `json:"health,omitempty"`
	Keyword Keyword        `json:"keyword,omitempty"`
	Target  TargetSelector `json:"target,omitempty"`
}

// amountOr returns the effect amount, or def when none is set.
func (e SpellEffect) amountOr(def int) int {
	if e.Amount == nil {
		return def
	}
	return *e.Amount
}

// Card is an immutable catalog definition. Instances share its slices and
// pointers, so nothing in the engine writes through them.
type Card struct {
	ID       int          `json:"id"`
	Name     string       `json:"name"`
	ManaCost int          `json:"mana_cost"`
	Type     CardType     `json:"card_type"`
	Attack   *int         `json:"attack"`
	Health   *int         `json:"health"`
	Text     string       `json:"effect_text"`
	Keywords []Keyword    `json:"keywords"`
	Effect   *SpellEffect `json:"spell_effect"`
	ImageURL string       `json:"image_url,omitempty"`
}

// HasKeyword reports whether the definition carries k.
func (c Card) HasKeyword(k Keyword) bool {
	return slices.Contains(c.Keywords, k)
}

// BaseAttack is the printed attack, 0 for cards without one.
func (c Card) BaseAttack() int {
	if c.Attack == nil {
		return 0
	}
	return *c.Attack
}

// BaseHealth is the printed health, 1 for cards without one.
func (c Card) BaseHealth() int {
	if c.Health == nil {
		return 1
	}
	return *c.Health
}

// CardInstance is one copy of a card inside a running match.
type CardInstance struct {
	InstanceID           string `json:"instanceId"`
	Card                 Card   `json:"card"`
	CurrentAttack        int    `json:"currentAttack"`
	CurrentHealth        int    `json:"currentHealth"`
	MaxHealth            int    `json:"maxHealth"`
	HasAttacked          bool   `json:"hasAttacked"`
	HasSummoningSickness bool   `json:"hasSummoningSickness"`
	HasDivineShield      bool   `json:"hasDivineShield"`
}

// reset restores printed stats as if the card had just been created.
func (ci *CardInstance) reset() {
	ci.CurrentAttack = ci.Card.BaseAttack()
	ci.CurrentHealth = ci.Card.BaseHealth()
	ci.MaxHealth = ci.Card.BaseHealth()
	ci.HasAttacked = false
	ci.HasSummoningSickness = !ci.Card.HasKeyword(KeywordCharge)
	ci.HasDivineShield = ci.Card.HasKeyword(KeywordDivineShield)
}

// HeroState is a player's life total.
type HeroState struct {
	HP    int `json:"hp"`
	MaxHP int `json:"maxHp"`
}

// PlayerState holds every zone a player owns. Deck index 0 is the top.
type PlayerState struct {
	ID            string         `json:"id"`
	Hero          HeroState      `json:"hero"`
	Mana          int            `json:"mana"`
	MaxMana       int            `json:"maxMana"`
	Hand          []CardInstance `json:"hand"`
	Board         []CardInstance `json:"board"`
	Deck          []CardInstance `json:"deck"`
	Graveyard     []CardInstance `json:"graveyard"`
	FatigueDamage int            `json:"fatigueDamage"`
}

// GameState is the whole match. Treat it as a value: the reducer never
// writes into a state it was given.
type GameState struct {
	Players            [2]PlayerState  `json:"players"`
	CurrentPlayerIndex int             `json:"currentPlayerIndex"`
	TurnNumber         int             `json:"turnNumber"`
	Phase              Phase           `json:"phase"`
	Winner             string          `json:"winner,omitempty"`
	LastAction         *ActionEnvelope `json:"lastAction,omitempty"`
	MulliganReady      [2]bool         `json:"mulliganReady"`
	RNG                RNG             `json:"rng"`
}

// Current returns the player whose turn it is.
func (s *GameState) Current() *PlayerState {
	return &s.Players[s.CurrentPlayerIndex]
}

// Opponent returns the player waiting for their turn.
func (s *GameState) Opponent() *PlayerState {
	return &s.Players[1-s.CurrentPlayerIndex]
}

// PlayerIndex returns the seat of the given player id, or -1.
func (s *GameState) PlayerIndex(playerID string) int {
	for i := range s.Players {
		if s.Players[i].ID == playerID {
			return i
		}
	}
	return -1
}

// Finished reports whether a winner has been decided.
func (s *GameState) Finished() bool {
	return s.Phase == PhaseFinished
}

func indexOfInstance(cards []CardInstance, instanceID string) int {
	return slices.IndexFunc(cards, func(c CardInstance) bool {
		return c.InstanceID == instanceID
	})
}

// findOnBoard returns a pointer into the player's board, or nil.
func (p *PlayerState) findOnBoard(instanceID string) *CardInstance {
	if i := indexOfInstance(p.Board, instanceID); i >= 0 {
		return &p.Board[i]
	}
	return nil
}

func (p *PlayerState) hasTaunt() bool {
	return slices.ContainsFunc(p.Board, func(c CardInstance) bool {
		return c.Card.HasKeyword(KeywordTaunt)
	})
}
