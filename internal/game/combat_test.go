package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttack_LethalOnHero(t *testing.T) {
	state := playingState()
	state.Players[1].Hero.HP = 5
	state.Players[0].Board = []CardInstance{awake(newTestInstance("a", creatureCard(1, 5, 5, 1)))}

	next := mustReduce(t, state, AttackAction{AttackerInstanceID: "a", Target: HeroTarget(SideEnemy)})
	assert.Equal(t, 0, next.Players[1].Hero.HP)
	assert.Equal(t, PhaseFinished, next.Phase)
	assert.Equal(t, "p1", next.Winner)
	assert.True(t, next.Players[0].Board[0].HasAttacked)
}

func TestAttack_CombatTrade(t *testing.T) {
	state := playingState()
	state.Players[0].Board = []CardInstance{awake(newTestInstance("atk", creatureCard(1, 3, 3, 3)))}
	state.Players[1].Board = []CardInstance{newTestInstance("def", creatureCard(2, 2, 2, 4))}

	next := mustReduce(t, state, AttackAction{AttackerInstanceID: "atk", Target: CreatureTarget("def")})

	require.Len(t, next.Players[0].Board, 1)
	require.Len(t, next.Players[1].Board, 1)
	atk, def := next.Players[0].Board[0], next.Players[1].Board[0]
	assert.Equal(t, 1, def.CurrentHealth)
	assert.Equal(t, 1, atk.CurrentHealth)
	assert.True(t, atk.HasAttacked)
	assert.False(t, def.HasAttacked)
	assert.Equal(t, HeroMaxHP, next.Players[1].Hero.HP)
}

func TestAttack_DivineShieldAbsorbsOnce(t *testing.T) {
	state := playingState()
	state.Players[0].Board = []CardInstance{
		awake(newTestInstance("a1", creatureCard(1, 5, 5, 10))),
		awake(newTestInstance("a2", creatureCard(1, 5, 5, 10))),
	}
	state.Players[1].Board = []CardInstance{newTestInstance("shield", creatureCard(2, 2, 2, 2, KeywordDivineShield))}
	require.True(t, state.Players[1].Board[0].HasDivineShield)

	first := mustReduce(t, state, AttackAction{AttackerInstanceID: "a1", Target: CreatureTarget("shield")})
	require.Len(t, first.Players[1].Board, 1)
	shield := first.Players[1].Board[0]
	assert.False(t, shield.HasDivineShield)
	assert.Equal(t, 2, shield.CurrentHealth)

	second := mustReduce(t, first, AttackAction{AttackerInstanceID: "a2", Target: CreatureTarget("shield")})
	assert.Empty(t, second.Players[1].Board)
	require.Len(t, second.Players[1].Graveyard, 1)
	assert.Equal(t, -3, second.Players[1].Graveyard[0].CurrentHealth)
}

func TestAttack_Taunt(t *testing.T) {
	state := playingState()
	state.Players[0].Board = []CardInstance{awake(newTestInstance("a", creatureCard(1, 1, 1, 5)))}
	state.Players[1].Board = []CardInstance{
		newTestInstance("plain", creatureCard(2, 1, 1, 5)),
		newTestInstance("wall", creatureCard(3, 1, 0, 5, KeywordTaunt)),
	}

	for name, target := range map[string]Target{
		"hero":      HeroTarget(SideEnemy),
		"non-taunt": CreatureTarget("plain"),
	} {
		t.Run(name, func(t *testing.T) {
			next, err := Reduce(state, AttackAction{AttackerInstanceID: "a", Target: target})
			assert.ErrorIs(t, err, ErrTauntBlocks)
			assert.Equal(t, MustChecksum(state), MustChecksum(next))
		})
	}

	next := mustReduce(t, state, AttackAction{AttackerInstanceID: "a", Target: CreatureTarget("wall")})
	assert.Equal(t, 4, next.Players[1].Board[1].CurrentHealth)
}

func TestAttack_RangedTakesNoRetaliation(t *testing.T) {
	state := playingState()
	state.Players[0].Board = []CardInstance{awake(newTestInstance("archer", creatureCard(1, 2, 2, 1, KeywordRanged)))}
	state.Players[1].Board = []CardInstance{newTestInstance("brute", creatureCard(2, 5, 5, 5))}

	next := mustReduce(t, state, AttackAction{AttackerInstanceID: "archer", Target: CreatureTarget("brute")})
	require.Len(t, next.Players[0].Board, 1)
	assert.Equal(t, 1, next.Players[0].Board[0].CurrentHealth)
	assert.Equal(t, 3, next.Players[1].Board[0].CurrentHealth)
}

func TestAttack_BothDie(t *testing.T) {
	state := playingState()
	state.Players[0].Board = []CardInstance{awake(newTestInstance("a", creatureCard(1, 3, 3, 3)))}
	state.Players[1].Board = []CardInstance{newTestInstance("d", creatureCard(2, 3, 3, 3))}

	next := mustReduce(t, state, AttackAction{AttackerInstanceID: "a", Target: CreatureTarget("d")})
	assert.Empty(t, next.Players[0].Board)
	assert.Empty(t, next.Players[1].Board)
	assert.Len(t, next.Players[0].Graveyard, 1)
	assert.Len(t, next.Players[1].Graveyard, 1)
}

func TestAttack_Rejections(t *testing.T) {
	state := playingState()
	attacked := awake(newTestInstance("tired", creatureCard(1, 1, 2, 2)))
	attacked.HasAttacked = true
	state.Players[0].Board = []CardInstance{
		newTestInstance("sick", creatureCard(1, 1, 2, 2)),
		attacked,
		awake(newTestInstance("pacifist", creatureCard(2, 1, 0, 2))),
		awake(newTestInstance("ready", creatureCard(3, 1, 2, 2))),
	}
	state.Players[1].Board = []CardInstance{awake(newTestInstance("enemy", creatureCard(4, 1, 1, 1)))}

	tests := []struct {
		name     string
		attacker string
		target   Target
		want     error
	}{
		{"not on board", "ghost", HeroTarget(SideEnemy), ErrAttackerNotFound},
		{"enemy creature as attacker", "enemy", HeroTarget(SideEnemy), ErrAttackerNotFound},
		{"summoning sick", "sick", HeroTarget(SideEnemy), ErrSummoningSick},
		{"already attacked", "tired", HeroTarget(SideEnemy), ErrAlreadyAttacked},
		{"zero attack", "pacifist", HeroTarget(SideEnemy), ErrNoAttack},
		{"missing target", "ready", CreatureTarget("nobody"), ErrTargetNotFound},
		{"own hero", "ready", HeroTarget(SideFriendly), ErrTargetNotFound},
		{"no target", "ready", Target{}, ErrTargetNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := Reduce(state, AttackAction{AttackerInstanceID: tt.attacker, Target: tt.target})
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, MustChecksum(state), MustChecksum(next))
		})
	}
}

func TestAttack_ChargeCanAttackImmediately(t *testing.T) {
	state := playingState()
	state.Players[0].Hand = []CardInstance{newTestInstance("rusher", creatureCard(1, 2, 3, 1, KeywordCharge))}

	next := mustReduce(t, state, PlayCardAction{CardInstanceID: "rusher"})
	assert.True(t, CanAttack(next, "rusher"))
	next = mustReduce(t, next, AttackAction{AttackerInstanceID: "rusher", Target: HeroTarget(SideEnemy)})
	assert.Equal(t, HeroMaxHP-3, next.Players[1].Hero.HP)
}
