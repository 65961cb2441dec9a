package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecksum(t *testing.T) {
	state := NewGame("p1", "p2", uniformPool(1, 30), uniformPool(2, 30), 0, 77)

	sum, err := Checksum(state)
	require.NoError(t, err)
	assert.Len(t, sum, 64)
	assert.Equal(t, sum, MustChecksum(state.Clone()))

	withAction := state.Clone()
	withAction.LastAction = &ActionEnvelope{Type: ActionEndTurn}
	assert.Equal(t, sum, MustChecksum(withAction), "last action is not hashed")
	assert.NotNil(t, withAction.LastAction, "checksum does not clear the caller's field")

	changed := state.Clone()
	changed.Players[1].Hero.HP--
	assert.NotEqual(t, sum, MustChecksum(changed))

	advanced := state.Clone()
	advanced.RNG.Next()
	assert.NotEqual(t, sum, MustChecksum(advanced), "rng position is part of the state")
}
