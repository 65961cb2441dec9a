package game

// Match-wide limits. Both peers must be built with the same values.
const (
	HeroMaxHP        = 30
	StartingHandSize = 3
	MaxHandSize      = 10
	MaxBoardSize     = 7
	MaxMana          = 10
)

// ManaSparkCardID is the sentinel definition id of the compensation card
// handed to the player who goes second. It never appears in a card pool.
const ManaSparkCardID = -1
