package game

import (
	"errors"
	"fmt"
)

// Reasons an action is rejected. ApplyAction swallows them; Reduce returns
// them wrapped in a RejectionError for logging.
var (
	ErrGameFinished     = errors.New("game is finished")
	ErrWrongPhase       = errors.New("action not allowed in this phase")
	ErrUnknownPlayer    = errors.New("unknown player")
	ErrAlreadyReady     = errors.New("player already finished mulligan")
	ErrCardNotInHand    = errors.New("card not in hand")
	ErrInsufficientMana = errors.New("not enough mana")
	ErrBoardFull        = errors.New("board is full")
	ErrAttackerNotFound = errors.New("attacker not on board")
	ErrAlreadyAttacked  = errors.New("creature already attacked this turn")
	ErrSummoningSick    = errors.New("creature has summoning sickness")
	ErrNoAttack         = errors.New("creature has no attack")
	ErrTauntBlocks      = errors.New("a taunt creature must be attacked first")
	ErrTargetNotFound   = errors.New("target not found")
	ErrUnknownAction    = errors.New("unknown action")
)

// RejectionError records why an action left the state unchanged.
type RejectionError struct {
	Action ActionType
	Err    error
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("%s rejected: %v", e.Action, e.Err)
}

func (e *RejectionError) Unwrap() error {
	return e.Err
}

func reject(t ActionType, err error) error {
	return &RejectionError{Action: t, Err: err}
}
