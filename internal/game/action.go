package game

import (
	"encoding/json"
	"fmt"
	"slices"
)

// ActionType is the wire tag of an action.
type ActionType string

const (
	ActionMulligan ActionType = "mulligan"
	ActionPlayCard ActionType = "play_card"
	ActionAttack   ActionType = "attack"
	ActionEndTurn  ActionType = "end_turn"
)

// Action is one of MulliganAction, PlayCardAction, AttackAction or
// EndTurnAction. The set is closed.
type Action interface {
	Type() ActionType
	isAction()
}

// MulliganAction swaps the listed opening-hand cards for fresh draws and
// marks the player ready.
type MulliganAction struct {
	PlayerID            string
	ReplacedInstanceIDs []string
}

// PlayCardAction plays a card from the current player's hand. BoardPosition
// is ignored for spells; nil places a creature at the end of the board.
type PlayCardAction struct {
	CardInstanceID string
	Target         Target
	BoardPosition  *int
}

// AttackAction attacks with a creature on the current player's board.
type AttackAction struct {
	AttackerInstanceID string
	Target             Target
}

// EndTurnAction passes the turn.
type EndTurnAction struct{}

func (MulliganAction) Type() ActionType { return ActionMulligan }
func (PlayCardAction) Type() ActionType { return ActionPlayCard }
func (AttackAction) Type() ActionType   { return ActionAttack }
func (EndTurnAction) Type() ActionType  { return ActionEndTurn }

func (MulliganAction) isAction() {}
func (PlayCardAction) isAction() {}
func (AttackAction) isAction()   {}
func (EndTurnAction) isAction()  {}

// ActionEnvelope is the serialized form exchanged between peers.
type ActionEnvelope struct {
	Type                ActionType `json:"type"`
	PlayerID            string     `json:"playerId,omitempty"`
	ReplacedInstanceIDs []string   `json:"replacedInstanceIds,omitempty"`
	CardInstanceID      string     `json:"cardInstanceId,omitempty"`
	AttackerInstanceID  string     `json:"attackerInstanceId,omitempty"`
	TargetInstanceID    string     `json:"targetInstanceId,omitempty"`
	BoardPosition       *int       `json:"boardPosition,omitempty"`
}

// Envelope converts an action into its wire form.
func Envelope(a Action) ActionEnvelope {
	switch a := a.(type) {
	case MulliganAction:
		return ActionEnvelope{
			Type:                ActionMulligan,
			PlayerID:            a.PlayerID,
			ReplacedInstanceIDs: slices.Clone(a.ReplacedInstanceIDs),
		}
	case PlayCardAction:
		env := ActionEnvelope{
			Type:             ActionPlayCard,
			CardInstanceID:   a.CardInstanceID,
			TargetInstanceID: a.Target.String(),
		}
		if a.BoardPosition != nil {
			pos := *a.BoardPosition
			env.BoardPosition = &pos
		}
		return env
	case AttackAction:
		return ActionEnvelope{
			Type:               ActionAttack,
			AttackerInstanceID: a.AttackerInstanceID,
			TargetInstanceID:   a.Target.String(),
		}
	case EndTurnAction:
		return ActionEnvelope{Type: ActionEndTurn}
	default:
		return ActionEnvelope{}
	}
}

// Action converts the envelope back into a typed action.
func (e ActionEnvelope) Action() (Action, error) {
	switch e.Type {
	case ActionMulligan:
		return MulliganAction{
			PlayerID:            e.PlayerID,
			ReplacedInstanceIDs: slices.Clone(e.ReplacedInstanceIDs),
		}, nil
	case ActionPlayCard:
		a := PlayCardAction{
			CardInstanceID: e.CardInstanceID,
			Target:         ParseTarget(e.TargetInstanceID),
		}
		if e.BoardPosition != nil {
			pos := *e.BoardPosition
			a.BoardPosition = &pos
		}
		return a, nil
	case ActionAttack:
		return AttackAction{
			AttackerInstanceID: e.AttackerInstanceID,
			Target:             ParseTarget(e.TargetInstanceID),
		}, nil
	case ActionEndTurn:
		return EndTurnAction{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, e.Type)
	}
}

// MarshalAction encodes an action as JSON.
func MarshalAction(a Action) ([]byte, error) {
	if a == nil {
		return nil, fmt.Errorf("%w: nil action", ErrUnknownAction)
	}
	return json.Marshal(Envelope(a))
}

// UnmarshalAction decodes an action written by MarshalAction.
func UnmarshalAction(data []byte) (Action, error) {
	var env ActionEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode action: %w", err)
	}
	return env.Action()
}
