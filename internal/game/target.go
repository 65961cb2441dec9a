package game

// Side is relative to the player taking the action.
type Side int

const (
	SideEnemy Side = iota
	SideFriendly
)

// TargetKind discriminates Target.
type TargetKind int

const (
	TargetNone TargetKind = iota
	TargetHero
	TargetCreature
)

// Wire names for hero targets.
const (
	EnemyHeroID    = "enemy_hero"
	FriendlyHeroID = "friendly_hero"
)

// Target is either a hero on one side or a creature instance. The zero value
// means no target.
type Target struct {
	Kind       TargetKind
	Side       Side
	InstanceID string
}

// HeroTarget targets the hero on the given side.
func HeroTarget(side Side) Target {
	return Target{Kind: TargetHero, Side: side}
}

// CreatureTarget targets a creature instance on either board.
func CreatureTarget(instanceID string) Target {
	return Target{Kind: TargetCreature, InstanceID: instanceID}
}

// ParseTarget converts a wire identifier into a Target. The empty string is
// no target.
func ParseTarget(id string) Target {
	switch id {
	case "":
		return Target{}
	case EnemyHeroID:
		return HeroTarget(SideEnemy)
	case FriendlyHeroID:
		return HeroTarget(SideFriendly)
	default:
		return CreatureTarget(id)
	}
}

// IsZero reports whether no target is set.
func (t Target) IsZero() bool {
	return t.Kind == TargetNone
}

// IsHero reports whether t is the hero on side.
func (t Target) IsHero(side Side) bool {
	return t.Kind == TargetHero && t.Side == side
}

// String returns the wire identifier.
func (t Target) String() string {
	switch t.Kind {
	case TargetHero:
		if t.Side == SideFriendly {
			return FriendlyHeroID
		}
		return EnemyHeroID
	case TargetCreature:
		return t.InstanceID
	default:
		return ""
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t Target) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Target) UnmarshalText(text []byte) error {
	*t = ParseTarget(string(text))
	return nil
}
