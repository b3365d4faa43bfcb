// Package events is the engine's observable event sink: every state
// mutation is reported here after it is committed, the same way the
// teacher's internal/log package trails every Duel mutation with a
// d.log(event) call. Snapshot replay suppresses this sink entirely rather
// than trying to distinguish already-seen events from new ones.
package events

// Type enumerates the events duelcore can emit. The vocabulary is the MTG
// analog of the teacher's EventType: zone moves and life/mana changes
// replace summon/HP events, PriorityPass/StackResolve replace
// ChainLink/ChainResolve, and Rewind/Snapshot* events have no teacher
// precedent since tcgx has no undo/save story.
type Type int

const (
	StepChange Type = iota
	TurnChange
	Draw
	ZoneMove
	TapCard
	UntapCard
	LifeChange
	ManaAdded
	ManaSpent
	CastSpell
	ActivateAbility
	StackResolve
	Fizzle
	PriorityPass
	DeclareAttackers
	DeclareBlockers
	CombatDamage
	Destroyed
	Sacrificed
	CounterAdded
	CounterRemoved
	AttachmentChanged
	ChoiceMade
	Shuffle
	Win
	Rewind
	SnapshotTaken
	SnapshotResumed
)

func (t Type) String() string {
	switch t {
	case StepChange:
		return "StepChange"
	case TurnChange:
		return "TurnChange"
	case Draw:
		return "Draw"
	case ZoneMove:
		return "ZoneMove"
	case TapCard:
		return "TapCard"
	case UntapCard:
		return "UntapCard"
	case LifeChange:
		return "LifeChange"
	case ManaAdded:
		return "ManaAdded"
	case ManaSpent:
		return "ManaSpent"
	case CastSpell:
		return "CastSpell"
	case ActivateAbility:
		return "ActivateAbility"
	case StackResolve:
		return "StackResolve"
	case Fizzle:
		return "Fizzle"
	case PriorityPass:
		return "PriorityPass"
	case DeclareAttackers:
		return "DeclareAttackers"
	case DeclareBlockers:
		return "DeclareBlockers"
	case CombatDamage:
		return "CombatDamage"
	case Destroyed:
		return "Destroyed"
	case Sacrificed:
		return "Sacrificed"
	case CounterAdded:
		return "CounterAdded"
	case CounterRemoved:
		return "CounterRemoved"
	case AttachmentChanged:
		return "AttachmentChanged"
	case ChoiceMade:
		return "ChoiceMade"
	case Shuffle:
		return "Shuffle"
	case Win:
		return "Win"
	case Rewind:
		return "Rewind"
	case SnapshotTaken:
		return "SnapshotTaken"
	case SnapshotResumed:
		return "SnapshotResumed"
	default:
		return "Unknown"
	}
}

// Event is a single observable occurrence. Player is -1 for events with no
// single acting player (e.g. StepChange).
type Event struct {
	Seq     int
	Turn    int
	Step    string
	Player  int
	Type    Type
	Card    string
	Details string
}
