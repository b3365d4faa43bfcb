// Package undolog implements the append-after-mutate undo log (spec
// §4.6): the Action algebra, the rewind-to-turn-start and full-rewind
// protocols, and intra-turn choice collection for resume/replay. The
// teacher has no undo/rewind story at all — its d.log(event) calls are a
// one-way observable trail, not a reversible log — so this package is new
// construction, written in the mutation-logging idiom the teacher
// establishes (log immediately after every committed mutation) but turned
// into something that can also be played backwards.
package undolog

import "github.com/arcanelabs/duelcore/internal/ids"

// ActionKind is the closed set of reversible primitive mutations the
// engine performs. Every higher-level operation (cast a spell, declare
// attackers, deal damage) is logged as a sequence of these, each appended
// right after the mutation it describes (see Append).
type ActionKind int

const (
	ActionMoveZone ActionKind = iota
	ActionSetTapped
	ActionLifeDelta
	ActionManaDelta
	ActionDamageDelta
	ActionAddCounter
	ActionRemoveCounter
	ActionAddModifier
	ActionRemoveModifier
	ActionSetController
	ActionAttach
	ActionDetach
	ActionTurnChange // carries the pre-turn RNG state for rewind-to-turn-start
	ActionChoiceMade // records a controller decision for replay/resume
	ActionLandsPlayedDelta
	// ActionManaPoolSnapshot carries the pool's entire prior contents
	// (ManaPoolPrior) rather than a per-color delta: mana payment taps
	// several sources and pays several colors in one atomic step from the
	// controller's point of view (spec §4.5), so one whole-pool snapshot
	// per payment/empty is simpler and just as reversible as per-symbol
	// AddMana/EmptyManaPool entries.
	ActionManaPoolSnapshot
)

func (k ActionKind) String() string {
	names := [...]string{
		"MoveZone", "SetTapped", "LifeDelta", "ManaDelta", "DamageDelta",
		"AddCounter", "RemoveCounter", "AddModifier", "RemoveModifier",
		"SetController", "Attach", "Detach", "TurnChange", "ChoiceMade",
		"LandsPlayedDelta", "ManaPoolSnapshot",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "Unknown"
}

// Action is one entry in the undo log: enough information to both replay
// forward (informational) and invert (for rewind) the mutation it
// describes. Exactly one of the typed payload fields is meaningful,
// selected by Kind — a closed sum type expressed as a flat struct, the
// same representation style the teacher uses for its own Action (summon/
// attack/activate) in types.go.
type Action struct {
	Kind ActionKind
	Turn int

	Card ids.CardId

	FromZone, ToZone     int // state.Zone values, untyped here to avoid an import cycle
	FromIndex            int // card's position in FromZone's per-player slice, for order-preserving reversal
	OldTapped, NewTapped bool

	PlayerIdx int
	Delta     int // life/mana/damage delta; for counters, the applied magnitude (always >= 0, direction is Kind)

	CounterType string

	ModifierIndex int // index into CardInstance.Modifiers, for RemoveModifier's inverse

	Source, Target ids.CardId // attach/detach

	OldController, NewController int

	RNGStateBefore []byte // captured only on ActionTurnChange

	// ManaPoolPrior is the pool's full contents (keyed by carddef.Color,
	// carried as plain int to avoid an undolog->carddef import) immediately
	// before an ActionManaPoolSnapshot's mutation.
	ManaPoolPrior map[int]int

	ChoiceId     uint64
	ChoiceDetail string
	// Payload is an opaque, msgpack-encoded recording of whatever value a
	// Controller returned for this choice point (a controller.ScriptedStep,
	// specifically). undolog doesn't know or care about its shape; package
	// snapshot decodes it to rebuild a replay shim for resume (spec §4.7).
	Payload []byte
}

// Log is an append-only sequence of Actions plus a cursor marking the
// start of the current turn, so RewindToTurnStart doesn't need to scan
// backward for the most recent ActionTurnChange entry.
type Log struct {
	entries        []Action
	turnStartIndex int
	nextChoiceId   uint64
}

func New() *Log { return &Log{} }

// Append records a new Action. Callers append AFTER the mutation has been
// applied to GameState but the log entry describes how to invert it —
// matching the "commit, then log" ordering the teacher uses for events,
// simply with enough payload to go backward too.
func (l *Log) Append(a Action) {
	if a.Kind == ActionTurnChange {
		l.turnStartIndex = len(l.entries)
	}
	l.entries = append(l.entries, a)
}

// NextChoiceId returns a fresh, monotonically increasing id for a
// controller choice point. It does not increment on snapshot encode/decode
// (those never call this method), resolving Open Question 2 by
// construction.
func (l *Log) NextChoiceId() uint64 {
	l.nextChoiceId++
	return l.nextChoiceId
}

// Entries returns the full log, oldest first.
func (l *Log) Entries() []Action { return l.entries }

// SinceTurnStart returns every Action recorded since the most recent
// ActionTurnChange, used both for RewindToTurnStart and for building the
// "choices made so far this turn" list a snapshot's replay shim needs.
func (l *Log) SinceTurnStart() []Action {
	return l.entries[l.turnStartIndex:]
}

// Invert returns the inverse Action that, if applied, undoes a. Most kinds
// invert by swapping from/to or negating a delta; TurnChange inverts by
// marking itself as an undo, so Apply restores the captured pre-turn RNG
// state, decrements the turn counter and restores the prior active player.
func Invert(a Action) Action {
	inv := a
	switch a.Kind {
	case ActionMoveZone:
		inv.FromZone, inv.ToZone = a.ToZone, a.FromZone
	case ActionSetTapped:
		inv.OldTapped, inv.NewTapped = a.NewTapped, a.OldTapped
	case ActionLifeDelta, ActionManaDelta, ActionDamageDelta, ActionLandsPlayedDelta:
		inv.Delta = -a.Delta
	case ActionAddCounter:
		inv.Kind = ActionRemoveCounter
	case ActionRemoveCounter:
		inv.Kind = ActionAddCounter
	case ActionAttach:
		inv.Kind = ActionDetach
	case ActionDetach:
		inv.Kind = ActionAttach
	case ActionSetController:
		inv.OldController, inv.NewController = a.NewController, a.OldController
	case ActionTurnChange:
		inv.Delta = -1 // marks this occurrence of Apply as the undo direction
	}
	return inv
}

// Truncate discards every entry from index i onward, used after a rewind
// to drop the undone tail so a fresh line of play can be appended (the
// "rewind, then take a different action" MCTS usage pattern spec §1
// names).
func (l *Log) Truncate(i int) {
	l.entries = l.entries[:i]
	if l.turnStartIndex >= i {
		// recompute: scan back for the last TurnChange before i
		for j := i - 1; j >= 0; j-- {
			if l.entries[j].Kind == ActionTurnChange {
				l.turnStartIndex = j
				return
			}
		}
		l.turnStartIndex = 0
	}
}

// Len returns the number of recorded actions, used as a rewind checkpoint.
func (l *Log) Len() int { return len(l.entries) }
