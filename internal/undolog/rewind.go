package undolog

import (
	"github.com/arcanelabs/duelcore/internal/carddef"
	"github.com/arcanelabs/duelcore/internal/engineerr"
	"github.com/arcanelabs/duelcore/internal/ids"
	"github.com/arcanelabs/duelcore/internal/state"
)

// colorFromInt converts the plain-int color key an Action.ManaPoolPrior map
// uses (undolog can't import carddef's Color type into the struct tag
// without a cycle risk, so it's stored as int) back to carddef.Color.
func colorFromInt(c int) carddef.Color { return carddef.Color(c) }

// Apply mutates gs according to a. Engine code does not call it for
// forward play: it mutates state directly and then appends the matching
// Action (see MoveCard); Rewind calls Apply with Invert(a) to undo.
func Apply(gs *state.GameState, a Action) error {
	switch a.Kind {
	case ActionMoveZone:
		obj, ok := gs.Objects[a.Card]
		if !ok {
			return engineerr.NewInvariantViolation("undolog: move unknown card %v", a.Card)
		}
		gs.RemoveFromZone(a.PlayerIdx, state.Zone(a.FromZone), a.Card)
		obj.Zone = state.Zone(a.ToZone)
		gs.InsertIntoZone(a.PlayerIdx, state.Zone(a.ToZone), a.Card, a.FromIndex)
	case ActionSetTapped:
		if obj, ok := gs.Objects[a.Card]; ok {
			obj.Tapped = a.NewTapped
		}
	case ActionLifeDelta:
		gs.Players[a.PlayerIdx].Life += a.Delta
	case ActionDamageDelta:
		if obj, ok := gs.Objects[a.Card]; ok {
			obj.DamageMarked += a.Delta
		}
	case ActionAddCounter:
		if obj, ok := gs.Objects[a.Card]; ok {
			obj.Counters[a.CounterType] += a.Delta
		}
	case ActionRemoveCounter:
		if obj, ok := gs.Objects[a.Card]; ok {
			obj.Counters[a.CounterType] -= a.Delta
		}
	case ActionAttach:
		if obj, ok := gs.Objects[a.Target]; ok {
			obj.AttachedTo = a.Source
		}
	case ActionDetach:
		if obj, ok := gs.Objects[a.Target]; ok {
			obj.AttachedTo = 0
		}
	case ActionSetController:
		if obj, ok := gs.Objects[a.Card]; ok {
			obj.Controller = a.NewController
		}
	case ActionTurnChange:
		// Forward (a TurnChange as originally logged) only needs the RNG
		// snapshot recorded — Turn/ActivePlayer are advanced directly by
		// turnmachine.runTurn. Undoing one (Invert flips the sign) must
		// reverse the turn counter and restore the active player recorded
		// in PlayerIdx too, since this is the only Action that touches either.
		gs.RNG.Restore(a.RNGStateBefore)
		if a.Delta < 0 {
			gs.Turn--
			gs.ActivePlayer = a.PlayerIdx
		}
	case ActionLandsPlayedDelta:
		gs.Players[a.PlayerIdx].LandsPlayedThisTurn += a.Delta
	case ActionManaPoolSnapshot:
		pool := gs.Players[a.PlayerIdx].ManaPool
		pool.Clear()
		for color, n := range a.ManaPoolPrior {
			for i := 0; i < n; i++ {
				pool.Add(colorFromInt(color))
			}
		}
	case ActionChoiceMade:
		// informational only; nothing to apply to GameState.
	}
	return nil
}

// MoveCard is the single channel every zone transfer must go through: it
// splices id out of its current zone's per-player slice (if any), flips
// CardInstance.Zone, appends id to to's slice (if any), and logs an
// ActionMoveZone entry carrying the index id occupied in its prior zone —
// so a later Rewind reinserts it at exactly that position rather than just
// appending it back (spec §4.1's MoveCard{from_index, from_zone, to_zone}
// contract). CardInstance.Zone and the Player.Library/Hand/Graveyard/Exile
// slices are two separate sources of truth for zone membership; this is the
// only function allowed to touch both at once.
func MoveCard(l *Log, gs *state.GameState, id ids.CardId, to state.Zone) {
	obj, ok := gs.Objects[id]
	if !ok {
		return
	}
	from := obj.Zone
	fromIndex := gs.RemoveFromZone(obj.Owner, from, id)
	obj.Zone = to
	gs.InsertIntoZone(obj.Owner, to, id, -1) // -1: append, forward moves don't need order-preserving insertion
	l.Append(Action{
		Kind:      ActionMoveZone,
		Turn:      gs.Turn,
		Card:      id,
		PlayerIdx: obj.Owner,
		FromZone:  int(from),
		ToZone:    int(to),
		FromIndex: fromIndex,
	})
}

// Rewind undoes every Action from index i to the end of the log, in
// reverse order, then truncates the log to length i. This is the engine's
// primary "rewind to a prior decision point" primitive; RewindToTurnStart
// and RewindFull are the two names spec §4.6 gives the common cases.
func Rewind(gs *state.GameState, l *Log, i int) error {
	entries := l.Entries()
	for j := len(entries) - 1; j >= i; j-- {
		if err := Apply(gs, Invert(entries[j])); err != nil {
			return err
		}
	}
	l.Truncate(i)
	return nil
}

// RewindToTurnStart undoes every action recorded since the current turn
// began, stopping short of the turn's own ActionTurnChange entry: that
// entry is left in place (and left applied) rather than undone, so the
// resulting state is "the game at the start of the current turn" with the
// turn change itself still intact, matching the rewind-to-turn-start
// contract's "push ChangeTurn back rather than undoing it" rule.
func RewindToTurnStart(gs *state.GameState, l *Log) error {
	return Rewind(gs, l, l.turnStartIndex+1)
}

// RewindFull undoes the entire log, returning the game to its initial
// state — spec §8's "rewind to initial state is bit-exact" property.
func RewindFull(gs *state.GameState, l *Log) error {
	return Rewind(gs, l, 0)
}
