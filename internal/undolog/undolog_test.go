package undolog

import (
	"testing"

	"github.com/arcanelabs/duelcore/internal/carddef"
	"github.com/arcanelabs/duelcore/internal/ids"
	"github.com/arcanelabs/duelcore/internal/rng"
	"github.com/arcanelabs/duelcore/internal/state"
)

func newTestState() *state.GameState {
	gs := state.NewGameState(carddef.NewFixtureProvider(), rng.NewFromSeed(1))
	return gs
}

func TestInvertMoveZoneSwapsDirection(t *testing.T) {
	a := Action{Kind: ActionMoveZone, FromZone: int(state.ZoneHand), ToZone: int(state.ZoneBattlefield)}
	inv := Invert(a)
	if inv.FromZone != int(state.ZoneBattlefield) || inv.ToZone != int(state.ZoneHand) {
		t.Fatalf("expected inverted zones, got from=%d to=%d", inv.FromZone, inv.ToZone)
	}
}

func TestInvertIsSelfInverse(t *testing.T) {
	a := Action{Kind: ActionLifeDelta, PlayerIdx: 0, Delta: 3}
	back := Invert(Invert(a))
	if back.Delta != a.Delta {
		t.Errorf("double invert should return to the original delta, got %d want %d", back.Delta, a.Delta)
	}
}

func TestInvertCounterFlipsKind(t *testing.T) {
	inv := Invert(Action{Kind: ActionAddCounter})
	if inv.Kind != ActionRemoveCounter {
		t.Errorf("expected AddCounter to invert to RemoveCounter, got %v", inv.Kind)
	}
	back := Invert(inv)
	if back.Kind != ActionAddCounter {
		t.Errorf("expected RemoveCounter to invert back to AddCounter, got %v", back.Kind)
	}
}

func TestApplyAndRewindMoveZone(t *testing.T) {
	gs := newTestState()
	id := ids.CardId(1)
	gs.Objects[id] = &state.CardInstance{Id: id, Zone: state.ZoneHand, Def: &carddef.CardDefinition{Name: "Forest", Type: carddef.TypeLand}}

	l := New()
	a := Action{Kind: ActionMoveZone, Card: id, FromZone: int(state.ZoneHand), ToZone: int(state.ZoneBattlefield)}
	if err := Apply(gs, a); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	l.Append(a)
	if gs.Objects[id].Zone != state.ZoneBattlefield {
		t.Fatalf("expected object moved to battlefield")
	}

	if err := Rewind(gs, l, 0); err != nil {
		t.Fatalf("Rewind: %v", err)
	}
	if gs.Objects[id].Zone != state.ZoneHand {
		t.Errorf("expected rewind to restore hand zone, got %v", gs.Objects[id].Zone)
	}
	if l.Len() != 0 {
		t.Errorf("expected log truncated to 0 entries after full rewind, got %d", l.Len())
	}
}

func TestRewindToTurnStartLeavesTurnChangeIntact(t *testing.T) {
	gs := newTestState()
	l := New()

	before := gs.RNG.Snapshot()
	l.Append(Action{Kind: ActionTurnChange, Turn: 1, RNGStateBefore: before})
	gs.Turn = 1
	gs.ActivePlayer = 0

	id := ids.CardId(1)
	gs.Objects[id] = &state.CardInstance{Id: id, Zone: state.ZoneHand, Def: &carddef.CardDefinition{Name: "Island", Type: carddef.TypeLand}}
	mv := Action{Kind: ActionMoveZone, Card: id, FromZone: int(state.ZoneHand), ToZone: int(state.ZoneBattlefield)}
	if err := Apply(gs, mv); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	l.Append(mv)

	if err := RewindToTurnStart(gs, l); err != nil {
		t.Fatalf("RewindToTurnStart: %v", err)
	}
	if gs.Turn != 1 || gs.ActivePlayer != 0 {
		t.Errorf("rewind-to-turn-start must not touch turn/active player, got turn=%d active=%d", gs.Turn, gs.ActivePlayer)
	}
	if gs.Objects[id].Zone != state.ZoneHand {
		t.Errorf("expected the land-play to be undone, card is in zone %v", gs.Objects[id].Zone)
	}
	if l.Len() != 1 {
		t.Errorf("expected only the ActionTurnChange entry to survive, got %d entries", l.Len())
	}
}

func TestRewindFullRestoresInitialState(t *testing.T) {
	gs := newTestState()
	l := New()

	id := ids.CardId(1)
	gs.Objects[id] = &state.CardInstance{Id: id, Zone: state.ZoneHand, Def: &carddef.CardDefinition{Name: "Mountain", Type: carddef.TypeLand}}

	before := gs.RNG.Snapshot()
	l.Append(Action{Kind: ActionTurnChange, Turn: 1, RNGStateBefore: before})
	gs.Turn = 1

	mv := Action{Kind: ActionMoveZone, Card: id, FromZone: int(state.ZoneHand), ToZone: int(state.ZoneBattlefield)}
	Apply(gs, mv)
	l.Append(mv)

	if err := RewindFull(gs, l); err != nil {
		t.Fatalf("RewindFull: %v", err)
	}
	if gs.Turn != 0 {
		t.Errorf("expected turn counter back to 0, got %d", gs.Turn)
	}
	if gs.Objects[id].Zone != state.ZoneHand {
		t.Errorf("expected full rewind to restore original zone")
	}
	if l.Len() != 0 {
		t.Errorf("expected an empty log after a full rewind, got %d entries", l.Len())
	}
}

func TestNextChoiceIdMonotonic(t *testing.T) {
	l := New()
	a := l.NextChoiceId()
	b := l.NextChoiceId()
	if b != a+1 {
		t.Errorf("expected monotonically increasing ids, got %d then %d", a, b)
	}
}

func TestTruncateRecomputesTurnStartIndex(t *testing.T) {
	l := New()
	l.Append(Action{Kind: ActionTurnChange, Turn: 1})
	l.Append(Action{Kind: ActionMoveZone})
	l.Append(Action{Kind: ActionTurnChange, Turn: 2})
	l.Append(Action{Kind: ActionMoveZone})

	l.Truncate(2) // drop back to just after turn 1's move

	if l.turnStartIndex != 0 {
		t.Errorf("expected turnStartIndex to fall back to the turn-1 TurnChange at 0, got %d", l.turnStartIndex)
	}
	if l.Len() != 2 {
		t.Errorf("expected 2 entries remaining, got %d", l.Len())
	}
}
