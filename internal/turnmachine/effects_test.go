package turnmachine

import (
	"testing"

	"github.com/arcanelabs/duelcore/internal/carddef"
	"github.com/arcanelabs/duelcore/internal/events"
	"github.com/arcanelabs/duelcore/internal/ids"
	"github.com/arcanelabs/duelcore/internal/state"
	"github.com/arcanelabs/duelcore/internal/undolog"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	cfg := Config{
		Deck0: []string{"Mountain"}, Deck1: []string{"Island"},
		Provider: carddef.NewFixtureProvider(), Sink: events.NewMemoryLog(), NoShuffle: true,
	}
	eng, err := New(cfg, newScripted(t, "P0"), newScripted(t, "P1"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return eng
}

// TestDestroyTargetsIsReversible exercises review comment 3: destroyTargets
// must log a reversible Action, not just the zone/graveyard mutation.
func TestDestroyTargetsIsReversible(t *testing.T) {
	eng := newTestEngine(t)
	gs := eng.State
	def, err := gs.Provider.Lookup("Grizzly Bears")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	bear := gs.CreateObject(def, 0)
	bear.Zone = state.ZoneBattlefield

	mark := eng.Log.Len()
	eng.destroyTargets(gs, []ids.CardId{bear.Id})
	if bear.Zone != state.ZoneGraveyard {
		t.Fatalf("expected bear in graveyard, got %v", bear.Zone)
	}
	if len(gs.Players[0].Graveyard) != 1 || gs.Players[0].Graveyard[0] != bear.Id {
		t.Fatalf("expected bear recorded in owner's graveyard slice, got %v", gs.Players[0].Graveyard)
	}

	if err := undolog.Rewind(gs, eng.Log, mark); err != nil {
		t.Fatalf("Rewind: %v", err)
	}
	if bear.Zone != state.ZoneBattlefield {
		t.Errorf("expected rewind to restore battlefield zone, got %v", bear.Zone)
	}
	if len(gs.Players[0].Graveyard) != 0 {
		t.Errorf("expected graveyard slice emptied by rewind, got %v", gs.Players[0].Graveyard)
	}
}

// TestAddCountersClampedRemovalIsExactlyReversible exercises the
// Action.Delta fix: removing more counters than a creature has clamps at
// zero, and rewind must restore the pre-clamp count, not overshoot it.
func TestAddCountersClampedRemovalIsExactlyReversible(t *testing.T) {
	eng := newTestEngine(t)
	gs := eng.State
	def, _ := gs.Provider.Lookup("Grizzly Bears")
	bear := gs.CreateObject(def, 0)
	bear.Zone = state.ZoneBattlefield
	bear.Counters["+1/+1"] = 1

	mark := eng.Log.Len()
	eng.addCounters(gs, []ids.CardId{bear.Id}, "+1/+1", -3)
	if bear.Counters["+1/+1"] != 0 {
		t.Fatalf("expected counters clamped to 0, got %d", bear.Counters["+1/+1"])
	}

	if err := undolog.Rewind(gs, eng.Log, mark); err != nil {
		t.Fatalf("Rewind: %v", err)
	}
	if bear.Counters["+1/+1"] != 1 {
		t.Errorf("expected clamped removal to reverse to the pre-clamp count of 1, got %d", bear.Counters["+1/+1"])
	}
}

// TestAddCountersNoOpDoesNotLog ensures a delta that nets to zero after
// clamping (e.g. removing from a creature with no counters) appends
// nothing, keeping the log free of meaningless entries.
func TestAddCountersNoOpDoesNotLog(t *testing.T) {
	eng := newTestEngine(t)
	gs := eng.State
	def, _ := gs.Provider.Lookup("Grizzly Bears")
	bear := gs.CreateObject(def, 0)
	bear.Zone = state.ZoneBattlefield

	mark := eng.Log.Len()
	eng.addCounters(gs, []ids.CardId{bear.Id}, "+1/+1", -2)
	if eng.Log.Len() != mark {
		t.Errorf("expected no-op counter removal to append nothing, log grew by %d", eng.Log.Len()-mark)
	}
}

// TestMillTargetsRestoresLibraryOrderOnRewind exercises the from_index
// contract: rewinding a multi-card mill must reinsert each card at the
// exact index it previously occupied in the library, not just append it
// back in arbitrary order.
func TestMillTargetsRestoresLibraryOrderOnRewind(t *testing.T) {
	eng := newTestEngine(t)
	gs := eng.State
	landDef, _ := gs.Provider.Lookup("Mountain")

	var lib []ids.CardId
	for i := 0; i < 3; i++ {
		c := gs.CreateObject(landDef, 0)
		lib = append(lib, c.Id)
	}
	gs.Players[0].Library = append([]ids.CardId(nil), lib...)

	bearDef, _ := gs.Provider.Lookup("Grizzly Bears")
	source := gs.CreateObject(bearDef, 0)
	source.Zone = state.ZoneBattlefield

	mark := eng.Log.Len()
	eng.millTargets(gs, []ids.CardId{source.Id}, 2)
	if len(gs.Players[0].Library) != 1 || len(gs.Players[0].Graveyard) != 2 {
		t.Fatalf("expected 1 card left in library and 2 milled, got lib=%v gy=%v",
			gs.Players[0].Library, gs.Players[0].Graveyard)
	}

	if err := undolog.Rewind(gs, eng.Log, mark); err != nil {
		t.Fatalf("Rewind: %v", err)
	}
	if len(gs.Players[0].Graveyard) != 0 {
		t.Errorf("expected graveyard emptied by rewind, got %v", gs.Players[0].Graveyard)
	}
	if len(gs.Players[0].Library) != 3 {
		t.Fatalf("expected library restored to 3 cards, got %v", gs.Players[0].Library)
	}
	for i, id := range gs.Players[0].Library {
		if id != lib[i] {
			t.Errorf("expected library order restored exactly, index %d: got %v want %v", i, id, lib[i])
		}
	}
}

// TestExileAndReturnToHandAreReversible exercises exileTargets and
// returnToHand, the two remaining unlogged-zone-move functions named in
// review comment 3.
func TestExileAndReturnToHandAreReversible(t *testing.T) {
	eng := newTestEngine(t)
	gs := eng.State
	def, _ := gs.Provider.Lookup("Grizzly Bears")
	bear := gs.CreateObject(def, 0)
	bear.Zone = state.ZoneBattlefield

	mark := eng.Log.Len()
	eng.exileTargets(gs, []ids.CardId{bear.Id})
	if bear.Zone != state.ZoneExile || len(gs.Players[0].Exile) != 1 {
		t.Fatalf("expected bear exiled, zone=%v exile=%v", bear.Zone, gs.Players[0].Exile)
	}
	if err := undolog.Rewind(gs, eng.Log, mark); err != nil {
		t.Fatalf("Rewind exile: %v", err)
	}
	if bear.Zone != state.ZoneBattlefield || len(gs.Players[0].Exile) != 0 {
		t.Fatalf("expected exile rewound, zone=%v exile=%v", bear.Zone, gs.Players[0].Exile)
	}

	mark = eng.Log.Len()
	eng.returnToHand(gs, []ids.CardId{bear.Id})
	if bear.Zone != state.ZoneHand || len(gs.Players[0].Hand) != 1 {
		t.Fatalf("expected bear returned to hand, zone=%v hand=%v", bear.Zone, gs.Players[0].Hand)
	}
	if err := undolog.Rewind(gs, eng.Log, mark); err != nil {
		t.Fatalf("Rewind return-to-hand: %v", err)
	}
	if bear.Zone != state.ZoneBattlefield || len(gs.Players[0].Hand) != 0 {
		t.Fatalf("expected return-to-hand rewound, zone=%v hand=%v", bear.Zone, gs.Players[0].Hand)
	}
}
