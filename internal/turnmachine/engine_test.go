package turnmachine

import (
	"testing"

	"github.com/arcanelabs/duelcore/internal/carddef"
	"github.com/arcanelabs/duelcore/internal/controller"
	"github.com/arcanelabs/duelcore/internal/events"
	"github.com/arcanelabs/duelcore/internal/state"
	"github.com/arcanelabs/duelcore/internal/undolog"
)

// TestLightningBoltDestroysCreature: P0 plays a Mountain, passes. P1 plays a
// Mountain and summons Raging Goblin. P0 then casts Lightning Bolt at the
// Goblin, which dies to 3 damage on a 1-toughness body. Exercises land
// play, sorcery-speed creature casting, instant casting with a target,
// mana payment from an untapped land, and the stack.Interpret effect
// pipeline all the way through to CleanupDestroyed.
func TestLightningBoltDestroysCreature(t *testing.T) {
	deck0 := paddedDeck([]string{"Mountain", "Mountain", "Lightning Bolt"}, 12, "Plains")
	deck1 := paddedDeck([]string{"Mountain", "Raging Goblin"}, 12, "Plains")

	p0 := newScripted(t, "P0")
	p0.play(controller.ActionPlayLand, "Mountain")
	p0.playTargeted(controller.ActionCastSpell, "Lightning Bolt", "Raging Goblin")

	p1 := newScripted(t, "P1")
	p1.play(controller.ActionPlayLand, "Mountain")
	p1.play(controller.ActionCastSpell, "Raging Goblin")

	cfg := Config{Deck0: deck0, Deck1: deck1, MaxTurns: 4}
	logger := runDuel(t, cfg, p0, p1)

	destroys := logger.OfType(events.Destroyed)
	if len(destroys) == 0 {
		t.Fatal("expected a destroy event")
	}
	if destroys[0].Card != "Raging Goblin" {
		t.Errorf("expected Raging Goblin destroyed, got %s", destroys[0].Card)
	}
}

// TestGiantGrowthWinsATrade: both players summon a Grizzly Bears (2/2).
// Unpumped, a 2/2 attacking into a 2/2 blocker is a mutual kill. P0 casts
// Giant Growth on its Bears in the turn-5 precombat main phase (the first
// window in which the scripted cast is legal) and then attacks with it,
// turning the trade into a one-sided 5/5-vs-2/2 kill. Because both
// creatures share a name, the attacker is necessarily the one carddef
// resolves first (P0's deck is built before P1's, so its Bears holds the
// lower CardId and sorts first in Battlefield() — the same tie-break
// targetCandidates relies on generally).
func TestGiantGrowthWinsATrade(t *testing.T) {
	deck0 := paddedDeck([]string{"Forest", "Forest", "Grizzly Bears", "Forest", "Giant Growth"}, 14, "Plains")
	deck1 := paddedDeck([]string{"Forest", "Forest", "Grizzly Bears"}, 14, "Plains")

	p0 := newScripted(t, "P0")
	p0.play(controller.ActionPlayLand, "Forest") // T1
	p0.play(controller.ActionPlayLand, "Forest") // T3
	p0.play(controller.ActionCastSpell, "Grizzly Bears")
	p0.play(controller.ActionPlayLand, "Forest") // T5
	p0.attack("Grizzly Bears")
	p0.playTargeted(controller.ActionCastSpell, "Giant Growth", "Grizzly Bears")

	p1 := newScripted(t, "P1")
	p1.play(controller.ActionPlayLand, "Forest") // T2
	p1.play(controller.ActionPlayLand, "Forest") // T4
	p1.play(controller.ActionCastSpell, "Grizzly Bears")
	p1.block("Grizzly Bears")

	cfg := Config{Deck0: deck0, Deck1: deck1, MaxTurns: 6}
	logger := runDuel(t, cfg, p0, p1)

	destroys := logger.OfType(events.Destroyed)
	if len(destroys) != 1 {
		t.Fatalf("expected exactly one destroyed creature (the blocker), got %d", len(destroys))
	}
	lpChanges := logger.OfType(events.LifeChange)
	for _, e := range lpChanges {
		t.Errorf("unblocked/unpumped trade should not change any life total, got: %s", e.Details)
	}
}

// TestEmptyLibraryCausesLoss: a player with nothing left to draw loses the
// game the instant their draw step tries to pull from an empty library.
func TestEmptyLibraryCausesLoss(t *testing.T) {
	deck0 := paddedDeck(nil, 20, "Plains")
	// P1 has exactly enough for the opening hand and nothing more.
	deck1 := paddedDeck(nil, state.InitialHandSize, "Plains")

	p0 := newScripted(t, "P0")
	p1 := newScripted(t, "P1")

	cfg := Config{Deck0: deck0, Deck1: deck1, MaxTurns: 6}
	logger := runDuel(t, cfg, p0, p1)

	wins := logger.OfType(events.Win)
	if len(wins) == 0 {
		t.Fatal("expected a win event from an empty-library draw")
	}
	if wins[0].Player != 0 {
		t.Errorf("expected P0 to win by P1 decking out, got player %d", wins[0].Player)
	}
}

// TestLegalActionsSortedDeterministically constructs an Engine directly
// (bypassing Run) to check that legalActions always orders its output by
// (Card, Kind) with Pass last, regardless of hand iteration order — spec's
// requirement that legal-action enumeration be reproducible from a given
// GameState alone.
func TestLegalActionsSortedDeterministically(t *testing.T) {
	provider := carddef.NewFixtureProvider()
	cfg := Config{
		Deck0:    []string{"Mountain", "Plains", "Forest"},
		Deck1:    []string{"Island"},
		Provider: provider,
		Sink:     events.NewMemoryLog(),
		MaxTurns: 10,
	}
	eng, err := New(cfg, newScripted(t, "P0"), newScripted(t, "P1"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	gs := eng.State
	for _, id := range gs.Players[0].Library {
		obj := gs.Objects[id]
		obj.Zone = state.ZoneHand
		gs.Players[0].Hand = append(gs.Players[0].Hand, id)
	}
	gs.Players[0].Library = nil
	gs.Step = state.StepMain1
	gs.ActivePlayer = 0

	actions := eng.legalActions(0)
	if len(actions) != 4 {
		t.Fatalf("expected 3 land plays + Pass, got %d", len(actions))
	}
	if actions[len(actions)-1].Kind != controller.ActionPass {
		t.Fatalf("expected Pass last, got %v", actions[len(actions)-1].Kind)
	}
	for i := 1; i < len(actions)-1; i++ {
		if actions[i].Card < actions[i-1].Card {
			t.Fatalf("actions not sorted by Card id: %v before %v", actions[i-1], actions[i])
		}
	}
}

// TestUndoLogTurnChangeRewindIsExact drives a couple of turns then rewinds
// to the start of the current turn, checking the turn counter and active
// player are restored along with board state — the bug fixed this session
// in undolog's ActionTurnChange handling (see DESIGN.md).
func TestUndoLogTurnChangeRewindIsExact(t *testing.T) {
	deck0 := paddedDeck([]string{"Mountain"}, 12, "Plains")
	deck1 := paddedDeck([]string{"Island"}, 12, "Plains")

	p0 := newScripted(t, "P0")
	p0.play(controller.ActionPlayLand, "Mountain")
	p1 := newScripted(t, "P1")
	p1.play(controller.ActionPlayLand, "Island")

	provider := carddef.NewFixtureProvider()
	cfg := Config{Deck0: deck0, Deck1: deck1, Provider: provider, Sink: events.NewMemoryLog(), NoShuffle: true, MaxTurns: 20}
	eng, err := New(cfg, p0, p1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := eng.shuffleAndOpen(); err != nil {
		t.Fatalf("shuffleAndOpen: %v", err)
	}
	if err := eng.runTurn(); err != nil { // turn 1, P0
		t.Fatalf("runTurn 1: %v", err)
	}
	if err := eng.runTurn(); err != nil { // turn 2, P1
		t.Fatalf("runTurn 2: %v", err)
	}

	turnBefore, activeBefore := eng.State.Turn, eng.State.ActivePlayer
	if turnBefore != 2 || activeBefore != 1 {
		t.Fatalf("setup assumption broken: turn=%d active=%d", turnBefore, activeBefore)
	}

	if err := undolog.RewindToTurnStart(eng.State, eng.Log); err != nil {
		t.Fatalf("rewind: %v", err)
	}

	if eng.State.Turn != turnBefore {
		t.Errorf("rewind-to-turn-start should not change the turn counter, got %d want %d", eng.State.Turn, turnBefore)
	}
	if eng.State.ActivePlayer != activeBefore {
		t.Errorf("rewind-to-turn-start should not change the active player, got %d want %d", eng.State.ActivePlayer, activeBefore)
	}
	islandObj := findByName(eng.State, "Island")
	if islandObj == nil || islandObj.Zone != state.ZoneHand {
		t.Error("expected Island to be back in hand after rewinding past P1's land play")
	}
}

func findByName(gs *state.GameState, name string) *state.CardInstance {
	for _, obj := range gs.Objects {
		if obj.Def.Name == name {
			return obj
		}
	}
	return nil
}
