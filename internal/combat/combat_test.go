package combat

import (
	"testing"

	"github.com/arcanelabs/duelcore/internal/carddef"
	"github.com/arcanelabs/duelcore/internal/events"
	"github.com/arcanelabs/duelcore/internal/ids"
	"github.com/arcanelabs/duelcore/internal/rng"
	"github.com/arcanelabs/duelcore/internal/state"
	"github.com/arcanelabs/duelcore/internal/undolog"
)

func newBoard() *state.GameState {
	return state.NewGameState(carddef.NewFixtureProvider(), rng.NewFromSeed(1))
}

func put(gs *state.GameState, id ids.CardId, controller int, def *carddef.CardDefinition) *state.CardInstance {
	obj := &state.CardInstance{Id: id, Owner: controller, Controller: controller, Zone: state.ZoneBattlefield, Def: def}
	gs.Objects[id] = obj
	return obj
}

func bears() *carddef.CardDefinition {
	return &carddef.CardDefinition{Name: "Grizzly Bears", Type: carddef.TypeCreature, Power: 2, Toughness: 2}
}

func newEngine() *Engine { return New(events.NewMemoryLog(), undolog.New()) }

func TestLegalAttackersExcludesTappedAndSummoningSick(t *testing.T) {
	gs := newBoard()
	ready := put(gs, 1, 0, bears())
	tapped := put(gs, 2, 0, bears())
	tapped.Tapped = true
	sick := put(gs, 3, 0, bears())
	sick.SummoningSick = true

	legal := New(events.NewMemoryLog(), undolog.New()).LegalAttackers(gs, 0)
	if len(legal) != 1 || legal[0] != ready.Id {
		t.Fatalf("expected only the untapped, non-sick creature to be a legal attacker, got %v", legal)
	}
}

func TestLegalAttackersHasteIgnoresSummoningSickness(t *testing.T) {
	gs := newBoard()
	goblin := put(gs, 1, 0, &carddef.CardDefinition{
		Name: "Raging Goblin", Type: carddef.TypeCreature, Power: 1, Toughness: 1,
		Keywords: map[carddef.Keyword]bool{carddef.Haste: true},
	})
	goblin.SummoningSick = true

	legal := newEngine().LegalAttackers(gs, 0)
	if len(legal) != 1 {
		t.Fatalf("expected haste to override summoning sickness, got %v", legal)
	}
}

func TestDeclareAttackersTapsNonVigilantButNotVigilant(t *testing.T) {
	gs := newBoard()
	gs.Players[1].Id = 2
	plain := put(gs, 1, 0, bears())
	vigilant := put(gs, 2, 0, &carddef.CardDefinition{
		Name: "Watchful Bear", Type: carddef.TypeCreature, Power: 2, Toughness: 2,
		Keywords: map[carddef.Keyword]bool{carddef.Vigilance: true},
	})

	e := newEngine()
	if err := e.DeclareAttackers(gs, 0, []ids.CardId{plain.Id, vigilant.Id}); err != nil {
		t.Fatalf("DeclareAttackers: %v", err)
	}
	if !plain.Tapped {
		t.Error("expected a non-vigilant attacker to tap")
	}
	if vigilant.Tapped {
		t.Error("expected a vigilant attacker to stay untapped")
	}
	if len(gs.Combat.Attackers) != 2 {
		t.Errorf("expected both attackers registered, got %d", len(gs.Combat.Attackers))
	}
}

func TestDeclareAttackersRejectsIllegalAttacker(t *testing.T) {
	gs := newBoard()
	tapped := put(gs, 1, 0, bears())
	tapped.Tapped = true

	e := newEngine()
	if err := e.DeclareAttackers(gs, 0, []ids.CardId{tapped.Id}); err == nil {
		t.Fatal("expected an error declaring a tapped creature as an attacker")
	}
}

func TestLegalBlockersFlyingRequiresFlyingOrReach(t *testing.T) {
	gs := newBoard()
	flyer := put(gs, 1, 0, &carddef.CardDefinition{
		Name: "Wind Drake", Type: carddef.TypeCreature, Power: 2, Toughness: 2,
		Keywords: map[carddef.Keyword]bool{carddef.Flying: true},
	})
	groundBlocker := put(gs, 2, 1, bears())
	reachBlocker := put(gs, 3, 1, &carddef.CardDefinition{
		Name: "Giant Spider", Type: carddef.TypeCreature, Power: 2, Toughness: 4,
		Keywords: map[carddef.Keyword]bool{carddef.Reach: true},
	})

	e := newEngine()
	legal := e.LegalBlockers(gs, 1, flyer.Id)
	if len(legal) != 1 || legal[0] != reachBlocker.Id {
		t.Fatalf("expected only the reach creature to legally block a flyer, got %v (ground=%v)", legal, groundBlocker.Id)
	}
}

func TestDeclareBlockersMenaceRequiresTwoBlockers(t *testing.T) {
	gs := newBoard()
	attacker := put(gs, 1, 0, &carddef.CardDefinition{
		Name: "Rogue Deathbringer", Type: carddef.TypeCreature, Power: 2, Toughness: 1,
		Keywords: map[carddef.Keyword]bool{carddef.Menace: true},
	})
	blocker := put(gs, 2, 1, bears())
	gs.Combat = state.NewCombatState()
	gs.Combat.Attackers[attacker.Id] = gs.Players[1].Id

	e := newEngine()
	err := e.DeclareBlockers(gs, 1, map[ids.CardId][]ids.CardId{attacker.Id: {blocker.Id}})
	if err == nil {
		t.Fatal("expected menace to reject a single blocker")
	}
}

func TestDeclareBlockersSameBlockerTwiceRejected(t *testing.T) {
	gs := newBoard()
	a1 := put(gs, 1, 0, bears())
	a2 := put(gs, 2, 0, bears())
	blocker := put(gs, 3, 1, bears())
	gs.Combat = state.NewCombatState()
	gs.Combat.Attackers[a1.Id] = gs.Players[1].Id
	gs.Combat.Attackers[a2.Id] = gs.Players[1].Id

	e := newEngine()
	err := e.DeclareBlockers(gs, 1, map[ids.CardId][]ids.CardId{
		a1.Id: {blocker.Id},
		a2.Id: {blocker.Id},
	})
	if err == nil {
		t.Fatal("expected an error assigning the same blocker to two attackers")
	}
}

func TestDealDamageUnblockedHitsPlayer(t *testing.T) {
	gs := newBoard()
	attacker := put(gs, 1, 0, bears())
	gs.Combat = state.NewCombatState()
	gs.Combat.Attackers[attacker.Id] = gs.Players[1].Id
	startLife := gs.Players[1].Life

	e := newEngine()
	if err := e.DealDamage(gs, false); err != nil {
		t.Fatalf("DealDamage: %v", err)
	}
	if gs.Players[1].Life != startLife-2 {
		t.Errorf("expected 2 damage to the defending player, life went from %d to %d", startLife, gs.Players[1].Life)
	}
}

func TestDealDamageTradesBothWays(t *testing.T) {
	gs := newBoard()
	attacker := put(gs, 1, 0, bears())
	blocker := put(gs, 2, 1, bears())
	gs.Combat = state.NewCombatState()
	gs.Combat.Attackers[attacker.Id] = gs.Players[1].Id
	gs.Combat.Blockers[attacker.Id] = []ids.CardId{blocker.Id}
	gs.Combat.DamageOrder[attacker.Id] = []ids.CardId{blocker.Id}

	e := newEngine()
	if err := e.DealDamage(gs, false); err != nil {
		t.Fatalf("DealDamage: %v", err)
	}
	if attacker.DamageMarked != 2 || blocker.DamageMarked != 2 {
		t.Fatalf("expected both 2/2s to mark 2 damage, got attacker=%d blocker=%d", attacker.DamageMarked, blocker.DamageMarked)
	}
	e.CleanupDestroyed(gs)
	if attacker.Zone != state.ZoneGraveyard || blocker.Zone != state.ZoneGraveyard {
		t.Error("expected both creatures destroyed by lethal damage")
	}
}

func TestDealDamageTrampleOverflowsToPlayer(t *testing.T) {
	gs := newBoard()
	attacker := put(gs, 1, 0, &carddef.CardDefinition{
		Name: "Trampler", Type: carddef.TypeCreature, Power: 5, Toughness: 5,
		Keywords: map[carddef.Keyword]bool{carddef.Trample: true},
	})
	blocker := put(gs, 2, 1, &carddef.CardDefinition{
		Name: "Chump", Type: carddef.TypeCreature, Power: 1, Toughness: 1,
	})
	gs.Combat = state.NewCombatState()
	gs.Combat.Attackers[attacker.Id] = gs.Players[1].Id
	gs.Combat.Blockers[attacker.Id] = []ids.CardId{blocker.Id}
	gs.Combat.DamageOrder[attacker.Id] = []ids.CardId{blocker.Id}
	startLife := gs.Players[1].Life

	e := newEngine()
	if err := e.DealDamage(gs, false); err != nil {
		t.Fatalf("DealDamage: %v", err)
	}
	if blocker.DamageMarked != 1 {
		t.Errorf("expected the blocker to take only lethal (1) damage, got %d", blocker.DamageMarked)
	}
	if gs.Players[1].Life != startLife-4 {
		t.Errorf("expected 4 trample damage through to the player, life went from %d to %d", startLife, gs.Players[1].Life)
	}
}

func TestDealDamageDeathtouchAssignsOnlyOnePoint(t *testing.T) {
	gs := newBoard()
	attacker := put(gs, 1, 0, &carddef.CardDefinition{
		Name: "Viper", Type: carddef.TypeCreature, Power: 4, Toughness: 1,
		Keywords: map[carddef.Keyword]bool{carddef.Deathtouch: true},
	})
	blocker := put(gs, 2, 1, &carddef.CardDefinition{
		Name: "Giant Spider", Type: carddef.TypeCreature, Power: 2, Toughness: 4,
	})
	gs.Combat = state.NewCombatState()
	gs.Combat.Attackers[attacker.Id] = gs.Players[1].Id
	gs.Combat.Blockers[attacker.Id] = []ids.CardId{blocker.Id}
	gs.Combat.DamageOrder[attacker.Id] = []ids.CardId{blocker.Id}

	e := newEngine()
	if err := e.DealDamage(gs, false); err != nil {
		t.Fatalf("DealDamage: %v", err)
	}
	if blocker.DamageMarked != 1 {
		t.Errorf("deathtouch should assign only 1 damage as lethal, got %d", blocker.DamageMarked)
	}
	e.CleanupDestroyed(gs)
	if blocker.Zone != state.ZoneGraveyard {
		t.Error("expected deathtouch's 1 marked point to be treated as lethal")
	}
}

func TestCleanupDestroyedSkipsIndestructible(t *testing.T) {
	gs := newBoard()
	obj := put(gs, 1, 0, &carddef.CardDefinition{
		Name: "Sturdy Bear", Type: carddef.TypeCreature, Power: 2, Toughness: 2,
		Keywords: map[carddef.Keyword]bool{carddef.Indestructible: true},
	})
	obj.DamageMarked = 10

	newEngine().CleanupDestroyed(gs)
	if obj.Zone != state.ZoneBattlefield {
		t.Error("expected an indestructible creature to survive lethal damage")
	}
}
