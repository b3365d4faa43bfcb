package state

import (
	"github.com/arcanelabs/duelcore/internal/carddef"
	"github.com/arcanelabs/duelcore/internal/ids"
	"github.com/arcanelabs/duelcore/internal/mana"
	"github.com/arcanelabs/duelcore/internal/rng"
)

// Step is the closed set of turn steps spec §4.2 names, the MTG
// generalization of the teacher's Phase+BattleStep pair into one sequence.
type Step int

const (
	StepUntap Step = iota
	StepUpkeep
	StepDraw
	StepMain1
	StepBeginCombat
	StepDeclareAttackers
	StepDeclareBlockers
	StepFirstStrikeDamage
	StepCombatDamage
	StepEndCombat
	StepMain2
	StepEnd
	StepCleanup
)

func (s Step) String() string {
	names := [...]string{
		"Untap", "Upkeep", "Draw", "Main1", "BeginCombat", "DeclareAttackers",
		"DeclareBlockers", "FirstStrikeDamage", "CombatDamage", "EndCombat",
		"Main2", "End", "Cleanup",
	}
	if int(s) < len(names) {
		return names[s]
	}
	return "Unknown"
}

// HasPriority reports whether players receive priority during this step.
// Untap and Cleanup are the two steps spec §4.2 carves out as
// priority-free (cleanup only gains priority if something triggers).
func (s Step) HasPriority() bool {
	return s != StepUntap && s != StepCleanup
}

// GameState is the complete state of one duel: both players, the shared
// battlefield/stack/combat tracking, and the embedded RNG. Direct analog
// of the teacher's GameState, generalized from Phase/BattleStep to Step and
// from a Chain to a Stack (defined in package stack, referenced here only
// by the object list it leaves on the battlefield/stack zones).
type GameState struct {
	Players    [2]*Player
	Objects    map[ids.CardId]*CardInstance // every CardInstance, regardless of zone
	CardIds    *ids.Allocator[ids.Card]

	Turn       int
	ActivePlayer int // 0 or 1
	Priority     int // who currently holds priority
	Step         Step

	// StackObjects, in LIFO order (top of stack = last element). Populated
	// and resolved by package stack; kept here because GameState is the
	// single snapshot unit spec §4.7 round-trips.
	StackObjects []ids.CardId

	Combat *CombatState

	Provider carddef.Provider
	RNG      *rng.Stream

	Winner int // 0, 1, or -1 (no winner yet, or draw if Over && Winner==-1)
	Over   bool
	Result string
}

// CombatState tracks the current combat's attacker/blocker assignments,
// cleared at EndCombat. Generalized from the teacher's single
// CurrentAttacker/CurrentTarget pair into the full attacker/blocker map
// spec §4.4 needs.
type CombatState struct {
	Attackers       map[ids.CardId]ids.PlayerId // attacker -> defending player (or planeswalker target, future work)
	Blockers        map[ids.CardId][]ids.CardId // attacker -> ordered list of blockers
	BlockedBy       map[ids.CardId]ids.CardId   // blocker -> attacker it's blocking
	DamageOrder     map[ids.CardId][]ids.CardId // attacker -> damage assignment order among its blockers
	FirstStrikeDone bool
}

func NewCombatState() *CombatState {
	return &CombatState{
		Attackers:   map[ids.CardId]ids.PlayerId{},
		Blockers:    map[ids.CardId][]ids.CardId{},
		BlockedBy:   map[ids.CardId]ids.CardId{},
		DamageOrder: map[ids.CardId][]ids.CardId{},
	}
}

// NewGameState creates a fresh duel state with both players at starting
// life and an empty board.
func NewGameState(provider carddef.Provider, seed *rng.Stream) *GameState {
	gs := &GameState{
		Players: [2]*Player{
			{Id: 1, Life: StartingLife, ManaPool: mana.New()},
			{Id: 2, Life: StartingLife, ManaPool: mana.New()},
		},
		Objects:  map[ids.CardId]*CardInstance{},
		CardIds:  ids.NewAllocator[ids.Card](),
		Winner:   -1,
		Provider: provider,
		RNG:      seed,
	}
	return gs
}

// Opponent returns the other player's index.
func (gs *GameState) Opponent(p int) int { return 1 - p }

// Player returns the Player struct for player index p.
func (gs *GameState) Player(p int) *Player { return gs.Players[p] }

// Battlefield returns every object on the battlefield, owned or controlled
// by either player, in ascending Id order for deterministic iteration.
func (gs *GameState) Battlefield() []*CardInstance {
	var out []*CardInstance
	for _, obj := range gs.Objects {
		if obj.Zone == ZoneBattlefield {
			out = append(out, obj)
		}
	}
	sortById(out)
	return out
}

// ZoneSlice returns a pointer to the per-player slice backing zone, or nil
// for ZoneBattlefield/ZoneStack, whose membership is derived purely from
// CardInstance.Zone rather than stored in a Player slice.
func (gs *GameState) ZoneSlice(owner int, zone Zone) *[]ids.CardId {
	p := gs.Players[owner]
	switch zone {
	case ZoneLibrary:
		return &p.Library
	case ZoneHand:
		return &p.Hand
	case ZoneGraveyard:
		return &p.Graveyard
	case ZoneExile:
		return &p.Exile
	default:
		return nil
	}
}

// RemoveFromZone splices id out of owner's zone slice and returns the index
// it occupied, or -1 if zone has no backing slice or id wasn't found there.
// The single point both the forward move (MoveCard) and the undo path
// (Apply's ActionMoveZone case) use to keep CardInstance.Zone and the
// per-player slices from drifting apart.
func (gs *GameState) RemoveFromZone(owner int, zone Zone, id ids.CardId) int {
	slice := gs.ZoneSlice(owner, zone)
	if slice == nil {
		return -1
	}
	for i, cid := range *slice {
		if cid == id {
			*slice = append((*slice)[:i], (*slice)[i+1:]...)
			return i
		}
	}
	return -1
}

// InsertIntoZone splices id into owner's zone slice at index, appending
// instead if zone has no backing slice (a no-op) or index is out of range —
// the counterpart to RemoveFromZone that restores order-preserving
// reinsertion on undo (spec §4.1's "restores the card at exactly
// from_index").
func (gs *GameState) InsertIntoZone(owner int, zone Zone, id ids.CardId, index int) {
	slice := gs.ZoneSlice(owner, zone)
	if slice == nil {
		return
	}
	if index < 0 || index > len(*slice) {
		*slice = append(*slice, id)
		return
	}
	*slice = append(*slice, id)
	copy((*slice)[index+1:], (*slice)[index:])
	(*slice)[index] = id
}

func sortById(cards []*CardInstance) {
	for i := 1; i < len(cards); i++ {
		for j := i; j > 0 && cards[j].Id < cards[j-1].Id; j-- {
			cards[j], cards[j-1] = cards[j-1], cards[j]
		}
	}
}

// CreateObject allocates a fresh CardInstance for def owned by player,
// placed in the library face down — the MTG analog of the teacher's
// CreateCardInstance.
func (gs *GameState) CreateObject(def *carddef.CardDefinition, owner int) *CardInstance {
	ci := &CardInstance{
		Def:        def,
		Id:         gs.CardIds.Next(),
		Owner:      owner,
		Controller: owner,
		Zone:       ZoneLibrary,
		Counters:   Counters{},
	}
	gs.Objects[ci.Id] = ci
	return ci
}

// CheckStateBasedActions applies spec §4.1's lose-by-zero-or-negative-life
// check (other state-based actions — lethal damage, 0-toughness — are
// applied by package combat/stack directly after the mutation that could
// trigger them, the same way the teacher's checkWinCondition is called
// right after HP changes rather than on a separate polling loop).
func (gs *GameState) CheckStateBasedActions() bool {
	p0Dead := gs.Players[0].Life <= 0
	p1Dead := gs.Players[1].Life <= 0
	switch {
	case p0Dead && p1Dead:
		gs.Over, gs.Winner, gs.Result = true, -1, "draw: both players' life reached 0 or below"
	case p0Dead:
		gs.Over, gs.Winner, gs.Result = true, 1, "player 2 wins: player 1's life reached 0 or below"
	case p1Dead:
		gs.Over, gs.Winner, gs.Result = true, 0, "player 1 wins: player 2's life reached 0 or below"
	default:
		return false
	}
	return true
}
