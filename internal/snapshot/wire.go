package snapshot

import (
	"github.com/arcanelabs/duelcore/internal/carddef"
	"github.com/arcanelabs/duelcore/internal/engineerr"
	"github.com/arcanelabs/duelcore/internal/ids"
	"github.com/arcanelabs/duelcore/internal/mana"
	"github.com/arcanelabs/duelcore/internal/rng"
	"github.com/arcanelabs/duelcore/internal/state"
)

// wireModifier mirrors state.Modifier field for field; no CardDefinition
// pointer to re-resolve, so it round-trips through msgpack untouched.
type wireModifier struct {
	Source     ids.CardId
	PowerMod   int
	ToughMod   int
	Continuous bool
	UntilEOT   bool
}

// wireCard mirrors state.CardInstance, replacing the unserializable Def
// pointer with DefName so Provider.Lookup can re-resolve it on decode
// (spec §6: card definitions are supplied by the caller, never serialized).
type wireCard struct {
	DefName    string
	Id         ids.CardId
	Owner      int
	Controller int

	Zone     int
	Tapped   bool
	FaceDown bool

	Transformed        bool
	TurnEntered        int
	TurnControlChanged int
	SummoningSick      bool
	DamageMarked       int
	AttackedThisTurn   bool

	Modifiers []wireModifier
	Counters  map[string]int

	SetPower, SetToughness int

	AttachedTo   ids.CardId
	Attachments  []ids.CardId
	StackTargets []ids.CardId
	StackSource  ids.CardId
	StackX       int
}

type wirePlayer struct {
	Id   ids.PlayerId
	Life int

	Library   []ids.CardId
	Hand      []ids.CardId
	Graveyard []ids.CardId
	Exile     []ids.CardId

	LandsPlayedThisTurn int
	ManaPool            map[int]int // carddef.Color -> count, stored as int to avoid a carddef<->mana wire coupling
}

type wireCombat struct {
	Attackers   map[ids.CardId]ids.PlayerId
	Blockers    map[ids.CardId][]ids.CardId
	BlockedBy   map[ids.CardId]ids.CardId
	DamageOrder map[ids.CardId][]ids.CardId

	FirstStrikeDone bool
}

// wireGameState mirrors state.GameState, the unit spec §4.7 actually
// serializes. Every CardInstance, on every zone (including ZoneStack), is
// carried in Objects; StackObjects alone records the stack's ordering,
// since package stack never introduces a type of its own beyond that.
type wireGameState struct {
	Players [2]wirePlayer
	Objects []wireCard
	NextId  uint64 // ids.Allocator[ids.Card]'s next-to-issue counter

	Turn         int
	ActivePlayer int
	Priority     int
	Step         int

	StackObjects []ids.CardId

	Combat *wireCombat

	RNGState rng.State

	Winner int
	Over   bool
	Result string
}

func encodeState(gs *state.GameState) wireGameState {
	w := wireGameState{
		Turn:         gs.Turn,
		ActivePlayer: gs.ActivePlayer,
		Priority:     gs.Priority,
		Step:         int(gs.Step),
		StackObjects: append([]ids.CardId(nil), gs.StackObjects...),
		NextId:       gs.CardIds.Peek(),
		RNGState:     gs.RNG.Snapshot(),
		Winner:       gs.Winner,
		Over:         gs.Over,
		Result:       gs.Result,
	}
	for i, p := range gs.Players {
		w.Players[i] = encodePlayer(p)
	}
	for _, obj := range gs.Objects {
		w.Objects = append(w.Objects, encodeCard(obj))
	}
	if gs.Combat != nil {
		w.Combat = encodeCombat(gs.Combat)
	}
	return w
}

func encodePlayer(p *state.Player) wirePlayer {
	pool := make(map[int]int, len(p.ManaPool))
	for c, n := range p.ManaPool {
		pool[int(c)] = n
	}
	return wirePlayer{
		Id:                  p.Id,
		Life:                p.Life,
		Library:             append([]ids.CardId(nil), p.Library...),
		Hand:                append([]ids.CardId(nil), p.Hand...),
		Graveyard:           append([]ids.CardId(nil), p.Graveyard...),
		Exile:               append([]ids.CardId(nil), p.Exile...),
		LandsPlayedThisTurn: p.LandsPlayedThisTurn,
		ManaPool:            pool,
	}
}

func encodeCard(c *state.CardInstance) wireCard {
	name := ""
	if c.Def != nil {
		name = c.Def.Name
	}
	mods := make([]wireModifier, len(c.Modifiers))
	for i, m := range c.Modifiers {
		mods[i] = wireModifier{
			Source: m.Source, PowerMod: m.PowerMod, ToughMod: m.ToughMod,
			Continuous: m.Continuous, UntilEOT: m.UntilEOT,
		}
	}
	counters := make(map[string]int, len(c.Counters))
	for k, v := range c.Counters {
		counters[k] = v
	}
	return wireCard{
		DefName:            name,
		Id:                 c.Id,
		Owner:              c.Owner,
		Controller:         c.Controller,
		Zone:               int(c.Zone),
		Tapped:             c.Tapped,
		FaceDown:           c.FaceDown,
		Transformed:        c.Transformed,
		TurnEntered:        c.TurnEntered,
		TurnControlChanged: c.TurnControlChanged,
		SummoningSick:      c.SummoningSick,
		DamageMarked:       c.DamageMarked,
		AttackedThisTurn:   c.AttackedThisTurn,
		Modifiers:          mods,
		Counters:           counters,
		SetPower:           c.SetPower,
		SetToughness:       c.SetToughness,
		AttachedTo:         c.AttachedTo,
		Attachments:        append([]ids.CardId(nil), c.Attachments...),
		StackTargets:       append([]ids.CardId(nil), c.StackTargets...),
		StackSource:        c.StackSource,
		StackX:             c.StackX,
	}
}

func encodeCombat(cs *state.CombatState) *wireCombat {
	w := &wireCombat{
		Attackers:       map[ids.CardId]ids.PlayerId{},
		Blockers:        map[ids.CardId][]ids.CardId{},
		BlockedBy:       map[ids.CardId]ids.CardId{},
		DamageOrder:     map[ids.CardId][]ids.CardId{},
		FirstStrikeDone: cs.FirstStrikeDone,
	}
	for k, v := range cs.Attackers {
		w.Attackers[k] = v
	}
	for k, v := range cs.Blockers {
		w.Blockers[k] = append([]ids.CardId(nil), v...)
	}
	for k, v := range cs.BlockedBy {
		w.BlockedBy[k] = v
	}
	for k, v := range cs.DamageOrder {
		w.DamageOrder[k] = append([]ids.CardId(nil), v...)
	}
	return w
}

// decodeState rebuilds a live GameState from its wire form, re-resolving
// every CardInstance's definition through provider (spec §6: definitions
// are supplied by the caller at load time, never carried in the snapshot
// itself).
func decodeState(w wireGameState, provider carddef.Provider) (*state.GameState, error) {
	gs := &state.GameState{
		Objects:      make(map[ids.CardId]*state.CardInstance, len(w.Objects)),
		CardIds:      ids.NewAllocator[ids.Card](),
		Turn:         w.Turn,
		ActivePlayer: w.ActivePlayer,
		Priority:     w.Priority,
		Step:         state.Step(w.Step),
		StackObjects: append([]ids.CardId(nil), w.StackObjects...),
		Provider:     provider,
		Winner:       w.Winner,
		Over:         w.Over,
		Result:       w.Result,
	}
	gs.CardIds.Restore(w.NextId)

	gs.RNG = rng.NewFromSeed(0)
	if err := gs.RNG.Restore(w.RNGState); err != nil {
		return nil, engineerr.NewSnapshotCorrupt(err, "snapshot: restore rng state")
	}

	for i, p := range w.Players {
		gs.Players[i] = decodePlayer(p)
	}

	for _, wc := range w.Objects {
		card, err := decodeCard(wc, provider)
		if err != nil {
			return nil, err
		}
		gs.Objects[card.Id] = card
	}

	if w.Combat != nil {
		gs.Combat = decodeCombat(w.Combat)
	}

	return gs, nil
}

func decodePlayer(w wirePlayer) *state.Player {
	pool := mana.New()
	for c, n := range w.ManaPool {
		pool[carddef.Color(c)] = n
	}
	return &state.Player{
		Id:                  w.Id,
		Life:                w.Life,
		Library:             append([]ids.CardId(nil), w.Library...),
		Hand:                append([]ids.CardId(nil), w.Hand...),
		Graveyard:           append([]ids.CardId(nil), w.Graveyard...),
		Exile:               append([]ids.CardId(nil), w.Exile...),
		LandsPlayedThisTurn: w.LandsPlayedThisTurn,
		ManaPool:            pool,
	}
}

func decodeCard(w wireCard, provider carddef.Provider) (*state.CardInstance, error) {
	def, err := provider.Lookup(w.DefName)
	if err != nil {
		return nil, engineerr.NewCardDefinitionMissing(w.DefName)
	}
	mods := make([]state.Modifier, len(w.Modifiers))
	for i, m := range w.Modifiers {
		mods[i] = state.Modifier{
			Source: m.Source, PowerMod: m.PowerMod, ToughMod: m.ToughMod,
			Continuous: m.Continuous, UntilEOT: m.UntilEOT,
		}
	}
	counters := state.Counters{}
	for k, v := range w.Counters {
		counters[k] = v
	}
	return &state.CardInstance{
		Def:                def,
		Id:                 w.Id,
		Owner:              w.Owner,
		Controller:         w.Controller,
		Zone:               state.Zone(w.Zone),
		Tapped:             w.Tapped,
		FaceDown:           w.FaceDown,
		Transformed:        w.Transformed,
		TurnEntered:        w.TurnEntered,
		TurnControlChanged: w.TurnControlChanged,
		SummoningSick:      w.SummoningSick,
		DamageMarked:       w.DamageMarked,
		AttackedThisTurn:   w.AttackedThisTurn,
		Modifiers:          mods,
		Counters:           counters,
		SetPower:           w.SetPower,
		SetToughness:       w.SetToughness,
		AttachedTo:         w.AttachedTo,
		Attachments:        append([]ids.CardId(nil), w.Attachments...),
		StackTargets:       append([]ids.CardId(nil), w.StackTargets...),
		StackSource:        w.StackSource,
		StackX:             w.StackX,
	}, nil
}

func decodeCombat(w *wireCombat) *state.CombatState {
	cs := state.NewCombatState()
	for k, v := range w.Attackers {
		cs.Attackers[k] = v
	}
	for k, v := range w.Blockers {
		cs.Blockers[k] = append([]ids.CardId(nil), v...)
	}
	for k, v := range w.BlockedBy {
		cs.BlockedBy[k] = v
	}
	for k, v := range w.DamageOrder {
		cs.DamageOrder[k] = append([]ids.CardId(nil), v...)
	}
	cs.FirstStrikeDone = w.FirstStrikeDone
	return cs
}
