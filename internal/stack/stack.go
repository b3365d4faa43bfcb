// Package stack implements the casting protocol and LIFO resolution
// (spec §4.3): pushing spells/abilities, target legality and
// fizzle-on-resolution, and simultaneous-trigger ordering. It generalizes
// the teacher's chain.go (a Chain of ChainLinks resolved LIFO) from
// Yu-Gi-Oh "chain links" to MTG "stack objects", and keeps the teacher's
// TP/NTP mandatory-before-optional trigger serialization from
// effect_resolution.go unchanged in shape.
package stack

import (
	"sort"

	"github.com/arcanelabs/duelcore/internal/carddef"
	"github.com/arcanelabs/duelcore/internal/engineerr"
	"github.com/arcanelabs/duelcore/internal/events"
	"github.com/arcanelabs/duelcore/internal/ids"
	"github.com/arcanelabs/duelcore/internal/state"
	"github.com/arcanelabs/duelcore/internal/undolog"
)

// Entry is one object on the stack: a spell, an activated ability, or a
// triggered ability. Direct analog of the teacher's ChainLink.
type Entry struct {
	Object     ids.CardId // the CardInstance representing this stack object (Zone==ZoneStack)
	Source     ids.CardId // the permanent this ability belongs to (equals Object for spells)
	Ability    *carddef.Ability
	Controller int
	Targets    []ids.CardId
	X          int
}

// PendingTrigger is a triggered ability waiting to be placed on the stack,
// in the form SerializeTriggers orders — same shape as the teacher's
// PendingTrigger + processEffectSerialization.
type PendingTrigger struct {
	Source     ids.CardId
	Ability    *carddef.Ability
	Controller int
	Mandatory  bool
}

// Engine drives the stack for one GameState. It holds no game state of its
// own, only the shared events sink, the undo log and the Interpret hook;
// stack contents live on gs.StackObjects/gs.Objects so a snapshot captures
// them for free.
//
// Interpret, when set, is handed the []carddef.Effect an ability's Resolve
// hook returns so the caller can turn each tagged Effect into actual
// state/mana mutations (the stack package itself only sequences resolution
// and stays agnostic of how an Effect's Kind is carried out, to avoid an
// import cycle with the packages that know how to apply one).
type Engine struct {
	Sink      events.Sink
	Log       *undolog.Log
	Interpret func(gs *state.GameState, obj *state.CardInstance, effects []carddef.Effect)
}

func New(sink events.Sink, log *undolog.Log) *Engine { return &Engine{Sink: sink, Log: log} }

// Push places a new Entry on top of the stack.
func (e *Engine) Push(gs *state.GameState, entry Entry) {
	gs.StackObjects = append(gs.StackObjects, entry.Object)
	obj := gs.Objects[entry.Object]
	obj.Zone = state.ZoneStack
	obj.StackSource = entry.Source
	obj.StackTargets = entry.Targets
	obj.StackX = entry.X
	obj.Controller = entry.Controller

	e.Sink.Log(events.Event{
		Turn: gs.Turn, Step: gs.Step.String(), Player: entry.Controller,
		Type: events.CastSpell, Card: obj.Def.Name,
		Details: "stack: " + obj.Def.Name,
	})
}

// IsEmpty reports whether the stack has no objects.
func (e *Engine) IsEmpty(gs *state.GameState) bool { return len(gs.StackObjects) == 0 }

// ResolveTop resolves the top-of-stack object: recomputes target legality
// (fizzling per spec §4.3 if every chosen target is now illegal), runs its
// Resolve hook, then — for instants/sorceries — moves the spent card to
// the graveyard; permanents that resolved move to the battlefield. This is
// the MTG analog of the teacher's resolveChain loop, applied one entry at
// a time since the caller (turnmachine) re-opens priority after every
// single resolution rather than draining the whole stack at once.
func (e *Engine) ResolveTop(gs *state.GameState, ctx any) error {
	if e.IsEmpty(gs) {
		return nil
	}
	top := gs.StackObjects[len(gs.StackObjects)-1]
	gs.StackObjects = gs.StackObjects[:len(gs.StackObjects)-1]
	obj := gs.Objects[top]

	legal := e.legalTargetsRemain(gs, obj)
	if len(obj.StackTargets) > 0 && !legal {
		e.Sink.Log(events.Event{
			Turn: gs.Turn, Step: gs.Step.String(), Player: obj.Controller,
			Type: events.Fizzle, Card: obj.Def.Name,
			Details: obj.Def.Name + " fizzles: no legal targets remain",
		})
		e.moveResolvedCard(gs, obj, true)
		return nil
	}

	ability := findResolveAbility(obj.Def)
	if ability != nil && ability.Resolve != nil {
		effects := ability.Resolve(ctx)
		if e.Interpret != nil {
			e.Interpret(gs, obj, effects)
		}
	}

	e.Sink.Log(events.Event{
		Turn: gs.Turn, Step: gs.Step.String(), Player: obj.Controller,
		Type: events.StackResolve, Card: obj.Def.Name,
		Details: obj.Def.Name + " resolves",
	})

	e.moveResolvedCard(gs, obj, false)
	return nil
}

func (e *Engine) moveResolvedCard(gs *state.GameState, obj *state.CardInstance, fizzled bool) {
	if obj.Def.Type.IsPermanent() {
		undolog.MoveCard(e.Log, gs, obj.Id, state.ZoneBattlefield)
		obj.SummoningSick = true
		obj.TurnEntered = gs.Turn
		return
	}
	undolog.MoveCard(e.Log, gs, obj.Id, state.ZoneGraveyard)
}

// legalTargetsRemain reports whether at least one of the object's chosen
// targets is still a legal target (still exists, still on the battlefield
// for permanent targets). An object with zero required targets is always
// legal.
func (e *Engine) legalTargetsRemain(gs *state.GameState, obj *state.CardInstance) bool {
	if len(obj.StackTargets) == 0 {
		return true
	}
	for _, t := range obj.StackTargets {
		target, ok := gs.Objects[t]
		if !ok {
			continue
		}
		if target.Zone == state.ZoneBattlefield {
			return true
		}
	}
	return false
}

func findResolveAbility(def *carddef.CardDefinition) *carddef.Ability {
	for i := range def.Abilities {
		if def.Abilities[i].Resolve != nil {
			return &def.Abilities[i]
		}
	}
	return nil
}

// Cast validates and pushes a spell from hand/battlefield onto the stack.
// Mana payment and cost computation happen in the caller (turnmachine),
// which has access to the Player's mana pool; Cast only handles the
// target-legality and stack-placement half of spec §4.3's casting
// protocol.
func (e *Engine) Cast(gs *state.GameState, cardId ids.CardId, controller int, targets []ids.CardId, x int) error {
	obj, ok := gs.Objects[cardId]
	if !ok {
		return engineerr.NewInvariantViolation("cast: unknown card %v", cardId)
	}
	ability := findResolveAbility(obj.Def)
	if ability != nil && ability.Targets != nil {
		if len(targets) < ability.Targets.Min || len(targets) > ability.Targets.Max {
			return engineerr.NewIllegalChoice("cast %s: expected %d-%d targets, got %d",
				obj.Def.Name, ability.Targets.Min, ability.Targets.Max, len(targets))
		}
	}
	e.Push(gs, Entry{Object: cardId, Source: cardId, Ability: ability, Controller: controller, Targets: targets, X: x})
	return nil
}

// SerializeTriggers orders a batch of simultaneously-collected triggers:
// active player's mandatory triggers, then non-active player's mandatory,
// then active player's optional, then non-active player's optional —
// kept in the exact shape of the teacher's processEffectSerialization.
// Within each bucket, triggers are sorted by source card id for
// determinism (spec's "tie-break by lowest Id" rule for simultaneous
// events with no other ordering signal).
func SerializeTriggers(active int, triggers []PendingTrigger) []PendingTrigger {
	bucket := func(p PendingTrigger, mandatory bool) bool {
		return p.Mandatory == mandatory && p.Controller == active
	}
	var out []PendingTrigger
	order := []func(PendingTrigger) bool{
		func(p PendingTrigger) bool { return bucket(p, true) },
		func(p PendingTrigger) bool { return p.Mandatory && p.Controller != active },
		func(p PendingTrigger) bool { return !p.Mandatory && p.Controller == active },
		func(p PendingTrigger) bool { return !p.Mandatory && p.Controller != active },
	}
	for _, match := range order {
		var bucketItems []PendingTrigger
		for _, t := range triggers {
			if match(t) {
				bucketItems = append(bucketItems, t)
			}
		}
		sort.Slice(bucketItems, func(i, j int) bool { return bucketItems[i].Source < bucketItems[j].Source })
		out = append(out, bucketItems...)
	}
	return out
}
