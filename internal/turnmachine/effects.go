package turnmachine

import (
	"fmt"

	"github.com/arcanelabs/duelcore/internal/carddef"
	"github.com/arcanelabs/duelcore/internal/events"
	"github.com/arcanelabs/duelcore/internal/ids"
	"github.com/arcanelabs/duelcore/internal/state"
	"github.com/arcanelabs/duelcore/internal/undolog"
)

// interpretEffects is the single place a resolved ability's []carddef.Effect
// turns into actual mutations, wired into stack.Engine.Interpret. It reads
// the stack object's recorded source/controller/targets/X the way the
// teacher's effect.go handlers read a CardEffect closure's captured
// arguments, but dispatches on the closed EffectKind tag instead of calling
// an arbitrary function pointer.
func (e *Engine) interpretEffects(gs *state.GameState, obj *state.CardInstance, effects []carddef.Effect) {
	source := obj.StackSource
	controllerIdx := obj.Controller
	targets := obj.StackTargets
	x := obj.StackX

	for _, eff := range effects {
		amount := eff.Amount
		if amount == 0 && x != 0 {
			amount = x
		}
		switch eff.Kind {
		case carddef.EffectDealDamage:
			e.applyDamage(gs, targets, controllerIdx, amount)
		case carddef.EffectDraw:
			for i := 0; i < amount; i++ {
				e.drawOne(controllerIdx)
			}
		case carddef.EffectDestroy:
			e.destroyTargets(gs, targets)
		case carddef.EffectGainLife:
			e.changeLife(gs, controllerIdx, amount)
		case carddef.EffectLoseLife:
			e.changeLife(gs, controllerIdx, -amount)
		case carddef.EffectPump:
			e.pumpTargets(gs, source, targets, amount, eff.Duration)
		case carddef.EffectTap:
			e.setTappedTargets(gs, targets, true)
		case carddef.EffectUntap:
			e.setTappedTargets(gs, targets, false)
		case carddef.EffectMill:
			e.millTargets(gs, targets, amount)
		case carddef.EffectAddCounters:
			e.addCounters(gs, targets, eff.Counter, amount)
		case carddef.EffectRemoveCounters:
			e.addCounters(gs, targets, eff.Counter, -amount)
		case carddef.EffectReturnToHand:
			e.returnToHand(gs, targets)
		case carddef.EffectExile:
			e.exileTargets(gs, targets)
		case carddef.EffectGainControl:
			e.gainControl(gs, targets, controllerIdx)
		case carddef.EffectCounter:
			e.counterTopOfStack(gs)
		// EffectCreateToken and EffectRegenerate need a concrete token
		// definition / a damage-replacement shield respectively, neither of
		// which a CardDefinition's static fields carry yet; left as a
		// deliberate gap rather than guessing a shape, consistent with
		// spec's out-of-scope card-script DSL.
		case carddef.EffectCreateToken, carddef.EffectRegenerate:
		}
	}
}

func (e *Engine) applyDamage(gs *state.GameState, targets []ids.CardId, sourceController int, amount int) {
	if amount <= 0 {
		return
	}
	if len(targets) == 0 {
		opp := gs.Opponent(sourceController)
		e.changeLife(gs, opp, -amount)
		return
	}
	for _, t := range targets {
		if obj, ok := gs.Objects[t]; ok && obj.Zone == state.ZoneBattlefield {
			obj.DamageMarked += amount
			e.Sink.Log(events.Event{Turn: gs.Turn, Step: gs.Step.String(), Type: events.CombatDamage,
				Card: obj.Def.Name, Details: fmt.Sprintf("%s takes %d damage", obj.Def.Name, amount)})
		}
	}
	e.Combat.CleanupDestroyed(gs)
}

func (e *Engine) changeLife(gs *state.GameState, player int, delta int) {
	if delta == 0 {
		return
	}
	gs.Players[player].Life += delta
	e.Log.Append(undolog.Action{Kind: undolog.ActionLifeDelta, Turn: gs.Turn, PlayerIdx: player, Delta: delta})
	e.Sink.Log(events.Event{Turn: gs.Turn, Step: gs.Step.String(), Player: player, Type: events.LifeChange,
		Details: fmt.Sprintf("life change %+d", delta)})
	gs.CheckStateBasedActions()
}

func (e *Engine) destroyTargets(gs *state.GameState, targets []ids.CardId) {
	for _, t := range targets {
		obj, ok := gs.Objects[t]
		if !ok || obj.Zone != state.ZoneBattlefield || obj.Def.HasKeyword(carddef.Indestructible) {
			continue
		}
		undolog.MoveCard(e.Log, gs, t, state.ZoneGraveyard)
		obj.DamageMarked = 0
		obj.Tapped = false
		e.Sink.Log(events.Event{Turn: gs.Turn, Step: gs.Step.String(), Type: events.Destroyed,
			Card: obj.Def.Name, Details: obj.Def.Name + " destroyed"})
	}
}

func (e *Engine) pumpTargets(gs *state.GameState, source ids.CardId, targets []ids.CardId, amount int, duration int) {
	for _, t := range targets {
		obj, ok := gs.Objects[t]
		if !ok {
			continue
		}
		obj.AddModifier(state.Modifier{Source: source, PowerMod: amount, ToughMod: amount, UntilEOT: duration <= 1})
	}
}

func (e *Engine) setTappedTargets(gs *state.GameState, targets []ids.CardId, tapped bool) {
	for _, t := range targets {
		if obj, ok := gs.Objects[t]; ok {
			old := obj.Tapped
			obj.Tapped = tapped
			e.Log.Append(undolog.Action{Kind: undolog.ActionSetTapped, Turn: gs.Turn, Card: t, OldTapped: old, NewTapped: tapped})
		}
	}
}

func (e *Engine) millTargets(gs *state.GameState, targets []ids.CardId, amount int) {
	players := targets
	if len(players) == 0 {
		return
	}
	for _, t := range players {
		obj, ok := gs.Objects[t]
		if !ok {
			continue
		}
		p := gs.Players[obj.Owner]
		for i := 0; i < amount && len(p.Library) > 0; i++ {
			top := p.Library[0]
			undolog.MoveCard(e.Log, gs, top, state.ZoneGraveyard)
		}
	}
}

func (e *Engine) addCounters(gs *state.GameState, targets []ids.CardId, counterType string, delta int) {
	if counterType == "" {
		counterType = "+1/+1"
	}
	for _, t := range targets {
		obj, ok := gs.Objects[t]
		if !ok {
			continue
		}
		before := obj.Counters[counterType]
		after := before + delta
		if after < 0 {
			after = 0
		}
		obj.Counters[counterType] = after
		applied := after - before
		if applied == 0 {
			continue
		}
		kind := undolog.ActionAddCounter
		magnitude := applied
		if applied < 0 {
			kind = undolog.ActionRemoveCounter
			magnitude = -applied
		}
		e.Log.Append(undolog.Action{Kind: kind, Turn: gs.Turn, Card: t, CounterType: counterType, Delta: magnitude})
	}
}

func (e *Engine) returnToHand(gs *state.GameState, targets []ids.CardId) {
	for _, t := range targets {
		obj, ok := gs.Objects[t]
		if !ok {
			continue
		}
		undolog.MoveCard(e.Log, gs, t, state.ZoneHand)
		obj.Tapped = false
		obj.DamageMarked = 0
		obj.Modifiers = nil
	}
}

func (e *Engine) exileTargets(gs *state.GameState, targets []ids.CardId) {
	for _, t := range targets {
		if _, ok := gs.Objects[t]; !ok {
			continue
		}
		undolog.MoveCard(e.Log, gs, t, state.ZoneExile)
	}
}

func (e *Engine) gainControl(gs *state.GameState, targets []ids.CardId, newController int) {
	for _, t := range targets {
		if obj, ok := gs.Objects[t]; ok && obj.Zone == state.ZoneBattlefield {
			old := obj.Controller
			obj.Controller = newController
			obj.TurnControlChanged = gs.Turn
			e.Log.Append(undolog.Action{Kind: undolog.ActionSetController, Turn: gs.Turn, Card: t,
				OldController: old, NewController: newController})
		}
	}
}

// counterTopOfStack removes the object just beneath the resolving counter
// spell, matching EffectCounter's "counter target spell" wording for the
// common case of a counterspell with a single stack-object target.
func (e *Engine) counterTopOfStack(gs *state.GameState) {
	if len(gs.StackObjects) == 0 {
		return
	}
	top := gs.StackObjects[len(gs.StackObjects)-1]
	gs.StackObjects = gs.StackObjects[:len(gs.StackObjects)-1]
	obj, ok := gs.Objects[top]
	if !ok {
		return
	}
	undolog.MoveCard(e.Log, gs, top, state.ZoneGraveyard)
	e.Sink.Log(events.Event{Turn: gs.Turn, Step: gs.Step.String(), Type: events.Fizzle,
		Card: obj.Def.Name, Details: obj.Def.Name + " countered"})
}
