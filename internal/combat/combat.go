// Package combat implements the combat subsystem (spec §4.4): declaring
// attackers and blockers as a set (not one at a time), evasion
// (flying/reach, menace), damage assignment order, first/double-strike
// substeps, trample/lifelink/deathtouch, and the critical rule that every
// participant must be re-checked for still being on the battlefield right
// before damage is dealt. Grounded on the teacher's battle.go
// (executeAttack, applyDamage, isOnField-after-response-window) and
// timing.go (response windows between combat sub-steps), generalized from
// tcgx's ATK-position-only combat (no blocking at all) to full MTG
// attacker/blocker declaration.
package combat

import (
	"sort"

	"github.com/arcanelabs/duelcore/internal/carddef"
	"github.com/arcanelabs/duelcore/internal/engineerr"
	"github.com/arcanelabs/duelcore/internal/events"
	"github.com/arcanelabs/duelcore/internal/ids"
	"github.com/arcanelabs/duelcore/internal/state"
	"github.com/arcanelabs/duelcore/internal/undolog"
)

// Engine drives combat for one GameState.
type Engine struct {
	Sink events.Sink
	Log  *undolog.Log
}

func New(sink events.Sink, log *undolog.Log) *Engine { return &Engine{Sink: sink, Log: log} }

// LegalAttackers returns every creature controller may declare as an
// attacker: untapped, not summoning sick (unless it has Haste), under the
// attacking player's control.
func (e *Engine) LegalAttackers(gs *state.GameState, attackingPlayer int) []ids.CardId {
	var out []ids.CardId
	for _, obj := range gs.Battlefield() {
		if obj.Controller != attackingPlayer || obj.Def.Type != carddef.TypeCreature {
			continue
		}
		if obj.Tapped {
			continue
		}
		if obj.SummoningSick && !obj.Def.HasKeyword(carddef.Haste) {
			continue
		}
		out = append(out, obj.Id)
	}
	return out
}

// DeclareAttackers taps (unless Vigilance) and registers the chosen
// subset of attackers. The whole set is validated together, not
// accumulated attacker-by-attacker, matching spec §4.4's "all-at-once"
// declaration model (the teacher instead offers attacks one at a time via
// ActionAttack; duelcore drops that one-at-a-time loop as it cannot
// express the simultaneous-declaration semantics combat tricks rely on).
func (e *Engine) DeclareAttackers(gs *state.GameState, attackingPlayer int, attackers []ids.CardId) error {
	legal := map[ids.CardId]bool{}
	for _, a := range e.LegalAttackers(gs, attackingPlayer) {
		legal[a] = true
	}
	gs.Combat = state.NewCombatState()
	defendingPlayerId := gs.Players[gs.Opponent(attackingPlayer)].Id
	for _, a := range attackers {
		if !legal[a] {
			return engineerr.NewIllegalChoice("attacker %v is not a legal attacker", a)
		}
		obj := gs.Objects[a]
		if !obj.Def.HasKeyword(carddef.Vigilance) {
			obj.Tapped = true
		}
		obj.AttackedThisTurn = true
		gs.Combat.Attackers[a] = defendingPlayerId
		e.Sink.Log(events.Event{
			Turn: gs.Turn, Step: gs.Step.String(), Player: attackingPlayer,
			Type: events.DeclareAttackers, Card: obj.Def.Name,
			Details: obj.Def.Name + " attacks",
		})
	}
	return nil
}

// LegalBlockers returns creatures the defending player may assign to block
// the given attacker, applying evasion keywords (flying/reach).
func (e *Engine) LegalBlockers(gs *state.GameState, defendingPlayer int, attacker ids.CardId) []ids.CardId {
	atk := gs.Objects[attacker]
	var out []ids.CardId
	for _, obj := range gs.Battlefield() {
		if obj.Controller != defendingPlayer || obj.Def.Type != carddef.TypeCreature || obj.Tapped {
			continue
		}
		if atk.Def.HasKeyword(carddef.Flying) && !(obj.Def.HasKeyword(carddef.Flying) || obj.Def.HasKeyword(carddef.Reach)) {
			continue
		}
		if atk.Def.HasKeyword(carddef.Protection) && atk.StackX == int(obj.Def.Type) {
			continue
		}
		out = append(out, obj.Id)
	}
	return out
}

// DeclareBlockers registers the defending player's block assignment:
// attacker -> ordered list of blockers. Validates menace (>=2 blockers
// required once any block is declared against it) after the full
// assignment is known, per spec §4.4's "validated after full declaration"
// rule rather than rejecting the first blocker one at a time.
func (e *Engine) DeclareBlockers(gs *state.GameState, defendingPlayer int, assignment map[ids.CardId][]ids.CardId) error {
	usedBlockers := map[ids.CardId]bool{}
	for attacker, blockers := range assignment {
		atk, ok := gs.Objects[attacker]
		if !ok || gs.Combat == nil {
			return engineerr.NewInvariantViolation("declare blockers: unknown attacker %v", attacker)
		}
		if atk.Def.HasKeyword(carddef.Menace) && len(blockers) > 0 && len(blockers) < 2 {
			return engineerr.NewIllegalChoice("%s has menace: requires at least two blockers", atk.Def.Name)
		}
		legal := map[ids.CardId]bool{}
		for _, b := range e.LegalBlockers(gs, defendingPlayer, attacker) {
			legal[b] = true
		}
		for _, b := range blockers {
			if !legal[b] {
				return engineerr.NewIllegalChoice("blocker %v cannot legally block attacker %v", b, attacker)
			}
			if usedBlockers[b] {
				return engineerr.NewIllegalChoice("blocker %v assigned to block more than one attacker", b)
			}
			usedBlockers[b] = true
			gs.Combat.BlockedBy[b] = attacker
		}
		gs.Combat.Blockers[attacker] = blockers
		gs.Combat.DamageOrder[attacker] = append([]ids.CardId(nil), blockers...)
		bObj := gs.Objects[attacker]
		e.Sink.Log(events.Event{
			Turn: gs.Turn, Step: gs.Step.String(), Player: defendingPlayer,
			Type: events.DeclareBlockers, Card: bObj.Def.Name,
			Details: bObj.Def.Name + " blocked",
		})
	}
	return nil
}

// SetDamageOrder lets the attacking player order multiple blockers on one
// attacker for lethal-damage assignment (spec §4.4's "damage assignment
// ordering" choice point).
func (e *Engine) SetDamageOrder(gs *state.GameState, attacker ids.CardId, order []ids.CardId) error {
	current := gs.Combat.Blockers[attacker]
	if !sameSet(current, order) {
		return engineerr.NewIllegalChoice("damage order must be a permutation of the actual blockers")
	}
	gs.Combat.DamageOrder[attacker] = order
	return nil
}

func sameSet(a, b []ids.CardId) bool {
	if len(a) != len(b) {
		return false
	}
	seen := map[ids.CardId]int{}
	for _, x := range a {
		seen[x]++
	}
	for _, x := range b {
		seen[x]--
	}
	for _, v := range seen {
		if v != 0 {
			return false
		}
	}
	return true
}

// DealDamage runs one substep of combat damage (first-strike or regular).
// firstStrikeSubstep restricts participants, attackers and blockers alike,
// to creatures with FirstStrike/DoubleStrike; the regular substep includes
// every creature without FirstStrike, so DoubleStrike creatures deal damage
// a second time. Before computing any damage the
// engine re-validates that every attacker/blocker is still on the
// battlefield — the critical rule spec §4.4 calls out, grounded on the
// teacher's isOnField re-check in executeAttack/applyDamage after a
// response window may have removed a participant.
func (e *Engine) DealDamage(gs *state.GameState, firstStrikeSubstep bool) error {
	if gs.Combat == nil {
		return nil
	}
	participates := func(obj *state.CardInstance) bool {
		hasFS := obj.Def.HasKeyword(carddef.FirstStrike) || obj.Def.HasKeyword(carddef.DoubleStrike)
		if firstStrikeSubstep {
			return hasFS
		}
		return !obj.Def.HasKeyword(carddef.FirstStrike) || obj.Def.HasKeyword(carddef.DoubleStrike)
	}

	attackerIds := sortedKeys(gs.Combat.Attackers)
	type pending struct {
		targetCreature ids.CardId
		targetPlayer   int
		amount         int
		deathtouch     bool
		lifelinkFor    int
		source         ids.CardId
	}
	var plan []pending

	for _, atkId := range attackerIds {
		atk, ok := gs.Objects[atkId]
		if !ok || atk.Zone != state.ZoneBattlefield {
			continue
		}
		blockers := gs.Combat.DamageOrder[atkId]
		remaining := 0
		if participates(atk) {
			remaining = atk.Power()
		}
		deathtouch := atk.Def.HasKeyword(carddef.Deathtouch)
		lifelink := atk.Def.HasKeyword(carddef.Lifelink)

		liveBlockers := make([]ids.CardId, 0, len(blockers))
		for _, b := range blockers {
			if bObj, ok := gs.Objects[b]; ok && bObj.Zone == state.ZoneBattlefield {
				liveBlockers = append(liveBlockers, b)
			}
		}

		if len(liveBlockers) == 0 {
			if len(blockers) == 0 {
				// unblocked: damage goes to the defending player
				amt := remaining
				if amt > 0 {
					plan = append(plan, pending{targetPlayer: int(gs.Combat.Attackers[atkId]) - 1, amount: amt, deathtouch: deathtouch, source: atkId})
					if lifelink {
						plan[len(plan)-1].lifelinkFor = amt
					}
				}
			}
			// else: was blocked but all blockers removed before damage — no trample-through
			// without an assigned order; spec leaves this an edge case resolved
			// conservatively as "no damage" rather than guessing player intent.
			continue
		}

		for i, b := range liveBlockers {
			bObj := gs.Objects[b]
			assign := bObj.Toughness() - bObj.DamageMarked
			if deathtouch && assign > 1 {
				assign = 1
			}
			if assign > remaining {
				assign = remaining
			}
			if assign < 0 {
				assign = 0
			}
			remaining -= assign
			if assign > 0 {
				plan = append(plan, pending{targetCreature: b, amount: assign, deathtouch: deathtouch, source: atkId})
				if lifelink {
					plan[len(plan)-1].lifelinkFor = assign
				}
			}
			isLast := i == len(liveBlockers)-1
			if isLast && remaining > 0 && atk.Def.HasKeyword(carddef.Trample) {
				plan = append(plan, pending{targetPlayer: int(gs.Combat.Attackers[atkId]) - 1, amount: remaining, deathtouch: deathtouch, source: atkId})
				if lifelink {
					plan[len(plan)-1].lifelinkFor = remaining
				}
				remaining = 0
			}
			// each blocker also deals damage back to the attacker
			if atk.Zone == state.ZoneBattlefield && participates(bObj) {
				bDamage := bObj.Power()
				if bDamage > 0 {
					plan = append(plan, pending{targetCreature: atkId, amount: bDamage, deathtouch: bObj.Def.HasKeyword(carddef.Deathtouch), source: b})
					if bObj.Def.HasKeyword(carddef.Lifelink) {
						plan[len(plan)-1].lifelinkFor = bDamage
					}
				}
			}
		}
	}

	for _, p := range plan {
		if p.targetCreature.Valid() {
			target, ok := gs.Objects[p.targetCreature]
			if !ok || target.Zone != state.ZoneBattlefield {
				continue // removed between assignment and application
			}
			target.DamageMarked += p.amount
			e.Sink.Log(events.Event{Turn: gs.Turn, Step: gs.Step.String(), Type: events.CombatDamage,
				Card: target.Def.Name, Details: "combat damage dealt"})
		} else {
			gs.Players[p.targetPlayer].Life -= p.amount
			e.Sink.Log(events.Event{Turn: gs.Turn, Step: gs.Step.String(), Type: events.CombatDamage,
				Details: "combat damage to player"})
		}
		if p.lifelinkFor > 0 {
			if src, ok := gs.Objects[p.source]; ok {
				gs.Players[src.Controller].Life += p.lifelinkFor
			}
		}
	}

	gs.Combat.FirstStrikeDone = firstStrikeSubstep
	return nil
}

// CleanupDestroyed applies lethal-damage state-based destruction to every
// creature marked with lethal damage, the step-ending pass the teacher
// calls destroyByBattle for, generalized to consult Lethal (which accounts
// for Deathtouch) and to spare Indestructible creatures.
func (e *Engine) CleanupDestroyed(gs *state.GameState) {
	for _, obj := range gs.Battlefield() {
		if obj.Def.Type != carddef.TypeCreature {
			continue
		}
		// Deathtouch is not tracked per damage instance: any marked damage on
		// a creature that blocks, or is blocked by, a deathtouch creature in
		// the current combat counts as deathtouch damage.
		deathtouchHit := false
		if gs.Combat != nil {
			for atkId, blockers := range gs.Combat.Blockers {
				for _, b := range blockers {
					if b == obj.Id && gs.Objects[atkId].Def.HasKeyword(carddef.Deathtouch) ||
						atkId == obj.Id && gs.Objects[b].Def.HasKeyword(carddef.Deathtouch) {
						deathtouchHit = true
					}
				}
			}
		}
		if obj.Lethal(deathtouchHit) && !obj.Def.HasKeyword(carddef.Indestructible) {
			destroy(gs, e.Log, e.Sink, obj)
		}
	}
}

func destroy(gs *state.GameState, log *undolog.Log, sink events.Sink, obj *state.CardInstance) {
	undolog.MoveCard(log, gs, obj.Id, state.ZoneGraveyard)
	obj.DamageMarked = 0
	obj.Tapped = false
	sink.Log(events.Event{Turn: gs.Turn, Step: gs.Step.String(), Type: events.Destroyed,
		Card: obj.Def.Name, Details: obj.Def.Name + " destroyed"})
}

// ClearCombat resets combat tracking at EndCombat.
func (e *Engine) ClearCombat(gs *state.GameState) { gs.Combat = nil }

func sortedKeys(m map[ids.CardId]ids.PlayerId) []ids.CardId {
	out := make([]ids.CardId, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
