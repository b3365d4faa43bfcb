// Package controller defines the engine's fixed Controller capability set
// (spec §4.8) and its built-in implementations: a uniform-random
// controller (for fuzzing/MCTS rollout policies), a scripted controller
// (promoted from the teacher's test-only ScriptedController into a
// production type, since resume/replay needs exactly this shape), and the
// replay shim snapshot resume drives. The interface itself generalizes the
// teacher's PlayerController (duel.go) from Yu-Gi-Oh-specific
// ChooseAction/ChooseCards/ChooseYesNo to the MTG choice-point vocabulary
// spec §4.8 names.
package controller

import (
	"context"

	"github.com/arcanelabs/duelcore/internal/events"
	"github.com/arcanelabs/duelcore/internal/ids"
	"github.com/arcanelabs/duelcore/internal/state"
)

// Action describes one legal thing a player may currently do — the MTG
// analog of the teacher's Action struct (types.go), trading
// Normal/Sacrifice-Summon-style variants for Cast/Activate/PlayLand/Pass
// plus the combat-declaration actions.
type ActionKind int

const (
	ActionPass ActionKind = iota
	ActionPlayLand
	ActionCastSpell
	ActionActivateAbility
	ActionDeclareAttackers
	ActionDeclareBlockers
	ActionEndStep
)

type Action struct {
	Kind      ActionKind
	Card      ids.CardId
	Targets   []ids.CardId
	Attackers []ids.CardId
	Blockers  map[ids.CardId][]ids.CardId
	X         int
	Desc      string
}

// Controller is the capability set every decision-making participant
// implements: a human driver, a heuristic AI (evaluation internals out of
// scope per spec §1), a scripted test harness, or the replay shim used
// during snapshot resume.
type Controller interface {
	ChooseAction(ctx context.Context, gs *state.GameState, legal []Action) (Action, error)
	ChooseTargets(ctx context.Context, gs *state.GameState, prompt string, candidates []ids.CardId, min, max int) ([]ids.CardId, error)
	ChooseYesNo(ctx context.Context, gs *state.GameState, prompt string) (bool, error)
	ChooseManaSources(ctx context.Context, gs *state.GameState, player int, candidates []ids.CardId, need int) ([]ids.CardId, error)
	ChooseDamageOrder(ctx context.Context, gs *state.GameState, attacker ids.CardId, blockers []ids.CardId) ([]ids.CardId, error)
	ChooseCardsToDiscard(ctx context.Context, gs *state.GameState, player int, hand []ids.CardId, count int) ([]ids.CardId, error)
	Notify(ctx context.Context, e events.Event) error
}

// StateSnapshotter is optionally implemented by controllers that carry
// their own state across a snapshot boundary (e.g. a scripted controller's
// script position). Snapshot/resume calls these when present.
type StateSnapshotter interface {
	SnapshotState() ([]byte, error)
	RestoreState([]byte) error
}
