package controller

import (
	"context"
	"fmt"

	"github.com/arcanelabs/duelcore/internal/events"
	"github.com/arcanelabs/duelcore/internal/ids"
	"github.com/arcanelabs/duelcore/internal/state"
)

// ScriptedStep is one pre-programmed decision the Scripted controller will
// return the next time the matching Choose* method is called. Unlike the
// teacher's test-only ScriptedController (which matched a queue per
// Choose* method independently), Scripted interleaves everything into one
// ordered script so it can double as the replay shim's action source on
// snapshot resume: replaying a game is "run the scripted sequence of
// decisions that were actually made."
type ScriptedStep struct {
	Action       Action          // for ChooseAction
	Targets      []ids.CardId    // for ChooseTargets
	YesNo        bool            // for ChooseYesNo
	ManaSources  []ids.CardId    // for ChooseManaSources
	DamageOrder  []ids.CardId    // for ChooseDamageOrder
	Discards     []ids.CardId    // for ChooseCardsToDiscard
}

// Scripted is a Controller driven by a canned sequence of decisions,
// promoted from the teacher's test-only ScriptedController to a
// first-class production type because both deterministic tests and the
// snapshot replay shim need exactly this behavior.
type Scripted struct {
	Name  string
	steps []ScriptedStep
	pos   int
	// Fallback is consulted once the script is exhausted; nil means
	// "error on exhaustion", matching the strict determinism tests want.
	Fallback Controller
	// OnExhausted fires exactly once, the first time a Choose* call finds
	// the script exhausted and falls through to Fallback. Snapshot resume's
	// replay shim (package snapshot) uses this to know the instant replay
	// mode should end for this player, per spec §4.7's "replay mode exits
	// when the last stored choice has been consumed" rule.
	OnExhausted func()
	firedExhausted bool
}

func NewScripted(name string) *Scripted { return &Scripted{Name: name} }

func (s *Scripted) Push(step ScriptedStep) *Scripted {
	s.steps = append(s.steps, step)
	return s
}

// exhausted reports whether the script has run out, firing OnExhausted the
// first time this becomes true.
func (s *Scripted) exhausted() bool {
	if s.pos < len(s.steps) {
		return false
	}
	if !s.firedExhausted {
		s.firedExhausted = true
		if s.OnExhausted != nil {
			s.OnExhausted()
		}
	}
	return true
}

func (s *Scripted) next() (ScriptedStep, error) {
	if s.pos >= len(s.steps) {
		return ScriptedStep{}, fmt.Errorf("controller %s: script exhausted after %d steps", s.Name, s.pos)
	}
	step := s.steps[s.pos]
	s.pos++
	return step, nil
}

func (s *Scripted) ChooseAction(ctx context.Context, gs *state.GameState, legal []Action) (Action, error) {
	if s.exhausted() && s.Fallback != nil {
		return s.Fallback.ChooseAction(ctx, gs, legal)
	}
	step, err := s.next()
	return step.Action, err
}

func (s *Scripted) ChooseTargets(ctx context.Context, gs *state.GameState, prompt string, candidates []ids.CardId, min, max int) ([]ids.CardId, error) {
	if s.exhausted() && s.Fallback != nil {
		return s.Fallback.ChooseTargets(ctx, gs, prompt, candidates, min, max)
	}
	step, err := s.next()
	return step.Targets, err
}

func (s *Scripted) ChooseYesNo(ctx context.Context, gs *state.GameState, prompt string) (bool, error) {
	if s.exhausted() && s.Fallback != nil {
		return s.Fallback.ChooseYesNo(ctx, gs, prompt)
	}
	step, err := s.next()
	return step.YesNo, err
}

func (s *Scripted) ChooseManaSources(ctx context.Context, gs *state.GameState, player int, candidates []ids.CardId, need int) ([]ids.CardId, error) {
	if s.exhausted() && s.Fallback != nil {
		return s.Fallback.ChooseManaSources(ctx, gs, player, candidates, need)
	}
	step, err := s.next()
	return step.ManaSources, err
}

func (s *Scripted) ChooseDamageOrder(ctx context.Context, gs *state.GameState, attacker ids.CardId, blockers []ids.CardId) ([]ids.CardId, error) {
	if s.exhausted() && s.Fallback != nil {
		return s.Fallback.ChooseDamageOrder(ctx, gs, attacker, blockers)
	}
	step, err := s.next()
	if err != nil {
		return nil, err
	}
	if step.DamageOrder == nil {
		return blockers, nil
	}
	return step.DamageOrder, nil
}

func (s *Scripted) ChooseCardsToDiscard(ctx context.Context, gs *state.GameState, player int, hand []ids.CardId, count int) ([]ids.CardId, error) {
	if s.exhausted() && s.Fallback != nil {
		return s.Fallback.ChooseCardsToDiscard(ctx, gs, player, hand, count)
	}
	step, err := s.next()
	return step.Discards, err
}

func (s *Scripted) Notify(ctx context.Context, e events.Event) error { return nil }

// Pos returns the current script cursor, used by snapshot encode to record
// exactly how far into the script play had progressed.
func (s *Scripted) Pos() int { return s.pos }

// SnapshotState implements controller.StateSnapshotter.
func (s *Scripted) SnapshotState() ([]byte, error) {
	return []byte(fmt.Sprintf("%d", s.pos)), nil
}

// RestoreState implements controller.StateSnapshotter.
func (s *Scripted) RestoreState(b []byte) error {
	var pos int
	if _, err := fmt.Sscanf(string(b), "%d", &pos); err != nil {
		return err
	}
	s.pos = pos
	return nil
}
