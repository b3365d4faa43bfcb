package controller

import (
	"context"

	"github.com/arcanelabs/duelcore/internal/events"
	"github.com/arcanelabs/duelcore/internal/ids"
	"github.com/arcanelabs/duelcore/internal/state"
)

// Zero is the "zero intelligence" controller spec §6 names: every decision
// resolves to the first legal option, deterministically, with no RNG
// consumption at all. It exists as a baseline opponent for regression
// tests where even Random's RNG draws would be one variable too many.
type Zero struct{}

func NewZero() *Zero { return &Zero{} }

func (z *Zero) ChooseAction(ctx context.Context, gs *state.GameState, legal []Action) (Action, error) {
	return legal[0], nil
}

func (z *Zero) ChooseTargets(ctx context.Context, gs *state.GameState, prompt string, candidates []ids.CardId, min, max int) ([]ids.CardId, error) {
	n := min
	if n > len(candidates) {
		n = len(candidates)
	}
	return append([]ids.CardId(nil), candidates[:n]...), nil
}

func (z *Zero) ChooseYesNo(ctx context.Context, gs *state.GameState, prompt string) (bool, error) {
	return false, nil
}

func (z *Zero) ChooseManaSources(ctx context.Context, gs *state.GameState, player int, candidates []ids.CardId, need int) ([]ids.CardId, error) {
	if need > len(candidates) {
		need = len(candidates)
	}
	return append([]ids.CardId(nil), candidates[:need]...), nil
}

func (z *Zero) ChooseDamageOrder(ctx context.Context, gs *state.GameState, attacker ids.CardId, blockers []ids.CardId) ([]ids.CardId, error) {
	return blockers, nil
}

func (z *Zero) ChooseCardsToDiscard(ctx context.Context, gs *state.GameState, player int, hand []ids.CardId, count int) ([]ids.CardId, error) {
	if count > len(hand) {
		count = len(hand)
	}
	return append([]ids.CardId(nil), hand[:count]...), nil
}

func (z *Zero) Notify(ctx context.Context, e events.Event) error { return nil }
