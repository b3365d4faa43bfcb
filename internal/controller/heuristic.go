package controller

import (
	"context"

	"github.com/arcanelabs/duelcore/internal/events"
	"github.com/arcanelabs/duelcore/internal/ids"
	"github.com/arcanelabs/duelcore/internal/state"
)

// Heuristic is a fixed, non-learning policy: prefer developing the board
// (playing lands, casting spells, attacking) over passing, and otherwise
// take the first legal option. The evaluation function an actual
// heuristic AI would use is explicitly out of scope (spec §1, "the engine
// only sees it through the controller interface") — this is the minimal
// concrete instance needed to make the `heuristic` controller kind
// selectable, not a competitive strategy.
type Heuristic struct{}

func NewHeuristic() *Heuristic { return &Heuristic{} }

func (h *Heuristic) ChooseAction(ctx context.Context, gs *state.GameState, legal []Action) (Action, error) {
	best := legal[0]
	bestRank := rankAction(best)
	for _, a := range legal[1:] {
		if r := rankAction(a); r > bestRank {
			best, bestRank = a, r
		}
	}
	return best, nil
}

// rankAction favors board development over combat over passing, breaking
// ties in favor of whichever option sorts earliest in the legal-action
// list the caller already produced in a stable order.
func rankAction(a Action) int {
	switch a.Kind {
	case ActionPlayLand, ActionCastSpell, ActionActivateAbility:
		return 3
	case ActionDeclareAttackers:
		if len(a.Attackers) > 0 {
			return 2
		}
		return 0
	case ActionDeclareBlockers:
		return 1
	default:
		return 0
	}
}

func (h *Heuristic) ChooseTargets(ctx context.Context, gs *state.GameState, prompt string, candidates []ids.CardId, min, max int) ([]ids.CardId, error) {
	n := max
	if n > len(candidates) {
		n = len(candidates)
	}
	if n < min {
		n = min
	}
	return append([]ids.CardId(nil), candidates[:n]...), nil
}

func (h *Heuristic) ChooseYesNo(ctx context.Context, gs *state.GameState, prompt string) (bool, error) {
	return true, nil
}

func (h *Heuristic) ChooseManaSources(ctx context.Context, gs *state.GameState, player int, candidates []ids.CardId, need int) ([]ids.CardId, error) {
	if need > len(candidates) {
		need = len(candidates)
	}
	return append([]ids.CardId(nil), candidates[:need]...), nil
}

func (h *Heuristic) ChooseDamageOrder(ctx context.Context, gs *state.GameState, attacker ids.CardId, blockers []ids.CardId) ([]ids.CardId, error) {
	return blockers, nil
}

func (h *Heuristic) ChooseCardsToDiscard(ctx context.Context, gs *state.GameState, player int, hand []ids.CardId, count int) ([]ids.CardId, error) {
	if count > len(hand) {
		count = len(hand)
	}
	return append([]ids.CardId(nil), hand[:count]...), nil
}

func (h *Heuristic) Notify(ctx context.Context, e events.Event) error { return nil }
