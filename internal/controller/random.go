package controller

import (
	"context"

	"github.com/arcanelabs/duelcore/internal/events"
	"github.com/arcanelabs/duelcore/internal/ids"
	"github.com/arcanelabs/duelcore/internal/rng"
	"github.com/arcanelabs/duelcore/internal/state"
)

// Random picks uniformly among legal options, using the game's own RNG
// stream rather than an independent source — keeping the single-RNG
// discipline spec §4.9 requires even for "dumb" automated play, the way a
// self-play/MCTS rollout policy needs to stay reproducible from a seed.
type Random struct {
	Stream *rng.Stream
}

func NewRandom(s *rng.Stream) *Random { return &Random{Stream: s} }

func (r *Random) ChooseAction(ctx context.Context, gs *state.GameState, legal []Action) (Action, error) {
	if len(legal) == 0 {
		return Action{Kind: ActionPass}, nil
	}
	return legal[r.Stream.IntN(len(legal))], nil
}

func (r *Random) ChooseTargets(ctx context.Context, gs *state.GameState, prompt string, candidates []ids.CardId, min, max int) ([]ids.CardId, error) {
	n := min
	if max > min {
		n = min + r.Stream.IntN(max-min+1)
	}
	if n > len(candidates) {
		n = len(candidates)
	}
	pool := append([]ids.CardId(nil), candidates...)
	r.Stream.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	return pool[:n], nil
}

func (r *Random) ChooseYesNo(ctx context.Context, gs *state.GameState, prompt string) (bool, error) {
	return r.Stream.IntN(2) == 1, nil
}

func (r *Random) ChooseManaSources(ctx context.Context, gs *state.GameState, player int, candidates []ids.CardId, need int) ([]ids.CardId, error) {
	if need > len(candidates) {
		need = len(candidates)
	}
	pool := append([]ids.CardId(nil), candidates...)
	r.Stream.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	return pool[:need], nil
}

func (r *Random) ChooseDamageOrder(ctx context.Context, gs *state.GameState, attacker ids.CardId, blockers []ids.CardId) ([]ids.CardId, error) {
	pool := append([]ids.CardId(nil), blockers...)
	r.Stream.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	return pool, nil
}

func (r *Random) ChooseCardsToDiscard(ctx context.Context, gs *state.GameState, player int, hand []ids.CardId, count int) ([]ids.CardId, error) {
	if count > len(hand) {
		count = len(hand)
	}
	pool := append([]ids.CardId(nil), hand...)
	r.Stream.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	return pool[:count], nil
}

func (r *Random) Notify(ctx context.Context, e events.Event) error { return nil }
