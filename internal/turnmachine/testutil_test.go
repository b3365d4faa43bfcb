package turnmachine

import (
	"context"
	"testing"

	"github.com/arcanelabs/duelcore/internal/carddef"
	"github.com/arcanelabs/duelcore/internal/controller"
	"github.com/arcanelabs/duelcore/internal/events"
	"github.com/arcanelabs/duelcore/internal/ids"
	"github.com/arcanelabs/duelcore/internal/state"
)

// scriptedStep is one pre-programmed decision matched by action kind plus,
// optionally, the card/target name it should apply to — the same
// peek-and-match-by-name scheme the teacher's ScriptedController uses, kept
// here instead of reusing controller.Scripted (which matches by id, the
// right shape for replay but not for hand-authoring a test script before
// any CardId has been assigned).
type scriptedStep struct {
	kind       controller.ActionKind
	cardName   string
	targetName string
}

type byNameController struct {
	t       *testing.T
	name    string
	steps   []scriptedStep
	pos     int
	lastHit int // index into steps of the decision ChooseTargets should serve, or -1

	// attackNames/blockNames are separate FIFO queues for the declare
	// attackers/blockers prompts, which duelcore drives through ChooseTargets
	// directly rather than through a ChooseAction decision.
	attackNames [][]string
	blockNames  [][]string
	attackPos   int
	blockPos    int
}

func newScripted(t *testing.T, name string) *byNameController {
	return &byNameController{t: t, name: name, lastHit: -1}
}

func (c *byNameController) play(kind controller.ActionKind, cardName string) *byNameController {
	c.steps = append(c.steps, scriptedStep{kind: kind, cardName: cardName})
	return c
}

func (c *byNameController) playTargeted(kind controller.ActionKind, cardName, targetName string) *byNameController {
	c.steps = append(c.steps, scriptedStep{kind: kind, cardName: cardName, targetName: targetName})
	return c
}

func (c *byNameController) attack(names ...string) *byNameController {
	c.attackNames = append(c.attackNames, names)
	return c
}

func (c *byNameController) block(names ...string) *byNameController {
	c.blockNames = append(c.blockNames, names)
	return c
}

func nameOf(gs *state.GameState, id ids.CardId) string {
	if obj, ok := gs.Objects[id]; ok && obj.Def != nil {
		return obj.Def.Name
	}
	return ""
}

func (c *byNameController) ChooseAction(ctx context.Context, gs *state.GameState, legal []controller.Action) (controller.Action, error) {
	if c.pos < len(c.steps) {
		want := c.steps[c.pos]
		for _, a := range legal {
			if a.Kind != want.kind {
				continue
			}
			if want.cardName != "" && nameOf(gs, a.Card) != want.cardName {
				continue
			}
			c.lastHit = c.pos
			c.pos++
			return a, nil
		}
	}
	for _, a := range legal {
		if a.Kind == controller.ActionPass {
			return a, nil
		}
	}
	return legal[len(legal)-1], nil
}

func (c *byNameController) ChooseTargets(ctx context.Context, gs *state.GameState, prompt string, candidates []ids.CardId, min, max int) ([]ids.CardId, error) {
	switch prompt {
	case "declare attackers":
		return c.pickNamed(gs, candidates, c.attackNames, &c.attackPos), nil
	case "declare blockers":
		return c.pickNamed(gs, candidates, c.blockNames, &c.blockPos), nil
	}
	if c.lastHit >= 0 {
		want := c.steps[c.lastHit]
		if want.targetName != "" {
			for _, cand := range candidates {
				if nameOf(gs, cand) == want.targetName {
					return []ids.CardId{cand}, nil
				}
			}
		}
	}
	n := min
	if n > len(candidates) {
		n = len(candidates)
	}
	return candidates[:n], nil
}

// pickNamed consumes the next entry in queue (a list of card names to
// select among candidates), advancing *pos. Returns nil once the queue is
// exhausted, which reads as "decline to attack/block" for these prompts.
func (c *byNameController) pickNamed(gs *state.GameState, candidates []ids.CardId, queue [][]string, pos *int) []ids.CardId {
	if *pos >= len(queue) {
		return nil
	}
	want := queue[*pos]
	*pos++
	var out []ids.CardId
	for _, w := range want {
		for _, cand := range candidates {
			if nameOf(gs, cand) == w {
				out = append(out, cand)
				break
			}
		}
	}
	return out
}

func (c *byNameController) ChooseYesNo(ctx context.Context, gs *state.GameState, prompt string) (bool, error) {
	return false, nil
}

func (c *byNameController) ChooseManaSources(ctx context.Context, gs *state.GameState, player int, candidates []ids.CardId, need int) ([]ids.CardId, error) {
	if need > len(candidates) {
		need = len(candidates)
	}
	return candidates[:need], nil
}

func (c *byNameController) ChooseDamageOrder(ctx context.Context, gs *state.GameState, attacker ids.CardId, blockers []ids.CardId) ([]ids.CardId, error) {
	return blockers, nil
}

func (c *byNameController) ChooseCardsToDiscard(ctx context.Context, gs *state.GameState, player int, hand []ids.CardId, count int) ([]ids.CardId, error) {
	if count > len(hand) {
		count = len(hand)
	}
	return hand[:count], nil
}

func (c *byNameController) Notify(ctx context.Context, e events.Event) error { return nil }

// paddedDeck returns top, followed by filler repeated until minSize is
// reached. Unlike the teacher's makePaddedDeck, no reversal is needed: a
// duelcore library's index 0 is the next card drawn, so listing cards in
// draw order is already correct.
func paddedDeck(top []string, minSize int, filler string) []string {
	deck := append([]string{}, top...)
	for len(deck) < minSize {
		deck = append(deck, filler)
	}
	return deck
}

// runDuel builds and runs an Engine against a fresh fixture provider and
// in-memory sink, the direct analog of the teacher's runDuelToCompletion.
func runDuel(t *testing.T, cfg Config, p0, p1 controller.Controller) *events.MemoryLog {
	t.Helper()
	logger := events.NewMemoryLog()
	cfg.Sink = logger
	cfg.NoShuffle = true
	if cfg.Provider == nil {
		cfg.Provider = carddef.NewFixtureProvider()
	}
	if cfg.MaxTurns == 0 {
		cfg.MaxTurns = 20
	}

	eng, err := New(cfg, p0, p1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	winner, err := eng.Run(context.Background())
	if err != nil {
		t.Logf("event log:\n%s", dumpEvents(logger))
		t.Fatalf("Run: %v", err)
	}
	t.Logf("winner=%d\nevent log:\n%s", winner, dumpEvents(logger))
	return logger
}

func dumpEvents(l *events.MemoryLog) string {
	out := ""
	for _, e := range l.Events() {
		out += events.Format(e) + "\n"
	}
	return out
}
