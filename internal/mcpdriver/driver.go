// Package mcpdriver bridges one seat of a duel to an external decision
// maker speaking MCP tool calls, generalizing the teacher's
// internal/mcp.MCPController + GameSession pendingCh/responseCh handshake
// from tcgx's ChooseAction/ChooseCards/ChooseYesNo trio to duelcore's full
// controller.Controller capability set (spec §4.8's "interactive" variant,
// named as an open slot in spec.md and filled in here the way an
// AI-research workload wants an LLM/agent process to act as a live
// player). Only one duel runs per Session, matching the teacher's
// "only one game at a time" stdio-process assumption.
package mcpdriver

import (
	"context"
	"sync"

	"github.com/arcanelabs/duelcore/internal/controller"
	"github.com/arcanelabs/duelcore/internal/events"
	"github.com/arcanelabs/duelcore/internal/ids"
	"github.com/arcanelabs/duelcore/internal/state"
	"github.com/arcanelabs/duelcore/internal/turnmachine"
)

// DecisionKind mirrors the teacher's DecisionType string enum, one value
// per Controller capability this package bridges.
type DecisionKind string

const (
	DecisionChooseAction      DecisionKind = "choose_action"
	DecisionChooseTargets     DecisionKind = "choose_targets"
	DecisionChooseYesNo       DecisionKind = "choose_yes_no"
	DecisionChooseManaSources DecisionKind = "choose_mana_sources"
	DecisionChooseDamageOrder DecisionKind = "choose_damage_order"
	DecisionChooseDiscards    DecisionKind = "choose_discards"
)

// PendingDecision is what the bridged player is shown: the kind of choice,
// a human-readable prompt, and an index-addressed option list the
// take_action-family tools resolve against.
type PendingDecision struct {
	Type       DecisionKind
	Player     int
	Prompt     string
	Actions    []string // index-addressed, for DecisionChooseAction
	Candidates []string // index-addressed card descriptions, for target/mana/discard/order choices
	Min, Max   int
	Attacker   string // for DecisionChooseDamageOrder
}

type actionResponse struct{ Index int }
type indicesResponse struct{ Indices []int }
type yesNoResponse struct{ Answer bool }

// Session drives one Engine to completion on a background goroutine,
// pausing at every choice point belonging to the bridged player and
// waiting on a tool call to supply the answer — the same shape as the
// teacher's GameSession.waitForPending/responseCh pair.
type Session struct {
	eng        *turnmachine.Engine
	mcpPlayer  int
	pendingCh  chan *PendingDecision
	responseCh chan any

	mu             sync.Mutex
	currentPending *PendingDecision
	done           bool
	winner         int
	runErr         error
}

// NewSession wraps eng, replacing its mcpPlayer-th controller with a
// bridge that funnels every choice through Session's channels. The other
// seat's controller is left exactly as eng was constructed with it,
// including snapshot-resume replay shims — mcpdriver and package snapshot
// compose without either knowing about the other.
func NewSession(eng *turnmachine.Engine, mcpPlayer int) *Session {
	s := &Session{
		eng:        eng,
		mcpPlayer:  mcpPlayer,
		pendingCh:  make(chan *PendingDecision),
		responseCh: make(chan any),
		winner:     -1,
	}
	eng.Controllers[mcpPlayer] = &bridgeController{session: s, player: mcpPlayer}
	return s
}

// Start runs the engine on a background goroutine. The caller must drain
// WaitForPending until it reports done, or the goroutine leaks blocked on
// pendingCh.
func (s *Session) Start(ctx context.Context) {
	go func() {
		winner, err := s.eng.Run(ctx)
		s.mu.Lock()
		s.done = true
		s.winner = winner
		s.runErr = err
		s.mu.Unlock()
		close(s.pendingCh)
	}()
}

// WaitForPending blocks until the bridged player has a decision to make or
// the duel has ended (ok == false).
func (s *Session) WaitForPending() (*PendingDecision, bool) {
	pd, ok := <-s.pendingCh
	if ok {
		s.mu.Lock()
		s.currentPending = pd
		s.mu.Unlock()
	}
	return pd, ok
}

// Current returns the decision currently awaiting a response, or nil.
func (s *Session) Current() *PendingDecision {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentPending
}

// Done reports whether the duel has finished, and its outcome.
func (s *Session) Done() (done bool, winner int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done, s.winner, s.runErr
}

// Events returns every event logged so far, for a read-only state probe.
func (s *Session) Events() []events.Event { return s.eng.Sink.Events() }

// State exposes the live GameState for building a view, read-only by
// convention (spec §5's "the view passed to controllers precludes
// concurrent mutation" — callers outside the engine goroutine must not
// mutate what this returns).
func (s *Session) State() *state.GameState { return s.eng.State }

func (s *Session) respond(resp any) { s.responseCh <- resp }

// bridgeController implements controller.Controller by publishing a
// PendingDecision and blocking for the matching response type, the direct
// generalization of the teacher's MCPController.
type bridgeController struct {
	session *Session
	player  int
}

func (c *bridgeController) ask(pd *PendingDecision) any {
	pd.Player = c.player
	c.session.pendingCh <- pd
	return <-c.session.responseCh
}

func (c *bridgeController) ChooseAction(ctx context.Context, gs *state.GameState, legal []controller.Action) (controller.Action, error) {
	descs := make([]string, len(legal))
	for i, a := range legal {
		descs[i] = a.Desc
	}
	resp := c.ask(&PendingDecision{Type: DecisionChooseAction, Actions: descs}).(actionResponse)
	if resp.Index < 0 || resp.Index >= len(legal) {
		return legal[0], nil
	}
	return legal[resp.Index], nil
}

func (c *bridgeController) ChooseTargets(ctx context.Context, gs *state.GameState, prompt string, candidates []ids.CardId, min, max int) ([]ids.CardId, error) {
	descs := describeCards(gs, candidates)
	resp := c.ask(&PendingDecision{Type: DecisionChooseTargets, Prompt: prompt, Candidates: descs, Min: min, Max: max}).(indicesResponse)
	return selectByIndices(candidates, resp.Indices), nil
}

func (c *bridgeController) ChooseYesNo(ctx context.Context, gs *state.GameState, prompt string) (bool, error) {
	resp := c.ask(&PendingDecision{Type: DecisionChooseYesNo, Prompt: prompt}).(yesNoResponse)
	return resp.Answer, nil
}

func (c *bridgeController) ChooseManaSources(ctx context.Context, gs *state.GameState, player int, candidates []ids.CardId, need int) ([]ids.CardId, error) {
	descs := describeCards(gs, candidates)
	resp := c.ask(&PendingDecision{Type: DecisionChooseManaSources, Candidates: descs, Min: need, Max: need}).(indicesResponse)
	return selectByIndices(candidates, resp.Indices), nil
}

func (c *bridgeController) ChooseDamageOrder(ctx context.Context, gs *state.GameState, attacker ids.CardId, blockers []ids.CardId) ([]ids.CardId, error) {
	descs := describeCards(gs, blockers)
	attackerDesc := ""
	if obj, ok := gs.Objects[attacker]; ok {
		attackerDesc = obj.String()
	}
	resp := c.ask(&PendingDecision{Type: DecisionChooseDamageOrder, Attacker: attackerDesc, Candidates: descs}).(indicesResponse)
	if len(resp.Indices) == 0 {
		return blockers, nil
	}
	return selectByIndices(blockers, resp.Indices), nil
}

func (c *bridgeController) ChooseCardsToDiscard(ctx context.Context, gs *state.GameState, player int, hand []ids.CardId, count int) ([]ids.CardId, error) {
	descs := describeCards(gs, hand)
	resp := c.ask(&PendingDecision{Type: DecisionChooseDiscards, Candidates: descs, Min: count, Max: count}).(indicesResponse)
	return selectByIndices(hand, resp.Indices), nil
}

func (c *bridgeController) Notify(ctx context.Context, e events.Event) error { return nil }

func describeCards(gs *state.GameState, cards []ids.CardId) []string {
	out := make([]string, len(cards))
	for i, id := range cards {
		if obj, ok := gs.Objects[id]; ok {
			out[i] = obj.String()
		} else {
			out[i] = id.String()
		}
	}
	return out
}

func selectByIndices(pool []ids.CardId, indices []int) []ids.CardId {
	var out []ids.CardId
	for _, idx := range indices {
		if idx >= 0 && idx < len(pool) {
			out = append(out, pool[idx])
		}
	}
	return out
}
