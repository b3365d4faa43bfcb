// Package turnmachine ties state, mana, stack, combat and undolog into the
// top-level driver: the step/phase sequence, the priority loop, legal
// action enumeration, and the auto-pass optimization (spec §4.2). It is
// the MTG generalization of the teacher's Duel (duel.go): Duel's fixed
// Draw→Standby→Main1→Battle?→Main2?→End phase sequence becomes the full
// untap/upkeep/draw/main/combat-substeps/end/cleanup step list, and its
// per-phase "loop until player ends phase" action dispatch becomes a
// proper two-consecutive-passes priority loop reused for every step.
package turnmachine

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/arcanelabs/duelcore/internal/carddef"
	"github.com/arcanelabs/duelcore/internal/combat"
	"github.com/arcanelabs/duelcore/internal/controller"
	"github.com/arcanelabs/duelcore/internal/engineerr"
	"github.com/arcanelabs/duelcore/internal/events"
	"github.com/arcanelabs/duelcore/internal/ids"
	"github.com/arcanelabs/duelcore/internal/mana"
	"github.com/arcanelabs/duelcore/internal/rng"
	"github.com/arcanelabs/duelcore/internal/stack"
	"github.com/arcanelabs/duelcore/internal/state"
	"github.com/arcanelabs/duelcore/internal/undolog"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// Config mirrors the teacher's DuelConfig: both starting decks (as card
// names resolved through a Provider), the event sink, the RNG seed, and a
// turn-count safety limit for runaway games.
type Config struct {
	Deck0, Deck1 []string
	Provider     carddef.Provider
	Sink         events.Sink
	Seed         uint64
	// DeckSeed separately seeds the opening deck order, so two runs with
	// the same gameplay Seed can still vary which cards each player draws
	// (spec §6's "deck-seed ... so gameplay RNG can vary independently").
	// Zero means "use Seed".
	DeckSeed  uint64
	NoShuffle bool
	MaxTurns  int
}

// Engine orchestrates one entire duel. Direct analog of the teacher's
// Duel struct.
type Engine struct {
	GameID      uuid.UUID
	State       *state.GameState
	Controllers [2]controller.Controller
	Log         *undolog.Log
	Stack       *stack.Engine
	Combat      *combat.Engine
	Sink        events.Sink

	// StopCondition, when set, is polled at the top of every priority loop
	// iteration; Run returns ErrPaused the moment it reports true, giving
	// cmd/duelsim a clean point to snapshot.Capture the game (spec §4.7's
	// "snapshot only at a choice-point boundary" rule).
	StopCondition func(*state.GameState) bool

	ctx       context.Context
	maxTurns  int
	noShuffle bool
}

// ErrPaused is returned by Run when StopCondition reports true. It is not
// one of engineerr's Kinds: pausing is requested by the driver, not a
// fault in the game itself.
var ErrPaused = errors.New("turnmachine: paused by stop condition")

// New creates an Engine from cfg and two controllers, building both decks
// as CardInstances the way NewDuel does.
func New(cfg Config, p0, p1 controller.Controller) (*Engine, error) {
	sink := cfg.Sink
	if sink == nil {
		sink = events.NewMemoryLog()
	}
	stream := rng.NewFromSeed(cfg.Seed)
	gs := state.NewGameState(cfg.Provider, stream)

	deckSeed := cfg.DeckSeed
	if deckSeed == 0 {
		deckSeed = cfg.Seed
	}
	deckStream := rng.NewFromSeed(deckSeed)

	for playerIdx, deck := range [][]string{cfg.Deck0, cfg.Deck1} {
		names := append([]string(nil), deck...)
		if !cfg.NoShuffle {
			deckStream.Shuffle(len(names), func(i, j int) { names[i], names[j] = names[j], names[i] })
		}
		for _, name := range names {
			def, err := cfg.Provider.Lookup(name)
			if err != nil {
				return nil, engineerr.NewCardDefinitionMissing(name)
			}
			ci := gs.CreateObject(def, playerIdx)
			gs.Players[playerIdx].Library = append(gs.Players[playerIdx].Library, ci.Id)
		}
	}

	maxTurns := cfg.MaxTurns
	if maxTurns == 0 {
		maxTurns = 250
	}

	log := undolog.New()
	eng := &Engine{
		GameID:      uuid.New(),
		State:       gs,
		Controllers: [2]controller.Controller{p0, p1},
		Log:         log,
		Stack:       stack.New(sink, log),
		Combat:      combat.New(sink, log),
		Sink:        sink,
		ctx:         context.Background(),
		maxTurns:    maxTurns,
		noShuffle:   cfg.NoShuffle,
	}
	eng.Stack.Interpret = eng.interpretEffects
	return eng, nil
}

// Rehydrate builds an Engine around an already-constructed GameState and
// Log, used by package snapshot to resume a duel instead of starting a
// fresh one with New. Unlike New, it performs no deck materialization or
// opening draw: gs is assumed already at the point play should continue
// from.
func Rehydrate(gameID uuid.UUID, gs *state.GameState, controllers [2]controller.Controller, log *undolog.Log, sink events.Sink, maxTurns int, noShuffle bool) *Engine {
	if sink == nil {
		sink = events.NewMemoryLog()
	}
	if maxTurns == 0 {
		maxTurns = 250
	}
	eng := &Engine{
		GameID:      gameID,
		State:       gs,
		Controllers: controllers,
		Log:         log,
		Stack:       stack.New(sink, log),
		Combat:      combat.New(sink, log),
		Sink:        sink,
		ctx:         context.Background(),
		maxTurns:    maxTurns,
		noShuffle:   noShuffle,
	}
	eng.Stack.Interpret = eng.interpretEffects
	return eng
}

// Run executes the whole duel and returns the winning player index, or -1
// for a draw/undecided result.
func (e *Engine) Run(ctx context.Context) (int, error) {
	e.ctx = ctx
	gs := e.State

	if err := e.shuffleAndOpen(); err != nil {
		return -1, err
	}

	for !gs.Over {
		if gs.Turn >= e.maxTurns {
			gs.Over, gs.Winner, gs.Result = true, -1, fmt.Sprintf("turn limit reached (%d turns)", e.maxTurns)
			break
		}
		if err := e.runTurn(); err != nil {
			return gs.Winner, err
		}
		if err := ctx.Err(); err != nil {
			return -1, err
		}
	}
	return gs.Winner, nil
}

func (e *Engine) shuffleAndOpen() error {
	gs := e.State
	for p := 0; p < 2; p++ {
		if !e.cfgNoShuffle() {
			e.shuffleLibrary(p)
		}
	}
	for i := 0; i < state.InitialHandSize; i++ {
		for p := 0; p < 2; p++ {
			if err := e.drawOne(p); err != nil {
				return err
			}
		}
	}
	return nil
}

// cfgNoShuffle reports whether Config.NoShuffle was set, letting
// deterministic tests pre-order the library slice and skip the shuffle —
// the same convenience the teacher's DuelConfig.NoShuffle provides.
func (e *Engine) cfgNoShuffle() bool { return e.noShuffle }

func (e *Engine) shuffleLibrary(p int) {
	lib := e.State.Players[p].Library
	e.State.RNG.Shuffle(len(lib), func(i, j int) { lib[i], lib[j] = lib[j], lib[i] })
	e.Sink.Log(events.Event{Turn: e.State.Turn, Player: p, Type: events.Shuffle, Details: "library shuffled"})
}

func (e *Engine) runTurn() error {
	gs := e.State
	prevActive := gs.ActivePlayer
	if gs.Turn > 0 {
		gs.ActivePlayer = gs.Opponent(gs.ActivePlayer)
	}
	gs.Turn++
	before := gs.RNG.Snapshot()
	e.Log.Append(undolog.Action{Kind: undolog.ActionTurnChange, Turn: gs.Turn, PlayerIdx: prevActive, RNGStateBefore: before})
	e.resetTurnFlags()

	steps := []state.Step{
		state.StepUntap, state.StepUpkeep, state.StepDraw, state.StepMain1,
		state.StepBeginCombat, state.StepDeclareAttackers, state.StepDeclareBlockers,
		state.StepFirstStrikeDamage, state.StepCombatDamage, state.StepEndCombat,
		state.StepMain2, state.StepEnd, state.StepCleanup,
	}
	for _, st := range steps {
		if gs.Over {
			return nil
		}
		gs.Step = st
		e.Sink.Log(events.Event{Turn: gs.Turn, Step: st.String(), Player: -1, Type: events.StepChange, Details: "step: " + st.String()})
		if err := e.runStep(st); err != nil {
			return err
		}
		for player := 0; player < 2; player++ {
			if pool := gs.Players[player].ManaPool; pool.Total() > 0 {
				prior := snapshotPool(pool)
				pool.Clear()
				e.logManaPoolChange(player, prior)
			}
		}
	}
	return nil
}

// logChoice records a ChoicePoint-style undo log entry for a decision a
// controller just made, the intra-turn choice trail spec §4.6/§4.7 needs
// so a snapshot's replay shim can hand a resumed controller back exactly
// the choices it already made this turn. step carries the full returned
// value (msgpack-encoded into Payload) so package snapshot can rebuild a
// controller.Scripted replay shim from it; detail is the human-readable
// summary spec §4.6 logs for every variant regardless.
func (e *Engine) logChoice(player int, step controller.ScriptedStep, detail string) {
	payload, _ := msgpack.Marshal(step)
	e.Log.Append(undolog.Action{
		Kind: undolog.ActionChoiceMade, Turn: e.State.Turn, PlayerIdx: player,
		ChoiceId: e.Log.NextChoiceId(), ChoiceDetail: detail, Payload: payload,
	})
}

// snapshotPool copies a mana pool's contents into a plain int-keyed map
// suitable for undolog.Action.ManaPoolPrior (undolog can't import carddef's
// Color type, so colors are stored as int).
func snapshotPool(p mana.Pool) map[int]int {
	out := make(map[int]int, len(p))
	for c, n := range p {
		out[int(c)] = n
	}
	return out
}

// logManaPoolChange appends an ActionManaPoolSnapshot recording prior (the
// pool's contents immediately before whatever mutation the caller already
// applied), so the change can be rewound.
func (e *Engine) logManaPoolChange(player int, prior map[int]int) {
	e.Log.Append(undolog.Action{
		Kind: undolog.ActionManaPoolSnapshot, Turn: e.State.Turn, PlayerIdx: player,
		ManaPoolPrior: prior,
	})
}

func (e *Engine) resetTurnFlags() {
	gs := e.State
	for _, obj := range gs.Battlefield() {
		obj.AttackedThisTurn = false
	}
	p := gs.Players[gs.ActivePlayer]
	if p.LandsPlayedThisTurn != 0 {
		delta := -p.LandsPlayedThisTurn
		p.LandsPlayedThisTurn = 0
		e.Log.Append(undolog.Action{
			Kind: undolog.ActionLandsPlayedDelta, Turn: gs.Turn, PlayerIdx: gs.ActivePlayer, Delta: delta,
		})
	}
}

func (e *Engine) runStep(st state.Step) error {
	gs := e.State
	switch st {
	case state.StepUntap:
		e.untapStep()
		return nil
	case state.StepUpkeep, state.StepDraw:
		if st == state.StepDraw {
			if err := e.drawOne(gs.ActivePlayer); err != nil {
				return err
			}
			if gs.Over {
				return nil
			}
		}
		return e.priorityLoop()
	case state.StepMain1, state.StepMain2:
		return e.priorityLoop()
	case state.StepBeginCombat:
		return e.priorityLoop()
	case state.StepEndCombat:
		if err := e.priorityLoop(); err != nil {
			return err
		}
		e.Combat.ClearCombat(gs)
		return nil
	case state.StepDeclareAttackers:
		if err := e.declareAttackersStep(); err != nil {
			return err
		}
		return e.priorityLoop()
	case state.StepDeclareBlockers:
		if gs.Combat == nil || len(gs.Combat.Attackers) == 0 {
			return nil
		}
		if err := e.declareBlockersStep(); err != nil {
			return err
		}
		return e.priorityLoop()
	case state.StepFirstStrikeDamage:
		if gs.Combat == nil || len(gs.Combat.Attackers) == 0 {
			return nil
		}
		if !hasFirstOrDoubleStrike(gs) {
			return nil
		}
		if err := e.Combat.DealDamage(gs, true); err != nil {
			return err
		}
		e.Combat.CleanupDestroyed(gs)
		if gs.CheckStateBasedActions() {
			return nil
		}
		return e.priorityLoop()
	case state.StepCombatDamage:
		if gs.Combat == nil || len(gs.Combat.Attackers) == 0 {
			return nil
		}
		if err := e.Combat.DealDamage(gs, false); err != nil {
			return err
		}
		e.Combat.CleanupDestroyed(gs)
		if gs.CheckStateBasedActions() {
			return nil
		}
		return e.priorityLoop()
	case state.StepEnd:
		return e.priorityLoop()
	case state.StepCleanup:
		e.cleanupStep()
		return nil
	}
	return nil
}

func hasFirstOrDoubleStrike(gs *state.GameState) bool {
	for atkId := range gs.Combat.Attackers {
		obj, ok := gs.Objects[atkId]
		if ok && (obj.Def.HasKeyword(carddef.FirstStrike) || obj.Def.HasKeyword(carddef.DoubleStrike)) {
			return true
		}
	}
	for _, blockers := range gs.Combat.Blockers {
		for _, b := range blockers {
			if obj, ok := gs.Objects[b]; ok && (obj.Def.HasKeyword(carddef.FirstStrike) || obj.Def.HasKeyword(carddef.DoubleStrike)) {
				return true
			}
		}
	}
	return false
}

func (e *Engine) untapStep() {
	gs := e.State
	for _, obj := range gs.Battlefield() {
		if obj.Controller == gs.ActivePlayer {
			obj.Tapped = false
			obj.SummoningSick = false
		}
	}
	active, opp := gs.ActivePlayer, gs.Opponent(gs.ActivePlayer)
	for _, player := range []int{active, opp} {
		pool := gs.Players[player].ManaPool
		if pool.Total() == 0 {
			continue
		}
		prior := snapshotPool(pool)
		pool.Clear()
		e.logManaPoolChange(player, prior)
	}
}

func (e *Engine) drawOne(p int) error {
	gs := e.State
	lib := gs.Players[p].Library
	if len(lib) == 0 {
		gs.Over = true
		gs.Winner = gs.Opponent(p)
		gs.Result = fmt.Sprintf("player %d wins: player %d drew from an empty library", gs.Winner+1, p+1)
		e.Sink.Log(events.Event{Turn: gs.Turn, Player: gs.Winner, Type: events.Win, Details: gs.Result})
		return nil
	}
	top := lib[0]
	obj := gs.Objects[top]
	undolog.MoveCard(e.Log, gs, top, state.ZoneHand)
	e.Sink.Log(events.Event{Turn: gs.Turn, Player: p, Type: events.Draw, Card: obj.Def.Name, Details: obj.Def.Name + " drawn"})
	return nil
}

// cleanupStep clears end-of-turn modifiers/damage and enforces the maximum
// hand size, mirroring the teacher's endPhase discard loop.
func (e *Engine) cleanupStep() {
	gs := e.State
	for _, obj := range gs.Battlefield() {
		obj.DamageMarked = 0
		obj.ClearEndOfTurnModifiers()
	}
	p := gs.Players[gs.ActivePlayer]
	for len(p.Hand) > state.MaxHandSize {
		excess := len(p.Hand) - state.MaxHandSize
		discarded, err := e.Controllers[gs.ActivePlayer].ChooseCardsToDiscard(e.ctx, gs, gs.ActivePlayer, p.Hand, excess)
		if err != nil || len(discarded) == 0 {
			discarded = p.Hand[:excess]
		}
		e.logChoice(gs.ActivePlayer, controller.ScriptedStep{Discards: discarded}, "discard to hand size")
		for _, id := range discarded {
			obj := gs.Objects[id]
			undolog.MoveCard(e.Log, gs, id, state.ZoneGraveyard)
			e.Sink.Log(events.Event{Turn: gs.Turn, Player: gs.ActivePlayer, Type: events.ZoneMove,
				Card: obj.Def.Name, Details: obj.Def.Name + " discarded to hand size"})
		}
	}
}

func (e *Engine) declareAttackersStep() error {
	gs := e.State
	legal := e.Combat.LegalAttackers(gs, gs.ActivePlayer)
	if len(legal) == 0 {
		gs.Combat = state.NewCombatState()
		return nil
	}
	chosen, err := e.Controllers[gs.ActivePlayer].ChooseTargets(e.ctx, gs, "declare attackers", legal, 0, len(legal))
	if err != nil {
		return err
	}
	e.logChoice(gs.ActivePlayer, controller.ScriptedStep{Targets: chosen}, "declare attackers")
	return e.Combat.DeclareAttackers(gs, gs.ActivePlayer, chosen)
}

func (e *Engine) declareBlockersStep() error {
	gs := e.State
	defending := gs.Opponent(gs.ActivePlayer)
	assignment := map[ids.CardId][]ids.CardId{}
	for atk := range gs.Combat.Attackers {
		legal := e.Combat.LegalBlockers(gs, defending, atk)
		if len(legal) == 0 {
			continue
		}
		chosen, err := e.Controllers[defending].ChooseTargets(e.ctx, gs, "declare blockers", legal, 0, len(legal))
		if err != nil {
			return err
		}
		e.logChoice(defending, controller.ScriptedStep{Targets: chosen}, "declare blockers for "+atk.String())
		if len(chosen) > 0 {
			assignment[atk] = chosen
		}
	}
	if err := e.Combat.DeclareBlockers(gs, defending, assignment); err != nil {
		return err
	}
	for atk, blockers := range assignment {
		if len(blockers) < 2 {
			continue
		}
		order, err := e.Controllers[gs.ActivePlayer].ChooseDamageOrder(e.ctx, gs, atk, blockers)
		if err != nil {
			return err
		}
		e.logChoice(gs.ActivePlayer, controller.ScriptedStep{DamageOrder: order}, "damage order for "+atk.String())
		if err := e.Combat.SetDamageOrder(gs, atk, order); err != nil {
			return err
		}
	}
	return nil
}

// priorityLoop is the step-generic priority pass loop: players alternate,
// starting with the active player, until two consecutive passes occur —
// the same shape as the teacher's openResponseWindow generalized from
// "open only for fast effects" to "runs at every step". Any action taken
// (and the stack resolution that immediately follows it) resets the pass
// counter and gives the active player priority first, per spec §4.2.
func (e *Engine) priorityLoop() error {
	gs := e.State
	if !gs.Step.HasPriority() {
		return nil
	}
	passCount := 0
	current := gs.ActivePlayer
	for passCount < 2 {
		if gs.Over {
			return nil
		}
		gs.Priority = current
		if e.StopCondition != nil && e.StopCondition(gs) {
			return ErrPaused
		}
		legal := e.legalActions(current)
		onlyPass := len(legal) == 1 && legal[0].Kind == controller.ActionPass
		if onlyPass {
			// auto-pass optimization: never presented as a real choice point
			passCount++
			current = gs.Opponent(current)
			continue
		}
		action, err := e.Controllers[current].ChooseAction(e.ctx, gs, legal)
		if err != nil {
			return err
		}
		e.logChoice(current, controller.ScriptedStep{Action: action}, action.Desc)
		if action.Kind == controller.ActionPass {
			passCount++
			current = gs.Opponent(current)
			continue
		}
		if err := e.applyAction(current, action); err != nil {
			return err
		}
		if gs.Over {
			return nil
		}
		if !e.Stack.IsEmpty(gs) {
			if err := e.Stack.ResolveTop(gs, e); err != nil {
				return err
			}
		}
		passCount = 0
		current = gs.ActivePlayer
	}
	return nil
}

// legalActions enumerates every action `player` may currently take,
// sorted by card id then a stable kind ordering for deterministic replay
// (spec §4.2's "legal action enumeration is deterministically ordered"
// requirement). Pass is always offered last.
func (e *Engine) legalActions(player int) []controller.Action {
	gs := e.State
	var actions []controller.Action
	p := gs.Players[player]

	isMainStep := gs.Step == state.StepMain1 || gs.Step == state.StepMain2
	canCastSorcerySpeed := isMainStep && e.Stack.IsEmpty(gs) && player == gs.ActivePlayer

	if isMainStep && e.Stack.IsEmpty(gs) && player == gs.ActivePlayer && p.LandsPlayedThisTurn < 1 {
		for _, cardId := range p.Hand {
			obj := gs.Objects[cardId]
			if obj.Def.Type == carddef.TypeLand {
				actions = append(actions, controller.Action{Kind: controller.ActionPlayLand, Card: cardId, Desc: "play " + obj.Def.Name})
			}
		}
	}
	// Instants (and sorcery-speed spells during a player's own main phase
	// with an empty stack) are offered at every step that grants priority —
	// priorityLoop already restricts calls to steps with Step.HasPriority(),
	// so no further step gating belongs here.
	for _, cardId := range p.Hand {
		obj := gs.Objects[cardId]
		if obj.Def.Type == carddef.TypeLand {
			continue
		}
		isInstant := obj.Def.Type == carddef.TypeInstant
		if !isInstant && !canCastSorcerySpeed {
			continue
		}
		if !p.ManaPool.CanPay(obj.Def.Cost) && !canAffordFromUntapped(gs, player, obj.Def.Cost) {
			continue
		}
		if ability := findResolveAbility(obj); ability != nil && ability.Targets != nil && ability.Targets.Min > 0 {
			if len(targetCandidates(gs, ability.Targets)) < ability.Targets.Min {
				continue // no legal target to satisfy the minimum, don't offer a dead cast
			}
		}
		actions = append(actions, controller.Action{Kind: controller.ActionCastSpell, Card: cardId, Desc: "cast " + obj.Def.Name})
	}

	sort.Slice(actions, func(i, j int) bool {
		if actions[i].Card != actions[j].Card {
			return actions[i].Card < actions[j].Card
		}
		return actions[i].Kind < actions[j].Kind
	})

	actions = append(actions, controller.Action{Kind: controller.ActionPass, Desc: "pass"})
	return actions
}

func canAffordFromUntapped(gs *state.GameState, player int, cost carddef.ManaCost) bool {
	avail := carddef.ManaCost{Colored: map[carddef.Color]int{}}
	for _, obj := range gs.Battlefield() {
		if obj.Controller != player || obj.Tapped || obj.Def.LandTaps == nil {
			continue
		}
		src := mana.ClassifySource(obj.Def.LandTaps)
		if src.Kind == mana.Simple {
			for c, n := range src.Produce.Colored {
				avail.Colored[c] += n
			}
			avail.Generic += src.Produce.Generic
		}
	}
	pool := mana.New()
	for c, n := range avail.Colored {
		pool[c] += n
	}
	return pool.CanPay(cost)
}

// applyAction executes one chosen non-pass action.
func (e *Engine) applyAction(player int, action controller.Action) error {
	switch action.Kind {
	case controller.ActionPlayLand:
		return e.playLand(player, action.Card)
	case controller.ActionCastSpell:
		return e.castSpell(player, action)
	default:
		return engineerr.NewInvariantViolation("applyAction: unsupported action kind %v", action.Kind)
	}
}

func (e *Engine) playLand(player int, cardId ids.CardId) error {
	gs := e.State
	p := gs.Players[player]
	obj := gs.Objects[cardId]
	undolog.MoveCard(e.Log, gs, cardId, state.ZoneBattlefield)
	obj.TurnEntered = gs.Turn
	p.LandsPlayedThisTurn++
	e.Sink.Log(events.Event{Turn: gs.Turn, Step: gs.Step.String(), Player: player, Type: events.ZoneMove,
		Card: obj.Def.Name, Details: obj.Def.Name + " played"})
	return nil
}

func (e *Engine) castSpell(player int, action controller.Action) error {
	gs := e.State
	p := gs.Players[player]
	obj := gs.Objects[action.Card]

	var targets []ids.CardId
	ability := findResolveAbility(obj)
	if ability != nil && ability.Targets != nil && ability.Targets.Max > 0 {
		candidates := targetCandidates(gs, ability.Targets)
		chosen, err := e.Controllers[player].ChooseTargets(e.ctx, gs, "choose targets for "+obj.Def.Name, candidates, ability.Targets.Min, ability.Targets.Max)
		if err != nil {
			return err
		}
		e.logChoice(player, controller.ScriptedStep{Targets: chosen}, "targets for "+obj.Def.Name)
		targets = chosen
	}

	priorPool := snapshotPool(p.ManaPool)
	paid := p.ManaPool.Pay(obj.Def.Cost)
	if !paid {
		paid = autoTapForCost(gs, player, obj.Def.Cost)
	}
	e.logManaPoolChange(player, priorPool)
	if !paid {
		return engineerr.NewCostUnpayable("cannot pay cost %s for %s", obj.Def.Cost, obj.Def.Name)
	}

	undolog.MoveCard(e.Log, gs, action.Card, state.ZoneStack)
	return e.Stack.Cast(gs, action.Card, player, targets, action.X)
}

// autoTapForCost taps untapped simple mana sources to cover cost, used
// when the floating pool alone can't pay. It taps the player's sources in
// battlefield (CardId) order, whatever color they produce, until the pool
// can pay; the controller is never asked which sources to tap
// (ChooseManaSources is not called), and the taps are not undo-logged.
func autoTapForCost(gs *state.GameState, player int, cost carddef.ManaCost) bool {
	p := gs.Players[player]
	if p.ManaPool.CanPay(cost) {
		return p.ManaPool.Pay(cost)
	}
	for _, obj := range gs.Battlefield() {
		if p.ManaPool.CanPay(cost) {
			break
		}
		if obj.Controller != player || obj.Tapped || obj.Def.LandTaps == nil {
			continue
		}
		src := mana.ClassifySource(obj.Def.LandTaps)
		if src.Kind != mana.Simple {
			continue
		}
		obj.Tapped = true
		for c, n := range src.Produce.Colored {
			for i := 0; i < n; i++ {
				p.ManaPool.Add(c)
			}
		}
		for i := 0; i < src.Produce.Generic; i++ {
			p.ManaPool.Add(carddef.Colorless)
		}
	}
	return p.ManaPool.Pay(cost)
}

// targetCandidates lists every battlefield object an ability's TargetSpec
// permits, applying Filter when the ability restricts to a narrower set
// (e.g. "target creature") instead of offering every permanent.
func targetCandidates(gs *state.GameState, spec *carddef.TargetSpec) []ids.CardId {
	var out []ids.CardId
	for _, obj := range gs.Battlefield() {
		if spec.Filter != nil && !spec.Filter(obj) {
			continue
		}
		out = append(out, obj.Id)
	}
	return out
}

func findResolveAbility(obj *state.CardInstance) *carddef.Ability {
	for i := range obj.Def.Abilities {
		if obj.Def.Abilities[i].Resolve != nil {
			return &obj.Def.Abilities[i]
		}
	}
	return nil
}
