// Package snapshot implements spec §4.7: capturing a duel at its current
// turn-start boundary plus the intra-turn choices made since, and resuming
// a fresh Engine from that capture with byte-for-byte determinism. The
// teacher has no save-state concept at all (a Duel either runs to
// completion or is discarded), so this package is new construction,
// grounded in spec §4.6/§4.7 directly and in the wire-format conventions
// the retrieval pack's other services use msgpack for: a small
// struct-tag-driven binary envelope, versioned by a leading format tag so
// a loader can refuse an incompatible file outright (spec §7's
// SnapshotVersionMismatch).
package snapshot

import (
	"github.com/arcanelabs/duelcore/internal/carddef"
	"github.com/arcanelabs/duelcore/internal/controller"
	"github.com/arcanelabs/duelcore/internal/engineerr"
	"github.com/arcanelabs/duelcore/internal/events"
	"github.com/arcanelabs/duelcore/internal/ids"
	"github.com/arcanelabs/duelcore/internal/mana"
	"github.com/arcanelabs/duelcore/internal/rng"
	"github.com/arcanelabs/duelcore/internal/state"
	"github.com/arcanelabs/duelcore/internal/turnmachine"
	"github.com/arcanelabs/duelcore/internal/undolog"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// FormatVersion gates Load: a snapshot written by a different version is a
// fatal SnapshotVersionMismatch (spec §7), not something this package
// attempts to migrate. Spec §6 explicitly waives backward compatibility
// across versions.
const FormatVersion = 1

// Snapshot is the on-disk/on-wire unit spec §4.7 describes: state as-of
// the current turn's start, the intra-turn choices made since (so resume
// can fast-forward back to the exact pause point), and each controller's
// own opaque persisted state.
type Snapshot struct {
	Version int

	GameID string

	State wireGameState

	// IntraTurn holds, per player, the ordered ChoicePoint payloads
	// recorded since the turn began (spec §4.6's "collect while popping"
	// rule, without actually needing to pop anything here: the Engine's
	// log already exposes SinceTurnStart()). Kept separate per player
	// (spec's "per-player intra-turn choice filtering") so a resumed
	// controller never sees its opponent's decisions.
	IntraTurn [2][]controller.ScriptedStep

	// ControllerBlobs holds each controller's own opaque persisted state,
	// present only for controllers implementing StateSnapshotter.
	ControllerBlobs [2][]byte

	Seed      uint64
	NoShuffle bool
	MaxTurns  int
}

// Capture builds a Snapshot of eng's current game, as-of the start of the
// turn in progress. It does not mutate eng: the turn-start rollback is
// performed on an independent clone of the live GameState/Log, following
// spec §5's "view passed to controllers precludes concurrent mutation"
// spirit by never touching the game the caller is still driving.
//
// Snapshot-point discipline (spec §4.7): callers must invoke Capture only
// immediately before presenting a choice to a controller, never after one
// has been made and not yet logged — Engine.Run's stop-condition check
// (see turnmachine.Engine's driver-level StopCondition) already enforces
// this by only pausing at the top of the priority loop.
func Capture(eng *turnmachine.Engine) (*Snapshot, error) {
	gs := cloneState(eng.State)
	log := cloneLog(eng.Log)

	if err := undolog.RewindToTurnStart(gs, log); err != nil {
		return nil, engineerr.NewInvariantViolation("snapshot: rewind to turn start: %v", err)
	}

	snap := &Snapshot{
		Version: FormatVersion,
		GameID:  eng.GameID.String(),
		State:   encodeState(gs),
		Seed:    0, // the seed only matters for initial shuffle, already baked into gs.RNG's restored state
	}

	for _, a := range eng.Log.SinceTurnStart() {
		if a.Kind != undolog.ActionChoiceMade {
			continue
		}
		var step controller.ScriptedStep
		if err := msgpack.Unmarshal(a.Payload, &step); err != nil {
			return nil, engineerr.NewSnapshotCorrupt(err, "snapshot: decode choice payload")
		}
		snap.IntraTurn[a.PlayerIdx] = append(snap.IntraTurn[a.PlayerIdx], step)
	}

	for i, c := range eng.Controllers {
		if snapper, ok := c.(controller.StateSnapshotter); ok {
			blob, err := snapper.SnapshotState()
			if err != nil {
				return nil, engineerr.NewInvariantViolation("snapshot: controller %d state: %v", i, err)
			}
			snap.ControllerBlobs[i] = blob
		}
	}

	eng.Sink.Log(events.Event{Turn: eng.State.Turn, Player: -1, Type: events.SnapshotTaken, Details: "snapshot captured"})
	return snap, nil
}

// Encode serializes a Snapshot to its wire form.
func Encode(snap *Snapshot) ([]byte, error) {
	b, err := msgpack.Marshal(snap)
	if err != nil {
		return nil, engineerr.NewInvariantViolation("snapshot: encode: %v", err)
	}
	return b, nil
}

// Decode parses a Snapshot from its wire form, rejecting anything whose
// Version doesn't match FormatVersion before looking at anything else.
func Decode(data []byte) (*Snapshot, error) {
	// Peek the version field first so a corrupt body never masks a version
	// mismatch with a less specific decode error.
	var probe struct {
		Version int
	}
	if err := msgpack.Unmarshal(data, &probe); err != nil {
		return nil, engineerr.NewSnapshotCorrupt(err, "snapshot: malformed envelope")
	}
	if probe.Version != FormatVersion {
		return nil, engineerr.NewSnapshotVersionMismatch(probe.Version, FormatVersion)
	}
	var snap Snapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return nil, engineerr.NewSnapshotCorrupt(err, "snapshot: decode body")
	}
	return &snap, nil
}

// ResumeConfig supplies the pieces a Snapshot alone can't carry: the live
// card definition database (spec §6: passed in by reference, never
// serialized) and the event sink the resumed Engine should log through.
type ResumeConfig struct {
	Provider carddef.Provider
	Sink     events.Sink
}

// Resume rebuilds a live Engine from snap, wrapping each real controller
// with a replay shim (controller.Scripted, primed with the stored
// intra-turn choices and Fallback-ing to the real controller) so the
// engine can be driven forward with Engine.Run exactly as spec §4.7's
// resume protocol describes: replay suppresses event emission until the
// last stored choice of either player is consumed, at which point the
// shim transparently hands off to live decision-making.
func Resume(snap *Snapshot, cfg ResumeConfig, real [2]controller.Controller) (*turnmachine.Engine, error) {
	if snap.Version != FormatVersion {
		return nil, engineerr.NewSnapshotVersionMismatch(snap.Version, FormatVersion)
	}
	gs, err := decodeState(snap.State, cfg.Provider)
	if err != nil {
		return nil, err
	}

	sink := cfg.Sink
	if sink == nil {
		sink = events.NewMemoryLog()
	}

	for i, blob := range snap.ControllerBlobs {
		if blob == nil {
			continue
		}
		if snapper, ok := real[i].(controller.StateSnapshotter); ok {
			if err := snapper.RestoreState(blob); err != nil {
				return nil, engineerr.NewSnapshotCorrupt(err, "snapshot: restore controller %d state", i)
			}
		}
	}

	remaining := 0
	for _, list := range snap.IntraTurn {
		_ = list
		remaining++ // one exhaustion event expected per player, even if its list is empty
	}
	sink.Suppress(remaining > 0)
	onExhausted := func() {
		remaining--
		if remaining <= 0 {
			sink.Suppress(false)
		}
	}

	shims := [2]controller.Controller{}
	for i := 0; i < 2; i++ {
		shim := controller.NewScripted("resume-replay-p" + itoa(i))
		for _, step := range snap.IntraTurn[i] {
			shim.Push(step)
		}
		shim.Fallback = real[i]
		shim.OnExhausted = onExhausted
		shims[i] = shim
	}

	log := undolog.New()
	// The rewound-to-turn-start log has no SinceTurnStart entries of its
	// own yet; ChangeTurn is re-seeded as the log's only entry so a later
	// RewindToTurnStart/RewindFull on the resumed engine still has a
	// turn-start anchor to rewind to.
	log.Append(undolog.Action{Kind: undolog.ActionTurnChange, Turn: gs.Turn, RNGStateBefore: gs.RNG.Snapshot()})

	gameID, err := uuid.Parse(snap.GameID)
	if err != nil {
		return nil, engineerr.NewSnapshotCorrupt(err, "snapshot: invalid game id %q", snap.GameID)
	}
	eng := turnmachine.Rehydrate(gameID, gs, shims, log, sink, snap.MaxTurns, snap.NoShuffle)

	sink.Log(events.Event{Turn: gs.Turn, Player: -1, Type: events.SnapshotResumed, Details: "snapshot resumed"})
	return eng, nil
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	return "1"
}

// cloneState deep-copies a GameState so turn-start rollback during Capture
// never touches the live game the caller is still driving.
func cloneState(gs *state.GameState) *state.GameState {
	clone := &state.GameState{
		Players:      [2]*state.Player{clonePlayer(gs.Players[0]), clonePlayer(gs.Players[1])},
		Objects:      make(map[ids.CardId]*state.CardInstance, len(gs.Objects)),
		CardIds:      gs.CardIds, // allocator's next-id counter is copied by value on read in encodeState
		Turn:         gs.Turn,
		ActivePlayer: gs.ActivePlayer,
		Priority:     gs.Priority,
		Step:         gs.Step,
		StackObjects: append([]ids.CardId(nil), gs.StackObjects...),
		Provider:     gs.Provider,
		RNG:          cloneRNG(gs.RNG),
		Winner:       gs.Winner,
		Over:         gs.Over,
		Result:       gs.Result,
	}
	for id, obj := range gs.Objects {
		clone.Objects[id] = cloneCard(obj)
	}
	if gs.Combat != nil {
		clone.Combat = cloneCombat(gs.Combat)
	}
	return clone
}

func cloneRNG(r *rng.Stream) *rng.Stream {
	s := rng.NewFromSeed(0)
	_ = s.Restore(r.Snapshot())
	return s
}

func clonePlayer(p *state.Player) *state.Player {
	pool := mana.New()
	for c, n := range p.ManaPool {
		pool[c] = n
	}
	return &state.Player{
		Id:                  p.Id,
		Life:                p.Life,
		Library:             append([]ids.CardId(nil), p.Library...),
		Hand:                append([]ids.CardId(nil), p.Hand...),
		Graveyard:           append([]ids.CardId(nil), p.Graveyard...),
		Exile:               append([]ids.CardId(nil), p.Exile...),
		LandsPlayedThisTurn: p.LandsPlayedThisTurn,
		ManaPool:            pool,
	}
}

func cloneCard(c *state.CardInstance) *state.CardInstance {
	counters := state.Counters{}
	for k, v := range c.Counters {
		counters[k] = v
	}
	return &state.CardInstance{
		Def:                c.Def,
		Id:                 c.Id,
		Owner:              c.Owner,
		Controller:         c.Controller,
		Zone:               c.Zone,
		Tapped:             c.Tapped,
		FaceDown:           c.FaceDown,
		Transformed:        c.Transformed,
		TurnEntered:        c.TurnEntered,
		TurnControlChanged: c.TurnControlChanged,
		SummoningSick:      c.SummoningSick,
		DamageMarked:       c.DamageMarked,
		AttackedThisTurn:   c.AttackedThisTurn,
		Modifiers:          append([]state.Modifier(nil), c.Modifiers...),
		Counters:           counters,
		SetPower:           c.SetPower,
		SetToughness:       c.SetToughness,
		AttachedTo:         c.AttachedTo,
		Attachments:        append([]ids.CardId(nil), c.Attachments...),
		StackTargets:       append([]ids.CardId(nil), c.StackTargets...),
		StackSource:        c.StackSource,
		StackX:             c.StackX,
	}
}

func cloneCombat(cs *state.CombatState) *state.CombatState {
	out := state.NewCombatState()
	for k, v := range cs.Attackers {
		out.Attackers[k] = v
	}
	for k, v := range cs.Blockers {
		out.Blockers[k] = append([]ids.CardId(nil), v...)
	}
	for k, v := range cs.BlockedBy {
		out.BlockedBy[k] = v
	}
	for k, v := range cs.DamageOrder {
		out.DamageOrder[k] = append([]ids.CardId(nil), v...)
	}
	out.FirstStrikeDone = cs.FirstStrikeDone
	return out
}

// cloneLog makes an independent copy of an undolog.Log so RewindToTurnStart
// during Capture never truncates the live engine's own log.
func cloneLog(l *undolog.Log) *undolog.Log {
	out := undolog.New()
	for _, a := range l.Entries() {
		out.Append(a)
	}
	return out
}
