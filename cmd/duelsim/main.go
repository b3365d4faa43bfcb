// Command duelsim drives self-play duels to completion headlessly, the
// spec's research-facing analog of the teacher's cmd/tcgx-cli interactive
// game loop: no terminal UI, just deck files in, an event log and/or a
// snapshot out, and an exit code (spec §6).
package main

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/arcanelabs/duelcore/internal/carddef"
	"github.com/arcanelabs/duelcore/internal/config"
	"github.com/arcanelabs/duelcore/internal/controller"
	"github.com/arcanelabs/duelcore/internal/deckfile"
	"github.com/arcanelabs/duelcore/internal/events"
	"github.com/arcanelabs/duelcore/internal/rng"
	"github.com/arcanelabs/duelcore/internal/snapshot"
	"github.com/arcanelabs/duelcore/internal/state"
	"github.com/arcanelabs/duelcore/internal/turnmachine"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.Parse("duelsim", args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "duelsim: %v\n", err)
		return 2
	}

	provider := carddef.NewFixtureProvider()
	sink := sinkForVerbosity(cfg.Verbosity)

	seed := cfg.Seed
	if seed == 0 {
		seed = randomSeed()
	}

	var eng *turnmachine.Engine
	if cfg.StartFrom != "" {
		eng, err = resumeDuel(cfg, provider, sink)
	} else {
		eng, err = startDuel(cfg, provider, sink, seed)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "duelsim: %v\n", err)
		return exitCodeFor(err)
	}

	if cfg.StopEvery != nil {
		eng.StopCondition = stopConditionFor(cfg.StopEvery)
	}

	winner, runErr := eng.Run(context.Background())
	if errors.Is(runErr, turnmachine.ErrPaused) {
		snap, err := snapshot.Capture(eng)
		if err != nil {
			fmt.Fprintf(os.Stderr, "duelsim: capture snapshot: %v\n", err)
			return 1
		}
		data, err := snapshot.Encode(snap)
		if err != nil {
			fmt.Fprintf(os.Stderr, "duelsim: encode snapshot: %v\n", err)
			return 1
		}
		path := "duelsim.snapshot"
		if err := os.WriteFile(path, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "duelsim: write snapshot: %v\n", err)
			return 1
		}
		fmt.Fprintf(os.Stdout, "paused, snapshot written to %s\n", path)
		printEvents(sink)
		return 0
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "duelsim: %v\n", runErr)
		printEvents(sink)
		return exitCodeFor(runErr)
	}

	printEvents(sink)
	fmt.Fprintf(os.Stdout, "winner: player %d (turn %d)\n", winner+1, eng.State.Turn)
	return 0
}

func startDuel(cfg config.Config, provider carddef.Provider, sink events.Sink, seed uint64) (*turnmachine.Engine, error) {
	deck1, err := loadDeck(cfg.Deck1File)
	if err != nil {
		return nil, fmt.Errorf("deck1: %w", err)
	}
	deck2, err := loadDeck(cfg.Deck2File)
	if err != nil {
		return nil, fmt.Errorf("deck2: %w", err)
	}

	tmCfg := turnmachine.Config{
		Deck0:    deck1,
		Deck1:    deck2,
		Provider: provider,
		Sink:     sink,
		Seed:     seed,
		DeckSeed: cfg.DeckSeed,
		MaxTurns: cfg.MaxTurns,
	}

	c1, err := buildController(cfg.P1, rng.NewFromSeed(seed^0x51A7E1))
	if err != nil {
		return nil, fmt.Errorf("p1: %w", err)
	}
	c2, err := buildController(cfg.P2, rng.NewFromSeed(seed^0xC0FFEE))
	if err != nil {
		return nil, fmt.Errorf("p2: %w", err)
	}

	return turnmachine.New(tmCfg, c1, c2)
}

func resumeDuel(cfg config.Config, provider carddef.Provider, sink events.Sink) (*turnmachine.Engine, error) {
	data, err := os.ReadFile(cfg.StartFrom)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	snap, err := snapshot.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	c1, err := buildController(cfg.P1, rng.NewFromSeed(snap.Seed^0x51A7E1))
	if err != nil {
		return nil, fmt.Errorf("p1: %w", err)
	}
	c2, err := buildController(cfg.P2, rng.NewFromSeed(snap.Seed^0xC0FFEE))
	if err != nil {
		return nil, fmt.Errorf("p2: %w", err)
	}

	return snapshot.Resume(snap, snapshot.ResumeConfig{Provider: provider, Sink: sink}, [2]controller.Controller{c1, c2})
}

func loadDeck(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("no deck file given")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	d, err := deckfile.Parse(f)
	if err != nil {
		return nil, err
	}
	return d.Main.Names(), nil
}

func buildController(kind config.ControllerKind, stream *rng.Stream) (controller.Controller, error) {
	switch kind {
	case config.ControllerRandom:
		return controller.NewRandom(stream), nil
	case config.ControllerZero:
		return controller.NewZero(), nil
	case config.ControllerHeuristic:
		return controller.NewHeuristic(), nil
	case config.ControllerScripted:
		// duelsim has no script-file flag of its own (scripted replay's
		// primary home is snapshot.Resume's replay shim); starting a fresh
		// duel with an empty script just falls straight through to random
		// play rather than erroring on the first choice.
		s := controller.NewScripted("duelsim-scripted")
		s.Fallback = controller.NewRandom(stream)
		return s, nil
	case config.ControllerInteractive:
		return nil, fmt.Errorf("interactive controller requires cmd/duelsim-mcp, not duelsim")
	default:
		return nil, fmt.Errorf("unknown controller kind %q", kind)
	}
}

// stopConditionFor builds an Engine.StopCondition counting either turns
// or choice points for the named player(s), pausing once the triplet's
// count is reached. "choice" counts every time StopCondition is polled
// while the matching player holds priority (turnmachine's priority loop
// polls it once per loop iteration, before listing that player's legal
// actions, including iterations that end in an automatic pass); "turn"
// counts distinct turn-start transitions.
func stopConditionFor(se *config.StopEvery) func(*state.GameState) bool {
	counts := map[int]int{}
	lastTurn := -1

	matches := func(player int) bool {
		switch se.Who {
		case config.StopWhoP1:
			return player == 0
		case config.StopWhoP2:
			return player == 1
		default:
			return true
		}
	}

	return func(gs *state.GameState) bool {
		switch se.Unit {
		case config.StopUnitTurn:
			if gs.Turn == lastTurn {
				return false
			}
			lastTurn = gs.Turn
			if !matches(gs.ActivePlayer) {
				return false
			}
			counts[gs.ActivePlayer]++
			return counts[gs.ActivePlayer] >= se.N
		case config.StopUnitChoice:
			if !matches(gs.Priority) {
				return false
			}
			counts[gs.Priority]++
			return counts[gs.Priority] >= se.N
		default:
			return false
		}
	}
}

func printEvents(sink events.Sink) {
	if ml, ok := sink.(*events.MemoryLog); ok {
		fmt.Fprint(os.Stdout, events.FormatAll(ml.Events()))
	}
}

func sinkForVerbosity(v config.Verbosity) events.Sink {
	sink := events.NewMemoryLog()
	sink.Suppress(v == config.VerbositySilent)
	return sink
}

func randomSeed() uint64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 1
	}
	return binary.LittleEndian.Uint64(buf[:])
}

// exitCodeFor maps any failure that reaches main (setup failure, engine
// invariant violation, load error) to the spec §6 "nonzero" exit code;
// duelsim does not distinguish failure causes at the process boundary,
// only in the message printed to stderr.
func exitCodeFor(err error) int { return 1 }
