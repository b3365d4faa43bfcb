// Package config parses the spec's §6 configuration surface: the flag set
// every cmd/duelsim*-style entrypoint recognizes, plus an optional
// `-config FILE` YAML overlay layered underneath the flags (flags win,
// mirroring the teacher's cmd/*/main.go convention of plain stdlib `flag`
// with no framework). yaml.v3 is the same library the teacher uses for its
// own deck format (internal/game/deck.go) and that duelcore's test
// fixtures use for card definitions.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ControllerKind is the closed variant spec §6 names for `p1`/`p2`.
type ControllerKind string

const (
	ControllerRandom      ControllerKind = "random"
	ControllerHeuristic   ControllerKind = "heuristic"
	ControllerScripted    ControllerKind = "scripted"
	ControllerInteractive ControllerKind = "interactive"
	ControllerZero        ControllerKind = "zero"
)

// Verbosity is the closed variant spec §6 names for event sink verbosity.
// It affects only the sink, never engine decisions.
type Verbosity string

const (
	VerbositySilent  Verbosity = "silent"
	VerbosityNormal  Verbosity = "normal"
	VerbosityVerbose Verbosity = "verbose"
	VerbosityDebug   Verbosity = "debug"
)

// StopUnit is the `unit` half of a StopEvery triplet.
type StopUnit string

const (
	StopUnitTurn   StopUnit = "turn"
	StopUnitChoice StopUnit = "choice"
)

// StopWho is the `who` half of a StopEvery triplet.
type StopWho string

const (
	StopWhoP1   StopWho = "p1"
	StopWhoP2   StopWho = "p2"
	StopWhoBoth StopWho = "both"
)

// StopEvery is a parsed `<who>:<unit>:<N>` triplet: pause and snapshot
// after N of the named event kind.
type StopEvery struct {
	Who  StopWho
	Unit StopUnit
	N    int
}

// Config is the fully resolved §6 option set, after layering any
// `-config FILE` YAML file underneath the flags actually passed.
type Config struct {
	Seed     uint64 `yaml:"seed"`
	DeckSeed uint64 `yaml:"deck_seed"`

	StopEvery    *StopEvery `yaml:"-"`
	StopEveryRaw string     `yaml:"stop_every"`

	StartFrom string `yaml:"start_from"`

	P1 ControllerKind `yaml:"p1"`
	P2 ControllerKind `yaml:"p2"`

	Verbosity Verbosity `yaml:"verbosity"`

	Deck1File string `yaml:"deck1"`
	Deck2File string `yaml:"deck2"`
	MaxTurns  int    `yaml:"max_turns"`

	ConfigFile string `yaml:"-"`
}

// Default returns the zero-value defaults spec §6 implies when a flag is
// absent: no fixed seed (real entropy), both controllers random, normal
// verbosity.
func Default() Config {
	return Config{
		P1:        ControllerRandom,
		P2:        ControllerRandom,
		Verbosity: VerbosityNormal,
	}
}

// Parse builds a Config from args (typically os.Args[1:]), the way every
// teacher cmd/*/main.go calls flag.NewFlagSet(...).Parse(os.Args[1:]).
// If -config names a YAML file, it is loaded first and flags actually
// passed on the command line override it.
func Parse(progName string, args []string) (Config, error) {
	cfg := Default()

	fs := flag.NewFlagSet(progName, flag.ContinueOnError)
	var (
		seedStr, deckSeedStr string
		stopEvery            string
		startFrom            string
		p1, p2               string
		verbosity            string
		deck1, deck2         string
		maxTurns             int
		configFile           string
	)
	fs.StringVar(&seedStr, "seed", "", "master RNG seed (integer); omit for real entropy")
	fs.StringVar(&deckSeedStr, "deck-seed", "", "separate seed for initial deck order; omit to use -seed")
	fs.StringVar(&stopEvery, "stop-every", "", "<who>:<unit>:<N>, who in {p1,p2,both}, unit in {turn,choice}")
	fs.StringVar(&startFrom, "start-from", "", "path to a snapshot file to resume from")
	fs.StringVar(&p1, "p1", string(ControllerRandom), "controller kind for player 1: random|heuristic|scripted|interactive|zero")
	fs.StringVar(&p2, "p2", string(ControllerRandom), "controller kind for player 2: random|heuristic|scripted|interactive|zero")
	fs.StringVar(&verbosity, "verbosity", string(VerbosityNormal), "silent|normal|verbose|debug")
	fs.StringVar(&deck1, "deck1", "", "path to player 1's deck file")
	fs.StringVar(&deck2, "deck2", "", "path to player 2's deck file")
	fs.IntVar(&maxTurns, "max-turns", 0, "safety cap on turn count; 0 uses the engine default")
	fs.StringVar(&configFile, "config", "", "optional YAML file layered underneath the flags above")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if configFile != "" {
		overlay, err := loadYAML(configFile)
		if err != nil {
			return Config{}, fmt.Errorf("config: %w", err)
		}
		cfg = overlay
		cfg.ConfigFile = configFile
	}

	// Only flags actually named on the command line override a -config
	// overlay; unset flags leave whatever the YAML file (or Default) set.
	passed := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { passed[f.Name] = true })

	if passed["seed"] {
		n, err := strconv.ParseUint(seedStr, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid -seed %q: %w", seedStr, err)
		}
		cfg.Seed = n
	}
	if passed["deck-seed"] {
		n, err := strconv.ParseUint(deckSeedStr, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid -deck-seed %q: %w", deckSeedStr, err)
		}
		cfg.DeckSeed = n
	}
	if passed["stop-every"] {
		cfg.StopEveryRaw = stopEvery
	}
	if cfg.StopEveryRaw != "" {
		se, err := ParseStopEvery(cfg.StopEveryRaw)
		if err != nil {
			return Config{}, fmt.Errorf("config: stop-every: %w", err)
		}
		cfg.StopEvery = se
	}
	if passed["start-from"] {
		cfg.StartFrom = startFrom
	}
	if passed["p1"] {
		cfg.P1 = ControllerKind(p1)
	}
	if passed["p2"] {
		cfg.P2 = ControllerKind(p2)
	}
	if passed["verbosity"] {
		cfg.Verbosity = Verbosity(verbosity)
	}
	if passed["deck1"] {
		cfg.Deck1File = deck1
	}
	if passed["deck2"] {
		cfg.Deck2File = deck2
	}
	if passed["max-turns"] {
		cfg.MaxTurns = maxTurns
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values outside the closed variants §6 enumerates.
func (c Config) Validate() error {
	switch c.P1 {
	case ControllerRandom, ControllerHeuristic, ControllerScripted, ControllerInteractive, ControllerZero:
	default:
		return fmt.Errorf("config: unknown p1 controller kind %q", c.P1)
	}
	switch c.P2 {
	case ControllerRandom, ControllerHeuristic, ControllerScripted, ControllerInteractive, ControllerZero:
	default:
		return fmt.Errorf("config: unknown p2 controller kind %q", c.P2)
	}
	switch c.Verbosity {
	case VerbositySilent, VerbosityNormal, VerbosityVerbose, VerbosityDebug:
	default:
		return fmt.Errorf("config: unknown verbosity %q", c.Verbosity)
	}
	return nil
}

// ParseStopEvery parses a `<who>:<unit>:<N>` triplet.
func ParseStopEvery(s string) (*StopEvery, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return nil, fmt.Errorf("expected <who>:<unit>:<N>, got %q", s)
	}
	who := StopWho(parts[0])
	switch who {
	case StopWhoP1, StopWhoP2, StopWhoBoth:
	default:
		return nil, fmt.Errorf("unknown who %q", parts[0])
	}
	unit := StopUnit(parts[1])
	switch unit {
	case StopUnitTurn, StopUnitChoice:
	default:
		return nil, fmt.Errorf("unknown unit %q", parts[1])
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("invalid count %q", parts[2])
	}
	return &StopEvery{Who: who, Unit: unit, N: n}, nil
}

func loadYAML(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.StopEveryRaw != "" {
		se, err := ParseStopEvery(cfg.StopEveryRaw)
		if err != nil {
			return Config{}, fmt.Errorf("%s: stop_every: %w", path, err)
		}
		cfg.StopEvery = se
	}
	return cfg, nil
}
