// Package puzzlefile parses the hand-authored board-state text format
// spec.md's §6 names: a `[metadata]`/`[state]` grammar for starting a duel
// from an arbitrary position instead of a freshly shuffled deck, the way
// an AI-research workload wants to drop a search or regression test
// straight into a specific mid-game scenario. Same hand-rolled
// bufio.Scanner approach as internal/deckfile, for the same reason: this
// is a one-off line grammar, not a structured format any library targets.
package puzzlefile

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/arcanelabs/duelcore/internal/carddef"
	"github.com/arcanelabs/duelcore/internal/engineerr"
	"github.com/arcanelabs/duelcore/internal/ids"
	"github.com/arcanelabs/duelcore/internal/mana"
	"github.com/arcanelabs/duelcore/internal/rng"
	"github.com/arcanelabs/duelcore/internal/state"
)

// CardSpec is one card entry within a zone list: a name plus the
// `|`-delimited modifiers a battlefield permanent can carry (tapped,
// summoning-sick, face-down, counters).
type CardSpec struct {
	Name          string
	Tapped        bool
	SummoningSick bool
	FaceDown      bool
	Counters      map[string]int
}

// PlayerState holds one player's life total and zone contents, keyed by
// `p1.`/`p2.` prefixes in the [state] section.
type PlayerState struct {
	Life                int
	LandsPlayedThisTurn int
	Library             []CardSpec
	Hand                []CardSpec
	Battlefield         []CardSpec
	Graveyard           []CardSpec
	Exile               []CardSpec
}

// Puzzle is a fully parsed puzzle/state file.
type Puzzle struct {
	Metadata     map[string]string
	ActivePlayer int // 0 or 1
	Step         state.Step
	Turn         int
	Players      [2]PlayerState
}

type section int

const (
	sectionNone section = iota
	sectionMetadata
	sectionState
)

// Parse reads a puzzle file from r. Grammar:
//
//	[metadata]
//	name: example puzzle
//	active-player: 1
//	step: Main1
//	turn: 3
//
//	[state]
//	p1.life: 18
//	p1.library: Mountain;Mountain;Forest
//	p1.hand: Lightning Bolt;Shock
//	p1.battlefield: Mountain|tapped;Grizzly Bears|counters:+1/+1=1
//	p2.life: 20
//	p2.battlefield: Forest
//
// Zone values are `;`-separated CardSpec entries; each entry's own
// `|`-separated fields are the card name followed by zero or more
// modifiers (`tapped`, `summoning-sick`, `face-down`,
// `counters:<type>=<n>[,<type>=<n>...]`).
func Parse(r io.Reader) (*Puzzle, error) {
	p := &Puzzle{Metadata: map[string]string{}}
	cur := sectionNone
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			switch strings.ToLower(strings.TrimSpace(line[1 : len(line)-1])) {
			case "metadata":
				cur = sectionMetadata
			case "state":
				cur = sectionState
			default:
				return nil, fmt.Errorf("puzzlefile: line %d: unknown section %q", lineNo, line)
			}
			continue
		}
		key, val, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("puzzlefile: line %d: malformed line %q", lineNo, line)
		}
		key, val = strings.TrimSpace(key), strings.TrimSpace(val)
		switch cur {
		case sectionMetadata:
			if err := applyMetadata(p, key, val); err != nil {
				return nil, fmt.Errorf("puzzlefile: line %d: %w", lineNo, err)
			}
		case sectionState:
			if err := applyStateField(p, key, val); err != nil {
				return nil, fmt.Errorf("puzzlefile: line %d: %w", lineNo, err)
			}
		default:
			return nil, fmt.Errorf("puzzlefile: line %d: content outside any section", lineNo)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("puzzlefile: scan: %w", err)
	}
	return p, nil
}

func applyMetadata(p *Puzzle, key, val string) error {
	switch key {
	case "active-player":
		n, err := strconv.Atoi(val)
		if err != nil || (n != 1 && n != 2) {
			return fmt.Errorf("active-player must be 1 or 2, got %q", val)
		}
		p.ActivePlayer = n - 1
	case "step":
		st, ok := parseStep(val)
		if !ok {
			return fmt.Errorf("unknown step %q", val)
		}
		p.Step = st
	case "turn":
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid turn %q: %w", val, err)
		}
		p.Turn = n
	default:
		p.Metadata[key] = val
	}
	return nil
}

func parseStep(s string) (state.Step, bool) {
	all := []state.Step{
		state.StepUntap, state.StepUpkeep, state.StepDraw, state.StepMain1,
		state.StepBeginCombat, state.StepDeclareAttackers, state.StepDeclareBlockers,
		state.StepFirstStrikeDamage, state.StepCombatDamage, state.StepEndCombat,
		state.StepMain2, state.StepEnd, state.StepCleanup,
	}
	for _, st := range all {
		if strings.EqualFold(st.String(), s) {
			return st, true
		}
	}
	return 0, false
}

func applyStateField(p *Puzzle, key, val string) error {
	playerTag, field, ok := strings.Cut(key, ".")
	if !ok {
		return fmt.Errorf("state key %q must be of the form p1.<field>", key)
	}
	var idx int
	switch playerTag {
	case "p1":
		idx = 0
	case "p2":
		idx = 1
	default:
		return fmt.Errorf("unknown player tag %q", playerTag)
	}
	ps := &p.Players[idx]
	switch field {
	case "life":
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid life %q: %w", val, err)
		}
		ps.Life = n
	case "lands-played":
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid lands-played %q: %w", val, err)
		}
		ps.LandsPlayedThisTurn = n
	case "library":
		specs, err := parseZone(val)
		if err != nil {
			return err
		}
		ps.Library = specs
	case "hand":
		specs, err := parseZone(val)
		if err != nil {
			return err
		}
		ps.Hand = specs
	case "battlefield":
		specs, err := parseZone(val)
		if err != nil {
			return err
		}
		ps.Battlefield = specs
	case "graveyard":
		specs, err := parseZone(val)
		if err != nil {
			return err
		}
		ps.Graveyard = specs
	case "exile":
		specs, err := parseZone(val)
		if err != nil {
			return err
		}
		ps.Exile = specs
	default:
		return fmt.Errorf("unknown zone/field %q", field)
	}
	return nil
}

func parseZone(val string) ([]CardSpec, error) {
	val = strings.TrimSpace(val)
	if val == "" {
		return nil, nil
	}
	var out []CardSpec
	for _, entry := range strings.Split(val, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		spec, err := parseCardSpec(entry)
		if err != nil {
			return nil, err
		}
		out = append(out, spec)
	}
	return out, nil
}

func parseCardSpec(entry string) (CardSpec, error) {
	parts := strings.Split(entry, "|")
	name := strings.TrimSpace(parts[0])
	if name == "" {
		return CardSpec{}, fmt.Errorf("empty card name in %q", entry)
	}
	spec := CardSpec{Name: name}
	for _, mod := range parts[1:] {
		mod = strings.TrimSpace(mod)
		switch {
		case mod == "tapped":
			spec.Tapped = true
		case mod == "summoning-sick":
			spec.SummoningSick = true
		case mod == "face-down":
			spec.FaceDown = true
		case strings.HasPrefix(mod, "counters:"):
			if spec.Counters == nil {
				spec.Counters = map[string]int{}
			}
			rest := strings.TrimPrefix(mod, "counters:")
			for _, kv := range strings.Split(rest, ",") {
				k, v, ok := strings.Cut(kv, "=")
				if !ok {
					return CardSpec{}, fmt.Errorf("malformed counter spec %q", kv)
				}
				n, err := strconv.Atoi(strings.TrimSpace(v))
				if err != nil {
					return CardSpec{}, fmt.Errorf("invalid counter count %q: %w", v, err)
				}
				spec.Counters[strings.TrimSpace(k)] = n
			}
		default:
			return CardSpec{}, fmt.Errorf("unknown modifier %q", mod)
		}
	}
	return spec, nil
}

// Build materializes a live GameState from a Puzzle, resolving every card
// name through provider the same way turnmachine.New resolves decks
// (spec §6: card definitions are supplied by the caller, the puzzle file
// only ever names them). seed drives the embedded RNG, same convention as
// turnmachine.Config.Seed — a puzzle position is still a deterministic
// starting point, not an escape hatch from spec §4.9's RNG discipline.
func Build(p *Puzzle, provider carddef.Provider, seed uint64) (*state.GameState, error) {
	gs := state.NewGameState(provider, rng.NewFromSeed(seed))
	gs.ActivePlayer = p.ActivePlayer
	gs.Step = p.Step
	gs.Turn = p.Turn
	if gs.Turn == 0 {
		gs.Turn = 1
	}

	for i, ps := range p.Players {
		pl := gs.Players[i]
		pl.Life = ps.Life
		pl.LandsPlayedThisTurn = ps.LandsPlayedThisTurn
		pl.ManaPool = mana.New()

		zones := []struct {
			specs []CardSpec
			zone  state.Zone
			ids   *[]ids.CardId
		}{
			{ps.Library, state.ZoneLibrary, &pl.Library},
			{ps.Hand, state.ZoneHand, &pl.Hand},
			{ps.Battlefield, state.ZoneBattlefield, nil},
			{ps.Graveyard, state.ZoneGraveyard, &pl.Graveyard},
			{ps.Exile, state.ZoneExile, &pl.Exile},
		}
		for _, z := range zones {
			for _, spec := range z.specs {
				obj, err := instantiate(gs, provider, spec, i, z.zone)
				if err != nil {
					return nil, err
				}
				if z.ids != nil {
					*z.ids = append(*z.ids, obj.Id)
				}
			}
		}
	}
	return gs, nil
}

func instantiate(gs *state.GameState, provider carddef.Provider, spec CardSpec, owner int, zone state.Zone) (*state.CardInstance, error) {
	def, err := provider.Lookup(spec.Name)
	if err != nil {
		return nil, engineerr.NewCardDefinitionMissing(spec.Name)
	}
	obj := gs.CreateObject(def, owner)
	obj.Zone = zone
	obj.Tapped = spec.Tapped
	obj.SummoningSick = spec.SummoningSick
	obj.FaceDown = spec.FaceDown
	obj.TurnEntered = gs.Turn
	for k, v := range spec.Counters {
		obj.Counters[k] = v
	}
	return obj, nil
}
