package carddef

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FixtureProvider is a built-in, in-memory Provider, the generalized
// successor to the teacher's CardRegistry map[string]func() *Card +
// LookupCard. Unlike the teacher it returns an error rather than panicking
// on a miss (a plain error; callers such as turnmachine.New wrap it as
// engineerr.CardDefinitionMissing), since a simulation engine
// driving thousands of self-play games cannot afford to crash the process
// on one bad deck-file line.
type FixtureProvider struct {
	defs map[string]*CardDefinition
}

// NewFixtureProvider returns a Provider seeded with the built-in card set
// below, plus any additional definitions supplied by the caller.
func NewFixtureProvider(extra ...*CardDefinition) *FixtureProvider {
	p := &FixtureProvider{defs: map[string]*CardDefinition{}}
	for _, c := range builtins() {
		p.defs[c.Name] = c
	}
	for _, c := range extra {
		p.defs[c.Name] = c
	}
	return p
}

func (p *FixtureProvider) Lookup(name string) (*CardDefinition, error) {
	if c, ok := p.defs[name]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("carddef: no definition for %q", name)
}

// Register adds or overwrites a definition, used by tests that need a
// one-off card shape not worth adding to the built-in set.
func (p *FixtureProvider) Register(c *CardDefinition) { p.defs[c.Name] = c }

// cardFile is the YAML-on-disk shape a CardDefinition round-trips through,
// mirroring the field-tag style of the teacher's deck.go DeckFile struct.
type cardFile struct {
	Name      string         `yaml:"name"`
	Type      string         `yaml:"type"`
	Subtypes  []string       `yaml:"subtypes,omitempty"`
	Cost      string         `yaml:"cost"`
	Power     int            `yaml:"power,omitempty"`
	Toughness int            `yaml:"toughness,omitempty"`
	Keywords  []string       `yaml:"keywords,omitempty"`
	LandTaps  string         `yaml:"land_taps,omitempty"`
}

// LoadFixtureFile parses a YAML file of card definitions, the fixture
// format used by tests and by -cards FILE (an optional supplement to the
// built-in set, not a replacement for the out-of-scope card script DSL).
func LoadFixtureFile(path string) ([]*CardDefinition, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw []cardFile
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("carddef: parsing %s: %w", path, err)
	}
	out := make([]*CardDefinition, 0, len(raw))
	for _, r := range raw {
		c, err := fromCardFile(r)
		if err != nil {
			return nil, fmt.Errorf("carddef: %s: %w", r.Name, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func fromCardFile(r cardFile) (*CardDefinition, error) {
	t, err := parseCardType(r.Type)
	if err != nil {
		return nil, err
	}
	cost, err := ParseManaCost(r.Cost)
	if err != nil {
		return nil, err
	}
	c := &CardDefinition{
		Name:      r.Name,
		Type:      t,
		Subtypes:  r.Subtypes,
		Cost:      cost,
		Power:     r.Power,
		Toughness: r.Toughness,
		Keywords:  map[Keyword]bool{},
	}
	for _, k := range r.Keywords {
		kw, err := parseKeyword(k)
		if err != nil {
			return nil, err
		}
		c.Keywords[kw] = true
	}
	if r.LandTaps != "" {
		taps, err := ParseManaCost(r.LandTaps)
		if err != nil {
			return nil, err
		}
		c.LandTaps = &taps
	}
	return c, nil
}

func parseCardType(s string) (CardType, error) {
	switch s {
	case "Creature":
		return TypeCreature, nil
	case "Instant":
		return TypeInstant, nil
	case "Sorcery":
		return TypeSorcery, nil
	case "Enchantment":
		return TypeEnchantment, nil
	case "Artifact":
		return TypeArtifact, nil
	case "Land":
		return TypeLand, nil
	case "Planeswalker":
		return TypePlaneswalker, nil
	default:
		return 0, fmt.Errorf("unknown card type %q", s)
	}
}

func parseKeyword(s string) (Keyword, error) {
	switch s {
	case "Flying":
		return Flying, nil
	case "Reach":
		return Reach, nil
	case "FirstStrike":
		return FirstStrike, nil
	case "DoubleStrike":
		return DoubleStrike, nil
	case "Trample":
		return Trample, nil
	case "Deathtouch":
		return Deathtouch, nil
	case "Lifelink":
		return Lifelink, nil
	case "Vigilance":
		return Vigilance, nil
	case "Haste":
		return Haste, nil
	case "Menace":
		return Menace, nil
	case "Hexproof":
		return Hexproof, nil
	case "Shroud":
		return Shroud, nil
	case "Indestructible":
		return Indestructible, nil
	case "Protection":
		return Protection, nil
	default:
		return 0, fmt.Errorf("unknown keyword %q", s)
	}
}

// ParseManaCost parses the conventional shorthand ("2WW", "1UB", "0") into
// a ManaCost, the textual form decks and fixtures use.
func ParseManaCost(s string) (ManaCost, error) {
	cost := ManaCost{Colored: map[Color]int{}}
	generic := ""
	for _, r := range s {
		switch r {
		case 'W':
			cost.Colored[White]++
		case 'U':
			cost.Colored[Blue]++
		case 'B':
			cost.Colored[Black]++
		case 'R':
			cost.Colored[Red]++
		case 'G':
			cost.Colored[Green]++
		case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			generic += string(r)
		default:
			return cost, fmt.Errorf("invalid mana cost symbol %q in %q", r, s)
		}
	}
	if generic != "" {
		n := 0
		for _, r := range generic {
			n = n*10 + int(r-'0')
		}
		cost.Generic = n
	}
	return cost, nil
}

// creatureCandidate is the minimal shape a TargetSpec.Filter checks a
// candidate against. *state.CardInstance satisfies it structurally;
// carddef can't import package state directly (state already imports
// carddef), so Filter takes `any` and type-asserts against this interface
// instead.
type creatureCandidate interface {
	IsCreature() bool
}

// isCreature is the Filter every removal/pump/burn fixture uses: MTG's
// "target creature" wording, the only restriction shape this card set
// needs.
func isCreature(candidate any) bool {
	c, ok := candidate.(creatureCandidate)
	return ok && c.IsCreature()
}

// builtins is the small fixture card set this repo ships, the MTG-flavored
// analog of the teacher's cards.go constructor bodies: the five basic
// lands, creatures carrying Flying, Reach, Haste, FirstStrike, Deathtouch
// and Menace, a burn instant, a removal instant, a draw sorcery and a pump
// instant. It has no enchantments, and the other keywords appear on no
// built-in card.
func builtins() []*CardDefinition {
	land := func(name string, color Color) *CardDefinition {
		return &CardDefinition{
			Name: name, Type: TypeLand,
			LandTaps: &ManaCost{Colored: map[Color]int{color: 1}},
		}
	}
	return []*CardDefinition{
		land("Plains", White),
		land("Island", Blue),
		land("Swamp", Black),
		land("Mountain", Red),
		land("Forest", Green),
		{
			Name: "Grizzly Bears", Type: TypeCreature, Subtypes: []string{"Bear"},
			Cost: ManaCost{Generic: 1, Colored: map[Color]int{Green: 1}},
			Power: 2, Toughness: 2,
		},
		{
			Name: "Wind Drake", Type: TypeCreature, Subtypes: []string{"Drake"},
			Cost: ManaCost{Generic: 2, Colored: map[Color]int{Blue: 1}},
			Power: 2, Toughness: 2,
			Keywords: map[Keyword]bool{Flying: true},
		},
		{
			Name: "Giant Spider", Type: TypeCreature, Subtypes: []string{"Spider"},
			Cost: ManaCost{Generic: 3, Colored: map[Color]int{Green: 1}},
			Power: 2, Toughness: 4,
			Keywords: map[Keyword]bool{Reach: true},
		},
		{
			Name: "Raging Goblin", Type: TypeCreature, Subtypes: []string{"Goblin"},
			Cost: ManaCost{Colored: map[Color]int{Red: 1}},
			Power: 1, Toughness: 1,
			Keywords: map[Keyword]bool{Haste: true},
		},
		{
			Name: "Hill Giant Knight", Type: TypeCreature, Subtypes: []string{"Giant", "Knight"},
			Cost: ManaCost{Generic: 2, Colored: map[Color]int{White: 1, Red: 1}},
			Power: 3, Toughness: 3,
			Keywords: map[Keyword]bool{FirstStrike: true},
		},
		{
			Name: "Rogue Deathbringer", Type: TypeCreature, Subtypes: []string{"Rogue"},
			Cost: ManaCost{Generic: 2, Colored: map[Color]int{Black: 1}},
			Power: 2, Toughness: 1,
			Keywords: map[Keyword]bool{Deathtouch: true, Menace: true},
		},
		{
			Name: "Lightning Bolt", Type: TypeInstant,
			Cost: ManaCost{Colored: map[Color]int{Red: 1}},
			Abilities: []Ability{{
				Name: "deal damage", IsActivated: false,
				Targets: &TargetSpec{Min: 1, Max: 1, Filter: isCreature},
				Resolve: func(ctx any) []Effect { return []Effect{{Kind: EffectDealDamage, Amount: 3}} },
			}},
		},
		{
			Name: "Doom Blade", Type: TypeInstant,
			Cost: ManaCost{Generic: 1, Colored: map[Color]int{Black: 1}},
			Abilities: []Ability{{
				Name: "destroy", Targets: &TargetSpec{Min: 1, Max: 1, Filter: isCreature},
				Resolve: func(ctx any) []Effect { return []Effect{{Kind: EffectDestroy}} },
			}},
		},
		{
			Name: "Divination", Type: TypeSorcery,
			Cost: ManaCost{Generic: 2, Colored: map[Color]int{Blue: 1}},
			Abilities: []Ability{{
				Name: "draw two",
				Resolve: func(ctx any) []Effect { return []Effect{{Kind: EffectDraw, Amount: 2}} },
			}},
		},
		{
			Name: "Giant Growth", Type: TypeInstant,
			Cost: ManaCost{Colored: map[Color]int{Green: 1}},
			Abilities: []Ability{{
				Name: "pump", Targets: &TargetSpec{Min: 1, Max: 1, Filter: isCreature},
				Resolve: func(ctx any) []Effect {
					return []Effect{{Kind: EffectPump, Amount: 3, Duration: 1}}
				},
			}},
		},
	}
}
