package state

import (
	"fmt"

	"github.com/arcanelabs/duelcore/internal/carddef"
	"github.com/arcanelabs/duelcore/internal/ids"
)

// Modifier is a temporary or permanent power/toughness change, the MTG
// analog of the teacher's StatModifier. The Continuous flag is carried and
// serialized, but nothing strips or reapplies continuous modifiers: there
// is no recalculation pass like the teacher's recalculateContinuousEffects.
type Modifier struct {
	Source     ids.CardId
	PowerMod   int
	ToughMod   int
	Continuous bool // marks a static-ability modifier; no code treats it differently
	UntilEOT   bool // cleared during the cleanup step
}

// Counter tracks a named counter type (+1/+1, -1/-1, loyalty, etc) and how
// many of it a CardInstance carries.
type Counters map[string]int

// CardInstance is one concrete object: a card in a zone, a token, or a
// spell/ability on the stack. It is the MTG generalization of the
// teacher's CardInstance (types.go), trading Position(ATK/DEF)+Face for
// Tapped+SummoningSick+FaceDown (morph support), and Equip-attachment for
// a general Attachments list (spec's "attachments" field).
type CardInstance struct {
	Def        *carddef.CardDefinition
	Id         ids.CardId
	Owner      int
	Controller int

	Zone      Zone
	Tapped    bool
	FaceDown  bool // face-down permanents (morph-like effects)
	Transformed bool

	TurnEntered       int // turn this object entered its current zone
	TurnControlChanged int
	SummoningSick     bool
	DamageMarked      int
	AttackedThisTurn  bool

	Modifiers Modifier_list
	Counters  Counters

	SetPower, SetToughness int // 0 = use Def's base; a "set to N" static effect

	AttachedTo   ids.CardId // zero if not attached to anything
	Attachments  []ids.CardId

	// StackOnly fields, valid only when Zone == ZoneStack.
	StackTargets []ids.CardId
	StackSource  ids.CardId // the permanent this ability belongs to (the object itself for a spell)
	StackX       int        // value chosen for an {X} cost, if any
}

// Modifier_list exists only so CardInstance's field has a named type other
// packages can alias; it is a plain slice.
type Modifier_list = []Modifier

func (ci *CardInstance) String() string {
	if ci == nil {
		return "(nil)"
	}
	name := "?"
	if ci.Def != nil {
		name = ci.Def.Name
	}
	if ci.FaceDown {
		return fmt.Sprintf("face-down permanent (%s)", ci.Id)
	}
	return fmt.Sprintf("%s %s", name, ci.Id)
}

// IsCreature reports whether this object is a creature, satisfying
// carddef's Filter candidate interface for "target creature" abilities.
func (ci *CardInstance) IsCreature() bool {
	return ci.Def != nil && ci.Def.Type == carddef.TypeCreature
}

// Power returns the effective power (creatures only): base, SetPower
// override, plus all modifiers.
func (ci *CardInstance) Power() int {
	base := ci.Def.Power
	if ci.SetPower != 0 {
		base = ci.SetPower
	}
	for _, m := range ci.Modifiers {
		base += m.PowerMod
	}
	if plus, minus := ci.Counters["+1/+1"], ci.Counters["-1/-1"]; plus > 0 || minus > 0 {
		base += plus - minus
	}
	return base
}

// Toughness returns the effective toughness, see Power.
func (ci *CardInstance) Toughness() int {
	base := ci.Def.Toughness
	if ci.SetToughness != 0 {
		base = ci.SetToughness
	}
	for _, m := range ci.Modifiers {
		base += m.ToughMod
	}
	if plus, minus := ci.Counters["+1/+1"], ci.Counters["-1/-1"]; plus > 0 || minus > 0 {
		base += plus - minus
	}
	return base
}

// Lethal reports whether marked damage (or a deathtouch-flagged single
// point) is lethal given current toughness — invariant E for state-based
// destruction.
func (ci *CardInstance) Lethal(deathtouch bool) bool {
	if ci.Toughness() <= 0 {
		return true
	}
	if deathtouch && ci.DamageMarked > 0 {
		return true
	}
	return ci.DamageMarked >= ci.Toughness()
}

// AddModifier appends a power/toughness modifier, the MTG analog of
// AddModifier in the teacher's types.go.
func (ci *CardInstance) AddModifier(m Modifier) { ci.Modifiers = append(ci.Modifiers, m) }

// RemoveModifiersBySource strips every modifier whose Source matches,
// called when the source leaves the battlefield (non-permanent effects
// only survive via the UntilEOT flag, handled separately at cleanup).
func (ci *CardInstance) RemoveModifiersBySource(source ids.CardId) {
	kept := ci.Modifiers[:0]
	for _, m := range ci.Modifiers {
		if m.Source != source {
			kept = append(kept, m)
		}
	}
	ci.Modifiers = kept
}

// ClearEndOfTurnModifiers drops every modifier tagged UntilEOT, called
// during the cleanup step.
func (ci *CardInstance) ClearEndOfTurnModifiers() {
	kept := ci.Modifiers[:0]
	for _, m := range ci.Modifiers {
		if !m.UntilEOT {
			kept = append(kept, m)
		}
	}
	ci.Modifiers = kept
}
