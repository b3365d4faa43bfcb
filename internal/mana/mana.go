// Package mana implements the mana engine (spec §4.5): a per-player
// floating pool, simple/complex mana-source classification, payability
// queries, and payment. The teacher has no mana concept at all (tcgx cards
// are free to activate once costs are met by other means), so this package
// is new construction grounded directly in spec §4.5 rather than adapted
// from teacher code, written in the same plain-struct-plus-methods style
// the teacher uses for Player/GameState.
package mana

import "github.com/arcanelabs/duelcore/internal/carddef"

// Pool holds floating mana a player has produced but not yet spent. It
// empties at the end of each step (spec's mana-burn-free "pool drains"
// rule).
type Pool map[carddef.Color]int

// New returns an empty pool.
func New() Pool { return Pool{} }

// Add increases the pool by one unit of the given color.
func (p Pool) Add(c carddef.Color) { p[c]++ }

// Total returns the number of mana currently floating.
func (p Pool) Total() int {
	n := 0
	for _, v := range p {
		n += v
	}
	return n
}

// Clear empties the pool, called at the end of every step.
func (p Pool) Clear() {
	for k := range p {
		delete(p, k)
	}
}

// CanPay reports whether the pool can cover cost without mutating it.
func (p Pool) CanPay(cost carddef.ManaCost) bool {
	remaining := map[carddef.Color]int{}
	for k, v := range p {
		remaining[k] = v
	}
	for color, need := range cost.Colored {
		if remaining[color] < need {
			return false
		}
		remaining[color] -= need
	}
	generic := cost.Generic
	for _, v := range remaining {
		if generic <= 0 {
			break
		}
		generic -= v
	}
	return generic <= 0
}

// Pay deducts cost from the pool: colored requirements are paid from their
// own color first, then any leftover mana of any color (including
// colorless) is applied to the generic requirement. Returns false and
// leaves the pool untouched if the pool cannot cover the cost.
func (p Pool) Pay(cost carddef.ManaCost) bool {
	if !p.CanPay(cost) {
		return false
	}
	for color, need := range cost.Colored {
		p[color] -= need
	}
	generic := cost.Generic
	for color, amt := range p {
		if generic == 0 {
			break
		}
		spend := amt
		if spend > generic {
			spend = generic
		}
		p[color] -= spend
		generic -= spend
	}
	return true
}

// SourceKind classifies a mana source the way spec §4.5 requires: a Simple
// source taps for a single, fixed, unconditional mana; a Complex source
// has a choice (multiple colors), a cost, or a condition attached, and so
// must be resolved through a controller choice point rather than
// auto-tapped.
type SourceKind int

const (
	Simple SourceKind = iota
	Complex
)

// Source describes one permanent's capacity to produce mana.
type Source struct {
	Kind    SourceKind
	Produce carddef.ManaCost // for Simple sources, exactly what it taps for
	Options []carddef.Color  // for Complex sources, the choices available
}

// ClassifySource inspects a land/artifact's LandTaps definition and
// returns its Source shape.
func ClassifySource(taps *carddef.ManaCost) Source {
	if taps == nil {
		return Source{Kind: Simple}
	}
	colors := 0
	for _, n := range taps.Colored {
		if n > 0 {
			colors++
		}
	}
	if colors > 1 || taps.Generic > 0 && colors > 0 {
		return Source{Kind: Complex}
	}
	return Source{Kind: Simple, Produce: *taps}
}
