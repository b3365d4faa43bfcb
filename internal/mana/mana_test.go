package mana

import (
	"testing"

	"github.com/arcanelabs/duelcore/internal/carddef"
)

func TestPoolPayColoredThenGeneric(t *testing.T) {
	p := New()
	p.Add(carddef.Green)
	p.Add(carddef.Green)
	p.Add(carddef.Colorless)

	cost := carddef.ManaCost{Generic: 1, Colored: map[carddef.Color]int{carddef.Green: 1}}
	if !p.CanPay(cost) {
		t.Fatal("expected pool to afford 1G")
	}
	if !p.Pay(cost) {
		t.Fatal("Pay should succeed when CanPay does")
	}
	if p.Total() != 1 {
		t.Errorf("expected 1 mana left floating, got %d", p.Total())
	}
}

func TestPoolCanPayDoesNotMutate(t *testing.T) {
	p := New()
	p.Add(carddef.Red)
	cost := carddef.ManaCost{Colored: map[carddef.Color]int{carddef.Red: 1}}
	p.CanPay(cost)
	if p.Total() != 1 {
		t.Fatalf("CanPay must not mutate the pool, total is now %d", p.Total())
	}
}

func TestPoolPayFailsLeavesPoolUntouched(t *testing.T) {
	p := New()
	p.Add(carddef.Blue)
	cost := carddef.ManaCost{Colored: map[carddef.Color]int{carddef.Black: 1}}
	if p.Pay(cost) {
		t.Fatal("expected Pay to fail, wrong color available")
	}
	if p.Total() != 1 {
		t.Errorf("failed Pay must not spend anything, total is %d", p.Total())
	}
}

func TestPoolClear(t *testing.T) {
	p := New()
	p.Add(carddef.White)
	p.Add(carddef.Black)
	p.Clear()
	if p.Total() != 0 {
		t.Errorf("expected empty pool after Clear, got %d", p.Total())
	}
}

func TestClassifySourceNilIsSimple(t *testing.T) {
	src := ClassifySource(nil)
	if src.Kind != Simple {
		t.Errorf("a permanent with no LandTaps classifies as Simple (produces nothing)")
	}
}

func TestClassifySourceSingleColorIsSimple(t *testing.T) {
	taps := carddef.ManaCost{Colored: map[carddef.Color]int{carddef.Green: 1}}
	src := ClassifySource(&taps)
	if src.Kind != Simple {
		t.Fatalf("expected Simple for a one-color fixed tap, got %v", src.Kind)
	}
	if src.Produce.Colored[carddef.Green] != 1 {
		t.Errorf("expected Produce to mirror the tap cost")
	}
}

func TestClassifySourceMultiColorIsComplex(t *testing.T) {
	taps := carddef.ManaCost{Colored: map[carddef.Color]int{carddef.Green: 1, carddef.Blue: 1}}
	src := ClassifySource(&taps)
	if src.Kind != Complex {
		t.Fatalf("expected Complex for a two-color choice source, got %v", src.Kind)
	}
}

func TestClassifySourceColorPlusGenericIsComplex(t *testing.T) {
	taps := carddef.ManaCost{Generic: 1, Colored: map[carddef.Color]int{carddef.Red: 1}}
	src := ClassifySource(&taps)
	if src.Kind != Complex {
		t.Fatalf("a source with both a fixed color and a generic option requires a choice, got %v", src.Kind)
	}
}
