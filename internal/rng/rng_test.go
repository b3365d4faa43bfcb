package rng

import (
	"bytes"
	"testing"

	"pgregory.net/rapid"
)

// TestSnapshotRestoreReproducesDraws checks spec §4.9's bit-identical
// replay guarantee directly: snapshotting a Stream and restoring it into
// a fresh Stream must reproduce the exact same sequence of draws,
// regardless of how many draws were made first or what's drawn after.
func TestSnapshotRestoreReproducesDraws(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Uint64().Draw(rt, "seed")
		preDraws := rapid.IntRange(0, 50).Draw(rt, "preDraws")
		postDraws := rapid.IntRange(1, 50).Draw(rt, "postDraws")

		s := NewFromSeed(seed)
		for i := 0; i < preDraws; i++ {
			s.IntN(1000)
		}
		snap := s.Snapshot()

		want := make([]int, postDraws)
		for i := range want {
			want[i] = s.IntN(1000)
		}

		restored := NewFromSeed(seed ^ 0x1) // deliberately different construction seed
		if err := restored.Restore(snap); err != nil {
			rt.Fatalf("Restore: %v", err)
		}
		for i := 0; i < postDraws; i++ {
			if got := restored.IntN(1000); got != want[i] {
				rt.Fatalf("draw %d after restore = %d, want %d", i, got, want[i])
			}
		}
	})
}

// TestSnapshotIsStableUnderReadOnlyOps checks that Snapshot itself never
// perturbs generator state: two back-to-back snapshots with no draws
// between them must be byte-identical.
func TestSnapshotIsStableUnderReadOnlyOps(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Uint64().Draw(rt, "seed")
		s := NewFromSeed(seed)
		a := s.Snapshot()
		b := s.Snapshot()
		if !bytes.Equal(a, b) {
			rt.Fatalf("Snapshot is not idempotent: %x != %x", a, b)
		}
	})
}
