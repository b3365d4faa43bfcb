// Package rng implements the engine's single-source-of-randomness
// discipline (spec §4.9): one seeded generator embedded in game state,
// never reseeded mid-game, whose internal state round-trips through the
// undo log and through snapshots bit-for-bit.
package rng

import "math/rand/v2"

// Stream wraps a PCG source so its 128 bits of state can be read and
// restored directly, rather than relying on the non-portable gob encoding
// rand.Rand itself would pull in. PCG is deterministic across Go versions
// for a given seed pair, which matters for spec §4.9's "same seed, same
// play sequence, bit-identical event log" guarantee.
type Stream struct {
	src *rand.PCG
	r   *rand.Rand
}

// New creates a Stream seeded from two 64-bit halves, PCG's own seed
// shape (NewFromSeed derives both halves from a single uint64 as
// (seed, seed^0x9E3779B97F4A7C15)).
func New(seed1, seed2 uint64) *Stream {
	src := rand.NewPCG(seed1, seed2)
	return &Stream{src: src, r: rand.New(src)}
}

// NewFromSeed derives a Stream from a single 64-bit seed, used by the CLI's
// -seed flag.
func NewFromSeed(seed uint64) *Stream {
	return New(seed, seed^0x9E3779B97F4A7C15)
}

// R exposes the underlying *rand.Rand for call sites that want
// IntN/Float64/Shuffle etc. directly.
func (s *Stream) R() *rand.Rand { return s.r }

// IntN returns a uniform value in [0, n).
func (s *Stream) IntN(n int) int { return s.r.IntN(n) }

// Shuffle permutes a slice of length n in place using swap(i, j).
func (s *Stream) Shuffle(n int, swap func(i, j int)) { s.r.Shuffle(n, swap) }

// State is the PCG source's opaque marshaled form, captured verbatim so
// snapshots and undo-log turn-change records reproduce it bit-for-bit
// without this package needing to know PCG's internal layout.
type State []byte

// Snapshot returns the current generator state.
func (s *Stream) Snapshot() State {
	b, _ := s.src.MarshalBinary()
	return State(b)
}

// Restore resets the generator to a previously captured state.
func (s *Stream) Restore(st State) error {
	return s.src.UnmarshalBinary(st)
}
