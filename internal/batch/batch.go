// Package batch provides a fixed-width vector of 32-bit words, the unit
// that the evaluator, oracle, and search loop all operate on lane-wise.
package batch

import "math/rand"

// Size is the number of lanes in a Batch. It is a compile-time constant
// rather than a configurable parameter: the evaluator's lane loops assume
// it directly.
const Size = 32

// Batch is an ordered, fixed-width sequence of Size 32-bit words.
type Batch struct {
	words [Size]uint32
}

// At returns the word at lane i.
func (b *Batch) At(i int) uint32 {
	return b.words[i]
}

// Set writes the word at lane i.
func (b *Batch) Set(i int, v uint32) {
	b.words[i] = v
}

// Words exposes the backing array as a slice for bulk lane loops.
func (b *Batch) Words() []uint32 {
	return b.words[:]
}

// Fill returns a Batch with every lane set to v.
func Fill(v uint32) Batch {
	var b Batch
	for i := range b.words {
		b.words[i] = v
	}
	return b
}

// FromSlice builds a Batch from exactly Size words, panicking otherwise.
func FromSlice(words []uint32) Batch {
	if len(words) != Size {
		panic("batch: FromSlice requires exactly Size words")
	}
	var b Batch
	copy(b.words[:], words)
	return b
}

// Random draws a Batch of independently, uniformly distributed words from
// rng. rng is an injected dependency; Random never touches process-global
// randomness.
func Random(rng *rand.Rand) Batch {
	var b Batch
	for i := range b.words {
		b.words[i] = rng.Uint32()
	}
	return b
}

// Equal reports whether a and b agree lane-by-lane.
func (b *Batch) Equal(other *Batch) bool {
	return b.words == other.words
}
