package ecs

import (
	"fmt"
)

// Unsigned is the set of integer types usable as a packed handle word.
type Unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Handle is a packed {generation, index} value identifying an entity slot.
// The packing itself (how many of the word's bits belong to the index vs.
// the generation) is a property of the [Space] that created the handle,
// not of the Handle value; a bare Handle is just a word, and equality is
// always a plain comparison of that word. The all-ones word is reserved
// as the sentinel "invalid" handle, independent of how a Space slices it.
type Handle[T Unsigned] struct {
	raw T
}

// IsValid reports whether h is not the sentinel invalid handle.
func (h Handle[T]) IsValid() bool {
	return h.raw != ^T(0)
}

// Equal reports whether h and o hold the same packed word.
func (h Handle[T]) Equal(o Handle[T]) bool {
	return h.raw == o.raw
}

// Invalid returns the sentinel invalid handle for word type T.
func Invalid[T Unsigned]() Handle[T] {
	return Handle[T]{raw: ^T(0)}
}

// Space describes one packed-handle layout: a word type T and a count of
// high bits reserved for the generation counter. Every [FreeList],
// [SparseSet], [ChunkedSparseSet], [TagSet] and [Store] built against the
// same Space value interprets handles identically. Space is an immutable
// value and is cheap to copy.
type Space[T Unsigned] struct {
	validationBits uint
	indexBits      uint
	maxIndex       T
	maxGeneration  T
}

// NewSpace builds a Space for word type T reserving validationBits of the
// word's high bits for the generation counter. Typical choices are
// (word=uint32, validationBits=16) giving 65536 live slots and 65536 reuse
// generations, or (uint32, 8) giving 16777216 slots and 256 generations.
//
// Panics if validationBits is zero or leaves no bits for the index.
func NewSpace[T Unsigned](validationBits uint) Space[T] {
	wordBits := bitWidth[T]()
	if validationBits == 0 || validationBits >= wordBits {
		panic(fmt.Sprintf("ecs: validation bit width %d must leave at least one index bit of %d", validationBits, wordBits))
	}
	indexBits := wordBits - validationBits
	return Space[T]{
		validationBits: validationBits,
		indexBits:      indexBits,
		maxIndex:       T((uint64(1) << indexBits) - 1),
		maxGeneration:  T((uint64(1) << validationBits) - 1),
	}
}

// MaxIndex returns the largest index value (slot count minus one) this
// Space can address.
func (s Space[T]) MaxIndex() T { return s.maxIndex }

// MaxGeneration returns the largest generation value before wraparound.
func (s Space[T]) MaxGeneration() T { return s.maxGeneration }

// New builds a fresh handle at generation 0. Panics if index exceeds
// MaxIndex.
func (s Space[T]) New(index T) Handle[T] {
	return s.Create(0, index)
}

// Create builds a handle from an explicit generation and index. Panics if
// either exceeds the Space's bounds.
func (s Space[T]) Create(generation, index T) Handle[T] {
	if index > s.maxIndex {
		panic(fmt.Sprintf("ecs: handle index %d exceeds space capacity %d", index, s.maxIndex))
	}
	if generation > s.maxGeneration {
		panic(fmt.Sprintf("ecs: handle generation %d exceeds space width %d", generation, s.maxGeneration))
	}
	return Handle[T]{raw: (generation << s.indexBits) | index}
}

// Next builds the handle that results from incrementing generation modulo
// MaxGeneration+1 and keeping index, per the free-list's reuse rule (§4.3).
func (s Space[T]) Next(generation, index T) Handle[T] {
	next := (generation + 1) & s.maxGeneration
	return s.Create(next, index)
}

// Index extracts h's index field under this Space's packing.
func (s Space[T]) Index(h Handle[T]) T {
	return h.raw & s.maxIndex
}

// Generation extracts h's generation field under this Space's packing.
func (s Space[T]) Generation(h Handle[T]) T {
	return (h.raw >> s.indexBits) & s.maxGeneration
}
