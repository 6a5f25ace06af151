package ecs

import (
	"fmt"
	"iter"
)

// chunkBlockSize is the fixed number of slots per chunk (§3 "Chunked
// sparse set"). It matches the bit width of the occupancy mask exactly.
const chunkBlockSize = 64

type chunk[T Unsigned, C any] struct {
	mask    BitMask[uint64]
	inverse [chunkBlockSize]Handle[T]
	data    [chunkBlockSize]C
	block   T // the block index (i/64) this chunk currently serves
}

// ChunkedSparseSet is a per-component-type chunked sparse set (§4.5):
// block-allocated storage of 64-slot chunks, each carrying its own
// occupancy bitmap. Unlike [SparseSet], removal never relocates another
// live component's storage slot (it only clears a bit), so references
// returned by Get remain stable for the chunk's lifetime. Chunks are
// swap-removed from the chunk vector once they become fully empty.
type ChunkedSparseSet[T Unsigned, C any] struct {
	space      Space[T]
	chunkIndex []T // per block -> chunk id, or invalid
	chunks     []*chunk[T, C]
	borrowed   bool
}

// NewChunkedSparseSet builds an empty chunked sparse set for space.
func NewChunkedSparseSet[T Unsigned, C any](space Space[T]) *ChunkedSparseSet[T, C] {
	return &ChunkedSparseSet[T, C]{space: space}
}

func (s *ChunkedSparseSet[T, C]) checkNotBorrowed() {
	if s.borrowed {
		panic("ecs: chunked sparse set mutated while a view on it is live")
	}
}

// ReserveSparse enlarges the block table so it can address at least n
// slot indices. Grow-only.
func (s *ChunkedSparseSet[T, C]) ReserveSparse(n int) {
	s.checkNotBorrowed()
	blocks := n/chunkBlockSize + 1
	if blocks <= len(s.chunkIndex) {
		return
	}
	grown := make([]T, blocks)
	copy(grown, s.chunkIndex)
	for i := len(s.chunkIndex); i < blocks; i++ {
		grown[i] = invalidPos[T]()
	}
	s.chunkIndex = grown
}

// SparseSize returns the number of slots the block table currently
// addresses (blocks * chunkBlockSize).
func (s *ChunkedSparseSet[T, C]) SparseSize() int { return len(s.chunkIndex) * chunkBlockSize }

// DenseSize returns the total slot capacity currently backed by allocated
// chunks (len(chunks) * chunkBlockSize). Chunked storage allocates a
// whole 64-slot block at a time regardless of how densely it is
// populated, so this tracks allocated capacity rather than live count
// (§8 scenario 3: two chunks in use reports dense_size() == 128). Use
// [ChunkedSparseSet.LiveCount] for the number of components actually
// present.
func (s *ChunkedSparseSet[T, C]) DenseSize() int {
	return len(s.chunks) * chunkBlockSize
}

// LiveCount returns the number of components actually present across all
// chunks.
func (s *ChunkedSparseSet[T, C]) LiveCount() int {
	n := 0
	for _, c := range s.chunks {
		n += c.mask.Count()
	}
	return n
}

func blockAndOffset[T Unsigned](index T) (block, offset int) {
	i := int(index)
	return i / chunkBlockSize, i % chunkBlockSize
}

// Add inserts value for handle. Panics if handle's index exceeds the
// reserved block table or if a component is already present there.
func (s *ChunkedSparseSet[T, C]) Add(handle Handle[T], value C) {
	s.checkNotBorrowed()
	idx := s.space.Index(handle)
	b, k := blockAndOffset(idx)
	if b >= len(s.chunkIndex) {
		panic(fmt.Sprintf("ecs: handle index %d exceeds reserved sparse size %d", idx, s.SparseSize()))
	}
	if s.chunkIndex[b] == invalidPos[T]() {
		c := &chunk[T, C]{block: T(b)}
		s.chunks = append(s.chunks, c)
		s.chunkIndex[b] = T(len(s.chunks) - 1)
	}
	c := s.chunks[s.chunkIndex[b]]
	if c.mask.IsSet(uint(k)) {
		panic("ecs: component already present for handle")
	}
	c.mask.Set(uint(k))
	c.inverse[k] = handle
	c.data[k] = value
}

// Has reports whether handle currently has a live component in this set.
// A stale handle (one whose slot now holds a different generation) reports
// false.
func (s *ChunkedSparseSet[T, C]) Has(handle Handle[T]) bool {
	idx := s.space.Index(handle)
	b, k := blockAndOffset(idx)
	if b >= len(s.chunkIndex) || s.chunkIndex[b] == invalidPos[T]() {
		return false
	}
	c := s.chunks[s.chunkIndex[b]]
	if !c.mask.IsSet(uint(k)) {
		return false
	}
	return s.space.Generation(c.inverse[k]) == s.space.Generation(handle)
}

// Get returns a pointer to handle's component. Unlike [SparseSet.Get],
// this pointer stays valid across Add/Remove elsewhere in the set, as long
// as the chunk backing this slot is not itself deallocated (i.e. as long
// as handle's own component is not removed). Panics if handle has no
// component here.
func (s *ChunkedSparseSet[T, C]) Get(handle Handle[T]) *C {
	idx := s.space.Index(handle)
	b, k := blockAndOffset(idx)
	if b >= len(s.chunkIndex) || s.chunkIndex[b] == invalidPos[T]() {
		panic("ecs: component missing for handle")
	}
	c := s.chunks[s.chunkIndex[b]]
	if !c.mask.IsSet(uint(k)) {
		panic("ecs: component missing for handle")
	}
	if s.space.Generation(c.inverse[k]) != s.space.Generation(handle) {
		panic("ecs: stale handle generation")
	}
	return &c.data[k]
}

// Remove clears handle's slot. If that empties the chunk's occupancy mask,
// the chunk is swap-removed from the chunk vector and the moved chunk's
// block entry in chunkIndex is updated to its new position. Panics if
// handle has no component here or is stale.
func (s *ChunkedSparseSet[T, C]) Remove(handle Handle[T]) {
	s.checkNotBorrowed()
	idx := s.space.Index(handle)
	b, k := blockAndOffset(idx)
	if b >= len(s.chunkIndex) || s.chunkIndex[b] == invalidPos[T]() {
		panic("ecs: removing component that is not present")
	}
	cid := int(s.chunkIndex[b])
	c := s.chunks[cid]
	if !c.mask.IsSet(uint(k)) {
		panic("ecs: removing component that is not present")
	}
	if s.space.Generation(c.inverse[k]) != s.space.Generation(handle) {
		panic("ecs: stale handle generation")
	}
	c.mask.Clear(uint(k))
	var zero C
	c.data[k] = zero

	if !c.mask.IsZero() {
		return
	}

	last := len(s.chunks) - 1
	if cid != last {
		moved := s.chunks[last]
		s.chunks[cid] = moved
		s.chunkIndex[moved.block] = T(cid)
	}
	s.chunks = s.chunks[:last]
	s.chunkIndex[b] = invalidPos[T]()
}

// RemoveIfPresent removes handle's component if it has one, and is a
// no-op otherwise.
func (s *ChunkedSparseSet[T, C]) RemoveIfPresent(handle Handle[T]) {
	if s.Has(handle) {
		s.Remove(handle)
	}
}

// Clear drops every chunk and the block table.
func (s *ChunkedSparseSet[T, C]) Clear() {
	s.checkNotBorrowed()
	s.chunkIndex = nil
	s.chunks = nil
}

func (s *ChunkedSparseSet[T, C]) all() iter.Seq2[Handle[T], *C] {
	return func(yield func(Handle[T], *C) bool) {
		end := len(s.chunks)
		for ci := 0; ci < end && ci < len(s.chunks); ci++ {
			c := s.chunks[ci]
			for k := range c.mask.Forward() {
				if !yield(c.inverse[k], &c.data[k]) {
					return
				}
			}
		}
	}
}

// View borrows this set exclusively and returns an iteration view walking
// chunks in dense (vector) order, and within each chunk, occupied slots in
// ascending bit order. Panics if a view is already live.
func (s *ChunkedSparseSet[T, C]) View() *ComponentView[T, C] {
	s.checkNotBorrowed()
	s.borrowed = true
	return &ComponentView[T, C]{release: func() { s.borrowed = false }, seq: s.all()}
}
