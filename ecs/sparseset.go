package ecs

import (
	"fmt"
	"iter"
)

func invalidPos[T Unsigned]() T { return ^T(0) }

// SparseSet is a per-component-type dense sparse set (§4.4): a
// sparse-index-to-dense-slot mapping that keeps live components packed
// contiguously for cache-friendly iteration while offering O(1)
// membership, lookup, insertion and unordered (swap) removal by handle.
type SparseSet[T Unsigned, C any] struct {
	space    Space[T]
	sparse   []T
	dense    []C
	inverse  []Handle[T]
	borrowed bool
}

// NewSparseSet builds an empty dense sparse set for space.
func NewSparseSet[T Unsigned, C any](space Space[T]) *SparseSet[T, C] {
	return &SparseSet[T, C]{space: space}
}

func (s *SparseSet[T, C]) checkNotBorrowed() {
	if s.borrowed {
		panic("ecs: sparse set mutated while a view on it is live")
	}
}

// ReserveSparse enlarges the sparse reservation to n, filling new
// positions with the invalid sentinel. Grow-only: shrinking is not
// supported, and reserving a size no larger than the current one is a
// no-op.
func (s *SparseSet[T, C]) ReserveSparse(n int) {
	s.checkNotBorrowed()
	if n <= len(s.sparse) {
		return
	}
	grown := make([]T, n)
	copy(grown, s.sparse)
	for i := len(s.sparse); i < n; i++ {
		grown[i] = invalidPos[T]()
	}
	s.sparse = grown
}

// SparseSize returns the current sparse reservation.
func (s *SparseSet[T, C]) SparseSize() int { return len(s.sparse) }

// DenseSize returns the number of live components.
func (s *SparseSet[T, C]) DenseSize() int { return len(s.dense) }

// Add inserts value for handle. Panics if handle's index exceeds the
// reserved sparse size or if handle already has a component in this set.
func (s *SparseSet[T, C]) Add(handle Handle[T], value C) {
	s.checkNotBorrowed()
	idx := int(s.space.Index(handle))
	if idx >= len(s.sparse) {
		panic(fmt.Sprintf("ecs: handle index %d exceeds reserved sparse size %d", idx, len(s.sparse)))
	}
	if s.sparse[idx] != invalidPos[T]() {
		panic("ecs: component already present for handle")
	}
	s.dense = append(s.dense, value)
	s.inverse = append(s.inverse, handle)
	s.sparse[idx] = T(len(s.dense) - 1)
}

// Has reports whether handle currently has a live component in this set.
// A stale handle (one whose slot now holds a different generation) reports
// false.
func (s *SparseSet[T, C]) Has(handle Handle[T]) bool {
	idx := int(s.space.Index(handle))
	if idx >= len(s.sparse) || s.sparse[idx] == invalidPos[T]() {
		return false
	}
	pos := s.sparse[idx]
	return s.space.Generation(s.inverse[pos]) == s.space.Generation(handle)
}

// Get returns a pointer to handle's component. The pointer is valid only
// until the next structural change (Add/Remove/Clear/ReserveSparse) on
// this set. Panics if handle has no component here.
func (s *SparseSet[T, C]) Get(handle Handle[T]) *C {
	idx := int(s.space.Index(handle))
	if idx >= len(s.sparse) || s.sparse[idx] == invalidPos[T]() {
		panic("ecs: component missing for handle")
	}
	pos := s.sparse[idx]
	if s.space.Generation(s.inverse[pos]) != s.space.Generation(handle) {
		panic("ecs: stale handle generation")
	}
	return &s.dense[pos]
}

// Remove swap-removes handle's component: the last dense element is
// moved into the vacated slot (unless it already was the last), both
// arrays are shrunk by one, and the sparse entries of the moved element
// and the removed handle are updated accordingly. Panics if handle has no
// component here or is stale.
func (s *SparseSet[T, C]) Remove(handle Handle[T]) {
	s.checkNotBorrowed()
	idx := int(s.space.Index(handle))
	if idx >= len(s.sparse) || s.sparse[idx] == invalidPos[T]() {
		panic("ecs: removing component that is not present")
	}
	d := int(s.sparse[idx])
	if s.space.Generation(s.inverse[d]) != s.space.Generation(handle) {
		panic("ecs: stale handle generation")
	}
	last := len(s.dense) - 1
	if d != last {
		s.dense[d] = s.dense[last]
		s.inverse[d] = s.inverse[last]
		movedIdx := int(s.space.Index(s.inverse[d]))
		s.sparse[movedIdx] = T(d)
	}
	var zero C
	s.dense[last] = zero
	s.dense = s.dense[:last]
	s.inverse = s.inverse[:last]
	s.sparse[idx] = invalidPos[T]()
}

// RemoveIfPresent removes handle's component if it has one, and is a
// no-op otherwise.
func (s *SparseSet[T, C]) RemoveIfPresent(handle Handle[T]) {
	if s.Has(handle) {
		s.Remove(handle)
	}
}

// Clear empties the set. Sparse reservation is dropped along with it; a
// subsequent ReserveSparse is required before Add.
func (s *SparseSet[T, C]) Clear() {
	s.checkNotBorrowed()
	s.sparse = nil
	s.dense = nil
	s.inverse = nil
}

// all is the forward iteration sequence shared by View and by callers
// that do not need the exclusive-borrow bookkeeping (e.g. tests).
//
// The end bound is snapshotted once, at the start of iteration, so
// components Added during the walk are never visited (§4.4). The bound is
// re-clamped against the live length on every step, so a Remove of the
// currently-visited element mid-walk shrinks the array and the iterator
// simply advances past the vacated-then-refilled index; the element
// swapped into that index is skipped, never revisited.
func (s *SparseSet[T, C]) all() iter.Seq2[Handle[T], *C] {
	return func(yield func(Handle[T], *C) bool) {
		end := len(s.dense)
		for i := 0; i < end && i < len(s.dense); i++ {
			if !yield(s.inverse[i], &s.dense[i]) {
				return
			}
		}
	}
}

func (s *SparseSet[T, C]) reverse() iter.Seq2[Handle[T], *C] {
	return func(yield func(Handle[T], *C) bool) {
		for i := len(s.dense) - 1; i >= 0; i-- {
			if i >= len(s.dense) {
				continue
			}
			if !yield(s.inverse[i], &s.dense[i]) {
				return
			}
		}
	}
}

// View borrows this set exclusively and returns a forward iteration view
// in dense order. Panics if a view is already live. The caller must Close
// the view before mutating this set again.
func (s *SparseSet[T, C]) View() *ComponentView[T, C] {
	s.checkNotBorrowed()
	s.borrowed = true
	return &ComponentView[T, C]{release: func() { s.borrowed = false }, seq: s.all()}
}

// ReverseView is like View but iterates dense storage from the end.
func (s *SparseSet[T, C]) ReverseView() *ComponentView[T, C] {
	s.checkNotBorrowed()
	s.borrowed = true
	return &ComponentView[T, C]{release: func() { s.borrowed = false }, seq: s.reverse()}
}
