package ecs

import (
	"fmt"
	"iter"
)

// FreeList allocates, recycles and iterates entity handles for one
// [Space]. Each record holds a handle whose meaning depends on occupancy:
// occupied records self-reference their own index with the live
// generation; free records hold the next free index with the generation
// that will be assigned on the slot's next allocation (already advanced
// at free time).
type FreeList[T Unsigned] struct {
	space    Space[T]
	records  []Handle[T]
	nextFree T
	used     T
}

// NewFreeList builds an empty free-list for space.
func NewFreeList[T Unsigned](space Space[T]) *FreeList[T] {
	return &FreeList[T]{space: space}
}

// Allocate returns a fresh handle: a new slot (generation 0) if no slot is
// free, or the head of the free chain (generation already advanced at the
// matching Free call) otherwise. Panics if the index space is exhausted.
func (f *FreeList[T]) Allocate() Handle[T] {
	index := f.nextFree
	if uint64(index) == uint64(len(f.records)) {
		if uint64(len(f.records)) > uint64(f.space.MaxIndex()) {
			panic("ecs: handle index space exhausted, widen the handle word or validation bits")
		}
		h := f.space.New(index)
		f.records = append(f.records, h)
		f.nextFree++
		f.used++
		return h
	}

	g := f.space.Generation(f.records[index])
	f.nextFree = f.space.Index(f.records[index])
	h := f.space.Create(g, index)
	f.records[index] = h
	f.used++
	return h
}

// Free returns handle's slot to the free chain, advancing its stored
// generation so the next Allocate of that slot yields a handle with a
// different generation (§8 "Handle reuse"). Panics if the slot is not
// currently occupied by handle's exact generation.
func (f *FreeList[T]) Free(handle Handle[T]) {
	index := f.space.Index(handle)
	if !f.IsOccupied(index) {
		panic(fmt.Sprintf("ecs: freeing handle at index %d that is already free", index))
	}
	g := f.space.Generation(f.records[index])
	if g != f.space.Generation(handle) {
		panic(fmt.Sprintf("ecs: freeing handle at index %d with stale generation %d, stored generation is %d", index, f.space.Generation(handle), g))
	}

	next := f.space.Next(g, f.nextFree)
	f.records[index] = next
	f.nextFree = index
	f.used--
}

// IsOccupied reports whether index currently holds a live handle.
func (f *FreeList[T]) IsOccupied(index T) bool {
	return f.space.Index(f.records[index]) == index
}

// UsedCount returns the number of currently live handles.
func (f *FreeList[T]) UsedCount() T { return f.used }

// MaxIndex returns the number of slot records ever allocated (the high
// water mark, not the capacity).
func (f *FreeList[T]) MaxIndex() T { return T(len(f.records)) }

// Clear drops every record and resets all counters.
func (f *FreeList[T]) Clear() {
	f.records = nil
	f.nextFree = 0
	f.used = 0
}

// All returns a sequence over every live handle, in ascending slot order.
// Iteration walks every record (O(n) in total records, not just occupied
// ones) and skips free slots.
func (f *FreeList[T]) All() iter.Seq[Handle[T]] {
	return func(yield func(Handle[T]) bool) {
		for i := 0; i < len(f.records); i++ {
			index := T(i)
			if !f.IsOccupied(index) {
				continue
			}
			g := f.space.Generation(f.records[i])
			if !yield(f.space.Create(g, index)) {
				return
			}
		}
	}
}

// Reverse returns a sequence over every live handle, in descending slot
// order.
func (f *FreeList[T]) Reverse() iter.Seq[Handle[T]] {
	return func(yield func(Handle[T]) bool) {
		for i := len(f.records) - 1; i >= 0; i-- {
			index := T(i)
			if !f.IsOccupied(index) {
				continue
			}
			g := f.space.Generation(f.records[i])
			if !yield(f.space.Create(g, index)) {
				return
			}
		}
	}
}
