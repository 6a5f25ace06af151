package ecs

import (
	"fmt"
	"reflect"
)

// initialReservedComponentCount and growthFactor are the two compile-time
// constants §4.7/§6 call out: a freshly constructed or Clear'd Store
// starts with room for this many entities, and doubles whenever it runs
// out.
const (
	initialReservedComponentCount = 8
	growthFactor                  = 2
)

// container is the type-erased interface every per-component-type
// storage in a Store satisfies, so the Store can drive ReserveSparse,
// RemoveIfPresent and Clear across all of them without knowing their
// component types. This is the same re-architecture the teacher uses
// (SparseSetInterface keyed by reflect.Type in a Registry) generalised to
// the store's three storage classes (§9 "map from a compile-time type tag
// to an erased container pointer").
type container[T Unsigned] interface {
	ReserveSparse(n int)
	RemoveIfPresent(handle Handle[T])
	Clear()
}

// Store is the type-heterogeneous façade (§4.7): it owns one [FreeList]
// and, for every component or tag type a caller has used, one container
// (a [SparseSet], [ChunkedSparseSet] or [TagSet]) keyed by that type.
// Containers are registered lazily on first use, defaulting to dense
// storage for components, exactly as the teacher's
// Registry.EmplaceComponent auto-creates a SparseSet; chunked storage
// must be opted into explicitly via [RegisterChunked].
type Store[T Unsigned] struct {
	space      Space[T]
	freelist   *FreeList[T]
	reserved   int
	containers map[reflect.Type]container[T]
}

// NewStore builds an empty store over a [Space] for word type T with the
// given validation bit width (§4.2, §6).
func NewStore[T Unsigned](validationBits uint) *Store[T] {
	return &Store[T]{
		space:      NewSpace[T](validationBits),
		freelist:   NewFreeList[T](NewSpace[T](validationBits)),
		reserved:   initialReservedComponentCount,
		containers: make(map[reflect.Type]container[T]),
	}
}

func typeKey[C any]() reflect.Type {
	var zero C
	return reflect.TypeOf(zero)
}

// RegisterDense declares C as a densely stored component type ahead of
// first use. Calling it again for the same type is a no-op if C is
// already registered dense, and a panic if it is registered under a
// different storage class.
func RegisterDense[C any, T Unsigned](s *Store[T]) *SparseSet[T, C] {
	key := typeKey[C]()
	if existing, ok := s.containers[key]; ok {
		set, ok := existing.(*SparseSet[T, C])
		if !ok {
			panic(fmt.Sprintf("ecs: %v already registered under a different storage class", key))
		}
		return set
	}
	set := NewSparseSet[T, C](s.space)
	set.ReserveSparse(s.reserved)
	s.containers[key] = set
	return set
}

// RegisterChunked declares C as a chunked component type (§4.5) ahead of
// first use.
func RegisterChunked[C any, T Unsigned](s *Store[T]) *ChunkedSparseSet[T, C] {
	key := typeKey[C]()
	if existing, ok := s.containers[key]; ok {
		set, ok := existing.(*ChunkedSparseSet[T, C])
		if !ok {
			panic(fmt.Sprintf("ecs: %v already registered under a different storage class", key))
		}
		return set
	}
	set := NewChunkedSparseSet[T, C](s.space)
	set.ReserveSparse(s.reserved)
	s.containers[key] = set
	return set
}

// RegisterTag declares C as a tag type ahead of first use. C should be an
// empty marker struct; its size never matters since a tag set carries no
// payload.
func RegisterTag[C any, T Unsigned](s *Store[T]) *TagSet[T] {
	key := typeKey[C]()
	if existing, ok := s.containers[key]; ok {
		set, ok := existing.(*TagSet[T])
		if !ok {
			panic(fmt.Sprintf("ecs: %v already registered under a different storage class", key))
		}
		return set
	}
	set := NewTagSet[T](s.space)
	set.ReserveSparse(s.reserved)
	s.containers[key] = set
	return set
}

func denseSet[C any, T Unsigned](s *Store[T]) *SparseSet[T, C] {
	key := typeKey[C]()
	existing, ok := s.containers[key]
	if !ok {
		return RegisterDense[C](s)
	}
	set, ok := existing.(*SparseSet[T, C])
	if !ok {
		panic(fmt.Sprintf("ecs: %v is not a dense component in this store", key))
	}
	return set
}

func chunkedSet[C any, T Unsigned](s *Store[T]) *ChunkedSparseSet[T, C] {
	key := typeKey[C]()
	existing, ok := s.containers[key]
	if !ok {
		panic(fmt.Sprintf("ecs: %v is not registered as a chunked component, call RegisterChunked first", key))
	}
	set, ok := existing.(*ChunkedSparseSet[T, C])
	if !ok {
		panic(fmt.Sprintf("ecs: %v is not a chunked component in this store", key))
	}
	return set
}

func tagSet[C any, T Unsigned](s *Store[T]) *TagSet[T] {
	key := typeKey[C]()
	existing, ok := s.containers[key]
	if !ok {
		return RegisterTag[C](s)
	}
	set, ok := existing.(*TagSet[T])
	if !ok {
		panic(fmt.Sprintf("ecs: %v is not a tag in this store", key))
	}
	return set
}

// CreateEntity allocates a fresh handle, doubling every container's
// sparse reservation first if the store is at capacity (§4.7).
func (s *Store[T]) CreateEntity() Handle[T] {
	if int(s.freelist.UsedCount()) == s.reserved {
		s.reserved *= growthFactor
		for _, c := range s.containers {
			c.ReserveSparse(s.reserved)
		}
	}
	return s.freelist.Allocate()
}

// DestroyEntity removes every component and tag handle might carry, then
// frees the handle itself.
func (s *Store[T]) DestroyEntity(handle Handle[T]) {
	for _, c := range s.containers {
		c.RemoveIfPresent(handle)
	}
	s.freelist.Free(handle)
}

// EntityCount returns the number of currently live entities.
func (s *Store[T]) EntityCount() int { return int(s.freelist.UsedCount()) }

// AddComponent attaches a dense component of type C to handle, registering
// C as dense on first use.
func AddComponent[C any, T Unsigned](s *Store[T], handle Handle[T], value C) {
	denseSet[C](s).Add(handle, value)
}

// RemoveComponent detaches handle's dense component of type C.
func RemoveComponent[C any, T Unsigned](s *Store[T], handle Handle[T]) {
	denseSet[C](s).Remove(handle)
}

// GetComponent returns a pointer to handle's dense component of type C.
func GetComponent[C any, T Unsigned](s *Store[T], handle Handle[T]) *C {
	return denseSet[C](s).Get(handle)
}

// HasComponent reports whether handle currently has a dense component of
// type C.
func HasComponent[C any, T Unsigned](s *Store[T], handle Handle[T]) bool {
	key := typeKey[C]()
	existing, ok := s.containers[key]
	if !ok {
		return false
	}
	set, ok := existing.(*SparseSet[T, C])
	if !ok {
		panic(fmt.Sprintf("ecs: %v is not a dense component in this store", key))
	}
	return set.Has(handle)
}

// AddChunkedComponent attaches a chunked component of type C to handle. C
// must already be registered via [RegisterChunked].
func AddChunkedComponent[C any, T Unsigned](s *Store[T], handle Handle[T], value C) {
	chunkedSet[C](s).Add(handle, value)
}

// RemoveChunkedComponent detaches handle's chunked component of type C.
func RemoveChunkedComponent[C any, T Unsigned](s *Store[T], handle Handle[T]) {
	chunkedSet[C](s).Remove(handle)
}

// GetChunkedComponent returns a pointer to handle's chunked component of
// type C.
func GetChunkedComponent[C any, T Unsigned](s *Store[T], handle Handle[T]) *C {
	return chunkedSet[C](s).Get(handle)
}

// HasChunkedComponent reports whether handle currently has a chunked
// component of type C.
func HasChunkedComponent[C any, T Unsigned](s *Store[T], handle Handle[T]) bool {
	key := typeKey[C]()
	existing, ok := s.containers[key]
	if !ok {
		return false
	}
	set, ok := existing.(*ChunkedSparseSet[T, C])
	if !ok {
		panic(fmt.Sprintf("ecs: %v is not a chunked component in this store", key))
	}
	return set.Has(handle)
}

// AddTag marks handle with tag type C, registering C as a tag on first
// use.
func AddTag[C any, T Unsigned](s *Store[T], handle Handle[T]) {
	tagSet[C](s).Add(handle)
}

// RemoveTag clears tag type C from handle.
func RemoveTag[C any, T Unsigned](s *Store[T], handle Handle[T]) {
	tagSet[C](s).Remove(handle)
}

// HasTag reports whether handle currently carries tag type C.
func HasTag[C any, T Unsigned](s *Store[T], handle Handle[T]) bool {
	key := typeKey[C]()
	existing, ok := s.containers[key]
	if !ok {
		return false
	}
	set, ok := existing.(*TagSet[T])
	if !ok {
		panic(fmt.Sprintf("ecs: %v is not a tag in this store", key))
	}
	return set.Has(handle)
}

// View returns an iteration view over every entity carrying a dense
// component of type C.
func View[C any, T Unsigned](s *Store[T]) *ComponentView[T, C] {
	return denseSet[C](s).View()
}

// ChunkedView returns an iteration view over every entity carrying a
// chunked component of type C.
func ChunkedView[C any, T Unsigned](s *Store[T]) *ComponentView[T, C] {
	return chunkedSet[C](s).View()
}

// TagViewOf returns a handle-only iteration view over every entity
// carrying tag type C.
func TagViewOf[C any, T Unsigned](s *Store[T]) *TagView[T] {
	return tagSet[C](s).View()
}

// ComponentCount returns the number of live components of type C, whether
// C is stored dense or chunked, or the number of tagged entities if C is a
// tag (0 if C was never registered).
func ComponentCount[C any, T Unsigned](s *Store[T]) int {
	key := typeKey[C]()
	existing, ok := s.containers[key]
	if !ok {
		return 0
	}
	if set, ok := existing.(*SparseSet[T, C]); ok {
		return set.DenseSize()
	}
	if set, ok := existing.(*ChunkedSparseSet[T, C]); ok {
		return set.LiveCount()
	}
	if set, ok := existing.(*TagSet[T]); ok {
		return set.DenseSize()
	}
	return 0
}

// Clear resets the store to its newly constructed state: every container
// is cleared, the free-list is cleared, and the reserved component count
// returns to initialReservedComponentCount.
func (s *Store[T]) Clear() {
	for _, c := range s.containers {
		c.Clear()
	}
	s.freelist.Clear()
	s.reserved = initialReservedComponentCount
	for _, c := range s.containers {
		c.ReserveSparse(s.reserved)
	}
}
