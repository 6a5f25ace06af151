package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type position struct{ X, Y float64 }
type velocity struct{ Vx, Vy float64 }
type player struct{ Name string }
type isWet struct{}

func TestStore_CreateDestroyEntityCascadesComponentRemoval(t *testing.T) {
	t.Parallel()

	s := NewStore[uint32](16)

	h := s.CreateEntity()
	AddComponent(s, h, position{1, 2})
	AddComponent(s, h, velocity{3, 4})
	AddComponent(s, h, player{"hero"})
	AddTag[isWet](s, h)

	require.True(t, HasComponent[position](s, h))
	require.True(t, HasTag[isWet](s, h))

	s.DestroyEntity(h)

	assert.False(t, HasComponent[position](s, h))
	assert.False(t, HasComponent[velocity](s, h))
	assert.False(t, HasComponent[player](s, h))
	assert.False(t, HasTag[isWet](s, h))
}

// Scenario 5 (§8): destroy cascades, including across a generation bump.
func TestStore_DestroyCascadesAcrossGenerationReuse(t *testing.T) {
	t.Parallel()

	s := NewStore[uint32](16)

	h := s.CreateEntity()
	AddComponent(s, h, position{1, 2})
	AddComponent(s, h, velocity{3, 4})
	AddComponent(s, h, player{"hero"})
	AddTag[isWet](s, h)

	s.DestroyEntity(h)

	// Before any reallocation, the stale handle must read as absent
	// everywhere.
	assert.False(t, HasComponent[position](s, h))
	assert.False(t, HasTag[isWet](s, h))

	// A fresh handle may or may not land on the same slot; either way the
	// original (now stale) handle must keep reading as absent.
	h2 := s.CreateEntity()
	AddComponent(s, h2, position{9, 9})

	assert.False(t, HasComponent[position](s, h), "stale handle must not alias the new occupant of its old slot")
	assert.True(t, HasComponent[position](s, h2))
}

// Scenario 6 (§8): dual stores are isolated; handles are equal as values
// but not portable.
func TestStore_DualStoresAreIsolated(t *testing.T) {
	t.Parallel()

	a := NewStore[uint32](16)
	b := NewStore[uint32](16)

	a1 := a.CreateEntity()
	b1 := b.CreateEntity()

	assert.True(t, a1.Equal(b1), "both are index 0, generation 0")

	AddComponent(a, a1, position{1, 1})
	AddComponent(b, b1, position{2, 2})

	assert.Equal(t, position{1, 1}, *GetComponent[position](a, a1))
	assert.Equal(t, position{2, 2}, *GetComponent[position](b, b1))

	assert.False(t, HasComponent[velocity](a, a1))
	assert.Equal(t, 1, a.EntityCount())
	assert.Equal(t, 1, b.EntityCount())
}

func TestStore_ChunkedComponentsRoundTrip(t *testing.T) {
	t.Parallel()

	type transform struct{ X, Y, Z float64 }

	s := NewStore[uint32](16)
	RegisterChunked[transform](s)

	h := s.CreateEntity()
	AddChunkedComponent(s, h, transform{1, 2, 3})

	assert.True(t, HasChunkedComponent[transform](s, h))
	assert.Equal(t, transform{1, 2, 3}, *GetChunkedComponent[transform](s, h))

	RemoveChunkedComponent[transform](s, h)
	assert.False(t, HasChunkedComponent[transform](s, h))
}

func TestStore_ViewIteratesAllEntitiesWithComponent(t *testing.T) {
	t.Parallel()

	s := NewStore[uint32](16)

	var handles []Handle[uint32]
	for i := 0; i < 10; i++ {
		h := s.CreateEntity()
		AddComponent(s, h, position{float64(i), 0})
		handles = append(handles, h)
	}

	count := 0
	view := View[position](s)
	for h, p := range view.All() {
		p.X += 100
		count++
		_ = h
	}
	view.Close()

	assert.Equal(t, 10, count)
	for i, h := range handles {
		assert.Equal(t, float64(i)+100, GetComponent[position](s, h).X)
	}
}

func TestStore_ReservedComponentCountGrowsMonotonicallyUntilClear(t *testing.T) {
	t.Parallel()

	s := NewStore[uint32](16)
	RegisterDense[position](s)

	for i := 0; i < initialReservedComponentCount+1; i++ {
		s.CreateEntity()
	}
	grownReserved := s.reserved
	assert.Greater(t, grownReserved, initialReservedComponentCount)

	for i := 0; i < 3; i++ {
		s.CreateEntity()
	}
	assert.Equal(t, grownReserved, s.reserved, "reserved count must not shrink while below capacity")

	s.Clear()
	assert.Equal(t, initialReservedComponentCount, s.reserved)
	assert.Equal(t, 0, s.EntityCount())
}

func TestStore_ClearResetsContainersAndFreeList(t *testing.T) {
	t.Parallel()

	s := NewStore[uint32](16)
	h := s.CreateEntity()
	AddComponent(s, h, position{1, 1})

	s.Clear()

	assert.Equal(t, 0, s.EntityCount())
	assert.Equal(t, 0, ComponentCount[position](s))

	h2 := s.CreateEntity()
	assert.Equal(t, uint32(0), s.space.Index(h2))
	assert.Equal(t, uint32(0), s.space.Generation(h2))
}

func TestStore_RegisteringSameTypeUnderDifferentClassPanics(t *testing.T) {
	t.Parallel()

	s := NewStore[uint32](16)
	RegisterDense[position](s)
	assert.Panics(t, func() { RegisterChunked[position](s) })
}

func TestStore_HasComponentOnUnregisteredTypeIsFalseNotPanic(t *testing.T) {
	t.Parallel()

	s := NewStore[uint32](16)
	h := s.CreateEntity()
	assert.False(t, HasComponent[velocity](s, h))
	assert.False(t, HasTag[isWet](s, h))
}
