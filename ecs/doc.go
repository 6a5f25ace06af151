// Package ecs is an entity-component store: a data-oriented container
// library that associates heterogeneous, statically-typed component values
// and tag markers with lightweight entity handles, and supports
// high-throughput iteration over every entity carrying a given component.
//
// # Layers
//
// The package is organised bottom-up, mirroring the order a caller builds
// on top of it:
//
//   - [BitMask]: a word-sized occupancy bitmap with forward/reverse bit
//     iteration, used internally by [ChunkedSparseSet].
//   - [Handle] and [Space]: a packed {generation, index} value type and
//     the configuration that packs/unpacks it.
//   - [FreeList]: allocates, recycles and iterates entity handles.
//   - [SparseSet], [ChunkedSparseSet], [TagSet]: per-component-type
//     storage: dense (cache-packed), chunked (bitmap-paged, reference
//     stable), and tag (membership-only).
//   - [ComponentView], [TagView]: single-pass iteration adapters that
//     exclusively borrow one container for their lifetime.
//   - [Store]: the type-heterogeneous façade that owns one free-list and
//     one container per declared component type.
//
// # Concurrency
//
// The package is single-threaded by design (no internal synchronisation).
// Multiple independent [Store] instances may be used from different
// goroutines simultaneously; a single Store must not be mutated and read
// concurrently.
//
// # Errors
//
// No operation here returns an error. Programmer errors (stale handles,
// double-add, use of an exhausted index space, mutating a container while
// a view holds it) panic with an "ecs: ..." message. Generation wraparound
// is accepted silently and documented on [Space].
package ecs
