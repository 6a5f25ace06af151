package ecs

import "iter"

// ComponentView is a single-pass iteration adapter over one [SparseSet] or
// [ChunkedSparseSet], yielding (handle, *component) pairs in the
// container's native order. A view holds an exclusive borrow of its
// container for its lifetime (§5): no Add, Remove, Clear, ReserveSparse or
// second view may be requested on the same container while a view is
// live. Call Close when done to release the borrow.
type ComponentView[T Unsigned, C any] struct {
	release func()
	seq     iter.Seq2[Handle[T], *C]
	closed  bool
}

// All returns the (handle, *component) sequence this view wraps. Range
// over it directly: for h, c := range view.All() { ... }.
func (v *ComponentView[T, C]) All() iter.Seq2[Handle[T], *C] {
	return v.seq
}

// Close releases the view's exclusive borrow on its container. Close is
// idempotent.
func (v *ComponentView[T, C]) Close() {
	if v.closed {
		return
	}
	v.closed = true
	v.release()
}

// TagView is a single-pass iteration adapter over one [TagSet], yielding
// handles only. It has the same exclusive-borrow contract as
// [ComponentView].
type TagView[T Unsigned] struct {
	release func()
	seq     iter.Seq[Handle[T]]
	closed  bool
}

// All returns the handle sequence this view wraps.
func (v *TagView[T]) All() iter.Seq[Handle[T]] {
	return v.seq
}

// Close releases the view's exclusive borrow on its container. Close is
// idempotent.
func (v *TagView[T]) Close() {
	if v.closed {
		return
	}
	v.closed = true
	v.release()
}
