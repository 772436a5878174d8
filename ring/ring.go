// File: ring/ring.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Overwrite-on-full circular queue over an allocator-backed node cycle.

package ring

import (
	"unsafe"

	"github.com/pkg/errors"

	"github.com/momentics/hioload-ring/api"
)

// MinCapacity is the smallest capacity New and Resize accept.
const MinCapacity = 3

// Ring is a fixed-capacity FIFO over a cycle of capacity nodes.
//
// Walking size nodes from head reaches tail; the capacity-size nodes from
// tail up to head are free slots holding stale data. A released ring
// (moved-from or closed) has nil head and tail and zero capacity.
type Ring[T any] struct {
	alloc    api.Allocator
	head     *node[T] // oldest unread element
	tail     *node[T] // receives the next write
	size     int
	capacity int
	nodeSize int
	policy   ShrinkPolicy
}

// New allocates a ring of capacity nodes through alloc. The allocator is
// borrowed and must outlive the ring.
func New[T any](capacity int, alloc api.Allocator, opts ...Option) (*Ring[T], error) {
	if capacity < MinCapacity {
		return nil, errors.Wrapf(api.ErrInvalidArgument, "ring: capacity %d below minimum %d", capacity, MinCapacity)
	}
	if alloc == nil {
		return nil, errors.Wrap(api.ErrInvalidArgument, "ring: nil allocator")
	}
	o := options{policy: ShrinkDropOldest}
	for _, opt := range opts {
		opt(&o)
	}
	r := &Ring[T]{
		alloc:    alloc,
		nodeSize: int(unsafe.Sizeof(node[T]{})),
		policy:   o.policy,
	}
	first, last, err := r.allocChain(capacity)
	if err != nil {
		return nil, errors.Wrapf(err, "ring: construct capacity %d", capacity)
	}
	last.next = first
	r.head, r.tail = first, first
	r.capacity = capacity
	return r, nil
}

// Write stores item at tail. A full ring drops its oldest element.
func (r *Ring[T]) Write(item T) {
	if r.tail == nil {
		return
	}
	r.tail.value = item
	r.tail = r.tail.next
	if r.size == r.capacity {
		r.head = r.head.next
		return
	}
	r.size++
}

// Read returns the element at head and consumes it if the ring is not
// empty. An empty ring returns whatever stale value sits at head; check
// Counter first or use TryRead.
func (r *Ring[T]) Read() T {
	if r.head == nil {
		var zero T
		return zero
	}
	v := r.head.value
	if r.size > 0 {
		r.head = r.head.next
		r.size--
	}
	return v
}

// TryRead consumes the oldest element; ok is false when the ring is empty.
func (r *Ring[T]) TryRead() (v T, ok bool) {
	if r.size == 0 {
		return v, false
	}
	return r.Read(), true
}

// Peek returns the oldest element without consuming it.
func (r *Ring[T]) Peek() (v T, ok bool) {
	if r.size == 0 {
		return v, false
	}
	return r.head.value, true
}

func (r *Ring[T]) IsFull() bool {
	return r.capacity > 0 && r.size == r.capacity
}

func (r *Ring[T]) IsEmpty() bool {
	return r.size == 0
}

// Counter returns the number of unread elements.
func (r *Ring[T]) Counter() int {
	return r.size
}

// Cap returns the number of slots, 0 once released.
func (r *Ring[T]) Cap() int {
	return r.capacity
}

// Policy returns the shrink policy the ring was built with.
func (r *Ring[T]) Policy() ShrinkPolicy {
	return r.policy
}

// Released reports whether the ring no longer owns any nodes.
func (r *Ring[T]) Released() bool {
	return r.head == nil
}

// Empty discards all elements. Slot memory is left as is; the next write
// lands on the current head.
func (r *Ring[T]) Empty() {
	r.size = 0
	r.tail = r.head
}

// Move transfers the node cycle to a new Ring and leaves r released.
func (r *Ring[T]) Move() *Ring[T] {
	dst := &Ring[T]{}
	dst.take(r)
	return dst
}

// MoveFrom releases r's own nodes and takes over src's. src is left released.
func (r *Ring[T]) MoveFrom(src *Ring[T]) {
	if src == r {
		return
	}
	r.Close()
	r.take(src)
}

func (r *Ring[T]) take(src *Ring[T]) {
	*r = *src
	*src = Ring[T]{nodeSize: r.nodeSize, policy: r.policy}
}

// Close deallocates all capacity nodes and leaves the ring released.
func (r *Ring[T]) Close() {
	if r.head == nil {
		return
	}
	r.freeChain(r.head, r.capacity)
	r.head, r.tail = nil, nil
	r.size, r.capacity = 0, 0
	r.alloc = nil
}

var _ api.Ring[int] = (*Ring[int])(nil)
