// File: ring/resize.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package ring

import (
	"github.com/pkg/errors"

	"github.com/momentics/hioload-ring/api"
)

// Resize changes the ring to capacity slots.
//
// Growth inserts the new slots as free space right before tail and fails
// atomically: on allocation failure the ring is exactly as before. Shrink
// removes free slots first, starting at tail; if that is not enough the
// shrink policy picks the elements to drop.
func (r *Ring[T]) Resize(capacity int) error {
	if r.head == nil {
		return errors.Wrap(api.ErrReleased, "ring: resize")
	}
	if capacity < MinCapacity {
		return errors.Wrapf(api.ErrInvalidArgument, "ring: capacity %d below minimum %d", capacity, MinCapacity)
	}
	switch {
	case capacity == r.capacity:
		return nil
	case capacity > r.capacity:
		return r.grow(capacity)
	default:
		return r.shrink(capacity)
	}
}

// before returns the node preceding tail.
func (r *Ring[T]) before() *node[T] {
	n := r.tail
	for n.next != r.tail {
		n = n.next
	}
	return n
}

func (r *Ring[T]) grow(capacity int) error {
	first, last, err := r.allocChain(capacity - r.capacity)
	if err != nil {
		return errors.Wrapf(err, "ring: grow %d -> %d", r.capacity, capacity)
	}
	prev := r.before()
	prev.next = first
	last.next = r.tail
	// tail must sit right after the newest element again; with a full ring
	// the old tail is head.
	r.tail = first
	if r.size == 0 {
		r.head = first
	}
	r.capacity = capacity
	return nil
}

func (r *Ring[T]) shrink(capacity int) error {
	excess := r.size - capacity
	if excess > 0 && r.policy == ShrinkReject {
		return errors.Wrapf(api.ErrInvalidArgument, "ring: shrink to %d would drop %d of %d elements", capacity, excess, r.size)
	}

	prev := r.before()
	r.unlinkAfter(prev, min(r.capacity-capacity, r.capacity-r.size))
	r.tail = prev.next
	if r.size == 0 {
		r.head = r.tail
	}

	if excess > 0 {
		// No free slots left: tail == head and prev holds the newest element.
		switch r.policy {
		case ShrinkDropNewest:
			last := r.head
			for i := 1; i < capacity; i++ {
				last = last.next
			}
			r.unlinkAfter(last, excess)
		default:
			r.unlinkAfter(prev, excess)
			r.head = prev.next
		}
		r.tail = r.head
		r.size = capacity
	}
	r.capacity = capacity
	return nil
}
