// File: ring/node.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package ring

import (
	"github.com/pkg/errors"

	"github.com/momentics/hioload-ring/api"
)

// node is one slot of the cycle. block is the memory charged to the
// allocator for this slot; it goes back exactly once, in freeNode.
type node[T any] struct {
	value T
	next  *node[T]
	block []byte
}

func (r *Ring[T]) newNode() (*node[T], error) {
	block, err := r.alloc.Allocate(r.nodeSize)
	if err != nil {
		return nil, err
	}
	if len(block) < r.nodeSize {
		if block != nil {
			r.alloc.Deallocate(block)
		}
		return nil, errors.Wrapf(api.ErrOutOfMemory, "allocator returned %d bytes, want %d", len(block), r.nodeSize)
	}
	return &node[T]{block: block}, nil
}

func (r *Ring[T]) freeNode(n *node[T]) {
	r.alloc.Deallocate(n.block)
	var zero T
	n.value = zero
	n.next = nil
	n.block = nil
}

// allocChain allocates n linked nodes. On failure every node it allocated is
// freed again, so the caller observes all or nothing.
func (r *Ring[T]) allocChain(n int) (first, last *node[T], err error) {
	for i := 0; i < n; i++ {
		nd, aerr := r.newNode()
		if aerr != nil {
			r.freeChain(first, i)
			return nil, nil, errors.Wrapf(aerr, "allocate node %d of %d", i+1, n)
		}
		if first == nil {
			first = nd
		} else {
			last.next = nd
		}
		last = nd
	}
	return first, last, nil
}

// freeChain frees n nodes following next links from n0.
func (r *Ring[T]) freeChain(n0 *node[T], n int) {
	for i := 0; i < n; i++ {
		next := n0.next
		r.freeNode(n0)
		n0 = next
	}
}

// unlinkAfter frees the n nodes that follow prev and relinks around them.
func (r *Ring[T]) unlinkAfter(prev *node[T], n int) {
	for i := 0; i < n; i++ {
		victim := prev.next
		prev.next = victim.next
		r.freeNode(victim)
	}
}
