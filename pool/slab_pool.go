// File: pool/slab_pool.go
// Package pool implements slab allocation with size class support.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import (
	"sync"

	"github.com/eapache/queue"
	"github.com/pkg/errors"

	"github.com/momentics/hioload-ring/api"
)

const (
	minSlabClass     = 16
	defaultSlabDepth = 1024
)

// SlabAllocator rounds requests up to a power-of-two class and keeps freed
// blocks of each class in a FIFO for reuse. Misses and overflow go to the
// upstream allocator.
type SlabAllocator struct {
	upstream api.Allocator
	depth    int

	mu      sync.Mutex
	classes map[int]*queue.Queue // class size -> free []byte blocks
	stats   api.AllocatorStats
}

// NewSlabAllocator caches up to depth free blocks per class; depth <= 0
// selects the default.
func NewSlabAllocator(upstream api.Allocator, depth int) *SlabAllocator {
	if depth <= 0 {
		depth = defaultSlabDepth
	}
	return &SlabAllocator{
		upstream: upstream,
		depth:    depth,
		classes:  make(map[int]*queue.Queue),
	}
}

// classOf returns the smallest class holding size bytes.
func classOf(size int) int {
	c := minSlabClass
	for c < size {
		c <<= 1
	}
	return c
}

// Allocate returns a whole class block, so len(block) may exceed size.
func (s *SlabAllocator) Allocate(size int) ([]byte, error) {
	if size <= 0 {
		s.mu.Lock()
		s.stats.Failures++
		s.mu.Unlock()
		return nil, errors.Wrapf(api.ErrInvalidArgument, "pool: slab allocate %d bytes", size)
	}
	class := classOf(size)

	s.mu.Lock()
	if q := s.classes[class]; q != nil && q.Length() > 0 {
		b := q.Remove().([]byte)
		s.stats.Hits++
		s.stats.Cached--
		s.account(len(b))
		s.mu.Unlock()
		return b, nil
	}
	s.stats.Misses++
	s.mu.Unlock()

	b, err := s.upstream.Allocate(class)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.stats.Failures++
		return nil, errors.Wrapf(err, "pool: slab class %d", class)
	}
	s.account(len(b))
	return b, nil
}

func (s *SlabAllocator) account(n int) {
	s.stats.Allocs++
	s.stats.BlocksInUse++
	s.stats.BytesInUse += int64(n)
}

// Deallocate parks the block in its class list, or hands it upstream when
// the list already holds depth blocks.
func (s *SlabAllocator) Deallocate(b []byte) {
	class := classOf(len(b))

	s.mu.Lock()
	s.stats.Frees++
	s.stats.BlocksInUse--
	s.stats.BytesInUse -= int64(len(b))
	q := s.classes[class]
	if q == nil {
		q = queue.New()
		s.classes[class] = q
	}
	if len(b) == class && q.Length() < s.depth {
		q.Add(b)
		s.stats.Cached++
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.upstream.Deallocate(b)
}

// Drain returns every cached block upstream and reports how many there were.
func (s *SlabAllocator) Drain() int {
	s.mu.Lock()
	var blocks [][]byte
	for _, q := range s.classes {
		for q.Length() > 0 {
			blocks = append(blocks, q.Remove().([]byte))
		}
	}
	s.stats.Cached = 0
	s.mu.Unlock()

	for _, b := range blocks {
		s.upstream.Deallocate(b)
	}
	return len(blocks)
}

func (s *SlabAllocator) Stats() api.AllocatorStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

var (
	_ api.Allocator     = (*SlabAllocator)(nil)
	_ api.StatsProvider = (*SlabAllocator)(nil)
)
