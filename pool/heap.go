// File: pool/heap.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import (
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/momentics/hioload-ring/api"
)

// HeapAllocator delegates to the Go runtime. Deallocate only drops the
// accounting; the GC reclaims the block once nothing references it.
type HeapAllocator struct {
	allocs   atomic.Int64
	frees    atomic.Int64
	failures atomic.Int64
	blocks   atomic.Int64
	bytes    atomic.Int64
}

// NewHeapAllocator creates a heap-backed allocator.
func NewHeapAllocator() *HeapAllocator {
	return &HeapAllocator{}
}

func (h *HeapAllocator) Allocate(size int) ([]byte, error) {
	if size <= 0 {
		h.failures.Add(1)
		return nil, errors.Wrapf(api.ErrInvalidArgument, "pool: heap allocate %d bytes", size)
	}
	b := make([]byte, size)
	h.allocs.Add(1)
	h.blocks.Add(1)
	h.bytes.Add(int64(size))
	return b, nil
}

func (h *HeapAllocator) Deallocate(b []byte) {
	h.frees.Add(1)
	h.blocks.Add(-1)
	h.bytes.Add(-int64(len(b)))
}

func (h *HeapAllocator) Stats() api.AllocatorStats {
	return api.AllocatorStats{
		Allocs:      h.allocs.Load(),
		Frees:       h.frees.Load(),
		Failures:    h.failures.Load(),
		BlocksInUse: h.blocks.Load(),
		BytesInUse:  h.bytes.Load(),
	}
}

var (
	_ api.Allocator     = (*HeapAllocator)(nil)
	_ api.StatsProvider = (*HeapAllocator)(nil)
)
