// File: pool/default.go
// Author: momentics <momentics@gmail.com>
//
// Process-wide default allocator.

package pool

import "sync"

var (
	defaultOnce  sync.Once
	defaultAlloc *SlabAllocator
)

// Default returns a process-wide slab allocator over the Go heap so rings
// created without an explicit allocator share one set of free lists.
func Default() *SlabAllocator {
	defaultOnce.Do(func() {
		defaultAlloc = NewSlabAllocator(NewHeapAllocator(), defaultSlabDepth)
	})
	return defaultAlloc
}
