// File: api/pool.go
// Author: momentics <momentics@gmail.com>
//
// Defines abstract allocation APIs: the raw-memory capability borrowed by
// rings and the accounting contract shared by every allocator.

package api

// Allocator hands out raw memory blocks.
//
// Allocate returns a block of at least size bytes or an error wrapping
// ErrOutOfMemory. Deallocate accepts only blocks previously returned by the
// same Allocator and not yet deallocated; it cannot fail.
type Allocator interface {
	// Allocate returns a block of at least size bytes.
	Allocate(size int) ([]byte, error)

	// Deallocate returns a block to the allocator; block must not be used afterwards.
	Deallocate(block []byte)
}

// StatsProvider is implemented by allocators that keep accounting.
type StatsProvider interface {
	Stats() AllocatorStats
}

// AllocatorStats aggregates allocation/reuse stats.
type AllocatorStats struct {
	Allocs      int64 // successful Allocate calls
	Frees       int64 // Deallocate calls
	Failures    int64 // Allocate calls that returned an error
	BlocksInUse int64
	BytesInUse  int64
	Hits        int64 // served from a free list (slab only)
	Misses      int64 // forwarded upstream (slab only)
	Cached      int64 // blocks parked in free lists (slab only)
}
