// Package pool
// Author: momentics <momentics@gmail.com>
//
// Allocation layer for hioload-ring. Every type here implements api.Allocator
// and api.StatsProvider and is safe for concurrent use, so one allocator can
// back many rings:
//   - HeapAllocator: Go heap blocks with accounting.
//   - PageAllocator: anonymous page mappings (mmap / VirtualAlloc).
//   - SlabAllocator: power-of-two size classes with bounded free lists in
//     front of any upstream allocator.
//   - LimitedAllocator: byte budget in front of any upstream allocator.
//
// Allocators compose: NewLimitedAllocator(NewSlabAllocator(page, 0), 1<<20).
package pool
