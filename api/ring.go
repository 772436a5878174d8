// Package api
// Author: momentics@gmail.com
//
// Single-owner overwrite-on-full ring queue contract.

package api

// Ring is a fixed-capacity FIFO that overwrites its oldest element when full.
// Implementations are not safe for concurrent use.
type Ring[T any] interface {
	// Write stores item, discarding the oldest element if full.
	Write(item T)
	// Read removes and returns the oldest item. On an empty ring it returns
	// stale slot data and leaves the ring unchanged.
	Read() T
	// TryRead removes the oldest item, returns false if empty.
	TryRead() (T, bool)
	// IsFull reports whether Counter() == Cap().
	IsFull() bool
	// Counter returns current number of items.
	Counter() int
	// Cap returns the number of slots.
	Cap() int
	// Empty discards all items without touching slot memory.
	Empty()
	// Resize changes the number of slots.
	Resize(capacity int) error
	// Close returns every slot to the allocator.
	Close()
}
