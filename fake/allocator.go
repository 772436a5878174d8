// Package fake
// Author: momentics <momentics@gmail.com>
//
// Tracking, failure-injecting allocator for tests.

package fake

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/momentics/hioload-ring/api"
)

// Allocator is a fake implementation of api.Allocator. It serves blocks from
// the Go heap, remembers every live block and records misuse: double frees,
// foreign blocks and leaks show up in Verify.
type Allocator struct {
	mu       sync.Mutex
	live     map[*byte]int
	dead     map[*byte]struct{}
	allocs   int64
	frees    int64
	failures int64
	bytes    int64
	budget   int // successful allocations left, -1 for unlimited
	problems []error
}

// NewAllocator creates an allocator that never fails.
func NewAllocator() *Allocator {
	return &Allocator{
		live:   make(map[*byte]int),
		dead:   make(map[*byte]struct{}),
		budget: -1,
	}
}

// FailAfter lets the next n allocations succeed and fails every one after.
func (a *Allocator) FailAfter(n int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.budget = n
}

// FailNever lifts a previous FailAfter.
func (a *Allocator) FailNever() {
	a.FailAfter(-1)
}

// Allocate returns a fresh zeroed block of exactly size bytes.
func (a *Allocator) Allocate(size int) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if size <= 0 {
		a.failures++
		return nil, errors.Wrapf(api.ErrInvalidArgument, "fake: allocate %d bytes", size)
	}
	if a.budget == 0 {
		a.failures++
		return nil, errors.Wrapf(api.ErrOutOfMemory, "fake: allocation #%d refused", a.allocs+a.failures)
	}
	if a.budget > 0 {
		a.budget--
	}
	b := make([]byte, size)
	a.live[&b[0]] = size
	a.allocs++
	a.bytes += int64(size)
	return b, nil
}

// Deallocate forgets a live block.
func (a *Allocator) Deallocate(b []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.frees++
	if len(b) == 0 {
		a.problems = append(a.problems, errors.Wrap(api.ErrUnknownBlock, "fake: deallocate empty block"))
		return
	}
	key := &b[0]
	size, ok := a.live[key]
	if !ok {
		if _, freed := a.dead[key]; freed {
			a.problems = append(a.problems, errors.Wrap(api.ErrUnknownBlock, "fake: double free"))
		} else {
			a.problems = append(a.problems, errors.Wrap(api.ErrUnknownBlock, "fake: foreign block"))
		}
		return
	}
	delete(a.live, key)
	a.dead[key] = struct{}{}
	a.bytes -= int64(size)
}

// Allocs returns the number of successful Allocate calls.
func (a *Allocator) Allocs() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return int(a.allocs)
}

// Frees returns the number of Deallocate calls, valid or not.
func (a *Allocator) Frees() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return int(a.frees)
}

// Failures returns the number of refused allocations.
func (a *Allocator) Failures() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return int(a.failures)
}

// Outstanding returns the number of blocks allocated and not yet freed.
func (a *Allocator) Outstanding() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.live)
}

// Stats exposes accounting in the common allocator layout.
func (a *Allocator) Stats() api.AllocatorStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return api.AllocatorStats{
		Allocs:      a.allocs,
		Frees:       a.frees,
		Failures:    a.failures,
		BlocksInUse: int64(len(a.live)),
		BytesInUse:  a.bytes,
	}
}

// Verify returns the first recorded misuse, or a leak error if blocks are
// still live. nil means every block came back exactly once.
func (a *Allocator) Verify() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.problems) > 0 {
		return errors.Wrapf(a.problems[0], "fake: %d allocator misuse(s)", len(a.problems))
	}
	if len(a.live) > 0 {
		return errors.Errorf("fake: %d blocks (%d bytes) leaked", len(a.live), a.bytes)
	}
	return nil
}

var (
	_ api.Allocator     = (*Allocator)(nil)
	_ api.StatsProvider = (*Allocator)(nil)
)
