// File: pool/limit.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/momentics/hioload-ring/api"
)

// LimitedAllocator enforces a byte budget on an upstream allocator. A request
// that would push usage past the budget fails with api.ErrOutOfMemory without
// reaching upstream.
type LimitedAllocator struct {
	upstream api.Allocator
	limit    int64

	mu    sync.Mutex
	stats api.AllocatorStats
}

// NewLimitedAllocator caps outstanding bytes at limit.
func NewLimitedAllocator(upstream api.Allocator, limit int64) *LimitedAllocator {
	return &LimitedAllocator{upstream: upstream, limit: limit}
}

func (l *LimitedAllocator) Allocate(size int) ([]byte, error) {
	l.mu.Lock()
	if size <= 0 {
		l.stats.Failures++
		l.mu.Unlock()
		return nil, errors.Wrapf(api.ErrInvalidArgument, "pool: limited allocate %d bytes", size)
	}
	if l.stats.BytesInUse+int64(size) > l.limit {
		l.stats.Failures++
		inUse := l.stats.BytesInUse
		l.mu.Unlock()
		return nil, errors.Wrapf(api.ErrOutOfMemory, "pool: %d bytes in use, %d more exceeds budget %d", inUse, size, l.limit)
	}
	// reserve before calling upstream so concurrent callers see the charge
	l.stats.BytesInUse += int64(size)
	l.mu.Unlock()

	b, err := l.upstream.Allocate(size)

	l.mu.Lock()
	l.stats.BytesInUse -= int64(size)
	if err != nil {
		l.stats.Failures++
		l.mu.Unlock()
		return nil, err
	}
	// upstream may round up; admit only what was actually handed out
	if l.stats.BytesInUse+int64(len(b)) > l.limit {
		l.stats.Failures++
		inUse := l.stats.BytesInUse
		l.mu.Unlock()
		l.upstream.Deallocate(b)
		return nil, errors.Wrapf(api.ErrOutOfMemory, "pool: %d bytes in use, %d-byte block exceeds budget %d", inUse, len(b), l.limit)
	}
	l.stats.BytesInUse += int64(len(b))
	l.stats.Allocs++
	l.stats.BlocksInUse++
	l.mu.Unlock()
	return b, nil
}

func (l *LimitedAllocator) Deallocate(b []byte) {
	l.upstream.Deallocate(b)
	l.mu.Lock()
	l.stats.Frees++
	l.stats.BlocksInUse--
	l.stats.BytesInUse -= int64(len(b))
	l.mu.Unlock()
}

// Limit returns the byte budget.
func (l *LimitedAllocator) Limit() int64 {
	return l.limit
}

func (l *LimitedAllocator) Stats() api.AllocatorStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}

var (
	_ api.Allocator     = (*LimitedAllocator)(nil)
	_ api.StatsProvider = (*LimitedAllocator)(nil)
)
