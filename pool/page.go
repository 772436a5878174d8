// File: pool/page.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral page allocator. Concrete mapping calls live in
// page_unix.go, page_windows.go and page_stub.go.

package pool

import (
	"log"
	"os"
	"sync"

	"github.com/pkg/errors"

	"github.com/momentics/hioload-ring/api"
)

// PageAllocator serves every request from its own anonymous read/write
// mapping, rounded up to whole pages, outside the Go heap. The returned block
// is exactly the requested size; the rest of the last page stays mapped and
// is charged in Stats until the block is deallocated.
//
// Ring nodes are Go values that hold their block as a reservation, so a ring
// built directly on pages pays one page per node on top of the node itself.
// Put a SlabAllocator in front to reuse mappings across rings, or use the
// heap allocator when only accounting is wanted.
type PageAllocator struct {
	pageSize int

	mu       sync.Mutex
	mappings map[*byte][]byte // first byte -> whole mapping
	stats    api.AllocatorStats
}

// NewPageAllocator fails with api.ErrNotSupported where the platform has no
// anonymous mappings.
func NewPageAllocator() (*PageAllocator, error) {
	if !pageMappingSupported {
		return nil, errors.Wrap(api.ErrNotSupported, "pool: page allocator")
	}
	return &PageAllocator{
		pageSize: os.Getpagesize(),
		mappings: make(map[*byte][]byte),
	}, nil
}

// PageSize returns the mapping granularity.
func (p *PageAllocator) PageSize() int {
	return p.pageSize
}

func (p *PageAllocator) roundUp(size int) int {
	return (size + p.pageSize - 1) / p.pageSize * p.pageSize
}

func (p *PageAllocator) Allocate(size int) ([]byte, error) {
	if size <= 0 {
		p.mu.Lock()
		p.stats.Failures++
		p.mu.Unlock()
		return nil, errors.Wrapf(api.ErrInvalidArgument, "pool: page allocate %d bytes", size)
	}
	n := p.roundUp(size)
	m, err := mapPages(n)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.stats.Failures++
		return nil, errors.Wrapf(api.ErrOutOfMemory, "pool: map %d bytes: %v", n, err)
	}
	p.mappings[&m[0]] = m
	p.stats.Allocs++
	p.stats.BlocksInUse++
	p.stats.BytesInUse += int64(n)
	return m[:size:size], nil
}

// Deallocate unmaps the block. Blocks this allocator did not map are ignored.
func (p *PageAllocator) Deallocate(b []byte) {
	if len(b) == 0 {
		log.Printf("pool: deallocate of empty block ignored")
		return
	}
	p.mu.Lock()
	m, ok := p.mappings[&b[0]]
	if !ok {
		p.mu.Unlock()
		log.Printf("pool: deallocate of unknown block %p ignored", &b[0])
		return
	}
	delete(p.mappings, &b[0])
	p.stats.Frees++
	p.stats.BlocksInUse--
	p.stats.BytesInUse -= int64(len(m))
	p.mu.Unlock()

	if err := unmapPages(m); err != nil {
		log.Printf("pool: unmap %d bytes: %v", len(m), err)
	}
}

// Release unmaps every block still outstanding and returns how many there
// were. Blocks handed out earlier must not be used afterwards.
func (p *PageAllocator) Release() int {
	p.mu.Lock()
	live := make([][]byte, 0, len(p.mappings))
	for k, m := range p.mappings {
		live = append(live, m)
		delete(p.mappings, k)
	}
	p.stats.Frees += int64(len(live))
	p.stats.BlocksInUse = 0
	p.stats.BytesInUse = 0
	p.mu.Unlock()

	for _, m := range live {
		if err := unmapPages(m); err != nil {
			log.Printf("pool: unmap %d bytes: %v", len(m), err)
		}
	}
	return len(live)
}

func (p *PageAllocator) Stats() api.AllocatorStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

var (
	_ api.Allocator     = (*PageAllocator)(nil)
	_ api.StatsProvider = (*PageAllocator)(nil)
)
