// control/allocator.go
// Author: momentics <momentics@gmail.com>
//
// Allocator chain assembly from configuration.

package control

import (
	"log"

	"github.com/pkg/errors"

	"github.com/momentics/hioload-ring/api"
	"github.com/momentics/hioload-ring/pool"
)

// AllocatorChain is the allocator described by an AllocatorConfig:
// base (heap or page) -> optional slab -> optional budget -> optional metrics.
type AllocatorChain struct {
	api.Allocator
	slab  *pool.SlabAllocator
	pages *pool.PageAllocator
}

// BuildAllocator assembles the chain. m may be nil to skip instrumentation.
func BuildAllocator(cfg AllocatorConfig, m *Metrics) (*AllocatorChain, error) {
	chain := &AllocatorChain{}
	var a api.Allocator
	switch cfg.Kind {
	case AllocatorHeap, "":
		a = pool.NewHeapAllocator()
	case AllocatorPage:
		p, err := pool.NewPageAllocator()
		if err != nil {
			return nil, errors.Wrap(err, "control: build allocator")
		}
		chain.pages = p
		a = p
	default:
		return nil, errors.Wrapf(api.ErrInvalidArgument, "control: unknown allocator kind %q", cfg.Kind)
	}
	if cfg.Slab {
		chain.slab = pool.NewSlabAllocator(a, cfg.SlabDepth)
		a = chain.slab
	}
	if cfg.LimitBytes > 0 {
		a = pool.NewLimitedAllocator(a, cfg.LimitBytes)
	}
	if m != nil {
		a = m.Instrument(a)
	}
	chain.Allocator = a
	return chain, nil
}

// Stats reports the outermost allocator's accounting.
func (c *AllocatorChain) Stats() api.AllocatorStats {
	if sp, ok := c.Allocator.(api.StatsProvider); ok {
		return sp.Stats()
	}
	return api.AllocatorStats{}
}

// Close returns cached slab blocks upstream and unmaps pages that were never
// deallocated. Rings built on the chain must be closed first.
func (c *AllocatorChain) Close() {
	if c.slab != nil {
		c.slab.Drain()
	}
	if c.pages != nil {
		if n := c.pages.Release(); n > 0 {
			log.Printf("control: released %d page blocks still outstanding", n)
		}
	}
}
