// control/debug.go
// Author: momentics <momentics@gmail.com>
//
// Runtime debug probes for rings, allocators and the platform.

package control

import (
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/momentics/hioload-ring/api"
)

// DebugProbes is a named set of state readers. Probes are evaluated outside
// the registry lock, so a probe may itself register or remove probes.
type DebugProbes struct {
	mu     sync.RWMutex
	probes map[string]func() any
}

func NewDebugProbes() *DebugProbes {
	return &DebugProbes{probes: make(map[string]func() any)}
}

// RegisterProbe adds or replaces the probe called name.
func (dp *DebugProbes) RegisterProbe(name string, fn func() any) {
	dp.mu.Lock()
	dp.probes[name] = fn
	dp.mu.Unlock()
}

// UnregisterPrefix removes every probe whose name starts with prefix and
// returns how many went.
func (dp *DebugProbes) UnregisterPrefix(prefix string) int {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	n := 0
	for name := range dp.probes {
		if strings.HasPrefix(name, prefix) {
			delete(dp.probes, name)
			n++
		}
	}
	return n
}

// Names returns the registered probe names in sorted order.
func (dp *DebugProbes) Names() []string {
	dp.mu.RLock()
	names := make([]string, 0, len(dp.probes))
	for name := range dp.probes {
		names = append(names, name)
	}
	dp.mu.RUnlock()
	sort.Strings(names)
	return names
}

// DumpState evaluates every probe. A probe that panics reports an error
// value under its name instead of taking the dump down.
func (dp *DebugProbes) DumpState() map[string]any {
	dp.mu.RLock()
	fns := make(map[string]func() any, len(dp.probes))
	for name, fn := range dp.probes {
		fns[name] = fn
	}
	dp.mu.RUnlock()

	out := make(map[string]any, len(fns))
	for name, fn := range fns {
		out[name] = evalProbe(name, fn)
	}
	return out
}

func evalProbe(name string, fn func() any) (v any) {
	defer func() {
		if p := recover(); p != nil {
			v = errors.Errorf("probe %s panicked: %v", name, p)
		}
	}()
	return fn()
}

// RingState is the read-only view of a ring the probes need.
type RingState interface {
	Counter() int
	Cap() int
	IsFull() bool
}

// RegisterRingProbes exposes ring.<name>.{size,capacity,full} and returns a
// func that removes them again. Probes read the ring without locking; dump
// state from the ring's owner goroutine.
func RegisterRingProbes(dp *DebugProbes, name string, r RingState) (unregister func()) {
	prefix := "ring." + name + "."
	dp.RegisterProbe(prefix+"size", func() any { return r.Counter() })
	dp.RegisterProbe(prefix+"capacity", func() any { return r.Cap() })
	dp.RegisterProbe(prefix+"full", func() any { return r.IsFull() })
	return func() { dp.UnregisterPrefix(prefix) }
}

// RegisterAllocatorProbes exposes allocator.<name> as api.AllocatorStats.
func RegisterAllocatorProbes(dp *DebugProbes, name string, sp api.StatsProvider) {
	dp.RegisterProbe("allocator."+name, func() any { return sp.Stats() })
}

// RegisterPlatformProbes sets platform facts relevant to allocation.
func RegisterPlatformProbes(dp *DebugProbes) {
	dp.RegisterProbe("platform.cpus", func() any { return runtime.NumCPU() })
	dp.RegisterProbe("platform.pagesize", func() any { return os.Getpagesize() })
	dp.RegisterProbe("platform.os", func() any { return runtime.GOOS + "/" + runtime.GOARCH })
}

var _ api.Debug = (*DebugProbes)(nil)
