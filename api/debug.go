// Package api
// Author: momentics
//
// Live debug support: probes that expose ring and allocator state.

package api

// Debug exposes runtime introspection.
type Debug interface {
	// DumpState evaluates every probe and returns name -> value.
	DumpState() map[string]any

	// RegisterProbe registers or replaces a named probe.
	RegisterProbe(name string, fn func() any)
}
