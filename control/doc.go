// Package control
// Author: momentics <momentics@gmail.com>
//
// Configuration, metrics and debug introspection layer for hioload-ring.
//
// Provides:
//   - YAML configuration with defaults, validation and reload listeners
//   - Allocator chain assembly from configuration
//   - Prometheus metrics for allocators and rings
//   - Debug probes for ring, allocator and platform state
package control
