//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly && !windows

// File: pool/page_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub page mapping for unsupported platforms.

package pool

import "github.com/momentics/hioload-ring/api"

const pageMappingSupported = false

func mapPages(int) ([]byte, error) {
	return nil, api.ErrNotSupported
}

func unmapPages([]byte) error {
	return nil
}
