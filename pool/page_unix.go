//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

// File: pool/page_unix.go
// Author: momentics <momentics@gmail.com>
//
// Anonymous private mappings via mmap(2).

package pool

import "golang.org/x/sys/unix"

const pageMappingSupported = true

func mapPages(n int) ([]byte, error) {
	return unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
}

func unmapPages(b []byte) error {
	return unix.Munmap(b)
}
