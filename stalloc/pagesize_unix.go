//go:build unix
// +build unix

package stalloc

import "golang.org/x/sys/unix"

// hostPageSize returns the OS page size so region growth can round to it,
// mirroring the teacher's per-platform file convention under
// internal/runtime/vfs/vfs.go and internal/runtime/asyncio.
func hostPageSize() uintptr {
	size := unix.Getpagesize()
	if size <= 0 {
		return defaultPageSize
	}

	return uintptr(size)
}
