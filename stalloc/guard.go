package stalloc

// Guard-word block format, adapted from the C original's stalloc.c layout
// comment:
//
//	Header                 31............4 3 2 1 0
//	+----------------+-+-+-+-+  a=0 : Allocated
//	|Block Size      |0|0|0|a|  a=1 : Free
//	+----------------+-+-+-+-+
//
// A guard is a little-endian uint32 of (totalSize << 4) | state, where
// totalSize counts the header, any alignment padding, the payload, and the
// footer. The footer duplicates the header so pop can read the size of the
// topmost block by looking four bytes behind the stack cursor.
const (
	guardSize      = 4 // bytes per guard word
	headerSize     = guardSize
	footerSize     = guardSize
	blockAlignment = 8 // payload addresses are 8-byte aligned

	guardStateAllocated = 0
	guardStateFree      = 1
)

// makeGuard encodes a guard word. totalSize is the full block size
// (padding + header + payload + footer).
func makeGuard(totalSize uint32, free bool) uint32 {
	state := uint32(guardStateAllocated)
	if free {
		state = guardStateFree
	}

	return (totalSize << 4) | state
}

// blockSizeOf extracts the total block size from a guard word.
func blockSizeOf(guard uint32) uint32 {
	return guard >> 4
}

// isFreeGuard reports whether a guard word marks its block as free.
func isFreeGuard(guard uint32) bool {
	return guard&1 == 1
}

// alignUp rounds x up to the next multiple of align, which must be a power
// of two.
func alignUp(x, align uintptr) uintptr {
	return (x + align - 1) &^ (align - 1)
}
