package stalloc

import (
	"sync"
	"unsafe"
)

// heapArena implements the heap-discipline sub-interface. The minimum
// viable design the spec allows delegates to the process-global allocator;
// this follows that choice but tracks issued slices the way the teacher's
// internal/allocator/allocator.go SystemAllocatorImpl does, so HeapStats
// gives a caller real cumulative byte counts instead of estimates. It never
// carves memory from a Region: regions carry no separate heap-divider field,
// their fixed regionSize bound stands in for it (see spec.md's Open
// Questions), and nothing here moves it.
type heapArena struct {
	mu             sync.Mutex
	slices         map[unsafe.Pointer][]byte
	totalAllocated uint64
	totalFreed     uint64
}

func newHeapArena() *heapArena {
	return &heapArena{slices: make(map[unsafe.Pointer][]byte)}
}

func (h *heapArena) reset() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.slices = make(map[unsafe.Pointer][]byte)
	h.totalAllocated = 0
	h.totalFreed = 0
}

func (h *heapArena) alloc(n int) unsafe.Pointer {
	if n <= 0 {
		return nil
	}

	buf := make([]byte, n) // already zero-filled
	ptr := unsafe.Pointer(&buf[0])

	h.mu.Lock()
	h.slices[ptr] = buf
	h.totalAllocated += uint64(n)
	h.mu.Unlock()

	return ptr
}

func (h *heapArena) free(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if buf, ok := h.slices[ptr]; ok {
		h.totalFreed += uint64(len(buf))
		delete(h.slices, ptr)
	}
}

func (h *heapArena) realloc(ptr unsafe.Pointer, n int) unsafe.Pointer {
	if ptr == nil {
		return h.alloc(n)
	}

	h.mu.Lock()
	old, ok := h.slices[ptr]
	h.mu.Unlock()

	newPtr := h.alloc(n)
	if ok && newPtr != nil {
		newBuf := unsafe.Slice((*byte)(newPtr), n)
		copy(newBuf, old)
	}

	h.free(ptr)

	return newPtr
}

func (h *heapArena) stats() (allocated, freed uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.totalAllocated, h.totalFreed
}

// HeapAlloc returns zero-initialised, individually-freeable storage of n
// bytes with random-lifetime semantics. Callers must not mix this
// discipline with Push/Pop on the same pointer.
func (a *Allocator) HeapAlloc(n int) unsafe.Pointer { return a.heap.alloc(n) }

// HeapRealloc resizes a heap-discipline allocation, preserving its
// contents up to the smaller of the old and new sizes.
func (a *Allocator) HeapRealloc(ptr unsafe.Pointer, n int) unsafe.Pointer {
	return a.heap.realloc(ptr, n)
}

// HeapFree releases a heap-discipline allocation.
func (a *Allocator) HeapFree(ptr unsafe.Pointer) { a.heap.free(ptr) }

// HeapStats reports cumulative bytes allocated and freed through the
// heap-discipline sub-interface.
func (a *Allocator) HeapStats() (allocated, freed uint64) { return a.heap.stats() }
