// Package stalloc implements a dual-mode region allocator: a scoped-frame
// stack discipline for short-lived, batch-freed allocations, and a
// random-lifetime heap discipline for long-lived, individually-freed
// allocations, both carved from the same chain of contiguous byte regions.
//
// It is a Go port of the C stalloc found in original_source/src/stalloc.c,
// restructured in the idiom of this module's teacher
// (github.com/orizon-lang/orizon's internal/allocator and internal/runtime
// packages): explicit Allocator type instead of process-global state by
// default, a tracked heap-discipline delegate modeled on
// internal/allocator/allocator.go's SystemAllocatorImpl, and panics
// (via csdsaerr) in place of the original's assert().
package stalloc

import (
	"unsafe"

	"github.com/EmilChoparinov/csdsa/csdsaerr"
)

const defaultPageSize = 4096

// Placement selects which discipline backs a container's storage.
type Placement int

const (
	// StackPlacement ties storage to the innermost open frame; it is
	// reclaimed in bulk when that frame closes and must not be freed
	// individually.
	StackPlacement Placement = iota
	// HeapPlacement gives storage an independent, individually-freed
	// lifetime.
	HeapPlacement
)

func (p Placement) String() string {
	if p == HeapPlacement {
		return "heap"
	}

	return "stack"
}

// Allocator is an ordered chain of regions with a designated top, plus the
// frame stack and heap-discipline delegate layered over it.
type Allocator struct {
	top    *region
	frames []stackFrame
	heap   *heapArena
	tuning AllocatorTuning
}

// New creates an allocator whose first region holds at least initialBytes
// of payload, rounded up to a whole number of host pages.
func New(initialBytes int, opts ...Option) *Allocator {
	return NewWithTuning(AllocatorTuning{InitialRegionBytes: initialBytes}, opts...)
}

// NewWithTuning creates an allocator from an explicit tuning configuration.
func NewWithTuning(tuning AllocatorTuning, opts ...Option) *Allocator {
	// A negative size is always a caller mistake. Zero is left to
	// withDefaults below, which treats it as "unset" and substitutes the
	// library default.
	if tuning.InitialRegionBytes < 0 {
		csdsaerr.InvalidArgument("initial region size must not be negative")
	}

	tuning = tuning.withDefaults()
	for _, opt := range opts {
		opt(&tuning)
	}

	CheckFormatCompatibility(tuning.MinFormatVersion)

	a := &Allocator{
		heap:   newHeapArena(),
		tuning: tuning,
	}
	a.top = newRegion(roundUpToPage(uintptr(tuning.InitialRegionBytes) + headerSize + footerSize))

	return a
}

// Option configures an Allocator at construction time.
type Option func(*AllocatorTuning)

// WithStackFrameGuess overrides the initial frame-array capacity guess.
func WithStackFrameGuess(n int) Option {
	return func(t *AllocatorTuning) { t.StackFrameGuess = n }
}

// WithHashLoadFactor overrides the default load-factor trigger consulted
// by HashMap containers built against this allocator.
func WithHashLoadFactor(lf float64) Option {
	return func(t *AllocatorTuning) { t.HashLoadFactor = lf }
}

// WithMinFormatVersion sets a semver constraint the block format must
// satisfy, checked immediately at construction time.
func WithMinFormatVersion(constraint string) Option {
	return func(t *AllocatorTuning) { t.MinFormatVersion = constraint }
}

// Destroy releases the allocator's chain. Go's garbage collector reclaims
// the backing buffers once nothing references them; Destroy's job is to
// drop every reference the Allocator itself holds so that happens promptly,
// matching the original's explicit per-region free walk.
func (a *Allocator) Destroy() {
	a.top = nil
	a.frames = nil
	a.heap.reset()
}

// roundUpToPage rounds n up to a whole number of host pages.
func roundUpToPage(n uintptr) uintptr {
	page := hostPageSize()
	return alignUp(n, page)
}

// Push returns an aligned, zero-filled address of a payload region of n
// bytes, stable for the lifetime of the block. It charges the allocation
// to the innermost open frame, if any.
func (a *Allocator) Push(n int) unsafe.Pointer {
	if n < 0 {
		csdsaerr.InvalidArgument("push size must not be negative")
	}

	for {
		r := a.top
		base := r.baseAddr()
		rawHeaderAddr := base + r.cursor
		rawPayloadAddr := alignUp(rawHeaderAddr+headerSize, blockAlignment)
		padding := rawPayloadAddr - (rawHeaderAddr + headerSize)
		total := padding + headerSize + uintptr(n) + footerSize

		if r.cursor+total <= r.regionSize {
			headerOffset := r.cursor + padding
			payloadOffset := headerOffset + headerSize
			footerOffset := payloadOffset + uintptr(n)

			guard := makeGuard(uint32(total), false)
			r.putGuardAt(headerOffset, guard)
			clear(r.buf[payloadOffset:footerOffset])
			r.putGuardAt(footerOffset, guard)

			r.cursor += total
			a.chargeFrame(1)

			return r.at(payloadOffset)
		}

		a.grow(n)
	}
}

// PushN reserves count*elemBytes as a single block, the bulk-reservation
// convenience the C original exposes as stcalloc(times, bytes). It is used
// internally by vector.Vector.Resize and hashmap.HashMap's rehash to avoid
// one push call per element.
func (a *Allocator) PushN(elemBytes, count int) unsafe.Pointer {
	if elemBytes < 0 || count < 0 {
		csdsaerr.InvalidArgument("PushN size and count must not be negative")
	}

	return a.Push(elemBytes * count)
}

// Pop reclaims the topmost stack-discipline block across the whole chain:
// it skips regions that are already empty and pops from the first
// non-empty one found walking down from the top.
func (a *Allocator) Pop() {
	r := a.top
	for r != nil && r.empty() {
		r = r.next
	}

	if r == nil {
		csdsaerr.PopEmpty("allocator")
	}

	footerOffset := r.cursor - footerSize
	guard := r.guardAt(footerOffset)

	if isFreeGuard(guard) {
		csdsaerr.GuardCorruption("pop encountered a block marked free")
	}

	total := uintptr(blockSizeOf(guard))
	if total > r.cursor {
		csdsaerr.GuardCorruption("block size exceeds region")
	}

	r.cursor -= total
	a.attemptMerge()
	a.chargeFrame(-1)
}

// grow prepends a fresh region sized to fit at least `requested` bytes,
// guaranteeing amortised O(1) push.
func (a *Allocator) grow(requested int) {
	top := a.top
	size := top.regionSize * 2

	for size < uintptr(requested)*2 {
		size *= 2
	}

	size = roundUpToPage(size)

	nr := newRegion(size)
	nr.next = top
	a.top = nr
}

// attemptMerge replaces the top pair of regions with a single region of
// their combined size if both are empty. It is opportunistic and only
// examines the top pair per call; deeper cascades happen across
// subsequent pops.
func (a *Allocator) attemptMerge() {
	top := a.top
	if top == nil {
		return
	}

	next := top.next
	if next == nil {
		return
	}

	if !top.empty() || !next.empty() {
		return
	}

	merged := newRegion(top.regionSize + next.regionSize)
	merged.next = next.next
	a.top = merged
}

// Tuning reports the allocator's effective configuration.
func (a *Allocator) Tuning() AllocatorTuning { return a.tuning }

// RegionCount reports how many regions are currently chained.
func (a *Allocator) RegionCount() int {
	n := 0
	for r := a.top; r != nil; r = r.next {
		n++
	}

	return n
}

// TopRegionSize reports the nominal capacity of the top region.
func (a *Allocator) TopRegionSize() uintptr {
	return a.top.regionSize
}

// RegionCursors reports each region's current stack cursor, from top to
// bottom. It exists for tests and diagnostics that need to observe the
// "every region back at base" invariant directly.
func (a *Allocator) RegionCursors() []uintptr {
	cursors := make([]uintptr, 0, a.RegionCount())
	for r := a.top; r != nil; r = r.next {
		cursors = append(cursors, r.cursor)
	}

	return cursors
}
