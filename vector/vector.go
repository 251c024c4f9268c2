// Package vector implements the growable contiguous sequence container: a
// typed view over a byte region supplied by a stalloc.Allocator, with
// positional access, stack-like push/pop, and higher-order transforms.
//
// It is a Go port of the C vector found in original_source/src/vector.c,
// generalised the way this module's teacher generalises its generic
// containers: element size becomes a compile-time property of Vector[T]
// via unsafe.Sizeof rather than a runtime field, but the byte-level layout
// underneath is unchanged so it still interops with stalloc's guard-word
// blocks.
package vector

import (
	"unsafe"

	"github.com/EmilChoparinov/csdsa/csdsaerr"
	"github.com/EmilChoparinov/csdsa/csdsautil"
	"github.com/EmilChoparinov/csdsa/stalloc"
)

// Predicate reports whether an element satisfies some condition.
type Predicate[T any] func(T) bool

// Unary transforms one element into another.
type Unary[T any] func(T) T

// Reducer folds an accumulator and an element into a new accumulator.
type Reducer[T any] func(acc, x T) T

// Less reports whether a should precede b in sorted order.
type Less[T any] func(a, b T) bool

// Vector is a growable contiguous sequence of T, backed by a region of
// stack- or heap-discipline bytes. It tracks two positions over the same
// storage: a logical length L exposed by At/Put/DeleteAt, and a cursor used
// by Push/Pop/Top that can run ahead of or behind L when callers mix
// positional and stack-like operations on the same vector.
type Vector[T any] struct {
	alloc     *stalloc.Allocator
	placement stalloc.Placement
	elemSize  uintptr

	data     unsafe.Pointer
	length   int
	capacity int
	cursor   int
}

// New allocates a vector of initialCap elements of T against alloc under
// the given placement.
func New[T any](alloc *stalloc.Allocator, placement stalloc.Placement, initialCap int) *Vector[T] {
	var zero T
	elemSize := unsafe.Sizeof(zero)

	if elemSize == 0 {
		csdsaerr.InvalidArgument("vector element type must have nonzero size")
	}

	if initialCap < 1 {
		csdsaerr.InvalidArgument("initial capacity must be at least 1")
	}

	v := &Vector[T]{alloc: alloc, placement: placement, elemSize: elemSize, capacity: initialCap}
	v.data = v.allocBuf(initialCap)

	return v
}

func (v *Vector[T]) allocBuf(n int) unsafe.Pointer {
	if v.placement == stalloc.HeapPlacement {
		return v.alloc.HeapAlloc(int(v.elemSize) * n)
	}

	return v.alloc.PushN(int(v.elemSize), n)
}

func (v *Vector[T]) freeBuf(ptr unsafe.Pointer) {
	if v.placement == stalloc.HeapPlacement {
		v.alloc.HeapFree(ptr)
	}
}

// Free releases the vector's storage under heap placement. A stack-placed
// vector is a no-op here: its storage is reclaimed when the enclosing frame
// closes.
func (v *Vector[T]) Free() {
	v.freeBuf(v.data)
	v.data = nil
	v.length = 0
	v.capacity = 0
	v.cursor = 0
}

// Len reports the current logical length.
func (v *Vector[T]) Len() int { return v.length }

// Cap reports the current capacity in elements.
func (v *Vector[T]) Cap() int { return v.capacity }

func (v *Vector[T]) elemPtr(i int) *T {
	return (*T)(unsafe.Add(v.data, i*int(v.elemSize)))
}

func (v *Vector[T]) growTo(minCap int) {
	if minCap < v.capacity {
		return
	}

	newCap := v.capacity
	for newCap <= minCap {
		newCap *= 2
	}

	oldData, oldCap := v.data, v.capacity
	v.data = v.allocBuf(newCap)
	copy(unsafe.Slice((*T)(v.data), oldCap), unsafe.Slice((*T)(oldData), oldCap))
	v.freeBuf(oldData)
	v.capacity = newCap
}

// Resize extends the logical length to newLen. When newLen is at or past
// the current capacity, capacity doubles until it exceeds newLen, so a
// newLen equal to the capacity still grows the buffer.
func (v *Vector[T]) Resize(newLen int) {
	if newLen >= v.capacity {
		v.growTo(newLen)
	}

	v.length = newLen
}

// Clear resets the vector to empty and zero-fills its backing storage.
func (v *Vector[T]) Clear() {
	var zero T

	s := unsafe.Slice(v.elemPtr(0), v.capacity)
	for i := range s {
		s[i] = zero
	}

	v.length = 0
	v.cursor = 0
}

func (v *Vector[T]) checkIndex(i int) {
	if i < 0 || i >= v.length {
		csdsaerr.OutOfBounds(i, v.length)
	}
}

// At returns a pointer to element i. Mutating through it mutates the
// vector's backing storage directly.
func (v *Vector[T]) At(i int) *T {
	v.checkIndex(i)
	return v.elemPtr(i)
}

// Put copies src into slot i.
func (v *Vector[T]) Put(i int, src T) {
	v.checkIndex(i)
	*v.elemPtr(i) = src
}

// DeleteAt removes element i, left-shifting the tail. Order-preserving.
func (v *Vector[T]) DeleteAt(i int) {
	v.checkIndex(i)

	for j := i; j < v.length-1; j++ {
		*v.elemPtr(j) = *v.elemPtr(j + 1)
	}

	v.length--
	if v.cursor > v.length {
		v.cursor = v.length
	}
}

// Push writes src at the logical cursor, advances the cursor, and extends
// Len if the cursor overtakes it. Growth is triggered when the cursor
// reaches capacity.
func (v *Vector[T]) Push(src T) {
	if v.cursor >= v.capacity {
		v.growTo(v.cursor)
	}

	*v.elemPtr(v.cursor) = src
	v.cursor++

	if v.cursor > v.length {
		v.length = v.cursor
	}
}

// Pop decrements the cursor, and decrements Len along with it if the cursor
// was at the length frontier.
func (v *Vector[T]) Pop() {
	if v.cursor <= 0 {
		csdsaerr.PopEmpty("vector")
	}

	if v.cursor == v.length {
		v.length--
	}

	v.cursor--
}

// Top returns a pointer to the element at cursor-1.
func (v *Vector[T]) Top() *T {
	if v.cursor <= 0 {
		csdsaerr.PopEmpty("vector")
	}

	return v.elemPtr(v.cursor - 1)
}

// Find returns the index of the first element byte-equal to target, or -1.
func (v *Vector[T]) Find(target T) int {
	for i := 0; i < v.length; i++ {
		if csdsautil.BytesEqual(unsafe.Pointer(&target), unsafe.Pointer(v.elemPtr(i)), v.elemSize) {
			return i
		}
	}

	return -1
}

// Has reports whether target is present.
func (v *Vector[T]) Has(target T) bool { return v.Find(target) >= 0 }

// Swap exchanges the element slots at i and j.
func (v *Vector[T]) Swap(i, j int) {
	v.checkIndex(i)
	v.checkIndex(j)
	csdsautil.MemSwap(unsafe.Pointer(v.elemPtr(i)), unsafe.Pointer(v.elemPtr(j)), v.elemSize)
}

// Copy frees dst's storage, clones src's metadata, and allocates a fresh
// buffer of src's full capacity for dst, copying it over. dst and src
// thereafter own disjoint storage.
func Copy[T any](dst, src *Vector[T]) {
	dst.freeBuf(dst.data)

	dst.alloc = src.alloc
	dst.placement = src.placement
	dst.elemSize = src.elemSize
	dst.length = src.length
	dst.capacity = src.capacity
	dst.cursor = src.cursor

	dst.data = dst.allocBuf(src.capacity)
	copy(unsafe.Slice((*T)(dst.data), src.capacity), unsafe.Slice((*T)(src.data), src.capacity))
}

// Foreach applies fn to every live element.
func (v *Vector[T]) Foreach(fn func(T)) {
	for i := 0; i < v.length; i++ {
		fn(*v.elemPtr(i))
	}
}

// CountIf returns the number of live elements satisfying p.
func (v *Vector[T]) CountIf(p Predicate[T]) int {
	n := 0

	for i := 0; i < v.length; i++ {
		if p(*v.elemPtr(i)) {
			n++
		}
	}

	return n
}

// Map rewrites each element in place by applying u. It stages each result
// in a single scratch slot pushed on the owning allocator and popped before
// return, matching the original's allocation discipline for the transform.
func (v *Vector[T]) Map(u Unary[T]) {
	scratch := (*T)(v.alloc.Push(int(v.elemSize)))
	defer v.alloc.Pop()

	for i := 0; i < v.length; i++ {
		*scratch = u(*v.elemPtr(i))
		*v.elemPtr(i) = *scratch
	}
}

// Foldl reduces the live elements left-to-right starting from acc.
func (v *Vector[T]) Foldl(acc T, r Reducer[T]) T {
	for i := 0; i < v.length; i++ {
		acc = r(acc, *v.elemPtr(i))
	}

	return acc
}

// Filter replaces the vector's contents with the subsequence satisfying p,
// preserving order, and releases the previous backing buffer.
func (v *Vector[T]) Filter(p Predicate[T]) {
	newLen := v.CountIf(p)

	newCap := newLen
	if newCap < 1 {
		newCap = 1
	}

	oldData := v.data
	newData := v.allocBuf(newCap)

	j := 0
	for i := 0; i < v.length; i++ {
		e := *v.elemPtr(i)
		if p(e) {
			*(*T)(unsafe.Add(newData, j*int(v.elemSize))) = e
			j++
		}
	}

	v.freeBuf(oldData)
	v.data = newData
	v.capacity = newCap
	v.length = newLen
	v.cursor = newLen
}

// Sort orders the live elements by a quadratic in-place selection sort.
// less(a,b) returning true means a precedes b; stability is not guaranteed.
func (v *Vector[T]) Sort(less Less[T]) {
	for i := 0; i < v.length; i++ {
		minIdx := i

		for j := i + 1; j < v.length; j++ {
			if less(*v.elemPtr(j), *v.elemPtr(minIdx)) {
				minIdx = j
			}
		}

		if minIdx != i {
			v.Swap(i, minIdx)
		}
	}
}
