// Package hashmap implements the open-addressed hash table container:
// fixed-layout key/value slots backed by a vector.Vector, linear probing,
// djb2 byte hashing, and load-factor-triggered rehash.
//
// It is a Go port of the C hash table found in original_source/src/map.c,
// generalised for compile-time key/value types the way vector.Vector
// generalises the sequence: Slot[K,V] replaces the original's
// `[key:K][value:V][state:4]` byte window with an equivalent Go struct,
// keeping the same generation-tag occupancy scheme underneath.
package hashmap

import (
	"unsafe"

	"github.com/EmilChoparinov/csdsa/csdsaerr"
	"github.com/EmilChoparinov/csdsa/csdsautil"
	"github.com/EmilChoparinov/csdsa/stalloc"
	"github.com/EmilChoparinov/csdsa/vector"
)

// Slot is one hash-table cell: key bytes, value bytes, and a generation
// state tag. A slot is occupied iff State equals the table's current
// generation.
type Slot[K, V any] struct {
	Key   K
	Value V
	State uint32
}

// Pair presents an occupied slot's key and value to the transform methods.
type Pair[K, V any] struct {
	Key   K
	Value V
}

// HashMap is an open-addressed map from K to V backed by a vector.Vector
// of Slot records.
type HashMap[K, V any] struct {
	alloc      *stalloc.Allocator
	placement  stalloc.Placement
	slots      *vector.Vector[Slot[K, V]]
	used       int
	generation uint32
	loadFactor float64
}

// New allocates a table of initialCap slots against alloc under the given
// placement. initialCap is the table's starting logical capacity C, not a
// growth hint; doubling preserves a power of two only if initialCap is one.
func New[K, V any](alloc *stalloc.Allocator, placement stalloc.Placement, initialCap int) *HashMap[K, V] {
	if initialCap < 1 {
		csdsaerr.InvalidArgument("initial capacity must be at least 1")
	}

	slots := vector.New[Slot[K, V]](alloc, placement, initialCap)
	slots.Resize(initialCap)

	return &HashMap[K, V]{
		alloc:      alloc,
		placement:  placement,
		slots:      slots,
		generation: 1,
		loadFactor: alloc.Tuning().HashLoadFactor,
	}
}

// Free releases the table's backing storage under heap placement.
func (h *HashMap[K, V]) Free() { h.slots.Free() }

func (h *HashMap[K, V]) capacity() int { return h.slots.Len() }

// Load reports the number of occupied slots.
func (h *HashMap[K, V]) Load() int { return h.used }

func (h *HashMap[K, V]) bucket(key K, cap int) int {
	hsh := csdsautil.HashBytes(unsafe.Pointer(&key), unsafe.Sizeof(key))
	return int(hsh % uint64(cap))
}

// findSlot scans the full probe cycle for an occupied slot holding key,
// since a tombstone and a never-written slot share the same state (0) and
// are indistinguishable: absence can only be confirmed by revisiting the
// start index, not by stopping at the first free slot.
func (h *HashMap[K, V]) findSlot(key K) int {
	cap := h.capacity()
	start := h.bucket(key, cap)
	keySize := unsafe.Sizeof(key)

	for i := 0; i < cap; i++ {
		idx := (start + i) % cap
		s := h.slots.At(idx)

		if s.State == h.generation && csdsautil.BytesEqual(unsafe.Pointer(&s.Key), unsafe.Pointer(&key), keySize) {
			return idx
		}
	}

	return -1
}

// findInsertSlot returns the first non-occupied slot on key's probe chain.
func (h *HashMap[K, V]) findInsertSlot(key K) int {
	cap := h.capacity()
	start := h.bucket(key, cap)

	for i := 0; i < cap; i++ {
		idx := (start + i) % cap
		if h.slots.At(idx).State != h.generation {
			return idx
		}
	}

	csdsaerr.Exhausted("hash table has no free slot for insertion")

	return -1
}

func (h *HashMap[K, V]) tombstone(i int) {
	h.slots.At(i).State = 0
	h.used--
}

// Get returns the value for key and whether it was present.
func (h *HashMap[K, V]) Get(key K) (V, bool) {
	i := h.findSlot(key)
	if i < 0 {
		var zero V
		return zero, false
	}

	return h.slots.At(i).Value, true
}

// Has reports whether key is present.
func (h *HashMap[K, V]) Has(key K) bool { return h.findSlot(key) >= 0 }

// Put inserts or overwrites key's value. If key is already present it is
// deleted first so its old bytes cannot alias the new slot. The load
// factor is then checked against the (possibly just-decremented) occupied
// count, triggering a rehash before the insertion slot is located.
func (h *HashMap[K, V]) Put(key K, value V) {
	if i := h.findSlot(key); i >= 0 {
		h.tombstone(i)
	}

	threshold := int(float64(h.capacity()) * h.loadFactor)
	if h.used >= threshold {
		h.rehash()
	}

	idx := h.findInsertSlot(key)
	s := h.slots.At(idx)
	s.Key = key
	s.Value = value
	s.State = h.generation
	h.used++
}

// Delete removes key if present; absent keys are a no-op.
func (h *HashMap[K, V]) Delete(key K) {
	if i := h.findSlot(key); i >= 0 {
		h.tombstone(i)
	}
}

// Clear marks every slot free in O(1) by advancing the generation tag,
// without touching payload bytes.
func (h *HashMap[K, V]) Clear() {
	h.generation++
	h.used = 0
}

// rehash doubles capacity and reinserts every occupied slot, preserving
// the generation counter across the swap.
func (h *HashMap[K, V]) rehash() {
	oldSlots := h.slots
	oldCap := h.capacity()

	newSlots := vector.New[Slot[K, V]](h.alloc, h.placement, oldCap*2)
	newSlots.Resize(oldCap * 2)

	h.slots = newSlots
	h.used = 0

	for i := 0; i < oldCap; i++ {
		s := oldSlots.At(i)
		if s.State == h.generation {
			h.Put(s.Key, s.Value)
		}
	}

	oldSlots.Free()
}

// Copy frees dst's backing storage, clones src's metadata, and gives dst a
// fresh copy of src's slot table. dst and src must both already be
// initialised via New; they thereafter own disjoint storage.
func Copy[K, V any](dst, src *HashMap[K, V]) {
	dst.alloc = src.alloc
	dst.placement = src.placement
	dst.generation = src.generation
	dst.loadFactor = src.loadFactor
	dst.used = src.used
	vector.Copy(dst.slots, src.slots)
}

// ToVector builds a vector of the table's raw occupied slot records (key,
// value, and state tag together), not decoded (key,value) pairs. This
// mirrors the original's map_to_vec, which the spec documents as a thin
// byte-level convenience rather than a general export.
func (h *HashMap[K, V]) ToVector() *vector.Vector[Slot[K, V]] {
	cap := h.used
	if cap < 1 {
		cap = 1
	}

	out := vector.New[Slot[K, V]](h.alloc, h.placement, cap)

	for i := 0; i < h.capacity(); i++ {
		s := h.slots.At(i)
		if s.State == h.generation {
			out.Push(*s)
		}
	}

	return out
}

// Foreach applies fn to every occupied (key, value) pair.
func (h *HashMap[K, V]) Foreach(fn func(Pair[K, V])) {
	for i := 0; i < h.capacity(); i++ {
		s := h.slots.At(i)
		if s.State == h.generation {
			fn(Pair[K, V]{Key: s.Key, Value: s.Value})
		}
	}
}

// CountIf returns the number of occupied pairs satisfying p.
func (h *HashMap[K, V]) CountIf(p func(Pair[K, V]) bool) int {
	n := 0
	h.Foreach(func(pr Pair[K, V]) {
		if p(pr) {
			n++
		}
	})

	return n
}

// FindOne returns the first occupied pair satisfying p, in unspecified
// iteration order.
func (h *HashMap[K, V]) FindOne(p func(Pair[K, V]) bool) (Pair[K, V], bool) {
	for i := 0; i < h.capacity(); i++ {
		s := h.slots.At(i)
		if s.State == h.generation {
			pr := Pair[K, V]{Key: s.Key, Value: s.Value}
			if p(pr) {
				return pr, true
			}
		}
	}

	var zero Pair[K, V]

	return zero, false
}

// Filter rebuilds the table from scratch, keeping only entries satisfying
// p, and replaces the original backing storage.
func (h *HashMap[K, V]) Filter(p func(Pair[K, V]) bool) {
	kept := make([]Pair[K, V], 0, h.used)
	h.Foreach(func(pr Pair[K, V]) {
		if p(pr) {
			kept = append(kept, pr)
		}
	})

	initCap := h.capacity()

	h.slots.Free()
	h.slots = vector.New[Slot[K, V]](h.alloc, h.placement, initCap)
	h.slots.Resize(initCap)
	h.used = 0
	h.generation = 1

	for _, pr := range kept {
		h.Put(pr.Key, pr.Value)
	}
}
