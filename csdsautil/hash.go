// Package csdsautil provides the raw-byte primitives shared by the vector
// and hashmap containers: a djb2 byte hash and a byte-wise memory swap.
package csdsautil

import "unsafe"

// djb2Seed is the classic djb2 starting hash, h0 = 5381.
const djb2Seed uint64 = 5381

// HashBytes hashes the n bytes at ptr using the djb2 variant described in
// http://www.cse.yorku.ca/~oz/hash.html: h(i+1) = h(i)*33 + byte(i).
func HashBytes(ptr unsafe.Pointer, n uintptr) uint64 {
	h := djb2Seed
	buf := unsafe.Slice((*byte)(ptr), n)

	for _, b := range buf {
		h = h*33 + uint64(b)
	}

	return h
}

// MemSwap exchanges the n bytes at a with the n bytes at b.
func MemSwap(a, b unsafe.Pointer, n uintptr) {
	pa := unsafe.Slice((*byte)(a), n)
	pb := unsafe.Slice((*byte)(b), n)

	for i := uintptr(0); i < n; i++ {
		pa[i], pb[i] = pb[i], pa[i]
	}
}

// BytesEqual reports whether the n bytes at a equal the n bytes at b.
func BytesEqual(a, b unsafe.Pointer, n uintptr) bool {
	pa := unsafe.Slice((*byte)(a), n)
	pb := unsafe.Slice((*byte)(b), n)

	for i := uintptr(0); i < n; i++ {
		if pa[i] != pb[i] {
			return false
		}
	}

	return true
}
