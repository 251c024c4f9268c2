package vector

import (
	"testing"

	"github.com/EmilChoparinov/csdsa/stalloc"
)

func TestPushPopDuality(t *testing.T) {
	a := stalloc.New(4096)
	v := New[int](a, stalloc.StackPlacement, 4)

	lenBefore := v.Len()

	v.Push(42)
	if *v.Top() != 42 {
		t.Fatalf("top = %d, want 42", *v.Top())
	}

	v.Pop()

	if v.Len() != lenBefore {
		t.Fatalf("length changed across push/pop: before=%d after=%d", lenBefore, v.Len())
	}
}

func TestAtPutDeleteAt(t *testing.T) {
	a := stalloc.New(4096)
	v := New[int](a, stalloc.StackPlacement, 4)

	for i := 0; i < 5; i++ {
		v.Push(i)
	}

	v.Put(2, 99)
	if got := *v.At(2); got != 99 {
		t.Fatalf("At(2) = %d, want 99", got)
	}

	v.DeleteAt(2)

	want := []int{0, 1, 3, 4}
	if v.Len() != len(want) {
		t.Fatalf("length after delete = %d, want %d", v.Len(), len(want))
	}

	for i, w := range want {
		if got := *v.At(i); got != w {
			t.Errorf("At(%d) = %d, want %d", i, got, w)
		}
	}
}

func TestOutOfBoundsPanics(t *testing.T) {
	a := stalloc.New(4096)
	v := New[int](a, stalloc.StackPlacement, 4)
	v.Push(1)

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on out-of-bounds access")
		}
	}()

	v.At(5)
}

func TestPopOnEmptyPanics(t *testing.T) {
	a := stalloc.New(4096)
	v := New[int](a, stalloc.StackPlacement, 4)

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic popping an empty vector")
		}
	}()

	v.Pop()
}

func TestHasFind(t *testing.T) {
	a := stalloc.New(4096)
	v := New[int](a, stalloc.StackPlacement, 4)

	for _, x := range []int{5, 10, 15} {
		v.Push(x)
	}

	if !v.Has(10) {
		t.Error("expected Has(10) true")
	}

	if v.Has(99) {
		t.Error("expected Has(99) false")
	}

	if idx := v.Find(15); idx != 2 {
		t.Errorf("Find(15) = %d, want 2", idx)
	}
}

func TestSwap(t *testing.T) {
	a := stalloc.New(4096)
	v := New[int](a, stalloc.StackPlacement, 4)

	v.Push(1)
	v.Push(2)
	v.Swap(0, 1)

	if *v.At(0) != 2 || *v.At(1) != 1 {
		t.Fatalf("swap failed: %d, %d", *v.At(0), *v.At(1))
	}
}

func TestCopyIndependence(t *testing.T) {
	a := stalloc.New(4096)
	src := New[int](a, stalloc.HeapPlacement, 4)
	dst := New[int](a, stalloc.HeapPlacement, 1)

	for _, x := range []int{1, 2, 3} {
		src.Push(x)
	}

	Copy(dst, src)

	dst.Put(0, 999)

	if *src.At(0) != 1 {
		t.Fatalf("mutating dst changed src: %d", *src.At(0))
	}

	src.Put(1, -1)
	if *dst.At(1) != 2 {
		t.Fatalf("mutating src changed dst: %d", *dst.At(1))
	}
}

func TestGrowthOnPushBeyondCapacity(t *testing.T) {
	a := stalloc.New(4096)
	v := New[int](a, stalloc.StackPlacement, 2)

	for i := 0; i < 10; i++ {
		v.Push(i)
	}

	if v.Len() != 10 {
		t.Fatalf("length = %d, want 10", v.Len())
	}

	if v.Cap() < 10 {
		t.Fatalf("capacity = %d, did not grow to fit 10 elements", v.Cap())
	}

	for i := 0; i < 10; i++ {
		if got := *v.At(i); got != i {
			t.Errorf("At(%d) = %d, want %d", i, got, i)
		}
	}
}

// TestFrameBulkPush mirrors the spec's concrete scenario: push 1 byte 500
// times through a growable sequence inside a frame, close the frame, and
// expect subsequent pushes inside a fresh frame to reuse the same
// addresses.
func TestFrameBulkPush(t *testing.T) {
	a := stalloc.New(4096)

	a.OpenFrame()
	v1 := New[byte](a, stalloc.StackPlacement, 8)
	for i := 0; i < 500; i++ {
		v1.Push(byte(i))
	}
	firstAddr := v1.At(0)
	a.CloseFrame()

	a.OpenFrame()
	v2 := New[byte](a, stalloc.StackPlacement, 8)
	for i := 0; i < 500; i++ {
		v2.Push(byte(i))
	}
	secondAddr := v2.At(0)
	a.CloseFrame()

	if firstAddr != secondAddr {
		t.Fatalf("expected reused address across frames, got %p != %p", firstAddr, secondAddr)
	}
}

// TestFilterFoldl mirrors the spec's concrete scenario: filter a 100-int
// sequence down to multiples of 10 and fold with +, expecting 450; and the
// same over 0..20, expecting 30.
func TestFilterFoldl(t *testing.T) {
	isMultipleOf10 := func(x int) bool { return x%10 == 0 }
	sum := func(acc, x int) int { return acc + x }

	a := stalloc.New(8192)
	v := New[int](a, stalloc.StackPlacement, 8)

	for i := 0; i < 100; i++ {
		v.Push(i)
	}

	v.Filter(isMultipleOf10)

	if got := v.Foldl(0, sum); got != 450 {
		t.Fatalf("fold over 0..99 multiples of 10 = %d, want 450", got)
	}

	a2 := stalloc.New(8192)
	v2 := New[int](a2, stalloc.StackPlacement, 8)

	for i := 0; i <= 20; i++ {
		v2.Push(i)
	}

	v2.Filter(isMultipleOf10)

	if got := v2.Foldl(0, sum); got != 30 {
		t.Fatalf("fold over 0..20 multiples of 10 = %d, want 30", got)
	}
}

// TestFramedStructPushPop mirrors the spec's concrete scenario: push 256
// structs, pop all 256, then push one with y=999, expecting length 1 and
// element 0 to carry y=999.
func TestFramedStructPushPop(t *testing.T) {
	type pair struct{ x, y int }

	a := stalloc.New(16384)
	v := New[pair](a, stalloc.StackPlacement, 8)

	for i := 0; i < 256; i++ {
		v.Push(pair{x: i, y: i * 2})
	}

	for i := 0; i < 256; i++ {
		v.Pop()
	}

	v.Push(pair{x: 0, y: 999})

	if v.Len() != 1 {
		t.Fatalf("length = %d, want 1", v.Len())
	}

	if got := v.At(0).y; got != 999 {
		t.Fatalf("element 0.y = %d, want 999", got)
	}
}

func TestMapRewritesInPlace(t *testing.T) {
	a := stalloc.New(4096)
	v := New[int](a, stalloc.StackPlacement, 4)

	for i := 0; i < 5; i++ {
		v.Push(i)
	}

	v.Map(func(x int) int { return x * x })

	want := []int{0, 1, 4, 9, 16}
	for i, w := range want {
		if got := *v.At(i); got != w {
			t.Errorf("At(%d) = %d, want %d", i, got, w)
		}
	}
}

func TestSortOrdersByLess(t *testing.T) {
	a := stalloc.New(4096)
	v := New[int](a, stalloc.StackPlacement, 4)

	for _, x := range []int{5, 3, 4, 1, 2} {
		v.Push(x)
	}

	v.Sort(func(a, b int) bool { return a < b })

	for i := 0; i < v.Len(); i++ {
		if got := *v.At(i); got != i+1 {
			t.Errorf("At(%d) = %d, want %d", i, got, i+1)
		}
	}
}

func TestCountIf(t *testing.T) {
	a := stalloc.New(4096)
	v := New[int](a, stalloc.StackPlacement, 4)

	for i := 0; i < 10; i++ {
		v.Push(i)
	}

	even := v.CountIf(func(x int) bool { return x%2 == 0 })
	if even != 5 {
		t.Fatalf("CountIf even = %d, want 5", even)
	}
}

func TestForeachVisitsAllLiveElements(t *testing.T) {
	a := stalloc.New(4096)
	v := New[int](a, stalloc.StackPlacement, 4)

	for i := 1; i <= 4; i++ {
		v.Push(i)
	}

	sum := 0
	v.Foreach(func(x int) { sum += x })

	if sum != 10 {
		t.Fatalf("sum = %d, want 10", sum)
	}
}
