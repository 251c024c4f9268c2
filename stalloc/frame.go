package stalloc

import (
	"unsafe"

	"github.com/EmilChoparinov/csdsa/csdsaerr"
)

// stackFrame records how many stack-discipline pushes occurred while it was
// the innermost open frame.
type stackFrame struct {
	stackAllocs int64
}

// OpenFrame pushes a new frame record with counter zero. Frames nest LIFO;
// a frame's counter only covers pushes made while it is innermost.
func (a *Allocator) OpenFrame() {
	if a.frames == nil {
		a.frames = make([]stackFrame, 0, a.tuning.StackFrameGuess)
	}

	a.frames = append(a.frames, stackFrame{})
}

// CloseFrame pops exactly as many blocks as were pushed while this frame
// was innermost, then removes the frame record.
func (a *Allocator) CloseFrame() {
	if len(a.frames) == 0 {
		csdsaerr.FrameUnderflow()
	}

	top := len(a.frames) - 1
	toPop := a.frames[top].stackAllocs

	for i := int64(0); i < toPop; i++ {
		a.Pop()
	}

	a.frames = a.frames[:top]
}

// OpenFrameCount reports how many frames are currently open.
func (a *Allocator) OpenFrameCount() int { return len(a.frames) }

// chargeFrame adjusts the innermost open frame's allocation counter. delta
// is +1 on every push and -1 on every pop, including the pops CloseFrame
// issues; those only decrement the frame being closed, whose count
// CloseFrame has already read.
func (a *Allocator) chargeFrame(delta int64) {
	if len(a.frames) == 0 {
		return
	}

	a.frames[len(a.frames)-1].stackAllocs += delta
}

// globalFramedAllocator is the process-wide allocator used by the
// convenience OpenGlobalFrame/CloseGlobalFrame pair, mirroring the C
// original's framed_alloc. It is single-writer: set for exactly the
// duration of one top-level global frame.
var globalFramedAllocator *Allocator

// OpenGlobalFrame opens a frame on a and registers it as the process-wide
// framed allocator, enabling Framed. Only one global frame may be
// active at a time.
func OpenGlobalFrame(a *Allocator) {
	if globalFramedAllocator != nil {
		csdsaerr.Raise(csdsaerr.CategoryPrecondition, "GLOBAL_FRAME_ACTIVE",
			"a global frame is already open")
	}

	globalFramedAllocator = a
	a.OpenFrame()
}

// CloseGlobalFrame closes the process-wide global frame opened by
// OpenGlobalFrame and clears the framed-allocator pointer.
func CloseGlobalFrame() {
	if globalFramedAllocator == nil {
		csdsaerr.FrameUnderflow()
	}

	globalFramedAllocator.CloseFrame()
	globalFramedAllocator = nil
}

// Framed pushes n bytes on the process-wide framed allocator opened by
// OpenGlobalFrame. It is a convenience for callers that don't want to
// thread an *Allocator through every call site.
func Framed(n int) unsafe.Pointer {
	if globalFramedAllocator == nil {
		csdsaerr.Raise(csdsaerr.CategoryPrecondition, "NO_GLOBAL_FRAME",
			"Framed called with no global frame open")
	}

	return globalFramedAllocator.Push(n)
}
