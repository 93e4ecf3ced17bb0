package sched

import (
	"unsafe"

	"addr"
	"consts"
)

// Stack is anything that can serve as a task's kernel stack and its
// interrupt (IST-style) stack.
type Stack interface {
	Top() addr.Virtual
	Bottom() addr.Virtual
	InterruptTop() addr.Virtual
	InterruptBottom() addr.Virtual

	// CreateStackFrame lays out the initial contents of this stack so
	// that switching onto it starts entry running, and returns the
	// stack pointer Spawn should record as LastStackPointer.
	CreateStackFrame(entry uintptr) uintptr
}

// TaskStack is an ordinary task's statically sized stack pair, laid out
// cache-line aligned so two tasks' stacks never false-share a line.
type TaskStack struct {
	buffer    [consts.StackSize]byte
	istBuffer [consts.InterruptStackSize]byte
}

// NewTaskStack returns a zeroed stack pair allocated on the kernel heap.
func NewTaskStack() *TaskStack {
	return &TaskStack{}
}

func (s *TaskStack) Top() addr.Virtual {
	return addr.Virtual(uintptr(unsafe.Pointer(&s.buffer[0])) + consts.StackSize - 16)
}

func (s *TaskStack) Bottom() addr.Virtual {
	return addr.Virtual(uintptr(unsafe.Pointer(&s.buffer[0])))
}

func (s *TaskStack) InterruptTop() addr.Virtual {
	return addr.Virtual(uintptr(unsafe.Pointer(&s.istBuffer[0])) + consts.InterruptStackSize - 16)
}

func (s *TaskStack) InterruptBottom() addr.Virtual {
	return addr.Virtual(uintptr(unsafe.Pointer(&s.istBuffer[0])))
}

// initialRflags is the flag word a freshly spawned task starts with:
// IF (bit 9) set so interrupts are enabled once it's running, bit 1,
// which the x86_64 architecture always reads back as 1, and bit 12, the
// low bit of the IOPL field.
const initialRflags = 0x1202

// frameWords is the layout CreateStackFrame writes, sized to keep the
// eventual CALL into entry 16-byte aligned: the seven callee-saved
// registers SwitchContext pops (CX, BX, R12-R15, BP), the saved RFLAGS
// word POPFQ consumes, the return address (taskTrampoline), and the
// entry point itself.
const frameWords = 10

func (s *TaskStack) CreateStackFrame(entry uintptr) uintptr {
	top := uintptr(s.Top())
	base := top - frameWords*8
	words := (*[frameWords]uintptr)(unsafe.Pointer(base))
	for i := 0; i <= 6; i++ {
		words[i] = 0 // CX, BX, R12, R13, R14, R15, BP placeholders
	}
	words[7] = initialRflags
	words[8] = FuncAddress(taskTrampoline)
	words[9] = entry
	return base // points at the CX placeholder, SwitchContext's first pop
}

var _ Stack = (*TaskStack)(nil)
