package cpu

import (
	"unsafe"

	"addr"
	"arch"
	"consts"
	"klog"
	"paging"
	"sched"
)

// Frame is the register state an interrupt stub hands to dispatch: the
// five words the CPU itself pushes, plus the vector and error code the
// stub pushes before calling in.
type Frame struct {
	Vector          uint64
	ErrorCode       uint64
	InstructionPointer uint64
	CodeSegment     uint64
	CPUFlags        uint64
	StackPointer    uint64
	StackSegment    uint64
}

type idtEntry struct {
	offsetLow  uint16
	selector   uint16
	ist        uint8
	typeAttr   uint8
	offsetMid  uint16
	offsetHigh uint32
	reserved   uint32
}

const (
	gateInterrupt = 0xE
	gatePresent   = 1 << 7
)

func makeGate(handler uintptr, selector uint16, ist uint8) idtEntry {
	addr := uint64(handler)
	return idtEntry{
		offsetLow:  uint16(addr),
		selector:   selector,
		ist:        ist & 0x7,
		typeAttr:   gateInterrupt | gatePresent,
		offsetMid:  uint16(addr >> 16),
		offsetHigh: uint32(addr >> 32),
	}
}

const idtEntries = 256

var idt [idtEntries]idtEntry

// vectorNames labels the 32 CPU exception vectors for log messages; the
// rest are hardware IRQs or unused.
var vectorNames = map[uint64]string{
	0: "Divide By Zero", 1: "Debug", 2: "Non Maskable Interrupt",
	3: "Breakpoint", 4: "Overflow", 5: "Bound Range Exceeded",
	6: "Invalid Opcode", 7: "Device Not Available", 8: "Double Fault",
	10: "Invalid TSS", 11: "Segment Not Present", 12: "Stack Segment Fault",
	13: "General Protection Fault", 14: "Page Fault", 16: "x87 Floating Point",
	17: "Alignment Check", 18: "Machine Check", 19: "SIMD Floating Point",
}

// VectorPageFault is the #PF exception vector.
const VectorPageFault = 14

// IRQ vectors, placed just past the 32 reserved exception vectors.
const (
	VectorTimer    = 32
	VectorKeyboard = 33
)

// userStackLow and userStackHigh bound the demand-paged user stack
// growth window: the top UserStackWindow bytes of a task's image region.
// A fault anywhere in it grows the stack; anything else is a real fault.
var (
	userStackHigh = addr.Virtual(consts.UserEntry + consts.UserImageSize)
	userStackLow  = addr.Virtual(consts.UserEntry + consts.UserImageSize - consts.UserStackWindow)
)

// InitIDT builds the IDT from the stub table generated in idt_amd64.s
// and loads it.
func InitIDT() {
	unhandled := funcPC(stubUnhandled)
	for vector := range idt {
		idt[vector] = makeGate(unhandled, SelectorKernelCode, 0)
	}
	for vector, stub := range interruptStubs {
		ist := uint8(0)
		if uint64(vector) == 8 {
			ist = 1 // double fault always runs on the known-good IST1 stack
		}
		idt[vector] = makeGate(stub, SelectorKernelCode, ist)
	}

	ptr := descriptorPointer{
		limit: uint16(unsafe.Sizeof(idt) - 1),
		base:  uint64(uintptr(unsafe.Pointer(&idt[0]))),
	}
	arch.Lidt(unsafe.Pointer(&ptr))
}

// dispatch is called by every assembly stub with the vector it fired
// for. CPU exceptions are fatal to the current task; the two wired
// hardware IRQs are acknowledged and handled inline. The fatal path below
// calls into the ordinary (splittable) logging and disassembly code after
// all; nosplit only protects the interrupt-stack-swap prologue, and by the
// time we're aborting the task a stack split is no longer a concern.
//
//go:nosplit
func dispatch(f *Frame) {
	switch f.Vector {
	case VectorTimer:
		sendEOI(VectorTimer)
		sched.ChargeTick()
		sched.Reschedule()
		return
	case VectorKeyboard:
		sendEOI(VectorKeyboard)
		return
	case VectorPageFault:
		fault := addr.Virtual(arch.ReadCR2())
		if fault >= userStackLow && fault < userStackHigh && growUserStack(fault) {
			sendEOI(VectorPageFault)
			return
		}
	}

	name, known := vectorNames[f.Vector]
	if !known {
		name = "Unknown"
	}
	klog.Errorf("task %d received a %s exception (vector %d, error %#x) at rip %#x: %s.",
		sched.CurrentTaskID(), name, f.Vector, f.ErrorCode, f.InstructionPointer,
		dumpFaultingInstruction(f.InstructionPointer))
	sched.Abort()
}

// growUserStack maps and zeroes one 4 KiB frame covering fault, the
// on-demand allocation a page fault in the user stack window triggers
// instead of the whole stack being reserved up front.
func growUserStack(fault addr.Virtual) bool {
	page := fault.Align(addr.PageSize)

	frame, err := paging.Frames().AllocPage()
	if err != nil {
		return false
	}
	flags := paging.Writable | paging.User | paging.NoExecute
	if _, err := paging.Map(page, frame, paging.Base4K, flags, paging.Frames()); err != nil {
		paging.Frames().FreePage(frame)
		return false
	}

	zeroed := (*[addr.PageSize]byte)(unsafe.Pointer(uintptr(page)))
	for i := range zeroed {
		zeroed[i] = 0
	}
	return true
}
