// Package cpu brings a single CPU up from real-mode-handoff state to a
// fully usable long-mode kernel environment: the GDT and a TSS for the
// interrupt stack, the IDT with the 32 CPU exception vectors and two
// hardware IRQ vectors wired up, the 8259 PICs remapped out of the way
// of CPU exceptions, the PIT programmed for the scheduler's timer tick,
// and the SYSCALL/SYSRET machine-specific registers loaded so user code
// can enter the kernel without a software interrupt.
package cpu

import (
	"unsafe"

	"arch"
)

// Segment selectors, fixed by the layout Init builds the GDT in.
const (
	SelectorNull      = 0x00
	SelectorKernelCode = 0x08
	SelectorKernelData = 0x10
	SelectorUserCode32 = 0x18 | 3
	SelectorUserData32 = 0x20 | 3
	SelectorUserCode64 = 0x28 | 3
	SelectorTSS        = 0x30
)

const gdtEntries = 8 // null, kcode, kdata, ucode32, udata32, ucode64, tss-low, tss-high

type gdtEntry uint64

const (
	accessPresent    = 1 << 7
	accessRing3      = 3 << 5
	accessDescriptor = 1 << 4 // code/data, not a system descriptor
	accessExecutable = 1 << 3
	accessReadWrite  = 1 << 1
	accessAccessed   = 1 << 0

	flagLongMode  = 1 << 5
	flagDefault32 = 1 << 6
	flagGranular  = 1 << 7

	accessTSSAvailable64 = 0x9 // system-segment type for an available 64-bit TSS
)

func packDescriptor(base uint32, limit uint32, access uint8, flags uint8) gdtEntry {
	var e uint64
	e |= uint64(limit) & 0xFFFF
	e |= (uint64(limit) >> 16 & 0xF) << 48
	e |= (uint64(base) & 0xFFFFFF) << 16
	e |= (uint64(base) >> 24 & 0xFF) << 56
	e |= uint64(access) << 40
	e |= uint64(flags&0xF) << 52
	return gdtEntry(e)
}

// TaskStateSegment is the 64-bit TSS: only RSP0 (the stack loaded on a
// ring 3 -> ring 0 transition) and IST1 (the stack used for the double
// fault vector) are ever set.
type TaskStateSegment struct {
	reserved0 uint32
	RSP       [3]uint64
	reserved1 uint64
	IST       [7]uint64
	reserved2 uint64
	reserved3 uint16
	IOMapBase uint16
}

var (
	gdt [gdtEntries]gdtEntry
	tss TaskStateSegment
)

type descriptorPointer struct {
	limit uint16
	base  uint64
}

// Init builds the GDT and TSS and loads them with LGDT and LTR. It does
// not reload CS, SS or the data segment registers; they keep the
// selectors that were loaded before the call. bootInterruptTop becomes
// TSS.IST1, and nothing in this package changes IST1 afterwards.
func Init(bootInterruptTop uintptr) {
	gdt[0] = 0
	gdt[1] = packDescriptor(0, 0, accessPresent|accessDescriptor|accessExecutable|accessReadWrite, flagLongMode)
	gdt[2] = packDescriptor(0, 0, accessPresent|accessDescriptor|accessReadWrite, 0)
	gdt[3] = packDescriptor(0, 0xFFFFF, accessPresent|accessRing3|accessDescriptor|accessExecutable|accessReadWrite, flagDefault32|flagGranular)
	gdt[4] = packDescriptor(0, 0xFFFFF, accessPresent|accessRing3|accessDescriptor|accessReadWrite, flagDefault32|flagGranular)
	gdt[5] = packDescriptor(0, 0, accessPresent|accessRing3|accessDescriptor|accessExecutable|accessReadWrite, flagLongMode)

	tss = TaskStateSegment{}
	tss.IST[0] = uint64(bootInterruptTop)

	base := uint64(uintptr(unsafe.Pointer(&tss)))
	limit := uint32(unsafe.Sizeof(tss) - 1)
	gdt[6] = packDescriptor(uint32(base), limit, accessPresent|accessTSSAvailable64, 0)
	gdt[7] = gdtEntry(base >> 32)

	ptr := descriptorPointer{
		limit: uint16(unsafe.Sizeof(gdt) - 1),
		base:  uint64(uintptr(unsafe.Pointer(&gdt[0]))),
	}
	arch.Lgdt(unsafe.Pointer(&ptr))
	arch.Ltr(SelectorTSS)
}

// kernelStackTop mirrors tss.RSP[0]; the SYSCALL entry trampoline reads
// it directly as a plain global instead of walking the TSS, since this
// kernel never runs on more than one processor and so never needs a
// per-CPU lookup for it.
var kernelStackTop uint64

// SetKernelStack updates the stack the CPU switches to on a ring 3 ->
// ring 0 transition (RSP0), called every time the scheduler switches to
// a different task.
func SetKernelStack(top uintptr) {
	tss.RSP[0] = uint64(top)
	kernelStackTop = uint64(top)
}
