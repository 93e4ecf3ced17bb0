// Package arch isolates every piece of code that must touch the bare CPU:
// port I/O, control/model-specific registers, descriptor table loads, and
// the handful of privileged instructions the rest of the kernel never
// executes directly. Each primitive below is declared with
// //go:noescape and implemented in arch_amd64.s, the same split the Go
// runtime itself uses for its lowest-level assembly helpers — it lets
// every other package stay ordinary, portable-looking Go while the actual
// privileged instructions live in one small, auditable place.
package arch

import (
	"unsafe"

	"ksync"
)

func init() {
	ksync.Pause = Pause
	ksync.IRQNestedDisable = IRQNestedDisable
	ksync.IRQNestedEnable = IRQNestedEnable
}

// Outb writes a byte to an I/O port.
//
//go:noescape
func Outb(port uint16, value uint8)

// Inb reads a byte from an I/O port.
//
//go:noescape
func Inb(port uint16) uint8

// Outw writes a word to an I/O port.
//
//go:noescape
func Outw(port uint16, value uint16)

// Inw reads a word from an I/O port.
//
//go:noescape
func Inw(port uint16) uint16

// Lgdt loads the global descriptor table register from a 10-byte
// pseudo-descriptor (2-byte limit followed by an 8-byte base).
//
//go:noescape
func Lgdt(descriptor unsafe.Pointer)

// Lidt loads the interrupt descriptor table register the same way Lgdt
// loads the GDTR.
//
//go:noescape
func Lidt(descriptor unsafe.Pointer)

// Ltr loads the task register with a GDT selector.
//
//go:noescape
func Ltr(selector uint16)

// Wrmsr writes a model-specific register.
//
//go:noescape
func Wrmsr(msr uint32, value uint64)

// Rdmsr reads a model-specific register.
//
//go:noescape
func Rdmsr(msr uint32) uint64

// Invlpg invalidates the TLB entry for a single virtual address.
//
//go:noescape
func Invlpg(addr uintptr)

// ReadCR0 reads control register 0.
//
//go:noescape
func ReadCR0() uint64

// WriteCR0 writes control register 0.
//
//go:noescape
func WriteCR0(value uint64)

// ReadCR2 reads control register 2 (the faulting address after a page
// fault).
//
//go:noescape
func ReadCR2() uint64

// ReadCR3 reads control register 3 (the active page table's physical
// address).
//
//go:noescape
func ReadCR3() uint64

// WriteCR3 writes control register 3, switching the active page table and
// implicitly flushing all non-global TLB entries.
//
//go:noescape
func WriteCR3(value uint64)

// ReadCR4 reads control register 4.
//
//go:noescape
func ReadCR4() uint64

// WriteCR4 writes control register 4.
//
//go:noescape
func WriteCR4(value uint64)

// WrGSBase writes the GS segment base via WRGSBASE.
//
//go:noescape
func WrGSBase(value uint64)

// RdGSBase reads the GS segment base via RDGSBASE.
//
//go:noescape
func RdGSBase() uint64

// Rdtsc reads the processor time-stamp counter.
//
//go:noescape
func Rdtsc() uint64

// Cpuid executes CPUID with the given leaf and sub-leaf and returns
// eax, ebx, ecx, edx.
//
//go:noescape
func Cpuid(leaf, subleaf uint32) (eax, ebx, ecx, edx uint32)

// Hlt halts the processor until the next interrupt.
//
//go:noescape
func Hlt()

// Pause executes the PAUSE instruction, the recommended spin-wait hint on
// x86.
//
//go:noescape
func Pause()

// Cli disables maskable interrupts.
//
//go:noescape
func Cli()

// Sti enables maskable interrupts.
//
//go:noescape
func Sti()

// Flags reads the RFLAGS register.
//
//go:noescape
func Flags() uint64

const interruptFlag = 1 << 9

// IRQNestedDisable disables interrupts and reports whether they had been
// enabled, so a matching IRQNestedEnable restores exactly that state
// instead of unconditionally re-enabling interrupts a caller further up
// the call stack still needs masked.
func IRQNestedDisable() bool {
	wasEnabled := Flags()&interruptFlag != 0
	Cli()
	return wasEnabled
}

// IRQNestedEnable restores the interrupt state captured by
// IRQNestedDisable.
func IRQNestedEnable(wasEnabled bool) {
	if wasEnabled {
		Sti()
	}
}

// IRQEnabled reports whether maskable interrupts are currently enabled.
func IRQEnabled() bool {
	return Flags()&interruptFlag != 0
}

// SwitchContext saves the callee-saved registers and stack pointer of
// the currently running task to *oldSP, then restores the callee-saved
// registers and stack pointer previously saved at newSP. Control
// returns from this call on the new stack, not the old one: the next
// instruction a caller sees executed may belong to a different task
// entirely.
//
//go:noescape
func SwitchContext(oldSP *uintptr, newSP uintptr)
