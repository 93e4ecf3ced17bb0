package cpu

import (
	"unsafe"

	"golang.org/x/arch/x86/x86asm"
)

// maxX86Instruction is the longest an x86 instruction encoding can be.
const maxX86Instruction = 15

// dumpFaultingInstruction disassembles the instruction at rip for a fatal
// exception's log line. It reads straight out of the faulting task's own
// mapped memory, which is still the active address space at the point a
// CPU exception lands; if rip itself turns out to be unmapped or garbage,
// Decode simply fails and this reports that instead of double-faulting the
// dump path itself.
func dumpFaultingInstruction(rip uint64) string {
	code := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(rip))), maxX86Instruction)
	inst, err := x86asm.Decode(code, 64)
	if err != nil {
		return "<undecodable>"
	}
	return x86asm.IntelSyntax(inst, rip, nil)
}
