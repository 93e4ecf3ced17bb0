package cpu

import (
	"testing"
	"unsafe"
)

// InitPIC/InitPIT/EnableFeatures/InitSyscall all execute real privileged
// instructions (OUT, WRMSR, CPUID, CR0/CR4 writes) and so are exercised
// on real hardware, not here. What's tested below is the pure bit-
// packing logic feeding the GDT and IDT.

func TestPackDescriptorRoundTripsBaseAndLimit(t *testing.T) {
	e := packDescriptor(0x12345678, 0xABCD, accessPresent|accessDescriptor, flagLongMode)
	limit := uint64(e) & 0xFFFF
	if limit != 0xABCD {
		t.Fatalf("limit = %#x, want 0xabcd", limit)
	}
	base := (uint64(e) >> 16) & 0xFFFFFF
	if base != 0x345678 {
		t.Fatalf("base low 24 bits = %#x, want 0x345678", base)
	}
	baseHigh := (uint64(e) >> 56) & 0xFF
	if baseHigh != 0x12 {
		t.Fatalf("base high byte = %#x, want 0x12", baseHigh)
	}
}

func TestMakeGateSplitsHandlerAddress(t *testing.T) {
	handler := uintptr(0x1122334455667788)
	g := makeGate(handler, SelectorKernelCode, 1)
	if g.offsetLow != 0x7788 {
		t.Fatalf("offsetLow = %#x, want 0x7788", g.offsetLow)
	}
	if g.offsetMid != 0x5566 {
		t.Fatalf("offsetMid = %#x, want 0x5566", g.offsetMid)
	}
	if g.offsetHigh != 0x11223344 {
		t.Fatalf("offsetHigh = %#x, want 0x11223344", g.offsetHigh)
	}
	if g.ist != 1 {
		t.Fatalf("ist = %d, want 1", g.ist)
	}
	if g.typeAttr&gatePresent == 0 {
		t.Fatal("expected the present bit to be set")
	}
}

func TestInterruptStubsCoverNamedVectors(t *testing.T) {
	for _, v := range []int{0, 3, 8, 13, 14, VectorTimer, VectorKeyboard} {
		if _, ok := interruptStubs[v]; !ok {
			t.Fatalf("no stub registered for vector %d", v)
		}
	}
}

func TestDumpFaultingInstructionDecodesRealBytes(t *testing.T) {
	code := make([]byte, maxX86Instruction)
	code[0] = 0x90 // NOP
	rip := uint64(uintptr(unsafe.Pointer(&code[0])))
	got := dumpFaultingInstruction(rip)
	if got != "nop" {
		t.Fatalf("dumpFaultingInstruction = %q, want %q", got, "nop")
	}
}

func TestDumpFaultingInstructionReportsUndecodable(t *testing.T) {
	code := make([]byte, maxX86Instruction)
	code[0], code[1] = 0x0f, 0xff // not a valid two-byte opcode
	rip := uint64(uintptr(unsafe.Pointer(&code[0])))
	got := dumpFaultingInstruction(rip)
	if got != "<undecodable>" {
		t.Fatalf("dumpFaultingInstruction = %q, want <undecodable>", got)
	}
}
