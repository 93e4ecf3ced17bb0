package cpu

import (
	"arch"
	"klog"
)

const (
	starMSR  = 0xC0000081
	lstarMSR = 0xC0000082
	fmaskMSR = 0xC0000084
)

// SyscallFrame is the register state captured by the SYSCALL entry
// trampoline: the syscall number and six argument registers (the
// Linux-ABI calling convention the ELF loader's programs expect), plus
// the return address and flags SYSRET needs back.
type SyscallFrame struct {
	Number                           uint64
	Arg0, Arg1, Arg2, Arg3, Arg4, Arg5 uint64
	ReturnRIP                        uint64
	ReturnRFLAGS                     uint64
	ReturnValue                      uint64
}

// SyscallHandler is invoked by the assembly SYSCALL trampoline for
// every system call; it defaults to a no-op that reports every call as
// unimplemented so InitSyscall is usable before invoke wires in the
// real dispatcher. invoke's init() replaces this exactly the way
// arch.init() wires ksync's IRQ hooks.
var SyscallHandler = func(f *SyscallFrame) {
	klog.Warnf("syscall %d received before a real dispatcher was installed.", f.Number)
	f.ReturnValue = ^uint64(37) // -38, the negated ENOSYS the syscall ABI returns
}

func syscallEntry()

// dispatchSyscall is called by the SYSCALL trampoline with a pointer to
// the saved register frame.
//
//go:nosplit
func dispatchSyscall(f *SyscallFrame) {
	SyscallHandler(f)
}

// InitSyscall programs STAR/LSTAR/FMASK so ring 3 code can enter the
// kernel with a SYSCALL instruction instead of a software interrupt.
// STAR's high 32 bits pick the segment selectors SYSCALL/SYSRET load:
// kernel CS/SS on entry (bits 32-47) and, offset by the SYSRET
// convention, user CS32/SS/CS64 on return (bits 48-63).
func InitSyscall() {
	star := uint64(SelectorKernelCode&^3)<<32 | uint64(SelectorUserCode32&^3)<<48
	arch.Wrmsr(starMSR, star)
	arch.Wrmsr(lstarMSR, uint64(funcPC(syscallEntry)))
	arch.Wrmsr(fmaskMSR, 1<<9) // clear IF on entry: interrupts stay off until the handler re-enables them
}
