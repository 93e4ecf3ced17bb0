package cpu

import "unsafe"

// funcPC returns the entry address of a Go function value. It only
// works for package-level functions (never closures), which is exactly
// what every stub below is: bare assembly-implemented leaf functions
// with no Go body, following the same pattern the Go runtime itself
// uses to take the address of its own low-level asm routines.
func funcPC(f func()) uintptr {
	return **(**uintptr)(unsafe.Pointer(&f))
}

// Each of these is implemented in idt_amd64.s: push the vector (and a
// dummy error code, for the vectors the CPU itself doesn't push one
// for) and jump to the shared trampoline that calls dispatch.
func stubDivideByZero()
func stubDebug()
func stubNMI()
func stubBreakpoint()
func stubOverflow()
func stubBoundRange()
func stubInvalidOpcode()
func stubDeviceNotAvailable()
func stubDoubleFault()
func stubInvalidTSS()
func stubSegmentNotPresent()
func stubStackSegmentFault()
func stubGeneralProtection()
func stubPageFault()
func stubFloatingPoint()
func stubAlignmentCheck()
func stubMachineCheck()
func stubSIMDFloatingPoint()
func stubTimer()
func stubKeyboard()
func stubUnhandled()

// interruptStubs maps every IDT vector this kernel installs a real
// handler for to its trampoline's entry point. Vectors with no entry
// here fall back to stubUnhandled in InitIDT.
var interruptStubs = map[int]uintptr{
	0:  funcPC(stubDivideByZero),
	1:  funcPC(stubDebug),
	2:  funcPC(stubNMI),
	3:  funcPC(stubBreakpoint),
	4:  funcPC(stubOverflow),
	5:  funcPC(stubBoundRange),
	6:  funcPC(stubInvalidOpcode),
	7:  funcPC(stubDeviceNotAvailable),
	8:  funcPC(stubDoubleFault),
	10: funcPC(stubInvalidTSS),
	11: funcPC(stubSegmentNotPresent),
	12: funcPC(stubStackSegmentFault),
	13: funcPC(stubGeneralProtection),
	14: funcPC(stubPageFault),
	16: funcPC(stubFloatingPoint),
	17: funcPC(stubAlignmentCheck),
	18: funcPC(stubMachineCheck),
	19: funcPC(stubSIMDFloatingPoint),
	VectorTimer:    funcPC(stubTimer),
	VectorKeyboard: funcPC(stubKeyboard),
}
