package sched

import "unsafe"

// FuncAddress returns the entry address of a Go function value; only
// valid for package-level functions, never closures. Exported so a boot
// sequence outside this package can turn its own task entry points into
// the uintptr Spawn expects.
func FuncAddress(f func()) uintptr {
	return **(**uintptr)(unsafe.Pointer(&f))
}

// taskTrampoline is implemented in frame_amd64.s: it is the return
// address CreateStackFrame plants on a brand-new stack, so the first
// instruction a freshly spawned task runs is this trampoline reading
// its own entry point back off the stack and calling it.
func taskTrampoline()

// taskReturned is what taskTrampoline calls if entry ever returns
// normally, mirroring how a voluntary exit is supposed to happen.
func taskReturned() {
	Exit()
}
