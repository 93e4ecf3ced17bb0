// Package invoke is the kernel's system-call layer: the dispatch table
// SYSCALL lands in, and the handlers themselves. It depends on both sched
// (to resolve a descriptor number to a task's open file) and vfs (to
// actually read or write through it).
package invoke

import (
	"unsafe"

	"cpu"
	"errno"
	"klog"
	"sched"
	"vfs"
)

// tableSize covers every number currently assigned on the Linux amd64
// syscall ABI with headroom for the handful this kernel may add of its
// own later.
const tableSize = 400

type handlerFunc func(f *cpu.SyscallFrame)

var table [tableSize]handlerFunc

func init() {
	for i := range table {
		table[i] = invalidHandler
	}
	table[1] = handleWrite
	table[3] = handleClose
	table[16] = handleIoctl
	table[20] = handleWritev
	table[60] = handleExit
	table[158] = handleArchPrctl
	table[218] = handleSetTidAddress
	table[231] = handleExitGroup

	cpu.SyscallHandler = dispatch
}

func dispatch(f *cpu.SyscallFrame) {
	if int(f.Number) < 0 || int(f.Number) >= tableSize {
		invalidHandler(f)
		return
	}
	table[f.Number](f)
}

func invalidHandler(f *cpu.SyscallFrame) {
	klog.Warnf("task %d called unimplemented syscall %d.", sched.CurrentTaskID(), f.Number)
	f.ReturnValue = uint64(errno.NotImplemented.Syscall())
}

// readDescriptor resolves fd on the current task, or writes errno into
// the frame and returns ok=false.
func readDescriptor(f *cpu.SyscallFrame, fd vfs.Descriptor) (vfs.Interface, bool) {
	io, err := sched.GetIOInterface(fd)
	if err != nil {
		f.ReturnValue = errnoReturn(err)
		return nil, false
	}
	return io, true
}

// errnoReturn converts err into the negative-errno value a Linux-ABI
// syscall returns; anything that isn't an errno.Errno is reported as a
// generic I/O error.
func errnoReturn(err error) uint64 {
	if e, ok := err.(errno.Errno); ok {
		return uint64(e.Syscall())
	}
	return uint64(errno.IOError.Syscall())
}

func handleWrite(f *cpu.SyscallFrame) {
	fd := vfs.Descriptor(f.Arg0)
	io, ok := readDescriptor(f, fd)
	if !ok {
		return
	}
	buf := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(f.Arg1))), int(f.Arg2))
	n, err := io.Write(buf)
	if err != nil {
		f.ReturnValue = errnoReturn(err)
		return
	}
	f.ReturnValue = uint64(n)
}

// ioVec mirrors struct iovec from the Linux ABI: a user pointer and a
// length, an array of which writev takes.
type ioVec struct {
	base uintptr
	len  uintptr
}

func handleWritev(f *cpu.SyscallFrame) {
	fd := vfs.Descriptor(f.Arg0)
	io, ok := readDescriptor(f, fd)
	if !ok {
		return
	}
	vecs := unsafe.Slice((*ioVec)(unsafe.Pointer(uintptr(f.Arg1))), int(f.Arg2))

	var total int64
	for _, v := range vecs {
		buf := unsafe.Slice((*byte)(unsafe.Pointer(v.base)), int(v.len))
		n, err := io.Write(buf)
		if err != nil {
			f.ReturnValue = errnoReturn(err)
			return
		}
		total += int64(n)
		if n < int(v.len) {
			break
		}
	}
	f.ReturnValue = uint64(total)
}

func handleClose(f *cpu.SyscallFrame) {
	fd := vfs.Descriptor(f.Arg0)
	if _, err := sched.RemoveIOInterface(fd); err != nil {
		f.ReturnValue = errnoReturn(err)
		return
	}
	f.ReturnValue = 0
}

// handleIoctl is a no-op returning 0, regardless of descriptor or request.
func handleIoctl(f *cpu.SyscallFrame) {
	f.ReturnValue = 0
}

func handleExit(f *cpu.SyscallFrame) {
	sched.Exit()
}

func handleExitGroup(f *cpu.SyscallFrame) {
	sched.Exit()
}

// handleArchPrctl only supports ARCH_SET_FS (0x1002), the one mode
// every libc's thread-local-storage setup actually needs.
const archSetFS = 0x1002

func handleArchPrctl(f *cpu.SyscallFrame) {
	if f.Arg0 != archSetFS {
		f.ReturnValue = errnoReturn(errno.InvalidArgument)
		return
	}
	cpu.SetFSBase(f.Arg1)
	f.ReturnValue = 0
}

// handleSetTidAddress has no futex-wake-on-exit support to offer, but
// still has to return the caller's own task ID, which is all glibc's
// startup path actually checks.
func handleSetTidAddress(f *cpu.SyscallFrame) {
	f.ReturnValue = uint64(sched.CurrentTaskID())
}
