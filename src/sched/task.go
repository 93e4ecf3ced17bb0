package sched

import (
	"addr"
	"vfs"
)

// TaskStatus is a task's position in its own lifecycle.
type TaskStatus int

const (
	StatusInvalid TaskStatus = iota
	StatusReady
	StatusRunning
	StatusBlocked
	StatusFinished
	StatusIdle
)

// Task is one schedulable unit of execution: its own stack, its own
// root page table, and its own file-descriptor table.
type Task struct {
	ID               TaskID
	Priority         TaskPriority
	Status           TaskStatus
	LastStackPointer uintptr
	Stack            Stack
	RootPageTable    addr.Physical
	Ticks            uint64
	fdMap            map[vfs.Descriptor]vfs.Interface
	nextFD           vfs.Descriptor
}

// newIdleTask returns the CPU's idle task: lowest priority, running the
// boot stack, never exits.
func newIdleTask(id TaskID, bootStack Stack, kernelRootPageTable addr.Physical) *Task {
	return &Task{
		ID:            id,
		Priority:      LowPriority,
		Status:        StatusIdle,
		Stack:         bootStack,
		RootPageTable: kernelRootPageTable,
		fdMap:         make(map[vfs.Descriptor]vfs.Interface),
	}
}

// newTask returns a freshly spawned task with stdin/stdout/stderr bound
// to the console, running under the kernel's own root page table until
// an ELF image replaces it.
func newTask(id TaskID, status TaskStatus, priority TaskPriority, kernelRootPageTable addr.Physical) *Task {
	t := &Task{
		ID:            id,
		Priority:      priority,
		Status:        status,
		Stack:         NewTaskStack(),
		RootPageTable: kernelRootPageTable,
		fdMap:         make(map[vfs.Descriptor]vfs.Interface),
		nextFD:        3,
	}
	t.fdMap[vfs.StandardInput] = vfs.StandardInput{}
	t.fdMap[vfs.StandardOutput] = vfs.NewStandardOutput(nil)
	t.fdMap[vfs.StandardError] = vfs.NewStandardError(nil)
	return t
}
