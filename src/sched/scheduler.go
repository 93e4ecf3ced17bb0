package sched

import (
	"addr"
	"arch"
	"consts"
	"errno"
	"klog"
	"paging"
	"vfs"
)

// Scheduler is the kernel's single run queue and current-task pointer.
// There is exactly one instance, installed by Init and driven by the
// timer interrupt calling Reschedule.
type Scheduler struct {
	current  *Task
	idle     *Task
	ready    *PriorityTaskQueue
	finished []TaskID
	tasks    map[TaskID]*Task
	nextTID  TaskID
}

var sched *Scheduler

// Init installs the scheduler singleton, with bootStack serving as the
// idle task's own stack (the stack the kernel was already running on
// when paging and the heap came up).
func Init(bootStack Stack) {
	sched = newScheduler(bootStack)
}

func newScheduler(bootStack Stack) *Scheduler {
	id := TaskID(0)
	idle := newIdleTask(id, bootStack, paging.KernelRootPageTable)
	s := &Scheduler{
		current: idle,
		idle:    idle,
		ready:   NewPriorityTaskQueue(),
		tasks:   map[TaskID]*Task{id: idle},
		nextTID: 1,
	}
	return s
}

func (s *Scheduler) allocateTID() TaskID {
	for {
		id := s.nextTID
		s.nextTID++
		if _, taken := s.tasks[id]; !taken {
			return id
		}
	}
}

// Spawn creates a new ready task at priority that begins execution at
// entry the first time it is scheduled.
func (s *Scheduler) Spawn(entry uintptr, priority TaskPriority) (TaskID, error) {
	wasEnabled := arch.IRQNestedDisable()
	defer arch.IRQNestedEnable(wasEnabled)

	if int(priority) >= consts.NoPriorities {
		return 0, errno.InvalidArgument
	}

	tid := s.allocateTID()
	task := newTask(tid, StatusReady, priority, paging.KernelRootPageTable)
	task.LastStackPointer = task.Stack.CreateStackFrame(entry)

	s.ready.Push(task)
	s.tasks[tid] = task

	klog.Infof("creating task %d.", tid)
	return tid, nil
}

func (s *Scheduler) cleanup() {
	paging.DropUserSpace(paging.Frames())
	s.current.Status = StatusFinished
}

// Exit finishes the current task and switches away from it. It never
// returns.
func (s *Scheduler) Exit() {
	func() {
		wasEnabled := arch.IRQNestedDisable()
		defer arch.IRQNestedEnable(wasEnabled)
		if s.current.Status == StatusIdle {
			panic("unable to terminate idle task")
		}
		klog.Infof("finished task with id %d.", s.current.ID)
		s.cleanup()
	}()
	s.Reschedule()
	panic("exit failed")
}

// Abort finishes the current task the same way Exit does, distinguished
// only by the log message a caller sees (used for unrecoverable faults
// rather than a voluntary exit).
func (s *Scheduler) Abort() {
	func() {
		wasEnabled := arch.IRQNestedDisable()
		defer arch.IRQNestedEnable(wasEnabled)
		if s.current.Status == StatusIdle {
			panic("unable to terminate idle task")
		}
		klog.Infof("abort task with id %d.", s.current.ID)
		s.cleanup()
	}()
	s.Reschedule()
	panic("abort failed")
}

// BlockCurrentTask marks the running task Blocked and returns it, so a
// synchronization primitive can hold onto it until WakeupTask is called.
func (s *Scheduler) BlockCurrentTask() *Task {
	wasEnabled := arch.IRQNestedDisable()
	defer arch.IRQNestedEnable(wasEnabled)

	if s.current.Status != StatusRunning {
		panic("unable to block task")
	}
	klog.Debugf("block task %d.", s.current.ID)
	s.current.Status = StatusBlocked
	return s.current
}

// WakeupTask moves a previously blocked task back onto the ready queue.
func (s *Scheduler) WakeupTask(task *Task) {
	wasEnabled := arch.IRQNestedDisable()
	defer arch.IRQNestedEnable(wasEnabled)

	if task.Status == StatusBlocked {
		klog.Debugf("wakeup task %d.", task.ID)
		task.Status = StatusReady
		s.ready.Push(task)
	}
}

// InsertIOInterface assigns io the lowest free descriptor number on the
// current task and returns it.
func (s *Scheduler) InsertIOInterface(io vfs.Interface) (vfs.Descriptor, error) {
	fd := vfs.Descriptor(0)
	for {
		if _, used := s.current.fdMap[fd]; !used {
			break
		}
		if fd == 1<<31-1 {
			return 0, errno.ValueOverflow
		}
		fd++
	}
	s.current.fdMap[fd] = io
	return fd, nil
}

// RemoveIOInterface detaches and returns the descriptor fd from the
// current task.
func (s *Scheduler) RemoveIOInterface(fd vfs.Descriptor) (vfs.Interface, error) {
	io, ok := s.current.fdMap[fd]
	if !ok {
		return nil, errno.BadFileDescriptor
	}
	delete(s.current.fdMap, fd)
	return io, nil
}

// GetIOInterface looks up fd on the current task without removing it.
func (s *Scheduler) GetIOInterface(fd vfs.Descriptor) (vfs.Interface, error) {
	wasEnabled := arch.IRQNestedDisable()
	defer arch.IRQNestedEnable(wasEnabled)

	io, ok := s.current.fdMap[fd]
	if !ok {
		return nil, errno.FileNotFound
	}
	return io, nil
}

// CurrentTaskID returns the running task's ID.
func (s *Scheduler) CurrentTaskID() TaskID {
	wasEnabled := arch.IRQNestedDisable()
	defer arch.IRQNestedEnable(wasEnabled)
	return s.current.ID
}

// ChargeTick credits the running task with one timer tick. Called from
// the timer interrupt path before Reschedule, so the charge always lands
// on whichever task the tick actually interrupted.
func (s *Scheduler) ChargeTick() {
	s.current.Ticks++
}

// TaskSample is one task's accounting snapshot, used to build a runtime
// profile without handing out the live *Task.
type TaskSample struct {
	ID       TaskID
	Priority TaskPriority
	Ticks    uint64
}

// Snapshot returns a point-in-time accounting sample for every task the
// scheduler currently knows about, idle task included.
func (s *Scheduler) Snapshot() []TaskSample {
	wasEnabled := arch.IRQNestedDisable()
	defer arch.IRQNestedEnable(wasEnabled)

	out := make([]TaskSample, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, TaskSample{ID: t.ID, Priority: t.Priority, Ticks: t.Ticks})
	}
	return out
}

// CurrentInterruptStack returns the top of the running task's interrupt
// stack, the address loaded into TSS.IST1 on the next context switch.
func (s *Scheduler) CurrentInterruptStack() addr.Virtual {
	wasEnabled := arch.IRQNestedDisable()
	defer arch.IRQNestedEnable(wasEnabled)
	return s.current.Stack.InterruptTop()
}

// RootPageTable returns the current task's root page table.
func (s *Scheduler) RootPageTable() addr.Physical {
	return s.current.RootPageTable
}

// SetRootPageTable replaces the current task's root page table (used
// once, right after an ELF image has been mapped into a fresh address
// space).
func (s *Scheduler) SetRootPageTable(p addr.Physical) {
	s.current.RootPageTable = p
}

// Schedule picks the next task to run and performs the context switch
// if a switch is warranted. It must be called with interrupts already
// disabled by the caller (Reschedule does this for voluntary calls; the
// timer interrupt handler does it for preemption).
func (s *Scheduler) Schedule() {
	if len(s.finished) > 0 {
		id := s.finished[0]
		s.finished = s.finished[1:]
		if _, ok := s.tasks[id]; ok {
			delete(s.tasks, id)
		} else {
			klog.Infof("unable to drop task %d.", id)
		}
	}

	current := s.current
	currentStatus := current.Status

	var next *Task
	if currentStatus == StatusRunning {
		next = s.ready.PopWithPriority(current.Priority)
	} else {
		next = s.ready.Pop()
	}

	if next == nil && currentStatus != StatusRunning && currentStatus != StatusIdle {
		klog.Debugf("switch to idle task.")
		next = s.idle
	}

	if next == nil {
		return
	}

	next.Status = StatusRunning

	if currentStatus == StatusRunning {
		klog.Debugf("add task %d to ready queue.", current.ID)
		current.Status = StatusReady
		s.ready.Push(current)
	} else if currentStatus == StatusFinished {
		klog.Debugf("task %d finished.", current.ID)
		current.Status = StatusInvalid
		s.finished = append(s.finished, current.ID)
	}

	klog.Debugf("switching task from %d to %d.", current.ID, next.ID)

	s.current = next
	arch.SwitchContext(&current.LastStackPointer, next.LastStackPointer)
}

// Reschedule disables interrupts, calls Schedule, and restores the
// prior interrupt state — the entry point every voluntary yield and
// blocking wait should call instead of Schedule directly.
func (s *Scheduler) Reschedule() {
	wasEnabled := arch.IRQNestedDisable()
	s.Schedule()
	arch.IRQNestedEnable(wasEnabled)
}

// Package-level wrappers over the singleton, mirroring the free
// functions every other package actually calls.

func Spawn(entry uintptr, priority TaskPriority) (TaskID, error) {
	return sched.Spawn(entry, priority)
}
func Reschedule()                        { sched.Reschedule() }
func Schedule()                          { sched.Schedule() }
func Exit()                              { sched.Exit() }
func Abort()                             { sched.Abort() }
func BlockCurrentTask() *Task            { return sched.BlockCurrentTask() }
func WakeupTask(task *Task)              { sched.WakeupTask(task) }
func CurrentTaskID() TaskID              { return sched.CurrentTaskID() }
func CurrentInterruptStack() addr.Virtual { return sched.CurrentInterruptStack() }
func RootPageTable() addr.Physical       { return sched.RootPageTable() }
func SetRootPageTable(p addr.Physical)   { sched.SetRootPageTable(p) }
func ChargeTick()                        { sched.ChargeTick() }
func Snapshot() []TaskSample             { return sched.Snapshot() }

func InsertIOInterface(io vfs.Interface) (vfs.Descriptor, error) {
	defer disabledPreemption()()
	return sched.InsertIOInterface(io)
}
func RemoveIOInterface(fd vfs.Descriptor) (vfs.Interface, error) {
	defer disabledPreemption()()
	return sched.RemoveIOInterface(fd)
}
func GetIOInterface(fd vfs.Descriptor) (vfs.Interface, error) {
	defer disabledPreemption()()
	return sched.GetIOInterface(fd)
}

// disabledPreemption masks interrupts and returns a closure that
// restores them, so callers that need more than one scheduler access
// to stay atomic can defer the restore without a matching pair of named
// calls.
func disabledPreemption() func() {
	wasEnabled := arch.IRQNestedDisable()
	return func() { arch.IRQNestedEnable(wasEnabled) }
}
