// Package sched implements the kernel's cooperative, priority-driven
// task scheduler: a fixed set of priority levels selected by a bitmap,
// one ready queue per level, and a single current task swapped out by a
// raw stack-pointer context switch.
package sched

import (
	"math/bits"

	"consts"
)

// TaskID identifies a task for its whole lifetime; IDs are never reused
// while a task of that ID could still be referenced.
type TaskID uint32

// TaskPriority is a task's scheduling priority: higher runs first.
type TaskPriority uint8

const (
	LowPriority      TaskPriority = 0
	NormalPriority   TaskPriority = 16
	HighPriority     TaskPriority = 24
	RealtimePriority TaskPriority = consts.NoPriorities - 1
)

// PriorityTaskQueue holds one FIFO ready-queue per priority level and a
// bitmap tracking which levels are non-empty, so picking the next task
// to run is a single bit-scan instead of a scan over all levels.
type PriorityTaskQueue struct {
	queues  [consts.NoPriorities][]*Task
	bitmap  uint32
}

// NewPriorityTaskQueue returns an empty queue.
func NewPriorityTaskQueue() *PriorityTaskQueue {
	return &PriorityTaskQueue{}
}

// Push adds task to the queue at its own priority level.
func (q *PriorityTaskQueue) Push(task *Task) {
	level := int(task.Priority)
	q.bitmap |= 1 << uint(level)
	q.queues[level] = append(q.queues[level], task)
}

func (q *PriorityTaskQueue) popFromLevel(level int) *Task {
	tasks := q.queues[level]
	if len(tasks) == 0 {
		return nil
	}
	task := tasks[0]
	q.queues[level] = tasks[1:]
	if len(q.queues[level]) == 0 {
		q.bitmap &^= 1 << uint(level)
	}
	return task
}

// mostSignificantBit returns the index of the highest set bit in value,
// or -1 if value is zero.
func mostSignificantBit(value uint32) int {
	if value == 0 {
		return -1
	}
	return bits.Len32(value) - 1
}

// Pop removes and returns the highest-priority ready task, or nil if
// the queue is empty.
func (q *PriorityTaskQueue) Pop() *Task {
	if i := mostSignificantBit(q.bitmap); i >= 0 {
		return q.popFromLevel(i)
	}
	return nil
}

// PopWithPriority removes and returns the highest-priority ready task
// only if it is at least as important as priority; otherwise it leaves
// the queue untouched and returns nil. This is how the scheduler decides
// whether to preempt a still-runnable current task.
func (q *PriorityTaskQueue) PopWithPriority(priority TaskPriority) *Task {
	if i := mostSignificantBit(q.bitmap); i >= 0 && i >= int(priority) {
		return q.popFromLevel(i)
	}
	return nil
}
