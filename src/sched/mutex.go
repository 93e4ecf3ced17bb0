package sched

import "ksync"

// Mutex is a blocking mutual-exclusion lock: a task that cannot acquire
// it is taken off the ready queue entirely (via BlockCurrentTask)
// instead of busy-waiting, unlike the IRQ-safe spinlocks in ksync. It
// lives here rather than in ksync because unlocking a contended Mutex
// needs to wake a specific waiting task, which only the scheduler can
// do.
type Mutex[T any] struct {
	lock  ksync.RawIRQTicketLock
	state bool
	ready *PriorityTaskQueue
	data  T
}

// NewMutex returns an unlocked mutex guarding value.
func NewMutex[T any](value T) *Mutex[T] {
	return &Mutex[T]{state: true, ready: NewPriorityTaskQueue(), data: value}
}

// MutexGuard grants exclusive access to a Mutex's data until Unlock is
// called.
type MutexGuard[T any] struct {
	m *Mutex[T]
}

func (m *Mutex[T]) obtainLock() {
	for {
		wasEnabled := m.lock.Lock()
		if m.state {
			m.state = false
			m.lock.Unlock(wasEnabled)
			return
		}
		// Still holding the lock: a concurrent Unlock can't observe the
		// queue empty and skip waking us between the state check above
		// and the enqueue below.
		m.ready.Push(BlockCurrentTask())
		m.lock.Unlock(wasEnabled)

		Reschedule()
	}
}

// Lock blocks the current task until the mutex is free, then returns a
// guard granting access to the protected value.
func (m *Mutex[T]) Lock() *MutexGuard[T] {
	m.obtainLock()
	return &MutexGuard[T]{m: m}
}

// Get returns a pointer to the protected value; valid only while the
// guard is held.
func (g *MutexGuard[T]) Get() *T { return &g.m.data }

// Unlock releases the mutex and wakes one waiting task, if any.
func (g *MutexGuard[T]) Unlock() {
	wasEnabled := g.m.lock.Lock()
	g.m.state = true
	next := g.m.ready.Pop()
	g.m.lock.Unlock(wasEnabled)

	if next != nil {
		WakeupTask(next)
	}
}
