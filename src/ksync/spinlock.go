// Package ksync provides the kernel's own lock types. Go's standard
// sync.Mutex parks the calling goroutine on the runtime scheduler, which
// does not exist here; every lock in this package busy-waits instead, the
// only option below the scheduler itself.
//
// The busy-wait primitive (Pause) and the two interrupt-masking hooks
// (IRQNestedDisable/IRQNestedEnable) are package variables rather than
// direct calls into the arch package, so this package has no import-time
// dependency on raw CPU access: the arch package wires them up from its own
// init function. Until wired, Pause is a no-op and the IRQ hooks are inert,
// which is exactly right for running this package's tests off real
// hardware.
package ksync

// Pause executes one spin-wait iteration (a `pause`/`yield` instruction on
// real hardware). Overwritten by the arch package at startup.
var Pause func() = func() {}

// IRQNestedDisable disables interrupts and returns whether they were
// enabled beforehand, so the caller can restore the prior state exactly.
// Overwritten by the arch package at startup.
var IRQNestedDisable func() bool = func() bool { return false }

// IRQNestedEnable restores the interrupt state returned by a prior call to
// IRQNestedDisable. Overwritten by the arch package at startup.
var IRQNestedEnable func(wasEnabled bool) = func(bool) {}

// RawTicketLock is a FIFO ticket spinlock: callers are served in the order
// they arrived, which keeps acquisition times bounded under contention
// (unlike a bare test-and-set spinlock, which can starve a waiter
// indefinitely).
type RawTicketLock struct {
	queue   uint64
	dequeue uint64
}

// Lock blocks until the caller holds the lock.
func (l *RawTicketLock) Lock() {
	ticket := atomicAdd(&l.queue, 1) - 1
	for atomicLoad(&l.dequeue) != ticket {
		Pause()
	}
}

// TryLock attempts to acquire the lock without blocking.
func (l *RawTicketLock) TryLock() bool {
	current := atomicLoad(&l.dequeue)
	return atomicCAS(&l.queue, current, current+1)
}

// Unlock releases the lock, admitting the next queued ticket.
func (l *RawTicketLock) Unlock() {
	atomicAdd(&l.dequeue, 1)
}

// IsLocked reports whether any ticket is outstanding.
func (l *RawTicketLock) IsLocked() bool {
	return atomicLoad(&l.queue) != atomicLoad(&l.dequeue)
}

// TicketLock guards a value of type T behind a RawTicketLock.
type TicketLock[T any] struct {
	raw  RawTicketLock
	data T
}

// NewTicketLock returns a TicketLock protecting data.
func NewTicketLock[T any](data T) *TicketLock[T] {
	return &TicketLock[T]{data: data}
}

// TicketLockGuard grants exclusive access to the locked value until Unlock
// is called.
type TicketLockGuard[T any] struct {
	lock *TicketLock[T]
}

// Lock blocks until the lock is held and returns a guard for the data.
func (l *TicketLock[T]) Lock() *TicketLockGuard[T] {
	l.raw.Lock()
	return &TicketLockGuard[T]{lock: l}
}

// TryLock attempts to acquire the lock without blocking.
func (l *TicketLock[T]) TryLock() (*TicketLockGuard[T], bool) {
	if !l.raw.TryLock() {
		return nil, false
	}
	return &TicketLockGuard[T]{lock: l}, true
}

// Get returns a pointer to the guarded value.
func (g *TicketLockGuard[T]) Get() *T { return &g.lock.data }

// Unlock releases the lock.
func (g *TicketLockGuard[T]) Unlock() { g.lock.raw.Unlock() }

// RawIRQTicketLock is a ticket lock that also disables interrupts for the
// duration the caller holds it, for data shared with interrupt handlers:
// without this, a handler firing on the same CPU while the lock is held
// would deadlock spinning on a lock its own interrupted context holds.
type RawIRQTicketLock struct {
	queue      uint64
	dequeue    uint64
	wasEnabled bool
}

// Lock disables interrupts, then blocks until the caller holds the lock.
// It returns the pre-lock interrupt state, which the caller passes back to
// Unlock so that state is restored.
func (l *RawIRQTicketLock) Lock() bool {
	wasEnabled := IRQNestedDisable()
	ticket := atomicAdd(&l.queue, 1) - 1

	for atomicLoad(&l.dequeue) != ticket {
		IRQNestedEnable(wasEnabled)
		Pause()
		IRQNestedDisable()
	}

	l.wasEnabled = wasEnabled
	return wasEnabled
}

// TryLock attempts to acquire the lock without blocking, disabling
// interrupts only on success.
func (l *RawIRQTicketLock) TryLock() (bool, bool) {
	wasEnabled := IRQNestedDisable()
	current := atomicLoad(&l.dequeue)
	if atomicCAS(&l.queue, current, current+1) {
		l.wasEnabled = wasEnabled
		return wasEnabled, true
	}
	IRQNestedEnable(wasEnabled)
	return false, false
}

// Unlock releases the lock and restores the interrupt state captured at
// Lock time.
func (l *RawIRQTicketLock) Unlock(wasEnabled bool) {
	atomicAdd(&l.dequeue, 1)
	IRQNestedEnable(wasEnabled)
}

// IsLocked reports whether any ticket is outstanding.
func (l *RawIRQTicketLock) IsLocked() bool {
	return atomicLoad(&l.queue) != atomicLoad(&l.dequeue)
}

// IRQTicketLock guards a value of type T behind a RawIRQTicketLock.
type IRQTicketLock[T any] struct {
	raw  RawIRQTicketLock
	data T
}

// NewIRQTicketLock returns an IRQTicketLock protecting data.
func NewIRQTicketLock[T any](data T) *IRQTicketLock[T] {
	return &IRQTicketLock[T]{data: data}
}

// IRQTicketLockGuard grants exclusive access to the locked value until
// Unlock is called.
type IRQTicketLockGuard[T any] struct {
	lock       *IRQTicketLock[T]
	wasEnabled bool
}

// Lock blocks until the lock is held, disabling interrupts meanwhile, and
// returns a guard for the data.
func (l *IRQTicketLock[T]) Lock() *IRQTicketLockGuard[T] {
	wasEnabled := l.raw.Lock()
	return &IRQTicketLockGuard[T]{lock: l, wasEnabled: wasEnabled}
}

// Get returns a pointer to the guarded value.
func (g *IRQTicketLockGuard[T]) Get() *T { return &g.lock.data }

// Unlock releases the lock and restores interrupts to their pre-lock state.
func (g *IRQTicketLockGuard[T]) Unlock() { g.lock.raw.Unlock(g.wasEnabled) }
