package ksync

import (
	"testing"
)

func TestTicketLockMutualExclusion(t *testing.T) {
	lock := NewTicketLock(0)

	const goroutines = 8
	const increments = 1000

	done := make(chan struct{})
	for i := 0; i < goroutines; i++ {
		go func() {
			for j := 0; j < increments; j++ {
				g := lock.Lock()
				*g.Get()++
				g.Unlock()
			}
			done <- struct{}{}
		}()
	}
	for i := 0; i < goroutines; i++ {
		<-done
	}

	g := lock.Lock()
	if got := *g.Get(); got != goroutines*increments {
		t.Fatalf("got %d, want %d", got, goroutines*increments)
	}
	g.Unlock()
}

func TestTicketLockTryLock(t *testing.T) {
	lock := NewTicketLock(struct{}{})

	g, ok := lock.TryLock()
	if !ok {
		t.Fatal("TryLock on uncontended lock failed")
	}
	if _, ok := lock.TryLock(); ok {
		t.Fatal("TryLock succeeded while already held")
	}
	g.Unlock()

	if _, ok := lock.TryLock(); !ok {
		t.Fatal("TryLock failed after unlock")
	}
}

func TestIRQTicketLockRestoresState(t *testing.T) {
	var disabled, enabled int
	IRQNestedDisable = func() bool { disabled++; return true }
	IRQNestedEnable = func(bool) { enabled++ }
	defer func() {
		IRQNestedDisable = func() bool { return false }
		IRQNestedEnable = func(bool) {}
	}()

	lock := NewIRQTicketLock(42)
	g := lock.Lock()
	if *g.Get() != 42 {
		t.Fatalf("got %d, want 42", *g.Get())
	}
	g.Unlock()

	if disabled != 1 || enabled != 1 {
		t.Fatalf("disabled=%d enabled=%d, want 1 and 1", disabled, enabled)
	}
}

func TestRWLockAllowsConcurrentReaders(t *testing.T) {
	lock := NewRWLock(5)

	r1 := lock.RLock()
	r2 := lock.RLock()
	if *r1.Get() != 5 || *r2.Get() != 5 {
		t.Fatal("unexpected value under shared read lock")
	}
	r1.Unlock()
	r2.Unlock()

	w := lock.Lock()
	*w.Get() = 6
	w.Unlock()

	r := lock.RLock()
	if *r.Get() != 6 {
		t.Fatalf("got %d, want 6", *r.Get())
	}
	r.Unlock()
}

func TestRWLockWriteIsExclusive(t *testing.T) {
	lock := NewRWLock(0)
	w := lock.Lock()
	if lock.raw.TryReadLock() {
		t.Fatal("read lock acquired while writer held the lock")
	}
	w.Unlock()
	if !lock.raw.TryReadLock() {
		t.Fatal("read lock should succeed once writer releases")
	}
	lock.raw.ReadUnlock()
}
