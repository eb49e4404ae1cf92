package repository

import (
	"sync"
	"testing"
)

// TestLockRegistry_SerializesSameName tests that writers under one name are
// mutually exclusive.
func TestLockRegistry_SerializesSameName(t *testing.T) {
	reg := newLockRegistry()
	const writers = 100

	counter := 0
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			unlock := reg.lock("shared")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	if counter != writers {
		t.Errorf("Expected counter %d, got %d", writers, counter)
	}
}

// TestLockRegistry_IndependentNames tests that different names never block
// each other.
func TestLockRegistry_IndependentNames(t *testing.T) {
	reg := newLockRegistry()

	unlockA := reg.lock("a")
	// Would deadlock the test if "b" shared "a"'s lock.
	unlockB := reg.lock("b")

	unlockB()
	unlockA()
}

// TestLockRegistry_Cleanup tests that idle entries are removed, keeping the
// registry bounded.
func TestLockRegistry_Cleanup(t *testing.T) {
	reg := newLockRegistry()

	unlock := reg.lock("transient")
	unlock()

	reg.mu.Lock()
	size := len(reg.locks)
	reg.mu.Unlock()
	if size != 0 {
		t.Errorf("Expected empty registry after release, got %d entries", size)
	}
}

// TestLockRegistry_Reacquire tests that a name can be locked again after
// its entry was cleaned up.
func TestLockRegistry_Reacquire(t *testing.T) {
	reg := newLockRegistry()

	unlock := reg.lock("again")
	unlock()
	unlock = reg.lock("again")
	unlock()
}
