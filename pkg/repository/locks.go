package repository

import "sync"

// lockRegistry hands out one exclusive lock per name. Writers to the
// same archive serialize on its lock; writers to different archives
// never block each other. Entries are reference-counted and removed when
// idle, so the registry stays bounded no matter how many names a test
// run touches.
type lockRegistry struct {
	mu    sync.Mutex
	locks map[string]*namedLock
}

type namedLock struct {
	mu   sync.Mutex
	refs int
}

func newLockRegistry() *lockRegistry {
	return &lockRegistry{locks: make(map[string]*namedLock)}
}

// lock acquires the exclusive lock for name and returns the matching
// release. The release must be called exactly once, on every path out of
// the critical section.
func (r *lockRegistry) lock(name string) (unlock func()) {
	r.mu.Lock()
	l, ok := r.locks[name]
	if !ok {
		l = &namedLock{}
		r.locks[name] = l
	}
	l.refs++
	r.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		r.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(r.locks, name)
		}
		r.mu.Unlock()
	}
}
