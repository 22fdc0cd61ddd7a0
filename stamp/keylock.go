package stamp

import "sync"

// keyLocks hands out one RWMutex per course key. Entries live only while
// someone holds or waits for them.
type keyLocks struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	sync.RWMutex
	refs int
}

func newKeyLocks() *keyLocks {
	return &keyLocks{locks: make(map[string]*keyLock)}
}

func (l *keyLocks) acquire(key string) *keyLock {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.locks[key]
	if !ok {
		e = &keyLock{}
		l.locks[key] = e
	}
	e.refs++
	return e
}

func (l *keyLocks) release(key string, e *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
}

// Lock takes the exclusive lock for key and returns its unlock func.
func (l *keyLocks) Lock(key string) func() {
	e := l.acquire(key)
	e.Lock()
	return func() {
		e.Unlock()
		l.release(key, e)
	}
}

// RLock takes the shared lock for key and returns its unlock func.
func (l *keyLocks) RLock(key string) func() {
	e := l.acquire(key)
	e.RLock()
	return func() {
		e.RUnlock()
		l.release(key, e)
	}
}

func (l *keyLocks) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
