package semamu

import (
	"context"
	"sync"
)

var _ sync.Locker = (*Mutex)(nil)

// Mutex is a mutual exclusion lock whose waiters acquire the lock in
// FIFO order. It is a Semaphore with a single permit.
//
// Mutex implements the same method set as sync.Mutex (Lock, Unlock and
// TryLock), so it can be used as a drop-in replacement; Acquire, Release
// and LockContext additionally report errors instead of panicking or
// blocking forever.
//
// A locked Mutex is not associated with a particular goroutine. It is
// allowed for one goroutine to lock a Mutex and then arrange for another
// goroutine to unlock it. Mutex is not reentrant.
//
// The zero value for a Mutex is an unlocked mutex, so a Mutex can be
// embedded in a struct without initialization. Use NewMutex to set
// options. A Mutex must not be copied after first use.
type Mutex struct {
	// once guards the lazy init of sema.
	once sync.Once
	sema Semaphore
}

// NewMutex returns a new, unlocked Mutex.
func NewMutex(opts ...Option) *Mutex {
	m := &Mutex{}
	m.once.Do(func() {
		m.sema.init(1, opts...)
	})
	return m
}

// semaphore returns m's single-permit semaphore, initializing it
// on first use if m was not created by NewMutex.
func (m *Mutex) semaphore() *Semaphore {
	m.once.Do(func() {
		m.sema.init(1)
	})
	return &m.sema
}

// IsLocked reports whether m is currently held.
func (m *Mutex) IsLocked() bool {
	return m.semaphore().Available() == 0
}

// Acquire locks m, blocking until the lock is available or ctx is done.
// On cancellation it returns context.Cause(ctx) and m is unchanged.
func (m *Mutex) Acquire(ctx context.Context) error {
	return m.semaphore().Acquire(ctx)
}

// LockContext is a synonym for Acquire.
func (m *Mutex) LockContext(ctx context.Context) error {
	return m.semaphore().Acquire(ctx)
}

// Release unlocks m. If goroutines are waiting, the lock passes directly
// to the one that has waited longest. If m is not locked, Release returns
// ErrOverRelease.
func (m *Mutex) Release() error {
	return m.semaphore().Release()
}

// Hold locks m, and returns a function that unlocks it.
// See Semaphore.Hold.
func (m *Mutex) Hold(ctx context.Context) (ReleaseFunc, error) {
	return m.semaphore().Hold(ctx)
}

// Lock locks m. If the lock is already in use, the calling goroutine
// blocks until the mutex is available.
func (m *Mutex) Lock() {
	_ = m.semaphore().Acquire(context.Background())
}

// TryLock tries to lock m and reports whether it succeeded.
func (m *Mutex) TryLock() bool {
	return m.semaphore().TryAcquire()
}

// Unlock unlocks m.
// It is a run-time error if m is not locked on entry to Unlock.
func (m *Mutex) Unlock() {
	if err := m.semaphore().Release(); err != nil {
		panic("semamu: unlock of unlocked mutex")
	}
}

// Waiting returns the number of goroutines waiting to lock m.
func (m *Mutex) Waiting() int {
	return m.semaphore().Waiting()
}

// Semaphore returns m's underlying single-permit semaphore,
// for example to pass to NewCollector.
func (m *Mutex) Semaphore() *Semaphore {
	return m.semaphore()
}
