package semamu

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/neilotoole/sq/libsq/core/lg"
)

// Semaphore is a counting semaphore that bounds the number of concurrent
// holders of a resource to a fixed number of permits. Callers that can't
// get a permit are queued, and are granted permits strictly in the order
// in which they called Acquire.
//
// A Semaphore holds no reference to the resource it protects; associating
// the two is the caller's responsibility. A permit is not associated with
// a particular goroutine: one goroutine may acquire and another release.
//
// The zero value is not usable: create a Semaphore with NewSemaphore.
// A Semaphore must not be copied after first use.
type Semaphore struct {
	// log is never nil after NewSemaphore.
	log *slog.Logger

	// name identifies the semaphore in logs and metrics. May be empty.
	name string

	// waiterPool caches waiter channels for reuse. A busy semaphore
	// may queue millions of waiters over its life, and we don't want
	// to allocate a channel for each one.
	waiterPool sync.Pool

	// waiters is the FIFO queue of goroutines blocked in Acquire.
	// The front element is the longest waiter.
	waiters list[waiter]

	// total is the number of permits. It is immutable.
	total int

	// avail is the number of free permits. If avail is positive,
	// waiters is empty.
	avail int

	// mu guards avail and waiters. It is never held while
	// a caller is blocked waiting for a permit.
	mu sync.Mutex
}

// waiter is the handle of a goroutine blocked in Semaphore.Acquire.
// It has capacity 1, and receives exactly one send, when the permit
// is handed over. Thus Release never blocks on the send.
type waiter chan struct{}

func newWaiter() any {
	return waiter(make(chan struct{}, 1))
}

// NewSemaphore returns a new Semaphore with totalPermits permits, all of
// which are initially available. If totalPermits is not positive, an error
// wrapping ErrInvalidArgument is returned.
func NewSemaphore(totalPermits int, opts ...Option) (*Semaphore, error) {
	if totalPermits <= 0 {
		return nil, fmt.Errorf("%w: permit count must be positive, but got %d",
			ErrInvalidArgument, totalPermits)
	}

	s := &Semaphore{}
	s.init(totalPermits, opts...)
	return s, nil
}

// init sets up s with n permits. It is invoked by NewSemaphore, and
// lazily by Mutex so that the zero value of Mutex is usable.
func (s *Semaphore) init(n int, opts ...Option) {
	s.total = n
	s.avail = n
	s.waiterPool.New = newWaiter
	for _, opt := range opts {
		opt(s)
	}

	if s.log == nil {
		s.log = lg.Discard()
	}
	if s.name != "" {
		s.log = s.log.With("sema", s.name)
	}
}

// Acquire acquires a permit. If a permit is available, Acquire takes it
// and returns immediately. Otherwise the calling goroutine joins the back
// of the wait queue, and blocks until Release hands it a permit, or until
// ctx is done.
//
// On cancellation, the caller is removed from the queue, the semaphore is
// otherwise unchanged, and Acquire returns context.Cause(ctx). If ctx is
// already done, Acquire may still succeed without blocking.
func (s *Semaphore) Acquire(ctx context.Context) error {
	s.mu.Lock()
	if s.avail > 0 {
		s.avail--
		s.mu.Unlock()
		return nil
	}

	if ctx.Err() != nil {
		s.mu.Unlock()
		return context.Cause(ctx)
	}

	w := s.waiterPool.Get().(waiter)
	elem := s.waiters.PushBack(w)
	s.log.Debug("Acquire: enqueued", "waiting", s.waiters.Len())
	s.mu.Unlock()

	select {
	case <-w:
		s.waiterPool.Put(w)
		return nil
	case <-ctx.Done():
	}

	err := context.Cause(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.waiters.Remove(elem) {
		// Release already dequeued us and handed over the permit, after
		// ctx was done. We won't use it, so it goes to the next in line.
		<-w
		s.log.Debug("Acquire: canceled after grant, passing permit on")
		_ = s.releaseLocked()
	} else {
		s.log.Debug("Acquire: canceled", "waiting", s.waiters.Len())
	}

	s.waiterPool.Put(w)
	return err
}

// TryAcquire acquires a permit without blocking, and reports whether it
// succeeded. It fails if any goroutine is queued, since a queued goroutine
// implies no permit is free.
func (s *Semaphore) TryAcquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.avail > 0 {
		s.avail--
		return true
	}
	return false
}

// Release releases a permit. If goroutines are queued, the permit is
// handed directly to the longest waiter, whose Acquire call then returns,
// and the available count does not change. Otherwise the permit returns
// to the pool.
//
// Release never blocks. If there are no waiters and all permits are
// already available, Release returns ErrOverRelease and changes nothing.
func (s *Semaphore) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.releaseLocked(); err != nil {
		s.log.Warn("Release: no permit held", "total", s.total)
		return err
	}
	return nil
}

// releaseLocked implements Release. The queue is consulted before the
// counter: that order is what makes grants strictly FIFO.
// The caller must hold s.mu.
func (s *Semaphore) releaseLocked() error {
	if e := s.waiters.Front(); e != nil {
		s.waiters.Remove(e)
		e.Value <- struct{}{}
		s.log.Debug("Release: handed permit to waiter", "waiting", s.waiters.Len())
		return nil
	}

	if s.avail >= s.total {
		return ErrOverRelease
	}

	s.avail++
	return nil
}

// Hold acquires a permit as Acquire does, and returns a function that
// releases it. Only the first call of the returned function has effect,
// so it is safe to both defer it and invoke it early.
func (s *Semaphore) Hold(ctx context.Context) (ReleaseFunc, error) {
	if err := s.Acquire(ctx); err != nil {
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// The only way this can fail is if the caller also released
			// via Release, which Release has already logged.
			_ = s.Release()
		})
	}, nil
}

// Available returns the number of free permits.
func (s *Semaphore) Available() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.avail
}

// Waiting returns the number of goroutines queued in Acquire.
func (s *Semaphore) Waiting() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waiters.Len()
}

// Total returns the number of permits the semaphore was created with.
func (s *Semaphore) Total() int {
	return s.total
}

// Name returns the name set via WithName, or empty string.
func (s *Semaphore) Name() string {
	return s.name
}
