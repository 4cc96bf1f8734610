// Package semamu provides a counting Semaphore, and a Mutex built on it,
// whose waiters are granted access in strict FIFO order.
//
// When a permit is released and goroutines are waiting, the permit is
// handed directly to the goroutine that has waited longest, rather than
// being returned to the pool. A later caller can therefore never jump the
// queue ahead of an earlier one, even if it arrives between the release
// and the moment the woken waiter resumes.
//
// Note that sync.Mutex makes no such promise. Its starvation mode only
// kicks in after a waiter has failed to acquire the lock for more than
// 1ms, and the x/sync semaphore.Weighted doesn't track a Mutex-style
// locked state. Performance of semamu is worse than sync.Mutex, so it
// should only be used when fairness is required.
//
// The entrypoints to this package are NewSemaphore and NewMutex.
package semamu

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrInvalidArgument is returned by NewSemaphore when the permit
// count is not positive.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrOverRelease is returned by Semaphore.Release and Mutex.Release when
// there is nothing to release: no waiters are queued and every permit is
// already available. The semaphore's state is left unchanged.
var ErrOverRelease = errors.New("released more than held")

// Option configures a Semaphore or Mutex.
type Option func(*Semaphore)

// WithLogger sets the logger. If log is nil, logging is discarded.
func WithLogger(log *slog.Logger) Option {
	return func(s *Semaphore) {
		s.log = log
	}
}

// WithName sets a name that identifies the semaphore in log records
// and metrics.
func WithName(name string) Option {
	return func(s *Semaphore) {
		s.name = name
	}
}

// ReleaseFunc is returned by Semaphore.Hold and Mutex.Hold. The first
// invocation releases the held permit; subsequent invocations are no-op.
type ReleaseFunc func()

// Acquirer is the acquire/release method set shared by
// Semaphore and Mutex.
type Acquirer interface {
	Acquire(ctx context.Context) error
	Release() error
}

var (
	_ Acquirer = (*Semaphore)(nil)
	_ Acquirer = (*Mutex)(nil)
)

// Do acquires a, invokes fn, and releases a. The release happens on every
// exit path from fn, including a panic. If a can't be acquired, fn is not
// invoked and the acquire error is returned. A release error is joined
// with fn's error.
func Do(ctx context.Context, a Acquirer, fn func() error) (err error) {
	if err = a.Acquire(ctx); err != nil {
		return err
	}

	defer func() {
		if releaseErr := a.Release(); releaseErr != nil {
			err = errors.Join(err, fmt.Errorf("release: %w", releaseErr))
		}
	}()

	return fn()
}
