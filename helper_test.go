package semamu_test

// File helper_test.go contains test helper functionality.

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/neilotoole/semamu"
)

// waitTimeout bounds how long helpers wait for a goroutine
// to be queued or granted.
const waitTimeout = time.Second * 5

// acquireAsync invokes a.Acquire in a new goroutine. The returned
// channel receives Acquire's result.
func acquireAsync(ctx context.Context, a semamu.Acquirer) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Acquire(ctx)
	}()
	return errCh
}

// enqueue invokes s.Acquire in a new goroutine, and returns only after
// that goroutine has joined s's wait queue. This lets tests fix the
// order of waiters.
func enqueue(tb testing.TB, ctx context.Context, s *semamu.Semaphore) <-chan error {
	tb.Helper()

	want := s.Waiting() + 1
	errCh := acquireAsync(ctx, s)
	require.Eventually(tb, func() bool {
		return s.Waiting() == want
	}, waitTimeout, time.Millisecond, "goroutine was not queued")
	return errCh
}

// requireGranted fails if a nil error is not received from
// c within waitTimeout.
func requireGranted(tb testing.TB, c <-chan error, msgAndArgs ...any) {
	tb.Helper()
	select {
	case err := <-c:
		require.NoError(tb, err, msgAndArgs...)
	case <-time.After(waitTimeout):
		require.Fail(tb, "acquire was not granted", msgAndArgs...)
	}
}

// requireErr waits up to waitTimeout for an error from c,
// and returns it. It fails if the value received is nil.
func requireErr(tb testing.TB, c <-chan error, msgAndArgs ...any) error {
	tb.Helper()
	select {
	case err := <-c:
		require.Error(tb, err, msgAndArgs...)
		return err
	case <-time.After(waitTimeout):
		require.Fail(tb, "acquire did not return", msgAndArgs...)
	}
	return nil
}

// requireNoTake fails if a value is taken from c.
func requireNoTake[C any](tb testing.TB, c <-chan C, msgAndArgs ...any) {
	tb.Helper()
	select {
	case <-c:
		require.Fail(tb, "unexpected take from channel", msgAndArgs...)
	default:
	}
}

// requireState checks s's available permits and queue length.
func requireState(tb testing.TB, s *semamu.Semaphore, wantAvail, wantWaiting int) {
	tb.Helper()
	require.Equal(tb, wantAvail, s.Available(), "available permits")
	require.Equal(tb, wantWaiting, s.Waiting(), "waiting")
}

func mustSemaphore(tb testing.TB, n int, opts ...semamu.Option) *semamu.Semaphore {
	tb.Helper()
	s, err := semamu.NewSemaphore(n, opts...)
	require.NoError(tb, err)
	require.NotNil(tb, s)
	return s
}
