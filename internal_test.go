package semamu

// internal_test.go contains functions that
// expose internal state for testing.

// SemaphoreState returns s's available permit count and
// wait queue length, read together under s's lock.
func SemaphoreState(s *Semaphore) (avail, waiting int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.avail, s.waiters.Len()
}
