package voice

import (
	"sync"
	"time"
)

// TimeoutSet tracks named timers for a session so they can all be
// cancelled at once when the session ends. A second Set with the same
// name replaces the pending timer.
type TimeoutSet struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewTimeoutSet() *TimeoutSet {
	return &TimeoutSet{
		timers: make(map[string]*time.Timer),
	}
}

// Set arms a timer under the given name. The callback removes itself
// from the set before running.
func (s *TimeoutSet) Set(name string, d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.timers[name]; ok {
		prev.Stop()
	}
	s.timers[name] = time.AfterFunc(d, func() {
		s.mu.Lock()
		delete(s.timers, name)
		s.mu.Unlock()
		fn()
	})
}

// Clear stops a single pending timer. It reports whether the timer was
// still pending.
func (s *TimeoutSet) Clear(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	timer, ok := s.timers[name]
	if !ok {
		return false
	}
	delete(s.timers, name)
	return timer.Stop()
}

// StopAll cancels every pending timer. Used on teardown so nothing
// fires after the session is gone.
func (s *TimeoutSet) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for name, timer := range s.timers {
		timer.Stop()
		delete(s.timers, name)
	}
}

// Pending returns the number of armed timers.
func (s *TimeoutSet) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
