package ratelimit

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

type window struct {
	count   int
	resetAt time.Time
}

// Limiter is a fixed-window in-memory rate limiter. Windows live in a
// go-cache so stale entries for idle keys get purged automatically.
type Limiter struct {
	mu      sync.Mutex
	windows *cache.Cache
	period  time.Duration
}

func New(period time.Duration) *Limiter {
	return &Limiter{
		windows: cache.New(2*period, 10*time.Minute),
		period:  period,
	}
}

// Allow records a hit for key and reports whether it stays within
// limit for the current window.
func (l *Limiter) Allow(key string, limit int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	var w *window
	if x, found := l.windows.Get(key); found {
		w = x.(*window)
	}
	if w == nil || now.After(w.resetAt) {
		w = &window{resetAt: now.Add(l.period)}
		l.windows.Set(key, w, cache.DefaultExpiration)
	}

	if w.count >= limit {
		return false
	}
	w.count++
	return true
}

// Remaining returns how many hits are left in the current window.
func (l *Limiter) Remaining(key string, limit int) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if x, found := l.windows.Get(key); found {
		w := x.(*window)
		if time.Now().Before(w.resetAt) {
			left := limit - w.count
			if left < 0 {
				return 0
			}
			return left
		}
	}
	return limit
}

// Reset drops the window for key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.windows.Delete(key)
}
