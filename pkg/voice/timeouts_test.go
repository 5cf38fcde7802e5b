package voice

import (
	"testing"
	"time"
)

func TestTimeoutSetFiresAndRemoves(t *testing.T) {
	set := NewTimeoutSet()
	fired := make(chan struct{})

	set.Set("silence", 10*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}

	// Give the callback a beat to remove itself.
	time.Sleep(10 * time.Millisecond)
	if set.Pending() != 0 {
		t.Errorf("pending = %d, want 0", set.Pending())
	}
}

func TestTimeoutSetReplaceAndClear(t *testing.T) {
	set := NewTimeoutSet()
	fired := make(chan string, 2)

	set.Set("silence", time.Hour, func() { fired <- "old" })
	set.Set("silence", time.Hour, func() { fired <- "new" })

	if set.Pending() != 1 {
		t.Errorf("pending = %d, want 1", set.Pending())
	}
	if !set.Clear("silence") {
		t.Error("Clear returned false for a pending timer")
	}
	if set.Clear("silence") {
		t.Error("Clear returned true for a cleared timer")
	}

	select {
	case id := <-fired:
		t.Errorf("cleared timer %q fired anyway", id)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestTimeoutSetStopAll(t *testing.T) {
	set := NewTimeoutSet()
	fired := make(chan struct{}, 3)

	set.Set("a", 30*time.Millisecond, func() { fired <- struct{}{} })
	set.Set("b", 30*time.Millisecond, func() { fired <- struct{}{} })
	set.Set("c", 30*time.Millisecond, func() { fired <- struct{}{} })

	set.StopAll()

	if set.Pending() != 0 {
		t.Errorf("pending = %d, want 0", set.Pending())
	}

	select {
	case <-fired:
		t.Error("timer fired after StopAll")
	case <-time.After(60 * time.Millisecond):
	}
}
