package voice

import (
	"sync"
	"testing"
	"time"
)

func TestCallTrackerMaxDuration(t *testing.T) {
	var mu sync.Mutex
	var gotReason EndReason
	var gotCallId string
	done := make(chan struct{})

	tracker := NewCallTracker(func(call *Call, reason EndReason) {
		mu.Lock()
		gotReason = reason
		gotCallId = call.Id
		mu.Unlock()
		close(done)
	})

	tracker.Start("call-1", "profile-1", 20*time.Millisecond)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("max duration timer never fired")
	}

	mu.Lock()
	defer mu.Unlock()
	if gotReason != EndReasonTimeout {
		t.Errorf("reason = %q, want %q", gotReason, EndReasonTimeout)
	}
	if gotCallId != "call-1" {
		t.Errorf("call id = %q, want call-1", gotCallId)
	}
	if tracker.Count() != 0 {
		t.Errorf("count = %d, want 0", tracker.Count())
	}
}

func TestCallTrackerManualEnd(t *testing.T) {
	done := make(chan EndReason, 1)
	tracker := NewCallTracker(func(call *Call, reason EndReason) {
		done <- reason
	})

	tracker.Start("call-1", "profile-1", time.Hour)
	tracker.End("call-1", EndReasonUser)

	select {
	case reason := <-done:
		if reason != EndReasonUser {
			t.Errorf("reason = %q, want %q", reason, EndReasonUser)
		}
	case <-time.After(time.Second):
		t.Fatal("end callback never fired")
	}

	// Ending twice is a no-op.
	tracker.End("call-1", EndReasonUser)
	if tracker.Count() != 0 {
		t.Errorf("count = %d, want 0", tracker.Count())
	}
}

func TestCallTrackerOneCallPerProfile(t *testing.T) {
	ended := make(chan string, 2)
	tracker := NewCallTracker(func(call *Call, reason EndReason) {
		ended <- call.Id
	})

	tracker.Start("call-1", "profile-1", time.Hour)
	tracker.Start("call-2", "profile-1", time.Hour)

	select {
	case id := <-ended:
		if id != "call-1" {
			t.Errorf("ended call = %q, want call-1", id)
		}
	case <-time.After(time.Second):
		t.Fatal("starting a second call did not end the first")
	}

	active, ok := tracker.Active("profile-1")
	if !ok || active.Id != "call-2" {
		t.Errorf("active call = %+v, want call-2", active)
	}
	if tracker.Count() != 1 {
		t.Errorf("count = %d, want 1", tracker.Count())
	}
}
