package voice

import (
	"sync"
	"time"
)

// EndReason records why a call stopped.
type EndReason string

const (
	EndReasonUser    EndReason = "user"
	EndReasonTimeout EndReason = "max_duration"
	EndReasonError   EndReason = "error"
)

// Call is a live voice session for a single profile.
type Call struct {
	Id        string
	ProfileId string
	StartedAt time.Time

	timer *time.Timer
}

// Duration returns how long the call has been running.
func (c *Call) Duration() time.Duration {
	return time.Since(c.StartedAt)
}

// CallTracker keeps the set of active calls and enforces a per-call
// maximum duration. A profile can hold at most one active call; starting
// a new one ends the previous call first.
type CallTracker struct {
	mu    sync.Mutex
	calls map[string]*Call // keyed by call id
	byPro map[string]string

	onEnd func(call *Call, reason EndReason)
}

func NewCallTracker(onEnd func(call *Call, reason EndReason)) *CallTracker {
	return &CallTracker{
		calls: make(map[string]*Call),
		byPro: make(map[string]string),
		onEnd: onEnd,
	}
}

// Start registers a call and arms its max-duration timer.
func (t *CallTracker) Start(callId, profileId string, maxDuration time.Duration) *Call {
	t.mu.Lock()

	if prevId, ok := t.byPro[profileId]; ok {
		if prev, ok := t.calls[prevId]; ok {
			t.endLocked(prev, EndReasonUser)
		}
	}

	call := &Call{
		Id:        callId,
		ProfileId: profileId,
		StartedAt: time.Now(),
	}
	call.timer = time.AfterFunc(maxDuration, func() {
		t.End(callId, EndReasonTimeout)
	})

	t.calls[callId] = call
	t.byPro[profileId] = callId
	t.mu.Unlock()

	return call
}

// End removes a call, stops its timer and fires the end callback.
// Ending an unknown call is a no-op.
func (t *CallTracker) End(callId string, reason EndReason) {
	t.mu.Lock()
	call, ok := t.calls[callId]
	if !ok {
		t.mu.Unlock()
		return
	}
	t.endLocked(call, reason)
	t.mu.Unlock()
}

func (t *CallTracker) endLocked(call *Call, reason EndReason) {
	call.timer.Stop()
	delete(t.calls, call.Id)
	delete(t.byPro, call.ProfileId)
	if t.onEnd != nil {
		// Fire on its own goroutine so the callback may re-enter the tracker.
		go t.onEnd(call, reason)
	}
}

// Active returns the live call for a profile, if any.
func (t *CallTracker) Active(profileId string) (*Call, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	callId, ok := t.byPro[profileId]
	if !ok {
		return nil, false
	}
	call, ok := t.calls[callId]
	return call, ok
}

// Count returns the number of live calls.
func (t *CallTracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.calls)
}
