package ratelimit

import (
	"testing"
	"time"
)

func TestAllowWithinLimit(t *testing.T) {
	l := New(time.Minute)

	for i := 0; i < 5; i++ {
		if !l.Allow("user-1", 5) {
			t.Fatalf("hit %d rejected, want allowed", i+1)
		}
	}
	if l.Allow("user-1", 5) {
		t.Error("hit 6 allowed, want rejected")
	}
	if got := l.Remaining("user-1", 5); got != 0 {
		t.Errorf("remaining = %d, want 0", got)
	}
}

func TestKeysAreIndependent(t *testing.T) {
	l := New(time.Minute)

	for i := 0; i < 3; i++ {
		l.Allow("user-1", 3)
	}
	if l.Allow("user-1", 3) {
		t.Error("user-1 over limit was allowed")
	}
	if !l.Allow("user-2", 3) {
		t.Error("user-2 first hit rejected")
	}
}

func TestWindowResets(t *testing.T) {
	l := New(20 * time.Millisecond)

	l.Allow("user-1", 1)
	if l.Allow("user-1", 1) {
		t.Error("second hit in window allowed")
	}

	time.Sleep(30 * time.Millisecond)

	if !l.Allow("user-1", 1) {
		t.Error("hit after window reset rejected")
	}
}

func TestReset(t *testing.T) {
	l := New(time.Minute)

	l.Allow("user-1", 1)
	l.Reset("user-1")

	if !l.Allow("user-1", 1) {
		t.Error("hit after Reset rejected")
	}
}
