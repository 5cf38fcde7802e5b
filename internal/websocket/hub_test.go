package websocket

import (
	"testing"
	"time"

	"atlas-be/internal/entity"

	"github.com/google/uuid"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

func (h *Hub) clientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, clients := range h.clients {
		n += len(clients)
	}
	return n
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

// A client whose Send buffer is already full gets dropped, and its
// channel is closed exactly once even when it also unregisters itself.
func TestHubDropsStalledClientOnce(t *testing.T) {
	hub := NewHub(nil, nopLogger{})
	go hub.Run()

	stalled := &Client{
		Hub:       hub,
		ProfileID: uuid.New(),
		Send:      make(chan []byte), // unbuffered: every send stalls
	}
	hub.register <- stalled
	waitFor(t, func() bool { return hub.clientCount() == 1 })

	hub.Broadcast(entity.Notification{Id: uuid.New(), Title: "first"})
	waitFor(t, func() bool { return hub.clientCount() == 0 })

	// The closed channel must be drained, as writePump does on shutdown.
	if _, ok := <-stalled.Send; ok {
		t.Fatal("expected Send channel to be closed after drop")
	}

	// A second broadcast must not panic the hub goroutine.
	hub.Broadcast(entity.Notification{Id: uuid.New(), Title: "second"})

	healthy := &Client{
		Hub:       hub,
		ProfileID: uuid.New(),
		Send:      make(chan []byte, 8),
	}
	hub.register <- healthy
	waitFor(t, func() bool { return hub.clientCount() == 1 })

	hub.Send(healthy.ProfileID, entity.Notification{Id: uuid.New(), Title: "third"})
	select {
	case msg := <-healthy.Send:
		if len(msg) == 0 {
			t.Fatal("empty payload delivered")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("hub stopped delivering after dropping a stalled client")
	}
}

// A stalled client that later unregisters itself (as readPump does on
// disconnect) must not hit a second close.
func TestHubUnregisterAfterDropIsNoop(t *testing.T) {
	hub := NewHub(nil, nopLogger{})
	go hub.Run()

	client := &Client{
		Hub:       hub,
		ProfileID: uuid.New(),
		Send:      make(chan []byte),
	}
	hub.register <- client
	waitFor(t, func() bool { return hub.clientCount() == 1 })

	hub.Send(client.ProfileID, entity.Notification{Id: uuid.New()})
	waitFor(t, func() bool { return hub.clientCount() == 0 })

	// readPump's deferred unregister fires after the hub already
	// dropped the client.
	hub.unregister <- client

	// The hub goroutine must still be serving registrations.
	replacement := &Client{
		Hub:       hub,
		ProfileID: uuid.New(),
		Send:      make(chan []byte, 1),
	}
	hub.register <- replacement
	waitFor(t, func() bool { return hub.clientCount() == 1 })
}
