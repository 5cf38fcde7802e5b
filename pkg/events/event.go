package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "MESSAGE_CREATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the generic implementation used by all publishers.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Event type codes published on the bus.
const (
	TypeMessageCreated      = "MESSAGE_CREATED"
	TypeSubscriptionChanged = "SUBSCRIPTION_CHANGED"
	TypePaymentFailed       = "PAYMENT_FAILED"
	TypeCallEnded           = "CALL_ENDED"
	TypeEscalationRaised    = "ESCALATION_RAISED"
)

func NewMessageCreated(conversationID, messageID, profileID, role string) BaseEvent {
	return BaseEvent{
		Type: TypeMessageCreated,
		Data: map[string]interface{}{
			"conversation_id": conversationID,
			"message_id":      messageID,
			"profile_id":      profileID,
			"role":            role,
		},
		OccurredAt: time.Now(),
	}
}

func NewSubscriptionChanged(profileID, provider, externalID, tier, status string) BaseEvent {
	return BaseEvent{
		Type: TypeSubscriptionChanged,
		Data: map[string]interface{}{
			"profile_id":  profileID,
			"provider":    provider,
			"external_id": externalID,
			"tier":        tier,
			"status":      status,
		},
		OccurredAt: time.Now(),
	}
}

func NewPaymentFailed(profileID, provider, externalID string) BaseEvent {
	return BaseEvent{
		Type: TypePaymentFailed,
		Data: map[string]interface{}{
			"profile_id":  profileID,
			"provider":    provider,
			"external_id": externalID,
		},
		OccurredAt: time.Now(),
	}
}

func NewCallEnded(profileID, callID, reason string, durationSeconds float64) BaseEvent {
	return BaseEvent{
		Type: TypeCallEnded,
		Data: map[string]interface{}{
			"profile_id":       profileID,
			"call_id":          callID,
			"reason":           reason,
			"duration_seconds": durationSeconds,
		},
		OccurredAt: time.Now(),
	}
}

func NewEscalationRaised(profileID, conversationID, summary string) BaseEvent {
	return BaseEvent{
		Type: TypeEscalationRaised,
		Data: map[string]interface{}{
			"profile_id":      profileID,
			"conversation_id": conversationID,
			"summary":         summary,
		},
		OccurredAt: time.Now(),
	}
}
