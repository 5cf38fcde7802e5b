package entity

import (
	"time"

	"github.com/google/uuid"
)

// Notification targets a single profile, or everyone when ProfileId is the
// zero uuid (broadcasts are push-only and not persisted per user).
type Notification struct {
	Id        uuid.UUID
	ProfileId uuid.UUID
	TypeCode  string // "MESSAGE_CREATED", "SUBSCRIPTION_ACTIVATED", "ESCALATION_RAISED", ...
	Title     string
	Message   string
	Metadata  map[string]interface{}
	IsRead    bool
	CreatedAt time.Time
}
