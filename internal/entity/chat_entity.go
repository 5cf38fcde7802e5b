package entity

import (
	"time"

	"github.com/google/uuid"
)

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

type Conversation struct {
	Id        uuid.UUID
	ProfileId uuid.UUID
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// Message is an append-only chat record. Ids may be client-supplied so the
// same message replayed from an offline queue stays a single row.
type Message struct {
	Id             uuid.UUID
	ConversationId uuid.UUID
	Role           MessageRole
	Content        string
	Model          string // provider model that produced an assistant message
	CreatedAt      time.Time
}
