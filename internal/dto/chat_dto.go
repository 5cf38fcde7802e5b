package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateConversationRequest struct {
	Title string `json:"title" validate:"max=200"`
}

type CreateConversationResponse struct {
	Id uuid.UUID `json:"id"`
}

type ConversationResponse struct {
	Id        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type MessageDTO struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Model     string    `json:"model,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type SendChatRequest struct {
	ConversationId uuid.UUID `json:"conversation_id" validate:"required"`
	// MessageId lets a client resend the same message after a dropped
	// connection without creating a duplicate row.
	MessageId uuid.UUID `json:"message_id,omitempty"`
	Content   string    `json:"content" validate:"required,max=32000"`
}

type SendChatResponse struct {
	ConversationId uuid.UUID   `json:"conversation_id"`
	Sent           *MessageDTO `json:"sent"`
	Reply          *MessageDTO `json:"reply"`
	Duplicate      bool        `json:"duplicate,omitempty"`
}

// UploadMessagesRequest is the payload of a replayed offline queue.
type UploadMessagesRequest struct {
	ConversationId uuid.UUID          `json:"conversation_id" validate:"required"`
	Messages       []UploadMessageDTO `json:"messages" validate:"required,min=1,max=100,dive"`
}

type UploadMessageDTO struct {
	Id        uuid.UUID `json:"id" validate:"required"`
	Role      string    `json:"role" validate:"required,oneof=user assistant"`
	Content   string    `json:"content" validate:"required,max=32000"`
	CreatedAt time.Time `json:"created_at" validate:"required"`
}

type UploadMessagesResponse struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}
