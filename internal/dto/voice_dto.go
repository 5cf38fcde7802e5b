package dto

import (
	"github.com/google/uuid"
)

type TranscribeResponse struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

type SpeakRequest struct {
	Text string `json:"text" validate:"required,max=4000"`
}

// VoiceChatResponse carries the full round trip of one utterance:
// transcript in, assistant text out, synthesized audio of the reply.
type VoiceChatResponse struct {
	ConversationId uuid.UUID `json:"conversation_id"`
	Prompt         string    `json:"prompt"`
	Text           string    `json:"text"`
	Mime           string    `json:"mime"`
	AudioBase64    string    `json:"audio_base64"`
}

type StartCallResponse struct {
	CallId             string `json:"call_id"`
	MaxDurationSeconds int    `json:"max_duration_seconds"`
}

type EndCallRequest struct {
	CallId string `json:"call_id" validate:"required"`
}
