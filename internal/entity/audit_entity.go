package entity

import (
	"time"

	"github.com/google/uuid"
)

type WebhookStatus string
type EmailStatus string

const (
	WebhookStatusProcessed WebhookStatus = "processed"
	WebhookStatusRejected  WebhookStatus = "rejected"
	WebhookStatusFailed    WebhookStatus = "failed"
	WebhookStatusSkipped   WebhookStatus = "skipped"

	EmailStatusSent   EmailStatus = "sent"
	EmailStatusFailed EmailStatus = "failed"
)

// WebhookLog is written once per inbound webhook delivery, including
// deliveries rejected for a bad signature.
type WebhookLog struct {
	Id             uuid.UUID
	Provider       string
	EventType      string
	ExternalId     string
	SignatureValid bool
	Status         WebhookStatus
	Payload        []byte // raw JSON body as received
	Error          string
	CreatedAt      time.Time
}

// RetryLog tracks a failed upload (or other retried resource) across
// background retry attempts.
type RetryLog struct {
	Id         uuid.UUID
	Resource   string
	ResourceId string
	Attempts   int
	LastError  string
	ResolvedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type EmailLog struct {
	Id                uuid.UUID
	Recipient         string
	Template          string
	Status            EmailStatus
	ProviderMessageId string
	Error             string
	CreatedAt         time.Time
}
