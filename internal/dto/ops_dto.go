package dto

import "time"

type SendWelcomeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name"`
}

type RetryUploadsResponse struct {
	Enqueued int `json:"enqueued"`
}

type AlertProxyRequest struct {
	Source   string                 `json:"source" validate:"required"`
	Severity string                 `json:"severity" validate:"required,oneof=info warning critical"`
	Message  string                 `json:"message" validate:"required"`
	Details  map[string]interface{} `json:"details,omitempty"`
}

type CicdAlertRequest struct {
	Pipeline string `json:"pipeline" validate:"required"`
	Status   string `json:"status" validate:"required,oneof=success failure"`
	Commit   string `json:"commit"`
	Url      string `json:"url"`
}

type EscalationResponse struct {
	Scanned   int `json:"scanned"`
	Escalated int `json:"escalated"`
}

type SocialPostDTO struct {
	Id          string    `json:"id"`
	Platform    string    `json:"platform"`
	Author      string    `json:"author"`
	Content     string    `json:"content"`
	Url         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
}
