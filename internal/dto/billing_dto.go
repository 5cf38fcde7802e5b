package dto

import "time"

// --- FastSpring webhook payloads ---

// FastSpringWebhook is the envelope FastSpring posts: a batch of events
// processed independently.
type FastSpringWebhook struct {
	Events []FastSpringEvent `json:"events"`
}

type FastSpringEvent struct {
	Id   string              `json:"id"`
	Type string              `json:"type"`
	Data FastSpringEventData `json:"data"`
}

type FastSpringEventData struct {
	Id      string `json:"id"`
	State   string `json:"state"`
	Product string `json:"product"`
	Account struct {
		Id      string `json:"id"`
		Contact struct {
			Email string `json:"email"`
			First string `json:"first"`
			Last  string `json:"last"`
		} `json:"contact"`
	} `json:"account"`
	NextPeriodDate string `json:"next"`
	Tags           struct {
		ProfileId string `json:"profile_id"`
	} `json:"tags"`
}

// --- Paddle webhook payloads ---

type PaddleWebhook struct {
	EventId   string     `json:"event_id"`
	EventType string     `json:"event_type"`
	Data      PaddleData `json:"data"`
}

type PaddleData struct {
	Id         string       `json:"id"`
	Status     string       `json:"status"`
	CustomerId string       `json:"customer_id"`
	Items      []PaddleItem `json:"items"`
	CustomData struct {
		ProfileId string `json:"profile_id"`
		Email     string `json:"email"`
	} `json:"custom_data"`
	CurrentBillingPeriod struct {
		EndsAt time.Time `json:"ends_at"`
	} `json:"current_billing_period"`
}

type PaddleItem struct {
	Price struct {
		ProductId string `json:"product_id"`
		Name      string `json:"name"`
	} `json:"price"`
}

// --- MailerLite webhook payloads ---

type MailerLiteWebhook struct {
	Type string `json:"type"`
	Data struct {
		Subscriber struct {
			Email  string `json:"email"`
			Name   string `json:"name"`
			Status string `json:"status"`
		} `json:"subscriber"`
	} `json:"data"`
}

// --- Subscription views ---

type SubscriptionResponse struct {
	Provider         string     `json:"provider"`
	ExternalId       string     `json:"external_id"`
	Tier             string     `json:"tier"`
	Status           string     `json:"status"`
	CurrentPeriodEnd *time.Time `json:"current_period_end,omitempty"`
}

type BillingCycleResponse struct {
	Scanned     int `json:"scanned"`
	Downgraded  int `json:"downgraded"`
	GraceActive int `json:"grace_active"`
}
