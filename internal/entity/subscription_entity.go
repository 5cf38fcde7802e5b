package entity

import (
	"time"

	"github.com/google/uuid"
)

// Tier is the subscription level gating feature access.
type Tier string

type SubscriptionStatus string
type BillingProvider string

const (
	TierFree   Tier = "free"
	TierCore   Tier = "core"
	TierStudio Tier = "studio"

	SubscriptionStatusActive      SubscriptionStatus = "active"
	SubscriptionStatusPastDue     SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled    SubscriptionStatus = "canceled"
	SubscriptionStatusDeactivated SubscriptionStatus = "deactivated"

	ProviderFastSpring BillingProvider = "fastspring"
	ProviderPaddle     BillingProvider = "paddle"
)

// Subscription is one row per user per provider, upserted idempotently
// keyed on the provider's subscription id.
type Subscription struct {
	Id                 uuid.UUID
	ProfileId          uuid.UUID
	Provider           BillingProvider
	ExternalId         string // FastSpring subscription id / Paddle subscription id
	ProductId          string // FastSpring product path / Paddle price id
	Tier               Tier
	Status             SubscriptionStatus
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
	CanceledAt         *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// InGracePeriod reports whether an expired period is still within the
// configured grace window.
func (s *Subscription) InGracePeriod(now time.Time, graceDays int) bool {
	if now.Before(s.CurrentPeriodEnd) {
		return false
	}
	return now.Before(s.CurrentPeriodEnd.AddDate(0, 0, graceDays))
}

// Expired reports whether the subscription is past both the period end and
// the grace window.
func (s *Subscription) Expired(now time.Time, graceDays int) bool {
	return !now.Before(s.CurrentPeriodEnd.AddDate(0, 0, graceDays))
}
