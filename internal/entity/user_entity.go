package entity

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string
type UserStatus string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"

	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"
)

type Profile struct {
	Id               uuid.UUID
	Email            string
	PasswordHash     *string // nil for OAuth-only accounts
	FullName         string
	Role             UserRole
	Status           UserStatus
	SubscriptionTier Tier
	AvatarURL        *string
	MarketingOptIn   bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        *time.Time
}

type ProfileProvider struct {
	Id             uuid.UUID
	ProfileId      uuid.UUID
	ProviderName   string // "google"
	ProviderUserId string
	AvatarURL      string
	CreatedAt      time.Time
}
