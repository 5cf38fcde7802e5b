package dto

import (
	"github.com/google/uuid"
)

type RegisterRequest struct {
	FullName string `json:"full_name" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type RegisterResponse struct {
	Id    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string     `json:"access_token"`
	Profile     ProfileDTO `json:"profile"`
}

type ProfileDTO struct {
	Id               uuid.UUID `json:"id"`
	Email            string    `json:"email"`
	FullName         string    `json:"full_name"`
	SubscriptionTier string    `json:"subscription_tier"`
	MarketingOptIn   bool      `json:"marketing_opt_in"`
}

type UpdateProfileRequest struct {
	FullName       *string `json:"full_name,omitempty" validate:"omitempty,min=3"`
	MarketingOptIn *bool   `json:"marketing_opt_in,omitempty"`
}
