package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Profile struct {
	Id               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email            string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash     *string   `gorm:"type:varchar(255)"`
	FullName         string    `gorm:"type:varchar(255);not null"`
	Role             string    `gorm:"type:varchar(50);not null;default:'user'"`
	Status           string    `gorm:"type:varchar(50);not null;default:'active'"`
	SubscriptionTier string    `gorm:"type:varchar(50);not null;default:'free';index"`
	AvatarURL        *string   `gorm:"type:text"`
	MarketingOptIn   bool      `gorm:"default:false"`
	CreatedAt        time.Time `gorm:"autoCreateTime"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`
	DeletedAt        gorm.DeletedAt `gorm:"index"`
}

func (Profile) TableName() string {
	return "profiles"
}

type ProfileProvider struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProfileId      uuid.UUID `gorm:"type:uuid;not null;index"`
	ProviderName   string    `gorm:"type:varchar(50);not null"`
	ProviderUserId string    `gorm:"type:varchar(255);not null"`
	AvatarURL      string    `gorm:"type:text"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

func (ProfileProvider) TableName() string {
	return "profile_providers"
}
