package model

import (
	"time"

	"github.com/google/uuid"
)

// Subscription covers both providers; ExternalId is unique per provider so
// webhook replays upsert the same row.
type Subscription struct {
	Id                 uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProfileId          uuid.UUID `gorm:"type:uuid;not null;index"`
	Provider           string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_provider_external"`
	ExternalId         string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_provider_external"`
	ProductId          string    `gorm:"type:varchar(255)"`
	Tier               string    `gorm:"type:varchar(50);not null"`
	Status             string    `gorm:"type:varchar(50);not null"`
	CurrentPeriodStart time.Time `gorm:"not null"`
	CurrentPeriodEnd   time.Time `gorm:"not null;index"`
	CanceledAt         *time.Time
	CreatedAt          time.Time `gorm:"autoCreateTime"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}
