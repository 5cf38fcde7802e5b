package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type WebhookLog struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Provider       string         `gorm:"type:varchar(50);not null;index"`
	EventType      string         `gorm:"type:varchar(100);not null"`
	ExternalId     string         `gorm:"type:varchar(255);index"`
	SignatureValid bool           `gorm:"not null"`
	Status         string         `gorm:"type:varchar(50);not null;index"`
	Payload        datatypes.JSON `gorm:"type:jsonb"`
	Error          string         `gorm:"type:text"`
	CreatedAt      time.Time      `gorm:"autoCreateTime;index"`
}

func (WebhookLog) TableName() string {
	return "webhook_logs"
}

type RetryLog struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Resource   string    `gorm:"type:varchar(100);not null;index"`
	ResourceId string    `gorm:"type:varchar(255);not null"`
	Attempts   int       `gorm:"default:0"`
	LastError  string    `gorm:"type:text"`
	ResolvedAt *time.Time
	CreatedAt  time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (RetryLog) TableName() string {
	return "retry_logs"
}

type EmailLog struct {
	Id                uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Recipient         string    `gorm:"type:varchar(255);not null;index"`
	Template          string    `gorm:"type:varchar(100);not null"`
	Status            string    `gorm:"type:varchar(50);not null"`
	ProviderMessageId string    `gorm:"type:varchar(255)"`
	Error             string    `gorm:"type:text"`
	CreatedAt         time.Time `gorm:"autoCreateTime;index"`
}

func (EmailLog) TableName() string {
	return "email_logs"
}

type Notification struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProfileId uuid.UUID      `gorm:"type:uuid;not null;index"`
	TypeCode  string         `gorm:"type:varchar(100);not null"`
	Title     string         `gorm:"type:varchar(255);not null"`
	Message   string         `gorm:"type:text"`
	Metadata  datatypes.JSON `gorm:"type:jsonb"`
	IsRead    bool           `gorm:"default:false"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index"`
}

func (Notification) TableName() string {
	return "notifications"
}
