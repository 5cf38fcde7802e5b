package specification

import (
	"time"

	"gorm.io/gorm"
)

// ByExternalId filters subscriptions by the billing provider's id
type ByExternalId struct {
	Provider   string
	ExternalId string
}

func (s ByExternalId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("provider = ? AND external_id = ?", s.Provider, s.ExternalId)
}

// StatusIn filters by a set of statuses
type StatusIn struct {
	Statuses []string
}

func (s StatusIn) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status IN ?", s.Statuses)
}

// PeriodEndedBefore selects subscriptions whose billing period lapsed
// before the cutoff. Used by the billing-cycle sweep.
type PeriodEndedBefore struct {
	Cutoff time.Time
}

func (s PeriodEndedBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("current_period_end < ?", s.Cutoff)
}

// Unresolved selects retry logs without a resolution timestamp
type Unresolved struct{}

func (s Unresolved) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("resolved_at IS NULL")
}
