package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventStatusDraft     = "draft"
	EventStatusPublished = "published"
	EventStatusCancelled = "cancelled"
)

type Event struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	MerchantID uuid.UUID  `gorm:"type:uuid;not null;index" json:"merchant_id"`
	Name       string     `gorm:"not null;column:name" json:"name"`
	Venue      string     `gorm:"column:venue" json:"venue"`
	Status     string     `gorm:"not null;default:'draft';column:status;index" json:"status"`
	StartsAt   time.Time  `gorm:"not null;column:starts_at" json:"starts_at"`
	EndsAt     *time.Time `gorm:"column:ends_at" json:"ends_at,omitempty"`
	CreatedAt  time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"not null;default:now();index" json:"updated_at"`
}

func (Event) TableName() string { return "event" }
