package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Storefront is the merchant's public marketplace listing. Unpublished
// storefronts resolve for the owner but not on the public slug route.
type Storefront struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	MerchantID   uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"merchant_id"`
	DisplayName  string         `gorm:"not null;column:display_name" json:"display_name"`
	Slug         string         `gorm:"not null;uniqueIndex;column:slug" json:"slug"`
	Description  string         `gorm:"column:description" json:"description,omitempty"`
	Currency     string         `gorm:"not null;default:'SLE';column:currency" json:"currency"`
	Published    bool           `gorm:"not null;default:false;column:published" json:"published"`
	OpeningHours datatypes.JSON `gorm:"column:opening_hours;type:jsonb" json:"opening_hours,omitempty"`
	CreatedAt    time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;default:now();index" json:"updated_at"`
}

func (Storefront) TableName() string { return "storefront" }
