package types

import (
	"time"

	"github.com/google/uuid"
)

// Register is a physical till. Cash sessions and sync devices bind to
// one.
type Register struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	MerchantID uuid.UUID `gorm:"type:uuid;not null;index" json:"merchant_id"`
	Label      string    `gorm:"not null;column:label" json:"label"`
	CreatedAt  time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Register) TableName() string { return "register" }
