package types

import (
	"time"

	"github.com/google/uuid"
)

type Supplier struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	MerchantID uuid.UUID `gorm:"type:uuid;not null;index" json:"merchant_id"`
	Name       string    `gorm:"not null;column:name" json:"name"`
	Email      string    `gorm:"column:email" json:"email"`
	Phone      string    `gorm:"column:phone" json:"phone"`
	Notes      string    `gorm:"column:notes" json:"notes,omitempty"`
	Active     bool      `gorm:"not null;default:true;column:active" json:"active"`
	CreatedAt  time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Supplier) TableName() string { return "supplier" }
