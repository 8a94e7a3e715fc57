package types

import (
	"time"

	"github.com/google/uuid"
)

type Customer struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	MerchantID uuid.UUID `gorm:"type:uuid;not null;index" json:"merchant_id"`
	Name       string    `gorm:"not null;column:name" json:"name"`
	Phone      string    `gorm:"column:phone;index" json:"phone"`
	Email      string    `gorm:"column:email" json:"email"`
	CreatedAt  time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Customer) TableName() string { return "customer" }
