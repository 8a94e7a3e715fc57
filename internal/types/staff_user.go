package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleOwner   = "owner"
	RoleManager = "manager"
	RoleCashier = "cashier"
)

type StaffUser struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	MerchantID uuid.UUID `gorm:"type:uuid;not null;index" json:"merchant_id"`
	Email      string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password   string    `gorm:"not null;column:password" json:"-"`
	FirstName  string    `gorm:"not null;column:first_name" json:"first_name"`
	LastName   string    `gorm:"not null;column:last_name" json:"last_name"`
	Role       string    `gorm:"not null;default:'cashier';column:role" json:"role"`
	AvatarPath string    `gorm:"column:avatar_path" json:"avatar_path"`
	Active     bool      `gorm:"not null;default:true;column:active" json:"active"`
	CreatedAt  time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (StaffUser) TableName() string { return "staff_user" }
