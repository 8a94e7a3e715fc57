package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	SchoolStatusPending  = "pending"
	SchoolStatusApproved = "approved"
	SchoolStatusActive   = "active"
	SchoolStatusRejected = "rejected"
)

// School is a payment-onboarding record. Approval provisions the wallet
// in the same transaction as the status flip.
type School struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	MerchantID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"merchant_id"`
	Name            string         `gorm:"not null;column:name" json:"name"`
	ContactEmail    string         `gorm:"column:contact_email" json:"contact_email"`
	Status          string         `gorm:"not null;default:'pending';column:status;index" json:"status"`
	PaymentSettings datatypes.JSON `gorm:"column:payment_settings;type:jsonb" json:"payment_settings,omitempty"`
	WalletID        *uuid.UUID     `gorm:"type:uuid;column:wallet_id" json:"wallet_id,omitempty"`
	CreatedAt       time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (School) TableName() string { return "school" }
