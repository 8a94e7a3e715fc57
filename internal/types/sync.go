package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	SyncOpStatusPending  = "pending"
	SyncOpStatusApplied  = "applied"
	SyncOpStatusRejected = "rejected"
	SyncOpStatusParked   = "parked"

	SyncEntityCartDraft   = "cart_draft"
	SyncEntityCheckout    = "checkout"
	SyncEntityOrderStatus = "order_status"
)

type SyncDevice struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	MerchantID uuid.UUID  `gorm:"type:uuid;not null;index" json:"merchant_id"`
	RegisterID *uuid.UUID `gorm:"type:uuid;column:register_id;index" json:"register_id,omitempty"`
	Label      string     `gorm:"not null;column:label" json:"label"`
	LastSeenAt *time.Time `gorm:"column:last_seen_at" json:"last_seen_at,omitempty"`
	CreatedAt  time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (SyncDevice) TableName() string { return "sync_device" }

// SyncOperation's primary key is the client-generated op id, which is
// what makes replay after a dropped response idempotent.
type SyncOperation struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	MerchantID uuid.UUID      `gorm:"type:uuid;not null;index" json:"merchant_id"`
	DeviceID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"device_id"`
	Seq        int64          `gorm:"not null;column:seq;index" json:"seq"`
	Entity     string         `gorm:"not null;column:entity;index" json:"entity"`
	Action     string         `gorm:"not null;column:action" json:"action"`
	Payload    datatypes.JSON `gorm:"column:payload;type:jsonb" json:"payload"`
	ClientTS   time.Time      `gorm:"not null;column:client_ts" json:"client_ts"`
	Status     string         `gorm:"not null;default:'pending';column:status;index" json:"status"`
	Attempts   int            `gorm:"not null;default:0;column:attempts" json:"attempts"`
	Error      string         `gorm:"column:error" json:"error,omitempty"`
	AppliedAt  *time.Time     `gorm:"column:applied_at" json:"applied_at,omitempty"`
	CreatedAt  time.Time      `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (SyncOperation) TableName() string { return "sync_operation" }

// CartDraft mirrors the terminal's in-progress cart. Last writer wins
// by client timestamp; monetary state is never derived from it.
type CartDraft struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	MerchantID uuid.UUID      `gorm:"type:uuid;not null;index" json:"merchant_id"`
	DeviceID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"device_id"`
	RegisterID *uuid.UUID     `gorm:"type:uuid;column:register_id" json:"register_id,omitempty"`
	Payload    datatypes.JSON `gorm:"column:payload;type:jsonb" json:"payload"`
	ClientTS   time.Time      `gorm:"not null;column:client_ts" json:"client_ts"`
	CreatedAt  time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null;default:now();index" json:"updated_at"`
}

func (CartDraft) TableName() string { return "cart_draft" }
