package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	TicketStatusIssued   = "issued"
	TicketStatusRedeemed = "redeemed"
	TicketStatusVoid     = "void"
)

type Ticket struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	MerchantID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"merchant_id"`
	EventID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"event_id"`
	TicketTypeID uuid.UUID  `gorm:"type:uuid;not null;index" json:"ticket_type_id"`
	OrderID      *uuid.UUID `gorm:"type:uuid;column:order_id;index" json:"order_id,omitempty"`
	QRCode       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex;column:qr_code" json:"qr_code"`
	Status       string     `gorm:"not null;default:'issued';column:status;index" json:"status"`
	RedeemedAt   *time.Time `gorm:"column:redeemed_at" json:"redeemed_at,omitempty"`
	RedeemedBy   *uuid.UUID `gorm:"type:uuid;column:redeemed_by" json:"redeemed_by,omitempty"`
	CreatedAt    time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (Ticket) TableName() string { return "ticket" }
