package types

import (
	"time"

	"github.com/google/uuid"
)

// TicketType.Issued is maintained under the event's row lock during
// checkout so the capacity guard and the increment commit together.
type TicketType struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	MerchantID uuid.UUID `gorm:"type:uuid;not null;index" json:"merchant_id"`
	EventID    uuid.UUID `gorm:"type:uuid;not null;index" json:"event_id"`
	Name       string    `gorm:"not null;column:name" json:"name"`
	PriceCents int64     `gorm:"not null;column:price_cents" json:"price_cents"`
	Capacity   int64     `gorm:"not null;column:capacity" json:"capacity"`
	Issued     int64     `gorm:"not null;default:0;column:issued" json:"issued"`
	CreatedAt  time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;default:now();index" json:"updated_at"`
}

func (TicketType) TableName() string { return "ticket_type" }
