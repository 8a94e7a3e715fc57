package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	OrderStatusNew       = "new"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// Order.ClientRef is the device-generated idempotency key: replaying a
// checkout with the same ref returns this row instead of charging twice.
type Order struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	MerchantID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"merchant_id"`
	RegisterID    *uuid.UUID `gorm:"type:uuid;column:register_id;index" json:"register_id,omitempty"`
	DeviceID      *uuid.UUID `gorm:"type:uuid;column:device_id;index" json:"device_id,omitempty"`
	ClientRef     *uuid.UUID `gorm:"type:uuid;column:client_ref;uniqueIndex" json:"client_ref,omitempty"`
	CustomerID    *uuid.UUID `gorm:"type:uuid;column:customer_id;index" json:"customer_id,omitempty"`
	CashSessionID *uuid.UUID `gorm:"type:uuid;column:cash_session_id;index" json:"cash_session_id,omitempty"`
	Status        string     `gorm:"not null;default:'new';column:status;index" json:"status"`
	SubtotalCents int64      `gorm:"not null;column:subtotal_cents" json:"subtotal_cents"`
	TaxCents      int64      `gorm:"not null;column:tax_cents" json:"tax_cents"`
	DiscountCents int64      `gorm:"not null;default:0;column:discount_cents" json:"discount_cents"`
	TotalCents    int64      `gorm:"not null;column:total_cents" json:"total_cents"`
	Note          string     `gorm:"column:note" json:"note,omitempty"`
	CreatedBy     uuid.UUID  `gorm:"type:uuid;column:created_by" json:"created_by"`
	CreatedAt     time.Time  `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"not null;default:now();index" json:"updated_at"`
}

func (Order) TableName() string { return "order" }

type OrderItem struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OrderID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID      *uuid.UUID `gorm:"type:uuid;column:product_id;index" json:"product_id,omitempty"`
	TicketTypeID   *uuid.UUID `gorm:"type:uuid;column:ticket_type_id;index" json:"ticket_type_id,omitempty"`
	Name           string     `gorm:"not null;column:name" json:"name"`
	Quantity       int64      `gorm:"not null;column:quantity" json:"quantity"`
	UnitPriceCents int64      `gorm:"not null;column:unit_price_cents" json:"unit_price_cents"`
	TaxCents       int64      `gorm:"not null;default:0;column:tax_cents" json:"tax_cents"`
	TotalCents     int64      `gorm:"not null;column:total_cents" json:"total_cents"`
	CreatedAt      time.Time  `gorm:"not null;default:now()" json:"created_at"`
}

func (OrderItem) TableName() string { return "order_item" }
