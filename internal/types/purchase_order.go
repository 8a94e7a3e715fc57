package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	PurchaseOrderStatusDraft     = "draft"
	PurchaseOrderStatusPlaced    = "placed"
	PurchaseOrderStatusReceived  = "received"
	PurchaseOrderStatusCancelled = "cancelled"
)

type PurchaseOrder struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	MerchantID uuid.UUID  `gorm:"type:uuid;not null;index" json:"merchant_id"`
	SupplierID uuid.UUID  `gorm:"type:uuid;not null;index" json:"supplier_id"`
	Status     string     `gorm:"not null;default:'draft';column:status;index" json:"status"`
	Notes      string     `gorm:"column:notes" json:"notes,omitempty"`
	ReceivedAt *time.Time `gorm:"column:received_at" json:"received_at,omitempty"`
	CreatedBy  uuid.UUID  `gorm:"type:uuid;column:created_by" json:"created_by"`
	CreatedAt  time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (PurchaseOrder) TableName() string { return "purchase_order" }

type PurchaseOrderLine struct {
	ID              uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PurchaseOrderID uuid.UUID `gorm:"type:uuid;not null;index" json:"purchase_order_id"`
	ProductID       uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	Quantity        int64     `gorm:"not null;column:quantity" json:"quantity"`
	UnitCostCents   int64     `gorm:"not null;column:unit_cost_cents" json:"unit_cost_cents"`
	CreatedAt       time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (PurchaseOrderLine) TableName() string { return "purchase_order_line" }
