package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	StockKindPurchase   = "purchase"
	StockKindSale       = "sale"
	StockKindAdjustment = "adjustment"
	StockKindReturn     = "return"
)

// StockMovement is the append-only inventory ledger. Quantity is signed:
// sales are negative, purchases positive. On-hand is the sum.
type StockMovement struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	MerchantID uuid.UUID  `gorm:"type:uuid;not null;index" json:"merchant_id"`
	ProductID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"product_id"`
	Kind       string     `gorm:"not null;column:kind;index" json:"kind"`
	Quantity   int64      `gorm:"not null;column:quantity" json:"quantity"`
	Reason     string     `gorm:"column:reason" json:"reason,omitempty"`
	RefType    string     `gorm:"column:ref_type" json:"ref_type,omitempty"`
	RefID      *uuid.UUID `gorm:"type:uuid;column:ref_id;index" json:"ref_id,omitempty"`
	CreatedBy  uuid.UUID  `gorm:"type:uuid;column:created_by" json:"created_by"`
	CreatedAt  time.Time  `gorm:"not null;default:now();index" json:"created_at"`
}

func (StockMovement) TableName() string { return "stock_movement" }
