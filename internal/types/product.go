package types

import (
	"time"

	"github.com/google/uuid"
)

// Product prices are integer minor units. TaxRateBPS of zero defers to
// the category tax table.
type Product struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	MerchantID   uuid.UUID `gorm:"type:uuid;not null;index:idx_product_merchant_sku,unique" json:"merchant_id"`
	SKU          string    `gorm:"not null;column:sku;index:idx_product_merchant_sku,unique" json:"sku"`
	Name         string    `gorm:"not null;column:name" json:"name"`
	Category     string    `gorm:"column:category;index" json:"category"`
	PriceCents   int64     `gorm:"not null;column:price_cents" json:"price_cents"`
	TaxRateBPS   int64     `gorm:"not null;default:0;column:tax_rate_bps" json:"tax_rate_bps"`
	TrackStock   bool      `gorm:"not null;default:false;column:track_stock" json:"track_stock"`
	ReorderLevel int64     `gorm:"not null;default:0;column:reorder_level" json:"reorder_level"`
	Active       bool      `gorm:"not null;default:true;column:active" json:"active"`
	CreatedAt    time.Time `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;default:now();index" json:"updated_at"`
}

func (Product) TableName() string { return "product" }
