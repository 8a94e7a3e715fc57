package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	LoyaltyKindEarn   = "earn"
	LoyaltyKindRedeem = "redeem"
	LoyaltyKindAdjust = "adjust"
)

// LoyaltySettings: EarnRateBPS is points per 10000 minor units spent;
// RedeemValueCents is the discount value of one point.
type LoyaltySettings struct {
	ID               uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	MerchantID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"merchant_id"`
	Enabled          bool      `gorm:"not null;default:false;column:enabled" json:"enabled"`
	EarnRateBPS      int64     `gorm:"not null;default:0;column:earn_rate_bps" json:"earn_rate_bps"`
	RedeemValueCents int64     `gorm:"not null;default:0;column:redeem_value_cents" json:"redeem_value_cents"`
	CreatedAt        time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt        time.Time `gorm:"not null;default:now();index" json:"updated_at"`
}

func (LoyaltySettings) TableName() string { return "loyalty_settings" }

type LoyaltyAccount struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	MerchantID uuid.UUID `gorm:"type:uuid;not null;index:idx_loyalty_merchant_customer,unique" json:"merchant_id"`
	CustomerID uuid.UUID `gorm:"type:uuid;not null;index:idx_loyalty_merchant_customer,unique" json:"customer_id"`
	Balance    int64     `gorm:"not null;default:0;column:balance" json:"balance"`
	CreatedAt  time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (LoyaltyAccount) TableName() string { return "loyalty_account" }

type LoyaltyTransaction struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AccountID uuid.UUID  `gorm:"type:uuid;not null;index" json:"account_id"`
	Kind      string     `gorm:"not null;column:kind;index" json:"kind"`
	Points    int64      `gorm:"not null;column:points" json:"points"`
	OrderID   *uuid.UUID `gorm:"type:uuid;column:order_id;index" json:"order_id,omitempty"`
	Reason    string     `gorm:"column:reason" json:"reason,omitempty"`
	CreatedAt time.Time  `gorm:"not null;default:now();index" json:"created_at"`
}

func (LoyaltyTransaction) TableName() string { return "loyalty_transaction" }
