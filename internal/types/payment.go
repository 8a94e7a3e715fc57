package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	PaymentMethodCash   = "cash"
	PaymentMethodCard   = "card"
	PaymentMethodWallet = "wallet"
)

type Payment struct {
	ID               uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	MerchantID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"merchant_id"`
	OrderID          uuid.UUID  `gorm:"type:uuid;not null;index" json:"order_id"`
	Method           string     `gorm:"not null;column:method;index" json:"method"`
	AmountCents      int64      `gorm:"not null;column:amount_cents" json:"amount_cents"`
	TenderedCents    int64      `gorm:"not null;default:0;column:tendered_cents" json:"tendered_cents"`
	ChangeCents      int64      `gorm:"not null;default:0;column:change_cents" json:"change_cents"`
	CashSessionID    *uuid.UUID `gorm:"type:uuid;column:cash_session_id;index" json:"cash_session_id,omitempty"`
	WalletTransferID *uuid.UUID `gorm:"type:uuid;column:wallet_transfer_id;index" json:"wallet_transfer_id,omitempty"`
	CreatedAt        time.Time  `gorm:"not null;default:now();index" json:"created_at"`
}

func (Payment) TableName() string { return "payment" }
