package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	WalletOwnerMerchant = "merchant"
	WalletOwnerCustomer = "customer"
	WalletOwnerSchool   = "school"

	WalletEntryDebit  = "debit"
	WalletEntryCredit = "credit"

	WalletKindSale     = "sale"
	WalletKindTransfer = "transfer"
	WalletKindTopup    = "topup"
	WalletKindReversal = "reversal"
)

// Standardized reasons for wallet reversals, stored on the compensating
// entries.
const (
	ReversalReasonSaleVoid         = "Sale void/update"
	ReversalReasonTransferVoid     = "Transfer void/update"
	ReversalReasonTopupVoid        = "Top-up void/update"
	ReversalReasonManualCorrection = "Manual correction"
)

// Wallet.Balance is maintained under the row lock together with the
// entry append, so the insufficient-funds guard and the ledger agree.
type Wallet struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OwnerType string    `gorm:"not null;column:owner_type;index:idx_wallet_owner,unique" json:"owner_type"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;index:idx_wallet_owner,unique" json:"owner_id"`
	Currency  string    `gorm:"not null;default:'SLE';column:currency" json:"currency"`
	Balance   int64     `gorm:"not null;default:0;column:balance" json:"balance"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Wallet) TableName() string { return "wallet" }

type WalletEntry struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	WalletID    uuid.UUID `gorm:"type:uuid;not null;index" json:"wallet_id"`
	TransferID  uuid.UUID `gorm:"type:uuid;not null;index" json:"transfer_id"`
	Direction   string    `gorm:"not null;column:direction" json:"direction"`
	AmountCents int64     `gorm:"not null;column:amount_cents" json:"amount_cents"`
	Kind        string    `gorm:"not null;column:kind;index" json:"kind"`
	Reason      string    `gorm:"column:reason" json:"reason,omitempty"`
	CreatedAt   time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (WalletEntry) TableName() string { return "wallet_entry" }
