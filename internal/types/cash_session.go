package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	CashSessionStatusOpen   = "open"
	CashSessionStatusClosed = "closed"

	CashAdjustmentIn  = "paid_in"
	CashAdjustmentOut = "paid_out"
)

// CashSession is the per-register till record used for end-of-day
// reconciliation. Expected and variance are computed once at close and
// the row is immutable afterwards.
type CashSession struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	MerchantID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"merchant_id"`
	RegisterID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"register_id"`
	Status         string     `gorm:"not null;default:'open';column:status;index" json:"status"`
	OpenedBy       uuid.UUID  `gorm:"type:uuid;not null;column:opened_by" json:"opened_by"`
	ClosedBy       *uuid.UUID `gorm:"type:uuid;column:closed_by" json:"closed_by,omitempty"`
	OpeningCents   int64      `gorm:"not null;column:opening_cents" json:"opening_cents"`
	CashSalesCents int64      `gorm:"not null;default:0;column:cash_sales_cents" json:"cash_sales_cents"`
	PaidInCents    int64      `gorm:"not null;default:0;column:paid_in_cents" json:"paid_in_cents"`
	PaidOutCents   int64      `gorm:"not null;default:0;column:paid_out_cents" json:"paid_out_cents"`
	ExpectedCents  int64      `gorm:"not null;default:0;column:expected_cents" json:"expected_cents"`
	CountedCents   int64      `gorm:"not null;default:0;column:counted_cents" json:"counted_cents"`
	VarianceCents  int64      `gorm:"not null;default:0;column:variance_cents" json:"variance_cents"`
	OpenedAt       time.Time  `gorm:"not null;default:now();column:opened_at" json:"opened_at"`
	ClosedAt       *time.Time `gorm:"column:closed_at" json:"closed_at,omitempty"`
	CreatedAt      time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (CashSession) TableName() string { return "cash_session" }

type CashAdjustment struct {
	ID            uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CashSessionID uuid.UUID `gorm:"type:uuid;not null;index" json:"cash_session_id"`
	Direction     string    `gorm:"not null;column:direction" json:"direction"`
	AmountCents   int64     `gorm:"not null;column:amount_cents" json:"amount_cents"`
	Reason        string    `gorm:"not null;column:reason" json:"reason"`
	CreatedBy     uuid.UUID `gorm:"type:uuid;column:created_by" json:"created_by"`
	CreatedAt     time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (CashAdjustment) TableName() string { return "cash_adjustment" }
