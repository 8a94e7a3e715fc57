package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/PeeapDev/merchant-backend/internal/pkg/logger"
	"github.com/PeeapDev/merchant-backend/internal/types"
)

type PaymentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, payments []*types.Payment) ([]*types.Payment, error)
	ListByOrders(ctx context.Context, tx *gorm.DB, orderIDs []uuid.UUID) ([]*types.Payment, error)
	SumCashBySession(ctx context.Context, tx *gorm.DB, cashSessionID uuid.UUID) (int64, error)
}

type paymentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPaymentRepo(db *gorm.DB, baseLog *logger.Logger) PaymentRepo {
	return &paymentRepo{db: db, log: baseLog.With("repo", "PaymentRepo")}
}

func (r *paymentRepo) Create(ctx context.Context, tx *gorm.DB, payments []*types.Payment) ([]*types.Payment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(payments) == 0 {
		return []*types.Payment{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *paymentRepo) ListByOrders(ctx context.Context, tx *gorm.DB, orderIDs []uuid.UUID) ([]*types.Payment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Payment
	if len(orderIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("order_id IN ?", orderIDs).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *paymentRepo) SumCashBySession(ctx context.Context, tx *gorm.DB, cashSessionID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if cashSessionID == uuid.Nil {
		return 0, nil
	}
	var total int64
	if err := transaction.WithContext(ctx).
		Model(&types.Payment{}).
		Where("cash_session_id = ? AND method = ?", cashSessionID, types.PaymentMethodCash).
		Select("COALESCE(SUM(amount_cents), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
