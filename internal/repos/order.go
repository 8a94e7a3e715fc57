package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/PeeapDev/merchant-backend/internal/pkg/logger"
	"github.com/PeeapDev/merchant-backend/internal/types"
)

type OrderRepo interface {
	Create(ctx context.Context, tx *gorm.DB, orders []*types.Order) ([]*types.Order, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Order, error)
	// LockByID serializes status transitions on one order.
	LockByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Order, error)
	GetByClientRef(ctx context.Context, tx *gorm.DB, clientRef uuid.UUID) (*types.Order, error)
	ListByMerchant(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID, statuses []string, limit int) ([]*types.Order, error)
	OpenChangedSince(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID, since time.Time) ([]*types.Order, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
}

type orderRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOrderRepo(db *gorm.DB, baseLog *logger.Logger) OrderRepo {
	return &orderRepo{db: db, log: baseLog.With("repo", "OrderRepo")}
}

func (r *orderRepo) Create(ctx context.Context, tx *gorm.DB, orders []*types.Order) ([]*types.Order, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(orders) == 0 {
		return []*types.Order{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Order, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Order
	if len(ids) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *orderRepo) LockByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Order, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var order types.Order
	err := transaction.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Limit(1).
		Find(&order).Error
	if err != nil {
		return nil, err
	}
	if order.ID == uuid.Nil {
		return nil, nil
	}
	return &order, nil
}

func (r *orderRepo) GetByClientRef(ctx context.Context, tx *gorm.DB, clientRef uuid.UUID) (*types.Order, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if clientRef == uuid.Nil {
		return nil, nil
	}
	var order types.Order
	err := transaction.WithContext(ctx).
		Where("client_ref = ?", clientRef).
		Limit(1).
		Find(&order).Error
	if err != nil {
		return nil, err
	}
	if order.ID == uuid.Nil {
		return nil, nil
	}
	return &order, nil
}

func (r *orderRepo) ListByMerchant(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID, statuses []string, limit int) ([]*types.Order, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Order
	if merchantID == uuid.Nil {
		return results, nil
	}
	q := transaction.WithContext(ctx).Where("merchant_id = ?", merchantID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	q = q.Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *orderRepo) OpenChangedSince(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID, since time.Time) ([]*types.Order, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Order
	if merchantID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("merchant_id = ? AND updated_at > ? AND status IN ?",
			merchantID, since, []string{types.OrderStatusNew, types.OrderStatusPreparing, types.OrderStatusReady}).
		Order("updated_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *orderRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.Order{}).
		Where("id = ?", id).
		Updates(updates).Error
}
