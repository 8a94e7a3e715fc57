package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/PeeapDev/merchant-backend/internal/pkg/logger"
	"github.com/PeeapDev/merchant-backend/internal/types"
)

type PurchaseOrderRepo interface {
	Create(ctx context.Context, tx *gorm.DB, orders []*types.PurchaseOrder) ([]*types.PurchaseOrder, error)
	CreateLines(ctx context.Context, tx *gorm.DB, lines []*types.PurchaseOrderLine) ([]*types.PurchaseOrderLine, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.PurchaseOrder, error)
	// LockByID loads the PO row FOR UPDATE so receiving is serialized.
	LockByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.PurchaseOrder, error)
	GetLines(ctx context.Context, tx *gorm.DB, purchaseOrderID uuid.UUID) ([]*types.PurchaseOrderLine, error)
	ListByMerchant(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID) ([]*types.PurchaseOrder, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
}

type purchaseOrderRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPurchaseOrderRepo(db *gorm.DB, baseLog *logger.Logger) PurchaseOrderRepo {
	return &purchaseOrderRepo{db: db, log: baseLog.With("repo", "PurchaseOrderRepo")}
}

func (r *purchaseOrderRepo) Create(ctx context.Context, tx *gorm.DB, orders []*types.PurchaseOrder) ([]*types.PurchaseOrder, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(orders) == 0 {
		return []*types.PurchaseOrder{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *purchaseOrderRepo) CreateLines(ctx context.Context, tx *gorm.DB, lines []*types.PurchaseOrderLine) ([]*types.PurchaseOrderLine, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(lines) == 0 {
		return []*types.PurchaseOrderLine{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *purchaseOrderRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.PurchaseOrder, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.PurchaseOrder
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

func (r *purchaseOrderRepo) LockByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.PurchaseOrder, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var po types.PurchaseOrder
	err := transaction.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Limit(1).
		Find(&po).Error
	if err != nil {
		return nil, err
	}
	if po.ID == uuid.Nil {
		return nil, nil
	}
	return &po, nil
}

func (r *purchaseOrderRepo) GetLines(ctx context.Context, tx *gorm.DB, purchaseOrderID uuid.UUID) ([]*types.PurchaseOrderLine, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.PurchaseOrderLine
	if purchaseOrderID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("purchase_order_id = ?", purchaseOrderID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *purchaseOrderRepo) ListByMerchant(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID) ([]*types.PurchaseOrder, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.PurchaseOrder
	if merchantID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("merchant_id = ?", merchantID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *purchaseOrderRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.PurchaseOrder{}).
		Where("id = ?", id).
		Updates(updates).Error
}
