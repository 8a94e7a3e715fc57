package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/PeeapDev/merchant-backend/internal/pkg/logger"
	"github.com/PeeapDev/merchant-backend/internal/types"
)

type SupplierRepo interface {
	Create(ctx context.Context, tx *gorm.DB, suppliers []*types.Supplier) ([]*types.Supplier, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Supplier, error)
	ListByMerchant(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID) ([]*types.Supplier, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
}

type supplierRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSupplierRepo(db *gorm.DB, baseLog *logger.Logger) SupplierRepo {
	return &supplierRepo{db: db, log: baseLog.With("repo", "SupplierRepo")}
}

func (r *supplierRepo) Create(ctx context.Context, tx *gorm.DB, suppliers []*types.Supplier) ([]*types.Supplier, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(suppliers) == 0 {
		return []*types.Supplier{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&suppliers).Error; err != nil {
		return nil, err
	}
	return suppliers, nil
}

func (r *supplierRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Supplier, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Supplier
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

func (r *supplierRepo) ListByMerchant(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID) ([]*types.Supplier, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Supplier
	if merchantID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("merchant_id = ?", merchantID).
		Order("name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *supplierRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.Supplier{}).
		Where("id = ?", id).
		Updates(updates).Error
}
