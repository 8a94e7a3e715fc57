package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/PeeapDev/merchant-backend/internal/pkg/logger"
	"github.com/PeeapDev/merchant-backend/internal/types"
)

type MerchantRepo interface {
	Create(ctx context.Context, tx *gorm.DB, merchants []*types.Merchant) ([]*types.Merchant, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Merchant, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
}

type merchantRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMerchantRepo(db *gorm.DB, baseLog *logger.Logger) MerchantRepo {
	return &merchantRepo{db: db, log: baseLog.With("repo", "MerchantRepo")}
}

func (r *merchantRepo) Create(ctx context.Context, tx *gorm.DB, merchants []*types.Merchant) ([]*types.Merchant, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(merchants) == 0 {
		return []*types.Merchant{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&merchants).Error; err != nil {
		return nil, err
	}
	return merchants, nil
}

func (r *merchantRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Merchant, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Merchant
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

func (r *merchantRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.Merchant{}).
		Where("id = ?", id).
		Updates(updates).Error
}
