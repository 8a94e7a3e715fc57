package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/PeeapDev/merchant-backend/internal/pkg/logger"
	"github.com/PeeapDev/merchant-backend/internal/types"
)

type SyncDeviceRepo interface {
	Create(ctx context.Context, tx *gorm.DB, device *types.SyncDevice) (*types.SyncDevice, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.SyncDevice, error)
	ListByMerchant(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID) ([]*types.SyncDevice, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
}

type syncDeviceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSyncDeviceRepo(db *gorm.DB, baseLog *logger.Logger) SyncDeviceRepo {
	return &syncDeviceRepo{db: db, log: baseLog.With("repo", "SyncDeviceRepo")}
}

func (r *syncDeviceRepo) Create(ctx context.Context, tx *gorm.DB, device *types.SyncDevice) (*types.SyncDevice, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if device == nil {
		return nil, nil
	}
	if err := transaction.WithContext(ctx).Create(device).Error; err != nil {
		return nil, err
	}
	return device, nil
}

func (r *syncDeviceRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.SyncDevice, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.SyncDevice
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

func (r *syncDeviceRepo) ListByMerchant(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID) ([]*types.SyncDevice, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.SyncDevice
	if merchantID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("merchant_id = ?", merchantID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *syncDeviceRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.SyncDevice{}).
		Where("id = ?", id).
		Updates(updates).Error
}
