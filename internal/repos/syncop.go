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

type SyncOpRepo interface {
	// Create inserts with DO NOTHING on conflict; a replayed op id is
	// reported back so the caller can return the stored outcome instead
	// of applying twice.
	Create(ctx context.Context, tx *gorm.DB, op *types.SyncOperation) (created bool, err error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.SyncOperation, error)
	ListByDevice(ctx context.Context, tx *gorm.DB, deviceID uuid.UUID, limit int) ([]*types.SyncOperation, error)
	ListRetryable(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID, maxAttempts int, limit int) ([]*types.SyncOperation, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
}

type syncOpRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSyncOpRepo(db *gorm.DB, baseLog *logger.Logger) SyncOpRepo {
	return &syncOpRepo{db: db, log: baseLog.With("repo", "SyncOpRepo")}
}

func (r *syncOpRepo) Create(ctx context.Context, tx *gorm.DB, op *types.SyncOperation) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if op == nil || op.ID == uuid.Nil {
		return false, nil
	}
	res := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).
		Create(op)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *syncOpRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.SyncOperation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.SyncOperation
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

func (r *syncOpRepo) ListByDevice(ctx context.Context, tx *gorm.DB, deviceID uuid.UUID, limit int) ([]*types.SyncOperation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.SyncOperation
	if deviceID == uuid.Nil {
		return results, nil
	}
	q := transaction.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("seq ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *syncOpRepo) ListRetryable(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID, maxAttempts int, limit int) ([]*types.SyncOperation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.SyncOperation
	if merchantID == uuid.Nil {
		return results, nil
	}
	q := transaction.WithContext(ctx).
		Where("merchant_id = ? AND status = ? AND attempts < ?",
			merchantID, types.SyncOpStatusParked, maxAttempts).
		Order("seq ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *syncOpRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return transaction.WithContext(ctx).
		Model(&types.SyncOperation{}).
		Where("id = ?", id).
		Updates(updates).Error
}
