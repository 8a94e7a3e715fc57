package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/PeeapDev/merchant-backend/internal/pkg/logger"
	"github.com/PeeapDev/merchant-backend/internal/types"
)

type EventRepo interface {
	Create(ctx context.Context, tx *gorm.DB, events []*types.Event) ([]*types.Event, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Event, error)
	ListByMerchant(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID) ([]*types.Event, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
}

type eventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEventRepo(db *gorm.DB, baseLog *logger.Logger) EventRepo {
	return &eventRepo{db: db, log: baseLog.With("repo", "EventRepo")}
}

func (r *eventRepo) Create(ctx context.Context, tx *gorm.DB, events []*types.Event) ([]*types.Event, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(events) == 0 {
		return []*types.Event{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Event, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Event
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

func (r *eventRepo) ListByMerchant(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID) ([]*types.Event, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Event
	if merchantID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("merchant_id = ?", merchantID).
		Order("starts_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *eventRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.Event{}).
		Where("id = ?", id).
		Updates(updates).Error
}
