package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/PeeapDev/merchant-backend/internal/pkg/logger"
	"github.com/PeeapDev/merchant-backend/internal/types"
)

type RegisterRepo interface {
	Create(ctx context.Context, tx *gorm.DB, registers []*types.Register) ([]*types.Register, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Register, error)
	ListByMerchant(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID) ([]*types.Register, error)
}

type registerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRegisterRepo(db *gorm.DB, baseLog *logger.Logger) RegisterRepo {
	return &registerRepo{db: db, log: baseLog.With("repo", "RegisterRepo")}
}

func (r *registerRepo) Create(ctx context.Context, tx *gorm.DB, registers []*types.Register) ([]*types.Register, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(registers) == 0 {
		return []*types.Register{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&registers).Error; err != nil {
		return nil, err
	}
	return registers, nil
}

func (r *registerRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Register, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Register
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

func (r *registerRepo) ListByMerchant(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID) ([]*types.Register, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Register
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
