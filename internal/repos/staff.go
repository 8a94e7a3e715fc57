package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/PeeapDev/merchant-backend/internal/pkg/logger"
	"github.com/PeeapDev/merchant-backend/internal/types"
)

type StaffRepo interface {
	Create(ctx context.Context, tx *gorm.DB, users []*types.StaffUser) ([]*types.StaffUser, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.StaffUser, error)
	GetByEmails(ctx context.Context, tx *gorm.DB, emails []string) ([]*types.StaffUser, error)
	EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error)
	ListByMerchant(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID) ([]*types.StaffUser, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
}

type staffRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStaffRepo(db *gorm.DB, baseLog *logger.Logger) StaffRepo {
	return &staffRepo{db: db, log: baseLog.With("repo", "StaffRepo")}
}

func (r *staffRepo) Create(ctx context.Context, tx *gorm.DB, users []*types.StaffUser) ([]*types.StaffUser, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(users) == 0 {
		return []*types.StaffUser{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *staffRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.StaffUser, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.StaffUser
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

func (r *staffRepo) GetByEmails(ctx context.Context, tx *gorm.DB, emails []string) ([]*types.StaffUser, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.StaffUser
	if len(emails) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("email IN ?", emails).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *staffRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.StaffUser{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *staffRepo) ListByMerchant(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID) ([]*types.StaffUser, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.StaffUser
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

func (r *staffRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.StaffUser{}).
		Where("id = ?", id).
		Updates(updates).Error
}
