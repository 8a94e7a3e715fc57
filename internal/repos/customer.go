package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/PeeapDev/merchant-backend/internal/pkg/logger"
	"github.com/PeeapDev/merchant-backend/internal/types"
)

type CustomerRepo interface {
	Create(ctx context.Context, tx *gorm.DB, customers []*types.Customer) ([]*types.Customer, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Customer, error)
	ListByMerchant(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID) ([]*types.Customer, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
}

type customerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCustomerRepo(db *gorm.DB, baseLog *logger.Logger) CustomerRepo {
	return &customerRepo{db: db, log: baseLog.With("repo", "CustomerRepo")}
}

func (r *customerRepo) Create(ctx context.Context, tx *gorm.DB, customers []*types.Customer) ([]*types.Customer, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(customers) == 0 {
		return []*types.Customer{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *customerRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Customer, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Customer
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

func (r *customerRepo) ListByMerchant(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID) ([]*types.Customer, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Customer
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

func (r *customerRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.Customer{}).
		Where("id = ?", id).
		Updates(updates).Error
}
