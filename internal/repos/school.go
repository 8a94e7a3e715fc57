package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/PeeapDev/merchant-backend/internal/pkg/logger"
	"github.com/PeeapDev/merchant-backend/internal/types"
)

type SchoolRepo interface {
	Create(ctx context.Context, tx *gorm.DB, schools []*types.School) ([]*types.School, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.School, error)
	// LockByID serializes approval against competing reviews.
	LockByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.School, error)
	ListByMerchant(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID) ([]*types.School, error)
	ListByStatus(ctx context.Context, tx *gorm.DB, status string, limit int) ([]*types.School, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
}

type schoolRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSchoolRepo(db *gorm.DB, baseLog *logger.Logger) SchoolRepo {
	return &schoolRepo{db: db, log: baseLog.With("repo", "SchoolRepo")}
}

func (r *schoolRepo) Create(ctx context.Context, tx *gorm.DB, schools []*types.School) ([]*types.School, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(schools) == 0 {
		return []*types.School{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&schools).Error; err != nil {
		return nil, err
	}
	return schools, nil
}

func (r *schoolRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.School, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.School
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

func (r *schoolRepo) LockByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.School, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var school types.School
	err := transaction.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Limit(1).
		Find(&school).Error
	if err != nil {
		return nil, err
	}
	if school.ID == uuid.Nil {
		return nil, nil
	}
	return &school, nil
}

func (r *schoolRepo) ListByMerchant(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID) ([]*types.School, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.School
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

func (r *schoolRepo) ListByStatus(ctx context.Context, tx *gorm.DB, status string, limit int) ([]*types.School, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.School
	if status == "" {
		return results, nil
	}
	q := transaction.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *schoolRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.School{}).
		Where("id = ?", id).
		Updates(updates).Error
}
