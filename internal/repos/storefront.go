package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/PeeapDev/merchant-backend/internal/pkg/logger"
	"github.com/PeeapDev/merchant-backend/internal/types"
)

type StorefrontRepo interface {
	GetByMerchant(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID) (*types.Storefront, error)
	GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.Storefront, error)
	SlugExists(ctx context.Context, tx *gorm.DB, slug string) (bool, error)
	Upsert(ctx context.Context, tx *gorm.DB, storefront *types.Storefront) (*types.Storefront, error)
}

type storefrontRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStorefrontRepo(db *gorm.DB, baseLog *logger.Logger) StorefrontRepo {
	return &storefrontRepo{db: db, log: baseLog.With("repo", "StorefrontRepo")}
}

func (r *storefrontRepo) GetByMerchant(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID) (*types.Storefront, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if merchantID == uuid.Nil {
		return nil, nil
	}
	var storefront types.Storefront
	err := transaction.WithContext(ctx).
		Where("merchant_id = ?", merchantID).
		Limit(1).
		Find(&storefront).Error
	if err != nil {
		return nil, err
	}
	if storefront.ID == uuid.Nil {
		return nil, nil
	}
	return &storefront, nil
}

func (r *storefrontRepo) GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.Storefront, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if slug == "" {
		return nil, nil
	}
	var storefront types.Storefront
	err := transaction.WithContext(ctx).
		Where("slug = ?", slug).
		Limit(1).
		Find(&storefront).Error
	if err != nil {
		return nil, err
	}
	if storefront.ID == uuid.Nil {
		return nil, nil
	}
	return &storefront, nil
}

func (r *storefrontRepo) SlugExists(ctx context.Context, tx *gorm.DB, slug string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if slug == "" {
		return false, nil
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Storefront{}).
		Where("slug = ?", slug).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *storefrontRepo) Upsert(ctx context.Context, tx *gorm.DB, storefront *types.Storefront) (*types.Storefront, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if storefront == nil {
		return nil, nil
	}
	err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "merchant_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"slug", "display_name", "description", "currency", "published", "opening_hours", "updated_at"}),
		}).
		Create(storefront).Error
	if err != nil {
		return nil, err
	}
	return storefront, nil
}
