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

type CartDraftRepo interface {
	// Upsert applies last-writer-wins by client timestamp: a stale write
	// leaves the stored row untouched.
	Upsert(ctx context.Context, tx *gorm.DB, draft *types.CartDraft) error
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.CartDraft, error)
	ListByMerchant(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID) ([]*types.CartDraft, error)
	ChangedSince(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID, since time.Time) ([]*types.CartDraft, error)
	// Delete is scoped to the merchant so a device can never remove
	// another tenant's draft by guessing its id.
	Delete(ctx context.Context, tx *gorm.DB, merchantID, id uuid.UUID) error
}

type cartDraftRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCartDraftRepo(db *gorm.DB, baseLog *logger.Logger) CartDraftRepo {
	return &cartDraftRepo{db: db, log: baseLog.With("repo", "CartDraftRepo")}
}

func (r *cartDraftRepo) Upsert(ctx context.Context, tx *gorm.DB, draft *types.CartDraft) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if draft == nil || draft.ID == uuid.Nil {
		return nil
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"payload":    draft.Payload,
				"client_ts":  draft.ClientTS,
				"device_id":  draft.DeviceID,
				"updated_at": time.Now().UTC(),
			}),
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Lt{Column: clause.Column{Table: "cart_draft", Name: "client_ts"}, Value: draft.ClientTS},
				clause.Eq{Column: clause.Column{Table: "cart_draft", Name: "merchant_id"}, Value: draft.MerchantID},
			}},
		}).
		Create(draft).Error
}

func (r *cartDraftRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.CartDraft, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.CartDraft
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

func (r *cartDraftRepo) ListByMerchant(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID) ([]*types.CartDraft, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.CartDraft
	if merchantID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("merchant_id = ?", merchantID).
		Order("updated_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *cartDraftRepo) ChangedSince(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID, since time.Time) ([]*types.CartDraft, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.CartDraft
	if merchantID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("merchant_id = ? AND updated_at > ?", merchantID, since).
		Order("updated_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *cartDraftRepo) Delete(ctx context.Context, tx *gorm.DB, merchantID, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if merchantID == uuid.Nil || id == uuid.Nil {
		return nil
	}
	return transaction.WithContext(ctx).
		Where("id = ? AND merchant_id = ?", id, merchantID).
		Delete(&types.CartDraft{}).Error
}
