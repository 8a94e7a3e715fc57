package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/PeeapDev/merchant-backend/internal/pkg/logger"
	"github.com/PeeapDev/merchant-backend/internal/types"
)

type CashSessionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, sessions []*types.CashSession) ([]*types.CashSession, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.CashSession, error)
	// LockOpenByRegister enforces the one-open-session-per-register rule.
	LockOpenByRegister(ctx context.Context, tx *gorm.DB, registerID uuid.UUID) (*types.CashSession, error)
	LockByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.CashSession, error)
	ListByMerchant(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID, limit int) ([]*types.CashSession, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	CreateAdjustment(ctx context.Context, tx *gorm.DB, adjustment *types.CashAdjustment) (*types.CashAdjustment, error)
	ListAdjustments(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.CashAdjustment, error)
}

type cashSessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCashSessionRepo(db *gorm.DB, baseLog *logger.Logger) CashSessionRepo {
	return &cashSessionRepo{db: db, log: baseLog.With("repo", "CashSessionRepo")}
}

func (r *cashSessionRepo) Create(ctx context.Context, tx *gorm.DB, sessions []*types.CashSession) ([]*types.CashSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(sessions) == 0 {
		return []*types.CashSession{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *cashSessionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.CashSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.CashSession
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

func (r *cashSessionRepo) LockOpenByRegister(ctx context.Context, tx *gorm.DB, registerID uuid.UUID) (*types.CashSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if registerID == uuid.Nil {
		return nil, nil
	}
	var session types.CashSession
	err := transaction.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("register_id = ? AND status = ?", registerID, types.CashSessionStatusOpen).
		Limit(1).
		Find(&session).Error
	if err != nil {
		return nil, err
	}
	if session.ID == uuid.Nil {
		return nil, nil
	}
	return &session, nil
}

func (r *cashSessionRepo) LockByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.CashSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var session types.CashSession
	err := transaction.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Limit(1).
		Find(&session).Error
	if err != nil {
		return nil, err
	}
	if session.ID == uuid.Nil {
		return nil, nil
	}
	return &session, nil
}

func (r *cashSessionRepo) ListByMerchant(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID, limit int) ([]*types.CashSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.CashSession
	if merchantID == uuid.Nil {
		return results, nil
	}
	q := transaction.WithContext(ctx).
		Where("merchant_id = ?", merchantID).
		Order("opened_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *cashSessionRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.CashSession{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *cashSessionRepo) CreateAdjustment(ctx context.Context, tx *gorm.DB, adjustment *types.CashAdjustment) (*types.CashAdjustment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if adjustment == nil {
		return nil, nil
	}
	if err := transaction.WithContext(ctx).Create(adjustment).Error; err != nil {
		return nil, err
	}
	return adjustment, nil
}

func (r *cashSessionRepo) ListAdjustments(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.CashAdjustment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.CashAdjustment
	if sessionID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("cash_session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
